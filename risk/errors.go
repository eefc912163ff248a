package risk

import "fmt"

// InvalidInputError reports a numeric request field that is missing,
// non-finite, or outside its allowed range.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s = %v", e.Field, e.Value)
}

// InvalidCalculationError means the derived risk-per-lot was non-finite or
// non-positive, i.e. a degenerate instrument/rate combination.
type InvalidCalculationError struct {
	Instrument string
	RiskPerLot float64
}

func (e *InvalidCalculationError) Error() string {
	return fmt.Sprintf("invalid calculation for %s: risk per lot %v", e.Instrument, e.RiskPerLot)
}
