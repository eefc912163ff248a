package instrument

import "strings"

// Defaults for plain FX pairs: fourth-decimal pip, standard 100k lot.
const (
	defaultPipSize      = 0.0001
	defaultContractSize = 100000
)

// PipSizeFor returns the pip size for a normalized symbol. Classification
// is by prefix/suffix, first match wins; the default branch always applies,
// so the function is total.
func PipSizeFor(s Symbol) float64 {
	sym := string(s)
	switch {
	case strings.HasSuffix(sym, "JPY"):
		return 0.01
	case strings.HasPrefix(sym, "XAU"):
		return 0.01
	case strings.HasPrefix(sym, "XAG"):
		return 0.01
	case strings.HasPrefix(sym, "WTI"):
		return 0.01
	case strings.HasPrefix(sym, "BTC"):
		return 1
	case strings.HasPrefix(sym, "ETH"):
		return 1
	default:
		return defaultPipSize
	}
}

// ContractSizeFor returns the units per one standardized lot for a
// normalized symbol. Same precedence order as PipSizeFor; JPY-quoted pairs
// keep the standard FX contract size.
func ContractSizeFor(s Symbol) float64 {
	sym := string(s)
	switch {
	case strings.HasSuffix(sym, "JPY"):
		return defaultContractSize
	case strings.HasPrefix(sym, "XAU"):
		return 100
	case strings.HasPrefix(sym, "XAG"):
		return 5000
	case strings.HasPrefix(sym, "WTI"):
		return 1000
	case strings.HasPrefix(sym, "BTC"):
		return 1
	case strings.HasPrefix(sym, "ETH"):
		return 1
	default:
		return defaultContractSize
	}
}
