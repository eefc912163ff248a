package web

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pipdeck/pipdeck/calendar"
	"github.com/pipdeck/pipdeck/instrument"
	"github.com/pipdeck/pipdeck/newsletter"
	"github.com/pipdeck/pipdeck/rates"
	"github.com/pipdeck/pipdeck/risk"
)

// CalendarReader is the slice of the calendar store the API needs.
type CalendarReader interface {
	ListBetween(start, end time.Time, f calendar.Filter) ([]calendar.Event, error)
}

// Subscriber relays a signup to the email-marketing provider.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// Handlers holds the collaborators behind each endpoint.
type Handlers struct {
	rates         risk.RateResolver
	calendar      CalendarReader
	newsletter    Subscriber
	honeypotField string
	log           zerolog.Logger
	now           func() time.Time
}

// NewHandlers wires the endpoint collaborators. honeypotField is the form
// field the signup page renders invisibly; it must match the configured
// newsletter honeypot or the bot check goes dead. Empty disables the check.
func NewHandlers(resolver risk.RateResolver, cal CalendarReader, news Subscriber, honeypotField string, log zerolog.Logger) *Handlers {
	return &Handlers{
		rates:         resolver,
		calendar:      cal,
		newsletter:    news,
		honeypotField: honeypotField,
		log:           log,
		now:           time.Now,
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Detail: detail})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound is the JSON 404.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusNotFound, "not_found", "no such endpoint", r.URL.Path)
}

type sizeRequest struct {
	AccountCurrency string  `json:"account_currency"`
	Instrument      string  `json:"instrument"`
	Balance         float64 `json:"balance"`
	RiskPercent     float64 `json:"risk_percent"`
	StopPips        float64 `json:"stop_pips"`
}

type sizeResponse struct {
	RiskAmount     float64 `json:"risk_amount"`
	PipValuePerLot float64 `json:"pip_value_per_lot"`
	PositionLots   float64 `json:"position_lots"`
	Currency       string  `json:"currency"`
}

// Size runs one position-size calculation. Rounding to two decimals
// happens here, at the presentation edge, never inside the calculator.
func (h *Handlers) Size(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body", err.Error())
		return
	}

	result, err := risk.Calculate(r.Context(), h.rates, risk.Request{
		AccountCurrency: req.AccountCurrency,
		Instrument:      req.Instrument,
		Balance:         req.Balance,
		RiskPercent:     req.RiskPercent,
		StopPips:        req.StopPips,
	})
	if err != nil {
		h.writeSizeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sizeResponse{
		RiskAmount:     round2(result.RiskAmount),
		PipValuePerLot: round2(result.PipValuePerLot),
		PositionLots:   round2(result.PositionLots),
		Currency:       result.Currency,
	})
}

func (h *Handlers) writeSizeError(w http.ResponseWriter, err error) {
	var malformed *instrument.MalformedSymbolError
	var invalidInput *risk.InvalidInputError
	var invalidCalc *risk.InvalidCalculationError
	var unavailable *rates.RateUnavailableError

	switch {
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadRequest, "malformed_symbol", err.Error(), malformed.Input)
	case errors.As(err, &invalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), invalidInput.Field)
	case errors.As(err, &invalidCalc):
		writeError(w, http.StatusBadRequest, "invalid_calculation", err.Error(), invalidCalc.Instrument)
	case errors.As(err, &unavailable):
		writeError(w, http.StatusBadGateway, "rate_unavailable", err.Error(),
			unavailable.Base+"/"+unavailable.Quote)
	default:
		h.log.Error().Err(err).Msg("size calculation failed")
		writeError(w, http.StatusInternalServerError, "internal", "calculation failed", "")
	}
}

// Calendar serves the economic-calendar panel. since/until are day offsets
// from now; defaults match the site's two-week panel.
func (h *Handlers) Calendar(w http.ResponseWriter, r *http.Request) {
	since, err := queryInt(r, "since", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid since parameter", err.Error())
		return
	}
	until, err := queryInt(r, "until", 15)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid until parameter", err.Error())
		return
	}
	if until < since {
		writeError(w, http.StatusBadRequest, "bad_request", "until must not precede since", "")
		return
	}

	filter := calendar.Filter{}
	if countries := r.URL.Query().Get("countries"); countries != "" {
		for _, c := range strings.Split(countries, ",") {
			if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
				filter.Countries = append(filter.Countries, c)
			}
		}
	}
	if impact := r.URL.Query().Get("impact"); impact != "" {
		min, ok := calendar.ParseImpact(impact)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid impact parameter", impact)
			return
		}
		filter.MinImpact = min
	}

	now := h.now().UTC()
	start := now.AddDate(0, 0, since)
	end := now.AddDate(0, 0, until)

	events, err := h.calendar.ListBetween(start, end, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("calendar query failed")
		writeError(w, http.StatusInternalServerError, "internal", "calendar query failed", "")
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, events)
}

// Subscribe relays a signup form to the provider. A filled honeypot field
// means a bot: pretend success, relay nothing.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed form body", err.Error())
		return
	}

	if h.honeypotField != "" && r.PostForm.Get(h.honeypotField) != "" {
		h.log.Debug().Msg("honeypot tripped, dropping subscription")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	email := r.PostForm.Get("email")
	if err := h.newsletter.Subscribe(r.Context(), email); err != nil {
		if errors.Is(err, newsletter.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "invalid_email", "invalid email address", "")
			return
		}
		h.log.Error().Err(err).Msg("newsletter relay failed")
		writeError(w, http.StatusBadGateway, "provider_error", "subscription could not be delivered", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type instrumentResponse struct {
	Symbol       string  `json:"symbol"`
	Base         string  `json:"base"`
	Quote        string  `json:"quote"`
	PipSize      float64 `json:"pip_size"`
	ContractSize float64 `json:"contract_size"`
}

// Instrument returns the normalized symbol and its sizing parameters, for
// the dashboard widget shell.
func (h *Handlers) Instrument(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["symbol"]

	sym, err := instrument.Normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed_symbol", err.Error(), raw)
		return
	}

	writeJSON(w, http.StatusOK, instrumentResponse{
		Symbol:       string(sym),
		Base:         sym.Base(),
		Quote:        sym.Quote(),
		PipSize:      instrument.PipSizeFor(sym),
		ContractSize: instrument.ContractSizeFor(sym),
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
