package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pipdeck/pipdeck/pkg/id"
)

// Impact levels as emitted by the scraper.
const (
	ImpactLow    = "Low"
	ImpactMedium = "Medium"
	ImpactHigh   = "High"
)

// ParseImpact canonicalizes a case-insensitive impact name. ok is false
// for anything other than the three known levels, so callers reject typos
// instead of silently widening a filter.
func ParseImpact(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImpactLow, true
	case "medium":
		return ImpactMedium, true
	case "high":
		return ImpactHigh, true
	default:
		return "", false
	}
}

// impactRank orders impact levels for filtering. Unknown strings rank
// below Low so a bad value never sneaks past a filter.
func impactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// Event is one economic-calendar entry, matching the scraper's output row.
type Event struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Agency      string         `json:"agency"`
	Country     string         `json:"country"`
	Title       string         `json:"title"`
	DateTimeUTC time.Time      `json:"date_time_utc"`
	LocalTZ     string         `json:"event_local_tz"`
	Impact      string         `json:"impact"`
	URL         string         `json:"url"`
	Extras      map[string]any `json:"extras,omitempty"`
}

// wireEvent carries the scraper's JSON shape, with the timestamp as an
// ISO-8601 string.
type wireEvent struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Agency      string         `json:"agency"`
	Country     string         `json:"country"`
	Title       string         `json:"title"`
	DateTimeUTC string         `json:"date_time_utc"`
	LocalTZ     string         `json:"event_local_tz"`
	Impact      string         `json:"impact"`
	URL         string         `json:"url"`
	Extras      map[string]any `json:"extras"`
}

// ParseEvents decodes a scraper JSON array. Events without an id get a
// fresh ULID; missing timezone and impact fall back to UTC / Low. A row
// without a title or a parseable timestamp fails the whole batch.
func ParseEvents(data []byte) ([]Event, error) {
	var wire []wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode scraper output: %w", err)
	}

	events := make([]Event, 0, len(wire))
	for i, w := range wire {
		if w.Title == "" {
			return nil, fmt.Errorf("event %d: missing title", i)
		}
		ts, err := time.Parse(time.RFC3339, w.DateTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): parse date_time_utc: %w", i, w.Title, err)
		}

		ev := Event{
			ID:          w.ID,
			Source:      w.Source,
			Agency:      w.Agency,
			Country:     w.Country,
			Title:       w.Title,
			DateTimeUTC: ts.UTC(),
			LocalTZ:     w.LocalTZ,
			Impact:      w.Impact,
			URL:         w.URL,
			Extras:      w.Extras,
		}
		if ev.ID == "" {
			ev.ID = id.New()
		}
		if ev.LocalTZ == "" {
			ev.LocalTZ = "UTC"
		}
		if ev.Impact == "" {
			ev.Impact = ImpactLow
		}
		events = append(events, ev)
	}
	return events, nil
}
