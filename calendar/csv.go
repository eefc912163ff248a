package calendar

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"
)

// ExportCSV writes events as CSV with a header row, for hand-off to the
// content team. Extras are flattened to a JSON column.
func ExportCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{
		"id", "source", "agency", "country", "title",
		"date_time_utc", "event_local_tz", "impact", "url", "extras",
	}); err != nil {
		return err
	}

	for _, ev := range events {
		extras := "{}"
		if len(ev.Extras) > 0 {
			data, err := json.Marshal(ev.Extras)
			if err != nil {
				return err
			}
			extras = string(data)
		}
		if err := cw.Write([]string{
			ev.ID,
			ev.Source,
			ev.Agency,
			ev.Country,
			ev.Title,
			ev.DateTimeUTC.UTC().Format(time.RFC3339),
			ev.LocalTZ,
			ev.Impact,
			ev.URL,
			extras,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
