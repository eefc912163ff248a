package calendar

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the hosted calendar table, backed by SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the calendar database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Filter narrows a ListBetween query. Zero value means no filtering.
type Filter struct {
	Countries []string // exact country codes, e.g. "US", "EU"
	MinImpact string   // events at or above this impact level
}

// Upsert inserts an event, replacing any existing row with the same id.
// Re-running an import over an overlapping window is therefore safe.
func (s *Store) Upsert(ev Event) error {
	extras, err := marshalExtras(ev.Extras)
	if err != nil {
		return fmt.Errorf("encode extras for %s: %w", ev.ID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO events
		(id, source, agency, country, title, date_time_utc, event_local_tz, impact, url, extras)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			agency = excluded.agency,
			country = excluded.country,
			title = excluded.title,
			date_time_utc = excluded.date_time_utc,
			event_local_tz = excluded.event_local_tz,
			impact = excluded.impact,
			url = excluded.url,
			extras = excluded.extras`,
		ev.ID, ev.Source, ev.Agency, ev.Country, ev.Title,
		ev.DateTimeUTC.UTC(), ev.LocalTZ, ev.Impact, ev.URL, extras,
	)
	return err
}

// UpsertAll writes a batch in one transaction and reports how many rows
// went in. A single bad row rolls back the whole batch.
func (s *Store) UpsertAll(events []Event) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events
		(id, source, agency, country, title, date_time_utc, event_local_tz, impact, url, extras)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			agency = excluded.agency,
			country = excluded.country,
			title = excluded.title,
			date_time_utc = excluded.date_time_utc,
			event_local_tz = excluded.event_local_tz,
			impact = excluded.impact,
			url = excluded.url,
			extras = excluded.extras`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for _, ev := range events {
		extras, err := marshalExtras(ev.Extras)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("encode extras for %s: %w", ev.ID, err)
		}
		if _, err := stmt.Exec(
			ev.ID, ev.Source, ev.Agency, ev.Country, ev.Title,
			ev.DateTimeUTC.UTC(), ev.LocalTZ, ev.Impact, ev.URL, extras,
		); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("upsert %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(events), nil
}

// GetEvent returns a single event by id.
func (s *Store) GetEvent(eventID string) (Event, error) {
	row := s.db.QueryRow(`
		SELECT id, source, agency, country, title, date_time_utc, event_local_tz, impact, url, extras
		FROM events
		WHERE id = ?`, eventID)

	ev, err := scanEvent(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Event{}, fmt.Errorf("event %q not found", eventID)
		}
		return Event{}, err
	}
	return ev, nil
}

// ListBetween returns events with date_time_utc within [start, end),
// soonest first, narrowed by the filter.
func (s *Store) ListBetween(start, end time.Time, f Filter) ([]Event, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, source, agency, country, title, date_time_utc, event_local_tz, impact, url, extras
		FROM events
		WHERE date_time_utc >= ? AND date_time_utc < ?`)
	args := []any{start.UTC(), end.UTC()}

	if len(f.Countries) > 0 {
		query.WriteString(" AND country IN (?" + strings.Repeat(", ?", len(f.Countries)-1) + ")")
		for _, c := range f.Countries {
			args = append(args, c)
		}
	}
	if f.MinImpact != "" {
		impacts := allowedImpacts(f.MinImpact)
		query.WriteString(" AND impact IN (?" + strings.Repeat(", ?", len(impacts)-1) + ")")
		for _, im := range impacts {
			args = append(args, im)
		}
	}
	query.WriteString(" ORDER BY date_time_utc ASC")

	rows, err := s.db.Query(query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of stored events.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func allowedImpacts(min string) []string {
	rank := impactRank(min)
	out := make([]string, 0, 3)
	for _, im := range []string{ImpactLow, ImpactMedium, ImpactHigh} {
		if impactRank(im) >= rank {
			out = append(out, im)
		}
	}
	return out
}

func scanEvent(scan func(dest ...any) error) (Event, error) {
	var ev Event
	var extras string
	if err := scan(
		&ev.ID,
		&ev.Source,
		&ev.Agency,
		&ev.Country,
		&ev.Title,
		&ev.DateTimeUTC,
		&ev.LocalTZ,
		&ev.Impact,
		&ev.URL,
		&extras,
	); err != nil {
		return Event{}, err
	}
	ev.DateTimeUTC = ev.DateTimeUTC.UTC()
	if extras != "" && extras != "{}" {
		if err := json.Unmarshal([]byte(extras), &ev.Extras); err != nil {
			return Event{}, fmt.Errorf("decode extras for %s: %w", ev.ID, err)
		}
	}
	return ev, nil
}

func marshalExtras(extras map[string]any) (string, error) {
	if len(extras) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
