package calendar

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	agency TEXT NOT NULL,
	country TEXT NOT NULL,
	title TEXT NOT NULL,
	date_time_utc DATETIME NOT NULL,
	event_local_tz TEXT NOT NULL,
	impact TEXT NOT NULL,
	url TEXT NOT NULL,
	extras TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_events_time ON events(date_time_utc);
CREATE INDEX IF NOT EXISTS idx_events_country ON events(country);
`
