package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meetings (
    meeting_id           TEXT PRIMARY KEY,
    ended_at             TEXT NOT NULL,
    elapsed_secs         INTEGER NOT NULL,
    attendees            INTEGER NOT NULL,
    hourly_rate          REAL NOT NULL,
    total_cost           REAL NOT NULL,
    target_minutes       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_meetings_ended ON meetings(ended_at);
`
