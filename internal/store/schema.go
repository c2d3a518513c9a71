package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at             TEXT NOT NULL,
    period_start         TEXT NOT NULL DEFAULT '',
    period_end           TEXT NOT NULL DEFAULT '',
    mode                 TEXT NOT NULL,
    pacing_status        TEXT NOT NULL,
    target_amount        REAL NOT NULL,
    current_spend        REAL NOT NULL,
    pacing_percentage    REAL NOT NULL,
    expected_percentage  REAL NOT NULL,
    income               REAL,
    expenses             REAL,
    net_flow             REAL,
    runway_months        REAL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON snapshots(taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_period ON snapshots(period_start);
`
