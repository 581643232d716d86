package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evaluation record schema.
const Schema = `
-- Evaluation records table
CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,

    -- Tree identity
    tree_name TEXT NOT NULL,
    tree_version TEXT,

    -- Timestamps
    evaluated_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL,

    -- Inputs
    answers TEXT,
    answers_hash TEXT,

    -- Outcome
    decision TEXT NOT NULL,
    reason TEXT,
    path_taken TEXT,

    -- Timing (milliseconds)
    evaluation_time INTEGER,

    -- Error info
    error TEXT,
    error_type TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_evaluations_evaluated_at ON evaluations(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_evaluations_tree_name ON evaluations(tree_name);
CREATE INDEX IF NOT EXISTS idx_evaluations_decision ON evaluations(decision);
CREATE INDEX IF NOT EXISTS idx_evaluations_tree_version ON evaluations(tree_version);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
