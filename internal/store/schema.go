package store

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    commander TEXT NOT NULL DEFAULT 'Unknown',
    current_system TEXT NOT NULL DEFAULT 'Unknown',
    log_file TEXT NOT NULL DEFAULT '',
    last_updated TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO session_state (id) VALUES (1);

CREATE TABLE IF NOT EXISTS ship_status (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    cargo_capacity INTEGER NOT NULL DEFAULT 0,
    cargo_count INTEGER NOT NULL DEFAULT 0,
    limpet_count INTEGER NOT NULL DEFAULT 0,
    credits INTEGER NOT NULL DEFAULT 0,
    last_updated TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO ship_status (id) VALUES (1);

CREATE TABLE IF NOT EXISTS service_heartbeat (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    running BOOLEAN NOT NULL DEFAULT 0,
    pid INTEGER NOT NULL DEFAULT 0,
    last_heartbeat TEXT NOT NULL DEFAULT '',
    journal_file TEXT NOT NULL DEFAULT '',
    poll_interval REAL NOT NULL DEFAULT 0.5
);
INSERT OR IGNORE INTO service_heartbeat (id) VALUES (1);

CREATE TABLE IF NOT EXISTS service_lease (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    owner_pid INTEGER NOT NULL DEFAULT 0,
    owner_host TEXT NOT NULL DEFAULT '',
    acquired_at TEXT NOT NULL DEFAULT '',
    expires_at TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO service_lease (id) VALUES (1);

CREATE TABLE IF NOT EXISTS prospecting_detections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    captured_at TEXT NOT NULL,
    journal_timestamp TEXT NOT NULL,
    material TEXT NOT NULL,
    percentage REAL NOT NULL,
    motherlode BOOLEAN NOT NULL DEFAULT 0,
    content_tier TEXT NOT NULL DEFAULT 'Unknown',
    surface BOOLEAN NOT NULL DEFAULT 1,
    deepcore BOOLEAN NOT NULL DEFAULT 0,
    remaining REAL NOT NULL DEFAULT 100.0,
    processed BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS refined_materials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    captured_at TEXT NOT NULL,
    journal_timestamp TEXT NOT NULL,
    material TEXT NOT NULL,
    category TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fleet_carriers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    signal_name TEXT NOT NULL UNIQUE,
    system_address INTEGER NOT NULL DEFAULT 0,
    system_name TEXT NOT NULL DEFAULT '',
    discovered_at TEXT NOT NULL DEFAULT '',
    last_seen TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS station_signals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    signal_name TEXT NOT NULL,
    signal_type TEXT NOT NULL DEFAULT '',
    system_address INTEGER NOT NULL DEFAULT 0,
    system_name TEXT NOT NULL DEFAULT '',
    discovered_at TEXT NOT NULL DEFAULT '',
    last_seen TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS material_config (
    material TEXT PRIMARY KEY,
    min_percentage REAL NOT NULL DEFAULT 25.0,
    target_price INTEGER NOT NULL DEFAULT 0,
    track_surface BOOLEAN NOT NULL DEFAULT 1,
    track_deepcore BOOLEAN NOT NULL DEFAULT 1,
    enabled BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS chat_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    journal_timestamp TEXT NOT NULL,
    channel TEXT NOT NULL,
    sender TEXT NOT NULL,
    message TEXT NOT NULL,
    subtype TEXT NOT NULL DEFAULT 'other',
    captured_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_detections_processed ON prospecting_detections(processed, id);
CREATE INDEX IF NOT EXISTS idx_refined_material ON refined_materials(material);
CREATE INDEX IF NOT EXISTS idx_carriers_last_seen ON fleet_carriers(last_seen);
CREATE INDEX IF NOT EXISTS idx_chat_timestamp ON chat_messages(journal_timestamp);
`
