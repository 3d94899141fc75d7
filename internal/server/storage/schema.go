package storage

import "time"

// PlayerRecord is a registered player allowed to authenticate.
type PlayerRecord struct {
	Name       string     `db:"name"`
	SecretHash string     `db:"secret_hash"`
	CreatedAt  time.Time  `db:"created_at"`
	LastSeenAt *time.Time `db:"last_seen_at"`
}

// GameRecord is one game between a player and the server opponent.
type GameRecord struct {
	GameID     string    `db:"game_id"`
	PlayerName string    `db:"player_name"`
	Opponent   string    `db:"opponent"`
	StartedAt  time.Time `db:"started_at"`
	Winner     *string   `db:"winner"` // nil while the game is open
}

// MoveRecord is one ply with the position it produced.
type MoveRecord struct {
	GameID      string    `db:"game_id"`
	Ply         int       `db:"ply"`
	Mover       int       `db:"mover"`
	Origin      string    `db:"origin"`
	Destination string    `db:"destination"`
	Snapshot    string    `db:"snapshot_json"`
	PlayedAt    time.Time `db:"played_at"`
}

const Schema = `
CREATE TABLE IF NOT EXISTS players (
	name TEXT PRIMARY KEY COLLATE NOCASE,
	secret_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen_at DATETIME
);

CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	player_name TEXT NOT NULL COLLATE NOCASE,
	opponent TEXT NOT NULL,
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	winner TEXT
);

CREATE TABLE IF NOT EXISTS moves (
	game_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	mover INTEGER NOT NULL CHECK(mover IN (1, 2)),
	origin TEXT NOT NULL,
	destination TEXT NOT NULL,
	snapshot_json TEXT NOT NULL,
	played_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	PRIMARY KEY (game_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_games_player ON games(player_name);
CREATE INDEX IF NOT EXISTS idx_games_started_at ON games(started_at);
`
