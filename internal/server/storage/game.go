package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame queues the insertion of a new game.
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (game_id, player_name, opponent, started_at) VALUES (?, ?, ?, ?)`,
			record.GameID, record.PlayerName, record.Opponent, record.StartedAt)
		return err
	})
}

// RecordMove queues one ply.
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO moves (
			game_id, ply, mover, origin, destination, snapshot_json, played_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.Ply, record.Mover, record.Origin, record.Destination,
			record.Snapshot, record.PlayedAt,
		)
		return err
	})
}

// RecordResult queues the declared winner of a game.
func (s *Store) RecordResult(gameID, winner string) {
	s.enqueue("result", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET winner = ? WHERE game_id = ?`, winner, gameID)
		return err
	})
}

// QueryGames lists games newest first. An empty or "*" filter matches
// everything.
func (s *Store) QueryGames(gameID, playerName string) ([]GameRecord, error) {
	query := `SELECT game_id, player_name, opponent, started_at, winner FROM games WHERE 1=1`
	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}
	if playerName != "" && playerName != "*" {
		query += " AND player_name = ? COLLATE NOCASE"
		args = append(args, playerName)
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.GameID, &g.PlayerName, &g.Opponent, &g.StartedAt, &g.Winner); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryMoves returns the plies of one game in order.
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT game_id, ply, mover, origin, destination, snapshot_json, played_at
		FROM moves WHERE game_id = ? ORDER BY ply`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.GameID, &m.Ply, &m.Mover, &m.Origin, &m.Destination, &m.Snapshot, &m.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
