package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrPlayerExists   = errors.New("player already exists")
	ErrPlayerNotFound = errors.New("player not found")
)

// CreatePlayer inserts a player inside a transaction so that concurrent
// registrations of the same name cannot both succeed.
func (s *Store) CreatePlayer(record PlayerRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM players WHERE name = ? COLLATE NOCASE`, record.Name).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrPlayerExists, record.Name)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`INSERT INTO players (name, secret_hash, created_at) VALUES (?, ?, ?)`,
		record.Name, record.SecretHash, record.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetPlayer looks a player up by name, case-insensitively.
func (s *Store) GetPlayer(name string) (*PlayerRecord, error) {
	var p PlayerRecord
	err := s.db.QueryRow(`SELECT name, secret_hash, created_at, last_seen_at
		FROM players WHERE name = ? COLLATE NOCASE`, name).Scan(
		&p.Name, &p.SecretHash, &p.CreatedAt, &p.LastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPlayers() ([]PlayerRecord, error) {
	rows, err := s.db.Query(`SELECT name, secret_hash, created_at, last_seen_at
		FROM players ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.Name, &p.SecretHash, &p.CreatedAt, &p.LastSeenAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// DeletePlayer removes a player. Their games are kept.
func (s *Store) DeletePlayer(name string) error {
	res, err := s.db.Exec(`DELETE FROM players WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	return nil
}

// TouchPlayer records a successful authentication, asynchronously.
func (s *Store) TouchPlayer(name string, at time.Time) {
	s.enqueue("player", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE players SET last_seen_at = ? WHERE name = ? COLLATE NOCASE`, at, name)
		return err
	})
}
