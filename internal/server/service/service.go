// Package service holds the server's games and plays the server side of
// each one.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/server/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const (
	MaxActiveGames     = 100
	MaxListedGames     = 20
	IdleGameTTL        = 2 * time.Hour
	CleanupJobInterval = 10 * time.Minute

	// OpponentName is the name the server plays under.
	OpponentName = "robot"
	// DrawWinner is declared when both players complete a line at once.
	DrawWinner = "draw"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameOver       = errors.New("game is over")
	ErrTooManyGames   = errors.New("too many active games")
	ErrBadCredentials = errors.New("invalid player name or secret")
)

// match is one game held in memory. Its mutex orders moves within the game.
type match struct {
	mu       sync.Mutex
	id       string
	player   string
	state    *game.State
	started  time.Time
	lastSeen time.Time
	ply      int
	winner   string
}

// Service coordinates games, player authentication and storage.
type Service struct {
	games map[string]*match
	mu    sync.RWMutex
	store *storage.Store

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a service. A nil store disables persistence and accepts any
// credentials.
func New(store *storage.Store) *Service {
	return &Service{
		games: make(map[string]*match),
		store: store,
		rng:   rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// GetStorageHealth returns the storage component status.
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// StartGame opens a game for player against the server opponent.
func (s *Service) StartGame(player string) (*core.GameResponse, error) {
	s.mu.Lock()
	if len(s.games) >= MaxActiveGames {
		s.mu.Unlock()
		return nil, ErrTooManyGames
	}
	now := time.Now().UTC()
	m := &match{
		id:       uuid.NewString(),
		player:   player,
		state:    game.New(player, OpponentName),
		started:  now,
		lastSeen: now,
	}
	s.games[m.id] = m
	s.mu.Unlock()

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:     m.id,
			PlayerName: player,
			Opponent:   OpponentName,
			StartedAt:  now,
		})
	}
	log.Info().Str("game", m.id).Str("player", player).Msg("game started")

	return &core.GameResponse{GameSnapshot: m.state.Snapshot(m.id)}, nil
}

// lookup returns the game only to the player who started it. Other players
// see it as missing.
func (s *Service) lookup(player, gameID string) (*match, error) {
	s.mu.RLock()
	m, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok || m.player != player {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return m, nil
}

// GetGame returns the current snapshot, with the winner once decided.
func (s *Service) GetGame(player, gameID string) (*core.GameResponse, error) {
	m, err := s.lookup(player, gameID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen = time.Now().UTC()
	return m.response(), nil
}

func (m *match) response() *core.GameResponse {
	return &core.GameResponse{GameSnapshot: m.state.Snapshot(m.id), Winner: m.winner}
}

// ListGames returns the player's most recent games, newest first. Games
// still in memory take precedence over their stored rows.
func (s *Service) ListGames(player string) ([]core.GameSummary, error) {
	var out []core.GameSummary
	seen := make(map[string]bool)

	s.mu.RLock()
	for _, m := range s.games {
		if m.player != player {
			continue
		}
		m.mu.Lock()
		out = append(out, summary(m.id, m.started, player, m.winner))
		m.mu.Unlock()
		seen[m.id] = true
	}
	s.mu.RUnlock()

	if s.store != nil {
		records, err := s.store.QueryGames("", player)
		if err != nil {
			return nil, fmt.Errorf("query games: %w", err)
		}
		for _, r := range records {
			if seen[r.GameID] {
				continue
			}
			winner := ""
			if r.Winner != nil {
				winner = *r.Winner
			}
			out = append(out, summary(r.GameID, r.StartedAt, r.PlayerName, winner))
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > MaxListedGames {
		out = out[:MaxListedGames]
	}
	return out, nil
}

func summary(id string, started time.Time, player, winner string) core.GameSummary {
	gs := core.GameSummary{
		ID:      id,
		Date:    started.UTC().Format(time.RFC3339),
		Players: []string{player, OpponentName},
	}
	if winner != "" {
		w := winner
		gs.Winner = &w
	}
	return gs
}

// Shutdown drops in-memory games and closes storage.
func (s *Service) Shutdown() error {
	var errs []error

	s.mu.Lock()
	s.games = make(map[string]*match)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RunCleanupJob evicts finished or idle games from memory until ctx ends.
// Evicted games stay listed through storage.
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evict(time.Now().UTC().Add(-IdleGameTTL))
		}
	}
}

func (s *Service) evict(idleBefore time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, m := range s.games {
		m.mu.Lock()
		stale := m.winner != "" || m.lastSeen.Before(idleBefore)
		m.mu.Unlock()
		if stale {
			delete(s.games, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("count", evicted).Msg("evicted games")
	}
	return evicted
}
