// Package session drives one game between the local player and the
// authoritative server.
package session

import (
	"context"
	"errors"
	"fmt"

	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/reconcile"
	"gobblet/internal/rules"

	"github.com/rs/zerolog/log"
)

// State is the position of the session in its turn cycle.
type State int

const (
	AwaitingLocalMove State = iota
	AwaitingServerResponse
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitingLocalMove:
		return "awaiting local move"
	case AwaitingServerResponse:
		return "awaiting server response"
	case GameOver:
		return "game over"
	default:
		return "unknown"
	}
}

var (
	ErrGameOver = errors.New("game is over")
	ErrBusy     = errors.New("a move is already in flight")
)

// Server submits a move and returns the authoritative answer.
type Server interface {
	PlayMove(ctx context.Context, gameID string, m core.Move) (*core.GameResponse, error)
}

// Mover chooses the next local move.
type Mover interface {
	NextMove(s *game.State, self core.Owner) (core.Move, error)
}

// Session owns the local mirror of one game.
type Session struct {
	id      string
	self    core.Owner
	state   State
	mirror  *game.State
	server  Server
	winner  string
	outcome rules.Outcome
	last    reconcile.Delta
}

// New starts a session from the server's view of a game. The local
// player is always player 1. A declared winner starts it in GameOver.
func New(resp *core.GameResponse, server Server) (*Session, error) {
	mirror, err := game.FromSnapshot(resp.GameSnapshot)
	if err != nil {
		return nil, err
	}
	s := &Session{id: resp.ID, self: core.Player1, mirror: mirror, server: server, winner: resp.Winner}
	s.settle()
	return s, nil
}

func (s *Session) ID() string             { return s.id }
func (s *Session) Self() core.Owner       { return s.self }
func (s *Session) State() State           { return s.state }
func (s *Session) Outcome() rules.Outcome { return s.outcome }

// Winner is the name declared by the server, if any.
func (s *Session) Winner() string { return s.winner }

// LastDelta is the opponent action found on the last round trip.
func (s *Session) LastDelta() reconcile.Delta { return s.last }

// Mirror returns a copy of the local state.
func (s *Session) Mirror() *game.State { return s.mirror.Clone() }

func (s *Session) Snapshot() core.GameSnapshot { return s.mirror.Snapshot(s.id) }

// settle moves to GameOver when the mirror shows a finished game or a
// winner has been declared.
func (s *Session) settle() {
	s.outcome = rules.Evaluate(s.mirror.Board())
	if s.outcome.Terminal() || s.winner != "" {
		s.state = GameOver
		if s.winner == "" && s.outcome.Result == rules.Win {
			s.winner = s.mirror.Name(s.outcome.Winner)
		}
		return
	}
	s.state = AwaitingLocalMove
}

// Submit plays m. Illegal moves and transport failures leave the session
// untouched. A malformed answer or a desync ends the session.
func (s *Session) Submit(ctx context.Context, m core.Move) error {
	switch s.state {
	case GameOver:
		return ErrGameOver
	case AwaitingServerResponse:
		return ErrBusy
	}

	next := s.mirror.Clone()
	if err := rules.Apply(next, s.self, m); err != nil {
		return err
	}

	s.state = AwaitingServerResponse
	resp, err := s.server.PlayMove(ctx, s.id, m)
	if err != nil {
		s.state = AwaitingLocalMove
		return err
	}

	if resp.Terminal() {
		s.finish(next, resp)
		return nil
	}

	after, err := game.FromSnapshot(resp.GameSnapshot)
	if err != nil {
		s.state = GameOver
		return fmt.Errorf("server snapshot: %w", err)
	}
	d, err := reconcile.Sync(next, after, s.self.Opponent())
	if err != nil {
		s.state = GameOver
		log.Error().Err(err).Str("game", s.id).Msg("reconciliation failed")
		return err
	}
	log.Debug().Str("game", s.id).Str("move", m.String()).Str("reply", d.String()).Msg("round trip")

	s.mirror = next
	s.last = d
	s.settle()
	return nil
}

// finish ends the session on a declared winner. A final position sent
// with the verdict is folded in; a bare verdict keeps the local position.
func (s *Session) finish(next *game.State, resp *core.GameResponse) {
	s.mirror = next
	if after, err := game.FromSnapshot(resp.GameSnapshot); err == nil {
		if d, err := reconcile.Sync(next.Clone(), after, s.self.Opponent()); err == nil {
			s.last = d
		} else {
			log.Warn().Err(err).Str("game", s.id).Msg("final position does not follow, using server state")
		}
		s.mirror = after
	}
	s.winner = resp.Winner
	s.outcome = rules.Evaluate(s.mirror.Board())
	s.state = GameOver
	log.Info().Str("game", s.id).Str("winner", resp.Winner).Msg("game over")
}

// Step asks mover for a move and submits it.
func (s *Session) Step(ctx context.Context, mover Mover) (core.Move, error) {
	if s.state == GameOver {
		return core.Move{}, ErrGameOver
	}
	m, err := mover.NextMove(s.mirror.Clone(), s.self)
	if err != nil {
		return core.Move{}, err
	}
	return m, s.Submit(ctx, m)
}

// Run steps until the game ends or an error stops it. onStep, if set, is
// called after every accepted round trip.
func (s *Session) Run(ctx context.Context, mover Mover, onStep func(core.Move)) error {
	for s.state != GameOver {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := s.Step(ctx, mover)
		if err != nil {
			return err
		}
		if onStep != nil {
			onStep(m)
		}
	}
	return nil
}
