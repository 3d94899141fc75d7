package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gobblet/internal/agent"
	"gobblet/internal/core"
	"gobblet/internal/rules"
	"gobblet/internal/server/storage"

	"github.com/rs/zerolog/log"
)

// Play applies the player's move, then answers with the opponent's move
// unless the game ended. Rule violations come back as
// *core.IllegalMoveError.
func (s *Service) Play(player string, req core.MoveRequest) (*core.GameResponse, error) {
	m, err := s.lookup(player, req.ID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.winner != "" {
		return nil, fmt.Errorf("%w: won by %s", ErrGameOver, m.winner)
	}
	m.lastSeen = time.Now().UTC()

	if err := s.play(m, core.Player1, req.Move()); err != nil {
		return nil, err
	}
	if m.winner != "" {
		return m.response(), nil
	}

	reply, err := s.opponentMove(m)
	if err != nil {
		// Player 2 has no legal move left: called a draw.
		log.Warn().Str("game", m.id).Err(err).Msg("opponent has no move")
		s.declare(m, DrawWinner)
		return m.response(), nil
	}
	if err := s.play(m, core.Player2, reply); err != nil {
		return nil, fmt.Errorf("opponent move %s: %w", reply, err)
	}
	return m.response(), nil
}

// play applies one move, records it and settles the game if it ended.
func (s *Service) play(m *match, owner core.Owner, mv core.Move) error {
	if err := rules.Apply(m.state, owner, mv); err != nil {
		return err
	}
	m.ply++
	log.Debug().Str("game", m.id).Int("ply", m.ply).Stringer("owner", owner).Stringer("move", mv).Msg("move played")

	if s.store != nil {
		snap, err := json.Marshal(m.state.Snapshot(m.id))
		if err != nil {
			return err
		}
		s.store.RecordMove(storage.MoveRecord{
			GameID:      m.id,
			Ply:         m.ply,
			Mover:       int(owner),
			Origin:      mv.Origin.String(),
			Destination: mv.Destination.String(),
			Snapshot:    string(snap),
			PlayedAt:    time.Now().UTC(),
		})
	}

	switch out := rules.Evaluate(m.state.Board()); out.Result {
	case rules.Win:
		s.declare(m, m.state.Name(out.Winner))
	case rules.DoubleWin:
		s.declare(m, DrawWinner)
	}
	return nil
}

// opponentMove picks the server's reply: the one-ply search, or a random
// legal move when the search finds nothing it likes.
func (s *Service) opponentMove(m *match) (core.Move, error) {
	mv, err := agent.Search(m.state, core.Player2)
	if err == nil {
		return mv, nil
	}
	if !errors.Is(err, agent.ErrNoLegalMove) {
		return core.Move{}, err
	}
	legal := rules.LegalMoves(m.state, core.Player2)
	if len(legal) == 0 {
		return core.Move{}, err
	}
	s.rngMu.Lock()
	i := s.rng.Intn(len(legal))
	s.rngMu.Unlock()
	return legal[i], nil
}

func (s *Service) declare(m *match, winner string) {
	m.winner = winner
	if s.store != nil {
		s.store.RecordResult(m.id, winner)
	}
	log.Info().Str("game", m.id).Str("winner", winner).Int("plies", m.ply).Msg("game over")
}
