package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gobblet/internal/server/storage"

	"github.com/lixenwraith/auth"
)

// MinSecretLen matches the hashing library's own minimum.
const MinSecretLen = 8

var ErrWeakSecret = fmt.Errorf("secret must be at least %d characters", MinSecretLen)

// padHash is verified against for unknown names so they cost as much as a
// wrong secret.
var padHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("gobblet-unknown-player")
	return h
})

// Authenticate checks a basic-auth pair against the stored secret hash.
// Without storage every non-empty name is accepted.
func (s *Service) Authenticate(name, secret string) error {
	if name == "" {
		return ErrBadCredentials
	}
	if s.store == nil {
		return nil
	}

	p, err := s.store.GetPlayer(name)
	if err != nil {
		if errors.Is(err, storage.ErrPlayerNotFound) {
			auth.VerifyPassword(secret, padHash())
			return ErrBadCredentials
		}
		return fmt.Errorf("lookup player: %w", err)
	}
	if err := auth.VerifyPassword(secret, p.SecretHash); err != nil {
		return ErrBadCredentials
	}
	s.store.TouchPlayer(p.Name, time.Now().UTC())
	return nil
}

// HashSecret checks the secret length and returns its PHC hash.
func HashSecret(secret string) (string, error) {
	if len(secret) < MinSecretLen {
		return "", ErrWeakSecret
	}
	h, err := auth.HashPassword(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return h, nil
}

// RegisterPlayer stores a new player with a hashed secret.
func (s *Service) RegisterPlayer(name, secret string) error {
	hash, err := HashSecret(secret)
	if err != nil {
		return err
	}
	return s.addPlayer(name, hash)
}

// ImportPlayer stores a new player from a pre-computed PHC hash.
func (s *Service) ImportPlayer(name, phcHash string) error {
	if err := auth.ValidatePHCHashFormat(phcHash); err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	return s.addPlayer(name, phcHash)
}

func (s *Service) addPlayer(name, hash string) error {
	if s.store == nil {
		return fmt.Errorf("storage disabled")
	}
	if name == "" {
		return fmt.Errorf("player name required")
	}
	return s.store.CreatePlayer(storage.PlayerRecord{
		Name:       name,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	})
}
