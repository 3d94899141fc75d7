// Package savefile keeps the local mirror of stopped games on disk, one
// <id>.json file per game.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gobblet/internal/core"
)

const ext = ".json"

func path(dir, id string) string {
	return filepath.Join(dir, id+ext)
}

// Save writes the snapshot to <dir>/<id>.json, replacing any earlier save.
func Save(dir string, snap core.GameSnapshot) error {
	if snap.ID == "" || strings.ContainsAny(snap.ID, `/\`) {
		return &core.ValidationError{Field: "id", Err: fmt.Errorf("unusable game id %q", snap.ID)}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, snap.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path(dir, snap.ID))
}

// Load reads the saved snapshot of game id.
func Load(dir, id string) (core.GameSnapshot, error) {
	var snap core.GameSnapshot
	data, err := os.ReadFile(path(dir, id))
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, &core.ValidationError{Field: "save file", Err: err}
	}
	return snap, nil
}

// IDs lists the saved game ids, sorted. A missing directory holds no saves.
func IDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(ids)
	return ids, nil
}

// Filter keeps the games that have a local save, in server order.
func Filter(games []core.GameSummary, ids []string) []core.GameSummary {
	saved := make(map[string]bool, len(ids))
	for _, id := range ids {
		saved[id] = true
	}
	var out []core.GameSummary
	for _, g := range games {
		if saved[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

// Remove deletes the save of game id, if any.
func Remove(dir, id string) error {
	err := os.Remove(path(dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
