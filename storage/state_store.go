package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"aethoria-client/models"
)

// StateStore persists the entire GameState as one serialized blob in a
// single named slot. "Load game" means resuming this slot.
type StateStore struct {
	kv     KeyValueStore
	slot   string
	logger *zap.Logger
}

// NewStateStore wraps a key-value store with a save slot key.
func NewStateStore(kv KeyValueStore, slot string, logger *zap.Logger) *StateStore {
	if slot == "" {
		slot = "game_state"
	}
	return &StateStore{kv: kv, slot: slot, logger: logger}
}

// Save snapshots the state into the slot.
func (s *StateStore) Save(ctx context.Context, state models.GameState) error {
	blob, err := state.Marshal()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.slot, blob); err != nil {
		return fmt.Errorf("failed to persist game state: %w", err)
	}
	return nil
}

// Load restores the slot. found is false when no snapshot exists yet; the
// caller falls back to the initial state.
func (s *StateStore) Load(ctx context.Context) (state models.GameState, found bool, err error) {
	blob, err := s.kv.Get(ctx, s.slot)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.GameState{}, false, nil
		}
		return models.GameState{}, false, fmt.Errorf("failed to load game state: %w", err)
	}
	state, err = models.UnmarshalGameState(blob)
	if err != nil {
		// A corrupt snapshot should not brick the game; report it as absent.
		s.logger.Warn("Discarding unreadable game state snapshot", zap.Error(err))
		return models.GameState{}, false, nil
	}
	return state, true, nil
}

// Reset drops the slot.
func (s *StateStore) Reset(ctx context.Context) error {
	return s.kv.Delete(ctx, s.slot)
}
