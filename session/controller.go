// Package session owns the scene/session state machine: phase transitions,
// essence bookkeeping, the day/night cycle and day recaps. It is the only
// component that mutates the GameState; the host reads snapshots and calls
// transition methods.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"aethoria-client/models"
	"aethoria-client/prompt"
	"aethoria-client/storage"
)

// Params collects the controller dependencies.
type Params struct {
	Prompts     *prompt.Builder
	Clients     Clients
	Credentials *storage.CredentialStore
	States      *storage.StateStore // nil disables persistence
	Logger      *zap.Logger
	Callbacks   Callbacks
}

// Controller is the session state machine. All mutation entry points take
// the controller mutex, so exactly one transition mutates the shared state
// at a time; the only concurrent writer is the background image patch, which
// also goes through the mutex and is discarded when stale.
type Controller struct {
	mu           sync.Mutex
	state        models.GameState
	generation uint64
	// recapPending locks out every transition except DismissRecap while the
	// staged morning scene awaits the player.
	recapPending bool
	stagedScene  *models.SceneView
	stagedImage  string // image prompt staged with the morning scene
	dispatch     map[string]models.SceneOption

	prompts   *prompt.Builder
	clients   Clients
	creds     *storage.CredentialStore
	states    *storage.StateStore
	logger    *zap.Logger
	callbacks Callbacks
	onChange  func(models.GameState)
}

// New builds a controller, resuming the last persisted snapshot when one
// exists and falling back to the intro configuration otherwise.
func New(ctx context.Context, p Params) (*Controller, error) {
	if p.Prompts == nil {
		return nil, errors.New("session: prompt builder is required")
	}
	if p.Clients.NewTextGenerator == nil || p.Clients.NewImageGenerator == nil {
		return nil, errors.New("session: remote client constructors are required")
	}
	if p.Credentials == nil {
		return nil, errors.New("session: credential store is required")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	c := &Controller{
		state:     models.NewGameState(),
		dispatch:  make(map[string]models.SceneOption),
		prompts:   p.Prompts,
		clients:   p.Clients,
		creds:     p.Credentials,
		states:    p.States,
		logger:    p.Logger,
		callbacks: p.Callbacks,
	}

	if p.States != nil {
		saved, found, err := p.States.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if found {
			c.state = saved
			c.rebindOptionsLocked()
			c.logger.Info("Resumed game state from snapshot",
				zap.String("phase", string(saved.Phase)),
				zap.Int("day", saved.Day),
				zap.Int("essence", saved.Essence))
		}
	}

	return c, nil
}

// OnChange registers a host hook called with a state snapshot after every
// visible change. The hook runs synchronously and must not call back into
// the controller.
func (c *Controller) OnChange(fn func(models.GameState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns a snapshot of the current game state.
func (c *Controller) State() models.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// RecapPending reports whether a day recap is awaiting dismissal.
func (c *Controller) RecapPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recapPending
}

// ApplyPatch merges a scene patch onto the current state. This is the
// host-facing setter; it does not invalidate in-flight image requests.
func (c *Controller) ApplyPatch(p models.ScenePatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.WithScene(p)
	if p.Options != nil {
		c.rebindOptionsLocked()
	}
	c.commitLocked()
}

// NewGame discards all progress and returns to the intro configuration. The
// persisted slot is dropped first so a discarded session cannot outlive this
// call even if the fresh snapshot fails to save.
func (c *Controller) NewGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states != nil {
		if err := c.states.Reset(context.Background()); err != nil {
			c.logger.Warn("Failed to drop previous game snapshot", zap.Error(err))
		}
	}
	c.state = models.NewGameState()
	c.recapPending = false
	c.stagedScene = nil
	c.stagedImage = ""
	c.dispatch = make(map[string]models.SceneOption)
	c.generation++
	c.commitLocked()
	c.logger.Info("New game started")
}

// Exit invokes the host's exit navigation callback.
func (c *Controller) Exit() {
	if c.callbacks.OnExit != nil {
		c.callbacks.OnExit()
	}
}

// OpenSettings invokes the host's settings navigation callback.
func (c *Controller) OpenSettings() {
	if c.callbacks.OnSettings != nil {
		c.callbacks.OnSettings()
	}
}

// advancePhaseLocked moves the phase forward. Transitions guard the current
// phase before calling this, so a regression here is a bug; it is logged and
// refused rather than corrupting the state.
func (c *Controller) advancePhaseLocked(next models.GamePhase) {
	if !c.state.Phase.CanAdvanceTo(next) {
		c.logger.Error("Refusing phase regression",
			zap.String("from", string(c.state.Phase)),
			zap.String("to", string(next)))
		return
	}
	c.state.Phase = next
}

// rebindOptionsLocked rebuilds the dispatch table from the current option
// list. Loaded snapshots keep their persisted IDs; behavior is re-bound, not
// restored.
func (c *Controller) rebindOptionsLocked() {
	c.dispatch = make(map[string]models.SceneOption, len(c.state.Scene.Options))
	for _, opt := range c.state.Scene.Options {
		c.dispatch[opt.ID] = opt
	}
}

// commitLocked persists the state snapshot and notifies the host. Must be
// called with the mutex held.
func (c *Controller) commitLocked() {
	if c.states != nil {
		if err := c.states.Save(context.Background(), c.state); err != nil {
			c.logger.Warn("Failed to persist game state snapshot", zap.Error(err))
		}
	}
	c.notifyLocked()
}

// notifyLocked pushes a snapshot to the host without persisting, for
// transient states like the loading scene.
func (c *Controller) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.state.Clone())
	}
}
