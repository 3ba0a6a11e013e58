package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"aethoria-client/lore"
	"aethoria-client/models"
)

// Nurture spends essence on the intro flower and grows it into the cottage.
// An insufficient balance is a complete no-op: no phase change, no debit.
func (c *Controller) Nurture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != models.PhaseIntro {
		return models.ErrInvalidTransition
	}
	if err := c.state.SpendEssence(lore.IntroScene.NurtureCost); err != nil {
		c.logger.Info("Nurture rejected",
			zap.Int("essence", c.state.Essence),
			zap.Int("cost", lore.IntroScene.NurtureCost))
		return err
	}

	c.advancePhaseLocked(models.PhaseCottageBuilt)
	c.state.TimeOfDay = models.TimeNight
	c.state.Scene = models.SceneView{
		SceneText:  lore.IntroScene.GrowthText,
		DialogText: lore.GrowthDialog,
		Options:    []models.SceneOption{},
	}
	c.dispatch = make(map[string]models.SceneOption)
	c.generation++
	c.commitLocked()
	c.logger.Info("Cottage built", zap.Int("essence", c.state.Essence))
	return nil
}

// Explore requests the first generated scene. The exploring phase is
// committed together with the scene, so a failed call leaves the player in
// cottage_built and able to retry.
func (c *Controller) Explore(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != models.PhaseCottageBuilt || c.recapPending {
		c.mu.Unlock()
		return models.ErrInvalidTransition
	}
	c.mu.Unlock()

	return c.requestScene(ctx, models.TransitionInitialExplore, nil, "")
}

// SelectOption dispatches a displayed choice by ID. An unknown ID is inert:
// it renders, it does nothing, it never crashes.
func (c *Controller) SelectOption(ctx context.Context, optionID string) error {
	c.mu.Lock()
	if c.state.Phase != models.PhaseExploring || c.recapPending {
		c.mu.Unlock()
		return models.ErrInvalidTransition
	}
	opt, ok := c.dispatch[optionID]
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("Ignoring unknown option ID", zap.String("optionID", optionID))
		return nil
	}

	return c.requestScene(ctx, models.TransitionOptionSelected, &opt, "")
}

// SubmitCustomInput continues the story from free-form player text.
func (c *Controller) SubmitCustomInput(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.ErrEmptyInput
	}

	c.mu.Lock()
	if c.state.Phase != models.PhaseExploring || c.recapPending {
		c.mu.Unlock()
		return models.ErrInvalidTransition
	}
	c.mu.Unlock()

	return c.requestScene(ctx, models.TransitionCustomInput, nil, input)
}

// Sleep ends the day. The response must carry a daily recap; the next
// morning's scene is staged but not shown until the recap is dismissed.
func (c *Controller) Sleep(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != models.PhaseExploring || c.state.TimeOfDay != models.TimeNight || c.recapPending {
		c.mu.Unlock()
		return models.ErrInvalidTransition
	}
	c.mu.Unlock()

	return c.requestScene(ctx, models.TransitionSleep, nil, "")
}

// DismissRecap commits the staged morning scene: day advances by exactly
// one, time wraps to MORNING and the recap clears.
func (c *Controller) DismissRecap() error {
	c.mu.Lock()
	if !c.recapPending || c.stagedScene == nil {
		c.mu.Unlock()
		return models.ErrNoRecapPending
	}

	c.state.Scene = *c.stagedScene
	// Sleep is only reachable at NIGHT, so the cycle always wraps here and
	// the day advances by exactly one.
	next, wrapped := c.state.TimeOfDay.Next()
	c.state.TimeOfDay = next
	if wrapped {
		c.state.Day++
	}
	c.state.DayRecap = nil
	c.recapPending = false
	c.stagedScene = nil
	imagePrompt := c.stagedImage
	c.stagedImage = ""
	c.rebindOptionsLocked()
	c.generation++
	gen := c.generation
	c.commitLocked()
	day := c.state.Day
	c.mu.Unlock()

	c.logger.Info("Day recap dismissed", zap.Int("day", day))
	if imagePrompt != "" {
		c.startImageFetch(gen, imagePrompt)
	}
	return nil
}
