package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aethoria-client/lore"
	"aethoria-client/models"
	"aethoria-client/prompt"
	"aethoria-client/schemas"
)

// requestScene is the one pipeline behind every remote transition:
// guard -> prompt -> text call -> parse -> commit -> async image. The kinds
// differ only in their user instruction and in what gets committed, so the
// retry/parse/commit logic exists exactly once.
func (c *Controller) requestScene(ctx context.Context, kind models.TransitionKind, selected *models.SceneOption, customInput string) error {
	log := c.logger.With(zap.String("transition", string(kind)))

	missing, err := c.creds.Missing(ctx)
	if err != nil {
		log.Error("Failed to read credential store", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}
	if len(missing) > 0 {
		log.Info("Transition blocked on missing credentials", zap.Strings("missing", missing))
		c.commitErrorScene(lore.MissingKeySceneText,
			"Narrator: Missing credential(s): "+strings.Join(missing, ", ")+". "+strings.TrimPrefix(lore.MissingKeyDialog, "Narrator: "))
		return models.ErrMissingCredentials
	}

	textKey, err := c.creds.TextAPIKey(ctx)
	if err != nil {
		log.Error("Failed to read text API key", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}
	textGen, err := c.clients.NewTextGenerator(textKey)
	if err != nil {
		log.Error("Failed to construct text service client", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}

	// Snapshot before the transient loading scene so the prompt carries the
	// real last scene, not the placeholders.
	c.mu.Lock()
	snap := c.state.Clone()
	if kind == models.TransitionOptionSelected || kind == models.TransitionCustomInput {
		c.state.Scene.SceneText = lore.LoadingPlaceholder
		c.state.Scene.DialogText = lore.LoadingPlaceholder
		c.state.Scene.Options = []models.SceneOption{}
		c.dispatch = make(map[string]models.SceneOption)
		c.notifyLocked()
	}
	c.mu.Unlock()

	pctx := prompt.Context{
		Phase:     snap.Phase,
		Essence:   snap.Essence,
		TimeOfDay: snap.TimeOfDay,
	}
	if kind == models.TransitionInitialExplore {
		// The prompt describes the state being entered; the phase itself is
		// committed only with a successful scene.
		pctx.Phase = models.PhaseExploring
	} else {
		pctx.LastScene = &snap.Scene
	}

	req, err := c.prompts.Build(kind, pctx, selected, customInput)
	if err != nil {
		log.Error("Failed to build transition prompt", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}

	raw, err := textGen.Complete(ctx, req)
	if err != nil {
		log.Warn("Text service call failed", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}

	update, err := schemas.ParseSceneResponse(raw, kind)
	if err != nil {
		log.Warn("Scene response rejected", zap.Error(err))
		c.commitErrorScene(lore.ConnectionErrorSceneText, lore.ConnectionErrorDialog)
		return err
	}

	// The service returns text only; every option is re-bound to a fresh ID
	// the dispatch table resolves at click time.
	opts := make([]models.SceneOption, 0, len(update.OptionTexts))
	for _, text := range update.OptionTexts {
		opts = append(opts, models.SceneOption{ID: uuid.NewString(), Text: text})
	}

	if kind == models.TransitionSleep {
		c.mu.Lock()
		staged := models.SceneView{
			SceneText:  update.SceneText,
			DialogText: update.DialogText,
			SceneImage: c.state.Scene.SceneImage,
			Options:    opts,
		}
		c.stagedScene = &staged
		c.stagedImage = update.ImagePrompt
		recap := *update.Recap
		c.state.DayRecap = &recap
		c.recapPending = true
		c.commitLocked()
		c.mu.Unlock()
		log.Info("Day recap staged", zap.Int("dayNumber", recap.DayNumber))
		return nil
	}

	c.mu.Lock()
	if kind == models.TransitionInitialExplore {
		c.advancePhaseLocked(models.PhaseExploring)
	}
	if update.TimeOfDay != "" {
		c.state.TimeOfDay = update.TimeOfDay
	}
	c.state.Scene = models.SceneView{
		SceneText:  update.SceneText,
		DialogText: update.DialogText,
		SceneImage: snap.Scene.SceneImage,
		Options:    opts,
	}
	c.rebindOptionsLocked()
	c.generation++
	gen := c.generation
	c.commitLocked()
	c.mu.Unlock()

	log.Info("Scene committed",
		zap.Int("options", len(opts)),
		zap.Bool("hasImagePrompt", update.ImagePrompt != ""))

	if update.ImagePrompt != "" {
		c.startImageFetch(gen, update.ImagePrompt)
	}
	return nil
}

// commitErrorScene replaces only the displayed scene with a fixed
// explanatory one. Essence, phase, day and time are untouched and the
// previous image is preserved, so the player can fix the problem and retry.
func (c *Controller) commitErrorScene(sceneText, dialogText string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Scene.SceneText = sceneText
	c.state.Scene.DialogText = dialogText
	c.state.Scene.Options = []models.SceneOption{}
	c.dispatch = make(map[string]models.SceneOption)
	c.commitLocked()
}

// startImageFetch resolves an image prompt in the background. The scene
// generation captured at commit time gates the patch: a result arriving
// after a newer scene commit is discarded, and any failure leaves the
// previous image in place. The narrative never waits for this.
func (c *Controller) startImageFetch(gen uint64, imagePrompt string) {
	go func() {
		imageKey, err := c.creds.ImageAPIKey(context.Background())
		if err != nil || imageKey == "" {
			c.logger.Warn("Skipping image fetch, image key unavailable", zap.Error(err))
			return
		}

		sample, err := c.clients.NewImageGenerator(imageKey).Generate(context.Background(), imagePrompt)
		if err != nil {
			c.logger.Warn("Image fetch failed, keeping previous scene image", zap.Error(err))
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			c.logger.Debug("Discarding stale image result", zap.Uint64("generation", gen))
			return
		}
		c.state.Scene.SceneImage = sample
		c.commitLocked()
	}()
}
