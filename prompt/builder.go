// Package prompt turns game state plus player intent into the two chat
// messages the text generation service expects: a system message carrying the
// serialized game context and static narrative instructions, and a user
// message carrying the transition-specific instruction together with the
// required JSON response shape.
package prompt

import (
	"encoding/json"
	"fmt"

	"aethoria-client/lore"
	"aethoria-client/models"
)

// sceneShape describes the JSON object every transition demands back.
const sceneShape = "{ timeOfDay: string, sceneText: string (2-3 sentences describing the scene and atmosphere), dialogText: string (must start with 'Speaker: ' followed by the message), imagePrompt: string (a detailed prompt for generating an image of the scene), options: Array<{ text: string }> }"

// recapShape extends sceneShape with the daily recap metadata required by the
// sleep transition.
const recapShape = "{ timeOfDay: \"MORNING\", sceneText: string (2-3 sentences describing the next morning), dialogText: string (must start with 'Speaker: '), imagePrompt: string, options: Array<{ text: string }>, metadata: { dailyRecap: { dayNumber: number, essenceEarned: number, essenceSpent: number, newLocations: string[], keyDecisions: string[], questProgress: string[] } } }"

// Context is the state snapshot serialized into the system message.
type Context struct {
	Phase     models.GamePhase  `json:"phase"`
	Essence   int               `json:"essence"`
	TimeOfDay models.TimeOfDay  `json:"timeOfDay"`
	LastScene *models.SceneView `json:"lastScene,omitempty"`
}

// Request carries the two messages of one transition prompt.
type Request struct {
	System string
	User   string
}

// loreBlock is the static slice of the world serialized as "gameLore".
type loreBlock struct {
	World         lore.World          `json:"world"`
	Rules         lore.Rules          `json:"rules"`
	CottageStages []lore.CottageStage `json:"cottageStages"`
}

type systemPayload struct {
	CurrentState   Context             `json:"currentState"`
	GameLore       loreBlock           `json:"gameLore"`
	Instructions   lore.Instructions   `json:"instructions"`
	SelectedOption *models.SceneOption `json:"selectedOption,omitempty"`
}

// Builder produces transition prompts. Building a prompt has no side effects
// and cannot fail beyond marshalling its own structs.
type Builder struct {
	lore         loreBlock
	instructions lore.Instructions
	tokenBudget  int
	counter      tokenCounter
}

// NewBuilder creates a Builder. tokenBudget caps the combined prompt size;
// when exceeded, the serialized last scene is dropped from the context. A
// budget of zero disables the cap.
func NewBuilder(tokenBudget int) *Builder {
	return &Builder{
		lore: loreBlock{
			World:         lore.WorldSetting,
			Rules:         lore.GameRules,
			CottageStages: lore.CottageStages,
		},
		instructions: lore.ModelInstructions(),
		tokenBudget:  tokenBudget,
		counter:      newTokenCounter(),
	}
}

// Build assembles the prompt for one transition. selected must be set for
// option transitions and customInput for free-text transitions; both are
// ignored otherwise.
func (b *Builder) Build(kind models.TransitionKind, sctx Context, selected *models.SceneOption, customInput string) (Request, error) {
	user, err := userInstruction(kind, selected, customInput)
	if err != nil {
		return Request{}, err
	}

	payload := systemPayload{
		CurrentState: sctx,
		GameLore:     b.lore,
		Instructions: b.instructions,
	}
	if kind == models.TransitionOptionSelected {
		payload.SelectedOption = selected
	}

	system, err := marshalSystem(payload)
	if err != nil {
		return Request{}, err
	}

	// The last scene is context, not contract: drop it rather than blow the
	// token budget.
	if b.tokenBudget > 0 && sctx.LastScene != nil {
		if b.counter.count(system)+b.counter.count(user) > b.tokenBudget {
			payload.CurrentState.LastScene = nil
			if system, err = marshalSystem(payload); err != nil {
				return Request{}, err
			}
		}
	}

	return Request{System: system, User: user}, nil
}

func marshalSystem(payload systemPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize prompt context: %w", err)
	}
	return string(data), nil
}

func userInstruction(kind models.TransitionKind, selected *models.SceneOption, customInput string) (string, error) {
	switch kind {
	case models.TransitionInitialExplore:
		return "The player has just grown their cottage from a magical flower and clicked 'Explore your new home'. This is their first interaction with the game world. Please provide the next scene in JSON format with the following structure: " + sceneShape, nil
	case models.TransitionOptionSelected:
		if selected == nil {
			return "", fmt.Errorf("option transition requires a selected option")
		}
		return fmt.Sprintf("The player has selected: %q. Please provide the next scene in JSON format with the following structure: %s", selected.Text, sceneShape), nil
	case models.TransitionCustomInput:
		return fmt.Sprintf("The player says: %q. Continue the story from this free-form input. Please provide the next scene in JSON format with the following structure: %s", customInput, sceneShape), nil
	case models.TransitionSleep:
		return "The player settles in to sleep for the night. Summarize the day that just ended and describe the next morning. Please respond in JSON format with the following structure: " + recapShape, nil
	}
	return "", fmt.Errorf("unknown transition kind %q", kind)
}
