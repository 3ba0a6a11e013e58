package models

import (
	"encoding/json"
	"fmt"

	"aethoria-client/lore"
)

// NewGameState returns the fixed intro configuration: starting essence, the
// intro scene text and an empty option list. The intro phase renders its own
// nurture action, so no options are bound here.
func NewGameState() GameState {
	return GameState{
		TimeOfDay: TimeMorning,
		Day:       1,
		Essence:   lore.GameRules.Essence.Start,
		Phase:     PhaseIntro,
		Scene: SceneView{
			SceneText:  lore.IntroScene.Context,
			DialogText: lore.IntroScene.PlantDescription,
			Options:    []SceneOption{},
		},
	}
}

// Marshal serializes the state into the single persisted blob. Option
// entries are persisted as {id, text} only; the behavior behind an option is
// re-bound by the session controller after loading.
func (s GameState) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game state: %w", err)
	}
	return string(data), nil
}

// UnmarshalGameState restores a state persisted with Marshal.
func UnmarshalGameState(raw string) (GameState, error) {
	var s GameState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return GameState{}, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	if s.Scene.Options == nil {
		s.Scene.Options = []SceneOption{}
	}
	return s, nil
}
