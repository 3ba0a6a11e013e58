package models

import (
	"fmt"
	"strings"
)

// TimeOfDay is one of the four periods of the in-game day cycle.
type TimeOfDay string

const (
	TimeMorning TimeOfDay = "MORNING"
	TimeNoon    TimeOfDay = "NOON"
	TimeEvening TimeOfDay = "EVENING"
	TimeNight   TimeOfDay = "NIGHT"
)

// ParseTimeOfDay normalizes a model-supplied time-of-day string. The
// instruction set has used both EVENING and DUSK for the third period, so
// DUSK is accepted as an alias.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MORNING":
		return TimeMorning, nil
	case "NOON":
		return TimeNoon, nil
	case "EVENING", "DUSK":
		return TimeEvening, nil
	case "NIGHT":
		return TimeNight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
}

// Next returns the following period and whether the cycle wrapped past NIGHT
// into a new day.
func (t TimeOfDay) Next() (TimeOfDay, bool) {
	switch t {
	case TimeMorning:
		return TimeNoon, false
	case TimeNoon:
		return TimeEvening, false
	case TimeEvening:
		return TimeNight, false
	default:
		return TimeMorning, true
	}
}

// GamePhase is the coarse story-progress state of a session. It only ever
// moves forward: intro -> cottage_built -> exploring.
type GamePhase string

const (
	PhaseIntro        GamePhase = "intro"
	PhaseCottageBuilt GamePhase = "cottage_built"
	PhaseExploring    GamePhase = "exploring"
)

func (p GamePhase) order() int {
	switch p {
	case PhaseIntro:
		return 0
	case PhaseCottageBuilt:
		return 1
	case PhaseExploring:
		return 2
	}
	return -1
}

// CanAdvanceTo reports whether moving from p to next respects the monotonic
// phase order. Staying in place is allowed; skipping or reversing is not.
func (p GamePhase) CanAdvanceTo(next GamePhase) bool {
	from, to := p.order(), next.order()
	if from < 0 || to < 0 {
		return false
	}
	return to == from || to == from+1
}

// SceneOption is a single player choice. Options are pure data; the behavior
// behind an option is resolved by the session controller through its ID at
// dispatch time and is never serialized.
type SceneOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SceneView is the currently displayed narrative unit.
type SceneView struct {
	SceneText  string        `json:"sceneText"`
	DialogText string        `json:"dialogText"`
	SceneImage string        `json:"sceneImage,omitempty"`
	Options    []SceneOption `json:"options"`
}

// DayRecap aggregates a day's essence flow, discoveries and decisions. It is
// present only between a sleep transition and the player dismissing it.
type DayRecap struct {
	DayNumber     int      `json:"dayNumber"`
	EssenceEarned int      `json:"essenceEarned"`
	EssenceSpent  int      `json:"essenceSpent"`
	NewLocations  []string `json:"newLocations"`
	KeyDecisions  []string `json:"keyDecisions"`
	QuestProgress []string `json:"questProgress"`
}

// GameState is the root aggregate of a session. A single instance is owned by
// the session controller and persisted as one serialized blob; presentation
// code never mutates it directly.
type GameState struct {
	TimeOfDay TimeOfDay `json:"timeOfDay"`
	Day       int       `json:"day"`
	Essence   int       `json:"essence"`
	Phase     GamePhase `json:"phase"`
	Scene     SceneView `json:"scene"`
	DayRecap  *DayRecap `json:"dayRecap,omitempty"`
}

// ScenePatch is a merge patch over SceneView. Nil fields are left untouched,
// so a text-only patch never clobbers a concurrently resolved image, and an
// image-only patch never clobbers text, dialog or options. A non-nil Options
// slice replaces the option list wholesale.
type ScenePatch struct {
	SceneText  *string
	DialogText *string
	SceneImage *string
	Options    []SceneOption
}

// WithScene returns a copy of s with the patch merged onto its scene.
// Unspecified fields, notably SceneImage, are preserved.
func (s GameState) WithScene(p ScenePatch) GameState {
	next := s.Clone()
	if p.SceneText != nil {
		next.Scene.SceneText = *p.SceneText
	}
	if p.DialogText != nil {
		next.Scene.DialogText = *p.DialogText
	}
	if p.SceneImage != nil {
		next.Scene.SceneImage = *p.SceneImage
	}
	if p.Options != nil {
		next.Scene.Options = append([]SceneOption(nil), p.Options...)
	}
	return next
}

// SpendEssence debits amount from the balance. The debit is validated first:
// on an insufficient balance the state is left untouched and
// ErrInsufficientEssence is returned.
func (s *GameState) SpendEssence(amount int) error {
	if amount < 0 {
		return fmt.Errorf("negative essence debit: %d", amount)
	}
	if s.Essence < amount {
		return ErrInsufficientEssence
	}
	s.Essence -= amount
	return nil
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	next := s
	next.Scene.Options = append([]SceneOption(nil), s.Scene.Options...)
	if s.DayRecap != nil {
		recap := *s.DayRecap
		recap.NewLocations = append([]string(nil), s.DayRecap.NewLocations...)
		recap.KeyDecisions = append([]string(nil), s.DayRecap.KeyDecisions...)
		recap.QuestProgress = append([]string(nil), s.DayRecap.QuestProgress...)
		next.DayRecap = &recap
	}
	return next
}
