package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aethoria-client/lore"
	"aethoria-client/models"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("Canonical values", func(t *testing.T) {
		for raw, want := range map[string]models.TimeOfDay{
			"MORNING": models.TimeMorning,
			"NOON":    models.TimeNoon,
			"EVENING": models.TimeEvening,
			"NIGHT":   models.TimeNight,
		} {
			got, err := models.ParseTimeOfDay(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got)
		}
	})

	t.Run("DUSK aliases EVENING", func(t *testing.T) {
		got, err := models.ParseTimeOfDay("DUSK")
		require.NoError(t, err)
		assert.Equal(t, models.TimeEvening, got)
	})

	t.Run("Case and whitespace tolerated", func(t *testing.T) {
		got, err := models.ParseTimeOfDay("  night ")
		require.NoError(t, err)
		assert.Equal(t, models.TimeNight, got)
	})

	t.Run("Unknown value rejected", func(t *testing.T) {
		_, err := models.ParseTimeOfDay("MIDNIGHT")
		assert.ErrorIs(t, err, models.ErrInvalidTimeOfDay)
	})
}

func TestTimeOfDayNext(t *testing.T) {
	tod := models.TimeMorning
	var wrapped bool

	tod, wrapped = tod.Next()
	assert.Equal(t, models.TimeNoon, tod)
	assert.False(t, wrapped)

	tod, wrapped = tod.Next()
	assert.Equal(t, models.TimeEvening, tod)
	assert.False(t, wrapped)

	tod, wrapped = tod.Next()
	assert.Equal(t, models.TimeNight, tod)
	assert.False(t, wrapped)

	tod, wrapped = tod.Next()
	assert.Equal(t, models.TimeMorning, tod)
	assert.True(t, wrapped, "leaving NIGHT must report a day wrap")
}

func TestGamePhaseCanAdvanceTo(t *testing.T) {
	assert.True(t, models.PhaseIntro.CanAdvanceTo(models.PhaseCottageBuilt))
	assert.True(t, models.PhaseCottageBuilt.CanAdvanceTo(models.PhaseExploring))
	assert.True(t, models.PhaseExploring.CanAdvanceTo(models.PhaseExploring))

	assert.False(t, models.PhaseIntro.CanAdvanceTo(models.PhaseExploring), "skipping a phase")
	assert.False(t, models.PhaseExploring.CanAdvanceTo(models.PhaseIntro), "reversing")
	assert.False(t, models.PhaseCottageBuilt.CanAdvanceTo(models.PhaseIntro), "reversing")
	assert.False(t, models.PhaseIntro.CanAdvanceTo(models.GamePhase("finale")), "unknown phase")
}

func TestSpendEssence(t *testing.T) {
	t.Run("Debit within balance", func(t *testing.T) {
		s := models.GameState{Essence: 220}
		require.NoError(t, s.SpendEssence(200))
		assert.Equal(t, 20, s.Essence)
	})

	t.Run("Insufficient balance is a no-op", func(t *testing.T) {
		s := models.GameState{Essence: 150}
		err := s.SpendEssence(200)
		assert.ErrorIs(t, err, models.ErrInsufficientEssence)
		assert.Equal(t, 150, s.Essence, "balance must be untouched by a rejected debit")
	})

	t.Run("Exact balance allowed", func(t *testing.T) {
		s := models.GameState{Essence: 200}
		require.NoError(t, s.SpendEssence(200))
		assert.Equal(t, 0, s.Essence)
	})

	t.Run("Negative amount rejected", func(t *testing.T) {
		s := models.GameState{Essence: 100}
		assert.Error(t, s.SpendEssence(-5))
		assert.Equal(t, 100, s.Essence)
	})
}

func TestWithScene(t *testing.T) {
	base := models.GameState{
		Scene: models.SceneView{
			SceneText:  "old scene",
			DialogText: "Narrator: old dialog",
			SceneImage: "https://img.example/old.jpg",
			Options:    []models.SceneOption{{ID: "a", Text: "Go north"}},
		},
	}

	t.Run("Text patch preserves image", func(t *testing.T) {
		text := "new scene"
		dialog := "Eve: hello"
		next := base.WithScene(models.ScenePatch{
			SceneText:  &text,
			DialogText: &dialog,
			Options:    []models.SceneOption{},
		})

		assert.Equal(t, "new scene", next.Scene.SceneText)
		assert.Equal(t, "Eve: hello", next.Scene.DialogText)
		assert.Equal(t, "https://img.example/old.jpg", next.Scene.SceneImage)
		assert.Empty(t, next.Scene.Options)
	})

	t.Run("Image patch preserves text and options", func(t *testing.T) {
		img := "https://img.example/new.jpg"
		next := base.WithScene(models.ScenePatch{SceneImage: &img})

		assert.Equal(t, "old scene", next.Scene.SceneText)
		assert.Equal(t, "Narrator: old dialog", next.Scene.DialogText)
		assert.Equal(t, "https://img.example/new.jpg", next.Scene.SceneImage)
		assert.Equal(t, base.Scene.Options, next.Scene.Options)
	})

	t.Run("Original untouched", func(t *testing.T) {
		img := "https://img.example/new.jpg"
		_ = base.WithScene(models.ScenePatch{SceneImage: &img})
		assert.Equal(t, "https://img.example/old.jpg", base.Scene.SceneImage)
	})
}

func TestCloneIsDeep(t *testing.T) {
	s := models.GameState{
		Scene: models.SceneView{
			Options: []models.SceneOption{{ID: "a", Text: "one"}},
		},
		DayRecap: &models.DayRecap{DayNumber: 3, NewLocations: []string{"grove"}},
	}

	c := s.Clone()
	c.Scene.Options[0].Text = "changed"
	c.DayRecap.NewLocations[0] = "changed"
	c.DayRecap.DayNumber = 9

	assert.Equal(t, "one", s.Scene.Options[0].Text)
	assert.Equal(t, "grove", s.DayRecap.NewLocations[0])
	assert.Equal(t, 3, s.DayRecap.DayNumber)
}

func TestNewGameState(t *testing.T) {
	s := models.NewGameState()

	assert.Equal(t, models.TimeMorning, s.TimeOfDay)
	assert.Equal(t, 1, s.Day)
	assert.Equal(t, lore.GameRules.Essence.Start, s.Essence)
	assert.Equal(t, models.PhaseIntro, s.Phase)
	assert.Equal(t, lore.IntroScene.Context, s.Scene.SceneText)
	assert.NotNil(t, s.Scene.Options)
	assert.Empty(t, s.Scene.Options)
	assert.Nil(t, s.DayRecap)
}

func TestGameStateRoundTrip(t *testing.T) {
	s := models.GameState{
		TimeOfDay: models.TimeEvening,
		Day:       4,
		Essence:   75,
		Phase:     models.PhaseExploring,
		Scene: models.SceneView{
			SceneText:  "A glade at dusk.",
			DialogText: "Narrator: the light fades.",
			SceneImage: "https://img.example/glade.jpg",
			Options:    []models.SceneOption{{ID: "x", Text: "Rest"}, {ID: "y", Text: "Press on"}},
		},
		DayRecap: &models.DayRecap{DayNumber: 4, EssenceEarned: 30, EssenceSpent: 10},
	}

	blob, err := s.Marshal()
	require.NoError(t, err)

	got, err := models.UnmarshalGameState(blob)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUnmarshalGameState(t *testing.T) {
	t.Run("Nil options normalized", func(t *testing.T) {
		got, err := models.UnmarshalGameState(`{"timeOfDay":"MORNING","day":1,"essence":220,"phase":"intro","scene":{"sceneText":"a","dialogText":"b"}}`)
		require.NoError(t, err)
		assert.NotNil(t, got.Scene.Options)
		assert.Empty(t, got.Scene.Options)
	})

	t.Run("Garbage rejected", func(t *testing.T) {
		_, err := models.UnmarshalGameState("not json")
		assert.Error(t, err)
	})
}
