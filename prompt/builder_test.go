package prompt_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aethoria-client/models"
	"aethoria-client/prompt"
)

func decodeSystem(t *testing.T, system string) map[string]json.RawMessage {
	t.Helper()
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(system), &payload))
	return payload
}

func TestBuildInitialExplore(t *testing.T) {
	b := prompt.NewBuilder(0)

	req, err := b.Build(models.TransitionInitialExplore, prompt.Context{
		Phase:     models.PhaseExploring,
		Essence:   20,
		TimeOfDay: models.TimeNight,
	}, nil, "")
	require.NoError(t, err)

	payload := decodeSystem(t, req.System)
	assert.Contains(t, payload, "currentState")
	assert.Contains(t, payload, "gameLore")
	assert.Contains(t, payload, "instructions")
	assert.NotContains(t, payload, "selectedOption")

	assert.Contains(t, req.User, "Explore your new home")
	assert.Contains(t, req.User, "JSON format")
}

func TestBuildOptionSelected(t *testing.T) {
	b := prompt.NewBuilder(0)
	sctx := prompt.Context{
		Phase:     models.PhaseExploring,
		Essence:   20,
		TimeOfDay: models.TimeNoon,
		LastScene: &models.SceneView{SceneText: "A quiet glade."},
	}

	t.Run("Selected option serialized", func(t *testing.T) {
		opt := &models.SceneOption{ID: "opt-1", Text: "Follow the fox"}
		req, err := b.Build(models.TransitionOptionSelected, sctx, opt, "")
		require.NoError(t, err)

		payload := decodeSystem(t, req.System)
		var got models.SceneOption
		require.NoError(t, json.Unmarshal(payload["selectedOption"], &got))
		assert.Equal(t, *opt, got)

		assert.Contains(t, req.User, `"Follow the fox"`)
	})

	t.Run("Nil option rejected", func(t *testing.T) {
		_, err := b.Build(models.TransitionOptionSelected, sctx, nil, "")
		assert.Error(t, err)
	})
}

func TestBuildCustomInput(t *testing.T) {
	b := prompt.NewBuilder(0)

	req, err := b.Build(models.TransitionCustomInput, prompt.Context{
		Phase:     models.PhaseExploring,
		TimeOfDay: models.TimeEvening,
	}, nil, "I climb the old oak to look around")
	require.NoError(t, err)

	assert.Contains(t, req.User, `"I climb the old oak to look around"`)
	payload := decodeSystem(t, req.System)
	assert.NotContains(t, payload, "selectedOption")
}

func TestBuildSleep(t *testing.T) {
	b := prompt.NewBuilder(0)

	req, err := b.Build(models.TransitionSleep, prompt.Context{
		Phase:     models.PhaseExploring,
		TimeOfDay: models.TimeNight,
	}, nil, "")
	require.NoError(t, err)

	assert.Contains(t, req.User, "sleep")
	assert.Contains(t, req.User, "dailyRecap")
}

func TestBuildUnknownKind(t *testing.T) {
	b := prompt.NewBuilder(0)
	_, err := b.Build(models.TransitionKind("teleport"), prompt.Context{}, nil, "")
	assert.Error(t, err)
}

func TestBuildTokenBudget(t *testing.T) {
	last := &models.SceneView{
		SceneText:  strings.Repeat("a very long scene description ", 200),
		DialogText: "Narrator: long",
	}
	sctx := prompt.Context{
		Phase:     models.PhaseExploring,
		Essence:   50,
		TimeOfDay: models.TimeNoon,
		LastScene: last,
	}

	t.Run("Over budget drops last scene", func(t *testing.T) {
		b := prompt.NewBuilder(100)
		req, err := b.Build(models.TransitionCustomInput, sctx, nil, "look around")
		require.NoError(t, err)

		payload := decodeSystem(t, req.System)
		var state map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(payload["currentState"], &state))
		assert.NotContains(t, state, "lastScene")
	})

	t.Run("Within budget keeps last scene", func(t *testing.T) {
		b := prompt.NewBuilder(100000)
		req, err := b.Build(models.TransitionCustomInput, sctx, nil, "look around")
		require.NoError(t, err)

		payload := decodeSystem(t, req.System)
		var state map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(payload["currentState"], &state))
		assert.Contains(t, state, "lastScene")
	})

	t.Run("Zero budget disables the cap", func(t *testing.T) {
		b := prompt.NewBuilder(0)
		req, err := b.Build(models.TransitionCustomInput, sctx, nil, "look around")
		require.NoError(t, err)

		payload := decodeSystem(t, req.System)
		var state map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(payload["currentState"], &state))
		assert.Contains(t, state, "lastScene")
	})
}
