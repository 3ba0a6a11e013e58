// Package schemas validates and normalizes the semi-structured payloads the
// text generation service returns. The service is only *asked* for a JSON
// shape; everything that arrives is checked here before the session
// controller touches it.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"aethoria-client/models"
)

// sceneResponse mirrors the JSON object the prompt instructs the model to
// return. Decoding into typed fields doubles as type validation: a payload
// with, say, a numeric sceneText fails instead of propagating downstream.
type sceneResponse struct {
	TimeOfDay   string        `json:"timeOfDay,omitempty"`
	SceneText   string        `json:"sceneText"`
	DialogText  string        `json:"dialogText"`
	ImagePrompt string        `json:"imagePrompt,omitempty"`
	Options     []optionEntry `json:"options"`
	Metadata    *metadata     `json:"metadata,omitempty"`
}

type optionEntry struct {
	Text string `json:"text"`
}

type metadata struct {
	DailyRecap *models.DayRecap `json:"dailyRecap,omitempty"`
}

// SceneUpdate is a validated scene transition result. Option texts are not
// yet bound to behavior; the session controller assigns fresh IDs and a
// dispatch entry for each.
type SceneUpdate struct {
	TimeOfDay   models.TimeOfDay // empty when the model did not supply one
	SceneText   string
	DialogText  string
	ImagePrompt string
	OptionTexts []string
	Recap       *models.DayRecap
}

// ParseSceneResponse turns raw model output into a validated SceneUpdate.
// Fenced-code wrappers are tolerated. Any structural problem is reported as
// models.ErrParseFailed; the caller substitutes the fixed error scene and
// leaves the rest of the state untouched.
func ParseSceneResponse(raw string, kind models.TransitionKind) (*SceneUpdate, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", models.ErrParseFailed)
	}

	var resp sceneResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParseFailed, err)
	}

	if strings.TrimSpace(resp.SceneText) == "" {
		return nil, fmt.Errorf("%w: missing sceneText", models.ErrParseFailed)
	}
	if strings.TrimSpace(resp.DialogText) == "" {
		return nil, fmt.Errorf("%w: missing dialogText", models.ErrParseFailed)
	}
	if resp.Options == nil {
		return nil, fmt.Errorf("%w: missing options array", models.ErrParseFailed)
	}

	update := &SceneUpdate{
		SceneText:   resp.SceneText,
		DialogText:  NormalizeDialog(resp.DialogText),
		ImagePrompt: strings.TrimSpace(resp.ImagePrompt),
		OptionTexts: make([]string, 0, len(resp.Options)),
	}

	for i, opt := range resp.Options {
		text := strings.TrimSpace(opt.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: option %d has empty text", models.ErrParseFailed, i+1)
		}
		update.OptionTexts = append(update.OptionTexts, text)
	}

	if resp.TimeOfDay != "" {
		tod, err := models.ParseTimeOfDay(resp.TimeOfDay)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrParseFailed, err)
		}
		update.TimeOfDay = tod
	}

	if kind == models.TransitionSleep {
		if resp.Metadata == nil || resp.Metadata.DailyRecap == nil {
			return nil, fmt.Errorf("%w: sleep response missing metadata.dailyRecap", models.ErrParseFailed)
		}
		update.Recap = resp.Metadata.DailyRecap
	} else if resp.Metadata != nil {
		update.Recap = resp.Metadata.DailyRecap
	}

	return update, nil
}

// StripCodeFences removes a wrapping ``` or ```json fence, tolerating its
// absence.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeDialog enforces the 'Speaker: message' convention the prompt asks
// for but the model cannot be trusted to honor. Dialog without a plausible
// speaker prefix gets a Narrator one prepended rather than being rejected.
func NormalizeDialog(dialog string) string {
	dialog = strings.TrimSpace(dialog)
	idx := strings.Index(dialog, ":")
	if idx > 0 && idx <= maxSpeakerLen {
		return dialog
	}
	return "Narrator: " + dialog
}

// maxSpeakerLen bounds how far into the dialog a speaker prefix may sit; a
// colon beyond this is part of the message, not a speaker.
const maxSpeakerLen = 40
