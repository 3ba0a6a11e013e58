// Package lore holds the static world, rule and instruction configuration
// that is serialized into every text-service prompt. Nothing here has
// behavior; the values are fixed at build time.
package lore

// World describes the realm the narrative takes place in.
type World struct {
	Name        string `json:"name"`
	Era         string `json:"era"`
	Description string `json:"description"`
}

// WorldSetting is the fixed realm of the game.
var WorldSetting = World{
	Name:        "Aethoria",
	Era:         "Age of Convergence",
	Description: "A realm where magic meets technology, existing in perpetual twilight. Time is malleable, and reality shifts between dimensions, creating endless possibilities for discovery.",
}

// EssenceRules governs the spendable essence resource.
type EssenceRules struct {
	Start        int `json:"start"`
	MinTrade     int `json:"min_trade"`
	DailyChances int `json:"daily_chances"`
}

// TimeRules governs the day cycle, in in-game hours.
type TimeRules struct {
	DayHours        int `json:"day"`
	PeriodHours     int `json:"period"`
	TransitionHours int `json:"transition"`
}

// Rules is the machine-readable slice of the lore that travels with every
// system prompt as "gameLore".
type Rules struct {
	Essence EssenceRules `json:"essence"`
	Time    TimeRules    `json:"time"`
}

// GameRules are the fixed gameplay numbers.
var GameRules = Rules{
	Essence: EssenceRules{Start: 220, MinTrade: 5, DailyChances: 10},
	Time:    TimeRules{DayHours: 24, PeriodHours: 6, TransitionHours: 1},
}

// CottageStage is one upgrade tier of the player's dwelling.
type CottageStage struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Cost     int      `json:"cost"`
}

// CottageStages lists the dwelling tiers in upgrade order.
var CottageStages = []CottageStage{
	{Name: "Twilight Cottage", Features: []string{"Basic storage", "Crafting", "Small garden"}, Cost: 1000},
	{Name: "Mystic Lodge", Features: []string{"Essence refinery", "Workshop", "Moon garden", "Library"}, Cost: 5000},
	{Name: "Ethereal Manor", Features: []string{"Reality garden", "Lab", "Portal nexus", "Star study"}, Cost: 15000},
	{Name: "Convergence Estate", Features: []string{"Time rooms", "Dimension greenhouse", "Teleport net", "Adaptive spaces"}, Cost: 50000},
}

// IntroScene is the fixed opening configuration. The nurture cost is the one
// essence debit the intro phase can make.
var IntroScene = struct {
	Context          string
	PlantDescription string
	GrowthText       string
	NurtureCost      int
	NurtureButton    string
}{
	Context:          "Deep in the mystical woods, you've discovered something extraordinary - a flower unlike any you've seen before. Its petals shimmer with an otherworldly essence, resonating with the magic you carry within.",
	PlantDescription: "The flower seems to respond to your essence. Perhaps with enough energy, it could grow into something more...",
	GrowthText:       "As you channel your essence into the flower, it begins to grow and transform. The stem thickens into walls of living bark, branches weave together to form a roof, and leaves unfold into windows. Before your eyes, a small but cozy cottage takes shape, your very own home in these magical woods.",
	NurtureCost:      200,
	NurtureButton:    "(-200 ⟠) Nurture the plant",
}

// Instructions is the static narrative-style instruction block sent to the
// text model as "instructions". The model controls time of day through the
// narrative; the client only validates and applies what comes back.
type Instructions struct {
	TimeControl struct {
		Description string   `json:"description"`
		States      []string `json:"states"`
	} `json:"timeControl"`
	SceneFormat struct {
		SceneText  string `json:"sceneText"`
		DialogText string `json:"dialogText"`
		Options    string `json:"options"`
	} `json:"sceneFormat"`
	NarrativeStyle struct {
		Tone        string `json:"tone"`
		Pacing      string `json:"pacing"`
		Consistency string `json:"consistency"`
	} `json:"narrativeStyle"`
}

// ModelInstructions returns the instruction block. A fresh value each call so
// callers cannot mutate the canonical text.
func ModelInstructions() Instructions {
	var ins Instructions
	ins.TimeControl.Description = "You control the time of day (MORNING, NOON, EVENING, NIGHT) through the narrative. Change it when it makes sense for the story. The day counter advances only when the player sleeps and dismisses the day recap."
	ins.TimeControl.States = []string{"MORNING", "NOON", "EVENING", "NIGHT"}
	ins.SceneFormat.SceneText = "Provide a vivid 2-3 sentence description of the current scene, focusing on the environment, atmosphere, and any notable visual elements. This appears in the top text box."
	ins.SceneFormat.DialogText = "Format dialog as 'Speaker: message' in the bottom text box. Use 'Narrator:' for general narration, character names like 'Eve:' for dialog, or descriptive speakers like 'Distant Voice:' when appropriate."
	ins.SceneFormat.Options = "Provide 2-4 meaningful choices that advance the story or allow for exploration."
	ins.NarrativeStyle.Tone = "Maintain a whimsical, magical tone while being grounded in the cottage-core aesthetic."
	ins.NarrativeStyle.Pacing = "Balance between descriptive world-building and engaging character interactions."
	ins.NarrativeStyle.Consistency = "Remember previous choices and maintain narrative continuity."
	return ins
}

// Fixed texts for locally produced scenes. These replace only the displayed
// scene; essence, phase, day and time are never touched by them.
const (
	GrowthDialog = "Narrator: Your new home awaits..."

	ConnectionErrorSceneText = "There was an error connecting to the game's magic. Please try again or check your settings."
	ConnectionErrorDialog    = "Narrator: Something went wrong with the magic..."

	MissingKeySceneText = "Please set your API keys in the settings first."
	MissingKeyDialog    = "Narrator: You'll need both API keys to continue."

	// LoadingPlaceholder fills the scene while a transition is in flight.
	LoadingPlaceholder = "..."
)
