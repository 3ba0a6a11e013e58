package models

// TransitionKind identifies which scene transition the session controller is
// requesting from the text service. Every kind shares one
// guard/prompt/parse/commit pipeline; the kind picks the user instruction and
// which response fields are required.
type TransitionKind string

const (
	// TransitionInitialExplore is the first interaction with the game world,
	// right after the cottage has grown.
	TransitionInitialExplore TransitionKind = "initial_explore"
	// TransitionOptionSelected continues the story from a presented choice.
	TransitionOptionSelected TransitionKind = "option_selected"
	// TransitionCustomInput continues the story from free-form player text.
	TransitionCustomInput TransitionKind = "custom_input"
	// TransitionSleep ends the day; the response must carry a daily recap.
	TransitionSleep TransitionKind = "sleep"
)
