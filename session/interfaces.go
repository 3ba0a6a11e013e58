package session

import (
	"context"

	"aethoria-client/prompt"
)

// TextGenerator is the text generation service seen by the controller.
type TextGenerator interface {
	Complete(ctx context.Context, req prompt.Request) (string, error)
}

// ImageGenerator is the image generation service seen by the controller.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Clients bundles the remote service constructors. API keys are read from
// the credential store on every transition, so a key fixed in settings takes
// effect on the next action without rebuilding the controller.
type Clients struct {
	NewTextGenerator  func(apiKey string) (TextGenerator, error)
	NewImageGenerator func(apiKey string) ImageGenerator
}

// Callbacks are the navigation hooks the host hands to the controller.
type Callbacks struct {
	OnExit     func()
	OnSettings func()
}
