// Package imagegen resolves scene image prompts through the image synthesis
// service's submit/poll protocol. The pipeline is fire-and-forget from the
// session's point of view: it never blocks scene text, and every failure mode
// stays inside the pipeline as an error return, not an error scene.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrGenerationFailed is returned when the service reports a Failed status.
var ErrGenerationFailed = errors.New("image generation failed")

// ErrGenerationTimeout is returned when the poll ceiling is reached before a
// terminal status.
var ErrGenerationTimeout = errors.New("image generation timed out")

// Config holds the image service client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           int // per-request seconds
	PollInterval      time.Duration
	MaxAttempts       int
	PromptStyleSuffix string
}

// Client calls the image generation service.
type Client struct {
	logger       *zap.Logger
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	styleSuffix  string
}

// New creates an image service client.
func New(logger *zap.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.bfl.ml"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 16
	}
	return &Client{
		logger:       logger,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		styleSuffix:  cfg.PromptStyleSuffix,
	}
}

type generateRequest struct {
	Prompt           string `json:"prompt"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	PromptUpsampling bool   `json:"prompt_upsampling"`
	SafetyTolerance  int    `json:"safety_tolerance"`
	OutputFormat     string `json:"output_format"`
}

type generateResponse struct {
	ID string `json:"id"`
}

type resultResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result struct {
		Sample string `json:"sample"`
	} `json:"result"`
}

// Generate submits the prompt and polls for the result on a fixed interval
// with a fixed attempt ceiling. It returns the image reference on Ready,
// ErrGenerationFailed on an explicit Failed status, and ErrGenerationTimeout
// when the ceiling is hit.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log := c.logger.With(zap.Int("promptLength", len(prompt)))
	log.Info("Submitting image generation request")

	id, err := c.submit(ctx, prompt+c.styleSuffix)
	if err != nil {
		log.Warn("Image generation submit failed", zap.Error(err))
		return "", err
	}
	log = log.With(zap.String("jobID", id))

	// First poll immediately; the service often finishes fast.
	sample, done, err := c.poll(ctx, id)
	if err != nil {
		return "", err
	}
	if done {
		log.Info("Image ready on first poll")
		return sample, nil
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		sample, done, err = c.poll(ctx, id)
		if err != nil {
			log.Warn("Image poll failed", zap.Int("attempt", attempt), zap.Error(err))
			return "", err
		}
		if done {
			log.Info("Image ready", zap.Int("attempt", attempt))
			return sample, nil
		}
	}

	log.Warn("Image generation hit poll ceiling", zap.Int("maxAttempts", c.maxAttempts))
	return "", fmt.Errorf("%w after %d attempts", ErrGenerationTimeout, c.maxAttempts)
}

func (c *Client) submit(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Prompt:           prompt,
		Width:            1024,
		Height:           768,
		PromptUpsampling: false,
		SafetyTolerance:  6,
		OutputFormat:     "jpeg",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/flux-pro-1.1", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation request returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if readErr != nil {
		return "", fmt.Errorf("failed to read generation response: %w", readErr)
	}

	var generated generateResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if generated.ID == "" {
		return "", errors.New("generation response carries no job id")
	}
	return generated.ID, nil
}

// poll fetches the job status once. done is true only for a Ready result
// with a sample; a Failed status is an error, anything else is pending.
func (c *Client) poll(ctx context.Context, id string) (sample string, done bool, err error) {
	endpoint := c.baseURL + "/v1/get_result?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create result request: %w", err)
	}
	req.Header.Set("X-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("result request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("result request returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if readErr != nil {
		return "", false, fmt.Errorf("failed to read result response: %w", readErr)
	}

	var result resultResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", false, fmt.Errorf("failed to decode result response: %w", err)
	}

	switch result.Status {
	case "Ready":
		if result.Result.Sample == "" {
			return "", false, fmt.Errorf("%w: Ready status without a sample", ErrGenerationFailed)
		}
		return result.Result.Sample, true, nil
	case "Failed":
		return "", false, ErrGenerationFailed
	default:
		return "", false, nil
	}
}
