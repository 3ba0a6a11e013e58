package imagegen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aethoria-client/imagegen"
)

// fluxStub serves the submit/poll protocol: one generation endpoint handing
// out a job id and one result endpoint scripted per test.
type fluxStub struct {
	t          *testing.T
	polls      atomic.Int32
	result     func(poll int32) (status, sample string)
	lastPrompt atomic.Value
}

func (f *fluxStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/flux-pro-1.1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "test-key", r.Header.Get("X-Key"))
		var payload map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&payload))
		f.lastPrompt.Store(payload["prompt"].(string))
		assert.EqualValues(f.t, 1024, payload["width"])
		assert.EqualValues(f.t, 768, payload["height"])
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
	})
	mux.HandleFunc("/v1/get_result", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "job-1", r.URL.Query().Get("id"))
		status, sample := f.result(f.polls.Add(1))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "job-1",
			"status": status,
			"result": map[string]string{"sample": sample},
		})
	})
	return mux
}

func newTestClient(t *testing.T, stub *fluxStub, maxAttempts int) (*imagegen.Client, func()) {
	server := httptest.NewServer(stub.handler())
	client := imagegen.New(zap.NewNop(), imagegen.Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		PollInterval:      time.Millisecond,
		MaxAttempts:       maxAttempts,
		PromptStyleSuffix: ", watercolor style",
	})
	return client, server.Close
}

func TestGenerate(t *testing.T) {
	t.Run("Ready on first poll", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(int32) (string, string) {
			return "Ready", "https://img.example/scene.jpg"
		}}
		client, closeFn := newTestClient(t, stub, 4)
		defer closeFn()

		sample, err := client.Generate(context.Background(), "a cottage at dawn")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/scene.jpg", sample)
		assert.Equal(t, "a cottage at dawn, watercolor style", stub.lastPrompt.Load())
	})

	t.Run("Ready after pending polls", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(poll int32) (string, string) {
			if poll < 3 {
				return "Pending", ""
			}
			return "Ready", "https://img.example/late.jpg"
		}}
		client, closeFn := newTestClient(t, stub, 8)
		defer closeFn()

		sample, err := client.Generate(context.Background(), "a glade")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/late.jpg", sample)
		assert.GreaterOrEqual(t, stub.polls.Load(), int32(3))
	})

	t.Run("Failed status", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(int32) (string, string) {
			return "Failed", ""
		}}
		client, closeFn := newTestClient(t, stub, 4)
		defer closeFn()

		_, err := client.Generate(context.Background(), "a glade")
		assert.ErrorIs(t, err, imagegen.ErrGenerationFailed)
	})

	t.Run("Poll ceiling", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(int32) (string, string) {
			return "Pending", ""
		}}
		client, closeFn := newTestClient(t, stub, 3)
		defer closeFn()

		_, err := client.Generate(context.Background(), "a glade")
		assert.ErrorIs(t, err, imagegen.ErrGenerationTimeout)
		// First immediate poll plus one per attempt.
		assert.Equal(t, int32(4), stub.polls.Load())
	})

	t.Run("Ready without sample", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(int32) (string, string) {
			return "Ready", ""
		}}
		client, closeFn := newTestClient(t, stub, 4)
		defer closeFn()

		_, err := client.Generate(context.Background(), "a glade")
		assert.ErrorIs(t, err, imagegen.ErrGenerationFailed)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		stub := &fluxStub{t: t, result: func(int32) (string, string) {
			return "Pending", ""
		}}
		client, closeFn := newTestClient(t, stub, 100)
		defer closeFn()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Generate(ctx, "a glade")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Submit failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := imagegen.New(zap.NewNop(), imagegen.Config{APIKey: "bad", BaseURL: server.URL, PollInterval: time.Millisecond, MaxAttempts: 2})
		_, err := client.Generate(context.Background(), "a glade")
		assert.Error(t, err)
	})
}
