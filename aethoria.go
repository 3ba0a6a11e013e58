// Package aethoria wires the narrative client together: configuration,
// logging, durable storage, the two remote service clients and the session
// controller. Hosts embed an App and drive the game through App.Session.
package aethoria

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"aethoria-client/config"
	"aethoria-client/imagegen"
	"aethoria-client/logger"
	"aethoria-client/prompt"
	"aethoria-client/session"
	"aethoria-client/storage"
	"aethoria-client/textgen"
)

// App is the assembled client.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Credentials *storage.CredentialStore
	Session     *session.Controller

	kv storage.KeyValueStore
}

// New loads the configuration from the environment and assembles the client.
// When REDIS_ADDR is set the game state and credentials live in Redis;
// otherwise they live in files under DATA_DIR.
func New(ctx context.Context, callbacks session.Callbacks) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, err
	}

	var kv storage.KeyValueStore
	if cfg.RedisAddr != "" {
		kv, err = storage.NewRedisStore(ctx, cfg.RedisAddr, "aethoria", log.Named("storage"))
	} else {
		kv, err = storage.NewFileStore(cfg.DataDir, log.Named("storage"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	creds := storage.NewCredentialStore(kv)
	states := storage.NewStateStore(kv, cfg.SaveSlotKey, log.Named("storage"))

	clients := session.Clients{
		NewTextGenerator: func(apiKey string) (session.TextGenerator, error) {
			return textgen.New(textgen.Config{
				APIKey:     apiKey,
				BaseURL:    cfg.TextAPIBaseURL,
				ModelName:  cfg.TextModelName,
				Timeout:    cfg.TextTimeout,
				MaxRetries: cfg.TextMaxRetries,
			})
		},
		NewImageGenerator: func(apiKey string) session.ImageGenerator {
			return imagegen.New(log.Named("imagegen"), imagegen.Config{
				APIKey:            apiKey,
				BaseURL:           cfg.ImageAPIBaseURL,
				Timeout:           cfg.ImageTimeout,
				PollInterval:      cfg.ImagePollInterval,
				MaxAttempts:       cfg.ImageMaxAttempts,
				PromptStyleSuffix: cfg.ImageStyleSuffix,
			})
		},
	}

	ctrl, err := session.New(ctx, session.Params{
		Prompts:     prompt.NewBuilder(cfg.PromptTokenBudget),
		Clients:     clients,
		Credentials: creds,
		States:      states,
		Logger:      log.Named("session"),
		Callbacks:   callbacks,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Logger:      log,
		Credentials: creds,
		Session:     ctrl,
		kv:          kv,
	}, nil
}

// Close flushes the logger and releases the storage backend.
func (a *App) Close() error {
	_ = a.Logger.Sync()
	if closer, ok := a.kv.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
