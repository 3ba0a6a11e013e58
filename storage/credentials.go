package storage

import (
	"context"
	"errors"
	"fmt"
)

// Key names of the two service secrets in the key-value store.
const (
	TextAPIKeyName  = "grok_api_key"
	ImageAPIKeyName = "flux_api_key"
)

// CredentialStore reads and writes the two named API secrets. Absence of a
// key is an expected state the session controller turns into a player-facing
// scene, never an exception.
type CredentialStore struct {
	kv KeyValueStore
}

// NewCredentialStore wraps a key-value store.
func NewCredentialStore(kv KeyValueStore) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// TextAPIKey returns the text service key, or "" when unset.
func (c *CredentialStore) TextAPIKey(ctx context.Context) (string, error) {
	return c.get(ctx, TextAPIKeyName)
}

// ImageAPIKey returns the image service key, or "" when unset.
func (c *CredentialStore) ImageAPIKey(ctx context.Context) (string, error) {
	return c.get(ctx, ImageAPIKeyName)
}

// SetTextAPIKey stores the text service key.
func (c *CredentialStore) SetTextAPIKey(ctx context.Context, key string) error {
	return c.kv.Set(ctx, TextAPIKeyName, key)
}

// SetImageAPIKey stores the image service key.
func (c *CredentialStore) SetImageAPIKey(ctx context.Context, key string) error {
	return c.kv.Set(ctx, ImageAPIKeyName, key)
}

// Missing reports which of the two keys are absent, by store name.
func (c *CredentialStore) Missing(ctx context.Context) ([]string, error) {
	var missing []string
	for _, name := range []string{TextAPIKeyName, ImageAPIKeyName} {
		value, err := c.get(ctx, name)
		if err != nil {
			return nil, err
		}
		if value == "" {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (c *CredentialStore) get(ctx context.Context, name string) (string, error) {
	value, err := c.kv.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credential %s: %w", name, err)
	}
	return value, nil
}
