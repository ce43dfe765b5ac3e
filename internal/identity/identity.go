// Package identity keeps the per-installation client identifier the server
// uses to key chat sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/chasedut/docchat/internal/db"
)

// Key is the storage key holding the identity.
const Key = "chat_client_id"

// Store is the durable storage the identity lives in.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	GetOrInsert(ctx context.Context, key, value string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Generate returns a new identity of the form "cli-<unix millis>-<n>" with n
// in [0, 100000).
func Generate(now time.Time) string {
	return "cli-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(rand.IntN(100000))
}

// Ensure returns the stored identity, generating and persisting one on first
// use. Once stored it is never replaced, unless the stored value is blank.
func Ensure(ctx context.Context, s Store) (string, error) {
	id, err := s.Get(ctx, Key)
	switch {
	case err == nil && id != "":
		return id, nil
	case err == nil:
		// A blank row would survive GetOrInsert, so overwrite it.
		id = Generate(time.Now())
		if err := s.Set(ctx, Key, id); err != nil {
			return "", fmt.Errorf("failed to store client id: %w", err)
		}
		return id, nil
	case !errors.Is(err, db.ErrNotFound):
		return "", fmt.Errorf("failed to load client id: %w", err)
	}
	id, err = s.GetOrInsert(ctx, Key, Generate(time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to store client id: %w", err)
	}
	return id, nil
}
