package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-notify-nosql/internal/domain"
)

const maxPruneAttempts = 3

type tokenStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	// SetDeviceTokens overwrites the token list if the stored version still equals
	// version, and returns domain.ErrConflict otherwise.
	SetDeviceTokens(ctx context.Context, userID string, tokens []string, version int64) error
}

// Pruner removes failed tokens from a recipient's stored token list.
type Pruner struct {
	store tokenStore
}

func NewPruner(store tokenStore) *Pruner {
	return &Pruner{store: store}
}

// Prune persists outcome.Delivered as the user's token list when any token failed.
// It reports whether a write happened. A concurrent token write is resolved by
// reloading the user and removing the failed tokens from the fresh list.
func (p *Pruner) Prune(ctx context.Context, user *domain.User, outcome domain.DispatchOutcome) (bool, error) {
	if !outcome.HasFailures() {
		return false, nil
	}

	tokens := nonNil(outcome.Delivered)
	version := user.Version
	for attempt := 1; ; attempt++ {
		err := p.store.SetDeviceTokens(ctx, user.UserID, tokens, version)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt == maxPruneAttempts {
			return false, fmt.Errorf("prune tokens for user %s: %w", user.UserID, err)
		}

		fresh, err := p.store.Get(ctx, user.UserID)
		if err != nil {
			return false, fmt.Errorf("reload user %s: %w", user.UserID, err)
		}
		tokens = without(fresh.DeviceTokens, outcome.Failed)
		if len(tokens) == len(fresh.DeviceTokens) {
			// The failed tokens are already gone.
			return false, nil
		}
		version = fresh.Version
	}
}

func without(tokens, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, t := range remove {
		drop[t] = struct{}{}
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func nonNil(tokens []string) []string {
	if tokens == nil {
		return []string{}
	}
	return tokens
}
