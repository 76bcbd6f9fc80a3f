package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

type userReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Resolver determines the recipients of an event.
type Resolver struct {
	users          userReader
	maxConcurrency int
	logger         *slog.Logger
}

func NewResolver(users userReader, maxConcurrency int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{users: users, maxConcurrency: maxConcurrency, logger: logger.With("component", "resolver")}
}

// ResolveDirect loads the single target user of a direct event.
func (r *Resolver) ResolveDirect(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	return u, nil
}

// ResolveBroadcast loads the actor by username and then every follower of the actor.
// Followers that no longer resolve are skipped; only a missing actor is an error.
func (r *Resolver) ResolveBroadcast(ctx context.Context, actorUsername string) (*domain.User, []domain.User, error) {
	actor, err := r.users.GetByUsername(ctx, actorUsername)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve actor %s: %w", actorUsername, err)
	}

	ids := distinct(actor.Followers)
	loaded := make([]*domain.User, len(ids))
	p := pool.New()
	if r.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(r.maxConcurrency)
	}
	for i, id := range ids {
		i, id := i, id
		p.Go(func() {
			u, err := r.users.Get(ctx, id)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					r.logger.Warn("skipping follower", "follower_id", id, "err", err)
				}
				return
			}
			loaded[i] = u
		})
	}
	p.Wait()

	followers := make([]domain.User, 0, len(ids))
	for _, u := range loaded {
		if u != nil {
			followers = append(followers, *u)
		}
	}
	return actor, followers, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
