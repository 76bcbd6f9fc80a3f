package push

import (
	"context"
	"log/slog"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

// Gateway delivers one message to one device token.
type Gateway interface {
	Send(ctx context.Context, token string, msg domain.PushMessage) error
}

// Dispatcher fans a message out to every token of a recipient.
type Dispatcher struct {
	gateway        Gateway
	maxConcurrency int
	logger         *slog.Logger
}

// NewDispatcher returns a Dispatcher. maxConcurrency <= 0 means one goroutine per token.
func NewDispatcher(gateway Gateway, maxConcurrency int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		gateway:        gateway,
		maxConcurrency: maxConcurrency,
		logger:         logger.With("component", "dispatcher"),
	}
}

// Dispatch sends msg to each distinct token and waits for every attempt to settle.
// A token is delivered only if the gateway returned no error; one failure never
// cancels the other sends. Both lists keep the first-seen order of tokens.
func (d *Dispatcher) Dispatch(ctx context.Context, tokens []string, msg domain.PushMessage) domain.DispatchOutcome {
	attempted := uniqueTokens(tokens)
	if len(attempted) == 0 {
		return domain.DispatchOutcome{}
	}

	errs := make([]error, len(attempted))
	p := pool.New()
	if d.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(d.maxConcurrency)
	}
	for i, token := range attempted {
		i, token := i, token
		p.Go(func() {
			errs[i] = d.gateway.Send(ctx, token, msg)
		})
	}
	p.Wait()

	var outcome domain.DispatchOutcome
	for i, token := range attempted {
		if errs[i] != nil {
			d.logger.Warn("push delivery failed", "token", token, "err", errs[i])
			outcome.Failed = append(outcome.Failed, token)
			continue
		}
		outcome.Delivered = append(outcome.Delivered, token)
	}
	return outcome
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
