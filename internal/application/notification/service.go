package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/go-notify-nosql/internal/pkg/validate"
	"github.com/sourcegraph/conc/pool"
)

// Service routes an event to the handler for its kind.
type Service interface {
	// Handle runs the whole fan-out for ev. A non-nil error is fatal to the event;
	// failures the event survives are reported in Result.Recoverable.
	Handle(ctx context.Context, ev domain.Event) (*Result, error)
}

// Result summarises one handled event.
type Result struct {
	RecordID    string
	Recipients  int
	Delivered   int
	Failed      int
	Recoverable []error
}

type userStore interface {
	userReader
	feedWriter
}

type dispatcher interface {
	Dispatch(ctx context.Context, tokens []string, msg domain.PushMessage) domain.DispatchOutcome
}

type pruner interface {
	Prune(ctx context.Context, user *domain.User, outcome domain.DispatchOutcome) (bool, error)
}

type imageResolver interface {
	// Resolve turns a stored profile reference into a URL a device can fetch.
	Resolve(ctx context.Context, ref string) (string, error)
}

type ServiceDeps struct {
	UserRepo          userStore
	NotificationRepo  notificationWriter
	Dispatcher        dispatcher
	Pruner            pruner
	Images            imageResolver // optional
	FanoutConcurrency int
	Logger            *slog.Logger
}

type service struct {
	resolver   *Resolver
	records    *RecordStore
	feed       *FeedUpdater
	users      userReader
	dispatcher dispatcher
	pruner     pruner
	images     imageResolver
	fanout     int
	logger     *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		resolver:   NewResolver(deps.UserRepo, deps.FanoutConcurrency, logger),
		records:    NewRecordStore(deps.NotificationRepo),
		feed:       NewFeedUpdater(deps.UserRepo),
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		pruner:     deps.Pruner,
		images:     deps.Images,
		fanout:     deps.FanoutConcurrency,
		logger:     logger.With("component", "notification"),
	}
}

func (s *service) Handle(ctx context.Context, ev domain.Event) (*Result, error) {
	if ev == nil {
		return nil, fmt.Errorf("nil event: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	switch e := ev.(type) {
	case domain.DirectEvent:
		return s.handleDirect(ctx, e)
	case domain.PostEvent:
		return s.handlePost(ctx, e)
	default:
		return nil, fmt.Errorf("unsupported event %T: %w", ev, domain.ErrBadRequest)
	}
}

func (s *service) handleDirect(ctx context.Context, ev domain.DirectEvent) (*Result, error) {
	recipient, err := s.resolver.ResolveDirect(ctx, ev.TargetUserID)
	if err != nil {
		return nil, err
	}

	msg := messageFor(ev.Type, ev.ActorUsername)
	actorID := ev.ActorID
	if ev.Type == domain.NotificationFollow {
		actorID, msg.ImageURL = s.followActor(ctx, ev)
	}

	recordID, err := s.records.Create(ctx, recipient.UserID, actorID, ev.Type, msg.Body)
	if err != nil {
		return nil, err
	}

	res := &Result{RecordID: recordID, Recipients: 1}
	res.add(s.deliver(ctx, recipient, recordID, msg))
	s.logResult(ev.Type, res)
	return res, nil
}

func (s *service) handlePost(ctx context.Context, ev domain.PostEvent) (*Result, error) {
	actor, followers, err := s.resolver.ResolveBroadcast(ctx, ev.ActorUsername)
	if err != nil {
		return nil, err
	}
	actorID := ev.ActorID
	if actorID == "" {
		actorID = actor.UserID
	}

	msg := messageFor(domain.NotificationPost, actor.Username)
	recordID, err := s.records.Create(ctx, "", actorID, domain.NotificationPost, msg.Body)
	if err != nil {
		return nil, err
	}

	res := &Result{RecordID: recordID, Recipients: len(followers)}
	var mu sync.Mutex
	p := pool.New()
	if s.fanout > 0 {
		p = p.WithMaxGoroutines(s.fanout)
	}
	for i := range followers {
		follower := &followers[i]
		p.Go(func() {
			r := s.deliver(ctx, follower, recordID, msg)
			mu.Lock()
			res.add(r)
			mu.Unlock()
		})
	}
	p.Wait()

	s.logResult(domain.NotificationPost, res)
	return res, nil
}

// deliver runs the per-recipient steps after the record exists: feed prepend,
// push dispatch and token pruning. None of them can fail the event.
func (s *service) deliver(ctx context.Context, recipient *domain.User, recordID string, msg domain.PushMessage) Result {
	var r Result
	if err := s.feed.AppendToFeed(ctx, recipient, recordID); err != nil {
		s.logger.Warn("feed update failed", "user_id", recipient.UserID, "notification_id", recordID, "err", err)
		r.Recoverable = append(r.Recoverable, err)
	}

	outcome := s.dispatcher.Dispatch(ctx, recipient.DeviceTokens, msg)
	r.Delivered = len(outcome.Delivered)
	r.Failed = len(outcome.Failed)

	if _, err := s.pruner.Prune(ctx, recipient, outcome); err != nil {
		s.logger.Warn("token prune failed", "user_id", recipient.UserID, "err", err)
		r.Recoverable = append(r.Recoverable, err)
	}
	return r
}

// followActor looks up the follower to attach their profile image and fill a
// missing actor id. The lookup is best effort.
func (s *service) followActor(ctx context.Context, ev domain.DirectEvent) (actorID, imageURL string) {
	actorID = ev.ActorID
	actor, err := s.users.GetByUsername(ctx, ev.ActorUsername)
	if err != nil {
		s.logger.Debug("actor lookup failed", "username", ev.ActorUsername, "err", err)
		return actorID, ""
	}
	if actorID == "" {
		actorID = actor.UserID
	}
	if actor.Profile == "" || s.images == nil {
		return actorID, actor.Profile
	}
	url, err := s.images.Resolve(ctx, actor.Profile)
	if err != nil {
		s.logger.Warn("profile image unavailable", "username", ev.ActorUsername, "err", err)
		return actorID, ""
	}
	return actorID, url
}

func (s *service) logResult(t domain.NotificationType, res *Result) {
	s.logger.Info("notification sent",
		"type", t,
		"notification_id", res.RecordID,
		"recipients", res.Recipients,
		"delivered", res.Delivered,
		"failed", res.Failed,
		"recoverable_errors", len(res.Recoverable),
	)
}

func (r *Result) add(o Result) {
	r.Delivered += o.Delivered
	r.Failed += o.Failed
	r.Recoverable = append(r.Recoverable, o.Recoverable...)
}
