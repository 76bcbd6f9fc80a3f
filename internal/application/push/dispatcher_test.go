package push

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Send(ctx context.Context, token string, msg domain.PushMessage) error {
	return m.Called(ctx, token, msg).Error(0)
}

// --- tests ---

func TestDispatch_PartitionsByGatewayResult(t *testing.T) {
	gw := &mockGateway{}
	msg := domain.PushMessage{Title: "New Notification", Body: "bob liked your post."}
	gw.On("Send", mock.Anything, "tA", msg).Return(errors.New("registration-token-not-registered"))
	gw.On("Send", mock.Anything, "tB", msg).Return(nil)
	gw.On("Send", mock.Anything, "tC", msg).Return(nil)

	out := NewDispatcher(gw, 0, nil).Dispatch(context.Background(), []string{"tA", "tB", "tC"}, msg)

	assert.Equal(t, []string{"tB", "tC"}, out.Delivered)
	assert.Equal(t, []string{"tA"}, out.Failed)
	assert.True(t, out.HasFailures())
	gw.AssertExpectations(t)
}

func TestDispatch_PartitionCoversAttemptedTokens(t *testing.T) {
	gw := &mockGateway{}
	gw.On("Send", mock.Anything, "t1", mock.Anything).Return(nil)
	gw.On("Send", mock.Anything, "t2", mock.Anything).Return(errors.New("unreachable"))
	gw.On("Send", mock.Anything, "t3", mock.Anything).Return(errors.New("timeout"))
	gw.On("Send", mock.Anything, "t4", mock.Anything).Return(nil)

	out := NewDispatcher(gw, 2, nil).Dispatch(context.Background(), []string{"t1", "t2", "t3", "t4"}, domain.PushMessage{})

	all := append(append([]string{}, out.Delivered...), out.Failed...)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3", "t4"}, all)
	for _, d := range out.Delivered {
		assert.NotContains(t, out.Failed, d)
	}
}

func TestDispatch_DeduplicatesAndSkipsEmptyTokens(t *testing.T) {
	gw := &mockGateway{}
	gw.On("Send", mock.Anything, "t1", mock.Anything).Return(nil).Once()

	out := NewDispatcher(gw, 0, nil).Dispatch(context.Background(), []string{"t1", "", "t1"}, domain.PushMessage{})

	assert.Equal(t, []string{"t1"}, out.Delivered)
	assert.Empty(t, out.Failed)
	gw.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatch_NoTokens_NoGatewayCalls(t *testing.T) {
	gw := &mockGateway{}

	out := NewDispatcher(gw, 0, nil).Dispatch(context.Background(), nil, domain.PushMessage{})

	assert.Empty(t, out.Delivered)
	assert.Empty(t, out.Failed)
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// blockingGateway fails "bad" immediately and holds every other send until all
// sends have started, proving that one failure does not abort its siblings.
type blockingGateway struct {
	started atomic.Int32
	total   int32
	release chan struct{}
	once    sync.Once
}

func (g *blockingGateway) Send(_ context.Context, token string, _ domain.PushMessage) error {
	if g.started.Add(1) == g.total {
		g.once.Do(func() { close(g.release) })
	}
	if token == "bad" {
		return errors.New("invalid token")
	}
	<-g.release
	return nil
}

func TestDispatch_FailureDoesNotAbortOtherSends(t *testing.T) {
	gw := &blockingGateway{total: 3, release: make(chan struct{})}

	out := NewDispatcher(gw, 0, nil).Dispatch(context.Background(), []string{"bad", "ok1", "ok2"}, domain.PushMessage{})

	assert.Equal(t, []string{"ok1", "ok2"}, out.Delivered)
	assert.Equal(t, []string{"bad"}, out.Failed)
	assert.Equal(t, int32(3), gw.started.Load())
}
