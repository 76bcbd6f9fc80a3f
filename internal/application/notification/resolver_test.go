package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveDirect_WrapsNotFound(t *testing.T) {
	us := new(mockUserStore)
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	_, err := NewResolver(us, 0, nil).ResolveDirect(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveBroadcast_KeepsOrderAndSkipsUnresolvable(t *testing.T) {
	us := new(mockUserStore)
	us.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{UserID: "a", Followers: []string{"f3", "f1", "", "f3", "gone", "broken", "f2"}}, nil)
	for _, id := range []string{"f1", "f2", "f3"} {
		us.On("Get", mock.Anything, id).Return(&domain.User{UserID: id}, nil).Once()
	}
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	us.On("Get", mock.Anything, "broken").Return(nil, errors.New("throttled"))

	actor, followers, err := NewResolver(us, 2, nil).ResolveBroadcast(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "a", actor.UserID)

	ids := make([]string, len(followers))
	for i, f := range followers {
		ids[i] = f.UserID
	}
	assert.Equal(t, []string{"f3", "f1", "f2"}, ids)
	us.AssertExpectations(t)
}

func TestResolveBroadcast_ActorMissing(t *testing.T) {
	us := new(mockUserStore)
	us.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, _, err := NewResolver(us, 0, nil).ResolveBroadcast(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
