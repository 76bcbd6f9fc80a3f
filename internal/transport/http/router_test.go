package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-notify-nosql/internal/config"
	"github.com/go-notify-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes ---

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *memUsers) Get(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	cp.DeviceTokens = append([]string(nil), u.DeviceTokens...)
	return &cp, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	var id string
	for _, u := range m.users {
		if u.Username == username {
			id = u.UserID
		}
	}
	m.mu.Unlock()
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *memUsers) SetDeviceTokens(_ context.Context, userID string, tokens []string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	if u.Version != version {
		return domain.ErrConflict
	}
	u.DeviceTokens = tokens
	u.Version++
	return nil
}

func (m *memUsers) PrependNotification(_ context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.Notifications = append([]string{notificationID}, u.Notifications...)
	return nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (m *memNotifications) Put(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *n)
	return nil
}

type prefixGateway struct{}

func (prefixGateway) Send(_ context.Context, token string, _ domain.PushMessage) error {
	if strings.HasPrefix(token, "bad") {
		return errors.New("unregistered")
	}
	return nil
}

func newTestServer() (http.Handler, *memUsers, *memNotifications) {
	users := &memUsers{users: map[string]*domain.User{
		"u1": {UserID: "u1", Username: "alice", DeviceTokens: []string{"t1", "bad2"}, Followers: []string{"u2", "u3", "gone"}},
		"u2": {UserID: "u2", Username: "bob", DeviceTokens: []string{"t3"}},
		"u3": {UserID: "u3", Username: "carol"},
	}}
	notifs := &memNotifications{}
	cfg := &config.Config{AllowedOrigins: []string{"*"}, FanoutConcurrency: 4}
	return NewRouter(cfg, &Deps{UserRepo: users, NotificationRepo: notifs, Gateway: prefixGateway{}}), users, notifs
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestRouter_LikePrunesFailedToken(t *testing.T) {
	router, users, notifs := newTestServer()

	rec := do(router, http.MethodPost, "/like", `{"username":"bob","userID":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully sent notification."}`, rec.Body.String())
	require.Len(t, notifs.items, 1)
	assert.Equal(t, "bob liked your post.", notifs.items[0].Description)
	assert.Equal(t, []string{"t1"}, users.users["u1"].DeviceTokens)
	assert.Equal(t, []string{notifs.items[0].NotificationID}, users.users["u1"].Notifications)
}

func TestRouter_FollowUnknownUser(t *testing.T) {
	router, _, notifs := newTestServer()

	rec := do(router, http.MethodPost, "/follow", `{"username":"bob","userID":"nobody"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found."}`, rec.Body.String())
	assert.Empty(t, notifs.items)
}

func TestRouter_PostFansOutToFollowers(t *testing.T) {
	router, users, notifs := newTestServer()

	rec := do(router, http.MethodPost, "/post", `{"username":"alice"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, notifs.items, 1)
	rec0 := notifs.items[0]
	assert.Empty(t, rec0.UserID)
	assert.Equal(t, "u1", rec0.ActorID)
	assert.Equal(t, domain.NotificationPost, rec0.Type)
	assert.Equal(t, []string{rec0.NotificationID}, users.users["u2"].Notifications)
	assert.Equal(t, []string{rec0.NotificationID}, users.users["u3"].Notifications)
}

func TestRouter_UnknownRouteIsJSON(t *testing.T) {
	router, _, _ := newTestServer()

	rec := do(router, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

type recordingGateway struct {
	mu   sync.Mutex
	sent []domain.PushMessage
}

func (g *recordingGateway) Send(_ context.Context, _ string, msg domain.PushMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return nil
}

type prefixImages struct{}

func (prefixImages) Resolve(_ context.Context, ref string) (string, error) {
	return "https://signed/" + ref, nil
}

func TestRouter_FollowUsesImageResolver(t *testing.T) {
	users := &memUsers{users: map[string]*domain.User{
		"u1": {UserID: "u1", Username: "alice", DeviceTokens: []string{"t1"}},
		"u2": {UserID: "u2", Username: "bob", Profile: "profiles/bob.png"},
	}}
	gw := &recordingGateway{}
	cfg := &config.Config{AllowedOrigins: []string{"*"}, FanoutConcurrency: 4}
	router := NewRouter(cfg, &Deps{
		UserRepo:         users,
		NotificationRepo: &memNotifications{},
		Gateway:          gw,
		Images:           prefixImages{},
	})

	rec := do(router, http.MethodPost, "/follow", `{"username":"bob","userID":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "https://signed/profiles/bob.png", gw.sent[0].ImageURL)
	assert.Equal(t, "New Follower", gw.sent[0].Title)
}
