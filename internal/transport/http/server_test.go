package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dkazarin/echoline-server/internal/auth"
	"github.com/dkazarin/echoline-server/internal/config"
	"github.com/dkazarin/echoline-server/internal/core"
	"github.com/dkazarin/echoline-server/internal/store/sqlite"
)

type testEnv struct {
	ts          *httptest.Server
	hub         *core.Hub
	authService *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	jwtCfg := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "echoline",
		Audience: "echoline-clients",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtCfg)
	hub := core.NewHub(st, &logger, 256)

	cfg := config.Default()
	srv := NewServer(hub, authService, st, &cfg, &logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub, authService: authService}
}

// register creates a user through the public API and resolves its ID from the
// returned token.
func (e *testEnv) register(t *testing.T, username string) (token string, userID int64) {
	t.Helper()

	var resp AuthResponse
	status := e.doJSON(t, stdhttp.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": "secret123",
	}, &resp)
	require.Equal(t, stdhttp.StatusCreated, status)
	require.NotEmpty(t, resp.Token)

	claims, err := e.authService.ValidateToken(resp.Token)
	require.NoError(t, err)
	return resp.Token, claims.UserID
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := stdhttp.NewRequestWithContext(context.Background(), method, e.ts.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	token, _ := env.register(t, "alice")
	require.NotEmpty(t, token)

	// Duplicate registration is a conflict.
	status := env.doJSON(t, stdhttp.MethodPost, "/api/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, stdhttp.StatusConflict, status)

	var resp AuthResponse
	status = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, &resp)
	require.Equal(t, stdhttp.StatusOK, status)
	require.NotEmpty(t, resp.Token)

	status = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestAuthorizedEndpointsRejectMissingToken(t *testing.T) {
	env := newTestEnv(t)

	status := env.doJSON(t, stdhttp.MethodGet, "/api/users", "", nil, nil)
	require.Equal(t, stdhttp.StatusUnauthorized, status)

	status = env.doJSON(t, stdhttp.MethodPost, "/api/messages", "", map[string]any{
		"receiverId": 1, "text": "hi",
	}, nil)
	require.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestSendAndFetchConversation(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	// Bob is offline (no live connection), so the send stays undelivered.
	var sent MessageResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
		"receiverId": bobID, "text": "hello bob",
	}, &sent)
	require.Equal(t, stdhttp.StatusCreated, status)
	require.False(t, sent.Delivered)
	require.True(t, sent.IsFromMe)

	// Bob fetching the history is what advances the message to delivered.
	var history []MessageResponse
	path := fmt.Sprintf("/api/messages/%d", aliceID)
	status = env.doJSON(t, stdhttp.MethodGet, path, bobToken, nil, &history)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Len(t, history, 1)
	require.True(t, history[0].Delivered)
	require.NotNil(t, history[0].DeliveredAt)
	require.False(t, history[0].IsFromMe)
	require.Equal(t, "hello bob", history[0].Text)
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := env.register(t, "alice")

	// Self-send is rejected.
	status := env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
		"receiverId": aliceID, "text": "note to self",
	}, nil)
	require.Equal(t, stdhttp.StatusBadRequest, status)

	// Unknown receiver.
	status = env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
		"receiverId": aliceID + 100, "text": "hello?",
	}, nil)
	require.Equal(t, stdhttp.StatusNotFound, status)
}

func TestMarkReadEnforcesReceiver(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, _ := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	var sent MessageResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
		"receiverId": bobID, "text": "hello bob",
	}, &sent)
	require.Equal(t, stdhttp.StatusCreated, status)

	// The sender may not mark their own message read.
	status = env.doJSON(t, stdhttp.MethodPost, fmt.Sprintf("/api/messages/%d/read", sent.ID), aliceToken, nil, nil)
	require.Equal(t, stdhttp.StatusForbidden, status)

	// The receiver may.
	status = env.doJSON(t, stdhttp.MethodPost, fmt.Sprintf("/api/messages/%d/read", sent.ID), bobToken, nil, nil)
	require.Equal(t, stdhttp.StatusNoContent, status)

	// Unknown message is a 404.
	status = env.doJSON(t, stdhttp.MethodPost, fmt.Sprintf("/api/messages/%d/read", sent.ID+100), bobToken, nil, nil)
	require.Equal(t, stdhttp.StatusNotFound, status)
}

func TestMarkConversationRead(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	for _, text := range []string{"one", "two"} {
		status := env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
			"receiverId": bobID, "text": text,
		}, nil)
		require.Equal(t, stdhttp.StatusCreated, status)
	}

	var modified ModifiedResponse
	status := env.doJSON(t, stdhttp.MethodPost, fmt.Sprintf("/api/conversations/%d/read", aliceID), bobToken, nil, &modified)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Equal(t, int64(2), modified.Modified)

	status = env.doJSON(t, stdhttp.MethodPost, fmt.Sprintf("/api/conversations/%d/read", aliceID), bobToken, nil, &modified)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Zero(t, modified.Modified)
}

func TestListConversationsAndUsers(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	status := env.doJSON(t, stdhttp.MethodPost, "/api/messages", aliceToken, map[string]any{
		"receiverId": bobID, "text": "hey",
	}, nil)
	require.Equal(t, stdhttp.StatusCreated, status)

	var convs []ConversationResponse
	status = env.doJSON(t, stdhttp.MethodGet, "/api/conversations", bobToken, nil, &convs)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Len(t, convs, 1)
	require.Equal(t, aliceID, convs[0].PeerID)
	require.Equal(t, "alice", convs[0].PeerUsername)
	require.Equal(t, int64(1), convs[0].UnreadCount)
	require.NotNil(t, convs[0].LastMessage)
	require.Equal(t, "hey", convs[0].LastMessage.Text)

	var users []UserResponse
	status = env.doJSON(t, stdhttp.MethodGet, "/api/users", bobToken, nil, &users)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Len(t, users, 1)
	require.Equal(t, "alice", users[0].Username)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, _ := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	online := true
	status := env.doJSON(t, stdhttp.MethodPut, "/api/status", bobToken, map[string]any{
		"isOnline": online,
	}, nil)
	require.Equal(t, stdhttp.StatusNoContent, status)

	var users []UserResponse
	status = env.doJSON(t, stdhttp.MethodGet, "/api/users", aliceToken, nil, &users)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Len(t, users, 1)
	require.Equal(t, bobID, users[0].ID)
	require.True(t, users[0].IsOnline)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}
