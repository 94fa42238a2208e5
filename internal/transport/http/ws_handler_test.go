package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/dkazarin/echoline-server/internal/proto"
)

type wsClient struct {
	conn *websocket.Conn
}

func dialWS(t *testing.T, ctx context.Context, env *testEnv, token string) *wsClient {
	t.Helper()

	conn, resp, err := websocket.Dial(ctx, env.ts.URL+"/ws?token="+token, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })

	// The server registers the connection after the handshake response, so a
	// completed dial alone does not mean the user is routable yet. Round-trip
	// a bogus frame: the error reply comes from the read loop, which only
	// starts once registration is done.
	c := &wsClient{conn: conn}
	c.send(t, ctx, "sync", struct{}{})
	c.expect(t, ctx, proto.TypeError, nil)
	return c
}

func (c *wsClient) send(t *testing.T, ctx context.Context, frameType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, c.conn, proto.Inbound{Type: frameType, Data: raw}))
}

// expect reads frames until one of the wanted type arrives, skipping
// unrelated presence traffic, and decodes its payload into out.
func (c *wsClient) expect(t *testing.T, ctx context.Context, frameType string, out any) {
	t.Helper()

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for {
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		err := wsjson.Read(readCtx, c.conn, &frame)
		require.NoError(t, err, "waiting for frame %q", frameType)

		if frame.Type != frameType {
			continue
		}
		if out != nil {
			require.NoError(t, json.Unmarshal(frame.Data, out))
		}
		return
	}
}

func TestWSRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conn, resp, err := websocket.Dial(ctx, env.ts.URL+"/ws", nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestWSRejectsInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conn, resp, err := websocket.Dial(ctx, env.ts.URL+"/ws?token=not-a-jwt", nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestWSMessageDeliveryAndAck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	alice := dialWS(t, ctx, env, aliceToken)
	bob := dialWS(t, ctx, env, bobToken)

	// Alice learns bob is online before sending, so the delivery is live.
	var online proto.UserOnlineEvent
	alice.expect(t, ctx, proto.TypeUserOnline, &online)
	require.Equal(t, bobID, online.UserID)

	alice.send(t, ctx, proto.TypeMessageSend, proto.SendData{ReceiverID: bobID, Text: "hello bob"})

	var incoming proto.MessagePayload
	bob.expect(t, ctx, proto.TypeMessageNew, &incoming)
	require.Equal(t, aliceID, incoming.SenderID)
	require.Equal(t, "hello bob", incoming.Text)
	require.False(t, incoming.IsFromMe)

	var ack proto.MessagePayload
	alice.expect(t, ctx, proto.TypeMessageSent, &ack)
	require.Equal(t, incoming.ID, ack.ID)
	require.True(t, ack.Delivered)
	require.True(t, ack.IsFromMe)
}

func TestWSReadReceiptReachesSender(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceToken, _ := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	alice := dialWS(t, ctx, env, aliceToken)
	bob := dialWS(t, ctx, env, bobToken)
	alice.expect(t, ctx, proto.TypeUserOnline, nil)

	alice.send(t, ctx, proto.TypeMessageSend, proto.SendData{ReceiverID: bobID, Text: "ping"})

	var incoming proto.MessagePayload
	bob.expect(t, ctx, proto.TypeMessageNew, &incoming)

	bob.send(t, ctx, proto.TypeMessageRead, proto.ReadData{MessageID: incoming.ID})

	var read proto.MessageReadEvent
	alice.expect(t, ctx, proto.TypeMessageRead, &read)
	require.Equal(t, incoming.ID, read.MessageID)
	require.Equal(t, bobID, read.ReadBy)
	require.False(t, read.ReadAt.IsZero())
}

func TestWSTypingRelay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	alice := dialWS(t, ctx, env, aliceToken)
	bob := dialWS(t, ctx, env, bobToken)
	alice.expect(t, ctx, proto.TypeUserOnline, nil)

	alice.send(t, ctx, proto.TypeTypingStart, proto.TypingData{ReceiverID: bobID})

	var typing proto.TypingEvent
	bob.expect(t, ctx, proto.TypeTypingStart, &typing)
	require.Equal(t, aliceID, typing.UserID)
	require.Equal(t, "alice", typing.Username)

	alice.send(t, ctx, proto.TypeTypingStop, proto.TypingData{ReceiverID: bobID})
	bob.expect(t, ctx, proto.TypeTypingStop, &typing)
}

func TestWSPresenceAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceToken, _ := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	alice := dialWS(t, ctx, env, aliceToken)

	bob := dialWS(t, ctx, env, bobToken)
	var online proto.UserOnlineEvent
	alice.expect(t, ctx, proto.TypeUserOnline, &online)
	require.Equal(t, bobID, online.UserID)
	require.Equal(t, "bob", online.Username)

	bob.conn.Close(websocket.StatusNormalClosure, "bye")

	var offline proto.UserOfflineEvent
	alice.expect(t, ctx, proto.TypeUserOffline, &offline)
	require.Equal(t, bobID, offline.UserID)
	require.False(t, offline.LastSeen.IsZero())
}

func TestWSErrorFrameForInvalidSend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceToken, aliceID := env.register(t, "alice")
	alice := dialWS(t, ctx, env, aliceToken)

	// Self-send comes back as an error frame; the connection stays up.
	alice.send(t, ctx, proto.TypeMessageSend, proto.SendData{ReceiverID: aliceID, Text: "me"})

	var errEvent proto.ErrorEvent
	alice.expect(t, ctx, proto.TypeError, &errEvent)
	require.Equal(t, "invalid_target", errEvent.Code)

	// Unknown frame types are also answered, not fatal.
	alice.send(t, ctx, "no:such:type", struct{}{})
	alice.expect(t, ctx, proto.TypeError, &errEvent)
}
