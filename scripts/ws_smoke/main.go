package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dkazarin/echoline-server/internal/proto"
)

// Sends one direct message over the live channel and waits for the ack,
// reporting whether the peer received it live.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "JWT token (from /api/register or /api/login)")
	peer := flag.Int64("peer", 0, "receiver user ID")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	if *token == "" || *peer <= 0 {
		return fmt.Errorf("-token and -peer are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"?token="+*token, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	payload, err := json.Marshal(proto.SendData{ReceiverID: *peer, Text: *text})
	if err != nil {
		return fmt.Errorf("marshal send: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeMessageSend, Data: payload}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch frame.Type {
		case proto.TypeMessageSent:
			var msg proto.MessagePayload
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				return fmt.Errorf("decode ack: %w", err)
			}
			fmt.Printf("sent message id=%d delivered=%v\n", msg.ID, msg.Delivered)
			return nil
		case proto.TypeError:
			var errEvent proto.ErrorEvent
			if err := json.Unmarshal(frame.Data, &errEvent); err != nil {
				return fmt.Errorf("decode error frame: %w", err)
			}
			return fmt.Errorf("server error: %s (%s)", errEvent.Message, errEvent.Code)
		default:
			fmt.Printf("received: type=%s\n", frame.Type)
		}
	}
}
