package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dkazarin/echoline-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "JWT obtained from /api/login")
	peer := flag.Int64("peer", 0, "user ID to chat with")
	flag.Parse()

	if *token == "" {
		return errors.New("a -token is required; register and login via the REST API first")
	}
	if *peer <= 0 {
		return errors.New("a -peer user ID is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"?token="+*token, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s, chatting with user %d\n", *addr, *peer)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *peer)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			log.Printf("marshal outbound data: %v", err)
			continue
		}

		switch outbound.Type {
		case proto.TypeMessageNew:
			var msg proto.MessagePayload
			if err := json.Unmarshal(raw, &msg); err == nil {
				fmt.Printf("[%d] %s\n", msg.SenderID, msg.Text)
			}
		case proto.TypeMessageSent:
			var msg proto.MessagePayload
			if err := json.Unmarshal(raw, &msg); err == nil {
				fmt.Printf("(sent #%d delivered=%s)\n", msg.ID, strconv.FormatBool(msg.Delivered))
			}
		case proto.TypeUserOnline:
			var ev proto.UserOnlineEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				fmt.Printf("* %s is online\n", ev.Username)
			}
		case proto.TypeUserOffline:
			var ev proto.UserOfflineEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				fmt.Printf("* %s went offline\n", ev.Username)
			}
		case proto.TypeTypingStart:
			var ev proto.TypingEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				fmt.Printf("* %s is typing...\n", ev.Username)
			}
		case proto.TypeMessageRead:
			var ev proto.MessageReadEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				fmt.Printf("(message #%d read)\n", ev.MessageID)
			}
		case proto.TypeError:
			var ev proto.ErrorEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				fmt.Printf("! error: %s\n", ev.Message)
			}
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, peer int64) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		payload, err := json.Marshal(proto.SendData{ReceiverID: peer, Text: text})
		if err != nil {
			log.Printf("marshal send: %v", err)
			continue
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeMessageSend, Data: payload}); err != nil {
			log.Printf("send: %v", err)
			return
		}
	}
}
