package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/anishmaharjan/caremap/internal/pkg/metrics"
)

// channelSubjects maps client-facing channel names to NATS subjects.
var channelSubjects = map[string]string{
	"sync":     "care.sync.>",
	"bookings": "care.booking.>",
	"updates":  "care.updates.broadcast",
}

// wsCommand is sent by clients to manage their feeds, e.g.
// {"action":"subscribe","channel":"bookings"}. The channel defaults to
// "sync", which every client also starts subscribed to.
type wsCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// WebSocketHandler relays NATS events to connected clients.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var writeMu sync.Mutex
		send := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = send(json.RawMessage(msg.Data))
		}

		subs := make(map[string]*nats.Subscription)
		defer func() {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			slog.Info("ws client disconnected", "remote", remoteAddr)
		}()

		// Every client starts on the sync feed.
		sub, err := nc.Subscribe(channelSubjects["sync"], relay)
		if err != nil {
			slog.Error("ws default subscribe", "error", err)
			return
		}
		subs[channelSubjects["sync"]] = sub

		// Keep-alive ping until the read loop ends.
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					writeMu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					writeMu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}

			var cmd wsCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				_ = send(map[string]string{"error": "invalid JSON"})
				continue
			}
			if cmd.Channel == "" {
				cmd.Channel = "sync"
			}
			subject, ok := channelSubjects[cmd.Channel]
			if !ok {
				_ = send(map[string]string{"error": "unknown channel: " + cmd.Channel})
				continue
			}

			switch cmd.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = send(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = send(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = send(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				s, exists := subs[subject]
				if !exists {
					_ = send(map[string]string{"error": "not subscribed to " + subject})
					continue
				}
				_ = s.Unsubscribe()
				delete(subs, subject)
				_ = send(map[string]string{"status": "unsubscribed", "subject": subject})

			default:
				_ = send(map[string]string{"error": "unknown action: " + cmd.Action})
			}
		}
	}
}
