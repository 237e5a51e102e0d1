package realtime

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// clientAction is what connected clients send to manage their channel
// membership.
type clientAction struct {
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves the websocket endpoint. Each connection may join one or
// more channels via join/joinAdmin actions; pushes fan in from all of them
// through a single writer loop since websocket conns are not safe for
// concurrent writes.
func Handler(hub *Hub, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		feeds := make(chan []byte, 16)
		unsubs := map[string]func(){}
		done := make(chan struct{})
		defer func() {
			close(done)
			for _, unsubscribe := range unsubs {
				unsubscribe()
			}
			_ = conn.Close()
		}()

		join := func(channel string) {
			if channel == "" {
				return
			}
			key := normalizeChannel(channel)
			if _, exists := unsubs[key]; exists {
				return
			}
			feed, unsubscribe := hub.Subscribe(key)
			unsubs[key] = unsubscribe
			go func() {
				for {
					select {
					case <-done:
						return
					case payload, ok := <-feed:
						if !ok {
							return
						}
						select {
						case feeds <- payload:
						case <-done:
							return
						}
					}
				}
			}()
		}

		leave := func(channel string) {
			key := normalizeChannel(channel)
			if unsubscribe, exists := unsubs[key]; exists {
				unsubscribe()
				delete(unsubs, key)
			}
		}

		// writer loop
		go func() {
			for {
				select {
				case <-done:
					return
				case payload := <-feeds:
					if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				}
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var action clientAction
			if err := json.Unmarshal(raw, &action); err != nil {
				logger.Debug("realtime client sent malformed action", zap.Error(err))
				continue
			}
			switch action.Action {
			case "join":
				join(action.Email)
			case "joinAdmin":
				join(AdminChannel)
			case "leave":
				leave(action.Email)
			}
		}
	})
}
