package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AdminChannel is the shared channel admin dashboards subscribe to, kept
// distinct from the per-email channels.
const AdminChannel = "admin"

// redisChannelPrefix namespaces hub traffic on the shared Redis instance.
const redisChannelPrefix = "notify:"

// Message is the wire shape pushed to subscribed clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// subscriber receives raw payloads for one live connection. Sends are
// non-blocking; a full buffer means the client is too slow and the payload
// is dropped, matching the no-delivery-guarantee channel model.
type subscriber struct {
	send chan []byte
}

// Hub is the process-local channel registry: addressable key (lowercased
// email or AdminChannel) to the set of live subscribers. It is rebuilt
// from scratch on restart; clients re-join after reconnect. With a Redis
// client configured, publishes are bridged through Redis pub/sub so any
// instance can deliver to its own sockets.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*subscriber]struct{}
	logger   *zap.Logger
	redis    *redis.Client
}

// NewHub constructs the registry. redisClient may be nil for
// single-instance, in-process delivery.
func NewHub(logger *zap.Logger, redisClient *redis.Client) *Hub {
	return &Hub{
		channels: make(map[string]map[*subscriber]struct{}),
		logger:   logger,
		redis:    redisClient,
	}
}

// Run consumes the Redis bridge until ctx is cancelled. It is a no-op
// without a Redis client and must be started once, on its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			channel := strings.TrimPrefix(msg.Channel, redisChannelPrefix)
			h.deliverLocal(channel, []byte(msg.Payload))
		}
	}
}

// Subscribe registers a connection on a channel and returns its payload
// feed plus an unsubscribe func.
func (h *Hub) Subscribe(channel string) (<-chan []byte, func()) {
	key := normalizeChannel(channel)
	sub := &subscriber{send: make(chan []byte, 16)}

	h.mu.Lock()
	if h.channels[key] == nil {
		h.channels[key] = make(map[*subscriber]struct{})
	}
	h.channels[key][sub] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if subs, ok := h.channels[key]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.channels, key)
			}
		}
		h.mu.Unlock()
	}
	return sub.send, unsubscribe
}

// Publish pushes a message to every subscriber of the channel. With Redis
// configured the payload goes through pub/sub and comes back via Run;
// otherwise it is delivered to local subscribers directly. There is no
// acknowledgement or replay.
func (h *Hub) Publish(ctx context.Context, channel string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("realtime payload marshal failed", zap.Error(err))
		return
	}
	key := normalizeChannel(channel)

	if h.redis != nil {
		if err := h.redis.Publish(ctx, redisChannelPrefix+key, payload).Err(); err != nil {
			h.logger.Warn("realtime redis publish failed",
				zap.String("channel", key), zap.Error(err))
			h.deliverLocal(key, payload)
		}
		return
	}
	h.deliverLocal(key, payload)
}

// SubscriberCount reports how many live connections a channel has.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[normalizeChannel(channel)])
}

func (h *Hub) deliverLocal(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.channels[channel] {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("realtime subscriber too slow, dropping push",
				zap.String("channel", channel))
		}
	}
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimSpace(channel))
}
