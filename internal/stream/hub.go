package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"backend-drivemate/internal/logging"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "drivemate:"
	channelSuffix  = ":live"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans live trip metrics out to websocket clients keyed by driver. With redis
// configured, every broadcast goes through pub/sub so clients connected to any
// instance receive it; without redis delivery is local only.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	logger  *slog.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	done    chan struct{}
}

type Client struct {
	DriverID string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		redis:   redisClient,
		logger:  logger,
		clients: map[string]map[*Client]struct{}{},
		done:    make(chan struct{}),
	}

	if redisClient != nil {
		ctx := context.Background()
		pubsub := redisClient.PSubscribe(ctx, channelPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			logging.LogError(logger, "redis subscribe failed, live fan-out is local only", err,
				slog.String("component", "stream"))
			_ = pubsub.Close()
			h.redis = nil
			close(h.done)
			return h
		}
		h.pubsub = pubsub
		go h.subscribeRedis()
	} else {
		close(h.done)
	}
	return h
}

func (h *Hub) Register(driverID string) *Client {
	client := &Client{
		DriverID: driverID,
		Send:     make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[driverID] == nil {
		h.clients[driverID] = map[*Client]struct{}{}
	}
	h.clients[driverID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if driverClients, ok := h.clients[client.DriverID]; ok {
		if _, registered := driverClients[client]; !registered {
			return
		}
		delete(driverClients, client)
		if len(driverClients) == 0 {
			delete(h.clients, client.DriverID)
		}
		close(client.Send)
	}
}

// Broadcast delivers payload to every client watching driverID. Slow clients drop messages.
func (h *Hub) Broadcast(driverID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(driverID), payload).Err()
		if err == nil {
			return
		}
		logging.LogError(h.logger, "redis publish failed", err,
			slog.String("driver_id", driverID),
			slog.String("component", "stream"))
	}
	h.deliver(driverID, payload)
}

func (h *Hub) deliver(driverID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[driverID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	defer close(h.done)
	for msg := range h.pubsub.Channel() {
		driverID := driverIDFromChannel(msg.Channel)
		if driverID == "" {
			continue
		}
		h.deliver(driverID, []byte(msg.Payload))
	}
}

// Close stops the redis subscription, if any.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	err := h.pubsub.Close()
	<-h.done
	return err
}

func redisChannel(driverID string) string {
	return channelPrefix + driverID + channelSuffix
}

func driverIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
