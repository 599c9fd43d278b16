package realtime

import (
	"log/slog"
	"sync"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/observability/metrics"
)

// Hub fans newly inserted messages out to the subscribers of each
// conversation. Delivery is at-most-once and in feed order: a subscriber
// whose buffer is full is dropped rather than blocking the publisher, and a
// client that was not subscribed at insert time refetches over REST.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{} // conversation id -> subs
	logger      *slog.Logger
	bufferSize  int
}

// Subscription is one subscriber's feed for a single conversation
type Subscription struct {
	conversationID string
	ch             chan domain.Message
	hub            *Hub
	once           sync.Once
}

// Messages returns the subscriber's delivery channel. It is closed when the
// subscription is cancelled or the subscriber falls too far behind.
func (s *Subscription) Messages() <-chan domain.Message {
	return s.ch
}

// Close detaches the subscription from the hub
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// NewHub creates a hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string]map[*Subscription]struct{}),
		logger:      logger,
		bufferSize:  32,
	}
}

// Subscribe registers a feed on one conversation
func (h *Hub) Subscribe(conversationID string) *Subscription {
	sub := &Subscription{
		conversationID: conversationID,
		ch:             make(chan domain.Message, h.bufferSize),
		hub:            h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[conversationID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.subscribers[conversationID] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs, ok := h.subscribers[sub.conversationID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.conversationID)
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers a message to every live subscriber of its conversation.
// Slow subscribers are detached instead of blocking the sender.
func (h *Hub) Publish(msg domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[msg.ConversationID]
	if !ok {
		return
	}

	for sub := range subs {
		select {
		case sub.ch <- msg:
			metrics.ObserveMessageDelivered("local")
		default:
			h.logger.Warn("dropping slow subscriber",
				slog.String("conversation_id", msg.ConversationID),
			)
			h.removeLocked(sub)
		}
	}
}

// SubscriberCount reports how many feeds are open on a conversation
func (h *Hub) SubscriberCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[conversationID])
}
