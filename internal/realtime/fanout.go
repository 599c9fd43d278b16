package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/infrastructure/redis"
	"github.com/yourorg/internhub/internal/observability/metrics"
	"github.com/yourorg/internhub/internal/reliability/circuitbreaker"
	"github.com/yourorg/internhub/internal/reliability/retry"
)

const channelPrefix = "conversation:"

// envelope tags each published message with its origin instance so the
// publishing instance can skip its own echo (local delivery already
// happened).
type envelope struct {
	Origin  string         `json:"origin"`
	Message domain.Message `json:"message"`
}

// Fanout bridges the in-process hub across instances over Redis pub/sub.
// Publishing goes through a circuit breaker so a Redis outage degrades to
// local-only delivery instead of failing message sends.
type Fanout struct {
	hub        *Hub
	client     *redis.Client
	breaker    *circuitbreaker.CircuitBreaker
	retry      *retry.Config
	instanceID string
	logger     *slog.Logger
}

// NewFanout creates the Redis bridge
func NewFanout(hub *Hub, client *redis.Client, instanceID string, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fanout{
		hub:        hub,
		client:     client,
		instanceID: instanceID,
		breaker: circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second),
		retry: &retry.Config{
			MaxAttempts:       2,
			InitialBackoff:    50 * time.Millisecond,
			MaxBackoff:        500 * time.Millisecond,
			BackoffMultiplier: 2.0,
		},
		logger: logger,
	}
	f.breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("fanout circuit state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})
	return f
}

// Publish sends a message to the cross-instance channel. Local delivery has
// already happened by the time this is called, so errors here only cost
// remote subscribers a live update.
func (f *Fanout) Publish(ctx context.Context, msg domain.Message) {
	if !f.breaker.AllowRequest() {
		f.logger.Debug("fanout circuit open, skipping remote publish")
		return
	}

	payload, err := json.Marshal(envelope{Origin: f.instanceID, Message: msg})
	if err != nil {
		f.logger.Error("failed to encode message for fanout", slog.String("error", err.Error()))
		return
	}

	_, err = retry.Do(ctx, f.retry, f.logger, "fanout publish", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.client.Publish(ctx, channelPrefix+msg.ConversationID, payload)
	})
	if err != nil {
		f.breaker.RecordFailure()
		f.logger.Warn("fanout publish failed", slog.String("error", err.Error()))
		return
	}

	f.breaker.RecordSuccess()
	metrics.ObserveMessageDelivered("redis")
}

// Run consumes the cross-instance channel and replays remote inserts into the
// local hub. Blocks until ctx is cancelled.
func (f *Fanout) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	f.logger.Info("realtime fanout subscribed", slog.String("pattern", channelPrefix+"*"))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("realtime fanout stopped")
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return fmt.Errorf("fanout subscription closed")
			}
			if !strings.HasPrefix(m.Channel, channelPrefix) {
				continue
			}
			var env envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				f.logger.Warn("dropping malformed fanout payload",
					slog.String("channel", m.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			if env.Origin == f.instanceID {
				continue
			}
			f.hub.Publish(env.Message)
		}
	}
}
