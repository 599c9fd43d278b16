package realtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/yourorg/internhub/internal/domain"
)

func TestHubDeliversToConversationSubscribers(t *testing.T) {
	hub := NewHub(nil)

	subA := hub.Subscribe("conv-1")
	defer subA.Close()
	subB := hub.Subscribe("conv-1")
	defer subB.Close()
	other := hub.Subscribe("conv-2")
	defer other.Close()

	msg := domain.Message{ID: "m1", ConversationID: "conv-1", Content: "hi"}
	hub.Publish(msg)

	for _, sub := range []*Subscription{subA, subB} {
		select {
		case got := <-sub.Messages():
			if got.ID != "m1" {
				t.Fatalf("unexpected message: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected delivery")
		}
	}

	select {
	case got := <-other.Messages():
		t.Fatalf("conversation isolation broken: %+v", got)
	default:
	}
}

func TestHubClosedSubscriptionStopsReceiving(t *testing.T) {
	hub := NewHub(nil)

	sub := hub.Subscribe("conv-1")
	sub.Close()
	if n := hub.SubscriberCount("conv-1"); n != 0 {
		t.Fatalf("expected 0 subscribers after close, got %d", n)
	}

	// Closing twice is safe
	sub.Close()

	hub.Publish(domain.Message{ID: "m1", ConversationID: "conv-1"})
	if _, ok := <-sub.Messages(); ok {
		t.Fatalf("expected closed channel")
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)

	slow := hub.Subscribe("conv-1")
	for i := 0; i < hub.bufferSize+1; i++ {
		hub.Publish(domain.Message{ID: fmt.Sprintf("m%d", i), ConversationID: "conv-1"})
	}

	if n := hub.SubscriberCount("conv-1"); n != 0 {
		t.Fatalf("expected slow subscriber detached, got %d subscribers", n)
	}

	// The channel still drains its buffered messages and then closes
	drained := 0
	for range slow.Messages() {
		drained++
	}
	if drained != hub.bufferSize {
		t.Fatalf("expected %d buffered messages, got %d", hub.bufferSize, drained)
	}
}
