package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/realtime"
)

func newMessagingFixture(t *testing.T) (*MessagingService, *realtime.Hub) {
	t.Helper()
	users := newMemUserRepo()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if err := users.Create(&domain.User{Email: email, IsActive: true}); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}
	hub := realtime.NewHub(nil)
	svc := NewMessagingService(newMemConversationRepo(), newMemMessageRepo(), users, hub, nil, nil)
	return svc, hub
}

func TestOpenConversation(t *testing.T) {
	svc, _ := newMessagingFixture(t)

	c1, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// Same pair from the other side resolves to the same thread
	c2, err := svc.Open("u-b@example.com", "u-a@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("expected one conversation per pair, got %s and %s", c1.ID, c2.ID)
	}

	if _, err := svc.Open("u-a@example.com", "u-a@example.com"); err == nil {
		t.Fatalf("expected self-conversation to be rejected")
	}
	if _, err := svc.Open("u-a@example.com", "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown participant error, got %v", err)
	}
}

func TestSendDeliversToSubscribers(t *testing.T) {
	svc, _ := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	sub, err := svc.Subscribe("u-b@example.com", conv.ID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()

	sent, err := svc.Send(ctx, "u-a@example.com", conv.ID, "  hello there  ")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sent.Content != "hello there" {
		t.Fatalf("expected trimmed content, got %q", sent.Content)
	}

	select {
	case got := <-sub.Messages():
		if got.ID != sent.ID || got.Content != "hello there" {
			t.Fatalf("unexpected delivery: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected live delivery")
	}
}

func TestSendValidation(t *testing.T) {
	svc, _ := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := svc.Send(ctx, "u-a@example.com", conv.ID, "   "); err == nil {
		t.Fatalf("expected empty content to be rejected")
	}
	if _, err := svc.Send(ctx, "u-a@example.com", conv.ID, strings.Repeat("x", maxMessageLength+1)); err == nil {
		t.Fatalf("expected oversized content to be rejected")
	}
	if _, err := svc.Send(ctx, "u-c@example.com", conv.ID, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected non-participant send to be forbidden, got %v", err)
	}
}

func TestListAndMarkRead(t *testing.T) {
	svc, _ := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := svc.Send(ctx, "u-a@example.com", conv.ID, "one"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.Send(ctx, "u-b@example.com", conv.ID, "two"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msgs, err := svc.ListMessages("u-a@example.com", conv.ID, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "one" {
		t.Fatalf("expected history oldest first, got %+v", msgs)
	}

	if _, err := svc.ListMessages("u-c@example.com", conv.ID, 0); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected non-participant read to be forbidden, got %v", err)
	}

	// b reads a's message; b's own message stays untouched
	n, err := svc.MarkRead("u-b@example.com", conv.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 message marked, got %d", n)
	}

	n, err = svc.MarkRead("u-b@example.com", conv.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected repeat mark-read to be a no-op, got %d", n)
	}
}

func TestSubscribeRequiresMembership(t *testing.T) {
	svc, _ := newMessagingFixture(t)

	conv, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := svc.Subscribe("u-c@example.com", conv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden subscription, got %v", err)
	}
}

func TestInboxOrdering(t *testing.T) {
	svc, _ := newMessagingFixture(t)
	ctx := context.Background()

	c1, err := svc.Open("u-a@example.com", "u-b@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	c2, err := svc.Open("u-a@example.com", "u-c@example.com")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := svc.Send(ctx, "u-a@example.com", c2.ID, "later thread"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.Send(ctx, "u-a@example.com", c1.ID, "most recent"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	inbox, err := svc.ListConversations("u-a@example.com")
	if err != nil {
		t.Fatalf("list conversations failed: %v", err)
	}
	if len(inbox) != 2 || inbox[0].ID != c1.ID {
		t.Fatalf("expected most recently active thread first, got %+v", inbox)
	}
}
