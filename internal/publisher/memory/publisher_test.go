package memory

import (
	"context"
	"testing"
	"time"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func TestPublisherStoresMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "jobs-a", map[string]string{"k": "v"})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "jobs-b", "payload")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Topic != "jobs-a" || msgs[1].Topic != "jobs-b" {
		t.Fatalf("topics not recorded correctly: %+v", msgs)
	}
	if msgs[1].ID != "memory-2" {
		t.Fatalf("expected id memory-2, got %s", msgs[1].ID)
	}

	msgs[0].Topic = "modified"
	if pub.Messages()[0].Topic == "modified" {
		t.Fatal("expected Messages() to return a copy")
	}
}

func TestPublisherEventsFiltersJobEvents(t *testing.T) {
	t.Parallel()

	pub := New()
	ctx := context.Background()
	ev := styleguide.JobEvent{JobID: "job-1", Status: styleguide.StatusCompleted, Timestamp: time.Unix(0, 0)}
	_, _ = pub.Publish(ctx, "jobs", "noise")
	_, _ = pub.Publish(ctx, "jobs", ev)
	_, _ = pub.Publish(ctx, "jobs", &styleguide.JobEvent{JobID: "job-2", Status: styleguide.StatusFailed})

	events := pub.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].JobID != "job-1" || events[1].Status != styleguide.StatusFailed {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestPublisherHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	pub := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pub.Publish(ctx, "jobs", "x"); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if len(pub.Messages()) != 0 {
		t.Fatal("canceled publish must not be recorded")
	}
}
