package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"portal-chat/internal/models"
)

type recordingNotifier struct {
	mu       sync.Mutex
	sent     int
	received int
	failures []string
}

func (n *recordingNotifier) MessageSent() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent++
}

func (n *recordingNotifier) MessageReceived() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received++
}

func (n *recordingNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func (n *recordingNotifier) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent, n.received, len(n.failures)
}

func msg(id, roomID, senderID, content string) models.Message {
	return models.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Type:      models.MessageTypeText,
		CreatedAt: time.Now(),
	}
}

func TestTimelinePreservesDeliveryOrder(t *testing.T) {
	store := NewStore("me", nil)

	// Deliberately non-chronological created times; delivery order must
	// still win.
	base := time.Now()
	for i := 0; i < 5; i++ {
		m := msg(fmt.Sprintf("m%d", i), "r1", "other", "hello")
		m.CreatedAt = base.Add(-time.Duration(i) * time.Minute)
		store.Append("r1", m)
	}

	timeline := store.Timeline("r1")
	if len(timeline) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(timeline))
	}
	for i, m := range timeline {
		if m.ID != fmt.Sprintf("m%d", i) {
			t.Errorf("Position %d holds %s, want m%d", i, m.ID, i)
		}
	}
}

func TestTombstoneIsIdempotent(t *testing.T) {
	store := NewStore("me", nil)
	store.Append("r1", msg("m1", "r1", "me", "secret"))

	store.MarkDeleted("r1", "m1", models.DeleteScopeEveryone)
	first, _ := store.Message("r1", "m1")

	store.MarkDeleted("r1", "m1", models.DeleteScopeEveryone)
	second, _ := store.Message("r1", "m1")

	if !first.Deleted || first.Content != models.TombstoneContent {
		t.Errorf("Expected tombstoned message, got %+v", first)
	}
	if first != second {
		t.Errorf("Second delete changed state: %+v vs %+v", first, second)
	}

	timeline := store.Timeline("r1")
	if len(timeline) != 1 {
		t.Errorf("Tombstoned message must keep its position, timeline has %d entries", len(timeline))
	}
}

func TestDeleteScopeMeRemovesLocally(t *testing.T) {
	store := NewStore("me", nil)
	store.Append("r1", msg("m1", "r1", "me", "a"))
	store.Append("r1", msg("m2", "r1", "me", "b"))

	store.MarkDeleted("r1", "m1", models.DeleteScopeMe)

	timeline := store.Timeline("r1")
	if len(timeline) != 1 || timeline[0].ID != "m2" {
		t.Errorf("Expected only m2 to remain, got %+v", timeline)
	}
	if _, ok := store.Message("r1", "m1"); ok {
		t.Error("m1 still resolvable after local removal")
	}
}

func TestReceiveCueSkipsSelfEcho(t *testing.T) {
	notifier := &recordingNotifier{}
	store := NewStore("me", notifier)

	store.Append("r1", msg("m1", "r1", "other", "hi"))
	store.Append("r1", msg("m2", "r1", "me", "hi back"))

	if _, received, _ := notifier.counts(); received != 1 {
		t.Errorf("Expected 1 receive cue, got %d", received)
	}
}

func TestMarkReadBeforeSweep(t *testing.T) {
	store := NewStore("u1", nil)

	readAt := time.Now()
	a := msg("A", "R", "u1", "from local user")
	a.CreatedAt = readAt.Add(-time.Minute)
	b := msg("B", "R", "u2", "from the reader")
	b.CreatedAt = readAt.Add(-time.Minute)
	late := msg("C", "R", "u1", "after the receipt")
	late.CreatedAt = readAt.Add(time.Minute)

	store.Append("R", a)
	store.Append("R", b)
	store.Append("R", late)

	changed := store.MarkReadBefore("R", "u2", readAt)
	if changed != 1 {
		t.Fatalf("Expected 1 message marked, got %d", changed)
	}

	got, _ := store.Message("R", "A")
	if !got.Read {
		t.Error("A should be read: authored by someone else, created before read_at")
	}
	got, _ = store.Message("R", "B")
	if got.Read {
		t.Error("B should be unaffected: authored by the reader")
	}
	got, _ = store.Message("R", "C")
	if got.Read {
		t.Error("C should be unaffected: created after read_at")
	}
}

func TestLoadHistoryReplacesTimeline(t *testing.T) {
	notifier := &recordingNotifier{}
	store := NewStore("me", notifier)
	store.Append("r1", msg("old", "r1", "other", "stale"))

	store.LoadHistory("r1", []models.Message{
		msg("h1", "r1", "other", "first"),
		msg("h2", "r1", "me", "second"),
	})

	timeline := store.Timeline("r1")
	if len(timeline) != 2 || timeline[0].ID != "h1" || timeline[1].ID != "h2" {
		t.Errorf("Unexpected timeline after history load: %+v", timeline)
	}
	if _, received, _ := notifier.counts(); received != 1 {
		t.Errorf("History load must not fire receive cues, got %d total", received)
	}
}
