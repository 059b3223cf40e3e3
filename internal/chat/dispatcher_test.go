package chat

import (
	"testing"
	"time"

	"portal-chat/internal/models"
)

func newDispatcherFixture() (*Dispatcher, *Store, *TypingTracker, *Directory) {
	session := NewSession("me", "token", false, nil)
	store := NewStore("me", nil)
	tracker := NewTypingTracker(time.Second)
	directory := NewDirectory(&fakeRoomsAPI{}, session, time.Minute, nil)
	readstate := NewReadStatePropagator(newFakeReadAPI(0), store, session)
	return NewDispatcher(store, tracker, directory, readstate), store, tracker, directory
}

func TestDispatcherRoutesNewMessage(t *testing.T) {
	dispatcher, store, _, _ := newDispatcherFixture()

	m := msg("m1", "R", "other", "hello")
	dispatcher.Handle(models.Envelope{
		Type:    models.EventNewMessage,
		RoomID:  "R",
		Message: &m,
	})

	if timeline := store.Timeline("R"); len(timeline) != 1 || timeline[0].ID != "m1" {
		t.Errorf("new_message not appended, timeline %+v", timeline)
	}
}

func TestDispatcherIgnoresNewMessageWithoutBody(t *testing.T) {
	dispatcher, store, _, _ := newDispatcherFixture()

	dispatcher.Handle(models.Envelope{Type: models.EventNewMessage, RoomID: "R"})

	if timeline := store.Timeline("R"); len(timeline) != 0 {
		t.Errorf("Bodyless new_message must be dropped, timeline %+v", timeline)
	}
}

func TestDispatcherRoutesTyping(t *testing.T) {
	dispatcher, _, tracker, _ := newDispatcherFixture()

	dispatcher.Handle(models.Envelope{
		Type:     models.EventTyping,
		RoomID:   "R",
		UserID:   "u2",
		UserName: "Bob",
	})

	if names := tracker.IsTyping("R"); len(names) != 1 || names[0] != "Bob" {
		t.Errorf("typing event not tracked, got %v", names)
	}
	tracker.Close()
}

func TestDispatcherRoutesMessageDeleted(t *testing.T) {
	dispatcher, store, _, _ := newDispatcherFixture()
	store.Append("R", msg("m1", "R", "me", "secret"))

	dispatcher.Handle(models.Envelope{
		Type:       models.EventMessageDeleted,
		RoomID:     "R",
		MessageID:  "m1",
		DeleteType: models.DeleteScopeEveryone,
		IsDeleted:  true,
	})

	got, _ := store.Message("R", "m1")
	if !got.Deleted || got.Content != models.TombstoneContent {
		t.Errorf("message_deleted not applied, got %+v", got)
	}
}

func TestDispatcherRoutesReadReceipt(t *testing.T) {
	dispatcher, store, _, _ := newDispatcherFixture()

	readAt := time.Now()
	m := msg("m1", "R", "me", "mine")
	m.CreatedAt = readAt.Add(-time.Second)
	store.Append("R", m)

	dispatcher.Handle(models.Envelope{
		Type:   models.EventReadReceipt,
		RoomID: "R",
		UserID: "u2",
		ReadAt: readAt,
	})

	if got, _ := store.Message("R", "m1"); !got.Read {
		t.Error("read_receipt sweep did not mark the message read")
	}
}
