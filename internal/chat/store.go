package chat

import (
	"sync"
	"time"

	"portal-chat/internal/logger"
	"portal-chat/internal/models"
)

// Store owns every room timeline. It is the only component that mutates
// message sequences; push events and history loads funnel through it.
// Delivery order is presentation order: appends go to the end and
// nothing is ever re-sorted by timestamp.
type Store struct {
	localUserID string
	notifier    Notifier

	mu        sync.RWMutex
	timelines map[string][]*models.Message
	byID      map[string]map[string]*models.Message
}

func NewStore(localUserID string, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store{
		localUserID: localUserID,
		notifier:    notifier,
		timelines:   make(map[string][]*models.Message),
		byID:        make(map[string]map[string]*models.Message),
	}
}

// Append adds one message to the end of its room timeline. Messages from
// other users trigger the receive cue; self-authored echoes do not.
func (s *Store) Append(roomID string, msg models.Message) {
	s.mu.Lock()
	m := msg
	s.timelines[roomID] = append(s.timelines[roomID], &m)
	if s.byID[roomID] == nil {
		s.byID[roomID] = make(map[string]*models.Message)
	}
	s.byID[roomID][m.ID] = &m
	s.mu.Unlock()

	if msg.SenderID != s.localUserID {
		s.notifier.MessageReceived()
	}
}

// LoadHistory replaces a room's timeline with a server-fetched one,
// oldest first. Used when a room is opened; no cues fire.
func (s *Store) LoadHistory(roomID string, msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeline := make([]*models.Message, 0, len(msgs))
	index := make(map[string]*models.Message, len(msgs))
	for i := range msgs {
		m := msgs[i]
		timeline = append(timeline, &m)
		index[m.ID] = &m
	}
	s.timelines[roomID] = timeline
	s.byID[roomID] = index
}

// MarkDeleted applies a deletion to a message. Scope "me" removes it
// from the local timeline; scope "everyone" tombstones it in place.
// Tombstoning an already-deleted message is a no-op.
func (s *Store) MarkDeleted(roomID, messageID string, scope models.DeleteScope) {
	if scope == models.DeleteScopeMe {
		s.RemoveLocal(roomID, messageID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.byID[roomID][messageID]
	if !ok {
		logger.Debugf("Delete event for unknown message %s in room %s", messageID, roomID)
		return
	}
	msg.Tombstone()
}

// RemoveLocal filters a message out of the local timeline entirely.
// Other participants still see it.
func (s *Store) RemoveLocal(roomID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeline, ok := s.timelines[roomID]
	if !ok {
		return
	}
	for i, msg := range timeline {
		if msg.ID == messageID {
			s.timelines[roomID] = append(timeline[:i], timeline[i+1:]...)
			delete(s.byID[roomID], messageID)
			return
		}
	}
}

// Timeline returns a copy of a room's messages in delivery order.
func (s *Store) Timeline(roomID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timeline := s.timelines[roomID]
	out := make([]models.Message, 0, len(timeline))
	for _, msg := range timeline {
		out = append(out, *msg)
	}
	return out
}

// Message returns a copy of one message by id.
func (s *Store) Message(roomID, messageID string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[roomID][messageID]
	if !ok {
		return models.Message{}, false
	}
	return *msg, true
}

// MarkReadBefore sweeps a room, marking read every message not authored
// by readerID with a created time at or before readAt. Returns how many
// messages changed state.
func (s *Store) MarkReadBefore(roomID, readerID string, readAt time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, msg := range s.timelines[roomID] {
		if msg.SenderID == readerID || msg.Read {
			continue
		}
		if msg.CreatedAt.After(readAt) {
			continue
		}
		msg.Read = true
		changed++
	}
	return changed
}
