package chat

import "sync"

// Notifier is the seam to the host UI for cues and failure notices. The
// engine never renders anything itself.
type Notifier interface {
	// MessageSent fires when an outbound message was dispatched.
	MessageSent()
	// MessageReceived fires when a message from another user arrives.
	MessageReceived()
	// Failure surfaces a dismissible error notice.
	Failure(message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) MessageSent()     {}
func (NopNotifier) MessageReceived() {}
func (NopNotifier) Failure(string)   {}

// Session holds the per-login state shared by the chat components. It is
// passed to each component explicitly; nothing reads it ambiently.
type Session struct {
	UserID     string
	Token      string
	Privileged bool
	Notifier   Notifier

	mu         sync.RWMutex
	activeRoom string
}

func NewSession(userID, token string, privileged bool, notifier Notifier) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Session{
		UserID:     userID,
		Token:      token,
		Privileged: privileged,
		Notifier:   notifier,
	}
}

// SetActiveRoom records which room the user is currently viewing.
func (s *Session) SetActiveRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRoom = roomID
}

// ClearActiveRoom marks no room as active.
func (s *Session) ClearActiveRoom() {
	s.SetActiveRoom("")
}

// ActiveRoom returns the currently viewed room id, or "" when none.
func (s *Session) ActiveRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeRoom
}
