package chat

import (
	"sort"
	"sync"
	"time"
)

// TypingTracker keeps the set of participants currently typing in each
// room. It is passive: inbound typing events arm per-(room,user) expiry
// timers and the display set follows from whatever is still live.
type TypingTracker struct {
	ttl time.Duration

	mu    sync.RWMutex
	rooms map[string]*ExpiryMap
}

func NewTypingTracker(ttl time.Duration) *TypingTracker {
	return &TypingTracker{
		ttl:   ttl,
		rooms: make(map[string]*ExpiryMap),
	}
}

// OnTypingEvent records that a user is typing in a room. A repeat event
// for the same (room,user) resets the clearance timer.
func (t *TypingTracker) OnTypingEvent(roomID, userID, displayName string) {
	if roomID == "" || userID == "" {
		return
	}

	t.mu.Lock()
	room, ok := t.rooms[roomID]
	if !ok {
		room = NewExpiryMap(t.ttl)
		t.rooms[roomID] = room
	}
	t.mu.Unlock()

	room.Set(userID, displayName)
}

// IsTyping returns the display names currently typing in a room, sorted
// for stable rendering.
func (t *TypingTracker) IsTyping(roomID string) []string {
	t.mu.RLock()
	room, ok := t.rooms[roomID]
	t.mu.RUnlock()
	if !ok {
		return nil
	}

	names := room.Values()
	sort.Strings(names)
	return names
}

// Close releases every pending clearance timer.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, room := range t.rooms {
		room.Close()
		delete(t.rooms, id)
	}
}

// TypingThrottle bounds outbound typing notifications to one per window
// per room. The compose path asks Allow before sending.
type TypingThrottle struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewTypingThrottle(window time.Duration) *TypingThrottle {
	return &TypingThrottle{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether a typing notification may be sent for the room
// now, and records the send time when it may.
func (t *TypingThrottle) Allow(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if last, ok := t.last[roomID]; ok && now.Sub(last) < t.window {
		return false
	}
	t.last[roomID] = now
	return true
}

// Reset forgets the room's throttle state, ending its compose session.
func (t *TypingThrottle) Reset(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, roomID)
}
