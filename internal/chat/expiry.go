package chat

import (
	"sync"
	"time"
)

// ExpiryMap holds keyed string values that clear themselves after a
// fixed TTL. Setting a key again re-arms its timer instead of stacking a
// second clearance. Used for typing presence.
type ExpiryMap struct {
	ttl time.Duration

	mu     sync.Mutex
	values map[string]string
	timers map[string]*time.Timer
	gens   map[string]uint64
}

func NewExpiryMap(ttl time.Duration) *ExpiryMap {
	return &ExpiryMap{
		ttl:    ttl,
		values: make(map[string]string),
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// Set stores value under key and (re)arms its clearance timer.
func (e *ExpiryMap) Set(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.values[key] = value
	e.gens[key]++
	gen := e.gens[key]

	if timer, ok := e.timers[key]; ok {
		timer.Stop()
	}
	e.timers[key] = time.AfterFunc(e.ttl, func() {
		e.expire(key, gen)
	})
}

// expire removes key only if no later Set re-armed it. The generation
// check guards against a stopped-but-already-fired timer clearing a
// fresher entry.
func (e *ExpiryMap) expire(key string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gens[key] != gen {
		return
	}
	delete(e.values, key)
	delete(e.timers, key)
	delete(e.gens, key)
}

// Get returns the live value for key.
func (e *ExpiryMap) Get(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value, ok := e.values[key]
	return value, ok
}

// Values returns a copy of all live values.
func (e *ExpiryMap) Values() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.values))
	for _, v := range e.values {
		out = append(out, v)
	}
	return out
}

// Len returns the number of live entries.
func (e *ExpiryMap) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values)
}

// Close stops every pending timer and drops all entries.
func (e *ExpiryMap) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, timer := range e.timers {
		timer.Stop()
		delete(e.timers, key)
	}
	e.values = make(map[string]string)
	e.gens = make(map[string]uint64)
}
