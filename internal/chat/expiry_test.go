package chat

import (
	"testing"
	"time"
)

func TestExpiryMapClearsAfterTTL(t *testing.T) {
	m := NewExpiryMap(60 * time.Millisecond)
	defer m.Close()

	m.Set("k", "v")

	if _, ok := m.Get("k"); !ok {
		t.Fatal("Entry missing immediately after Set")
	}

	time.Sleep(90 * time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Error("Entry still present after TTL elapsed")
	}
}

func TestExpiryMapResetRearmsTimer(t *testing.T) {
	m := NewExpiryMap(60 * time.Millisecond)
	defer m.Close()

	m.Set("k", "v1")
	time.Sleep(40 * time.Millisecond)
	m.Set("k", "v2")

	// 70ms after the first Set but only 30ms after the second: the
	// reset must have re-armed the timer, not stacked a clearance.
	time.Sleep(30 * time.Millisecond)
	if v, ok := m.Get("k"); !ok || v != "v2" {
		t.Errorf("Entry should survive past the original deadline, got %q ok=%v", v, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Error("Entry still present after the re-armed TTL elapsed")
	}
}

func TestExpiryMapCloseStopsTimers(t *testing.T) {
	m := NewExpiryMap(50 * time.Millisecond)
	m.Set("a", "1")
	m.Set("b", "2")

	m.Close()
	if m.Len() != 0 {
		t.Errorf("Expected empty map after Close, got %d entries", m.Len())
	}

	// A Set after Close still works with fresh state.
	m.Set("c", "3")
	if v, _ := m.Get("c"); v != "3" {
		t.Errorf("Set after Close broken, got %q", v)
	}
}
