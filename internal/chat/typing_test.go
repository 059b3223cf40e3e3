package chat

import (
	"testing"
	"time"
)

func TestTypingEntryExpires(t *testing.T) {
	tracker := NewTypingTracker(60 * time.Millisecond)
	defer tracker.Close()

	tracker.OnTypingEvent("R", "U7", "Pat")
	if names := tracker.IsTyping("R"); len(names) != 1 || names[0] != "Pat" {
		t.Fatalf("Expected [Pat], got %v", names)
	}

	time.Sleep(90 * time.Millisecond)
	if names := tracker.IsTyping("R"); len(names) != 0 {
		t.Errorf("Entry should be gone after TTL, got %v", names)
	}
}

func TestTypingRepeatEventResetsTimer(t *testing.T) {
	tracker := NewTypingTracker(60 * time.Millisecond)
	defer tracker.Close()

	tracker.OnTypingEvent("R", "U7", "Pat")
	time.Sleep(45 * time.Millisecond)
	tracker.OnTypingEvent("R", "U7", "Pat")

	// Past the first event's deadline, inside the second's window.
	time.Sleep(30 * time.Millisecond)
	if names := tracker.IsTyping("R"); len(names) != 1 {
		t.Errorf("Second event should have reset the timer, got %v", names)
	}

	time.Sleep(60 * time.Millisecond)
	if names := tracker.IsTyping("R"); len(names) != 0 {
		t.Errorf("Entry should expire after the reset window, got %v", names)
	}
}

func TestTypingEntriesAreIndependentPerRoomAndUser(t *testing.T) {
	tracker := NewTypingTracker(100 * time.Millisecond)
	defer tracker.Close()

	tracker.OnTypingEvent("R1", "U1", "Alice")
	tracker.OnTypingEvent("R1", "U2", "Bob")
	tracker.OnTypingEvent("R2", "U1", "Alice")

	if names := tracker.IsTyping("R1"); len(names) != 2 {
		t.Errorf("Expected 2 typers in R1, got %v", names)
	}
	if names := tracker.IsTyping("R2"); len(names) != 1 {
		t.Errorf("Expected 1 typer in R2, got %v", names)
	}
	if names := tracker.IsTyping("R3"); len(names) != 0 {
		t.Errorf("Expected no typers in R3, got %v", names)
	}
}

func TestTypingThrottleWindow(t *testing.T) {
	throttle := NewTypingThrottle(80 * time.Millisecond)

	if !throttle.Allow("R") {
		t.Fatal("First notification must be allowed")
	}
	if throttle.Allow("R") {
		t.Error("Second notification inside the window must be suppressed")
	}
	if !throttle.Allow("other") {
		t.Error("Throttle windows are per room")
	}

	time.Sleep(100 * time.Millisecond)
	if !throttle.Allow("R") {
		t.Error("Notification after the window must be allowed")
	}

	throttle.Reset("R")
	if !throttle.Allow("R") {
		t.Error("Reset should end the compose session and allow again")
	}
}
