package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"portal-chat/internal/logger"
	"portal-chat/internal/models"
)

// DeleteAPI is the slice of the portal API the coordinator commits
// through. One call per message id; deletions never ride the push
// channel.
type DeleteAPI interface {
	DeleteMessage(messageID string, scope models.DeleteScope) error
}

// DeletionState is the coordinator's state machine position.
type DeletionState int

const (
	DeletionIdle DeletionState = iota
	DeletionAwaitingConfirmation
	DeletionPending
)

func (s DeletionState) String() string {
	switch s {
	case DeletionAwaitingConfirmation:
		return "awaiting_confirmation"
	case DeletionPending:
		return "pending"
	default:
		return "idle"
	}
}

// DeletionCoordinator runs the reversible-delete workflow: select
// messages, confirm a scope, count down while the Undo affordance is
// shown, then either cancel or commit. Nothing is mutated until commit,
// so Undo needs no compensation. At most one batch is in flight.
type DeletionCoordinator struct {
	api     DeleteAPI
	store   *Store
	session *Session

	countdownFrom int
	tick          time.Duration
	everyoneAge   time.Duration

	// OnTick, when set, receives the seconds remaining after each tick
	// so the host can render the countdown. Called outside the lock.
	OnTick func(remaining int)

	mu        sync.Mutex
	state     DeletionState
	roomID    string
	selected  []string
	batchID   string
	remaining int
	cancelCh  chan struct{}
}

func NewDeletionCoordinator(api DeleteAPI, store *Store, session *Session, countdownFrom int, tick, everyoneAge time.Duration) *DeletionCoordinator {
	return &DeletionCoordinator{
		api:           api,
		store:         store,
		session:       session,
		countdownFrom: countdownFrom,
		tick:          tick,
		everyoneAge:   everyoneAge,
	}
}

// State returns the current state machine position.
func (c *DeletionCoordinator) State() DeletionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the countdown seconds left, 0 when not pending.
func (c *DeletionCoordinator) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// BeginSelection enters AwaitingConfirmation with the chosen messages.
// The caller keeps the delete affordance disabled while a batch is
// pending, so a conflicting Begin is rejected rather than queued.
func (c *DeletionCoordinator) BeginSelection(roomID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return fmt.Errorf("no messages selected")
	}
	for _, id := range messageIDs {
		if _, ok := c.store.Message(roomID, id); !ok {
			return fmt.Errorf("message %s not found in room %s", id, roomID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != DeletionIdle {
		return fmt.Errorf("deletion already in progress (state %s)", c.state)
	}
	c.state = DeletionAwaitingConfirmation
	c.roomID = roomID
	c.selected = append([]string(nil), messageIDs...)
	return nil
}

// CanDeleteForEveryone reports whether the "everyone" scope may be
// offered for the current selection: every message authored by the
// acting user (or the user holds elevated privilege) and every message
// younger than the age window.
func (c *DeletionCoordinator) CanDeleteForEveryone() bool {
	c.mu.Lock()
	roomID := c.roomID
	selected := append([]string(nil), c.selected...)
	state := c.state
	c.mu.Unlock()

	if state != DeletionAwaitingConfirmation {
		return false
	}

	now := time.Now()
	for _, id := range selected {
		msg, ok := c.store.Message(roomID, id)
		if !ok {
			return false
		}
		if msg.SenderID != c.session.UserID && !c.session.Privileged {
			return false
		}
		if now.Sub(msg.CreatedAt) > c.everyoneAge {
			return false
		}
	}
	return true
}

// ClearSelection abandons the selection and returns to Idle.
func (c *DeletionCoordinator) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DeletionAwaitingConfirmation {
		c.reset()
	}
}

// Confirm starts the countdown for the selected messages with the given
// scope. From this point the user sees the Undo affordance.
func (c *DeletionCoordinator) Confirm(scope models.DeleteScope) error {
	if scope == models.DeleteScopeEveryone && !c.CanDeleteForEveryone() {
		return fmt.Errorf("delete for everyone not permitted for this selection")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != DeletionAwaitingConfirmation {
		return fmt.Errorf("nothing selected for deletion (state %s)", c.state)
	}

	c.state = DeletionPending
	c.batchID = uuid.NewString()
	c.remaining = c.countdownFrom
	c.cancelCh = make(chan struct{})

	batch := append([]string(nil), c.selected...)
	c.selected = nil

	logger.Infof("Deletion batch %s pending: %d message(s), scope %s", c.batchID, len(batch), scope)
	go c.countdown(batch, scope, c.cancelCh)
	return nil
}

// Undo cancels the pending batch. Effective only strictly before commit
// begins; once the first delete request is dispatched it is too late.
func (c *DeletionCoordinator) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != DeletionPending {
		return fmt.Errorf("no pending deletion to undo (state %s)", c.state)
	}

	close(c.cancelCh)
	logger.Infof("Deletion batch %s cancelled", c.batchID)
	c.reset()
	return nil
}

// countdown ticks once per interval until cancelled or exhausted, then
// commits the batch.
func (c *DeletionCoordinator) countdown(batch []string, scope models.DeleteScope, cancelCh chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-cancelCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != DeletionPending {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			onTick := c.OnTick
			if remaining > 0 {
				c.mu.Unlock()
				if onTick != nil {
					onTick(remaining)
				}
				continue
			}
			// Countdown exhausted: leave Pending before dispatching so
			// a racing Undo cannot land mid-commit.
			c.reset()
			c.mu.Unlock()

			if onTick != nil {
				onTick(0)
			}
			c.commit(batch, scope)
			return
		}
	}
}

// commit issues one delete request per message id. Pending state is
// already cleared; per-message failures are surfaced but never retried,
// so the Undo affordance can never wedge.
func (c *DeletionCoordinator) commit(batch []string, scope models.DeleteScope) {
	failed := 0
	for _, id := range batch {
		if err := c.api.DeleteMessage(id, scope); err != nil {
			logger.Warningf("Delete request for message %s failed: %v", id, err)
			failed++
		}
	}

	if failed > 0 {
		c.session.Notifier.Failure(fmt.Sprintf("Could not delete %d message(s)", failed))
	}
	logger.Infof("Deletion batch committed: %d ok, %d failed, scope %s", len(batch)-failed, failed, scope)
}

// reset returns to Idle. Caller holds the lock.
func (c *DeletionCoordinator) reset() {
	c.state = DeletionIdle
	c.roomID = ""
	c.selected = nil
	c.batchID = ""
	c.remaining = 0
	c.cancelCh = nil
}
