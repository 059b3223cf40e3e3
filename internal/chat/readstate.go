package chat

import (
	"time"

	"portal-chat/internal/logger"
)

// ReadAPI is the slice of the portal API the propagator marks rooms
// read through.
type ReadAPI interface {
	MarkRoomRead(roomID string) error
}

// ReadStatePropagator tells the server when a room has been read and
// folds inbound read receipts back into the local timeline.
type ReadStatePropagator struct {
	api     ReadAPI
	store   *Store
	session *Session
}

func NewReadStatePropagator(api ReadAPI, store *Store, session *Session) *ReadStatePropagator {
	return &ReadStatePropagator{api: api, store: store, session: session}
}

// RoomOpened records the room as active and issues exactly one mark-read
// call for it, regardless of how many messages were unread. The call is
// fire-and-forget: unread counters shown to the user catch up on the
// next directory refresh.
func (p *ReadStatePropagator) RoomOpened(roomID string) {
	p.session.SetActiveRoom(roomID)

	go func() {
		if err := p.api.MarkRoomRead(roomID); err != nil {
			logger.Warningf("Mark-read for room %s failed: %v", roomID, err)
			p.session.Notifier.Failure("Could not mark the conversation as read")
		}
	}()
}

// RoomClosed clears the active room.
func (p *ReadStatePropagator) RoomClosed() {
	p.session.ClearActiveRoom()
}

// OnReadReceipt sweeps the room, marking read every message the reader
// did not author that was created at or before readAt. The sweep is a
// timestamp heuristic, not a per-message acknowledgement.
func (p *ReadStatePropagator) OnReadReceipt(roomID, readerID string, readAt time.Time) {
	changed := p.store.MarkReadBefore(roomID, readerID, readAt)
	if changed > 0 {
		logger.Debugf("Read receipt from %s marked %d message(s) read in room %s", readerID, changed, roomID)
	}
}
