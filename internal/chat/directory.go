package chat

import (
	"context"
	"sync"
	"time"

	"portal-chat/internal/logger"
	"portal-chat/internal/models"
)

// RoomsAPI is the slice of the portal API the directory pulls from.
type RoomsAPI interface {
	FetchRooms() ([]models.Room, error)
	FetchUnreadTotal() (int, error)
}

// Directory holds the user's room list with previews and unread counts.
// It refreshes on a fixed interval and on push triggers; every refresh
// replaces the whole list in one step, last completed fetch wins.
type Directory struct {
	api      RoomsAPI
	session  *Session
	interval time.Duration

	// onActiveRoomResync receives the refreshed copy of the active room
	// so the host's room-view projection can pick up online/last-seen
	// changes without touching the loaded timeline.
	onActiveRoomResync func(models.Room)

	refreshCh chan struct{}

	mu          sync.RWMutex
	rooms       []models.Room
	unreadTotal int
}

func NewDirectory(api RoomsAPI, session *Session, interval time.Duration, onActiveRoomResync func(models.Room)) *Directory {
	return &Directory{
		api:                api,
		session:            session,
		interval:           interval,
		onActiveRoomResync: onActiveRoomResync,
		refreshCh:          make(chan struct{}, 1),
	}
}

// Start runs the poll loop until ctx is cancelled. The ticker is
// released on exit so a closed session leaks no timers.
func (d *Directory) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Infof("Room directory poll stopped")
				return
			case <-ticker.C:
				d.runRefresh()
			case <-d.refreshCh:
				d.runRefresh()
			}
		}
	}()
}

// TriggerRefresh requests an out-of-band refresh, typically because a
// push event changed something dashboard-visible. Coalesces when one is
// already queued.
func (d *Directory) TriggerRefresh() {
	select {
	case d.refreshCh <- struct{}{}:
	default:
	}
}

func (d *Directory) runRefresh() {
	if err := d.Refresh(); err != nil {
		logger.Warningf("Room directory refresh failed: %v", err)
		d.session.Notifier.Failure("Could not refresh the conversation list")
	}
}

// Refresh pulls the room list and unread aggregate and installs them
// atomically. On error the previous state is kept untouched.
func (d *Directory) Refresh() error {
	rooms, err := d.api.FetchRooms()
	if err != nil {
		return err
	}
	total, err := d.api.FetchUnreadTotal()
	if err != nil {
		return err
	}

	var active *models.Room
	activeID := d.session.ActiveRoom()

	d.mu.Lock()
	d.rooms = rooms
	d.unreadTotal = total
	if activeID != "" {
		for i := range d.rooms {
			if d.rooms[i].ID == activeID {
				copied := d.rooms[i]
				active = &copied
				break
			}
		}
	}
	d.mu.Unlock()

	if active != nil && d.onActiveRoomResync != nil {
		d.onActiveRoomResync(*active)
	}
	return nil
}

// Rooms returns a copy of the current room list.
func (d *Directory) Rooms() []models.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

// Room returns the current copy of one room.
func (d *Directory) Room(roomID string) (models.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.rooms {
		if d.rooms[i].ID == roomID {
			return d.rooms[i], true
		}
	}
	return models.Room{}, false
}

// UnreadTotal returns the unread aggregate from the last refresh.
func (d *Directory) UnreadTotal() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unreadTotal
}
