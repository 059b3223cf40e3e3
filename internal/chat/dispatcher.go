package chat

import (
	"portal-chat/internal/models"
)

// Dispatcher routes decoded push envelopes to the components that react
// to them. It is registered as the connection manager's event handler
// and is the single fan-out point for server-pushed facts.
type Dispatcher struct {
	store     *Store
	typing    *TypingTracker
	directory *Directory
	readstate *ReadStatePropagator
}

func NewDispatcher(store *Store, typing *TypingTracker, directory *Directory, readstate *ReadStatePropagator) *Dispatcher {
	return &Dispatcher{
		store:     store,
		typing:    typing,
		directory: directory,
		readstate: readstate,
	}
}

// Handle applies one inbound envelope. Message arrivals and deletions
// also trigger an out-of-band directory refresh since they change what
// the dashboard shows.
func (d *Dispatcher) Handle(env models.Envelope) {
	switch env.Type {
	case models.EventNewMessage:
		if env.Message == nil {
			return
		}
		d.store.Append(env.RoomID, *env.Message)
		d.directory.TriggerRefresh()

	case models.EventTyping:
		d.typing.OnTypingEvent(env.RoomID, env.UserID, env.UserName)

	case models.EventMessageDeleted:
		d.store.MarkDeleted(env.RoomID, env.MessageID, env.DeleteType)
		d.directory.TriggerRefresh()

	case models.EventReadReceipt:
		d.readstate.OnReadReceipt(env.RoomID, env.UserID, env.ReadAt)
	}
}
