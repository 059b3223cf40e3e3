package chat

import (
	"portal-chat/internal/logger"
	"portal-chat/internal/models"
)

// PushSender dispatches outbound actions onto the push channel. Send
// reports whether the action actually went out.
type PushSender interface {
	Send(action models.Action) bool
}

// HistoryAPI is the slice of the portal API that loads a room's stored
// timeline.
type HistoryAPI interface {
	FetchRoomMessages(roomID string) ([]models.Message, error)
}

// Engine is the user-facing surface of the chat core: opening rooms,
// composing, and sending. Inbound state flows through the Dispatcher;
// the Engine covers the client-to-server direction.
type Engine struct {
	sender    PushSender
	history   HistoryAPI
	store     *Store
	readstate *ReadStatePropagator
	throttle  *TypingThrottle
	session   *Session
}

func NewEngine(sender PushSender, history HistoryAPI, store *Store, readstate *ReadStatePropagator, throttle *TypingThrottle, session *Session) *Engine {
	return &Engine{
		sender:    sender,
		history:   history,
		store:     store,
		readstate: readstate,
		throttle:  throttle,
		session:   session,
	}
}

// OpenRoom loads a room's stored timeline and marks it active and read.
// The timeline appears from the fetch; subsequent messages arrive as
// push appends.
func (e *Engine) OpenRoom(roomID string) error {
	msgs, err := e.history.FetchRoomMessages(roomID)
	if err != nil {
		logger.Warningf("History fetch for room %s failed: %v", roomID, err)
		e.session.Notifier.Failure("Could not load the conversation")
		return err
	}

	e.store.LoadHistory(roomID, msgs)
	e.readstate.RoomOpened(roomID)
	return nil
}

// CloseRoom leaves the active room and ends its compose session.
func (e *Engine) CloseRoom() {
	if roomID := e.session.ActiveRoom(); roomID != "" {
		e.throttle.Reset(roomID)
	}
	e.readstate.RoomClosed()
}

// SendMessage dispatches an outbound message. There is no optimistic
// local insert: the message joins the timeline when the server echoes
// it back as a new_message push, which keeps delivery order
// authoritative. The send cue fires on dispatch, not on delivery.
func (e *Engine) SendMessage(roomID, content string, msgType models.MessageType, attachmentURL string) {
	action := models.NewSendMessageAction(roomID, content, msgType, attachmentURL)
	if e.sender.Send(action) {
		e.session.Notifier.MessageSent()
	}
}

// ComposeTyping reports local typing activity, throttled to one
// notification per window per room.
func (e *Engine) ComposeTyping(roomID string) {
	if e.throttle.Allow(roomID) {
		e.sender.Send(models.NewTypingAction(roomID))
	}
}
