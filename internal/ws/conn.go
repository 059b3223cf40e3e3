package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"portal-chat/internal/logger"
	"portal-chat/internal/models"
)

// EventHandler receives one decoded inbound envelope.
type EventHandler func(models.Envelope)

// wireConn is the subset of the websocket connection the manager needs;
// tests substitute a fake.
type wireConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// Manager owns the single push channel for an authenticated session. It
// is the only component that touches the transport; everything else
// consumes its event stream or calls Send.
type Manager struct {
	url string

	mu       sync.Mutex
	conn     wireConn
	connID   string
	done     chan struct{}
	doneOnce *sync.Once

	handlers []EventHandler
}

func NewManager(pushURL string) *Manager {
	return &Manager{url: pushURL}
}

// OnEvent registers a handler for inbound envelopes. Handlers must be
// registered before Open; they are invoked from the read loop goroutine.
func (m *Manager) OnEvent(handler EventHandler) {
	m.handlers = append(m.handlers, handler)
}

// Open dials the push channel for the session. Any previous connection
// is torn down first.
func (m *Manager) Open(ctx context.Context, sessionToken string) error {
	m.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+sessionToken)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, header)
	if err != nil {
		return fmt.Errorf("failed to open push channel: %w", err)
	}

	m.attach(conn)
	logger.Infof("Push channel open: %s (conn %s)", m.url, m.connID)
	return nil
}

// attach installs an established connection and starts its read loop.
func (m *Manager) attach(conn wireConn) {
	m.mu.Lock()
	m.conn = conn
	m.connID = uuid.NewString()
	m.done = make(chan struct{})
	m.doneOnce = &sync.Once{}
	done, once := m.done, m.doneOnce
	m.mu.Unlock()

	go m.readLoop(conn, done, once)
}

// Done returns a channel closed when the current connection ends. It is
// nil before the first Open.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// IsOpen reports whether the channel currently has a live handle.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Send writes one outbound action and reports whether it was
// dispatched. Sends are fire-and-forget: when the channel is not open
// the action is dropped silently, never an error.
func (m *Manager) Send(action models.Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		logger.Debugf("Dropping %q action: push channel not open", action.Action)
		return false
	}

	data, err := sonic.Marshal(action)
	if err != nil {
		logger.Errorf("Failed to encode %q action: %v", action.Action, err)
		return false
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Warningf("Push channel write failed: %v", err)
		return false
	}
	return true
}

// Close tears down the current connection, if any. The handle becomes
// absent; reconnecting is the supervisor's decision.
func (m *Manager) Close() {
	m.mu.Lock()
	conn, once, done := m.conn, m.doneOnce, m.done
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if once != nil {
		once.Do(func() { close(done) })
	}
}

func (m *Manager) readLoop(conn wireConn, done chan struct{}, once *sync.Once) {
	defer once.Do(func() { close(done) })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.conn == conn {
				m.conn = nil
			}
			m.mu.Unlock()
			logger.Warningf("Push channel closed: %v", err)
			return
		}

		var env models.Envelope
		if err := sonic.Unmarshal(data, &env); err != nil {
			logger.Warningf("Discarding malformed push frame: %v", err)
			continue
		}

		switch env.Type {
		case models.EventNewMessage, models.EventTyping,
			models.EventMessageDeleted, models.EventReadReceipt:
			for _, handler := range m.handlers {
				handler(env)
			}
		default:
			// Unknown frame types are ignored so the server can add
			// event kinds without breaking older clients.
			logger.Debugf("Ignoring push frame of unknown type %q", env.Type)
		}
	}
}
