package websocket

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
)

// session adapts one websocket connection to service.Session. Outbound payloads
// are queued on send and written by the connection's write pump.
type session struct {
	id   string
	conn *websocket.Conn

	send chan []byte
	done chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, buffer int) *session {
	if buffer < 1 {
		buffer = 1
	}

	return &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (that *session) ID() string {
	return that.id
}

func (that *session) IsOpen() bool {
	return !that.closed.Load()
}

// Send queues payload without blocking.
func (that *session) Send(payload []byte) error {
	if that.closed.Load() {
		return apperror.ErrSessionClosed
	}

	select {
	case that.send <- payload:
		return nil
	case <-that.done:
		return apperror.ErrSessionClosed
	default:
		return apperror.ErrSendBufferFull
	}
}

func (that *session) close() {
	that.closeOnce.Do(func() {
		that.closed.Store(true)
		close(that.done)
	})
}
