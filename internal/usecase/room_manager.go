package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-room/internal/entity"
	"github.com/rocketscienceinc/tictactoe-room/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-room/internal/service"
	"github.com/rocketscienceinc/tictactoe-room/internal/tictactoe"
)

const mirrorTimeout = 2 * time.Second

type stateMirror interface {
	SaveState(ctx context.Context, roomID string, payload []byte) error
}

// RoomManager owns one Room and is the only code allowed to touch it. Every
// mutation runs under mu; the resulting update is fanned out under publishMu,
// which is taken before mu is released so sessions see updates in mutation order.
// Mirror writes happen on their own goroutine and never hold either lock.
type RoomManager struct {
	logger   *slog.Logger
	sessions service.SessionRegistry
	mirror   stateMirror

	mu   sync.Mutex
	room *entity.Room

	publishMu sync.Mutex
	closed    bool

	// holds at most the newest unsaved payload
	mirrorQueue chan []byte
	mirrorDone  chan struct{}
}

// NewRoomManager wires the engine. mirror may be nil; when it is not, Close
// must be called to flush and stop the mirror worker.
func NewRoomManager(logger *slog.Logger, room *entity.Room, sessions service.SessionRegistry, mirror stateMirror) *RoomManager {
	manager := &RoomManager{
		logger:   logger.With("component", "room_manager", "roomID", room.ID),
		sessions: sessions,
		mirror:   mirror,
		room:     room,
	}

	if mirror != nil {
		manager.mirrorQueue = make(chan []byte, 1)
		manager.mirrorDone = make(chan struct{})
		go manager.runMirror()
	}

	return manager
}

// Close saves the last pending state, if any, and stops the mirror worker.
// Later mutations still broadcast but are no longer mirrored.
func (that *RoomManager) Close() {
	that.publishMu.Lock()
	if that.closed || that.mirrorQueue == nil {
		that.closed = true
		that.publishMu.Unlock()
		return
	}
	that.closed = true
	close(that.mirrorQueue)
	that.publishMu.Unlock()

	<-that.mirrorDone
}

// Connect registers session, binds it to a free mark if there is one and sends
// it the assignment followed by the current state. It returns the assigned mark,
// empty for spectators.
func (that *RoomManager) Connect(ctx context.Context, session service.Session) string {
	log := that.logger.With("method", "Connect", "sessionID", session.ID())

	that.mu.Lock()
	locked := true
	defer func() {
		if locked {
			that.mu.Unlock()
		}
	}()

	mark := that.room.Assign(session.ID())
	that.sessions.Register(session)
	update := protocol.NewUpdate(that.room)

	that.publishMu.Lock()
	defer that.publishMu.Unlock()

	that.mu.Unlock()
	locked = false

	log.Info("session connected", "mark", mark, "sessions", that.sessions.Len())

	assign, err := protocol.EncodeAssign(mark)
	if err != nil {
		log.Error("failed to encode assignment", "error", err)
		return mark
	}

	if err = session.Send(assign); err != nil {
		log.Warn("failed to send assignment", "error", err)
		return mark
	}

	state, err := protocol.EncodeUpdate(update)
	if err != nil {
		log.Error("failed to encode state", "error", err)
		return mark
	}

	if err = session.Send(state); err != nil {
		log.Warn("failed to send state", "error", err)
	}

	return mark
}

// Disconnect forgets session and frees its mark. The board, turn and history are
// untouched and nothing is broadcast.
func (that *RoomManager) Disconnect(_ context.Context, session service.Session) {
	that.mu.Lock()
	that.sessions.Unregister(session)
	freed := that.room.Release(session.ID())
	that.mu.Unlock()

	that.logger.Info("session disconnected",
		"method", "Disconnect",
		"sessionID", session.ID(),
		"freed", freed,
		"sessions", that.sessions.Len(),
	)
}

// HandleMessage decodes one raw client message and applies it. Decode failures
// are returned so the transport can report them; rule violations are logged and
// swallowed, leaving the room unchanged and broadcasting nothing.
func (that *RoomManager) HandleMessage(ctx context.Context, session service.Session, raw []byte) error {
	log := that.logger.With("method", "HandleMessage", "sessionID", session.ID())

	req, err := protocol.Decode(raw)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	switch req := req.(type) {
	case protocol.MoveRequest:
		err = that.Move(ctx, session, req.Player, req.Cell)
	case protocol.ResetRequest:
		that.Reset(ctx)
	case protocol.JumpToRequest:
		err = that.JumpTo(ctx, req.Index)
	}

	if err != nil {
		log.Debug("request ignored", "kind", req.Kind(), "reason", err)
	}

	return nil
}

// Move applies a move claimed by session for mark and broadcasts the new state.
// The returned error explains a rejection; a rejected move changes nothing.
func (that *RoomManager) Move(ctx context.Context, session service.Session, mark string, cell int) error {
	return that.apply(func(room *entity.Room) error {
		return tictactoe.MakeTurn(room, session.ID(), mark, cell)
	})
}

// Reset empties the board and history and gives X the move. Role bindings stay.
func (that *RoomManager) Reset(ctx context.Context) {
	_ = that.apply(func(room *entity.Room) error {
		room.Reset()
		return nil
	})
}

// JumpTo rewinds the room to history entry index and discards everything after it.
func (that *RoomManager) JumpTo(ctx context.Context, index int) error {
	return that.apply(func(room *entity.Room) error {
		return room.JumpTo(index)
	})
}

// State returns a copy of the current room state.
func (that *RoomManager) State() protocol.Update {
	that.mu.Lock()
	defer that.mu.Unlock()

	return protocol.NewUpdate(that.room)
}

// Roles returns the session ids bound to X and O.
func (that *RoomManager) Roles() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.BoundTo(entity.PlayerX), that.room.BoundTo(entity.PlayerO)
}

// apply runs mutate under the state lock. When mutate succeeds the new state is
// captured, the lock is handed over to publishMu and the update is broadcast.
func (that *RoomManager) apply(mutate func(room *entity.Room) error) error {
	that.mu.Lock()
	locked := true
	defer func() {
		if locked {
			that.mu.Unlock()
		}
	}()

	if err := mutate(that.room); err != nil {
		return err
	}

	update := protocol.NewUpdate(that.room)

	that.publishMu.Lock()
	defer that.publishMu.Unlock()

	that.mu.Unlock()
	locked = false

	that.publish(update)

	return nil
}

// publish must be called with publishMu held.
func (that *RoomManager) publish(update protocol.Update) {
	log := that.logger.With("method", "publish")

	payload, err := protocol.EncodeUpdate(update)
	if err != nil {
		log.Error("failed to encode state", "error", err)
		return
	}

	delivered := 0
	that.sessions.ForEachOpen(func(session service.Session) {
		if err := session.Send(payload); err != nil {
			log.Warn("failed to send state", "sessionID", session.ID(), "error", err)
			return
		}
		delivered++
	})

	log.Debug("state broadcast", "delivered", delivered, "moves", len(update.History))

	that.enqueueMirror(payload)
}

// enqueueMirror must be called with publishMu held. A payload still waiting
// in the queue is stale once a newer one exists, so it is replaced.
func (that *RoomManager) enqueueMirror(payload []byte) {
	if that.mirrorQueue == nil || that.closed {
		return
	}

	for {
		select {
		case that.mirrorQueue <- payload:
			return
		default:
		}

		select {
		case <-that.mirrorQueue:
		default:
		}
	}
}

func (that *RoomManager) runMirror() {
	defer close(that.mirrorDone)

	for payload := range that.mirrorQueue {
		that.mirrorState(payload)
	}
}

func (that *RoomManager) mirrorState(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	if err := that.mirror.SaveState(ctx, that.room.ID, payload); err != nil {
		that.logger.Warn("failed to mirror state", "method", "mirrorState", "error", err)
	}
}
