package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-room/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	shutdownTimeout = 5 * time.Second
)

type roomEngine interface {
	Connect(ctx context.Context, session service.Session) string
	Disconnect(ctx context.Context, session service.Session)
	HandleMessage(ctx context.Context, session service.Session, raw []byte) error
}

type Server struct {
	logger     *slog.Logger
	room       roomEngine
	path       string
	sendBuffer int

	upgrader websocket.Upgrader
}

// New builds a websocket server that attaches every connection on path to room.
// sendBuffer bounds each session's outbound queue.
func New(logger *slog.Logger, room roomEngine, path string, sendBuffer int) *Server {
	return &Server{
		logger:     logger.With("component", "websocket"),
		room:       room,
		path:       path,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler serves the room endpoint. Connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(that.path, func(w http.ResponseWriter, r *http.Request) {
		that.serveSession(ctx, w, r)
	})

	return mux
}

// Start listens on port until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	that.logger.Info("websocket server listening", "port", port, "path", that.path)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveSession")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := newSession(uuid.NewString(), conn, that.sendBuffer)
	stop := context.AfterFunc(ctx, sess.close)
	defer stop()

	go that.writePump(sess)

	that.room.Connect(ctx, sess)
	that.readPump(ctx, sess)
}

// readPump feeds inbound frames to the room until the peer goes away, then
// detaches the session.
func (that *Server) readPump(ctx context.Context, sess *session) {
	log := that.logger.With("method", "readPump", "sessionID", sess.ID())

	defer func() {
		sess.close()
		that.room.Disconnect(ctx, sess)
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && sess.IsOpen() {
				log.Warn("connection error", "error", err)
			}
			return
		}

		that.handle(ctx, sess, raw)
	}
}

// handle processes one frame. A failing or panicking message never takes the
// connection down.
func (that *Server) handle(ctx context.Context, sess *session, raw []byte) {
	log := that.logger.With("method", "handle", "sessionID", sess.ID())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("recovered from panic while handling message", "panic", rec)
		}
	}()

	err := that.room.HandleMessage(ctx, sess, raw)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrUnknownMessageType):
		log.Warn("unknown message type", "error", err)
	case errors.Is(err, apperror.ErrMalformedMessage):
		log.Warn("malformed message", "error", err, "size", len(raw))
	default:
		log.Error("failed to handle message", "error", err)
	}
}

func (that *Server) writePump(sess *session) {
	log := that.logger.With("method", "writePump", "sessionID", sess.ID())

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.close()
		_ = sess.conn.Close()
	}()

	for {
		select {
		case payload := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}

		case <-sess.done:
			_ = sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
