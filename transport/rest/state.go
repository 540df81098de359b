package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-room/internal/protocol"
)

type stateReader interface {
	State() protocol.Update
}

type StateHandler interface {
	StateHandler(w http.ResponseWriter, _ *http.Request)
}

type stateHandler struct {
	logger *slog.Logger
	room   stateReader
}

func NewStateHandler(logger *slog.Logger, room stateReader) StateHandler {
	return &stateHandler{
		logger: logger,
		room:   room,
	}
}

// StateHandler writes the room state in the same shape as the socket update.
func (that *stateHandler) StateHandler(w http.ResponseWriter, _ *http.Request) {
	payload, err := json.Marshal(that.room.State())
	if err != nil {
		that.logger.Error("failed to marshal state", "method", "StateHandler", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
