package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-room/internal/entity"
)

// MakeTurn applies a move claimed by sessionID for mark. On success the mark is
// written, the turn flips and the resulting state is appended to the history.
// On error the room is left exactly as it was.
func MakeTurn(room *entity.Room, sessionID, mark string, cell int) error {
	if err := validateMove(room, sessionID, mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	room.Board[cell] = mark
	room.Turn = toggleMark(mark)
	room.History.Append(room.Board, room.Turn)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(room *entity.Room, sessionID, mark string, cell int) error {
	if !entity.IsMark(mark) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if bound := room.BoundTo(mark); bound == entity.EmptyCell || bound != sessionID {
		return apperror.ErrRoleNotBound
	}

	if room.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !entity.InRange(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !room.Board.IsEmpty(cell) {
		return apperror.ErrCellOccupied
	}

	return nil
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
