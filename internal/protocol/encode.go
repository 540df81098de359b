package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-room/internal/entity"
)

func NewAssign(mark string) Assign {
	return Assign{Type: TypeAssign, Symbol: mark}
}

// NewUpdate copies the room into its wire form. The result shares no memory
// with the room.
func NewUpdate(room *entity.Room) Update {
	boards := room.History.Boards()

	history := make([]Cells, len(boards))
	for i, board := range boards {
		history[i] = toCells(board)
	}

	return Update{
		Type:    TypeUpdate,
		Board:   toCells(room.Board),
		Turn:    room.Turn,
		History: history,
	}
}

func EncodeAssign(mark string) ([]byte, error) {
	payload, err := json.Marshal(NewAssign(mark))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assign: %w", err)
	}

	return payload, nil
}

func EncodeUpdate(update Update) ([]byte, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update: %w", err)
	}

	return payload, nil
}

func toCells(board entity.Board) Cells {
	var cells Cells
	for i, mark := range board {
		if mark == entity.EmptyCell {
			continue
		}
		value := mark
		cells[i] = &value
	}

	return cells
}
