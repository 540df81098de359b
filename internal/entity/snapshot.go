package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
)

// Snapshot is the board right after an accepted move together with the turn
// that became current because of it.
type Snapshot struct {
	Board Board  `json:"board"`
	Turn  string `json:"turn"`
}

// SnapshotLog is the append-only move history. Entry i is the state after move i+1.
type SnapshotLog struct {
	entries []Snapshot
}

func (that *SnapshotLog) Append(board Board, turn string) {
	that.entries = append(that.entries, Snapshot{Board: board, Turn: turn})
}

func (that *SnapshotLog) Len() int {
	return len(that.entries)
}

func (that *SnapshotLog) At(index int) (Snapshot, error) {
	if index < 0 || index >= len(that.entries) {
		return Snapshot{}, fmt.Errorf("%w: %d of %d", apperror.ErrHistoryOutOfRange, index, len(that.entries))
	}

	return that.entries[index], nil
}

// TruncateAfter drops every entry after index, keeping 0..index inclusive.
func (that *SnapshotLog) TruncateAfter(index int) error {
	if index < 0 || index >= len(that.entries) {
		return fmt.Errorf("%w: %d of %d", apperror.ErrHistoryOutOfRange, index, len(that.entries))
	}

	kept := make([]Snapshot, index+1)
	copy(kept, that.entries[:index+1])
	that.entries = kept

	return nil
}

func (that *SnapshotLog) Clear() {
	that.entries = nil
}

// Boards returns a copy of every recorded board in chronological order.
func (that *SnapshotLog) Boards() []Board {
	boards := make([]Board, len(that.entries))
	for i, entry := range that.entries {
		boards[i] = entry.Board
	}

	return boards
}
