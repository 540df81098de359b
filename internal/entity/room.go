package entity

import "fmt"

// Room is the single source of truth for one game: live board, turn, the two
// role bindings and the move history. Room does no locking of its own; its owner
// must serialize access.
type Room struct {
	ID      string
	Board   Board
	Turn    string
	History SnapshotLog

	// session ids bound to each mark, EmptyCell when the slot is free
	playerX string
	playerO string
}

func NewRoom(id string) *Room {
	return &Room{
		ID:   id,
		Turn: PlayerX,
	}
}

// Assign binds sessionID to the first free mark, X before O. A session that is
// already bound keeps its mark; when both slots are taken the session is a
// spectator and EmptyCell is returned.
func (that *Room) Assign(sessionID string) string {
	if mark := that.RoleOf(sessionID); mark != EmptyCell {
		return mark
	}

	switch {
	case that.playerX == EmptyCell:
		that.playerX = sessionID
		return PlayerX
	case that.playerO == EmptyCell:
		that.playerO = sessionID
		return PlayerO
	default:
		return EmptyCell
	}
}

// Release frees whichever slot sessionID holds and returns the freed mark.
func (that *Room) Release(sessionID string) string {
	switch sessionID {
	case EmptyCell:
		return EmptyCell
	case that.playerX:
		that.playerX = EmptyCell
		return PlayerX
	case that.playerO:
		that.playerO = EmptyCell
		return PlayerO
	default:
		return EmptyCell
	}
}

// BoundTo returns the session id holding mark.
func (that *Room) BoundTo(mark string) string {
	switch mark {
	case PlayerX:
		return that.playerX
	case PlayerO:
		return that.playerO
	default:
		return EmptyCell
	}
}

func (that *Room) RoleOf(sessionID string) string {
	switch {
	case sessionID == EmptyCell:
		return EmptyCell
	case sessionID == that.playerX:
		return PlayerX
	case sessionID == that.playerO:
		return PlayerO
	default:
		return EmptyCell
	}
}

// Reset clears board and history and gives X the move. Role bindings survive:
// only a disconnect frees a slot.
func (that *Room) Reset() {
	that.Board = Board{}
	that.Turn = PlayerX
	that.History.Clear()
}

// JumpTo restores board and turn from history entry index and discards every
// later entry.
func (that *Room) JumpTo(index int) error {
	snapshot, err := that.History.At(index)
	if err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.History.TruncateAfter(index); err != nil {
		return fmt.Errorf("failed to truncate history: %w", err)
	}

	that.Board = snapshot.Board
	that.Turn = snapshot.Turn

	return nil
}
