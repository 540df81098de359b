// Package protocol is the wire format spoken over the room socket: flat JSON
// objects discriminated by their "type" field.
package protocol

import "github.com/rocketscienceinc/tictactoe-room/internal/entity"

const (
	TypeAssign = "assign"
	TypeUpdate = "update"

	TypeMove   = "move"
	TypeReset  = "reset"
	TypeJumpTo = "jumpTo"
)

const (
	fieldType   = "type"
	fieldIndex  = "index"
	fieldPlayer = "player"
)

// Assign tells a freshly connected session which mark it holds. Symbol is empty
// for spectators.
type Assign struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// Cells is a board on the wire: empty squares are encoded as null.
type Cells [entity.BoardSize]*string

// Update is the full room state. Clients replace their view with it wholesale.
type Update struct {
	Type    string  `json:"type"`
	Board   Cells   `json:"board"`
	Turn    string  `json:"turn"`
	History []Cells `json:"history"`
}

// Request is one decoded client message: MoveRequest, ResetRequest or JumpToRequest.
type Request interface {
	Kind() string
}

type MoveRequest struct {
	Cell   int
	Player string
}

func (MoveRequest) Kind() string { return TypeMove }

type ResetRequest struct{}

func (ResetRequest) Kind() string { return TypeReset }

type JumpToRequest struct {
	Index int
}

func (JumpToRequest) Kind() string { return TypeJumpTo }
