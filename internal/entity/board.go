package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize = 9
)

// Board is the 3x3 grid in row-major order. Being an array it is copied by value,
// so a Board handed out never aliases the live one.
type Board [BoardSize]string

// IsMark reports whether m is one of the two player marks.
func IsMark(m string) bool {
	return m == PlayerX || m == PlayerO
}

// InRange reports whether cell addresses a square of the board.
func InRange(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

func (that Board) IsEmpty(cell int) bool {
	return that[cell] == EmptyCell
}
