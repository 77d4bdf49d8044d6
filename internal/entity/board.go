package entity

const (
	BoardSize = 18
	WinLength = 5
)

type Mark string

const (
	MarkX     Mark = "X"
	MarkO     Mark = "O"
	EmptyCell Mark = ""
)

// Opponent returns the other mark. The empty mark has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return EmptyCell
	}
}

func (that Mark) IsValid() bool {
	return that == MarkX || that == MarkO
}

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// directions are scanned in this order; the first completed line is reported.
var directions = [4]Cell{
	{Row: 1, Col: 0},  // vertical
	{Row: 0, Col: 1},  // horizontal
	{Row: 1, Col: 1},  // diagonal down-right
	{Row: 1, Col: -1}, // diagonal down-left
}

type Board [BoardSize][BoardSize]Mark

func NewBoard() *Board {
	return &Board{}
}

func (that *Board) InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (that *Board) At(row, col int) Mark {
	return that[row][col]
}

func (that *Board) IsEmpty(row, col int) bool {
	return that[row][col] == EmptyCell
}

// Place sets the cell. Bounds and occupancy are checked by the caller.
func (that *Board) Place(row, col int, mark Mark) {
	that[row][col] = mark
}

// CheckWin looks for a line of at least WinLength marks running through the just-played cell.
// The played cell is reported first, followed by the cells found walking forward and then backward.
func (that *Board) CheckWin(row, col int, mark Mark) ([]Cell, bool) {
	for _, dir := range directions {
		line := that.lineThrough(row, col, mark, dir)
		if len(line) >= WinLength {
			return line, true
		}
	}

	return nil, false
}

func (that *Board) lineThrough(row, col int, mark Mark, dir Cell) []Cell {
	cells := []Cell{{Row: row, Col: col}}

	for r, c := row+dir.Row, col+dir.Col; that.InBounds(r, c) && that[r][c] == mark; r, c = r+dir.Row, c+dir.Col {
		cells = append(cells, Cell{Row: r, Col: c})
	}

	for r, c := row-dir.Row, col-dir.Col; that.InBounds(r, c) && that[r][c] == mark; r, c = r-dir.Row, c-dir.Col {
		cells = append(cells, Cell{Row: r, Col: c})
	}

	return cells
}
