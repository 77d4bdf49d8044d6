package entity

// Outbound event names shared with clients.
const (
	EventCheckWaiting = "checkWaitingOtherPlayer"
	EventJoined       = "joined"
	EventResetGame    = "resetGame"
	EventUpdateBoard  = "updateBoard"
	EventGameOver     = "gameOver"
	EventTimer        = "timer"
	EventOpponentLeft = "opponentLeft"
	EventRedirectHome = "redirectHome"
	EventRoomsUpdate  = "roomsUpdate"
)

type WaitingPayload struct {
	Waiting bool `json:"waiting"`
}

type JoinedPayload struct {
	Symbol Mark `json:"symbol"`
}

type ResetGamePayload struct {
	CurrentPlayer Mark `json:"currentPlayer"`
}

// BoardUpdate reports either a placed mark or, with Row, Col and Symbol left nil, a passed turn.
type BoardUpdate struct {
	Row           *int  `json:"row"`
	Col           *int  `json:"col"`
	Symbol        *Mark `json:"symbol"`
	CurrentPlayer Mark  `json:"currentPlayer"`
}

func NewMoveUpdate(row, col int, symbol, currentPlayer Mark) BoardUpdate {
	return BoardUpdate{
		Row:           &row,
		Col:           &col,
		Symbol:        &symbol,
		CurrentPlayer: currentPlayer,
	}
}

func NewPassUpdate(currentPlayer Mark) BoardUpdate {
	return BoardUpdate{CurrentPlayer: currentPlayer}
}

func (that BoardUpdate) IsPass() bool {
	return that.Row == nil && that.Col == nil && that.Symbol == nil
}

type GameOverPayload struct {
	Winner Mark   `json:"winner"`
	Cells  []Cell `json:"cells"`
}

type TimerPayload struct {
	Time int `json:"time"`
}
