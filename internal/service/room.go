package service

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Notifier delivers outbound events to connection handles. Rooms call it with their lock held,
// so implementations must not block and must not call back into the room.
type Notifier interface {
	Notify(handles []string, action string, payload any)
}

type MoveResult struct {
	Cell   entity.Cell
	Mark   entity.Mark
	Winner entity.Mark
	Cells  []entity.Cell
}

func (that MoveResult) IsWin() bool {
	return that.Winner != entity.EmptyCell
}

type LeaveResult struct {
	Remaining int
	Abandoned bool
}

// RoomState is a point-in-time copy of a room.
type RoomState struct {
	Token         string
	Seats         []entity.Seat
	Board         entity.Board
	CurrentMover  entity.Mark
	GameOver      bool
	TimerActive   bool
	TimeRemaining int
	CreatedAt     time.Time
}

// Room is one match between at most two seats. All state, including the turn timer,
// is guarded by mu.
type Room struct {
	mu       sync.Mutex
	logger   *slog.Logger
	notifier Notifier
	random   func(n int) int

	token        string
	seats        []entity.Seat
	board        *entity.Board
	currentMover entity.Mark
	gameOver     bool
	timer        *TurnTimer
	createdAt    time.Time
}

func NewRoom(logger *slog.Logger, token string, notifier Notifier, clock clockwork.Clock) *Room {
	return &Room{
		logger:   logger.With("component", "room", "room", token),
		notifier: notifier,
		random:   rand.IntN,

		token:     token,
		seats:     make([]entity.Seat, 0, entity.MaxSeats),
		board:     entity.NewBoard(),
		timer:     NewTurnTimer(clock, entity.TurnTime, time.Second),
		createdAt: clock.Now(),
	}
}

func (that *Room) Token() string {
	return that.token
}

// Join seats the handle. A third handle is rejected with ErrRoomFull; the second one starts the match.
func (that *Room) Join(handle string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.seatIndex(handle) >= 0 {
		return fmt.Errorf("%w: room %s", apperror.ErrAlreadySeated, that.token)
	}

	if len(that.seats) >= entity.MaxSeats {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.token)
	}

	that.seats = append(that.seats, entity.Seat{Handle: handle})
	that.logger.Debug("player joined", "handle", handle, "seats", len(that.seats))

	that.notifyRoom(entity.EventCheckWaiting, entity.WaitingPayload{Waiting: len(that.seats) < entity.MaxSeats})

	if len(that.seats) == entity.MaxSeats {
		return that.reset()
	}

	return nil
}

// Reset starts a fresh match. It requires both seats to be occupied.
func (that *Room) Reset() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.reset()
}

func (that *Room) reset() error {
	if len(that.seats) != entity.MaxSeats {
		return fmt.Errorf("%w: room %s has %d seats", apperror.ErrGameIsNotStarted, that.token, len(that.seats))
	}

	marks := [2]entity.Mark{entity.MarkX, entity.MarkO}

	that.gameOver = false
	that.board = entity.NewBoard()
	that.currentMover = marks[that.random(2)]

	first := marks[that.random(2)]
	that.seats[0].Mark = first
	that.seats[1].Mark = first.Opponent()

	for _, seat := range that.seats {
		that.notifier.Notify([]string{seat.Handle}, entity.EventJoined, entity.JoinedPayload{Symbol: seat.Mark})
	}

	that.notifyRoom(entity.EventResetGame, entity.ResetGamePayload{CurrentPlayer: that.currentMover})
	that.restartTimer()

	that.logger.Info("match started", "mover", that.currentMover)

	return nil
}

// Move places the mover's mark. Anything other than a legal move by the current mover is rejected
// without touching the room.
func (that *Room) Move(handle string, row, col int) (MoveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.gameOver {
		return MoveResult{}, fmt.Errorf("%w: room %s", apperror.ErrGameFinished, that.token)
	}

	idx := that.seatIndex(handle)
	if idx < 0 {
		return MoveResult{}, fmt.Errorf("%w: room %s", apperror.ErrNotSeated, that.token)
	}

	if !that.inProgress() {
		return MoveResult{}, fmt.Errorf("%w: room %s", apperror.ErrGameIsNotStarted, that.token)
	}

	mark := that.seats[idx].Mark
	if that.currentMover != mark {
		return MoveResult{}, apperror.ErrNotYourTurn
	}

	if !that.board.InBounds(row, col) {
		return MoveResult{}, fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, col)
	}

	if !that.board.IsEmpty(row, col) {
		return MoveResult{}, fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, row, col)
	}

	that.board.Place(row, col, mark)
	result := MoveResult{Cell: entity.Cell{Row: row, Col: col}, Mark: mark}

	if cells, won := that.board.CheckWin(row, col, mark); won {
		that.notifyRoom(entity.EventUpdateBoard, entity.NewMoveUpdate(row, col, mark, that.currentMover))
		that.notifyRoom(entity.EventGameOver, entity.GameOverPayload{Winner: mark, Cells: cells})

		that.timer.Cancel()
		that.gameOver = true
		that.currentMover = entity.EmptyCell

		that.logger.Info("match won", "winner", mark, "handle", handle)

		result.Winner = mark
		result.Cells = cells

		return result, nil
	}

	that.currentMover = mark.Opponent()
	that.restartTimer()
	that.notifyRoom(entity.EventUpdateBoard, entity.NewMoveUpdate(row, col, mark, that.currentMover))

	return result, nil
}

// PassTurn hands the turn to the opponent when called by the current mover.
func (that *Room) PassTurn(handle string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.seatIndex(handle)
	if idx < 0 {
		return fmt.Errorf("%w: room %s", apperror.ErrNotSeated, that.token)
	}

	if !that.inProgress() {
		return fmt.Errorf("%w: room %s", apperror.ErrGameIsNotStarted, that.token)
	}

	if that.currentMover != that.seats[idx].Mark {
		return apperror.ErrNotYourTurn
	}

	that.turnSwitch()

	return nil
}

// Leave vacates the handle's seat. A match in progress is abandoned without a winner.
func (that *Room) Leave(handle string) (LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.seatIndex(handle)
	if idx < 0 {
		return LeaveResult{Remaining: len(that.seats)}, fmt.Errorf("%w: room %s", apperror.ErrNotSeated, that.token)
	}

	abandoned := that.inProgress()
	that.seats = slices.Delete(that.seats, idx, idx+1)

	if len(that.seats) < entity.MaxSeats {
		if len(that.seats) > 0 {
			that.notifyRoom(entity.EventOpponentLeft, nil)
		}

		that.timer.Cancel()
		that.currentMover = entity.EmptyCell
	}

	that.logger.Debug("player left", "handle", handle, "seats", len(that.seats), "abandoned", abandoned)

	return LeaveResult{Remaining: len(that.seats), Abandoned: abandoned}, nil
}

func (that *Room) HasSeat(handle string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.seatIndex(handle) >= 0
}

func (that *Room) SeatCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.seats)
}

func (that *Room) Listing() entity.RoomListing {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.NewRoomListing(that.token, len(that.seats), that.createdAt)
}

func (that *Room) State() RoomState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return RoomState{
		Token:         that.token,
		Seats:         slices.Clone(that.seats),
		Board:         *that.board,
		CurrentMover:  that.currentMover,
		GameOver:      that.gameOver,
		TimerActive:   that.timer.Active(),
		TimeRemaining: that.timer.Remaining(),
		CreatedAt:     that.createdAt,
	}
}

// onTick runs on the timer goroutine.
func (that *Room) onTick(generation uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	remaining, ok := that.timer.Tick(generation)
	if !ok {
		return
	}

	that.notifyRoom(entity.EventTimer, entity.TimerPayload{Time: remaining})

	if remaining <= 0 {
		that.timer.Cancel()
		that.logger.Debug("turn expired", "mover", that.currentMover)
		that.turnSwitch()
	}
}

// turnSwitch is shared by an explicit pass and an expired countdown.
func (that *Room) turnSwitch() {
	if !that.inProgress() {
		return
	}

	that.currentMover = that.currentMover.Opponent()
	that.restartTimer()
	that.notifyRoom(entity.EventUpdateBoard, entity.NewPassUpdate(that.currentMover))
}

func (that *Room) restartTimer() {
	remaining := that.timer.Restart(that.onTick)
	that.notifyRoom(entity.EventTimer, entity.TimerPayload{Time: remaining})
}

func (that *Room) inProgress() bool {
	return len(that.seats) == entity.MaxSeats && !that.gameOver
}

func (that *Room) seatIndex(handle string) int {
	return slices.IndexFunc(that.seats, func(seat entity.Seat) bool {
		return seat.Handle == handle
	})
}

func (that *Room) handles() []string {
	handles := make([]string, 0, len(that.seats))
	for _, seat := range that.seats {
		handles = append(handles, seat.Handle)
	}

	return handles
}

func (that *Room) notifyRoom(action string, payload any) {
	that.notifier.Notify(that.handles(), action, payload)
}
