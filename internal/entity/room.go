package entity

import "time"

// RoomStatus values are part of the lobby wire format.
type RoomStatus int

const (
	StatusFull        RoomStatus = 2
	StatusReadyToPlay RoomStatus = 3
)

const (
	MaxSeats = 2

	// TurnTime is the countdown, in seconds, a mover gets before the turn passes automatically.
	TurnTime = 60
)

// RoomListing is one entry of the lobby broadcast.
type RoomListing struct {
	ID          string     `json:"id"`
	Status      RoomStatus `json:"status"`
	CreatedDate int64      `json:"createdDate"`
}

func NewRoomListing(token string, seats int, createdAt time.Time) RoomListing {
	status := StatusReadyToPlay
	if seats >= MaxSeats {
		status = StatusFull
	}

	return RoomListing{
		ID:          token,
		Status:      status,
		CreatedDate: createdAt.UnixMilli(),
	}
}

func (that RoomListing) IsFull() bool {
	return that.Status == StatusFull
}

type Seat struct {
	Handle string `json:"handle"`
	Mark   Mark   `json:"mark,omitempty"`
}

// MatchFinished is published when a move completes a winning line.
type MatchFinished struct {
	Room       string    `json:"room"`
	Winner     Mark      `json:"winner"`
	Cells      []Cell    `json:"cells"`
	FinishedAt time.Time `json:"finishedAt"`
}

// MatchAbandoned is published when a seat vacates while a match is in progress.
type MatchAbandoned struct {
	Room        string    `json:"room"`
	Leaver      string    `json:"leaver"`
	AbandonedAt time.Time `json:"abandonedAt"`
}
