package service

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Registry owns the live rooms. A room is created by the first join to its token and removed
// when its last seat vacates. Lock order is registry before room.
type Registry struct {
	mu       sync.RWMutex
	base     *slog.Logger
	logger   *slog.Logger
	notifier Notifier
	clock    clockwork.Clock

	rooms map[string]*Room
}

func NewRegistry(logger *slog.Logger, notifier Notifier, clock clockwork.Clock) *Registry {
	return &Registry{
		base:     logger,
		logger:   logger.With("component", "registry"),
		notifier: notifier,
		clock:    clock,

		rooms: make(map[string]*Room),
	}
}

// Join seats the handle in the room for token, creating the room on first use.
// A handle can be seated in one room at a time.
func (that *Registry) Join(token, handle string) (*Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if existing := that.findByHandle(handle); existing != nil {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrAlreadySeated, existing.Token())
	}

	room, ok := that.rooms[token]
	if !ok {
		room = NewRoom(that.base, token, that.notifier, that.clock)
		that.rooms[token] = room
		that.logger.Info("room created", "room", token)
	}

	if err := room.Join(handle); err != nil {
		if !ok {
			delete(that.rooms, token)
		}

		return room, fmt.Errorf("failed to join room: %w", err)
	}

	return room, nil
}

// Leave vacates the handle's seat and destroys the room once it is empty.
func (that *Registry) Leave(handle string) (*Room, LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room := that.findByHandle(handle)
	if room == nil {
		return nil, LeaveResult{}, fmt.Errorf("%w: handle %s", apperror.ErrRoomNotFound, handle)
	}

	result, err := room.Leave(handle)
	if err != nil {
		return room, result, fmt.Errorf("failed to leave room: %w", err)
	}

	if result.Remaining == 0 {
		delete(that.rooms, room.Token())
		that.logger.Info("room destroyed", "room", room.Token())
	}

	return room, result, nil
}

// FindByHandle returns the room the handle is seated in.
func (that *Registry) FindByHandle(handle string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room := that.findByHandle(handle)
	if room == nil {
		return nil, fmt.Errorf("%w: handle %s", apperror.ErrRoomNotFound, handle)
	}

	return room, nil
}

func (that *Registry) Get(token string) (*Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[token]

	return room, ok
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Listings describes every live room, oldest first.
func (that *Registry) Listings() []entity.RoomListing {
	that.mu.RLock()
	defer that.mu.RUnlock()

	listings := make([]entity.RoomListing, 0, len(that.rooms))
	for _, room := range that.rooms {
		listings = append(listings, room.Listing())
	}

	slices.SortFunc(listings, func(a, b entity.RoomListing) int {
		return cmp.Or(cmp.Compare(a.CreatedDate, b.CreatedDate), cmp.Compare(a.ID, b.ID))
	})

	return listings
}

func (that *Registry) findByHandle(handle string) *Room {
	for _, room := range that.rooms {
		if room.HasSeat(handle) {
			return room
		}
	}

	return nil
}
