package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

type roomRegistry interface {
	Join(token, handle string) (*service.Room, error)
	Leave(handle string) (*service.Room, service.LeaveResult, error)
	FindByHandle(handle string) (*service.Room, error)
	Listings() []entity.RoomListing
}

type roomRepository interface {
	ReplaceAll(ctx context.Context, listings []entity.RoomListing) error
}

type matchPublisher interface {
	PublishMatchFinished(event entity.MatchFinished) error
	PublishMatchAbandoned(event entity.MatchAbandoned) error
}

// SessionGateway routes inbound client events to rooms and keeps the lobby informed.
// Room transition errors are never reported to clients, except a full room which redirects
// the joining handle home.
type SessionGateway struct {
	logger    *slog.Logger
	registry  roomRegistry
	notifier  service.Notifier
	roomRepo  roomRepository
	publisher matchPublisher
	clock     clockwork.Clock

	lobbyMu sync.Mutex
	lobby   map[string]struct{}

	// serializes listing snapshots so subscribers and the mirror see them in order
	broadcastMu sync.Mutex
}

func NewSessionGateway(
	logger *slog.Logger,
	registry roomRegistry,
	notifier service.Notifier,
	roomRepo roomRepository,
	publisher matchPublisher,
	clock clockwork.Clock,
) *SessionGateway {
	return &SessionGateway{
		logger:    logger.With("component", "gateway"),
		registry:  registry,
		notifier:  notifier,
		roomRepo:  roomRepo,
		publisher: publisher,
		clock:     clock,

		lobby: make(map[string]struct{}),
	}
}

// Connect registers a new connection. Every connect triggers a lobby broadcast.
func (that *SessionGateway) Connect(ctx context.Context, handle string, lobby bool) {
	log := that.logger.With("method", "Connect", "handle", handle)
	log.Debug("connected", "lobby", lobby)

	if lobby {
		that.subscribe(handle)
	}

	that.broadcastRooms(ctx)
}

// JoinLobby subscribes the handle to roomsUpdate broadcasts and sends it the current listing.
func (that *SessionGateway) JoinLobby(ctx context.Context, handle string) {
	that.subscribe(handle)
	that.broadcastRooms(ctx)
}

func (that *SessionGateway) JoinRoom(ctx context.Context, handle, token string) {
	log := that.logger.With("method", "JoinRoom", "handle", handle, "room", token)

	if token == "" {
		log.Debug("join ignored", "error", apperror.ErrMalformedPayload)
		return
	}

	_, err := that.registry.Join(token, handle)

	switch {
	case errors.Is(err, apperror.ErrRoomFull):
		log.Debug("room is full, redirecting home")
		that.notifier.Notify([]string{handle}, entity.EventRedirectHome, nil)
	case err != nil:
		log.Debug("join ignored", "error", err)
	default:
		log.Info("joined room")
	}

	that.broadcastRooms(ctx)
}

func (that *SessionGateway) MakeMove(ctx context.Context, handle string, row, col int) {
	log := that.logger.With("method", "MakeMove", "handle", handle)

	room, err := that.registry.FindByHandle(handle)
	if err != nil {
		log.Debug("move ignored", "error", err)
		return
	}

	result, err := room.Move(handle, row, col)
	if err != nil {
		log.Debug("move ignored", "room", room.Token(), "error", err)
		return
	}

	if !result.IsWin() {
		return
	}

	event := entity.MatchFinished{
		Room:       room.Token(),
		Winner:     result.Winner,
		Cells:      result.Cells,
		FinishedAt: that.clock.Now(),
	}

	if err = that.publisher.PublishMatchFinished(event); err != nil {
		log.Error("failed to publish finished match", "room", room.Token(), "error", err)
	}
}

func (that *SessionGateway) PassTurn(_ context.Context, handle string) {
	log := that.logger.With("method", "PassTurn", "handle", handle)

	room, err := that.registry.FindByHandle(handle)
	if err != nil {
		log.Debug("pass ignored", "error", err)
		return
	}

	if err = room.PassTurn(handle); err != nil {
		log.Debug("pass ignored", "room", room.Token(), "error", err)
	}
}

func (that *SessionGateway) ResetRequest(_ context.Context, handle string) {
	log := that.logger.With("method", "ResetRequest", "handle", handle)

	room, err := that.registry.FindByHandle(handle)
	if err != nil {
		log.Debug("reset ignored", "error", err)
		return
	}

	if err = room.Reset(); err != nil {
		log.Debug("reset ignored", "room", room.Token(), "error", err)
	}
}

// Disconnect vacates the handle's seat, if any, and drops its lobby subscription.
func (that *SessionGateway) Disconnect(ctx context.Context, handle string) {
	log := that.logger.With("method", "Disconnect", "handle", handle)

	that.unsubscribe(handle)

	room, result, err := that.registry.Leave(handle)
	if err != nil {
		log.Debug("no seat to vacate", "error", err)
		return
	}

	log.Info("left room", "room", room.Token(), "remaining", result.Remaining)

	if result.Abandoned {
		event := entity.MatchAbandoned{
			Room:        room.Token(),
			Leaver:      handle,
			AbandonedAt: that.clock.Now(),
		}

		if err = that.publisher.PublishMatchAbandoned(event); err != nil {
			log.Error("failed to publish abandoned match", "room", room.Token(), "error", err)
		}
	}

	that.broadcastRooms(ctx)
}

// LobbyHandles returns the current lobby subscribers.
func (that *SessionGateway) LobbyHandles() []string {
	that.lobbyMu.Lock()
	defer that.lobbyMu.Unlock()

	handles := make([]string, 0, len(that.lobby))
	for handle := range that.lobby {
		handles = append(handles, handle)
	}

	slices.Sort(handles)

	return handles
}

func (that *SessionGateway) subscribe(handle string) {
	that.lobbyMu.Lock()
	defer that.lobbyMu.Unlock()

	that.lobby[handle] = struct{}{}
}

func (that *SessionGateway) unsubscribe(handle string) {
	that.lobbyMu.Lock()
	defer that.lobbyMu.Unlock()

	delete(that.lobby, handle)
}

// broadcastRooms sends the full listing to every lobby subscriber and mirrors it.
func (that *SessionGateway) broadcastRooms(ctx context.Context) {
	log := that.logger.With("method", "broadcastRooms")

	that.broadcastMu.Lock()
	defer that.broadcastMu.Unlock()

	listings := that.registry.Listings()

	if handles := that.LobbyHandles(); len(handles) > 0 {
		that.notifier.Notify(handles, entity.EventRoomsUpdate, listings)
	}

	if err := that.roomRepo.ReplaceAll(ctx, listings); err != nil {
		log.Error("failed to mirror room listings", "error", err)
	}
}
