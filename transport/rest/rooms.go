package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type roomLister interface {
	List(ctx context.Context) ([]entity.RoomListing, error)
}

type RoomsHandler interface {
	RoomsHandler(w http.ResponseWriter, r *http.Request)
}

type roomsHandler struct {
	logger *slog.Logger
	rooms  roomLister
}

func NewRoomsHandler(logger *slog.Logger, rooms roomLister) RoomsHandler {
	return &roomsHandler{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

// RoomsHandler returns the last lobby listing as a JSON array.
func (that *roomsHandler) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "RoomsHandler")

	listings, err := that.rooms.List(r.Context())
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if listings == nil {
		listings = []entity.RoomListing{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(listings); err != nil {
		log.Error("failed to write rooms", "error", err)
	}
}
