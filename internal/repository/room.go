package repository

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const roomsKey = "rooms"

// RoomRepository mirrors the lobby listing into redis so it can be read without touching live rooms.
type RoomRepository interface {
	ReplaceAll(ctx context.Context, listings []entity.RoomListing) error
	List(ctx context.Context) ([]entity.RoomListing, error)
	Clear(ctx context.Context) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// ReplaceAll swaps the stored listing for the given one in a single transaction.
func (that *dbRoom) ReplaceAll(ctx context.Context, listings []entity.RoomListing) error {
	fields := make(map[string]any, len(listings))
	for _, listing := range listings {
		listingJSON, err := json.Marshal(listing)
		if err != nil {
			return fmt.Errorf("could not marshal room listing: %w", err)
		}

		fields[listing.ID] = listingJSON
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomsKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, roomsKey, fields)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace room listings: %w", err)
	}

	return nil
}

// List returns the stored listing, oldest room first.
func (that *dbRoom) List(ctx context.Context) ([]entity.RoomListing, error) {
	response, err := that.client.HGetAll(ctx, roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room listings: %w", err)
	}

	listings := make([]entity.RoomListing, 0, len(response))
	for id, value := range response {
		var listing entity.RoomListing
		if err = json.Unmarshal([]byte(value), &listing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room listing %s: %w", id, err)
		}

		listings = append(listings, listing)
	}

	slices.SortFunc(listings, func(a, b entity.RoomListing) int {
		return cmp.Or(cmp.Compare(a.CreatedDate, b.CreatedDate), cmp.Compare(a.ID, b.ID))
	})

	return listings, nil
}

func (that *dbRoom) Clear(ctx context.Context) error {
	if err := that.client.Del(ctx, roomsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear room listings: %w", err)
	}

	return nil
}
