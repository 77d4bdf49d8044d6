package broker

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/testing/suite"
)

const testPrefix = "gomoku.test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Disabled(t *testing.T) {
	// Given: a publisher without a server
	publisher := Disabled(discardLogger())

	// When: events are published
	errFinished := publisher.PublishMatchFinished(entity.MatchFinished{Room: "room"})
	errAbandoned := publisher.PublishMatchAbandoned(entity.MatchAbandoned{Room: "room"})

	// Then: they are dropped silently
	assert.False(t, publisher.Enabled())
	require.NoError(t, errFinished)
	require.NoError(t, errAbandoned)
	publisher.Close()
}

func TestPublisher_Publish(t *testing.T) {
	_, url := suite.NATS(t)

	publisher, err := Connect(discardLogger(), url, testPrefix)
	require.NoError(t, err)
	t.Cleanup(publisher.Close)

	subscriber, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(subscriber.Close)

	t.Run("Finished match", func(t *testing.T) {
		// Given: a subscriber on the finished subject
		sub, err := subscriber.SubscribeSync(testPrefix + ".finished")
		require.NoError(t, err)
		require.NoError(t, subscriber.Flush())

		event := entity.MatchFinished{
			Room:       "room-1",
			Winner:     entity.MarkO,
			Cells:      []entity.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 3}, {Row: 4, Col: 4}},
			FinishedAt: time.UnixMilli(1700000000000).UTC(),
		}

		// When: the outcome is published
		require.NoError(t, publisher.PublishMatchFinished(event))

		// Then: the subscriber receives it as JSON
		msg, err := sub.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var received entity.MatchFinished
		require.NoError(t, json.Unmarshal(msg.Data, &received))
		assert.Equal(t, event, received)
	})

	t.Run("Abandoned match", func(t *testing.T) {
		sub, err := subscriber.SubscribeSync(testPrefix + ".abandoned")
		require.NoError(t, err)
		require.NoError(t, subscriber.Flush())

		event := entity.MatchAbandoned{Room: "room-2", Leaver: "handle", AbandonedAt: time.UnixMilli(1700000000000).UTC()}

		require.NoError(t, publisher.PublishMatchAbandoned(event))

		msg, err := sub.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var received entity.MatchAbandoned
		require.NoError(t, json.Unmarshal(msg.Data, &received))
		assert.Equal(t, event, received)
	})
}
