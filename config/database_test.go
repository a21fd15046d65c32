package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMongoRetriesAfterFailedConnect(t *testing.T) {
	m := NewMongo(MongoConfig{URI: "invalid://nowhere", Database: "evently", Timeout: time.Second})
	ctx := context.Background()

	_, err := m.Database(ctx)
	require.ErrorContains(t, err, "connect mongo")
	_, err = m.Database(ctx)
	require.ErrorContains(t, err, "connect mongo")

	require.Equal(t, 2, m.attempts)
	require.Nil(t, m.current())
}

func TestMongoPingAndCloseBeforeConnect(t *testing.T) {
	m := NewMongo(MongoConfig{URI: "mongodb://localhost:27017", Database: "evently", Timeout: time.Second})

	require.ErrorIs(t, m.Ping(context.Background()), ErrNotConnected)
	require.NoError(t, m.Close(context.Background()))
}
