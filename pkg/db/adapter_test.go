package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sherpas/supply/pkg/db"
	"github.com/sherpas/supply/pkg/events"
	"github.com/sherpas/supply/pkg/types"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	testContract = "0x8e745b4Ce4d564824b486d14b2E3e240f5B148A9"
	testFunction = "SupplyChain"
)

func setupTestDB(t *testing.T) *db.DatabaseAdapter {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	dbName := "supply"
	dbUser := "user"
	dbPassword := "password"

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgresContainer.Terminate(ctx) })

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		host, dbUser, dbPassword, dbName, port.Int())

	adapter, err := db.NewDatabaseAdapter(dsn, testContract, testFunction)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestNewDatabaseAdapterDisabled(t *testing.T) {
	_, err := db.NewDatabaseAdapter("", testContract, testFunction)
	require.ErrorIs(t, err, db.ErrHistoryDisabled)
}

func TestSaveAndListReadings(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()

	first := types.Success("sepolia", 11155111, []string{"100"})
	first.ReadAt = time.Now().UTC().Add(-time.Minute)
	second := types.Failure("sepolia", 11155111, fmt.Errorf("execution reverted"))
	other := types.Success("base", 8453, []string{"5"})

	require.NoError(t, adapter.SaveReading(ctx, first))
	require.NoError(t, adapter.SaveReading(ctx, second))
	require.NoError(t, adapter.SaveReading(ctx, other))
	require.NoError(t, adapter.SaveReading(ctx, types.Pending("sepolia", 11155111)))

	readings, err := adapter.ListReadings(ctx, "sepolia", 0)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	require.Equal(t, second.ID, readings[0].ID)
	require.Equal(t, types.ReadStatusError, readings[0].Status)
	require.Equal(t, "execution reverted", readings[0].Reason)
	require.Equal(t, first.ID, readings[1].ID)
	require.Equal(t, []string{"100"}, readings[1].Values)

	latest, err := adapter.LatestReading(ctx, "base")
	require.NoError(t, err)
	require.Equal(t, "5", latest.Value)

	_, err = adapter.LatestReading(ctx, "mainnet")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListenEventsFromBusChannel(t *testing.T) {
	adapter := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	receiver := make(chan *events.EventEnvelope, 1)
	done := make(chan struct{})
	go func() {
		adapter.ListenEventsFromBusChannel(ctx, receiver)
		close(done)
	}()

	receiver <- events.NewReadEnvelope(types.Success("mainnet", 1, []string{"9"}))
	close(receiver)
	<-done

	latest, err := adapter.LatestReading(context.Background(), "mainnet")
	require.NoError(t, err)
	require.Equal(t, "9", latest.Value)
}
