package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/pkg/db/models"
	"github.com/sherpas/supply/pkg/events"
	"github.com/sherpas/supply/pkg/types"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DEFAULT_HISTORY_LIMIT = 50
	MAX_HISTORY_LIMIT     = 1000
)

var ErrHistoryDisabled = errors.New("reading history is disabled")

type DatabaseAdapter struct {
	PostgresClient *gorm.DB
	contract       string
	function       string
}

// NewDatabaseAdapter connects to postgres and migrates the schema.
// contract and function are stored along with every reading.
func NewDatabaseAdapter(databaseUrl string, contract string, function string) (*DatabaseAdapter, error) {
	if databaseUrl == "" {
		return nil, ErrHistoryDisabled
	}
	client, err := NewPostgresClient(databaseUrl)
	if err != nil {
		return nil, err
	}
	return NewDatabaseAdapterWithClient(client, contract, function)
}

func NewDatabaseAdapterWithClient(client *gorm.DB, contract string, function string) (*DatabaseAdapter, error) {
	if err := client.AutoMigrate(&models.SupplyReading{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &DatabaseAdapter{
		PostgresClient: client,
		contract:       contract,
		function:       function,
	}, nil
}

func NewPostgresClient(databaseUrl string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseUrl), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// SaveReading stores a settled result. Pending results are ignored.
func (da *DatabaseAdapter) SaveReading(ctx context.Context, result *types.ReadResult) error {
	if result.IsPending() {
		return nil
	}
	model := models.ReadResult2Model(result, da.contract, da.function)
	if err := da.PostgresClient.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save reading %s: %w", result.ID, err)
	}
	return nil
}

func (da *DatabaseAdapter) LatestReading(ctx context.Context, chain string) (*types.ReadResult, error) {
	var model models.SupplyReading
	err := da.PostgresClient.WithContext(ctx).
		Where("chain = ?", chain).
		Order("read_at DESC").
		First(&model).Error
	if err != nil {
		return nil, err
	}
	result := model.ToReadResult()
	return &result, nil
}

// ListReadings returns the latest readings of chain, newest first.
func (da *DatabaseAdapter) ListReadings(ctx context.Context, chain string, limit int) ([]types.ReadResult, error) {
	if limit <= 0 {
		limit = DEFAULT_HISTORY_LIMIT
	}
	if limit > MAX_HISTORY_LIMIT {
		limit = MAX_HISTORY_LIMIT
	}
	var readings []models.SupplyReading
	err := da.PostgresClient.WithContext(ctx).
		Where("chain = ?", chain).
		Order("read_at DESC").
		Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list readings of %s: %w", chain, err)
	}
	results := make([]types.ReadResult, 0, len(readings))
	for i := range readings {
		results = append(results, readings[i].ToReadResult())
	}
	return results, nil
}

// ListenEventsFromBusChannel stores every result received until the channel closes or ctx is done.
func (da *DatabaseAdapter) ListenEventsFromBusChannel(ctx context.Context, receiver <-chan *events.EventEnvelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-receiver:
			if !ok {
				return
			}
			if err := da.SaveReading(ctx, event.Data); err != nil {
				log.Error().Err(err).Str("chain", event.Chain).Msg("[DatabaseAdapter] [ListenEventsFromBusChannel] failed to store reading")
			}
		}
	}
}

func (da *DatabaseAdapter) Close() error {
	sqlDB, err := da.PostgresClient.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
