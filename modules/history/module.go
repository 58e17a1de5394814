package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errNotStarted = errors.New("history module not started")

// Module records completed rounds in SQLite through GORM.
type Module struct {
	db      *gorm.DB
	repo    *Repository
	dbPath  string
	dbDebug bool
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new history module storing rounds at dbPath.
func NewModule(dbPath string, dbDebug bool, logger types.Logger) *Module {
	return &Module{
		dbPath:  dbPath,
		dbDebug: dbDebug,
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "history"
}

// Start opens the database and runs migrations.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Connecting to SQLite database", "path", m.dbPath)

	logLevel := logger.Silent
	if m.dbDebug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&RoundRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.db = db
	m.repo = NewRepository(db)
	m.logger.Info("History module started")
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("History module stopped")
	return nil
}

// Health performs a health check on the database.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRounds, json.Unmarshal, json.Marshal, m.listRounds,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRounds, err)
	}

	m.logger.Info("Registered services", "services", ServiceListRounds)
	return nil
}

// RegisterEventConsumers registers the round completion consumer.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoundCompletedV1, m.handleRoundCompleted, m,
	); err != nil {
		return fmt.Errorf("failed to register RoundCompleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "RoundCompleted")
	return nil
}

func (m *Module) handleRoundCompleted(_ context.Context, event events.RoundCompletedEvent, _ *mono.Msg) error {
	if m.repo == nil {
		return errNotStarted
	}

	record, err := newRoundRecord(event)
	if err != nil {
		m.logger.Error("Dropping round with invalid scores", "roomID", event.RoomID, "error", err)
		return nil
	}
	if err := m.repo.Create(record); err != nil {
		return err
	}

	m.logger.Debug("Stored round",
		"roomID", event.RoomID,
		"round", event.Round,
		"reason", event.Reason)
	return nil
}

func (m *Module) listRounds(_ context.Context, req ListRoundsRequest, _ *mono.Msg) (ListRoundsResponse, error) {
	if m.repo == nil {
		return ListRoundsResponse{}, errNotStarted
	}
	if req.RoomID == "" {
		return ListRoundsResponse{}, fmt.Errorf("room_id is required")
	}

	records, err := m.repo.ListByRoom(req.RoomID, normalizeLimit(req.Limit))
	if err != nil {
		return ListRoundsResponse{}, err
	}
	total, err := m.repo.CountByRoom(req.RoomID)
	if err != nil {
		return ListRoundsResponse{}, err
	}

	rounds := make([]domain.Round, 0, len(records))
	for _, record := range records {
		rounds = append(rounds, record.toDomain())
	}
	return ListRoundsResponse{Rounds: rounds, Total: total}, nil
}
