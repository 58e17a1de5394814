package history

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// HistoryPort defines the round history operations available to other modules.
type HistoryPort interface {
	ListRounds(ctx context.Context, roomID string, limit int) ([]domain.Round, int64, error)
}

// HistoryAdapter implements HistoryPort using the service container.
type HistoryAdapter struct {
	container mono.ServiceContainer
}

// NewHistoryAdapter creates a new HistoryAdapter.
func NewHistoryAdapter(container mono.ServiceContainer) HistoryPort {
	if container == nil {
		panic("history: ServiceContainer is nil")
	}
	return &HistoryAdapter{container: container}
}

// ListRounds returns the most recent rounds of a room and the total stored.
func (a *HistoryAdapter) ListRounds(ctx context.Context, roomID string, limit int) ([]domain.Round, int64, error) {
	req := ListRoundsRequest{RoomID: roomID, Limit: limit}
	var resp ListRoundsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRounds,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, 0, fmt.Errorf("failed to list rounds: %w", err)
	}
	return resp.Rounds, resp.Total, nil
}
