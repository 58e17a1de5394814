package history

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/events"
)

// RoundRecord is a completed round as stored in the database.
type RoundRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RoomID      string    `gorm:"size:36;index;not null" json:"room_id"`
	Round       int       `gorm:"not null" json:"round"`
	Drawer      string    `gorm:"size:50" json:"drawer"`
	Word        string    `gorm:"size:100;not null" json:"word"`
	Reason      string    `gorm:"size:20;not null" json:"reason"`
	Scores      string    `gorm:"type:text" json:"scores"` // JSON object of username to score
	CompletedAt time.Time `gorm:"index;not null" json:"completed_at"`
}

// TableName returns the table name for RoundRecord model.
func (RoundRecord) TableName() string {
	return "rounds"
}

func newRoundRecord(event events.RoundCompletedEvent) (*RoundRecord, error) {
	scores, err := json.Marshal(event.Scores)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scores: %w", err)
	}
	completedAt := event.Timestamp
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	return &RoundRecord{
		RoomID:      event.RoomID,
		Round:       event.Round,
		Drawer:      event.Drawer,
		Word:        event.Word,
		Reason:      event.Reason,
		Scores:      string(scores),
		CompletedAt: completedAt,
	}, nil
}

func (r *RoundRecord) toDomain() domain.Round {
	scores := make(map[string]int)
	if r.Scores != "" {
		_ = json.Unmarshal([]byte(r.Scores), &scores)
	}
	return domain.Round{
		RoomID:      r.RoomID,
		Number:      r.Round,
		Drawer:      r.Drawer,
		Word:        r.Word,
		Reason:      r.Reason,
		Scores:      scores,
		CompletedAt: r.CompletedAt,
	}
}
