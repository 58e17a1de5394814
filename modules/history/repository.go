package history

import (
	"fmt"

	"gorm.io/gorm"
)

// Repository provides access to round storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new round repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a completed round.
func (r *Repository) Create(record *RoundRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// ListByRoom returns the most recent rounds of a room, newest first.
func (r *Repository) ListByRoom(roomID string, limit int) ([]*RoundRecord, error) {
	var records []*RoundRecord
	query := r.db.Where("room_id = ?", roomID).Order("completed_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return records, nil
}

// CountByRoom returns the number of stored rounds of a room.
func (r *Repository) CountByRoom(roomID string) (int64, error) {
	var count int64
	if err := r.db.Model(&RoundRecord{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return count, nil
}
