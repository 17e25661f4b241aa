package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"preschoolfees/internal/database"
	"preschoolfees/internal/models"
)

// VersionRepository records the change history of families and kids
type VersionRepository struct {
	db database.DBTX
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(db database.DBTX) *VersionRepository {
	return &VersionRepository{db: db}
}

// Record stores one save of an item as a change set and returns its ID.
// Nothing is written when changes is empty.
func (r *VersionRepository) Record(itemType string, itemID int64, event string, changes []models.Change) (string, error) {
	if len(changes) == 0 {
		return "", nil
	}

	changeSetID := uuid.New().String()
	now := time.Now().UTC()
	query := `
		INSERT INTO versions (change_set_id, item_type, item_id, event, field,
			old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, c := range changes {
		_, err := r.db.Exec(query, changeSetID, itemType, itemID, event, c.Field, c.OldValue, c.NewValue, now)
		if err != nil {
			return "", fmt.Errorf("failed to record %s change: %w", c.Field, err)
		}
	}
	return changeSetID, nil
}

// History retrieves every recorded change of an item, oldest first
func (r *VersionRepository) History(itemType string, itemID int64) ([]models.Change, error) {
	query := `
		SELECT id, change_set_id, item_type, item_id, event, field, old_value,
			new_value, created_at
		FROM versions
		WHERE item_type = ? AND item_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		if err := rows.Scan(
			&c.ID,
			&c.ChangeSetID,
			&c.ItemType,
			&c.ItemID,
			&c.Event,
			&c.Field,
			&c.OldValue,
			&c.NewValue,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
