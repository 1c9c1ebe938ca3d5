package database

import (
	"context"
	"time"

	"labseat/internal/models"
)

// HasActiveBlock reports whether any block covers the user on the given day.
// Overlapping block rows are allowed; one match is enough.
func (db *DB) HasActiveBlock(ctx context.Context, userID, day string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blocks WHERE user_id = ? AND starts_at <= ? AND ends_at >= ?",
		userID, day, day,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBlock adds a block row for a user.
func (db *DB) CreateBlock(ctx context.Context, b *models.Block) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO blocks (user_id, starts_at, ends_at, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.StartsAt, b.EndsAt, b.Reason, now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	b.CreatedAt = now
	return nil
}

// DeleteBlocksForUser removes all of a user's block rows and returns how many.
func (db *DB) DeleteBlocksForUser(ctx context.Context, userID string) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM blocks WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListBlocks returns all block rows, most recent first.
func (db *DB) ListBlocks(ctx context.Context) ([]models.Block, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, user_id, starts_at, ends_at, reason, created_at FROM blocks ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.UserID, &b.StartsAt, &b.EndsAt, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
