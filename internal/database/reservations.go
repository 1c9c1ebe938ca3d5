package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labseat/internal/models"
)

const reservationColumns = "id, user_id, room, seat, day, created_at, updated_at"

func scanReservation(row *sql.Row) (*models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.Room, &r.Seat, &r.Day, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindReservationByUser returns the user's reservation for a day, or nil if none.
func (db *DB) FindReservationByUser(ctx context.Context, userID, day string) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id = ? AND day = ?",
		userID, day,
	)
	return scanReservation(row)
}

// FindReservationBySeat returns the reservation holding a seat for a day, or nil.
func (db *DB) FindReservationBySeat(ctx context.Context, room string, seat int, day string) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE room = ? AND seat = ? AND day = ?",
		room, seat, day,
	)
	return scanReservation(row)
}

// ListReservationsByRoom returns a room's reservations for a day in insertion order.
func (db *DB) ListReservationsByRoom(ctx context.Context, room, day string) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE room = ? AND day = ? ORDER BY id",
		room, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.UserID, &r.Room, &r.Seat, &r.Day, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// CountReservationsByRoom returns the number of seats taken in a room for a day.
func (db *DB) CountReservationsByRoom(ctx context.Context, room, day string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE room = ? AND day = ?",
		room, day,
	).Scan(&count)
	return count, err
}

// CreateReservation inserts a new reservation. A lost race against another
// writer surfaces as ErrDuplicateUser or ErrDuplicateSeat.
func (db *DB) CreateReservation(ctx context.Context, userID, room string, seat int, day string) (*models.Reservation, error) {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO reservations (user_id, room, seat, day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, room, seat, day, now, now,
	)
	if err != nil {
		return nil, classifyConflict(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last id: %w", err)
	}

	return &models.Reservation{
		ID:        id,
		UserID:    userID,
		Room:      room,
		Seat:      seat,
		Day:       day,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateReservation moves an existing reservation to a new room/seat in place,
// preserving its identity and creation time. A lost race surfaces as
// ErrDuplicateSeat.
func (db *DB) UpdateReservation(ctx context.Context, r *models.Reservation, room string, seat int) (*models.Reservation, error) {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		"UPDATE reservations SET room = ?, seat = ?, updated_at = ? WHERE id = ?",
		room, seat, now, r.ID,
	)
	if err != nil {
		return nil, classifyConflict(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("reservation %d not found", r.ID)
	}

	updated := *r
	updated.Room = room
	updated.Seat = seat
	updated.UpdatedAt = now
	return &updated, nil
}

// DeleteReservation removes a reservation.
func (db *DB) DeleteReservation(ctx context.Context, r *models.Reservation) error {
	result, err := db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", r.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reservation %d not found", r.ID)
	}
	return nil
}
