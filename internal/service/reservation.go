package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labseat/internal/config"
	"labseat/internal/database"
	"labseat/internal/metrics"
	"labseat/internal/models"
	"labseat/internal/occupancy"
	"labseat/internal/policy"

	"github.com/rs/zerolog"
)

// ReservationStore is the persistence contract for reservation records. All
// lookups are scoped to a caller-supplied calendar day.
type ReservationStore interface {
	FindReservationByUser(ctx context.Context, userID, day string) (*models.Reservation, error)
	FindReservationBySeat(ctx context.Context, room string, seat int, day string) (*models.Reservation, error)
	ListReservationsByRoom(ctx context.Context, room, day string) ([]models.Reservation, error)
	CountReservationsByRoom(ctx context.Context, room, day string) (int, error)
	CreateReservation(ctx context.Context, userID, room string, seat int, day string) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation, room string, seat int) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, r *models.Reservation) error
}

// BlockReader answers whether a user is barred from borrowing on a day. The
// service only reads block rows; their lifecycle is owned elsewhere.
type BlockReader interface {
	HasActiveBlock(ctx context.Context, userID, day string) (bool, error)
}

// RoomStatus summarizes one room's occupancy for the day.
type RoomStatus struct {
	Room     string         `json:"room"`
	Capacity int            `json:"size"`
	Occupied int            `json:"seats"`
	Status   occupancy.Tier `json:"status"`
}

// SeatView is the caller's current reservation, or the empty sentinel
// (room "", seat 0) when none exists.
type SeatView struct {
	Room string `json:"room"`
	Seat int    `json:"seat"`
}

// ReservationService enforces the reservation policy: one seat per user per
// day, one user per seat per day, borrowing only inside the weekday window,
// and no borrowing while blocked.
type ReservationService struct {
	store   ReservationStore
	blocks  BlockReader
	catalog *config.RoomCatalog
	window  policy.BorrowWindow
	cache   *statusCache
	logger  *zerolog.Logger
}

// NewReservationService wires the service with its collaborators.
func NewReservationService(store ReservationStore, blocks BlockReader, catalog *config.RoomCatalog, window policy.BorrowWindow, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:   store,
		blocks:  blocks,
		catalog: catalog,
		window:  window,
		logger:  logger,
	}
}

// Borrow reserves a seat for the user for the calendar day of now.
func (s *ReservationService) Borrow(ctx context.Context, userID, room string, seat int, now time.Time) error {
	if err := s.borrow(ctx, userID, room, seat, now); err != nil {
		s.countOutcome("borrow", err)
		return err
	}
	s.countOutcome("borrow", nil)
	s.invalidateStatus(ctx, models.Day(now))
	return nil
}

func (s *ReservationService) borrow(ctx context.Context, userID, room string, seat int, now time.Time) error {
	if room == "" || seat <= 0 {
		return ErrInvalidRequestFormat
	}

	if !s.window.Contains(now) {
		return ErrInvalidApplyTime
	}

	day := models.Day(now)

	blocked, err := s.blocks.HasActiveBlock(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return ErrBorrowBlocked
	}

	mine, err := s.store.FindReservationByUser(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("find by user: %w", err)
	}
	if mine != nil {
		return ErrReservedUser
	}

	taken, err := s.store.FindReservationBySeat(ctx, room, seat, day)
	if err != nil {
		return fmt.Errorf("find by seat: %w", err)
	}
	if taken != nil {
		return ErrReservedSeat
	}

	if !s.catalog.Contains(room) {
		return ErrInvalidRoom
	}

	// Seat numbers are deliberately not checked against room capacity; any
	// free seat number a client sends is accepted.
	if _, err := s.store.CreateReservation(ctx, userID, room, seat, day); err != nil {
		return s.mapConflict(err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("room", room).
		Int("seat", seat).
		Str("day", day).
		Msg("seat borrowed")
	return nil
}

// Change moves the user's existing reservation to a new room/seat in place.
func (s *ReservationService) Change(ctx context.Context, userID, room string, seat int, now time.Time) error {
	if err := s.change(ctx, userID, room, seat, now); err != nil {
		s.countOutcome("change", err)
		return err
	}
	s.countOutcome("change", nil)
	s.invalidateStatus(ctx, models.Day(now))
	return nil
}

func (s *ReservationService) change(ctx context.Context, userID, room string, seat int, now time.Time) error {
	if room == "" || seat <= 0 {
		return ErrInvalidRequestFormat
	}

	day := models.Day(now)

	mine, err := s.store.FindReservationByUser(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("find by user: %w", err)
	}
	if mine == nil {
		return ErrNotBorrowed
	}

	if !s.window.Contains(now) {
		return ErrInvalidApplyTime
	}

	taken, err := s.store.FindReservationBySeat(ctx, room, seat, day)
	if err != nil {
		return fmt.Errorf("find by seat: %w", err)
	}
	if taken != nil && taken.ID != mine.ID {
		return ErrReservedSeat
	}

	if !s.catalog.Contains(room) {
		return ErrInvalidRoom
	}

	if _, err := s.store.UpdateReservation(ctx, mine, room, seat); err != nil {
		return s.mapConflict(err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("room", room).
		Int("seat", seat).
		Str("day", day).
		Msg("seat changed")
	return nil
}

// Cancel releases the user's reservation for the day. No window or block
// restriction applies.
func (s *ReservationService) Cancel(ctx context.Context, userID string, now time.Time) error {
	day := models.Day(now)

	mine, err := s.store.FindReservationByUser(ctx, userID, day)
	if err != nil {
		s.countOutcome("cancel", err)
		return fmt.Errorf("find by user: %w", err)
	}
	if mine == nil {
		s.countOutcome("cancel", ErrNotBorrowed)
		return ErrNotBorrowed
	}

	if err := s.store.DeleteReservation(ctx, mine); err != nil {
		s.countOutcome("cancel", err)
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.countOutcome("cancel", nil)
	s.invalidateStatus(ctx, day)
	s.logger.Info().
		Str("user_id", userID).
		Str("day", day).
		Msg("reservation canceled")
	return nil
}

// MyReservation returns the user's seat for the day; the absence of one is
// not an error but the empty sentinel.
func (s *ReservationService) MyReservation(ctx context.Context, userID string, now time.Time) (SeatView, error) {
	mine, err := s.store.FindReservationByUser(ctx, userID, models.Day(now))
	if err != nil {
		return SeatView{}, fmt.Errorf("find by user: %w", err)
	}
	if mine == nil {
		return SeatView{}, nil
	}
	return SeatView{Room: mine.Room, Seat: mine.Seat}, nil
}

// RoomStatuses reports occupancy per room, keyed by display name, in catalog
// order as far as the map's producer is concerned.
func (s *ReservationService) RoomStatuses(ctx context.Context, now time.Time) (map[string]RoomStatus, error) {
	day := models.Day(now)

	if cached, ok := s.readStatusCache(ctx, day); ok {
		return cached, nil
	}

	statuses := make(map[string]RoomStatus, len(s.catalog.Rooms()))
	for _, room := range s.catalog.Rooms() {
		count, err := s.store.CountReservationsByRoom(ctx, room.ID, day)
		if err != nil {
			return nil, fmt.Errorf("count room %s: %w", room.ID, err)
		}
		statuses[room.DisplayName] = RoomStatus{
			Room:     room.ID,
			Capacity: room.Capacity,
			Occupied: count,
			Status:   occupancy.Classify(count, room.Capacity),
		}
	}

	s.writeStatusCache(ctx, day, statuses)
	return statuses, nil
}

// RoomSeats returns the occupied seat numbers of a room for the day, in
// store order.
func (s *ReservationService) RoomSeats(ctx context.Context, room string, now time.Time) ([]int, error) {
	if !s.catalog.Contains(room) {
		return nil, ErrInvalidRoom
	}

	reservations, err := s.store.ListReservationsByRoom(ctx, room, models.Day(now))
	if err != nil {
		return nil, fmt.Errorf("list room %s: %w", room, err)
	}

	seats := make([]int, 0, len(reservations))
	for _, r := range reservations {
		seats = append(seats, r.Seat)
	}
	return seats, nil
}

// mapConflict translates persistence-level uniqueness races into the domain
// failures the caller would have seen had it won the check.
func (s *ReservationService) mapConflict(err error) error {
	switch {
	case errors.Is(err, database.ErrDuplicateUser):
		return ErrReservedUser
	case errors.Is(err, database.ErrDuplicateSeat):
		return ErrReservedSeat
	default:
		return err
	}
}

func (s *ReservationService) countOutcome(operation string, err error) {
	result := "ok"
	if err != nil {
		if de, ok := AsDomainError(err); ok {
			result = de.Code
		} else {
			result = "error"
		}
	}
	metrics.IncReservationOutcome(operation, result)
}
