package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"labseat/internal/config"
	"labseat/internal/models"
	"labseat/internal/policy"
	"labseat/internal/service"

	"github.com/rs/zerolog"
)

// fakeStore is an in-memory ReservationStore good enough for handler tests.
type fakeStore struct {
	mu           sync.Mutex
	nextID       int64
	reservations []*models.Reservation
}

func (f *fakeStore) FindReservationByUser(_ context.Context, userID, day string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.UserID == userID && r.Day == day {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindReservationBySeat(_ context.Context, room string, seat int, day string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.Room == room && r.Seat == seat && r.Day == day {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListReservationsByRoom(_ context.Context, room, day string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Room == room && r.Day == day {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) CountReservationsByRoom(ctx context.Context, room, day string) (int, error) {
	list, _ := f.ListReservationsByRoom(ctx, room, day)
	return len(list), nil
}

func (f *fakeStore) CreateReservation(_ context.Context, userID, room string, seat int, day string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := &models.Reservation{
		ID: f.nextID, UserID: userID, Room: room, Seat: seat, Day: day,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.reservations = append(f.reservations, r)
	c := *r
	return &c, nil
}

func (f *fakeStore) UpdateReservation(_ context.Context, res *models.Reservation, room string, seat int) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ID == res.ID {
			r.Room = room
			r.Seat = seat
			r.UpdatedAt = time.Now()
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteReservation(_ context.Context, res *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reservations {
		if r.ID == res.ID {
			f.reservations = append(f.reservations[:i], f.reservations[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeBlocks struct {
	mu     sync.Mutex
	blocks []models.Block
	nextID int64
}

func (f *fakeBlocks) HasActiveBlock(_ context.Context, userID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.blocks {
		if f.blocks[i].UserID == userID && f.blocks[i].Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlocks) CreateBlock(_ context.Context, b *models.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	f.blocks = append(f.blocks, *b)
	return nil
}

func (f *fakeBlocks) DeleteBlocksForUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Block
	var deleted int64
	for _, b := range f.blocks {
		if b.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	f.blocks = kept
	return deleted, nil
}

func (f *fakeBlocks) ListBlocks(_ context.Context) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Block(nil), f.blocks...), nil
}

// wednesday is inside the borrow window.
var wednesday = time.Date(2026, 9, 2, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) (*HTTPServer, *fakeStore, *fakeBlocks) {
	t.Helper()

	catalog, err := config.NewRoomCatalog([]config.RoomDescriptor{
		{ID: "lab1", DisplayName: "Lab 1", Capacity: 24},
		{ID: "self", DisplayName: "Self-study room", Capacity: 36},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	store := &fakeStore{}
	blocks := &fakeBlocks{}
	logger := zerolog.New(io.Discard)
	svc := service.NewReservationService(store, blocks, catalog, policy.DefaultBorrowWindow(), &logger)

	srv := NewHTTPServer(svc, blocks, "admin-key", &logger)
	srv.now = func() time.Time { return wednesday }
	return srv, store, blocks
}

func doRequest(t *testing.T, srv *HTTPServer, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestBorrowEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "success",
			userID:         "u1",
			body:           ReserveRequest{Room: "lab1", Seat: 5},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing identity",
			userID:         "",
			body:           ReserveRequest{Room: "lab1", Seat: 5},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing seat",
			userID:         "u1",
			body:           map[string]any{"room": "lab1"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_request_format",
		},
		{
			name:           "unknown room",
			userID:         "u1",
			body:           ReserveRequest{Room: "lab9", Seat: 5},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_room",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t)
			w := doRequest(t, srv, http.MethodPost, "/api/reservations", tt.userID, tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" {
				var resp map[string]any
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp["code"] != tt.expectedCode {
					t.Errorf("expected code %q, got %v", tt.expectedCode, resp["code"])
				}
			}
		})
	}
}

func TestBorrowConflicts(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 5})
	if w.Code != http.StatusOK {
		t.Fatalf("first borrow failed: %d %s", w.Code, w.Body.String())
	}

	// Same user again, different seat: one seat per user per day.
	w = doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "self", Seat: 9})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for second borrow, got %d", w.Code)
	}

	// Different user, same seat.
	w = doRequest(t, srv, http.MethodPost, "/api/reservations", "u2", ReserveRequest{Room: "lab1", Seat: 5})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for taken seat, got %d", w.Code)
	}
}

func TestBorrowOutsideWindow(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.now = func() time.Time { return time.Date(2026, 9, 5, 12, 0, 0, 0, time.Local) } // Saturday

	w := doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 5})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 on a Saturday, got %d", w.Code)
	}
}

func TestBorrowBlockedUser(t *testing.T) {
	srv, _, blocks := newTestServer(t)
	day := models.Day(wednesday)
	_ = blocks.CreateBlock(context.Background(), &models.Block{UserID: "u1", StartsAt: day, EndsAt: day})

	w := doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 5})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for blocked user, got %d", w.Code)
	}
}

func TestChangeEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// Change without a reservation.
	w := doRequest(t, srv, http.MethodPut, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 6})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before borrowing, got %d", w.Code)
	}

	doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 5})
	doRequest(t, srv, http.MethodPost, "/api/reservations", "u2", ReserveRequest{Room: "lab1", Seat: 6})

	// Move onto someone else's seat.
	w = doRequest(t, srv, http.MethodPut, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 6})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 moving onto a taken seat, got %d", w.Code)
	}

	// The failed change left the original untouched.
	w = doRequest(t, srv, http.MethodGet, "/api/reservations/me", "u1", nil)
	var view service.SeatView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Room != "lab1" || view.Seat != 5 {
		t.Errorf("expected original seat lab1/5, got %s/%d", view.Room, view.Seat)
	}

	// Legal move.
	w = doRequest(t, srv, http.MethodPut, "/api/reservations", "u1", ReserveRequest{Room: "self", Seat: 11})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for valid change, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestCancelEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodDelete, "/api/reservations", "u1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 cancel without reservation, got %d", w.Code)
	}

	doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 5})

	w = doRequest(t, srv, http.MethodDelete, "/api/reservations", "u1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for cancel, got %d", w.Code)
	}

	// After cancel, the sentinel empty view comes back.
	w = doRequest(t, srv, http.MethodGet, "/api/reservations/me", "u1", nil)
	var view service.SeatView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Room != "" || view.Seat != 0 {
		t.Errorf("expected empty sentinel, got %s/%d", view.Room, view.Seat)
	}
}

func TestRoomsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 1})
	doRequest(t, srv, http.MethodPost, "/api/reservations", "u2", ReserveRequest{Room: "lab1", Seat: 2})

	w := doRequest(t, srv, http.MethodGet, "/api/rooms", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var statuses map[string]service.RoomStatus
	if err := json.NewDecoder(w.Body).Decode(&statuses); err != nil {
		t.Fatalf("decode statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(statuses))
	}

	lab1 := statuses["Lab 1"]
	if lab1.Occupied != 2 || lab1.Capacity != 24 || lab1.Status != 0 {
		t.Errorf("unexpected lab1 status: %+v", lab1)
	}
}

func TestRoomSeatsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/reservations", "u1", ReserveRequest{Room: "lab1", Seat: 7})
	doRequest(t, srv, http.MethodPost, "/api/reservations", "u2", ReserveRequest{Room: "lab1", Seat: 3})

	w := doRequest(t, srv, http.MethodGet, "/api/rooms/lab1/seats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Seats []int `json:"seats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode seats: %v", err)
	}
	if len(resp.Seats) != 2 {
		t.Errorf("expected 2 seats, got %v", resp.Seats)
	}

	// Unknown room is an error, never an empty success.
	w = doRequest(t, srv, http.MethodGet, "/api/rooms/lab9/seats", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown room, got %d", w.Code)
	}
}
