package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ReserveRequest is the body for borrow and change requests.
type ReserveRequest struct {
	Room string `json:"room"`
	Seat int    `json:"seat"`
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	switch r.Method {
	case http.MethodPost:
		incEndpoint("borrow")
		s.handleBorrow(w, r, userID)
	case http.MethodPut:
		incEndpoint("change")
		s.handleChange(w, r, userID)
	case http.MethodDelete:
		incEndpoint("cancel")
		s.handleCancel(w, r, userID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBorrow(w http.ResponseWriter, r *http.Request, userID string) {
	var req ReserveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Borrow(r.Context(), userID, req.Room, req.Seat, s.now()); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleChange(w http.ResponseWriter, r *http.Request, userID string) {
	var req ReserveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Change(r.Context(), userID, req.Room, req.Seat, s.now()); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.svc.Cancel(r.Context(), userID, s.now()); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleMyReservation(w http.ResponseWriter, r *http.Request) {
	incEndpoint("my_reservation")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := s.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	view, err := s.svc.MyReservation(r.Context(), userID, s.now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	incEndpoint("rooms")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	statuses, err := s.svc.RoomStatuses(r.Context(), s.now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

// handleRoomSeats serves GET /api/rooms/{room}/seats.
func (s *HTTPServer) handleRoomSeats(w http.ResponseWriter, r *http.Request) {
	incEndpoint("room_seats")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
	room, tail, found := strings.Cut(rest, "/")
	if !found || tail != "seats" || room == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	seats, err := s.svc.RoomSeats(r.Context(), room, s.now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"seats": seats})
}
