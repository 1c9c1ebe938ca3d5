package api

import (
	"encoding/json"
	"net/http"
	"time"

	"labseat/internal/metrics"
	"labseat/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer translates transport-level requests into service calls and
// domain outcomes back into status codes. Caller identity arrives already
// resolved in the X-User-ID header.
type HTTPServer struct {
	svc        *service.ReservationService
	blockAdmin BlockAdmin
	adminKey   string
	log        *zerolog.Logger
	now        func() time.Time
}

// NewHTTPServer builds the API server. adminKey guards the block
// administration endpoints; leave it empty to disable them.
func NewHTTPServer(svc *service.ReservationService, blockAdmin BlockAdmin, adminKey string, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		svc:        svc,
		blockAdmin: blockAdmin,
		adminKey:   adminKey,
		log:        logger,
		now:        time.Now,
	}
}

// Handler returns the routed handler wrapped in logging and recovery.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservations/me", s.handleMyReservation)
	mux.HandleFunc("/api/rooms", s.handleRooms)
	mux.HandleFunc("/api/rooms/", s.handleRoomSeats)
	mux.HandleFunc("/api/blocks", s.handleBlocks)
	mux.HandleFunc("/api/blocks/", s.handleDeleteBlocks)
	return s.withLogging(mux)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rv := recover(); rv != nil {
				s.log.Error().
					Str("request_id", requestID).
					Interface("panic", rv).
					Str("path", r.URL.Path).
					Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(rec, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

// userID resolves the caller's identity. Authentication happens upstream;
// an absent header means the request never passed through it.
func (s *HTTPServer) userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminKey == "" || r.Header.Get("x-api-key") != s.adminKey {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeDomainError maps a service failure to a transport response. Anything
// that is not a DomainError is an unexpected failure and becomes a generic 500.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	de, ok := service.AsDomainError(err)
	if !ok {
		s.log.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusBadRequest
	switch de {
	case service.ErrInvalidApplyTime, service.ErrBorrowBlocked:
		status = http.StatusForbidden
	case service.ErrReservedUser, service.ErrReservedSeat:
		status = http.StatusConflict
	case service.ErrNotBorrowed:
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]any{"error": de.Message, "code": de.Code})
}

func incEndpoint(endpoint string) {
	metrics.IncHTTP(endpoint)
}
