package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"labseat/internal/models"
)

// BlockAdmin manages block rows. The reservation core only reads blocks;
// these endpoints exist so operators can manage them without raw DB access.
type BlockAdmin interface {
	CreateBlock(ctx context.Context, b *models.Block) error
	DeleteBlocksForUser(ctx context.Context, userID string) (int64, error)
	ListBlocks(ctx context.Context) ([]models.Block, error)
}

// CreateBlockRequest is the body for POST /api/blocks.
type CreateBlockRequest struct {
	UserID   string `json:"user_id"`
	StartsAt string `json:"starts_at"` // YYYY-MM-DD
	EndsAt   string `json:"ends_at"`   // YYYY-MM-DD
	Reason   string `json:"reason,omitempty"`
}

func (s *HTTPServer) handleBlocks(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodPost:
		incEndpoint("create_block")
		s.handleCreateBlock(w, r)
	case http.MethodGet:
		incEndpoint("list_blocks")
		s.handleListBlocks(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	for _, d := range []string{req.StartsAt, req.EndsAt} {
		if _, err := time.Parse(models.DayFormat, d); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	}
	if req.EndsAt < req.StartsAt {
		writeError(w, http.StatusBadRequest, "ends_at must not precede starts_at")
		return
	}

	block := &models.Block{
		UserID:   req.UserID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Reason:   req.Reason,
	}
	if err := s.blockAdmin.CreateBlock(r.Context(), block); err != nil {
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to create block")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.log.Info().
		Str("user_id", req.UserID).
		Str("starts_at", req.StartsAt).
		Str("ends_at", req.EndsAt).
		Msg("user blocked")
	writeJSON(w, http.StatusOK, block)
}

func (s *HTTPServer) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.blockAdmin.ListBlocks(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list blocks")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

// handleDeleteBlocks serves DELETE /api/blocks/{user_id}.
func (s *HTTPServer) handleDeleteBlocks(w http.ResponseWriter, r *http.Request) {
	incEndpoint("delete_blocks")
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/blocks/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	deleted, err := s.blockAdmin.DeleteBlocksForUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to delete blocks")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if deleted == 0 {
		writeError(w, http.StatusNotFound, "no blocks for user")
		return
	}

	s.log.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("user unblocked")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
