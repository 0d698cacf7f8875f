package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medskill-verify/internal/domain"
	"github.com/medskill-verify/internal/transport/http/middleware"
)

const msgProfileInternal = "failed to load profile"

type profileReader interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// ProfileHandler serves the signed-in user's profile row.
type ProfileHandler struct {
	profiles profileReader
}

func NewProfileHandler(profiles profileReader) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.profiles.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		slog.Error("profile lookup failed", "user_id", claims.Subject, "err", err)
		writeError(w, http.StatusInternalServerError, msgProfileInternal)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
