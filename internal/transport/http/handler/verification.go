package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medskill-verify/internal/application/verification"
	"github.com/medskill-verify/internal/domain"
)

const (
	msgVerified       = "Akun berhasil diverifikasi dan disinkronkan!"
	msgInvalidToken   = "Token tidak valid atau sudah digunakan."
	msgInProgress     = "Verifikasi sedang diproses. Silakan coba lagi sebentar lagi."
	msgVerifyInternal = "Terjadi kesalahan saat verifikasi."
)

// VerificationHandler finalizes accounts from emailed tokens.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Verify(r.Context(), chi.URLParam(r, "token"))
	switch {
	case err == nil:
		slog.Debug("verification finished", "user_id", res.UserID, "replayed", res.Replayed)
		writeJSON(w, http.StatusOK, VerifyEnvelope{Success: true, Message: msgVerified})
	case errors.Is(err, domain.ErrInvalidOrUsedToken):
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Message: msgInvalidToken})
	case errors.Is(err, domain.ErrVerificationInProgress):
		writeJSON(w, http.StatusConflict, VerifyEnvelope{Message: msgInProgress})
	default:
		slog.Error("verification failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, VerifyEnvelope{Message: msgVerifyInternal})
	}
}
