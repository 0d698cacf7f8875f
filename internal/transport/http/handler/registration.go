package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medskill-verify/internal/application/registration"
	"github.com/medskill-verify/internal/domain"
)

const (
	msgRegistered       = "Registrasi berhasil! Silakan verifikasi lewat email."
	msgRequiredFields   = "Email dan password wajib diisi."
	msgRegisterInternal = "Terjadi kesalahan saat mendaftar."
)

// RegistrationHandler handles sign-up intake.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.svc.Register(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: msgRegistered})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, msgRequiredFields)
	case errors.Is(err, domain.ErrStore):
		slog.Warn("registration rejected by store", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("registration failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgRegisterInternal)
	}
}
