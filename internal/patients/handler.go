package patients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sheisgracious/mindwell/internal/httpx"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/transport"
	"github.com/sheisgracious/mindwell/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

// CreateMe registers a patient profile for the calling account.
func (h *Handler) CreateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("patient create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("patient create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	patient, err := h.service.Create(ctx, middleware.AccountIDFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			log.Warn("patient create: duplicate profile")
			transport.WriteError(w, http.StatusConflict, "account already has a patient profile", nil)
			return
		}
		log.Error("patient create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("patient create: ok", slog.String("patient_id", patient.ID))
	transport.WriteJSON(w, http.StatusCreated, patient)
}

// UpdateMe edits the calling account's own patient profile.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("patient update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("patient update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	current, err := h.service.GetByUser(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "patient profile not found", nil)
			return
		}
		log.Error("patient update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	updated, err := h.service.Update(ctx, current.ID, req)
	if err != nil {
		log.Error("patient update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("patient update: ok", slog.String("patient_id", updated.ID))
	transport.WriteJSON(w, http.StatusOK, updated)
}

// Me returns the calling account's own patient profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	patient, err := h.service.GetByUser(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "patient profile not found", nil)
			return
		}
		log.Error("patient me: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, patient)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
