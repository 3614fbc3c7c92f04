package plans

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sheisgracious/mindwell/internal/httpx"
	"github.com/sheisgracious/mindwell/internal/identity"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/plantypes"
	"github.com/sheisgracious/mindwell/internal/transport"
	"github.com/sheisgracious/mindwell/internal/validation"
)

type Handler struct {
	service  *Service
	resolver *identity.Resolver
	val      *validation.Validator
	log      *slog.Logger
}

func NewHandler(service *Service, resolver *identity.Resolver, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		val:      val,
		log:      log,
	}
}

// Create opens a new therapy plan for the calling patient.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("plan create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("plan create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("plan create: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if !ident.IsPatient() {
		log.Warn("plan create: not a patient")
		transport.WriteError(w, http.StatusForbidden, "patient profile required", nil)
		return
	}

	plan, err := h.service.Create(ctx, ident.Patient.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrProviderNotFound), errors.Is(err, plantypes.ErrNotFound):
			log.Warn("plan create: reference not found", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, ErrPlanTypeInactive), errors.Is(err, ErrPlanTypeNotSupported):
			log.Warn("plan create: rejected", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			log.Error("plan create: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("plan create: ok",
		slog.String("plan_id", plan.ID),
		slog.String("provider_id", plan.ProviderID),
	)
	transport.WriteJSON(w, http.StatusCreated, plan)
}

// Get returns one plan to either of its parties.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("plan get: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	plan, err := h.service.GetForParty(ctx, id, ident.ProviderID(), ident.PatientID())
	if err != nil {
		h.writeServiceError(w, log, "plan get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, plan)
}

// List returns the caller's plans: a provider sees plans where they treat,
// a patient sees their own. Accounts with both roles get the patient view
// unless ?as=provider is set.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("plan list: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	filter := ListFilter{Status: strings.TrimSpace(r.URL.Query().Get("status"))}
	asProvider := r.URL.Query().Get("as") == "provider"

	var items []TherapyPlan
	switch {
	case ident.IsPatient() && !asProvider:
		items, err = h.service.ListByPatient(ctx, ident.Patient.ID, filter)
	case ident.IsProvider():
		items, err = h.service.ListByProvider(ctx, ident.Provider.ID, filter)
	default:
		log.Warn("plan list: no profile")
		transport.WriteError(w, http.StatusForbidden, "profile required", nil)
		return
	}
	if err != nil {
		log.Error("plan list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// UpdateStatus moves a plan between active, paused, completed and cancelled.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("plan status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("plan status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("plan status: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	plan, err := h.service.UpdateStatus(ctx, id, ident.ProviderID(), ident.PatientID(), req.Status)
	if err != nil {
		h.writeServiceError(w, log, "plan status", err)
		return
	}

	log.Info("plan status: ok", slog.String("plan_id", plan.ID), slog.String("status", plan.Status))
	transport.WriteJSON(w, http.StatusOK, plan)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "therapy plan not found", nil)
	case errors.Is(err, ErrNotParty):
		log.Warn(op + ": not a party")
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
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
