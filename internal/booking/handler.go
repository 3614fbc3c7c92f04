package booking

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
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/schedule"
	"github.com/sheisgracious/mindwell/internal/transport"
	"github.com/sheisgracious/mindwell/internal/validation"
)

type Handler struct {
	service  *Service
	plans    *plans.Service
	resolver *identity.Resolver
	val      *validation.Validator
	log      *slog.Logger
}

func NewHandler(service *Service, planService *plans.Service, resolver *identity.Resolver, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		plans:    planService,
		resolver: resolver,
		val:      val,
		log:      log,
	}
}

// Create books a session on a plan for the calling patient.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	planID := strings.TrimSpace(chi.URLParam(r, "id"))
	if planID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing plan id", nil)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("session create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("session create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("session create: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if !ident.IsPatient() {
		log.Warn("session create: not a patient")
		transport.WriteError(w, http.StatusForbidden, "patient profile required", nil)
		return
	}

	session, err := h.service.CreateSession(ctx, ident.Patient.ID, planID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound):
			log.Warn("session create: plan not found", slog.String("plan_id", planID))
			transport.WriteError(w, http.StatusNotFound, "therapy plan not found", nil)
		case errors.Is(err, ErrNotPlanPatient):
			log.Warn("session create: not plan patient", slog.String("plan_id", planID))
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrPlanNotActive):
			log.Warn("session create: plan not active", slog.String("plan_id", planID))
			transport.WriteError(w, http.StatusUnprocessableEntity, "therapy plan is not active", nil)
		case errors.Is(err, ErrPastSlot):
			log.Warn("session create: past slot")
			transport.WriteError(w, http.StatusUnprocessableEntity, "cannot book a session in the past", nil)
		case errors.Is(err, ErrSlotUnavailable):
			log.Warn("session create: slot unavailable",
				slog.String("date", req.SessionDate),
				slog.String("time", req.SessionTime),
			)
			transport.WriteError(w, http.StatusConflict, "slot is not available", nil)
		case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidTime), errors.Is(err, schedule.ErrInvalidRange):
			log.Warn("session create: invalid slot", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			log.Error("session create: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("session create: ok",
		slog.String("session_id", session.ID),
		slog.String("plan_id", session.PlanID),
		slog.String("date", session.SessionDate),
		slog.String("time", session.SessionTime),
	)
	transport.WriteJSON(w, http.StatusCreated, session)
}

// Update records an outcome on one of the calling provider's sessions.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("session update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("session update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("session update: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if !ident.IsProvider() {
		log.Warn("session update: not a provider")
		transport.WriteError(w, http.StatusForbidden, "provider profile required", nil)
		return
	}

	session, err := h.service.UpdateSession(ctx, ident.Provider.ID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Warn("session update: not found", slog.String("session_id", id))
			transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		case errors.Is(err, ErrNotSessionProvider):
			log.Warn("session update: not session provider", slog.String("session_id", id))
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrSessionFinal):
			log.Warn("session update: session final", slog.String("session_id", id))
			transport.WriteError(w, http.StatusConflict, "session is already in a final state", nil)
		default:
			log.Error("session update: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("session update: ok",
		slog.String("session_id", session.ID),
		slog.String("status", session.Status),
	)
	transport.WriteJSON(w, http.StatusOK, session)
}

// Get returns one session to either of its parties.
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
		log.Error("session get: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	session, err := h.service.GetForParty(ctx, id, ident.ProviderID(), ident.PatientID())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		case errors.Is(err, ErrNotSessionProvider):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		default:
			log.Error("session get: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, session)
}

// ListForPlan returns a plan's sessions to either party of the plan.
func (h *Handler) ListForPlan(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	planID := strings.TrimSpace(chi.URLParam(r, "id"))
	if planID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing plan id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("session list: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if _, err := h.plans.GetForParty(ctx, planID, ident.ProviderID(), ident.PatientID()); err != nil {
		switch {
		case errors.Is(err, plans.ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "therapy plan not found", nil)
		case errors.Is(err, plans.ErrNotParty):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		default:
			log.Error("session list: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	items, err := h.service.ListByPlan(ctx, planID)
	if err != nil {
		log.Error("session list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// Slots lists a provider's bookable start times for one date. Public so
// patients can browse before committing.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	providerID := strings.TrimSpace(chi.URLParam(r, "id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if providerID == "" || date == "" {
		transport.WriteError(w, http.StatusBadRequest, "provider id and date are required", nil)
		return
	}

	duration, err := httpx.ParseDurationMinutes(r.URL.Query().Get("duration"), schedule.DefaultSessionMinutes)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid duration", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	result, err := h.service.FreeSlots(ctx, providerID, date, duration)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidDuration):
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			log.Error("slots: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, result)
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
