package messaging

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

// Send posts a message on a plan the caller is a party to.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	planID := strings.TrimSpace(chi.URLParam(r, "id"))
	if planID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing plan id", nil)
		return
	}

	var req SendRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("message send: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("message send: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("message send: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	message, err := h.service.Send(ctx, ident.AccountID, ident.ProviderID(), ident.PatientID(), planID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound):
			transport.WriteError(w, http.StatusNotFound, "therapy plan not found", nil)
		case errors.Is(err, ErrNotParticipant):
			log.Warn("message send: not a participant", slog.String("plan_id", planID))
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrEmptyBody):
			transport.WriteError(w, http.StatusBadRequest, "message body is empty", nil)
		default:
			log.Error("message send: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("message send: ok",
		slog.String("message_id", message.ID),
		slog.String("plan_id", message.PlanID),
	)
	transport.WriteJSON(w, http.StatusCreated, message)
}

// Conversation returns a plan's messages to a party and marks the caller's
// incoming messages read.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
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
		log.Error("conversation: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	messages, err := h.service.Conversation(ctx, ident.AccountID, ident.ProviderID(), ident.PatientID(), planID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound):
			transport.WriteError(w, http.StatusNotFound, "therapy plan not found", nil)
		case errors.Is(err, ErrNotParticipant):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		default:
			log.Error("conversation: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"items": messages, "count": len(messages)})
}

// Threads returns the caller's inbox: one entry per plan, newest first.
func (h *Handler) Threads(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	threads, err := h.service.Threads(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("threads: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	total := len(threads)
	if offset >= int64(total) {
		threads = []Thread{}
	} else {
		threads = threads[offset:]
		if int64(len(threads)) > limit {
			threads = threads[:limit]
		}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"items": threads, "count": len(threads), "total": total})
}

// Unread returns the caller's unread message count.
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	count, err := h.service.Unread(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("unread: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]int64{"unread": count})
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
