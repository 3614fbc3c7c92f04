package providers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sheisgracious/mindwell/internal/availability"
	"github.com/sheisgracious/mindwell/internal/cache"
	"github.com/sheisgracious/mindwell/internal/httpx"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/plantypes"
	"github.com/sheisgracious/mindwell/internal/transport"
	"github.com/sheisgracious/mindwell/internal/validation"
)

const listCachePrefix = "providers:list:"

type Handler struct {
	service      *Service
	availability *availability.Service
	planTypes    *plantypes.Service
	cache        cache.Cache
	cacheTTL     time.Duration
	val          *validation.Validator
	log          *slog.Logger
}

func NewHandler(service *Service, avail *availability.Service, planTypes *plantypes.Service, c cache.Cache, cacheTTL time.Duration, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		availability: avail,
		planTypes:    planTypes,
		cache:        c,
		cacheTTL:     cacheTTL,
		val:          val,
		log:          log,
	}
}

// List is the public provider directory, filterable by specialization,
// language and free-text search. Results are cached per filter combination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	filter := ListFilter{
		Specialization: r.URL.Query().Get("specialization"),
		Language:       r.URL.Query().Get("language"),
		Search:         r.URL.Query().Get("q"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	key := listCachePrefix + filter.Specialization + ":" + filter.Language + ":" + filter.Search
	if raw, ok, err := h.cache.Get(ctx, key); err == nil && ok {
		transport.WriteCachedJSON(w, http.StatusOK, raw)
		return
	}

	items, err := h.service.List(ctx, filter)
	if err != nil {
		log.Error("provider list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	payload := map[string]any{"items": items, "count": len(items)}
	if raw, err := json.Marshal(payload); err == nil {
		_ = h.cache.Set(ctx, key, raw, h.cacheTTL)
	}
	transport.WriteJSON(w, http.StatusOK, payload)
}

// Detail is the public provider page: profile, weekly schedule and the plan
// types the provider offers.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	provider, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "provider not found", nil)
			return
		}
		log.Error("provider detail: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	schedule, err := h.availability.ByDay(ctx, id)
	if err != nil {
		log.Error("provider detail: schedule error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	offerings, err := h.planTypes.ListForProvider(ctx, id)
	if err != nil {
		log.Error("provider detail: plan types error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"provider":     provider,
		"availability": schedule,
		"plan_types":   offerings,
	})
}

// CreateMe registers a provider profile for the calling account.
func (h *Handler) CreateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("provider create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("provider create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	provider, err := h.service.Create(ctx, middleware.AccountIDFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			log.Warn("provider create: duplicate profile")
			transport.WriteError(w, http.StatusConflict, "account already has a provider profile", nil)
			return
		}
		log.Error("provider create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = h.cache.DeletePrefix(ctx, listCachePrefix)
	log.Info("provider create: ok", slog.String("provider_id", provider.ID))
	transport.WriteJSON(w, http.StatusCreated, provider)
}

// UpdateMe edits the calling account's own provider profile.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("provider update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("provider update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	current, err := h.service.GetByUser(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "provider profile not found", nil)
			return
		}
		log.Error("provider update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	updated, err := h.service.Update(ctx, current.ID, req)
	if err != nil {
		log.Error("provider update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = h.cache.DeletePrefix(ctx, listCachePrefix)
	log.Info("provider update: ok", slog.String("provider_id", updated.ID))
	transport.WriteJSON(w, http.StatusOK, updated)
}

// Me returns the calling account's own provider profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	provider, err := h.service.GetByUser(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "provider profile not found", nil)
			return
		}
		log.Error("provider me: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, provider)
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
