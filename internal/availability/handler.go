package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sheisgracious/mindwell/internal/httpx"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/transport"
	"github.com/sheisgracious/mindwell/internal/validation"
)

// ProviderResolver is the slice of the identity resolver availability needs,
// declared here with plain types so availability does not import identity
// (which imports providers, which imports availability). It returns the
// provider profile id for the account, or "" when the account has none.
type ProviderResolver interface {
	ProviderIDFor(ctx context.Context, accountID string) (string, error)
}

type Handler struct {
	service  *Service
	resolver ProviderResolver
	val      *validation.Validator
	log      *slog.Logger
}

func NewHandler(service *Service, resolver ProviderResolver, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		val:      val,
		log:      log,
	}
}

// Create adds a recurring weekly window for the calling provider.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("availability create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("availability create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	providerID, err := h.resolver.ProviderIDFor(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("availability create: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if providerID == "" {
		log.Warn("availability create: not a provider")
		transport.WriteError(w, http.StatusForbidden, "provider profile required", nil)
		return
	}

	item, err := h.service.Add(ctx, providerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidDay):
			log.Warn("availability create: invalid window", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			log.Error("availability create: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("availability create: ok",
		slog.String("availability_id", item.ID),
		slog.String("provider_id", item.ProviderID),
		slog.String("day", item.DayOfWeek),
	)
	transport.WriteJSON(w, http.StatusCreated, item)
}

// List returns every window the calling provider manages, closed ones
// included, so the schedule can be edited as a whole.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	providerID, err := h.resolver.ProviderIDFor(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("availability list: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if providerID == "" {
		log.Warn("availability list: not a provider")
		transport.WriteError(w, http.StatusForbidden, "provider profile required", nil)
		return
	}

	items, err := h.service.ListOwn(ctx, providerID)
	if err != nil {
		log.Error("availability list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("availability list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// Delete removes one of the calling provider's own windows.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("availability delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	providerID, err := h.resolver.ProviderIDFor(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("availability delete: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if providerID == "" {
		log.Warn("availability delete: not a provider")
		transport.WriteError(w, http.StatusForbidden, "provider profile required", nil)
		return
	}

	if err := h.service.Remove(ctx, providerID, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Warn("availability delete: not found", slog.String("availability_id", id))
			transport.WriteError(w, http.StatusNotFound, "availability not found", nil)
		case errors.Is(err, ErrNotOwner):
			log.Warn("availability delete: not owner", slog.String("availability_id", id))
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		default:
			log.Error("availability delete: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("availability delete: ok", slog.String("availability_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
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
