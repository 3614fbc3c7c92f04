package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sheisgracious/mindwell/internal/identity"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/transport"
)

type Handler struct {
	service  *Service
	resolver *identity.Resolver
	log      *slog.Logger
}

func NewHandler(service *Service, resolver *identity.Resolver, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		log:      log,
	}
}

// Get returns the caller's dashboard. Accounts holding both roles get the
// patient view unless ?as=provider is set.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ident, err := h.resolver.Resolve(ctx, middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		log.Error("dashboard: identity error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	asProvider := r.URL.Query().Get("as") == "provider"
	switch {
	case ident.IsPatient() && !asProvider:
		result, err := h.service.ForPatient(ctx, ident.AccountID, *ident.Patient)
		if err != nil {
			log.Error("dashboard: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
		transport.WriteJSON(w, http.StatusOK, result)
	case ident.IsProvider():
		result, err := h.service.ForProvider(ctx, ident.AccountID, *ident.Provider)
		if err != nil {
			log.Error("dashboard: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
		transport.WriteJSON(w, http.StatusOK, result)
	default:
		log.Warn("dashboard: no profile")
		transport.WriteError(w, http.StatusForbidden, "profile required", nil)
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
