// Package webhook exposes the sync trigger endpoint: signature-verified
// GitHub deliveries resolved into sync triggers, plus a manual trigger
// route. Signature verification happens before the payload is parsed.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/internal/syncer"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

// maxBodyBytes bounds webhook payload reads.
const maxBodyBytes = 10 << 20

// Runner executes one sync invocation; the orchestrator satisfies this.
type Runner interface {
	Run(ctx context.Context, trigger syncer.Trigger) (*syncer.Summary, error)
}

// HandlerConfig carries the endpoint's collaborators.
type HandlerConfig struct {
	// Secret signs deliveries. An empty secret disables the endpoint with a
	// 500 rather than accepting unsigned payloads.
	Secret string
	// Tenant is the path segment deliveries must address.
	Tenant string
	Runner Runner
	Logger interfaces.Logger
}

// Handler is the webhook HTTP surface.
type Handler struct {
	secret string
	tenant string
	runner Runner
	logger interfaces.Logger
}

// NewHandler builds the webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Handler{
		secret: cfg.Secret,
		tenant: cfg.Tenant,
		runner: cfg.Runner,
		logger: logger,
	}
}

// Routes returns the webhook router: the signed delivery endpoint and the
// unsigned manual trigger.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/hooks/{tenant}", h.HandleDelivery)
	r.Post("/sync", h.HandleManual)
	return r
}

type errResponse struct {
	Error string `json:"error"`
}

type ackResponse struct {
	OK bool `json:"ok"`
}

// HandleDelivery processes one GitHub webhook delivery.
func (h *Handler) HandleDelivery(w http.ResponseWriter, r *http.Request) {
	if tenant := chi.URLParam(r, "tenant"); tenant != h.tenant {
		h.logger.Warn("webhook.tenant_mismatch", "tenant", tenant)
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "unknown tenant"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "unreadable body"})
		return
	}

	if err := VerifySignature(h.secret, body, r.Header.Get("X-Hub-Signature-256")); err != nil {
		if errors.Is(err, content.ErrSecretRequired) {
			h.logger.Error("webhook.secret_missing")
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "webhook secret not configured"})
			return
		}
		h.logger.Warn("webhook.signature_rejected", "event", r.Header.Get("X-GitHub-Event"))
		writeJSON(w, http.StatusUnauthorized, errResponse{Error: "signature verification failed"})
		return
	}

	eventName := r.Header.Get("X-GitHub-Event")
	trigger, actionable, err := ResolveTrigger(eventName, body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "malformed payload"})
		return
	}
	if !actionable {
		// Event types sync does not react to are acknowledged so the
		// sender does not retry or disable the hook.
		h.logger.Info("webhook.ignored", "event", eventName)
		writeJSON(w, http.StatusOK, ackResponse{OK: true})
		return
	}

	h.runTrigger(w, r, trigger)
}

// HandleManual starts a full rescan, bypassing change detection filters.
func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	h.runTrigger(w, r, syncer.Trigger{Kind: syncer.TriggerManual})
}

func (h *Handler) runTrigger(w http.ResponseWriter, r *http.Request, trigger syncer.Trigger) {
	summary, err := h.runner.Run(r.Context(), trigger)
	if err != nil {
		h.logger.Error("webhook.sync_failed", "kind", trigger.Kind, "error", err)
		status := http.StatusInternalServerError
		if content.IsStoreUnavailable(err) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errResponse{Error: "sync failed"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
