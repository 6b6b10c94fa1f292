package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BiggBoiLeo/Rothbard-Backend/config"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/billing"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/identity"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/store"
)

// Handler handles HTTP requests for the API
type Handler struct {
	store      store.Store
	verifier   identity.Verifier
	gateway    billing.Gateway
	reconciler *billing.Reconciler
	stripeCfg  config.StripeConfig
	version    string
	buildTime  string
	gitCommit  string
	startTime  time.Time
}

// NewHandler creates a new API handler
func NewHandler(st store.Store, verifier identity.Verifier, gateway billing.Gateway, stripeCfg config.StripeConfig, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:      st,
		verifier:   verifier,
		gateway:    gateway,
		reconciler: billing.NewReconciler(st),
		stripeCfg:  stripeCfg,
		version:    version,
		buildTime:  buildTime,
		gitCommit:  gitCommit,
		startTime:  time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	// Health check endpoints
	r.Get("/health", h.healthHandler)
	r.Get("/health/ready", h.readinessHandler)
	r.Get("/health/live", h.livenessHandler)
	r.Get("/version", h.versionHandler)

	// Provisioning and query
	r.Post("/initiateUser", h.initiateUser)
	r.Post("/hasDescriptor", h.hasDescriptor)
	r.Post("/hasPaidandKeys", h.hasPaidAndKeys)
	r.Post("/sendWallet", h.sendWallet)

	// Account lifecycle
	r.Post("/isPrivate", h.isPrivate)
	r.Post("/accountDelete", h.accountDelete)

	// Billing
	r.Post("/setPayment", h.setPayment)
	r.Post("/create-checkout", h.createCheckout)
	r.Get("/checkout", h.getCheckoutDetails)
	r.Post("/cancel-subscription", h.cancelSubscription)

	// Webhook ingestion; authenticated by signature over the raw body,
	// not by ID token
	r.Post("/webhook", h.stripeWebhook)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
	}

	statusCode := http.StatusOK

	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// resolveSubject verifies the caller's ID token and returns the identity
// subject. A missing or forged token is a 400; an expired or revoked token
// is a 401 so clients know a refreshed token is worth retrying with.
func (h *Handler) resolveSubject(w http.ResponseWriter, r *http.Request, idToken string) (string, bool) {
	if idToken == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid or missing ID token")
		return "", false
	}

	subject, err := h.verifier.Verify(r.Context(), idToken)
	if err != nil {
		if errors.Is(err, identity.ErrExpiredToken) {
			h.writeErrorResponse(w, r, http.StatusUnauthorized, "Expired ID token")
			return "", false
		}
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid ID token")
		return "", false
	}

	return subject, true
}

// loadAccount fetches the account for a verified subject; absence is a 404
func (h *Handler) loadAccount(w http.ResponseWriter, r *http.Request, subjectID string) (*models.Account, bool) {
	acct, err := h.store.GetBySubject(r.Context(), subjectID)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to load account", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if acct == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "User not found")
		return nil, false
	}
	return acct, true
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes the error shape the vault frontends expect
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	h.writeJSONResponse(w, statusCode, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
