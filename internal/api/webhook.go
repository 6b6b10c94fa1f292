package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/billing"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/metrics"
)

const maxWebhookBodyBytes = 1 << 16

// stripeWebhook ingests subscription lifecycle events. The signature over
// the raw body is the only authentication on this route. A 400 tells the
// processor the delivery is permanently bad; a 500 asks it to retry.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Unable to read request body")
		return
	}

	// Processor CLI and dashboard replays carry their own API versions;
	// the signature check is the part that matters here.
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.stripeCfg.WebhookSecret(),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		logger.WithContext(r.Context()).Warn("Rejected webhook with bad signature", "error", err)
		metrics.RecordWebhookEvent("unknown", "bad_signature")
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid signature")
		return
	}

	ev, err := billing.Normalize(event)
	if err != nil {
		if errors.Is(err, billing.ErrMalformedEvent) {
			logger.WithContext(r.Context()).Warn("Rejected malformed webhook event", "type", string(event.Type), "error", err)
			metrics.RecordWebhookEvent(string(event.Type), "malformed")
			h.writeErrorResponse(w, r, http.StatusBadRequest, "Malformed event payload")
			return
		}
		logger.WithContext(r.Context()).Error("Failed to normalize webhook event", "type", string(event.Type), "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	if err := h.reconciler.Apply(r.Context(), ev); err != nil {
		logger.WithContext(r.Context()).Error("Failed to apply webhook event", "type", ev.Type, "error", err)
		metrics.RecordWebhookEvent(ev.Type, "error")
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	metrics.RecordWebhookEvent(ev.Type, "ok")
	h.writeJSONResponse(w, http.StatusOK, map[string]bool{"received": true})
}
