package api

import (
	"encoding/json"
	"net/http"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
)

type createCheckoutRequest struct {
	UserEmail string `json:"userEmail"`
	PriceID   string `json:"priceId"`
}

// setPayment marks the caller's account as paid. Kept for frontend
// compatibility; the webhook reconciler is the authoritative writer and
// will overwrite this on the next subscription event.
func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	var req tokenOnlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, ok := h.resolveSubject(w, r, req.IDToken)
	if !ok {
		return
	}
	if _, ok := h.loadAccount(w, r, subject); !ok {
		return
	}

	if err := h.store.SetHasPaid(r.Context(), subject, true); err != nil {
		logger.WithContext(r.Context()).Error("Failed to set payment flag", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Payment Successful",
	})
}

// createCheckout opens a processor checkout session for a priced plan. The
// account is located by email because the frontend calls this from the
// public pricing page before a vault session exists.
func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PriceID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Price ID is required")
		return
	}

	acct, err := h.store.GetByEmail(r.Context(), req.UserEmail)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to look up account by email", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if acct == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "User not found")
		return
	}
	if acct.SubscriptionStatus == models.StatusActive {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "User already subscribed!")
		return
	}

	successURL, cancelURL := h.checkoutReturnURLs(r)
	sessionID, err := h.gateway.CreateCheckoutSession(r.Context(), acct.ID, acct.Email, req.PriceID, successURL, cancelURL)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to create checkout session", "error", err, "account_id", acct.ID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	logger.WithContext(r.Context()).Info("Created checkout session", "account_id", acct.ID, "session_id", sessionID)
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Checkout session created successfully",
		"sessionId": sessionID,
	})
}

// checkoutReturnURLs derives the post-checkout redirect targets from the
// calling origin, falling back to the configured defaults.
func (h *Handler) checkoutReturnURLs(r *http.Request) (string, string) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return h.stripeCfg.SuccessURL, h.stripeCfg.CancelURL
	}
	return origin + "/vault?session_id={CHECKOUT_SESSION_ID}", origin + "/vault"
}

// getCheckoutDetails fetches a finished checkout session for the
// confirmation page.
func (h *Handler) getCheckoutDetails(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Session ID is required")
		return
	}

	details, err := h.gateway.GetCheckoutDetails(r.Context(), sessionID)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to fetch checkout details", "error", err, "session_id", sessionID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch checkout details")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Checkout details fetched!",
		"result":  details,
	})
}

// cancelSubscription cancels the caller's subscription at the processor.
// Local state is not touched here; the deletion webhook that follows is
// what flips the account to cancelled.
func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req tokenOnlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, ok := h.resolveSubject(w, r, req.IDToken)
	if !ok {
		return
	}
	acct, ok := h.loadAccount(w, r, subject)
	if !ok {
		return
	}

	if acct.SubscriptionID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "No active subscription found")
		return
	}

	status, err := h.gateway.SubscriptionStatus(r.Context(), acct.SubscriptionID)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to look up subscription", "error", err, "subscription_id", acct.SubscriptionID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Error canceling subscription")
		return
	}
	if status != "active" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Subscription is not active")
		return
	}

	if err := h.gateway.CancelSubscription(r.Context(), acct.SubscriptionID); err != nil {
		logger.WithContext(r.Context()).Error("Failed to cancel subscription", "error", err, "subscription_id", acct.SubscriptionID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Error canceling subscription")
		return
	}

	logger.WithContext(r.Context()).Info("Cancelled subscription", "account_id", acct.ID, "subscription_id", acct.SubscriptionID)
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription cancelled successfully",
	})
}
