package api

import (
	"encoding/json"
	"net/http"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
)

type initiateUserRequest struct {
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type tokenOnlyRequest struct {
	IDToken string `json:"idToken"`
}

type sendWalletRequest struct {
	IDToken    string `json:"idToken"`
	ClientKeys string `json:"clientKeys"`
	UserInfo   string `json:"userInfo"`
}

// initiateUser provisions an account for a verified identity. Replays are
// acknowledged without creating a second record.
func (h *Handler) initiateUser(w http.ResponseWriter, r *http.Request) {
	var req initiateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, ok := h.resolveSubject(w, r, req.IDToken)
	if !ok {
		return
	}

	existing, err := h.store.GetBySubject(r.Context(), subject)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to check for existing account", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Had trouble initializing your account.")
		return
	}
	if existing != nil {
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"message": "User already initiated.",
		})
		return
	}

	acct, err := h.store.CreateAccount(r.Context(), req.Email, subject)
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to create account", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Had trouble initializing your account.")
		return
	}

	logger.WithContext(r.Context()).Info("Provisioned account", "account_id", acct.ID)
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Successfully created user",
	})
}

// hasDescriptor reports whether a wallet descriptor exists for the caller,
// returning it when present.
func (h *Handler) hasDescriptor(w http.ResponseWriter, r *http.Request) {
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

	if acct.WalletDescriptor == "" {
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"message": "false",
		})
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":    "true",
		"Descriptor": acct.WalletDescriptor,
	})
}

// hasPaidAndKeys reports the two gates the frontend checks before opening a
// vault: whether client keys are stored and whether the subscription is paid.
func (h *Handler) hasPaidAndKeys(w http.ResponseWriter, r *http.Request) {
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

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"keys":    acct.ClientKeys != "",
		"hasPaid": acct.HasPaid,
	})
}

// sendWallet stores the caller's encrypted key material and profile blob,
// which queues the vault for creation.
func (h *Handler) sendWallet(w http.ResponseWriter, r *http.Request) {
	var req sendWalletRequest
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

	if err := h.store.UpdateVault(r.Context(), subject, req.ClientKeys, req.UserInfo); err != nil {
		logger.WithContext(r.Context()).Error("Failed to store vault material", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully initiated the vault create process, your vault should be ready shortly",
	})
}
