package api

import (
	"encoding/json"
	"net/http"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
)

// isPrivate reports the privacy flag derived from the caller's stored
// profile blob.
func (h *Handler) isPrivate(w http.ResponseWriter, r *http.Request) {
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
		"isPrivate": acct.IsPrivate(),
	})
}

// accountDelete flags the caller's account for deletion. The flag is a
// request, not the deletion itself; a background process owns the actual
// teardown.
func (h *Handler) accountDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.MarkForDeletion(r.Context(), subject); err != nil {
		logger.WithContext(r.Context()).Error("Failed to flag account for deletion", "error", err, "account_id", acct.ID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.WithContext(r.Context()).Info("Account flagged for deletion", "account_id", acct.ID)
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully initiated the deletion process.",
	})
}
