package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/halalchat/backend/internal/apperror"
)

// ReferralProcessor records a referral and grants credits.
type ReferralProcessor interface {
	Process(ctx context.Context, referrerID, referredID string) (bool, error)
}

type ReferralHandler struct {
	referrals ReferralProcessor
	logger    *slog.Logger
}

func NewReferralHandler(referrals ReferralProcessor, logger *slog.Logger) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, logger: logger}
}

type referralRequest struct {
	ReferrerID string `json:"referrerId"`
	ReferredID string `json:"referredId"`
}

// HandleReferral records a referral.
//
// POST /api/handle-referral
// Body: {referrerId, referredId}
// 200: {"success": true}, or {"message": "Referral already exists"} for the
// idempotent duplicate.
func (h *ReferralHandler) HandleReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	recorded, err := h.referrals.Process(r.Context(), req.ReferrerID, req.ReferredID)
	if err != nil {
		writeError(w, err)
		return
	}

	if !recorded {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Referral already exists"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
