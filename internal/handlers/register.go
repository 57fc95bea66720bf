package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/eldtechnologies/bazaar/internal/crypto"
	"github.com/eldtechnologies/bazaar/internal/metrics"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// RegisterResponse represents the registration response. Token is only set
// for new registrations; it is shown exactly once and never recoverable.
type RegisterResponse struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	Token         string `json:"token,omitempty"`
}

// Register handles wallet-based user registration. Registration is
// idempotent on the wallet address: a known wallet returns its existing
// identity without issuing a new token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.WalletAddress == "" {
		h.Error(w, http.StatusBadRequest, "wallet_address is required")
		return
	}
	if !walletRegex.MatchString(req.WalletAddress) {
		h.Error(w, http.StatusBadRequest, "invalid wallet_address: must be 0x followed by 40 hex characters")
		return
	}

	existing, err := h.db.GetUserByWallet(r.Context(), req.WalletAddress)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.OK(w, http.StatusOK, RegisterResponse{
			ID:            existing.ID.String(),
			WalletAddress: existing.WalletAddress,
		})
		return
	}

	secret := crypto.NewSecret()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to derive token")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.WalletAddress, string(hash))
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	metrics.UsersRegistered.Inc()

	h.OK(w, http.StatusCreated, RegisterResponse{
		ID:            user.ID.String(),
		WalletAddress: user.WalletAddress,
		Token:         fmt.Sprintf("%s.%s", user.ID.String(), secret),
	})
}
