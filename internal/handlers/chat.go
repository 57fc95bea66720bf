package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
)

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
}

// SendMessage persists a chat message about a product and fans it out to
// live subscribers of the product's room.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.chat.Send(r.Context(), user, req.ProductID, req.Message)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusCreated, msg)
}

// GetMessages returns the caller's conversation history for a product,
// oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	msgs, err := h.chat.History(r.Context(), user, productID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, msgs)
}
