package handlers

import (
	"net/http"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	TotalStores      int64 `json:"total_stores"`
	TotalCollections int64 `json:"total_collections"`
	TotalProducts    int64 `json:"total_products"`
	LiveRooms        int   `json:"live_rooms"`
	LiveSubscribers  int   `json:"live_subscribers"`
}

// Stats returns platform statistics for the landing page.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.db.CountUsers(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	totalStores, err := h.db.CountStores(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count stores")
		return
	}

	totalCollections, err := h.db.CountCollections(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count collections")
		return
	}

	totalProducts, err := h.db.CountProducts(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count products")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:       totalUsers,
		TotalStores:      totalStores,
		TotalCollections: totalCollections,
		TotalProducts:    totalProducts,
		LiveRooms:        h.hub.Rooms(),
		LiveSubscribers:  h.hub.Subscribers(),
	})
}
