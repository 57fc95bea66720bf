package handlers

import (
	"net/http"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
	"github.com/eldtechnologies/bazaar/internal/service"
)

// GetStoresPublic lists all stores (public).
func (h *Handler) GetStoresPublic(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStoresPublic(r.Context())
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, stores)
}

// GetStorePublic retrieves one store (public).
func (h *Handler) GetStorePublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	st, err := h.catalog.GetStorePublic(r.Context(), id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, st)
}

// GetMyStores lists the caller's stores.
func (h *Handler) GetMyStores(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	stores, err := h.catalog.ListStoresMine(r.Context(), user)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, stores)
}

// GetStore retrieves one of the caller's stores.
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	st, err := h.catalog.GetStoreOwned(r.Context(), user, id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, st)
}

// CreateStore creates a store owned by the caller.
func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	form, err := parseResourceForm(r)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.catalog.CreateStore(r.Context(), user, service.StoreInput{
		Name:             form.Str("name"),
		ShortDescription: form.Str("short_description"),
		Description:      form.Str("description"),
		Image:            form.image,
		ImageName:        form.name,
	})
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusCreated, st)
}

// UpdateStore applies a partial update to one of the caller's stores.
func (h *Handler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	form, err := parseResourceForm(r)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.catalog.UpdateStore(r.Context(), user, id, service.StoreInput{
		Name:             form.Str("name"),
		ShortDescription: form.Str("short_description"),
		Description:      form.Str("description"),
		Image:            form.image,
		ImageName:        form.name,
	})
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, st)
}

// DeleteStore deletes one of the caller's stores.
func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	if err := h.catalog.DeleteStore(r.Context(), user, id); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.Message(w, http.StatusOK, "store deleted successfully")
}
