package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
	"github.com/eldtechnologies/bazaar/internal/service"
)

func (h *Handler) collectionInput(r *http.Request) (service.CollectionInput, bool) {
	form, err := parseResourceForm(r)
	if err != nil {
		return service.CollectionInput{}, false
	}
	storeID, err := form.UUID("store_id")
	if err != nil {
		return service.CollectionInput{}, false
	}
	return service.CollectionInput{
		StoreID:          storeID,
		Name:             form.Str("name"),
		ShortDescription: form.Str("short_description"),
		Description:      form.Str("description"),
		Image:            form.image,
		ImageName:        form.name,
	}, true
}

// GetCollectionsPublic lists all collections (public).
func (h *Handler) GetCollectionsPublic(w http.ResponseWriter, r *http.Request) {
	cols, err := h.catalog.ListCollectionsPublic(r.Context(), nil)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, cols)
}

// GetCollectionsByStorePublic lists a store's collections (public).
func (h *Handler) GetCollectionsByStorePublic(w http.ResponseWriter, r *http.Request) {
	storeID, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	cols, err := h.catalog.ListCollectionsPublic(r.Context(), &storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, cols)
}

// GetCollectionPublic retrieves one collection (public).
func (h *Handler) GetCollectionPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "collectionID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid collection ID format")
		return
	}

	col, err := h.catalog.GetCollectionPublic(r.Context(), id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, col)
}

// GetMyCollections lists the caller's collections, optionally filtered by
// store through the store query parameter.
func (h *Handler) GetMyCollections(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var storeID *uuid.UUID
	if s := r.URL.Query().Get("store"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid store ID format")
			return
		}
		storeID = &id
	}

	cols, err := h.catalog.ListCollectionsMine(r.Context(), user, storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, cols)
}

// GetMyCollectionsByStore lists the caller's collections in one store.
func (h *Handler) GetMyCollectionsByStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	storeID, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	cols, err := h.catalog.ListCollectionsMine(r.Context(), user, &storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, cols)
}

// GetCollection retrieves one of the caller's collections.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "collectionID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid collection ID format")
		return
	}

	col, err := h.catalog.GetCollectionOwned(r.Context(), user, id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, col)
}

// CreateCollection creates a collection in one of the caller's stores.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	in, ok := h.collectionInput(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	col, err := h.catalog.CreateCollection(r.Context(), user, in)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusCreated, col)
}

// UpdateCollection applies a partial update to one of the caller's
// collections.
func (h *Handler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "collectionID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid collection ID format")
		return
	}

	in, ok := h.collectionInput(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	col, err := h.catalog.UpdateCollection(r.Context(), user, id, in)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, col)
}

// DeleteCollection deletes one of the caller's collections.
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "collectionID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid collection ID format")
		return
	}

	if err := h.catalog.DeleteCollection(r.Context(), user, id); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.Message(w, http.StatusOK, "collection deleted successfully")
}
