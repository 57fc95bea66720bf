package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
	"github.com/eldtechnologies/bazaar/internal/service"
)

func (h *Handler) productInput(r *http.Request) (service.ProductInput, bool) {
	form, err := parseResourceForm(r)
	if err != nil {
		return service.ProductInput{}, false
	}
	storeID, err := form.UUID("store_id")
	if err != nil {
		return service.ProductInput{}, false
	}
	collectionID, err := form.UUID("collection_id")
	if err != nil {
		return service.ProductInput{}, false
	}
	price, err := form.Int64("price")
	if err != nil {
		return service.ProductInput{}, false
	}
	return service.ProductInput{
		StoreID:          storeID,
		CollectionID:     collectionID,
		Name:             form.Str("name"),
		ShortDescription: form.Str("short_description"),
		Description:      form.Str("description"),
		Price:            price,
		Image:            form.image,
		ImageName:        form.name,
	}, true
}

// GetProductsPublic lists all products (public).
func (h *Handler) GetProductsPublic(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProductsPublic(r.Context(), nil)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, products)
}

// GetProductsByStorePublic lists a store's products (public).
func (h *Handler) GetProductsByStorePublic(w http.ResponseWriter, r *http.Request) {
	storeID, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	products, err := h.catalog.ListProductsPublic(r.Context(), &storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, products)
}

// GetProductPublic retrieves one product (public).
func (h *Handler) GetProductPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "productID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	p, err := h.catalog.GetProductPublic(r.Context(), id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, p)
}

// GetMyProducts lists the caller's products, optionally filtered by store
// through the store query parameter.
func (h *Handler) GetMyProducts(w http.ResponseWriter, r *http.Request) {
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

	products, err := h.catalog.ListProductsMine(r.Context(), user, storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, products)
}

// GetMyProductsByStore lists the caller's products in one store.
func (h *Handler) GetMyProductsByStore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	storeID, ok := pathUUID(r, "storeID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid store ID format")
		return
	}

	products, err := h.catalog.ListProductsMine(r.Context(), user, &storeID)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, products)
}

// GetProduct retrieves one of the caller's products.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "productID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	p, err := h.catalog.GetProductOwned(r.Context(), user, id)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, p)
}

// CreateProduct creates a product in one of the caller's stores.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	in, ok := h.productInput(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), user, in)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusCreated, p)
}

// UpdateProduct applies a partial update to one of the caller's products.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "productID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	in, ok := h.productInput(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), user, id, in)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	h.OK(w, http.StatusOK, p)
}

// DeleteProduct deletes one of the caller's products.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, ok := pathUUID(r, "productID")
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), user, id); err != nil {
		h.ServiceError(w, err)
		return
	}
	h.Message(w, http.StatusOK, "product deleted successfully")
}
