package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/assets"
	"github.com/eldtechnologies/bazaar/internal/metrics"
	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/store"
)

// Catalog implements the ownership-scoped resource operations over the
// catalog store. Mutations authorize against the loaded resource's owner,
// upload any attached image before the record is written, and hand replaced
// or orphaned image URLs to the releaser.
type Catalog struct {
	db       store.DataStore
	uploads  assets.Uploader
	releaser assets.Releaser
	logger   zerolog.Logger
}

// NewCatalog creates a catalog service.
func NewCatalog(db store.DataStore, uploads assets.Uploader, releaser assets.Releaser, logger zerolog.Logger) *Catalog {
	return &Catalog{db: db, uploads: uploads, releaser: releaser, logger: logger}
}

// StoreInput is a partial patch for store fields. Nil fields are not
// supplied; empty supplied strings are ignored rather than clearing the
// field (there is no clear operation).
type StoreInput struct {
	Name             *string
	ShortDescription *string
	Description      *string
	Image            []byte
	ImageName        string
}

// CollectionInput is a partial patch for collection fields.
type CollectionInput struct {
	StoreID          *uuid.UUID
	Name             *string
	ShortDescription *string
	Description      *string
	Image            []byte
	ImageName        string
}

// ProductInput is a partial patch for product fields.
type ProductInput struct {
	StoreID          *uuid.UUID
	CollectionID     *uuid.UUID
	Name             *string
	ShortDescription *string
	Description      *string
	Price            *int64
	Image            []byte
	ImageName        string
}

func present(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func applyString(dst *string, src *string) {
	if present(src) {
		*dst = strings.TrimSpace(*src)
	}
}

// uploadImage stores the attached file and returns its URL. A provider
// failure aborts the enclosing mutation before any catalog write.
func (c *Catalog) uploadImage(ctx context.Context, data []byte, name string) (string, error) {
	url, err := c.uploads.Upload(ctx, data, name)
	if err != nil {
		metrics.AssetUploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	metrics.AssetUploads.WithLabelValues("ok").Inc()
	return url, nil
}

// checkStoreOwnership loads a referenced parent store and verifies it belongs
// to owner.
func (c *Catalog) checkStoreOwnership(ctx context.Context, storeID, owner uuid.UUID) (*models.Store, error) {
	st, err := c.db.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: store not found", ErrNotFound)
	}
	if st.OwnerID != owner {
		return nil, fmt.Errorf("%w: store does not belong to caller", ErrForbidden)
	}
	return st, nil
}

// checkCollectionOwnership loads a referenced collection and verifies it
// belongs to owner.
func (c *Catalog) checkCollectionOwnership(ctx context.Context, collectionID, owner uuid.UUID) (*models.Collection, error) {
	col, err := c.db.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, fmt.Errorf("%w: collection not found", ErrNotFound)
	}
	if col.OwnerID != owner {
		return nil, fmt.Errorf("%w: collection does not belong to caller", ErrForbidden)
	}
	return col, nil
}

// CreateStore creates a store owned by owner.
func (c *Catalog) CreateStore(ctx context.Context, owner *models.User, in StoreInput) (*models.Store, error) {
	if !present(in.Name) || !present(in.ShortDescription) {
		return nil, fmt.Errorf("%w: name and short description are required", ErrInvalidArgument)
	}

	st := &models.Store{
		OwnerID:          owner.ID,
		Name:             strVal(in.Name),
		ShortDescription: strVal(in.ShortDescription),
		Description:      strVal(in.Description),
	}

	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		st.ImageURL = url
	}

	created, err := c.db.CreateStore(ctx, st)
	if err != nil {
		return nil, err
	}
	metrics.ResourcesCreated.WithLabelValues("store").Inc()
	return created, nil
}

// GetStorePublic retrieves a store for the public view.
func (c *Catalog) GetStorePublic(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	st, err := c.db.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: store not found", ErrNotFound)
	}
	return st, nil
}

// GetStoreOwned retrieves a store for its owner.
func (c *Catalog) GetStoreOwned(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Store, error) {
	st, err := c.GetStorePublic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.ID, st.OwnerID); err != nil {
		return nil, err
	}
	return st, nil
}

// ListStoresPublic lists all stores.
func (c *Catalog) ListStoresPublic(ctx context.Context) ([]models.Store, error) {
	return c.db.ListStores(ctx, nil)
}

// ListStoresMine lists the caller's stores.
func (c *Catalog) ListStoresMine(ctx context.Context, caller *models.User) ([]models.Store, error) {
	return c.db.ListStores(ctx, &caller.ID)
}

// UpdateStore applies a partial patch to a store owned by caller. When the
// patch carries a new image, the replaced image is released for deletion
// after the record is written.
func (c *Catalog) UpdateStore(ctx context.Context, caller *models.User, id uuid.UUID, in StoreInput) (*models.Store, error) {
	st, err := c.db.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: store not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, st.OwnerID); err != nil {
		return nil, err
	}

	applyString(&st.Name, in.Name)
	applyString(&st.ShortDescription, in.ShortDescription)
	applyString(&st.Description, in.Description)

	var oldImage string
	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		oldImage = st.ImageURL
		st.ImageURL = url
	}

	saved, err := c.db.SaveStore(ctx, st)
	if err != nil {
		// The record kept its old reference; the fresh upload is the orphan.
		if len(in.Image) > 0 {
			c.releaser.Release(st.ImageURL)
		}
		return nil, err
	}
	if oldImage != "" {
		c.releaser.Release(oldImage)
	}
	return saved, nil
}

// DeleteStore removes a store owned by caller and releases its image.
func (c *Catalog) DeleteStore(ctx context.Context, caller *models.User, id uuid.UUID) error {
	st, err := c.db.GetStore(ctx, id)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("%w: store not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, st.OwnerID); err != nil {
		return err
	}

	if err := c.db.DeleteStore(ctx, id); err != nil {
		return err
	}
	c.releaser.Release(st.ImageURL)
	metrics.ResourcesDeleted.WithLabelValues("store").Inc()
	return nil
}

// CreateCollection creates a collection owned by owner inside one of their
// stores.
func (c *Catalog) CreateCollection(ctx context.Context, owner *models.User, in CollectionInput) (*models.Collection, error) {
	if !present(in.Name) || !present(in.ShortDescription) || in.StoreID == nil {
		return nil, fmt.Errorf("%w: name, short description and store are required", ErrInvalidArgument)
	}
	if _, err := c.checkStoreOwnership(ctx, *in.StoreID, owner.ID); err != nil {
		return nil, err
	}

	col := &models.Collection{
		OwnerID:          owner.ID,
		StoreID:          *in.StoreID,
		Name:             strVal(in.Name),
		ShortDescription: strVal(in.ShortDescription),
		Description:      strVal(in.Description),
	}

	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		col.ImageURL = url
	}

	created, err := c.db.CreateCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	metrics.ResourcesCreated.WithLabelValues("collection").Inc()
	return created, nil
}

// GetCollectionPublic retrieves a collection for the public view.
func (c *Catalog) GetCollectionPublic(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	col, err := c.db.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, fmt.Errorf("%w: collection not found", ErrNotFound)
	}
	return col, nil
}

// GetCollectionOwned retrieves a collection for its owner.
func (c *Catalog) GetCollectionOwned(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Collection, error) {
	col, err := c.GetCollectionPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.ID, col.OwnerID); err != nil {
		return nil, err
	}
	return col, nil
}

// ListCollectionsPublic lists collections, optionally scoped to a store.
func (c *Catalog) ListCollectionsPublic(ctx context.Context, storeID *uuid.UUID) ([]models.Collection, error) {
	return c.db.ListCollections(ctx, nil, storeID)
}

// ListCollectionsMine lists the caller's collections, optionally scoped to a
// store.
func (c *Catalog) ListCollectionsMine(ctx context.Context, caller *models.User, storeID *uuid.UUID) ([]models.Collection, error) {
	return c.db.ListCollections(ctx, &caller.ID, storeID)
}

// UpdateCollection applies a partial patch to a collection owned by caller.
// A store reference change re-validates ownership of the new store.
func (c *Catalog) UpdateCollection(ctx context.Context, caller *models.User, id uuid.UUID, in CollectionInput) (*models.Collection, error) {
	col, err := c.db.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, fmt.Errorf("%w: collection not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, col.OwnerID); err != nil {
		return nil, err
	}

	if in.StoreID != nil {
		if _, err := c.checkStoreOwnership(ctx, *in.StoreID, caller.ID); err != nil {
			return nil, err
		}
		col.StoreID = *in.StoreID
	}
	applyString(&col.Name, in.Name)
	applyString(&col.ShortDescription, in.ShortDescription)
	applyString(&col.Description, in.Description)

	var oldImage string
	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		oldImage = col.ImageURL
		col.ImageURL = url
	}

	saved, err := c.db.SaveCollection(ctx, col)
	if err != nil {
		if len(in.Image) > 0 {
			c.releaser.Release(col.ImageURL)
		}
		return nil, err
	}
	if oldImage != "" {
		c.releaser.Release(oldImage)
	}
	return saved, nil
}

// DeleteCollection removes a collection owned by caller and releases its
// image.
func (c *Catalog) DeleteCollection(ctx context.Context, caller *models.User, id uuid.UUID) error {
	col, err := c.db.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	if col == nil {
		return fmt.Errorf("%w: collection not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, col.OwnerID); err != nil {
		return err
	}

	if err := c.db.DeleteCollection(ctx, id); err != nil {
		return err
	}
	c.releaser.Release(col.ImageURL)
	metrics.ResourcesDeleted.WithLabelValues("collection").Inc()
	return nil
}

// CreateProduct creates a product owned by owner inside one of their stores.
func (c *Catalog) CreateProduct(ctx context.Context, owner *models.User, in ProductInput) (*models.Product, error) {
	if !present(in.Name) || !present(in.ShortDescription) || in.StoreID == nil {
		return nil, fmt.Errorf("%w: name, short description and store are required", ErrInvalidArgument)
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}
	if _, err := c.checkStoreOwnership(ctx, *in.StoreID, owner.ID); err != nil {
		return nil, err
	}
	if in.CollectionID != nil {
		if _, err := c.checkCollectionOwnership(ctx, *in.CollectionID, owner.ID); err != nil {
			return nil, err
		}
	}

	p := &models.Product{
		OwnerID:          owner.ID,
		StoreID:          *in.StoreID,
		CollectionID:     in.CollectionID,
		Name:             strVal(in.Name),
		ShortDescription: strVal(in.ShortDescription),
		Description:      strVal(in.Description),
	}
	if in.Price != nil {
		p.Price = *in.Price
	}

	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	created, err := c.db.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	metrics.ResourcesCreated.WithLabelValues("product").Inc()
	return created, nil
}

// GetProductPublic retrieves a product for the public view.
func (c *Catalog) GetProductPublic(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := c.db.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	return p, nil
}

// GetProductOwned retrieves a product for its owner.
func (c *Catalog) GetProductOwned(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Product, error) {
	p, err := c.GetProductPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.ID, p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProductsPublic lists products, optionally scoped to a store.
func (c *Catalog) ListProductsPublic(ctx context.Context, storeID *uuid.UUID) ([]models.Product, error) {
	return c.db.ListProducts(ctx, nil, storeID)
}

// ListProductsMine lists the caller's products, optionally scoped to a store.
func (c *Catalog) ListProductsMine(ctx context.Context, caller *models.User, storeID *uuid.UUID) ([]models.Product, error) {
	return c.db.ListProducts(ctx, &caller.ID, storeID)
}

// UpdateProduct applies a partial patch to a product owned by caller.
func (c *Catalog) UpdateProduct(ctx context.Context, caller *models.User, id uuid.UUID, in ProductInput) (*models.Product, error) {
	p, err := c.db.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, p.OwnerID); err != nil {
		return nil, err
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}

	if in.StoreID != nil {
		if _, err := c.checkStoreOwnership(ctx, *in.StoreID, caller.ID); err != nil {
			return nil, err
		}
		p.StoreID = *in.StoreID
	}
	if in.CollectionID != nil {
		if _, err := c.checkCollectionOwnership(ctx, *in.CollectionID, caller.ID); err != nil {
			return nil, err
		}
		p.CollectionID = in.CollectionID
	}
	applyString(&p.Name, in.Name)
	applyString(&p.ShortDescription, in.ShortDescription)
	applyString(&p.Description, in.Description)
	if in.Price != nil {
		p.Price = *in.Price
	}

	var oldImage string
	if len(in.Image) > 0 {
		url, err := c.uploadImage(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		oldImage = p.ImageURL
		p.ImageURL = url
	}

	saved, err := c.db.SaveProduct(ctx, p)
	if err != nil {
		if len(in.Image) > 0 {
			c.releaser.Release(p.ImageURL)
		}
		return nil, err
	}
	if oldImage != "" {
		c.releaser.Release(oldImage)
	}
	return saved, nil
}

// DeleteProduct removes a product owned by caller and releases its image.
func (c *Catalog) DeleteProduct(ctx context.Context, caller *models.User, id uuid.UUID) error {
	p, err := c.db.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}
	if err := Authorize(caller.ID, p.OwnerID); err != nil {
		return err
	}

	if err := c.db.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.releaser.Release(p.ImageURL)
	metrics.ResourcesDeleted.WithLabelValues("product").Inc()
	return nil
}
