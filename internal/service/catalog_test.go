package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/store"
)

// fakeUploader hands out sequential URLs; fail makes every upload error.
type fakeUploader struct {
	n    int
	fail bool
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if f.fail {
		return "", errors.New("provider down")
	}
	f.n++
	return fmt.Sprintf("https://assets.test/%d-%s", f.n, name), nil
}

func (f *fakeUploader) Delete(ctx context.Context, url string) error { return nil }

// recordReleaser records released URLs synchronously.
type recordReleaser struct {
	released []string
}

func (r *recordReleaser) Release(url string) {
	if url == "" {
		return
	}
	r.released = append(r.released, url)
}

func str(s string) *string { return &s }

type catalogFixture struct {
	catalog  *Catalog
	db       *store.MemoryDataStore
	uploader *fakeUploader
	releaser *recordReleaser
	owner    *models.User
	other    *models.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := store.NewMemoryDataStore()
	uploader := &fakeUploader{}
	releaser := &recordReleaser{}

	owner, err := db.CreateUser(context.Background(), "0x1111111111111111111111111111111111111111", "hash")
	require.NoError(t, err)
	other, err := db.CreateUser(context.Background(), "0x2222222222222222222222222222222222222222", "hash")
	require.NoError(t, err)

	return &catalogFixture{
		catalog:  NewCatalog(db, uploader, releaser, zerolog.Nop()),
		db:       db,
		uploader: uploader,
		releaser: releaser,
		owner:    owner,
		other:    other,
	}
}

func (f *catalogFixture) createStore(t *testing.T) *models.Store {
	t.Helper()
	st, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("Gadget Garden"),
		ShortDescription: str("gadgets and gizmos"),
		Description:      str("everything with a battery"),
	})
	require.NoError(t, err)
	return st
}

func TestCreateStoreRequiresFields(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{Name: str("no short desc")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("   "),
		ShortDescription: str("x"),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateStoreWithImage(t *testing.T) {
	f := newCatalogFixture(t)

	st, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("Gadget Garden"),
		ShortDescription: str("gadgets"),
		Image:            []byte("png bytes"),
		ImageName:        "logo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://assets.test/1-logo.png", st.ImageURL)
	assert.Equal(t, f.owner.WalletAddress, st.OwnerWallet)
}

func TestUpdateStorePatchSemantics(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	// Supplied empty strings are ignored, absent fields untouched
	updated, err := f.catalog.UpdateStore(context.Background(), f.owner, st.ID, StoreInput{
		Name:             str("Widget World"),
		ShortDescription: str(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget World", updated.Name)
	assert.Equal(t, "gadgets and gizmos", updated.ShortDescription)
	assert.Equal(t, "everything with a battery", updated.Description)
	assert.Equal(t, st.OwnerID, updated.OwnerID)
}

func TestUpdateStoreForbidden(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	_, err := f.catalog.UpdateStore(context.Background(), f.other, st.ID, StoreInput{Name: str("mine now")})
	assert.ErrorIs(t, err, ErrForbidden)

	// Nothing changed
	got, err := f.catalog.GetStorePublic(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget Garden", got.Name)
}

func TestUpdateMissingStoreNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)
	require.NoError(t, f.catalog.DeleteStore(context.Background(), f.owner, st.ID))

	_, err := f.catalog.UpdateStore(context.Background(), f.owner, st.ID, StoreInput{Name: str("ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStoreReplacesImage(t *testing.T) {
	f := newCatalogFixture(t)

	st, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("Gadget Garden"),
		ShortDescription: str("gadgets"),
		Image:            []byte("v1"),
		ImageName:        "a.png",
	})
	require.NoError(t, err)
	oldURL := st.ImageURL

	updated, err := f.catalog.UpdateStore(context.Background(), f.owner, st.ID, StoreInput{
		Image:     []byte("v2"),
		ImageName: "b.png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldURL, updated.ImageURL)

	// Exactly the replaced URL was released, exactly once
	assert.Equal(t, []string{oldURL}, f.releaser.released)
}

func TestDeleteStoreReleasesImage(t *testing.T) {
	f := newCatalogFixture(t)

	st, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("Gadget Garden"),
		ShortDescription: str("gadgets"),
		Image:            []byte("v1"),
		ImageName:        "a.png",
	})
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteStore(context.Background(), f.owner, st.ID))
	assert.Equal(t, []string{st.ImageURL}, f.releaser.released)

	_, err = f.catalog.GetStorePublic(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteStoreForbidden(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	err := f.catalog.DeleteStore(context.Background(), f.other, st.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.releaser.released)
}

func TestUploadFailureAbortsCreate(t *testing.T) {
	f := newCatalogFixture(t)
	f.uploader.fail = true

	_, err := f.catalog.CreateStore(context.Background(), f.owner, StoreInput{
		Name:             str("Gadget Garden"),
		ShortDescription: str("gadgets"),
		Image:            []byte("v1"),
		ImageName:        "a.png",
	})
	assert.ErrorIs(t, err, ErrUploadFailed)

	count, err := f.db.CountStores(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateCollectionInForeignStore(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	_, err := f.catalog.CreateCollection(context.Background(), f.other, CollectionInput{
		StoreID:          &st.ID,
		Name:             str("Sneaky"),
		ShortDescription: str("not my store"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateCollectionPopulatesStoreName(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	col, err := f.catalog.CreateCollection(context.Background(), f.owner, CollectionInput{
		StoreID:          &st.ID,
		Name:             str("Lamps"),
		ShortDescription: str("lights"),
	})
	require.NoError(t, err)
	assert.Equal(t, st.Name, col.StoreName)
	assert.Equal(t, f.owner.WalletAddress, col.OwnerWallet)
}

func TestCreateProductValidation(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)
	price := int64(-5)

	_, err := f.catalog.CreateProduct(context.Background(), f.owner, ProductInput{
		StoreID:          &st.ID,
		Name:             str("Lamp"),
		ShortDescription: str("a lamp"),
		Price:            &price,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.catalog.CreateProduct(context.Background(), f.owner, ProductInput{
		Name:             str("Lamp"),
		ShortDescription: str("a lamp"),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument, "store reference is required")
}

func TestMoveProductToForeignStoreForbidden(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	p, err := f.catalog.CreateProduct(context.Background(), f.owner, ProductInput{
		StoreID:          &st.ID,
		Name:             str("Lamp"),
		ShortDescription: str("a lamp"),
	})
	require.NoError(t, err)

	theirs, err := f.catalog.CreateStore(context.Background(), f.other, StoreInput{
		Name:             str("Their Store"),
		ShortDescription: str("not yours"),
	})
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(context.Background(), f.owner, p.ID, ProductInput{StoreID: &theirs.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.catalog.GetProductPublic(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.StoreID)
}

func TestListProductsScopes(t *testing.T) {
	f := newCatalogFixture(t)
	st := f.createStore(t)

	for i := 0; i < 3; i++ {
		_, err := f.catalog.CreateProduct(context.Background(), f.owner, ProductInput{
			StoreID:          &st.ID,
			Name:             str(fmt.Sprintf("Lamp %d", i)),
			ShortDescription: str("a lamp"),
		})
		require.NoError(t, err)
	}

	all, err := f.catalog.ListProductsPublic(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.catalog.ListProductsMine(context.Background(), f.other, nil)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
