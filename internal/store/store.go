package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// DataStore defines the interface for persistent storage of users and catalog
// resources. Both PostgresStore and SQLiteStore implement this interface.
//
// List and Get methods populate display fields (owner wallet, store name)
// from the referenced records. Lookups for absent records return (nil, nil).
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, walletAddress, tokenHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Store operations
	CreateStore(ctx context.Context, st *models.Store) (*models.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListStores(ctx context.Context, owner *uuid.UUID) ([]models.Store, error)
	SaveStore(ctx context.Context, st *models.Store) (*models.Store, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error
	CountStores(ctx context.Context) (int64, error)

	// Collection operations
	CreateCollection(ctx context.Context, c *models.Collection) (*models.Collection, error)
	GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	ListCollections(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Collection, error)
	SaveCollection(ctx context.Context, c *models.Collection) (*models.Collection, error)
	DeleteCollection(ctx context.Context, id uuid.UUID) error
	CountCollections(ctx context.Context) (int64, error)

	// Product operations
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CountProducts(ctx context.Context) (int64, error)
}
