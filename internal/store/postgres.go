package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldtechnologies/bazaar/internal/crypto"
	"github.com/eldtechnologies/bazaar/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool and
// initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		wallet_address TEXT UNIQUE NOT NULL,
		token_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		collection_id TEXT,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price BIGINT NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_stores_owner ON stores(owner_id);
	CREATE INDEX IF NOT EXISTS idx_collections_owner ON collections(owner_id);
	CREATE INDEX IF NOT EXISTS idx_collections_store ON collections(store_id);
	CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id);
	CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, walletAddress, tokenHash string) (*models.User, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, wallet_address, token_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, id.String(), walletAddress, tokenHash, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, wallet_address, token_hash, created_at
		FROM users WHERE id = $1
	`, id.String()))
}

// GetUserByWallet retrieves a user by wallet address.
func (s *PostgresStore) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, wallet_address, token_hash, created_at
		FROM users WHERE wallet_address = $1
	`, walletAddress))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := row.Scan(&idStr, &user.WalletAddress, &user.TokenHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

const pgStoreSelect = `
	SELECT s.id, s.owner_id, COALESCE(u.wallet_address, ''),
	       s.name, s.short_description, s.description, s.image_url,
	       s.created_at, s.updated_at
	FROM stores s
	LEFT JOIN users u ON u.id = s.owner_id
`

// CreateStore creates a new store record.
func (s *PostgresStore) CreateStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	if st.ID == uuid.Nil {
		st.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO stores (id, owner_id, name, short_description, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, st.ID.String(), st.OwnerID.String(), st.Name, st.ShortDescription, st.Description, st.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetStore(ctx, st.ID)
}

// GetStore retrieves a store by ID with populated owner wallet.
func (s *PostgresStore) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	st, err := scanStore(s.pool.QueryRow(ctx, pgStoreSelect+` WHERE s.id = $1`, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// ListStores retrieves stores, optionally filtered by owner.
func (s *PostgresStore) ListStores(ctx context.Context, owner *uuid.UUID) ([]models.Store, error) {
	query := pgStoreSelect
	var args []any
	if owner != nil {
		query += ` WHERE s.owner_id = $1`
		args = append(args, owner.String())
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

// SaveStore persists field changes to an existing store.
func (s *PostgresStore) SaveStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE stores
		SET name = $1, short_description = $2, description = $3, image_url = $4, updated_at = NOW()
		WHERE id = $5
	`, st.Name, st.ShortDescription, st.Description, st.ImageURL, st.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetStore(ctx, st.ID)
}

// DeleteStore removes a store record.
func (s *PostgresStore) DeleteStore(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id.String())
	return err
}

// CountStores returns the total number of stores.
func (s *PostgresStore) CountStores(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&count)
	return count, err
}

const pgCollectionSelect = `
	SELECT c.id, c.owner_id, COALESCE(u.wallet_address, ''),
	       c.store_id, COALESCE(s.name, ''),
	       c.name, c.short_description, c.description, c.image_url,
	       c.created_at, c.updated_at
	FROM collections c
	LEFT JOIN users u ON u.id = c.owner_id
	LEFT JOIN stores s ON s.id = c.store_id
`

// CreateCollection creates a new collection record.
func (s *PostgresStore) CreateCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	if c.ID == uuid.Nil {
		c.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO collections (id, owner_id, store_id, name, short_description, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID.String(), c.OwnerID.String(), c.StoreID.String(), c.Name, c.ShortDescription, c.Description, c.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetCollection(ctx, c.ID)
}

// GetCollection retrieves a collection by ID with populated display fields.
func (s *PostgresStore) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	c, err := scanCollection(s.pool.QueryRow(ctx, pgCollectionSelect+` WHERE c.id = $1`, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListCollections retrieves collections, optionally filtered by owner and store.
func (s *PostgresStore) ListCollections(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Collection, error) {
	query := pgCollectionSelect
	var conds []string
	var args []any
	if owner != nil {
		args = append(args, owner.String())
		conds = append(conds, fmt.Sprintf(`c.owner_id = $%d`, len(args)))
	}
	if storeID != nil {
		args = append(args, storeID.String())
		conds = append(conds, fmt.Sprintf(`c.store_id = $%d`, len(args)))
	}
	query += whereClause(conds)
	query += ` ORDER BY c.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

// SaveCollection persists field changes to an existing collection.
func (s *PostgresStore) SaveCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE collections
		SET store_id = $1, name = $2, short_description = $3, description = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6
	`, c.StoreID.String(), c.Name, c.ShortDescription, c.Description, c.ImageURL, c.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetCollection(ctx, c.ID)
}

// DeleteCollection removes a collection record.
func (s *PostgresStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id.String())
	return err
}

// CountCollections returns the total number of collections.
func (s *PostgresStore) CountCollections(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count)
	return count, err
}

const pgProductSelect = `
	SELECT p.id, p.owner_id, COALESCE(u.wallet_address, ''),
	       p.store_id, COALESCE(s.name, ''), p.collection_id,
	       p.name, p.short_description, p.description, p.price, p.image_url,
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN users u ON u.id = p.owner_id
	LEFT JOIN stores s ON s.id = p.store_id
`

// CreateProduct creates a new product record.
func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	var collectionID *string
	if p.CollectionID != nil {
		str := p.CollectionID.String()
		collectionID = &str
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, owner_id, store_id, collection_id, name, short_description, description, price, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID.String(), p.OwnerID.String(), p.StoreID.String(), collectionID, p.Name, p.ShortDescription, p.Description, p.Price, p.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, p.ID)
}

// GetProduct retrieves a product by ID with populated display fields.
func (s *PostgresStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, pgProductSelect+` WHERE p.id = $1`, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListProducts retrieves products, optionally filtered by owner and store.
func (s *PostgresStore) ListProducts(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Product, error) {
	query := pgProductSelect
	var conds []string
	var args []any
	if owner != nil {
		args = append(args, owner.String())
		conds = append(conds, fmt.Sprintf(`p.owner_id = $%d`, len(args)))
	}
	if storeID != nil {
		args = append(args, storeID.String())
		conds = append(conds, fmt.Sprintf(`p.store_id = $%d`, len(args)))
	}
	query += whereClause(conds)
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// SaveProduct persists field changes to an existing product.
func (s *PostgresStore) SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	var collectionID *string
	if p.CollectionID != nil {
		str := p.CollectionID.String()
		collectionID = &str
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE products
		SET store_id = $1, collection_id = $2, name = $3, short_description = $4, description = $5, price = $6, image_url = $7, updated_at = NOW()
		WHERE id = $8
	`, p.StoreID.String(), collectionID, p.Name, p.ShortDescription, p.Description, p.Price, p.ImageURL, p.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

// DeleteProduct removes a product record.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id.String())
	return err
}

// CountProducts returns the total number of products.
func (s *PostgresStore) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}
