package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eldtechnologies/bazaar/internal/crypto"
	"github.com/eldtechnologies/bazaar/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the default catalog
// backend when DATABASE_URL is not configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/bazaar.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/bazaar.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist. References are plain ids
// without foreign key enforcement, matching the document-store semantics the
// service layer validates against.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		wallet_address TEXT UNIQUE NOT NULL,
		token_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		collection_id TEXT,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price INTEGER NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_wallet ON users(wallet_address);
	CREATE INDEX IF NOT EXISTS idx_stores_owner ON stores(owner_id);
	CREATE INDEX IF NOT EXISTS idx_collections_owner ON collections(owner_id);
	CREATE INDEX IF NOT EXISTS idx_collections_store ON collections(store_id);
	CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id);
	CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, walletAddress, tokenHash string) (*models.User, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, wallet_address, token_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), walletAddress, tokenHash, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, wallet_address, token_hash, created_at
		FROM users WHERE id = ?
	`, id.String()))
}

// GetUserByWallet retrieves a user by wallet address.
func (s *SQLiteStore) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, wallet_address, token_hash, created_at
		FROM users WHERE wallet_address = ?
	`, walletAddress))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := row.Scan(&idStr, &user.WalletAddress, &user.TokenHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

const sqliteStoreSelect = `
	SELECT s.id, s.owner_id, COALESCE(u.wallet_address, ''),
	       s.name, s.short_description, s.description, s.image_url,
	       s.created_at, s.updated_at
	FROM stores s
	LEFT JOIN users u ON u.id = s.owner_id
`

// CreateStore creates a new store record.
func (s *SQLiteStore) CreateStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	if st.ID == uuid.Nil {
		st.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, owner_id, name, short_description, description, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID.String(), st.OwnerID.String(), st.Name, st.ShortDescription, st.Description, st.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetStore(ctx, st.ID)
}

// GetStore retrieves a store by ID with populated owner wallet.
func (s *SQLiteStore) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	st, err := scanStore(s.db.QueryRowContext(ctx, sqliteStoreSelect+` WHERE s.id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// ListStores retrieves stores, optionally filtered by owner.
func (s *SQLiteStore) ListStores(ctx context.Context, owner *uuid.UUID) ([]models.Store, error) {
	query := sqliteStoreSelect
	var args []any
	if owner != nil {
		query += ` WHERE s.owner_id = ?`
		args = append(args, owner.String())
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) SaveStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE stores
		SET name = ?, short_description = ?, description = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, st.Name, st.ShortDescription, st.Description, st.ImageURL, time.Now().UTC(), st.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetStore(ctx, st.ID)
}

// DeleteStore removes a store record.
func (s *SQLiteStore) DeleteStore(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id.String())
	return err
}

// CountStores returns the total number of stores.
func (s *SQLiteStore) CountStores(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores`).Scan(&count)
	return count, err
}

const sqliteCollectionSelect = `
	SELECT c.id, c.owner_id, COALESCE(u.wallet_address, ''),
	       c.store_id, COALESCE(s.name, ''),
	       c.name, c.short_description, c.description, c.image_url,
	       c.created_at, c.updated_at
	FROM collections c
	LEFT JOIN users u ON u.id = c.owner_id
	LEFT JOIN stores s ON s.id = c.store_id
`

// CreateCollection creates a new collection record.
func (s *SQLiteStore) CreateCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	if c.ID == uuid.Nil {
		c.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (id, owner_id, store_id, name, short_description, description, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.OwnerID.String(), c.StoreID.String(), c.Name, c.ShortDescription, c.Description, c.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetCollection(ctx, c.ID)
}

// GetCollection retrieves a collection by ID with populated display fields.
func (s *SQLiteStore) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	c, err := scanCollection(s.db.QueryRowContext(ctx, sqliteCollectionSelect+` WHERE c.id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListCollections retrieves collections, optionally filtered by owner and store.
func (s *SQLiteStore) ListCollections(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Collection, error) {
	query := sqliteCollectionSelect
	var conds []string
	var args []any
	if owner != nil {
		conds = append(conds, `c.owner_id = ?`)
		args = append(args, owner.String())
	}
	if storeID != nil {
		conds = append(conds, `c.store_id = ?`)
		args = append(args, storeID.String())
	}
	query += whereClause(conds)
	query += ` ORDER BY c.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) SaveCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE collections
		SET store_id = ?, name = ?, short_description = ?, description = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, c.StoreID.String(), c.Name, c.ShortDescription, c.Description, c.ImageURL, time.Now().UTC(), c.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetCollection(ctx, c.ID)
}

// DeleteCollection removes a collection record.
func (s *SQLiteStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id.String())
	return err
}

// CountCollections returns the total number of collections.
func (s *SQLiteStore) CountCollections(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count)
	return count, err
}

const sqliteProductSelect = `
	SELECT p.id, p.owner_id, COALESCE(u.wallet_address, ''),
	       p.store_id, COALESCE(s.name, ''), p.collection_id,
	       p.name, p.short_description, p.description, p.price, p.image_url,
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN users u ON u.id = p.owner_id
	LEFT JOIN stores s ON s.id = p.store_id
`

// CreateProduct creates a new product record.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()

	var collectionID *string
	if p.CollectionID != nil {
		str := p.CollectionID.String()
		collectionID = &str
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, owner_id, store_id, collection_id, name, short_description, description, price, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID.String(), p.OwnerID.String(), p.StoreID.String(), collectionID, p.Name, p.ShortDescription, p.Description, p.Price, p.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, p.ID)
}

// GetProduct retrieves a product by ID with populated display fields.
func (s *SQLiteStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, sqliteProductSelect+` WHERE p.id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListProducts retrieves products, optionally filtered by owner and store.
func (s *SQLiteStore) ListProducts(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Product, error) {
	query := sqliteProductSelect
	var conds []string
	var args []any
	if owner != nil {
		conds = append(conds, `p.owner_id = ?`)
		args = append(args, owner.String())
	}
	if storeID != nil {
		conds = append(conds, `p.store_id = ?`)
		args = append(args, storeID.String())
	}
	query += whereClause(conds)
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	var collectionID *string
	if p.CollectionID != nil {
		str := p.CollectionID.String()
		collectionID = &str
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET store_id = ?, collection_id = ?, name = ?, short_description = ?, description = ?, price = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, p.StoreID.String(), collectionID, p.Name, p.ShortDescription, p.Description, p.Price, p.ImageURL, time.Now().UTC(), p.ID.String())
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

// DeleteProduct removes a product record.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String())
	return err
}

// CountProducts returns the total number of products.
func (s *SQLiteStore) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}
