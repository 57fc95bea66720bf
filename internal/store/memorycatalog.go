package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eldtechnologies/bazaar/internal/crypto"
	"github.com/eldtechnologies/bazaar/internal/models"
)

// MemoryDataStore implements DataStore with in-memory maps. It exists for
// tests and ephemeral runs; production uses PostgresStore or SQLiteStore.
type MemoryDataStore struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]models.User
	stores      map[uuid.UUID]models.Store
	collections map[uuid.UUID]models.Collection
	products    map[uuid.UUID]models.Product
}

// NewMemoryDataStore creates an empty in-memory catalog store.
func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		users:       make(map[uuid.UUID]models.User),
		stores:      make(map[uuid.UUID]models.Store),
		collections: make(map[uuid.UUID]models.Collection),
		products:    make(map[uuid.UUID]models.Product),
	}
}

// Close is a no-op.
func (s *MemoryDataStore) Close() {}

// Ping always succeeds.
func (s *MemoryDataStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryDataStore) CreateUser(ctx context.Context, walletAddress, tokenHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := models.User{
		ID:            crypto.NewUUIDv7(),
		WalletAddress: walletAddress,
		TokenHash:     tokenHash,
		CreatedAt:     time.Now().UTC(),
	}
	s.users[user.ID] = user
	out := user
	return &out, nil
}

func (s *MemoryDataStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := user
	return &out, nil
}

func (s *MemoryDataStore) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.WalletAddress == walletAddress {
			out := user
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryDataStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryDataStore) populateStore(st *models.Store) {
	if owner, ok := s.users[st.OwnerID]; ok {
		st.OwnerWallet = owner.WalletAddress
	}
}

func (s *MemoryDataStore) CreateStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == uuid.Nil {
		st.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	s.stores[st.ID] = *st

	out := *st
	s.populateStore(&out)
	return &out, nil
}

func (s *MemoryDataStore) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[id]
	if !ok {
		return nil, nil
	}
	out := st
	s.populateStore(&out)
	return &out, nil
}

func (s *MemoryDataStore) ListStores(ctx context.Context, owner *uuid.UUID) ([]models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stores []models.Store
	for _, st := range s.stores {
		if owner != nil && st.OwnerID != *owner {
			continue
		}
		out := st
		s.populateStore(&out)
		stores = append(stores, out)
	}
	sortByCreatedAtDesc(stores, func(st models.Store) time.Time { return st.CreatedAt })
	return stores, nil
}

func (s *MemoryDataStore) SaveStore(ctx context.Context, st *models.Store) (*models.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.stores[st.ID]
	if !ok {
		return nil, nil
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = time.Now().UTC()
	s.stores[st.ID] = *st

	out := *st
	s.populateStore(&out)
	return &out, nil
}

func (s *MemoryDataStore) DeleteStore(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, id)
	return nil
}

func (s *MemoryDataStore) CountStores(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.stores)), nil
}

func (s *MemoryDataStore) populateCollection(c *models.Collection) {
	if owner, ok := s.users[c.OwnerID]; ok {
		c.OwnerWallet = owner.WalletAddress
	}
	if st, ok := s.stores[c.StoreID]; ok {
		c.StoreName = st.Name
	}
}

func (s *MemoryDataStore) CreateCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.collections[c.ID] = *c

	out := *c
	s.populateCollection(&out)
	return &out, nil
}

func (s *MemoryDataStore) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[id]
	if !ok {
		return nil, nil
	}
	out := c
	s.populateCollection(&out)
	return &out, nil
}

func (s *MemoryDataStore) ListCollections(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var collections []models.Collection
	for _, c := range s.collections {
		if owner != nil && c.OwnerID != *owner {
			continue
		}
		if storeID != nil && c.StoreID != *storeID {
			continue
		}
		out := c
		s.populateCollection(&out)
		collections = append(collections, out)
	}
	sortByCreatedAtDesc(collections, func(c models.Collection) time.Time { return c.CreatedAt })
	return collections, nil
}

func (s *MemoryDataStore) SaveCollection(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[c.ID]
	if !ok {
		return nil, nil
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.collections[c.ID] = *c

	out := *c
	s.populateCollection(&out)
	return &out, nil
}

func (s *MemoryDataStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, id)
	return nil
}

func (s *MemoryDataStore) CountCollections(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collections)), nil
}

func (s *MemoryDataStore) populateProduct(p *models.Product) {
	if owner, ok := s.users[p.OwnerID]; ok {
		p.OwnerWallet = owner.WalletAddress
	}
	if st, ok := s.stores[p.StoreID]; ok {
		p.StoreName = st.Name
	}
}

func (s *MemoryDataStore) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = *p

	out := *p
	s.populateProduct(&out)
	return &out, nil
}

func (s *MemoryDataStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	out := p
	s.populateProduct(&out)
	return &out, nil
}

func (s *MemoryDataStore) ListProducts(ctx context.Context, owner, storeID *uuid.UUID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []models.Product
	for _, p := range s.products {
		if owner != nil && p.OwnerID != *owner {
			continue
		}
		if storeID != nil && p.StoreID != *storeID {
			continue
		}
		out := p
		s.populateProduct(&out)
		products = append(products, out)
	}
	sortByCreatedAtDesc(products, func(p models.Product) time.Time { return p.CreatedAt })
	return products, nil
}

func (s *MemoryDataStore) SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return nil, nil
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = *p

	out := *p
	s.populateProduct(&out)
	return &out, nil
}

func (s *MemoryDataStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *MemoryDataStore) CountProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func sortByCreatedAtDesc[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}
