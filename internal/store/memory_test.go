package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/bazaar/internal/models"
)

func TestMessageStoreAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryMessageStore()
	msg := &models.Message{ProductID: "p1", SenderID: "a", ReceiverID: "b", Body: "hi"}

	require.NoError(t, s.Append(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.NotZero(t, msg.Timestamp)
}

func TestMessageStoreParticipantFilter(t *testing.T) {
	s := NewMemoryMessageStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, &models.Message{ProductID: "p1", SenderID: "a", ReceiverID: "b", Body: "one"}))
	require.NoError(t, s.Append(ctx, &models.Message{ProductID: "p1", SenderID: "c", ReceiverID: "b", Body: "two"}))

	forA, err := s.ListForProduct(ctx, "p1", "a")
	require.NoError(t, err)
	require.Len(t, forA, 1)
	assert.Equal(t, "one", forA[0].Body)

	forB, err := s.ListForProduct(ctx, "p1", "b")
	require.NoError(t, err)
	assert.Len(t, forB, 2)

	forStranger, err := s.ListForProduct(ctx, "p1", "z")
	require.NoError(t, err)
	assert.Empty(t, forStranger)
}

func TestMessageStoreOrdersByTimestamp(t *testing.T) {
	s := NewMemoryMessageStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, &models.Message{ProductID: "p1", SenderID: "a", ReceiverID: "b", Body: "late", Timestamp: 300}))
	require.NoError(t, s.Append(ctx, &models.Message{ProductID: "p1", SenderID: "a", ReceiverID: "b", Body: "early", Timestamp: 100}))

	msgs, err := s.ListForProduct(ctx, "p1", "a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "early", msgs[0].Body)
	assert.Equal(t, "late", msgs[1].Body)
}

func TestCatalogPopulatesDisplayFields(t *testing.T) {
	s := NewMemoryDataStore()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "0x1234", "hash")
	require.NoError(t, err)

	st, err := s.CreateStore(ctx, &models.Store{OwnerID: user.ID, Name: "Lamps", ShortDescription: "lights"})
	require.NoError(t, err)
	assert.Equal(t, "0x1234", st.OwnerWallet)

	p, err := s.CreateProduct(ctx, &models.Product{OwnerID: user.ID, StoreID: st.ID, Name: "Desk Lamp", ShortDescription: "a lamp"})
	require.NoError(t, err)
	assert.Equal(t, "Lamps", p.StoreName)
	assert.Equal(t, "0x1234", p.OwnerWallet)
}

func TestCatalogOwnerAndStoreScoping(t *testing.T) {
	s := NewMemoryDataStore()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "0xaaaa", "hash")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "0xbbbb", "hash")
	require.NoError(t, err)

	aliceStore, err := s.CreateStore(ctx, &models.Store{OwnerID: alice.ID, Name: "A", ShortDescription: "a"})
	require.NoError(t, err)
	_, err = s.CreateStore(ctx, &models.Store{OwnerID: bob.ID, Name: "B", ShortDescription: "b"})
	require.NoError(t, err)

	all, err := s.ListStores(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListStores(ctx, &alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Name)

	_, err = s.CreateCollection(ctx, &models.Collection{OwnerID: alice.ID, StoreID: aliceStore.ID, Name: "C1", ShortDescription: "c"})
	require.NoError(t, err)

	cols, err := s.ListCollections(ctx, nil, &aliceStore.ID)
	require.NoError(t, err)
	assert.Len(t, cols, 1)
}

func TestCatalogSavePreservesCreatedAt(t *testing.T) {
	s := NewMemoryDataStore()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "0x1234", "hash")
	require.NoError(t, err)
	st, err := s.CreateStore(ctx, &models.Store{OwnerID: user.ID, Name: "Lamps", ShortDescription: "lights"})
	require.NoError(t, err)

	st.Name = "Renamed"
	saved, err := s.SaveStore(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Name)
	assert.Equal(t, st.CreatedAt, saved.CreatedAt)
	assert.False(t, saved.UpdatedAt.Before(saved.CreatedAt))
}

func TestCatalogMissingLookupsReturnNil(t *testing.T) {
	s := NewMemoryDataStore()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "0x1234", "hash")
	require.NoError(t, err)

	got, err := s.GetStore(ctx, user.ID) // no store with this id
	require.NoError(t, err)
	assert.Nil(t, got)

	byWallet, err := s.GetUserByWallet(ctx, "0xdead")
	require.NoError(t, err)
	assert.Nil(t, byWallet)
}
