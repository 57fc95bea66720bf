// Command seed fills the catalog database with demo data: a handful of
// users, each with a store, collections and products. Printed tokens can be
// used directly against the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/eldtechnologies/bazaar/internal/config"
	"github.com/eldtechnologies/bazaar/internal/crypto"
	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/store"
)

func main() {
	users := flag.Int("users", 3, "number of users to create")
	productsPer := flag.Int("products", 5, "products per store")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	gofakeit.Seed(time.Now().UnixNano())

	cfg := config.Load()
	ctx := context.Background()

	var db store.DataStore
	var err error
	if cfg.DatabaseURL != "" {
		db, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		db, err = store.NewSQLiteStore(ctx, cfg.SQLitePath)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	for i := 0; i < *users; i++ {
		secret := crypto.NewSecret()
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to hash token")
		}

		user, err := db.CreateUser(ctx, fakeWallet(), string(hash))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create user")
		}
		logger.Info().
			Str("wallet", user.WalletAddress).
			Str("token", fmt.Sprintf("%s.%s", user.ID, secret)).
			Msg("created user")

		st, err := db.CreateStore(ctx, &models.Store{
			OwnerID:          user.ID,
			Name:             gofakeit.Company(),
			ShortDescription: gofakeit.Slogan(),
			Description:      gofakeit.Paragraph(1, 3, 12, " "),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create store")
		}
		logger.Info().Str("store", st.Name).Msg("created store")

		col, err := db.CreateCollection(ctx, &models.Collection{
			OwnerID:          user.ID,
			StoreID:          st.ID,
			Name:             gofakeit.ProductCategory(),
			ShortDescription: gofakeit.Sentence(6),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create collection")
		}

		for j := 0; j < *productsPer; j++ {
			p := &models.Product{
				OwnerID:          user.ID,
				StoreID:          st.ID,
				Name:             gofakeit.ProductName(),
				ShortDescription: gofakeit.ProductDescription(),
				Description:      gofakeit.Paragraph(1, 2, 10, " "),
				Price:            int64(gofakeit.Number(100, 500000)),
			}
			// Half the products go into the collection
			if j%2 == 0 {
				p.CollectionID = &col.ID
			}
			if _, err := db.CreateProduct(ctx, p); err != nil {
				logger.Fatal().Err(err).Msg("failed to create product")
			}
		}
		logger.Info().Int("count", *productsPer).Msg("created products")
	}

	logger.Info().Msg("seeding complete")
}

// fakeWallet generates a random EVM-style wallet address.
func fakeWallet() string {
	const hexdigits = "0123456789abcdef"
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexdigits[gofakeit.Number(0, 15)]
	}
	return "0x" + string(b)
}
