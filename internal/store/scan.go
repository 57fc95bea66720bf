package store

import (
	"github.com/google/uuid"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// rowScanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows, so
// the scan helpers below are shared by both catalog backends.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (*models.Store, error) {
	st := &models.Store{}
	var idStr, ownerStr string
	err := row.Scan(
		&idStr,
		&ownerStr,
		&st.OwnerWallet,
		&st.Name,
		&st.ShortDescription,
		&st.Description,
		&st.ImageURL,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.ID = uuid.MustParse(idStr)
	st.OwnerID = uuid.MustParse(ownerStr)
	return st, nil
}

func scanCollection(row rowScanner) (*models.Collection, error) {
	c := &models.Collection{}
	var idStr, ownerStr, storeStr string
	err := row.Scan(
		&idStr,
		&ownerStr,
		&c.OwnerWallet,
		&storeStr,
		&c.StoreName,
		&c.Name,
		&c.ShortDescription,
		&c.Description,
		&c.ImageURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.MustParse(idStr)
	c.OwnerID = uuid.MustParse(ownerStr)
	c.StoreID = uuid.MustParse(storeStr)
	return c, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var idStr, ownerStr, storeStr string
	var collectionStr *string
	err := row.Scan(
		&idStr,
		&ownerStr,
		&p.OwnerWallet,
		&storeStr,
		&p.StoreName,
		&collectionStr,
		&p.Name,
		&p.ShortDescription,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.MustParse(idStr)
	p.OwnerID = uuid.MustParse(ownerStr)
	p.StoreID = uuid.MustParse(storeStr)
	if collectionStr != nil {
		collectionID := uuid.MustParse(*collectionStr)
		p.CollectionID = &collectionID
	}
	return p, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	out := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}
