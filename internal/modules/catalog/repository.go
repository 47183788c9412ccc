package catalog

import (
	"errors"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const productsDoc = "products.json"

// Seed provisions an empty catalog for new tenants.
var Seed = tenant.Seed{Name: productsDoc, Default: func() interface{} { return []Product{} }}

// Repository defines the interface for catalog storage.
type Repository interface {
	List(ns tenant.Namespace) ([]Product, error)
	// Update loads the catalog, runs fn and stores what fn returns, all under
	// the catalog lock. Nothing is written when fn fails.
	Update(ns tenant.Namespace, fn func([]Product) ([]Product, error)) ([]Product, error)
}

type fileRepo struct{ store *storage.Store }

func NewFileRepository(store *storage.Store) Repository { return &fileRepo{store: store} }

func (r *fileRepo) List(ns tenant.Namespace) ([]Product, error) {
	var products []Product
	err := r.store.ReadJSON(ns.Storage(), productsDoc, &products)
	if errors.Is(err, apperr.ErrNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, apperr.AsStorage(err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (r *fileRepo) Update(ns tenant.Namespace, fn func([]Product) ([]Product, error)) ([]Product, error) {
	var out []Product
	err := r.store.WithLock(ns.Storage(), productsDoc, func() error {
		current, err := r.List(ns)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			next = []Product{}
		}
		out = next
		return r.store.WriteJSON(ns.Storage(), productsDoc, next)
	})
	return out, err
}
