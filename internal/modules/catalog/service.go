package catalog

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Service defines catalog business logic.
type Service interface {
	ListProducts(ctx context.Context, ns tenant.Namespace) ([]Product, error)
	// ReplaceProducts stores the whole catalog at once.
	ReplaceProducts(ctx context.Context, ns tenant.Namespace, in []ProductInput) ([]Product, error)
	CreateProduct(ctx context.Context, ns tenant.Namespace, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, ns tenant.Namespace, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, ns tenant.Namespace, id string) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) Service {
	return &service{repo: repo, validate: validator.New(), log: log}
}

func newID() string { return "prod_" + uuid.NewString() }

func (s *service) ListProducts(ctx context.Context, ns tenant.Namespace) ([]Product, error) {
	return s.repo.List(ns)
}

func (s *service) ReplaceProducts(ctx context.Context, ns tenant.Namespace, in []ProductInput) ([]Product, error) {
	for i := range in {
		if err := s.validate.Struct(in[i]); err != nil {
			return nil, apperr.FromValidation(err)
		}
	}
	out, err := s.repo.Update(ns, func(current []Product) ([]Product, error) {
		// only ids already in the catalog are kept; anything else is minted
		issued := make(map[string]bool, len(current))
		for _, p := range current {
			issued[p.ID] = true
		}
		seen := make(map[string]bool, len(in))
		products := make([]Product, 0, len(in))
		for _, p := range in {
			id := p.ID
			if !issued[id] || seen[id] {
				id = newID()
			}
			seen[id] = true
			products = append(products, fromInput(id, p))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tenant": ns.TenantID(), "count": len(out)}).Info("catalog replaced")
	return out, nil
}

func (s *service) CreateProduct(ctx context.Context, ns tenant.Namespace, in ProductInput) (*Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidation(err)
	}
	p := fromInput(newID(), in)
	if _, err := s.repo.Update(ns, func(products []Product) ([]Product, error) {
		return append(products, p), nil
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) UpdateProduct(ctx context.Context, ns tenant.Namespace, id string, in ProductInput) (*Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidation(err)
	}
	p := fromInput(id, in)
	if _, err := s.repo.Update(ns, func(products []Product) ([]Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, apperr.NotFound("product not found")
		}
		products[i] = p
		return products, nil
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) DeleteProduct(ctx context.Context, ns tenant.Namespace, id string) error {
	_, err := s.repo.Update(ns, func(products []Product) ([]Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, apperr.NotFound("product not found")
		}
		return append(products[:i], products[i+1:]...), nil
	})
	return err
}

func fromInput(id string, in ProductInput) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
	}
}

func indexOf(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
