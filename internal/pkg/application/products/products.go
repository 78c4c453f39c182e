package products

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/memstore"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const SubgraphName string = "products"

//go:embed schema.graphql
var SDL string

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	SKU      string  `json:"sku"`
}

type Store interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	FindByCategory(ctx context.Context, category string) ([]Product, error)
	FindUnderPrice(ctx context.Context, maxPrice float64) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	Update(ctx context.Context, id string, fn func(*Product)) (Product, error)
}

func Seed() []Product {
	return []Product{
		{ID: "1", Name: "Laptop Pro", Category: "Electronics", Price: 1299.99, Stock: 15, SKU: "ELEC-001"},
		{ID: "2", Name: "Wireless Mouse", Category: "Electronics", Price: 29.99, Stock: 150, SKU: "ELEC-002"},
		{ID: "3", Name: "Mechanical Keyboard", Category: "Electronics", Price: 149.99, Stock: 45, SKU: "ELEC-003"},
		{ID: "4", Name: "Desk Chair", Category: "Furniture", Price: 249.99, Stock: 8, SKU: "FURN-001"},
		{ID: "5", Name: "Standing Desk", Category: "Furniture", Price: 599.99, Stock: 5, SKU: "FURN-002"},
		{ID: "6", Name: `Monitor 27"`, Category: "Electronics", Price: 349.99, Stock: 22, SKU: "ELEC-004"},
		{ID: "7", Name: "USB-C Hub", Category: "Electronics", Price: 79.99, Stock: 88, SKU: "ELEC-005"},
		{ID: "8", Name: "Desk Lamp", Category: "Furniture", Price: 45.99, Stock: 35, SKU: "FURN-003"},
	}
}

type memoryStore struct {
	products *memstore.Table[Product]
}

func NewMemoryStore(seed ...Product) Store {
	if len(seed) == 0 {
		seed = Seed()
	}

	return &memoryStore{
		products: memstore.NewTable(
			func(p Product) string { return p.ID },
			func(p Product) Product { return p },
			seed...,
		),
	}
}

func (s *memoryStore) GetAll(ctx context.Context) ([]Product, error) {
	logging.GetFromContext(ctx).Debug("fetching all products")
	return s.products.All(), nil
}

func (s *memoryStore) GetByID(ctx context.Context, id string) (Product, error) {
	logging.GetFromContext(ctx).Debug("fetching product", "id", id)

	p, ok := s.products.Get(id)
	if !ok {
		return Product{}, errors.NewNotFoundError(fmt.Sprintf("product %s not found", id))
	}

	return p, nil
}

func (s *memoryStore) FindByCategory(ctx context.Context, category string) ([]Product, error) {
	logging.GetFromContext(ctx).Debug("fetching products by category", "category", category)

	return s.products.Filter(func(p Product) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

func (s *memoryStore) FindUnderPrice(ctx context.Context, maxPrice float64) ([]Product, error) {
	logging.GetFromContext(ctx).Debug("fetching products under price", "maxPrice", maxPrice)

	return s.products.Filter(func(p Product) bool {
		return p.Price <= maxPrice
	}), nil
}

// Search matches the query as a case insensitive substring of the name, the
// category or the sku. It is a linear scan.
func (s *memoryStore) Search(ctx context.Context, query string) ([]Product, error) {
	logging.GetFromContext(ctx).Debug("searching products", "query", query)

	q := strings.ToLower(query)
	return s.products.Filter(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.SKU), q)
	}), nil
}

func (s *memoryStore) Update(ctx context.Context, id string, fn func(*Product)) (Product, error) {
	logging.GetFromContext(ctx).Debug("updating product", "id", id)

	p, ok := s.products.Update(id, fn)
	if !ok {
		return Product{}, errors.NewNotFoundError(fmt.Sprintf("product %s not found", id))
	}

	return p, nil
}
