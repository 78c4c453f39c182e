package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/memstore"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

func phone(p string) *string { return &p }

// Seed returns the customers every store starts out with
func Seed() []Customer {
	return []Customer{
		{
			ID: "1", Name: "Alice Johnson", Email: "alice.johnson@email.com", Phone: phone("+1-555-0101"),
			Address: &Address{Street: "123 Main St", City: "Seattle", State: "WA", ZipCode: "98101", Country: "USA"},
			Tier:    TierGold, LoyaltyPoints: 2500,
		},
		{
			ID: "2", Name: "Bob Smith", Email: "bob.smith@email.com", Phone: phone("+1-555-0102"),
			Address: &Address{Street: "456 Oak Ave", City: "Portland", State: "OR", ZipCode: "97201", Country: "USA"},
			Tier:    TierPlatinum, LoyaltyPoints: 5000,
		},
		{
			ID: "3", Name: "Carol Davis", Email: "carol.davis@email.com", Phone: phone("+1-555-0103"),
			Address: &Address{Street: "789 Pine Rd", City: "San Francisco", State: "CA", ZipCode: "94102", Country: "USA"},
			Tier:    TierSilver, LoyaltyPoints: 1200,
		},
		{
			ID: "4", Name: "David Wilson", Email: "david.wilson@email.com", Phone: phone("+1-555-0104"),
			Address: &Address{Street: "321 Elm St", City: "Los Angeles", State: "CA", ZipCode: "90001", Country: "USA"},
			Tier:    TierBronze, LoyaltyPoints: 500,
		},
		{
			ID: "5", Name: "Emma Martinez", Email: "emma.martinez@email.com", Phone: phone("+1-555-0105"),
			Address: &Address{Street: "654 Maple Dr", City: "Austin", State: "TX", ZipCode: "78701", Country: "USA"},
			Tier:    TierGold, LoyaltyPoints: 3200,
		},
	}
}

type memoryStore struct {
	customers *memstore.Table[Customer]
}

// NewMemoryStore creates an in-memory store with the given customers, or the
// default seed when none are given.
func NewMemoryStore(seed ...Customer) Store {
	if len(seed) == 0 {
		seed = Seed()
	}

	return &memoryStore{
		customers: memstore.NewTable(
			func(c Customer) string { return c.ID },
			Customer.clone,
			seed...,
		),
	}
}

func (s *memoryStore) GetAll(ctx context.Context) ([]Customer, error) {
	logging.GetFromContext(ctx).Debug("fetching all customers")
	return s.customers.All(), nil
}

func (s *memoryStore) GetByID(ctx context.Context, id string) (Customer, error) {
	logging.GetFromContext(ctx).Debug("fetching customer", "id", id)

	c, ok := s.customers.Get(id)
	if !ok {
		return Customer{}, errors.NewNotFoundError(fmt.Sprintf("customer %s not found", id))
	}

	return c, nil
}

func (s *memoryStore) FindByTier(ctx context.Context, tier string) ([]Customer, error) {
	logging.GetFromContext(ctx).Debug("fetching customers by tier", "tier", tier)

	return s.customers.Filter(func(c Customer) bool {
		return strings.EqualFold(c.Tier, tier)
	}), nil
}

func (s *memoryStore) SearchByName(ctx context.Context, query string) ([]Customer, error) {
	logging.GetFromContext(ctx).Debug("searching customers by name", "query", query)

	q := strings.ToLower(query)
	return s.customers.Filter(func(c Customer) bool {
		return strings.Contains(strings.ToLower(c.Name), q)
	}), nil
}

func (s *memoryStore) Update(ctx context.Context, id string, fn func(*Customer)) (Customer, error) {
	logging.GetFromContext(ctx).Debug("updating customer", "id", id)

	c, ok := s.customers.Update(id, fn)
	if !ok {
		return Customer{}, errors.NewNotFoundError(fmt.Sprintf("customer %s not found", id))
	}

	return c, nil
}
