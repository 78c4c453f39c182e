package customers

import (
	"context"
	_ "embed"
)

const SubgraphName string = "customers"

//go:embed schema.graphql
var SDL string

const (
	TierPlatinum string = "PLATINUM"
	TierGold     string = "GOLD"
	TierSilver   string = "SILVER"
	TierBronze   string = "BRONZE"
)

// TierFor maps a loyalty points balance to its tier
func TierFor(points int) string {
	switch {
	case points >= 5000:
		return TierPlatinum
	case points >= 2500:
		return TierGold
	case points >= 1000:
		return TierSilver
	default:
		return TierBronze
	}
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Customer struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         *string  `json:"phone"`
	Address       *Address `json:"address"`
	Tier          string   `json:"tier"`
	LoyaltyPoints int      `json:"loyaltyPoints"`
}

func (c Customer) clone() Customer {
	if c.Phone != nil {
		phone := *c.Phone
		c.Phone = &phone
	}
	if c.Address != nil {
		address := *c.Address
		c.Address = &address
	}
	return c
}

// Store is the entity store of the customers subgraph. Lookups by key return
// an error that matches errors.ErrNotFound when the key is unknown.
type Store interface {
	GetAll(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	FindByTier(ctx context.Context, tier string) ([]Customer, error)
	SearchByName(ctx context.Context, query string) ([]Customer, error)
	// Update applies fn to the customer as one atomic read-modify-write
	Update(ctx context.Context, id string, fn func(*Customer)) (Customer, error)
}
