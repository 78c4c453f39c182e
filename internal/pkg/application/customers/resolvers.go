package customers

import (
	"context"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// NewSubgraph binds the customers schema to resolvers backed by the store
func NewSubgraph(store Store) (subgraph.Subgraph, error) {
	r := &resolvers{store: store}

	return subgraph.New(SubgraphName, SDL,
		subgraph.Query("customers", r.customers),
		subgraph.Query("customer", r.customer),
		subgraph.Query("customersByTier", r.customersByTier),
		subgraph.Query("searchCustomers", r.searchCustomers),
		subgraph.Mutation("updateLoyaltyPoints", r.updateLoyaltyPoints),
		subgraph.Mutation("updateCustomerProfile", r.updateCustomerProfile),
		subgraph.Reference("Customer", r.reference),
	)
}

type resolvers struct {
	store Store
}

func (r *resolvers) customers(ctx context.Context, _ subgraph.Arguments) (any, error) {
	return r.store.GetAll(ctx)
}

func (r *resolvers) customer(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("id")
	if err != nil {
		return nil, err
	}

	return r.store.GetByID(ctx, id)
}

func (r *resolvers) customersByTier(ctx context.Context, args subgraph.Arguments) (any, error) {
	tier, err := args.String("tier")
	if err != nil {
		return nil, err
	}

	return r.store.FindByTier(ctx, tier)
}

func (r *resolvers) searchCustomers(ctx context.Context, args subgraph.Arguments) (any, error) {
	query, err := args.String("query")
	if err != nil {
		return nil, err
	}

	return r.store.SearchByName(ctx, query)
}

// updateLoyaltyPoints adds a delta, which may be negative, and always
// recomputes the tier from the new balance.
func (r *resolvers) updateLoyaltyPoints(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("customerId")
	if err != nil {
		return nil, err
	}

	delta, err := args.Int("points")
	if err != nil {
		return nil, err
	}

	c, err := r.store.Update(ctx, id, func(c *Customer) {
		c.LoyaltyPoints += delta
		c.Tier = TierFor(c.LoyaltyPoints)
	})
	if err != nil {
		return nil, err
	}

	logging.GetFromContext(ctx).Info("loyalty points updated", "customer", id, "points", c.LoyaltyPoints, "tier", c.Tier)

	return c, nil
}

// updateCustomerProfile leaves name and email unchanged when they are omitted
// or null. An omitted phone is also left unchanged, while an explicit null
// clears it.
func (r *resolvers) updateCustomerProfile(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("customerId")
	if err != nil {
		return nil, err
	}

	name, err := args.OptionalString("name")
	if err != nil {
		return nil, err
	}

	email, err := args.OptionalString("email")
	if err != nil {
		return nil, err
	}

	phone, err := args.OptionalString("phone")
	if err != nil {
		return nil, err
	}

	return r.store.Update(ctx, id, func(c *Customer) {
		c.Name = name.OrElse(c.Name)
		c.Email = email.OrElse(c.Email)

		if p, ok := phone.Get(); ok {
			c.Phone = &p
		} else if phone.IsNull() {
			c.Phone = nil
		}
	})
}

func (r *resolvers) reference(ctx context.Context, key federation.Key) (federation.Entity, error) {
	c, err := r.store.GetByID(ctx, key.Value)
	if err != nil {
		return nil, err
	}

	return federation.NewFull(key, c), nil
}
