package orders

import (
	"context"
	"fmt"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const DefaultRecentOrdersLimit int = 10

// NewSubgraph binds the orders schema to resolvers backed by the store. Customer
// and Product are only referenced here, so they resolve to stubs that carry
// nothing but their key.
func NewSubgraph(store Store) (subgraph.Subgraph, error) {
	r := &resolvers{store: store}

	return subgraph.New(SubgraphName, SDL,
		subgraph.Query("orders", r.orders),
		subgraph.Query("order", r.order),
		subgraph.Query("ordersByStatus", r.ordersByStatus),
		subgraph.Query("recentOrders", r.recentOrders),
		subgraph.Mutation("updateOrderStatus", r.updateOrderStatus),
		subgraph.Mutation("createOrder", r.createOrder),
		subgraph.Reference("Order", r.reference),
		subgraph.Extension("Customer", "orders", r.ordersForCustomer),
		subgraph.Extension("Product", "orders", r.ordersForProduct),
	)
}

type resolvers struct {
	store Store
}

func (r *resolvers) orders(ctx context.Context, _ subgraph.Arguments) (any, error) {
	return r.store.GetAll(ctx)
}

func (r *resolvers) order(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("id")
	if err != nil {
		return nil, err
	}

	return r.store.GetByID(ctx, id)
}

func (r *resolvers) ordersByStatus(ctx context.Context, args subgraph.Arguments) (any, error) {
	status, err := args.String("status")
	if err != nil {
		return nil, err
	}

	return r.store.FindByStatus(ctx, status)
}

func (r *resolvers) recentOrders(ctx context.Context, args subgraph.Arguments) (any, error) {
	limit, err := args.OptionalInt("limit")
	if err != nil {
		return nil, err
	}

	n := limit.OrElse(DefaultRecentOrdersLimit)
	if n < 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("limit must not be negative, got %d", n))
	}

	return r.store.FindRecent(ctx, n)
}

func (r *resolvers) updateOrderStatus(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("orderId")
	if err != nil {
		return nil, err
	}

	s, err := args.String("status")
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(s)
	if err != nil {
		return nil, err
	}

	o, err := r.store.Update(ctx, id, func(o *Order) {
		o.Status = status
	})
	if err != nil {
		return nil, err
	}

	logging.GetFromContext(ctx).Info("order status updated", "id", id, "status", status)

	return o, nil
}

func (r *resolvers) createOrder(ctx context.Context, args subgraph.Arguments) (any, error) {
	customerID, err := args.ID("customerId")
	if err != nil {
		return nil, err
	}

	var items []Item
	err = args.Decode("items", &items)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, errors.NewValidationError("an order must have at least one item")
	}

	for idx, i := range items {
		if i.ProductID == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("item %d has no productId", idx))
		}
		if i.Quantity < 1 {
			return nil, errors.NewValidationError(fmt.Sprintf("item %d must have a quantity of at least 1", idx))
		}
		if i.Price < 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("item %d must not have a negative price", idx))
		}
	}

	return r.store.Create(ctx, customerID, items)
}

func (r *resolvers) reference(ctx context.Context, key federation.Key) (federation.Entity, error) {
	o, err := r.store.GetByID(ctx, key.Value)
	if err != nil {
		return nil, err
	}

	return federation.NewFull(key, o), nil
}

func (r *resolvers) ordersForCustomer(ctx context.Context, customer federation.Stub) (any, error) {
	return r.store.FindByCustomerID(ctx, customer.Key().Value)
}

func (r *resolvers) ordersForProduct(ctx context.Context, product federation.Stub) (any, error) {
	return r.store.FindByProductID(ctx, product.Key().Value)
}
