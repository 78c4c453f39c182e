package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/memstore"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

type memoryStore struct {
	orders *memstore.Table[Order]
	now    func() time.Time
}

// NewMemoryStore creates an in-memory store that reads the time from now. When
// no seed is given the default orders are created relative to the current time.
func NewMemoryStore(now func() time.Time, seed ...Order) Store {
	if now == nil {
		now = time.Now
	}

	if len(seed) == 0 {
		seed = Seed(now())
	}

	return &memoryStore{
		orders: memstore.NewTable(
			func(o Order) string { return o.ID },
			Order.clone,
			seed...,
		),
		now: now,
	}
}

func (s *memoryStore) GetAll(ctx context.Context) ([]Order, error) {
	logging.GetFromContext(ctx).Debug("fetching all orders")
	return s.orders.All(), nil
}

func (s *memoryStore) GetByID(ctx context.Context, id string) (Order, error) {
	logging.GetFromContext(ctx).Debug("fetching order", "id", id)

	o, ok := s.orders.Get(id)
	if !ok {
		return Order{}, errors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}

	return o, nil
}

func (s *memoryStore) FindByCustomerID(ctx context.Context, customerID string) ([]Order, error) {
	logging.GetFromContext(ctx).Debug("fetching orders for customer", "customer", customerID)

	return s.orders.Filter(func(o Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (s *memoryStore) FindByProductID(ctx context.Context, productID string) ([]Order, error) {
	logging.GetFromContext(ctx).Debug("fetching orders for product", "product", productID)

	return s.orders.Filter(func(o Order) bool {
		return o.ContainsProduct(productID)
	}), nil
}

func (s *memoryStore) FindByStatus(ctx context.Context, status string) ([]Order, error) {
	logging.GetFromContext(ctx).Debug("fetching orders by status", "status", status)

	return s.orders.Filter(func(o Order) bool {
		return strings.EqualFold(o.Status, status)
	}), nil
}

func (s *memoryStore) FindRecent(ctx context.Context, limit int) ([]Order, error) {
	logging.GetFromContext(ctx).Debug("fetching recent orders", "limit", limit)

	all := s.orders.All()
	SortRecent(all)

	limit = max(limit, 0)
	if limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

func (s *memoryStore) Create(ctx context.Context, customerID string, items []Item) (Order, error) {
	now := s.now()

	o, ok := s.orders.Insert(func(seq int) Order {
		return Order{
			ID:          OrderNumber(seq),
			CustomerID:  customerID,
			Items:       items,
			TotalAmount: Total(items),
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	})
	if !ok {
		return Order{}, fmt.Errorf("order number collision when creating order for customer %s (%w)", customerID, errors.ErrInternal)
	}

	logging.GetFromContext(ctx).Info("order created", "id", o.ID, "customer", customerID, "total", o.TotalAmount)

	return o, nil
}

func (s *memoryStore) Update(ctx context.Context, id string, fn func(*Order)) (Order, error) {
	logging.GetFromContext(ctx).Debug("updating order", "id", id)

	now := s.now()

	o, ok := s.orders.Update(id, func(o *Order) {
		fn(o)
		o.UpdatedAt = now
	})
	if !ok {
		return Order{}, errors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}

	return o, nil
}
