package orders

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/errors"
)

const SubgraphName string = "orders"

//go:embed schema.graphql
var SDL string

const (
	StatusPending    string = "PENDING"
	StatusProcessing string = "PROCESSING"
	StatusShipped    string = "SHIPPED"
	StatusDelivered  string = "DELIVERED"
	StatusCancelled  string = "CANCELLED"
)

var statuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts any known status regardless of case and returns it in
// its canonical upper case form.
func ParseStatus(s string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(s))
	if !slices.Contains(statuses, status) {
		return "", errors.NewValidationError(fmt.Sprintf("unknown order status %q, expected one of %s", s, strings.Join(statuses, ", ")))
	}
	return status, nil
}

// OrderNumber formats the sequence number of an order as its key
func OrderNumber(seq int) string {
	return fmt.Sprintf("ORD-%03d", seq)
}

type Item struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID          string
	CustomerID  string
	Items       []Item
	TotalAmount float64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Total is the sum of price times quantity over all items
func Total(items []Item) float64 {
	total := 0.0
	for _, i := range items {
		total += i.Price * float64(i.Quantity)
	}
	return total
}

func (o Order) clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (o Order) ContainsProduct(productID string) bool {
	return slices.ContainsFunc(o.Items, func(i Item) bool { return i.ProductID == productID })
}

// MarshalJSON renders the order with stubs for the customer and the products,
// which are entities owned by other subgraphs.
func (o Order) MarshalJSON() ([]byte, error) {
	type item struct {
		ProductID string          `json:"productId"`
		Product   federation.Stub `json:"product"`
		Quantity  int             `json:"quantity"`
		Price     float64         `json:"price"`
	}

	items := make([]item, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, item{
			ProductID: i.ProductID,
			Product:   federation.NewStub(federation.NewKey("Product", "id", i.ProductID)),
			Quantity:  i.Quantity,
			Price:     i.Price,
		})
	}

	return json.Marshal(struct {
		ID          string          `json:"id"`
		CustomerID  string          `json:"customerId"`
		Customer    federation.Stub `json:"customer"`
		Items       []item          `json:"items"`
		TotalAmount float64         `json:"totalAmount"`
		Status      string          `json:"status"`
		CreatedAt   string          `json:"createdAt"`
		UpdatedAt   string          `json:"updatedAt"`
	}{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Customer:    federation.NewStub(federation.NewKey("Customer", "id", o.CustomerID)),
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// Store is the entity store of the orders subgraph
type Store interface {
	GetAll(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]Order, error)
	// FindByProductID scans every item of every order
	FindByProductID(ctx context.Context, productID string) ([]Order, error)
	FindByStatus(ctx context.Context, status string) ([]Order, error)
	// FindRecent returns at most limit orders, newest first
	FindRecent(ctx context.Context, limit int) ([]Order, error)
	// Create stores a new pending order under the next order number
	Create(ctx context.Context, customerID string, items []Item) (Order, error)
	// Update applies fn atomically and bumps the update timestamp
	Update(ctx context.Context, id string, fn func(*Order)) (Order, error)
}

// Seed returns the orders every store starts out with, with timestamps
// relative to now.
func Seed(now time.Time) []Order {
	day := 24 * time.Hour

	return []Order{
		{
			ID: "ORD-001", CustomerID: "1",
			Items:       []Item{{ProductID: "1", Quantity: 1, Price: 1299.99}, {ProductID: "2", Quantity: 2, Price: 29.99}},
			TotalAmount: 1359.97, Status: StatusDelivered,
			CreatedAt: now.Add(-30 * day), UpdatedAt: now.Add(-25 * day),
		},
		{
			ID: "ORD-002", CustomerID: "2",
			Items:       []Item{{ProductID: "4", Quantity: 1, Price: 249.99}, {ProductID: "5", Quantity: 1, Price: 599.99}},
			TotalAmount: 849.98, Status: StatusDelivered,
			CreatedAt: now.Add(-20 * day), UpdatedAt: now.Add(-15 * day),
		},
		{
			ID: "ORD-003", CustomerID: "1",
			Items:       []Item{{ProductID: "6", Quantity: 2, Price: 349.99}},
			TotalAmount: 699.98, Status: StatusShipped,
			CreatedAt: now.Add(-5 * day), UpdatedAt: now.Add(-2 * day),
		},
		{
			ID: "ORD-004", CustomerID: "3",
			Items:       []Item{{ProductID: "3", Quantity: 1, Price: 149.99}, {ProductID: "7", Quantity: 3, Price: 79.99}},
			TotalAmount: 389.96, Status: StatusProcessing,
			CreatedAt: now.Add(-2 * day), UpdatedAt: now.Add(-2 * day),
		},
		{
			ID: "ORD-005", CustomerID: "2",
			Items:       []Item{{ProductID: "8", Quantity: 2, Price: 45.99}},
			TotalAmount: 91.98, Status: StatusPending,
			CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now.Add(-5 * time.Hour),
		},
	}
}

// SortRecent orders newest first, breaking ties on the order id
func SortRecent(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
