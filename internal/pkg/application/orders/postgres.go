package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns string = `id, customer_id, items, total_amount, status, created_at, updated_at`

type postgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates the orders table and the order number sequence.
// The table is seeded, and the sequence moved past the seed, only when the
// table is empty.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, now func() time.Time) (Store, error) {
	if now == nil {
		now = time.Now
	}

	err := database.Migrate(ctx, pool,
		`CREATE TABLE IF NOT EXISTS orders (
			id           TEXT PRIMARY KEY,
			customer_id  TEXT NOT NULL,
			items        JSONB NOT NULL,
			total_amount DOUBLE PRECISION NOT NULL,
			status       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders (customer_id);`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq START 1;`,
	)
	if err != nil {
		return nil, err
	}

	s := &postgresStore{pool: pool, now: now}

	var count int
	err = pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&count)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		logging.GetFromContext(ctx).Info("seeding orders table")

		seed := Seed(now())

		err = database.InTx(ctx, pool, func(tx pgx.Tx) error {
			for _, o := range seed {
				if err := insert(ctx, tx, o); err != nil {
					return err
				}
			}
			_, err := tx.Exec(ctx, `SELECT setval('order_number_seq', $1)`, len(seed))
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *postgresStore) GetAll(ctx context.Context) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (s *postgresStore) GetByID(ctx context.Context, id string) (Order, error) {
	return scanOne(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id), id)
}

func (s *postgresStore) FindByCustomerID(ctx context.Context, customerID string) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY id`, customerID)
}

func (s *postgresStore) FindByProductID(ctx context.Context, productID string) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE items @> jsonb_build_array(jsonb_build_object('productId', $1::text)) ORDER BY id`, productID)
}

func (s *postgresStore) FindByStatus(ctx context.Context, status string) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE upper(status)=upper($1) ORDER BY id`, status)
}

func (s *postgresStore) FindRecent(ctx context.Context, limit int) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id ASC LIMIT $1`, limit)
}

func (s *postgresStore) Create(ctx context.Context, customerID string, items []Item) (Order, error) {
	now := s.now()

	o := Order{
		CustomerID:  customerID,
		Items:       items,
		TotalAmount: Total(items),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var seq int
		if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
			return err
		}

		o.ID = OrderNumber(seq)
		return insert(ctx, tx, o)
	})
	if err != nil {
		return Order{}, err
	}

	return o, nil
}

func (s *postgresStore) Update(ctx context.Context, id string, fn func(*Order)) (Order, error) {
	var updated Order

	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := scanOne(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id), id)
		if err != nil {
			return err
		}

		fn(&o)
		o.UpdatedAt = s.now()

		items, err := json.Marshal(o.Items)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET customer_id=$2, items=$3, total_amount=$4, status=$5, updated_at=$6 WHERE id=$1`,
			id, o.CustomerID, items, o.TotalAmount, o.Status, o.UpdatedAt,
		)
		if err != nil {
			return err
		}

		updated = o
		return nil
	})

	return updated, err
}

func (s *postgresStore) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Order, error) {
		return scan(row)
	})
}

func insert(ctx context.Context, tx pgx.Tx, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.CustomerID, items, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt,
	)

	return err
}

func scan(row pgx.Row) (Order, error) {
	var o Order
	var items []byte

	err := row.Scan(&o.ID, &o.CustomerID, &items, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	err = json.Unmarshal(items, &o.Items)
	if err != nil {
		return Order{}, fmt.Errorf("failed to unmarshal items of order %s: %w", o.ID, err)
	}

	return o, nil
}

func scanOne(row pgx.Row, id string) (Order, error) {
	o, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fedErrors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	return o, err
}
