package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns string = `id, name, email, phone, address, tier, loyalty_points`

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the customers table if needed and seeds it when
// it is empty.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	err := database.Migrate(ctx, pool, `
		CREATE TABLE IF NOT EXISTS customers (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			email          TEXT NOT NULL,
			phone          TEXT NULL,
			address        JSONB NULL,
			tier           TEXT NOT NULL,
			loyalty_points BIGINT NOT NULL
		);`,
	)
	if err != nil {
		return nil, err
	}

	s := &postgresStore{pool: pool}

	var count int
	err = pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		logging.GetFromContext(ctx).Info("seeding customers table")

		err = database.InTx(ctx, pool, func(tx pgx.Tx) error {
			for _, c := range Seed() {
				if err := insert(ctx, tx, c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *postgresStore) GetAll(ctx context.Context) ([]Customer, error) {
	return s.query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY length(id), id`)
}

func (s *postgresStore) GetByID(ctx context.Context, id string) (Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
	return scanOne(row, id)
}

func (s *postgresStore) FindByTier(ctx context.Context, tier string) ([]Customer, error) {
	return s.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE upper(tier)=upper($1) ORDER BY length(id), id`, tier)
}

func (s *postgresStore) SearchByName(ctx context.Context, query string) ([]Customer, error) {
	return s.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE strpos(lower(name), lower($1)) > 0 ORDER BY length(id), id`, query)
}

func (s *postgresStore) Update(ctx context.Context, id string, fn func(*Customer)) (Customer, error) {
	var updated Customer

	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1 FOR UPDATE`, id)

		c, err := scanOne(row, id)
		if err != nil {
			return err
		}

		fn(&c)

		address, err := json.Marshal(c.Address)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE customers SET name=$2, email=$3, phone=$4, address=$5, tier=$6, loyalty_points=$7 WHERE id=$1`,
			id, c.Name, c.Email, c.Phone, address, c.Tier, c.LoyaltyPoints,
		)
		if err != nil {
			return err
		}

		updated = c
		return nil
	})

	return updated, err
}

func (s *postgresStore) query(ctx context.Context, sql string, args ...any) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Customer, 0)

	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func insert(ctx context.Context, tx pgx.Tx, c Customer) error {
	address, err := json.Marshal(c.Address)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Name, c.Email, c.Phone, address, c.Tier, c.LoyaltyPoints,
	)

	return err
}

func scan(row pgx.Row) (Customer, error) {
	var c Customer
	var address []byte

	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &address, &c.Tier, &c.LoyaltyPoints)
	if err != nil {
		return Customer{}, err
	}

	if len(address) > 0 && string(address) != "null" {
		c.Address = &Address{}
		if err := json.Unmarshal(address, c.Address); err != nil {
			return Customer{}, err
		}
	}

	return c, nil
}

func scanOne(row pgx.Row, id string) (Customer, error) {
	c, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, fedErrors.NewNotFoundError(fmt.Sprintf("customer %s not found", id))
	}
	return c, err
}
