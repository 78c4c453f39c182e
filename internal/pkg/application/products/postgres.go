package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productColumns string = `id, name, category, price, stock, sku`
	orderByID      string = ` ORDER BY length(id), id`
)

type postgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	err := database.Migrate(ctx, pool, `
		CREATE TABLE IF NOT EXISTS products (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			category TEXT NOT NULL,
			price    DOUBLE PRECISION NOT NULL,
			stock    BIGINT NOT NULL,
			sku      TEXT NOT NULL
		);`,
	)
	if err != nil {
		return nil, err
	}

	err = database.InTx(ctx, pool, func(tx pgx.Tx) error {
		for _, p := range Seed() {
			_, err := tx.Exec(ctx,
				`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
				p.ID, p.Name, p.Category, p.Price, p.Stock, p.SKU,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) GetAll(ctx context.Context) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products`+orderByID)
}

func (s *postgresStore) GetByID(ctx context.Context, id string) (Product, error) {
	return scanOne(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id), id)
}

func (s *postgresStore) FindByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE lower(category)=lower($1)`+orderByID, category)
}

func (s *postgresStore) FindUnderPrice(ctx context.Context, maxPrice float64) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE price <= $1`+orderByID, maxPrice)
}

func (s *postgresStore) Search(ctx context.Context, query string) ([]Product, error) {
	return s.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE strpos(lower(name), lower($1)) > 0
		   OR strpos(lower(category), lower($1)) > 0
		   OR strpos(lower(sku), lower($1)) > 0`+orderByID, query)
}

func (s *postgresStore) Update(ctx context.Context, id string, fn func(*Product)) (Product, error) {
	var updated Product

	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		p, err := scanOne(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id), id)
		if err != nil {
			return err
		}

		fn(&p)

		_, err = tx.Exec(ctx,
			`UPDATE products SET name=$2, category=$3, price=$4, stock=$5, sku=$6 WHERE id=$1`,
			id, p.Name, p.Category, p.Price, p.Stock, p.SKU,
		)
		if err != nil {
			return err
		}

		updated = p
		return nil
	})

	return updated, err
}

func (s *postgresStore) query(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scan(row)
	})
}

func scan(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.SKU)
	return p, err
}

func scanOne(row pgx.Row, id string) (Product, error) {
	p, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fedErrors.NewNotFoundError(fmt.Sprintf("product %s not found", id))
	}
	return p, err
}
