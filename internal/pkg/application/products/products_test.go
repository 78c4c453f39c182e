package products

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

func names(products []Product) []string {
	result := []string{}
	for _, p := range products {
		result = append(result, p.Name)
	}
	return result
}

func TestSearchMatchesNameSubstringIgnoringCase(t *testing.T) {
	is := is.New(t)
	store := NewMemoryStore()

	found, err := store.Search(context.Background(), "desk")
	is.NoErr(err)

	is.Equal(names(found), []string{"Desk Chair", "Standing Desk", "Desk Lamp"})
}

func TestSearchAlsoMatchesCategoryAndSKU(t *testing.T) {
	is := is.New(t)
	store := NewMemoryStore()

	found, err := store.Search(context.Background(), "furn-00")
	is.NoErr(err)
	is.Equal(len(found), 3)

	found, err = store.Search(context.Background(), "ELECTRONICS")
	is.NoErr(err)
	is.Equal(len(found), 5)
}

func TestFindByCategoryIsCaseInsensitive(t *testing.T) {
	is := is.New(t)
	store := NewMemoryStore()

	lower, _ := store.FindByCategory(context.Background(), "furniture")
	upper, _ := store.FindByCategory(context.Background(), "FURNITURE")

	is.Equal(lower, upper)
	is.Equal(len(lower), 3)
}

func TestFindUnderPriceIncludesTheLimit(t *testing.T) {
	is := is.New(t)
	store := NewMemoryStore()

	found, err := store.FindUnderPrice(context.Background(), 79.99)
	is.NoErr(err)
	is.Equal(names(found), []string{"Wireless Mouse", "USB-C Hub", "Desk Lamp"})
}

func TestUpdateStockHasNoLowerBound(t *testing.T) {
	is := is.New(t)

	sg, err := NewSubgraph(NewMemoryStore())
	is.NoErr(err)

	a, _ := subgraph.NewArguments(map[string]any{"productId": "5", "quantity": -7})
	result, err := sg.Execute(context.Background(), federation.Mutation, "updateStock", a)
	is.NoErr(err)
	is.Equal(result.(Product).Stock, -2)
}

func TestUpdateStockOnUnknownProductIsNull(t *testing.T) {
	is := is.New(t)

	sg, err := NewSubgraph(NewMemoryStore())
	is.NoErr(err)

	a, _ := subgraph.NewArguments(map[string]any{"productId": "99", "quantity": 1})
	result, err := sg.Execute(context.Background(), federation.Mutation, "updateStock", a)
	is.NoErr(err)
	is.True(result == nil)
}

func TestProductsUnderPriceRequiresANumber(t *testing.T) {
	is := is.New(t)

	sg, err := NewSubgraph(NewMemoryStore())
	is.NoErr(err)

	a, _ := subgraph.NewArguments(map[string]any{"maxPrice": "cheap"})
	_, err = sg.Execute(context.Background(), federation.Query, "productsUnderPrice", a)
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestReferenceToProductIsHydrated(t *testing.T) {
	is := is.New(t)

	sg, err := NewSubgraph(NewMemoryStore())
	is.NoErr(err)

	for _, p := range Seed() {
		e, err := sg.ResolveReference(context.Background(), "Product", p.ID)
		is.NoErr(err)
		is.Equal(e.Key().Value, p.ID)
		is.Equal(e.(federation.Full).Record(), p)
	}
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST is not set")
	}

	is := is.New(t)
	ctx := context.Background()

	pool, err := database.Connect(ctx, database.LoadConfiguration(ctx))
	is.NoErr(err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS products`)
	is.NoErr(err)

	store, err := NewPostgresStore(ctx, pool)
	is.NoErr(err)

	found, err := store.Search(ctx, "desk")
	is.NoErr(err)
	is.Equal(names(found), []string{"Desk Chair", "Standing Desk", "Desk Lamp"})

	p, err := store.Update(ctx, "1", func(p *Product) { p.Stock -= 20 })
	is.NoErr(err)
	is.Equal(p.Stock, -5)

	_, err = store.GetByID(ctx, "99")
	is.True(errors.Is(err, fedErrors.ErrNotFound))
}
