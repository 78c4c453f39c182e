package customers

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

func TestPostgresStore(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST is not set")
	}

	is := is.New(t)
	ctx := context.Background()

	pool, err := database.Connect(ctx, database.LoadConfiguration(ctx))
	is.NoErr(err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS customers`)
	is.NoErr(err)

	store, err := NewPostgresStore(ctx, pool)
	is.NoErr(err)

	all, err := store.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(all), 5)
	is.Equal(all[2].Address.City, "San Francisco")

	gold, err := store.FindByTier(ctx, "gold")
	is.NoErr(err)
	is.Equal(len(gold), 2)

	found, err := store.SearchByName(ctx, "smith")
	is.NoErr(err)
	is.Equal(found[0].ID, "2")

	c, err := store.Update(ctx, "1", func(c *Customer) {
		c.LoyaltyPoints += 2500
		c.Tier = TierFor(c.LoyaltyPoints)
	})
	is.NoErr(err)
	is.Equal(c.Tier, TierPlatinum)

	_, err = store.Update(ctx, "42", func(c *Customer) {})
	is.True(errors.Is(err, fedErrors.ErrNotFound))
}
