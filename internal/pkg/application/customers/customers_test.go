package customers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

func testSetup(t *testing.T, seed ...Customer) (context.Context, Store, subgraph.Subgraph) {
	store := NewMemoryStore(seed...)

	sg, err := NewSubgraph(store)
	if err != nil {
		t.Fatalf("failed to create customers subgraph: %s", err.Error())
	}

	return context.Background(), store, sg
}

func args(is *is.I, values map[string]any) subgraph.Arguments {
	a, err := subgraph.NewArguments(values)
	is.NoErr(err)
	return a
}

func TestTierThresholds(t *testing.T) {
	is := is.New(t)

	is.Equal(TierFor(-10), TierBronze)
	is.Equal(TierFor(999), TierBronze)
	is.Equal(TierFor(1000), TierSilver)
	is.Equal(TierFor(2499), TierSilver)
	is.Equal(TierFor(2500), TierGold)
	is.Equal(TierFor(4999), TierGold)
	is.Equal(TierFor(5000), TierPlatinum)
}

func TestSeededStore(t *testing.T) {
	is := is.New(t)
	ctx, store, _ := testSetup(t)

	all, err := store.GetAll(ctx)
	is.NoErr(err)
	is.Equal(len(all), 5)
	is.Equal(all[0].Name, "Alice Johnson")
	is.Equal(all[4].Name, "Emma Martinez")

	carol, err := store.GetByID(ctx, "3")
	is.NoErr(err)
	is.Equal(carol.Email, "carol.davis@email.com")
	is.Equal(carol.Address.City, "San Francisco")
}

func TestGetByUnknownIDIsNotFound(t *testing.T) {
	is := is.New(t)
	ctx, store, _ := testSetup(t)

	_, err := store.GetByID(ctx, "42")
	is.True(errors.Is(err, fedErrors.ErrNotFound))
}

func TestFindByTierIsCaseInsensitive(t *testing.T) {
	is := is.New(t)
	ctx, store, _ := testSetup(t)

	lower, err := store.FindByTier(ctx, "gold")
	is.NoErr(err)
	upper, err := store.FindByTier(ctx, "GOLD")
	is.NoErr(err)

	is.Equal(lower, upper)
	is.Equal(len(upper), 2)
	is.Equal(upper[0].ID, "1")
	is.Equal(upper[1].ID, "5")
}

func TestSearchByNameIsCaseInsensitiveSubstring(t *testing.T) {
	is := is.New(t)
	ctx, store, _ := testSetup(t)

	found, err := store.SearchByName(ctx, "SMI")
	is.NoErr(err)
	is.Equal(len(found), 1)
	is.Equal(found[0].Name, "Bob Smith")
}

func TestLoyaltyPointsCrossingThresholdsUpdateTier(t *testing.T) {
	is := is.New(t)

	ctx, _, sg := testSetup(t,
		Customer{ID: "10", Name: "Almost Gold", Tier: TierSilver, LoyaltyPoints: 2499},
		Customer{ID: "11", Name: "Almost Platinum", Tier: TierGold, LoyaltyPoints: 4999},
	)

	result, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "10", "points": 1}))
	is.NoErr(err)
	is.Equal(result.(Customer).Tier, TierGold)
	is.Equal(result.(Customer).LoyaltyPoints, 2500)

	result, err = sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "11", "points": 1}))
	is.NoErr(err)
	is.Equal(result.(Customer).Tier, TierPlatinum)
}

func TestLoyaltyPointsDeltaOfZeroKeepsTier(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		before, _ := sg.Execute(ctx, federation.Query, "customer", args(is, map[string]any{"id": id}))
		after, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": id, "points": 0}))
		is.NoErr(err)
		is.Equal(before.(Customer).Tier, after.(Customer).Tier)
	}
}

func TestNegativeLoyaltyPointsAreAllowed(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	result, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "4", "points": -600}))
	is.NoErr(err)
	is.Equal(result.(Customer).LoyaltyPoints, -100)
	is.Equal(result.(Customer).Tier, TierBronze)
}

func TestLoyaltyPointsOnUnknownCustomerIsNull(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	result, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "42", "points": 10}))
	is.NoErr(err)
	is.True(result == nil)
}

func TestLoyaltyPointsRequireAnInteger(t *testing.T) {
	is := is.New(t)
	ctx, store, sg := testSetup(t)

	_, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "1", "points": "many"}))
	is.True(errors.Is(err, fedErrors.ErrValidation))

	c, _ := store.GetByID(ctx, "1")
	is.Equal(c.LoyaltyPoints, 2500)
}

func TestLoyaltyPointsOutsideIntRangeAreRejected(t *testing.T) {
	is := is.New(t)
	ctx, store, sg := testSetup(t)

	_, err := sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", args(is, map[string]any{"customerId": "1", "points": 99999999999}))
	is.True(errors.Is(err, fedErrors.ErrValidation))

	c, _ := store.GetByID(ctx, "1")
	is.Equal(c.LoyaltyPoints, 2500)
	is.Equal(c.Tier, TierGold)
}

func TestConcurrentLoyaltyUpdatesAreNotLost(t *testing.T) {
	is := is.New(t)
	ctx, store, sg := testSetup(t)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, _ := subgraph.NewArguments(map[string]any{"customerId": "4", "points": 10})
			sg.Execute(ctx, federation.Mutation, "updateLoyaltyPoints", a)
		}()
	}
	wg.Wait()

	c, _ := store.GetByID(ctx, "4")
	is.Equal(c.LoyaltyPoints, 1000)
	is.Equal(c.Tier, TierSilver)
}

func TestProfileUpdateWithOnlyEmailKeepsNameAndPhone(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	result, err := sg.Execute(ctx, federation.Mutation, "updateCustomerProfile", args(is, map[string]any{
		"customerId": "3",
		"email":      "carol@example.com",
	}))
	is.NoErr(err)

	c := result.(Customer)
	is.Equal(c.Name, "Carol Davis")
	is.Equal(c.Email, "carol@example.com")
	is.Equal(*c.Phone, "+1-555-0103")
}

func TestProfileUpdateWithNullNameKeepsName(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	a := subgraph.Arguments{
		"customerId": json.RawMessage(`"3"`),
		"name":       json.RawMessage(`null`),
	}

	result, err := sg.Execute(ctx, federation.Mutation, "updateCustomerProfile", a)
	is.NoErr(err)
	is.Equal(result.(Customer).Name, "Carol Davis")
}

func TestProfileUpdateWithExplicitNullPhoneClearsIt(t *testing.T) {
	is := is.New(t)
	ctx, store, sg := testSetup(t)

	a := subgraph.Arguments{
		"customerId": json.RawMessage(`"2"`),
		"phone":      json.RawMessage(`null`),
	}

	_, err := sg.Execute(ctx, federation.Mutation, "updateCustomerProfile", a)
	is.NoErr(err)

	c, _ := store.GetByID(ctx, "2")
	is.True(c.Phone == nil)
	is.Equal(c.Name, "Bob Smith")
}

func TestReferenceToCustomerIsHydrated(t *testing.T) {
	is := is.New(t)
	ctx, _, sg := testSetup(t)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		e, err := sg.ResolveReference(ctx, "Customer", id)
		is.NoErr(err)
		is.Equal(e.Key().Value, id)

		full, ok := e.(federation.Full)
		is.True(ok)
		is.Equal(full.Record().(Customer).ID, id)
	}

	e, err := sg.ResolveReference(ctx, "Customer", "99")
	is.NoErr(err)
	is.True(e == nil)
}

func TestCustomerMarshalsNullableFields(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(Customer{ID: "9", Name: "N", Email: "E", Tier: TierBronze})
	is.NoErr(err)
	is.Equal(string(b), `{"id":"9","name":"N","email":"E","phone":null,"address":null,"tier":"BRONZE","loyaltyPoints":0}`)
}
