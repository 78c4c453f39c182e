package products

import (
	"context"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/pkg/federation"
)

func NewSubgraph(store Store) (subgraph.Subgraph, error) {
	r := &resolvers{store: store}

	return subgraph.New(SubgraphName, SDL,
		subgraph.Query("products", r.products),
		subgraph.Query("product", r.product),
		subgraph.Query("productsByCategory", r.productsByCategory),
		subgraph.Query("productsUnderPrice", r.productsUnderPrice),
		subgraph.Query("searchProducts", r.searchProducts),
		subgraph.Mutation("updateStock", r.updateStock),
		subgraph.Reference("Product", r.reference),
	)
}

type resolvers struct {
	store Store
}

func (r *resolvers) products(ctx context.Context, _ subgraph.Arguments) (any, error) {
	return r.store.GetAll(ctx)
}

func (r *resolvers) product(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("id")
	if err != nil {
		return nil, err
	}

	return r.store.GetByID(ctx, id)
}

func (r *resolvers) productsByCategory(ctx context.Context, args subgraph.Arguments) (any, error) {
	category, err := args.String("category")
	if err != nil {
		return nil, err
	}

	return r.store.FindByCategory(ctx, category)
}

func (r *resolvers) productsUnderPrice(ctx context.Context, args subgraph.Arguments) (any, error) {
	maxPrice, err := args.Float("maxPrice")
	if err != nil {
		return nil, err
	}

	return r.store.FindUnderPrice(ctx, maxPrice)
}

func (r *resolvers) searchProducts(ctx context.Context, args subgraph.Arguments) (any, error) {
	query, err := args.String("query")
	if err != nil {
		return nil, err
	}

	return r.store.Search(ctx, query)
}

// updateStock applies a delta to the stock. There is no lower bound.
func (r *resolvers) updateStock(ctx context.Context, args subgraph.Arguments) (any, error) {
	id, err := args.ID("productId")
	if err != nil {
		return nil, err
	}

	delta, err := args.Int("quantity")
	if err != nil {
		return nil, err
	}

	return r.store.Update(ctx, id, func(p *Product) {
		p.Stock += delta
	})
}

func (r *resolvers) reference(ctx context.Context, key federation.Key) (federation.Entity, error) {
	p, err := r.store.GetByID(ctx, key.Value)
	if err != nil {
		return nil, err
	}

	return federation.NewFull(key, p), nil
}
