package main

import (
	"context"
	"net/http"
	"os"

	"github.com/diwise/federated-graph/internal/pkg/application/products"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/router"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/federation"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const serviceName string = "products-service"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	store, closeStore, err := newStore(ctx)
	if err != nil {
		log.Error("failed to create product store", "err", err.Error())
		os.Exit(1)
	}
	defer closeStore()

	sg, err := products.NewSubgraph(store)
	if err != nil {
		log.Error("failed to create subgraph", "err", err.Error())
		os.Exit(1)
	}

	r := router.New(serviceName, log)
	federation.RegisterHandlers(r, sg)

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8081")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

// newStore connects to postgres when a database host is configured and falls
// back to a seeded in-memory store otherwise.
func newStore(ctx context.Context) (products.Store, func(), error) {
	cfg := database.LoadConfiguration(ctx)
	if !cfg.Enabled() {
		return products.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := products.NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, pool.Close, nil
}
