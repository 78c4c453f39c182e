package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/diwise/federated-graph/internal/pkg/application/orders"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/database"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/router"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/federation"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const serviceName string = "orders-service"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	store, closeStore, err := newStore(ctx, time.Now)
	if err != nil {
		log.Error("failed to create order store", "err", err.Error())
		os.Exit(1)
	}
	defer closeStore()

	sg, err := orders.NewSubgraph(store)
	if err != nil {
		log.Error("failed to create subgraph", "err", err.Error())
		os.Exit(1)
	}

	r := router.New(serviceName, log)
	federation.RegisterHandlers(r, sg)

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8082")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func newStore(ctx context.Context, now func() time.Time) (orders.Store, func(), error) {
	cfg := database.LoadConfiguration(ctx)
	if !cfg.Enabled() {
		return orders.NewMemoryStore(now), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := orders.NewPostgresStore(ctx, pool, now)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, pool.Close, nil
}
