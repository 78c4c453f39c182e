package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/diwise/federated-graph/internal/pkg/application/gateway"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/router"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/auth"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/graphql"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const serviceName string = "federation-gateway"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, DefaultFlags())

	cfgFile, err := os.Open(flags[configPath])
	if err != nil {
		log.Error("failed to open gateway configuration", "path", flags[configPath], "err", err.Error())
		os.Exit(1)
	}
	defer cfgFile.Close()

	policies, err := os.Open(flags[opaPath])
	if err != nil {
		log.Error("failed to open authz policies", "path", flags[opaPath], "err", err.Error())
		os.Exit(1)
	}
	defer policies.Close()

	handler, err := initialize(ctx, cfgFile, policies)
	if err != nil {
		log.Error("failed to initialize the gateway", "err", err.Error())
		os.Exit(1)
	}

	address := flags[listenAddress] + ":" + flags[servicePort]
	log.Info("starting to listen for connections", "address", address)

	err = http.ListenAndServe(address, handler)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func DefaultFlags() FlagMap {
	return FlagMap{
		listenAddress: "",
		servicePort:   "4000",
		configPath:    "/opt/diwise/config/gateway.yaml",
		opaPath:       "/opt/diwise/config/authz.rego",
	}
}

// initialize composes the supergraph from the configured subgraphs and wires
// up the public api. It fails if any subgraph can not be composed.
func initialize(ctx context.Context, cfgFile, policies io.Reader) (http.Handler, error) {
	cfg, err := gateway.LoadConfiguration(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	gw, err := gateway.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compose supergraph: %w", err)
	}

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r := router.New(serviceName, logging.GetFromContext(ctx))
	graphql.RegisterHandlers(r, gw, authenticator)

	return r, nil
}

func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])
	flags[configPath] = envOrDef(ctx, "GATEWAY_CONFIG_PATH", flags[configPath])
	flags[opaPath] = envOrDef(ctx, "POLICIES_PATH", flags[opaPath])

	apply := func(f FlagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "a yaml file with the subgraphs to compose", apply(configPath))
	flag.Func("policies", "an authorization policy file", apply(opaPath))
	flag.Parse()

	return flags
}
