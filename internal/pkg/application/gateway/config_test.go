package gateway

import (
	"bytes"
	"errors"
	"testing"
	"time"

	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Subgraphs), 3) // should have three subgraphs
	is.Equal(config.Timeout, 5*time.Second)
}

func TestLoadSubgraph(t *testing.T) {
	is, config := setupConfigTest(t)
	sg := config.Subgraphs[0]

	is.Equal(sg.Name, "products")
	is.Equal(sg.Endpoint, "http://lolcathost:8081")
	is.Equal(sg.Timeout, 2*time.Second)
	is.Equal(sg.SchemaPath, "")
}

func TestTimeoutFallsBackToGatewayDefault(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(config.TimeoutFor(config.Subgraphs[0]), 2*time.Second)
	is.Equal(config.TimeoutFor(config.Subgraphs[1]), 5*time.Second)

	empty := &Config{}
	is.Equal(empty.TimeoutFor(config.Subgraphs[1]), DefaultTimeout)
}

func TestLoadSchemaPath(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(config.Subgraphs[2].SchemaPath, "/opt/diwise/config/customers.graphql")
}

func TestDuplicateSubgraphIsRejected(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString(`
subgraphs:
  - name: orders
    endpoint: http://a
  - name: orders
    endpoint: http://b
`))
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestSubgraphWithoutEndpointIsRejected(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString("subgraphs:\n  - name: orders\n"))
	is.True(errors.Is(err, fedErrors.ErrValidation))

	_, err = LoadConfiguration(bytes.NewBufferString("timeout: 1s\n"))
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

var configFile string = `
timeout: 5s
subgraphs:
  - name: products
    endpoint: http://lolcathost:8081
    timeout: 2s
  - name: orders
    endpoint: http://lolcathost:8082
  - name: customers
    endpoint: http://lolcathost:8083
    schemaPath: /opt/diwise/config/customers.graphql
`
