package gateway

import (
	"fmt"
	"io"
	"time"

	"github.com/diwise/federated-graph/pkg/federation/errors"
	yaml "gopkg.in/yaml.v2"
)

const DefaultTimeout time.Duration = 5 * time.Second

type SubgraphConfig struct {
	Name     string        `yaml:"name"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	// SchemaPath, when set, is read instead of asking the subgraph for its schema
	SchemaPath string `yaml:"schemaPath"`
}

type Config struct {
	Timeout   time.Duration    `yaml:"timeout"`
	Subgraphs []SubgraphConfig `yaml:"subgraphs"`
}

// TimeoutFor returns the call timeout of a subgraph, falling back to the
// gateway wide timeout and then to DefaultTimeout.
func (c *Config) TimeoutFor(sg SubgraphConfig) time.Duration {
	if sg.Timeout > 0 {
		return sg.Timeout
	}

	if c.Timeout > 0 {
		return c.Timeout
	}

	return DefaultTimeout
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.Subgraphs) == 0 {
		return nil, errors.NewValidationError("gateway configuration contains no subgraphs")
	}

	seen := map[string]bool{}

	for _, sg := range cfg.Subgraphs {
		if sg.Name == "" {
			return nil, errors.NewValidationError("every subgraph must have a name")
		}
		if seen[sg.Name] {
			return nil, errors.NewValidationError(fmt.Sprintf("subgraph %s is configured more than once", sg.Name))
		}
		if sg.Endpoint == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("subgraph %s has no endpoint", sg.Name))
		}
		seen[sg.Name] = true
	}

	return cfg, nil
}
