// Package integrations maps Azure DevOps hostnames to their per-host
// configuration (integration type and credentials). The mapping is loaded
// from an optional YAML file and PIPEGRANT_ environment variables.
package integrations

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Type identifies the kind of service behind a configured host.
type Type string

const (
	// TypeAzureDevOps is the hosted dev.azure.com service.
	TypeAzureDevOps Type = "azure-devops"
	// TypeAzureDevOpsServer is a self-hosted Azure DevOps Server instance.
	TypeAzureDevOpsServer Type = "azure-devops-server"
)

// Integration is the configuration of a single host.
type Integration struct {
	Type  Type   `koanf:"type"`
	Token string `koanf:"token"`
}

// Registry resolves the integration configured for a hostname.
type Registry interface {
	Resolve(host string) (Integration, bool)
}

// Config is the full integrations configuration: an ambient token that
// applies to any configured host, plus the per-host integration map.
type Config struct {
	Token        string                 `koanf:"token"`
	Integrations map[string]Integration `koanf:"integrations"`
}

var _ Registry = (*Config)(nil)

// Resolve returns the integration configured for host. Lookup is
// case-insensitive; a trailing dot is ignored.
func (c *Config) Resolve(host string) (Integration, bool) {
	needle := strings.ToLower(strings.TrimSuffix(host, "."))
	for configured, integration := range c.Integrations {
		if strings.ToLower(strings.TrimSuffix(configured, ".")) == needle {
			return integration, true
		}
	}
	return Integration{}, false
}

// envPrefix is the prefix for environment overrides, e.g. PIPEGRANT_TOKEN.
const envPrefix = "PIPEGRANT_"

// Load reads the integrations configuration. path may be empty, in which
// case only environment variables and defaults apply. The hosted
// dev.azure.com service is always registered unless the file overrides it.
//
// Host keys contain dots, so the koanf key delimiter is "/".
func Load(path string) (*Config, error) {
	k := koanf.New("/")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading integrations file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, "/", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling integrations config: %w", err)
	}

	if cfg.Integrations == nil {
		cfg.Integrations = map[string]Integration{}
	}

	if _, ok := cfg.Resolve(DefaultHost); !ok {
		cfg.Integrations[DefaultHost] = Integration{Type: TypeAzureDevOps}
	}

	for host, integration := range cfg.Integrations {
		if integration.Type == "" {
			integration.Type = TypeAzureDevOps
			cfg.Integrations[host] = integration
		}
	}

	return cfg, nil
}

// DefaultHost is the hosted Azure DevOps service.
const DefaultHost = "dev.azure.com"
