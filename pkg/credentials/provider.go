// Package credentials resolves personal access tokens for Azure DevOps
// base URLs from the integrations configuration.
package credentials

import (
	"net/url"
	"strings"

	"github.com/CanopySec/pipegrant/pkg/integrations"
)

// Provider returns a token usable against the given base URL, or false
// when no credential is configured for it.
type Provider interface {
	Credentials(baseURL string) (string, bool)
}

// RegistryProvider resolves tokens from an integrations config: the
// host-specific token first, then the ambient token.
type RegistryProvider struct {
	Config *integrations.Config
}

var _ Provider = (*RegistryProvider)(nil)

func (p *RegistryProvider) Credentials(baseURL string) (string, bool) {
	if p.Config == nil {
		return "", false
	}

	host := hostOf(baseURL)
	if integration, ok := p.Config.Resolve(host); ok && integration.Token != "" {
		return integration.Token, true
	}

	if p.Config.Token != "" {
		return p.Config.Token, true
	}

	return "", false
}

// Static is a fixed URL-to-token map, matched by host.
type Static map[string]string

var _ Provider = (Static)(nil)

func (s Static) Credentials(baseURL string) (string, bool) {
	token, ok := s[hostOf(baseURL)]
	return token, ok && token != ""
}

// Resolve applies the token precedence rule: an explicitly supplied token
// always wins over whatever the provider resolves for the base URL.
func Resolve(provider Provider, baseURL string, explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if provider == nil {
		return "", false
	}
	return provider.Credentials(baseURL)
}

func hostOf(baseURL string) string {
	if !strings.Contains(baseURL, "://") {
		return baseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	return parsed.Host
}
