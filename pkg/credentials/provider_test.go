package credentials

import (
	"testing"

	"github.com/CanopySec/pipegrant/pkg/integrations"
	"github.com/stretchr/testify/assert"
)

func TestRegistryProviderHostToken(t *testing.T) {
	provider := &RegistryProvider{Config: &integrations.Config{
		Token: "ambient-token",
		Integrations: map[string]integrations.Integration{
			"dev.azure.com": {Type: integrations.TypeAzureDevOps, Token: "host-token"},
		},
	}}

	token, ok := provider.Credentials("https://dev.azure.com/myorg")
	assert.True(t, ok)
	assert.Equal(t, "host-token", token)
}

func TestRegistryProviderAmbientFallback(t *testing.T) {
	provider := &RegistryProvider{Config: &integrations.Config{
		Token: "ambient-token",
		Integrations: map[string]integrations.Integration{
			"dev.azure.com": {Type: integrations.TypeAzureDevOps},
		},
	}}

	token, ok := provider.Credentials("https://dev.azure.com/myorg")
	assert.True(t, ok)
	assert.Equal(t, "ambient-token", token)

	token, ok = provider.Credentials("https://ado.other.example/myorg")
	assert.True(t, ok)
	assert.Equal(t, "ambient-token", token)
}

func TestRegistryProviderNoCredential(t *testing.T) {
	provider := &RegistryProvider{Config: &integrations.Config{
		Integrations: map[string]integrations.Integration{
			"dev.azure.com": {Type: integrations.TypeAzureDevOps},
		},
	}}

	_, ok := provider.Credentials("https://dev.azure.com/myorg")
	assert.False(t, ok)
}

func TestRegistryProviderNilConfig(t *testing.T) {
	provider := &RegistryProvider{}

	_, ok := provider.Credentials("https://dev.azure.com/myorg")
	assert.False(t, ok)
}

func TestStaticProvider(t *testing.T) {
	provider := Static{"dev.azure.com": "static-token"}

	token, ok := provider.Credentials("https://dev.azure.com/myorg")
	assert.True(t, ok)
	assert.Equal(t, "static-token", token)

	_, ok = provider.Credentials("https://ado.other.example/myorg")
	assert.False(t, ok)
}

func TestResolvePrecedence(t *testing.T) {
	provider := Static{"dev.azure.com": "provider-token"}

	token, ok := Resolve(provider, "https://dev.azure.com/myorg", "explicit-token")
	assert.True(t, ok)
	assert.Equal(t, "explicit-token", token)

	token, ok = Resolve(provider, "https://dev.azure.com/myorg", "")
	assert.True(t, ok)
	assert.Equal(t, "provider-token", token)

	_, ok = Resolve(nil, "https://dev.azure.com/myorg", "")
	assert.False(t, ok)
}

func TestStaticProviderBareHost(t *testing.T) {
	provider := Static{"ado.corp.example": "corp"}

	token, ok := provider.Credentials("ado.corp.example")
	assert.True(t, ok)
	assert.Equal(t, "corp", token)
}
