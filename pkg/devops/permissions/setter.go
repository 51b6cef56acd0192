// Package permissions toggles Azure DevOps pipeline authorization for a
// protected resource via the pipelinepermissions endpoint.
package permissions

import (
	"fmt"
	"strings"

	"github.com/CanopySec/pipegrant/pkg/config"
	"github.com/CanopySec/pipegrant/pkg/credentials"
	"github.com/CanopySec/pipegrant/pkg/devops"
	"github.com/CanopySec/pipegrant/pkg/integrations"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHost       = integrations.DefaultHost
	DefaultAPIVersion = "7.1-preview.1"
)

// Request describes a single permission change: authorize or unauthorize
// one pipeline for one resource.
type Request struct {
	// Host of the Azure DevOps instance, defaults to dev.azure.com.
	// A scheme may be included for non-https instances.
	Host         string
	APIVersion   string
	Organization string
	Project      string
	ResourceType string
	ResourceID   string
	// PipelineID is the definition id as a string, validated as an integer
	// before anything goes over the wire.
	PipelineID string
	Authorized bool
	// Token overrides the credential provider when set.
	Token string
}

// InputConfigurationError marks a request that cannot proceed because of
// missing or invalid configuration. It is always raised before any network
// call is made.
type InputConfigurationError struct {
	Reason string
}

func (e *InputConfigurationError) Error() string {
	return e.Reason
}

func inputErrorf(format string, args ...any) *InputConfigurationError {
	return &InputConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Setter executes permission change requests. The registry decides whether
// a host is known at all; the credential provider supplies a PAT when the
// request carries none.
type Setter struct {
	Registry    integrations.Registry
	Credentials credentials.Provider
	// Strict turns a non-success HTTP status into a returned error. The
	// default is fire-and-report: the failure is logged and Execute
	// resolves, matching how a permission step behaves inside a larger
	// workflow that must not abort on a denied toggle.
	Strict bool

	// newClient is swapped in tests.
	newClient func(token string, baseURL string) devops.Client
}

func NewSetter(registry integrations.Registry, provider credentials.Provider) *Setter {
	return &Setter{Registry: registry, Credentials: provider}
}

// Execute validates the request, resolves a credential and issues exactly
// one PATCH. Network-level failures propagate; HTTP-level failures are
// logged and swallowed unless Strict is set.
func (s *Setter) Execute(req Request) error {
	host := req.Host
	if host == "" {
		host = DefaultHost
	}
	apiVersion := req.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	pipelineID, err := config.ParsePipelineID(req.PipelineID)
	if err != nil {
		return inputErrorf("invalid pipeline id: %v", err)
	}

	if _, ok := s.Registry.Resolve(hostname(host)); !ok {
		return inputErrorf("no integration configured for host %s", hostname(host))
	}

	baseURL := BaseURLFor(host)
	organizationURL := baseURL + "/" + req.Organization

	token, ok := credentials.Resolve(s.Credentials, organizationURL, req.Token)
	if !ok {
		return inputErrorf("no token provided and no credentials configured for %s", organizationURL)
	}

	verb := "Authorizing"
	if !req.Authorized {
		verb = "Unauthorizing"
	}
	log.Info().
		Str("organization", req.Organization).
		Str("project", req.Project).
		Str("resourceType", req.ResourceType).
		Str("resourceId", req.ResourceID).
		Int("pipeline", pipelineID).
		Msg(verb + " pipeline for resource")

	client := s.clientFor(token, baseURL)
	res, err := client.UpdatePipelinePermissions(req.Organization, req.Project, req.ResourceType, req.ResourceID, apiVersion, devops.PipelinePermissionUpdate{
		Pipelines: []devops.PipelinePermission{
			{Authorized: req.Authorized, ID: pipelineID},
		},
	})
	if err != nil {
		return err
	}

	if res.IsSuccess() {
		log.Info().
			Int("status", res.StatusCode()).
			Int("pipeline", pipelineID).
			Str("resourceId", req.ResourceID).
			Bool("authorized", req.Authorized).
			Msg("Pipeline permission updated")
		return nil
	}

	log.Error().
		Int("status", res.StatusCode()).
		Int("pipeline", pipelineID).
		Str("resourceId", req.ResourceID).
		Msg("Pipeline permission update failed")

	if s.Strict {
		return fmt.Errorf("pipeline permission update failed with status %d", res.StatusCode())
	}
	return nil
}

func (s *Setter) clientFor(token string, baseURL string) devops.Client {
	if s.newClient != nil {
		return s.newClient(token, baseURL)
	}
	return devops.NewClient(token, baseURL)
}

// hostname strips scheme and path so registry lookups always see a bare
// host, whatever form the caller passed.
func hostname(host string) string {
	trimmed := host
	if idx := strings.Index(trimmed, "://"); idx >= 0 {
		trimmed = trimmed[idx+len("://"):]
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

// BaseURLFor turns a host flag value into the instance base URL: a bare
// host gets the https scheme, an explicit scheme is kept as-is.
func BaseURLFor(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimSuffix(host, "/")
	}
	return "https://" + host
}
