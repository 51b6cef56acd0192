// Package permissions contains the grant, revoke and show commands.
package permissions

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CanopySec/pipegrant/pkg/config"
	"github.com/CanopySec/pipegrant/pkg/credentials"
	"github.com/CanopySec/pipegrant/pkg/devops"
	pkgpermissions "github.com/CanopySec/pipegrant/pkg/devops/permissions"
	"github.com/CanopySec/pipegrant/pkg/integrations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type PermissionOptions struct {
	Server       string
	APIVersion   string
	Organization string
	Project      string
	ResourceType string
	ResourceID   string
	PipelineID   string
	Token        string
	ConfigFile   string
	Strict       bool
}

var options = PermissionOptions{}

func NewGrantCmd() *cobra.Command {
	grantCmd := &cobra.Command{
		Use:   "grant [no options!]",
		Short: "Authorize a pipeline to use a protected resource",
		Long: `Authorize an Azure DevOps pipeline to use a protected resource
(service endpoint, repository, environment, variable group, ...).

### Authentication
Create your personal access token here: https://dev.azure.com/{yourOrganization}/_usersSettings/tokens
The token needs the "Service Connections - Read, query, & manage" scope (or the
scope matching the resource type being authorized). Tokens can also be placed
in the integrations config file or the PIPEGRANT_TOKEN environment variable.
		`,
		Example: `
# Authorize pipeline 42 for a service endpoint
pipegrant grant --token xxxxxxxxxxx --organization myOrg --project myProject --resource-type endpoint --resource-id badf00d-1234 --pipeline-id 42

# Same against a self-hosted instance configured in ~/.config/pipegrant/config.yaml
pipegrant grant --server ado.corp.example --organization myOrg --project myProject --resource-type endpoint --resource-id badf00d-1234 --pipeline-id 42
		`,
		Run: func(cmd *cobra.Command, args []string) {
			runSet(true)
		},
	}
	addPermissionFlags(grantCmd, true)

	return grantCmd
}

func NewRevokeCmd() *cobra.Command {
	revokeCmd := &cobra.Command{
		Use:   "revoke [no options!]",
		Short: "Withdraw a pipeline's authorization for a protected resource",
		Example: `
# Withdraw pipeline 42's access to a service endpoint
pipegrant revoke --token xxxxxxxxxxx --organization myOrg --project myProject --resource-type endpoint --resource-id badf00d-1234 --pipeline-id 42
		`,
		Run: func(cmd *cobra.Command, args []string) {
			runSet(false)
		},
	}
	addPermissionFlags(revokeCmd, true)

	return revokeCmd
}

func NewShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [no options!]",
		Short: "Show which pipelines are authorized for a protected resource",
		Example: `
pipegrant show --token xxxxxxxxxxx --organization myOrg --project myProject --resource-type endpoint --resource-id badf00d-1234
		`,
		Run: Show,
	}
	addPermissionFlags(showCmd, false)

	return showCmd
}

func addPermissionFlags(cmd *cobra.Command, write bool) {
	cmd.Flags().StringVarP(&options.Server, "server", "s", pkgpermissions.DefaultHost, "Azure DevOps host, scheme optional (https assumed)")
	cmd.Flags().StringVarP(&options.APIVersion, "api-version", "", pkgpermissions.DefaultAPIVersion, "Pipeline permissions API version")
	cmd.Flags().StringVarP(&options.Organization, "organization", "o", "", "Organization name")
	cmd.Flags().StringVarP(&options.Project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&options.ResourceType, "resource-type", "", "", "Type of the protected resource, e.g. endpoint, repository, environment, variablegroup")
	cmd.Flags().StringVarP(&options.ResourceID, "resource-id", "", "", "Id of the protected resource")
	cmd.Flags().StringVarP(&options.Token, "token", "t", "", "Azure DevOps Personal Access Token - https://dev.azure.com/{yourOrganization}/_usersSettings/tokens")
	cmd.Flags().StringVarP(&options.ConfigFile, "config", "c", "", "Path to the integrations config file (default: "+filepath.Join("~", ".config", "pipegrant", "config.yaml")+" when present)")

	for _, flag := range []string{"organization", "project", "resource-type", "resource-id"} {
		err := cmd.MarkFlagRequired(flag)
		if err != nil {
			log.Fatal().Err(err).Str("flag", flag).Msg("Failed marking flag required")
		}
	}

	if write {
		cmd.Flags().StringVarP(&options.PipelineID, "pipeline-id", "", "", "Numeric id of the pipeline definition")
		err := cmd.MarkFlagRequired("pipeline-id")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed marking pipeline-id required")
		}
		cmd.Flags().BoolVarP(&options.Strict, "strict", "", false, "Fail the command when the permission update is rejected instead of only logging it")
	}
}

// validateOptions applies the flag-level checks shared by all permission
// commands before anything touches the network.
func validateOptions() error {
	if err := config.ValidateURL(pkgpermissions.BaseURLFor(options.Server), "Azure DevOps server URL"); err != nil {
		return err
	}
	if options.Token != "" {
		if err := config.ValidateToken(options.Token, "Azure DevOps Access Token"); err != nil {
			return err
		}
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"organization", options.Organization},
		{"project", options.Project},
		{"resource-type", options.ResourceType},
		{"resource-id", options.ResourceID},
	} {
		if err := config.ValidateRequired(field.value, field.name); err != nil {
			return err
		}
	}
	return nil
}

func runSet(authorized bool) {
	if err := validateOptions(); err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	cfg := loadIntegrations()

	setter := pkgpermissions.NewSetter(cfg, &credentials.RegistryProvider{Config: cfg})
	setter.Strict = options.Strict

	err := setter.Execute(pkgpermissions.Request{
		Host:         options.Server,
		APIVersion:   options.APIVersion,
		Organization: options.Organization,
		Project:      options.Project,
		ResourceType: options.ResourceType,
		ResourceID:   options.ResourceID,
		PipelineID:   options.PipelineID,
		Authorized:   authorized,
		Token:        options.Token,
	})
	if err != nil {
		var inputErr *pkgpermissions.InputConfigurationError
		if errors.As(err, &inputErr) {
			log.Fatal().Err(err).Msg("Invalid input configuration")
		}
		log.Fatal().Err(err).Msg("Pipeline permission request failed")
	}
}

func Show(cmd *cobra.Command, args []string) {
	if err := validateOptions(); err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	cfg := loadIntegrations()

	baseURL := pkgpermissions.BaseURLFor(options.Server)
	provider := &credentials.RegistryProvider{Config: cfg}
	token, ok := credentials.Resolve(provider, baseURL+"/"+options.Organization, options.Token)
	if !ok {
		log.Fatal().Str("server", options.Server).Msg("No token provided and no credentials configured")
	}

	client := devops.NewClient(token, baseURL)
	result, res, err := client.GetPipelinePermissions(options.Organization, options.Project, options.ResourceType, options.ResourceID, options.APIVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed fetching pipeline permissions")
	}
	if res.StatusCode() != 200 {
		log.Fatal().Int("status", res.StatusCode()).Msg("Failed fetching pipeline permissions")
	}

	if result.AllPipelines != nil && result.AllPipelines.Authorized {
		log.Info().Str("resourceId", result.Resource.ID).Msg("Resource is open to all pipelines")
	}

	if len(result.Pipelines) == 0 {
		log.Info().Str("resourceId", options.ResourceID).Msg("No pipelines individually authorized")
		return
	}

	for _, entry := range result.Pipelines {
		event := log.Info().Int("pipeline", entry.ID).Bool("authorized", entry.Authorized)
		if entry.AuthorizedBy != nil {
			event = event.Str("authorizedBy", entry.AuthorizedBy.DisplayName)
		}
		if entry.AuthorizedOn != nil {
			event = event.Time("authorizedOn", *entry.AuthorizedOn)
		}
		event.Msg("Authorized pipeline")
	}
}

func loadIntegrations() *integrations.Config {
	path := options.ConfigFile
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := integrations.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("Failed loading integrations config")
	}
	return cfg
}

// defaultConfigPath returns the well-known config location when it exists,
// otherwise empty so Load runs on env and defaults only.
func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(configDir, "pipegrant", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
