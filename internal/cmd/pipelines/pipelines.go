// Package pipelines contains the pipeline listing commands.
package pipelines

import (
	"github.com/CanopySec/pipegrant/pkg/config"
	"github.com/CanopySec/pipegrant/pkg/credentials"
	"github.com/CanopySec/pipegrant/pkg/devops"
	"github.com/CanopySec/pipegrant/pkg/devops/permissions"
	"github.com/CanopySec/pipegrant/pkg/integrations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type PipelinesListOptions struct {
	Server       string
	Organization string
	Project      string
	Token        string
	ConfigFile   string
}

var options = PipelinesListOptions{}

func NewPipelinesRootCmd() *cobra.Command {
	pipelinesCmd := &cobra.Command{
		Use:   "pipelines [command]",
		Short: "Pipeline related commands",
	}

	pipelinesCmd.AddCommand(NewListCmd())

	return pipelinesCmd
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list [no options!]",
		Short: "List the pipelines of a project",
		Long:  `List a project's pipeline definitions with their numeric ids, which grant and revoke expect.`,
		Example: `
pipegrant pipelines list --token xxxxxxxxxxx --organization myOrg --project myProject
		`,
		Run: List,
	}

	listCmd.Flags().StringVarP(&options.Server, "server", "s", integrations.DefaultHost, "Azure DevOps host, scheme optional (https assumed)")
	listCmd.Flags().StringVarP(&options.Organization, "organization", "o", "", "Organization name")
	listCmd.Flags().StringVarP(&options.Project, "project", "p", "", "Project name")
	listCmd.Flags().StringVarP(&options.Token, "token", "t", "", "Azure DevOps Personal Access Token")
	listCmd.Flags().StringVarP(&options.ConfigFile, "config", "c", "", "Path to the integrations config file")

	for _, flag := range []string{"organization", "project"} {
		err := listCmd.MarkFlagRequired(flag)
		if err != nil {
			log.Fatal().Err(err).Str("flag", flag).Msg("Failed marking flag required")
		}
	}

	return listCmd
}

// validateOptions applies the flag-level checks before anything touches
// the network.
func validateOptions() error {
	if err := config.ValidateURL(permissions.BaseURLFor(options.Server), "Azure DevOps server URL"); err != nil {
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
	} {
		if err := config.ValidateRequired(field.value, field.name); err != nil {
			return err
		}
	}
	return nil
}

func List(cmd *cobra.Command, args []string) {
	if err := validateOptions(); err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	cfg, err := integrations.Load(options.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed loading integrations config")
	}

	baseURL := permissions.BaseURLFor(options.Server)
	provider := &credentials.RegistryProvider{Config: cfg}
	token, ok := credentials.Resolve(provider, baseURL+"/"+options.Organization, options.Token)
	if !ok {
		log.Fatal().Str("server", options.Server).Msg("No token provided and no credentials configured")
	}

	count := 0
	continuationToken := ""
	for {
		pipelines, ctoken, err := devops.ListPipelines(baseURL, options.Organization, options.Project, token, continuationToken)
		if err != nil {
			log.Fatal().Err(err).Str("organization", options.Organization).Str("project", options.Project).Msg("Failed listing pipelines")
		}

		for _, pipeline := range pipelines {
			log.Info().Int("id", pipeline.ID).Str("name", pipeline.Name).Str("folder", pipeline.Folder).Msg("Pipeline")
			count++
		}

		if ctoken == "" {
			break
		}
		continuationToken = ctoken
	}

	if count == 0 {
		log.Info().Str("organization", options.Organization).Str("project", options.Project).Msg("No pipelines found, check your token access scope!")
	}
}
