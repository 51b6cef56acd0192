package main

import (
	"github.com/CanopySec/pipegrant/internal/cmd/common"
	"github.com/CanopySec/pipegrant/internal/cmd/permissions"
	"github.com/CanopySec/pipegrant/internal/cmd/pipelines"
	"github.com/spf13/cobra"
)

func main() {
	common.Run(newRootCmd())
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pipegrant",
		Short:   "Toggle Azure DevOps pipeline authorization for protected resources",
		Long:    `Pipegrant grants and revokes the permission of Azure DevOps pipelines to use protected resources such as service endpoints.`,
		Version: common.Version,
	}

	rootCmd.AddCommand(permissions.NewGrantCmd())
	rootCmd.AddCommand(permissions.NewRevokeCmd())
	rootCmd.AddCommand(permissions.NewShowCmd())
	rootCmd.AddCommand(pipelines.NewPipelinesRootCmd())

	common.SetupPersistentPreRun(rootCmd)
	common.AddCommonFlags(rootCmd)

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	return rootCmd
}
