package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/zenml-io/zendeploy/internal/config"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
)

var (
	configFlags = genericclioptions.NewConfigFlags(true)
	configFile  string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zendeploy",
		Short: "ZenML server deployer",
		Long: `zendeploy provisions a ZenML server into a Kubernetes cluster: it
creates the target namespace, installs or upgrades the server Helm release
with fully resolved values, and reads back the ingress TLS material the
chart produces.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(os.Stderr, "Error showing help: %v\n", err)
			}
		},
	}

	configFlags.AddFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "zendeploy.yaml",
		"Path to the deployment config file (yaml, toml or json)")

	rootCmd.AddCommand(NewDeployCommand())
	rootCmd.AddCommand(NewDestroyCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewCertsCommand())

	return rootCmd
}

// newContext loads the deployment config and builds the command context
// carrying it alongside the kubeconfig flags.
func newContext(cmd *cobra.Command) (context.Context, *config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	return zendeploy.New(cmd.Context(), configFlags, cfg), cfg, nil
}
