package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// NewDestroyCommand creates and returns the destroy command
func NewDestroyCommand() *cobra.Command {
	var keepNamespace bool

	destroyCmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear down the ZenML server",
		Long: `Tear down the ZenML server deployment.

The release is uninstalled first and the namespace is deleted afterwards,
the reverse of the provisioning order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := newContext(cmd)
			if err != nil {
				return err
			}

			flags := zendeploy.MustConfigFlags(ctx)

			helmClient, err := helm.NewClient(flags, cfg.NamespaceName())
			if err != nil {
				return err
			}

			exists, err := helmClient.ReleaseExists(cfg.Release.Name)
			if err != nil {
				return err
			}
			if exists {
				if err := helmClient.UninstallRelease(cfg.Release.Name); err != nil {
					return err
				}
			} else {
				log.Debug("Release not found, nothing to uninstall", "name", cfg.Release.Name)
			}

			if keepNamespace {
				log.Info("Keeping namespace", "namespace", cfg.NamespaceName())
				return nil
			}

			kubeClient, err := kube.NewClient(flags)
			if err != nil {
				return err
			}

			return kubeClient.DeleteNamespace(ctx, cfg.NamespaceName())
		},
	}

	destroyCmd.Flags().BoolVar(&keepNamespace, "keep-namespace", false,
		"Uninstall the release but leave the namespace in place")

	return destroyCmd
}
