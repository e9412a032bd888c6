package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// NewStatusCommand creates and returns the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the ZenML server deployment",
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

			out := cmd.OutOrStdout()

			exists, err := helmClient.ReleaseExists(cfg.Release.Name)
			if err != nil {
				return err
			}
			if !exists {
				fmt.Fprintf(out, "Release %s is not installed in namespace %s\n",
					cfg.Release.Name, cfg.NamespaceName())
				return nil
			}

			rel, err := helmClient.GetRelease(cfg.Release.Name)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Release:   %s\n", rel.Name)
			fmt.Fprintf(out, "Namespace: %s\n", rel.Namespace)
			fmt.Fprintf(out, "Revision:  %d\n", rel.Version)
			fmt.Fprintf(out, "Status:    %s\n", rel.Info.Status)

			kubeClient, err := kube.NewClient(flags)
			if err != nil {
				return err
			}

			secretExists, err := kubeClient.SecretExists(ctx, cfg.NamespaceName(), cfg.TLSSecretName())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "TLS secret %s present: %t\n", cfg.TLSSecretName(), secretExists)

			return nil
		},
	}
}
