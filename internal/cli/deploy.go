package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zenml-io/zendeploy/internal/config"
	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/rds"
	"github.com/zenml-io/zendeploy/internal/workflows"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// NewDeployCommand creates and returns the deploy command
func NewDeployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the ZenML server",
		Long: `Deploy the ZenML server into the cluster.

This creates the target namespace, resolves the ingress hostname and the
database connection, installs or upgrades the server Helm release, and
waits for the ingress TLS secret the chart produces.

Examples:

  # Deploy with the default config file (zendeploy.yaml)
  zendeploy deploy

  # Deploy with an explicit config file
  zendeploy deploy -c production.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := newContext(cmd)
			if err != nil {
				return err
			}

			deployment, err := newDeployment(ctx, cfg)
			if err != nil {
				return err
			}

			deployment.Run(ctx)

			log.Info("Deployment completed",
				"namespace", cfg.NamespaceName(),
				"release", cfg.Release.Name,
				"revision", deployment.Revision)
			return nil
		},
	}
}

// newDeployment wires the cluster, release and database clients into a
// deployment for the config in the context.
func newDeployment(ctx context.Context, cfg *config.Config) (*workflows.Deployment, error) {
	flags := zendeploy.MustConfigFlags(ctx)

	kubeClient, err := kube.NewClient(flags)
	if err != nil {
		return nil, err
	}

	helmClient, err := helm.NewClient(flags, cfg.NamespaceName())
	if err != nil {
		return nil, err
	}

	deployment := &workflows.Deployment{
		Config:   cfg,
		Cluster:  kubeClient,
		Releases: helmClient,
	}

	if cfg.RDS.Create {
		resolver, err := rds.NewResolver(ctx, cfg.RDS)
		if err != nil {
			return nil, err
		}
		deployment.Database = resolver
	}

	return deployment, nil
}
