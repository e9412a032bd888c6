package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenml-io/zendeploy/internal/config"
	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/rds"
	"github.com/zenml-io/zendeploy/internal/server"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// NewRenderCommand creates and returns the render command
func NewRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the manifests the deploy would apply",
		Long: `Render the chart templates with fully resolved values using a
dry-run, without writing anything to the cluster.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := newContext(cmd)
			if err != nil {
				return err
			}

			flags := zendeploy.MustConfigFlags(ctx)

			in, err := resolveInputs(ctx, cfg)
			if err != nil {
				return err
			}

			component, err := server.Component(cfg, in)
			if err != nil {
				return err
			}

			helmClient, err := helm.NewClient(flags, cfg.NamespaceName())
			if err != nil {
				return err
			}

			manifests, err := helmClient.GetTemplatedManifests(component)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), manifests)
			return nil
		},
	}
}

// resolveInputs reads the external inputs without waiting: a render should
// not block on a load balancer that is still provisioning.
func resolveInputs(ctx context.Context, cfg *config.Config) (server.ResolvedInputs, error) {
	var in server.ResolvedInputs

	if cfg.Ingress.CreateController {
		flags := zendeploy.MustConfigFlags(ctx)
		kubeClient, err := kube.NewClient(flags)
		if err != nil {
			return in, err
		}

		in.IngressHost, err = kubeClient.LoadBalancerHostname(ctx,
			cfg.Ingress.ControllerNamespace, cfg.Ingress.ControllerService)
		if err != nil {
			return in, err
		}
	} else {
		in.IngressHost = cfg.Ingress.ControllerHostname
	}

	if cfg.RDS.Create {
		resolver, err := rds.NewResolver(ctx, cfg.RDS)
		if err != nil {
			return in, err
		}

		in.Database, err = resolver.Outputs(ctx)
		if err != nil {
			return in, err
		}
	}

	return in, nil
}
