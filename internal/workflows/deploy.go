// Package workflows wires the deployment's resource graph: the namespace,
// the external lookups, the Helm release and the TLS secret readback, with
// the ordering edges between them made explicit.
package workflows

import (
	"context"

	"github.com/charmbracelet/log"
	flow "github.com/noneback/go-taskflow"
	"helm.sh/helm/v3/pkg/release"

	"github.com/zenml-io/zendeploy/internal/config"
	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/rds"
	"github.com/zenml-io/zendeploy/internal/server"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// ClusterClient is the slice of the Kubernetes client the workflow needs.
type ClusterClient interface {
	EnsureNamespace(ctx context.Context, name string) error
	WaitForLoadBalancerHostname(ctx context.Context, namespace, name string) (string, error)
	WaitForTLSCertificates(ctx context.Context, namespace, name string) (*kube.TLSBundle, error)
}

// ReleaseClient is the slice of the Helm client the workflow needs.
type ReleaseClient interface {
	ReleaseExists(releaseName string) (bool, error)
	HasDiff(config *helm.ComponentConfig) (bool, error)
	InstallRelease(config *helm.ComponentConfig) (*release.Release, error)
	UpgradeRelease(config *helm.ComponentConfig) (*release.Release, error)
}

// DatabaseResolver resolves the managed database outputs.
type DatabaseResolver interface {
	Outputs(ctx context.Context) (*rds.Outputs, error)
}

// Deployment holds the clients and the state threaded through the deploy
// graph. Predecessor tasks fill in the resolved inputs; the release task
// renders the values from them.
type Deployment struct {
	Config   *config.Config
	Cluster  ClusterClient
	Releases ReleaseClient

	// Database must be set when Config.RDS.Create is true.
	Database DatabaseResolver

	resolved server.ResolvedInputs

	// Revision of the release after deployment.
	Revision int

	// Certificates read back from the cluster, nil when ingress TLS is
	// disabled.
	Certificates *kube.TLSBundle
}

// Flow builds the deploy graph:
//
//	create-namespace ─┐
//	resolve-ingress ──┼─> deploy-release ─> read-tls-certs
//	resolve-database ─┘
//
// The three predecessors may run in parallel; the release waits for all of
// them and the secret readback waits for the release.
func (d *Deployment) Flow(ctx context.Context) *flow.TaskFlow {
	tf := flow.NewTaskFlow("deploy")

	namespaceTask := tf.NewTask("create-namespace", func() {
		if err := d.Cluster.EnsureNamespace(ctx, d.Config.NamespaceName()); err != nil {
			log.Fatal("Failed to create namespace", "namespace", d.Config.NamespaceName(), "error", err)
		}
	})

	ingressTask := tf.NewTask("resolve-ingress-host", func() {
		if !d.Config.Ingress.CreateController {
			d.resolved.IngressHost = d.Config.Ingress.ControllerHostname
			return
		}

		hostname, err := d.Cluster.WaitForLoadBalancerHostname(ctx,
			d.Config.Ingress.ControllerNamespace, d.Config.Ingress.ControllerService)
		if err != nil {
			log.Fatal("Failed to resolve ingress controller hostname", "error", err)
		}

		log.Info("Resolved ingress host", "host", hostname)
		d.resolved.IngressHost = hostname
	})

	databaseTask := tf.NewTask("resolve-database", func() {
		if !d.Config.RDS.Create {
			return
		}

		outputs, err := d.Database.Outputs(ctx)
		if err != nil {
			log.Fatal("Failed to resolve managed database", "instance", d.Config.RDS.InstanceID, "error", err)
		}

		d.resolved.Database = outputs
	})

	releaseTask := tf.NewSubflow("deploy-release", func(sf *flow.Subflow) {
		cond := sf.NewCondition("check-release-exists", func() uint {
			exists, err := d.Releases.ReleaseExists(d.Config.Release.Name)
			if err != nil {
				log.Fatal("Failed to check if release exists", "error", err)
			}
			if !exists {
				return 0 // install
			}
			return 1 // upgrade
		})

		cond.Precede(
			sf.NewTask("install-release", func() {
				component, err := server.Component(d.Config, d.resolved)
				if err != nil {
					log.Fatal("Failed to render release values", "error", err)
				}

				log.Info("Installing release", "name", component.Release.Name, "namespace", component.Release.Namespace)

				rel, err := d.Releases.InstallRelease(component)
				if err != nil {
					log.Fatal("Install failed", "name", component.Release.Name, "error", err)
				}

				d.Revision = rel.Version
				log.Info("Successfully installed release", "name", rel.Name, "revision", rel.Version)
			}),
			sf.NewTask("upgrade-release", func() {
				component, err := server.Component(d.Config, d.resolved)
				if err != nil {
					log.Fatal("Failed to render release values", "error", err)
				}

				hasDiff, err := d.Releases.HasDiff(component)
				if err != nil {
					log.Fatal("Failed to check for differences", "name", component.Release.Name, "error", err)
				}
				if !hasDiff {
					log.Info("No changes detected, skipping upgrade", "name", component.Release.Name)
					return
				}

				log.Info("Upgrading release", "name", component.Release.Name)

				rel, err := d.Releases.UpgradeRelease(component)
				if err != nil {
					log.Fatal("Upgrade failed", "name", component.Release.Name, "error", err)
				}

				d.Revision = rel.Version
				log.Info("Successfully upgraded release", "name", rel.Name, "revision", rel.Version)
			}),
		)
	})

	certificatesTask := tf.NewTask("read-tls-certs", func() {
		if !d.Config.Ingress.TLS.Enabled {
			log.Debug("Ingress TLS disabled, skipping certificate readback")
			return
		}

		bundle, err := d.Cluster.WaitForTLSCertificates(ctx, d.Config.NamespaceName(), d.Config.TLSSecretName())
		if err != nil {
			log.Fatal("Failed to read TLS certificates", "secret", d.Config.TLSSecretName(), "error", err)
		}

		d.Certificates = bundle
		log.Info("Read TLS certificates", "secret", d.Config.TLSSecretName())
	})

	releaseTask.Succeed(namespaceTask)
	releaseTask.Succeed(ingressTask)
	releaseTask.Succeed(databaseTask)
	certificatesTask.Succeed(releaseTask)

	return tf
}

// Run executes the deploy graph and blocks until it finishes.
func (d *Deployment) Run(ctx context.Context) {
	executor := flow.NewExecutor(4)
	executor.Run(d.Flow(ctx)).Wait()
}
