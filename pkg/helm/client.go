package helm

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/release"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

const defaultTimeout = 5 * time.Minute

// Client drives Helm install/upgrade/uninstall actions against a single
// namespace.
type Client struct {
	getter       genericclioptions.RESTClientGetter
	Namespace    string
	Timeout      time.Duration
	actionConfig *action.Configuration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default five minute wait for install and
// upgrade operations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.Timeout = timeout
	}
}

// NewClient creates a new Helm client scoped to the given namespace.
func NewClient(getter genericclioptions.RESTClientGetter, namespace string, opts ...Option) (*Client, error) {
	registryClient, err := registry.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}

	actionConfig := new(action.Configuration)
	actionConfig.RegistryClient = registryClient

	if err := actionConfig.Init(getter, namespace, os.Getenv("HELM_DRIVER"), func(format string, args ...interface{}) {
		log.With("namespace", namespace).Debugf(format, args...)
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize action config: %w", err)
	}

	if err := actionConfig.KubeClient.IsReachable(); err != nil {
		return nil, fmt.Errorf("kubernetes cluster is not reachable: %w", err)
	}

	c := &Client{
		getter:       getter,
		Namespace:    namespace,
		Timeout:      defaultTimeout,
		actionConfig: actionConfig,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// loadChart resolves and loads the chart from a repository, a local path or
// an OCI reference.
func (c *Client) loadChart(chartName string, chartPathOptions action.ChartPathOptions) (*chart.Chart, error) {
	chartPath, err := chartPathOptions.LocateChart(chartName, cli.New())
	if err != nil {
		return nil, err
	}

	return loader.Load(chartPath)
}

func (c *Client) configureInstallAction(config *ComponentConfig) *action.Install {
	install := action.NewInstall(c.actionConfig)

	install.RepoURL = config.Chart.RepoURL
	install.ReleaseName = config.Release.Name
	install.Version = config.Chart.Version

	// The namespace is provisioned as its own step before the release, so
	// the install action never creates it.
	install.Namespace = config.Release.Namespace
	install.CreateNamespace = false

	install.Wait = true
	install.Timeout = c.Timeout

	return install
}

func (c *Client) configureUpgradeAction(config *ComponentConfig, dryRun bool) *action.Upgrade {
	upgrade := action.NewUpgrade(c.actionConfig)

	upgrade.Install = true
	upgrade.RepoURL = config.Chart.RepoURL
	upgrade.Version = config.Chart.Version

	upgrade.Namespace = config.Release.Namespace
	upgrade.ResetValues = true
	upgrade.Wait = true
	upgrade.Timeout = c.Timeout
	upgrade.DryRun = dryRun

	return upgrade
}

// ReleaseExists checks if a release with the given name exists.
func (c *Client) ReleaseExists(releaseName string) (bool, error) {
	history := action.NewHistory(c.actionConfig)
	history.Max = 1

	_, err := history.Run(releaseName)
	return err == nil, nil
}

// UninstallRelease removes a Helm release.
func (c *Client) UninstallRelease(releaseName string) error {
	uninstall := action.NewUninstall(c.actionConfig)
	if _, err := uninstall.Run(releaseName); err != nil {
		return fmt.Errorf("failed to uninstall release %s: %w", releaseName, err)
	}

	log.Info("Successfully uninstalled release", "name", releaseName)
	return nil
}

// GetRelease retrieves a deployed release.
func (c *Client) GetRelease(releaseName string) (*release.Release, error) {
	get := action.NewGet(c.actionConfig)
	return get.Run(releaseName)
}

// InstallRelease installs the chart as a new release.
func (c *Client) InstallRelease(config *ComponentConfig) (*release.Release, error) {
	install := c.configureInstallAction(config)

	ch, err := c.loadChart(config.Chart.Name, install.ChartPathOptions)
	if err != nil {
		return nil, err
	}

	return install.Run(ch, config.Release.Values)
}

// UpgradeRelease upgrades an existing Helm release in place.
func (c *Client) UpgradeRelease(config *ComponentConfig) (*release.Release, error) {
	upgrade := c.configureUpgradeAction(config, false)

	ch, err := c.loadChart(config.Chart.Name, upgrade.ChartPathOptions)
	if err != nil {
		return nil, err
	}

	return upgrade.Run(config.Release.Name, ch, config.Release.Values)
}

// GetTemplatedManifests renders the chart templates with the resolved
// values using a dry-run upgrade.
func (c *Client) GetTemplatedManifests(config *ComponentConfig) (string, error) {
	upgrade := c.configureUpgradeAction(config, true)

	ch, err := c.loadChart(config.Chart.Name, upgrade.ChartPathOptions)
	if err != nil {
		return "", err
	}

	rel, err := upgrade.Run(config.Release.Name, ch, config.Release.Values)
	if err != nil {
		return "", err
	}

	return rel.Manifest, nil
}

// HasDiff reports whether deploying would change the cluster. A release
// that does not exist yet always has a diff.
func (c *Client) HasDiff(config *ComponentConfig) (bool, error) {
	exists, err := c.ReleaseExists(config.Release.Name)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	deployedRelease, err := c.GetRelease(config.Release.Name)
	if err != nil {
		return false, fmt.Errorf("failed to get deployed release: %w", err)
	}

	templatedManifests, err := c.GetTemplatedManifests(config)
	if err != nil {
		return false, fmt.Errorf("failed to get templated manifests: %w", err)
	}

	return deployedRelease.Manifest != templatedManifests, nil
}

// DeployRelease installs or upgrades the release based on whether it
// exists. A re-run with unchanged values performs no write.
func (c *Client) DeployRelease(config *ComponentConfig) (*release.Release, error) {
	exists, err := c.ReleaseExists(config.Release.Name)
	if err != nil {
		return nil, err
	}

	if exists {
		hasDiff, err := c.HasDiff(config)
		if err != nil {
			return nil, fmt.Errorf("failed to check for differences: %w", err)
		}

		if !hasDiff {
			log.Info("No changes detected, skipping upgrade", "name", config.Release.Name)
			return c.GetRelease(config.Release.Name)
		}

		return c.UpgradeRelease(config)
	}

	return c.InstallRelease(config)
}
