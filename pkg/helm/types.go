package helm

// ChartConfig identifies the Helm chart to deploy
type ChartConfig struct {
	// RepoURL points to the Helm chart repository URL. Empty when Name is a
	// local path or an OCI reference.
	RepoURL string `koanf:"repository"`

	// Name is the chart name, a local path or an OCI reference.
	Name string `koanf:"name"`

	// Version is the chart version to deploy. Empty means latest.
	Version string `koanf:"version"`
}

// ReleaseConfig describes the target release
type ReleaseConfig struct {
	// Namespace is the Kubernetes namespace the release lives in. It is
	// expected to exist before any install or upgrade runs.
	Namespace string `koanf:"namespace"`

	// Name is the name of the Helm release.
	Name string `koanf:"name"`

	// Values are the fully resolved chart values for the release.
	Values map[string]interface{} `koanf:"values"`
}

// ComponentConfig pairs a chart with the release it should produce
type ComponentConfig struct {
	Chart   *ChartConfig   `koanf:"chart"`
	Release *ReleaseConfig `koanf:"release"`
}
