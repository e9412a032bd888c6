package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var parserMap = map[string]koanf.Parser{
	".yaml": yaml.Parser(),
	".yml":  yaml.Parser(),
	".toml": toml.Parser(),
	".json": json.Parser(),
}

// ChartConfig selects the server Helm chart. Name may be a repository chart
// name, a local path or an OCI reference.
type ChartConfig struct {
	Repository string `koanf:"repository"`
	Name       string `koanf:"name"`
	Version    string `koanf:"version"`
}

// TLSConfig controls the ingress TLS overrides passed to the chart.
type TLSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	GenerateCerts bool   `koanf:"generate_certs"`
	SecretName    string `koanf:"secret_name"`
}

// IngressConfig controls ingress routing for the server.
type IngressConfig struct {
	// Path is the URL prefix the server is served under. Empty means the
	// server is served at the root.
	Path string `koanf:"path"`

	// CreateController selects where the ingress hostname comes from: when
	// true it is read from the ingress controller's load balancer Service,
	// when false ControllerHostname is used as-is.
	CreateController    bool   `koanf:"create_controller"`
	ControllerHostname  string `koanf:"controller_hostname"`
	ControllerNamespace string `koanf:"controller_namespace"`
	ControllerService   string `koanf:"controller_service"`

	TLS TLSConfig `koanf:"tls"`
}

// DatabaseConfig holds the bring-your-own-database settings. These are only
// honoured when RDS.Create is false; in managed mode the SSL fields are
// forced to empty and the URL is assembled from the instance outputs.
type DatabaseConfig struct {
	Name                string `koanf:"name"`
	URL                 string `koanf:"url"`
	SSLCA               string `koanf:"ssl_ca"`
	SSLCert             string `koanf:"ssl_cert"`
	SSLKey              string `koanf:"ssl_key"`
	SSLVerifyServerCert bool   `koanf:"ssl_verify_server_cert"`
}

// RDSConfig points at an existing managed MySQL instance. The master
// password is never readable through the AWS API, so it has to be supplied
// here.
type RDSConfig struct {
	Create     bool   `koanf:"create"`
	Region     string `koanf:"region"`
	InstanceID string `koanf:"instance_id"`
	Password   string `koanf:"password"`
}

// ReleaseConfig holds release-level settings and free-form value overrides
// that are merged on top of the computed chart values.
type ReleaseConfig struct {
	Name   string                 `koanf:"name"`
	Values map[string]interface{} `koanf:"values"`
}

// Config is the full deployment configuration.
type Config struct {
	// Name is the deployment name, used as a prefix for the namespace and
	// the TLS secret.
	Name string `koanf:"name"`

	// Namespace is the namespace suffix; the release is installed into
	// "<name>-<namespace>".
	Namespace string `koanf:"namespace"`

	DeploymentType string `koanf:"deployment_type"`
	Username       string `koanf:"username"`
	Password       string `koanf:"password"`
	ServerID       string `koanf:"server_id"`

	Chart    ChartConfig    `koanf:"chart"`
	Release  ReleaseConfig  `koanf:"release"`
	Ingress  IngressConfig  `koanf:"ingress"`
	Database DatabaseConfig `koanf:"database"`
	RDS      RDSConfig      `koanf:"rds"`
}

// Default returns the configuration defaults. Load unmarshals on top of
// this, so file values override defaults key by key.
func Default() *Config {
	return &Config{
		Name:           "zenml",
		Namespace:      "server",
		DeploymentType: "kubernetes",
		Username:       "default",
		Chart: ChartConfig{
			Name: "zenml",
		},
		Release: ReleaseConfig{
			Name: "zenml-server",
		},
		Ingress: IngressConfig{
			CreateController:    true,
			ControllerNamespace: "ingress-nginx",
			ControllerService:   "ingress-nginx-controller",
			TLS: TLSConfig{
				Enabled:       true,
				GenerateCerts: true,
				SecretName:    "zenml-tls-certs",
			},
		},
		Database: DatabaseConfig{
			Name: "zenml",
		},
	}
}

// Load reads the config file into a fresh Config on top of the defaults. A
// missing file is not an error; the defaults are returned unchanged.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Debug("config file does not exist, using defaults", "path", configFile)
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(configFile))
	parser, ok := parserMap[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config file format: %s", configFile)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configFile), parser); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", configFile, err)
	}

	log.Info("loaded config file", "path", configFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field consistency that the cluster would otherwise
// surface much later as an apply failure.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.Chart.Name == "" {
		return fmt.Errorf("chart.name must not be empty")
	}

	if c.RDS.Create {
		if c.RDS.Region == "" {
			return fmt.Errorf("rds.region is required when rds.create is set")
		}
		if c.RDS.InstanceID == "" {
			return fmt.Errorf("rds.instance_id is required when rds.create is set")
		}
		if c.Database.URL != "" {
			return fmt.Errorf("database.url and rds.create are mutually exclusive")
		}
	}

	if !c.Ingress.CreateController && c.Ingress.ControllerHostname == "" && c.Ingress.TLS.Enabled {
		log.Warn("ingress.controller_hostname is empty; the ingress host override will be empty")
	}

	return nil
}

// NamespaceName returns the namespace the release is installed into.
func (c *Config) NamespaceName() string {
	return fmt.Sprintf("%s-%s", c.Name, c.Namespace)
}

// TLSSecretName returns the name of the secret the chart stores the ingress
// TLS material in.
func (c *Config) TLSSecretName() string {
	return fmt.Sprintf("%s-%s", c.Name, c.Ingress.TLS.SecretName)
}
