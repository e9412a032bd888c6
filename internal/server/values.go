// Package server renders the chart values for the ZenML server release.
// All conditional wiring between the configuration, the managed database
// and the ingress controller lives here as pure value mapping.
package server

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/zenml-io/zendeploy/internal/config"
	"github.com/zenml-io/zendeploy/internal/rds"
	"github.com/zenml-io/zendeploy/pkg/helm"
)

// RewriteTargetAnnotation is the ingress annotation used to strip the URL
// prefix when the server is served under a path.
const RewriteTargetAnnotation = "nginx.ingress.kubernetes.io/rewrite-target"

// ResolvedInputs carries the values read from external systems before the
// release values can be rendered.
type ResolvedInputs struct {
	// IngressHost is the hostname the ingress is served on, either looked
	// up from the controller's load balancer or taken from the config.
	IngressHost string

	// Database holds the managed instance outputs. Nil when the database
	// URL comes from the config instead.
	Database *rds.Outputs
}

// RootURLPath returns the URL prefix the server tells clients it is served
// under: "/<path>", or empty when served at the root.
func RootURLPath(path string) string {
	if path == "" {
		return ""
	}
	return "/" + path
}

// IngressPath returns the ingress match pattern: "/<path>/?(.*)" so the
// prefix can be rewritten away, or "/" when served at the root.
func IngressPath(path string) string {
	if path == "" {
		return "/"
	}
	return fmt.Sprintf("/%s/?(.*)", path)
}

// RewriteTarget returns the rewrite-target annotation value matching
// IngressPath: the first capture group, or empty when nothing is rewritten.
func RewriteTarget(path string) string {
	if path == "" {
		return ""
	}
	return "/$1"
}

// DatabaseURL assembles the connection string for a managed instance.
func DatabaseURL(outputs *rds.Outputs, dbName string) string {
	return fmt.Sprintf("mysql://%s:%s@%s:3306/%s",
		outputs.Username, outputs.Password, outputs.Address, dbName)
}

// Values renders the fully resolved chart values. Exactly one database mode
// is active: with managed outputs the URL is assembled and the SSL fields
// are forced to empty, otherwise everything passes through from the config.
func Values(cfg *config.Config, in ResolvedInputs) map[string]interface{} {
	databaseURL := cfg.Database.URL
	sslCA := cfg.Database.SSLCA
	sslCert := cfg.Database.SSLCert
	sslKey := cfg.Database.SSLKey
	sslVerify := cfg.Database.SSLVerifyServerCert

	if in.Database != nil {
		databaseURL = DatabaseURL(in.Database, cfg.Database.Name)
		sslCA = ""
		sslCert = ""
		sslKey = ""
		sslVerify = false
	}

	return map[string]interface{}{
		"zenml": map[string]interface{}{
			"defaultUsername": cfg.Username,
			"defaultPassword": cfg.Password,
			"deploymentType":  cfg.DeploymentType,
			"serverId":        cfg.ServerID,
			"rootUrlPath":     RootURLPath(cfg.Ingress.Path),
			"ingress": map[string]interface{}{
				"path": IngressPath(cfg.Ingress.Path),
				"annotations": map[string]interface{}{
					RewriteTargetAnnotation: RewriteTarget(cfg.Ingress.Path),
				},
				"host": in.IngressHost,
				"tls": map[string]interface{}{
					"enabled":       cfg.Ingress.TLS.Enabled,
					"generateCerts": cfg.Ingress.TLS.GenerateCerts,
					"secretName":    cfg.TLSSecretName(),
				},
			},
			"database": map[string]interface{}{
				"url":                 databaseURL,
				"sslCa":               sslCA,
				"sslCert":             sslCert,
				"sslKey":              sslKey,
				"sslVerifyServerCert": sslVerify,
			},
		},
	}
}

// Component builds the chart and release configuration for the server, with
// any free-form value overrides from the config merged on top of the
// computed values.
func Component(cfg *config.Config, in ResolvedInputs) (*helm.ComponentConfig, error) {
	values := Values(cfg, in)

	if len(cfg.Release.Values) > 0 {
		if err := mergo.Merge(&values, cfg.Release.Values, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge value overrides: %w", err)
		}
	}

	return &helm.ComponentConfig{
		Chart: &helm.ChartConfig{
			RepoURL: cfg.Chart.Repository,
			Name:    cfg.Chart.Name,
			Version: cfg.Chart.Version,
		},
		Release: &helm.ReleaseConfig{
			Namespace: cfg.NamespaceName(),
			Name:      cfg.Release.Name,
			Values:    values,
		},
	}, nil
}
