package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "zenml", cfg.Name)
	assert.Equal(t, "zenml-server", cfg.Release.Name)
	assert.Equal(t, "ingress-nginx", cfg.Ingress.ControllerNamespace)
	assert.True(t, cfg.Ingress.TLS.Enabled)
	assert.False(t, cfg.RDS.Create)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "zendeploy.yaml", `
name: acme
namespace: ns
ingress:
  path: zenml
  create_controller: false
  controller_hostname: custom.example.com
database:
  url: mysql://u:p@host/db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Name)
	assert.Equal(t, "acme-ns", cfg.NamespaceName())
	assert.Equal(t, "zenml", cfg.Ingress.Path)
	assert.False(t, cfg.Ingress.CreateController)
	assert.Equal(t, "custom.example.com", cfg.Ingress.ControllerHostname)
	assert.Equal(t, "mysql://u:p@host/db", cfg.Database.URL)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, "zenml-server", cfg.Release.Name)
	assert.Equal(t, "zenml-tls-certs", cfg.Ingress.TLS.SecretName)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "zendeploy.toml", `
name = "acme"

[rds]
create = true
region = "eu-central-1"
instance_id = "zenml-metadata"
password = "hunter2"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.RDS.Create)
	assert.Equal(t, "eu-central-1", cfg.RDS.Region)
	assert.Equal(t, "zenml-metadata", cfg.RDS.InstanceID)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "zendeploy.json", `{"name": "acme", "server_id": "d3adb33f"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Name)
	assert.Equal(t, "d3adb33f", cfg.ServerID)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "zendeploy.ini", "name = acme")

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported config file format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty name",
			mutate:  func(c *Config) { c.Name = "" },
			wantErr: "name must not be empty",
		},
		{
			name:    "empty namespace",
			mutate:  func(c *Config) { c.Namespace = "" },
			wantErr: "namespace must not be empty",
		},
		{
			name:    "rds without region",
			mutate:  func(c *Config) { c.RDS.Create = true; c.RDS.InstanceID = "db" },
			wantErr: "rds.region is required",
		},
		{
			name:    "rds without instance id",
			mutate:  func(c *Config) { c.RDS.Create = true; c.RDS.Region = "eu-central-1" },
			wantErr: "rds.instance_id is required",
		},
		{
			name: "rds and database url are exclusive",
			mutate: func(c *Config) {
				c.RDS.Create = true
				c.RDS.Region = "eu-central-1"
				c.RDS.InstanceID = "db"
				c.Database.URL = "mysql://u:p@host/db"
			},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTLSSecretName(t *testing.T) {
	cfg := Default()
	cfg.Name = "acme"

	assert.Equal(t, "acme-zenml-tls-certs", cfg.TLSSecretName())
}
