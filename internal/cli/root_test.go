package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	rootCmd := NewRootCommand()

	assert.Equal(t, "zendeploy", rootCmd.Use)

	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"deploy", "destroy", "status", "render", "certs"})

	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "zendeploy.yaml", flag.DefValue)

	// Kubeconfig flags are registered on the root command
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("kubeconfig"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("namespace"))
}
