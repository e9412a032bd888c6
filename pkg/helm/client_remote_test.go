//go:build integration

package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RemoteChartTestSuite exercises install, no-op redeploy and upgrade against
// a chart from a remote repository with index.yaml
type RemoteChartTestSuite struct {
	HelmTestSuite
}

func (suite *RemoteChartTestSuite) TestDeployFromRemoteRepository() {
	componentConfig := &ComponentConfig{
		Chart: &ChartConfig{
			RepoURL: "https://charts.bitnami.com/bitnami",
			Name:    "nginx",
			Version: "18.2.5",
		},
		Release: &ReleaseConfig{
			Namespace: "test-helm-remote",
			Name:      "test-nginx-remote",
			Values: map[string]interface{}{
				"service": map[string]interface{}{
					"type": "ClusterIP",
				},
			},
		},
	}

	// The client does not create namespaces
	suite.EnsureNamespace(componentConfig.Release.Namespace)

	client, err := suite.CreateClient(componentConfig.Release.Namespace)
	require.NoError(suite.T(), err)

	suite.PrepareRelease(client, componentConfig.Release)

	_, err = client.DeployRelease(componentConfig)
	require.NoError(suite.T(), err)

	exists, err := client.ReleaseExists(componentConfig.Release.Name)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), exists, "Release should exist after deployment")

	deployedRelease, err := client.GetRelease(componentConfig.Release.Name)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "test-nginx-remote", deployedRelease.Name)
	assert.Equal(suite.T(), "test-helm-remote", deployedRelease.Namespace)
	assert.Equal(suite.T(), 1, deployedRelease.Version)

	// Redeploying with identical values must not produce a new revision
	hasDiff, err := client.HasDiff(componentConfig)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), hasDiff, "Unchanged values should produce no diff")

	redeployed, err := client.DeployRelease(componentConfig)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, redeployed.Version, "No-op redeploy should keep revision 1")

	// Changing a value must upgrade in place
	componentConfig.Release.Values["replicaCount"] = 2
	upgraded, err := client.DeployRelease(componentConfig)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, upgraded.Version, "Changed values should bump the revision")
}

func TestRemoteChartSuite(t *testing.T) {
	suite.Run(t, &RemoteChartTestSuite{})
}
