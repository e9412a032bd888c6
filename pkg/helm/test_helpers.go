//go:build integration

package helm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
)

// ReleaseTracker tracks releases for cleanup
type ReleaseTracker struct {
	releases []struct {
		client        *Client
		releaseConfig *ReleaseConfig
	}
}

// NewReleaseTracker creates a new release tracker
func NewReleaseTracker() *ReleaseTracker {
	return &ReleaseTracker{}
}

// Track registers a release for automatic cleanup
func (rt *ReleaseTracker) Track(client *Client, releaseConfig *ReleaseConfig) {
	rt.releases = append(rt.releases, struct {
		client        *Client
		releaseConfig *ReleaseConfig
	}{client: client, releaseConfig: releaseConfig})
}

// CleanupAll removes all tracked releases
func (rt *ReleaseTracker) CleanupAll(t *testing.T) {
	for _, r := range rt.releases {
		if r.client != nil && r.releaseConfig != nil {
			exists, err := r.client.ReleaseExists(r.releaseConfig.Name)
			if err == nil && exists {
				t.Logf("Cleaning up release: %s in namespace %s",
					r.releaseConfig.Name, r.releaseConfig.Namespace)
				_ = r.client.UninstallRelease(r.releaseConfig.Name)
			}
		}
	}
}

// HelmTestSuite provides a base test suite for Helm-based tests. The client
// never creates namespaces, so the suite provisions them up front the same
// way the deploy workflow does.
type HelmTestSuite struct {
	suite.Suite
	ConfigFlags *genericclioptions.ConfigFlags
	Ctx         context.Context
	Tracker     *ReleaseTracker
}

// SetupSuite initializes the test suite
func (s *HelmTestSuite) SetupSuite() {
	s.ConfigFlags = genericclioptions.NewConfigFlags(true)
	s.Ctx = context.Background()
	s.Tracker = NewReleaseTracker()
}

// TearDownSuite cleans up all tracked releases
func (s *HelmTestSuite) TearDownSuite() {
	s.Tracker.CleanupAll(s.T())
}

// EnsureNamespace creates the namespace if it does not exist yet
func (s *HelmTestSuite) EnsureNamespace(namespace string) {
	restConfig, err := s.ConfigFlags.ToRESTConfig()
	require.NoError(s.T(), err)

	clientset, err := kubernetes.NewForConfig(restConfig)
	require.NoError(s.T(), err)

	_, err = clientset.CoreV1().Namespaces().Create(s.Ctx, &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: namespace},
	}, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		require.NoError(s.T(), err)
	}
}

// PrepareRelease ensures clean state and tracks the release for cleanup
func (s *HelmTestSuite) PrepareRelease(client *Client, releaseConfig *ReleaseConfig) {
	s.Tracker.Track(client, releaseConfig)

	exists, err := client.ReleaseExists(releaseConfig.Name)
	require.NoError(s.T(), err)

	if exists {
		s.T().Logf("Found existing %s, uninstalling for clean test...", releaseConfig.Name)
		err = client.UninstallRelease(releaseConfig.Name)
		require.NoError(s.T(), err)
		time.Sleep(5 * time.Second)
	}
}

// CreateClient creates a new Helm client for the given namespace
func (s *HelmTestSuite) CreateClient(namespace string) (*Client, error) {
	return NewClient(s.ConfigFlags, namespace)
}
