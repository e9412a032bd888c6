package kube

import (
	"fmt"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
)

// Client wraps a typed Kubernetes clientset for the handful of reads and
// writes the deploy graph performs outside of Helm.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a client from the CLI's kubeconfig flags.
func NewClient(getter genericclioptions.RESTClientGetter) (*Client, error) {
	restConfig, err := getter.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientFromClientset wraps an existing clientset. Used by tests with a
// fake clientset.
func NewClientFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}
