package kube

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// LoadBalancerHostname reads the external hostname of a LoadBalancer
// Service. Clouds that only assign an IP report that instead, so the IP is
// used as a fallback. An empty result means the load balancer has not been
// provisioned yet.
func (c *Client) LoadBalancerHostname(ctx context.Context, namespace, name string) (string, error) {
	svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get service %s/%s: %w", namespace, name, err)
	}

	for _, ingress := range svc.Status.LoadBalancer.Ingress {
		if ingress.Hostname != "" {
			return ingress.Hostname, nil
		}
		if ingress.IP != "" {
			return ingress.IP, nil
		}
	}

	return "", nil
}

// WaitForLoadBalancerHostname polls until the Service has an external
// hostname. Cloud load balancers take a while to provision after the
// controller chart is installed.
func (c *Client) WaitForLoadBalancerHostname(ctx context.Context, namespace, name string) (string, error) {
	var hostname string

	err := retry.Do(
		func() error {
			var err error
			hostname, err = c.LoadBalancerHostname(ctx, namespace, name)
			if err != nil {
				return err
			}
			if hostname == "" {
				return fmt.Errorf("load balancer for service %s/%s has no hostname yet", namespace, name)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(30),
		retry.Delay(10*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("Waiting for load balancer hostname", "service", name, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", err
	}

	return hostname, nil
}
