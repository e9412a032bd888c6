package kube

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Keys the server chart stores its ingress TLS material under.
const (
	TLSCertKey = "tls.crt"
	TLSKeyKey  = "tls.key"
	CACertKey  = "ca.crt"
)

// TLSBundle holds the TLS material read back from the cluster. Keys missing
// from the secret are returned as empty slices rather than an error, since
// a CA is optional for certificates issued by a public authority.
type TLSBundle struct {
	Certificate []byte
	Key         []byte
	CA          []byte
}

// SecretExists reports whether a secret is present in the namespace.
func (c *Client) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check secret %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// TLSCertificates reads the TLS secret the release produced.
func (c *Client) TLSCertificates(ctx context.Context, namespace, name string) (*TLSBundle, error) {
	secret, err := c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}

	return &TLSBundle{
		Certificate: secret.Data[TLSCertKey],
		Key:         secret.Data[TLSKeyKey],
		CA:          secret.Data[CACertKey],
	}, nil
}

// WaitForTLSCertificates polls for the TLS secret. The chart creates it
// asynchronously after the release is deployed.
func (c *Client) WaitForTLSCertificates(ctx context.Context, namespace, name string) (*TLSBundle, error) {
	var bundle *TLSBundle

	err := retry.Do(
		func() error {
			var err error
			bundle, err = c.TLSCertificates(ctx, namespace, name)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(12),
		retry.Delay(5*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("Waiting for TLS secret", "secret", name, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	return bundle, nil
}
