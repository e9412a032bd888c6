package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestEnsureNamespace(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset()
	client := NewClientFromClientset(clientset)

	require.NoError(t, client.EnsureNamespace(ctx, "acme-ns"))

	ns, err := clientset.CoreV1().Namespaces().Get(ctx, "acme-ns", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "acme-ns", ns.Name)

	// Idempotent on re-run
	require.NoError(t, client.EnsureNamespace(ctx, "acme-ns"))
}

func TestDeleteNamespace(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset(&corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: "acme-ns"},
	})
	client := NewClientFromClientset(clientset)

	require.NoError(t, client.DeleteNamespace(ctx, "acme-ns"))

	_, err := clientset.CoreV1().Namespaces().Get(ctx, "acme-ns", metav1.GetOptions{})
	assert.Error(t, err)

	// Deleting a namespace that is already gone is not an error
	require.NoError(t, client.DeleteNamespace(ctx, "acme-ns"))
}

func lbService(namespace, name string, ingress ...corev1.LoadBalancerIngress) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{Ingress: ingress},
		},
	}
}

func TestLoadBalancerHostname(t *testing.T) {
	tests := []struct {
		name    string
		ingress []corev1.LoadBalancerIngress
		want    string
	}{
		{
			name:    "hostname",
			ingress: []corev1.LoadBalancerIngress{{Hostname: "lb.example.com"}},
			want:    "lb.example.com",
		},
		{
			name:    "ip fallback",
			ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.7"}},
			want:    "203.0.113.7",
		},
		{
			name:    "hostname preferred over ip",
			ingress: []corev1.LoadBalancerIngress{{Hostname: "lb.example.com", IP: "203.0.113.7"}},
			want:    "lb.example.com",
		},
		{
			name: "not provisioned yet",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientset := fake.NewSimpleClientset(
				lbService("ingress-nginx", "ingress-nginx-controller", tt.ingress...),
			)
			client := NewClientFromClientset(clientset)

			hostname, err := client.LoadBalancerHostname(context.Background(), "ingress-nginx", "ingress-nginx-controller")
			require.NoError(t, err)
			assert.Equal(t, tt.want, hostname)
		})
	}
}

func TestLoadBalancerHostnameMissingService(t *testing.T) {
	client := NewClientFromClientset(fake.NewSimpleClientset())

	_, err := client.LoadBalancerHostname(context.Background(), "ingress-nginx", "ingress-nginx-controller")
	assert.ErrorContains(t, err, "failed to get service")
}

func TestWaitForLoadBalancerHostname(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		lbService("ingress-nginx", "ingress-nginx-controller", corev1.LoadBalancerIngress{Hostname: "lb.example.com"}),
	)
	client := NewClientFromClientset(clientset)

	hostname, err := client.WaitForLoadBalancerHostname(context.Background(), "ingress-nginx", "ingress-nginx-controller")
	require.NoError(t, err)
	assert.Equal(t, "lb.example.com", hostname)
}

func TestSecretExists(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "acme-ns", Name: "acme-zenml-tls-certs"},
	})
	client := NewClientFromClientset(clientset)

	exists, err := client.SecretExists(context.Background(), "acme-ns", "acme-zenml-tls-certs")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.SecretExists(context.Background(), "acme-ns", "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTLSCertificates(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "acme-ns", Name: "acme-zenml-tls-certs"},
		Data: map[string][]byte{
			TLSCertKey: []byte("cert-pem"),
			TLSKeyKey:  []byte("key-pem"),
			CACertKey:  []byte("ca-pem"),
		},
	})
	client := NewClientFromClientset(clientset)

	bundle, err := client.TLSCertificates(context.Background(), "acme-ns", "acme-zenml-tls-certs")
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-pem"), bundle.Certificate)
	assert.Equal(t, []byte("key-pem"), bundle.Key)
	assert.Equal(t, []byte("ca-pem"), bundle.CA)
}

func TestTLSCertificatesMissingCA(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "acme-ns", Name: "acme-zenml-tls-certs"},
		Data: map[string][]byte{
			TLSCertKey: []byte("cert-pem"),
			TLSKeyKey:  []byte("key-pem"),
		},
	})
	client := NewClientFromClientset(clientset)

	bundle, err := client.TLSCertificates(context.Background(), "acme-ns", "acme-zenml-tls-certs")
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-pem"), bundle.Certificate)
	assert.Empty(t, bundle.CA)
}

func TestTLSCertificatesMissingSecret(t *testing.T) {
	client := NewClientFromClientset(fake.NewSimpleClientset())

	_, err := client.TLSCertificates(context.Background(), "acme-ns", "acme-zenml-tls-certs")
	assert.ErrorContains(t, err, "failed to get secret")
}
