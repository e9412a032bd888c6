package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zenml-io/zendeploy/internal/kube"
	"github.com/zenml-io/zendeploy/internal/zendeploy"
)

// NewCertsCommand creates and returns the certs command
func NewCertsCommand() *cobra.Command {
	var outputDir string

	certsCmd := &cobra.Command{
		Use:   "certs",
		Short: "Fetch the ingress TLS material",
		Long: `Fetch the TLS certificate, key and CA from the secret the server
chart produced and write them to a directory for downstream consumers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := newContext(cmd)
			if err != nil {
				return err
			}

			kubeClient, err := kube.NewClient(zendeploy.MustConfigFlags(ctx))
			if err != nil {
				return err
			}

			bundle, err := kubeClient.TLSCertificates(ctx, cfg.NamespaceName(), cfg.TLSSecretName())
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			files := map[string][]byte{
				kube.TLSCertKey: bundle.Certificate,
				kube.TLSKeyKey:  bundle.Key,
				kube.CACertKey:  bundle.CA,
			}
			for name, data := range files {
				if len(data) == 0 {
					log.Debug("Secret field is empty, skipping", "field", name)
					continue
				}

				path := filepath.Join(outputDir, name)
				if err := os.WriteFile(path, data, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				log.Info("Wrote certificate file", "path", path)
			}

			return nil
		},
	}

	certsCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".",
		"Directory to write tls.crt, tls.key and ca.crt into")

	return certsCmd
}
