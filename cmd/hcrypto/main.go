package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hcrypto",
	Short: "Housler PII encryption CLI",
	Long: `hcrypto provides tools for working with Housler's PII-at-rest
protection: field-scoped encryption, blind-index computation, display
masking, and in-place migration of legacy ciphertext columns.

Without --config, the master key is read from HOUSLER_MASTER_KEY (a .env
file is loaded first). With --config, it is read from the YAML file, and
HOUSLER_MASTER_KEY, when set, still overrides the file value.`,
}

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	// Commands are registered in their respective files:
	// keygen.go, encrypt.go, decrypt.go, index.go, mask.go, migrate.go
}
