package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/housler/housler-crypto/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new master key",
	Long: `Generate a fresh cryptographically-random 32-byte master key,
printed as 64 lowercase hex characters.`,
	Example: `  # Generate a key and store it in the environment
  export HOUSLER_MASTER_KEY=$(hcrypto keygen)`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
