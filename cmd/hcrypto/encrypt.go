package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var encryptField string

var encryptCmd = &cobra.Command{
	Use:   "encrypt <value>",
	Short: "Encrypt a value for a field",
	Example: `  hcrypto encrypt --field email test@example.com`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVarP(&encryptField, "field", "f", "", "Field tag (required)")
	encryptCmd.MarkFlagRequired("field")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	codec, err := loadCodec()
	if err != nil {
		return err
	}
	defer codec.Close()

	out, err := codec.Encrypt(args[0], encryptField)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
