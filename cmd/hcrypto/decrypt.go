package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var decryptField string

var decryptCmd = &cobra.Command{
	Use:   "decrypt <value>",
	Short: "Decrypt an hc1: envelope",
	Long: `Decrypt a value encrypted for a field. Values without the hc1:
prefix are printed unchanged, matching the library's passthrough
contract for mixed columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVarP(&decryptField, "field", "f", "", "Field tag (required)")
	decryptCmd.MarkFlagRequired("field")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	codec, err := loadCodec()
	if err != nil {
		return err
	}
	defer codec.Close()

	out, err := codec.Decrypt(args[0], decryptField)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
