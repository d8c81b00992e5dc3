package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/housler/housler-crypto/pii"
)

var (
	indexField     string
	indexNormalize string
)

var indexCmd = &cobra.Command{
	Use:   "index <value>",
	Short: "Compute the blind index of a value",
	Long: `Compute the deterministic blind index used for equality search
over encrypted columns. Pass --normalize to canonicalize phones or
emails the way the storage layer does before indexing.`,
	Example: `  hcrypto index --field phone --normalize phone "+7 (999) 123-45-67"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVarP(&indexField, "field", "f", "", "Field tag (required)")
	indexCmd.Flags().StringVar(&indexNormalize, "normalize", "", "Canonicalization to apply (phone, email)")
	indexCmd.MarkFlagRequired("field")
}

func runIndex(cmd *cobra.Command, args []string) error {
	codec, err := loadCodec()
	if err != nil {
		return err
	}
	defer codec.Close()

	value := args[0]
	switch indexNormalize {
	case "phone":
		value = pii.NormalizePhone(value)
	case "email":
		value = pii.NormalizeEmail(value)
	case "":
	default:
		return fmt.Errorf("unsupported normalization: %s", indexNormalize)
	}

	fmt.Println(codec.BlindIndex(value, indexField))
	return nil
}
