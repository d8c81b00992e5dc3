package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/housler/housler-crypto/pii/mask"
)

var maskCmd = &cobra.Command{
	Use:   "mask <kind> <value>...",
	Short: "Render a display-safe masked value",
	Long: `Render a redacted form of a PII value for display.

Kinds: email, phone, name, inn, card, passport.
passport takes two arguments (series, number); the rest take one.`,
	Example: `  hcrypto mask email test@example.com
  hcrypto mask passport 1234 567890`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runMask,
}

func init() {
	rootCmd.AddCommand(maskCmd)
}

func runMask(cmd *cobra.Command, args []string) error {
	kind := args[0]

	if kind == "passport" {
		if len(args) != 3 {
			return fmt.Errorf("passport requires series and number")
		}
		fmt.Println(mask.Passport(args[1], args[2]))
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("%s takes exactly one value", kind)
	}

	switch kind {
	case "email":
		fmt.Println(mask.Email(args[1]))
	case "phone":
		fmt.Println(mask.Phone(args[1]))
	case "name":
		fmt.Println(mask.Name(args[1]))
	case "inn":
		fmt.Println(mask.INN(args[1]))
	case "card":
		fmt.Println(mask.Card(args[1]))
	default:
		return fmt.Errorf("unsupported kind: %s", kind)
	}
	return nil
}
