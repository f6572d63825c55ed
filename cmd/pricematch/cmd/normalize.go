package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Parse a price list and print canonical records as JSON lines",
	Example: `  pricematch normalize prices.xlsx --supplier "ООО Поставщик"
  pricematch normalize export.xml --supplier Acme | jq .name`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("supplier", "", "supplier name attached to each record")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	n, err := newNormalizer()
	if err != nil {
		return err
	}

	records, err := n.Normalize(data, filepath.Base(args[0]), viper.GetString("supplier"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
