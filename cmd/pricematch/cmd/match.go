package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/matching"
	"github.com/JonMunkholm/pricematch/internal/service"
	"github.com/JonMunkholm/pricematch/internal/store/memory"
)

var matchCmd = &cobra.Command{
	Use:   "match <file>",
	Short: "Match a price list against a catalog and export the result",
	Long: `match loads the catalog, ingests the price list, runs one matching pass
and writes matched items in the accounting import format. A summary is
printed to stderr. Nothing is persisted.`,
	Example: `  pricematch match prices.csv --catalog catalog.csv --supplier Acme --out export_1c.csv
  pricematch match prices.xml --catalog catalog.xlsx --format xml --threshold 85`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.String("catalog", "", "catalog file (.csv or .xlsx) with code, name, barcode, article columns")
	f.String("supplier", "", "supplier name")
	f.Int("threshold", domain.DefaultFuzzyThreshold, "minimum fuzzy score (1-100)")
	f.Int("workers", 0, "fuzzy scoring workers (0 = GOMAXPROCS)")
	f.String("format", "csv", "export format: csv or xml")
	f.StringP("out", "o", "", "export file (default stdout)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	catalogPath := viper.GetString("catalog")
	if catalogPath == "" {
		return errors.New("--catalog is required")
	}
	supplier := viper.GetString("supplier")
	if supplier == "" {
		supplier = filepath.Base(args[0])
	}

	normalizer, err := newNormalizer()
	if err != nil {
		return err
	}
	svc := service.New(memory.New(),
		service.WithNormalizer(normalizer),
		service.WithEngine(matching.New(
			matching.WithThreshold(viper.GetInt("threshold")),
			matching.WithWorkers(viper.GetInt("workers")),
		)),
	)

	catalogData, err := os.ReadFile(catalogPath)
	if err != nil {
		return err
	}
	imported, err := svc.ImportCatalog(ctx, filepath.Base(catalogPath), catalogData)
	if err != nil {
		return err
	}

	priceData, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	uploaded, err := svc.Upload(ctx, supplier, filepath.Base(args[0]), priceData)
	if err != nil {
		return err
	}

	run, err := svc.RunMatching(ctx)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "catalog: %d entries, price list: %d records\n", imported.Entries, uploaded.Records)
	fmt.Fprintf(stderr, "matched: %d (barcode %d, article %d, fuzzy %d), remaining: %d\n",
		run.Matched,
		run.ByKind[domain.KindBarcode],
		run.ByKind[domain.KindArticle],
		run.ByKind[domain.KindFuzzy],
		run.Remaining,
	)

	data, _, err := svc.Export(ctx, viper.GetString("format"))
	if errors.Is(err, domain.ErrEmptyExport) {
		fmt.Fprintln(stderr, "nothing matched, no export written")
		return nil
	}
	if err != nil {
		return err
	}

	out := viper.GetString("out")
	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "export written to %s\n", out)
	return nil
}
