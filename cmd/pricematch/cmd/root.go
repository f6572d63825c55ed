// Package cmd implements the pricematch command tree.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/pricematch/internal/ingest"
	"github.com/JonMunkholm/pricematch/internal/logging"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pricematch",
	Short: "Supplier price list reconciliation",
	Long: `pricematch normalizes supplier price lists (CSV, Excel, XML) and matches
them against a reference catalog by barcode, article and fuzzy name.

Every flag can also be set through the environment with the PRICEMATCH_
prefix, e.g. PRICEMATCH_THRESHOLD=85, or in a YAML config file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware cancellation.
func Execute(version string) {
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("synonyms", "", "YAML file overriding column header synonyms")

	rootCmd.AddCommand(normalizeCmd, matchCmd)
}

// initConfig wires .env files, the environment and an optional config file
// into viper.
func initConfig() {
	// Missing .env files are fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix("PRICEMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

// setupCommand binds the running command's flags so viper resolves
// flag > env > config file > default, then configures logging.
func setupCommand(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	slog.SetDefault(logging.New(os.Stderr, viper.GetString("log-level"), "text"))
	return nil
}

// newNormalizer honors --synonyms.
func newNormalizer() (*ingest.Normalizer, error) {
	path := viper.GetString("synonyms")
	if path == "" {
		return ingest.NewNormalizer(), nil
	}
	syn, err := ingest.LoadSynonyms(path)
	if err != nil {
		return nil, err
	}
	return ingest.NewNormalizer(ingest.WithSynonyms(syn)), nil
}
