// Package cmd provides the conceptrag CLI commands: a thin shell around
// the engine for manual ingestion and search smoke-testing. It carries no
// domain logic of its own: everything below NewRootCmd is a thin shell
// around the engine wired up in engine.go.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/config"
	"github.com/concept-rag/conceptrag/internal/logging"
)

var (
	configPath string
	dataDir    string
	debugMode  bool
)

// NewRootCmd creates the root command for the conceptrag CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conceptrag",
		Short: "Conceptual retrieval-augmented search engine over a local document corpus",
		Long: `conceptrag extracts structured concepts from ingested documents using an
external LLM, indexes them alongside chunked text and embeddings in a local
vector store, and serves hybrid (dense + sparse + concept + lexical-network)
ranked search over the result.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the configured storage directory")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(*cobra.Command, []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	logger, _, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the engine configuration, applying --data-dir on top of
// whatever Load produced.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	return cfg, nil
}
