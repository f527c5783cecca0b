package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/output"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <corpus-dir>",
		Short: "Ingest a directory of documents into the catalog, chunks and concept tables",
		Long: `Walks a directory of plain-text documents, extracts concepts for each via
the configured LLM, chunks and embeds the text, matches concepts onto
chunks, and rebuilds the global concept index.

Documents whose content hash is already present in the catalog are skipped
(idempotent re-ingest).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0])
		},
	}
	return cmd
}

func runIndex(cmd *cobra.Command, corpusDir string) error {
	ctx := cmd.Context()
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	eng, err := buildEngine(ctx, cfg, true)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() { _ = eng.Close() }()

	docs, err := loadCorpus(corpusDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		out.Status("", fmt.Sprintf("no documents found under %s", corpusDir))
		return nil
	}

	out.Statusf("", "ingesting %d document(s) from %s", len(docs), corpusDir)
	report, err := eng.pipeline.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	out.Successf("ingested %d document(s)", len(report.Ingested))
	if len(report.Skipped) > 0 {
		out.Statusf("", "skipped %d unchanged document(s)", len(report.Skipped))
	}
	for source, ferr := range report.Failed {
		out.Errorf("%s: %v", source, ferr)
	}
	return nil
}
