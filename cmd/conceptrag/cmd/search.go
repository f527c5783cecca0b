package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/output"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one of the five public search operations",
	}

	cmd.AddCommand(newCatalogSearchCmd())
	cmd.AddCommand(newConceptSearchCmd())
	cmd.AddCommand(newBroadSearchCmd())
	cmd.AddCommand(newDocSearchCmd())
	cmd.AddCommand(newExtractCmd())
	return cmd
}

func commonSearchFlags(cmd *cobra.Command, limit *int, asJSON *bool, defaultLimit int) {
	cmd.Flags().IntVarP(limit, "limit", "n", defaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(asJSON, "json", false, "emit results as JSON")
}

func newCatalogSearchCmd() *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog <query>",
		Short: "Hybrid search against the catalog collection, with title boost",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEngine(cmd, false, func(eng *engine) error {
				hits, err := eng.orchestrator.CatalogSearch(cmd.Context(), query, limit)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, hits, func(out *output.Writer) {
					for i, h := range hits {
						out.Statusf("", "%d. %s (score %.3f)", i+1, h.SourcePath, h.Score)
						out.Status("", "   "+h.Preview)
					}
				})
			})
		},
	}
	commonSearchFlags(cmd, &limit, &asJSON, 5)
	return cmd
}

func newConceptSearchCmd() *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "concept <name>",
		Short: "Membership lookup: every chunk tagged with the given concept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withEngine(cmd, false, func(eng *engine) error {
				hits, err := eng.orchestrator.ConceptSearch(cmd.Context(), name, limit)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, hits, func(out *output.Writer) {
					for i, h := range hits {
						out.Statusf("", "%d. %s (density %.2f)", i+1, h.SourcePath, h.ConceptDensity)
					}
				})
			})
		},
	}
	commonSearchFlags(cmd, &limit, &asJSON, 10)
	return cmd
}

func newBroadSearchCmd() *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "chunks <query>",
		Short: "Hybrid search against the whole chunks collection (no title boost)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEngine(cmd, false, func(eng *engine) error {
				hits, err := eng.orchestrator.BroadChunksSearch(cmd.Context(), query, limit)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, hits, func(out *output.Writer) {
					for i, h := range hits {
						out.Statusf("", "%d. %s (score %.3f)", i+1, h.SourcePath, h.Score)
					}
				})
			})
		},
	}
	commonSearchFlags(cmd, &limit, &asJSON, 10)
	return cmd
}

func newDocSearchCmd() *cobra.Command {
	var limit int
	var asJSON bool
	var source string
	cmd := &cobra.Command{
		Use:   "doc <query> --source <path>",
		Short: "Hybrid search restricted to one document's chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEngine(cmd, false, func(eng *engine) error {
				hits, err := eng.orchestrator.ChunksSearch(cmd.Context(), query, source, limit)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, hits, func(out *output.Writer) {
					for i, h := range hits {
						out.Statusf("", "%d. %s (score %.3f)", i+1, h.SourcePath, h.Score)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "restrict results to this source_path (required)")
	_ = cmd.MarkFlagRequired("source")
	commonSearchFlags(cmd, &limit, &asJSON, 5)
	return cmd
}

func newExtractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <document-query>",
		Short: "Look up a document by title or source and return its concept blob",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEngine(cmd, false, func(eng *engine) error {
				blob, err := eng.orchestrator.ExtractConcepts(cmd.Context(), query)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, blob, func(out *output.Writer) {
					out.Status("", blob.SourcePath)
					out.Status("", "summary: "+blob.Summary)
					out.Status("", "primary: "+strings.Join(blob.PrimaryConcepts, ", "))
					out.Status("", "technical: "+strings.Join(blob.TechnicalTerms, ", "))
					out.Status("", "related: "+strings.Join(blob.RelatedConcepts, ", "))
					out.Status("", "categories: "+strings.Join(blob.Categories, ", "))
				})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	var cursor string
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse the concept table's category-kind rows, paginated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, false, func(eng *engine) error {
				page, err := eng.orchestrator.BrowseCategories(cmd.Context(), cursor, limit)
				if err != nil {
					return err
				}
				return emit(cmd, asJSON, page, func(out *output.Writer) {
					for _, c := range page.Categories {
						out.Statusf("", "%s (docs %d, chunks %d)", c.Name, c.DocumentCount, c.ChunkCount)
					}
					if page.NextCursor != "" {
						out.Status("", "next cursor: "+page.NextCursor)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&cursor, "cursor", "", "pagination cursor from a previous page")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "page size")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}

// withEngine builds an engine for the current config/flags, runs fn, and
// closes it afterward. forExtraction selects whether the LLM client and
// ingestion pipeline are constructed (query commands never need them,
// "query is fully local").
func withEngine(cmd *cobra.Command, forExtraction bool, fn func(*engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	eng, err := buildEngine(cmd.Context(), cfg, forExtraction)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() { _ = eng.Close() }()
	return fn(eng)
}

// emit writes result either as JSON or via the human-readable callback.
func emit(cmd *cobra.Command, asJSON bool, result any, human func(*output.Writer)) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	human(output.New(cmd.OutOrStdout()))
	return nil
}
