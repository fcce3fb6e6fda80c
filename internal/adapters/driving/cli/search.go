package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run ranked full-text retrieval directly",
	Long: `Search the document index without intent classification.

The query is tokenized into an injection-safe FTS5 MATCH expression and
hits are ranked by BM25. Use this when you want raw ranked documents
rather than a formatted answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of hits (default 5)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output hits as JSON")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "print the retrieval context block")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	answer, err := queryService.Retrieve(cmd.Context(), query, domain.SearchOptions{Limit: searchLimit, RowCap: configuredRowCap()})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, answer.Hits)
	}

	cmd.Println(answer.Text)
	if searchContext && answer.Context != "" {
		cmd.Println()
		cmd.Println(answer.Context)
	}
	if answer.Truncated {
		cmd.Println("(note: candidate scan hit the row cap; results may be incomplete)")
	}
	return nil
}
