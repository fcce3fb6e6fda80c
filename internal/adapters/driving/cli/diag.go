package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/core/domain"
)

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Show database health and document counts",
	RunE:  runDiag,
}

func init() {
	rootCmd.AddCommand(diagCmd)
}

func runDiag(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	cmd.Printf("database: %s\n", store.Path())
	if info, err := os.Stat(store.Path()); err == nil {
		cmd.Printf("size: %d bytes\n", info.Size())
	}

	counts, err := store.CountByType(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	cmd.Println("documents:")
	total := 0
	for _, t := range []domain.DocType{
		domain.DocTypeNetwork,
		domain.DocTypeNode,
		domain.DocTypeTP,
		domain.DocTypeLink,
		domain.DocTypeRoute,
	} {
		cmd.Printf("  %-8s %d\n", t, counts[t])
		total += counts[t]
	}
	cmd.Printf("total: %d\n", total)

	if llmService != nil {
		cmd.Printf("llm: %s\n", llmService.ModelName())
	} else {
		cmd.Println("llm: (not configured)")
	}
	if events != nil && events.Path() != "" {
		cmd.Printf("event log: %s\n", events.Path())
	}
	return nil
}
