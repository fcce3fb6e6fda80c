package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load topology data into the CMDB",
	Long: `Load documents into the CMDB from a topology file.

Ingestion is idempotent: a document is identified by its type and ids,
so re-running the same file updates rows in place. The full-text index
follows the document table automatically.`,
}

var ingestTopologyCmd = &cobra.Command{
	Use:   "topology [file]",
	Short: "Ingest an IETF-network YAML topology",
	Long: `Parse an ietf-network YAML file (networks, nodes, termination
points, links) and upsert one document per object.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestTopology,
}

var ingestJSONLCmd = &cobra.Command{
	Use:   "jsonl [file]",
	Short: "Ingest pre-flattened JSONL documents",
	Long: `Read one JSON object per line and upsert each as a document.
Lines carry a type (network, node, tp or termination-point, link,
route) plus ids and attributes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestJSONL,
}

func init() {
	ingestCmd.AddCommand(ingestTopologyCmd)
	ingestCmd.AddCommand(ingestJSONLCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestTopology(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening topology file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	n, err := ingestService.IngestTopologyYAML(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}
	cmd.Printf("ingested %d documents from %s\n", n, args[0])
	return nil
}

func runIngestJSONL(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening jsonl file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	n, err := ingestService.IngestJSONL(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}
	cmd.Printf("ingested %d documents from %s\n", n, args[0])
	return nil
}
