package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sqlJSON bool

var sqlCmd = &cobra.Command{
	Use:   "sql [statement]",
	Short: "Run a read-only SELECT against the document table",
	Long: `Run a single read-only query over the documents table.

Only SELECT and WITH statements are accepted. Multiple statements and
mutating keywords are rejected before execution. Result rows are capped
to keep output bounded.

Example:
  netquery sql "select node_id, count(*) from documents where type='tp' group by node_id"`,
	Args: cobra.ExactArgs(1),
	RunE: runSQL,
}

func init() {
	sqlCmd.Flags().BoolVar(&sqlJSON, "json", false, "output the result set as JSON")
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	result, err := queryService.RawSQL(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("sql failed: %w", err)
	}

	if sqlJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		cmd.Println(strings.Join(cells, "\t"))
	}
	cmd.Printf("(%d rows)\n", len(result.Rows))
	if result.Truncated {
		cmd.Println("(note: result hit the row cap; add a LIMIT to narrow it)")
	}
	return nil
}
