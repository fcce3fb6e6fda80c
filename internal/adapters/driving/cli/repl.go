package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/adapters/driving/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive question prompt",
	Long: `Start an interactive prompt for asking questions about the network.

Type a question and press Enter; type exit, quit or :q to leave.`,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(_ *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(queryService), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	return nil
}
