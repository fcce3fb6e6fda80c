package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/core/services"
)

var (
	askLimit   int
	askJSON    bool
	askContext bool
	askAnswer  bool
	askDryRun  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the network",
	Long: `Ask a question about the CMDB in Japanese or English.

Structured questions (counts, listings, addresses, VLANs, routes,
adjacency) are answered from typed columns. Anything else runs ranked
full-text retrieval over the document index.

Examples:
  netquery ask "ノード数は?"
  netquery ask "L2SW1のインターフェース一覧"
  netquery ask "vlan 10 のポート"
  netquery ask --answer "which interfaces are down?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of full-text hits (default 5)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer as JSON")
	askCmd.Flags().BoolVar(&askContext, "context", false, "print the retrieval context block")
	askCmd.Flags().BoolVar(&askAnswer, "answer", false, "generate a final answer with the configured LLM")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "print the LLM prompt instead of calling the model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Ask(cmd.Context(), question, domain.SearchOptions{Limit: askLimit, RowCap: configuredRowCap()})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if askContext && answer.Context != "" {
		cmd.Println()
		cmd.Println(answer.Context)
	}
	if answer.Truncated {
		cmd.Println("(note: candidate scan hit the row cap; results may be incomplete)")
	}

	if askAnswer || askDryRun {
		return generateAnswer(cmd, question, answer)
	}
	return nil
}

// generateAnswer runs the QA prompt against the configured LLM, or
// prints the prompt verbatim under --dry-run.
func generateAnswer(cmd *cobra.Command, question string, answer *domain.Answer) error {
	if answer.Context == "" {
		cmd.Println("(no retrieval context; nothing to send to the model)")
		return nil
	}

	prompt := answerPrompt(question, answer.Context)
	if askDryRun {
		cmd.Println("--- prompt ---")
		cmd.Println(prompt)
		return nil
	}

	if llmService == nil {
		return errors.New("no LLM configured: set ANTHROPIC_API_KEY or run 'netquery config llm'")
	}

	text, err := llmService.Generate(cmd.Context(), prompt, driven.GenerateOptions{})
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}
	cmd.Println()
	cmd.Println(text)
	return nil
}

// answerPrompt prefers a user-customized template from the prompt
// store and falls back to the built-in one.
func answerPrompt(question, context string) string {
	if promptStore != nil {
		tpl, err := promptStore.Load(driven.PromptAnswer)
		if err == nil && strings.Count(tpl, "%s") == 2 {
			return fmt.Sprintf(tpl, context, question)
		}
	}
	return services.BuildAnswerPrompt(question, context)
}
