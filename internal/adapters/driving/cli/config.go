package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opscore-io/netquery/internal/adapters/driven/llm/anthropic"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage netquery configuration",
	Long: `View and edit the configuration file (~/.netquery/config.toml).

Recognized keys:
  db.path         path to the SQLite database
  llm.api_key     Anthropic API key (ANTHROPIC_API_KEY takes precedence)
  llm.model       model name
  llm.base_url    alternative API endpoint
  search.row_cap  candidate row cap for retrieval (default 200)`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the Anthropic LLM interactively",
	RunE:  runConfigLLM,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	cmd.Println("[Database]")
	dbPath := configStore.GetString("db.path")
	if dbPath == "" {
		dbPath = store.Path()
	}
	cmd.Printf("  Path: %s\n", dbPath)
	cmd.Println()

	cmd.Println("[LLM]")
	model := configStore.GetString("llm.model")
	if model == "" {
		model = anthropic.DefaultModel
	}
	cmd.Printf("  Model: %s\n", model)
	if baseURL := configStore.GetString("llm.base_url"); baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cmd.Println("  API Key: (from environment)")
	case configStore.GetString("llm.api_key") != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(configStore.GetString("llm.api_key")))
	default:
		cmd.Println("  API Key: (not set)")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = n
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("set %s\n", key)
	return nil
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Enter model name [%s]: ", anthropic.DefaultModel)
	model := readLine(reader)
	if model == "" {
		model = anthropic.DefaultModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := configStore.Set("llm.model", model); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	if err := configStore.Set("llm.api_key", apiKey); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("LLM configured: %s\n", model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
