// Package cli implements the netquery command-line interface using cobra.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/opscore-io/netquery/internal/adapters/driven/config/file"
	"github.com/opscore-io/netquery/internal/adapters/driven/llm/anthropic"
	"github.com/opscore-io/netquery/internal/adapters/driven/storage/sqlite"
	"github.com/opscore-io/netquery/internal/core/ports/driven"
	"github.com/opscore-io/netquery/internal/core/ports/driving"
	"github.com/opscore-io/netquery/internal/core/services"
	"github.com/opscore-io/netquery/internal/eventlog"
	"github.com/opscore-io/netquery/internal/logger"
	topology "github.com/opscore-io/netquery/internal/normalisers/topology"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

// Persistent flags.
var (
	flagVerbose   bool
	flagDBPath    string
	flagConfigDir string
	flagEventsDir string
)

// Services wired by ensureServices. Tests replace these directly.
var (
	store           *sqlite.Store
	configStore     driven.ConfigStore
	promptStore     driven.PromptStore
	llmService      driven.LLMService
	queryService    driving.QueryService
	topologyService driving.TopologyService
	ingestService   driving.IngestService
	events          *eventlog.Log
)

// rootCmd is the base command for netquery.
var rootCmd = &cobra.Command{
	Use:   "netquery",
	Short: "Natural-language queries over a network CMDB",
	Long: `netquery answers questions about network inventory stored in a local
SQLite CMDB: node and interface counts, IP addresses, VLAN membership,
routing entries, and link adjacency. Questions may be asked in Japanese
or English; anything the structured paths do not recognize falls back
to ranked full-text retrieval.

Load data with 'netquery ingest', then query with 'netquery ask' or the
interactive 'netquery repl'. 'netquery mcp serve' exposes the same
pipeline to MCP clients.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the SQLite database (default ~/.netquery/cmdb.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.netquery)")
	rootCmd.PersistentFlags().StringVar(&flagEventsDir, "events-dir", "", "directory for JSONL request event logs (disabled when empty)")
}

// Execute runs the root command and releases resources afterwards.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// ensureServices wires the service graph on first use. Commands that
// never touch the store (version, help) skip it entirely.
func ensureServices() error {
	if queryService != nil {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	promptStore, err = configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	store, err = sqlite.NewStore(resolveDBPath())
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}

	events, err = eventlog.New(flagEventsDir)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}

	llmService = newLLMFromConfig()

	topologyService = services.NewTopologyService(store.DocumentStore())
	queryService = services.NewQueryService(
		store.DocumentStore(),
		store.SearchIndex(),
		store.RawQuerier(),
		topologyService,
		llmService,
	)
	ingestService = services.NewIngestService(store.DocumentStore(), topology.New())

	return nil
}

// resolveDBPath prefers the --db flag, then the config file, then the
// store's built-in default.
func resolveDBPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return configStore.GetString("db.path")
}

// configuredRowCap reads the search.row_cap setting. Zero when unset;
// the services clamp non-positive caps to the built-in default.
func configuredRowCap() int {
	if configStore == nil {
		return 0
	}
	return configStore.GetInt("search.row_cap")
}

// newLLMFromConfig builds the Anthropic adapter when a key is
// available. Returns nil otherwise; the query pipeline degrades to
// literal retrieval without an LLM.
func newLLMFromConfig() driven.LLMService {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		apiKey = configStore.GetString("llm.api_key")
	}
	if apiKey == "" {
		return nil
	}

	svc, err := anthropic.NewLLMService(anthropic.Config{
		APIKey:  apiKey,
		BaseURL: configStore.GetString("llm.base_url"),
		Model:   configStore.GetString("llm.model"),
	})
	if err != nil {
		logger.Warn("llm disabled: %v", err)
		return nil
	}
	svc.SetPromptStore(promptStore)
	return svc
}

func closeServices() {
	if llmService != nil {
		llmService.Close() //nolint:errcheck
	}
	if store != nil {
		store.Close() //nolint:errcheck
	}
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	cmd.Println(string(blob))
	return nil
}
