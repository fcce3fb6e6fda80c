package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/core/domain"
)

var (
	linksNode string
	linksTP   string
	linksJSON bool
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Show the VLAN-annotated link-adjacency graph",
	Long: `Show link adjacency derived from link documents.

Without flags, every node is printed with its edges, including isolated
nodes. --node restricts to one node; --tp restricts to one exact
interface given as NODE:TP.

Each edge carries a VLAN annotation: the link's own VLAN when present,
the shared endpoint VLAN, a vlanN suffix parsed from the link id, or
src|dst with "?" when nothing resolves.`,
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().StringVar(&linksNode, "node", "", "restrict to links touching this node")
	linksCmd.Flags().StringVar(&linksTP, "tp", "", "restrict to links touching this interface, as NODE:TP")
	linksCmd.Flags().BoolVar(&linksJSON, "json", false, "output edges as JSON strings")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	switch {
	case linksTP != "":
		node, tp, ok := strings.Cut(linksTP, ":")
		if !ok {
			return fmt.Errorf("%w: --tp expects NODE:TP", domain.ErrInvalidInput)
		}
		edges, err := topologyService.InterfaceAdjacency(ctx, node, tp)
		if err != nil {
			return fmt.Errorf("listing interface links: %w", err)
		}
		return printEdges(cmd, edges)

	case linksNode != "":
		edges, err := topologyService.NodeAdjacency(ctx, linksNode)
		if err != nil {
			return fmt.Errorf("listing node links: %w", err)
		}
		return printEdges(cmd, edges)

	default:
		adj, err := topologyService.FullAdjacency(ctx)
		if err != nil {
			return fmt.Errorf("building adjacency graph: %w", err)
		}
		return printAdjacency(cmd, adj)
	}
}

func printEdges(cmd *cobra.Command, edges []domain.Edge) error {
	if linksJSON {
		out := make([]string, 0, len(edges))
		for _, e := range edges {
			out = append(out, e.String())
		}
		return printJSON(cmd, out)
	}
	if len(edges) == 0 {
		cmd.Println("(no links)")
		return nil
	}
	for _, e := range edges {
		cmd.Println(e.String())
	}
	return nil
}

func printAdjacency(cmd *cobra.Command, adj *domain.Adjacency) error {
	if linksJSON {
		out := make(map[string][]string, len(adj.Nodes))
		for _, node := range adj.Nodes {
			edges := make([]string, 0, len(adj.Edges[node]))
			for _, e := range adj.Edges[node] {
				edges = append(edges, e.String())
			}
			out[node] = edges
		}
		return printJSON(cmd, out)
	}

	if len(adj.Nodes) == 0 {
		cmd.Println("(no nodes)")
		return nil
	}
	for _, node := range adj.Nodes {
		cmd.Printf("%s:\n", node)
		edges := adj.Edges[node]
		if len(edges) == 0 {
			cmd.Println("  - (no links)")
			continue
		}
		for _, e := range edges {
			cmd.Printf("  - %s\n", e.String())
		}
	}
	return nil
}
