package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planview/planview/pkg/analysis"
	"github.com/planview/planview/pkg/graph"
)

// analyzeCommand creates the analyze command for one-shot analysis.
func (c *CLI) analyzeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a single graph description",
		Long: `Analyze a graph description for planarity.

Reads a description from the given file, or from stdin when the argument is
omitted or "-". The description format is line-oriented:

  a - b        an undirected edge (endpoints are declared implicitly)
  c            an isolated node
  d: Label     a node with a display label
  # comment

Statements can also be separated with semicolons, and a JSON object with
"nodes" and "edges" is accepted as an alternative.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runAnalyze(input, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the raw analysis result as JSON")
	return cmd
}

func (c *CLI) runAnalyze(input string, asJSON bool) error {
	desc, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	g, err := graph.ParseDescription(desc)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	res, err := analysis.Analyze(g)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Analyzed %d nodes, %d edges", g.NodeCount(), g.EdgeCount()))

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printAnalysis(res, false)
	return nil
}

// printAnalysis renders one result for the terminal.
func printAnalysis(res *analysis.Result, cached bool) {
	fmt.Println(StyleTitle.Render("Analysis") + "  " + planarityBadge(res.IsPlanar))
	printStats(len(res.Nodes), len(res.Edges), res.BiconnectedComponents, cached)

	if !res.IsPlanar && res.Certificate != nil && res.Certificate.Obstruction != nil {
		var edges []string
		for _, e := range res.Certificate.Obstruction.Edges {
			edges = append(edges, e.Source+"-"+e.Target)
		}
		printInfo("conflict edges: %s", strings.Join(edges, ", "))
	}

	for _, sub := range res.BiconnectedSubgraphs {
		var ids []string
		for _, n := range sub.Nodes {
			ids = append(ids, n.ID)
		}
		fmt.Println("  " + StyleDim.Render(fmt.Sprintf("block %d:", sub.ID)) + " " + StyleValue.Render(strings.Join(ids, " ")))
	}
}

// readInput reads a file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
