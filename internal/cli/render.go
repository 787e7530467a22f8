package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planview/planview/pkg/analysis"
	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/render"
)

// renderCommand creates the render command for drawing analyses.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw an analyzed graph as DOT, SVG, or PNG",
		Long: `Analyze a graph description and draw the result.

Node positions come from the computed layout and are pinned, so the drawing
matches the analysis. Edges in the planarity obstruction are drawn in red.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd, input, output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg, png")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output, format string) error {
	switch format {
	case "dot", "svg", "png":
	default:
		return fmt.Errorf("unknown format %q (want dot, svg, or png)", format)
	}

	desc, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, err := graph.ParseDescription(desc)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(cmd.Context(), "Analyzing and rendering...")
	spinner.Start()

	res, err := analysis.Analyze(g)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}

	dot := render.ToDOT(res, render.Options{})
	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.ToSVG(cmd.Context(), dot)
	case "png":
		data, err = render.ToPNG(cmd.Context(), dot)
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", format, err)
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return cmd.Context().Err()
	}

	path := output
	if path == "" {
		if input == "-" {
			path = "graph." + format
		} else {
			path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Rendered %s", planarityBadge(res.IsPlanar))
	printFile(path)
	printNewline()
	printNextStep("Inspect the analysis", appName+" analyze --json "+input)
	return nil
}
