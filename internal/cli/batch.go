package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

// batchCommand creates the batch command for offline batch processing.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		noCache     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Analyze a batch of graph descriptions",
		Long: `Run a batch of graph descriptions through the full pipeline.

The input is a JSON array of description strings, read from the given file or
from stdin, exactly what the HTTP API accepts. One NDJSON record per item is
written to stdout as results complete, each tagged with the item's index:

  {"index": 0, "result": {...}}
  {"index": 1, "error": {"code": "INVALID_INPUT", "message": "..."}}

Results are cached locally, so re-running a batch only analyzes new graphs.
With --interactive the records are collected into a browsable list instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runBatch(cmd, input, noCache, interactive)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the local result cache")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse results in a TUI instead of streaming NDJSON")
	return cmd
}

func (c *CLI) runBatch(cmd *cobra.Command, input string, noCache, interactive bool) error {
	ctx := cmd.Context()

	raw, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	var inputs []string
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return fmt.Errorf("input must be a JSON array of graph descriptions: %w", err)
	}

	runner, pool, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer pool.Close()
	defer runner.Cache.Close()

	p := newProgress(c.Logger)

	if interactive {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d graphs...", len(inputs)))
		spinner.Start()

		var items []batchItem
		for rec := range runner.RunBatch(ctx, inputs) {
			items = append(items, newBatchItem(rec, inputs[rec.Index]))
		}
		spinner.Stop()
		if spinner.Cancelled() {
			return ctx.Err()
		}
		sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })

		p.done(fmt.Sprintf("Analyzed %d graphs", len(inputs)))
		return browseResults(items)
	}

	enc := json.NewEncoder(os.Stdout)
	count := 0
	for rec := range runner.RunBatch(ctx, inputs) {
		if err := enc.Encode(rec); err != nil {
			return err
		}
		count++
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.done(fmt.Sprintf("Emitted %d records", count))
	return nil
}
