package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planview/planview/pkg/analysis"
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// batchItem is one batch record prepared for display.
type batchItem struct {
	index  int
	input  string
	result *analysis.Result
	err    error
}

func newBatchItem(rec pipeline.Record, input string) batchItem {
	it := batchItem{index: rec.Index, input: input, err: rec.Err}
	if rec.Err == nil {
		var res analysis.Result
		if err := json.Unmarshal(rec.Payload, &res); err != nil {
			it.err = errors.Wrap(errors.ErrCodeInternal, err, "decoding analysis result")
		} else {
			it.result = &res
		}
	}
	return it
}

// summary renders the one-line list entry for an item.
func (it batchItem) summary() string {
	head := fmt.Sprintf("#%d ", it.index)
	if it.err != nil {
		return head + styleIconError.Render(iconError) + " " + listDimStyle.Render(errors.UserMessage(it.err))
	}
	return head + planarityBadge(it.result.IsPlanar) +
		listDimStyle.Render(fmt.Sprintf("  %d nodes · %d edges · %d blocks",
			len(it.result.Nodes), len(it.result.Edges), it.result.BiconnectedComponents))
}

// detail renders the expanded view of an item.
func (it batchItem) detail() string {
	var b strings.Builder
	input := strings.TrimSpace(it.input)
	if len(input) > 200 {
		input = input[:200] + "…"
	}
	b.WriteString(listDimStyle.Render("input: ") + listNormalStyle.Render(input) + "\n")

	if it.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " +
			string(errors.GetCode(it.err)) + ": " + errors.UserMessage(it.err) + "\n")
		return b.String()
	}

	res := it.result
	b.WriteString(listDimStyle.Render("planarity: ") + planarityBadge(res.IsPlanar) + "\n")
	if !res.IsPlanar && res.Certificate != nil && res.Certificate.Obstruction != nil {
		var edges []string
		for _, e := range res.Certificate.Obstruction.Edges {
			edges = append(edges, e.Source+"-"+e.Target)
		}
		b.WriteString(listDimStyle.Render("conflicts: ") + listNormalStyle.Render(strings.Join(edges, ", ")) + "\n")
	}
	for _, sub := range res.BiconnectedSubgraphs {
		var ids []string
		for _, n := range sub.Nodes {
			ids = append(ids, n.ID)
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("block %d: ", sub.ID)) +
			listNormalStyle.Render(strings.Join(ids, " ")) + "\n")
	}
	return b.String()
}

// =============================================================================
// resultsModel - Interactive batch result browser
// =============================================================================

// resultsModel is the bubbletea model for browsing batch results.
type resultsModel struct {
	items    []batchItem
	cursor   int
	expanded bool
	height   int
	offset   int
}

func newResultsModel(items []batchItem) resultsModel {
	return resultsModel{items: items, height: 15}
}

func (m resultsModel) Init() tea.Cmd {
	return nil
}

func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.expanded {
				m.expanded = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.expanded = !m.expanded
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m resultsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Batch Results"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	if m.expanded {
		it := m.items[m.cursor]
		b.WriteString(listSelectedStyle.Render(it.summary()))
		b.WriteString("\n\n")
		b.WriteString(it.detail())
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		line := m.items[i].summary()
		if i == m.cursor {
			b.WriteString("▸ " + listSelectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// browseResults runs the interactive result browser.
func browseResults(items []batchItem) error {
	if len(items) == 0 {
		printInfo("no results")
		return nil
	}
	_, err := tea.NewProgram(newResultsModel(items)).Run()
	return err
}
