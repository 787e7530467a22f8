package graph

import (
	"encoding/json"
	"strings"

	"github.com/planview/planview/pkg/errors"
)

// jsonGraph is the JSON encoding of a graph description.
type jsonGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ParseDescription parses a textual graph description into a Graph.
//
// Two encodings are accepted: the plain-text statement format documented in
// the package comment, and a JSON object {"nodes": [...], "edges": [...]}.
// The encoding is chosen by the first non-space character.
//
// All parse and validation failures return an error with code
// ErrCodeInvalidInput or ErrCodeInvalidGraph; they are per-item user errors,
// never internal faults.
func ParseDescription(text string) (*Graph, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty graph description")
	}
	if trimmed[0] == '{' {
		return parseJSON(trimmed)
	}
	return parseText(trimmed)
}

func parseJSON(text string) (*Graph, error) {
	var jg jsonGraph
	if err := json.Unmarshal([]byte(text), &jg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed JSON graph")
	}
	// Edge endpoints implicitly declare nodes, matching the text format.
	return build(jg.Nodes, jg.Edges)
}

func parseText(text string) (*Graph, error) {
	var nodes []Node
	var edges []Edge

	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			switch {
			case strings.Contains(stmt, "-"):
				parts := strings.SplitN(stmt, "-", 2)
				u, v := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
				if !validID(u) || !validID(v) {
					return nil, errors.New(errors.ErrCodeInvalidInput, "malformed edge statement %q", stmt)
				}
				edges = append(edges, Edge{Source: u, Target: v})
			case strings.Contains(stmt, ":"):
				parts := strings.SplitN(stmt, ":", 2)
				id, label := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
				if !validID(id) {
					return nil, errors.New(errors.ErrCodeInvalidInput, "malformed node statement %q", stmt)
				}
				nodes = append(nodes, Node{ID: id, Label: label})
			default:
				if !validID(stmt) {
					return nil, errors.New(errors.ErrCodeInvalidInput, "malformed statement %q", stmt)
				}
				nodes = append(nodes, Node{ID: stmt})
			}
		}
	}

	return build(nodes, edges)
}

// build assembles a Graph from parsed statements. Edge endpoints implicitly
// declare their nodes; an explicit node statement for the same ID refines the
// label. Redeclaring a node without a label is tolerated, conflicting labels
// are not.
func build(nodes []Node, edges []Edge) (*Graph, error) {
	byID := make(map[string]Node)
	var order []string

	declare := func(n Node) error {
		prev, ok := byID[n.ID]
		if !ok {
			byID[n.ID] = n
			order = append(order, n.ID)
			return nil
		}
		if n.Label == "" {
			return nil
		}
		if prev.Label != "" && prev.Label != n.Label {
			return errors.New(errors.ErrCodeInvalidInput, "conflicting labels for node %q: %q vs %q", n.ID, prev.Label, n.Label)
		}
		prev.Label = n.Label
		byID[n.ID] = prev
		return nil
	}

	for _, n := range nodes {
		if err := declare(n); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := declare(Node{ID: e.Source}); err != nil {
			return nil, err
		}
		if err := declare(Node{ID: e.Target}); err != nil {
			return nil, err
		}
	}

	all := make([]Node, len(order))
	for i, id := range order {
		all[i] = byID[id]
	}
	return New(all, edges)
}

// validID reports whether s is usable as a node identifier in the text
// format. The excluded characters are the format's own delimiters.
func validID(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t-:;#")
}
