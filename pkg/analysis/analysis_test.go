package analysis

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/planview/planview/pkg/graph"
)

func analyze(t *testing.T, desc string) *Result {
	t.Helper()
	g, err := graph.ParseDescription(desc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Analyze(g)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return res
}

const k4 = "a - b; a - c; a - d; b - c; b - d; c - d"
const k5 = "a - b; a - c; a - d; a - e; b - c; b - d; b - e; c - d; c - e; d - e"

func TestAnalyzeK4(t *testing.T) {
	res := analyze(t, k4)

	if !res.IsPlanar {
		t.Error("K4 should be planar")
	}
	if len(res.Nodes) != 4 || len(res.Edges) != 6 {
		t.Errorf("got %d nodes / %d edges, want 4 / 6", len(res.Nodes), len(res.Edges))
	}
	for _, e := range res.Edges {
		if e.IsConflict {
			t.Errorf("planar graph has conflict edge %s-%s", e.Source, e.Target)
		}
	}
	if res.BiconnectedComponents != 1 {
		t.Errorf("K4 has %d blocks, want 1", res.BiconnectedComponents)
	}
	if res.Certificate == nil || res.Certificate.Embedding == nil {
		t.Fatal("planar result should carry an embedding certificate")
	}
}

func TestAnalyzeK5(t *testing.T) {
	res := analyze(t, k5)

	if res.IsPlanar {
		t.Error("K5 should be non-planar")
	}
	// The minimal obstruction inside K5 is K5 itself: every edge conflicts.
	for _, e := range res.Edges {
		if !e.IsConflict {
			t.Errorf("edge %s-%s should be marked as a conflict", e.Source, e.Target)
		}
	}
	if res.Certificate == nil || res.Certificate.Obstruction == nil {
		t.Fatal("non-planar result should carry an obstruction certificate")
	}
	// Conflict marks carry into the block subgraphs.
	if res.BiconnectedComponents != 1 {
		t.Fatalf("K5 has %d blocks, want 1", res.BiconnectedComponents)
	}
	for _, e := range res.BiconnectedSubgraphs[0].Edges {
		if !e.IsConflict {
			t.Errorf("block edge %s-%s lost its conflict mark", e.Source, e.Target)
		}
	}
}

func TestAnalyzePath(t *testing.T) {
	res := analyze(t, "a - b; b - c")

	if !res.IsPlanar {
		t.Error("path should be planar")
	}
	if res.BiconnectedComponents != 2 {
		t.Fatalf("path a-b-c has %d blocks, want 2", res.BiconnectedComponents)
	}
	for _, sub := range res.BiconnectedSubgraphs {
		if len(sub.Edges) != 1 || len(sub.Nodes) != 2 {
			t.Errorf("block %d has %d edges / %d nodes, want 1 / 2", sub.ID, len(sub.Edges), len(sub.Nodes))
		}
	}
}

func TestAnalyzeTwoTriangles(t *testing.T) {
	res := analyze(t, "a - b; b - c; c - a; x - y; y - z; z - x")

	if !res.IsPlanar {
		t.Error("two disjoint triangles should be planar")
	}
	if res.BiconnectedComponents != 2 {
		t.Fatalf("got %d blocks, want 2", res.BiconnectedComponents)
	}

	// Block edge sets partition the graph's edge set.
	seen := make(map[[2]string]int)
	for _, sub := range res.BiconnectedSubgraphs {
		for _, e := range sub.Edges {
			seen[[2]string{e.Source, e.Target}]++
		}
	}
	if len(seen) != 6 {
		t.Errorf("blocks cover %d distinct edges, want 6", len(seen))
	}
	for e, n := range seen {
		if n != 1 {
			t.Errorf("edge %v appears in %d blocks", e, n)
		}
	}
}

func TestAnalyzeLabelsAndPositions(t *testing.T) {
	res := analyze(t, "a: Alpha\na - b")

	byID := make(map[string]NodeView)
	for _, n := range res.Nodes {
		byID[n.ID] = n
	}
	if byID["a"].Label != "Alpha" {
		t.Errorf("label of a = %q, want Alpha", byID["a"].Label)
	}
	if byID["b"].Label != "b" {
		t.Errorf("unlabeled node should fall back to its ID, got %q", byID["b"].Label)
	}
	if byID["a"].X == byID["b"].X && byID["a"].Y == byID["b"].Y {
		t.Error("distinct nodes share a position")
	}

	// Subgraphs reuse the parent layout's coordinates.
	for _, sub := range res.BiconnectedSubgraphs {
		for _, n := range sub.Nodes {
			if n != byID[n.ID] {
				t.Errorf("block node %s diverged from parent view", n.ID)
			}
		}
	}
}

func TestResultWireShape(t *testing.T) {
	res := analyze(t, k5)
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"is_planar", "nodes", "edges", "certificate", "biconnected_components", "biconnected_subgraphs"} {
		if _, ok := m[key]; !ok {
			t.Errorf("result JSON is missing %q", key)
		}
	}

	var cert struct {
		Type  string      `json:"type"`
		Edges [][2]string `json:"edges"`
	}
	if err := json.Unmarshal(m["certificate"], &cert); err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if cert.Type != "obstruction" || len(cert.Edges) != 10 {
		t.Errorf("certificate = %s, want obstruction with 10 edges", m["certificate"])
	}

	var nodes []map[string]json.RawMessage
	if err := json.Unmarshal(m["nodes"], &nodes); err != nil {
		t.Fatalf("nodes: %v", err)
	}
	for _, key := range []string{"id", "x", "y", "label"} {
		if _, ok := nodes[0][key]; !ok {
			t.Errorf("node JSON is missing %q", key)
		}
	}
}

func TestResultPlanarCertificateWireShape(t *testing.T) {
	res := analyze(t, "a - b; b - c; c - a")
	raw, err := json.Marshal(res.Certificate)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rot map[string][]string
	if err := json.Unmarshal(raw, &rot); err != nil {
		t.Fatalf("planar certificate should be a rotation map: %v", err)
	}
	if len(rot) != 3 || len(rot["a"]) != 2 {
		t.Errorf("unexpected rotation map %v", rot)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	for _, desc := range []string{k4, k5, "a - b; b - c; lone"} {
		r1 := analyze(t, desc)
		r2 := analyze(t, desc)
		if !reflect.DeepEqual(r1, r2) {
			t.Errorf("analysis of %q differs between runs", desc)
		}
	}
}

func TestAnalyzePercentNodeIDs(t *testing.T) {
	// Node IDs are opaque; printf verbs inside them must survive analysis
	// and error messages verbatim.
	res := analyze(t, "n%d - n%s; n%s - n%v; n%v - n%d")
	if !res.IsPlanar {
		t.Error("triangle should be planar")
	}
	want := map[string]bool{"n%d": true, "n%s": true, "n%v": true}
	for _, n := range res.Nodes {
		if !want[n.ID] {
			t.Errorf("node ID mangled: %q", n.ID)
		}
	}

	_, err := graph.ParseDescription("n%d - n%s; n%s - n%d")
	if err == nil {
		t.Fatal("duplicate edge should be rejected")
	}
	if got := err.Error(); !strings.Contains(got, "n%d") || strings.Contains(got, "%!") {
		t.Errorf("error message mangled the ID: %q", got)
	}
}

func TestAnalyzeIsolatedNode(t *testing.T) {
	res := analyze(t, "a - b; solo")
	if len(res.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(res.Nodes))
	}
	// Isolated nodes join no block.
	if res.BiconnectedComponents != 1 {
		t.Errorf("got %d blocks, want 1", res.BiconnectedComponents)
	}
	for _, sub := range res.BiconnectedSubgraphs {
		for _, n := range sub.Nodes {
			if n.ID == "solo" {
				t.Error("isolated node placed in a block")
			}
		}
	}
}
