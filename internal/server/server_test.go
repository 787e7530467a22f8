package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planview/planview/internal/config"
	"github.com/planview/planview/pkg/cache"
	"github.com/planview/planview/pkg/pipeline"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	pool := pipeline.NewPool(pipeline.PoolConfig{Workers: 2})
	t.Cleanup(pool.Close)
	runner := pipeline.NewRunner(cache.NewMemoryCache(), pool, nil)
	srv := New(runner, config.Default().Server, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestProcessBatchStreamsNDJSON(t *testing.T) {
	ts := testServer(t)

	const k5 = "a - b; a - c; a - d; a - e; b - c; b - d; b - e; c - d; c - e; d - e"
	const k4 = "a - b; a - c; a - d; b - c; b - d; c - d"
	body, _ := json.Marshal([]string{k5, k4, k5})

	resp, err := http.Post(ts.URL+"/process-batch", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("content type = %q", ct)
	}

	type line struct {
		Index  int             `json:"index"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	var lines []line
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", sc.Text(), err)
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	seen := make(map[int]bool)
	for _, l := range lines {
		if seen[l.Index] {
			t.Errorf("index %d repeated", l.Index)
		}
		seen[l.Index] = true
		if l.Error != nil {
			t.Errorf("index %d failed: %s", l.Index, l.Error)
		}
		var res struct {
			IsPlanar bool `json:"is_planar"`
		}
		if err := json.Unmarshal(l.Result, &res); err != nil {
			t.Fatalf("index %d result: %v", l.Index, err)
		}
		if wantPlanar := l.Index == 1; res.IsPlanar != wantPlanar {
			t.Errorf("index %d: is_planar = %v", l.Index, res.IsPlanar)
		}
	}
}

func TestProcessBatchReportsParseFailures(t *testing.T) {
	ts := testServer(t)
	body, _ := json.Marshal([]string{"a -"})

	resp, err := http.Post(ts.URL+"/process-batch", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	if !sc.Scan() {
		t.Fatal("no response line")
	}
	if !strings.Contains(sc.Text(), `"error"`) {
		t.Errorf("expected error record, got %s", sc.Text())
	}
}

func TestProcessBatchRejectsBadBody(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Post(ts.URL+"/process-batch", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Error.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", payload.Error.Code)
	}
}
