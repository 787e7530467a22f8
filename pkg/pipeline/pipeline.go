// Package pipeline orchestrates batch graph analysis for Planview.
//
// This package implements the parse → cache lookup → analyze → emit flow
// shared by the HTTP API and the CLI. By centralizing this logic, both entry
// points get identical caching, deduplication, and failure semantics.
//
// # Architecture
//
// A batch moves through four stages:
//
//  1. Parse: every input description is parsed and fingerprinted; parse
//     failures become immediate failure records.
//  2. Split: fingerprints are looked up in the cache; hits are emitted right
//     away in input order.
//  3. Analyze: distinct missed fingerprints are dispatched to a fixed-size
//     worker pool, one analysis per fingerprint no matter how many batch
//     items share it.
//  4. Drain: results are emitted as they complete, tagged with every input
//     index that shares the fingerprint, and written back to the cache.
//
// A batch of N items always produces exactly N records with indices 0..N-1,
// no duplicates and no gaps, regardless of completion order.
//
// # Usage
//
//	pool := pipeline.NewPool(pipeline.PoolConfig{})
//	defer pool.Close()
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), pool, logger)
//	for rec := range runner.RunBatch(ctx, inputs) {
//	    line, _ := json.Marshal(rec)
//	    // stream line to the client
//	}
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/planview/planview/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCacheTTL bounds how long an analysis stays reusable. Results
	// are pure functions of the graph, so the TTL exists only to cap
	// backend growth.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultTaskTimeout is the per-analysis timeout. Zero disables the
	// timeout entirely; the default is generous because the planarity
	// machinery is near-linear even on large graphs.
	DefaultTaskTimeout = 30 * time.Second
)

// Record is one orchestrator output: the analysis (or failure) for the batch
// item at Index. Payload holds the serialized analysis result and is nil
// exactly when Err is non-nil.
type Record struct {
	Index     int
	Payload   json.RawMessage
	Err       error
	FromCache bool
}

// wireError is the failure half of the streaming protocol.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarshalJSON emits the streaming wire shape:
//
//	{"index": 3, "result": {...}}
//	{"index": 4, "error": {"code": "INVALID_INPUT", "message": "..."}}
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Index int       `json:"index"`
			Error wireError `json:"error"`
		}{
			Index: r.Index,
			Error: wireError{
				Code:    string(errors.GetCode(r.Err)),
				Message: errors.UserMessage(r.Err),
			},
		})
	}
	return json.Marshal(struct {
		Index  int             `json:"index"`
		Result json.RawMessage `json:"result"`
	}{Index: r.Index, Result: r.Payload})
}
