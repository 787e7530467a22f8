// Package pkg provides the core libraries for Planview graph analysis.
//
// # Overview
//
// Planview decides whether graphs are planar, certifies the answer, lays the
// graphs out in the plane, and decomposes them into biconnected blocks. The
// pkg directory is organized into these areas:
//
//  1. [graph] - Graph model, description parser, canonical serialization
//  2. [planar] - Planarity test, certificates, biconnected decomposition
//  3. [layout] - 2D coordinate assignment (planar + force-directed)
//  4. [analysis] - The combined per-graph analysis result
//  5. [cache] - Fingerprint-keyed result storage backends
//  6. [pipeline] - Batch orchestration over a worker pool
//  7. [render] - DOT/SVG/PNG drawings of analysis results
//
// # Architecture
//
// The typical data flow through Planview:
//
//	Graph description (text or JSON)
//	         ↓
//	    [graph] package (parse + canonicalize + fingerprint)
//	         ↓
//	    [planar] package (left-right test, certificate, blocks)
//	         ↓
//	    [layout] package (embedding-based or force-directed positions)
//	         ↓
//	    [analysis] result → cached, streamed, or rendered
//
// # Quick Start
//
// Analyze one graph:
//
//	import (
//	    "github.com/planview/planview/pkg/analysis"
//	    "github.com/planview/planview/pkg/graph"
//	)
//
//	g, _ := graph.ParseDescription("a - b; b - c; c - a")
//	res, _ := analysis.Analyze(g)
//	fmt.Println(res.IsPlanar, res.BiconnectedComponents)
//
// Run a batch with caching and a worker pool:
//
//	pool := pipeline.NewPool(pipeline.PoolConfig{})
//	defer pool.Close()
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), pool, nil)
//	for rec := range runner.RunBatch(ctx, inputs) {
//	    // rec.Index, rec.Payload, rec.Err
//	}
package pkg
