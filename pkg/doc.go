// Package pkg provides the core libraries for topochart network topology
// charts.
//
// # Overview
//
// Topochart lays out network topologies (routers, networks, ports and
// network connectors) as force-directed node-link charts. The pkg
// directory is organized into four main areas:
//
//  1. Domain: [topology] datasets, the [force] simulation, the [chart]
//     component built on the [scene] tree, and the [hello] demo
//  2. Infrastructure: [cache], [store], [config], [observability]
//  3. Output: [render] formats and the Graphviz [nodelink] engine
//  4. Orchestration: [pipeline] (load → layout → render) and [registry]
//
// # Architecture
//
// The typical data flow through topochart:
//
//	JSON/YAML dataset or embedded example
//	         ↓
//	    [topology] package (decode + validate)
//	         ↓
//	    [chart] package (bind nodes, run [force] until settled)
//	         ↓
//	    [render] package (SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
//	reg := registry.New(logger)
//	runner := pipeline.NewRunner(reg, cache.NewMemoryCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dataset: registry.DefaultDataset,
//	    Formats: []string{render.FormatSVG},
//	})
//
// [topology]: github.com/matzehuels/topochart/pkg/topology
// [force]: github.com/matzehuels/topochart/pkg/force
// [chart]: github.com/matzehuels/topochart/pkg/chart
// [scene]: github.com/matzehuels/topochart/pkg/scene
// [hello]: github.com/matzehuels/topochart/pkg/hello
// [cache]: github.com/matzehuels/topochart/pkg/cache
// [store]: github.com/matzehuels/topochart/pkg/store
// [config]: github.com/matzehuels/topochart/pkg/config
// [observability]: github.com/matzehuels/topochart/pkg/observability
// [render]: github.com/matzehuels/topochart/pkg/render
// [nodelink]: github.com/matzehuels/topochart/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/topochart/pkg/pipeline
// [registry]: github.com/matzehuels/topochart/pkg/registry
package pkg
