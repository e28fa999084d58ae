// Package pkg provides the core libraries for Scribe hierarchical text rendering.
//
// # Overview
//
// Scribe turns trees of named blocks and text lines into brace-delimited,
// indented text of the kind used by nginx, HCL and similar config formats:
//
//	server {
//	    listen 80;
//	    location / {
//	        root /srv;
//	    }
//	}
//
// The pkg directory is organized into four areas:
//
//  1. [render] - Elements, the render context, and the render algorithm
//  2. [document] - Documents of root elements and their JSON, TOML and YAML forms
//  3. [pipeline] - Orchestration (validate → render → cache) shared by CLI and server
//  4. [cache] - File, memory and Redis caches for rendered output
//
// # Architecture
//
// The typical data flow:
//
//	JSON / TOML / YAML file or HTTP body
//	         ↓
//	    [document] package (decode + validate)
//	         ↓
//	    [pipeline] package (options, cache lookup)
//	         ↓
//	    [render] package (indented text)  or  [render/treeviz] (DOT / SVG)
//
// # Quick Start
//
// Build and render a tree directly:
//
//	import "github.com/matzehuels/scribe/pkg/render"
//
//	tree := render.NewBlock("server",
//	    render.NewLine("listen 80;"),
//	    render.NewBlock("location /", render.NewLine("root /srv;")),
//	)
//	out, err := render.Render(tree, render.WithIndentWidth(4))
//
// Render a document file with caching:
//
//	doc, _ := document.Import("site.yaml")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	out, _ := runner.Render(ctx, doc, pipeline.Options{Tabs: true})
//
// # Supporting Packages
//
// [errors] - Structured errors with stable codes, shared by library, CLI and
// HTTP responses.
//
// [observability] - Hook interfaces for render, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// [render]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/render
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/render/treeviz
// [document]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/document
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/scribe/pkg/buildinfo
package pkg
