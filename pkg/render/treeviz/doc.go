// Package treeviz draws element trees as node-link diagrams.
//
// # Overview
//
// Every block and line of a tree becomes a Graphviz node, with an edge from
// each block to each of its children. Blocks are drawn as rounded boxes and
// lines as plain notes, so the nesting that the text renderer expresses with
// indentation becomes visible as a hierarchy.
//
// # Usage
//
//	dot, err := treeviz.ToDOT(doc.Elements(), treeviz.Options{})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// The DOT source itself is assembled as a [render.Block] named "digraph G"
// and rendered with a two-space indent, so it is produced by the same
// renderer it visualises.
//
// # Options
//
//   - Detailed: adds the nesting depth and the child count to each label
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no external binary is needed.
//
// [render.Block]: github.com/matzehuels/scribe/pkg/render.Block
package treeviz
