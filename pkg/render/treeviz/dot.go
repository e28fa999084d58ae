package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scribe/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds depth and child count to node labels.
	// When false, only the block name or line text is shown.
	Detailed bool
}

// dotIndent is the indentation width of generated DOT source.
const dotIndent = 2

// ToDOT converts root elements to Graphviz DOT source.
// Nodes are numbered n0, n1, ... in pre-order. Nil elements are skipped.
func ToDOT(elements []render.Element, opts Options) (string, error) {
	stmts := []render.Element{
		render.NewLine("rankdir=TB;"),
		render.NewLine(`bgcolor="transparent";`),
		render.NewLine(`node [shape=box, style="rounded,filled", fillcolor=white, fontname="monospace", fontsize=14];`),
		render.NewLine("ranksep=0.4;"),
		render.NewLine("nodesep=0.3;"),
	}

	var nodes, edges []render.Element
	id := 0
	for _, root := range elements {
		var parents []string // parents[d] is the node id of the open block at depth d
		err := render.Walk(root, func(e render.Element, depth int) error {
			name := fmt.Sprintf("n%d", id)
			id++
			nodes = append(nodes, render.NewLine(fmt.Sprintf("%s [%s];", name, strings.Join(fmtAttrs(e, depth, opts.Detailed), ", "))))
			if depth > 0 {
				edges = append(edges, render.NewLine(fmt.Sprintf("%s -> %s;", parents[depth-1], name)))
			}
			parents = append(parents[:depth], name)
			return nil
		})
		if err != nil {
			return "", err
		}
	}

	stmts = append(stmts, nodes...)
	stmts = append(stmts, edges...)
	out, err := render.Render(render.NewBlock("digraph G", stmts...),
		render.WithIndentWidth(dotIndent),
		render.WithTrailingNewline(true),
	)
	if err != nil {
		return "", fmt.Errorf("render dot: %w", err)
	}
	return out, nil
}

func fmtLabel(e render.Element, depth int, detailed bool) string {
	var label string
	children := 0
	switch v := e.(type) {
	case *render.Block:
		label = v.Name()
		children = v.Len()
	case *render.Line:
		label = v.Text()
	}
	if !detailed {
		return label
	}
	if _, ok := e.(*render.Block); ok {
		return fmt.Sprintf("%s\ndepth: %d\nchildren: %d", label, depth, children)
	}
	return fmt.Sprintf("%s\ndepth: %d", label, depth)
}

func fmtAttrs(e render.Element, depth int, detailed bool) []string {
	attrs := []string{"label=" + quoteDOT(fmtLabel(e, depth, detailed))}
	if _, ok := e.(*render.Line); ok {
		attrs = append(attrs, "shape=note", `style="filled"`, "fillcolor=whitesmoke")
	}
	return attrs
}

// quoteDOT returns s as a DOT double-quoted string. Newlines become the
// DOT line break escape; other control characters are replaced by a space.
func quoteDOT(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root tag (pt units, fixed size)
// with a pixel-sized tag that scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
