// Package pipeline turns documents into rendered text and diagrams.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// defaults, and validation behave the same on every entry point.
//
// # Stages
//
//  1. Render: indented text via [render.RenderAll]
//  2. Graph: DOT via [treeviz.ToDOT], optionally laid out to SVG by Graphviz
//
// Each stage is cached independently, keyed by the document hash and the
// options that change its output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	text, err := runner.Render(ctx, doc, pipeline.Options{IndentWidth: 2})
//	svg, err := runner.Graph(ctx, doc, pipeline.Options{Format: pipeline.FormatSVG})
package pipeline

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMaxDepth is the nesting limit applied by the CLI and server when the
// configuration does not set one. The library itself has no limit.
const DefaultMaxDepth = 256

// Format constants for diagram output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// GraphFormats lists the supported diagram formats.
var GraphFormats = []string{FormatDOT, FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
// This struct supports JSON serialization for API requests.
//
// The indent unit is chosen in this order: Tabs, IndentUnit, IndentWidth
// spaces, then [render.DefaultIndentUnit].
type Options struct {
	// Text options
	IndentUnit      string `json:"indent_unit,omitempty"`
	IndentWidth     int    `json:"indent_width,omitempty"`
	Tabs            bool   `json:"tabs,omitempty"`
	MaxDepth        int    `json:"max_depth,omitempty"` // 0 = unlimited
	TrailingNewline bool   `json:"trailing_newline,omitempty"`

	// Graph options
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Logger replaces Runner.Logger for this run, e.g. a request-scoped
	// logger. Not serialized.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// CacheInfo reports whether a stage was served from cache.
type CacheInfo struct {
	RenderHit bool
	GraphHit  bool
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks numeric options and resolves the indent unit.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.IndentWidth < 0 {
		return errors.New(errors.ErrCodeInvalidIndent, "indent width must be non-negative, got %d", o.IndentWidth)
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must be non-negative, got %d", o.MaxDepth)
	}

	switch {
	case o.Tabs:
		o.IndentUnit = "\t"
	case o.IndentUnit != "":
	case o.IndentWidth > 0:
		o.IndentUnit = strings.Repeat(" ", o.IndentWidth)
	default:
		o.IndentUnit = render.DefaultIndentUnit
	}

	o.validated = true
	return nil
}

// ValidateForGraph applies defaults and checks the diagram format.
func (o *Options) ValidateForGraph() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.Format == "" {
		o.Format = FormatDOT
	}
	o.Format = strings.ToLower(o.Format)
	return errors.ValidateFormat(o.Format, GraphFormats...)
}

// RenderOptions converts the options to scribe options.
func (o *Options) RenderOptions() []render.Option {
	return []render.Option{
		render.WithIndentUnit(o.IndentUnit),
		render.WithMaxDepth(o.MaxDepth),
		render.WithTrailingNewline(o.TrailingNewline),
	}
}

// RenderKeyOpts returns cache key options for rendered text.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		IndentUnit:      o.IndentUnit,
		MaxDepth:        o.MaxDepth,
		TrailingNewline: o.TrailingNewline,
	}
}

// ArtifactKeyOpts returns cache key options for diagrams.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.Format,
		Detailed: o.Detailed,
	}
}
