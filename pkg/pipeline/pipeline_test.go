package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/observability"
	"github.com/matzehuels/scribe/pkg/render"
)

func testDoc() *document.Document {
	return document.FromElements(
		render.NewBlock("root",
			render.NewLine("a"),
			render.NewBlock("child", render.NewLine("b")),
		),
	)
}

func TestValidateAndSetDefaults_IndentUnit(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", Options{}, " "},
		{"width", Options{IndentWidth: 4}, "    "},
		{"unit", Options{IndentUnit: "--"}, "--"},
		{"unit beats width", Options{IndentUnit: "-", IndentWidth: 3}, "-"},
		{"tabs beat all", Options{Tabs: true, IndentUnit: "-", IndentWidth: 3}, "\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.IndentUnit != tt.want {
				t.Errorf("IndentUnit = %q, want %q", opts.IndentUnit, tt.want)
			}
		})
	}
}

func TestValidateAndSetDefaults_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{IndentWidth: -1}, errors.ErrCodeInvalidIndent},
		{"negative depth", Options{MaxDepth: -2}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateForGraph(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", FormatDOT, false},
		{"dot", FormatDOT, false},
		{"SVG", FormatSVG, false},
		{"png", "", true},
	}

	for _, tt := range tests {
		opts := Options{Format: tt.format}
		err := opts.ValidateForGraph()
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateForGraph(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ValidateForGraph(%q) code = %s", tt.format, errors.GetCode(err))
			}
			continue
		}
		if opts.Format != tt.want {
			t.Errorf("ValidateForGraph(%q) format = %q, want %q", tt.format, opts.Format, tt.want)
		}
	}
}

func TestRenderText(t *testing.T) {
	out, err := RenderText(testDoc(), Options{IndentWidth: 2, TrailingNewline: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "root {\n  a\n  child {\n    b\n  }\n}\n"
	if out != want {
		t.Errorf("RenderText =\n%q\nwant\n%q", out, want)
	}
}

func TestRenderText_MaxDepth(t *testing.T) {
	_, err := RenderText(testDoc(), Options{MaxDepth: 1})
	if !errors.Is(err, errors.ErrCodeDepthExceeded) {
		t.Errorf("error = %v, want depth exceeded", err)
	}
}

func TestRenderText_NilDocument(t *testing.T) {
	if _, err := RenderText(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestDocumentHash(t *testing.T) {
	h1, err := DocumentHash(testDoc())
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := DocumentHash(testDoc())
	if h1 != h2 {
		t.Error("equal documents should hash equally")
	}
	h3, _ := DocumentHash(document.FromElements(render.NewLine("x")))
	if h1 == h3 {
		t.Error("different documents should hash differently")
	}
}

// recordingHooks counts cache and render events.
type recordingHooks struct {
	observability.NoopRenderHooks
	hits, misses, sets, renders int
}

func (h *recordingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }
func (h *recordingHooks) OnRenderStart(context.Context, string, int) {
	h.renders++
}

func TestRunner_RenderCaching(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)
	observability.SetRenderHooks(hooks)
	defer observability.Reset()

	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, hit, err := r.RenderWithCacheInfo(ctx, testDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss")
	}

	second, hit, err := r.RenderWithCacheInfo(ctx, testDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit")
	}
	if first != second {
		t.Errorf("cached output differs: %q vs %q", first, second)
	}

	// Different options produce a different key.
	if _, hit, _ := r.RenderWithCacheInfo(ctx, testDoc(), Options{IndentWidth: 2}); hit {
		t.Error("changed indent should miss")
	}

	// Refresh bypasses the lookup.
	if _, hit, _ := r.RenderWithCacheInfo(ctx, testDoc(), Options{Refresh: true}); hit {
		t.Error("refresh should not report a hit")
	}

	if hooks.hits != 1 || hooks.misses != 2 || hooks.sets != 3 || hooks.renders != 3 {
		t.Errorf("hooks = hits %d misses %d sets %d renders %d, want 1/2/3/3",
			hooks.hits, hooks.misses, hooks.sets, hooks.renders)
	}
}

func TestRunner_OptionsLogger(t *testing.T) {
	var runnerLog, runLog bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&runnerLog, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	runLogger := log.NewWithOptions(&runLog, log.Options{Level: log.DebugLevel})
	if _, err := r.Render(ctx, testDoc(), Options{Logger: runLogger}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(runLog.String(), "rendered document") {
		t.Errorf("per-run logger got %q, want the render event", runLog.String())
	}
	if runnerLog.Len() != 0 {
		t.Errorf("runner logger should be bypassed, got %q", runnerLog.String())
	}

	if _, err := r.Render(ctx, testDoc(), Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(runnerLog.String(), "rendered document") {
		t.Error("runner logger should be used when the options carry none")
	}
}

func TestRunner_RenderErrorNotCached(t *testing.T) {
	c, _ := cache.NewMemoryCache(16)
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	if _, err := r.Render(ctx, testDoc(), Options{MaxDepth: 1}); err == nil {
		t.Fatal("expected depth error")
	}
	if c.Len() != 0 {
		t.Errorf("failed render should not be cached, Len() = %d", c.Len())
	}
}

func TestRunner_NullCache(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, hit, err := r.RenderWithCacheInfo(ctx, testDoc(), Options{})
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("null cache should never hit")
		}
	}
}

func TestRunner_GraphDOT(t *testing.T) {
	c, _ := cache.NewMemoryCache(16)
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	dot, hit, err := r.GraphWithCacheInfo(ctx, testDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first graph should miss")
	}
	s := string(dot)
	if !strings.HasPrefix(s, "digraph G {") {
		t.Errorf("DOT should start with digraph header:\n%s", s)
	}
	if !strings.Contains(s, "n0 -> n1;") {
		t.Errorf("DOT missing root edge:\n%s", s)
	}

	again, hit, err := r.GraphWithCacheInfo(ctx, testDoc(), Options{Format: "dot"})
	if err != nil {
		t.Fatal(err)
	}
	if !hit || !bytes.Equal(dot, again) {
		t.Error("second graph should be served from cache")
	}

	if _, hit, _ := r.GraphWithCacheInfo(ctx, testDoc(), Options{Detailed: true}); hit {
		t.Error("detailed graph should use a separate key")
	}
}

func TestRunner_GraphSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz layout in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svg, err := NewRunner(nil, nil, nil).Graph(ctx, testDoc(), Options{Format: FormatSVG})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}

func TestRunner_GraphInvalidFormat(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Graph(context.Background(), testDoc(), Options{Format: "png"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want invalid format", err)
	}
}
