package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-type defaults when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// RenderWithCacheInfo renders a document to text with caching and returns
// cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *document.Document, opts Options) (string, bool, error) {
	if doc == nil {
		return "", false, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", false, err
	}

	docHash, err := DocumentHash(doc)
	if err != nil {
		return "", false, err
	}
	cacheKey := r.Keyer.RenderKey(docHash, opts.RenderKeyOpts())

	logger := r.logger(opts)
	if data, hit := r.lookup(ctx, logger, cacheKey, "render", opts.Refresh); hit {
		return string(data), true, nil
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, "text", doc.Len())
	out, err := RenderText(doc, opts)
	observability.Render().OnRenderComplete(ctx, "text", len(out), time.Since(start), err)
	if err != nil {
		return "", false, err
	}

	logger.Debug("rendered document",
		"roots", doc.Len(),
		"bytes", len(out),
		"duration", time.Since(start))

	r.store(ctx, logger, cacheKey, "render", []byte(out), cache.TTLRender)
	return out, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc *document.Document, opts Options) (string, error) {
	out, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return out, err
}

// GraphWithCacheInfo renders a document to a diagram with caching and
// returns cache hit info.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, doc *document.Document, opts Options) ([]byte, bool, error) {
	if doc == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := opts.ValidateForGraph(); err != nil {
		return nil, false, err
	}

	docHash, err := DocumentHash(doc)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts())

	logger := r.logger(opts)
	if data, hit := r.lookup(ctx, logger, cacheKey, "artifact", opts.Refresh); hit {
		return data, true, nil
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, opts.Format, doc.Len())
	data, err := RenderGraph(ctx, doc, opts)
	observability.Render().OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	logger.Debug("rendered diagram",
		"format", opts.Format,
		"bytes", len(data),
		"duration", time.Since(start))

	r.store(ctx, logger, cacheKey, "artifact", data, cache.TTLArtifact)
	return data, false, nil
}

// Graph is a convenience wrapper that calls GraphWithCacheInfo and discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, doc *document.Document, opts Options) ([]byte, error) {
	data, _, err := r.GraphWithCacheInfo(ctx, doc, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// logger returns the per-run logger when one is set.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// lookup reads a cache entry. Backend errors count as misses so a flaky
// cache never fails a render.
func (r *Runner) lookup(ctx context.Context, logger *log.Logger, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, logger *log.Logger, key, keyType string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
