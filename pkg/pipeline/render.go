package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/render/treeviz"
)

// RenderText renders a document to indented text without caching.
func RenderText(doc *document.Document, opts Options) (string, error) {
	if doc == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}
	return doc.Render(opts.RenderOptions()...)
}

// RenderGraph renders a document to a diagram in opts.Format without caching.
func RenderGraph(ctx context.Context, doc *document.Document, opts Options) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := opts.ValidateForGraph(); err != nil {
		return nil, err
	}

	dot, err := treeviz.ToDOT(doc.Elements(), treeviz.Options{Detailed: opts.Detailed})
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := treeviz.RenderSVG(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz layout")
	}
	return svg, nil
}

// DocumentHash returns the content hash of a document's canonical JSON form.
func DocumentHash(doc *document.Document) (string, error) {
	var buf bytes.Buffer
	if err := document.Write(doc, &buf, document.FormatJSON); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
