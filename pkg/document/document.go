package document

import (
	"slices"

	"github.com/matzehuels/scribe/pkg/render"
)

// Document is an ordered list of root elements.
type Document struct {
	elements []render.Element
}

// FromElements creates a document from root elements. The slice is copied.
func FromElements(elements ...render.Element) *Document {
	return &Document{elements: slices.Clone(elements)}
}

// Elements returns a copy of the root elements.
func (d *Document) Elements() []render.Element {
	return slices.Clone(d.elements)
}

// Len returns the number of root elements.
func (d *Document) Len() int { return len(d.elements) }

// Render renders all root elements with a fresh scribe.
func (d *Document) Render(opts ...render.Option) (string, error) {
	return render.RenderAll(d.elements, opts...)
}

// Stats summarises the shape of a document.
type Stats struct {
	Roots    int // root elements
	Blocks   int // blocks at any depth
	Lines    int // lines at any depth
	MaxDepth int // deepest nesting level, 0 when all elements are roots
}

// Stats walks every element once.
func (d *Document) Stats() Stats {
	st := Stats{Roots: len(d.elements)}
	for _, e := range d.elements {
		_ = render.Walk(e, func(e render.Element, depth int) error {
			switch e.(type) {
			case *render.Block:
				st.Blocks++
			case *render.Line:
				st.Lines++
			}
			st.MaxDepth = max(st.MaxDepth, depth)
			return nil
		})
	}
	return st
}
