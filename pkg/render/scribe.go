package render

import (
	"strings"

	"github.com/matzehuels/scribe/pkg/errors"
)

// Scribe is the render context of a single pass: indentation depth plus
// accumulated output. It is not safe for concurrent use.
type Scribe struct {
	unit            string
	maxDepth        int
	trailingNewline bool

	depth   int
	buf     strings.Builder
	written bool
}

// NewScribe creates a scribe at depth 0 with an empty buffer.
func NewScribe(opts ...Option) *Scribe {
	s := &Scribe{unit: DefaultIndentUnit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Depth returns the current indentation depth.
func (s *Scribe) Depth() int { return s.depth }

// Unit returns the indentation unit.
func (s *Scribe) Unit() string { return s.unit }

// Start returns the line-start prefix for the current depth.
func (s *Scribe) Start() (string, error) {
	return Start(s.unit, s.depth)
}

// indented runs fn one level deeper and restores the depth afterwards,
// whether or not fn succeeds.
func (s *Scribe) indented(fn func() error) error {
	if s.maxDepth > 0 && s.depth >= s.maxDepth {
		return errors.New(errors.ErrCodeDepthExceeded, "nesting depth exceeds limit of %d", s.maxDepth)
	}
	s.depth++
	defer func() { s.depth-- }()
	return fn()
}

// Write renders elements at the current depth and appends them to the
// output, one newline between consecutive elements. If any element fails
// nothing from this call is appended.
func (s *Scribe) Write(elements ...Element) error {
	rendered := make([]string, 0, len(elements))
	for i, e := range elements {
		if e == nil {
			return errors.New(errors.ErrCodeInvalidElement, "element %d is nil", i)
		}
		out, err := e.Render(s)
		if err != nil {
			return err
		}
		rendered = append(rendered, out)
	}
	for _, out := range rendered {
		if s.written {
			s.buf.WriteByte('\n')
		}
		s.buf.WriteString(out)
		s.written = true
	}
	return nil
}

// String returns everything written so far.
func (s *Scribe) String() string {
	if s.trailingNewline && s.written {
		return s.buf.String() + "\n"
	}
	return s.buf.String()
}

// Reset discards the output and returns the depth to 0. Options are kept.
func (s *Scribe) Reset() {
	s.buf.Reset()
	s.depth = 0
	s.written = false
}

// Render renders a single tree with a fresh scribe.
func Render(root Element, opts ...Option) (string, error) {
	return RenderAll([]Element{root}, opts...)
}

// RenderAll renders a sequence of root elements with one fresh scribe,
// joining them with a newline.
func RenderAll(elements []Element, opts ...Option) (string, error) {
	s := NewScribe(opts...)
	if err := s.Write(elements...); err != nil {
		return "", err
	}
	return s.String(), nil
}
