package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/scribe/pkg/errors"
)

// DefaultIndentUnit is emitted once per nesting level.
const DefaultIndentUnit = " "

const (
	openDelim  = "{"
	closeDelim = "}"
)

// Element is a node of a renderable tree. The only implementations are
// [*Block] and [*Line].
type Element interface {
	// Render returns the text of the element at the scribe's current depth.
	Render(s *Scribe) (string, error)

	element()
}

// Start returns the line-start prefix for the given indent depth: unit
// repeated indent times.
func Start(unit string, indent int) (string, error) {
	if indent < 0 {
		return "", errors.New(errors.ErrCodeInvalidIndent, "indent must not be negative, got %d", indent)
	}
	return strings.Repeat(unit, indent), nil
}

// =============================================================================
// Block
// =============================================================================

// Block is a named element whose children render as an indented body
// between braces.
type Block struct {
	name     string
	children []Element
}

// NewBlock creates a block. The children slice is copied; later changes to
// the caller's slice do not affect the block.
func NewBlock(name string, children ...Element) *Block {
	return &Block{name: name, children: slices.Clone(children)}
}

// Name returns the block name.
func (b *Block) Name() string { return b.name }

// Children returns a copy of the block's children in rendering order.
func (b *Block) Children() []Element { return slices.Clone(b.children) }

// Len returns the number of children.
func (b *Block) Len() int { return len(b.children) }

// Render emits the header, the children one level deeper, and the footer.
// A block without children renders as "name {}".
func (b *Block) Render(s *Scribe) (string, error) {
	if err := checkName(b.name); err != nil {
		return "", err
	}
	prefix, err := s.Start()
	if err != nil {
		return "", err
	}
	if len(b.children) == 0 {
		return prefix + b.name + " " + openDelim + closeDelim, nil
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(b.name)
	sb.WriteString(" " + openDelim)

	err = s.indented(func() error {
		for i, child := range b.children {
			if child == nil {
				return errors.New(errors.ErrCodeInvalidElement, "child %d is nil", i)
			}
			out, err := child.Render(s)
			if err != nil {
				return err
			}
			sb.WriteByte('\n')
			sb.WriteString(out)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.name, err)
	}

	sb.WriteByte('\n')
	sb.WriteString(prefix)
	sb.WriteString(closeDelim)
	return sb.String(), nil
}

func (*Block) element() {}

// checkName rejects names that would break the header line. Any other text,
// including tabs and long names, is emitted verbatim.
func checkName(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidElement, "block name cannot be empty")
	}
	if strings.ContainsAny(name, "\r\n") {
		return errors.New(errors.ErrCodeInvalidElement, "block name %q contains a line break", name)
	}
	return nil
}

// =============================================================================
// Line
// =============================================================================

// Line is a leaf statement.
type Line struct {
	text string
}

// NewLine creates a line. Any text is accepted, including the empty string.
func NewLine(text string) *Line {
	return &Line{text: text}
}

// Text returns the line payload.
func (l *Line) Text() string { return l.text }

// Render emits the indentation prefix followed by the payload.
func (l *Line) Render(s *Scribe) (string, error) {
	prefix, err := s.Start()
	if err != nil {
		return "", err
	}
	return prefix + l.text, nil
}

func (*Line) element() {}

var (
	_ Element = (*Block)(nil)
	_ Element = (*Line)(nil)
)
