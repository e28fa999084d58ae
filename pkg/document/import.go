package document

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/render"
)

type file struct {
	Elements []node `json:"elements" toml:"elements" yaml:"elements"`
}

type node struct {
	Block    *string `json:"block,omitempty" toml:"block" yaml:"block,omitempty"`
	Line     *string `json:"line,omitempty" toml:"line" yaml:"line,omitempty"`
	Children []node  `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// Read decodes a document from r in the given format and validates it.
//
// Empty input yields an empty document. Read does not close r.
func Read(r io.Reader, format Format) (*Document, error) {
	var f file
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}

	elements := make([]render.Element, 0, len(f.Elements))
	for i, n := range f.Elements {
		e, err := n.element(fmt.Sprintf("elements[%d]", i))
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return &Document{elements: elements}, nil
}

// Import reads the document at path, choosing the format by extension.
func Import(path string) (*Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (n node) element(path string) (render.Element, error) {
	switch {
	case n.Block != nil && n.Line != nil:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "%s: node sets both block and line", path)
	case n.Line != nil:
		if len(n.Children) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "%s: line cannot have children", path)
		}
		return render.NewLine(*n.Line), nil
	case n.Block != nil:
		if err := errors.ValidateBlockName(*n.Block); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s", path)
		}
		children := make([]render.Element, 0, len(n.Children))
		for i, c := range n.Children {
			e, err := c.element(fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, e)
		}
		return render.NewBlock(*n.Block, children...), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidDocument, "%s: node needs a block or a line", path)
}
