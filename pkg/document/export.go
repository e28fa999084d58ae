package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/render"
)

// Write encodes d to w in the given format. The output can be read back
// with [Read].
func Write(d *Document, w io.Writer, format Format) error {
	f, err := d.file()
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.Indent = "  "
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return nil
}

// Export writes d to a file at path, choosing the format by extension.
func Export(d *Document, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(d, f, format)
}

func (d *Document) file() (file, error) {
	f := file{Elements: make([]node, 0, len(d.elements))}
	for i, e := range d.elements {
		n, err := toNode(e)
		if err != nil {
			return file{}, fmt.Errorf("elements[%d]: %w", i, err)
		}
		f.Elements = append(f.Elements, n)
	}
	return f, nil
}

func toNode(e render.Element) (node, error) {
	switch v := e.(type) {
	case *render.Line:
		text := v.Text()
		return node{Line: &text}, nil
	case *render.Block:
		name := v.Name()
		n := node{Block: &name}
		for i, c := range v.Children() {
			cn, err := toNode(c)
			if err != nil {
				return node{}, fmt.Errorf("children[%d]: %w", i, err)
			}
			n.Children = append(n.Children, cn)
		}
		return n, nil
	}
	return node{}, errors.New(errors.ErrCodeInvalidElement, "unexpected element %T", e)
}
