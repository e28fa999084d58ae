package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/render"
)

const wantRendered = "rootProject.name = 'demo'\nplugins {\n id 'java-library'\n}\ndependencies {}"

var sources = map[Format]string{
	FormatJSON: `{
  "elements": [
    {"line": "rootProject.name = 'demo'"},
    {"block": "plugins", "children": [{"line": "id 'java-library'"}]},
    {"block": "dependencies"}
  ]
}`,
	FormatTOML: `
[[elements]]
line = "rootProject.name = 'demo'"

[[elements]]
block = "plugins"

  [[elements.children]]
  line = "id 'java-library'"

[[elements]]
block = "dependencies"
`,
	FormatYAML: `
elements:
  - line: rootProject.name = 'demo'
  - block: plugins
    children:
      - line: id 'java-library'
  - block: dependencies
`,
}

func TestRead(t *testing.T) {
	for format, src := range sources {
		t.Run(string(format), func(t *testing.T) {
			d, err := Read(strings.NewReader(src), format)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			got, err := d.Render()
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if got != wantRendered {
				t.Errorf("Render() = %q, want %q", got, wantRendered)
			}
		})
	}
}

func TestRead_EmptyInput(t *testing.T) {
	for _, format := range Formats {
		d, err := Read(strings.NewReader(""), format)
		if err != nil {
			t.Fatalf("Read(%s, empty) error: %v", format, err)
		}
		if d.Len() != 0 {
			t.Errorf("Read(%s, empty) Len() = %d, want 0", format, d.Len())
		}
	}
}

func TestRead_EmptyLinePayload(t *testing.T) {
	d, err := Read(strings.NewReader(`{"elements":[{"block":"b","children":[{"line":""}]}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	got, _ := d.Render()
	if got != "b {\n \n}" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		src      string
		wantCode errors.Code
		wantPath string
	}{
		{"malformed json", FormatJSON, `{"elements": [`, errors.ErrCodeInvalidDocument, ""},
		{"unknown json key", FormatJSON, `{"elements": [{"line": "x", "color": "red"}]}`, errors.ErrCodeInvalidDocument, ""},
		{"both block and line", FormatJSON, `{"elements": [{"block": "a", "line": "b"}]}`, errors.ErrCodeInvalidDocument, "elements[0]"},
		{"neither", FormatJSON, `{"elements": [{}]}`, errors.ErrCodeInvalidDocument, "elements[0]"},
		{"line with children", FormatJSON, `{"elements": [{"line": "x", "children": [{"line": "y"}]}]}`, errors.ErrCodeInvalidDocument, "elements[0]"},
		{"empty block name", FormatJSON, `{"elements": [{"block": "ok", "children": [{"block": ""}]}]}`, errors.ErrCodeInvalidDocument, "elements[0].children[0]"},
		{"nested path", FormatJSON, `{"elements": [{"line": "a"}, {"block": "b", "children": [{"line": "c"}, {}]}]}`, errors.ErrCodeInvalidDocument, "elements[1].children[1]"},
		{"unknown toml key", FormatTOML, "[[elements]]\nline = \"x\"\nweight = 3\n", errors.ErrCodeInvalidDocument, ""},
		{"malformed toml", FormatTOML, "[[elements]\n", errors.ErrCodeInvalidDocument, ""},
		{"unknown yaml key", FormatYAML, "elements:\n  - line: x\n    extra: 1\n", errors.ErrCodeInvalidDocument, ""},
		{"bad format", Format("xml"), "<x/>", errors.ErrCodeInvalidFormat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src), tt.format)
			if err == nil {
				t.Fatal("Read() expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Read() code = %v, want %v (%v)", errors.GetCode(err), tt.wantCode, err)
			}
			if tt.wantPath != "" && !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("Read() error %q should mention %q", err, tt.wantPath)
			}
		})
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	orig := FromElements(
		render.NewLine("a = 1"),
		render.NewBlock("outer",
			render.NewBlock("inner", render.NewLine("x"), render.NewLine("")),
			render.NewBlock("empty"),
			render.NewLine(`quoted "text" with 'quotes'`),
		),
	)
	want, err := orig.Render()
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(orig, &buf, format); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			back, err := Read(&buf, format)
			if err != nil {
				t.Fatalf("Read() error: %v\n%s", err, buf.String())
			}
			got, err := back.Render()
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("round trip = %q, want %q", got, want)
			}
		})
	}
}

func TestWrite_NilElement(t *testing.T) {
	err := Write(FromElements(render.NewLine("ok"), nil), &bytes.Buffer{}, FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidElement) {
		t.Errorf("Write() error = %v, want %v", err, errors.ErrCodeInvalidElement)
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	d := FromElements(render.NewBlock("plugins", render.NewLine("id 'java'")))

	for _, name := range []string{"doc.json", "doc.toml", "doc.yaml", "doc.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(d, path); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			back, err := Import(path)
			if err != nil {
				t.Fatalf("Import() error: %v", err)
			}
			got, _ := back.Render()
			if got != "plugins {\n id 'java'\n}" {
				t.Errorf("Render() = %q", got)
			}
		})
	}
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"elements":[{}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantCode errors.Code
	}{
		{"missing file", filepath.Join(dir, "missing.json"), errors.ErrCodeFileNotFound},
		{"no extension", filepath.Join(dir, "doc"), errors.ErrCodeInvalidFormat},
		{"unknown extension", filepath.Join(dir, "doc.xml"), errors.ErrCodeInvalidFormat},
		{"empty path", "", errors.ErrCodeInvalidPath},
		{"invalid content", bad, errors.ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(tt.path)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Import(%q) error = %v, want code %v", tt.path, err, tt.wantCode)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".json", FormatJSON, false},
		{"TOML", FormatTOML, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	d := FromElements(
		render.NewLine("a"),
		render.NewBlock("b", render.NewBlock("c", render.NewLine("d")), render.NewLine("e")),
	)
	got := d.Stats()
	want := Stats{Roots: 2, Blocks: 2, Lines: 3, MaxDepth: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestFromElements_Copies(t *testing.T) {
	elems := []render.Element{render.NewLine("a")}
	d := FromElements(elems...)
	elems[0] = render.NewLine("b")

	got, _ := d.Render()
	if got != "a" {
		t.Errorf("Render() = %q, want %q", got, "a")
	}
}
