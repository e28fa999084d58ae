// Package document provides import and export of element trees as JSON,
// TOML or YAML files.
//
// # Overview
//
// A document is an ordered list of root elements. Each element is either a
// block, which has a name and optional children, or a line, which has a
// text payload:
//
//	{
//	  "elements": [
//	    {"line": "rootProject.name = 'demo'"},
//	    {"block": "plugins", "children": [
//	      {"line": "id 'java-library'"}
//	    ]}
//	  ]
//	}
//
// The same structure in TOML uses arrays of tables:
//
//	[[elements]]
//	line = "rootProject.name = 'demo'"
//
//	[[elements]]
//	block = "plugins"
//
//	  [[elements.children]]
//	  line = "id 'java-library'"
//
// # Validation
//
// Every node must set exactly one of "block" and "line". Lines cannot have
// children, and block names must pass [errors.ValidateBlockName]. Unknown
// keys are rejected in all three formats. Validation failures carry the
// INVALID_DOCUMENT code and the path of the offending node, for example
// "elements[1].children[0]".
//
// # Import and Export
//
// Use [Import] and [Export] for files (the format is chosen by extension)
// or [Read] and [Write] for streams. [FromElements] builds a document from
// an existing tree, so a tree can be rendered, exported and re-imported
// without loss.
//
// [errors.ValidateBlockName]: github.com/matzehuels/scribe/pkg/errors.ValidateBlockName
package document
