// Package render turns trees of structural elements into indented text.
//
// # Overview
//
// A tree is built from two kinds of [Element]:
//
//   - [Block]: a named element with ordered children, rendered as a
//     delimited body one indentation level deeper than its header
//   - [Line]: a leaf statement rendered verbatim after the indentation prefix
//
// The set is closed: Element carries an unexported method, so only this
// package can add variants.
//
//	tree := render.NewBlock("plugins",
//	    render.NewLine("id 'java'"),
//	)
//	out, err := render.Render(tree)
//	// plugins {
//	//  id 'java'
//	// }
//
// # Scribe
//
// A [Scribe] is the mutable context of one render pass. It tracks the
// current indentation depth and accumulates the output of [Scribe.Write].
// Each Block increments the depth before rendering its children and
// restores it afterwards, even when a child fails, so a Scribe can be reused
// sequentially for disjoint subtrees. A Scribe must not be shared between
// goroutines; element trees are immutable and may be.
//
// # Formatting Policy
//
//   - One indentation unit per nesting level, a single space by default
//     ([WithIndentUnit], [WithIndentWidth], [WithTabs] change it)
//   - A block without children renders as "name {}" on one line
//   - Siblings are joined by a single newline; elements never emit a
//     trailing newline ([WithTrailingNewline] adds one to the final output)
//   - Line payloads are emitted verbatim, embedded newlines included
//
// # Errors
//
// Rendering fails with codes from [github.com/matzehuels/scribe/pkg/errors]:
// INVALID_ELEMENT for empty block names or nil children, INVALID_INDENT for a
// negative indent passed to [Start], and RENDER_DEPTH_EXCEEDED when
// [WithMaxDepth] is set and the tree nests deeper. A failed pass returns no
// partial output.
package render
