package render

import "strings"

// Option configures a [Scribe].
type Option func(s *Scribe)

// WithIndentUnit sets the string emitted once per nesting level.
func WithIndentUnit(unit string) Option {
	return func(s *Scribe) {
		s.unit = unit
	}
}

// WithIndentWidth indents with n spaces per level. Values below zero are
// treated as zero.
func WithIndentWidth(n int) Option {
	return func(s *Scribe) {
		s.unit = strings.Repeat(" ", max(0, n))
	}
}

// WithTabs indents with one tab per level.
func WithTabs() Option {
	return WithIndentUnit("\t")
}

// WithMaxDepth limits how many levels deep block bodies may nest.
// Zero or a negative value means no limit.
func WithMaxDepth(n int) Option {
	return func(s *Scribe) {
		s.maxDepth = max(0, n)
	}
}

// WithTrailingNewline appends a single newline to non-empty output.
func WithTrailingNewline(flag bool) Option {
	return func(s *Scribe) {
		s.trailingNewline = flag
	}
}
