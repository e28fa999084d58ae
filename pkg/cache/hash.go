package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey identifies rendered text of a document.
	RenderKey(docHash string, opts RenderKeyOpts) string

	// ArtifactKey identifies a diagram (DOT or SVG) of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// RenderKeyOpts holds the options that change rendered text.
type RenderKeyOpts struct {
	IndentUnit      string `json:"indent_unit"`
	MaxDepth        int    `json:"max_depth"`
	TrailingNewline bool   `json:"trailing_newline"`
}

// ArtifactKeyOpts holds the options that change a diagram.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer produces unscoped keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without prefix.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
