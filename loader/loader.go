// Package loader implements the Loader contract of spec.md §6: turning one
// source's raw contribution (a byte stream or a key/value list) into a
// single node fragment (tree root).
package loader

import (
	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/source"
)

// Loader claims sources by format and produces one node fragment from a
// source's contribution.
type Loader interface {
	Accepts(format string) bool
	Load(src source.Source) result.R[*node.Node]
}
