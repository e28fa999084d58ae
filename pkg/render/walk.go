package render

import stderrors "errors"

// SkipChildren can be returned by a [WalkFunc] to skip the children of the
// current block. Walk itself does not return it.
var SkipChildren = stderrors.New("skip children")

// WalkFunc is called for every element in pre-order together with its
// nesting depth (0 for the root).
type WalkFunc func(e Element, depth int) error

// Walk visits e and its descendants depth-first in rendering order.
// Nil children are skipped.
func Walk(e Element, fn WalkFunc) error {
	return walk(e, 0, fn)
}

func walk(e Element, depth int, fn WalkFunc) error {
	if e == nil {
		return nil
	}
	err := fn(e, depth)
	if err == SkipChildren {
		return nil
	}
	if err != nil {
		return err
	}
	b, ok := e.(*Block)
	if !ok {
		return nil
	}
	for _, child := range b.children {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
