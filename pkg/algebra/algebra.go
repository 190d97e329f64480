// Package algebra provides the explicit combination and placement
// operations over shapes: union, subtract, intersect and place. The
// scope manager's implicit combination delegates to the same functions,
// so builder-mode and algebra-mode programs make identical kernel
// calls and produce identical results.
package algebra

import (
	"fmt"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
	"github.com/chisel3d/chisel/pkg/topo"
)

// MismatchError reports an attempt to combine shapes of incompatible
// dimensional kind, such as unioning a wire with a solid.
type MismatchError struct {
	Op   string
	A, B kernel.Kind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: cannot combine %s with %s", e.Op, e.A, e.B)
}

// Union returns a combined with b. Combining with an empty shape
// returns the other operand unchanged.
func Union(a, b topo.Shape) (topo.Shape, error) {
	return combine(kernel.OpUnion, a, b)
}

// Subtract returns a with b removed.
func Subtract(a, b topo.Shape) (topo.Shape, error) {
	return combine(kernel.OpSubtract, a, b)
}

// Intersect returns the common geometry of a and b. A disjoint pair
// is an error carrying kernel.ErrEmptyResult.
func Intersect(a, b topo.Shape) (topo.Shape, error) {
	return combine(kernel.OpIntersect, a, b)
}

// Place returns the shape moved under a location: the algebraic
// `location * shape`. Only placement metadata changes.
func Place(l geom.Location, s topo.Shape) topo.Shape {
	return s.Moved(l)
}

func combine(op kernel.BoolOp, a, b topo.Shape) (topo.Shape, error) {
	if b.IsEmpty() {
		if op == kernel.OpUnion || op == kernel.OpSubtract {
			return a, nil
		}
		return topo.Shape{}, kernel.Errorf(op.String(), nil, "empty operand")
	}
	if a.IsEmpty() {
		if op == kernel.OpUnion {
			return b, nil
		}
		return topo.Shape{}, kernel.Errorf(op.String(), nil, "nothing to %s from an empty shape", op)
	}
	if a.Dim() != b.Dim() {
		return topo.Shape{}, &MismatchError{Op: op.String(), A: a.Kind(), B: b.Kind()}
	}

	// Booleans need geometry in a common frame; bake pending placement
	// metadata first.
	ab, err := a.Baked()
	if err != nil {
		return topo.Shape{}, err
	}
	bb, err := b.Baked()
	if err != nil {
		return topo.Shape{}, err
	}
	h, err := ab.Kernel().Boolean(op, ab.Handle(), bb.Handle())
	if err != nil {
		return topo.Shape{}, err
	}
	return topo.New(ab.Kernel(), h), nil
}
