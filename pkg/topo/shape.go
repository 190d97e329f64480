// Package topo wraps kernel topology handles as value-like Shapes and
// provides the selector engine over them: kind queries, geometric
// predicates, stable sorts and groupings. Selection never mutates the
// queried shape and repeated queries return equal results.
package topo

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// Shape is a placed topology entity: an immutable kernel handle plus a
// Location carrying it from its build frame into the global frame.
// Shapes are values; every transforming or combining operation returns
// a new Shape and shares the underlying kernel geometry until a baked
// transform forces a rebuild.
type Shape struct {
	h      kernel.Handle
	krn    kernel.Kernel
	loc    geom.Location
	parent *Shape // back-reference for lookup only, never ownership
}

// New wraps a kernel handle at the identity location.
func New(k kernel.Kernel, h kernel.Handle) Shape {
	return Shape{h: h, krn: k, loc: geom.Identity()}
}

// IsEmpty reports whether the shape has no geometry. The zero Shape is
// empty; scopes start from it.
func (s Shape) IsEmpty() bool { return s.h == nil }

// Kind returns the topological kind.
func (s Shape) Kind() kernel.Kind {
	if s.h == nil {
		return kernel.KindCompound
	}
	return s.h.Kind()
}

// Handle exposes the kernel handle for adapter code.
func (s Shape) Handle() kernel.Handle { return s.h }

// Kernel returns the kernel that owns the shape's geometry.
func (s Shape) Kernel() kernel.Kernel { return s.krn }

// Location returns the shape's placement.
func (s Shape) Location() geom.Location { return s.loc }

// Parent returns the shape this one was selected from, if any.
func (s Shape) Parent() (Shape, bool) {
	if s.parent == nil {
		return Shape{}, false
	}
	return *s.parent, true
}

// Center returns the geometric center in the global frame.
func (s Shape) Center() v3.Vec {
	if s.h == nil {
		return v3.Vec{}
	}
	return s.loc.Apply(s.h.Center())
}

// Bounds returns the axis-aligned bounding box in the global frame.
func (s Shape) Bounds() (min, max v3.Vec) {
	if s.h == nil {
		return v3.Vec{}, v3.Vec{}
	}
	bmin, bmax := s.h.Bounds()
	lo := s.loc.Apply(bmin)
	hi := lo
	for i := 1; i < 8; i++ {
		c := v3.Vec{X: bmin.X, Y: bmin.Y, Z: bmin.Z}
		if i&1 != 0 {
			c.X = bmax.X
		}
		if i&2 != 0 {
			c.Y = bmax.Y
		}
		if i&4 != 0 {
			c.Z = bmax.Z
		}
		p := s.loc.Apply(c)
		lo = vmin(lo, p)
		hi = vmax(hi, p)
	}
	return lo, hi
}

// Mass returns the kind-appropriate measure: length, area or volume.
// Rigid placement does not change it.
func (s Shape) Mass() float64 {
	if s.h == nil {
		return 0
	}
	return s.h.Mass()
}

// Volume returns the measure of a 3D shape and zero otherwise.
func (s Shape) Volume() float64 {
	if dim(s) != 3 {
		return 0
	}
	return s.Mass()
}

// Area returns the measure of a 2D shape and zero otherwise.
func (s Shape) Area() float64 {
	if dim(s) != 2 {
		return 0
	}
	return s.Mass()
}

// Length returns the measure of a 1D shape and zero otherwise.
func (s Shape) Length() float64 {
	if dim(s) != 1 {
		return 0
	}
	return s.Mass()
}

// Normal returns the outward normal of a planar face in the global
// frame.
func (s Shape) Normal() (v3.Vec, bool) {
	if s.h == nil {
		return v3.Vec{}, false
	}
	n, ok := s.h.Normal()
	if !ok {
		return v3.Vec{}, false
	}
	return s.loc.ApplyDir(n), true
}

// Moved returns the shape placed under l composed with its current
// location. Only placement metadata changes; the kernel geometry is
// shared.
func (s Shape) Moved(l geom.Location) Shape {
	s.loc = l.Mul(s.loc)
	s.parent = nil
	return s
}

// Baked rewrites the underlying kernel geometry so the shape's
// location becomes the identity. This is the slow path: it exists for
// operations that need geometry in a common frame and should not be
// used for repeated transforms.
func (s Shape) Baked() (Shape, error) {
	if s.h == nil || s.loc.IsIdentity() {
		return s, nil
	}
	h, err := s.krn.Transform(s.h, s.loc)
	if err != nil {
		return Shape{}, err
	}
	return Shape{h: h, krn: s.krn, loc: geom.Identity()}, nil
}

// Equal reports value equality: same underlying geometry at the same
// placement.
func (s Shape) Equal(o Shape) bool {
	return s.h == o.h && s.loc.Equal(o.loc)
}

func (s Shape) String() string {
	if s.h == nil {
		return "Shape(empty)"
	}
	c := s.Center()
	return fmt.Sprintf("Shape(%s at (%.3g, %.3g, %.3g))", s.Kind(), c.X, c.Y, c.Z)
}

// dim returns the dimensionality of a shape, descending into
// compounds.
func dim(s Shape) int {
	if s.h == nil {
		return -1
	}
	return handleDim(s.h)
}

func handleDim(h kernel.Handle) int {
	if h.Kind() != kernel.KindCompound {
		return h.Kind().Dim()
	}
	kids := h.Children()
	if len(kids) == 0 {
		return -1
	}
	return handleDim(kids[0])
}

// Dim returns the dimensionality of the shape: 0 through 3, or -1 for
// an empty shape.
func (s Shape) Dim() int { return dim(s) }

// descend collects every handle of the wanted kind below s, depth
// first, deduplicated by identity so shared boundaries appear once.
func (s Shape) descend(kind kernel.Kind) ShapeList {
	if s.h == nil {
		return nil
	}
	seen := map[kernel.Handle]bool{}
	parent := s
	var out ShapeList
	var walk func(h kernel.Handle)
	walk = func(h kernel.Handle) {
		if h.Kind() == kind {
			if !seen[h] {
				seen[h] = true
				out = append(out, Shape{h: h, krn: s.krn, loc: s.loc, parent: &parent})
			}
			return
		}
		if h.Kind().Dim() != -1 && h.Kind().Dim() <= kind.Dim() && h.Kind() <= kind {
			return // nothing of the wanted kind below here
		}
		for _, k := range h.Children() {
			walk(k)
		}
	}
	walk(s.h)
	return out
}

// Vertices returns every vertex of the shape.
func (s Shape) Vertices() ShapeList { return s.descend(kernel.KindVertex) }

// Edges returns every edge of the shape, shared edges once.
func (s Shape) Edges() ShapeList { return s.descend(kernel.KindEdge) }

// Wires returns every wire of the shape.
func (s Shape) Wires() ShapeList { return s.descend(kernel.KindWire) }

// Faces returns every face of the shape.
func (s Shape) Faces() ShapeList { return s.descend(kernel.KindFace) }

// Shells returns every shell of the shape.
func (s Shape) Shells() ShapeList { return s.descend(kernel.KindShell) }

// Solids returns every solid of the shape.
func (s Shape) Solids() ShapeList { return s.descend(kernel.KindSolid) }

func vmin(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)}
}

func vmax(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y), Z: maxf(a.Z, b.Z)}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
