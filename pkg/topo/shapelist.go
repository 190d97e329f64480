package topo

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// EmptySelectionError reports a selector that matched no elements when
// the caller required at least one.
type EmptySelectionError struct {
	What string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("empty selection: %s", e.What)
}

// ShapeList is an ordered collection of selected shapes. Lists keep
// the creation order of their elements, which is also the tie-break
// order of every sort.
type ShapeList []Shape

// Criterion derives the scalar a sort orders by.
type Criterion func(Shape) float64

// Predicate decides whether a shape stays in a filtered list.
type Predicate func(Shape) bool

// Along orders shapes by the projection of their center onto an axis.
func Along(a geom.Axis) Criterion {
	return func(s Shape) float64 { return a.Project(s.Center()) }
}

// ByMass orders shapes by their kind-appropriate measure (length,
// area or volume).
func ByMass() Criterion {
	return func(s Shape) float64 { return s.Mass() }
}

// ByDistance orders shapes by the distance of their center from p.
func ByDistance(p v3.Vec) Criterion {
	return func(s Shape) float64 { return s.Center().Sub(p).Length() }
}

// OfKind keeps shapes of one topological kind.
func OfKind(k kernel.Kind) Predicate {
	return func(s Shape) bool { return s.Kind() == k }
}

// ParallelTo keeps faces whose normal is parallel to the axis and
// edges whose direction is parallel to it. Shapes without a usable
// direction are dropped.
func ParallelTo(a geom.Axis) Predicate {
	return func(s Shape) bool {
		if n, ok := s.Normal(); ok {
			return a.IsParallel(n)
		}
		if d, ok := edgeDirection(s); ok {
			return a.IsParallel(d)
		}
		return false
	}
}

// NormalTo keeps faces and edges perpendicular to the axis.
func NormalTo(a geom.Axis) Predicate {
	return func(s Shape) bool {
		if n, ok := s.Normal(); ok {
			return a.IsNormal(n)
		}
		if d, ok := edgeDirection(s); ok {
			return a.IsNormal(d)
		}
		return false
	}
}

// Within keeps shapes whose center projects onto the axis between lo
// and hi.
func Within(a geom.Axis, lo, hi float64) Predicate {
	return func(s Shape) bool {
		v := a.Project(s.Center())
		return v >= lo && v <= hi
	}
}

// edgeDirection returns the direction of a straight edge from its end
// vertices.
func edgeDirection(s Shape) (v3.Vec, bool) {
	if s.Kind() != kernel.KindEdge {
		return v3.Vec{}, false
	}
	verts := s.h.Children()
	if len(verts) != 2 {
		return v3.Vec{}, false
	}
	d := s.loc.Apply(verts[1].Center()).Sub(s.loc.Apply(verts[0].Center()))
	if d.Length() < geom.PosTol {
		return v3.Vec{}, false
	}
	return d, true
}

// Interior keeps edges that are boundary between exactly two
// non-coincident faces of the given shape: the feature edges a fillet
// applies to, as opposed to free outer-boundary edges.
func Interior(of Shape) Predicate {
	// One adjacency walk, reused by every evaluation.
	adj := edgeFaces(of)
	return func(s Shape) bool {
		if s.Kind() != kernel.KindEdge {
			return false
		}
		faces := adj[s.h]
		if len(faces) != 2 {
			return false
		}
		na, aok := faces[0].Normal()
		nb, bok := faces[1].Normal()
		if aok && bok && na.Cross(nb).Length() < geom.AngTol {
			// Planar-coincident faces meet smoothly; not a feature
			// edge.
			return false
		}
		return true
	}
}

// edgeFaces maps each edge handle to the faces that reference it.
func edgeFaces(s Shape) map[kernel.Handle][]kernel.Handle {
	adj := map[kernel.Handle][]kernel.Handle{}
	for _, f := range s.Faces() {
		face := f.h
		seen := map[kernel.Handle]bool{}
		var walk func(h kernel.Handle)
		walk = func(h kernel.Handle) {
			if h.Kind() == kernel.KindEdge {
				if !seen[h] {
					seen[h] = true
					adj[h] = append(adj[h], face)
				}
				return
			}
			for _, k := range h.Children() {
				walk(k)
			}
		}
		walk(face)
	}
	return adj
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(s Shape) bool { return !p(s) }
}

// And combines predicates conjunctively.
func And(ps ...Predicate) Predicate {
	return func(s Shape) bool {
		for _, p := range ps {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// SortBy returns the list ordered ascending by the criterion. The sort
// is stable: ties keep creation order. The receiver is not modified.
func (l ShapeList) SortBy(c Criterion) ShapeList {
	out := append(ShapeList(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		return c(out[i]) < c(out[j])
	})
	return out
}

// FilterBy returns the elements satisfying the predicate, in order.
func (l ShapeList) FilterBy(p Predicate) ShapeList {
	var out ShapeList
	for _, s := range l {
		if p(s) {
			out = append(out, s)
		}
	}
	return out
}

// GroupBy buckets the list by the criterion, merging values within
// tol. Groups are ordered ascending by their key; members keep
// creation order.
func (l ShapeList) GroupBy(c Criterion, tol float64) []ShapeList {
	sorted := l.SortBy(c)
	var groups []ShapeList
	var last float64
	for i, s := range sorted {
		v := c(s)
		if i == 0 || math.Abs(v-last) > tol {
			groups = append(groups, ShapeList{s})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], s)
		}
		last = v
	}
	return groups
}

// At returns the element at index i; negative indices count from the
// end, so At(-1) is the last element.
func (l ShapeList) At(i int) (Shape, error) {
	if i < 0 {
		i += len(l)
	}
	if i < 0 || i >= len(l) {
		return Shape{}, &EmptySelectionError{What: fmt.Sprintf("index %d of %d elements", i, len(l))}
	}
	return l[i], nil
}

// First returns the first element, or EmptySelectionError.
func (l ShapeList) First() (Shape, error) {
	return l.At(0)
}

// Last returns the last element, or EmptySelectionError.
func (l ShapeList) Last() (Shape, error) {
	return l.At(-1)
}

// Require returns the list itself, or EmptySelectionError if it is
// empty. what names the selection for the error message.
func (l ShapeList) Require(what string) (ShapeList, error) {
	if len(l) == 0 {
		return nil, &EmptySelectionError{What: what}
	}
	return l, nil
}

// Equal reports element-wise value equality of two lists.
func (l ShapeList) Equal(o ShapeList) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if !l[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Handles returns the kernel handles of the list, for feature
// operations that consume raw edges.
func (l ShapeList) Handles() []kernel.Handle {
	out := make([]kernel.Handle, len(l))
	for i, s := range l {
		out[i] = s.h
	}
	return out
}
