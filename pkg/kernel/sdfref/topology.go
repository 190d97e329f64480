package sdfref

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// shape is the backend's topology node. A shape pairs an SDF (3D for
// solids, 2D-in-a-frame for faces) with a parametric skeleton: the
// child entities, exact centers and measures computed at construction
// time. Shapes are immutable after construction.
type shape struct {
	kind       kernel.Kind
	kids       []*shape
	center     v3.Vec
	bmin, bmax v3.Vec
	mass       float64

	s3     sdf.SDF3      // solids and compounds of solids
	s2     sdf.SDF2      // planar faces, in the local XY frame
	frame  geom.Location // carries the local frame to global coordinates
	normal *v3.Vec       // outward normal of planar faces

	prim *recipe // primitive provenance, for fillet/chamfer rebuilds
}

// recipe records how a primitive solid was built so local features can
// re-round it.
type recipe struct {
	kind  primKind
	x, y  float64
	z     float64
	round float64
}

type primKind int

const (
	primBox primKind = iota
	primCylinder
	primSphere
)

func (s *shape) Kind() kernel.Kind { return s.kind }

func (s *shape) Children() []kernel.Handle {
	if len(s.kids) == 0 {
		return nil
	}
	out := make([]kernel.Handle, len(s.kids))
	for i, k := range s.kids {
		out[i] = k
	}
	return out
}

func (s *shape) Center() v3.Vec { return s.center }

func (s *shape) Bounds() (min, max v3.Vec) { return s.bmin, s.bmax }

func (s *shape) Mass() float64 { return s.mass }

func (s *shape) Normal() (v3.Vec, bool) {
	if s.kind != kernel.KindFace {
		return v3.Vec{}, false
	}
	if s.normal != nil {
		return *s.normal, true
	}
	if s.s2 != nil {
		return s.frame.ApplyDir(v3.Vec{Z: 1}), true
	}
	return v3.Vec{}, false
}

// newShape fills the fields every node needs; frame defaults to the
// identity because the Location zero value is not a valid transform.
func newShape(kind kernel.Kind) *shape {
	return &shape{kind: kind, frame: geom.Identity()}
}

// unwrap asserts that a handle came from this backend.
func unwrap(op string, h kernel.Handle) (*shape, error) {
	s, ok := h.(*shape)
	if !ok {
		return nil, kernel.Errorf(op, []kernel.Handle{h}, "foreign handle %T", h)
	}
	return s, nil
}

// vertexAt builds a vertex node.
func vertexAt(p v3.Vec) *shape {
	s := newShape(kernel.KindVertex)
	s.center = p
	s.bmin, s.bmax = p, p
	return s
}

// edgeBetween builds a straight edge node over two shared vertices.
func edgeBetween(a, b *shape) *shape {
	s := newShape(kernel.KindEdge)
	s.kids = []*shape{a, b}
	s.center = a.center.Add(b.center).MulScalar(0.5)
	s.bmin = vmin(a.center, b.center)
	s.bmax = vmax(a.center, b.center)
	s.mass = b.center.Sub(a.center).Length()
	return s
}

// circleEdge builds a closed circular edge node.
func circleEdge(center v3.Vec, r float64) *shape {
	s := newShape(kernel.KindEdge)
	s.center = center
	s.bmin = center.Sub(v3.Vec{X: r, Y: r})
	s.bmax = center.Add(v3.Vec{X: r, Y: r})
	s.mass = 2 * pi * r
	return s
}

// wireOf groups edges into a wire. The edges are shared, not copied.
func wireOf(edges ...*shape) *shape {
	s := newShape(kernel.KindWire)
	s.kids = edges
	accumulate(s)
	return s
}

// faceOf builds a face node over a wire, with an explicit center and
// area since the wire sum would be the perimeter.
func faceOf(wire *shape, center v3.Vec, area float64) *shape {
	s := newShape(kernel.KindFace)
	s.kids = []*shape{wire}
	s.center = center
	s.bmin, s.bmax = wire.bmin, wire.bmax
	s.mass = area
	return s
}

// shellOf groups faces; solidOf wraps a shell with explicit volume.
func shellOf(faces ...*shape) *shape {
	s := newShape(kernel.KindShell)
	s.kids = faces
	accumulate(s)
	return s
}

func solidOf(shell *shape, center v3.Vec, volume float64) *shape {
	s := newShape(kernel.KindSolid)
	s.kids = []*shape{shell}
	s.center = center
	s.bmin, s.bmax = shell.bmin, shell.bmax
	s.mass = volume
	return s
}

// compoundOf groups arbitrary shapes.
func compoundOf(kids ...*shape) *shape {
	s := newShape(kernel.KindCompound)
	s.kids = kids
	accumulate(s)
	return s
}

// accumulate derives center, bounds and mass from children: the mass
// is the sum, the center the mass-weighted (or plain) mean, the bounds
// the union.
func accumulate(s *shape) {
	if len(s.kids) == 0 {
		return
	}
	s.bmin, s.bmax = s.kids[0].bmin, s.kids[0].bmax
	var total float64
	var weighted v3.Vec
	for _, k := range s.kids {
		s.bmin = vmin(s.bmin, k.bmin)
		s.bmax = vmax(s.bmax, k.bmax)
		total += k.mass
		weighted = weighted.Add(k.center.MulScalar(k.mass))
	}
	s.mass = total
	if total > 0 {
		s.center = weighted.MulScalar(1 / total)
	} else {
		var mean v3.Vec
		for _, k := range s.kids {
			mean = mean.Add(k.center)
		}
		s.center = mean.MulScalar(1 / float64(len(s.kids)))
	}
}

// edgesOf collects every edge node in a tree, depth first, preserving
// first-visit order and identity.
func edgesOf(s *shape) []*shape {
	seen := map[*shape]bool{}
	var out []*shape
	var walk func(n *shape)
	walk = func(n *shape) {
		if n.kind == kernel.KindEdge {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
			return
		}
		for _, k := range n.kids {
			walk(k)
		}
	}
	walk(s)
	return out
}

// transform rebuilds a tree under a rigid transform, preserving child
// sharing through the memo so shared edges stay shared.
func transform(s *shape, l geom.Location, memo map[*shape]*shape) *shape {
	if t, ok := memo[s]; ok {
		return t
	}
	t := newShape(s.kind)
	memo[s] = t
	t.mass = s.mass // rigid transforms preserve measure
	t.center = l.Apply(s.center)
	t.bmin, t.bmax = transformBounds(s.bmin, s.bmax, l)
	t.frame = l.Mul(s.frame)
	t.s2 = s.s2
	if s.s3 != nil {
		t.s3 = sdf.Transform3D(s.s3, l.Matrix())
	}
	if s.prim != nil {
		r := *s.prim
		t.prim = &r
	}
	if s.normal != nil {
		n := l.ApplyDir(*s.normal)
		t.normal = &n
	}
	if len(s.kids) > 0 {
		t.kids = make([]*shape, len(s.kids))
		for i, k := range s.kids {
			t.kids[i] = transform(k, l, memo)
		}
	}
	return t
}

// transformBounds maps an axis-aligned box through a rigid transform
// and re-wraps the eight corners in a new axis-aligned box.
func transformBounds(bmin, bmax v3.Vec, l geom.Location) (v3.Vec, v3.Vec) {
	corners := [8]v3.Vec{
		{X: bmin.X, Y: bmin.Y, Z: bmin.Z},
		{X: bmax.X, Y: bmin.Y, Z: bmin.Z},
		{X: bmin.X, Y: bmax.Y, Z: bmin.Z},
		{X: bmax.X, Y: bmax.Y, Z: bmin.Z},
		{X: bmin.X, Y: bmin.Y, Z: bmax.Z},
		{X: bmax.X, Y: bmin.Y, Z: bmax.Z},
		{X: bmin.X, Y: bmax.Y, Z: bmax.Z},
		{X: bmax.X, Y: bmax.Y, Z: bmax.Z},
	}
	lo := l.Apply(corners[0])
	hi := lo
	for _, c := range corners[1:] {
		p := l.Apply(c)
		lo = vmin(lo, p)
		hi = vmax(hi, p)
	}
	return lo, hi
}

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
