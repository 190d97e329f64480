package sdfref

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// classifyEps is the interior/exterior margin used when classifying
// surviving faces of a boolean by their center's signed distance.
const classifyEps = 1e-9

// Boolean combines two handles. Disjoint unions keep both exact
// topology skeletons (a compound); overlapping results are rebuilt
// from the combined SDF with surviving faces classified by signed
// distance and measures integrated from a mesh. An empty result is an
// error carrying kernel.ErrEmptyResult, never an empty shape.
func (k *Kernel) Boolean(op kernel.BoolOp, a, b kernel.Handle) (kernel.Handle, error) {
	sa, err := unwrap(op.String(), a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(op.String(), b)
	if err != nil {
		return nil, err
	}
	da, db := dimOf(sa), dimOf(sb)
	if da != db {
		return nil, kernel.Errorf(op.String(), []kernel.Handle{a, b},
			"dimension mismatch: %dD vs %dD", da, db)
	}
	switch da {
	case 3:
		return boolean3(op, sa, sb)
	case 2:
		return boolean2(op, sa, sb)
	case 1, 0:
		if op != kernel.OpUnion {
			return nil, kernel.Wrap(op.String(), kernel.ErrUnsupported, a, b)
		}
		return compoundOf(append(leaves(sa), leaves(sb)...)...), nil
	}
	return nil, kernel.Errorf(op.String(), []kernel.Handle{a, b}, "empty operand")
}

// dimOf returns the dimensionality of a shape; compounds report the
// dimensionality of their first child.
func dimOf(s *shape) int {
	if s.kind != kernel.KindCompound {
		return s.kind.Dim()
	}
	if len(s.kids) == 0 {
		return -1
	}
	return dimOf(s.kids[0])
}

// leaves flattens compounds into their top-level members.
func leaves(s *shape) []*shape {
	if s.kind != kernel.KindCompound {
		return []*shape{s}
	}
	var out []*shape
	for _, k := range s.kids {
		out = append(out, leaves(k)...)
	}
	return out
}

// disjoint reports whether two bounding boxes have no overlap.
func disjoint(s, t *shape) bool {
	const eps = classifyEps
	return s.bmax.X < t.bmin.X-eps || t.bmax.X < s.bmin.X-eps ||
		s.bmax.Y < t.bmin.Y-eps || t.bmax.Y < s.bmin.Y-eps ||
		s.bmax.Z < t.bmin.Z-eps || t.bmax.Z < s.bmin.Z-eps
}

// shallowCopy returns a fresh node sharing the children of s.
func shallowCopy(s *shape) *shape {
	t := *s
	return &t
}

func boolean3(op kernel.BoolOp, a, b *shape) (kernel.Handle, error) {
	if disjoint(a, b) {
		switch op {
		case kernel.OpUnion:
			c := compoundOf(append(leaves(a), leaves(b)...)...)
			c.s3 = sdf.Union3D(a.s3, b.s3)
			return c, nil
		case kernel.OpSubtract:
			return shallowCopy(a), nil
		case kernel.OpIntersect:
			return nil, kernel.Wrap("intersect", kernel.ErrEmptyResult, a, b)
		}
	}

	var s3 sdf.SDF3
	switch op {
	case kernel.OpUnion:
		s3 = sdf.Union3D(a.s3, b.s3)
	case kernel.OpSubtract:
		s3 = sdf.Difference3D(a.s3, b.s3)
	case kernel.OpIntersect:
		s3 = sdf.Intersect3D(a.s3, b.s3)
	}
	if op != kernel.OpUnion && empty3(s3) {
		return nil, kernel.Wrap(op.String(), kernel.ErrEmptyResult, a, b)
	}

	// Surviving faces are classified by their center against the other
	// operand's signed distance. Truncated faces keep their original
	// center; this is the documented approximation of the reference
	// backend.
	var faces []*shape
	for _, f := range facesOf(a) {
		d := b.s3.Evaluate(f.center)
		if keepFace(op, true, d) {
			faces = append(faces, f)
		}
	}
	for _, f := range facesOf(b) {
		d := a.s3.Evaluate(f.center)
		if keepFace(op, false, d) {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return nil, kernel.Wrap(op.String(), kernel.ErrEmptyResult, a, b)
	}

	out := solidOf(shellOf(faces...), solidCentroid(s3), solidVolume(s3))
	bb := s3.BoundingBox()
	out.bmin, out.bmax = bb.Min, bb.Max
	out.s3 = s3
	return out, nil
}

// keepFace decides whether a face survives a boolean, given the signed
// distance d of its center in the other operand (negative is inside).
func keepFace(op kernel.BoolOp, fromFirst bool, d float64) bool {
	switch op {
	case kernel.OpUnion:
		return d > -classifyEps
	case kernel.OpSubtract:
		if fromFirst {
			return d > classifyEps
		}
		return d < -classifyEps
	case kernel.OpIntersect:
		return d < classifyEps
	}
	return false
}

// facesOf collects every face node in a tree, preserving identity.
func facesOf(s *shape) []*shape {
	seen := map[*shape]bool{}
	var out []*shape
	var walk func(n *shape)
	walk = func(n *shape) {
		if n.kind == kernel.KindFace {
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

func boolean2(op kernel.BoolOp, a, b *shape) (kernel.Handle, error) {
	if disjoint(a, b) {
		switch op {
		case kernel.OpUnion:
			return compoundOf(append(leaves(a), leaves(b)...)...), nil
		case kernel.OpSubtract:
			return shallowCopy(a), nil
		case kernel.OpIntersect:
			return nil, kernel.Wrap("intersect", kernel.ErrEmptyResult, a, b)
		}
	}

	fa, fb := facesOf(a), facesOf(b)
	if len(fa) != 1 || len(fb) != 1 {
		return nil, kernel.Errorf(op.String(), []kernel.Handle{a, b},
			"overlapping boolean requires single-face operands")
	}
	pa, pb := fa[0], fb[0]
	if pa.s2 == nil || pb.s2 == nil {
		return nil, kernel.Errorf(op.String(), []kernel.Handle{a, b}, "face has no profile geometry")
	}

	if !coplanar(pa, pb) {
		switch op {
		case kernel.OpUnion:
			return compoundOf(pa, pb), nil
		case kernel.OpSubtract:
			return shallowCopy(a), nil
		case kernel.OpIntersect:
			return nil, kernel.Wrap("intersect", kernel.ErrEmptyResult, a, b)
		}
	}

	// Map b's profile into a's frame and combine in 2D.
	rel := pa.frame.Inverse().Mul(pb.frame)
	p := rel.Position()
	xdir := rel.ApplyDir(v3.Vec{X: 1})
	m := sdf.Translate2d(v2.Vec{X: p.X, Y: p.Y}).Mul(sdf.Rotate2d(math.Atan2(xdir.Y, xdir.X)))
	b2 := sdf.Transform2D(pb.s2, m)

	var s2 sdf.SDF2
	switch op {
	case kernel.OpUnion:
		s2 = sdf.Union2D(pa.s2, b2)
	case kernel.OpSubtract:
		s2 = sdf.Difference2D(pa.s2, b2)
	case kernel.OpIntersect:
		s2 = sdf.Intersect2D(pa.s2, b2)
	}
	area, centroid := faceArea(s2)
	if area == 0 {
		return nil, kernel.Wrap(op.String(), kernel.ErrEmptyResult, a, b)
	}

	inv := pa.frame.Inverse()
	local2 := func(global v3.Vec) v2.Vec {
		lp := inv.Apply(global)
		return v2.Vec{X: lp.X, Y: lp.Y}
	}
	var edges []*shape
	for _, e := range edgesOf(pa) {
		if keepFace(op, true, b2.Evaluate(local2(e.center))) {
			edges = append(edges, e)
		}
	}
	for _, e := range edgesOf(pb) {
		if keepFace(op, false, pa.s2.Evaluate(local2(e.center))) {
			edges = append(edges, e)
		}
	}

	out := faceOf(wireOf(edges...), pa.frame.Apply(v3.Vec{X: centroid.X, Y: centroid.Y}), area)
	out.bmin = vmin(pa.bmin, pb.bmin)
	out.bmax = vmax(pa.bmax, pb.bmax)
	out.s2 = s2
	out.frame = pa.frame
	return out, nil
}

// coplanar reports whether two faces lie on the same plane within
// tolerance, comparing frame normals and origin offsets.
func coplanar(a, b *shape) bool {
	na := a.frame.ApplyDir(v3.Vec{Z: 1})
	nb := b.frame.ApplyDir(v3.Vec{Z: 1})
	if na.Cross(nb).Length() > geom.AngTol {
		return false
	}
	off := b.frame.Position().Sub(a.frame.Position()).Dot(na)
	return math.Abs(off) < 1e-9
}
