package sdfref

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// Extrude sweeps a planar face along dir, which must be parallel to
// the face normal. The result is a prism: its volume is exact
// (profile area times height), its lateral surface a single face
// sharing edges with the bottom and top caps.
func (k *Kernel) Extrude(profile kernel.Handle, dir v3.Vec) (kernel.Handle, error) {
	p, err := unwrap("extrude", profile)
	if err != nil {
		return nil, err
	}
	if p.kind != kernel.KindFace || p.s2 == nil {
		return nil, kernel.Errorf("extrude", []kernel.Handle{profile}, "profile must be a planar face")
	}
	h := dir.Length()
	if h < geom.PosTol {
		return nil, kernel.Errorf("extrude", []kernel.Handle{profile}, "zero extrusion vector")
	}
	normal := p.frame.ApplyDir(v3.Vec{Z: 1})
	if normal.Cross(dir.Normalize()).Length() > geom.AngTol {
		return nil, kernel.Wrap("extrude", kernel.ErrUnsupported, profile)
	}
	frame := p.frame
	if dir.Dot(normal) < 0 {
		// Extruding against the normal: flip the local frame so the
		// prism still grows along local +Z.
		frame = frame.Mul(geom.Rotation(180, 0, 0))
	}

	// sdf.Extrude3D extrudes symmetrically about z=0; shift so the
	// profile plane is the base.
	s3 := sdf.Transform3D(
		sdf.Extrude3D(p.s2, h),
		frame.Matrix().Mul(sdf.Translate3d(v3.Vec{Z: h / 2})),
	)

	lift := frame.Mul(geom.At(0, 0, h)).Mul(frame.Inverse())
	memo := map[*shape]*shape{}
	bottom := transform(p, geom.Identity(), map[*shape]*shape{})
	top := transform(p, lift, memo)

	// The lateral face shares its edges with both caps.
	side := faceOf(
		wireOf(append(edgesOf(bottom), edgesOf(top)...)...),
		bottom.center.Add(dir.MulScalar(0.5)),
		wirePerimeter(bottom)*h,
	)
	out := solidOf(shellOf(bottom, top, side), bottom.center.Add(dir.MulScalar(0.5)), p.mass*h)
	bb := s3.BoundingBox()
	out.bmin, out.bmax = bb.Min, bb.Max
	out.s3 = s3
	return out, nil
}

// wirePerimeter sums the edge lengths of a face's bounding wire.
func wirePerimeter(f *shape) float64 {
	var sum float64
	for _, e := range edgesOf(f) {
		sum += e.mass
	}
	return sum
}

// Revolve sweeps a planar face about an axis. The profile plane must
// contain the axis and the profile must lie on one side of it. The
// reference backend supports full revolutions about the global Z axis
// only.
func (k *Kernel) Revolve(profile kernel.Handle, axis geom.Axis, angle float64) (kernel.Handle, error) {
	p, err := unwrap("revolve", profile)
	if err != nil {
		return nil, err
	}
	if p.kind != kernel.KindFace || p.s2 == nil {
		return nil, kernel.Errorf("revolve", []kernel.Handle{profile}, "profile must be a planar face")
	}
	if math.Abs(angle-360) > geom.AngTol || !axis.IsParallel(v3.Vec{Z: 1}) ||
		axis.Position.Sub(v3.Vec{Z: axis.Position.Z}).Length() > geom.PosTol {
		return nil, kernel.Wrap("revolve", kernel.ErrUnsupported, profile)
	}
	n := p.frame.ApplyDir(v3.Vec{Z: 1})
	if math.Abs(n.Z) > geom.AngTol {
		return nil, kernel.Errorf("revolve", []kernel.Handle{profile}, "profile plane does not contain the axis")
	}
	if math.Abs(p.frame.Position().Dot(n)) > geom.PosTol {
		return nil, kernel.Errorf("revolve", []kernel.Handle{profile}, "profile plane does not contain the axis")
	}

	// The in-plane radial direction, oriented so the profile sits on the
	// positive side.
	u := n.Cross(v3.Vec{Z: 1}).Normalize()
	if p.center.Dot(u) < 0 {
		u = u.MulScalar(-1)
	}
	rmin, rmax := radialRange(p, u)
	if rmin < -geom.PosTol {
		return nil, kernel.Errorf("revolve", []kernel.Handle{profile}, "profile crosses the axis")
	}
	s3 := &revolved{s2: p.s2, inv: p.frame.Inverse(), u: u, rmax: rmax,
		zmin: p.bmin.Z, zmax: p.bmax.Z}
	return sampledSolid(s3), nil
}

// radialRange returns the radial extent of a face's bounding box
// corners along the direction u.
func radialRange(p *shape, u v3.Vec) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, x := range []float64{p.bmin.X, p.bmax.X} {
		for _, y := range []float64{p.bmin.Y, p.bmax.Y} {
			for _, z := range []float64{p.bmin.Z, p.bmax.Z} {
				r := (v3.Vec{X: x, Y: y, Z: z}).Dot(u)
				lo = minf(lo, r)
				hi = maxf(hi, r)
			}
		}
	}
	return lo, hi
}

// revolved is the solid of revolution of a planar profile about the
// global Z axis: a point is evaluated by rotating it into the profile
// half-plane and sampling the 2D profile there.
type revolved struct {
	s2         sdf.SDF2
	inv        geom.Location // global to profile-local
	u          v3.Vec        // radial direction in the profile plane
	rmax       float64
	zmin, zmax float64
}

func (r *revolved) Evaluate(p v3.Vec) float64 {
	rho := math.Sqrt(p.X*p.X + p.Y*p.Y)
	g := r.u.MulScalar(rho).Add(v3.Vec{Z: p.Z})
	lp := r.inv.Apply(g)
	return r.s2.Evaluate(v2.Vec{X: lp.X, Y: lp.Y})
}

func (r *revolved) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -r.rmax, Y: -r.rmax, Z: r.zmin},
		Max: v3.Vec{X: r.rmax, Y: r.rmax, Z: r.zmax},
	}
}

// Loft blends between two parallel planar profiles.
func (k *Kernel) Loft(profiles []kernel.Handle) (kernel.Handle, error) {
	if len(profiles) != 2 {
		return nil, kernel.Errorf("loft", profiles, "reference backend lofts exactly 2 profiles, got %d", len(profiles))
	}
	a, err := unwrap("loft", profiles[0])
	if err != nil {
		return nil, err
	}
	b, err := unwrap("loft", profiles[1])
	if err != nil {
		return nil, err
	}
	if a.kind != kernel.KindFace || b.kind != kernel.KindFace || a.s2 == nil || b.s2 == nil {
		return nil, kernel.Errorf("loft", profiles, "profiles must be planar faces")
	}
	na := a.frame.ApplyDir(v3.Vec{Z: 1})
	nb := b.frame.ApplyDir(v3.Vec{Z: 1})
	if na.Cross(nb).Length() > geom.AngTol {
		return nil, kernel.Wrap("loft", kernel.ErrUnsupported, profiles[0], profiles[1])
	}
	h := b.frame.Position().Sub(a.frame.Position()).Dot(na)
	if math.Abs(h) < geom.PosTol {
		return nil, kernel.Errorf("loft", profiles, "profiles are coplanar")
	}
	s3, err := sdf.Loft3D(a.s2, b.s2, math.Abs(h), 0)
	if err != nil {
		return nil, kernel.Wrap("loft", err, profiles[0], profiles[1])
	}
	s3 = sdf.Transform3D(s3, a.frame.Matrix().Mul(sdf.Translate3d(v3.Vec{Z: h / 2})))
	return sampledSolid(s3), nil
}

// Sweep sweeps a profile along a path. Straight-line paths reduce to
// an extrusion; other paths are beyond the reference backend.
func (k *Kernel) Sweep(profile, path kernel.Handle) (kernel.Handle, error) {
	p, err := unwrap("sweep", path)
	if err != nil {
		return nil, err
	}
	if p.kind == kernel.KindEdge && len(p.kids) == 2 {
		dir := p.kids[1].center.Sub(p.kids[0].center)
		return k.Extrude(profile, dir)
	}
	return nil, kernel.Wrap("sweep", kernel.ErrUnsupported, profile, path)
}

// ConvexHull builds the planar convex hull face of a point set. The
// points must lie in the XY plane.
func (k *Kernel) ConvexHull(points []v3.Vec) (kernel.Handle, error) {
	if len(points) < 3 {
		return nil, kernel.Errorf("hull", nil, "need at least 3 points, got %d", len(points))
	}
	pts := make([]v2.Vec, len(points))
	for i, p := range points {
		if math.Abs(p.Z) > geom.PosTol {
			return nil, kernel.Errorf("hull", nil, "point %d is out of plane (z=%g)", i, p.Z)
		}
		pts[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	hull := convexHull2(pts)
	if len(hull) < 3 {
		return nil, kernel.Errorf("hull", nil, "points are collinear")
	}
	return polygonFace("hull", hull)
}

// convexHull2 is the Andrew monotone chain algorithm, returning hull
// points in counter-clockwise order.
func convexHull2(pts []v2.Vec) []v2.Vec {
	pts = append([]v2.Vec(nil), pts...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	cross := func(o, a, b v2.Vec) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	var lower, upper []v2.Vec
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// Fillet rounds the given edges of a solid. The reference backend can
// only re-round primitive recipes, and rounds the whole primitive; it
// refuses boolean results and edge handles from other shapes.
func (k *Kernel) Fillet(h kernel.Handle, edges []kernel.Handle, radius float64) (kernel.Handle, error) {
	return k.round("fillet", h, edges, radius)
}

// Chamfer bevels the given edges of a solid. The reference backend
// approximates chamfers as rounds of the chamfer length.
func (k *Kernel) Chamfer(h kernel.Handle, edges []kernel.Handle, length float64) (kernel.Handle, error) {
	return k.round("chamfer", h, edges, length)
}

func (k *Kernel) round(op string, h kernel.Handle, edges []kernel.Handle, r float64) (kernel.Handle, error) {
	s, err := unwrap(op, h)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return nil, kernel.Errorf(op, []kernel.Handle{h}, "non-positive radius %g", r)
	}
	if s.prim == nil {
		return nil, kernel.Wrap(op, kernel.ErrUnsupported, h)
	}
	if len(edges) == 0 {
		return nil, kernel.Errorf(op, []kernel.Handle{h}, "no edges given")
	}
	own := map[*shape]bool{}
	for _, e := range edgesOf(s) {
		own[e] = true
	}
	for _, e := range edges {
		es, ok := e.(*shape)
		if !ok || !own[es] {
			return nil, kernel.Errorf(op, []kernel.Handle{h, e}, "edge does not belong to the shape")
		}
	}

	var s3 sdf.SDF3
	switch s.prim.kind {
	case primBox:
		size := v3.Vec{X: s.prim.x, Y: s.prim.y, Z: s.prim.z}
		if r >= minf(size.X, minf(size.Y, size.Z))/2 {
			return nil, kernel.Errorf(op, []kernel.Handle{h}, "radius %g too large for %gx%gx%g box",
				r, size.X, size.Y, size.Z)
		}
		b, err := sdf.Box3D(size, r)
		if err != nil {
			return nil, kernel.Wrap(op, err, h)
		}
		s3 = sdf.Transform3D(b, sdf.Translate3d(size.MulScalar(0.5)))
	case primCylinder:
		if r >= minf(s.prim.x, s.prim.z/2) {
			return nil, kernel.Errorf(op, []kernel.Handle{h}, "radius %g too large for cylinder", r)
		}
		c, err := sdf.Cylinder3D(s.prim.z, s.prim.x, r)
		if err != nil {
			return nil, kernel.Wrap(op, err, h)
		}
		s3 = sdf.Transform3D(c, sdf.Translate3d(v3.Vec{Z: s.prim.z / 2}))
	default:
		return nil, kernel.Wrap(op, kernel.ErrUnsupported, h)
	}

	// Rounding moves no face centers in this approximation; reuse the
	// skeleton and re-integrate the volume.
	out := shallowCopy(s)
	out.s3 = s3
	out.mass = solidVolume(s3)
	rc := *s.prim
	rc.round = r
	out.prim = &rc
	return out, nil
}

// sampledSolid wraps an SDF whose exact topology is unknown: a single
// lateral face under a shell, all measures integrated or sampled.
func sampledSolid(s3 sdf.SDF3) *shape {
	bb := s3.BoundingBox()
	f := newShape(kernel.KindFace)
	f.bmin, f.bmax = bb.Min, bb.Max
	f.center = solidCentroid(s3)
	out := solidOf(shellOf(f), f.center, solidVolume(s3))
	out.bmin, out.bmax = bb.Min, bb.Max
	out.s3 = s3
	return out
}
