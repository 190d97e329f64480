// Package sdfref implements kernel.Kernel on the github.com/deadsy/sdfx
// CAD library. Each handle pairs an SDF with a parametric topology
// skeleton, giving exact centers and measures for primitives and
// sampled ones for boolean results. It is the reference backend the
// rest of the system is tested against.
package sdfref

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

const pi = math.Pi

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Kernel is the sdfx-backed reference kernel.
type Kernel struct{}

// New returns a new reference kernel.
func New() *Kernel {
	return &Kernel{}
}

// Vertex creates a zero-dimensional entity at p.
func (k *Kernel) Vertex(p v3.Vec) (kernel.Handle, error) {
	return vertexAt(p), nil
}

// Line creates a straight edge from a to b.
func (k *Kernel) Line(a, b v3.Vec) (kernel.Handle, error) {
	if b.Sub(a).Length() < geom.PosTol {
		return nil, kernel.Errorf("line", nil, "degenerate segment at (%g, %g, %g)", a.X, a.Y, a.Z)
	}
	return edgeBetween(vertexAt(a), vertexAt(b)), nil
}

// Rect creates a w-by-h rectangular face centered at the origin on the
// XY plane.
func (k *Kernel) Rect(w, h float64) (kernel.Handle, error) {
	if w <= 0 || h <= 0 {
		return nil, kernel.Errorf("rect", nil, "non-positive dimensions %gx%g", w, h)
	}
	corners := []v2.Vec{
		{X: -w / 2, Y: -h / 2},
		{X: w / 2, Y: -h / 2},
		{X: w / 2, Y: h / 2},
		{X: -w / 2, Y: h / 2},
	}
	return polygonFace("rect", corners)
}

// Circle creates a circular face of radius r centered at the origin on
// the XY plane.
func (k *Kernel) Circle(r float64) (kernel.Handle, error) {
	if r <= 0 {
		return nil, kernel.Errorf("circle", nil, "non-positive radius %g", r)
	}
	s2, err := sdf.Circle2D(r)
	if err != nil {
		return nil, kernel.Wrap("circle", err)
	}
	rim := circleEdge(v3.Vec{}, r)
	f := faceOf(wireOf(rim), v3.Vec{}, pi*r*r)
	f.s2 = s2
	return f, nil
}

// polygonFace builds a face from a counter-clockwise 2D polygon: the
// skeleton from the corners, the SDF from sdf.Polygon2D.
func polygonFace(op string, corners []v2.Vec) (*shape, error) {
	s2, err := sdf.Polygon2D(corners)
	if err != nil {
		return nil, kernel.Wrap(op, err)
	}
	n := len(corners)
	verts := make([]*shape, n)
	for i, c := range corners {
		verts[i] = vertexAt(v3.Vec{X: c.X, Y: c.Y})
	}
	edges := make([]*shape, n)
	for i := range corners {
		edges[i] = edgeBetween(verts[i], verts[(i+1)%n])
	}
	area, centroid := polygonArea(corners)
	f := faceOf(wireOf(edges...), v3.Vec{X: centroid.X, Y: centroid.Y}, area)
	f.s2 = s2
	return f, nil
}

// polygonArea returns the shoelace area and centroid of a simple
// counter-clockwise polygon.
func polygonArea(pts []v2.Vec) (float64, v2.Vec) {
	var a float64
	var c v2.Vec
	n := len(pts)
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		cross := p.X*q.Y - q.X*p.Y
		a += cross
		c.X += (p.X + q.X) * cross
		c.Y += (p.Y + q.Y) * cross
	}
	a /= 2
	if a != 0 {
		c.X /= 6 * a
		c.Y /= 6 * a
	}
	return math.Abs(a), c
}

// Box creates an x-by-y-by-z box with its minimum corner at the
// origin. sdf.Box3D centers the box, so the SDF is shifted by the
// half-dimensions to match the skeleton.
func (k *Kernel) Box(x, y, z float64) (kernel.Handle, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, kernel.Errorf("box", nil, "non-positive dimensions %gx%gx%g", x, y, z)
	}
	s3, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, kernel.Wrap("box", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	s := boxSkeleton(x, y, z)
	s.s3 = sdf.Transform3D(s3, m)
	s.prim = &recipe{kind: primBox, x: x, y: y, z: z}
	return s, nil
}

// boxSkeleton builds the exact topology of a min-corner box: 8 shared
// vertices, 12 shared edges, 6 faces, one shell.
func boxSkeleton(x, y, z float64) *shape {
	// Corner i has bit 0 -> +x, bit 1 -> +y, bit 2 -> +z.
	var verts [8]*shape
	for i := 0; i < 8; i++ {
		verts[i] = vertexAt(v3.Vec{
			X: float64(i&1) * x,
			Y: float64(i>>1&1) * y,
			Z: float64(i>>2&1) * z,
		})
	}
	edge := map[[2]int]*shape{}
	edgeAt := func(a, b int) *shape {
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if e, ok := edge[key]; ok {
			return e
		}
		e := edgeBetween(verts[a], verts[b])
		edge[key] = e
		return e
	}
	quad := func(a, b, c, d int, center, normal v3.Vec, area float64) *shape {
		w := wireOf(edgeAt(a, b), edgeAt(b, c), edgeAt(c, d), edgeAt(d, a))
		f := faceOf(w, center, area)
		f.normal = &normal
		return f
	}
	faces := []*shape{
		quad(0, 1, 3, 2, v3.Vec{X: x / 2, Y: y / 2, Z: 0}, v3.Vec{Z: -1}, x*y), // bottom
		quad(4, 5, 7, 6, v3.Vec{X: x / 2, Y: y / 2, Z: z}, v3.Vec{Z: 1}, x*y),  // top
		quad(0, 1, 5, 4, v3.Vec{X: x / 2, Y: 0, Z: z / 2}, v3.Vec{Y: -1}, x*z), // front
		quad(2, 3, 7, 6, v3.Vec{X: x / 2, Y: y, Z: z / 2}, v3.Vec{Y: 1}, x*z),  // back
		quad(0, 2, 6, 4, v3.Vec{X: 0, Y: y / 2, Z: z / 2}, v3.Vec{X: -1}, y*z), // left
		quad(1, 3, 7, 5, v3.Vec{X: x, Y: y / 2, Z: z / 2}, v3.Vec{X: 1}, y*z),  // right
	}
	return solidOf(shellOf(faces...), v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}, x*y*z)
}

// Cylinder creates a cylinder of radius r and height h with its base
// center at the origin, axis along +Z.
func (k *Kernel) Cylinder(r, h float64) (kernel.Handle, error) {
	if r <= 0 || h <= 0 {
		return nil, kernel.Errorf("cylinder", nil, "non-positive dimensions r=%g h=%g", r, h)
	}
	s3, err := sdf.Cylinder3D(h, r, 0)
	if err != nil {
		return nil, kernel.Wrap("cylinder", err)
	}
	bottom := circleEdge(v3.Vec{}, r)
	top := circleEdge(v3.Vec{Z: h}, r)
	bottomFace := faceOf(wireOf(bottom), v3.Vec{}, pi*r*r)
	bottomFace.normal = &v3.Vec{Z: -1}
	topFace := faceOf(wireOf(top), v3.Vec{Z: h}, pi*r*r)
	topFace.normal = &v3.Vec{Z: 1}
	faces := []*shape{
		bottomFace,
		topFace,
		faceOf(wireOf(bottom, top), v3.Vec{Z: h / 2}, 2*pi*r*h),
	}
	s := solidOf(shellOf(faces...), v3.Vec{Z: h / 2}, pi*r*r*h)
	s.bmin = v3.Vec{X: -r, Y: -r}
	s.bmax = v3.Vec{X: r, Y: r, Z: h}
	s.s3 = sdf.Transform3D(s3, sdf.Translate3d(v3.Vec{Z: h / 2}))
	s.prim = &recipe{kind: primCylinder, x: r, z: h}
	return s, nil
}

// Sphere creates a sphere of radius r centered at the origin.
func (k *Kernel) Sphere(r float64) (kernel.Handle, error) {
	if r <= 0 {
		return nil, kernel.Errorf("sphere", nil, "non-positive radius %g", r)
	}
	s3, err := sdf.Sphere3D(r)
	if err != nil {
		return nil, kernel.Wrap("sphere", err)
	}
	f := faceOf(wireOf(), v3.Vec{}, 4*pi*r*r)
	f.kids = nil // a sphere face has no bounding wire
	rv := v3.Vec{X: r, Y: r, Z: r}
	f.bmin, f.bmax = rv.MulScalar(-1), rv
	s := solidOf(shellOf(f), v3.Vec{}, 4.0/3.0*pi*r*r*r)
	s.s3 = s3
	s.prim = &recipe{kind: primSphere, x: r}
	return s, nil
}

// Transform rebuilds a handle's geometry under a rigid transform.
// This is the documented slow path; placement is normally carried as
// location metadata by the caller.
func (k *Kernel) Transform(h kernel.Handle, l geom.Location) (kernel.Handle, error) {
	s, err := unwrap("transform", h)
	if err != nil {
		return nil, err
	}
	return transform(s, l, map[*shape]*shape{}), nil
}
