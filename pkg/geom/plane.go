package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis is an infinite oriented line: a point and a unit direction.
// Used both as a rotation axis and as a sort/filter criterion for
// topology queries.
type Axis struct {
	Position  v3.Vec
	Direction v3.Vec
}

// The three global coordinate axes.
var (
	AxisX = Axis{Direction: v3.Vec{X: 1}}
	AxisY = Axis{Direction: v3.Vec{Y: 1}}
	AxisZ = Axis{Direction: v3.Vec{Z: 1}}
)

// Project returns the signed distance of p along the axis direction,
// measured from the axis position. This is the scalar used to sort
// topology elements "by Z" and the like.
func (a Axis) Project(p v3.Vec) float64 {
	return p.Sub(a.Position).Dot(a.Direction.Normalize())
}

// IsParallel reports whether d is parallel (or anti-parallel) to the
// axis direction within AngTol.
func (a Axis) IsParallel(d v3.Vec) bool {
	return a.Direction.Normalize().Cross(d.Normalize()).Length() < AngTol
}

// IsNormal reports whether d is perpendicular to the axis direction
// within AngTol.
func (a Axis) IsNormal(d v3.Vec) bool {
	return math.Abs(a.Direction.Normalize().Dot(d.Normalize())) < AngTol
}

// Located returns the axis transformed by a Location.
func (a Axis) Located(l Location) Axis {
	return Axis{
		Position:  l.Apply(a.Position),
		Direction: l.ApplyDir(a.Direction),
	}
}

// Plane is an oriented workplane: an origin and a normal, carried as a
// Location whose Z direction is the normal. Sketch scopes are oriented
// on a Plane, letting 2D profiles be drawn on arbitrary part faces.
type Plane struct {
	loc Location
}

// The three global coordinate planes.
var (
	PlaneXY = PlaneFromNormal(v3.Vec{}, v3.Vec{Z: 1})
	PlaneXZ = PlaneFromNormal(v3.Vec{}, v3.Vec{Y: -1})
	PlaneYZ = PlaneFromNormal(v3.Vec{}, v3.Vec{X: 1})
)

// PlaneFromNormal builds a Plane at origin with the given normal. The
// in-plane X direction is chosen by the minimal rotation carrying the
// global Z axis onto the normal.
func PlaneFromNormal(origin, normal v3.Vec) Plane {
	m := sdf.Translate3d(origin)
	n := normal.Normalize()
	z := v3.Vec{Z: 1}
	// RotateToVector is degenerate when the vectors are parallel or
	// anti-parallel: keep the identity for the former, flip through the
	// X axis for the latter.
	switch {
	case z.Sub(n).Length() < 1e-12:
		// already aligned
	case z.Add(n).Length() < 1e-12:
		m = m.Mul(sdf.RotateX(math.Pi))
	default:
		m = m.Mul(sdf.RotateToVector(z, n))
	}
	return Plane{loc: fromMatrix(m)}
}

// PlaneFromLocation builds a Plane whose frame is the given Location.
func PlaneFromLocation(l Location) Plane {
	return Plane{loc: l}
}

// Origin returns the plane origin in global coordinates.
func (p Plane) Origin() v3.Vec {
	return p.loc.Position()
}

// Normal returns the plane normal in global coordinates.
func (p Plane) Normal() v3.Vec {
	return p.loc.ApplyDir(v3.Vec{Z: 1})
}

// Location returns the frame transform carrying plane-local coordinates
// into global coordinates.
func (p Plane) Location() Location {
	return p.loc
}

// WithOrigin returns a copy of the plane translated to a new origin,
// keeping its orientation.
func (p Plane) WithOrigin(origin v3.Vec) Plane {
	shift := origin.Sub(p.Origin())
	return Plane{loc: Pos(shift).Mul(p.loc)}
}

// Contains reports whether a point lies on the plane within tol.
func (p Plane) Contains(pt v3.Vec, tol float64) bool {
	return math.Abs(pt.Sub(p.Origin()).Dot(p.Normal())) < tol
}
