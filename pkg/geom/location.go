// Package geom provides the rigid-transform algebra used to place shapes:
// Location (position + orientation), Axis, and Plane. Locations wrap the
// geometry backend's 4x4 matrix type so composition and inversion are exact
// matrix operations rather than ad-hoc Euler bookkeeping.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerances for Location comparison. Positions agree within PosTol,
// orientations within AngTol radians.
const (
	PosTol = 1e-9
	AngTol = 1e-7
)

// Location is a rigid transform: a rotation followed by a translation.
// The zero value is NOT the identity; use Identity(). Locations are
// immutable; every method returns a new Location.
type Location struct {
	m sdf.M44
}

// Identity returns the identity Location.
func Identity() Location {
	return Location{m: sdf.Identity3d()}
}

// At returns a pure translation Location.
func At(x, y, z float64) Location {
	return Location{m: sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})}
}

// Pos returns a pure translation Location from a vector.
func Pos(v v3.Vec) Location {
	return Location{m: sdf.Translate3d(v)}
}

// Rotation returns a pure rotation Location from intrinsic X-Y-Z Euler
// angles in degrees: the X rotation is applied first, then Y in the
// rotated frame, then Z.
func Rotation(rx, ry, rz float64) Location {
	m := sdf.RotateX(rx * math.Pi / 180)
	m = m.Mul(sdf.RotateY(ry * math.Pi / 180))
	m = m.Mul(sdf.RotateZ(rz * math.Pi / 180))
	return Location{m: m}
}

// New returns a Location that rotates by angle degrees about the given
// axis direction and then translates to pos.
func New(pos v3.Vec, axis v3.Vec, angle float64) Location {
	m := sdf.Translate3d(pos).Mul(sdf.Rotate3d(axis, angle*math.Pi/180))
	return Location{m: m}
}

// fromMatrix wraps a raw matrix. Callers must pass a rigid transform.
func fromMatrix(m sdf.M44) Location {
	return Location{m: m}
}

// Mul composes two Locations: the result applies o first, then l
// (matrix-multiplication order). Composition is associative and
// Identity() is its unit.
func (l Location) Mul(o Location) Location {
	return Location{m: l.m.Mul(o.m)}
}

// Inverse returns the Location that undoes l, so l.Mul(l.Inverse())
// is the identity within tolerance.
func (l Location) Inverse() Location {
	return Location{m: l.m.Inverse()}
}

// Pow returns l composed with itself n times. Pow(0) is the identity
// and negative n composes the inverse.
func (l Location) Pow(n int) Location {
	if n < 0 {
		return l.Inverse().Pow(-n)
	}
	out := Identity()
	for i := 0; i < n; i++ {
		out = out.Mul(l)
	}
	return out
}

// Position returns the translation component.
func (l Location) Position() v3.Vec {
	return l.m.MulPosition(v3.Vec{})
}

// Apply transforms a point by the Location.
func (l Location) Apply(p v3.Vec) v3.Vec {
	return l.m.MulPosition(p)
}

// ApplyDir transforms a direction by the rotation component only.
func (l Location) ApplyDir(d v3.Vec) v3.Vec {
	return l.m.MulPosition(d).Sub(l.Position())
}

// Matrix exposes the underlying matrix for kernel backends that bake
// transforms into geometry.
func (l Location) Matrix() sdf.M44 {
	return l.m
}

// Angles extracts intrinsic X-Y-Z Euler angles in degrees from the
// rotation component, the same convention Rotation constructs with.
// Gimbal-locked orientations fold the X and Z angles together, as any
// Euler decomposition must.
func (l Location) Angles() (rx, ry, rz float64) {
	// Rotation columns are the images of the basis directions.
	cx := l.ApplyDir(v3.Vec{X: 1})
	cy := l.ApplyDir(v3.Vec{Y: 1})
	cz := l.ApplyDir(v3.Vec{Z: 1})
	ry = math.Asin(clamp(cz.X, -1, 1))
	if math.Abs(cz.X) < 1-1e-12 {
		rx = math.Atan2(-cz.Y, cz.Z)
		rz = math.Atan2(-cy.X, cx.X)
	} else {
		rx = math.Atan2(cx.Y, cy.Y)
		if cz.X < 0 {
			rx = -rx
		}
		rz = 0
	}
	const toDeg = 180 / math.Pi
	return rx * toDeg, ry * toDeg, rz * toDeg
}

// Equal reports whether two Locations agree within PosTol on position
// and AngTol on orientation. Orientation is compared by the images of
// the basis directions, which bounds the rotation angle difference.
func (l Location) Equal(o Location) bool {
	if l.Position().Sub(o.Position()).Length() > PosTol {
		return false
	}
	for _, d := range []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		if l.ApplyDir(d).Sub(o.ApplyDir(d)).Length() > AngTol {
			return false
		}
	}
	return true
}

// IsIdentity reports whether l is the identity within tolerance.
func (l Location) IsIdentity() bool {
	return l.Equal(Identity())
}

func (l Location) String() string {
	p := l.Position()
	rx, ry, rz := l.Angles()
	return fmt.Sprintf("Location(pos=(%.3g, %.3g, %.3g), rot=(%.3g, %.3g, %.3g))",
		p.X, p.Y, p.Z, rx, ry, rz)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
