package build

import (
	"math"

	"github.com/chisel3d/chisel/pkg/geom"
)

// PushLocations opens a placement context: every primitive recorded
// until the returned pop function runs is replicated once per given
// location. Contexts nest relatively: frames pushed inside another
// context compose onto each of its frames, so a grid inside a rotated
// frame is a rotated grid. The caller pairs each push with its pop,
// normally via defer.
func (s *Session) PushLocations(ls ...geom.Location) (pop func()) {
	if len(ls) == 0 {
		ls = []geom.Location{geom.Identity()}
	}
	group := append([]geom.Location(nil), ls...)
	s.frames = append(s.frames, group)
	popped := false
	return func() {
		if popped || s.closed {
			return
		}
		popped = true
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// FrameDepth returns the number of open placement contexts.
func (s *Session) FrameDepth() int { return len(s.frames) }

// effectiveFrames flattens the location stack into the frames a
// recorded primitive is placed at: the cross product of the open
// contexts, outermost first, composed relatively. An empty stack
// yields the single identity frame.
func (s *Session) effectiveFrames() []geom.Location {
	acc := []geom.Location{geom.Identity()}
	for _, group := range s.frames {
		next := make([]geom.Location, 0, len(acc)*len(group))
		for _, outer := range acc {
			for _, l := range group {
				next = append(next, outer.Mul(l))
			}
		}
		acc = next
	}
	return acc
}

// GridLocations generates a centered nx-by-ny rectangular array of
// translations with the given spacings.
func GridLocations(xSpacing, ySpacing float64, nx, ny int) []geom.Location {
	if nx < 1 || ny < 1 {
		return nil
	}
	out := make([]geom.Location, 0, nx*ny)
	x0 := -xSpacing * float64(nx-1) / 2
	y0 := -ySpacing * float64(ny-1) / 2
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			out = append(out, geom.At(x0+float64(i)*xSpacing, y0+float64(j)*ySpacing, 0))
		}
	}
	return out
}

// PolarLocations generates count frames evenly spaced on a circle of
// the given radius about the local origin, each rotated to face
// outward.
func PolarLocations(radius float64, count int) []geom.Location {
	if count < 1 {
		return nil
	}
	out := make([]geom.Location, 0, count)
	for i := 0; i < count; i++ {
		angle := 360 * float64(i) / float64(count)
		rad := angle * math.Pi / 180
		out = append(out, geom.At(radius*math.Cos(rad), radius*math.Sin(rad), 0).
			Mul(geom.Rotation(0, 0, angle)))
	}
	return out
}

// HexLocations generates a centered hex-packed nx-by-ny array with the
// given apothem (half the distance between adjacent rows). Odd
// columns are offset by half a pitch, the standard close packing.
func HexLocations(apothem float64, nx, ny int) []geom.Location {
	if nx < 1 || ny < 1 {
		return nil
	}
	pitch := 2 * apothem
	xStep := pitch * math.Sqrt(3) / 2
	out := make([]geom.Location, 0, nx*ny)
	x0 := -xStep * float64(nx-1) / 2
	y0 := -pitch * float64(ny-1) / 2
	for i := 0; i < nx; i++ {
		yOff := 0.0
		if i%2 == 1 {
			yOff = apothem
		}
		for j := 0; j < ny; j++ {
			out = append(out, geom.At(x0+float64(i)*xStep, y0+float64(j)*pitch+yOff, 0))
		}
	}
	return out
}

// Locations is a convenience for a list of plain translations.
func Locations(points ...[3]float64) []geom.Location {
	out := make([]geom.Location, len(points))
	for i, p := range points {
		out[i] = geom.At(p[0], p[1], p[2])
	}
	return out
}
