package geom

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestPlaneNormals(t *testing.T) {
	tests := []struct {
		name string
		p    Plane
		want v3.Vec
	}{
		{"XY", PlaneXY, v3.Vec{Z: 1}},
		{"XZ", PlaneXZ, v3.Vec{Y: -1}},
		{"YZ", PlaneYZ, v3.Vec{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Normal(); !vecAlmostEqual(got, tt.want, 1e-9) {
				t.Errorf("normal = (%g, %g, %g), want (%g, %g, %g)",
					got.X, got.Y, got.Z, tt.want.X, tt.want.Y, tt.want.Z)
			}
		})
	}
}

func TestPlaneFromNormal(t *testing.T) {
	tests := []struct {
		name   string
		normal v3.Vec
	}{
		{"up", v3.Vec{Z: 1}},
		{"down", v3.Vec{Z: -1}},
		{"sideways", v3.Vec{X: 1}},
		{"skew", v3.Vec{X: 1, Y: 1, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlaneFromNormal(v3.Vec{X: 2, Y: 3, Z: 4}, tt.normal)
			want := tt.normal.Normalize()
			if got := p.Normal(); !vecAlmostEqual(got, want, 1e-9) {
				t.Errorf("normal = (%g, %g, %g), want (%g, %g, %g)",
					got.X, got.Y, got.Z, want.X, want.Y, want.Z)
			}
			if got := p.Origin(); !vecAlmostEqual(got, v3.Vec{X: 2, Y: 3, Z: 4}, 1e-9) {
				t.Errorf("origin = (%g, %g, %g), want (2, 3, 4)", got.X, got.Y, got.Z)
			}
		})
	}
}

func TestPlaneContains(t *testing.T) {
	p := PlaneFromNormal(v3.Vec{Z: 5}, v3.Vec{Z: 1})
	if !p.Contains(v3.Vec{X: 100, Y: -3, Z: 5}, PosTol) {
		t.Error("point on plane reported outside")
	}
	if p.Contains(v3.Vec{Z: 5.1}, PosTol) {
		t.Error("point off plane reported inside")
	}
}

func TestPlaneWithOrigin(t *testing.T) {
	p := PlaneFromNormal(v3.Vec{}, v3.Vec{X: 1}).WithOrigin(v3.Vec{X: 10, Y: 1, Z: 2})
	if got := p.Origin(); !vecAlmostEqual(got, v3.Vec{X: 10, Y: 1, Z: 2}, 1e-9) {
		t.Errorf("origin = (%g, %g, %g), want (10, 1, 2)", got.X, got.Y, got.Z)
	}
	if got := p.Normal(); !vecAlmostEqual(got, v3.Vec{X: 1}, 1e-9) {
		t.Errorf("normal = (%g, %g, %g), want (1, 0, 0)", got.X, got.Y, got.Z)
	}
}

func TestAxisProject(t *testing.T) {
	p := v3.Vec{X: 3, Y: 4, Z: 7}
	if got := AxisZ.Project(p); !almostEqual(got, 7, 1e-9) {
		t.Errorf("project on Z = %g, want 7", got)
	}
	shifted := Axis{Position: v3.Vec{X: 1}, Direction: v3.Vec{X: 2}}
	if got := shifted.Project(p); !almostEqual(got, 2, 1e-9) {
		t.Errorf("project on shifted X = %g, want 2", got)
	}
}

func TestAxisParallelNormal(t *testing.T) {
	if !AxisX.IsParallel(v3.Vec{X: 3}) {
		t.Error("X not parallel to itself")
	}
	if !AxisX.IsParallel(v3.Vec{X: -1}) {
		t.Error("anti-parallel direction not treated as parallel")
	}
	if !AxisX.IsNormal(v3.Vec{Y: 1}) {
		t.Error("X not normal to Y")
	}
	if AxisX.IsParallel(v3.Vec{Z: 1}) {
		t.Error("X parallel to Z")
	}
}

func TestAxisLocated(t *testing.T) {
	a := AxisX.Located(Rotation(0, 0, 90))
	if !vecAlmostEqual(a.Direction, v3.Vec{Y: 1}, 1e-9) {
		t.Errorf("direction = (%g, %g, %g), want (0, 1, 0)",
			a.Direction.X, a.Direction.Y, a.Direction.Z)
	}
}
