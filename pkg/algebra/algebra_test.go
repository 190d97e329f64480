package algebra

import (
	"errors"
	"math"
	"testing"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
	"github.com/chisel3d/chisel/pkg/kernel/sdfref"
	"github.com/chisel3d/chisel/pkg/topo"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func box(t *testing.T, k kernel.Kernel, x, y, z float64) topo.Shape {
	t.Helper()
	h, err := k.Box(x, y, z)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return topo.New(k, h)
}

func rect(t *testing.T, k kernel.Kernel, w, h float64) topo.Shape {
	t.Helper()
	f, err := k.Rect(w, h)
	if err != nil {
		t.Fatalf("rect: %v", err)
	}
	return topo.New(k, f)
}

func TestUnion(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 2, 2, 2)
	b := Place(geom.At(10, 0, 0), box(t, k, 3, 3, 3))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	if got := u.Volume(); !almostEqual(got, 35, 1e-9) {
		t.Errorf("volume = %g, want 35", got)
	}
	if got := len(u.Solids()); got != 2 {
		t.Errorf("solids = %d, want 2", got)
	}
}

func TestSubtract(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 10, 10, 10)
	b := Place(geom.At(3, 3, -1), box(t, k, 4, 4, 12))

	d, err := Subtract(a, b)
	if err != nil {
		t.Fatalf("subtract: %v", err)
	}
	got := d.Volume()
	if math.Abs(got-840) > 0.03*840 {
		t.Errorf("volume = %g, want about 840", got)
	}
}

func TestIntersectDisjoint(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 1, 1, 1)
	b := Place(geom.At(10, 0, 0), box(t, k, 1, 1, 1))

	_, err := Intersect(a, b)
	if !errors.Is(err, kernel.ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}

func TestCombineWithEmpty(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 2, 2, 2)
	var empty topo.Shape

	u, err := Union(a, empty)
	if err != nil {
		t.Fatalf("union with empty: %v", err)
	}
	if !u.Equal(a) {
		t.Error("union with empty changed the shape")
	}

	u, err = Union(empty, a)
	if err != nil {
		t.Fatalf("union onto empty: %v", err)
	}
	if !u.Equal(a) {
		t.Error("union onto empty is not the operand")
	}

	d, err := Subtract(a, empty)
	if err != nil {
		t.Fatalf("subtract empty: %v", err)
	}
	if !d.Equal(a) {
		t.Error("subtracting empty changed the shape")
	}

	if _, err := Subtract(empty, a); err == nil {
		t.Error("subtracting from empty did not fail")
	}
	if _, err := Intersect(a, empty); err == nil {
		t.Error("intersecting with empty did not fail")
	}
}

func TestDimensionMismatch(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 1, 1, 1)
	f := rect(t, k, 1, 1)

	_, err := Union(a, f)
	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("error = %v, want *MismatchError", err)
	}
	if mm.A != kernel.KindSolid || mm.B != kernel.KindFace {
		t.Errorf("mismatch kinds = %v, %v, want solid, face", mm.A, mm.B)
	}
}

func TestPlace(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 2, 2, 2)
	p := Place(geom.At(5, 0, 0), a)

	if p.Handle() != a.Handle() {
		t.Error("Place rebuilt the kernel geometry")
	}
	if got := p.Center().X; !almostEqual(got, 6, 1e-9) {
		t.Errorf("center.X = %g, want 6", got)
	}
}

func TestPlaceComposesLeft(t *testing.T) {
	k := sdfref.New()
	a := box(t, k, 2, 2, 2)
	// Placing under r after t applies t first: r * (t * shape).
	p := Place(geom.Rotation(0, 0, 90), Place(geom.At(10, 0, 0), a))
	c := p.Center()
	if !almostEqual(c.X, -1, 1e-9) || !almostEqual(c.Y, 11, 1e-9) {
		t.Errorf("center = (%g, %g, %g), want (-1, 11, 1)", c.X, c.Y, c.Z)
	}
}

func TestFaceAlgebra(t *testing.T) {
	k := sdfref.New()
	a := rect(t, k, 2, 2)
	b := Place(geom.At(10, 0, 0), rect(t, k, 2, 2))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	if got := u.Area(); !almostEqual(got, 8, 1e-9) {
		t.Errorf("area = %g, want 8", got)
	}
	if got := len(u.Faces()); got != 2 {
		t.Errorf("faces = %d, want 2", got)
	}
}
