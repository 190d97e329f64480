package sdfref

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// within reports whether got is within frac (relative) of want.
func within(got, want, frac float64) bool {
	return math.Abs(got-want) <= frac*math.Abs(want)
}

func mustBox(t *testing.T, k *Kernel, x, y, z float64) kernel.Handle {
	t.Helper()
	h, err := k.Box(x, y, z)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return h
}

func mustRect(t *testing.T, k *Kernel, w, h float64) kernel.Handle {
	t.Helper()
	f, err := k.Rect(w, h)
	if err != nil {
		t.Fatalf("rect: %v", err)
	}
	return f
}

func mustMoved(t *testing.T, k *Kernel, h kernel.Handle, l geom.Location) kernel.Handle {
	t.Helper()
	out, err := k.Transform(h, l)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	return out
}

func TestBox(t *testing.T) {
	k := New()
	b := mustBox(t, k, 10, 20, 30)

	if got := b.Kind(); got != kernel.KindSolid {
		t.Errorf("kind = %v, want solid", got)
	}
	if got := b.Mass(); !almostEqual(got, 6000, 1e-9) {
		t.Errorf("volume = %g, want 6000", got)
	}
	c := b.Center()
	if !almostEqual(c.X, 5, 1e-9) || !almostEqual(c.Y, 10, 1e-9) || !almostEqual(c.Z, 15, 1e-9) {
		t.Errorf("center = (%g, %g, %g), want (5, 10, 15)", c.X, c.Y, c.Z)
	}
	bmin, bmax := b.Bounds()
	if bmin.Length() > 1e-9 || bmax.Sub(v3.Vec{X: 10, Y: 20, Z: 30}).Length() > 1e-9 {
		t.Errorf("bounds = %v..%v, want origin to (10, 20, 30)", bmin, bmax)
	}

	s := b.(*shape)
	if got := len(facesOf(s)); got != 6 {
		t.Errorf("faces = %d, want 6", got)
	}
	if got := len(edgesOf(s)); got != 12 {
		t.Errorf("edges = %d, want 12", got)
	}
}

func TestBoxSharedEdges(t *testing.T) {
	k := New()
	s := mustBox(t, k, 1, 1, 1).(*shape)

	// Every edge of a box belongs to exactly two faces.
	count := map[*shape]int{}
	for _, f := range facesOf(s) {
		for _, e := range edgesOf(f) {
			count[e]++
		}
	}
	if len(count) != 12 {
		t.Fatalf("distinct edges = %d, want 12", len(count))
	}
	for e, n := range count {
		if n != 2 {
			t.Errorf("edge at %v shared by %d faces, want 2", e.center, n)
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New()
	h, err := k.Cylinder(3, 10)
	if err != nil {
		t.Fatalf("cylinder: %v", err)
	}
	if got := h.Mass(); !almostEqual(got, pi*9*10, 1e-9) {
		t.Errorf("volume = %g, want %g", got, pi*9*10)
	}
	if got := h.Center(); !almostEqual(got.Z, 5, 1e-9) {
		t.Errorf("center.Z = %g, want 5", got.Z)
	}
	s := h.(*shape)
	if got := len(facesOf(s)); got != 3 {
		t.Errorf("faces = %d, want 3", got)
	}
	if got := len(edgesOf(s)); got != 2 {
		t.Errorf("edges = %d, want 2", got)
	}
}

func TestSphere(t *testing.T) {
	k := New()
	h, err := k.Sphere(2)
	if err != nil {
		t.Fatalf("sphere: %v", err)
	}
	want := 4.0 / 3.0 * pi * 8
	if got := h.Mass(); !almostEqual(got, want, 1e-9) {
		t.Errorf("volume = %g, want %g", got, want)
	}
	s := h.(*shape)
	if got := len(facesOf(s)); got != 1 {
		t.Errorf("faces = %d, want 1", got)
	}
	if got := len(edgesOf(s)); got != 0 {
		t.Errorf("edges = %d, want 0", got)
	}
}

func TestRect(t *testing.T) {
	k := New()
	f := mustRect(t, k, 4, 6)
	if got := f.Kind(); got != kernel.KindFace {
		t.Errorf("kind = %v, want face", got)
	}
	if got := f.Mass(); !almostEqual(got, 24, 1e-9) {
		t.Errorf("area = %g, want 24", got)
	}
	if got := f.Center(); got.Length() > 1e-9 {
		t.Errorf("center = %v, want origin", got)
	}
	n, ok := f.Normal()
	if !ok || !almostEqual(n.Z, 1, 1e-9) {
		t.Errorf("normal = %v, %v, want +Z", n, ok)
	}
	s := f.(*shape)
	if got := len(edgesOf(s)); got != 4 {
		t.Errorf("edges = %d, want 4", got)
	}
}

func TestCircle(t *testing.T) {
	k := New()
	f, err := k.Circle(2.5)
	if err != nil {
		t.Fatalf("circle: %v", err)
	}
	if got := f.Mass(); !almostEqual(got, pi*2.5*2.5, 1e-9) {
		t.Errorf("area = %g, want %g", got, pi*2.5*2.5)
	}
}

func TestLineVertex(t *testing.T) {
	k := New()
	v, err := k.Vertex(v3.Vec{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("vertex: %v", err)
	}
	if got := v.Mass(); got != 0 {
		t.Errorf("vertex mass = %g, want 0", got)
	}

	e, err := k.Line(v3.Vec{}, v3.Vec{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if got := e.Mass(); !almostEqual(got, 5, 1e-9) {
		t.Errorf("length = %g, want 5", got)
	}
	if _, err := k.Line(v3.Vec{X: 1}, v3.Vec{X: 1}); err == nil {
		t.Error("degenerate line did not fail")
	}
}

func TestPrimitiveValidation(t *testing.T) {
	k := New()
	tests := []struct {
		name string
		err  error
	}{
		{"box", func() error { _, err := k.Box(0, 1, 1); return err }()},
		{"cylinder", func() error { _, err := k.Cylinder(-1, 5); return err }()},
		{"sphere", func() error { _, err := k.Sphere(0); return err }()},
		{"rect", func() error { _, err := k.Rect(2, 0); return err }()},
		{"circle", func() error { _, err := k.Circle(-2); return err }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("invalid dimensions did not fail")
			}
			if _, ok := tt.err.(*kernel.OpError); !ok {
				t.Errorf("error type = %T, want *kernel.OpError", tt.err)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	k := New()
	b := mustBox(t, k, 2, 4, 6)
	moved := mustMoved(t, k, b, geom.At(10, 0, 0).Mul(geom.Rotation(0, 0, 90)))

	if got := moved.Mass(); !almostEqual(got, 48, 1e-9) {
		t.Errorf("volume after transform = %g, want 48", got)
	}
	c := moved.Center()
	// (1, 2, 3) rotated 90 about Z then shifted +10 in X.
	if !almostEqual(c.X, 8, 1e-9) || !almostEqual(c.Y, 1, 1e-9) || !almostEqual(c.Z, 3, 1e-9) {
		t.Errorf("center = (%g, %g, %g), want (8, 1, 3)", c.X, c.Y, c.Z)
	}
	bmin, bmax := moved.Bounds()
	if !almostEqual(bmin.X, 6, 1e-9) || !almostEqual(bmax.X, 10, 1e-9) {
		t.Errorf("bounds X = %g..%g, want 6..10", bmin.X, bmax.X)
	}

	// Sharing survives the rebuild.
	count := map[*shape]int{}
	ms := moved.(*shape)
	for _, f := range facesOf(ms) {
		for _, e := range edgesOf(f) {
			count[e]++
		}
	}
	if len(count) != 12 {
		t.Errorf("distinct edges after transform = %d, want 12", len(count))
	}
}

func TestTransformFaceNormal(t *testing.T) {
	k := New()
	f := mustMoved(t, k, mustRect(t, k, 2, 2), geom.Rotation(90, 0, 0))
	n, ok := f.Normal()
	if !ok {
		t.Fatal("no normal on transformed face")
	}
	if !almostEqual(n.Y, -1, 1e-9) {
		t.Errorf("normal = (%g, %g, %g), want (0, -1, 0)", n.X, n.Y, n.Z)
	}
}
