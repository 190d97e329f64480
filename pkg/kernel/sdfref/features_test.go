package sdfref

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

func TestExtrude(t *testing.T) {
	k := New()
	p := mustRect(t, k, 2, 3)

	s, err := k.Extrude(p, v3.Vec{Z: 5})
	if err != nil {
		t.Fatalf("extrude: %v", err)
	}
	if got := s.Kind(); got != kernel.KindSolid {
		t.Errorf("kind = %v, want solid", got)
	}
	// Prism volume is exact: area times height.
	if got := s.Mass(); !almostEqual(got, 30, 1e-9) {
		t.Errorf("volume = %g, want 30", got)
	}
	if got := s.Center(); !almostEqual(got.Z, 2.5, 1e-9) {
		t.Errorf("center.Z = %g, want 2.5", got.Z)
	}
	faces := facesOf(s.(*shape))
	if len(faces) != 3 {
		t.Errorf("faces = %d, want bottom, top and lateral", len(faces))
	}
	bmin, bmax := s.Bounds()
	if !almostEqual(bmin.Z, 0, 1e-6) || !almostEqual(bmax.Z, 5, 1e-6) {
		t.Errorf("bounds Z = %g..%g, want 0..5", bmin.Z, bmax.Z)
	}
}

func TestExtrudeSharesCapEdges(t *testing.T) {
	k := New()
	s, err := k.Extrude(mustRect(t, k, 2, 2), v3.Vec{Z: 1})
	if err != nil {
		t.Fatalf("extrude: %v", err)
	}
	faces := facesOf(s.(*shape))
	edges := map[*shape]int{}
	for _, f := range faces {
		for _, e := range edgesOf(f) {
			edges[e]++
		}
	}
	// 4 bottom and 4 top edges, each owned by a cap and the lateral face.
	if len(edges) != 8 {
		t.Fatalf("distinct edges = %d, want 8", len(edges))
	}
	for e, n := range edges {
		if n != 2 {
			t.Errorf("edge at %v owned by %d faces, want 2", e.center, n)
		}
	}
}

func TestExtrudeAgainstNormal(t *testing.T) {
	k := New()
	s, err := k.Extrude(mustRect(t, k, 2, 2), v3.Vec{Z: -3})
	if err != nil {
		t.Fatalf("extrude: %v", err)
	}
	if got := s.Mass(); !almostEqual(got, 12, 1e-9) {
		t.Errorf("volume = %g, want 12", got)
	}
	bmin, bmax := s.Bounds()
	if !almostEqual(bmin.Z, -3, 1e-6) || !almostEqual(bmax.Z, 0, 1e-6) {
		t.Errorf("bounds Z = %g..%g, want -3..0", bmin.Z, bmax.Z)
	}
}

func TestExtrudeObliqueUnsupported(t *testing.T) {
	k := New()
	_, err := k.Extrude(mustRect(t, k, 2, 2), v3.Vec{X: 1, Z: 1})
	if !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestExtrudeRejectsSolid(t *testing.T) {
	k := New()
	_, err := k.Extrude(mustBox(t, k, 1, 1, 1), v3.Vec{Z: 1})
	if err == nil {
		t.Fatal("extruding a solid did not fail")
	}
}

func TestRevolve(t *testing.T) {
	k := New()
	c, err := k.Circle(1)
	if err != nil {
		t.Fatalf("circle: %v", err)
	}
	// A disc stood up in the XZ plane, offset from the axis, revolves
	// into a torus.
	p := mustMoved(t, k, c, geom.At(3, 0, 0).Mul(geom.Rotation(90, 0, 0)))

	s, err := k.Revolve(p, geom.AxisZ, 360)
	if err != nil {
		t.Fatalf("revolve: %v", err)
	}
	// Torus volume 2 pi^2 R r^2 with R=3, r=1.
	want := 2 * pi * pi * 3
	if got := s.Mass(); !within(got, want, 0.05) {
		t.Errorf("volume = %g, want about %g", got, want)
	}
	bmin, bmax := s.Bounds()
	if !almostEqual(bmin.X, -4, 1e-6) || !almostEqual(bmax.X, 4, 1e-6) {
		t.Errorf("bounds X = %g..%g, want -4..4", bmin.X, bmax.X)
	}
}

func TestRevolveValidation(t *testing.T) {
	k := New()
	stood := mustMoved(t, k, mustRect(t, k, 1, 1),
		geom.At(3, 0, 0).Mul(geom.Rotation(90, 0, 0)))
	if _, err := k.Revolve(stood, geom.AxisZ, 90); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("partial revolve error = %v, want ErrUnsupported", err)
	}
	if _, err := k.Revolve(stood, geom.AxisX, 360); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("off-axis revolve error = %v, want ErrUnsupported", err)
	}

	// A profile flat in XY does not contain the axis.
	flat := mustMoved(t, k, mustRect(t, k, 1, 1), geom.At(3, 0, 0))
	if _, err := k.Revolve(flat, geom.AxisZ, 360); err == nil {
		t.Error("flat profile did not fail")
	}

	// A profile straddling the axis cannot be revolved.
	straddle := mustMoved(t, k, mustRect(t, k, 4, 1), geom.Rotation(90, 0, 0))
	if _, err := k.Revolve(straddle, geom.AxisZ, 360); err == nil {
		t.Error("axis-crossing profile did not fail")
	}
}

func TestLoft(t *testing.T) {
	k := New()
	a := mustRect(t, k, 2, 2)
	b := mustMoved(t, k, mustRect(t, k, 2, 2), geom.At(0, 0, 5))

	s, err := k.Loft([]kernel.Handle{a, b})
	if err != nil {
		t.Fatalf("loft: %v", err)
	}
	if got := s.Mass(); !within(got, 20, 0.05) {
		t.Errorf("volume = %g, want about 20", got)
	}
}

func TestLoftValidation(t *testing.T) {
	k := New()
	a := mustRect(t, k, 2, 2)
	if _, err := k.Loft([]kernel.Handle{a}); err == nil {
		t.Error("single-profile loft did not fail")
	}
	if _, err := k.Loft([]kernel.Handle{a, mustRect(t, k, 1, 1)}); err == nil {
		t.Error("coplanar loft did not fail")
	}
}

func TestSweepLine(t *testing.T) {
	k := New()
	path, err := k.Line(v3.Vec{}, v3.Vec{Z: 4})
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	s, err := k.Sweep(mustRect(t, k, 2, 3), path)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := s.Mass(); !almostEqual(got, 24, 1e-9) {
		t.Errorf("volume = %g, want 24", got)
	}
}

func TestConvexHull(t *testing.T) {
	k := New()
	pts := []v3.Vec{
		{X: 0, Y: 0},
		{X: 2, Y: 0},
		{X: 2, Y: 2},
		{X: 0, Y: 2},
		{X: 1, Y: 1}, // interior, must not appear on the hull
	}
	f, err := k.ConvexHull(pts)
	if err != nil {
		t.Fatalf("hull: %v", err)
	}
	if got := f.Mass(); !almostEqual(got, 4, 1e-9) {
		t.Errorf("area = %g, want 4", got)
	}
	if got := len(edgesOf(f.(*shape))); got != 4 {
		t.Errorf("hull edges = %d, want 4", got)
	}

	if _, err := k.ConvexHull(pts[:2]); err == nil {
		t.Error("two-point hull did not fail")
	}
	if _, err := k.ConvexHull([]v3.Vec{{}, {X: 1}, {X: 2}}); err == nil {
		t.Error("collinear hull did not fail")
	}
}

func TestFillet(t *testing.T) {
	k := New()
	b := mustBox(t, k, 10, 10, 10)
	edges := b.Children()[0].Children()[0].Children()[0].Children() // solid->shell->face->wire->edges
	var es []kernel.Handle
	for _, e := range edges {
		es = append(es, e)
	}

	f, err := k.Fillet(b, es, 1)
	if err != nil {
		t.Fatalf("fillet: %v", err)
	}
	// Rounding removes material along edges and corners: the exact
	// rounded-box volume is about 975.6.
	got := f.Mass()
	if got < 940 || got > 995 {
		t.Errorf("volume = %g, want between 940 and 995", got)
	}
}

func TestFilletValidation(t *testing.T) {
	k := New()
	b := mustBox(t, k, 10, 10, 10)
	own := b.Children()[0].Children()[0].Children()[0].Children()

	if _, err := k.Fillet(b, own, 6); err == nil {
		t.Error("oversized radius did not fail")
	}
	if _, err := k.Fillet(b, nil, 1); err == nil {
		t.Error("empty edge list did not fail")
	}

	other := mustBox(t, k, 1, 1, 1)
	foreign := other.Children()[0].Children()[0].Children()[0].Children()
	if _, err := k.Fillet(b, foreign, 1); err == nil {
		t.Error("foreign edges did not fail")
	}

	u, err := k.Boolean(kernel.OpUnion, b, mustMoved(t, k, other, geom.At(30, 0, 0)))
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	if _, err := k.Fillet(u, own, 1); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("fillet on boolean result = %v, want ErrUnsupported", err)
	}
}

func TestChamfer(t *testing.T) {
	k := New()
	c, err := k.Cylinder(5, 10)
	if err != nil {
		t.Fatalf("cylinder: %v", err)
	}
	var es []kernel.Handle
	for _, e := range edgesOf(c.(*shape)) {
		es = append(es, e)
	}
	out, err := k.Chamfer(c, es, 1)
	if err != nil {
		t.Fatalf("chamfer: %v", err)
	}
	if got, want := out.Mass(), pi*25*10; got >= want {
		t.Errorf("volume = %g, want less than the sharp cylinder's %g", got, want)
	}
}
