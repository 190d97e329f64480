package topo

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

func TestExtruded(t *testing.T) {
	s, err := testRect(t, 2, 3).Extruded(v3.Vec{Z: 5})
	if err != nil {
		t.Fatalf("extrude: %v", err)
	}
	if got := s.Kind(); got != kernel.KindSolid {
		t.Errorf("kind = %v, want solid", got)
	}
	if got := s.Volume(); !almostEqual(got, 30, 1e-9) {
		t.Errorf("volume = %g, want 30", got)
	}
}

func TestExtrudedBakesPlacement(t *testing.T) {
	// A profile moved before extrusion sweeps from its placed position.
	s, err := testRect(t, 2, 2).Moved(geom.At(10, 0, 0)).Extruded(v3.Vec{Z: 3})
	if err != nil {
		t.Fatalf("extrude: %v", err)
	}
	c := s.Center()
	if !almostEqual(c.X, 10, 1e-9) || !almostEqual(c.Z, 1.5, 1e-9) {
		t.Errorf("center = (%g, %g, %g), want (10, 0, 1.5)", c.X, c.Y, c.Z)
	}
}

func TestLofted(t *testing.T) {
	a := testRect(t, 2, 2)
	b := testRect(t, 2, 2).Moved(geom.At(0, 0, 4))
	s, err := a.Lofted(b)
	if err != nil {
		t.Fatalf("loft: %v", err)
	}
	got := s.Volume()
	if got < 15 || got > 17 {
		t.Errorf("volume = %g, want about 16", got)
	}
}

func TestSwept(t *testing.T) {
	k := testRect(t, 1, 1).Kernel()
	lh, err := k.Line(v3.Vec{}, v3.Vec{Z: 6})
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	s, err := testRect(t, 1, 1).Swept(New(k, lh))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := s.Volume(); !almostEqual(got, 6, 1e-9) {
		t.Errorf("volume = %g, want 6", got)
	}
}

func TestFilletedKeepsPlacement(t *testing.T) {
	b := testBox(t, 10, 10, 10).Moved(geom.At(0, 0, 50))
	// Selection and fillet both run in the build frame, so moving the
	// shape first must not invalidate the selected edges.
	edges := b.Edges().FilterBy(Interior(b))
	f, err := b.Filleted(edges, 1)
	if err != nil {
		t.Fatalf("fillet: %v", err)
	}
	if got := f.Center().Z; !almostEqual(got, 55, 1e-9) {
		t.Errorf("center.Z = %g, want 55", got)
	}
	if got := f.Volume(); got >= 1000 {
		t.Errorf("volume = %g, want less than the sharp box's 1000", got)
	}
}

func TestChamfered(t *testing.T) {
	b := testBox(t, 10, 10, 10)
	top := b.Edges().FilterBy(Within(geom.AxisZ, 9, 11))
	if len(top) != 4 {
		t.Fatalf("top edges = %d, want 4", len(top))
	}
	c, err := b.Chamfered(top, 1)
	if err != nil {
		t.Fatalf("chamfer: %v", err)
	}
	if got := c.Volume(); got >= 1000 {
		t.Errorf("volume = %g, want less than 1000", got)
	}
}
