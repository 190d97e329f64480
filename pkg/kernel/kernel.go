// Package kernel defines the abstract geometry kernel interface.
// Implementations provide primitive construction, boolean combination
// and local feature operations behind this interface, so the rest of
// the system can treat the geometry math as an opaque service and be
// tested against a reference backend.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
)

// Kind is the topological kind of a handle, ordered leaf-first.
type Kind int

const (
	KindVertex Kind = iota
	KindEdge
	KindWire
	KindFace
	KindShell
	KindSolid
	KindCompound
)

var kindNames = [...]string{"vertex", "edge", "wire", "face", "shell", "solid", "compound"}

func (k Kind) String() string {
	if k < KindVertex || k > KindCompound {
		return "unknown"
	}
	return kindNames[k]
}

// Dim returns the dimensionality of the kind: 0 for vertices, 1 for
// edges and wires, 2 for faces and shells, 3 for solids. Compounds
// report -1; their dimensionality is that of their children.
func (k Kind) Dim() int {
	switch k {
	case KindVertex:
		return 0
	case KindEdge, KindWire:
		return 1
	case KindFace, KindShell:
		return 2
	case KindSolid:
		return 3
	}
	return -1
}

// Handle is an opaque reference to a kernel-owned topology entity.
// Handles are immutable: no kernel operation mutates an existing
// handle, every operation returns a new one. Children of a shared
// boundary (an edge between two faces) are the same Handle in both
// parents, so callers can detect sharing by identity.
type Handle interface {
	// Kind returns the topological kind of the entity.
	Kind() Kind
	// Children returns the entities of the next-lower kind owned by
	// this one (compounds may hold any kind). Leaf kinds return nil.
	Children() []Handle
	// Center returns the geometric center of the entity.
	Center() v3.Vec
	// Bounds returns the axis-aligned bounding box.
	Bounds() (min, max v3.Vec)
	// Mass returns the measure appropriate to the kind: length for
	// edges and wires, area for faces and shells, volume for solids,
	// the sum of children for compounds, zero for vertices.
	Mass() float64
	// Normal returns the outward normal of a planar face. The second
	// result is false for non-faces and non-planar faces.
	Normal() (v3.Vec, bool)
}

// BoolOp selects a boolean combination.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpSubtract
	OpIntersect
)

func (op BoolOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpSubtract:
		return "subtract"
	case OpIntersect:
		return "intersect"
	}
	return "unknown"
}

// Kernel is the abstract geometry kernel. All operations are pure:
// inputs are never modified and results are freshly built handles.
// Failures are reported as *OpError.
type Kernel interface {
	// Primitives. Boxes and cylinders sit with their minimum corner
	// (base) at the origin so placement translations are intuitive;
	// spheres, rectangles and circles are centered at the origin.
	Vertex(p v3.Vec) (Handle, error)
	Line(a, b v3.Vec) (Handle, error)
	Rect(w, h float64) (Handle, error)
	Circle(r float64) (Handle, error)
	Box(x, y, z float64) (Handle, error)
	Cylinder(r, h float64) (Handle, error)
	Sphere(r float64) (Handle, error)

	// Boolean combines two handles of compatible dimensionality.
	Boolean(op BoolOp, a, b Handle) (Handle, error)

	// Sweeps build higher-dimensional entities from profiles.
	Extrude(profile Handle, dir v3.Vec) (Handle, error)
	Revolve(profile Handle, axis geom.Axis, angle float64) (Handle, error)
	Loft(profiles []Handle) (Handle, error)
	Sweep(profile, path Handle) (Handle, error)
	ConvexHull(points []v3.Vec) (Handle, error)

	// Local features.
	Fillet(h Handle, edges []Handle, radius float64) (Handle, error)
	Chamfer(h Handle, edges []Handle, length float64) (Handle, error)

	// Transform rebuilds the underlying geometry under a rigid
	// transform. This is the slow path: placement should normally be
	// carried as location metadata and baked only when a boolean or
	// feature operation needs geometry in a common frame.
	Transform(h Handle, l geom.Location) (Handle, error)
}
