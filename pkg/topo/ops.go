package topo

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
)

// Extruded sweeps a planar profile along dir into a solid. The
// profile's pending placement is baked first so the sweep happens in
// the profile's global frame.
func (s Shape) Extruded(dir v3.Vec) (Shape, error) {
	baked, err := s.Baked()
	if err != nil {
		return Shape{}, err
	}
	h, err := baked.krn.Extrude(baked.h, dir)
	if err != nil {
		return Shape{}, err
	}
	return New(baked.krn, h), nil
}

// Revolved sweeps a planar profile about an axis by angle degrees.
func (s Shape) Revolved(axis geom.Axis, angle float64) (Shape, error) {
	baked, err := s.Baked()
	if err != nil {
		return Shape{}, err
	}
	h, err := baked.krn.Revolve(baked.h, axis, angle)
	if err != nil {
		return Shape{}, err
	}
	return New(baked.krn, h), nil
}

// Lofted blends between this profile and the given ones.
func (s Shape) Lofted(others ...Shape) (Shape, error) {
	baked, err := s.Baked()
	if err != nil {
		return Shape{}, err
	}
	profiles := []Shape{baked}
	for _, o := range others {
		ob, err := o.Baked()
		if err != nil {
			return Shape{}, err
		}
		profiles = append(profiles, ob)
	}
	handles := make([]kernel.Handle, 0, len(profiles))
	for _, p := range profiles {
		handles = append(handles, p.h)
	}
	h, err := baked.krn.Loft(handles)
	if err != nil {
		return Shape{}, err
	}
	return New(baked.krn, h), nil
}

// Swept sweeps this profile along a path shape.
func (s Shape) Swept(path Shape) (Shape, error) {
	baked, err := s.Baked()
	if err != nil {
		return Shape{}, err
	}
	pb, err := path.Baked()
	if err != nil {
		return Shape{}, err
	}
	h, err := baked.krn.Sweep(baked.h, pb.h)
	if err != nil {
		return Shape{}, err
	}
	return New(baked.krn, h), nil
}

// Filleted rounds the given edges, which must have been selected from
// this shape. The fillet runs in the shape's build frame and the
// placement carries over to the result.
func (s Shape) Filleted(edges ShapeList, radius float64) (Shape, error) {
	h, err := s.krn.Fillet(s.h, edges.Handles(), radius)
	if err != nil {
		return Shape{}, err
	}
	return Shape{h: h, krn: s.krn, loc: s.loc}, nil
}

// Chamfered bevels the given edges, selected from this shape.
func (s Shape) Chamfered(edges ShapeList, length float64) (Shape, error) {
	h, err := s.krn.Chamfer(s.h, edges.Handles(), length)
	if err != nil {
		return Shape{}, err
	}
	return Shape{h: h, krn: s.krn, loc: s.loc}, nil
}
