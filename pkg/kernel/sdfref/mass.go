package sdfref

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// meshCells controls marching cubes resolution for sampled volumes.
// Boolean results have no closed-form measure, so they are meshed and
// integrated; primitives never take this path.
const meshCells = 96

// emptyProbe is the per-axis sample count for emptiness checks.
const emptyProbe = 24

// solidVolume integrates the volume of an SDF by meshing it and
// summing signed tetrahedron volumes (divergence theorem).
func solidVolume(s sdf.SDF3) float64 {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(meshCells))
	var vol float64
	for _, t := range triangles {
		vol += t[0].Dot(t[1].Cross(t[2]))
	}
	return vol / 6
}

// solidCentroid estimates the centroid of an SDF by grid sampling.
func solidCentroid(s sdf.SDF3) v3.Vec {
	bb := s.BoundingBox()
	var sum v3.Vec
	var n int
	step := bb.Max.Sub(bb.Min).MulScalar(1 / float64(emptyProbe))
	for i := 0; i < emptyProbe; i++ {
		for j := 0; j < emptyProbe; j++ {
			for l := 0; l < emptyProbe; l++ {
				p := bb.Min.Add(v3.Vec{
					X: (float64(i) + 0.5) * step.X,
					Y: (float64(j) + 0.5) * step.Y,
					Z: (float64(l) + 0.5) * step.Z,
				})
				if s.Evaluate(p) < 0 {
					sum = sum.Add(p)
					n++
				}
			}
		}
	}
	if n == 0 {
		return bb.Min.Add(bb.Max).MulScalar(0.5)
	}
	return sum.MulScalar(1 / float64(n))
}

// empty3 reports whether an SDF contains no interior points, probed on
// a regular grid over its bounding box. Features thinner than the grid
// spacing can be missed; the probe density is chosen for the scale of
// shapes the reference backend is used with.
func empty3(s sdf.SDF3) bool {
	bb := s.BoundingBox()
	step := bb.Max.Sub(bb.Min).MulScalar(1 / float64(emptyProbe))
	for i := 0; i < emptyProbe; i++ {
		for j := 0; j < emptyProbe; j++ {
			for l := 0; l < emptyProbe; l++ {
				p := bb.Min.Add(v3.Vec{
					X: (float64(i) + 0.5) * step.X,
					Y: (float64(j) + 0.5) * step.Y,
					Z: (float64(l) + 0.5) * step.Z,
				})
				if s.Evaluate(p) < 0 {
					return false
				}
			}
		}
	}
	return true
}

// areaSamples is the per-axis sample count for 2D area estimation.
const areaSamples = 256

// faceArea estimates the area of a 2D SDF by grid sampling its
// bounding box.
func faceArea(s sdf.SDF2) (area float64, centroid v2.Vec) {
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	cell := size.X / areaSamples * size.Y / areaSamples
	var n int
	var sum v2.Vec
	for i := 0; i < areaSamples; i++ {
		for j := 0; j < areaSamples; j++ {
			p := v2.Vec{
				X: bb.Min.X + (float64(i)+0.5)*size.X/areaSamples,
				Y: bb.Min.Y + (float64(j)+0.5)*size.Y/areaSamples,
			}
			if s.Evaluate(p) < 0 {
				n++
				sum = sum.Add(p)
			}
		}
	}
	if n == 0 {
		return 0, bb.Min.Add(bb.Max).MulScalar(0.5)
	}
	return float64(n) * cell, sum.MulScalar(1 / float64(n))
}
