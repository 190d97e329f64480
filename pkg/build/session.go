// Package build implements the scoped builder mode: a session-owned
// stack of construction scopes (line, sketch, part) whose working
// shapes implicitly accumulate the primitives created while they are
// active, under a selectable combination mode and the active location
// stack. Sessions are explicit objects, never process globals, so
// independent builds can run in one process without contaminating each
// other.
package build

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/algebra"
	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/kernel"
	"github.com/chisel3d/chisel/pkg/topo"
)

// Mode is the combination policy of a scope: how a newly recorded
// primitive merges into the scope's working shape.
type Mode int

const (
	// ModeAdd unions the primitive into the working shape.
	ModeAdd Mode = iota
	// ModeSubtract removes the primitive from the working shape.
	ModeSubtract
	// ModeIntersect keeps only the overlap with the working shape.
	ModeIntersect
	// ModeReplace discards the working shape in favor of the primitive.
	ModeReplace
	// ModePrivate places the primitive and returns it without touching
	// the working shape; used for construction geometry.
	ModePrivate
)

var modeNames = [...]string{"add", "subtract", "intersect", "replace", "private"}

func (m Mode) String() string {
	if m < ModeAdd || m > ModePrivate {
		return "unknown"
	}
	return modeNames[m]
}

// ScopeKind is the dimensional kind of a scope.
type ScopeKind int

const (
	// LineScope builds 1D wireframe geometry.
	LineScope ScopeKind = iota
	// SketchScope builds 2D planar geometry.
	SketchScope
	// PartScope builds 3D solids.
	PartScope
)

var scopeNames = [...]string{"line", "sketch", "part"}

func (k ScopeKind) String() string {
	if k < LineScope || k > PartScope {
		return "unknown"
	}
	return scopeNames[k]
}

// Dim returns the dimensionality of geometry the scope builds.
func (k ScopeKind) Dim() int { return int(k) + 1 }

// InvalidNestingError reports a scope kind that cannot nest inside the
// currently active scope.
type InvalidNestingError struct {
	Outer, Inner ScopeKind
}

func (e *InvalidNestingError) Error() string {
	return fmt.Sprintf("a %s scope cannot nest inside a %s scope", e.Inner, e.Outer)
}

// ErrNoActiveScope is returned when a primitive is recorded or a scope
// exited with no scope open.
var ErrNoActiveScope = errors.New("no active scope")

// ErrSessionClosed is returned by any operation on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// Scope is one open construction block. Its working shape starts
// empty and accumulates recorded primitives under the scope's mode.
type Scope struct {
	kind    ScopeKind
	mode    Mode
	working topo.Shape
	plane   geom.Plane
	pending topo.ShapeList // lower-dimensional results from exited child scopes
}

// Kind returns the scope's dimensional kind.
func (sc *Scope) Kind() ScopeKind { return sc.kind }

// Mode returns the scope's combination mode.
func (sc *Scope) Mode() Mode { return sc.mode }

// Working returns the scope's current working shape.
func (sc *Scope) Working() topo.Shape { return sc.working }

// Plane returns the workplane the scope is oriented on.
func (sc *Scope) Plane() geom.Plane { return sc.plane }

// Pending returns the results of exited lower-dimensional child
// scopes, waiting to be consumed by an operation such as Extrude.
func (sc *Scope) Pending() topo.ShapeList { return sc.pending }

// Session is one sequential construction run: the owner of the scope
// stack and the location stack. A session is not safe for concurrent
// use; it maps one-to-one to a single script execution.
type Session struct {
	krn    kernel.Kernel
	scopes []*Scope
	frames [][]geom.Location
	closed bool
}

// NewSession starts a construction session against a kernel with empty
// scope and location stacks.
func NewSession(k kernel.Kernel) *Session {
	return &Session{krn: k}
}

// Kernel returns the session's geometry kernel.
func (s *Session) Kernel() kernel.Kernel { return s.krn }

// Close tears the session down. Closing with scopes still open is an
// error, so leaked scopes cannot silently carry over into other work;
// the stacks are emptied either way.
func (s *Session) Close() error {
	open := len(s.scopes)
	s.scopes = nil
	s.frames = nil
	s.closed = true
	if open > 0 {
		return fmt.Errorf("session closed with %d open scope(s)", open)
	}
	return nil
}

// Active returns the innermost open scope.
func (s *Session) Active() (*Scope, bool) {
	if len(s.scopes) == 0 {
		return nil, false
	}
	return s.scopes[len(s.scopes)-1], true
}

// Depth returns the number of open scopes.
func (s *Session) Depth() int { return len(s.scopes) }

// Enter opens a scope of the given kind and mode on the XY plane.
func (s *Session) Enter(kind ScopeKind, mode Mode) (*Scope, error) {
	return s.EnterOn(kind, mode, geom.PlaneXY)
}

// EnterOn opens a scope oriented on a workplane, so a sketch can be
// drawn on an arbitrary part face. A scope may nest only inside a
// scope of equal or higher dimensionality: a sketch inside a part, a
// line inside a sketch, never a part inside a line.
func (s *Session) EnterOn(kind ScopeKind, mode Mode, plane geom.Plane) (*Scope, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if top, ok := s.Active(); ok && kind.Dim() > top.kind.Dim() {
		return nil, &InvalidNestingError{Outer: top.kind, Inner: kind}
	}
	sc := &Scope{kind: kind, mode: mode, plane: plane}
	s.scopes = append(s.scopes, sc)
	return sc, nil
}

// Exit closes the innermost scope. A same-dimensional parent absorbs
// the child's working shape under the parent's mode (a private parent
// takes nothing); a higher-dimensional parent records it as pending
// (a sketch exiting inside a part becomes a profile for a later
// sweep). The outermost scope's working shape is returned as the
// scope result in all cases.
func (s *Session) Exit() (topo.Shape, error) {
	if s.closed {
		return topo.Shape{}, ErrSessionClosed
	}
	sc, ok := s.Active()
	if !ok {
		return topo.Shape{}, ErrNoActiveScope
	}
	s.scopes = s.scopes[:len(s.scopes)-1]

	parent, ok := s.Active()
	if !ok {
		return sc.working, nil
	}
	if sc.working.IsEmpty() {
		return sc.working, nil
	}
	switch {
	case sc.kind.Dim() != parent.kind.Dim():
		parent.pending = append(parent.pending, sc.working)
	case parent.mode == ModePrivate:
		// Bypass: the child's result goes only to the caller.
	default:
		merged, err := combineMode(parent.mode, parent.working, sc.working)
		if err != nil {
			return topo.Shape{}, err
		}
		parent.working = merged
	}
	return sc.working, nil
}

// Record places a primitive under the active location stack and the
// scope's workplane, then combines it into the working shape per the
// scope's mode. In a multi-location context the primitive is
// replicated once per active frame. The placed copies are returned;
// in ModePrivate they are the only effect. A failed kernel call
// leaves the working shape at its pre-call value.
func (s *Session) Record(sh topo.Shape) (topo.ShapeList, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	sc, ok := s.Active()
	if !ok {
		return nil, ErrNoActiveScope
	}

	base := sc.plane.Location()
	var placed topo.ShapeList
	for _, f := range s.effectiveFrames() {
		placed = append(placed, algebra.Place(base.Mul(f), sh))
	}
	if sc.mode == ModePrivate {
		return placed, nil
	}

	// The replicated copies union together first and the scope mode
	// applies once, so an intersect context intersects against the
	// whole replicated set rather than each copy in turn.
	var group topo.Shape
	for _, p := range placed {
		var err error
		group, err = algebra.Union(group, p)
		if err != nil {
			return nil, err
		}
	}
	working := sc.working
	if sc.mode == ModeReplace {
		working = topo.Shape{}
	}
	merged, err := combineMode(replaceAsAdd(sc.mode), working, group)
	if err != nil {
		return nil, err
	}
	sc.working = merged
	return placed, nil
}

// replaceAsAdd maps ModeReplace to ModeAdd for the combination:
// replace discards the old working shape once, then the group of
// copies unions in.
func replaceAsAdd(m Mode) Mode {
	if m == ModeReplace {
		return ModeAdd
	}
	return m
}

// combineMode dispatches a combination mode to the algebra layer, so
// builder mode and algebra mode share one implementation.
func combineMode(m Mode, a, b topo.Shape) (topo.Shape, error) {
	switch m {
	case ModeAdd:
		return algebra.Union(a, b)
	case ModeSubtract:
		return algebra.Subtract(a, b)
	case ModeIntersect:
		return algebra.Intersect(a, b)
	case ModeReplace:
		return b, nil
	}
	return topo.Shape{}, fmt.Errorf("mode %s cannot combine", m)
}

// Extrude sweeps a pending or explicit profile along dir and records
// the resulting solid into the active part scope. With a nil profile
// the scope's pending profiles are consumed, the usual way a sketch
// exiting inside a part becomes a solid.
func (s *Session) Extrude(profile *topo.Shape, dir v3.Vec) (topo.ShapeList, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	sc, ok := s.Active()
	if !ok {
		return nil, ErrNoActiveScope
	}
	var profiles topo.ShapeList
	if profile != nil {
		profiles = topo.ShapeList{*profile}
	} else {
		profiles = sc.pending
		sc.pending = nil
	}
	if len(profiles) == 0 {
		return nil, &topo.EmptySelectionError{What: "no profile to extrude"}
	}

	var recorded topo.ShapeList
	for _, p := range profiles {
		solid, err := p.Extruded(dir)
		if err != nil {
			return nil, err
		}
		placed, err := s.Record(solid)
		if err != nil {
			return nil, err
		}
		recorded = append(recorded, placed...)
	}
	return recorded, nil
}

// Fillet rounds edges of the active scope's working shape and
// replaces the working shape with the result. The edges must have
// been selected from the working shape. A kernel failure leaves the
// working shape unchanged.
func (s *Session) Fillet(edges topo.ShapeList, radius float64) (topo.Shape, error) {
	return s.applyFeature(func(w topo.Shape) (topo.Shape, error) {
		return w.Filleted(edges, radius)
	})
}

// Chamfer bevels edges of the active scope's working shape, with the
// same contract as Fillet.
func (s *Session) Chamfer(edges topo.ShapeList, length float64) (topo.Shape, error) {
	return s.applyFeature(func(w topo.Shape) (topo.Shape, error) {
		return w.Chamfered(edges, length)
	})
}

func (s *Session) applyFeature(f func(topo.Shape) (topo.Shape, error)) (topo.Shape, error) {
	if s.closed {
		return topo.Shape{}, ErrSessionClosed
	}
	sc, ok := s.Active()
	if !ok {
		return topo.Shape{}, ErrNoActiveScope
	}
	if sc.working.IsEmpty() {
		return topo.Shape{}, &topo.EmptySelectionError{What: "working shape is empty"}
	}
	out, err := f(sc.working)
	if err != nil {
		return topo.Shape{}, err
	}
	sc.working = out
	return out, nil
}

// PlaneOf derives the workplane of a planar face, for sketching on a
// part face.
func PlaneOf(face topo.Shape) (geom.Plane, error) {
	n, ok := face.Normal()
	if !ok {
		return geom.Plane{}, fmt.Errorf("shape %s has no planar normal", face.Kind())
	}
	return geom.PlaneFromNormal(face.Center(), n), nil
}
