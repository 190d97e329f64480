package engine

import (
	"fmt"

	"github.com/glycerine/zygomys/zygo"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chisel3d/chisel/pkg/algebra"
	"github.com/chisel3d/chisel/pkg/build"
	"github.com/chisel3d/chisel/pkg/geom"
	"github.com/chisel3d/chisel/pkg/topo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the interpreter
// ---------------------------------------------------------------------------

// sexpShape wraps a topo.Shape.
type sexpShape struct {
	s topo.Shape
}

func (x *sexpShape) SexpString(ps *zygo.PrintState) string { return x.s.String() }
func (x *sexpShape) Type() *zygo.RegisteredType           { return nil }

// sexpShapeList wraps a selector result.
type sexpShapeList struct {
	l topo.ShapeList
}

func (x *sexpShapeList) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shapes n=%d)", len(x.l))
}
func (x *sexpShapeList) Type() *zygo.RegisteredType { return nil }

// sexpLoc wraps a geom.Location.
type sexpLoc struct {
	l geom.Location
}

func (x *sexpLoc) SexpString(ps *zygo.PrintState) string { return x.l.String() }
func (x *sexpLoc) Type() *zygo.RegisteredType           { return nil }

// sexpVec wraps a point.
type sexpVec struct {
	v v3.Vec
}

func (x *sexpVec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g %g)", x.v.X, x.v.Y, x.v.Z)
}
func (x *sexpVec) Type() *zygo.RegisteredType { return nil }

func toShape(s zygo.Sexp) (topo.Shape, error) {
	if x, ok := s.(*sexpShape); ok {
		return x.s, nil
	}
	return topo.Shape{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toShapeList(s zygo.Sexp) (topo.ShapeList, error) {
	switch x := s.(type) {
	case *sexpShapeList:
		return x.l, nil
	case *sexpShape:
		return topo.ShapeList{x.s}, nil
	}
	return nil, fmt.Errorf("expected shape list, got %T (%s)", s, s.SexpString(nil))
}

func toLoc(s zygo.Sexp) (geom.Location, error) {
	if x, ok := s.(*sexpLoc); ok {
		return x.l, nil
	}
	return geom.Location{}, fmt.Errorf("expected location, got %T (%s)", s, s.SexpString(nil))
}

func toAxis(s zygo.Sexp) (geom.Axis, error) {
	name, err := toKeyword(s)
	if err != nil {
		return geom.Axis{}, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return geom.AxisX, nil
	case "y":
		return geom.AxisY, nil
	case "z":
		return geom.AxisZ, nil
	}
	return geom.Axis{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

func toMode(s zygo.Sexp) (build.Mode, error) {
	name, err := toKeyword(s)
	if err != nil {
		return 0, fmt.Errorf("expected mode keyword: %w", err)
	}
	switch name {
	case "add":
		return build.ModeAdd, nil
	case "subtract":
		return build.ModeSubtract, nil
	case "intersect":
		return build.ModeIntersect, nil
	case "replace":
		return build.ModeReplace, nil
	case "private":
		return build.ModePrivate, nil
	}
	return 0, fmt.Errorf("invalid mode %q", name)
}

// evalState is the per-evaluation mutable state the builtins share.
type evalState struct {
	sess   *build.Session
	design *Design
	pops   []func()
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the modeling DSL into a zygomys
// environment. The builtins drive one build.Session; primitives
// created while a scope is open are recorded into it, primitives
// created outside any scope are returned as plain values for the
// algebra builtins to combine.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// -----------------------------------------------------------------------
	// Scopes: (begin-part :mode :subtract) ... (end-scope "name")
	// -----------------------------------------------------------------------
	beginScope := func(kind build.ScopeKind) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			mode := build.ModeAdd
			if v, ok := pa.kw["mode"]; ok {
				m, err := toMode(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				mode = m
			}
			plane := geom.PlaneXY
			if v, ok := pa.kw["on"]; ok {
				face, err := toShape(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: on: %w", name, err)
				}
				p, err := build.PlaneOf(face)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				plane = p
			}
			if _, err := st.sess.EnterOn(kind, mode, plane); err != nil {
				return zygo.SexpNull, err
			}
			return zygo.SexpNull, nil
		}
	}
	env.AddFunction("begin_part", beginScope(build.PartScope))
	env.AddFunction("begin_sketch", beginScope(build.SketchScope))
	env.AddFunction("begin_line", beginScope(build.LineScope))

	env.AddFunction("end_scope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		result, err := st.sess.Exit()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) > 0 {
			bind, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("end-scope: %w", err)
			}
			st.design.emit(bind, result)
		}
		return &sexpShape{s: result}, nil
	})

	// -----------------------------------------------------------------------
	// Primitives. Inside a scope they are recorded and the placed
	// copies returned; outside they are plain algebra values.
	// -----------------------------------------------------------------------
	record := func(name string, s topo.Shape) (zygo.Sexp, error) {
		if _, open := st.sess.Active(); !open {
			return &sexpShape{s: s}, nil
		}
		placed, err := st.sess.Record(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if len(placed) == 1 {
			return &sexpShape{s: placed[0]}, nil
		}
		return &sexpShapeList{l: placed}, nil
	}

	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		h, err := st.sess.Kernel().Box(d[0], d[1], d[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("box", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		h, err := st.sess.Kernel().Cylinder(d[0], d[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("cylinder", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		h, err := st.sess.Kernel().Sphere(d[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("sphere", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		h, err := st.sess.Kernel().Rect(d[0], d[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("rect", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		h, err := st.sess.Kernel().Circle(d[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("circle", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 6)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		h, err := st.sess.Kernel().Line(
			v3.Vec{X: d[0], Y: d[1], Z: d[2]},
			v3.Vec{X: d[3], Y: d[4], Z: d[5]},
		)
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("line", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: %w", err)
		}
		return &sexpVec{v: v3.Vec{X: d[0], Y: d[1], Z: d[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// Locations and placement contexts
	// -----------------------------------------------------------------------
	env.AddFunction("loc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loc: %w", err)
		}
		return &sexpLoc{l: geom.At(d[0], d[1], d[2])}, nil
	})

	env.AddFunction("rot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: %w", err)
		}
		return &sexpLoc{l: geom.Rotation(d[0], d[1], d[2])}, nil
	})

	env.AddFunction("loc_mul", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("loc-mul: need at least 2 locations")
		}
		acc, err := toLoc(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loc-mul: %w", err)
		}
		for _, a := range args[1:] {
			l, err := toLoc(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("loc-mul: %w", err)
			}
			acc = acc.Mul(l)
		}
		return &sexpLoc{l: acc}, nil
	})

	env.AddFunction("loc_inverse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("loc-inverse: need 1 location")
		}
		l, err := toLoc(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loc-inverse: %w", err)
		}
		return &sexpLoc{l: l.Inverse()}, nil
	})

	pushFrames := func(ls []geom.Location) {
		st.pops = append(st.pops, st.sess.PushLocations(ls...))
	}

	env.AddFunction("push_locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ls := make([]geom.Location, 0, len(args))
		for _, a := range args {
			l, err := toLoc(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("push-locations: %w", err)
			}
			ls = append(ls, l)
		}
		pushFrames(ls)
		return zygo.SexpNull, nil
	})

	env.AddFunction("push_grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := floats(args, 0, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-grid: %w", err)
		}
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("push-grid: want (push-grid xs ys nx ny)")
		}
		nx, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-grid: %w", err)
		}
		ny, err := toInt(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-grid: %w", err)
		}
		pushFrames(build.GridLocations(d[0], d[1], nx, ny))
		return zygo.SexpNull, nil
	})

	env.AddFunction("push_polar", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("push-polar: want (push-polar radius count)")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-polar: %w", err)
		}
		n, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-polar: %w", err)
		}
		pushFrames(build.PolarLocations(r, n))
		return zygo.SexpNull, nil
	})

	env.AddFunction("push_hex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("push-hex: want (push-hex apothem nx ny)")
		}
		a, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-hex: %w", err)
		}
		nx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-hex: %w", err)
		}
		ny, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push-hex: %w", err)
		}
		pushFrames(build.HexLocations(a, nx, ny))
		return zygo.SexpNull, nil
	})

	env.AddFunction("pop_locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(st.pops) == 0 {
			return zygo.SexpNull, fmt.Errorf("pop-locations: no placement context open")
		}
		st.pops[len(st.pops)-1]()
		st.pops = st.pops[:len(st.pops)-1]
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Algebra: explicit combination and placement
	// -----------------------------------------------------------------------
	combine := func(name string, f func(a, b topo.Shape) (topo.Shape, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s: need at least 2 shapes", name)
			}
			acc, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			for _, a := range args[1:] {
				s, err := toShape(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				acc, err = f(acc, s)
				if err != nil {
					return zygo.SexpNull, err
				}
			}
			return &sexpShape{s: acc}, nil
		}
	}
	env.AddFunction("union", combine("union", algebra.Union))
	env.AddFunction("cut", combine("cut", algebra.Subtract))
	env.AddFunction("intersect", combine("intersect", algebra.Intersect))

	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("place: want (place loc shape)")
		}
		l, err := toLoc(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		s, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		return &sexpShape{s: algebra.Place(l, s)}, nil
	})

	// -----------------------------------------------------------------------
	// Selectors
	// -----------------------------------------------------------------------
	selector := func(name string, sel func(topo.Shape) topo.ShapeList) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: want 1 shape", name)
			}
			s, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpShapeList{l: sel(s)}, nil
		}
	}
	env.AddFunction("vertices", selector("vertices", topo.Shape.Vertices))
	env.AddFunction("edges", selector("edges", topo.Shape.Edges))
	env.AddFunction("wires", selector("wires", topo.Shape.Wires))
	env.AddFunction("faces", selector("faces", topo.Shape.Faces))
	env.AddFunction("shells", selector("shells", topo.Shape.Shells))
	env.AddFunction("solids", selector("solids", topo.Shape.Solids))

	env.AddFunction("sort_by", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("sort-by: want (sort-by shapes criterion)")
		}
		l, err := toShapeList(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sort-by: %w", err)
		}
		kw, err := toKeyword(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sort-by: %w", err)
		}
		var c topo.Criterion
		switch kw {
		case "x":
			c = topo.Along(geom.AxisX)
		case "y":
			c = topo.Along(geom.AxisY)
		case "z":
			c = topo.Along(geom.AxisZ)
		case "mass", "area", "volume", "length":
			c = topo.ByMass()
		default:
			return zygo.SexpNull, fmt.Errorf("sort-by: unknown criterion %q", kw)
		}
		return &sexpShapeList{l: l.SortBy(c)}, nil
	})

	env.AddFunction("filter_by", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("filter-by: want (filter-by shapes predicate ...)")
		}
		l, err := toShapeList(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("filter-by: %w", err)
		}
		kw, err := toKeyword(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("filter-by: %w", err)
		}
		var p topo.Predicate
		switch kw {
		case "parallel", "normal":
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("filter-by: :%s needs an axis", kw)
			}
			axis, err := toAxis(args[2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("filter-by: %w", err)
			}
			if kw == "parallel" {
				p = topo.ParallelTo(axis)
			} else {
				p = topo.NormalTo(axis)
			}
		case "interior":
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("filter-by: :interior needs the owning shape")
			}
			owner, err := toShape(args[2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("filter-by: %w", err)
			}
			p = topo.Interior(owner)
		default:
			return zygo.SexpNull, fmt.Errorf("filter-by: unknown predicate %q", kw)
		}
		return &sexpShapeList{l: l.FilterBy(p)}, nil
	})

	pick := func(name string, idx func(topo.ShapeList) (topo.Shape, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: want 1 shape list", name)
			}
			l, err := toShapeList(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			s, err := idx(l)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpShape{s: s}, nil
		}
	}
	// first/nth/count are zygomys core names; the shape versions get
	// their own.
	env.AddFunction("first_of", pick("first-of", topo.ShapeList.First))
	env.AddFunction("last_of", pick("last-of", topo.ShapeList.Last))

	env.AddFunction("nth_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("nth-of: want (nth-of shapes index)")
		}
		l, err := toShapeList(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("nth-of: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("nth-of: %w", err)
		}
		s, err := l.At(i)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: s}, nil
	})

	env.AddFunction("count_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("count-of: want 1 shape list")
		}
		l, err := toShapeList(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("count-of: %w", err)
		}
		return &zygo.SexpInt{Val: int64(len(l))}, nil
	})

	// -----------------------------------------------------------------------
	// Features
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dir := v3.Vec{}
		if v, ok := pa.kw["dz"]; ok {
			h, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: dz: %w", err)
			}
			dir = v3.Vec{Z: h}
		}
		if v, ok := pa.kw["dir"]; ok {
			d, err := toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: dir: %w", err)
			}
			dir = d
		}

		if _, open := st.sess.Active(); open {
			var profile *topo.Shape
			if len(pa.positional) == 1 {
				s, err := toShape(pa.positional[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
				}
				profile = &s
			}
			placed, err := st.sess.Extrude(profile, dir)
			if err != nil {
				return zygo.SexpNull, err
			}
			if len(placed) == 1 {
				return &sexpShape{s: placed[0]}, nil
			}
			return &sexpShapeList{l: placed}, nil
		}

		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude: outside a scope a profile is required")
		}
		profile, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		solid, err := profile.Extruded(dir)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{s: solid}, nil
	})

	env.AddFunction("revolve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("revolve: want a profile")
		}
		profile, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: %w", err)
		}
		angle := 360.0
		if v, ok := pa.kw["angle"]; ok {
			angle, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: angle: %w", err)
			}
		}
		solid, err := profile.Revolved(geom.AxisZ, angle)
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("revolve", solid)
	})

	env.AddFunction("hull", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts := make([]v3.Vec, 0, len(args))
		for _, a := range args {
			p, err := toVec(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hull: %w", err)
			}
			pts = append(pts, p)
		}
		h, err := st.sess.Kernel().ConvexHull(pts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("hull", topo.New(st.sess.Kernel(), h))
	})

	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("sweep: want (sweep profile path)")
		}
		profile, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
		}
		path, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
		}
		solid, err := profile.Swept(path)
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("sweep", solid)
	})

	env.AddFunction("loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("loft: want at least 2 profiles")
		}
		first, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: %w", err)
		}
		rest := make([]topo.Shape, 0, len(args)-1)
		for _, a := range args[1:] {
			s, err := toShape(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("loft: %w", err)
			}
			rest = append(rest, s)
		}
		solid, err := first.Lofted(rest...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return record("loft", solid)
	})

	feature := func(name string, inScope func(topo.ShapeList, float64) (topo.Shape, error),
		direct func(topo.Shape, topo.ShapeList, float64) (topo.Shape, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			// (fillet edges r) applies to the active scope's working
			// shape; (fillet shape edges r) is the algebra form.
			switch len(args) {
			case 2:
				edges, err := toShapeList(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				r, err := toFloat64(args[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				out, err := inScope(edges, r)
				if err != nil {
					return zygo.SexpNull, err
				}
				return &sexpShape{s: out}, nil
			case 3:
				s, err := toShape(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				edges, err := toShapeList(args[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				r, err := toFloat64(args[2])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
				out, err := direct(s, edges, r)
				if err != nil {
					return zygo.SexpNull, err
				}
				return &sexpShape{s: out}, nil
			}
			return zygo.SexpNull, fmt.Errorf("%s: want (edges r) or (shape edges r)", name)
		}
	}
	env.AddFunction("fillet", feature("fillet", st.sess.Fillet, topo.Shape.Filleted))
	env.AddFunction("chamfer", feature("chamfer", st.sess.Chamfer, topo.Shape.Chamfered))

	// -----------------------------------------------------------------------
	// Output and inspection
	// -----------------------------------------------------------------------
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("emit: want (emit \"name\" shape)")
		}
		bind, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: %w", err)
		}
		s, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: %w", err)
		}
		st.design.emit(bind, s)
		return args[1], nil
	})

	measure := func(name string, f func(topo.Shape) float64) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: want 1 shape", name)
			}
			s, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &zygo.SexpFloat{Val: f(s)}, nil
		}
	}
	env.AddFunction("volume", measure("volume", topo.Shape.Volume))
	env.AddFunction("area", measure("area", topo.Shape.Area))
	env.AddFunction("length", measure("length", topo.Shape.Length))
}
