// Package engine provides the Lisp scripting surface over the builder
// and algebra layers. It wraps zygomys in a sandboxed environment:
// each evaluation runs a fresh interpreter against a fresh build
// session, so scripts are deterministic and sessions never leak state
// into one another.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/glycerine/zygomys/zygo"

	"github.com/chisel3d/chisel/pkg/build"
	"github.com/chisel3d/chisel/pkg/kernel"
	"github.com/chisel3d/chisel/pkg/topo"
)

// EvalError represents a non-fatal error encountered during
// evaluation, such as a parse error or a failed geometric operation in
// user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Design is the output of an evaluation: the shapes a script emitted,
// by name and in emission order.
type Design struct {
	shapes map[string]topo.Shape
	order  []string
}

func newDesign() *Design {
	return &Design{shapes: map[string]topo.Shape{}}
}

// emit binds a shape to a name, replacing an earlier binding.
func (d *Design) emit(name string, s topo.Shape) {
	if _, exists := d.shapes[name]; !exists {
		d.order = append(d.order, name)
	}
	d.shapes[name] = s
}

// Lookup returns the shape bound to name.
func (d *Design) Lookup(name string) (topo.Shape, bool) {
	s, ok := d.shapes[name]
	return s, ok
}

// Names returns the bound names in emission order.
func (d *Design) Names() []string {
	return append([]string(nil), d.order...)
}

// Count returns the number of bound shapes.
func (d *Design) Count() int { return len(d.shapes) }

// Engine evaluates scripts against a geometry kernel. It is safe for
// concurrent use; each call to Evaluate creates a fresh sandbox and a
// fresh build session.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	krn        kernel.Kernel
}

// NewEngine creates an Engine over the given kernel.
func NewEngine(k kernel.Kernel) *Engine {
	return &Engine{krn: k}
}

// Evaluate runs a script and produces a Design.
//
// Return semantics:
//   - On success: design + nil errors + nil error
//   - On parse/eval failure: nil design + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Design, []EvalError, error) {
	// Empty source is a valid script that produces an empty design.
	if strings.TrimSpace(source) == "" {
		return newDesign(), nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	st := &evalState{
		sess:   build.NewSession(e.krn),
		design: newDesign(),
	}
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygoError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygoError(err), nil
	}
	if err := st.sess.Close(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return st.design, nil, nil
}

// linePattern matches zygomys errors of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches the simpler "line N: ..." form.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygoError converts a zygomys error into EvalError values,
// extracting line information when the message carries it.
func parseZygoError(err error) []EvalError {
	msg := err.Error()
	for _, pat := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := pat.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
