package kernel

import (
	"errors"
	"strings"
	"testing"
)

// --- Kind tests ---

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindVertex, "vertex"},
		{KindEdge, "edge"},
		{KindWire, "wire"},
		{KindFace, "face"},
		{KindShell, "shell"},
		{KindSolid, "solid"},
		{KindCompound, "compound"},
		{Kind(99), "unknown"},
		{Kind(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindDim(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindVertex, 0},
		{KindEdge, 1},
		{KindWire, 1},
		{KindFace, 2},
		{KindShell, 2},
		{KindSolid, 3},
		{KindCompound, -1},
	}
	for _, tt := range tests {
		if got := tt.kind.Dim(); got != tt.want {
			t.Errorf("%s.Dim() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestBoolOpString(t *testing.T) {
	tests := []struct {
		op   BoolOp
		want string
	}{
		{OpUnion, "union"},
		{OpSubtract, "subtract"},
		{OpIntersect, "intersect"},
		{BoolOp(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("BoolOp(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

// --- OpError tests ---

func TestOpErrorMessage(t *testing.T) {
	e := Errorf("box", nil, "non-positive dimensions %gx%gx%g", -1.0, 2.0, 3.0)
	msg := e.Error()
	if !strings.Contains(msg, "kernel box") {
		t.Errorf("message should name the operation, got: %q", msg)
	}
	if !strings.Contains(msg, "non-positive dimensions") {
		t.Errorf("message should carry the cause, got: %q", msg)
	}
}

func TestOpErrorDescribesNilInput(t *testing.T) {
	e := Wrap("union", ErrEmptyResult, nil, nil)
	msg := e.Error()
	if !strings.Contains(msg, "<nil>") {
		t.Errorf("nil inputs should be described, got: %q", msg)
	}
}

func TestOpErrorUnwrapsSentinels(t *testing.T) {
	e := Wrap("intersect", ErrEmptyResult)
	if !errors.Is(e, ErrEmptyResult) {
		t.Error("expected errors.Is to find ErrEmptyResult")
	}

	var opErr *OpError
	if !errors.As(error(e), &opErr) {
		t.Fatal("expected errors.As to find *OpError")
	}
	if opErr.Op != "intersect" {
		t.Errorf("op = %q, want intersect", opErr.Op)
	}

	u := Wrap("fillet", ErrUnsupported)
	if !errors.Is(u, ErrUnsupported) {
		t.Error("expected errors.Is to find ErrUnsupported")
	}
	if errors.Is(u, ErrEmptyResult) {
		t.Error("unrelated sentinel should not match")
	}
}
