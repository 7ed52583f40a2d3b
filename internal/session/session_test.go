package session

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
)

func TestErrorCountIncrementsOnSpanErr(t *testing.T) {
	s := New(DefaultTarget, Options{})
	if s.ErrorCount() != 0 {
		t.Fatalf("fresh session should have zero errors")
	}
	s.SpanErr(ast.Span{File: "a.rs", Lo: 1, Hi: 2}, errors.RSV001, "unresolved name: secret", nil)
	if s.ErrorCount() != 1 {
		t.Fatalf("SpanErr should increment error count, got %d", s.ErrorCount())
	}
	s.SpanWarn(ast.Span{File: "a.rs", Lo: 1, Hi: 2}, errors.RSV003, "unused import", nil)
	if s.ErrorCount() != 1 {
		t.Fatalf("SpanWarn should not affect error count, got %d", s.ErrorCount())
	}
}

func TestRunPassRecoversSpanFatal(t *testing.T) {
	s := New(DefaultTarget, Options{})
	ranAfter := false
	completed := RunPass(func() {
		s.SpanFatal(ast.Span{}, errors.RSV002, "cyclic import", nil)
		ranAfter = true // must never execute
	})
	if completed {
		t.Fatalf("RunPass should report the pass as not completed after SpanFatal")
	}
	if ranAfter {
		t.Fatalf("SpanFatal must long-jump out of the pass immediately")
	}
	if s.ErrorCount() != 1 {
		t.Fatalf("SpanFatal should still record the error")
	}
}

func TestRunPassRepropagatesForeignPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("RunPass must not swallow panics that are not its own fatal signal")
		}
	}()
	RunPass(func() {
		panic("not a session fatal")
	})
}

func TestBugAlwaysFatal(t *testing.T) {
	s := New(DefaultTarget, Options{})
	completed := RunPass(func() {
		s.Bug("invariant violated: def-map incomplete")
	})
	if completed {
		t.Fatalf("Bug should always abort the pass")
	}
	reports := s.Reports()
	if len(reports) != 1 || reports[0].Code != errors.BUG001 {
		t.Fatalf("Bug should record a BUG001 report, got %+v", reports)
	}
}
