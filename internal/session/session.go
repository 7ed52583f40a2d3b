// Package session implements the session-wide diagnostic plumbing spec §6
// describes as the external interface every component consumes:
// span_err/span_warn/span_fatal/bug, target configuration, and option
// flags. It also implements the single-threaded error-count discipline of
// spec §5: every pass checks the count at its end and refuses to run
// subsequent passes if it rose.
//
// Grounded on the teacher's top-level recover-and-report boundary
// (cmd/ailang/main.go catching a single panic at the outermost call) and its
// internal/errors Report/ReportError pair, generalized from "one panic
// recovered at main" into "one recover point per compiled crate" so a
// span_fatal in one crate doesn't tear down a multi-crate driver.
package session

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
)

// Target carries the backend-specific configuration spec §6 lists:
// pointer width, int/uint widths, and a data-layout string. The core never
// interprets the layout string itself — it is opaque, passed through to the
// backend.
type Target struct {
	PointerWidth int // bits
	IntWidth     int // bits, for the `int` primitive
	UintWidth    int // bits, for the `uint` primitive
	DataLayout   string
}

// DefaultTarget is a 64-bit target, the common case for this module's tests
// and CLI default.
var DefaultTarget = Target{PointerWidth: 64, IntWidth: 64, UintWidth: 64, DataLayout: "e-m:e-p:64:64-i64:64-n32:64-S128"}

// Options holds the option flags spec §6 names.
type Options struct {
	WarnUnusedImports bool
	SaveTemps         bool
	DebugInfo         bool
	Stats             bool
	Library           bool
}

// fatalSignal is the payload of the typed panic used to implement
// span_fatal's "long-jump out of the current pass" (spec §5).
type fatalSignal struct {
	report *errors.Report
}

// Session is the session-wide diagnostic sink and error counter shared by
// every pass of a single crate compilation. Not safe for concurrent passes
// (spec §5: the core is single-threaded).
type Session struct {
	Target  Target
	Options Options

	reports    []*errors.Report
	errorCount int
	NoColor    bool
}

// New creates a session with the given target and options.
func New(target Target, opts Options) *Session {
	return &Session{Target: target, Options: opts}
}

// SpanErr records a recoverable error at span and increments the error
// count. Compilation continues; later passes must consult ErrorCount.
func (s *Session) SpanErr(span ast.Span, code, msg string, data map[string]any) {
	r := errors.NewReport(code, &span, msg, data)
	s.reports = append(s.reports, r)
	s.errorCount++
}

// SpanWarn records a non-fatal warning; does not affect the error count.
func (s *Session) SpanWarn(span ast.Span, code, msg string, data map[string]any) {
	r := errors.NewReport(code, &span, msg, data)
	r.Schema = "rustsem.core.warning/v1"
	s.reports = append(s.reports, r)
}

// SpanFatal records an error and aborts the current pass by panicking with
// a typed signal, which RunPass recovers. The crate driver (internal/crate)
// does not call RunPass, so a SpanFatal raised under crate.Compile or
// crate.TypeCheck panics out to their caller.
func (s *Session) SpanFatal(span ast.Span, code, msg string, data map[string]any) {
	r := errors.NewReport(code, &span, msg, data)
	s.reports = append(s.reports, r)
	s.errorCount++
	panic(fatalSignal{report: r})
}

// Bug records an internal-invariant failure and always aborts, regardless
// of span (spec §7 "internal error (bug): an invariant failed; fatal").
func (s *Session) Bug(msg string) {
	r := errors.NewReport(errors.BUG001, nil, msg, nil)
	s.reports = append(s.reports, r)
	s.errorCount++
	panic(fatalSignal{report: r})
}

// ErrorCount returns the number of errors (not warnings) recorded so far.
func (s *Session) ErrorCount() int { return s.errorCount }

// Reports returns every diagnostic recorded this session, in emission order.
func (s *Session) Reports() []*errors.Report { return s.reports }

// RunPass recovers a SpanFatal/Bug panic raised during fn, converting it
// into a normal return so the crate driver can check ErrorCount() instead
// of unwinding the whole process. Returns true if the pass completed
// without a fatal signal.
func RunPass(fn func()) (completed bool) {
	completed = true
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(fatalSignal); ok {
				completed = false
				return
			}
			panic(r) // not ours: a genuine Go panic, propagate
		}
	}()
	fn()
	return
}

// PrintReports writes every recorded diagnostic to stderr, colorized unless
// NoColor or the output isn't a terminal (grounded on the teacher's use of
// github.com/fatih/color for CLI diagnostic rendering).
func (s *Session) PrintReports() {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	if s.NoColor {
		color.NoColor = true
	}
	for _, r := range s.reports {
		loc := ""
		if r.Span != nil {
			loc = fmt.Sprintf("%s:%d-%d: ", r.Span.File, r.Span.Lo, r.Span.Hi)
		}
		if r.Schema == "rustsem.core.warning/v1" {
			warnColor.Fprintf(os.Stderr, "warning[%s]: %s%s\n", r.Code, loc, r.Message)
		} else {
			errColor.Fprintf(os.Stderr, "error[%s]: %s%s\n", r.Code, loc, r.Message)
		}
	}
}
