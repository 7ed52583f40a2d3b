// Command corecheck is the narrow "typecheck only" CLI mirroring the
// teacher's cmd/typecheck: it runs name resolution, type checking, and
// final trait-obligation solving over a crate, and stops there — useful
// for golden-file regression tests and editor tooling that only need
// diagnostics, never a lowered backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/crate"
	"github.com/rustsem/corec/internal/session"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		broken  bool
		noColor bool
	)

	root := &cobra.Command{
		Use:     "corecheck",
		Short:   "Type-check the sample crate and print any diagnostics",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(broken, noColor)
		},
	}
	root.Flags().BoolVar(&broken, "broken", false, "check the sample crate's broken variant (a bare return in a non-unit function)")
	root.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	return root
}

func runCheck(broken, noColor bool) error {
	sess := session.New(session.DefaultTarget, session.Options{})
	sess.NoColor = noColor

	crateAST := checkSampleCrate(broken)
	result, err := crate.TypeCheck(sess, crateAST)
	if err != nil {
		sess.PrintReports()
		return err
	}

	fmt.Printf("ok: %d export(s), %d vtable resolution(s)\n", len(result.ExportMap), len(result.VtableResolutions))
	return nil
}

// checkSampleCrate builds a one-function crate (`fn sum`, plus `fn broken`
// when broken is true), a cut-down copy of the crate cmd/corec's build
// command compiles that shares its `sum` and `broken` functions, so
// `corecheck --broken` and `corec build --broken` reproduce the identical
// spec §8 scenario 5 diagnostic. Kept as its own small builder (rather than importing
// cmd/corec, an unrelated main package) the way the teacher keeps
// cmd/ailang and cmd/typecheck as independent demo-AST builders.
func checkSampleCrate(broken bool) *ast.Crate {
	var next ast.NodeID
	id := func() ast.NodeID {
		next++
		return next
	}

	namedType := func(name string) *ast.NamedType {
		nt := &ast.NamedType{Path: &ast.Path{Segments: []string{name}}}
		nt.NodeID = id()
		return nt
	}
	i64 := func() *ast.NamedType { return namedType("i64") }

	aParam := &ast.Param{Name: "a", Type: i64()}
	aParam.NodeID = id()
	bParam := &ast.Param{Name: "b", Type: i64()}
	bParam.NodeID = id()

	aRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"a"}}}
	aRef.NodeID = aParam.NodeID
	bRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"b"}}}
	bRef.NodeID = bParam.NodeID

	sumExpr := &ast.BinaryExpr{Op: "+", Left: aRef, Right: bRef}
	sumExpr.NodeID = id()

	sumBody := &ast.Block{Tail: sumExpr}
	sumBody.NodeID = id()

	sumFn := &ast.FnItem{
		Params:  []*ast.Param{aParam, bParam},
		RetType: i64(),
		Body:    sumBody,
	}
	sumFn.NodeID = id()
	sumFn.Name = "sum"
	sumFn.Exported = true

	items := []ast.Item{sumFn}

	if broken {
		ret := &ast.ReturnExpr{}
		ret.NodeID = id()
		brokenBody := &ast.Block{Tail: ret}
		brokenBody.NodeID = id()

		brokenFn := &ast.FnItem{
			RetType: i64(),
			Body:    brokenBody,
		}
		brokenFn.NodeID = id()
		brokenFn.Name = "broken"
		brokenFn.Exported = true
		items = append(items, brokenFn)
	}

	root := &ast.Mod{Name: "crate", Items: items}
	root.NodeID = id()

	c := &ast.Crate{Name: "sample", Root: root}
	c.NodeID = id()
	return c
}
