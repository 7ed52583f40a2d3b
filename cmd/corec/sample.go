package main

import "github.com/rustsem/corec/internal/ast"

// sampleCrate builds a small, self-contained crate entirely in Go, the way
// the teacher's cmd/typecheck/demo_ast.go hand-builds AST nodes to exercise
// its type checker without needing a parser. This module has no parser
// (spec §1 scopes it out), so the CLI's only source of a crate AST is a
// demo builder like this one; a real deployment would instead read an
// already-parsed crate off the wire from an external frontend.
//
// The crate declares:
//
//	struct Point { x: i64, y: i64 }
//	fn make_point(x: i64, y: i64) -> Point { Point { x: x, y: y } }
//	fn sum(a: i64, b: i64) -> i64 { a + b }
//
// and, when broken is true, a third function whose body reproduces the
// "bare return in a non-unit function" type mismatch:
//
//	fn broken() -> i64 { return; }
func sampleCrate(broken bool) *ast.Crate {
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

	pointStruct := &ast.StructItem{
		Fields: []*ast.FieldDef{
			{Name: "x", Type: i64()},
			{Name: "y", Type: i64()},
		},
	}
	pointStruct.NodeID = id()
	pointStruct.Name = "Point"
	pointStruct.Exported = true

	xParam := &ast.Param{Name: "x", Type: i64()}
	xParam.NodeID = id()
	yParam := &ast.Param{Name: "y", Type: i64()}
	yParam.NodeID = id()

	// checkPath resolves a single-segment local by the exact NodeID it was
	// bound under (internal/check's documented simplification for paths
	// this core can resolve without a live driver), so each read below
	// reuses its parameter's NodeID rather than minting a fresh one.
	xRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"x"}}}
	xRef.NodeID = xParam.NodeID
	yRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"y"}}}
	yRef.NodeID = yParam.NodeID

	pointLit := &ast.StructLit{
		Path: &ast.Path{Segments: []string{"Point"}},
		Fields: []ast.StructLitField{
			{Name: "x", Value: xRef},
			{Name: "y", Value: yRef},
		},
	}
	pointLit.NodeID = id()

	makePointBody := &ast.Block{Tail: pointLit}
	makePointBody.NodeID = id()

	makePoint := &ast.FnItem{
		Params:  []*ast.Param{xParam, yParam},
		RetType: namedType("Point"),
		Body:    makePointBody,
	}
	makePoint.NodeID = id()
	makePoint.Name = "make_point"
	makePoint.Exported = true

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

	items := []ast.Item{pointStruct, makePoint, sumFn}

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
