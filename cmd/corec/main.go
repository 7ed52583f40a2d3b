// Command corec drives the full pipeline over a crate (analogous to the
// teacher's cmd/ailang): build a crate AST, resolve names, type-check,
// solve vtables, plan layout, and lower to IR, then print either the
// diagnostics or a summary of what was produced.
//
// This core has no parser (spec §1 scopes one out), so "build a crate AST"
// means running the built-in sample crate rather than reading a source
// file; a real deployment would wire this entry point to an external
// frontend instead.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rustsem/corec/internal/crate"
	"github.com/rustsem/corec/internal/cratestore"
	"github.com/rustsem/corec/internal/lower"
	"github.com/rustsem/corec/internal/session"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra has already printed the error; just set the exit code.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "corec",
		Short:   "Name resolution, type checking, and IR lowering over a crate",
		Version: version,
	}
	root.AddCommand(buildCmd(), versionCmd())
	return root
}

func buildCmd() *cobra.Command {
	var (
		broken  bool
		noColor bool
		dumpIR  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the sample crate and print a summary or dump its IR",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(broken, noColor, dumpIR)
		},
	}

	cmd.Flags().BoolVar(&broken, "broken", false, "compile the sample crate's broken variant (a bare return in a non-unit function)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	cmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print every lowered function's blocks and instructions")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the corec version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("corec", version)
		},
	}
}

func runBuild(broken, noColor, dumpIR bool) error {
	sess := session.New(session.DefaultTarget, session.Options{})
	sess.NoColor = noColor

	crateAST := sampleCrate(broken)
	cs := cratestore.NewStore()

	result, err := crate.Compile(sess, cs, crateAST)
	if err != nil {
		sess.PrintReports()
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Printf("%s %s\n", bold("crate:"), crateAST.Name)
	fmt.Printf("%s %d\n", bold("functions lowered:"), len(result.Module.Functions))
	fmt.Printf("%s %d\n", bold("tydescs planned:"), len(result.Module.Tydescs))
	fmt.Printf("%s %d\n", bold("vtable resolutions:"), len(result.VtableResolutions))
	fmt.Println(green("ok"))

	if dumpIR {
		dumpModule(result.Module)
	}
	return nil
}

// dumpModule prints every lowered function's pre-entry chain and body
// blocks, one instruction per line, in the teacher's "-s (save temps)"
// spirit of surfacing intermediate representations for inspection.
func dumpModule(mod *lower.Module) {
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, fn := range mod.Functions {
		fmt.Printf("\n%s %s\n", cyan("fn"), fn.Symbol)
		for _, b := range fn.PreBlocks {
			dumpBlock(b)
		}
		for _, b := range fn.Blocks {
			dumpBlock(b)
		}
	}
}

func dumpBlock(b *lower.Block) {
	if b == nil {
		return
	}
	fmt.Printf("  block %d (%s):\n", b.ID, b.Name)
	for _, inst := range b.Insts {
		fmt.Printf("    %T\n", inst)
	}
	if b.Term != nil {
		fmt.Printf("    term %T\n", b.Term)
	}
}
