package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raymyers/lila-cc/pkg/aarch64"
	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/lexer"
	"github.com/raymyers/lila-cc/pkg/ltac"
	"github.com/raymyers/lila-cc/pkg/ltacgen"
	"github.com/raymyers/lila-cc/pkg/parser"
	"github.com/raymyers/lila-cc/pkg/riscv64"
	"github.com/raymyers/lila-cc/pkg/x86"
)

var version = "0.1.0"

var (
	output string
	target string
	noLink bool
	useC   bool
	isLib  bool

	dParse bool
	dLtac  bool
	dAsm   bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the flags that accept single-dash style.
var debugFlagNames = []string{"dparse", "dltac", "dasm"}

// normalizeFlags converts single-dash debug flags like -dparse to
// --dparse for pflag compatibility.
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lila-cc [file]",
		Short: "lila-cc is an ahead-of-time compiler for the Lila language",
		Long: `lila-cc compiles Lila source files to native executables. It
lowers the program to a linear three-address IR, emits assembly for
the selected target, and drives the system assembler and linker.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return compile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&output, "output", "o", "a.out", "Output file name")
	rootCmd.Flags().StringVar(&target, "target", "x86_64",
		"Target architecture (x86_64, aarch64, riscv64)")
	rootCmd.Flags().BoolVar(&noLink, "no-link", false, "Assemble but do not link")
	rootCmd.Flags().BoolVar(&useC, "use-c", false, "Link against the C library")
	rootCmd.Flags().BoolVar(&isLib, "lib", false, "Build a shared library")

	rootCmd.Flags().BoolVar(&dParse, "dparse", false, "Dump after parsing")
	rootCmd.Flags().BoolVar(&dLtac, "dltac", false, "Dump the LTAC IR")
	rootCmd.Flags().BoolVar(&dAsm, "dasm", false, "Dump the generated assembly")

	return rootCmd
}

// baseName strips the directory and extension from the input path;
// temp files are /tmp/<base>.asm and /tmp/<base>.o.
func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseFile reads and parses a source file.
func parseFile(filename string, errOut io.Writer) (*ast.Tree, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "lila-cc: error reading %s: %v\n", filename, err)
		return nil, err
	}

	l := lexer.New(string(content))
	p := parser.New(l)
	tree := p.ParseTree(baseName(filename))

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("parsing failed with %d errors", len(p.Errors()))
	}
	return tree, nil
}

// lower translates a parsed tree into LTAC.
func lower(tree *ast.Tree, errOut io.Writer) (*ltac.File, error) {
	reporter := diag.NewReporter(errOut)
	builder := ltacgen.New(tree.FileName, reporter)
	return builder.Build(tree)
}

// emitAsm renders LTAC as assembly text for the selected target.
func emitAsm(file *ltac.File, target string) (string, error) {
	switch target {
	case "x86_64":
		return x86.Emit(file)
	case "aarch64":
		return aarch64.Emit(file)
	case "riscv64":
		return riscv64.Emit(file)
	}
	return "", fmt.Errorf("unknown target %s", target)
}

// compile runs the full pipeline for one source file.
func compile(filename string, out, errOut io.Writer) error {
	tree, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	if dParse {
		ast.NewPrinter(out).PrintTree(tree)
		return nil
	}

	file, err := lower(tree, errOut)
	if err != nil {
		return err
	}

	if dLtac {
		ltac.NewPrinter(out).PrintFile(file)
		return nil
	}

	if dAsm {
		text, err := emitAsm(file, target)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	}

	name := file.Name
	switch target {
	case "x86_64":
		if err := x86.Compile(file); err != nil {
			return err
		}
		if err := x86.BuildAsm(name, noLink); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}
		if noLink {
			return nil
		}
		if err := x86.Link([]string{name}, output, useC, isLib); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}

	case "aarch64":
		if err := aarch64.Compile(file); err != nil {
			return err
		}
		if err := aarch64.BuildAsm(name, noLink); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}
		if noLink {
			return nil
		}
		if err := aarch64.Link([]string{name}, output, useC, isLib); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}

	case "riscv64":
		if err := riscv64.Compile(file); err != nil {
			return err
		}
		if err := riscv64.BuildAsm(name, noLink); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}
		if noLink {
			return nil
		}
		if err := riscv64.Link([]string{name}, output, useC, isLib); err != nil {
			fmt.Fprintln(errOut, err)
			return err
		}

	default:
		return fmt.Errorf("unknown target %s", target)
	}

	fmt.Fprintf(errOut, "lila-cc: compiled %s\n", filename)
	return nil
}
