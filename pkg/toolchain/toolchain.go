// Package toolchain invokes the system assembler and linker. Both run
// synchronously with captured output; on failure the child's output is
// surfaced verbatim in the returned error.
package toolchain

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
)

// LinkOptions carries the target-specific pieces of a link step.
type LinkOptions struct {
	UseC      bool
	IsLib     bool
	DynLinker string
	CrtDir    string
}

// Assemble runs `as` on /tmp/<name>.asm. With noLink the object file
// lands in the working directory instead of /tmp.
func Assemble(name string, noLink bool) error {
	asmName := "/tmp/" + name + ".asm"
	objName := "/tmp/" + name + ".o"
	if noLink {
		objName = "./" + name + ".o"
	}

	out, err := exec.Command("as", asmName, "-o", objName).CombinedOutput()
	if err != nil {
		return fmt.Errorf("assembling %s failed: %w\n%s", asmName, err,
			strings.TrimSpace(string(out)))
	}
	return nil
}

// Link runs `ld` over the given inputs. Inputs ending in .o are used
// as-is, -l entries pass through as libraries, and bare names resolve
// to their /tmp object files.
func Link(inputs []string, output string, opts LinkOptions) error {
	libs, rest := lo.FilterReject(inputs, func(n string, _ int) bool {
		return strings.HasPrefix(n, "-l")
	})
	objects := lo.Map(rest, func(n string, _ int) string {
		if strings.HasSuffix(n, ".o") {
			return n
		}
		return "/tmp/" + n + ".o"
	})

	args := []string{"-L./"}

	if opts.UseC {
		if !opts.IsLib {
			args = append(args,
				opts.CrtDir+"/crti.o",
				opts.CrtDir+"/crtn.o",
				opts.CrtDir+"/crt1.o")
		}
		args = append(args, "-lc")
	}

	if opts.DynLinker != "" {
		args = append(args, "-dynamic-linker", opts.DynLinker)
	}

	args = append(args, objects...)

	if opts.IsLib {
		args = append(args, "-shared")
	}

	args = append(args, libs...)
	args = append(args, "-o", output)

	out, err := exec.Command("ld", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("linking %s failed: %w\n%s", output, err,
			strings.TrimSpace(string(out)))
	}
	return nil
}
