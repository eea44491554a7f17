// Command ember is the CLI driver: compile a source file, run it
// through internal/vm, print the top-level return value, and exit
// non-zero on a runtime or compile error. Argument parsing is off bare
// os.Args rather than the flag package.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/ember-lang/ember/internal/compiler"
	"github.com/ember-lang/ember/internal/config"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
	"github.com/ember-lang/ember/internal/vm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <script%s> [ember.yaml]\n", os.Args[0], config.SourceFileExt)
		os.Exit(1)
	}
	entry := os.Args[1]

	cfgPath := "ember.yaml"
	if len(os.Args) >= 3 {
		cfgPath = os.Args[2]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: loading config: %v\n", err)
		os.Exit(1)
	}

	m := vm.New()
	if cfg.InitialGCLimit > 0 || cfg.GCGrowthFactor > 0 {
		m.SetGCTuning(uint64(cfg.InitialGCLimit), uint64(cfg.GCGrowthFactor))
	}
	m.OnError = colorAwareErrorHook(os.Stdout)
	m.SetRequireFunc(makeRequireFunc(cfg))

	result, runErr := runFile(m, entry)
	if runErr != nil {
		os.Exit(1)
	}
	printResult(result)
}

func runFile(m *vm.VM, path string) (value.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		return value.Nil(), err
	}
	stmts, perr := compiler.Parse(string(src))
	if perr != nil {
		fmt.Fprintf(os.Stderr, "ember: parse error: %v\n", perr)
		return value.Nil(), perr
	}
	name := filepath.Base(path)
	proto, cerr := compiler.Compile(stmts, name, m.Intern, m.NewCodeBlock, m.Protect, m.Unprotect)
	if cerr != nil {
		fmt.Fprintf(os.Stderr, "ember: compile error: %v\n", cerr)
		return value.Nil(), cerr
	}
	return m.Run(proto)
}

// makeRequireFunc resolves a bare module name against cfg.SourceRoots,
// appending config.SourceFileExt if the caller omitted it, and runs the
// result through the same VM instance so globals/GC state is shared —
// the embedding contract objects.Host.Require documents.
func makeRequireFunc(cfg *config.RuntimeConfig) vm.RequireFunc {
	return func(m *vm.VM, modPath string) (value.Value, error) {
		candidate := modPath
		if filepath.Ext(candidate) == "" {
			candidate += config.SourceFileExt
		}
		for _, root := range cfg.SourceRoots {
			full := filepath.Join(root, candidate)
			if _, err := os.Stat(full); err == nil {
				return runFile(m, full)
			}
		}
		return value.Nil(), fmt.Errorf("module not found: %s", modPath)
	}
}

func printResult(v value.Value) {
	if v.IsNil() {
		return
	}
	fmt.Println(displayTopLevel(v))
}

func displayTopLevel(v value.Value) string {
	switch {
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		n := v.AsNumber()
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case v.IsObjectKind(value.KindString):
		return string(v.AsObject().(*objects.String).Bytes)
	default:
		return v.TypeName()
	}
}

// colorAwareErrorHook writes the formatted runtime-error trace to
// stderr, prefixing it with an ANSI red sequence only when stdout is a
// real terminal.
func colorAwareErrorHook(out *os.File) vm.ErrorHook {
	color := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return func(_ *vm.VM, message string) {
		if color {
			fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", message)
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", message)
		}
	}
}
