package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-embed/engine"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/imports"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
	"github.com/wippyai/wasm-embed/wasi"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to wasm module")
		funcName    = flag.String("func", "", "Exported function to call (optional)")
		funcArgs    = flag.String("args", "", "Function arguments (comma-separated)")
		envVars     = flag.String("env", "", "Guest environment variables (KEY=VAL,KEY2=VAL2)")
		cliArgs     = flag.String("argv", "", "Guest CLI arguments (comma-separated)")
		list        = flag.Bool("list", false, "List imports and exports and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasm-inspect -wasm <file.wasm> [-func name] [-args a,b,...]")
		fmt.Fprintln(os.Stderr, "       wasm-inspect -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       wasm-inspect -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(l.Named("engine"))
			imports.SetLogger(l.Named("imports"))
			wasi.SetLogger(l.Named("wasi"))
		}
	}

	if *interactive {
		if err := runInteractive(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *funcName, *funcArgs, *envVars, *cliArgs, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeColStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

// plain strips styling when stdout is not a terminal.
func plain() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, s string) string {
	if plain() {
		return s
	}
	return style.Render(s)
}

func run(wasmFile, funcName, argsStr, envStr, argvStr string, listOnly bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	eng, err := engine.New(ctx)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close(ctx)

	mod, err := eng.Compile(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	printModuleReport(wasmFile, mod)
	if listOnly {
		return nil
	}

	sctx := store.NewContext(nil)
	env := wasi.NewEnv(wasi.EnvConfig{
		Args:    splitList(argvStr),
		Environ: splitList(envStr),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})

	reg := imports.New()
	if usesNamespace(mod, wasi.Namespace) {
		reg = env.ImportObject(sctx)
	}

	inst, err := eng.Instantiate(ctx, sctx, mod, reg, engine.InstanceConfig{})
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	if ext, ok := inst.GetExport("memory"); ok {
		if mem, ok := ext.Memory(); ok {
			env.SetMemory(mem)
		}
	}

	if funcName == "" {
		funcName = pickEntryPoint(mod)
		if funcName == "" {
			fmt.Println("\nNo function specified and no common entry point found.")
			fmt.Println("Use -func to specify a function to call.")
			return nil
		}
	}

	ext, ok := inst.GetExport(funcName)
	if !ok {
		return fmt.Errorf("no export named %q", funcName)
	}
	fn, ok := ext.Function()
	if !ok {
		return fmt.Errorf("export %q is a %s, not a function", funcName, ext.Kind())
	}
	ft, err := fn.Type(sctx)
	if err != nil {
		return err
	}

	args, err := parseArgs(splitList(argsStr), ft.Params)
	if err != nil {
		return err
	}

	fmt.Printf("\nCalling %s%s...\n", funcName, ft)
	results, err := fn.Call(sctx, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	for _, r := range results {
		fmt.Printf("Result: %s\n", formatValue(r))
	}
	return nil
}

func printModuleReport(wasmFile string, mod *engine.Module) {
	fmt.Println(render(headingStyle, "Module") + " " + wasmFile)

	importTypes := mod.ImportTypes()
	fmt.Printf("\nImports (%d):\n", len(importTypes))
	for _, imp := range importTypes {
		fmt.Printf("  %s.%s %s\n",
			imp.Module, render(nameStyle, imp.Name), render(typeColStyle, typeLabel(imp.Type)))
	}

	exportTypes := mod.ExportTypes()
	fmt.Printf("\nExports (%d):\n", len(exportTypes))
	for _, exp := range exportTypes {
		fmt.Printf("  %s %s\n",
			render(nameStyle, exp.Name), render(typeColStyle, typeLabel(exp.Type)))
	}
}

func typeLabel(t types.ExternType) string {
	switch ty := t.(type) {
	case types.FunctionType:
		return "func " + ty.String()
	case types.MemoryType:
		if ty.Maximum != nil {
			return fmt.Sprintf("memory {min %d, max %d}", ty.Minimum, *ty.Maximum)
		}
		return fmt.Sprintf("memory {min %d}", ty.Minimum)
	case types.TableType:
		return "table " + ty.Elem.String()
	case types.GlobalType:
		if ty.Mutable {
			return "global mut " + ty.Type.String()
		}
		return "global " + ty.Type.String()
	default:
		return "unknown"
	}
}

func usesNamespace(mod *engine.Module, ns string) bool {
	for _, imp := range mod.ImportTypes() {
		if imp.Module == ns {
			return true
		}
	}
	return false
}

func pickEntryPoint(mod *engine.Module) string {
	exports := mod.ExportTypes()
	for _, candidate := range []string{"_start", "run", "main"} {
		for _, exp := range exports {
			if exp.Name == candidate {
				if _, ok := exp.Type.(types.FunctionType); ok {
					return candidate
				}
			}
		}
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseArgs(raw []string, params []types.ValType) ([]externals.Value, error) {
	if len(raw) != len(params) {
		return nil, fmt.Errorf("function takes %d arguments, got %d", len(params), len(raw))
	}
	out := make([]externals.Value, len(raw))
	for i, s := range raw {
		v, err := parseValue(s, params[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseValue(s string, t types.ValType) (externals.Value, error) {
	switch t {
	case types.I32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return externals.Value{}, fmt.Errorf("parse %q as i32: %w", s, err)
		}
		return externals.I32(int32(v)), nil
	case types.I64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return externals.Value{}, fmt.Errorf("parse %q as i64: %w", s, err)
		}
		return externals.I64(v), nil
	case types.F32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return externals.Value{}, fmt.Errorf("parse %q as f32: %w", s, err)
		}
		return externals.F32(float32(v)), nil
	case types.F64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return externals.Value{}, fmt.Errorf("parse %q as f64: %w", s, err)
		}
		return externals.F64(v), nil
	default:
		return externals.Value{}, fmt.Errorf("cannot build %s values from the command line", t)
	}
}

func formatValue(v externals.Value) string {
	switch v.Kind() {
	case types.I32:
		return fmt.Sprintf("%d (i32)", v.I32())
	case types.I64:
		return fmt.Sprintf("%d (i64)", v.I64())
	case types.F32:
		return fmt.Sprintf("%g (f32)", v.F32())
	case types.F64:
		return fmt.Sprintf("%g (f64)", v.F64())
	default:
		return v.Kind().String()
	}
}
