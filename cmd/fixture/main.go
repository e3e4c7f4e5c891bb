package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/fixture"
	"github.com/hostbridge/hostbridge/future"
	"github.com/hostbridge/hostbridge/registry"
)

func main() {
	var (
		namespace   = flag.String("ns", "", "Namespace of the function to call")
		funcName    = flag.String("func", "", "Function to call")
		argsStr     = flag.String("args", "", "Arguments (comma-separated)")
		list        = flag.Bool("list", false, "List registered functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		registry.SetLogger(logger)
	}

	reg := registry.New()
	if err := fixture.RegisterAll(reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *list {
		listFunctions(reg)
		return
	}

	if *namespace == "" || *funcName == "" {
		fmt.Fprintln(os.Stderr, "Usage: fixture -ns <namespace> -func <name> [-args a,b,...]")
		fmt.Fprintln(os.Stderr, "       fixture -list")
		fmt.Fprintln(os.Stderr, "       fixture -i  (interactive mode)")
		os.Exit(1)
	}

	if err := callOne(reg, *namespace, *funcName, *argsStr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listFunctions(reg *registry.Registry) {
	for _, ns := range reg.Namespaces() {
		fmt.Printf("%s\n", ns)
		for _, info := range reg.Functions(ns) {
			fmt.Printf("  %s\n", formatSignature(info))
		}
	}
}

func formatSignature(info registry.FuncInfo) string {
	var params []string
	for _, p := range info.Params {
		params = append(params, paramTypeStr(p))
	}
	sig := fmt.Sprintf("%s(%s)", info.Name, strings.Join(params, ", "))
	if info.Result != nil {
		sig += " -> " + witTypeStr(info.Result)
	}
	if info.Async {
		sig += "  [async]"
	}
	return sig
}

func callOne(reg *registry.Registry, namespace, name, argsStr string) error {
	info, ok := findFunc(reg, namespace, name)
	if !ok {
		return errors.NotFound(errors.PhaseCall, "function", namespace+"#"+name)
	}

	var raw []string
	if argsStr != "" {
		raw = strings.Split(argsStr, ",")
	}
	if len(raw) != len(info.Params) {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, len(info.Params), len(raw))
	}

	args := make([]any, len(raw))
	for i, s := range raw {
		v, err := convertArg(s, info.Params[i])
		if err != nil {
			return err
		}
		args[i] = v
	}

	ctx := context.Background()
	result, err := reg.Call(ctx, namespace, name, args)
	if err != nil {
		return err
	}

	if pending, ok := result.(*future.Future); ok {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		result, err = pending.Await(waitCtx)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Result: %v\n", result)
	return nil
}

func findFunc(reg *registry.Registry, namespace, name string) (registry.FuncInfo, bool) {
	for _, info := range reg.Functions(namespace) {
		if info.Name == name {
			return info, true
		}
	}
	return registry.FuncInfo{}, false
}

// convertArg parses a CLI string into the host-form value a parameter
// expects. An empty string means absent for option parameters.
func convertArg(value string, p registry.ParamInfo) (any, error) {
	if p.Callback {
		return nil, fmt.Errorf("callback parameters cannot be supplied from the command line")
	}
	return convertValue(value, p.Type)
}

func convertValue(value string, t wit.Type) (any, error) {
	switch v := t.(type) {
	case wit.String:
		return value, nil
	case wit.Bool:
		return value == "true" || value == "1", nil
	case wit.S8, wit.S16, wit.S32, wit.S64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", value, err)
		}
		return n, nil
	case wit.U8, wit.U16, wit.U32, wit.U64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", value, err)
		}
		return n, nil
	case wit.F32, wit.F64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", value, err)
		}
		return f, nil
	case *wit.TypeDef:
		switch kind := v.Kind.(type) {
		case *wit.Option:
			if value == "" {
				return nil, nil
			}
			return convertValue(value, kind.Type)
		case *wit.List:
			if value == "" {
				return []any{}, nil
			}
			var items []any
			for _, part := range strings.Split(value, " ") {
				item, err := convertValue(part, kind.Type)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			return items, nil
		}
	}
	return nil, fmt.Errorf("cannot build a %s from the command line", witTypeStr(t))
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		switch kind := v.Kind.(type) {
		case *wit.Option:
			return "option<" + witTypeStr(kind.Type) + ">"
		case *wit.List:
			return "list<" + witTypeStr(kind.Type) + ">"
		case *wit.Record:
			var fields []string
			for _, f := range kind.Fields {
				fields = append(fields, f.Name+": "+witTypeStr(f.Type))
			}
			return "record{" + strings.Join(fields, ", ") + "}"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func paramTypeStr(p registry.ParamInfo) string {
	if p.Callback {
		return "callback"
	}
	return witTypeStr(p.Type)
}
