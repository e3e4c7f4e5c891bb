package wasmhost

import (
	"context"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hostbridge/hostbridge/fixture"
	"github.com/hostbridge/hostbridge/registry"
)

func newFixtureRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	if err := fixture.RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestBind_MathModule(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Bind(ctx, rt, newFixtureRegistry(t), fixture.MathNamespace)
	if err != nil {
		t.Fatal(err)
	}

	res, err := mod.ExportedFunction("add").Call(ctx, api.EncodeI32(2), api.EncodeI32(3))
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(res[0]) != 5 {
		t.Errorf("add = %d", api.DecodeI32(res[0]))
	}

	res, err = mod.ExportedFunction("get-magic-number").Call(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(res[0]) != 42 {
		t.Errorf("magic number = %d", api.DecodeI32(res[0]))
	}

	res, err = mod.ExportedFunction("divide").Call(ctx, api.EncodeI32(9), api.EncodeI32(2))
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(res[0]) != 4 {
		t.Errorf("divide = %v", api.DecodeI32(res[0]))
	}

	// Option results have no flat form; the function is not exported.
	if mod.ExportedFunction("maybe-double") != nil {
		t.Error("maybe-double should be skipped")
	}
}

func TestBind_NativeErrorTraps(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Bind(ctx, rt, newFixtureRegistry(t), fixture.MathNamespace)
	if err != nil {
		t.Fatal(err)
	}

	_, err = mod.ExportedFunction("divide").Call(ctx, api.EncodeI32(1), api.EncodeI32(0))
	if err == nil {
		t.Fatal("zero divisor should trap")
	}
	if !strings.Contains(err.Error(), "Division by zero") {
		t.Errorf("trap message lost: %v", err)
	}
}

func TestBind_AsyncAwaited(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Bind(ctx, rt, newFixtureRegistry(t), fixture.AsyncNamespace)
	if err != nil {
		t.Fatal(err)
	}

	// The guest sees a plain synchronous call; the future settles first.
	res, err := mod.ExportedFunction("async-add").Call(ctx, api.EncodeI32(20), api.EncodeI32(22))
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(res[0]) != 42 {
		t.Errorf("async-add = %d", api.DecodeI32(res[0]))
	}

	res, err = mod.ExportedFunction("delayed-value").Call(ctx, api.EncodeI32(7), 5)
	if err != nil {
		t.Fatal(err)
	}
	if api.DecodeI32(res[0]) != 7 {
		t.Errorf("delayed-value = %d", api.DecodeI32(res[0]))
	}
}

func TestBind_UnknownNamespace(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := Bind(ctx, rt, registry.New(), "no:such/ns@1.0.0"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompileBinding_StringParams(t *testing.T) {
	reg := newFixtureRegistry(t)

	// greet takes a string but returns one too; no flat result form.
	for _, info := range reg.Functions(fixture.TextNamespace) {
		if _, ok := compileBinding(info); ok {
			t.Errorf("%s should not flatten", info.Name)
		}
	}

	// array-length takes list<string>; lists have no flat form either.
	for _, info := range reg.Functions(fixture.ArrayNamespace) {
		if _, ok := compileBinding(info); ok {
			t.Errorf("%s should not flatten", info.Name)
		}
	}

	// A string parameter alone flattens to a (ptr, len) pair.
	if err := reg.RegisterFunc("test:wasm/text@1.0.0", "measure", func(s string) uint32 {
		return uint32(len(s))
	}); err != nil {
		t.Fatal(err)
	}
	infos := reg.Functions("test:wasm/text@1.0.0")
	bf, ok := compileBinding(infos[0])
	if !ok {
		t.Fatal("measure should flatten")
	}
	want := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	if len(bf.paramTypes) != 2 || bf.paramTypes[0] != want[0] || bf.paramTypes[1] != want[1] {
		t.Errorf("param types = %v", bf.paramTypes)
	}
	if len(bf.resultTypes) != 1 || bf.resultTypes[0] != api.ValueTypeI32 {
		t.Errorf("result types = %v", bf.resultTypes)
	}
}
