package registry

import (
	"context"
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/future"
)

type calcHost struct{}

func (h *calcHost) Namespace() string { return "test:calc/ops@1.0.0" }

func (h *calcHost) Add(a, b int32) int32 { return a + b }

func (h *calcHost) Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errors.InvalidArgument("Division by zero")
	}
	return a / b, nil
}

func (h *calcHost) GetMagicNumber() int32 { return 42 }

func TestRegisterHost_KebabNames(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&calcHost{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"add", "divide", "get-magic-number"} {
		if _, ok := r.Lookup("test:calc/ops@1.0.0", name); !ok {
			t.Errorf("function %q not registered", name)
		}
	}
	if _, ok := r.Lookup("test:calc/ops@1.0.0", "namespace"); ok {
		t.Error("Namespace method registered as a function")
	}
}

func TestCall_Sync(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&calcHost{}); err != nil {
		t.Fatal(err)
	}

	result, err := r.Call(context.Background(), "test:calc/ops@1.0.0", "add", []any{int64(2), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	if result != int64(5) {
		t.Errorf("got %v (%T)", result, result)
	}
}

func TestCall_ErrorCrossesAsHostException(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&calcHost{}); err != nil {
		t.Fatal(err)
	}

	_, err := r.Call(context.Background(), "test:calc/ops@1.0.0", "divide", []any{float64(1), float64(0)})
	he, ok := err.(*errors.HostException)
	if !ok {
		t.Fatalf("got %T: %v", err, err)
	}
	if he.Message != "Division by zero" {
		t.Errorf("message = %q", he.Message)
	}
}

func TestCall_UnknownFunction(t *testing.T) {
	r := New()

	_, err := r.Call(context.Background(), "nope", "missing", nil)
	if _, ok := err.(*errors.HostException); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestCall_ArgCountMismatch(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&calcHost{}); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Call(context.Background(), "test:calc/ops@1.0.0", "add", []any{int64(1)}); err == nil {
		t.Fatal("expected arg count error")
	}
}

type explicitHost struct {
	state int32
}

func (h *explicitHost) Namespace() string { return "test:explicit/res@1.0.0" }

func (h *explicitHost) Register() map[string]any {
	return map[string]any{
		"[constructor]box":  func(v int32) int32 { h.state = v; return 1 },
		"[method]box.value": func(handle int32) int32 { return h.state },
	}
}

func TestRegisterHost_ExplicitNames(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&explicitHost{}); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Call(context.Background(), "test:explicit/res@1.0.0", "[constructor]box", []any{int64(7)}); err != nil {
		t.Fatal(err)
	}
	v, err := r.Call(context.Background(), "test:explicit/res@1.0.0", "[method]box.value", []any{int64(1)})
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(7) {
		t.Errorf("got %v", v)
	}
}

type asyncCalcHost struct{}

func (h *asyncCalcHost) Namespace() string        { return "test:calc/async@1.0.0" }
func (h *asyncCalcHost) AsyncFunctions() []string { return []string{"slow-add"} }

func (h *asyncCalcHost) SlowAdd(a, b int32) int32 { return a + b }

func TestCall_AsyncReturnsFuture(t *testing.T) {
	r := New()
	if err := r.RegisterHost(&asyncCalcHost{}); err != nil {
		t.Fatal(err)
	}

	pending, err := r.Call(context.Background(), "test:calc/async@1.0.0", "slow-add", []any{int64(20), int64(22)})
	if err != nil {
		t.Fatal(err)
	}
	f, ok := pending.(*future.Future)
	if !ok {
		t.Fatalf("got %T", pending)
	}
	v, err := f.Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(42) {
		t.Errorf("got %v", v)
	}
}

func TestCall_AsyncRejectionIsHostException(t *testing.T) {
	r := New()
	err := r.RegisterFuncAsync("test:fail/async@1.0.0", "boom", func() error {
		return errors.InvalidArgument("nope")
	})
	if err != nil {
		t.Fatal(err)
	}

	pending, err := r.Call(context.Background(), "test:fail/async@1.0.0", "boom", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = pending.(*future.Future).Await(context.Background())
	he, ok := err.(*errors.HostException)
	if !ok {
		t.Fatalf("got %T: %v", err, err)
	}
	if he.Message != "nope" {
		t.Errorf("message = %q", he.Message)
	}
}

func TestCall_CallbackParam(t *testing.T) {
	r := New()
	err := r.RegisterFunc("test:cb/host@1.0.0", "apply-twice", func(v int32, fn func(int32) (int32, error)) (int32, error) {
		once, err := fn(v)
		if err != nil {
			return 0, err
		}
		return fn(once)
	})
	if err != nil {
		t.Fatal(err)
	}

	double := func(args []any) (any, error) {
		return args[0].(int64) * 2, nil
	}
	v, err := r.Call(context.Background(), "test:cb/host@1.0.0", "apply-twice", []any{int64(3), double})
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(12) {
		t.Errorf("got %v", v)
	}
}

func TestCall_CallbackThrowPropagates(t *testing.T) {
	r := New()
	err := r.RegisterFunc("test:cb/host@1.0.0", "apply", func(v int32, fn func(int32) (int32, error)) (int32, error) {
		return fn(v)
	})
	if err != nil {
		t.Fatal(err)
	}

	throwing := func(args []any) (any, error) {
		return nil, &errors.HostException{Message: "host side failure"}
	}
	_, err = r.Call(context.Background(), "test:cb/host@1.0.0", "apply", []any{int64(1), throwing})
	he, ok := err.(*errors.HostException)
	if !ok {
		t.Fatalf("got %T: %v", err, err)
	}
	if he.Message != "host side failure" {
		t.Errorf("message = %q", he.Message)
	}
}

func TestCall_ContextParam(t *testing.T) {
	type key struct{}
	r := New()
	err := r.RegisterFunc("test:ctx/host@1.0.0", "probe", func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(key{}).(string)
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.WithValue(context.Background(), key{}, "threaded")
	v, err := r.Call(ctx, "test:ctx/host@1.0.0", "probe", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != "threaded" {
		t.Errorf("got %v", v)
	}
}

func TestRegisterFunc_RejectsBadHandlers(t *testing.T) {
	r := New()

	if err := r.RegisterFunc("ns", "f", 42); err == nil {
		t.Error("non-function handler accepted")
	}
	if err := r.RegisterFunc("ns", "f", func(m map[string]int) {}); err == nil {
		t.Error("unrepresentable parameter accepted")
	}
	if err := r.RegisterFunc("ns", "f", func() (int32, string) { return 0, "" }); err == nil {
		t.Error("non-error second return accepted")
	}
	if err := r.RegisterFunc("", "f", func() {}); err == nil {
		t.Error("empty namespace accepted")
	}
}

type person struct {
	Name string
	Age  uint32
}

func TestFunctions_Listing(t *testing.T) {
	r := New()
	if err := r.RegisterFunc("test:list/host@1.0.0", "make", func(name string, age *uint32) (person, error) {
		return person{}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterFunc("test:list/host@1.0.0", "each", func(items []int32, fn func(int32) error) {}); err != nil {
		t.Fatal(err)
	}

	infos := r.Functions("test:list/host@1.0.0")
	if len(infos) != 2 {
		t.Fatalf("got %d functions", len(infos))
	}

	// Sorted by name: each, make.
	each, mk := infos[0], infos[1]
	if each.Name != "each" || mk.Name != "make" {
		t.Fatalf("order = %q, %q", each.Name, mk.Name)
	}

	if !each.Params[1].Callback {
		t.Error("callback param not marked")
	}
	if td, ok := each.Params[0].Type.(*wit.TypeDef); !ok {
		t.Errorf("list param = %T", each.Params[0].Type)
	} else if _, ok := td.Kind.(*wit.List); !ok {
		t.Errorf("list param kind = %T", td.Kind)
	}

	if _, ok := mk.Params[0].Type.(wit.String); !ok {
		t.Errorf("string param = %T", mk.Params[0].Type)
	}
	if td, ok := mk.Params[1].Type.(*wit.TypeDef); !ok {
		t.Errorf("option param = %T", mk.Params[1].Type)
	} else if _, ok := td.Kind.(*wit.Option); !ok {
		t.Errorf("option param kind = %T", td.Kind)
	}
	if td, ok := mk.Result.(*wit.TypeDef); !ok {
		t.Errorf("record result = %T", mk.Result)
	} else if rec, ok := td.Kind.(*wit.Record); !ok {
		t.Errorf("record result kind = %T", td.Kind)
	} else if rec.Fields[0].Name != "name" || rec.Fields[1].Name != "age" {
		t.Errorf("record fields = %+v", rec.Fields)
	}
	if !mk.CanFail {
		t.Error("make should report CanFail")
	}
}

func TestCall_NamespacesSorted(t *testing.T) {
	r := New()
	_ = r.RegisterFunc("b:ns/x@1.0.0", "f", func() {})
	_ = r.RegisterFunc("a:ns/x@1.0.0", "f", func() {})

	got := r.Namespaces()
	if len(got) != 2 || got[0] != "a:ns/x@1.0.0" || got[1] != "b:ns/x@1.0.0" {
		t.Errorf("got %v", got)
	}
}

func TestCall_NilResultForVoid(t *testing.T) {
	r := New()
	called := false
	_ = r.RegisterFunc("test:void/host@1.0.0", "fire", func() { called = true })

	v, err := r.Call(context.Background(), "test:void/host@1.0.0", "fire", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("got %v", v)
	}
	if !called {
		t.Error("handler not invoked")
	}
}

func TestErrorsIs_AcrossBridge(t *testing.T) {
	r := New()
	_ = r.RegisterFunc("test:is/host@1.0.0", "fail", func() error {
		return errors.InvalidArgument("rejected")
	})

	_, err := r.Call(context.Background(), "test:is/host@1.0.0", "fail", nil)
	if !stderrors.Is(err, &errors.HostException{}) {
		t.Errorf("err does not match HostException: %v", err)
	}
}
