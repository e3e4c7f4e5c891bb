package registry

import (
	"context"
	"reflect"

	"github.com/hostbridge/hostbridge/callback"
	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/marshal"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// Func is a registered native function with its compiled signature.
type Func struct {
	handler   reflect.Value
	params    []param
	result    *marshal.CompiledType // nil when the function returns no value
	namespace string
	name      string
	hasErr    bool
	takesCtx  bool
	async     bool
}

// A callback param carries the Go func type to bind host functions to;
// every other param carries a compiled value descriptor.
type param struct {
	ct     *marshal.CompiledType
	fnType reflect.Type
}

func (p param) isCallback() bool { return p.fnType != nil }

// Name returns the boundary-visible function name.
func (f *Func) Name() string { return f.name }

// Namespace returns the namespace the function is registered under.
func (f *Func) Namespace() string { return f.namespace }

// Async reports whether Call dispatches this function asynchronously.
func (f *Func) Async() bool { return f.async }

// compileFunc validates fn's signature up front so registration fails
// fast instead of the first call. Accepted shapes:
//
//	func([ctx,] p1, p2, ...) (T, error)
//	func([ctx,] ...) error
//	func([ctx,] ...) T
//	func([ctx,] ...)
//
// Parameters of func kind become host callback bindings; everything else
// must have a boundary representation.
func compileFunc(m *marshal.Marshaller, namespace, name string, fn any, async bool) (*Func, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseRegistry, errors.KindTypeMismatch).
			GoType(typeName(fn)).
			Detail("handler must be a function").
			Build()
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, errors.Unsupported(errors.PhaseRegistry, "variadic handler signatures")
	}

	f := &Func{
		handler:   rv,
		namespace: namespace,
		name:      name,
		async:     async,
	}

	start := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		f.takesCtx = true
		start = 1
	}

	for i := start; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if in.Kind() == reflect.Func {
			// Bind-time validation of the callback signature itself.
			if _, err := validateCallbackType(m, in); err != nil {
				return nil, errors.Registration(namespace, name, err)
			}
			f.params = append(f.params, param{fnType: in})
			continue
		}
		ct, err := m.Compile(in)
		if err != nil {
			return nil, errors.Registration(namespace, name, err)
		}
		f.params = append(f.params, param{ct: ct})
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			f.hasErr = true
		} else {
			ct, err := m.Compile(ft.Out(0))
			if err != nil {
				return nil, errors.Registration(namespace, name, err)
			}
			f.result = ct
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.New(errors.PhaseRegistry, errors.KindTypeMismatch).
				GoType(ft.String()).
				Detail("second return value must be error").
				Build()
		}
		ct, err := m.Compile(ft.Out(0))
		if err != nil {
			return nil, errors.Registration(namespace, name, err)
		}
		f.result = ct
		f.hasErr = true
	default:
		return nil, errors.New(errors.PhaseRegistry, errors.KindTypeMismatch).
			GoType(ft.String()).
			Detail("handler may return at most one value and an error").
			Build()
	}

	return f, nil
}

// validateCallbackType checks a callback parameter's Go type without
// binding a host function to it.
func validateCallbackType(m *marshal.Marshaller, fnType reflect.Type) (reflect.Type, error) {
	_, ref, err := callback.Bind(m, fnType, func([]any) (any, error) { return nil, nil })
	if err != nil {
		return nil, err
	}
	ref.Unref()
	return fnType, nil
}

// invoke converts host args to native form, calls the handler, and
// converts the result back to host form. Callback capabilities bound for
// the call are dropped when it returns.
func (f *Func) invoke(ctx context.Context, m *marshal.Marshaller, args []any) (any, error) {
	if len(args) != len(f.params) {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Detail("%s#%s expects %d argument(s), got %d", f.namespace, f.name, len(f.params), len(args)).
			Build()
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if f.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}

	var refs []*callback.Ref
	defer func() {
		for _, ref := range refs {
			ref.Unref()
		}
	}()

	for i, p := range f.params {
		if p.isCallback() {
			hf, err := asHostFunc(args[i])
			if err != nil {
				return nil, err
			}
			bound, ref, err := callback.Bind(m, p.fnType, hf)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
			in = append(in, bound)
			continue
		}
		nv, err := m.ToNative(args[i], p.ct)
		if err != nil {
			return nil, err
		}
		in = append(in, nv)
	}

	out := f.handler.Call(in)

	if f.hasErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}
	if f.result == nil {
		return nil, nil
	}
	return m.ToHost(out[0].Interface())
}

// asHostFunc accepts the host representations of a function value.
func asHostFunc(arg any) (callback.HostFunc, error) {
	switch fn := arg.(type) {
	case callback.HostFunc:
		return fn, nil
	case func(args []any) (any, error):
		return fn, nil
	default:
		return nil, errors.New(errors.PhaseUnmarshal, errors.KindTypeMismatch).
			GoType("callback.HostFunc").
			HostType(typeName(arg)).
			Detail("argument is not a host function").
			Build()
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
