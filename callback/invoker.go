package callback

import (
	"reflect"

	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/marshal"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoker calls a host function from native code, marshalling arguments
// out and the result back.
type Invoker struct {
	m      *marshal.Marshaller
	ref    *Ref
	result *marshal.CompiledType // nil when the callback returns nothing
}

// NewInvoker builds an invoker over ref whose calls convert the host
// return value into resultType. A nil resultType discards the return.
func NewInvoker(m *marshal.Marshaller, ref *Ref, resultType *marshal.CompiledType) *Invoker {
	return &Invoker{m: m, ref: ref, result: resultType}
}

// Call marshals args to host representation, invokes the host function,
// and converts the result back. A host throw surfaces as a host_threw
// error; a result that fails conversion surfaces as bad_return_type.
func (inv *Invoker) Call(args ...any) (reflect.Value, error) {
	hostArgs := make([]any, len(args))
	for i, a := range args {
		hv, err := inv.m.ToHost(a)
		if err != nil {
			return reflect.Value{}, err
		}
		hostArgs[i] = hv
	}

	ret, err := inv.ref.invoke(hostArgs)
	if err != nil {
		if he, ok := err.(*errors.HostException); ok {
			return reflect.Value{}, errors.FromHost(he)
		}
		if _, ok := err.(*errors.Error); ok {
			return reflect.Value{}, err
		}
		return reflect.Value{}, errors.HostThrew(err.Error())
	}

	if inv.result == nil {
		return reflect.Value{}, nil
	}

	rv, err := inv.m.ToNative(ret, inv.result)
	if err != nil {
		return reflect.Value{}, errors.BadReturnType(err, inv.result.GoType.String())
	}
	return rv, nil
}

// Bind turns a host function into a typed native func value of fnType.
// fnType must return error as its last result and at most one value
// before it. The returned Ref owns the capability; callers drop it with
// Unref once the host function may no longer be invoked.
func Bind(m *marshal.Marshaller, fnType reflect.Type, fn HostFunc) (reflect.Value, *Ref, error) {
	if fnType.Kind() != reflect.Func {
		return reflect.Value{}, nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			GoType(fnType.String()).
			Detail("callback binding requires a func type").
			Build()
	}
	if fnType.IsVariadic() {
		return reflect.Value{}, nil, errors.Unsupported(errors.PhaseCompile, "variadic callback signatures")
	}
	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 || fnType.Out(numOut-1) != errorType {
		return reflect.Value{}, nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			GoType(fnType.String()).
			Detail("callback must return error as its last result").
			Build()
	}

	var resultType *marshal.CompiledType
	if numOut == 2 {
		ct, err := m.Compile(fnType.Out(0))
		if err != nil {
			return reflect.Value{}, nil, err
		}
		resultType = ct
	}

	// Validate parameter types up front so a bad signature fails at bind
	// time rather than on first call.
	for i := 0; i < fnType.NumIn(); i++ {
		if _, err := m.Compile(fnType.In(i)); err != nil {
			return reflect.Value{}, nil, err
		}
	}

	ref := NewRef(fn)
	inv := NewInvoker(m, ref, resultType)

	wrapper := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}

		rv, err := inv.Call(args...)

		out := make([]reflect.Value, numOut)
		if numOut == 2 {
			if err != nil || !rv.IsValid() {
				out[0] = reflect.Zero(fnType.Out(0))
			} else {
				out[0] = rv
			}
		}
		if err != nil {
			out[numOut-1] = reflect.ValueOf(err)
		} else {
			out[numOut-1] = reflect.Zero(errorType)
		}
		return out
	})

	return wrapper, ref, nil
}
