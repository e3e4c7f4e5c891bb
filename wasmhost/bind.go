package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/future"
	"github.com/hostbridge/hostbridge/registry"
)

// Bind instantiates a wazero host module exposing every bindable
// function registered under namespace. The module name is the namespace
// itself, so guests import from it verbatim.
func Bind(ctx context.Context, rt wazero.Runtime, reg *registry.Registry, namespace string) (api.Module, error) {
	infos := reg.Functions(namespace)
	if len(infos) == 0 {
		return nil, errors.NotFound(errors.PhaseRegistry, "namespace", namespace)
	}

	builder := rt.NewHostModuleBuilder(namespace)
	bound := 0

	for _, info := range infos {
		bf, ok := compileBinding(info)
		if !ok {
			registry.Logger().Debug("skipping unbindable function",
				zap.String("namespace", namespace),
				zap.String("name", info.Name))
			continue
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(bf.handler(reg, namespace, info.Name), bf.paramTypes, bf.resultTypes).
			Export(info.Name)
		bound++
	}

	if bound == 0 {
		return nil, errors.Unsupported(errors.PhaseRegistry,
			"no function in "+namespace+" flattens onto the wasm stack")
	}

	return builder.Instantiate(ctx)
}

// decode ops, one per stack-flattened parameter shape.
type decodeOp uint8

const (
	decBool decodeOp = iota
	decS32
	decU32
	decS64
	decU64
	decF32
	decF64
	decString // consumes two stack slots: ptr, len
)

type encodeOp uint8

const (
	encNone encodeOp = iota
	encBool
	encS32
	encU32
	encS64
	encU64
	encF32
	encF64
)

type boundFunc struct {
	decode      []decodeOp
	encode      encodeOp
	paramTypes  []api.ValueType
	resultTypes []api.ValueType
}

// compileBinding flattens a function description onto wasm value types.
// The second return is false when the signature has no flat form.
func compileBinding(info registry.FuncInfo) (boundFunc, bool) {
	var bf boundFunc

	for _, p := range info.Params {
		if p.Callback {
			return bf, false
		}
		op, vts, ok := flattenParam(p.Type)
		if !ok {
			return bf, false
		}
		bf.decode = append(bf.decode, op)
		bf.paramTypes = append(bf.paramTypes, vts...)
	}

	if info.Result != nil {
		op, vt, ok := flattenResult(info.Result)
		if !ok {
			return bf, false
		}
		bf.encode = op
		bf.resultTypes = []api.ValueType{vt}
	}

	return bf, true
}

func flattenParam(t wit.Type) (decodeOp, []api.ValueType, bool) {
	i32 := []api.ValueType{api.ValueTypeI32}
	i64 := []api.ValueType{api.ValueTypeI64}

	switch t.(type) {
	case wit.Bool:
		return decBool, i32, true
	case wit.S8, wit.S16, wit.S32:
		return decS32, i32, true
	case wit.U8, wit.U16, wit.U32:
		return decU32, i32, true
	case wit.S64:
		return decS64, i64, true
	case wit.U64:
		return decU64, i64, true
	case wit.F32:
		return decF32, []api.ValueType{api.ValueTypeF32}, true
	case wit.F64:
		return decF64, []api.ValueType{api.ValueTypeF64}, true
	case wit.String:
		return decString, []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, true
	default:
		return 0, nil, false
	}
}

func flattenResult(t wit.Type) (encodeOp, api.ValueType, bool) {
	switch t.(type) {
	case wit.Bool:
		return encBool, api.ValueTypeI32, true
	case wit.S8, wit.S16, wit.S32:
		return encS32, api.ValueTypeI32, true
	case wit.U8, wit.U16, wit.U32:
		return encU32, api.ValueTypeI32, true
	case wit.S64:
		return encS64, api.ValueTypeI64, true
	case wit.U64:
		return encU64, api.ValueTypeI64, true
	case wit.F32:
		return encF32, api.ValueTypeF32, true
	case wit.F64:
		return encF64, api.ValueTypeF64, true
	default:
		return encNone, 0, false
	}
}

// handler builds the wazero-facing trampoline. mod is the calling guest
// module, so string parameters read from the guest's memory.
func (bf boundFunc) handler(reg *registry.Registry, namespace, name string) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		args := make([]any, 0, len(bf.decode))
		slot := 0

		for _, op := range bf.decode {
			switch op {
			case decBool:
				args = append(args, stack[slot] != 0)
			case decS32:
				args = append(args, int64(api.DecodeI32(stack[slot])))
			case decU32:
				args = append(args, uint64(uint32(stack[slot])))
			case decS64:
				args = append(args, int64(stack[slot]))
			case decU64:
				args = append(args, stack[slot])
			case decF32:
				args = append(args, float64(api.DecodeF32(stack[slot])))
			case decF64:
				args = append(args, api.DecodeF64(stack[slot]))
			case decString:
				ptr := uint32(stack[slot])
				length := uint32(stack[slot+1])
				slot++
				buf, ok := mod.Memory().Read(ptr, length)
				if !ok {
					panic(errors.InvalidInput(errors.PhaseUnmarshal, "string argument out of guest memory bounds"))
				}
				args = append(args, string(buf))
			}
			slot++
		}

		result, err := reg.Call(ctx, namespace, name, args)
		if err != nil {
			panic(err) // traps the guest with the bridged message
		}

		if pending, ok := result.(*future.Future); ok {
			result, err = pending.Await(ctx)
			if err != nil {
				panic(err)
			}
		}

		if bf.encode == encNone {
			return
		}

		switch bf.encode {
		case encBool:
			stack[0] = 0
			if result.(bool) {
				stack[0] = 1
			}
		case encS32:
			stack[0] = api.EncodeI32(int32(result.(int64)))
		case encU32:
			stack[0] = uint64(uint32(result.(uint64)))
		case encS64:
			stack[0] = api.EncodeI64(result.(int64))
		case encU64:
			stack[0] = result.(uint64)
		case encF32:
			stack[0] = api.EncodeF32(float32(result.(float64)))
		case encF64:
			stack[0] = api.EncodeF64(result.(float64))
		}
	}
}
