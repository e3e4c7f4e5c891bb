package marshal

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/hostbridge/hostbridge/errors"
)

// Marshaller converts values in both directions across the boundary.
// It is stateless apart from the descriptor cache and safe for
// concurrent use.
type Marshaller struct {
	compiler *Compiler
}

func NewMarshaller() *Marshaller {
	return &Marshaller{compiler: NewCompiler()}
}

// Compile returns the cached descriptor for goType.
func (m *Marshaller) Compile(goType reflect.Type) (*CompiledType, error) {
	return m.compiler.Compile(goType)
}

// ToNative converts a host value into the native type described by ct.
func (m *Marshaller) ToNative(host any, ct *CompiledType) (reflect.Value, error) {
	return m.toNative(host, ct, nil)
}

func (m *Marshaller) toNative(host any, ct *CompiledType, path []string) (reflect.Value, error) {
	// A host value already in native form crosses directly. Strings are
	// exempt so malformed text never slips through unvalidated.
	if host != nil && ct.Kind != KindString && reflect.TypeOf(host) == ct.GoType {
		return reflect.ValueOf(host), nil
	}

	switch ct.Kind {
	case KindBool:
		b, ok := host.(bool)
		if !ok {
			return reflect.Value{}, mismatch(path, ct, host)
		}
		return reflect.ValueOf(b).Convert(ct.GoType), nil

	case KindS8, KindS16, KindS32, KindS64,
		KindU8, KindU16, KindU32, KindU64:
		return m.toNativeInt(host, ct, path)

	case KindF32, KindF64:
		return m.toNativeFloat(host, ct, path)

	case KindString:
		s, ok := host.(string)
		if !ok {
			return reflect.Value{}, mismatch(path, ct, host)
		}
		if !utf8.ValidString(s) {
			return reflect.Value{}, errors.InvalidEncoding(errors.PhaseUnmarshal, path, s)
		}
		return reflect.ValueOf(s).Convert(ct.GoType), nil

	case KindList:
		return m.toNativeList(host, ct, path)

	case KindRecord:
		return m.toNativeRecord(host, ct, path)

	case KindOption:
		if host == nil {
			return reflect.Zero(ct.GoType), nil
		}
		elem, err := m.toNative(host, ct.ElemType, path)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(ct.GoType.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil

	default:
		return reflect.Value{}, errors.Unsupported(errors.PhaseUnmarshal, ct.Kind.String())
	}
}

func (m *Marshaller) toNativeInt(host any, ct *CompiledType, path []string) (reflect.Value, error) {
	neg := false
	var mag uint64

	switch v := host.(type) {
	case int:
		neg, mag = splitInt(int64(v))
	case int8:
		neg, mag = splitInt(int64(v))
	case int16:
		neg, mag = splitInt(int64(v))
	case int32:
		neg, mag = splitInt(int64(v))
	case int64:
		neg, mag = splitInt(v)
	case uint:
		mag = uint64(v)
	case uint8:
		mag = uint64(v)
	case uint16:
		mag = uint64(v)
	case uint32:
		mag = uint64(v)
	case uint64:
		mag = v
	default:
		return reflect.Value{}, mismatch(path, ct, host)
	}

	if ct.Kind.IsUnsigned() {
		if neg {
			return reflect.Value{}, errors.Overflow(errors.PhaseUnmarshal, path, host, ct.GoType.String())
		}
		rv := reflect.New(ct.GoType).Elem()
		rv.SetUint(mag)
		if rv.Uint() != mag {
			return reflect.Value{}, errors.Overflow(errors.PhaseUnmarshal, path, host, ct.GoType.String())
		}
		return rv, nil
	}

	if !neg && mag > math.MaxInt64 {
		return reflect.Value{}, errors.Overflow(errors.PhaseUnmarshal, path, host, ct.GoType.String())
	}
	i := int64(mag)
	if neg {
		i = -i
	}
	rv := reflect.New(ct.GoType).Elem()
	rv.SetInt(i)
	if rv.Int() != i {
		return reflect.Value{}, errors.Overflow(errors.PhaseUnmarshal, path, host, ct.GoType.String())
	}
	return rv, nil
}

func splitInt(v int64) (neg bool, mag uint64) {
	if v < 0 {
		// Negate via unsigned space so MinInt64 stays representable.
		return true, -uint64(v)
	}
	return false, uint64(v)
}

func (m *Marshaller) toNativeFloat(host any, ct *CompiledType, path []string) (reflect.Value, error) {
	var f float64

	switch v := host.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	default:
		return reflect.Value{}, mismatch(path, ct, host)
	}

	rv := reflect.New(ct.GoType).Elem()
	rv.SetFloat(f)
	return rv, nil
}

func (m *Marshaller) toNativeList(host any, ct *CompiledType, path []string) (reflect.Value, error) {
	items, ok := host.([]any)
	if !ok {
		return reflect.Value{}, mismatch(path, ct, host)
	}

	out := reflect.MakeSlice(ct.GoType, len(items), len(items))
	for i, item := range items {
		elemPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", i))
		elem, err := m.toNative(item, ct.ElemType, elemPath)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func (m *Marshaller) toNativeRecord(host any, ct *CompiledType, path []string) (reflect.Value, error) {
	fields, ok := host.(map[string]any)
	if !ok {
		return reflect.Value{}, mismatch(path, ct, host)
	}

	out := reflect.New(ct.GoType).Elem()
	for _, f := range ct.Fields {
		fieldPath := append(append([]string{}, path...), f.HostName)
		hv, present := fields[f.HostName]
		if !present {
			if f.Type.Kind == KindOption {
				continue // absent optional field stays nil
			}
			return reflect.Value{}, errors.FieldMissing(errors.PhaseUnmarshal, path, f.HostName)
		}
		fv, err := m.toNative(hv, f.Type, fieldPath)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.GoIndex).Set(fv)
	}
	// Unknown extra fields are ignored.
	return out, nil
}

// ToHost converts a native value into its host representation.
func (m *Marshaller) ToHost(native any) (any, error) {
	if native == nil {
		return nil, nil
	}
	return m.toHost(reflect.ValueOf(native), nil)
}

func (m *Marshaller) toHost(v reflect.Value, path []string) (any, error) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		s := v.String()
		if !utf8.ValidString(s) {
			return nil, errors.InvalidEncoding(errors.PhaseMarshal, path, s)
		}
		return s, nil
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elemPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", i))
			hv, err := m.toHost(v.Index(i), elemPath)
			if err != nil {
				return nil, err
			}
			out[i] = hv
		}
		return out, nil
	case reflect.Struct:
		ct, err := m.compiler.Compile(v.Type())
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(ct.Fields))
		for _, f := range ct.Fields {
			fieldPath := append(append([]string{}, path...), f.HostName)
			hv, err := m.toHost(v.Field(f.GoIndex), fieldPath)
			if err != nil {
				return nil, err
			}
			out[f.HostName] = hv
		}
		return out, nil
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		return m.toHost(v.Elem(), path)
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
			Path(path...).
			GoType(v.Type().String()).
			Detail("value has no host representation").
			Build()
	}
}

func mismatch(path []string, ct *CompiledType, host any) *errors.Error {
	return errors.TypeMismatch(errors.PhaseUnmarshal, path, ct.GoType.String(), hostTypeName(host))
}

func hostTypeName(host any) string {
	if host == nil {
		return "nil"
	}
	return reflect.TypeOf(host).String()
}
