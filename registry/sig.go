package registry

import (
	"sort"

	"go.bytecodealliance.org/wit"

	"github.com/hostbridge/hostbridge/marshal"
)

// ParamInfo describes one parameter of a registered function.
// Callback parameters have no value type; Type is nil and Callback set.
type ParamInfo struct {
	Type     wit.Type
	Callback bool
}

// FuncInfo is the host-facing description of a registered function.
type FuncInfo struct {
	Namespace string
	Name      string
	Params    []ParamInfo
	Result    wit.Type // nil when the function returns no value
	CanFail   bool
	Async     bool
}

// Functions describes every function registered under namespace,
// sorted by name.
func (r *Registry) Functions(namespace string) []FuncInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FuncInfo, 0, len(r.funcs[namespace]))
	for name, f := range r.funcs[namespace] {
		info := FuncInfo{
			Namespace: namespace,
			Name:      name,
			CanFail:   f.hasErr,
			Async:     f.async,
		}
		for _, p := range f.params {
			if p.isCallback() {
				info.Params = append(info.Params, ParamInfo{Callback: true})
			} else {
				info.Params = append(info.Params, ParamInfo{Type: WitType(p.ct)})
			}
		}
		if f.result != nil {
			info.Result = WitType(f.result)
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WitType maps a compiled native descriptor onto the WIT type vocabulary.
func WitType(ct *marshal.CompiledType) wit.Type {
	switch ct.Kind {
	case marshal.KindBool:
		return wit.Bool{}
	case marshal.KindS8:
		return wit.S8{}
	case marshal.KindU8:
		return wit.U8{}
	case marshal.KindS16:
		return wit.S16{}
	case marshal.KindU16:
		return wit.U16{}
	case marshal.KindS32:
		return wit.S32{}
	case marshal.KindU32:
		return wit.U32{}
	case marshal.KindS64:
		return wit.S64{}
	case marshal.KindU64:
		return wit.U64{}
	case marshal.KindF32:
		return wit.F32{}
	case marshal.KindF64:
		return wit.F64{}
	case marshal.KindString:
		return wit.String{}
	case marshal.KindList:
		return &wit.TypeDef{Kind: &wit.List{Type: WitType(ct.ElemType)}}
	case marshal.KindOption:
		return &wit.TypeDef{Kind: &wit.Option{Type: WitType(ct.ElemType)}}
	case marshal.KindRecord:
		fields := make([]wit.Field, len(ct.Fields))
		for i, f := range ct.Fields {
			fields[i] = wit.Field{Name: f.HostName, Type: WitType(f.Type)}
		}
		return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
	default:
		return nil
	}
}
