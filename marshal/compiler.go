package marshal

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/hostbridge/hostbridge/errors"
)

// CompiledType is a cached descriptor for one native Go type.
type CompiledType struct {
	GoType   reflect.Type
	ElemType *CompiledType
	Fields   []Field
	Kind     Kind
}

// Field describes one record field.
type Field struct {
	Type     *CompiledType
	Name     string
	HostName string
	GoIndex  int
}

// Compiler builds and caches type descriptors.
type Compiler struct {
	cache sync.Map // reflect.Type -> *CompiledType
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile returns the descriptor for goType, building it on first use.
func (c *Compiler) Compile(goType reflect.Type) (*CompiledType, error) {
	if goType == nil {
		return nil, errors.InvalidInput(errors.PhaseCompile, "Go type cannot be nil")
	}
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	ct, err := c.compile(goType, nil)
	if err != nil {
		return nil, err
	}

	c.cache.Store(goType, ct)
	return ct, nil
}

func (c *Compiler) compile(goType reflect.Type, path []string) (*CompiledType, error) {
	switch goType.Kind() {
	case reflect.Bool:
		return scalar(KindBool, goType), nil
	case reflect.Int8:
		return scalar(KindS8, goType), nil
	case reflect.Uint8:
		return scalar(KindU8, goType), nil
	case reflect.Int16:
		return scalar(KindS16, goType), nil
	case reflect.Uint16:
		return scalar(KindU16, goType), nil
	case reflect.Int32:
		return scalar(KindS32, goType), nil
	case reflect.Uint32:
		return scalar(KindU32, goType), nil
	case reflect.Int64, reflect.Int:
		return scalar(KindS64, goType), nil
	case reflect.Uint64, reflect.Uint:
		return scalar(KindU64, goType), nil
	case reflect.Float32:
		return scalar(KindF32, goType), nil
	case reflect.Float64:
		return scalar(KindF64, goType), nil
	case reflect.String:
		return scalar(KindString, goType), nil
	case reflect.Slice:
		return c.compileList(goType, path)
	case reflect.Struct:
		return c.compileRecord(goType, path)
	case reflect.Ptr:
		return c.compileOption(goType, path)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("type has no boundary representation").
			Build()
	}
}

func scalar(kind Kind, goType reflect.Type) *CompiledType {
	return &CompiledType{GoType: goType, Kind: kind}
}

func (c *Compiler) compileList(goType reflect.Type, path []string) (*CompiledType, error) {
	elemPath := append(append([]string{}, path...), "[elem]")
	elemType, err := c.compile(goType.Elem(), elemPath)
	if err != nil {
		return nil, err
	}

	return &CompiledType{
		GoType:   goType,
		ElemType: elemType,
		Kind:     KindList,
	}, nil
}

func (c *Compiler) compileRecord(goType reflect.Type, path []string) (*CompiledType, error) {
	fields := make([]Field, 0, goType.NumField())

	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		if !f.IsExported() {
			continue
		}

		hostName := KebabCase(f.Name)
		if tag := f.Tag.Get("host"); tag != "" {
			if tag == "-" {
				continue
			}
			hostName = tag
		}

		fieldPath := append(append([]string{}, path...), hostName)
		fieldType, err := c.compile(f.Type, fieldPath)
		if err != nil {
			return nil, err
		}

		fields = append(fields, Field{
			Type:     fieldType,
			Name:     f.Name,
			HostName: hostName,
			GoIndex:  i,
		})
	}

	return &CompiledType{
		GoType: goType,
		Fields: fields,
		Kind:   KindRecord,
	}, nil
}

func (c *Compiler) compileOption(goType reflect.Type, path []string) (*CompiledType, error) {
	elemPath := append(append([]string{}, path...), "[some]")
	elemType, err := c.compile(goType.Elem(), elemPath)
	if err != nil {
		return nil, err
	}

	return &CompiledType{
		GoType:   goType,
		ElemType: elemType,
		Kind:     KindOption,
	}, nil
}

// KebabCase converts PascalCase to kebab-case.
// Handles acronyms: GetHTTPURL -> get-http-url
func KebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('-')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1 // -1 because loop will increment
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
