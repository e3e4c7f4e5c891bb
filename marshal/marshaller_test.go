package marshal

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hostbridge/hostbridge/errors"
)

type person struct {
	Name string
	Age  uint32
}

type tagged struct {
	FullName string `host:"full-name"`
	Internal string `host:"-"`
	Nickname *string
}

func mustCompile(t *testing.T, m *Marshaller, goType reflect.Type) *CompiledType {
	t.Helper()
	ct, err := m.Compile(goType)
	if err != nil {
		t.Fatalf("Compile(%v) failed: %v", goType, err)
	}
	return ct
}

func TestCompile_Kinds(t *testing.T) {
	m := NewMarshaller()

	tests := []struct {
		goType reflect.Type
		kind   Kind
	}{
		{reflect.TypeOf(false), KindBool},
		{reflect.TypeOf(int8(0)), KindS8},
		{reflect.TypeOf(int32(0)), KindS32},
		{reflect.TypeOf(int(0)), KindS64},
		{reflect.TypeOf(uint32(0)), KindU32},
		{reflect.TypeOf(uint64(0)), KindU64},
		{reflect.TypeOf(float32(0)), KindF32},
		{reflect.TypeOf(float64(0)), KindF64},
		{reflect.TypeOf(""), KindString},
		{reflect.TypeOf([]int32{}), KindList},
		{reflect.TypeOf(person{}), KindRecord},
		{reflect.TypeOf((*int32)(nil)), KindOption},
	}

	for _, tt := range tests {
		ct := mustCompile(t, m, tt.goType)
		if ct.Kind != tt.kind {
			t.Errorf("Compile(%v).Kind = %v, want %v", tt.goType, ct.Kind, tt.kind)
		}
	}
}

func TestCompile_RecordFieldNames(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf(tagged{}))

	if len(ct.Fields) != 2 {
		t.Fatalf("expected 2 fields (tag \"-\" skipped), got %d", len(ct.Fields))
	}
	if ct.Fields[0].HostName != "full-name" {
		t.Errorf("tag override: got %q", ct.Fields[0].HostName)
	}
	if ct.Fields[1].HostName != "nickname" {
		t.Errorf("kebab default: got %q", ct.Fields[1].HostName)
	}
}

func TestCompile_Unsupported(t *testing.T) {
	m := NewMarshaller()
	_, err := m.Compile(reflect.TypeOf(map[int]int{}))
	if err == nil {
		t.Fatal("expected error for map type")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindUnsupported}) {
		t.Errorf("wrong error: %v", err)
	}
}

func TestToNative_Scalars(t *testing.T) {
	m := NewMarshaller()

	s32 := mustCompile(t, m, reflect.TypeOf(int32(0)))
	v, err := m.ToNative(int64(41), s32)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface() != int32(41) {
		t.Errorf("got %v", v.Interface())
	}

	// Wrong runtime type fails.
	if _, err := m.ToNative("41", s32); err == nil {
		t.Error("expected type mismatch for string into s32")
	}

	// Out of range fails with overflow.
	_, err = m.ToNative(int64(1<<40), s32)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnmarshal, Kind: errors.KindOverflow}) {
		t.Errorf("expected overflow, got %v", err)
	}

	u32 := mustCompile(t, m, reflect.TypeOf(uint32(0)))
	_, err = m.ToNative(int64(-1), u32)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnmarshal, Kind: errors.KindOverflow}) {
		t.Errorf("expected overflow for negative into u32, got %v", err)
	}

	f64 := mustCompile(t, m, reflect.TypeOf(float64(0)))
	v, err = m.ToNative(int64(3), f64)
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface() != float64(3) {
		t.Errorf("got %v", v.Interface())
	}
}

func TestToNative_StringEncoding(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf(""))

	if _, err := m.ToNative("hello", ct); err != nil {
		t.Fatal(err)
	}

	_, err := m.ToNative(string([]byte{0xff, 0xfe}), ct)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnmarshal, Kind: errors.KindInvalidEncoding}) {
		t.Errorf("expected invalid_encoding, got %v", err)
	}
}

func TestToNative_ListOrderAndIndex(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf([]int32{}))

	v, err := m.ToNative([]any{int64(1), int64(2), int64(3)}, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v.Interface(), []int32{1, 2, 3}) {
		t.Errorf("got %v", v.Interface())
	}

	// First failing element reports its index.
	_, err = m.ToNative([]any{int64(1), "two", int64(3)}, ct)
	if err == nil {
		t.Fatal("expected element conversion failure")
	}
	if !strings.Contains(err.Error(), "[1]") {
		t.Errorf("error should name index 1: %v", err)
	}
}

func TestToNative_Record(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf(person{}))

	v, err := m.ToNative(map[string]any{
		"name":  "Ada",
		"age":   int64(36),
		"extra": "ignored",
	}, ct)
	if err != nil {
		t.Fatal(err)
	}
	got := v.Interface().(person)
	if got.Name != "Ada" || got.Age != 36 {
		t.Errorf("got %+v", got)
	}

	// Missing required field.
	_, err = m.ToNative(map[string]any{"name": "Ada"}, ct)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnmarshal, Kind: errors.KindFieldMissing}) {
		t.Errorf("expected field_missing, got %v", err)
	}
}

func TestToNative_RecordAbsentOptionalField(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf(tagged{}))

	v, err := m.ToNative(map[string]any{"full-name": "Ada Lovelace"}, ct)
	if err != nil {
		t.Fatal(err)
	}
	got := v.Interface().(tagged)
	if got.Nickname != nil {
		t.Errorf("absent optional should stay nil, got %v", *got.Nickname)
	}
}

func TestToNative_Option(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf((*int32)(nil)))

	v, err := m.ToNative(nil, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNil() {
		t.Error("host nil should map to absent")
	}

	v, err = m.ToNative(int64(7), ct)
	if err != nil {
		t.Fatal(err)
	}
	if v.IsNil() || *v.Interface().(*int32) != 7 {
		t.Errorf("got %v", v.Interface())
	}
}

func TestToHost_Scalars(t *testing.T) {
	m := NewMarshaller()

	tests := []struct {
		native any
		want   any
	}{
		{int32(-5), int64(-5)},
		{uint16(9), uint64(9)},
		{float32(1.5), float64(1.5)},
		{true, true},
		{"hi", "hi"},
	}

	for _, tt := range tests {
		got, err := m.ToHost(tt.native)
		if err != nil {
			t.Fatalf("ToHost(%v): %v", tt.native, err)
		}
		if got != tt.want {
			t.Errorf("ToHost(%v) = %v (%T), want %v (%T)", tt.native, got, got, tt.want, tt.want)
		}
	}
}

func TestToHost_Optional(t *testing.T) {
	m := NewMarshaller()

	got, err := m.ToHost((*int32)(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("nil pointer should map to host nil, got %v", got)
	}

	n := int32(12)
	got, err = m.ToHost(&n)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(12) {
		t.Errorf("got %v", got)
	}
}

func TestRoundTrip_Record(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf(person{}))

	orig := person{Name: "Grace", Age: 45}
	hv, err := m.ToHost(orig)
	if err != nil {
		t.Fatal(err)
	}

	fields, ok := hv.(map[string]any)
	if !ok {
		t.Fatalf("record should cross as map, got %T", hv)
	}
	if fields["name"] != "Grace" || fields["age"] != uint64(45) {
		t.Errorf("host fields = %v", fields)
	}

	back, err := m.ToNative(hv, ct)
	if err != nil {
		t.Fatal(err)
	}
	if back.Interface().(person) != orig {
		t.Errorf("round trip mismatch: %+v != %+v", back.Interface(), orig)
	}
}

func TestRoundTrip_ListOfRecords(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf([]person{}))

	orig := []person{{Name: "a", Age: 1}, {Name: "b", Age: 2}}
	hv, err := m.ToHost(orig)
	if err != nil {
		t.Fatal(err)
	}

	back, err := m.ToNative(hv, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Interface(), orig) {
		t.Errorf("round trip mismatch: %v != %v", back.Interface(), orig)
	}
}

func TestToNative_NativePassthrough(t *testing.T) {
	m := NewMarshaller()
	ct := mustCompile(t, m, reflect.TypeOf([]int32{}))

	native := []int32{4, 5}
	v, err := m.ToNative(native, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v.Interface(), native) {
		t.Errorf("got %v", v.Interface())
	}
}
