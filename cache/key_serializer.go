package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// nilToken marks an absent value. Strings are always quoted, so no string
// parameter can render to it.
const nilToken = "<nil>"

// KeySerializer turns a statement name and its ordered parameters into the
// canonical string two structurally equal lookups share.
type KeySerializer interface {
	SerializeKey(statement string, params ...any) string
}

// reflectKeySerializer walks parameters with reflection. Every value carries
// its kind, strings are quoted, maps are written with sorted keys and
// pointers are followed, so equal inputs produce equal keys regardless of
// allocation and different inputs never share one. Functions and channels
// are written by address; Key.Validate rejects them before a lookup.
type reflectKeySerializer struct{}

// NewDefaultKeySerializer returns the reflection based serializer.
func NewDefaultKeySerializer() KeySerializer {
	return reflectKeySerializer{}
}

func (s reflectKeySerializer) SerializeKey(statement string, params ...any) string {
	if len(params) == 0 {
		return statement
	}

	var b strings.Builder
	b.WriteString(statement)
	for _, p := range params {
		b.WriteString(KeySeparator)
		s.write(&b, p)
	}
	return b.String()
}

func (s reflectKeySerializer) write(b *strings.Builder, v any) {
	if v == nil {
		b.WriteString(nilToken)
		return
	}
	s.writeValue(b, reflect.ValueOf(v))
}

func (s reflectKeySerializer) writeValue(b *strings.Builder, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Invalid:
		b.WriteString(nilToken)

	case reflect.Func, reflect.Chan:
		if rv.IsNil() {
			b.WriteString(nilToken)
			return
		}
		fmt.Fprintf(b, "%s:%#x", rv.Kind(), rv.Pointer())

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			b.WriteString(nilToken)
			return
		}
		s.writeValue(b, rv.Elem())

	case reflect.Slice:
		if rv.IsNil() {
			b.WriteString("slice:" + nilToken)
			return
		}
		s.writeList(b, "slice", rv)

	case reflect.Array:
		s.writeList(b, "array", rv)

	case reflect.Map:
		if rv.IsNil() {
			b.WriteString("map:" + nilToken)
			return
		}
		s.writeMap(b, rv)

	case reflect.Struct:
		if rv.CanInterface() {
			if tm, ok := rv.Interface().(encoding.TextMarshaler); ok {
				if text, err := tm.MarshalText(); err == nil {
					fmt.Fprintf(b, "text(%s):%s", rv.Type(), strconv.Quote(string(text)))
					return
				}
			}
		}
		s.writeStruct(b, rv)

	case reflect.String:
		b.WriteString("string:")
		b.WriteString(strconv.Quote(rv.String()))

	case reflect.Bool:
		b.WriteString("bool:")
		b.WriteString(strconv.FormatBool(rv.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(rv.Kind().String())
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(rv.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(rv.Kind().String())
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		b.WriteString(rv.Kind().String())
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()))

	case reflect.Complex64, reflect.Complex128:
		b.WriteString(rv.Kind().String())
		b.WriteByte(':')
		b.WriteString(strconv.FormatComplex(rv.Complex(), 'g', -1, rv.Type().Bits()))

	default:
		s.writeJSON(b, rv)
	}
}

func (s reflectKeySerializer) writeList(b *strings.Builder, kind string, rv reflect.Value) {
	fmt.Fprintf(b, "%s[%d]:{", kind, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		s.writeValue(b, rv.Index(i))
	}
	b.WriteByte('}')
}

func (s reflectKeySerializer) writeMap(b *strings.Builder, rv reflect.Value) {
	type pair struct{ k, v string }

	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		var kb, vb strings.Builder
		s.writeValue(&kb, iter.Key())
		s.writeValue(&vb, iter.Value())
		pairs = append(pairs, pair{k: kb.String(), v: vb.String()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	fmt.Fprintf(b, "map[%d]:{", len(pairs))
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	b.WriteByte('}')
}

func (s reflectKeySerializer) writeStruct(b *strings.Builder, rv reflect.Value) {
	rt := rv.Type()
	fmt.Fprintf(b, "struct(%s):{", rt)
	first := true
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(field.Name)
		b.WriteByte('=')
		s.writeValue(b, rv.Field(i))
	}
	b.WriteByte('}')
}

func (s reflectKeySerializer) writeJSON(b *strings.Builder, rv reflect.Value) {
	if !rv.CanInterface() {
		fmt.Fprintf(b, "opaque(%s)", rv.Type())
		return
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		fmt.Fprintf(b, "opaque(%s)", rv.Type())
		return
	}
	b.WriteString("json:")
	b.WriteString(strconv.Quote(string(data)))
}
