//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/fogfish/golem/pure/hseq"
)

// Field is the per-field descriptor of spec §3 FieldSchema[T].
type Field struct {
	DeclaredName    string
	WireName        string
	GoType          reflect.Type // as written on the struct (e.g. Option[string])
	Kind            Kind
	Elem            reflect.Type // element/value type for Optional, Sequence, Set, Map
	GenericParams   []reflect.Type
	Index           int
	HasDefault      bool
	Default         func() reflect.Value
	IsDiscriminator bool
}

// DuplicateWireNameError is returned by Of when two fields of the same
// record resolve to the same wire name.
type DuplicateWireNameError struct {
	Type reflect.Type
	Name string
}

func (e *DuplicateWireNameError) Error() string {
	return fmt.Sprintf("duplicate wire name %q on %s", e.Name, e.Type)
}

// UnsupportedFieldTypeError is returned by Of when a field's type cannot
// be classified into any type_descriptor kind (spec §4.1 derivation-time
// failure conditions).
type UnsupportedFieldTypeError struct {
	Type  reflect.Type
	Field string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("field %s of %s has unsupported type", e.Field, e.Type)
}

// Of derives the ordered Field Schema for record type T by enumerating
// its exported fields with hseq, exactly as the teacher's
// service/ddb/schema.go walks dynamodbav tags - here walking the bson
// tag instead, and producing a full type_descriptor rather than a
// projection-expression name.
func Of[T any]() ([]Field, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%T is not a record (struct) type", zero)
	}

	seq := hseq.New[T]()
	fields := make([]Field, 0, len(seq))
	seen := make(map[string]struct{}, len(seq))

	for _, h := range seq {
		sf := h.StructField
		if sf.PkgPath != "" {
			continue // unexported
		}

		wire, rest := parseTag(sf.Tag.Get("bson"), h.Name)
		if wire == "-" {
			continue
		}
		if _, dup := seen[wire]; dup {
			return nil, &DuplicateWireNameError{Type: t, Name: wire}
		}
		seen[wire] = struct{}{}

		f, err := classify(sf.Type)
		if err != nil {
			return nil, &UnsupportedFieldTypeError{Type: t, Field: h.Name}
		}

		f.DeclaredName = h.Name
		f.WireName = wire
		f.Index = h.ID

		if def, has, err := parseDefault(rest, sf.Type); err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", h.Name, t, err)
		} else if has {
			f.HasDefault = true
			f.Default = def
		}

		fields = append(fields, f)
	}

	return fields, nil
}

// OfType is the reflect.Type-only twin of Of, used when the record type
// is not known at compile time - a sealed variant arrives at
// RegisterSealed as an any value, so there is no T to hand hseq.New. It
// walks the struct's fields directly instead.
func OfType(t reflect.Type) ([]Field, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a record (struct) type", t)
	}

	fields := make([]Field, 0, t.NumField())
	seen := make(map[string]struct{}, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}

		wire, rest := parseTag(sf.Tag.Get("bson"), sf.Name)
		if wire == "-" {
			continue
		}
		if _, dup := seen[wire]; dup {
			return nil, &DuplicateWireNameError{Type: t, Name: wire}
		}
		seen[wire] = struct{}{}

		f, err := classify(sf.Type)
		if err != nil {
			return nil, &UnsupportedFieldTypeError{Type: t, Field: sf.Name}
		}

		f.DeclaredName = sf.Name
		f.WireName = wire
		f.Index = i

		if def, has, err := parseDefault(rest, sf.Type); err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", sf.Name, t, err)
		} else if has {
			f.HasDefault = true
			f.Default = def
		}

		fields = append(fields, f)
	}

	return fields, nil
}

// parseTag splits a `bson:"name,opt1,opt2"` tag into its wire name (or
// the Go field name with its first rune lower-cased, when no name is
// given in the tag) and the remaining comma-separated
// options, which may include `default=<literal>`.
func parseTag(tag, goName string) (name string, rest []string) {
	if tag == "" {
		return lowerFirst(goName), nil
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = lowerFirst(goName)
	}
	return name, parts[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Classify exposes the field-type classification rules for callers that
// need to descend into a container's element type (Sequence/Set/Map
// values can themselves be of any kind, including nested containers).
func Classify(t reflect.Type) (Field, error) {
	return classify(t)
}

func classify(t reflect.Type) (Field, error) {
	if elem, ok := isOption(t); ok {
		return Field{GoType: t, Kind: Optional, Elem: elem, GenericParams: []reflect.Type{elem}}, nil
	}

	if t.Kind() == reflect.Ptr {
		return Field{}, fmt.Errorf("pointer fields are not supported; use mongocodec.Option[%s]", t.Elem())
	}

	if isPrimitive(t) {
		return Field{GoType: t, Kind: Primitive}, nil
	}

	if isByteSlice(t) {
		return Field{GoType: t, Kind: Primitive}, nil
	}

	if t.Kind() == reflect.Slice {
		return Field{GoType: t, Kind: Sequence, Elem: t.Elem(), GenericParams: []reflect.Type{t.Elem()}}, nil
	}

	if elem, ok := isSet(t); ok {
		return Field{GoType: t, Kind: Set, Elem: elem, GenericParams: []reflect.Type{elem}}, nil
	}

	if t.Kind() == reflect.Map {
		if t.Key().Kind() != reflect.String {
			return Field{}, fmt.Errorf("map field must have string keys")
		}
		return Field{GoType: t, Kind: Map, Elem: t.Elem(), GenericParams: []reflect.Type{t.Key(), t.Elem()}}, nil
	}

	// Struct, interface (sealed), or any other external type: resolved
	// through the ambient registry at encode/decode time.
	return Field{GoType: t, Kind: ViaRegistry}, nil
}

// parseDefault turns a `default=<literal>` tag option into a thunk that
// re-evaluates the literal on every call (spec: "re-evaluated each
// decode; pure"). Supported literal kinds: string, bool, the signed
// integer kinds and the floating-point kinds; anything else (unsigned
// integers included) is a derivation error only if
// a default= option was actually present.
func parseDefault(opts []string, t reflect.Type) (func() reflect.Value, bool, error) {
	for _, o := range opts {
		if !strings.HasPrefix(o, "default=") {
			continue
		}
		lit := strings.TrimPrefix(o, "default=")

		switch t.Kind() {
		case reflect.String:
			return func() reflect.Value { return reflect.ValueOf(lit).Convert(t) }, true, nil
		case reflect.Bool:
			v, err := strconv.ParseBool(lit)
			if err != nil {
				return nil, false, err
			}
			return func() reflect.Value { return reflect.ValueOf(v) }, true, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, err := strconv.ParseInt(lit, 10, 64)
			if err != nil {
				return nil, false, err
			}
			return func() reflect.Value {
				rv := reflect.New(t).Elem()
				rv.SetInt(v)
				return rv
			}, true, nil
		case reflect.Float32, reflect.Float64:
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, false, err
			}
			return func() reflect.Value {
				rv := reflect.New(t).Elem()
				rv.SetFloat(v)
				return rv
			}, true, nil
		default:
			return nil, false, fmt.Errorf("default= is not supported for field type %s", t)
		}
	}
	return nil, false, nil
}
