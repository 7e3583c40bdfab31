//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

// Package schema derives Field Schema and Sealed Schema descriptors from
// Go struct and interface types via reflection, the same way the teacher
// walks dynamodbav-tagged struct fields with golem/pure/hseq - here the
// walked tag is bson and the descriptor drives codec generation instead
// of a DynamoDB projection expression.
package schema

import "reflect"

// Kind classifies a field's type_descriptor, per spec §3 FieldSchema.
// "nested record", "nested sealed", and "external" all collapse to
// ViaRegistry: in this implementation every one of them is resolved the
// same way, by looking the field's own type up in the ambient Registry.
type Kind int

const (
	// Primitive is a BSON scalar kind handled by the fast-path readers in
	// internal/traverse, without a registry round-trip.
	Primitive Kind = iota
	// Optional wraps another type_descriptor in mongocodec.Option[T].
	Optional
	// Sequence is an ordered container ([]T, not []byte).
	Sequence
	// Set is an unordered container (mapset.Set[T]).
	Set
	// Map is a string-keyed container (map[string]V).
	Map
	// ViaRegistry is any type resolved by a registry lookup: a nested
	// record, a nested sealed interface, or an external type with its own
	// registered Codec.
	ViaRegistry
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Optional:
		return "optional"
	case Sequence:
		return "sequence"
	case Set:
		return "set"
	case Map:
		return "map"
	case ViaRegistry:
		return "via-registry"
	default:
		return "unknown"
	}
}

// optionPkgPath is the import path of the package declaring the generic
// mongocodec.Option[T] struct, used to recognize Optional fields
// regardless of T. Set once, from the root package's init, to avoid an
// import cycle (internal/schema is imported BY the root package).
var optionPkgPath string

// RegisterOptionPkgPath tells the schema deriver which package path the
// Option[T] generic type lives in. Called once from the root package.
func RegisterOptionPkgPath(path string) { optionPkgPath = path }

// isOption reports whether t is an instantiation of mongocodec.Option[T],
// and if so returns T (the type of its exported Value field).
func isOption(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || t.PkgPath() != optionPkgPath {
		return nil, false
	}
	const prefix = "Option["
	if len(t.Name()) < len(prefix) || t.Name()[:len(prefix)] != prefix {
		return nil, false
	}
	if t.NumField() != 2 {
		return nil, false
	}
	valueField, ok := t.FieldByName("Value")
	if !ok {
		return nil, false
	}
	if _, ok := t.FieldByName("Valid"); !ok {
		return nil, false
	}
	return valueField.Type, true
}

// isByteSlice reports whether t is []byte, the Binary primitive - not a
// Sequence container.
func isByteSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isSet reports whether t is the mapset.Set[T] interface, and if so
// returns T, discovered by inspecting the Add(T) bool method's parameter
// type rather than parsing the generic instantiation's name.
func isSet(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Interface {
		return nil, false
	}
	m, ok := t.MethodByName("Add")
	if !ok {
		return nil, false
	}
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return nil, false
	}
	return m.Type.In(0), true
}
