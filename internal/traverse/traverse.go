//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

// Package traverse implements the Traversal Runtime of spec §3/§5: the
// primitive fast path and container recursion that every Record and
// Sealed codec shares, built directly atop go.mongodb.org/mongo-driver's
// bsonrw.ValueWriter/ValueReader - the wire-level collaborator the
// specification treats as given, not derived.
//
// traverse never imports the root package. Anything that needs the
// ambient Registry (a nested record, a nested sealed interface, an
// external type) is delegated back to the caller through the EncodeChild
// / DecodeChild callbacks, which close over the registry at the call
// site.
package traverse

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/fogfish/mongocodec/internal/schema"
)

// EncodeChild encodes v (of static type t) into vw via whatever Codec the
// ambient Registry resolves for t.
type EncodeChild func(vw bsonrw.ValueWriter, t reflect.Type, v reflect.Value) error

// DecodeChild decodes vr into a new value of type t via whatever Codec
// the ambient Registry resolves for t, and returns that value.
type DecodeChild func(t reflect.Type, vr bsonrw.ValueReader) (reflect.Value, error)

// NewSet constructs an empty, addressable mapset.Set[T] instance for the
// given element type, returned as a reflect.Value implementing the
// interface. Supplied by the root package, which alone can invoke
// mapset's generic constructors for the element types it supports.
type NewSet func(elem reflect.Type) (reflect.Value, error)

// WriteField writes the already-extracted field value v through vw,
// dispatching on f.Kind per spec §4.1 / §6.
func WriteField(vw bsonrw.ValueWriter, f schema.Field, v reflect.Value, child EncodeChild) error {
	switch f.Kind {
	case schema.Primitive:
		return WritePrimitive(vw, v)

	case schema.Optional:
		val, ok := readOptional(v)
		if !ok {
			return vw.WriteNull()
		}
		return writeTyped(vw, f.Elem, val, child)

	case schema.Sequence:
		return writeSequence(vw, f.Elem, v, child)

	case schema.Set:
		return writeSet(vw, f.Elem, v, child)

	case schema.Map:
		return writeMap(vw, f.Elem, v, child)

	case schema.ViaRegistry:
		return child(vw, f.GoType, v)

	default:
		return fmt.Errorf("traverse: unknown field kind %v", f.Kind)
	}
}

// ReadField reads a value of the shape described by f out of vr, the
// inverse of WriteField.
func ReadField(vr bsonrw.ValueReader, f schema.Field, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	switch f.Kind {
	case schema.Primitive:
		return ReadPrimitive(vr, f.GoType)

	case schema.Optional:
		return readOptionalValue(vr, f, child, newSet)

	case schema.Sequence:
		return readSequence(vr, f.Elem, f.GoType, child, newSet)

	case schema.Set:
		return readSet(vr, f.Elem, f.GoType, child, newSet)

	case schema.Map:
		return readMap(vr, f.Elem, f.GoType, child, newSet)

	case schema.ViaRegistry:
		return child(f.GoType, vr)

	default:
		return reflect.Value{}, fmt.Errorf("traverse: unknown field kind %v", f.Kind)
	}
}

// writeTyped classifies t afresh and writes v through vw - used for the
// element type inside an Optional, since Elem can itself be a primitive,
// a container, or a registry-resolved type.
func writeTyped(vw bsonrw.ValueWriter, t reflect.Type, v reflect.Value, child EncodeChild) error {
	f, err := schema.Classify(t)
	if err != nil {
		return err
	}
	f.GoType = t
	return WriteField(vw, f, v, child)
}

func readTyped(vr bsonrw.ValueReader, t reflect.Type, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	f, err := schema.Classify(t)
	if err != nil {
		return reflect.Value{}, err
	}
	f.GoType = t
	return ReadField(vr, f, child, newSet)
}

// IsOptionAbsent reports whether an Optional field's value is the "none"
// case, letting a caller apply a NoneHandling policy (omit vs. null)
// before calling WriteField.
func IsOptionAbsent(v reflect.Value) bool {
	_, ok := readOptional(v)
	return !ok
}

func readOptional(v reflect.Value) (reflect.Value, bool) {
	valid := v.FieldByName("Valid")
	if !valid.IsValid() || !valid.Bool() {
		return reflect.Value{}, false
	}
	return v.FieldByName("Value"), true
}

func readOptionalValue(vr bsonrw.ValueReader, f schema.Field, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	optType := f.GoType
	if vr.Type() == bsontype.Null {
		if err := vr.ReadNull(); err != nil {
			return reflect.Value{}, err
		}
		return zeroOption(optType), nil
	}

	val, err := readTyped(vr, f.Elem, child, newSet)
	if err != nil {
		return reflect.Value{}, err
	}
	return someOption(optType, val), nil
}

func zeroOption(optType reflect.Type) reflect.Value {
	return reflect.New(optType).Elem()
}

func someOption(optType reflect.Type, val reflect.Value) reflect.Value {
	out := reflect.New(optType).Elem()
	out.FieldByName("Value").Set(val)
	out.FieldByName("Valid").SetBool(true)
	return out
}

func writeSequence(vw bsonrw.ValueWriter, elem reflect.Type, v reflect.Value, child EncodeChild) error {
	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		ew, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := writeTyped(ew, elem, v.Index(i), child); err != nil {
			return err
		}
	}
	return aw.WriteArrayEnd()
}

func readSequence(vr bsonrw.ValueReader, elem, sliceType reflect.Type, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	ar, err := vr.ReadArray()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(sliceType, 0, 0)
	for {
		er, err := ar.ReadValue()
		if err == bsonrw.ErrEOA {
			break
		}
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := readTyped(er, elem, child, newSet)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, val)
	}
	return out, nil
}

func writeSet(vw bsonrw.ValueWriter, elem reflect.Type, v reflect.Value, child EncodeChild) error {
	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	toSlice := v.MethodByName("ToSlice").Call(nil)[0]
	for i := 0; i < toSlice.Len(); i++ {
		ew, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := writeTyped(ew, elem, toSlice.Index(i), child); err != nil {
			return err
		}
	}
	return aw.WriteArrayEnd()
}

func readSet(vr bsonrw.ValueReader, elem, setType reflect.Type, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	out, err := newSet(elem)
	if err != nil {
		return reflect.Value{}, err
	}

	ar, err := vr.ReadArray()
	if err != nil {
		return reflect.Value{}, err
	}
	add := out.MethodByName("Add")
	for {
		er, err := ar.ReadValue()
		if err == bsonrw.ErrEOA {
			break
		}
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := readTyped(er, elem, child, newSet)
		if err != nil {
			return reflect.Value{}, err
		}
		add.Call([]reflect.Value{val})
	}
	return out, nil
}

func writeMap(vw bsonrw.ValueWriter, elem reflect.Type, v reflect.Value, child EncodeChild) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	iter := v.MapRange()
	for iter.Next() {
		ew, err := dw.WriteDocumentElement(iter.Key().String())
		if err != nil {
			return err
		}
		if err := writeTyped(ew, elem, iter.Value(), child); err != nil {
			return err
		}
	}
	return dw.WriteDocumentEnd()
}

func readMap(vr bsonrw.ValueReader, elem, mapType reflect.Type, child DecodeChild, newSet NewSet) (reflect.Value, error) {
	dr, err := vr.ReadDocument()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMap(mapType)
	for {
		key, er, err := dr.ReadElement()
		if err == bsonrw.ErrEOD {
			break
		}
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := readTyped(er, elem, child, newSet)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(key), val)
	}
	return out, nil
}
