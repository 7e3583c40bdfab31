//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/bsonrw"

	"github.com/fogfish/mongocodec/internal/traverse"
)

// Go has no enum kind for reflection to discover: a "finite flat
// enumeration" here is any comparable Go type (a defined int or string
// type is typical) whose variant set the caller supplies explicitly at
// registration time, rather than one this library derives by walking
// struct fields. ByName, ByOrdinal, and ByProjection each build a
// CodecProvider matching exactly that one type, per spec §4.3.

// ByName represents each variant of T as the UTF-8 string paired with it
// in names. Decoding an unlisted string fails with UnknownEnumValue.
func ByName[T comparable](names map[T]string) CodecProvider {
	typ := reflect.TypeOf(*new(T))
	byValue := make(map[T]string, len(names))
	byName := make(map[string]T, len(names))
	for v, n := range names {
		byValue[v] = n
		byName[n] = v
	}

	encode := func(_ EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
		val := v.Interface().(T)
		name, ok := byValue[val]
		if !ok {
			return &UnknownEnumValueError{Enum: typ, Name: fmt.Sprintf("%v", val)}
		}
		return vw.WriteString(name)
	}

	decode := func(_ DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
		name, err := vr.ReadString()
		if err != nil {
			return err
		}
		val, ok := byName[name]
		if !ok {
			return &UnknownEnumValueError{Enum: typ, Name: name}
		}
		v.Set(reflect.ValueOf(val))
		return nil
	}

	return matchType(typ, encode, decode)
}

// ByOrdinal represents each variant of T as its int32 index within
// variants. Decoding an out-of-range index fails with UnknownEnumOrdinal.
func ByOrdinal[T comparable](variants []T) CodecProvider {
	typ := reflect.TypeOf(*new(T))
	indexOf := make(map[T]int32, len(variants))
	for i, v := range variants {
		indexOf[v] = int32(i)
	}

	encode := func(_ EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
		val := v.Interface().(T)
		idx, ok := indexOf[val]
		if !ok {
			return &UnknownEnumValueError{Enum: typ, Name: fmt.Sprintf("%v", val)}
		}
		return vw.WriteInt32(idx)
	}

	decode := func(_ DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
		idx, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		if idx < 0 || int(idx) >= len(variants) {
			return &UnknownEnumOrdinalError{Enum: typ, Ordinal: idx}
		}
		v.Set(reflect.ValueOf(variants[idx]))
		return nil
	}

	return matchType(typ, encode, decode)
}

// ByProjection represents each variant of T as a primitive derived from
// it by project (a struct field accessor or a method value), and decodes
// by reverse lookup across all variants projected at construction time.
func ByProjection[T any, P comparable](variants []T, project func(T) P) CodecProvider {
	typ := reflect.TypeOf(*new(T))
	var zeroP P
	projType := reflect.TypeOf(zeroP)

	byProjection := make(map[P]T, len(variants))
	for _, v := range variants {
		byProjection[project(v)] = v
	}

	encode := func(_ EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
		val := v.Interface().(T)
		p := project(val)
		if _, ok := byProjection[p]; !ok {
			return &UnknownEnumValueError{Enum: typ, Name: fmt.Sprintf("%v", p)}
		}
		return traverse.WritePrimitive(vw, reflect.ValueOf(p))
	}

	decode := func(_ DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
		pv, err := traverse.ReadPrimitive(vr, projType)
		if err != nil {
			return wrapTraverseError(err)
		}
		val, ok := byProjection[pv.Interface().(P)]
		if !ok {
			return &UnknownEnumValueError{Enum: typ, Name: fmt.Sprintf("%v", pv.Interface())}
		}
		v.Set(reflect.ValueOf(val))
		return nil
	}

	return matchType(typ, encode, decode)
}

func matchType(
	typ reflect.Type,
	encode func(EncodeContext, bsonrw.ValueWriter, reflect.Value) error,
	decode func(DecodeContext, bsonrw.ValueReader, reflect.Value) error,
) CodecProvider {
	codec := NewCodec(typ, encode, func(ctx DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
		// Unmarshal and the record codec's children hand a decoder a
		// pointer to the value to fill.
		if v.Kind() == reflect.Ptr && v.Type().Elem() == typ {
			v = v.Elem()
		}
		return decode(ctx, vr, v)
	})
	return CodecProviderFunc(func(t reflect.Type, ambient Registry) (Codec, bool) {
		if t != typ {
			return nil, false
		}
		return codec, true
	})
}
