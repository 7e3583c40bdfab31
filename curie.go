//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import (
	"reflect"

	"github.com/fogfish/curie/v2"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

var curieType = reflect.TypeOf(curie.IRI(""))

// CurieCodec is a ready-made Codec for curie.IRI, the teacher's own
// compact-URI identifier type. curie.IRI shares its underlying kind with
// the bare string primitive, but - like any defined type carrying its own
// meaning - it does not take the Primitive Codec Table's fast path (see
// isPrimitive); it is an "external (resolved via child registry)"
// FieldSchema per spec §4.1, wired onto a Builder with WithCodec wherever
// a record carries an IRI-typed field.
func CurieCodec() Codec {
	return NewCodec(curieType,
		func(_ EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
			if v.Kind() == reflect.Ptr {
				v = v.Elem()
			}
			return vw.WriteString(string(v.Interface().(curie.IRI)))
		},
		func(_ DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
			s, err := vr.ReadString()
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(curie.IRI(s)))
			return nil
		},
	)
}
