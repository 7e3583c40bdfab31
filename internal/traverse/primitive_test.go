//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package traverse_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/fogfish/it/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fogfish/mongocodec/internal/traverse"
)

// writeOne writes v as the sole element "v" of a single-field document and
// returns the wire bytes - the shape every primitive travels in once it is
// sitting inside a record field.
func writeOne(t *testing.T, v reflect.Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	vw := bsonrw.NewBSONValueWriter(&buf)
	dw, err := vw.WriteDocument()
	it.Then(t).Should(it.Nil(err))
	ew, err := dw.WriteDocumentElement("v")
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Nil(traverse.WritePrimitive(ew, v)))
	it.Then(t).Should(it.Nil(dw.WriteDocumentEnd()))
	return buf.Bytes()
}

func readOne(t *testing.T, data []byte, typ reflect.Type) reflect.Value {
	t.Helper()
	vr := bsonrw.NewBSONDocumentReader(data)
	dr, err := vr.ReadDocument()
	it.Then(t).Should(it.Nil(err))
	_, er, err := dr.ReadElement()
	it.Then(t).Should(it.Nil(err))
	val, err := traverse.ReadPrimitive(er, typ)
	it.Then(t).Should(it.Nil(err))
	return val
}

func TestPrimitiveStringRoundTrip(t *testing.T) {
	in := reflect.ValueOf("hello")
	data := writeOne(t, in)
	out := readOne(t, data, in.Type())
	it.Then(t).Should(it.Equal(out.String(), "hello"))
}

func TestPrimitiveInt32RoundTrip(t *testing.T) {
	in := reflect.ValueOf(int32(42))
	data := writeOne(t, in)
	out := readOne(t, data, in.Type())
	it.Then(t).Should(it.Equal(out.Interface().(int32), int32(42)))
}

func TestPrimitiveWideningInt64ToInt(t *testing.T) {
	in := reflect.ValueOf(int64(7))
	data := writeOne(t, in)
	out := readOne(t, data, reflect.TypeOf(int(0)))
	it.Then(t).Should(it.Equal(out.Interface().(int), 7))
}

func TestPrimitiveObjectIDRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	data := writeOne(t, reflect.ValueOf(id))
	out := readOne(t, data, reflect.TypeOf(primitive.ObjectID{}))
	it.Then(t).Should(it.Equal(out.Interface().(primitive.ObjectID), id))
}

func TestPrimitiveDateTimeRoundTrip(t *testing.T) {
	in := time.Now().UTC().Truncate(time.Millisecond)
	data := writeOne(t, reflect.ValueOf(in))
	out := readOne(t, data, reflect.TypeOf(time.Time{}))
	it.Then(t).Should(it.True(out.Interface().(time.Time).Equal(in)))
}

func TestPrimitiveUUIDRoundTripsAsString(t *testing.T) {
	id := uuid.New()
	data := writeOne(t, reflect.ValueOf(id))
	out := readOne(t, data, reflect.TypeOf(uuid.UUID{}))
	it.Then(t).Should(it.Equal(out.Interface().(uuid.UUID), id))
}

func TestPrimitiveInvalidUUIDRejected(t *testing.T) {
	var buf bytes.Buffer
	vw := bsonrw.NewBSONValueWriter(&buf)
	dw, err := vw.WriteDocument()
	it.Then(t).Should(it.Nil(err))
	ew, err := dw.WriteDocumentElement("v")
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Nil(ew.WriteString("not-a-uuid")))
	it.Then(t).Should(it.Nil(dw.WriteDocumentEnd()))

	vr := bsonrw.NewBSONDocumentReader(buf.Bytes())
	dr, err := vr.ReadDocument()
	it.Then(t).Should(it.Nil(err))
	_, er, err := dr.ReadElement()
	it.Then(t).Should(it.Nil(err))

	_, err = traverse.ReadPrimitive(er, reflect.TypeOf(uuid.UUID{}))
	it.Then(t).ShouldNot(it.Nil(err))
	_, ok := err.(*traverse.InvalidUUIDError)
	it.Then(t).Should(it.True(ok))
}
