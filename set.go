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
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newSetOf builds an empty mapset.Set[T] for one of the primitive element
// types the Primitive Codec Table knows about, and returns it boxed as a
// reflect.Value of the mapset.Set[T] interface type.
//
// Go generics cannot be instantiated through reflection: there is no way
// to call mapset.NewThreadUnsafeSet[T]() for a T discovered only at
// runtime. The source ecosystem this spec was distilled from resolves the
// analogous problem at compile time, once per instantiation site; here,
// with derivation happening at Register[T] time instead, the table below
// is the boundary of what a Set field can hold: ObjectID, time.Time,
// uuid.UUID, and the string, bool, int, int32, int64 and float64 kinds.
// Other primitive element types (int8, int16, the unsigned kinds,
// float32, Decimal128, big.Int, []byte) are not in it.
func newSetOf(elem reflect.Type) (reflect.Value, error) {
	switch elem {
	case reflect.TypeOf(primitive.ObjectID{}):
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[primitive.ObjectID]()), nil
	case reflect.TypeOf(time.Time{}):
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[time.Time]()), nil
	case reflect.TypeOf(uuid.UUID{}):
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[uuid.UUID]()), nil
	}

	switch elem.Kind() {
	case reflect.String:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[string]()), nil
	case reflect.Bool:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[bool]()), nil
	case reflect.Int:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[int]()), nil
	case reflect.Int32:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[int32]()), nil
	case reflect.Int64:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[int64]()), nil
	case reflect.Float64:
		return reflect.ValueOf(mapset.NewThreadUnsafeSet[float64]()), nil
	default:
		return reflect.Value{}, fmt.Errorf("mongocodec: Set[%s] fields are not supported; element type must be a primitive", elem)
	}
}
