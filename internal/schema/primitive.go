//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package schema

import (
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	objectIDType   = reflect.TypeOf(primitive.ObjectID{})
	decimal128Type = reflect.TypeOf(primitive.Decimal128{})
	dateTimeType   = reflect.TypeOf(time.Time{})
	bigIntType     = reflect.TypeOf(big.Int{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
)

// isPrimitive reports whether t is one of the BSON scalar kinds the
// Primitive Codec Table provides directly (spec §6 primitive type
// mapping), and therefore does not need registry indirection.
//
// The Kind() branch is restricted to t.PkgPath() == "" - the predeclared
// types (string, int, float64, ...) - rather than any type sharing that
// underlying kind. A defined type such as `type Weekday string` or an
// imported one such as curie.IRI carries its own encode/decode meaning
// and must be resolved through the registry (as an enum provider or an
// explicit Codec) instead of silently taking the bare-string fast path.
func isPrimitive(t reflect.Type) bool {
	switch t {
	case objectIDType, decimal128Type, dateTimeType, bigIntType, uuidType:
		return true
	}

	if t.PkgPath() != "" {
		return false
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
