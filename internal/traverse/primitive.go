//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package traverse

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	objectIDType   = reflect.TypeOf(primitive.ObjectID{})
	decimal128Type = reflect.TypeOf(primitive.Decimal128{})
	dateTimeType   = reflect.TypeOf(time.Time{})
	bigIntType     = reflect.TypeOf(big.Int{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
)

// WritePrimitive writes v, one of the scalar kinds isPrimitive recognizes,
// through vw using the Primitive Codec Table of spec §6. This is the fast
// path: no registry lookup, no intermediate document.
func WritePrimitive(vw bsonrw.ValueWriter, v reflect.Value) error {
	t := v.Type()

	switch t {
	case objectIDType:
		return vw.WriteObjectID(v.Interface().(primitive.ObjectID))
	case decimal128Type:
		return vw.WriteDecimal128(v.Interface().(primitive.Decimal128))
	case dateTimeType:
		tm := v.Interface().(time.Time)
		return vw.WriteDateTime(tm.UnixMilli())
	case bigIntType:
		b := v.Interface().(big.Int)
		return vw.WriteString(b.String())
	case uuidType:
		id := v.Interface().(uuid.UUID)
		return vw.WriteString(id.String())
	}

	switch t.Kind() {
	case reflect.Bool:
		return vw.WriteBoolean(v.Bool())
	case reflect.String:
		return vw.WriteString(v.String())
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return vw.WriteInt32(int32(v.Int()))
	case reflect.Int, reflect.Int64:
		return vw.WriteInt64(v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return vw.WriteInt32(int32(v.Uint()))
	case reflect.Uint, reflect.Uint64:
		return vw.WriteInt64(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return vw.WriteDouble(v.Float())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return vw.WriteBinary(v.Bytes())
		}
	}

	return fmt.Errorf("traverse: %s is not a primitive type", t)
}

// ReadPrimitive reads a value of Go type t (one of the scalar kinds
// isPrimitive recognizes) out of vr, per the Primitive Codec Table. The
// BSON type actually on the wire is checked against what t expects before
// any read is attempted, so a mismatch surfaces as *TypeMismatchError
// rather than whatever ad hoc error bsonrw's reader happens to return.
func ReadPrimitive(vr bsonrw.ValueReader, t reflect.Type) (reflect.Value, error) {
	switch t {
	case objectIDType:
		if err := expectWireType(vr, bsontype.ObjectID); err != nil {
			return reflect.Value{}, err
		}
		id, err := vr.ReadObjectID()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	case decimal128Type:
		if err := expectWireType(vr, bsontype.Decimal128); err != nil {
			return reflect.Value{}, err
		}
		d, err := vr.ReadDecimal128()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	case dateTimeType:
		if err := expectWireType(vr, bsontype.DateTime); err != nil {
			return reflect.Value{}, err
		}
		ms, err := vr.ReadDateTime()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(time.UnixMilli(ms).UTC()), nil
	case bigIntType:
		if err := expectWireType(vr, bsontype.String); err != nil {
			return reflect.Value{}, err
		}
		s, err := vr.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		n := new(big.Int)
		if _, ok := n.SetString(s, 10); !ok {
			return reflect.Value{}, fmt.Errorf("traverse: %q is not a valid integer literal", s)
		}
		return reflect.ValueOf(*n), nil
	case uuidType:
		if err := expectWireType(vr, bsontype.String); err != nil {
			return reflect.Value{}, err
		}
		s, err := vr.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, &InvalidUUIDError{Value: s, err: err}
		}
		return reflect.ValueOf(id), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		if err := expectWireType(vr, bsontype.Boolean); err != nil {
			return reflect.Value{}, err
		}
		v, err := vr.ReadBoolean()
		return reflect.ValueOf(v), err
	case reflect.String:
		if err := expectWireType(vr, bsontype.String); err != nil {
			return reflect.Value{}, err
		}
		v, err := vr.ReadString()
		return reflect.ValueOf(v), err
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := expectWireKind(vr, bsontype.Int32, bsontype.Int64, bsontype.Double); err != nil {
			return reflect.Value{}, err
		}
		n, err := readInt(vr)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		rv.SetInt(n)
		return rv, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if err := expectWireKind(vr, bsontype.Int32, bsontype.Int64, bsontype.Double); err != nil {
			return reflect.Value{}, err
		}
		n, err := readInt(vr)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		rv.SetUint(uint64(n))
		return rv, nil
	case reflect.Float32, reflect.Float64:
		if err := expectWireType(vr, bsontype.Double); err != nil {
			return reflect.Value{}, err
		}
		f, err := vr.ReadDouble()
		if err != nil {
			return reflect.Value{}, err
		}
		if t.Kind() == reflect.Float32 && (f > 3.4028235e38 || f < -3.4028235e38) {
			return reflect.Value{}, &FloatOverflowError{Value: f}
		}
		rv := reflect.New(t).Elem()
		rv.SetFloat(f)
		return rv, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if err := expectWireType(vr, bsontype.Binary); err != nil {
				return reflect.Value{}, err
			}
			b, _, err := vr.ReadBinary()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("traverse: %s is not a primitive type", t)
}

// expectWireType fails fast with *TypeMismatchError when vr's current
// BSON type is not want, rather than letting the reader method return
// whatever ad hoc error a type confusion produces.
func expectWireType(vr bsonrw.ValueReader, want bsontype.Type) error {
	if got := vr.Type(); got != want {
		return &TypeMismatchError{Expected: want.String(), Actual: got.String()}
	}
	return nil
}

// expectWireKind is expectWireType for fields that tolerate more than one
// wire representation, such as a Go integer reading either BSON int kind
// or a double (the same forward-compatible widening readInt performs).
func expectWireKind(vr bsonrw.ValueReader, want ...bsontype.Type) error {
	got := vr.Type()
	for _, w := range want {
		if got == w {
			return nil
		}
	}
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = w.String()
	}
	return &TypeMismatchError{Expected: strings.Join(names, " or "), Actual: got.String()}
}

// readInt reads whichever integer BSON type is actually on the wire
// (Int32 or Int64), tolerating either for a Go integer field - the same
// forward-compatible widening mongo-driver's own codecs perform.
func readInt(vr bsonrw.ValueReader) (int64, error) {
	switch vr.Type() {
	case bsontype.Int32:
		v, err := vr.ReadInt32()
		return int64(v), err
	case bsontype.Int64:
		return vr.ReadInt64()
	case bsontype.Double:
		f, err := vr.ReadDouble()
		return int64(f), err
	default:
		v, err := vr.ReadInt64()
		return v, err
	}
}

// FloatOverflowError mirrors the root package's error of the same name;
// duplicated here (rather than imported, to avoid a cycle) since this is
// the only place that can detect the overflow while the raw float is
// still in hand.
type FloatOverflowError struct{ Value float64 }

func (e *FloatOverflowError) Error() string {
	return fmt.Sprintf("value %v overflows float32", e.Value)
}

// InvalidUUIDError mirrors the root package's error of the same name; see
// FloatOverflowError above for why it is duplicated rather than imported.
type InvalidUUIDError struct {
	Value string
	err   error
}

func (e *InvalidUUIDError) Error() string {
	return fmt.Sprintf("invalid uuid %q: %v", e.Value, e.err)
}

func (e *InvalidUUIDError) Unwrap() error { return e.err }

// TypeMismatchError mirrors the root package's error of the same name;
// see FloatOverflowError above for why it is duplicated rather than
// imported. Raised by expectWireType/expectWireKind before a read is
// attempted, so it reports the BSON type confusion directly instead of
// whatever bsonrw itself would return for the wrong reader method.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected bson type %s, got %s", e.Expected, e.Actual)
}
