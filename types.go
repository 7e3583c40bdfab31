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

	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// EncodeContext is threaded through an encode call so that a codec can
// resolve its children and honor the active configuration.
type EncodeContext struct {
	Registry Registry
	Config   Config
}

// DecodeContext is threaded through a decode call so that a codec can
// resolve its children and honor the active configuration.
type DecodeContext struct {
	Registry Registry
	Config   Config
}

// Codec encodes and decodes values of exactly one Go type to/from BSON.
// Type() is the runtime handle the Registry indexes codecs by; it must
// equal reflect.TypeOf((*T)(nil)).Elem() for the codec's target type T
// (for an interface T this is the interface type itself).
type Codec interface {
	Type() reflect.Type
	EncodeValue(EncodeContext, bsonrw.ValueWriter, reflect.Value) error
	DecodeValue(DecodeContext, bsonrw.ValueReader, reflect.Value) error
}

// CodecProvider optionally yields a Codec for a runtime type handle, given
// the ambient Registry it was looked up against (so a provider can resolve
// its own children lazily without capturing a fixed Registry instance).
// A provider that does not handle t returns found == false.
type CodecProvider interface {
	CodecFor(t reflect.Type, ambient Registry) (codec Codec, found bool)
}

// CodecProviderFunc adapts a function to CodecProvider.
type CodecProviderFunc func(t reflect.Type, ambient Registry) (Codec, bool)

func (f CodecProviderFunc) CodecFor(t reflect.Type, ambient Registry) (Codec, bool) {
	return f(t, ambient)
}

// Registry maps a runtime type handle to the Codec responsible for it.
// Lookup failure is reported as *NoCodecError.
type Registry interface {
	Lookup(t reflect.Type) (Codec, error)
}

// codecFunc builds an ad-hoc Codec out of plain functions; used by
// generators that have no struct of their own to hang methods off.
type codecFunc struct {
	typ    reflect.Type
	encode func(EncodeContext, bsonrw.ValueWriter, reflect.Value) error
	decode func(DecodeContext, bsonrw.ValueReader, reflect.Value) error
}

func (c *codecFunc) Type() reflect.Type { return c.typ }

func (c *codecFunc) EncodeValue(ctx EncodeContext, w bsonrw.ValueWriter, v reflect.Value) error {
	return c.encode(ctx, w, v)
}

func (c *codecFunc) DecodeValue(ctx DecodeContext, r bsonrw.ValueReader, v reflect.Value) error {
	return c.decode(ctx, r, v)
}

// NewCodec builds a Codec for typ out of an encode/decode function pair.
// The enum providers and CurieCodec use this instead of hand-rolling a
// named type per target.
func NewCodec(
	typ reflect.Type,
	encode func(EncodeContext, bsonrw.ValueWriter, reflect.Value) error,
	decode func(DecodeContext, bsonrw.ValueReader, reflect.Value) error,
) Codec {
	return &codecFunc{typ: typ, encode: encode, decode: decode}
}
