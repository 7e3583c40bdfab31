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

	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// driverCodec adapts one bsoncodec.ValueEncoder/ValueDecoder pair, looked
// up from the host driver's own Registry, into this package's Codec
// interface.
type driverCodec struct {
	typ     reflect.Type
	driver  *bsoncodec.Registry
	encoder bsoncodec.ValueEncoder
	decoder bsoncodec.ValueDecoder
}

func (c *driverCodec) Type() reflect.Type { return c.typ }

func (c *driverCodec) EncodeValue(_ EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
	return c.encoder.EncodeValue(bsoncodec.EncodeContext{Registry: c.driver}, vw, v)
}

func (c *driverCodec) DecodeValue(_ DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
	// Callers hand a decoder a pointer to the value to fill; the driver's
	// own decoders expect the settable value itself.
	if v.Kind() == reflect.Ptr && v.Type().Elem() == c.typ {
		v = v.Elem()
	}
	return c.decoder.DecodeValue(bsoncodec.DecodeContext{Registry: c.driver}, vr, v)
}

// driverRegistry wraps a mongo-driver bsoncodec.Registry as a base
// Registry, spec §6's "Registry interface consumed from the host driver":
// composition is by concatenation, first non-absent answer wins, and a
// Builder's base is the first link in that chain.
type driverRegistry struct {
	driver *bsoncodec.Registry
}

// FromDriver adapts a mongo-driver bsoncodec.Registry - bson.DefaultRegistry,
// or one built with bson.NewRegistryBuilder - for use as a Builder's base,
// so every type the driver already knows how to encode stays available.
// The base is consulted before anything registered on the Builder, so a
// type the driver answers for (bson.DefaultRegistry answers for every
// struct type) is encoded by the driver's codec, not by a derived one.
func FromDriver(r *bsoncodec.Registry) Registry {
	return &driverRegistry{driver: r}
}

func (r *driverRegistry) Lookup(t reflect.Type) (Codec, error) {
	enc, err := r.driver.LookupEncoder(t)
	if err != nil {
		return nil, &NoCodecError{Type: t}
	}
	dec, err := r.driver.LookupDecoder(t)
	if err != nil {
		return nil, &NoCodecError{Type: t}
	}
	return &driverCodec{typ: t, driver: r.driver, encoder: enc, decoder: dec}, nil
}
