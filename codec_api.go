//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import (
	"bytes"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// Marshal encodes v - a value of a type registered via Register or as a
// standalone RegisterSealed variant - to BSON using registry and config.
// The codec is resolved from v's own dynamic type, so a sealed interface
// variant passed here always encodes as a bare record, without its
// discriminator: that is what "also registered standalone" (see
// RegisterSealed) means. Use MarshalAs[S] to encode through the sealed
// wrapper instead.
func Marshal(registry Registry, config Config, v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("mongocodec: cannot marshal a nil interface value")
	}

	return marshalAs(registry, config, rv.Type(), rv)
}

// MarshalAs encodes v through the Codec registered for the static type S,
// rather than v's own dynamic type - the Marshal counterpart to
// Unmarshal's pointer-based static typing. This is how a sealed interface
// variant is encoded with its discriminator: MarshalAs[Animal](registry,
// config, Dog{...}) resolves the Animal sealed codec, not Dog's own
// standalone record codec.
func MarshalAs[S any](registry Registry, config Config, v S) ([]byte, error) {
	t := reflect.TypeOf((*S)(nil)).Elem()
	return marshalAs(registry, config, t, reflect.ValueOf(v))
}

func marshalAs(registry Registry, config Config, t reflect.Type, rv reflect.Value) ([]byte, error) {
	codec, err := registry.Lookup(t)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	vw := bsonrw.NewBSONValueWriter(&buf)

	ctx := EncodeContext{Registry: registry, Config: config}
	if err := codec.EncodeValue(ctx, vw, rv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v, which must be a non-nil pointer to a
// type registered via Register, or to a sealed interface variable
// populated via RegisterSealed.
func Unmarshal(registry Registry, config Config, data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("mongocodec: Unmarshal target must be a non-nil pointer")
	}

	codec, err := registry.Lookup(rv.Elem().Type())
	if err != nil {
		return err
	}

	vr := bsonrw.NewBSONDocumentReader(data)
	ctx := DecodeContext{Registry: registry, Config: config}
	return codec.DecodeValue(ctx, vr, rv)
}
