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

	"github.com/fogfish/mongocodec/internal/schema"
	"github.com/fogfish/mongocodec/internal/traverse"
)

// recordCodec is the Record Codec Generator of spec §4.1: one instance
// per registered record type T, built once at Register[T] time out of
// T's Field Schema and reused for every subsequent encode/decode.
type recordCodec struct {
	typ    reflect.Type
	fields []schema.Field
}

// newRecordCodec derives the Field Schema for T and builds its Codec. The
// codec never writes a discriminator; on decode a discriminator key that
// T does not declare is skipped like any other unknown field.
func newRecordCodec[T any]() (*recordCodec, error) {
	var zero T
	t := reflect.TypeOf(zero)

	fields, err := schema.Of[T]()
	if err != nil {
		return nil, &DerivationError{Kind: "FieldDerivation", Type: t, err: err}
	}

	return &recordCodec{typ: t, fields: fields}, nil
}

func (c *recordCodec) Type() reflect.Type { return c.typ }

func (c *recordCodec) EncodeValue(ctx EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &NullRootValueError{Type: c.typ}
		}
		v = v.Elem()
	}

	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}

	child := childEncoder(ctx)

	for _, f := range c.fields {
		fv := v.Field(f.Index)

		if f.Kind == schema.Optional && traverse.IsOptionAbsent(fv) && ctx.Config.NoneHandling() == OmitField {
			continue
		}

		ew, err := dw.WriteDocumentElement(f.WireName)
		if err != nil {
			return err
		}
		if err := traverse.WriteField(ew, f, fv, child); err != nil {
			return err
		}
	}

	return dw.WriteDocumentEnd()
}

func (c *recordCodec) DecodeValue(ctx DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	dr, err := vr.ReadDocument()
	if err != nil {
		return err
	}

	child := childDecoder(ctx)
	byWire := make(map[string]schema.Field, len(c.fields))
	for _, f := range c.fields {
		byWire[f.WireName] = f
	}
	seen := make(map[string]struct{}, len(c.fields))

	for {
		name, er, err := dr.ReadElement()
		if err == bsonrw.ErrEOD {
			break
		}
		if err != nil {
			return err
		}

		f, ok := byWire[name]
		if !ok {
			// Forward compatibility: unknown wire fields (including a
			// sealed discriminator key this record does not itself
			// declare) are skipped, not rejected.
			if err := er.Skip(); err != nil {
				return err
			}
			continue
		}

		val, err := traverse.ReadField(er, f, child, newSetOf)
		if err != nil {
			return wrapTraverseError(err)
		}
		v.Field(f.Index).Set(val)
		seen[f.WireName] = struct{}{}
	}

	for _, f := range c.fields {
		if _, ok := seen[f.WireName]; ok {
			continue
		}
		if f.HasDefault {
			v.Field(f.Index).Set(f.Default())
			continue
		}
		if f.Kind == schema.Optional {
			continue // zero value is already the "none" case
		}
		return &MissingFieldError{Field: f.WireName}
	}

	return nil
}

// childEncoder adapts the ambient Registry into a traverse.EncodeChild,
// closing over ctx so nested records/sealed/external types resolve
// through the same Registry as the root call.
func childEncoder(ctx EncodeContext) traverse.EncodeChild {
	return func(vw bsonrw.ValueWriter, t reflect.Type, v reflect.Value) error {
		cdc, err := ctx.Registry.Lookup(t)
		if err != nil {
			return err
		}
		return cdc.EncodeValue(ctx, vw, v)
	}
}

// childDecoder adapts the ambient Registry into a traverse.DecodeChild.
func childDecoder(ctx DecodeContext) traverse.DecodeChild {
	return func(t reflect.Type, vr bsonrw.ValueReader) (reflect.Value, error) {
		cdc, err := ctx.Registry.Lookup(t)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t)
		if err := cdc.DecodeValue(ctx, vr, out); err != nil {
			return reflect.Value{}, err
		}
		return out.Elem(), nil
	}
}
