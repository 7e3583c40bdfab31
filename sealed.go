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

	"go.mongodb.org/mongo-driver/bson/bsoncore"
	"go.mongodb.org/mongo-driver/bson/bsonrw"

	"github.com/fogfish/mongocodec/internal/schema"
	"github.com/fogfish/mongocodec/internal/traverse"
)

// sealedCodec is the Sealed Codec Generator of spec §4.2: a closed union
// of record variants distinguished on the wire by one discriminator
// field the sealed codec alone owns - a record's own codec neither
// writes it on encode nor requires it on decode.
type sealedCodec struct {
	typ     reflect.Type
	variant map[reflect.Type]*recordCodec // concrete variant type -> its record codec
	byTag   map[string]*recordCodec
	tagOf   map[reflect.Type]string
}

// newSealedCodec derives the SealedSchema for S against the variant
// values supplied to RegisterSealed, using cfg to compute each variant's
// discriminator tag (so a CustomMap strategy is already baked in by the
// time Build() runs). The discriminator field name is not taken from cfg:
// it is read from the Config passed at encode/decode time.
func newSealedCodec[S any](cfg Config, variants ...any) (*sealedCodec, error) {
	sealed, err := schema.OfSealed[S](cfg.Tag, variants...)
	if err != nil {
		return nil, err
	}

	c := &sealedCodec{
		typ:     sealed.Type,
		variant: make(map[reflect.Type]*recordCodec, len(sealed.Variants)),
		byTag:   make(map[string]*recordCodec, len(sealed.Variants)),
		tagOf:   make(map[reflect.Type]string, len(sealed.Variants)),
	}

	for _, v := range sealed.Variants {
		rc := &recordCodec{typ: v.Type, fields: v.Fields}
		c.variant[v.Type] = rc
		c.byTag[v.Tag] = rc
		c.tagOf[v.Type] = v.Tag
	}

	return c, nil
}

func (c *sealedCodec) Type() reflect.Type { return c.typ }

func (c *sealedCodec) EncodeValue(ctx EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return &NullRootValueError{Type: c.typ}
		}
		v = v.Elem()
	}

	rc, ok := c.variant[v.Type()]
	if !ok {
		return &UnregisteredVariantError{Sealed: c.typ, Variant: v.Type()}
	}

	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}

	discField := ctx.Config.DiscriminatorField()

	// The discriminator is written first, straight into the output
	// document; any variant field that would collide with it is
	// suppressed below.
	tw, err := dw.WriteDocumentElement(discField)
	if err != nil {
		return err
	}
	if err := tw.WriteString(c.tagOf[v.Type()]); err != nil {
		return err
	}

	child := childEncoder(ctx)
	for _, f := range rc.fields {
		if f.WireName == discField {
			continue
		}

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

func (c *sealedCodec) DecodeValue(ctx DecodeContext, vr bsonrw.ValueReader, v reflect.Value) error {
	dr, err := vr.ReadDocument()
	if err != nil {
		return err
	}

	discField := ctx.Config.DiscriminatorField()
	copier := bsonrw.NewCopier()

	type rawElem struct {
		name string
		val  bsoncore.Value
	}
	var elems []rawElem
	var tag string
	var haveTag bool

	for {
		name, er, err := dr.ReadElement()
		if err == bsonrw.ErrEOD {
			break
		}
		if err != nil {
			return err
		}

		if name == discField {
			s, err := er.ReadString()
			if err != nil {
				return err
			}
			tag, haveTag = s, true
			continue
		}

		t, data, err := copier.CopyValueFromBytes(er)
		if err != nil {
			return err
		}
		elems = append(elems, rawElem{name: name, val: bsoncore.Value{Type: t, Data: data}})
	}

	if !haveTag {
		return &MissingDiscriminatorError{Sealed: c.typ}
	}

	rc, ok := c.byTag[tag]
	if !ok {
		return &UnknownDiscriminatorError{Sealed: c.typ, Tag: tag}
	}

	idx, buf := bsoncore.AppendDocumentStart(nil)
	for _, e := range elems {
		buf = bsoncore.AppendValueElement(buf, e.name, e.val)
	}
	buf, err = bsoncore.AppendDocumentEnd(buf, idx)
	if err != nil {
		return err
	}

	instance := reflect.New(rc.typ)
	if err := rc.DecodeValue(ctx, bsonrw.NewBSONDocumentReader(buf), instance); err != nil {
		return err
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	v.Set(instance.Elem())
	return nil
}
