//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package schema

import (
	"fmt"
	"reflect"
)

// Variant is one concrete record member of a Sealed type.
type Variant struct {
	Type   reflect.Type
	Tag    string
	Fields []Field
}

// Sealed is the SealedSchema[S] of spec §3: a closed, finite set of
// concrete record variants, each tagged by the active discriminator
// strategy.
type Sealed struct {
	Type     reflect.Type // the interface type S
	Variants []Variant
}

// NotSealedError is returned when the requested type is not an interface.
type NotSealedError struct{ Type reflect.Type }

func (e *NotSealedError) Error() string { return fmt.Sprintf("%s is not a sealed interface", e.Type) }

// NoVariantsError is returned when RegisterSealed is called with zero
// variants.
type NoVariantsError struct{ Type reflect.Type }

func (e *NoVariantsError) Error() string { return fmt.Sprintf("%s has no registered variants", e.Type) }

// DuplicateTagError is returned when two variants resolve to the same
// discriminator tag string.
type DuplicateTagError struct {
	Sealed reflect.Type
	Tag    string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("variants of %s collide on discriminator tag %q", e.Sealed, e.Tag)
}

// NotARecordVariantError is returned when a claimed variant is not
// itself a concrete struct (spec §3 invariant: "Every Vi is itself a
// record, not another sealed type").
type NotARecordVariantError struct {
	Sealed  reflect.Type
	Variant reflect.Type
}

func (e *NotARecordVariantError) Error() string {
	return fmt.Sprintf("variant %s of %s is not a concrete record", e.Variant, e.Sealed)
}

// OfSealed derives the SealedSchema for interface type S out of a
// concrete, caller-supplied variant list. Go has no compile-time
// enumeration of "all types implementing interface I", so unlike a
// closed sum type in the source ecosystem, the variant set here is
// exactly what the caller passes to RegisterSealed - this is the
// re-architecture spec §9 licenses ("duplicate detection may be
// runtime-only"; the same principle extends to variant discovery).
func OfSealed[S any](tag func(reflect.Type) (string, error), variants ...any) (*Sealed, error) {
	var zero S
	st := reflect.TypeOf(&zero).Elem()
	if st.Kind() != reflect.Interface {
		return nil, &NotSealedError{Type: st}
	}
	if len(variants) == 0 {
		return nil, &NoVariantsError{Type: st}
	}

	out := &Sealed{Type: st, Variants: make([]Variant, 0, len(variants))}
	seenTag := make(map[string]struct{}, len(variants))

	for _, v := range variants {
		vt := reflect.TypeOf(v)
		if vt == nil || vt.Kind() != reflect.Struct {
			return nil, &NotARecordVariantError{Sealed: st, Variant: vt}
		}
		if !vt.Implements(st) && !reflect.PointerTo(vt).Implements(st) {
			return nil, &NotARecordVariantError{Sealed: st, Variant: vt}
		}

		tagStr, err := tag(vt)
		if err != nil {
			return nil, err
		}
		if _, dup := seenTag[tagStr]; dup {
			return nil, &DuplicateTagError{Sealed: st, Tag: tagStr}
		}
		seenTag[tagStr] = struct{}{}

		fields, err := OfType(vt)
		if err != nil {
			return nil, err
		}

		out.Variants = append(out.Variants, Variant{Type: vt, Tag: tagStr, Fields: fields})
	}

	return out, nil
}
