//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import "github.com/fogfish/mongocodec/internal/schema"

func init() {
	schema.RegisterOptionPkgPath(reflectPkgPath)
}

// reflectPkgPath is this package's import path, the same string
// reflect.Type.PkgPath() reports for Option[T] instantiations - set as a
// constant rather than discovered via reflect.TypeOf(Option[int]{}) so
// the schema package learns it without this package needing to construct
// a throwaway instantiation at init time.
const reflectPkgPath = "github.com/fogfish/mongocodec"

// Option is the "optional wrapper" type descriptor of spec §3: a field
// whose absence from a document is a valid, representable state, as
// opposed to a pointer (which conflates "absent" with "nil pointer to a
// zero value"). Modeled on database/sql.NullString - a plain, reflectable
// struct rather than a pointer, so the field schema deriver can tell
// "optional" apart from "externally-resolved nested type" just by
// checking the struct's own name via reflection.
type Option[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{Value: v, Valid: true} }

// None is the absent value of T.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the wrapped value and whether it was present.
func (o Option[T]) Get() (T, bool) { return o.Value, o.Valid }
