//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fogfish/faults"

	"github.com/fogfish/mongocodec/internal/traverse"
)

// Broad error categories, used to build a wrapped error with faults.Type,
// the same idiom service/ddb/errors.go uses for errServiceIO/errInvalidKey.
const (
	errDerivation = faults.Type("codec derivation failed")
	errEncode     = faults.Type("bson encode failed")
	errDecode     = faults.Type("bson decode failed")
)

// DerivationError is raised by Builder mutators and Config options when a
// codec or configuration cannot be produced. Kind is one of
// "FieldDerivation" (Register could not derive T's Field Schema: T is not
// a struct, two fields share a wire name, a field type is unsupported, or
// a default= literal is invalid; the cause is wrapped), "InvalidConfig",
// "DuplicateTag" (WithCustomTags) or "UnmappedVariant" (a CustomMap
// strategy with no tag for a variant). Kind does not distinguish the
// FieldDerivation causes from one another, and RegisterSealed returns its
// other sealed-schema failures (not an interface, no variants, a variant
// that is not a struct, colliding tags) as they are, not as a
// DerivationError.
type DerivationError struct {
	Kind   string
	Type   reflect.Type
	Detail string
	err    error
}

func (e *DerivationError) Error() string {
	msg := e.Kind
	if e.Type != nil {
		msg += " " + e.Type.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return errDerivation.New(fmt.Errorf("%s", msg)).Error()
}

func (e *DerivationError) Unwrap() error { return e.err }

// DuplicateRegistrationError is raised when Register*/WithCodec is called
// for a type already present in the builder's registered-type set.
type DuplicateRegistrationError struct {
	Type reflect.Type
}

func (e *DuplicateRegistrationError) Error() string {
	return errDerivation.New(fmt.Errorf("duplicate registration of %s", e.Type)).Error()
}

// DuplicateInTupleError is raised by RegisterAll/RegisterSealedAll when
// two members of the same batch register the same type - distinct from
// DuplicateRegistrationError, which reports a collision against state the
// builder already carried before the batch began.
type DuplicateInTupleError struct {
	Type reflect.Type
}

func (e *DuplicateInTupleError) Error() string {
	return errDerivation.New(fmt.Errorf("duplicate registration of %s within batch", e.Type)).Error()
}

// NoCodecError is raised by Registry.Lookup when no provider, explicit
// codec, or base registry entry matches the requested type.
type NoCodecError struct {
	Type reflect.Type
}

func (e *NoCodecError) Error() string {
	return "no codec found for " + e.Type.String()
}

// MissingFieldError is raised during decode when a required, default-less,
// non-optional field is absent from the document.
type MissingFieldError struct {
	Field string
	err   error
}

func (e *MissingFieldError) Error() string {
	return errDecode.New(fmt.Errorf("missing required field %q", e.Field)).Error()
}

func (e *MissingFieldError) Unwrap() error { return e.err }

// UnregisteredVariantError is raised during encode when a sealed value's
// concrete type is not among the registered variants.
type UnregisteredVariantError struct {
	Sealed  reflect.Type
	Variant reflect.Type
}

func (e *UnregisteredVariantError) Error() string {
	return errEncode.New(fmt.Errorf("%s is not a registered variant of %s", e.Variant, e.Sealed)).Error()
}

// MissingDiscriminatorError is raised during decode when a sealed
// document carries no discriminator field at all.
type MissingDiscriminatorError struct {
	Sealed reflect.Type
}

func (e *MissingDiscriminatorError) Error() string {
	return errDecode.New(fmt.Errorf("document has no discriminator field for %s", e.Sealed)).Error()
}

// UnknownDiscriminatorError is raised during decode when the tag read
// from the discriminator field matches no registered variant.
type UnknownDiscriminatorError struct {
	Sealed reflect.Type
	Tag    string
}

func (e *UnknownDiscriminatorError) Error() string {
	return errDecode.New(fmt.Errorf("unknown discriminator %q for %s", e.Tag, e.Sealed)).Error()
}

// UnknownEnumValueError is raised when decoding an enum by-name or
// by-projection representation that matches no variant, and when encoding
// an enum value that is not among the variants its provider was built with.
type UnknownEnumValueError struct {
	Enum reflect.Type
	Name string
}

func (e *UnknownEnumValueError) Error() string {
	return errDecode.New(fmt.Errorf("unknown enum value %q for %s", e.Name, e.Enum)).Error()
}

// UnknownEnumOrdinalError is raised when decoding an enum by-ordinal
// representation whose index is out of range.
type UnknownEnumOrdinalError struct {
	Enum    reflect.Type
	Ordinal int32
}

func (e *UnknownEnumOrdinalError) Error() string {
	return errDecode.New(fmt.Errorf("unknown enum ordinal %d for %s", e.Ordinal, e.Enum)).Error()
}

// InvalidUUIDError is raised when a string field typed as UUID does not
// parse as a canonical 8-4-4-4-12 UUID.
type InvalidUUIDError struct {
	Value string
	err   error
}

func (e *InvalidUUIDError) Error() string {
	return errDecode.New(fmt.Errorf("invalid uuid %q: %w", e.Value, e.err)).Error()
}

func (e *InvalidUUIDError) Unwrap() error { return e.err }

// FloatOverflowError is raised when a float32 field reads a BSON double
// outside float32 range.
type FloatOverflowError struct {
	Value float64
}

func (e *FloatOverflowError) Error() string {
	return errDecode.New(fmt.Errorf("value %v overflows float32", e.Value)).Error()
}

// TypeMismatchError is raised when the BSON type on the wire does not
// match what a field's type descriptor expects.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return errDecode.New(fmt.Errorf("expected bson type %s, got %s", e.Expected, e.Actual)).Error()
}

// NullRootValueError is raised when encoding is asked to write a nil root
// value for a non-pointer-shaped codec.
type NullRootValueError struct {
	Type reflect.Type
}

func (e *NullRootValueError) Error() string {
	return errEncode.New(fmt.Errorf("cannot encode nil root value of %s", e.Type)).Error()
}

// wrapTraverseError converts the internal/traverse package's own
// InvalidUUIDError/FloatOverflowError/TypeMismatchError - raised deep
// inside the Traversal Runtime, where the raw wire value is still in
// hand - into this package's exported equivalents. traverse is a true
// Go internal package, so without this conversion at the boundary no
// caller outside this module could ever errors.As against the kinds
// spec §7 names; every decode entry point that calls into traverse runs
// its error back through here before returning it.
func wrapTraverseError(err error) error {
	if err == nil {
		return nil
	}

	var uuidErr *traverse.InvalidUUIDError
	if errors.As(err, &uuidErr) {
		return &InvalidUUIDError{Value: uuidErr.Value, err: uuidErr.Unwrap()}
	}

	var floatErr *traverse.FloatOverflowError
	if errors.As(err, &floatErr) {
		return &FloatOverflowError{Value: floatErr.Value}
	}

	var mismatchErr *traverse.TypeMismatchError
	if errors.As(err, &mismatchErr) {
		return &TypeMismatchError{Expected: mismatchErr.Expected, Actual: mismatchErr.Actual}
	}

	return err
}
