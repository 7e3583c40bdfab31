//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package schema_test

import (
	"reflect"
	"testing"

	"github.com/fogfish/it/v2"

	"github.com/fogfish/mongocodec/internal/schema"
)

type person struct {
	Name     string `bson:"name"`
	Age      int    `bson:"age,default=0"`
	nickname string //nolint:unused
	Tags     []string
}

func TestOfWireNames(t *testing.T) {
	fields, err := schema.Of[person]()
	it.Then(t).Should(it.Nil(err))

	byGo := make(map[string]schema.Field, len(fields))
	for _, f := range fields {
		byGo[f.DeclaredName] = f
	}

	it.Then(t).Should(
		it.Equal(byGo["Name"].WireName, "name"),
		it.Equal(byGo["Tags"].WireName, "tags"),
		it.Equal(byGo["Age"].Kind, schema.Primitive),
		it.Equal(byGo["Tags"].Kind, schema.Sequence),
		it.True(byGo["Age"].HasDefault),
	)
}

func TestOfSkipsUnexported(t *testing.T) {
	fields, err := schema.Of[person]()
	it.Then(t).Should(it.Nil(err))

	for _, f := range fields {
		it.Then(t).ShouldNot(it.Equal(f.DeclaredName, "nickname"))
	}
}

type dashed struct {
	Keep string `bson:"keep"`
	Drop string `bson:"-"`
}

func TestOfHonorsDashTag(t *testing.T) {
	fields, err := schema.Of[dashed]()
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(len(fields), 1))
	it.Then(t).Should(it.Equal(fields[0].DeclaredName, "Keep"))
}

type duplicateWire struct {
	A string `bson:"same"`
	B string `bson:"same"`
}

func TestOfRejectsDuplicateWireName(t *testing.T) {
	_, err := schema.Of[duplicateWire]()
	it.Then(t).ShouldNot(it.Nil(err))

	_, ok := err.(*schema.DuplicateWireNameError)
	it.Then(t).Should(it.True(ok))
}

type pointerField struct {
	P *string
}

func TestOfRejectsPointerFields(t *testing.T) {
	_, err := schema.Of[pointerField]()
	it.Then(t).ShouldNot(it.Nil(err))
}

func TestOfTypeMatchesOf(t *testing.T) {
	viaOf, err := schema.Of[person]()
	it.Then(t).Should(it.Nil(err))

	viaType, err := schema.OfType(reflect.TypeOf(person{}))
	it.Then(t).Should(it.Nil(err))

	it.Then(t).Should(it.Equal(len(viaOf), len(viaType)))
}
