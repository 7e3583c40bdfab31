//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec_test

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fogfish/it/v2"

	"github.com/fogfish/mongocodec"
)

type gadget struct {
	Label string `bson:"label"`
}

func TestRegistryLookupMissFails(t *testing.T) {
	registry, err := mongocodec.From(nil).Build()
	it.Then(t).Should(it.Nil(err))

	_, err = registry.Lookup(reflect.TypeOf(gadget{}))
	it.Then(t).ShouldNot(it.Nil(err))
	_, ok := err.(*mongocodec.NoCodecError)
	it.Then(t).Should(it.True(ok))
}

func TestRegistryBaseTakesPrecedenceOverDerived(t *testing.T) {
	// spec §4.4's build order is base, then explicit codecs, then
	// providers, leftmost wins: a type the host driver's own base
	// registry already answers for is never reconsidered by anything
	// derived here, even if also registered.
	base := mongocodec.FromDriver(bson.DefaultRegistry)

	registry, err := mongocodec.From(base).
		With(mongocodec.Register[gadget]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	_, err = registry.Lookup(reflect.TypeOf(gadget{}))
	it.Then(t).Should(it.Nil(err))
}

func TestRegistryFallsThroughToBaseForDriverNativeTypes(t *testing.T) {
	base := mongocodec.FromDriver(bson.DefaultRegistry)
	registry, err := mongocodec.From(base).Build()
	it.Then(t).Should(it.Nil(err))

	_, err = registry.Lookup(reflect.TypeOf(""))
	it.Then(t).Should(it.Nil(err))
}

func TestRegistryMemoizesRepeatedLookups(t *testing.T) {
	registry, err := mongocodec.From(nil).
		With(mongocodec.Register[gadget]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	first, err := registry.Lookup(reflect.TypeOf(gadget{}))
	it.Then(t).Should(it.Nil(err))
	second, err := registry.Lookup(reflect.TypeOf(gadget{}))
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(first.Type(), second.Type()))
}
