//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec_test

import (
	"bytes"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fogfish/it/v2"
	"go.mongodb.org/mongo-driver/bson/bsonrw"

	"github.com/fogfish/mongocodec"
)

type tagged struct {
	Labels mapset.Set[string] `bson:"labels"`
}

func TestSetFieldRoundTrip(t *testing.T) {
	registry, err := mongocodec.From(nil).
		With(mongocodec.Register[tagged]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	in := tagged{Labels: mapset.NewThreadUnsafeSet[string]("a", "b", "a")}
	data, err := mongocodec.Marshal(registry, cfg, in)
	it.Then(t).Should(it.Nil(err))

	var out tagged
	err = mongocodec.Unmarshal(registry, cfg, data, &out)
	it.Then(t).Should(it.Nil(err))

	it.Then(t).Should(
		it.Equal(out.Labels.Cardinality(), 2),
		it.True(out.Labels.Contains("a")),
		it.True(out.Labels.Contains("b")),
	)
}

type unsupportedSet struct {
	Ids mapset.Set[struct{ X int }] `bson:"ids"`
}

// Derivation itself succeeds - classify only recognizes the Set shape via
// the Add(T) bool method, it never consults newSetOf's element table. The
// table is a decode-time construction limit: newSetOf is called before a
// single array element is even read, so an empty "ids" array is enough to
// observe the rejection.
func TestSetFieldRejectsUnsupportedElementOnDecode(t *testing.T) {
	registry, err := mongocodec.From(nil).
		With(mongocodec.Register[unsupportedSet]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	var buf bytes.Buffer
	vw := bsonrw.NewBSONValueWriter(&buf)
	dw, err := vw.WriteDocument()
	it.Then(t).Should(it.Nil(err))
	ew, err := dw.WriteDocumentElement("ids")
	it.Then(t).Should(it.Nil(err))
	aw, err := ew.WriteArray()
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Nil(aw.WriteArrayEnd()))
	it.Then(t).Should(it.Nil(dw.WriteDocumentEnd()))

	var out unsupportedSet
	err = mongocodec.Unmarshal(registry, cfg, buf.Bytes(), &out)
	it.Then(t).ShouldNot(it.Nil(err))
}
