//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec_test

import (
	"testing"

	"github.com/fogfish/curie/v2"
	"github.com/fogfish/it/v2"

	"github.com/fogfish/mongocodec"
)

type link struct {
	Subject curie.IRI `bson:"subject"`
	Object  curie.IRI `bson:"object"`
	Label   string    `bson:"label"`
}

func TestWithCodecResolvesExternalFieldType(t *testing.T) {
	registry, err := mongocodec.From(nil).
		WithCodec(mongocodec.CurieCodec()).
		With(mongocodec.Register[link]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	in := link{
		Subject: curie.New("person:%s", "neumann"),
		Object:  curie.New("article:%s", "automata"),
		Label:   "wrote",
	}
	data, err := mongocodec.Marshal(registry, cfg, in)
	it.Then(t).Should(it.Nil(err))

	var out link
	err = mongocodec.Unmarshal(registry, cfg, data, &out)
	it.Then(t).Should(it.Nil(err))

	it.Then(t).Should(
		it.Equal(out.Subject, in.Subject),
		it.Equal(out.Object, in.Object),
		it.Equal(out.Label, in.Label),
	)
}

func TestWithCodecsRejectsDuplicateInBatch(t *testing.T) {
	_, err := mongocodec.From(nil).
		WithCodecs(mongocodec.CurieCodec(), mongocodec.CurieCodec()).
		Build()
	it.Then(t).ShouldNot(it.Nil(err))

	_, ok := err.(*mongocodec.DuplicateRegistrationError)
	it.Then(t).Should(it.True(ok))
}

func TestWithCodecsAppliesEachInOrder(t *testing.T) {
	registry, err := mongocodec.From(nil).
		WithCodecs(mongocodec.CurieCodec()).
		With(mongocodec.Register[link]()).
		Build()
	it.Then(t).Should(it.Nil(err))

	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	data, err := mongocodec.Marshal(registry, cfg, link{
		Subject: curie.IRI("a:1"),
		Object:  curie.IRI("b:2"),
		Label:   "ref",
	})
	it.Then(t).Should(it.Nil(err))
	it.Then(t).ShouldNot(it.Equal(len(data), 0))
}
