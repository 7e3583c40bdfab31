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

	"github.com/fogfish/it/v2"

	"github.com/fogfish/mongocodec"
)

type suit int

const (
	clubs suit = iota
	diamonds
	hearts
	spades
)

type weekday string

const (
	monday  weekday = "Monday"
	tuesday weekday = "Tuesday"
	sunday  weekday = "Sunday"
)

type priority struct {
	level int
}

var (
	low    = priority{level: 1}
	medium = priority{level: 5}
	high   = priority{level: 9}
)

// schedule, hand and ticket each carry one enum-typed field: a BSON value
// written at the top level is always a document, so an enum round-trips
// inside a record field.
type schedule struct {
	Day weekday `bson:"day"`
}

type hand struct {
	Suit suit `bson:"suit"`
}

type ticket struct {
	Priority priority `bson:"priority"`
}

func registryWithProvider(t *testing.T, p mongocodec.CodecProvider, steps ...func(mongocodec.Builder) mongocodec.Builder) mongocodec.Registry {
	t.Helper()
	registry, err := mongocodec.From(nil).WithProvider(p).With(steps...).Build()
	it.Then(t).Should(it.Nil(err))
	return registry
}

func TestEnumByName(t *testing.T) {
	provider := mongocodec.ByName(map[weekday]string{
		monday: "monday",
		sunday: "sunday",
	})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider, mongocodec.Register[schedule]())

	data, err := mongocodec.Marshal(registry, cfg, schedule{Day: monday})
	it.Then(t).Should(it.Nil(err))

	var out schedule
	err = mongocodec.Unmarshal(registry, cfg, data, &out)
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(out.Day, monday))
}

func TestEnumByNameRejectsUnknownValue(t *testing.T) {
	provider := mongocodec.ByName(map[weekday]string{monday: "monday"})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider)

	_, err = mongocodec.Marshal(registry, cfg, tuesday)
	it.Then(t).ShouldNot(it.Nil(err))
	_, ok := err.(*mongocodec.UnknownEnumValueError)
	it.Then(t).Should(it.True(ok))
}

func TestEnumByOrdinalRoundTrip(t *testing.T) {
	provider := mongocodec.ByOrdinal([]suit{clubs, diamonds, hearts, spades})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider, mongocodec.Register[hand]())

	data, err := mongocodec.Marshal(registry, cfg, hand{Suit: hearts})
	it.Then(t).Should(it.Nil(err))

	var out hand
	err = mongocodec.Unmarshal(registry, cfg, data, &out)
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(out.Suit, hearts))
}

func TestEnumByOrdinalRejectsUnlistedValueOnEncode(t *testing.T) {
	// spades is outside the two-variant list the provider is built with,
	// so encode rejects it with UnknownEnumValueError before any ordinal
	// is written.
	provider := mongocodec.ByOrdinal([]suit{clubs, diamonds})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider)

	_, err = mongocodec.Marshal(registry, cfg, spades)
	it.Then(t).ShouldNot(it.Nil(err))
}

func TestEnumByProjectionRoundTrip(t *testing.T) {
	provider := mongocodec.ByProjection([]priority{low, medium, high}, func(p priority) int {
		return p.level
	})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider, mongocodec.Register[ticket]())

	data, err := mongocodec.Marshal(registry, cfg, ticket{Priority: medium})
	it.Then(t).Should(it.Nil(err))

	var out ticket
	err = mongocodec.Unmarshal(registry, cfg, data, &out)
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(out.Priority.level, medium.level))
}

func TestEnumByProjectionRejectsUnknownProjection(t *testing.T) {
	provider := mongocodec.ByProjection([]priority{low, medium}, func(p priority) int {
		return p.level
	})
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))
	registry := registryWithProvider(t, provider)

	_, err = mongocodec.Marshal(registry, cfg, high)
	it.Then(t).ShouldNot(it.Nil(err))
}
