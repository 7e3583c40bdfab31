//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

// Package mongocodec derives BSON encoders/decoders for Go structs and
// sealed interfaces, and assembles them into a Registry consumable by
// go.mongodb.org/mongo-driver.
//
// Inspiration
//
// The library lets applications declare domain models as plain Go structs
// and closed interfaces, and derives the wire codec instead of hand-writing
// MarshalBSON/UnmarshalBSON pairs. It follows the same generic-programming
// style used to map Go structs onto AWS attribute values: a struct is
// walked once, by reflection, to build a Field Schema, and that schema
// drives both encode and decode.
//
// Getting started
//
// Define a domain record and a closed set of variants:
//
//	type Animal interface{ isAnimal() }
//
//	type Dog struct {
//	  Name  string `bson:"name"`
//	  Breed string `bson:"breed"`
//	}
//	func (Dog) isAnimal() {}
//
//	type Cat struct {
//	  Name  string `bson:"name"`
//	  Lives int    `bson:"lives"`
//	}
//	func (Cat) isAnimal() {}
//
// Build a registry against a base registry (e.g. the driver's own
// bson.DefaultRegistry, adapted through FromDriver):
//
//	base := mongocodec.FromDriver(bson.DefaultRegistry)
//	registry, err := mongocodec.From(base).
//	  With(mongocodec.RegisterSealed[Animal](Dog{}, Cat{})).
//	  Build()
//
// Go methods cannot take their own type parameters, so RegisterSealed (like
// Register and RegisterIf) is a free function returning a registration step;
// With is how one or more steps attach to a Builder.
//
// Look up a codec and use it the way the driver's own Registry is used:
//
//	codec, err := registry.Lookup(reflect.TypeOf(Dog{}))
//
// Marshal resolves a Codec from v's own dynamic type, so a sealed variant
// passed to it encodes as a bare record - which RegisterSealed also
// registers standalone, by design. Use MarshalAs[Animal](registry, cfg,
// Dog{...}) to encode through the sealed wrapper and get a discriminator.
package mongocodec
