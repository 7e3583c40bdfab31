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

func TestUnmarshalRejectsNonPointerTarget(t *testing.T) {
	registry := buildRegistry(t)
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	var out contact
	err = mongocodec.Unmarshal(registry, cfg, []byte{}, out)
	it.Then(t).ShouldNot(it.Nil(err))
}

func TestUnmarshalRejectsNilPointerTarget(t *testing.T) {
	registry := buildRegistry(t)
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	var out *contact
	err = mongocodec.Unmarshal(registry, cfg, []byte{}, out)
	it.Then(t).ShouldNot(it.Nil(err))
}

func TestMarshalRejectsNilInterface(t *testing.T) {
	registry := buildRegistry(t)
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	_, err = mongocodec.Marshal(registry, cfg, nil)
	it.Then(t).ShouldNot(it.Nil(err))
}

func TestMarshalRejectsUnregisteredType(t *testing.T) {
	registry := buildRegistry(t)
	cfg, err := mongocodec.NewConfig()
	it.Then(t).Should(it.Nil(err))

	type notRegistered struct {
		X int `bson:"x"`
	}
	_, err = mongocodec.Marshal(registry, cfg, notRegistered{X: 1})
	it.Then(t).ShouldNot(it.Nil(err))

	_, ok := err.(*mongocodec.NoCodecError)
	it.Then(t).Should(it.True(ok))
}
