//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package cache_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fogfish/it/v2"

	"github.com/fogfish/mongocodec/internal/cache"
)

func TestRegistryMemoizesHit(t *testing.T) {
	calls := 0
	r := cache.New[int](func(t reflect.Type) (int, error) {
		calls++
		return 42, nil
	})

	typ := reflect.TypeOf("")
	for i := 0; i < 5; i++ {
		v, err := r.Lookup(typ)
		it.Then(t).Should(it.Nil(err))
		it.Then(t).Should(it.Equal(v, 42))
	}
	it.Then(t).Should(it.Equal(calls, 1))
}

func TestRegistryDoesNotCacheMisses(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	r := cache.New[int](func(t reflect.Type) (int, error) {
		calls++
		return 0, boom
	})

	typ := reflect.TypeOf(0)
	_, err1 := r.Lookup(typ)
	_, err2 := r.Lookup(typ)
	it.Then(t).Should(
		it.Equal(err1, boom),
		it.Equal(err2, boom),
		it.Equal(calls, 2),
	)
}

func TestRegistryKeysAreIndependentPerType(t *testing.T) {
	r := cache.New[string](func(t reflect.Type) (string, error) {
		return t.Name(), nil
	})

	s, err := r.Lookup(reflect.TypeOf(""))
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(s, "string"))

	i, err := r.Lookup(reflect.TypeOf(0))
	it.Then(t).Should(it.Nil(err))
	it.Then(t).Should(it.Equal(i, "int"))
}
