//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

// Package cache implements the Cached Child Registry of spec §3: a
// thread-safe, lazily-populated memoization layer in front of a Lookup
// function, grounded on the ircache/ircacheL pair in mongo-driver's own
// bson.Registry (bson/registry.go) - the same read-mostly, write-rarely
// access pattern, rewritten against this module's own Codec/Lookup
// contract instead of bsoncodec.ValueEncoder/ValueDecoder.
package cache

import (
	"reflect"
	"sync"
)

// Lookup resolves a Codec for a type, failing if none is found. It is
// whatever the caller would otherwise call directly; Registry wraps it
// with memoization.
type Lookup[C any] func(t reflect.Type) (C, error)

// Registry memoizes the result of an underlying Lookup per reflect.Type.
// A successful result is stored and shared by every subsequent Lookup for
// the same type, which then never touches the underlying function again;
// a failed result is not stored, so the next Lookup calls it again.
type Registry[C any] struct {
	underlying Lookup[C]

	mu    sync.RWMutex
	cache map[reflect.Type]C
}

// New wraps underlying with a fresh, empty cache.
func New[C any](underlying Lookup[C]) *Registry[C] {
	return &Registry[C]{
		underlying: underlying,
		cache:      make(map[reflect.Type]C),
	}
}

// Lookup returns the cached Codec for t, computing and storing it via the
// underlying Lookup on a miss.
func (r *Registry[C]) Lookup(t reflect.Type) (C, error) {
	r.mu.RLock()
	c, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	c, err := r.underlying(t)
	if err != nil {
		var zero C
		return zero, err
	}

	r.mu.Lock()
	r.cache[t] = c
	r.mu.Unlock()

	return c, nil
}
