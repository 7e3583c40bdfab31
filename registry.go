//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/mongocodec
//

package mongocodec

import (
	"reflect"

	"github.com/fogfish/mongocodec/internal/cache"
)

// compositeRegistry is the concrete Registry Build() produces: base,
// explicit codecs, and providers chained in the order spec §4.4's build
// operation names them, leftmost wins on overlap. Every Lookup is
// memoized through a Cached Child Registry (spec §4.5) so repeated
// traversal of the same nested type costs one map read after the first.
type compositeRegistry struct {
	cached *cache.Registry[Codec]
}

// newCompositeRegistry assembles base ▷ fromCodecs(codecs) ▷
// fromProviders(providers), left wins.
func newCompositeRegistry(base Registry, codecs map[reflect.Type]Codec, providers []CodecProvider) Registry {
	r := &compositeRegistry{}

	resolve := func(t reflect.Type) (Codec, error) {
		if base != nil {
			if c, err := base.Lookup(t); err == nil {
				return c, nil
			}
		}

		if c, ok := codecs[t]; ok {
			return c, nil
		}

		for _, p := range providers {
			if c, ok := p.CodecFor(t, r); ok {
				return c, nil
			}
		}

		return nil, &NoCodecError{Type: t}
	}

	r.cached = cache.New[Codec](resolve)
	return r
}

func (r *compositeRegistry) Lookup(t reflect.Type) (Codec, error) {
	return r.cached.Lookup(t)
}
