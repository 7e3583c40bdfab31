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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fogfish/opts"
)

// Builder is the RegistryBuilderState of spec §4.4: an immutable value
// that accumulates codec providers and explicit codecs. Every mutator
// below returns a fresh Builder; the receiver is never modified, per
// §5's "RegistryBuilderState is an immutable value; each mutator returns
// a new state."
//
// Generic methods do not exist in Go (a method cannot introduce type
// parameters beyond its receiver's), so register<T> and register_sealed<S>
// are free functions returning a func(Builder) Builder, applied through
// With - the same shape github.com/fogfish/opts uses for its own
// functional options, just one level up.
//
// Builder carries a sticky error: once any mutator fails, every
// subsequent mutator is a no-op that just propagates the same error, and
// Build reports it. This lets a long registration chain read top to
// bottom without an early return after every step, the common idiom for
// Go builders that can fail mid-chain.
type Builder struct {
	base       Registry
	config     Config
	codecs     map[reflect.Type]Codec
	providers  []CodecProvider
	registered mapset.Set[reflect.Type]
	err        error
}

// From starts a Builder over base, the Registry consulted first on every
// Lookup, ahead of anything registered here. base may be nil.
func From(base Registry) Builder {
	cfg, _ := NewConfig()
	return Builder{
		base:       base,
		config:     cfg,
		codecs:     map[reflect.Type]Codec{},
		registered: mapset.NewThreadUnsafeSet[reflect.Type](),
	}
}

func (b Builder) clone() Builder {
	codecs := make(map[reflect.Type]Codec, len(b.codecs))
	for t, c := range b.codecs {
		codecs[t] = c
	}
	providers := make([]CodecProvider, len(b.providers))
	copy(providers, b.providers)

	return Builder{
		base:       b.base,
		config:     b.config,
		codecs:     codecs,
		providers:  providers,
		registered: b.registered.Clone(),
		err:        b.err,
	}
}

func (b Builder) fail(err error) Builder {
	nb := b
	nb.err = err
	return nb
}

// Configure replaces the Builder's Config, applying options against the
// existing configuration (rather than a fresh default one) so repeated
// Configure calls compose.
func (b Builder) Configure(options ...Option) Builder {
	if b.err != nil {
		return b
	}

	cfg := b.config
	if err := opts.Apply(&cfg, options); err != nil {
		return b.fail(&DerivationError{Kind: "InvalidConfig", err: err})
	}

	nb := b.clone()
	nb.config = cfg
	return nb
}

// WithCodec appends an explicit Codec, keyed by its own Type(). Rejects a
// type already present in the registered-type set.
func (b Builder) WithCodec(c Codec) Builder {
	if b.err != nil {
		return b
	}

	t := c.Type()
	if b.registered.Contains(t) {
		return b.fail(&DuplicateRegistrationError{Type: t})
	}

	nb := b.clone()
	nb.codecs[t] = c
	nb.registered.Add(t)
	return nb
}

// WithCodecs appends each of cs in order, the same as calling WithCodec
// repeatedly; a duplicate anywhere in the batch fails the whole chain.
func (b Builder) WithCodecs(cs ...Codec) Builder {
	out := b
	for _, c := range cs {
		out = out.WithCodec(c)
	}
	return out
}

// WithProvider appends a CodecProvider - typically one of ByName,
// ByOrdinal, or ByProjection - that resolves a Codec at Lookup time
// instead of one already derived up front. Unlike WithCodec, a provider
// is not checked against the registered-type set here: it may not even
// know its own target type until CodecFor is called. Provider-backed
// types are not checked for duplicates at all: at Lookup time the first
// matching provider wins, as spec §4.4's build order specifies.
func (b Builder) WithProvider(p CodecProvider) Builder {
	if b.err != nil {
		return b
	}

	nb := b.clone()
	nb.providers = append(nb.providers, p)
	return nb
}

// With applies each registration function in order. Register, RegisterIf,
// and RegisterSealed all return one of these; With is how they compose
// onto a Builder, since Go cannot express them as generic methods.
func (b Builder) With(fns ...func(Builder) Builder) Builder {
	out := b
	for _, fn := range fns {
		out = fn(out)
	}
	return out
}

// providerFor wraps a single already-derived Codec as a CodecProvider
// that matches exactly its own Type().
func providerFor(c Codec) CodecProvider {
	return CodecProviderFunc(func(t reflect.Type, ambient Registry) (Codec, bool) {
		if t == c.Type() {
			return c, true
		}
		return nil, false
	})
}

// Register derives a Record Codec (spec §4.1) for T and returns a
// registration function suitable for Builder.With.
func Register[T any]() func(Builder) Builder {
	return func(b Builder) Builder {
		if b.err != nil {
			return b
		}

		var zero T
		t := reflect.TypeOf(zero)
		if b.registered.Contains(t) {
			return b.fail(&DuplicateRegistrationError{Type: t})
		}

		rc, err := newRecordCodec[T]()
		if err != nil {
			return b.fail(err)
		}

		nb := b.clone()
		nb.providers = append(nb.providers, providerFor(rc))
		nb.registered.Add(t)
		return nb
	}
}

// RegisterIf registers T only when cond is true; otherwise it is the
// identity transform, per spec §4.4's register_if.
func RegisterIf[T any](cond bool) func(Builder) Builder {
	return func(b Builder) Builder {
		if !cond {
			return b
		}
		return Register[T]()(b)
	}
}

// RegisterSealed derives a Sealed Codec (spec §4.2) for interface type S
// out of the supplied variant values, AND registers each variant's own
// Record Codec - so a variant can also be encoded/decoded standalone,
// and so the sealed codec's per-variant dispatch has somewhere to land.
func RegisterSealed[S any](variants ...any) func(Builder) Builder {
	return func(b Builder) Builder {
		if b.err != nil {
			return b
		}

		var zero S
		st := reflect.TypeOf(&zero).Elem()
		if b.registered.Contains(st) {
			return b.fail(&DuplicateRegistrationError{Type: st})
		}

		sc, err := newSealedCodec[S](b.config, variants...)
		if err != nil {
			return b.fail(err)
		}

		nb := b.clone()
		nb.providers = append(nb.providers, providerFor(sc))
		nb.registered.Add(st)

		for vt, rc := range sc.variant {
			if nb.registered.Contains(vt) {
				return b.fail(&DuplicateRegistrationError{Type: vt})
			}
			nb.providers = append(nb.providers, providerFor(rc))
			nb.registered.Add(vt)
		}

		return nb
	}
}

// RegisterAll composes a batch of Register/RegisterIf steps into one,
// per spec §4.4's register_all<T1..Tn>. Go cannot express a compile-time
// type tuple, so the batch is the same []func(Builder) Builder shape
// With already takes; what RegisterAll adds is error classification: a
// type collision that arises between two members of this batch is
// DuplicateInTupleError, distinct from DuplicateRegistrationError for a
// collision against state b already carried coming in.
func RegisterAll(fns ...func(Builder) Builder) func(Builder) Builder {
	return func(b Builder) Builder {
		if b.err != nil {
			return b
		}

		before := b.registered
		out := b
		for _, fn := range fns {
			out = fn(out)
			if out.err != nil {
				if dup, ok := out.err.(*DuplicateRegistrationError); ok && !before.Contains(dup.Type) {
					return b.fail(&DuplicateInTupleError{Type: dup.Type})
				}
				return out
			}
		}
		return out
	}
}

// RegisterSealedAll batches RegisterSealed steps the same way RegisterAll
// batches Register/RegisterIf ones, per spec §4.4's
// register_sealed_all<S1..Sn>.
func RegisterSealedAll(fns ...func(Builder) Builder) func(Builder) Builder {
	return RegisterAll(fns...)
}

// Merge concatenates other's providers and explicit codecs onto b,
// keeping b's Config, per spec §4.4's ++ operator (renamed: Go has no
// operator overloading). A type registered on both sides fails the merge.
func (b Builder) Merge(other Builder) Builder {
	if b.err != nil {
		return b
	}
	if other.err != nil {
		return b.fail(other.err)
	}

	for t := range other.registered.Iter() {
		if b.registered.Contains(t) {
			return b.fail(&DuplicateRegistrationError{Type: t})
		}
	}

	nb := b.clone()
	nb.providers = append(nb.providers, other.providers...)
	for t, c := range other.codecs {
		nb.codecs[t] = c
	}
	nb.registered = nb.registered.Union(other.registered)
	return nb
}

// Build assembles the final Registry: base, then explicit codecs, then
// providers, leftmost wins on overlap, wrapped in a Cached Child
// Registry. Build does not reset the Builder; the same value may be
// extended further and built again.
func (b Builder) Build() (Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newCompositeRegistry(b.base, b.codecs, b.providers), nil
}
