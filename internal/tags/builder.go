// internal/tags/builder.go
package tags

import (
	"fmt"
	"slices"
)

// Builder accumulates tags. A Builder is not safe for concurrent use.
type Builder struct {
	m map[string][]Value
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{m: make(map[string][]Value)}
}

// AddTag adds value under key. Repeated values are kept once.
// It panics if key is empty or value is not a string, bool, integer or float.
func (b *Builder) AddTag(key string, value any) *Builder {
	if key == "" {
		panic("tags: key cannot be empty")
	}
	v, ok := ValueOf(value)
	if !ok {
		panic(fmt.Sprintf("tags: unsupported value type %T for key %q", value, key))
	}
	vs := b.m[key]
	i, found := slices.BinarySearchFunc(vs, v, compare)
	if !found {
		vs = slices.Insert(vs, i, v)
	}
	b.m[key] = vs
	return b
}

// AddEmpty adds key without any value.
// It panics if key is empty.
func (b *Builder) AddEmpty(key string) *Builder {
	if key == "" {
		panic("tags: key cannot be empty")
	}
	if _, ok := b.m[key]; !ok {
		b.m[key] = nil
	}
	return b
}

// AddAll adds every key and value of t.
func (b *Builder) AddAll(t Tags) *Builder {
	for k, vs := range t.m {
		if len(vs) == 0 {
			b.AddEmpty(k)
			continue
		}
		for _, v := range vs {
			b.AddTag(k, v)
		}
	}
	return b
}

// Build returns the accumulated Tags. The builder may be reused; later
// additions do not affect tags already built.
func (b *Builder) Build() Tags {
	if len(b.m) == 0 {
		return Empty()
	}
	out := make(map[string][]Value, len(b.m))
	for k, vs := range b.m {
		out[k] = slices.Clone(vs)
	}
	return Tags{m: out}
}
