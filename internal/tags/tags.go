// Package tags provides the immutable key/value metadata attached to log
// output by logging scopes.
//
// A Tags value maps string keys to a set of values. Keys may carry no values
// at all, which renders as a bare flag. Tags are built once with a Builder and
// never change afterwards, so they can be shared freely between goroutines.
//
//	t := tags.NewBuilder().
//	    AddTag("request", "r-123").
//	    AddTag("attempt", 2).
//	    Build()
//	merged := t.Merge(tags.Of("attempt", 3)) // attempt=[2, 3]
//
// The zero value is the empty Tags, equal to Empty().
package tags

import (
	"slices"
	"sort"
	"strings"
)

// Tags is an immutable multi-map from key to a set of values.
type Tags struct {
	// m values are sorted, deduplicated and never mutated once built.
	m map[string][]Value
}

// Empty returns the canonical empty Tags. It is the identity for Merge.
func Empty() Tags { return Tags{} }

// Of returns Tags holding a single key/value pair.
// It panics if value is not a supported tag type.
func Of(key string, value any) Tags {
	return NewBuilder().AddTag(key, value).Build()
}

// IsEmpty reports whether the tags hold no keys.
func (t Tags) IsEmpty() bool { return len(t.m) == 0 }

// Len returns the number of keys.
func (t Tags) Len() int { return len(t.m) }

// Keys returns the keys in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the sorted values for key, or nil if absent.
func (t Tags) Values(key string) []Value {
	vs, ok := t.m[key]
	if !ok {
		return nil
	}
	return slices.Clone(vs)
}

// HasKey reports whether key is present, with or without values.
func (t Tags) HasKey(key string) bool {
	_, ok := t.m[key]
	return ok
}

// Has reports whether value is one of the values under key.
func (t Tags) Has(key string, value any) bool {
	v, ok := ValueOf(value)
	if !ok {
		return false
	}
	_, found := slices.BinarySearchFunc(t.m[key], v, compare)
	return found
}

// Merge returns the per-key union of t and other.
// Neither input is modified.
func (t Tags) Merge(other Tags) Tags {
	if other.IsEmpty() {
		return t
	}
	if t.IsEmpty() {
		return other
	}
	out := make(map[string][]Value, len(t.m)+len(other.m))
	for k, vs := range t.m {
		out[k] = vs
	}
	for k, vs := range other.m {
		if existing, ok := out[k]; ok {
			out[k] = union(existing, vs)
			continue
		}
		out[k] = vs
	}
	return Tags{m: out}
}

// Equal reports whether both tags hold the same keys and value sets.
func (t Tags) Equal(other Tags) bool {
	if len(t.m) != len(other.m) {
		return false
	}
	for k, vs := range t.m {
		ovs, ok := other.m[k]
		if !ok || slices.CompareFunc(vs, ovs, compare) != 0 {
			return false
		}
	}
	return true
}

// Range calls fn for each key in sorted order until fn returns false.
func (t Tags) Range(fn func(key string, values []Value) bool) {
	for _, k := range t.Keys() {
		if !fn(k, t.m[k]) {
			return
		}
	}
}

// String renders tags as [k=v, k=v2, flag].
func (t Tags) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	sep := func() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
	}
	t.Range(func(k string, vs []Value) bool {
		if len(vs) == 0 {
			sep()
			sb.WriteString(k)
			return true
		}
		for _, v := range vs {
			sep()
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(v.String())
		}
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// union merges two sorted, deduplicated slices into a new one.
func union(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := compare(a[i], b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
