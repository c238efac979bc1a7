// Package fieldbag models the untyped, semi-structured payloads returned by
// OCR/LLM extraction as an ordered key/value map with defensive accessors.
package fieldbag

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Bag is an ordered string-keyed map. The zero value and the nil pointer are
// both usable as an empty bag.
type Bag struct {
	m *orderedmap.OrderedMap[string, any]
}

// New returns an empty bag.
func New() *Bag {
	return &Bag{m: orderedmap.New[string, any]()}
}

// each calls fn for every entry in insertion order until fn returns false.
func (b *Bag) each(fn func(key string, v any) bool) {
	if b == nil || b.m == nil {
		return
	}
	for pair := b.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// FromMap builds a bag from a Go map. Keys are sorted so iteration order is
// deterministic; nested maps become bags.
func FromMap(m map[string]any) *Bag {
	b := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Set(k, wrap(m[k]))
	}
	return b
}

// Parse decodes a JSON document, preserving object key order. Anything other
// than a JSON object yields an empty bag.
func Parse(data []byte) *Bag {
	if !gjson.ValidBytes(data) {
		return New()
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return New()
	}
	return fromResult(res)
}

// ParseString is Parse for string input.
func ParseString(s string) *Bag {
	return Parse([]byte(s))
}

func fromResult(res gjson.Result) *Bag {
	b := New()
	res.ForEach(func(key, value gjson.Result) bool {
		b.Set(key.String(), valueOf(value))
		return true
	})
	return b
}

func valueOf(r gjson.Result) any {
	switch {
	case r.IsObject():
		return fromResult(r)
	case r.IsArray():
		items := r.Array()
		out := make([]any, 0, len(items))
		for _, it := range items {
			out = append(out, valueOf(it))
		}
		return out
	}
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Num
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

func wrap(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = wrap(t[i])
		}
		return out
	default:
		return v
	}
}

// BagOf returns v as a bag when it is a mapping. Scalars, slices and nil
// report false.
func BagOf(v any) (*Bag, bool) {
	switch t := v.(type) {
	case *Bag:
		if t == nil {
			return nil, false
		}
		return t, true
	case map[string]any:
		return FromMap(t), true
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return FromMap(m), true
	default:
		return nil, false
	}
}

// IsMapping reports whether v is an object-like value.
func IsMapping(v any) bool {
	_, ok := BagOf(v)
	return ok
}

// Len returns the number of keys.
func (b *Bag) Len() int {
	if b == nil || b.m == nil {
		return 0
	}
	return b.m.Len()
}

// Keys returns the keys in insertion order. The slice is a copy.
func (b *Bag) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, b.Len())
	b.each(func(k string, _ any) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Get returns the value stored under key.
func (b *Bag) Get(key string) (any, bool) {
	if b == nil || b.m == nil {
		return nil, false
	}
	return b.m.Get(key)
}

// Has reports whether key is present with a non-null value.
func (b *Bag) Has(key string) bool {
	v, ok := b.Get(key)
	return ok && v != nil
}

// Set stores v under key. Existing keys keep their position.
func (b *Bag) Set(key string, v any) {
	if b.m == nil {
		b.m = orderedmap.New[string, any]()
	}
	b.m.Set(key, v)
}

// Delete removes key if present.
func (b *Bag) Delete(key string) {
	if b == nil || b.m == nil {
		return
	}
	b.m.Delete(key)
}

// Bag returns the nested bag under key, if the value there is a mapping.
func (b *Bag) Bag(key string) (*Bag, bool) {
	v, ok := b.Get(key)
	if !ok {
		return nil, false
	}
	return BagOf(v)
}

// String returns the scalar under key rendered as a trimmed string. Missing,
// null and non-scalar values yield "".
func (b *Bag) String(key string) string {
	v, ok := b.Get(key)
	if !ok {
		return ""
	}
	return ScalarString(v)
}

// Lookup returns the first present, non-null value among keys: exact matches
// first, then a case-insensitive pass.
func (b *Bag) Lookup(keys ...string) (any, bool) {
	key, ok := b.LookupKey(keys...)
	if !ok {
		return nil, false
	}
	return b.Get(key)
}

// LookupKey is Lookup that also reports which bag key matched.
func (b *Bag) LookupKey(keys ...string) (string, bool) {
	if b.Len() == 0 {
		return "", false
	}
	for _, k := range keys {
		if b.Has(k) {
			return k, true
		}
	}
	for _, k := range keys {
		found := ""
		b.each(func(bk string, v any) bool {
			if v != nil && strings.EqualFold(bk, k) {
				found = bk
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// ScalarString renders strings, numbers and booleans as text. Everything else
// is "".
func ScalarString(v any) string {
	if !IsScalar(v) {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// IsScalar reports whether v is a string, number or boolean.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

// ToPlain converts bags (recursively) into map[string]any so values can be
// compared and serialised without this package.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *Bag:
		if t == nil {
			return nil
		}
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = ToPlain(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = ToPlain(x)
		}
		return out
	default:
		return v
	}
}

// Map returns a plain-map copy of the bag.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, b.Len())
	if b == nil {
		return out
	}
	b.each(func(k string, v any) bool {
		out[k] = ToPlain(v)
		return true
	})
	return out
}

// MarshalJSON writes keys in insertion order. A nil or empty bag is "{}".
func (b *Bag) MarshalJSON() ([]byte, error) {
	if b.Len() == 0 {
		return []byte("{}"), nil
	}
	return b.m.MarshalJSON()
}

// UnmarshalJSON decodes like Parse. Non-object JSON leaves the bag empty.
func (b *Bag) UnmarshalJSON(data []byte) error {
	*b = *Parse(data)
	return nil
}
