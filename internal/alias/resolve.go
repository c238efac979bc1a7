// Package alias resolves a value from a loosely-labelled field bag given an
// ordered list of candidate field names.
package alias

import (
	"strings"

	"formscan/internal/fieldbag"
)

// markerGroup is a set of synonymous domain markers. A candidate containing
// any marker of a group may match a bag key containing any marker of it.
type markerGroup []string

// domainMarkers is evaluated in order; the order is part of the contract.
var domainMarkers = []markerGroup{
	{"ac", "auditory"},
	{"ec", "expressive"},
	{"total", "composite"},
	{"raw"},
	{"standard", "ss"},
	{"percentile", "rank"},
	{"confidence", "interval"},
}

// tier is one matching strategy. Tiers run top to bottom and stop at the
// first hit.
type tier struct {
	name  string
	match func(b *fieldbag.Bag, candidates []string) (string, bool)
}

var tiers = []tier{
	{name: "exact", match: exactMatch},
	{name: "substring", match: substringMatch},
	{name: "domain_keyword", match: domainKeywordMatch},
}

// Resolve returns the value of the best-matching key in bag. Keys holding
// null never match.
//
// A non-mapping, non-nil bag is treated as an already-resolved value and
// returned as-is. Callers must list the most specific candidates first.
func Resolve(bag any, candidates ...string) (any, bool) {
	v, _, ok := ResolveKey(bag, candidates...)
	return v, ok
}

// ResolveKey is Resolve that also reports the matched key and the tier that
// produced it. For a scalar bag the key is empty.
func ResolveKey(bag any, candidates ...string) (any, Match, bool) {
	if bag == nil {
		return nil, Match{}, false
	}
	b, isMap := fieldbag.BagOf(bag)
	if !isMap {
		return bag, Match{Tier: "passthrough"}, true
	}
	if b.Len() == 0 || len(candidates) == 0 {
		return nil, Match{}, false
	}
	for _, t := range tiers {
		key, ok := t.match(b, candidates)
		if !ok {
			continue
		}
		v, _ := b.Get(key)
		return v, Match{Key: key, Tier: t.name}, true
	}
	return nil, Match{}, false
}

// Match describes how a value was resolved.
type Match struct {
	Key  string
	Tier string
}

func exactMatch(b *fieldbag.Bag, candidates []string) (string, bool) {
	for _, c := range candidates {
		if b.Has(c) {
			return c, true
		}
	}
	return "", false
}

func substringMatch(b *fieldbag.Bag, candidates []string) (string, bool) {
	keys := b.Keys()
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == "" {
			continue
		}
		for _, k := range keys {
			if b.Has(k) && strings.Contains(strings.ToLower(k), lc) {
				return k, true
			}
		}
	}
	return "", false
}

func domainKeywordMatch(b *fieldbag.Bag, candidates []string) (string, bool) {
	keys := b.Keys()
	for _, c := range candidates {
		lc := strings.ToLower(c)
		for _, group := range domainMarkers {
			if !containsAny(lc, group) {
				continue
			}
			for _, k := range keys {
				if b.Has(k) && containsAny(strings.ToLower(k), group) {
					return k, true
				}
			}
		}
	}
	return "", false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
