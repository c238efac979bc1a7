// Package scores reshapes loosely-structured score dictionaries into the
// fixed five-bucket taxonomy.
package scores

import (
	"strings"

	"formscan/internal/alias"
	"formscan/internal/domain"
	"formscan/internal/fieldbag"
)

// BucketName is the JSON key of one canonical bucket.
type BucketName string

const (
	BucketRaw        BucketName = "rawScores"
	BucketStandard   BucketName = "standardScores"
	BucketPercentile BucketName = "percentiles"
	BucketInterval   BucketName = "confidenceIntervals"
	BucketComposite  BucketName = "compositeScores"
)

// Buckets lists the canonical buckets in declaration order.
var Buckets = []BucketName{BucketRaw, BucketStandard, BucketPercentile, BucketInterval, BucketComposite}

// IsBucket reports whether key names a canonical bucket.
func IsBucket(key string) bool {
	for _, b := range Buckets {
		if string(b) == key {
			return true
		}
	}
	return false
}

// keywordRule routes a key to bucket when its lower-cased form contains any
// of markers.
type keywordRule struct {
	bucket  BucketName
	markers []string
}

// keywordRules run top to bottom; a key containing both "raw" and "standard"
// is a raw score.
var keywordRules = []keywordRule{
	{bucket: BucketRaw, markers: []string{"raw"}},
	{bucket: BucketStandard, markers: []string{"standard"}},
	{bucket: BucketPercentile, markers: []string{"percentile", "rank"}},
	{bucket: BucketInterval, markers: []string{"confidence", "interval"}},
	{bucket: BucketComposite, markers: []string{"total", "composite"}},
}

// Bucket classifies a loose score key by single keyword.
func Bucket(key string) (BucketName, bool) {
	lk := strings.ToLower(key)
	for _, r := range keywordRules {
		for _, m := range r.markers {
			if strings.Contains(lk, m) {
				return r.bucket, true
			}
		}
	}
	return "", false
}

// Normalize returns the five buckets for raw, discarding keys it cannot
// classify.
func Normalize(raw any) domain.ScoreBuckets {
	b, _ := Split(raw)
	return b
}

// Split is Normalize that also returns what it could not place: loose
// scalars no rule matched, non-canonical nested objects such as a legacy
// "all" map, and loose keys that collided with a canonical entry.
//
// Canonical buckets present in raw are copied forward verbatim. Each loose
// scalar lands in at most one bucket.
func Split(raw any) (domain.ScoreBuckets, *fieldbag.Bag) {
	out := domain.NewScoreBuckets()
	rest := fieldbag.New()
	src, ok := fieldbag.BagOf(raw)
	if !ok {
		return out, rest
	}

	for _, name := range Buckets {
		nested, ok := src.Bag(string(name))
		if !ok {
			continue
		}
		dst := Get(&out, name)
		for _, k := range nested.Keys() {
			v, _ := nested.Get(k)
			dst[k] = fieldbag.ToPlain(v)
		}
	}

	for _, k := range src.Keys() {
		if IsBucket(k) {
			continue
		}
		v, _ := src.Get(k)
		if v == nil {
			continue
		}
		if !fieldbag.IsScalar(v) {
			rest.Set(k, v)
			continue
		}
		name, ok := Bucket(k)
		if !ok {
			rest.Set(k, v)
			continue
		}
		dst := Get(&out, name)
		if _, taken := dst[k]; taken {
			rest.Set(k, v)
			continue
		}
		dst[k] = v
	}
	return out, rest
}

// Get returns the map backing bucket name, allocating it if nil.
func Get(b *domain.ScoreBuckets, name BucketName) map[string]any {
	var slot *map[string]any
	switch name {
	case BucketRaw:
		slot = &b.RawScores
	case BucketStandard:
		slot = &b.StandardScores
	case BucketPercentile:
		slot = &b.Percentiles
	case BucketInterval:
		slot = &b.ConfidenceIntervals
	case BucketComposite:
		slot = &b.CompositeScores
	default:
		return nil
	}
	if *slot == nil {
		*slot = map[string]any{}
	}
	return *slot
}

// Reconcile restores the bucket invariant on a record edited outside the
// pipeline: all five buckets exist and hold plain values.
func Reconcile(b domain.ScoreBuckets) domain.ScoreBuckets {
	out := domain.NewScoreBuckets()
	for _, name := range Buckets {
		dst := Get(&out, name)
		for k, v := range Get(&b, name) {
			dst[k] = fieldbag.ToPlain(v)
		}
	}
	return out
}

// Lookup resolves a score inside one bucket with the field alias resolver.
// Candidates must be ordered most specific first.
func Lookup(b domain.ScoreBuckets, name BucketName, candidates ...string) (any, bool) {
	return LookupWhere(b, name, nil, candidates...)
}

// LookupWhere is Lookup restricted to the bucket keys keep accepts. A nil keep
// accepts every key.
func LookupWhere(b domain.ScoreBuckets, name BucketName, keep func(key string) bool, candidates ...string) (any, bool) {
	m := Get(&b, name)
	if keep != nil {
		sub := make(map[string]any, len(m))
		for k, v := range m {
			if keep(k) {
				sub[k] = v
			}
		}
		m = sub
	}
	if len(m) == 0 {
		return nil, false
	}
	return alias.Resolve(m, candidates...)
}
