package normalizer

import (
	"strings"

	"formscan/internal/domain"
	"formscan/internal/fieldbag"
	"formscan/internal/scores"
)

// LegacyFlatKey is the scores entry older flattened exports put every
// subtest score under.
const LegacyFlatKey = "all"

// compoundRule routes a flattened key that names both a scale region and a
// metric, e.g. "acStandardScore".
type compoundRule struct {
	metric string
	bucket scores.BucketName
}

var (
	pls5Regions = []string{"ac", "ec", "total"}

	pls5Metrics = []compoundRule{
		{metric: "raw", bucket: scores.BucketRaw},
		{metric: "standard", bucket: scores.BucketStandard},
		{metric: "percentile", bucket: scores.BucketPercentile},
		{metric: "confidence", bucket: scores.BucketInterval},
	}
)

// PLS5Enricher routes the legacy flattened "all" map of PLS-5 exports.
type PLS5Enricher struct{}

// NewPLS5Enricher returns the PLS-5 enrichment hook.
func NewPLS5Enricher() *PLS5Enricher {
	return &PLS5Enricher{}
}

// Enrich moves every entry of rest["all"] into a bucket, trying the compound
// region+metric rule before the generic single-keyword rules. Entries that
// match nothing, or whose key is already taken in the target bucket, stay
// under rest["all"].
func (e *PLS5Enricher) Enrich(buckets *domain.ScoreBuckets, rest *fieldbag.Bag) {
	flat, ok := rest.Bag(LegacyFlatKey)
	if !ok {
		return
	}
	leftover := fieldbag.New()
	for _, k := range flat.Keys() {
		v, _ := flat.Get(k)
		if v == nil {
			continue
		}
		name, ok := pls5Bucket(k)
		if !ok {
			leftover.Set(k, v)
			continue
		}
		dst := scores.Get(buckets, name)
		if _, taken := dst[k]; taken {
			leftover.Set(k, v)
			continue
		}
		dst[k] = fieldbag.ToPlain(v)
	}
	if leftover.Len() == 0 {
		rest.Delete(LegacyFlatKey)
		return
	}
	rest.Set(LegacyFlatKey, leftover)
}

func pls5Bucket(key string) (scores.BucketName, bool) {
	lk := strings.ToLower(key)
	if hasAny(lk, pls5Regions) {
		for _, r := range pls5Metrics {
			if strings.Contains(lk, r.metric) {
				return r.bucket, true
			}
		}
	}
	return scores.Bucket(key)
}

func hasAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
