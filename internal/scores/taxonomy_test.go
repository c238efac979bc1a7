package scores_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formscan/internal/domain"
	"formscan/internal/fieldbag"
	"formscan/internal/scores"
)

func assertComplete(t *testing.T, b domain.ScoreBuckets) {
	t.Helper()
	assert.NotNil(t, b.RawScores)
	assert.NotNil(t, b.StandardScores)
	assert.NotNil(t, b.Percentiles)
	assert.NotNil(t, b.ConfidenceIntervals)
	assert.NotNil(t, b.CompositeScores)
}

func TestNormalize_AlwaysFiveBuckets(t *testing.T) {
	inputs := []any{
		nil,
		42,
		"scores",
		[]any{1, 2},
		map[string]any{},
		fieldbag.ParseString(`{"rawScores":null,"standardScores":"bad"}`),
		fieldbag.ParseString(`{"acRaw":12,"mystery":3}`),
	}
	for _, in := range inputs {
		assertComplete(t, scores.Normalize(in))
	}
}

func TestNormalize_KeywordOrder(t *testing.T) {
	b := scores.Normalize(fieldbag.ParseString(`{
		"Raw Standard Mix": 1,
		"AC Standard Score": 75,
		"EC Percentile Rank": 12,
		"Confidence Interval 90%": "70-82",
		"Total Language": 80,
		"Composite": 99,
		"Examiner": "Dr. Lee"
	}`))

	assert.Equal(t, map[string]any{"Raw Standard Mix": float64(1)}, b.RawScores)
	assert.Equal(t, map[string]any{"AC Standard Score": float64(75)}, b.StandardScores)
	assert.Equal(t, map[string]any{"EC Percentile Rank": float64(12)}, b.Percentiles)
	assert.Equal(t, map[string]any{"Confidence Interval 90%": "70-82"}, b.ConfidenceIntervals)
	assert.Equal(t, map[string]any{"Total Language": float64(80), "Composite": float64(99)}, b.CompositeScores)
	assert.Equal(t, 6, b.Count())
}

func TestNormalize_RankWithoutPercentile(t *testing.T) {
	b := scores.Normalize(map[string]any{"AC Rank": 40})
	assert.Equal(t, map[string]any{"AC Rank": 40}, b.Percentiles)
}

func TestSplit_CanonicalBucketsPassThrough(t *testing.T) {
	raw := fieldbag.ParseString(`{
		"standardScores": {"AC": 75, "weird": {"nested": true}},
		"percentiles": {"EC": 1},
		"acRawScore": 20
	}`)

	b, rest := scores.Split(raw)

	assert.Equal(t, map[string]any{"AC": float64(75), "weird": map[string]any{"nested": true}}, b.StandardScores)
	assert.Equal(t, map[string]any{"EC": float64(1)}, b.Percentiles)
	assert.Equal(t, map[string]any{"acRawScore": float64(20)}, b.RawScores)
	assert.Equal(t, 0, rest.Len())
}

func TestSplit_RestHoldsUnplaced(t *testing.T) {
	raw := fieldbag.ParseString(`{
		"standardScores": {"AC Standard": 75},
		"AC Standard": 99,
		"all": {"acStandardScore": 75},
		"mystery": 3,
		"skipped": null
	}`)

	b, rest := scores.Split(raw)

	assert.Equal(t, map[string]any{"AC Standard": float64(75)}, b.StandardScores)
	assert.Equal(t, []string{"AC Standard", "all", "mystery"}, rest.Keys())
}

func TestSplit_EachLooseKeyPlacedOnce(t *testing.T) {
	b, _ := scores.Split(map[string]any{"Total Raw": 30})

	assert.Equal(t, map[string]any{"Total Raw": 30}, b.RawScores)
	assert.Empty(t, b.CompositeScores)
}

func TestBucket(t *testing.T) {
	tests := []struct {
		key  string
		want scores.BucketName
		ok   bool
	}{
		{key: "acRawScore", want: scores.BucketRaw, ok: true},
		{key: "RAW STANDARD", want: scores.BucketRaw, ok: true},
		{key: "standard", want: scores.BucketStandard, ok: true},
		{key: "PercentileRank", want: scores.BucketPercentile, ok: true},
		{key: "interval", want: scores.BucketInterval, ok: true},
		{key: "compositeScore", want: scores.BucketComposite, ok: true},
		{key: "growthScaleValue", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := scores.Bucket(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcile(t *testing.T) {
	edited := domain.ScoreBuckets{
		StandardScores: map[string]any{"AC": fieldbag.ParseString(`{"value":75}`)},
	}

	b := scores.Reconcile(edited)

	assertComplete(t, b)
	assert.Equal(t, map[string]any{"AC": map[string]any{"value": float64(75)}}, b.StandardScores)
}

func TestLookup(t *testing.T) {
	b := scores.Normalize(fieldbag.ParseString(`{"AC Standard Score":75,"Standard Score Total":137}`))

	v, ok := scores.Lookup(b, scores.BucketStandard, "AC Standard Score", "AC")
	require.True(t, ok)
	assert.Equal(t, float64(75), v)

	_, ok = scores.Lookup(b, scores.BucketRaw, "AC")
	assert.False(t, ok)
}

func TestLookupWhere_RestrictsKeys(t *testing.T) {
	b := domain.NewScoreBuckets()
	b.StandardScores["acStandardScore"] = float64(75)

	v, ok := scores.Lookup(b, scores.BucketStandard, "Expressive Communication", "EC")
	require.True(t, ok, "unrestricted lookup falls back across regions")
	assert.Equal(t, float64(75), v)

	isEC := func(k string) bool { return strings.HasPrefix(strings.ToLower(k), "ec") }
	_, ok = scores.LookupWhere(b, scores.BucketStandard, isEC, "Expressive Communication", "EC")
	assert.False(t, ok)

	b.StandardScores["ecStandardScore"] = float64(81)
	v, ok = scores.LookupWhere(b, scores.BucketStandard, isEC, "Expressive Communication", "EC")
	require.True(t, ok)
	assert.Equal(t, float64(81), v)
}

func TestIsBucket(t *testing.T) {
	for _, name := range scores.Buckets {
		assert.True(t, scores.IsBucket(string(name)))
	}
	assert.False(t, scores.IsBucket("all"))
}
