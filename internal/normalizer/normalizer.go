// Package normalizer turns a raw OCR/LLM extraction payload into the
// canonical AssessmentRecord.
package normalizer

import (
	"encoding/json"
	"strings"

	"formscan/internal/classifier"
	"formscan/internal/dates"
	"formscan/internal/domain"
	"formscan/internal/fieldbag"
	"formscan/internal/names"
	"formscan/internal/ocrtext"
	"formscan/internal/scores"
)

// Top-level payload keys the normalizer consumes. Everything else is carried
// into otherFields.
const (
	keyFormType         = "formType"
	keyPatientInfo      = "patientInfo"
	keyChildInfo        = "childInfo"
	keyTestDate         = "testDate"
	keyBirthDate        = "birthDate"
	keyChronologicalAge = "chronologicalAge"
	keyDateInfo         = "dateInfo"
	keyScores           = "scores"
	keyOtherFields      = "otherFields"

	// UnclassifiedScoresKey holds score entries no rule could bucket.
	UnclassifiedScoresKey = "unclassifiedScores"
)

var consumedKeys = map[string]bool{
	keyFormType:         true,
	keyPatientInfo:      true,
	keyChildInfo:        true,
	keyTestDate:         true,
	keyBirthDate:        true,
	keyChronologicalAge: true,
	keyDateInfo:         true,
	keyScores:           true,
	keyOtherFields:      true,
}

// patientField maps one PatientInfo field to the payload keys that may hold
// it, most specific first.
type patientField struct {
	set     func(p *domain.PatientInfo, v string)
	aliases []string
	// nested reads the field out of an object value, e.g. a name split into
	// {first, last}.
	nested func(p *domain.PatientInfo, b *fieldbag.Bag)
}

var (
	nameFullAliases  = []string{"full", "fullName", "display", "displayName"}
	nameFirstAliases = []string{"first", "firstName", "first_name", "given", "givenName"}
	nameLastAliases  = []string{"last", "lastName", "last_name", "surname", "family", "familyName"}
)

// nameFromObject fills the name parts from an object-valued name. Values
// already set by scalar keys win.
func nameFromObject(p *domain.PatientInfo, b *fieldbag.Bag) {
	pick := func(aliases []string) string {
		key, ok := b.LookupKey(aliases...)
		if !ok {
			return ""
		}
		return b.String(key)
	}
	if p.Name == "" {
		p.Name = pick(nameFullAliases)
	}
	if p.FirstName == "" {
		p.FirstName = pick(nameFirstAliases)
	}
	if p.LastName == "" {
		p.LastName = pick(nameLastAliases)
	}
}

var patientFields = []patientField{
	{
		set:     func(p *domain.PatientInfo, v string) { p.Name = v },
		aliases: []string{"name", "fullName", "childName", "patientName", "examineeName", "studentName"},
		nested:  nameFromObject,
	},
	{
		set:     func(p *domain.PatientInfo, v string) { p.FirstName = v },
		aliases: []string{"firstName", "first_name", "givenName"},
	},
	{
		set:     func(p *domain.PatientInfo, v string) { p.LastName = v },
		aliases: []string{"lastName", "last_name", "surname", "familyName"},
	},
	{
		set:     func(p *domain.PatientInfo, v string) { p.Sex = v },
		aliases: []string{"sex", "gender"},
	},
	{
		set:     func(p *domain.PatientInfo, v string) { p.Grade = v },
		aliases: []string{"grade", "gradeLevel", "grade_level"},
	},
}

// Enricher applies form-specific score routing after the generic taxonomy
// pass. rest holds what the generic pass could not place; an enricher moves
// entries out of rest into buckets.
type Enricher interface {
	Enrich(buckets *domain.ScoreBuckets, rest *fieldbag.Bag)
}

// EnricherFunc adapts a function to Enricher.
type EnricherFunc func(buckets *domain.ScoreBuckets, rest *fieldbag.Bag)

// Enrich calls f.
func (f EnricherFunc) Enrich(buckets *domain.ScoreBuckets, rest *fieldbag.Bag) { f(buckets, rest) }

// Normalizer holds the per-form-type enrichment hooks. Register hooks before
// sharing a Normalizer between goroutines; Normalize itself does not mutate
// it.
type Normalizer struct {
	enrichers map[string]Enricher
}

// New returns a Normalizer with the PLS-5 enricher registered.
func New() *Normalizer {
	n := &Normalizer{enrichers: map[string]Enricher{}}
	n.Register(classifier.FormPLS5, NewPLS5Enricher())
	return n
}

// Register installs e for formType, replacing any previous hook. Form types
// are matched case-insensitively.
func (n *Normalizer) Register(formType string, e Enricher) {
	n.enrichers[formKey(formType)] = e
}

// HasEnricher reports whether formType has an enrichment hook.
func (n *Normalizer) HasEnricher(formType string) bool {
	_, ok := n.enrichers[formKey(formType)]
	return ok
}

func formKey(formType string) string {
	return strings.ToUpper(strings.TrimSpace(formType))
}

var defaultNormalizer = New()

// Normalize runs the default normalizer.
func Normalize(raw any, documentType string) domain.AssessmentRecord {
	return defaultNormalizer.Normalize(raw, documentType)
}

// Normalize builds the canonical record. raw may be a *fieldbag.Bag, a Go
// map, JSON bytes or text, or a previously produced AssessmentRecord. It
// never fails: every malformed piece degrades to its default.
//
// An empty documentType falls back to the payload's own formType, then to
// Unknown.
func (n *Normalizer) Normalize(raw any, documentType string) domain.AssessmentRecord {
	src := asBag(raw)

	formType := strings.TrimSpace(documentType)
	if formType == "" {
		formType = src.String(keyFormType)
	}
	if formType == "" {
		formType = domain.FormTypeUnknown
	}
	rec := domain.NewAssessmentRecord(formType)

	rec.PatientInfo = patientInfo(src)

	dateInfo, _ := src.Bag(keyDateInfo)
	rec.TestDate = dates.Normalize(firstText(keyTestDate, src, dateInfo), true)
	rec.BirthDate = dates.Normalize(firstText(keyBirthDate, src, dateInfo), false)
	rec.ChronologicalAge = dates.ParseAge(firstValue(keyChronologicalAge, src, dateInfo))

	scoresRaw, _ := src.Get(keyScores)
	buckets, rest := scores.Split(scoresRaw)
	if e, ok := n.enrichers[formKey(formType)]; ok {
		e.Enrich(&buckets, rest)
	}
	rec.Scores = buckets

	if of, ok := src.Bag(keyOtherFields); ok {
		for _, k := range of.Keys() {
			v, _ := of.Get(k)
			rec.OtherFields[k] = fieldbag.ToPlain(v)
		}
	}
	for _, k := range src.Keys() {
		if consumedKeys[k] {
			continue
		}
		v, _ := src.Get(k)
		if v == nil {
			continue
		}
		if _, taken := rec.OtherFields[k]; taken {
			continue
		}
		rec.OtherFields[k] = fieldbag.ToPlain(v)
	}
	if rest.Len() > 0 {
		existing := rec.OtherFields[UnclassifiedScoresKey]
		if existing != nil && !fieldbag.IsMapping(existing) {
			// A payload value that is not a score map moves aside rather than
			// being replaced.
			rec.OtherFields[domain.RawKey(UnclassifiedScoresKey, func(k string) bool {
				_, taken := rec.OtherFields[k]
				return taken
			})] = existing
			existing = nil
		}
		rec.OtherFields[UnclassifiedScoresKey] = mergeUnclassified(existing, rest)
	}
	return rec
}

func patientInfo(src *fieldbag.Bag) domain.PatientInfo {
	p := domain.PatientInfo{Extra: map[string]any{}}
	info, ok := src.Bag(keyPatientInfo)
	if !ok {
		info, ok = src.Bag(keyChildInfo)
	}
	if !ok {
		return p
	}

	used := map[string]bool{}
	var deferred []func()
	for _, f := range patientFields {
		key, found := info.LookupKey(f.aliases...)
		if !found {
			continue
		}
		v, _ := info.Get(key)
		if !fieldbag.IsScalar(v) {
			// Object values are read after every scalar key so explicit
			// fields take precedence.
			if nested, isMap := fieldbag.BagOf(v); isMap && f.nested != nil {
				apply := f.nested
				deferred = append(deferred, func() { apply(&p, nested) })
			}
			continue
		}
		f.set(&p, info.String(key))
		used[key] = true
	}
	for _, apply := range deferred {
		apply()
	}

	if p.Name != "" && p.FirstName == "" && p.LastName == "" {
		parts := names.Split(p.Name)
		p.FirstName, p.LastName = parts.FirstName, parts.LastName
	}
	if p.Name == "" && (p.FirstName != "" || p.LastName != "") {
		p.Name = names.Join(p.FirstName, p.LastName)
	}

	for _, k := range info.Keys() {
		if used[k] {
			continue
		}
		v, _ := info.Get(k)
		if v == nil {
			continue
		}
		if domain.IsPatientInfoKey(k) {
			// A non-scalar under a known key would be shadowed on marshal.
			k = domain.RawKey(k, func(alt string) bool {
				_, inExtra := p.Extra[alt]
				return inExtra || info.Has(alt)
			})
		}
		p.Extra[k] = fieldbag.ToPlain(v)
	}
	return p
}

// firstText returns the first non-empty scalar text for key across bags.
func firstText(key string, bags ...*fieldbag.Bag) string {
	for _, b := range bags {
		if s := b.String(key); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first non-null value for key across bags.
func firstValue(key string, bags ...*fieldbag.Bag) any {
	for _, b := range bags {
		if v, ok := b.Get(key); ok && v != nil {
			return v
		}
	}
	return nil
}

func mergeUnclassified(existing any, rest *fieldbag.Bag) map[string]any {
	out := map[string]any{}
	if b, ok := fieldbag.BagOf(existing); ok {
		for k, v := range b.Map() {
			out[k] = v
		}
	}
	for k, v := range rest.Map() {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out
}

// asBag coerces the accepted payload representations into a bag.
func asBag(raw any) *fieldbag.Bag {
	switch t := raw.(type) {
	case []byte:
		return fieldbag.ParseString(ocrtext.StripCodeFences(string(t)))
	case json.RawMessage:
		return fieldbag.ParseString(ocrtext.StripCodeFences(string(t)))
	case string:
		return fieldbag.ParseString(ocrtext.StripCodeFences(t))
	case domain.AssessmentRecord, *domain.AssessmentRecord:
		data, err := json.Marshal(t)
		if err != nil {
			return fieldbag.New()
		}
		return fieldbag.Parse(data)
	}
	if b, ok := fieldbag.BagOf(raw); ok {
		return b
	}
	return fieldbag.New()
}
