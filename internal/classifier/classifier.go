// Package classifier identifies which assessment form a block of OCR text
// came from by counting signature phrases.
package classifier

import (
	"strings"

	"formscan/internal/domain"
	"formscan/internal/ocrtext"
)

// DefaultThreshold is the minimum share of a type's phrases that must be
// present for the text to be accepted as that type.
const DefaultThreshold = 0.3

// Classifier scores text against a fixed signature table. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	threshold  float64
	signatures []Signature
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold overrides DefaultThreshold. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithSignatures replaces the signature table. Phrases are lower-cased and
// types without phrases are dropped.
func WithSignatures(sigs []Signature) Option {
	return func(c *Classifier) {
		c.signatures = normalizeSignatures(sigs)
	}
}

// New creates a Classifier over DefaultSignatures.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		threshold:  DefaultThreshold,
		signatures: normalizeSignatures(DefaultSignatures),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = New()

// Classify runs the default classifier.
func Classify(text string) domain.ClassificationResult {
	return defaultClassifier.Classify(text)
}

// Threshold returns the acceptance threshold.
func (c *Classifier) Threshold() float64 { return c.threshold }

// Signatures returns a copy of the signature table.
func (c *Classifier) Signatures() []Signature {
	return normalizeSignatures(c.signatures)
}

// candidate is the running best match during a scan.
type candidate struct {
	docType    string
	matches    int
	confidence float64
	patterns   []domain.PatternMatch
}

// Classify returns the best-scoring document type. Match count is the
// primary key and confidence the tie-break; remaining ties keep table order.
// The best type is only accepted when its confidence reaches the threshold;
// MatchedPatterns always lists the best type's phrases.
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	lower := strings.ToLower(ocrtext.Flatten(text))
	if lower == "" {
		return unknown()
	}

	var best *candidate
	for _, sig := range c.signatures {
		cand := score(sig, lower)
		if cand.matches == 0 {
			continue
		}
		if best == nil ||
			cand.matches > best.matches ||
			(cand.matches == best.matches && cand.confidence > best.confidence) {
			best = &cand
		}
	}
	if best == nil {
		return unknown()
	}

	res := domain.ClassificationResult{
		IsDocument:      best.confidence >= c.threshold,
		DocumentType:    best.docType,
		Confidence:      best.confidence,
		MatchedPatterns: best.patterns,
	}
	if !res.IsDocument {
		res.DocumentType = domain.FormTypeUnknown
	}
	return res
}

func score(sig Signature, lower string) candidate {
	cand := candidate{
		docType:  sig.DocumentType,
		patterns: make([]domain.PatternMatch, 0, len(sig.Phrases)),
	}
	for _, phrase := range sig.Phrases {
		found := strings.Contains(lower, phrase)
		if found {
			cand.matches++
		}
		cand.patterns = append(cand.patterns, domain.PatternMatch{Name: phrase, Found: found})
	}
	cand.confidence = float64(cand.matches) / float64(len(sig.Phrases))
	return cand
}

func unknown() domain.ClassificationResult {
	return domain.ClassificationResult{
		DocumentType:    domain.FormTypeUnknown,
		MatchedPatterns: []domain.PatternMatch{},
	}
}

func normalizeSignatures(sigs []Signature) []Signature {
	out := make([]Signature, 0, len(sigs))
	for _, s := range sigs {
		phrases := make([]string, 0, len(s.Phrases))
		for _, p := range s.Phrases {
			p = strings.ToLower(strings.Join(strings.Fields(p), " "))
			if p != "" {
				phrases = append(phrases, p)
			}
		}
		if s.DocumentType == "" || len(phrases) == 0 {
			continue
		}
		out = append(out, Signature{DocumentType: s.DocumentType, Phrases: phrases})
	}
	return out
}
