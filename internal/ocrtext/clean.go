// Package ocrtext cleans up free text and JSON returned by OCR/LLM services.
package ocrtext

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reSoftHyphen = regexp.MustCompile("[\u00AD\u200B\u200C\u200D\uFEFF]")
	reDashes     = regexp.MustCompile("[\u2010-\u2015\u2212]")
)

// Clean folds compatibility characters (ligatures, full-width forms) and
// typographic dashes, drops invisible separators and collapses noisy
// whitespace. Line breaks are kept.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reSoftHyphen.ReplaceAllString(s, "")
	s = reDashes.ReplaceAllString(s, "-")
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Flatten is Clean followed by joining all lines with single spaces, so that
// phrases broken across lines by the OCR layout still match.
func Flatten(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}

// StripCodeFences removes the markdown fences LLMs tend to wrap JSON in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
