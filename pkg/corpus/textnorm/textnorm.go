// Package textnorm cleans raw extracted corpus text before chunking.
package textnorm

import (
	"regexp"
	"strings"
)

type abbreviation struct {
	pattern   *regexp.Regexp
	expansion string
}

// abbreviations are applied in order. Matching is case-insensitive and
// whole-word only.
var abbreviations = newAbbreviations([][2]string{
	{"mg/dl", "milligrams per deciliter"},
	{"mmHg", "millimeters of mercury"},
	{"CBC", "complete blood count"},
	{"BP", "blood pressure"},
	{"HR", "heart rate"},
	{"RBC", "red blood cells"},
	{"WBC", "white blood cells"},
	{"ECG", "electrocardiogram"},
	{"EKG", "electrocardiogram"},
	{"MRI", "magnetic resonance imaging"},
	{"CT", "computed tomography"},
	{"ICU", "intensive care unit"},
	{"ER", "emergency room"},
	{"IV", "intravenous"},
	{"IM", "intramuscular"},
	{"PO", "by mouth"},
	{"PRN", "as needed"},
	{"BID", "twice daily"},
	{"TID", "three times daily"},
	{"QID", "four times daily"},
})

var (
	headerLine       = regexp.MustCompile(`(?m)^[ \t]*(?:Page|Chapter)[ \t]+\d+[^\n]*(?:\n|$)`)
	pageNumberLine   = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*(?:\n|$)`)
	paragraphBreak   = regexp.MustCompile(`\s*\n[ \t\r\f\v]*\n\s*`)
	disallowed       = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()%°+/-]`)
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([,.!?;:])`)
	sentenceSpacing  = regexp.MustCompile(`([.!?])[ \t]*([A-Z])`)
)

func newAbbreviations(pairs [][2]string) []abbreviation {
	out := make([]abbreviation, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, abbreviation{
			pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			expansion: p[1],
		})
	}
	return out
}

// Normalize strips running headers and page numbers, expands medical
// abbreviations, and tidies whitespace and punctuation. Paragraph breaks
// survive as "\n\n".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// Disallowed symbols go first so a line left holding only a number is
	// still caught as a page number.
	text := disallowed.ReplaceAllString(raw, " ")
	text = headerLine.ReplaceAllString(text, "")
	text = pageNumberLine.ReplaceAllString(text, "")
	text = ExpandAbbreviations(text)
	text = collapseWhitespace(text)
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = sentenceSpacing.ReplaceAllString(text, "$1 $2")

	return collapseWhitespace(text)
}

// ExpandAbbreviations applies only the abbreviation dictionary.
func ExpandAbbreviations(text string) string {
	for _, a := range abbreviations {
		text = a.pattern.ReplaceAllLiteralString(text, a.expansion)
	}
	return text
}

// collapseWhitespace reduces every whitespace run to a single space while
// keeping blank-line paragraph breaks as exactly "\n\n".
func collapseWhitespace(text string) string {
	paragraphs := paragraphBreak.Split(text, -1)
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
