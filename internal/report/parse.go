package report

import (
	"encoding/json"
	"strings"
)

const fallbackDisclaimer = "This summary is for educational purposes only. " +
	"Please discuss these results with your healthcare provider."

// Parse decodes normalized provider output into a Summary. On any
// decode failure (malformed syntax, wrong types, unrecognized status)
// it synthesizes a fallback Summary that carries the raw
// pre-normalization text verbatim, so nothing is lost to the user.
// Parse never fails; malformed output is a degraded success.
func Parse(normalized, raw string) Summary {
	var sum Summary
	dec := json.NewDecoder(strings.NewReader(normalized))
	if err := dec.Decode(&sum); err != nil {
		return Fallback(raw)
	}
	sum.EnsureLists()
	return sum
}

// Fallback builds a structurally valid Summary around provider output
// that could not be parsed.
func Fallback(raw string) Summary {
	return Summary{
		Summary: "The AI provided an analysis but it could not be fully structured. " +
			"Here is the raw response: " + raw,
		Findings:            []Finding{},
		Glossary:            []GlossaryEntry{},
		DiscussionQuestions: []DiscussionQuestion{},
		Disclaimer:          fallbackDisclaimer,
	}
}
