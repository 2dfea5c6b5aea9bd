package report

import (
	"encoding/json"
	"fmt"
)

// Status categorizes a single lab value against its reference range.
type Status string

const (
	StatusNormal       Status = "NORMAL"
	StatusBorderline   Status = "BORDERLINE"
	StatusAbnormal     Status = "ABNORMAL"
	StatusNotSpecified Status = "NOT_SPECIFIED"
)

// UnmarshalJSON enforces the status enumeration. Models sometimes emit
// "NOT SPECIFIED" (the spelling used in the analysis prompt); that is
// accepted as NOT_SPECIFIED. Anything else is a decode error rather
// than a silent coercion.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Status(raw) {
	case StatusNormal, StatusBorderline, StatusAbnormal, StatusNotSpecified:
		*s = Status(raw)
		return nil
	}
	if raw == "NOT SPECIFIED" {
		*s = StatusNotSpecified
		return nil
	}
	return fmt.Errorf("unrecognized finding status %q", raw)
}

// Finding is a single test result with a plain-language explanation.
type Finding struct {
	TestName       string `json:"testName"`
	Value          string `json:"value"`
	ReferenceRange string `json:"referenceRange"`
	Status         Status `json:"status"`
	Explanation    string `json:"explanation"`
}

// GlossaryEntry defines a medical term found in the report.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// DiscussionQuestion is a suggested question for the next doctor visit.
type DiscussionQuestion struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// Summary is the structured, patient-readable analysis of a report.
// List fields are never nil in a Summary handed to a caller.
type Summary struct {
	Summary             string               `json:"summary"`
	Findings            []Finding            `json:"findings"`
	Glossary            []GlossaryEntry      `json:"glossary"`
	DiscussionQuestions []DiscussionQuestion `json:"discussionQuestions"`
	Disclaimer          string               `json:"disclaimer"`
}

// EnsureLists substitutes empty slices for any list field the decoder
// left nil, so serialized output always carries the arrays.
func (s *Summary) EnsureLists() {
	if s.Findings == nil {
		s.Findings = []Finding{}
	}
	if s.Glossary == nil {
		s.Glossary = []GlossaryEntry{}
	}
	if s.DiscussionQuestions == nil {
		s.DiscussionQuestions = []DiscussionQuestion{}
	}
}
