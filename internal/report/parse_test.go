package report

import (
	"encoding/json"
	"strings"
	"testing"
)

const validPayload = `{
	"summary": "Your blood count looks mostly typical.",
	"findings": [
		{
			"testName": "Hemoglobin",
			"value": "14.2 g/dL",
			"referenceRange": "12.0 - 16.0",
			"status": "NORMAL",
			"explanation": "Hemoglobin carries oxygen in your blood."
		}
	],
	"glossary": [
		{"term": "Hemoglobin", "definition": "The oxygen-carrying protein in red blood cells."}
	],
	"discussionQuestions": [
		{"question": "Should I repeat this test?", "context": "Follow-up cadence depends on history."}
	],
	"disclaimer": "Educational only."
}`

func TestParseValidPayload(t *testing.T) {
	sum := Parse(validPayload, validPayload)

	if sum.Summary != "Your blood count looks mostly typical." {
		t.Errorf("unexpected summary: %q", sum.Summary)
	}
	if len(sum.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(sum.Findings))
	}
	if sum.Findings[0].Status != StatusNormal {
		t.Errorf("expected NORMAL status, got %s", sum.Findings[0].Status)
	}
	if len(sum.Glossary) != 1 || len(sum.DiscussionQuestions) != 1 {
		t.Errorf("expected glossary and questions to survive decode")
	}
}

func TestParseMissingListsAreEmptyNotNil(t *testing.T) {
	sum := Parse(`{"summary":"ok","disclaimer":"d"}`, "raw")

	if sum.Findings == nil || sum.Glossary == nil || sum.DiscussionQuestions == nil {
		t.Fatal("expected list fields to be non-nil after decode")
	}

	// Serialized form must carry arrays, not nulls.
	out, err := json.Marshal(sum)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(out), "null") {
		t.Errorf("expected no null lists in output, got %s", out)
	}
}

func TestParseFallbackOnGarbage(t *testing.T) {
	tests := []struct {
		name       string
		normalized string
	}{
		{"not json", "I am sorry, I cannot help with that."},
		{"truncated", `{"summary":"cut off mid`},
		{"wrong types", `{"summary": 42}`},
		{"unknown status", `{"summary":"s","findings":[{"testName":"X","status":"WEIRD"}]}`},
		{"empty object source", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "raw provider text for " + tt.name
			sum := Parse(tt.normalized, raw)
			if tt.name == "empty object source" {
				// "{}" decodes fine; it just produces an empty summary.
				if len(sum.Findings) != 0 || sum.Findings == nil {
					t.Errorf("expected empty non-nil findings")
				}
				return
			}
			if !strings.Contains(sum.Summary, raw) {
				t.Errorf("fallback summary should embed the raw text, got %q", sum.Summary)
			}
			if len(sum.Findings) != 0 || len(sum.Glossary) != 0 || len(sum.DiscussionQuestions) != 0 {
				t.Errorf("fallback lists must be empty")
			}
			if sum.Disclaimer == "" {
				t.Errorf("fallback must carry the fixed disclaimer")
			}
		})
	}
}

func TestStatusUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{`"NORMAL"`, StatusNormal, false},
		{`"BORDERLINE"`, StatusBorderline, false},
		{`"ABNORMAL"`, StatusAbnormal, false},
		{`"NOT_SPECIFIED"`, StatusNotSpecified, false},
		{`"NOT SPECIFIED"`, StatusNotSpecified, false},
		{`"normal"`, "", true},
		{`"HIGH"`, "", true},
		{`42`, "", true},
	}
	for _, tt := range tests {
		var s Status
		err := json.Unmarshal([]byte(tt.in), &s)
		if tt.wantErr {
			if err == nil {
				t.Errorf("expected error for %s", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error for %s: %v", tt.in, err)
		}
		if s != tt.want {
			t.Errorf("expected %s for %s, got %s", tt.want, tt.in, s)
		}
	}
}
