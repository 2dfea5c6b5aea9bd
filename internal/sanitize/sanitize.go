// Package sanitize isolates the JSON object embedded in raw LLM output.
// Models wrap their answers in reasoning blocks, markdown fences, and
// trailing commentary; each transform here strips one kind of noise.
// The pipeline is best-effort string surgery, not a validity guarantee;
// the report parser must still decode strictly.
package sanitize

import "strings"

const (
	thinkStart = "<think>"
	thinkEnd   = "</think>"
)

// Normalize runs every transform in order and returns the best-effort
// JSON object substring, or "{}" when nothing salvageable remains.
// Normalize is idempotent: re-normalizing its own output is a no-op.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = StripReasoning(s)
	s = CutUnclosedReasoning(s)
	s = IsolateObject(s)
	s = StripFences(s)
	s = UnescapeQuotes(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "{}"
	}
	return s
}

// StripReasoning removes every matched <think>...</think> block,
// including ones spanning multiple lines.
func StripReasoning(s string) string {
	for {
		start := strings.Index(s, thinkStart)
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], thinkEnd)
		if end == -1 {
			return s
		}
		s = s[:start] + s[start+end+len(thinkEnd):]
	}
}

// CutUnclosedReasoning handles a reasoning block the model never
// closed: everything up to the first '{' after the marker is dropped.
func CutUnclosedReasoning(s string) string {
	if !strings.Contains(s, thinkStart) {
		return s
	}
	if brace := strings.Index(s, "{"); brace != -1 {
		return strings.TrimSpace(s[brace:])
	}
	return s
}

// IsolateObject slices the text to the span between the first '{' and
// the last '}', discarding any preamble or trailing commentary.
func IsolateObject(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last <= first {
		return s
	}
	return s[first : last+1]
}

// StripFences removes a leading markdown code-fence line (``` or
// ```json) and a trailing closing fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// UnescapeQuotes undoes backslash-escaped apostrophes that some models
// introduce with inconsistent quoting.
func UnescapeQuotes(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}
