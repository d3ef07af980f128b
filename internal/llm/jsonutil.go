package llm

import (
	"regexp"
	"strings"
)

var (
	// fencedJSONPattern matches a JSON object inside a markdown code block.
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// trailingCommaPattern matches trailing commas before } or ].
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls the JSON object out of an LLM response. Models
// routinely wrap the object in markdown fences or surround it with
// prose, and sometimes emit trailing commas; all of that is stripped.
// Returns "" when the response contains no object at all.
func ExtractJSON(content string) string {
	raw := ""
	if m := fencedJSONPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		// Widest span from the first { to the last }.
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return ""
		}
		raw = content[start : end+1]
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
