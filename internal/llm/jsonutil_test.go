package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"bare object",
			`{"question": "q", "answer": "A"}`,
			`{"question": "q", "answer": "A"}`,
		},
		{
			"markdown fence",
			"Here you go:\n```json\n{\"answer\": \"正确\"}\n```\nHope that helps.",
			`{"answer": "正确"}`,
		},
		{
			"fence without language tag",
			"```\n{\"answer\": \"A\"}\n```",
			`{"answer": "A"}`,
		},
		{
			"surrounded by prose",
			`好的，生成的题目如下：{"question": "问题", "answer": "正确"}，请查收。`,
			`{"question": "问题", "answer": "正确"}`,
		},
		{
			"trailing comma",
			`{"options": ["A. 甲", "B. 乙",], "answer": "A",}`,
			`{"options": ["A. 甲", "B. 乙"], "answer": "A"}`,
		},
		{
			"nested object",
			`{"a": {"b": 1}}`,
			`{"a": {"b": 1}}`,
		},
		{
			"no json at all",
			"抱歉，我无法生成题目。",
			"",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.content); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
