package question

import (
	"encoding/json"
	"fmt"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/llm"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// rawQuestion is the shape the generation prompts ask the model for.
type rawQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Parse converts raw model output into a Question of the given type.
// It is a pure function: no network access, so generation logic stays
// testable without a live model. Malformed output fails with
// ParseError.
func Parse(t model.QuestionType, content string) (model.Question, error) {
	raw := llm.ExtractJSON(content)
	if raw == "" {
		return model.Question{}, &model.ParseError{What: string(t) + " question", Raw: content}
	}

	var rq rawQuestion
	if err := json.Unmarshal([]byte(raw), &rq); err != nil {
		return model.Question{}, &model.ParseError{What: string(t) + " question", Raw: content, Err: err}
	}
	if rq.Question == "" || rq.Answer == "" {
		return model.Question{}, &model.ParseError{
			What: string(t) + " question",
			Raw:  content,
			Err:  fmt.Errorf("missing question or answer field"),
		}
	}
	if t == model.TypeSingleChoice && len(rq.Options) < 2 {
		return model.Question{}, &model.ParseError{
			What: "single_choice question",
			Raw:  content,
			Err:  fmt.Errorf("expected at least 2 options, got %d", len(rq.Options)),
		}
	}

	q := model.Question{
		Type:     t,
		Question: rq.Question,
		Answer:   rq.Answer,
	}
	if t == model.TypeSingleChoice {
		q.Options = rq.Options
	}
	return q, nil
}
