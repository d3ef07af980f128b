package question

import (
	"fmt"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// Fallback returns a deterministic template question for a clause,
// used when the model output for that clause cannot be parsed and
// fallback generation is enabled.
func Fallback(t model.QuestionType, item model.SpecItem) model.Question {
	switch t {
	case model.TypeSingleChoice:
		return model.Question{
			Type:     model.TypeSingleChoice,
			Question: fmt.Sprintf("关于%s，以下哪个说法是正确的？", item.Title),
			Options: []string{
				"A. 符合相关技术规范要求",
				"B. 不符合相关技术规范要求",
				"C. 需要进一步确认",
			},
			Answer: "A",
		}
	case model.TypeJudge:
		return model.Question{
			Type:     model.TypeJudge,
			Question: fmt.Sprintf("%s的相关要求是明确规定的。", item.Title),
			Answer:   "正确",
		}
	default:
		return model.Question{
			Type:     model.TypeSubjective,
			Question: fmt.Sprintf("请简要描述%s的主要内容。", item.Title),
			Answer:   item.Text,
		}
	}
}
