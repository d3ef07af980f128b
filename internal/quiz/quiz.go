// Package quiz selects questions for a session, grades user answers,
// and aggregates results. Objective types (single_choice, judge) are
// graded by normalized exact match; subjective answers are graded by
// an LLM semantic-equivalence call.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	appI18n "github.com/ivyinautumn/Intelligent-question-generator/internal/i18n"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/llm"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// DefaultSubjectiveThreshold is the semantic similarity score (0-100)
// at or above which a subjective answer counts as correct.
const DefaultSubjectiveThreshold = 70

// optionLetterPattern extracts the leading letter from an option such
// as "A. 选项内容".
var optionLetterPattern = regexp.MustCompile(`(?i)^\s*([a-d])\.`)

// Answer phrasings accepted as true/false for judge questions.
var (
	positiveAnswers = []string{"正确", "对", "是", "true", "yes", "√"}
	negativeAnswers = []string{"错误", "不对", "否", "false", "no", "×"}
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Agent grades quiz answers. The Completer is only consulted for
// subjective questions.
type Agent struct {
	llm       Completer
	threshold int
}

// NewAgent creates an Agent with the given semantic similarity
// threshold for subjective grading.
func NewAgent(c Completer, threshold int) *Agent {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultSubjectiveThreshold
	}
	return &Agent{llm: c, threshold: threshold}
}

// Select returns up to count questions sampled uniformly at random
// without replacement. The bank is not modified.
func Select(bank []model.Question, count int) []model.Question {
	if count > len(bank) {
		count = len(bank)
	}
	if count <= 0 {
		return nil
	}
	sample := make([]model.Question, len(bank))
	copy(sample, bank)
	rand.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	return sample[:count]
}

// Grade checks a user's answer against the stored answer. Grading of
// objective types is deterministic: the same stored answer and user
// answer always produce the same result.
func (a *Agent) Grade(ctx context.Context, q model.Question, userAnswer string) (model.GradeResult, error) {
	switch q.Type {
	case model.TypeSingleChoice:
		return gradeSingleChoice(q, userAnswer), nil
	case model.TypeJudge:
		return gradeJudge(q, userAnswer), nil
	case model.TypeSubjective:
		return a.gradeSubjective(ctx, q, userAnswer)
	}
	return model.GradeResult{}, fmt.Errorf("unknown question type %q", q.Type)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// gradeSingleChoice accepts either the bare option letter or the full
// option text.
func gradeSingleChoice(q model.Question, userAnswer string) model.GradeResult {
	correct := normalize(q.Answer)
	user := normalize(userAnswer)

	ok := user == correct
	if !ok {
		for _, option := range q.Options {
			if normalize(option) != user {
				continue
			}
			if m := optionLetterPattern.FindStringSubmatch(option); m != nil && strings.ToLower(m[1]) == correct {
				ok = true
			}
			break
		}
	}
	return model.GradeResult{Correct: ok, Detail: resolveOption(q)}
}

// resolveOption expands a stored letter answer to the full option text
// for display in the result view.
func resolveOption(q model.Question) string {
	for _, option := range q.Options {
		if m := optionLetterPattern.FindStringSubmatch(option); m != nil && strings.EqualFold(m[1], q.Answer) {
			return option
		}
	}
	return q.Answer
}

// gradeJudge maps both answers through the true/false synonym sets, so
// 对 matches a stored 正确. A stored answer outside both sets falls
// back to strict comparison.
func gradeJudge(q model.Question, userAnswer string) model.GradeResult {
	correct := normalize(q.Answer)
	user := normalize(userAnswer)

	var ok bool
	switch {
	case contains(positiveAnswers, correct):
		ok = contains(positiveAnswers, user)
	case contains(negativeAnswers, correct):
		ok = contains(negativeAnswers, user)
	default:
		ok = user == correct
	}
	return model.GradeResult{Correct: ok, Detail: q.Answer}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// similarityVerdict is the JSON shape the grading prompt asks for.
// Pointer fields distinguish absent from zero-valued.
type similarityVerdict struct {
	SimilarityScore *int  `json:"similarity_score"`
	IsSimilar       *bool `json:"is_similar"`
}

// gradeSubjective asks the model whether the user's answer is
// semantically close enough to the stored answer. An unparseable
// verdict fails with ParseError rather than silently grading wrong.
func (a *Agent) gradeSubjective(ctx context.Context, q model.Question, userAnswer string) (model.GradeResult, error) {
	prompt := buildSimilarityPrompt(q.Answer, userAnswer, a.threshold)
	content, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return model.GradeResult{}, err
	}

	raw := llm.ExtractJSON(content)
	if raw == "" {
		return model.GradeResult{}, &model.ParseError{What: "similarity verdict", Raw: content}
	}
	var verdict similarityVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return model.GradeResult{}, &model.ParseError{What: "similarity verdict", Raw: content, Err: err}
	}

	switch {
	case verdict.IsSimilar != nil && verdict.SimilarityScore != nil:
		return model.GradeResult{
			Correct: *verdict.IsSimilar,
			Detail:  fmt.Sprintf("similarity %d", *verdict.SimilarityScore),
		}, nil
	case verdict.IsSimilar != nil:
		return model.GradeResult{Correct: *verdict.IsSimilar}, nil
	case verdict.SimilarityScore != nil:
		return model.GradeResult{
			Correct: *verdict.SimilarityScore >= a.threshold,
			Detail:  fmt.Sprintf("similarity %d", *verdict.SimilarityScore),
		}, nil
	}
	return model.GradeResult{}, &model.ParseError{
		What: "similarity verdict",
		Raw:  content,
		Err:  fmt.Errorf("verdict has neither similarity_score nor is_similar"),
	}
}

func buildSimilarityPrompt(correctAnswer, userAnswer string, threshold int) string {
	return fmt.Sprintf(`请判断以下两个文本的语义相似度，并给出一个0到100的相似度分数。如果相似度分数大于或等于%d分，则认为它们是"足够接近"的。

正确答案: %s
用户答案: %s

请以JSON格式返回结果，包含 'similarity_score' (整数) 和 'is_similar' (布尔值)。

示例：
{
    "similarity_score": 85,
    "is_similar": true
}
`, threshold, correctAnswer, userAnswer)
}

// Summarize aggregates graded answers into the result view: totals,
// accuracy percentage, the wrong items, and localized study advice.
// It makes no external calls.
func Summarize(ctx context.Context, answers []model.Answer) model.Summary {
	s := model.Summary{Total: len(answers)}
	for _, a := range answers {
		if a.Result.Correct {
			s.CorrectCount++
		} else {
			s.WrongItems = append(s.WrongItems, a)
		}
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.CorrectCount) / float64(s.Total) * 100
	}

	switch {
	case s.Accuracy < 60:
		s.Advice = appI18n.T(ctx, "advice_relearn")
	case s.Accuracy < 80:
		s.Advice = appI18n.T(ctx, "advice_review_wrong")
	default:
		s.Advice = appI18n.T(ctx, "advice_keep_going")
	}
	return s
}
