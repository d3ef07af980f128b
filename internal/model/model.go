package model

import "time"

// QuestionType represents the kind of question stored in a bank.
type QuestionType string

const (
	// TypeSingleChoice is a multiple-choice question with exactly one correct option.
	TypeSingleChoice QuestionType = "single_choice"
	// TypeJudge is a true/false question.
	TypeJudge QuestionType = "judge"
	// TypeSubjective is an open-ended question graded by semantic comparison.
	TypeSubjective QuestionType = "subjective"
)

// ValidType reports whether t is one of the known question types.
func ValidType(t QuestionType) bool {
	switch t {
	case TypeSingleChoice, TypeJudge, TypeSubjective:
		return true
	}
	return false
}

// SpecItem is one indexed clause of an uploaded technical document.
// Items are immutable once uploaded.
type SpecItem struct {
	Idx   string `json:"idx"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Question is a single generated question. Questions are never mutated
// after creation; a bank re-assigns Idx on merge.
type Question struct {
	Type       QuestionType `json:"type"`
	Question   string       `json:"question"`
	Options    []string     `json:"options,omitempty"`
	Answer     string       `json:"answer"`
	Idx        int          `json:"idx"`
	SourceFile string       `json:"source_file"`
}

// Key identifies a question for deduplication purposes.
type Key struct {
	Type     QuestionType
	Question string
}

// DedupKey returns the (type, question) identity used by bank merges.
func (q Question) DedupKey() Key {
	return Key{Type: q.Type, Question: q.Question}
}

// GradeResult is the outcome of grading one answer.
type GradeResult struct {
	Correct bool   `json:"correct"`
	Detail  string `json:"detail,omitempty"`
}

// Answer pairs a question with the user's submission and its grade.
type Answer struct {
	Question   Question    `json:"question"`
	UserAnswer string      `json:"user_answer"`
	Result     GradeResult `json:"result"`
}

// QuizSession is the ephemeral state of one quiz run. It lives in
// memory only and is discarded after the summary is rendered.
type QuizSession struct {
	ID        string     `json:"id"`
	Bank      string     `json:"bank"`
	Questions []Question `json:"questions"`
	Answers   []Answer   `json:"answers"`
	Current   int        `json:"current"`
	StartedAt time.Time  `json:"started_at"`
}

// Done reports whether every selected question has been answered.
func (s *QuizSession) Done() bool {
	return s.Current >= len(s.Questions)
}

// Summary aggregates quiz results for the result view.
type Summary struct {
	Total        int      `json:"total"`
	CorrectCount int      `json:"correct_count"`
	Accuracy     float64  `json:"accuracy"`
	WrongItems   []Answer `json:"wrong_items,omitempty"`
	Advice       string   `json:"advice"`
}
