package question

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/loader"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// scriptedLLM replays canned responses per question type, repeating
// the last one once the script runs out.
type scriptedLLM struct {
	byType map[model.QuestionType][]string
	err    error
	calls  int
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	var qt model.QuestionType
	switch {
	case strings.Contains(prompt, "单选题"):
		qt = model.TypeSingleChoice
	case strings.Contains(prompt, "判断题"):
		qt = model.TypeJudge
	default:
		qt = model.TypeSubjective
	}
	queue := s.byType[qt]
	if len(queue) == 0 {
		return "", fmt.Errorf("no scripted response for %s", qt)
	}
	resp := queue[0]
	if len(queue) > 1 {
		s.byType[qt] = queue[1:]
	}
	return resp, nil
}

func judgeJSON(text string) string {
	return fmt.Sprintf(`{"question": %q, "answer": "正确"}`, text)
}

func newTestLoader(t *testing.T) *loader.Loader {
	t.Helper()
	l, err := loader.New(t.TempDir())
	if err != nil {
		t.Fatalf("loader.New: %v", err)
	}
	return l
}

func saveTestDocument(t *testing.T, l *loader.Loader) {
	t.Helper()
	doc := `[
	  {"idx": "1", "title": "停电抄表及显示", "text": "电能表在停电情况下，可通过按键唤醒显示。"},
	  {"idx": "2", "title": "数据保存", "text": "所有数据应能在断电情况下至少保存10年。"}
	]`
	if err := l.SaveDocument("spec.json", []byte(doc)); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
}

func TestGenerateDropsNearDuplicates(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	existing := []model.Question{
		{Type: model.TypeJudge, Question: "电能表在停电情况下可通过按键唤醒显示屏幕。", Answer: "正确", Idx: 1, SourceFile: "spec.json"},
		{Type: model.TypeJudge, Question: "所有结算数据应能在断电情况下至少保存10年。", Answer: "正确", Idx: 2, SourceFile: "spec.json"},
		{Type: model.TypeJudge, Question: "通信模块应同时支持载波通信与无线通信方式。", Answer: "正确", Idx: 3, SourceFile: "spec.json"},
	}
	if err := l.SaveBank("spec题库", existing); err != nil {
		t.Fatalf("SaveBank: %v", err)
	}

	// Five requested; the model produces two near-duplicates of bank
	// entries and three novel questions, then keeps repeating the last
	// novel one (a duplicate of an in-batch acceptance).
	mock := &scriptedLLM{byType: map[model.QuestionType][]string{
		model.TypeJudge: {
			judgeJSON("电能表在停电情况下可通过按键唤醒显示屏幕"),
			judgeJSON("所有结算数据应能在断电情况下至少保存十年。"),
			judgeJSON("电能表应具备防窃电事件记录功能。"),
			judgeJSON("安装现场应保证接线端子的安全封印完好。"),
			judgeJSON("费控功能应支持远程拉闸与合闸操作。"),
		},
	}}

	g := NewGenerator(mock, l, DefaultThreshold, false)
	generated, err := g.Generate(context.Background(), "spec.json", 5, model.TypeJudge)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(generated) != 3 {
		t.Fatalf("expected 3 novel questions, got %d", len(generated))
	}
	for i, q := range generated {
		if q.Idx != len(existing)+i+1 {
			t.Errorf("question %d: idx = %d, want %d", i, q.Idx, len(existing)+i+1)
		}
		if q.SourceFile != "spec.json" {
			t.Errorf("question %d: source_file = %q", i, q.SourceFile)
		}
	}

	// The bank grows by exactly the three novel questions.
	bank, err := g.SaveBank("spec.json", generated)
	if err != nil {
		t.Fatalf("SaveBank: %v", err)
	}
	saved, err := l.LoadBank(bank)
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	if len(saved) != 6 {
		t.Fatalf("expected bank of 6 questions, got %d", len(saved))
	}
	for i, q := range saved {
		if q.Idx != i+1 {
			t.Errorf("saved idx not contiguous at %d: %d", i, q.Idx)
		}
	}
}

func TestGenerateNeverEmitsSimilarToBank(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	existing := []model.Question{
		{Type: model.TypeJudge, Question: "电能表应支持远程费控操作。", Answer: "正确", Idx: 1},
	}
	if err := l.SaveBank("spec题库", existing); err != nil {
		t.Fatal(err)
	}

	mock := &scriptedLLM{byType: map[model.QuestionType][]string{
		model.TypeJudge: {judgeJSON("电能表应支持远程费控操作。")},
	}}
	g := NewGenerator(mock, l, DefaultThreshold, false)
	generated, err := g.Generate(context.Background(), "spec.json", 2, model.TypeJudge)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Everything the model offered was a duplicate: partial (empty)
	// result, no error.
	if len(generated) != 0 {
		t.Fatalf("expected no questions, got %d", len(generated))
	}
	if mock.calls != 2*maxAttemptsPerQuestion*2 {
		t.Errorf("expected attempt budget to be exhausted, made %d calls", mock.calls)
	}
}

func TestGenerateParseErrorPropagates(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	mock := &scriptedLLM{byType: map[model.QuestionType][]string{
		model.TypeJudge: {"抱歉，我无法生成题目。"},
	}}
	g := NewGenerator(mock, l, DefaultThreshold, false)
	_, err := g.Generate(context.Background(), "spec.json", 1, model.TypeJudge)
	var parseErr *model.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestGenerateFallbackOnUnparseableOutput(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	mock := &scriptedLLM{byType: map[model.QuestionType][]string{
		model.TypeJudge: {"这不是JSON"},
	}}
	g := NewGenerator(mock, l, DefaultThreshold, true)
	generated, err := g.Generate(context.Background(), "spec.json", 1, model.TypeJudge)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(generated) != 1 {
		t.Fatalf("expected 1 fallback question, got %d", len(generated))
	}
	if !strings.HasSuffix(generated[0].Question, "的相关要求是明确规定的。") {
		t.Errorf("unexpected fallback question %q", generated[0].Question)
	}
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	provErr := &model.ProviderError{Op: "chat completion", Err: errors.New("connection refused")}
	g := NewGenerator(&scriptedLLM{err: provErr}, l, DefaultThreshold, false)
	_, err := g.Generate(context.Background(), "spec.json", 1, model.TypeJudge)
	var providerErr *model.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	l := newTestLoader(t)
	saveTestDocument(t, l)

	g := NewGenerator(&scriptedLLM{}, l, DefaultThreshold, false)
	_, err := g.Generate(context.Background(), "spec.json", 1, model.QuestionType("essay"))
	if err == nil {
		t.Fatal("expected error for unknown question type")
	}
}
