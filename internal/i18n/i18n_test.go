package i18n

import (
	"context"
	"testing"
)

func TestT(t *testing.T) {
	if err := Init("zh"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		name  string
		lang  string
		msgID string
		want  string
	}{
		{"zh advice", "zh", "advice_keep_going", "掌握情况良好，继续保持！"},
		{"en advice", "en", "advice_keep_going", "Good command of the material, keep it up!"},
		{"zh feedback", "zh", "answer_correct", "回答正确！"},
		{"en feedback", "en", "answer_correct", "Correct!"},
		{"unknown language falls back to default", "de", "answer_correct", "回答正确！"},
		{"missing id returns the id", "zh", "no_such_message", "no_such_message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithLang(context.Background(), tt.lang)
			if got := T(ctx, tt.msgID); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.msgID, got, tt.want)
			}
		})
	}
}

func TestTWithoutLocalizer(t *testing.T) {
	if err := Init("zh"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// A bare context falls back to the default-language localizer.
	if got := T(context.Background(), "answer_correct"); got != "回答正确！" {
		t.Errorf("T = %q", got)
	}
}

func TestInitBadLanguage(t *testing.T) {
	if err := Init("!!"); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}
