package models

import (
	"errors"
	"testing"

	"instant-translator/internal/language"
	"instant-translator/internal/translation"
)

func TestNewTranslationRequest(t *testing.T) {
	pair := language.NewPair(language.MustNew("en"), language.MustNew("es"))
	req := NewTranslationRequest(7, "hello", true, pair)

	if req.ID == "" {
		t.Error("expected non-empty ID")
	}
	if req.Seq != 7 {
		t.Errorf("Seq = %d, want 7", req.Seq)
	}
	if req.Stage != StageIdle {
		t.Errorf("Stage = %s, want %s", req.Stage, StageIdle)
	}
	if req.Empty() {
		t.Error("request with text and both languages should not be empty")
	}
	if req.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	other := NewTranslationRequest(8, "hello", true, pair)
	if other.ID == req.ID {
		t.Error("request IDs should be unique")
	}
}

func TestTranslationRequest_Empty(t *testing.T) {
	en, es := language.MustNew("en"), language.MustNew("es")
	tests := []struct {
		name    string
		text    string
		hasText bool
		pair    language.Pair
	}{
		{"no text", "", false, language.NewPair(en, es)},
		{"empty text", "", true, language.NewPair(en, es)},
		{"no source", "hi", true, language.Pair{Target: es}},
		{"no target", "hi", true, language.Pair{Source: en}},
	}

	for _, tt := range tests {
		if !NewTranslationRequest(1, tt.text, tt.hasText, tt.pair).Empty() {
			t.Errorf("%s: Empty() = false, want true", tt.name)
		}
	}
}

func TestTranslationRequest_Complete(t *testing.T) {
	req := NewTranslationRequest(1, "hello", true, language.Pair{})
	req.SetStage(StageTranslating)
	if req.StatusText() != "Translating..." {
		t.Errorf("StatusText() = %q", req.StatusText())
	}
	if req.Duration() != 0 {
		t.Error("Duration() should be zero before completion")
	}

	req.Complete(Err(errors.New("no network")))

	if req.Stage != StageCompleted {
		t.Errorf("Stage = %s, want %s", req.Stage, StageCompleted)
	}
	if req.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}
	if req.StatusText() != "Failed: no network" {
		t.Errorf("StatusText() = %q, want 'Failed: no network'", req.StatusText())
	}
}

func TestResult(t *testing.T) {
	ok := Ok("hola")
	if ok.IsErr() || ok.Text() != "hola" || ok.Err() != nil {
		t.Errorf("Ok result = %+v", ok)
	}

	failed := Err(errors.New("no network"))
	if !failed.IsErr() || failed.Text() != "" || failed.String() != "no network" {
		t.Errorf("Err result = %+v", failed)
	}

	if !Err(nil).Is(translation.ErrServiceUnavailable) {
		t.Error("Err(nil) should carry ErrServiceUnavailable")
	}
}

func TestResult_Equal(t *testing.T) {
	tests := []struct {
		a, b Result
		want bool
	}{
		{Ok("a"), Ok("a"), true},
		{Ok("a"), Ok("b"), false},
		{Ok(""), Err(errors.New("")), false},
		{Err(errors.New("x")), Err(errors.New("x")), true},
		{Err(errors.New("x")), Err(errors.New("y")), false},
	}

	for i, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("case %d: Equal() = %v, want %v", i, got, tt.want)
		}
	}
}
