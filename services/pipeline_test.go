package services

import (
	"context"
	"errors"
	"testing"

	"instant-translator/internal/language"
	"instant-translator/internal/translation"
	"instant-translator/models"
)

func newTestPipeline(f *fakeFactory, capacity int) (*Pipeline, *EngineCache) {
	cache := NewEngineCache(capacity, f.New, quietLogger)
	return NewPipeline(cache, quietLogger), cache
}

func request(text, src, dst string) *models.TranslationRequest {
	var p language.Pair
	if src != "" {
		p.Source = lang(src)
	}
	if dst != "" {
		p.Target = lang(dst)
	}
	return models.NewTranslationRequest(1, text, true, p)
}

func TestPipeline_Translates(t *testing.T) {
	f := newFakeFactory()
	p, _ := newTestPipeline(f, 3)

	result := p.Run(context.Background(), request("hello", "en", "es"))

	if result.IsErr() {
		t.Fatalf("unexpected error: %v", result.Err())
	}
	if result.Text() != "hola" {
		t.Errorf("Text() = %q, want %q", result.Text(), "hola")
	}
}

func TestPipeline_EmptyInputSkipsEngine(t *testing.T) {
	f := newFakeFactory()
	p, cache := newTestPipeline(f, 3)

	tests := []struct {
		name string
		req  *models.TranslationRequest
	}{
		{"empty text", request("", "en", "es")},
		{"no source language", request("hello", "", "es")},
		{"no target language", request("hello", "en", "")},
		{"text never set", models.NewTranslationRequest(1, "", false, language.NewPair(lang("en"), lang("es")))},
	}

	for _, tt := range tests {
		result := p.Run(context.Background(), tt.req)
		if result.IsErr() || result.Text() != "" {
			t.Errorf("%s: result = %v, want Ok(\"\")", tt.name, result)
		}
		if tt.req.Stage != models.StageCompleted {
			t.Errorf("%s: stage = %s, want completed", tt.name, tt.req.Stage)
		}
	}
	if len(f.built()) != 0 || cache.Len() != 0 {
		t.Error("empty input should not construct an engine")
	}
}

func TestPipeline_ModelUnavailable(t *testing.T) {
	f := newFakeFactory()
	f.ensureErr[language.NewPair(lang("en"), lang("es"))] = errors.New("no network")
	p, _ := newTestPipeline(f, 3)

	result := p.Run(context.Background(), request("hello", "en", "es"))

	if !result.IsErr() {
		t.Fatal("expected error result")
	}
	if result.String() != "no network" {
		t.Errorf("reason = %q, want %q", result.String(), "no network")
	}
	if !result.Is(translation.ErrModelUnavailable) {
		t.Error("failure should classify as ErrModelUnavailable")
	}
	if f.translations.Load() != 0 {
		t.Error("translate must not run after a failed ensure")
	}
}

func TestPipeline_TranslationFailed(t *testing.T) {
	f := newFakeFactory()
	f.translateErr = errors.New("model crashed")
	p, _ := newTestPipeline(f, 3)

	result := p.Run(context.Background(), request("hello", "en", "es"))

	if !result.Is(translation.ErrTranslationFailed) {
		t.Errorf("result = %v, want ErrTranslationFailed", result)
	}
	if result.String() != "model crashed" {
		t.Errorf("reason = %q, want %q", result.String(), "model crashed")
	}
}

func TestPipeline_EngineConstructionFailed(t *testing.T) {
	f := newFakeFactory()
	pair := language.NewPair(lang("en"), lang("es"))
	f.failBuild[pair] = true
	p, cache := newTestPipeline(f, 3)

	result := p.Run(context.Background(), request("hello", "en", "es"))

	if !result.Is(translation.ErrEngineConstruction) {
		t.Errorf("result = %v, want ErrEngineConstruction", result)
	}
	if cache.Contains(pair) {
		t.Error("failed construction should not be cached")
	}
}

func TestPipeline_StageOrder(t *testing.T) {
	f := newFakeFactory()
	p, _ := newTestPipeline(f, 3)

	var stages []models.Stage
	p.SetStageCallback(func(req *models.TranslationRequest) {
		stages = append(stages, req.Stage)
	})
	p.Run(context.Background(), request("hello", "en", "es"))

	want := []models.Stage{
		models.StageValidating,
		models.StageEnsuringModel,
		models.StageTranslating,
		models.StageCompleted,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestPipeline_CapacityOneRebuildsEvictedPair(t *testing.T) {
	f := newFakeFactory()
	p, cache := newTestPipeline(f, 1)
	ctx := context.Background()

	p.Run(ctx, request("hello", "en", "es"))
	enES := f.built()[0]

	if got := p.Run(ctx, request("hello", "en", "fr")); got.Text() != "bonjour" {
		t.Fatalf("en→fr = %v, want bonjour", got)
	}
	if enES.closed.Load() != 1 {
		t.Fatalf("en→es engine closed %d times, want 1", enES.closed.Load())
	}

	p.Run(ctx, request("hello", "en", "es"))
	built := f.built()
	if len(built) != 3 {
		t.Fatalf("built %d engines, want 3 (en→es rebuilt after eviction)", len(built))
	}
	if built[2].pair != language.NewPair(lang("en"), lang("es")) {
		t.Errorf("third engine is %s, want en→es", built[2].pair)
	}
	if cache.Len() != 1 {
		t.Errorf("resident engines = %d, want 1", cache.Len())
	}
}

func TestPipeline_EvictionWaitsForInFlightCall(t *testing.T) {
	f := newFakeFactory()
	p, cache := newTestPipeline(f, 1)
	ctx := context.Background()

	release, started := f.gate("slow")
	done := make(chan models.Result, 1)
	go func() { done <- p.Run(ctx, request("slow", "en", "es")) }()
	recv(t, started)

	// Evicts en→es while its translate call is still running.
	if got := p.Run(ctx, request("hello", "en", "fr")); got.IsErr() {
		t.Fatalf("en→fr failed: %v", got.Err())
	}
	enES := f.built()[0]
	if enES.closed.Load() != 0 {
		t.Fatal("engine closed while a translate call was in flight")
	}
	if cache.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", cache.Pending())
	}

	release()
	if got := recv(t, done); got.IsErr() || got.Text() != "SLOW" {
		t.Errorf("in-flight result = %v, want SLOW", got)
	}
	if enES.closed.Load() != 1 {
		t.Errorf("evicted engine closed %d times after the call, want 1", enES.closed.Load())
	}
}
