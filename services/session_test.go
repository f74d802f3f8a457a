package services

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"instant-translator/internal/language"
	"instant-translator/internal/translation"
	"instant-translator/internal/worker"
	"instant-translator/models"
)

func newTestSession(t *testing.T, f *fakeFactory, m *fakeModels) (*Session, *worker.Loop) {
	t.Helper()
	loop := worker.NewLoop()
	opts := SessionOptions{
		Factory:  f.New,
		Executor: loop,
		Logger:   quietLogger,
	}
	if m != nil {
		opts.Models = m
	}
	s := NewSession(opts)
	t.Cleanup(func() {
		s.Close()
		loop.Close()
	})
	return s, loop
}

// eventually polls cond on the loop until it holds or two seconds pass.
func eventually(t *testing.T, loop *worker.Loop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ok := false
		loop.Do(func() { ok = cond() })
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// outputs records every non-empty result published to the session output.
type outputs struct {
	mu   sync.Mutex
	seen []models.Result
}

func watchOutput(s *Session) *outputs {
	o := &outputs{}
	s.Output().Subscribe(func(r models.Result) {
		if r.IsErr() || r.Text() != "" {
			o.mu.Lock()
			o.seen = append(o.seen, r)
			o.mu.Unlock()
		}
	})
	return o
}

func (o *outputs) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, r := range o.seen {
		out = append(out, r.String())
	}
	return out
}

func TestSession_Translates(t *testing.T) {
	f := newFakeFactory()
	s, loop := newTestSession(t, f, nil)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("hello")

	eventually(t, loop, func() bool { return s.Output().Value().Text() == "hola" })
}

func TestSession_EmptyInputYieldsEmptyOk(t *testing.T) {
	f := newFakeFactory()
	s, loop := newTestSession(t, f, nil)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("")

	eventually(t, loop, func() bool {
		r, ok := s.Output().Get()
		return ok && !r.IsErr() && r.Text() == ""
	})
	if len(f.built()) != 0 {
		t.Error("empty input should not construct an engine")
	}
}

func TestSession_ModelUnavailable(t *testing.T) {
	f := newFakeFactory()
	f.ensureErr[language.NewPair(lang("en"), lang("es"))] = errors.New("no network")
	s, loop := newTestSession(t, f, nil)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("hello")

	eventually(t, loop, func() bool { return s.Output().Value().IsErr() })
	r := s.Output().Value()
	if r.String() != "no network" {
		t.Errorf("reason = %q, want %q", r.String(), "no network")
	}
	if !r.Is(translation.ErrModelUnavailable) {
		t.Error("failure should classify as ErrModelUnavailable")
	}
}

func TestSession_StaleResultIsDropped(t *testing.T) {
	f := newFakeFactory()
	s, loop := newTestSession(t, f, nil)
	seen := watchOutput(s)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))

	release, started := f.gate("h")
	s.SetSourceText("h")
	recv(t, started)

	s.SetSourceText("he")
	eventually(t, loop, func() bool { return s.Output().Value().Text() == "he-es" })

	release()
	// Give the superseded job time to finish and try to publish.
	time.Sleep(50 * time.Millisecond)
	loop.Sync()

	if got := s.Output().Value().Text(); got != "he-es" {
		t.Errorf("output = %q, want %q", got, "he-es")
	}
	if got := seen.texts(); !slices.Equal(got, []string{"he-es"}) {
		t.Errorf("observed outputs = %v, want [he-es]", got)
	}
}

func TestSession_SwapLanguages(t *testing.T) {
	f := newFakeFactory()
	s, loop := newTestSession(t, f, nil)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SwapLanguages()
	loop.Sync()

	if got := s.SourceLanguage().Value().Code(); got != "es" {
		t.Errorf("source = %q, want es", got)
	}
	if got := s.TargetLanguage().Value().Code(); got != "en" {
		t.Errorf("target = %q, want en", got)
	}
}

func TestSession_InstalledModelsAtStartup(t *testing.T) {
	m := &fakeModels{installed: []string{"es", "en"}}
	s, loop := newTestSession(t, newFakeFactory(), m)

	eventually(t, loop, func() bool {
		return slices.Equal(s.InstalledModels().Value(), []string{"en", "es"})
	})
}

func TestSession_DownloadRefreshesInstalled(t *testing.T) {
	m := &fakeModels{installed: []string{"en"}}
	s, loop := newTestSession(t, newFakeFactory(), m)
	eventually(t, loop, func() bool { return len(s.InstalledModels().Value()) == 1 })

	events := make(chan ModelEvent, 1)
	s.SetModelEventCallback(func(ev ModelEvent) { events <- ev })
	s.DownloadLanguage(lang("fr"))

	ev := recv(t, events)
	if ev.Err != nil || ev.Op != ModelDownload || ev.Language.Code() != "fr" {
		t.Errorf("event = %+v, want successful download of fr", ev)
	}
	if ev.ID == "" {
		t.Error("event should carry an operation id")
	}
	eventually(t, loop, func() bool {
		return slices.Equal(s.InstalledModels().Value(), []string{"en", "fr"})
	})
}

func TestSession_FailedDownloadKeepsInstalled(t *testing.T) {
	m := &fakeModels{installed: []string{"en"}, downloadErr: errors.New("index unreachable")}
	s, loop := newTestSession(t, newFakeFactory(), m)
	eventually(t, loop, func() bool { return len(s.InstalledModels().Value()) == 1 })
	calls := m.listCalls.Load()

	events := make(chan ModelEvent, 1)
	s.SetModelEventCallback(func(ev ModelEvent) { events <- ev })
	s.DownloadLanguage(lang("fr"))

	ev := recv(t, events)
	if ev.Err == nil {
		t.Fatal("expected failed download event")
	}
	loop.Sync()
	if got := s.InstalledModels().Value(); !slices.Equal(got, []string{"en"}) {
		t.Errorf("installed = %v, want [en]", got)
	}
	if m.listCalls.Load() != calls {
		t.Error("failed download should not refresh the installed list")
	}
}

func TestSession_DeleteRefreshesInstalled(t *testing.T) {
	m := &fakeModels{installed: []string{"en", "es"}}
	s, loop := newTestSession(t, newFakeFactory(), m)
	eventually(t, loop, func() bool { return len(s.InstalledModels().Value()) == 2 })

	s.DeleteLanguage(lang("es"))
	eventually(t, loop, func() bool {
		return slices.Equal(s.InstalledModels().Value(), []string{"en"})
	})
}

func TestSession_TranslationRefreshesInstalled(t *testing.T) {
	f := newFakeFactory()
	m := &fakeModels{installed: []string{"en"}}
	s, loop := newTestSession(t, f, m)
	eventually(t, loop, func() bool { return m.listCalls.Load() == 1 })

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("hello")

	eventually(t, loop, func() bool { return s.Output().Value().Text() == "hola" })
	eventually(t, loop, func() bool { return m.listCalls.Load() >= 2 })
}

func TestSession_StageCallback(t *testing.T) {
	f := newFakeFactory()
	s, loop := newTestSession(t, f, nil)

	var mu sync.Mutex
	var stages []models.Stage
	s.SetStageCallback(func(req *models.TranslationRequest) {
		if req.Text != "hello" {
			return
		}
		mu.Lock()
		stages = append(stages, req.Stage)
		mu.Unlock()
	})

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("hello")
	eventually(t, loop, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(stages) == 4
	})

	mu.Lock()
	defer mu.Unlock()
	if stages[3] != models.StageCompleted {
		t.Errorf("last stage = %s, want completed", stages[3])
	}
}

func TestSession_CloseReleasesEngines(t *testing.T) {
	f := newFakeFactory()
	loop := worker.NewLoop()
	defer loop.Close()
	s := NewSession(SessionOptions{Factory: f.New, Executor: loop, Logger: quietLogger})

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("es"))
	s.SetSourceText("hello")
	eventually(t, loop, func() bool { return s.Output().Value().Text() == "hola" })

	s.Close()
	s.Close()
	for _, e := range f.built() {
		if e.closed.Load() != 1 {
			t.Errorf("engine %s closed %d times, want 1", e.pair, e.closed.Load())
		}
	}
	if s.Engines().Len() != 0 {
		t.Errorf("resident engines after Close = %d, want 0", s.Engines().Len())
	}
}

func TestSession_Settle(t *testing.T) {
	f := newFakeFactory()
	s, _ := newTestSession(t, f, nil)

	s.SetSourceLanguage(lang("en"))
	s.SetTargetLanguage(lang("fr"))
	s.SetSourceText("hello")
	s.Settle()

	if got := s.Output().Value().Text(); got != "bonjour" {
		t.Errorf("output after Settle = %q, want %q", got, "bonjour")
	}
}
