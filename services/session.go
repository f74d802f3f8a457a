package services

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"instant-translator/internal/config"
	"instant-translator/internal/language"
	"instant-translator/internal/logger"
	"instant-translator/internal/reactive"
	"instant-translator/internal/translation"
	"instant-translator/models"
)

// ModelOp is a model manager operation requested through a Session.
type ModelOp string

const (
	ModelDownload ModelOp = "download"
	ModelDelete   ModelOp = "delete"
)

// ModelEvent reports the outcome of a download or delete.
type ModelEvent struct {
	ID       string
	Op       ModelOp
	Language language.Language
	Err      error
}

// ModelEventCallback receives model events on the session's executor.
type ModelEventCallback func(ModelEvent)

// SessionOptions configures a Session.
type SessionOptions struct {
	Factory  translation.Factory
	Models   translation.ModelManager // optional
	Executor reactive.Executor

	// CacheCapacity is the number of resident engines; below 1 means default.
	CacheCapacity int

	Logger *logger.Logger
}

// Session is the translator state shared with a front end: three input
// fields, the derived translation result, and the set of installed models.
//
// Fields are only written on the executor. Front ends observe them with
// Subscribe and change inputs through the Set methods, which may be called
// from any goroutine.
type Session struct {
	exec reactive.Executor
	log  *logger.Logger

	sourceText *reactive.Field[string]
	sourceLang *reactive.Field[language.Language]
	targetLang *reactive.Field[language.Language]
	output     *reactive.Field[models.Result]
	installed  *reactive.Field[[]string]

	cache    *EngineCache
	pipeline *Pipeline
	graph    *reactive.Graph[models.Result]
	models   translation.ModelManager

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	closed       bool
	wg           sync.WaitGroup
	onModelEvent ModelEventCallback
	onStage      StageCallback
}

// NewSession wires the fields, engine cache and pipeline together and
// starts loading the installed model list.
func NewSession(opts SessionOptions) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	capacity := opts.CacheCapacity
	if capacity < 1 {
		capacity = config.DefaultCacheCapacity
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		exec:       opts.Executor,
		log:        log.With("session"),
		sourceText: reactive.NewField[string](),
		sourceLang: reactive.NewField[language.Language](),
		targetLang: reactive.NewField[language.Language](),
		output:     reactive.NewFieldFunc(models.Result.Equal),
		installed:  reactive.NewFieldFunc(slices.Equal[[]string]),
		models:     opts.Models,
		ctx:        ctx,
		cancel:     cancel,
	}

	s.cache = NewEngineCache(capacity, opts.Factory, log)
	s.pipeline = NewPipeline(s.cache, log)
	s.pipeline.SetStageCallback(s.forwardStage)

	s.graph = reactive.NewGraph(s.output, s.exec, s.prepare)
	reactive.AddSource(s.graph, s.sourceText)
	reactive.AddSource(s.graph, s.sourceLang)
	reactive.AddSource(s.graph, s.targetLang)

	s.RefreshModels()
	return s
}

// prepare snapshots the inputs for recomputation seq.
func (s *Session) prepare(seq uint64) reactive.Job[models.Result] {
	text, hasText := s.sourceText.Get()
	pair := language.NewPair(s.sourceLang.Value(), s.targetLang.Value())
	req := models.NewTranslationRequest(seq, text, hasText, pair)

	return func(ctx context.Context) models.Result {
		result := s.pipeline.Run(ctx, req)
		if !req.Empty() {
			// Ensuring the model may have downloaded one.
			s.RefreshModels()
		}
		return result
	}
}

func (s *Session) forwardStage(req *models.TranslationRequest) {
	s.mu.Lock()
	fn := s.onStage
	s.mu.Unlock()
	if fn == nil {
		return
	}
	snapshot := *req
	s.exec.Post(func() { fn(&snapshot) })
}

// SourceText returns the source text field.
func (s *Session) SourceText() *reactive.Field[string] { return s.sourceText }

// SourceLanguage returns the source language field.
func (s *Session) SourceLanguage() *reactive.Field[language.Language] { return s.sourceLang }

// TargetLanguage returns the target language field.
func (s *Session) TargetLanguage() *reactive.Field[language.Language] { return s.targetLang }

// Output returns the field holding the most recent translation result.
func (s *Session) Output() *reactive.Field[models.Result] { return s.output }

// InstalledModels returns the field holding the sorted installed language codes.
func (s *Session) InstalledModels() *reactive.Field[[]string] { return s.installed }

// Engines returns the session's engine cache.
func (s *Session) Engines() *EngineCache { return s.cache }

// Generation returns the sequence number of the latest recomputation.
// Stage callbacks for requests with a lower Seq are for superseded work.
func (s *Session) Generation() uint64 { return s.graph.Generation() }

// AvailableLanguages returns every language the engine supports, sorted
// by display name.
func (s *Session) AvailableLanguages() []language.Language {
	return language.Available()
}

// SetSourceText changes the source text.
func (s *Session) SetSourceText(text string) {
	s.exec.Post(func() { s.sourceText.Set(text) })
}

// SetSourceLanguage changes the source language.
func (s *Session) SetSourceLanguage(l language.Language) {
	s.exec.Post(func() { s.sourceLang.Set(l) })
}

// SetTargetLanguage changes the target language.
func (s *Session) SetTargetLanguage(l language.Language) {
	s.exec.Post(func() { s.targetLang.Set(l) })
}

// SwapLanguages exchanges the source and target languages.
func (s *Session) SwapLanguages() {
	s.exec.Post(func() {
		src, tgt := s.sourceLang.Value(), s.targetLang.Value()
		s.sourceLang.Set(tgt)
		s.targetLang.Set(src)
	})
}

// SetStageCallback sets a callback for pipeline progress, run on the executor.
func (s *Session) SetStageCallback(fn StageCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStage = fn
}

// SetModelEventCallback sets a callback for download and delete outcomes,
// run on the executor. Failed operations leave the installed set unchanged;
// this callback is the only place they are reported.
func (s *Session) SetModelEventCallback(fn ModelEventCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onModelEvent = fn
}

// goAsync starts fn unless the session is closed.
func (s *Session) goAsync(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

// RefreshModels reloads the installed model list. On failure the last
// known list is kept.
func (s *Session) RefreshModels() {
	if s.models == nil {
		return
	}
	s.goAsync(func() {
		ctx, cancel := context.WithTimeout(s.ctx, config.ModelListTimeout)
		defer cancel()

		codes, err := s.models.Installed(ctx)
		if err != nil {
			s.log.Warn("Failed to list installed models: %v", err)
			return
		}
		codes = slices.Clone(codes)
		sort.Strings(codes)
		s.exec.Post(func() { s.installed.Set(codes) })
	})
}

// DownloadLanguage installs the model for l in the background.
func (s *Session) DownloadLanguage(l language.Language) {
	s.modelOp(ModelDownload, l, func(ctx context.Context, code string) error {
		return s.models.Download(ctx, code)
	})
}

// DeleteLanguage removes the model for l in the background.
func (s *Session) DeleteLanguage(l language.Language) {
	s.modelOp(ModelDelete, l, func(ctx context.Context, code string) error {
		return s.models.Delete(ctx, code)
	})
}

func (s *Session) modelOp(op ModelOp, l language.Language, fn func(ctx context.Context, code string) error) {
	if s.models == nil || l.IsZero() {
		return
	}
	id := uuid.New().String()
	s.goAsync(func() {
		s.log.Info("%s %s started (%s)", op, l.Code(), id)
		err := fn(s.ctx, l.Code())
		if err != nil {
			s.log.Error("%s %s failed: %v", op, l.Code(), err)
		} else {
			s.log.Info("%s %s finished", op, l.Code())
			s.RefreshModels()
		}

		s.mu.Lock()
		cb := s.onModelEvent
		s.mu.Unlock()
		if cb != nil {
			ev := ModelEvent{ID: id, Op: op, Language: l, Err: err}
			s.exec.Post(func() { cb(ev) })
		}
	})
}

// Settle waits until every change requested so far has been applied and its
// recomputation published. It must not be called on the executor, nor after
// the executor has stopped running posted functions.
func (s *Session) Settle() {
	flush := func() {
		done := make(chan struct{})
		s.exec.Post(func() { close(done) })
		<-done
	}
	flush()
	s.graph.Wait()
	flush()
}

// Close stops recomputation, waits for background work, and releases every
// engine. Results that arrive afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.graph.Close()
	s.cancel()
	s.wg.Wait()
	s.cache.Close()
}
