package services

import (
	"context"

	"instant-translator/internal/enginecache"
	"instant-translator/internal/language"
	"instant-translator/internal/logger"
	"instant-translator/internal/translation"
	"instant-translator/models"
)

// EngineCache holds the resident translation engines, keyed by language pair.
type EngineCache = enginecache.Cache[language.Pair, translation.Engine]

// NewEngineCache creates an engine cache that closes engines as they leave it.
func NewEngineCache(capacity int, factory translation.Factory, log *logger.Logger) *EngineCache {
	if log == nil {
		log = logger.Default()
	}
	log = log.With("engines")

	create := func(pair language.Pair) (translation.Engine, error) {
		log.Debug("Creating engine %s", pair)
		return factory(pair)
	}
	release := func(pair language.Pair, engine translation.Engine) {
		if err := engine.Close(); err != nil {
			log.Warn("Failed to close engine %s: %v", pair, err)
			return
		}
		log.Debug("Released engine %s", pair)
	}
	return enginecache.New(capacity, create, release)
}

// StageCallback is called when a request enters a new stage.
type StageCallback func(req *models.TranslationRequest)

// Pipeline runs the "ensure the model, then translate" protocol for one
// request at a time. It is safe for concurrent use.
type Pipeline struct {
	cache   *EngineCache
	onStage StageCallback
	log     *logger.Logger
}

func NewPipeline(cache *EngineCache, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{cache: cache, log: log.With("pipeline")}
}

// SetStageCallback sets a callback invoked on the calling goroutine of Run
// at every stage transition. Set it before the first Run.
func (p *Pipeline) SetStageCallback(fn StageCallback) {
	p.onStage = fn
}

func (p *Pipeline) setStage(req *models.TranslationRequest, stage models.Stage) {
	req.SetStage(stage)
	p.log.Debug("#%d %s: %s %s", req.Seq, req.ID, req.Pair, stage)
	if p.onStage != nil {
		p.onStage(req)
	}
}

func (p *Pipeline) complete(req *models.TranslationRequest, result models.Result) models.Result {
	req.Complete(result)
	if result.IsErr() {
		p.log.Debug("#%d %s: %s failed: %v", req.Seq, req.ID, req.Pair, result.Err())
	} else {
		p.log.Debug("#%d %s: %s done in %v", req.Seq, req.ID, req.Pair, req.Duration())
	}
	if p.onStage != nil {
		p.onStage(req)
	}
	return result
}

// Run takes req from Validating to Completed. Empty input completes with
// Ok("") without touching an engine; every failure completes with Err.
func (p *Pipeline) Run(ctx context.Context, req *models.TranslationRequest) models.Result {
	p.setStage(req, models.StageValidating)
	if req.Empty() {
		return p.complete(req, models.Ok(""))
	}

	p.setStage(req, models.StageEnsuringModel)
	lease, err := p.cache.Acquire(req.Pair)
	if err != nil {
		return p.complete(req, models.Err(translation.NewError(translation.KindEngineConstruction, req.Pair, err)))
	}
	// The lease keeps the engine open even if it is evicted meanwhile.
	defer lease.Release()
	engine := lease.Value()

	if err := engine.EnsureReady(ctx); err != nil {
		return p.complete(req, models.Err(translation.NewError(translation.KindModelUnavailable, req.Pair, err)))
	}

	p.setStage(req, models.StageTranslating)
	translated, err := engine.Translate(ctx, req.Text)
	if err != nil {
		return p.complete(req, models.Err(translation.NewError(translation.KindTranslationFailed, req.Pair, err)))
	}
	return p.complete(req, models.Ok(translated))
}
