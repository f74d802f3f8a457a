package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"instant-translator/internal/language"
	"instant-translator/internal/logger"
	"instant-translator/internal/translation"
)

var quietLogger = logger.New(logger.LevelError, &strings.Builder{})

// dictionary is the fake engine's vocabulary, keyed by target language.
var dictionary = map[string]map[string]string{
	"es": {"hello": "hola", "h": "h-es", "he": "he-es"},
	"fr": {"hello": "bonjour"},
}

type fakeEngine struct {
	factory *fakeFactory
	pair    language.Pair
	id      int
	closed  atomic.Int32
}

func (e *fakeEngine) EnsureReady(ctx context.Context) error {
	e.factory.mu.Lock()
	err, failing := e.factory.ensureErr[e.pair]
	e.factory.mu.Unlock()
	if failing {
		return err
	}
	return nil
}

func (e *fakeEngine) Translate(ctx context.Context, text string) (string, error) {
	if e.closed.Load() > 0 {
		return "", translation.ErrEngineClosed
	}

	f := e.factory
	f.mu.Lock()
	gate := f.gates[text]
	started := f.started[text]
	delete(f.started, text)
	translateErr := f.translateErr
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if e.closed.Load() > 0 {
		return "", fmt.Errorf("engine %s closed mid-call", e.pair)
	}
	if translateErr != nil {
		return "", translateErr
	}
	f.translations.Add(1)
	if out, ok := dictionary[e.pair.Target.Code()][text]; ok {
		return out, nil
	}
	return strings.ToUpper(text), nil
}

func (e *fakeEngine) Close() error {
	e.closed.Add(1)
	return nil
}

type fakeFactory struct {
	mu           sync.Mutex
	engines      []*fakeEngine
	ensureErr    map[language.Pair]error
	failBuild    map[language.Pair]bool
	gates        map[string]chan struct{}
	started      map[string]chan struct{}
	translateErr error
	translations atomic.Int32
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		ensureErr: make(map[language.Pair]error),
		failBuild: make(map[language.Pair]bool),
		gates:     make(map[string]chan struct{}),
		started:   make(map[string]chan struct{}),
	}
}

func (f *fakeFactory) New(pair language.Pair) (translation.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBuild[pair] {
		return nil, errors.New("no engine for " + pair.String())
	}
	e := &fakeEngine{factory: f, pair: pair, id: len(f.engines)}
	f.engines = append(f.engines, e)
	return e, nil
}

// gate blocks translations of text until the returned func is called, and
// returns a channel closed when such a translation starts.
func (f *fakeFactory) gate(text string) (release func(), started <-chan struct{}) {
	g := make(chan struct{})
	s := make(chan struct{})
	f.mu.Lock()
	f.gates[text] = g
	f.started[text] = s
	f.mu.Unlock()
	return func() { close(g) }, s
}

func (f *fakeFactory) built() []*fakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.engines)
}

type fakeModels struct {
	mu          sync.Mutex
	installed   []string
	downloadErr error
	listCalls   atomic.Int32
}

func (m *fakeModels) Installed(ctx context.Context) ([]string, error) {
	m.listCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.installed), nil
}

func (m *fakeModels) Download(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downloadErr != nil {
		return m.downloadErr
	}
	m.installed = append(m.installed, code)
	return nil
}

func (m *fakeModels) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed = slices.DeleteFunc(m.installed, func(c string) bool { return c == code })
	return nil
}

func lang(code string) language.Language {
	return language.MustNew(code)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}
