// Package translation provides the interfaces the translator core needs from
// a translation engine and from the language model manager.
package translation

import (
	"context"

	"instant-translator/internal/language"
)

// Engine is an exclusively owned translator instance for one language pair.
// An engine may hold a loaded model in memory until Close is called.
type Engine interface {
	// EnsureReady makes sure the models for the engine's pair are installed,
	// downloading them if needed.
	EnsureReady(ctx context.Context) error

	// Translate converts text from the pair's source to its target language.
	Translate(ctx context.Context, text string) (string, error)

	// Close releases the engine. It is idempotent.
	Close() error
}

// Factory constructs a new engine for a language pair.
type Factory func(pair language.Pair) (Engine, error)

// ModelManager lists, downloads and deletes installed language models.
type ModelManager interface {
	// Installed returns the codes of all languages with an installed model.
	Installed(ctx context.Context) ([]string, error)

	// Download installs the model for a language.
	Download(ctx context.Context, code string) error

	// Delete removes the model for a language.
	Delete(ctx context.Context, code string) error
}

// ProviderType identifies a translation provider.
type ProviderType string

const (
	ProviderArgos ProviderType = "argos"
)
