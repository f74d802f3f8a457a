// Package language provides the language value types used to select a translation engine.
package language

import (
	"fmt"
	"sort"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language identifies a language by its canonical code (e.g. "en").
// Two languages are equal iff their codes are equal, so Language can be
// used as a map key.
type Language struct {
	code string
}

// New returns the Language for code. The code is lower-cased and trimmed;
// it must be a well-formed BCP 47 tag.
func New(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Language{}, fmt.Errorf("empty language code")
	}
	if _, err := textlang.Parse(code); err != nil {
		return Language{}, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return Language{code: code}, nil
}

// MustNew is like New but panics on an invalid code. Intended for constants.
func MustNew(code string) Language {
	l, err := New(code)
	if err != nil {
		panic(err)
	}
	return l
}

// Code returns the canonical language code.
func (l Language) Code() string {
	return l.code
}

// IsZero reports whether l is the absent language.
func (l Language) IsZero() bool {
	return l.code == ""
}

// DisplayName returns the English display name of the language, falling
// back to the code when no name is known. Computed on every call.
func (l Language) DisplayName() string {
	if l.code == "" {
		return ""
	}
	tag, err := textlang.Parse(l.code)
	if err != nil {
		return l.code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return l.code
}

// String returns "<code> - <display name>".
func (l Language) String() string {
	return l.code + " - " + l.DisplayName()
}

// Compare orders languages by display name, then by code.
func (l Language) Compare(other Language) int {
	if c := strings.Compare(l.DisplayName(), other.DisplayName()); c != 0 {
		return c
	}
	return strings.Compare(l.code, other.code)
}

// Sort sorts languages in place by display name.
func Sort(langs []Language) {
	sort.SliceStable(langs, func(i, j int) bool {
		return langs[i].Compare(langs[j]) < 0
	})
}

// Pair is an ordered (source, target) combination identifying an engine.
type Pair struct {
	Source Language
	Target Language
}

// NewPair returns the pair for the given languages.
func NewPair(source, target Language) Pair {
	return Pair{Source: source, Target: target}
}

// Complete reports whether both languages are present.
func (p Pair) Complete() bool {
	return !p.Source.IsZero() && !p.Target.IsZero()
}

func (p Pair) String() string {
	return p.Source.code + "→" + p.Target.code
}
