package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"instant-translator/internal/language"
)

// LanguageSelector is a labelled dropdown of languages shown as "code - Name".
type LanguageSelector struct {
	widget.BaseWidget

	Label     string
	Languages []language.Language
	OnChanged func(language.Language)

	selected language.Language
	label    *widget.Label
	choice   *widget.Select
}

// NewLanguageSelector creates a selector with nothing selected.
func NewLanguageSelector(label string, languages []language.Language, onChanged func(language.Language)) *LanguageSelector {
	s := &LanguageSelector{
		Label:     label,
		Languages: languages,
		OnChanged: onChanged,
	}
	s.label = widget.NewLabel(label)
	s.choice = widget.NewSelect(options(languages), s.onSelected)
	s.choice.PlaceHolder = "Select language"
	s.ExtendBaseWidget(s)
	return s
}

func options(languages []language.Language) []string {
	out := make([]string, len(languages))
	for i, l := range languages {
		out[i] = l.String()
	}
	return out
}

func (s *LanguageSelector) onSelected(option string) {
	for _, l := range s.Languages {
		if l.String() != option {
			continue
		}
		if l == s.selected {
			return
		}
		s.selected = l
		if s.OnChanged != nil {
			s.OnChanged(l)
		}
		return
	}
}

// SetSelected shows l without calling OnChanged. A zero Language clears the
// selection.
func (s *LanguageSelector) SetSelected(l language.Language) {
	if l == s.selected {
		return
	}
	s.selected = l
	if l.IsZero() {
		s.choice.ClearSelected()
		return
	}
	s.choice.SetSelected(l.String())
}

// Selected returns the selected language, zero if none.
func (s *LanguageSelector) Selected() language.Language {
	return s.selected
}

// CreateRenderer implements fyne.Widget
func (s *LanguageSelector) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewVBox(s.label, s.choice))
}
