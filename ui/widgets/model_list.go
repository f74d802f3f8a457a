package widgets

import (
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"instant-translator/internal/language"
)

// ModelList lists the languages the engine supports, marks the installed
// ones, and offers download and delete actions.
type ModelList struct {
	widget.BaseWidget

	Languages  []language.Language
	OnDownload func(language.Language)
	OnDelete   func(language.Language)

	installed []string
	busy      map[string]bool
	list      *widget.List
}

// NewModelList creates a list of languages with no models installed.
func NewModelList(languages []language.Language) *ModelList {
	m := &ModelList{
		Languages: languages,
		busy:      make(map[string]bool),
	}
	m.list = widget.NewList(
		func() int { return len(m.Languages) },
		m.createRow,
		m.updateRow,
	)
	m.ExtendBaseWidget(m)
	return m
}

// SetInstalled replaces the set of installed language codes.
func (m *ModelList) SetInstalled(codes []string) {
	m.installed = codes
	m.list.Refresh()
}

// SetBusy marks l as having an operation in progress.
func (m *ModelList) SetBusy(l language.Language, busy bool) {
	if busy {
		m.busy[l.Code()] = true
	} else {
		delete(m.busy, l.Code())
	}
	m.list.Refresh()
}

// IsInstalled reports whether l has a model.
func (m *ModelList) IsInstalled(l language.Language) bool {
	return slices.Contains(m.installed, l.Code())
}

func (m *ModelList) createRow() fyne.CanvasObject {
	name := widget.NewLabel("Language")
	status := widget.NewLabel("")
	status.Importance = widget.LowImportance
	download := widget.NewButtonWithIcon("", theme.DownloadIcon(), nil)
	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
	return container.NewHBox(name, layout.NewSpacer(), status, download, remove)
}

func (m *ModelList) updateRow(id widget.ListItemID, row fyne.CanvasObject) {
	if id < 0 || id >= len(m.Languages) {
		return
	}
	l := m.Languages[id]
	objs := row.(*fyne.Container).Objects
	name := objs[0].(*widget.Label)
	status := objs[2].(*widget.Label)
	download := objs[3].(*widget.Button)
	remove := objs[4].(*widget.Button)

	name.SetText(l.String())

	installed := m.IsInstalled(l)
	switch {
	case m.busy[l.Code()]:
		status.SetText("Working...")
	case installed:
		status.SetText("Installed")
	default:
		status.SetText("")
	}

	download.OnTapped = func() {
		if m.OnDownload != nil {
			m.OnDownload(l)
		}
	}
	remove.OnTapped = func() {
		if m.OnDelete != nil {
			m.OnDelete(l)
		}
	}

	// English is the pivot and is always available.
	if m.busy[l.Code()] || l == language.English {
		download.Disable()
		remove.Disable()
		return
	}
	if installed {
		download.Disable()
		remove.Enable()
	} else {
		download.Enable()
		remove.Disable()
	}
}

// CreateRenderer implements fyne.Widget
func (m *ModelList) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.list)
}
