package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"instant-translator/internal/language"
	"instant-translator/internal/logger"
	"instant-translator/internal/reactive"
	"instant-translator/models"
	"instant-translator/services"
	"instant-translator/ui/widgets"
)

// MainUI is the translator window: language pickers, the source text, the
// translation, and the installed models.
type MainUI struct {
	window  fyne.Window
	config  *models.Config
	session *services.Session
	scope   *reactive.Scope
	log     *logger.Logger

	sourceSelect *widgets.LanguageSelector
	targetSelect *widgets.LanguageSelector
	input        *widget.Entry
	output       *widget.Label
	progress     *widgets.StageProgress
	models       *widgets.ModelList
}

// NewMainUI binds a window to session. The session must post to the fyne
// main goroutine.
func NewMainUI(w fyne.Window, cfg *models.Config, session *services.Session, log *logger.Logger) *MainUI {
	if log == nil {
		log = logger.Default()
	}
	return &MainUI{
		window:  w,
		config:  cfg,
		session: session,
		scope:   reactive.NewScope(),
		log:     log.With("ui"),
	}
}

// Build creates the complete UI layout and starts observing the session.
func (ui *MainUI) Build() fyne.CanvasObject {
	available := ui.session.AvailableLanguages()

	ui.sourceSelect = widgets.NewLanguageSelector("From", available, ui.session.SetSourceLanguage)
	ui.targetSelect = widgets.NewLanguageSelector("To", available, ui.session.SetTargetLanguage)
	swap := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), ui.session.SwapLanguages)

	ui.input = widget.NewMultiLineEntry()
	ui.input.SetPlaceHolder("Type text to translate")
	ui.input.Wrapping = fyne.TextWrapWord
	ui.input.OnChanged = ui.session.SetSourceText

	ui.output = widget.NewLabel("")
	ui.output.Wrapping = fyne.TextWrapWord
	ui.output.Selectable = true

	ui.progress = widgets.NewStageProgress()

	ui.models = widgets.NewModelList(available)
	ui.models.OnDownload = ui.onDownload
	ui.models.OnDelete = ui.onDelete

	ui.bind()
	ui.applyDefaults()

	languages := container.NewGridWithColumns(3, ui.sourceSelect, container.NewCenter(swap), ui.targetSelect)
	texts := container.NewGridWithColumns(2,
		widget.NewCard("", "Source", ui.input),
		widget.NewCard("", "Translation", container.NewVScroll(ui.output)),
	)
	translate := container.NewBorder(languages, ui.progress, nil, nil, texts)

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Translate", theme.DocumentIcon(), translate),
		container.NewTabItemWithIcon("Models", theme.DownloadIcon(), ui.models),
	)
	return tabs
}

// bind subscribes the widgets to the session fields. Observers run on the
// fyne main goroutine.
func (ui *MainUI) bind() {
	reactive.Observe(ui.scope, ui.session.SourceLanguage(), ui.sourceSelect.SetSelected)
	reactive.Observe(ui.scope, ui.session.TargetLanguage(), ui.targetSelect.SetSelected)
	reactive.Observe(ui.scope, ui.session.Output(), ui.showResult)
	reactive.Observe(ui.scope, ui.session.InstalledModels(), ui.models.SetInstalled)

	ui.session.SetStageCallback(func(req *models.TranslationRequest) {
		// Stages of superseded requests would flicker behind the current one.
		if req.Seq != ui.session.Generation() {
			return
		}
		if req.Empty() {
			ui.progress.Reset()
			return
		}
		ui.progress.SetRequest(req)
	})
	ui.session.SetModelEventCallback(ui.onModelEvent)
}

func (ui *MainUI) applyDefaults() {
	if l, err := language.New(ui.config.DefaultSourceLang); err == nil {
		ui.session.SetSourceLanguage(l)
	}
	if l, err := language.New(ui.config.DefaultTargetLang); err == nil {
		ui.session.SetTargetLanguage(l)
	}
}

func (ui *MainUI) showResult(result models.Result) {
	if result.IsErr() {
		ui.output.Importance = widget.DangerImportance
		ui.output.SetText(fmt.Sprintf("Translation failed: %v", result.Err()))
		return
	}
	ui.output.Importance = widget.MediumImportance
	ui.output.SetText(result.Text())
}

func (ui *MainUI) onDownload(l language.Language) {
	ui.models.SetBusy(l, true)
	ui.session.DownloadLanguage(l)
}

func (ui *MainUI) onDelete(l language.Language) {
	dialog.ShowConfirm("Delete model",
		fmt.Sprintf("Remove the %s language model?", l.DisplayName()),
		func(ok bool) {
			if !ok {
				return
			}
			ui.models.SetBusy(l, true)
			ui.session.DeleteLanguage(l)
		}, ui.window)
}

func (ui *MainUI) onModelEvent(ev services.ModelEvent) {
	ui.models.SetBusy(ev.Language, false)
	if ev.Err != nil {
		dialog.ShowError(fmt.Errorf("%s %s failed: %w", ev.Op, ev.Language.DisplayName(), ev.Err), ui.window)
	}
}

// Close stops observing the session, releases it, and remembers the last
// language pair.
func (ui *MainUI) Close() {
	ui.scope.Close()

	if l := ui.session.SourceLanguage().Value(); !l.IsZero() {
		ui.config.DefaultSourceLang = l.Code()
	}
	if l := ui.session.TargetLanguage().Value(); !l.IsZero() {
		ui.config.DefaultTargetLang = l.Code()
	}
	ui.session.Close()

	if err := ui.config.Save(); err != nil {
		ui.log.Warn("Failed to save config: %v", err)
	}
}
