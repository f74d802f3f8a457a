package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"instant-translator/internal/logger"
	"instant-translator/internal/reactive"
	"instant-translator/models"
	"instant-translator/services"
	"instant-translator/ui"
	apptheme "instant-translator/ui/theme"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		logger.Warn("Using default config: %v", err)
		cfg = models.DefaultConfig()
	}
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logger.Default()

	translator := services.NewTranslatorService(services.TranslatorOptions{
		PythonPath: cfg.PythonPath,
		Timeout:    cfg.TranslateTimeout(),
		Logger:     log,
	})

	a := app.New()
	a.Settings().SetTheme(&apptheme.TranslatorTheme{})

	w := a.NewWindow("Instant Translator")
	w.Resize(fyne.NewSize(900, 600))

	session := services.NewSession(services.SessionOptions{
		Factory:       translator.NewEngine,
		Models:        translator,
		Executor:      reactive.ExecutorFunc(fyne.Do),
		CacheCapacity: cfg.Capacity(),
		Logger:        log,
	})

	mainUI := ui.NewMainUI(w, cfg, session, log)
	w.SetContent(mainUI.Build())
	w.SetOnClosed(mainUI.Close)

	w.ShowAndRun()
}
