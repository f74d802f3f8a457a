// instant-translate is the command-line front end of the instant translator:
// one-shot translation, an interactive session, and model management.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"instant-translator/internal/logger"
	"instant-translator/models"
	"instant-translator/services"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	configPath string
	pythonPath string
	logLevel   string
	capacity   int
)

// env is what every subcommand needs, built once flags are parsed.
type env struct {
	cfg        *models.Config
	log        *logger.Logger
	translator *services.TranslatorService
}

func loadEnv() (*env, error) {
	var (
		cfg *models.Config
		err error
	)
	if configPath != "" {
		cfg, err = models.LoadConfigFile(configPath)
	} else {
		cfg, err = models.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	if pythonPath != "" {
		cfg.PythonPath = pythonPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if capacity > 0 {
		cfg.CacheCapacity = capacity
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.New(level, os.Stderr)

	translator := services.NewTranslatorService(services.TranslatorOptions{
		PythonPath: cfg.PythonPath,
		Timeout:    cfg.TranslateTimeout(),
		Logger:     log,
	})
	return &env{cfg: cfg, log: log, translator: translator}, nil
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "instant-translate",
		Short: "Offline text translation with Argos Translate",
		Long: `instant-translate translates text locally with Argos Translate models.

Commands:
  translate     Translate text given as arguments or read from stdin
  interactive   Translate each line as you type it
  models        List, download and delete language models
  languages     List supported languages
  version       Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&pythonPath, "python", "", "Python interpreter with argostranslate")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().IntVar(&capacity, "capacity", 0, "Number of engines kept loaded")

	root.AddCommand(
		newTranslateCmd(),
		newInteractiveCmd(),
		newModelsCmd(),
		newLanguagesCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("instant-translate version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
