package services

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"instant-translator/internal/config"
	"instant-translator/internal/language"
	"instant-translator/internal/limiter"
	"instant-translator/internal/logger"
	"instant-translator/internal/retry"
	"instant-translator/internal/text"
	"instant-translator/internal/translation"
)

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// TranslatorOptions configures a TranslatorService.
type TranslatorOptions struct {
	// PythonPath is the interpreter with argostranslate installed. Empty
	// means search the usual locations.
	PythonPath string

	// Timeout bounds check, translate and uninstall calls.
	Timeout time.Duration

	// InstallTimeout bounds package index updates and model downloads.
	InstallTimeout time.Duration

	Runner CommandRunner
	Retry  retry.Policy
	Slots  *limiter.Slots
	Logger *logger.Logger
}

// TranslatorService uses Argos Translate (free, local, no API key). It is
// both the engine factory and the model manager for the translator core.
type TranslatorService struct {
	pythonPath     string
	timeout        time.Duration
	installTimeout time.Duration
	run            CommandRunner
	retry          retry.Policy
	slots          *limiter.Slots
	log            *logger.Logger

	// Argos keeps its package directory without locking.
	installMu sync.Mutex
}

var (
	_ translation.ModelManager = (*TranslatorService)(nil)
	_ translation.Factory      = (*TranslatorService)(nil).NewEngine
)

func NewTranslatorService(opts TranslatorOptions) *TranslatorService {
	s := &TranslatorService{
		pythonPath:     opts.PythonPath,
		timeout:        opts.Timeout,
		installTimeout: opts.InstallTimeout,
		run:            opts.Runner,
		retry:          opts.Retry,
		slots:          opts.Slots,
		log:            opts.Logger,
	}
	if s.run == nil {
		s.run = execRunner
	}
	if s.pythonPath == "" {
		s.pythonPath = findPythonWithArgos(s.run)
	}
	if s.timeout <= 0 {
		s.timeout = config.ExecTimeoutPython
	}
	if s.installTimeout <= 0 {
		s.installTimeout = config.ExecTimeoutInstall
	}
	if s.retry.MaxAttempts == 0 {
		s.retry = retry.DefaultPolicy()
	}
	if s.slots == nil {
		s.slots = limiter.CPU()
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.With("argos")
	return s
}

// findPythonWithArgos searches for a Python installation that has argostranslate
func findPythonWithArgos(run CommandRunner) string {
	// Common Python paths to check
	pythonPaths := []string{
		"/opt/anaconda3/bin/python3",
		"/opt/homebrew/bin/python3",
		"/usr/local/bin/python3",
		"python3",
		"/usr/bin/python3",
	}

	for _, p := range pythonPaths {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		output, err := run(ctx, p, "-c", "import argostranslate.translate; print('ok')")
		cancel()
		if err == nil && strings.TrimSpace(string(output)) == "ok" {
			return p
		}
	}

	// Fall back to python3 and let CheckInstalled report the error
	return "python3"
}

// PythonPath returns the interpreter in use.
func (s *TranslatorService) PythonPath() string {
	return s.pythonPath
}

// runScript runs a Python snippet under the CPU limiter and returns its
// trimmed output.
func (s *TranslatorService) runScript(ctx context.Context, timeout time.Duration, script string) (string, error) {
	if err := s.slots.Acquire(ctx); err != nil {
		return "", err
	}
	defer s.slots.Release()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := s.run(ctx, s.pythonPath, "-c", script)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("argos call interrupted: %w", ctxErr)
		}
		return "", fmt.Errorf("argos call failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// lastLine returns the final status line of script output; libraries may
// print warnings before it.
func lastLine(output string) string {
	lines := text.Lines(output)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// CheckInstalled verifies Argos Translate is installed
func (s *TranslatorService) CheckInstalled(ctx context.Context) error {
	out, err := s.runScript(ctx, s.timeout, "import argostranslate.translate\nprint('ok')\n")
	if err != nil {
		return fmt.Errorf("argos translate not installed. Run: pip install argostranslate\n%w", err)
	}
	if lastLine(out) != "ok" {
		return fmt.Errorf("argos translate not installed: %s", out)
	}
	return nil
}

// hasTranslation reports whether installed packages can translate along
// pair, directly or through a pivot language.
func (s *TranslatorService) hasTranslation(ctx context.Context, pair language.Pair) (bool, error) {
	script := fmt.Sprintf(`
import argostranslate.translate
langs = {l.code: l for l in argostranslate.translate.get_installed_languages()}
source = langs.get('%s')
target = langs.get('%s')
if source and target and source.get_translation(target):
    print("ok")
else:
    print("missing")
`, text.EscapeForPython(pair.Source.Code()), text.EscapeForPython(pair.Target.Code()))

	out, err := s.runScript(ctx, s.timeout, script)
	if err != nil {
		return false, fmt.Errorf("failed to check language package %s: %w", pair, err)
	}
	return lastLine(out) == "ok", nil
}

// updateIndex refreshes the remote package index, retrying transient failures.
func (s *TranslatorService) updateIndex(ctx context.Context) error {
	_, err := retry.Do(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.runScript(ctx, s.installTimeout, "import argostranslate.package\nargostranslate.package.update_package_index()\nprint('ok')\n")
	})
	if err != nil {
		return fmt.Errorf("failed to update package index: %w", err)
	}
	return nil
}

// installPackage installs the package for a single hop if it is missing.
func (s *TranslatorService) installPackage(ctx context.Context, hop language.Pair) error {
	script := fmt.Sprintf(`
import argostranslate.package
installed = any(p.from_code == '%[1]s' and p.to_code == '%[2]s' for p in argostranslate.package.get_installed_packages())
if installed:
    print("ok")
else:
    pkg = next((p for p in argostranslate.package.get_available_packages() if p.from_code == '%[1]s' and p.to_code == '%[2]s'), None)
    if pkg:
        argostranslate.package.install_from_path(pkg.download())
        print("ok")
    else:
        print("not_found")
`, text.EscapeForPython(hop.Source.Code()), text.EscapeForPython(hop.Target.Code()))

	out, err := s.runScript(ctx, s.installTimeout, script)
	if err != nil {
		return fmt.Errorf("failed to install language package %s: %w", hop, err)
	}
	if lastLine(out) != "ok" {
		return fmt.Errorf("language package %s not available", hop)
	}
	return nil
}

// installRoute downloads every package needed to translate along pair.
func (s *TranslatorService) installRoute(ctx context.Context, pair language.Pair) error {
	s.installMu.Lock()
	defer s.installMu.Unlock()

	if err := s.updateIndex(ctx); err != nil {
		return err
	}
	for _, hop := range language.Route(pair) {
		s.log.Info("Installing language package %s", hop)
		if err := s.installPackage(ctx, hop); err != nil {
			return err
		}
	}
	return nil
}

// translate runs a single translation through Argos.
func (s *TranslatorService) translate(ctx context.Context, pair language.Pair, input string) (string, error) {
	input = text.Normalize(input)
	if input == "" {
		return "", nil
	}

	script := fmt.Sprintf(`
import argostranslate.translate
result = argostranslate.translate.translate('%s', '%s', '%s')
print(result)
`, text.EscapeForPython(input), text.EscapeForPython(pair.Source.Code()), text.EscapeForPython(pair.Target.Code()))

	out, err := s.runScript(ctx, s.timeout, script)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return text.Normalize(out), nil
}

// NewEngine returns an engine for pair. It fails for unsupported or
// identical languages; no subprocess is started until the engine is used.
func (s *TranslatorService) NewEngine(pair language.Pair) (translation.Engine, error) {
	if !pair.Complete() {
		return nil, fmt.Errorf("incomplete language pair %s", pair)
	}
	if pair.Source == pair.Target {
		return nil, fmt.Errorf("source and target language are both %s", pair.Source.Code())
	}
	for _, l := range []language.Language{pair.Source, pair.Target} {
		if !language.IsSupported(l.Code()) {
			return nil, fmt.Errorf("language %q is not supported by argos", l.Code())
		}
	}
	s.log.Debug("Created engine %s", pair)
	return &argosEngine{svc: s, pair: pair}, nil
}

// Installed returns the sorted codes of all languages with an installed package.
func (s *TranslatorService) Installed(ctx context.Context) ([]string, error) {
	script := `
import argostranslate.package
codes = set()
for p in argostranslate.package.get_installed_packages():
    codes.add(p.from_code)
    codes.add(p.to_code)
for c in sorted(codes):
    print(c)
`
	out, err := s.runScript(ctx, s.timeout, script)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}
	codes := make([]string, 0)
	for _, line := range text.Lines(out) {
		if language.IsSupported(line) {
			codes = append(codes, line)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

// Download installs the packages between code and English in both directions.
func (s *TranslatorService) Download(ctx context.Context, code string) error {
	lang, err := supportedLanguage(code)
	if err != nil {
		return err
	}
	if lang == language.English {
		// English is installed with any other language.
		return nil
	}

	s.installMu.Lock()
	defer s.installMu.Unlock()

	if err := s.updateIndex(ctx); err != nil {
		return err
	}
	for _, hop := range []language.Pair{
		language.NewPair(lang, language.English),
		language.NewPair(language.English, lang),
	} {
		if err := s.installPackage(ctx, hop); err != nil {
			return err
		}
	}
	return nil
}

// Delete uninstalls every package that translates from or to code.
func (s *TranslatorService) Delete(ctx context.Context, code string) error {
	lang, err := supportedLanguage(code)
	if err != nil {
		return err
	}

	script := fmt.Sprintf(`
import argostranslate.package
for p in argostranslate.package.get_installed_packages():
    if p.from_code == '%[1]s' or p.to_code == '%[1]s':
        argostranslate.package.uninstall(p)
print("ok")
`, text.EscapeForPython(lang.Code()))

	s.installMu.Lock()
	defer s.installMu.Unlock()

	out, err := s.runScript(ctx, s.timeout, script)
	if err != nil {
		return fmt.Errorf("failed to delete language package %s: %w", lang.Code(), err)
	}
	if lastLine(out) != "ok" {
		return fmt.Errorf("failed to delete language package %s: %s", lang.Code(), out)
	}
	return nil
}

func supportedLanguage(code string) (language.Language, error) {
	lang, err := language.New(code)
	if err != nil {
		return language.Language{}, err
	}
	if !language.IsSupported(lang.Code()) {
		return language.Language{}, fmt.Errorf("language %q is not supported by argos", lang.Code())
	}
	return lang, nil
}

// argosEngine is a translation.Engine bound to one language pair.
type argosEngine struct {
	svc    *TranslatorService
	pair   language.Pair
	ready  atomic.Bool
	closed atomic.Bool
}

func (e *argosEngine) EnsureReady(ctx context.Context) error {
	if e.closed.Load() {
		return translation.ErrEngineClosed
	}
	if e.ready.Load() {
		return nil
	}

	ok, err := e.svc.hasTranslation(ctx, e.pair)
	if err != nil {
		return err
	}
	if !ok {
		if err := e.svc.installRoute(ctx, e.pair); err != nil {
			return err
		}
		if ok, err = e.svc.hasTranslation(ctx, e.pair); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("language package %s not available", e.pair)
		}
	}
	e.ready.Store(true)
	return nil
}

func (e *argosEngine) Translate(ctx context.Context, input string) (string, error) {
	if e.closed.Load() {
		return "", translation.ErrEngineClosed
	}
	return e.svc.translate(ctx, e.pair, input)
}

func (e *argosEngine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.svc.log.Debug("Closed engine %s", e.pair)
	}
	return nil
}
