package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"instant-translator/internal/language"
	"instant-translator/internal/reactive"
	"instant-translator/internal/worker"
	"instant-translator/models"
	"instant-translator/services"
)

const interactiveHelp = `Type text to translate it. Commands:
  :from CODE   set the source language
  :to CODE     set the target language
  :swap        swap source and target
  :quit        exit`

func newInteractiveCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Translate each line as you type it",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			pair, err := parsePair(from, to, e.cfg)
			if err != nil {
				return err
			}
			return runInteractive(e, pair, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language code (default from config)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language code (default from config)")
	return cmd
}

// runInteractive feeds stdin lines into a session and prints every result
// the session publishes. Superseded results are never printed.
func runInteractive(e *env, pair language.Pair, in io.Reader, out io.Writer) error {
	loop := worker.NewLoop()
	defer loop.Close()

	session := services.NewSession(services.SessionOptions{
		Factory:       e.translator.NewEngine,
		Models:        e.translator,
		Executor:      loop,
		CacheCapacity: e.cfg.Capacity(),
		Logger:        e.log,
	})
	defer session.Close()

	scope := reactive.NewScope()
	defer scope.Close()

	reactive.Observe(scope, session.Output(), func(r models.Result) {
		if r.IsErr() {
			fmt.Fprintf(out, "! %v\n", r.Err())
			return
		}
		if r.Text() != "" {
			fmt.Fprintf(out, "> %s\n", r.Text())
		}
	})
	printPair := func(language.Language) {
		fmt.Fprintf(out, "[%s]\n", language.NewPair(session.SourceLanguage().Value(), session.TargetLanguage().Value()))
	}
	reactive.Observe(scope, session.SourceLanguage(), printPair)
	reactive.Observe(scope, session.TargetLanguage(), printPair)

	session.SetModelEventCallback(func(ev services.ModelEvent) {
		if ev.Err != nil {
			fmt.Fprintf(out, "! %s %s failed: %v\n", ev.Op, ev.Language.Code(), ev.Err)
		}
	})

	fmt.Fprintln(out, interactiveHelp)
	session.SetSourceLanguage(pair.Source)
	session.SetTargetLanguage(pair.Target)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":") {
			session.SetSourceText(line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q":
			return nil
		case ":swap":
			session.SwapLanguages()
		case ":from", ":to":
			if len(fields) != 2 {
				fmt.Fprintf(out, "! usage: %s CODE\n", fields[0])
				continue
			}
			l, err := language.New(fields[1])
			if err != nil || !language.IsSupported(l.Code()) {
				fmt.Fprintf(out, "! unsupported language %q\n", fields[1])
				continue
			}
			if fields[0] == ":from" {
				session.SetSourceLanguage(l)
			} else {
				session.SetTargetLanguage(l)
			}
		default:
			fmt.Fprintln(out, interactiveHelp)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	// Input ended: print the translation of the last line before exiting.
	session.Settle()
	return nil
}
