package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"instant-translator/internal/config"
	"instant-translator/internal/language"
	"instant-translator/internal/text"
	"instant-translator/internal/worker"
	"instant-translator/models"
	"instant-translator/services"
)

func newTranslateCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "translate [TEXT...]",
		Short: "Translate text given as arguments or read from stdin",
		Long: `Translate each argument, or each line of stdin when no argument is
given. Lines are translated in parallel and printed in input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			pair, err := parsePair(from, to, e.cfg)
			if err != nil {
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				inputs, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			ctx, cancel := signalContext()
			defer cancel()
			return runTranslate(ctx, e, pair, inputs, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language code (default from config)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language code (default from config)")
	return cmd
}

func parsePair(from, to string, cfg *models.Config) (language.Pair, error) {
	if from == "" {
		from = cfg.DefaultSourceLang
	}
	if to == "" {
		to = cfg.DefaultTargetLang
	}
	src, err := language.New(from)
	if err != nil {
		return language.Pair{}, err
	}
	dst, err := language.New(to)
	if err != nil {
		return language.Pair{}, err
	}
	return language.NewPair(src, dst), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// runTranslate translates inputs through one pipeline and writes one line
// per input. A failed line is reported on stderr and the command fails.
func runTranslate(ctx context.Context, e *env, pair language.Pair, inputs []string, out io.Writer) error {
	cache := services.NewEngineCache(e.cfg.Capacity(), e.translator.NewEngine, e.log)
	defer cache.Close()
	pipeline := services.NewPipeline(cache, e.log)

	results, _ := worker.ProcessWithErrors(ctx, inputs, config.DynamicWorkerCount("translation-local"),
		func(ctx context.Context, input string) (models.Result, error) {
			req := models.NewTranslationRequest(0, strings.TrimSpace(input), true, pair)
			return pipeline.Run(ctx, req), nil
		}, nil)
	if err := ctx.Err(); err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		if r.IsErr() {
			failed++
			fmt.Fprintf(os.Stderr, "line %d: %v\n", i+1, r.Err())
			fmt.Fprintln(out)
			continue
		}
		// Keep one output line per input line.
		fmt.Fprintln(out, strings.Join(text.Lines(r.Text()), " "))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}
