package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"instant-translator/internal/config"
	"instant-translator/internal/language"
	"instant-translator/internal/worker"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List, download and delete language models",
	}
	cmd.AddCommand(
		newModelsListCmd(),
		newModelsDownloadCmd(),
		newModelsDeleteCmd(),
	)
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which supported languages have a model installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ctx, cancelList := context.WithTimeout(ctx, config.ModelListTimeout)
			defer cancelList()

			installed, err := e.translator.Installed(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range language.Available() {
				mark := " "
				if slices.Contains(installed, l.Code()) {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\n", mark, l)
			}
			return nil
		},
	}
}

func parseCodes(args []string) ([]language.Language, error) {
	langs := make([]language.Language, 0, len(args))
	for _, arg := range args {
		l, err := language.New(arg)
		if err != nil {
			return nil, err
		}
		if !language.IsSupported(l.Code()) {
			return nil, fmt.Errorf("unsupported language %q", arg)
		}
		langs = append(langs, l)
	}
	return langs, nil
}

func newModelsDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download CODE...",
		Short: "Download the models for one or more languages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			langs, err := parseCodes(args)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			out := cmd.OutOrStdout()
			_, errs := worker.ProcessWithErrors(ctx, langs, config.DynamicWorkerCount("model-download"),
				func(ctx context.Context, l language.Language) (struct{}, error) {
					return struct{}{}, e.translator.Download(ctx, l.Code())
				},
				func(completed, total int) {
					e.log.Info("Downloaded %d/%d", completed, total)
				})
			return report(out, "download", langs, errs)
		},
	}
}

func newModelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CODE...",
		Short: "Delete the models for one or more languages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			langs, err := parseCodes(args)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			// Deletes share one package directory; run them one at a time.
			errs := make([]error, len(langs))
			for i, l := range langs {
				errs[i] = e.translator.Delete(ctx, l.Code())
			}
			return report(cmd.OutOrStdout(), "delete", langs, errs)
		},
	}
}

// report prints one line per language and fails if any operation did.
func report(out io.Writer, op string, langs []language.Language, errs []error) error {
	failed := 0
	for i, l := range langs {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "%s %s: failed: %v\n", op, l.Code(), errs[i])
			continue
		}
		fmt.Fprintf(out, "%s %s: ok\n", op, l.Code())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d %s operations failed", failed, len(langs), op)
	}
	return nil
}
