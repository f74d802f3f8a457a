package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instant-translator/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, l := range language.Available() {
				fmt.Fprintln(out, l)
			}
		},
	}
}
