package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/daybrief/config"
)

func runCMD() *cobra.Command {
	var cfgPath string
	var printMarkdown bool
	var run = &cobra.Command{
		Use:   "run",
		Short: "Execute one research pass and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctrl, store, err := buildController(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rep, err := ctrl.Run(context.Background())
			if err != nil {
				return err
			}
			if printMarkdown {
				fmt.Fprintln(cmd.OutOrStdout(), rep.Markdown())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run complete: %d items for %s\n", len(rep.News), rep.Date.Format("2006-01-02"))
			return nil
		},
	}
	run.Flags().BoolVar(&printMarkdown, "markdown", false, "print the rendered report")
	run.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return run
}
