package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/daybrief/config"
	srv "github.com/mohammad-safakhou/daybrief/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctrl, store, err := buildController(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return srv.New(cfg, ctrl, store, nil).Run()
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
