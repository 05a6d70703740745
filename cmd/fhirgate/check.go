package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fhirgate/internal/config"
	"fhirgate/internal/server"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and catalog without serving",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		srv, err := server.NewHTTPServer(cfg, cat, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d catalog entries, listen %s\n", cat.Len(), srv.Addr())
		return nil
	},
}

func SetupCheckCmd() {
	rootCmd.AddCommand(checkCmd)
}
