package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fhirgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fhirgate",
	Short: "FHIR API gateway",
	Long: `FHIR API gateway - validates inbound requests, answers with FHIR
OperationOutcome errors and rewrites upstream error bodies.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
}

func initConfig() {
	config.Init(cfgFile)
}
