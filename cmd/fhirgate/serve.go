package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fhirgate/internal/config"
	"fhirgate/internal/core/catalog"
	"fhirgate/internal/pkg/logger"
	"fhirgate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	Long:  `Start the gateway HTTP server and begin accepting requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		// 初始化全局 logger
		globalLogger, err := logger.New(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer globalLogger.Sync()

		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		if cfg.Catalog.File != "" {
			globalLogger.Info("catalog extended", zap.String("file", cfg.Catalog.File), zap.Int("entries", cat.Len()))
		}

		srv, err := server.NewHTTPServer(cfg, cat, globalLogger)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}

// loadCatalog returns the built-in catalog extended by catalog.file.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.Catalog.File == "" {
		return cat, nil
	}
	extra, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	return cat.Extend(extra...)
}

func SetupServeCmd() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Server port")
	serveCmd.Flags().StringP("host", "H", "0.0.0.0", "Server host")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}
