// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/apa-formatter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the formatter over HTTP",
	Long: `Serve starts the HTTP API. POST /format-apa/ accepts a form with a text
field or a file upload and an output_format of html or docx. HTML results come
back as {"formatted": "..."}; docx results stream as a download.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFormatter(ctx, cfg)
	if err != nil {
		return err
	}
	return server.New(f, cfg.Server, logger, version).ListenAndServe(ctx)
}
