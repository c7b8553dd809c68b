// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the apa-formatter CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apa-formatter/internal/cleanup"
	"github.com/pdiddy/apa-formatter/internal/convert"
	"github.com/pdiddy/apa-formatter/internal/format"
	"github.com/pdiddy/apa-formatter/internal/secrets"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the apa-formatter CLI.
var rootCmd = &cobra.Command{
	Use:   "apa-formatter",
	Short: "Format papers and reference lists in APA 7 style",
	Long: `apa-formatter turns a plain manuscript into an APA 7 document: a title
page, an abstract, a body with classified headings and block quotes, and an
alphabetized reference list with hanging indents.

Input is pasted text or a .docx, .pdf, .html, .md, or .txt file. Output is an
HTML fragment or a Word document. The same pipeline is served over HTTP by
the serve subcommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./apa-formatter.yaml or ~/.config/apa-formatter/config.yaml)")
	rootCmd.PersistentFlags().String("segmenter", "", "section segmenter: dynamic or fixed")
	rootCmd.PersistentFlags().String("cleanup", "", "text cleanup provider: huggingface or openai (default: disabled)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("formatter.segmenter", rootCmd.PersistentFlags().Lookup("segmenter"))
	_ = viper.BindPFlag("cleanup.provider", rootCmd.PersistentFlags().Lookup("cleanup"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("apa-formatter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "apa-formatter"))
		}
	}

	viper.SetEnvPrefix("APA_FORMATTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("cleanup.api_key", "APA_FORMATTER_CLEANUP_API_KEY", "HF_API_KEY")
	_ = viper.BindEnv("cleanup.base_url")
	_ = viper.BindEnv("convert.image")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})))
}

// setDefaults registers every DefaultConfig key with viper so environment
// variables can override keys absent from the config file.
func setDefaults() {
	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := prefix + k
			if sub, ok := v.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			viper.SetDefault(key, v)
		}
	}
	walk("", tree)
}

// loadConfig returns the effective configuration: defaults, then the config
// file, then APA_FORMATTER_* environment variables and flags, then keys
// from .secrets/.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	})
	if err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	secrets.ApplyCleanup(&cfg.Cleanup, loadedSecrets)
	return cfg, nil
}

// newFormatter wires the extractors, the cleanup service, and the assembler
// for cfg.
func newFormatter(ctx context.Context, cfg types.Config) (*format.Formatter, error) {
	registry := convert.NewRegistry()
	if cfg.Convert.Image != "" {
		if err := registry.RegisterContainer(ctx, cfg.Convert); err != nil {
			slog.Warn("container conversion disabled", "error", err)
		}
	}

	svc, err := cleanup.NewService(cfg.Cleanup)
	if err != nil {
		return nil, err
	}
	if svc.Enabled() {
		slog.Info("text cleanup enabled", "provider", cfg.Cleanup.Provider)
	}
	return format.New(cfg, registry, svc), nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
