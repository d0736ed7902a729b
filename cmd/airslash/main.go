package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/data"
	"github.com/airslash/airslash/internal/render"
)

const defaultConfigPath = "config/airslash.toml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "airslash",
	Short:         "Slice falling fruit with your fingertip, in the terminal",
	RunE:          runPlay,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $AIRSLASH_CONFIG or "+defaultConfigPath+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path: flag, then $AIRSLASH_CONFIG, then
// the default location. Only the default location may be missing.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("AIRSLASH_CONFIG")
	}
	if path == "" {
		cfg, err := config.LoadOrDefault(defaultConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func loadFruits(cfg config.DataConfig, log *zap.Logger) (*data.FruitTable, error) {
	table, err := data.LoadFruitTable(cfg.FruitList)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("找不到水果表，改用內建資料", zap.String("path", cfg.FruitList))
		return data.DefaultFruitTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load fruit table: %w", err)
	}
	return table, nil
}

// ── Console helpers ───────────────────────────────────────────────

func printSection(title string) {
	lineLen := max(46-render.DisplayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printRow(label, value string) {
	dotsLen := max(42-render.DisplayWidth(label)-render.DisplayWidth(value), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// The terminal owns stdout and stderr while a round is on screen.
	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
		zapCfg.ErrorOutputPaths = []string{cfg.Output}
	}

	return zapCfg.Build()
}
