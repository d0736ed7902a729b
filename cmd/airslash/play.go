package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/audio"
	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/flavor"
	"github.com/airslash/airslash/internal/game"
	"github.com/airslash/airslash/internal/render"
	"github.com/airslash/airslash/internal/tracking"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a round (default command)",
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	fruits, err := loadFruits(cfg.Data, log)
	if err != nil {
		return err
	}
	gen, err := flavor.NewGenerator(cfg.Flavor, log.Named("flavor"))
	if err != nil {
		return err
	}
	sensei := flavor.NewService(gen, cfg.Flavor, log.Named("flavor"))
	defer sensei.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	screen, err := render.OpenScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	source, mouse := newSource(cfg, log)
	g := game.New(game.Deps{
		Config: cfg,
		Fruits: fruits,
		Source: source,
		Drawer: render.NewRenderer(screen),
		Flavor: sensei,
		Log:    log.Named("game"),
	})

	player := audio.NewPlayer(cfg.Audio, log.Named("audio"))
	defer player.Close()
	player.Subscribe(g.Bus())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := render.NewTerminal(screen, mouse, log.Named("terminal"))
	go func() {
		if err := term.Run(ctx, g); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("終端機已停止", zap.Error(err))
		}
		// Without a terminal there is nothing left to play on.
		g.Send(game.Command{Kind: game.CmdQuit})
	}()

	log.Info("airslash 啟動",
		zap.String("input", cfg.Input.Source),
		zap.Int("fruits", fruits.Count()),
		zap.Bool("audio", player.Active()))

	err = g.Run(ctx)
	cancel()
	if errors.Is(err, context.Canceled) {
		log.Info("收到關閉信號")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("airslash 已停止", zap.Int64("dropped_samples", g.Dropped()))
	return nil
}

// newSource builds the configured tracker. The mouse source is also
// returned on its own so the terminal can feed it.
func newSource(cfg *config.Config, log *zap.Logger) (tracking.Source, *tracking.MouseSource) {
	switch cfg.Input.Source {
	case config.SourceTCP:
		return tracking.NewTCPSource(cfg.Input.BindAddress, log.Named("tcp")), nil
	case config.SourceWebSocket:
		return tracking.NewWSSource(cfg.Input.BindAddress, cfg.Input.Path, log.Named("websocket")), nil
	}
	m := tracking.NewMouseSource(cfg.Input.HideOnRelease)
	return m, m
}
