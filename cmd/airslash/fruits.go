package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fruitsCmd = &cobra.Command{
	Use:   "fruits",
	Short: "List the fruit table",
	Args:  cobra.NoArgs,
	RunE:  listFruits,
}

func init() {
	rootCmd.AddCommand(fruitsCmd)
}

func listFruits(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadFruits(cfg.Data, zap.NewNop())
	if err != nil {
		return err
	}

	fmt.Println()
	printSection("水果")
	for _, f := range table.Fruits() {
		printRow(fmt.Sprintf("%s %s", f.Glyph, f.Name), f.Color)
	}
	printSection("炸弹")
	b := table.Bomb()
	printRow(fmt.Sprintf("%s %s", b.Glyph, b.Name), fmt.Sprintf("-%d", cfg.Score.BombPenalty))
	fmt.Println()
	return nil
}
