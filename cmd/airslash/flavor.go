package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airslash/airslash/internal/flavor"
)

var flavorScore int

var flavorCmd = &cobra.Command{
	Use:   "flavor",
	Short: "Print the sensei's line for a final score",
	Args:  cobra.NoArgs,
	RunE:  printFlavor,
}

func init() {
	rootCmd.AddCommand(flavorCmd)
	flavorCmd.Flags().IntVarP(&flavorScore, "score", "s", 0, "final score to comment on")
}

func printFlavor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	gen, err := flavor.NewGenerator(cfg.Flavor, log.Named("flavor"))
	if err != nil {
		return err
	}
	sensei := flavor.NewService(gen, cfg.Flavor, log.Named("flavor"))
	defer sensei.Close()

	fmt.Println(sensei.Generate(flavorScore))
	return nil
}
