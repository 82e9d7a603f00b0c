package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guidepost",
	Short: "Guidepost is a scripted dialogue engine for guided assessments",
	Long:  `Guidepost runs multi-language scripted conversations with branch rules, answer ledgers and milestone-based time skips.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("script", "", "Directory containing the script YAML files (empty uses the embedded default)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
