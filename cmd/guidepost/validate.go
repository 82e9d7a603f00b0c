package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evanfield/guidepost"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the script for consistency",
	Long:  `Loads every language of the script and reports dangling choice targets, missing free-text successors, unrecorded milestones and unreachable nodes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed:\n%v\n", err)
			os.Exit(1)
		}
		fmt.Println("Script is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	scriptDir, _ := cmd.Flags().GetString("script")
	if !cmd.Flags().Changed("script") && len(args) > 0 {
		scriptDir = args[0]
	}

	// Loading is eager and total: a catalog that loads is a catalog that
	// passed validation.
	engine, err := guidepost.New(scriptDir)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, lang := range engine.Languages() {
		nodes, err := engine.Inspect(lang)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %d nodes\n", lang, len(nodes))
	}
	fmt.Printf("  rules: %d\n", len(engine.Rules()))
	return nil
}
