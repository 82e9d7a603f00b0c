package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evanfield/guidepost/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive dialogue session",
	Long:  `Starts the Guidepost engine in interactive mode and walks through the script one turn at a time.`,
	Run: func(cmd *cobra.Command, args []string) {
		scriptDir, _ := cmd.Flags().GetString("script")
		if !cmd.Flags().Changed("script") && len(args) > 0 {
			scriptDir = args[0]
		}
		lang, _ := cmd.Flags().GetString("lang")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")

		opts := cli.RunOptions{
			ScriptDir: scriptDir,
			Language:  lang,
			Debug:     debug,
			Plain:     plain,
		}
		if err := cli.RunSession(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("lang", "l", "en", "Language of the session")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}
