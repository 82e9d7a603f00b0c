package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evanfield/guidepost"
	"github.com/evanfield/guidepost/internal/presentation/graph"
	"github.com/evanfield/guidepost/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long:  `Inspects one language of the script and outputs a Mermaid diagram (graph TD) of its nodes, choices and branch rules.`,
	Run: func(cmd *cobra.Command, args []string) {
		scriptDir, _ := cmd.Flags().GetString("script")
		if !cmd.Flags().Changed("script") && len(args) > 0 {
			scriptDir = args[0]
		}
		lang, _ := cmd.Flags().GetString("lang")

		engine, err := guidepost.New(scriptDir)
		if err != nil {
			fmt.Printf("Error initializing guidepost: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		nodes, err := engine.Inspect(domain.Language(lang))
		if err != nil {
			fmt.Printf("Error inspecting script: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(nodes, engine.Rules(), nil)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("lang", "l", "en", "Language to visualize")
}
