// Package main is the entry point for the quest engine server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quest-api",
	Short: "Quest engine API server",
	Long:  `Quest API hosts the encounter-resolution and reward-economy engine behind dungeon runs, arena waves, weekly raid bosses, and expeditions.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(simulateCmd)
}
