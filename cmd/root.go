/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Personal task tracker with tags, due dates and time tracking",
	Long: `taskdeck is a personal task tracker for the terminal.

Tasks carry tags, due dates, priorities and a per-task timer that
keeps accruing across restarts. State is stored as JSON under the
configured data directory.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
