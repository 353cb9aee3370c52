/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mkaranov/taskdeck/internal/store"
	"github.com/mkaranov/taskdeck/internal/util"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Run: func(cmd *cobra.Command, args []string) {

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleDouble)
		t.Style().Options.SeparateRows = false

		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("Metric"),
			text.FgGreen.Sprintf("Value"),
		})

		t.AppendRow(table.Row{"Total tasks", ts.TotalTasks()})
		t.AppendRow(table.Row{"Active", ts.ActiveTasks()})
		t.AppendRow(table.Row{"Completed", ts.CompletedTasks()})
		t.AppendRow(table.Row{"Overdue", ts.OverdueTasks()})
		t.AppendRow(table.Row{"Time tracked", util.FormatSeconds(ts.TotalTimeSpent())})
		t.AppendRow(table.Row{"Categories", strings.Join(ts.Categories(), ", ")})
		t.AppendRow(table.Row{"Tags", strings.Join(ts.AllTagNames(), ", ")})

		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
