/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mkaranov/taskdeck/internal/store"
	"github.com/spf13/cobra"
)

// tagCmd represents the tag command
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and tag colors",
}

var listTagCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all tags",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		names := ts.AllTagNames()

		// Count how many tasks carry each tag.
		counts := map[string]int{}
		for _, task := range ts.Tasks() {
			for _, tag := range task.Tags {
				counts[tag.Name]++
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleDouble)
		t.Style().Options.SeparateRows = false

		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("Name"),
			text.FgGreen.Sprintf("Color"),
			text.FgGreen.Sprintf("Tasks"),
		})

		for _, name := range names {
			t.AppendRow(table.Row{name, ts.GetTagColor(name), counts[name]})
		}

		t.Render()
	},
}

var colorTagCmd = &cobra.Command{
	Use:   "color [name] [color]",
	Short: "Set a tag color (relabels the tag on every task)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tagName := args[0]
		tagColor := args[1]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		ts.SetTagColor(tagName, tagColor)
		fmt.Printf("✅ Tag %s color set to %s\n", tagName, tagColor)
	},
}

func init() {
	tagCmd.AddCommand(listTagCmd)
	tagCmd.AddCommand(colorTagCmd)
	rootCmd.AddCommand(tagCmd)
}
