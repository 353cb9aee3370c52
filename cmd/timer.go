/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mkaranov/taskdeck/internal/store"
	"github.com/mkaranov/taskdeck/internal/util"
	"github.com/spf13/cobra"
)

// timerCmd represents the timer command
var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track time spent on tasks",
}

var startTimerCmd = &cobra.Command{
	Use:   "start [Task ID]",
	Short: "Start the timer for a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		if !ts.StartTimer(taskID) {
			log.Printf("❌ Cannot start timer for %s (unknown, completed, or already running)", taskID)
			os.Exit(1)
		}

		fmt.Printf("✅ Timer started for task %s.\n", taskID)
	},
}

var stopTimerCmd = &cobra.Command{
	Use:   "stop [Task ID]",
	Short: "Stop the timer for a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		if !ts.StopTimer(taskID) {
			log.Printf("❌ No running timer for task %s", taskID)
			os.Exit(1)
		}

		task, _ := ts.GetByID(taskID)
		fmt.Printf("✅ Timer stopped for task %s (total %s).\n", taskID, util.FormatSeconds(task.TimeSpent))
	},
}

var statusTimerCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running timers",
	Run: func(cmd *cobra.Command, args []string) {

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		ids := ts.ActiveTimerIDs()
		if len(ids) == 0 {
			fmt.Println("No running timers.")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleDouble)
		t.Style().Options.SeparateRows = false

		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("ID"),
			text.FgGreen.Sprintf("Title"),
			text.FgGreen.Sprintf("Time spent"),
		})

		for _, id := range ids {
			task, ok := ts.GetByID(id)
			if !ok {
				continue
			}
			t.AppendRow(table.Row{task.ID, task.Title, util.FormatSeconds(task.TimeSpent)})
		}

		t.Render()
	},
}

var watchTimerCmd = &cobra.Command{
	Use:   "watch [Task ID]",
	Short: "Run the timer in the foreground until interrupted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)

		task, ok := ts.GetByID(taskID)
		if !ok {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		// Resume if a timer is already running, otherwise start one.
		if !task.TimerActive && !ts.StartTimer(taskID) {
			log.Printf("❌ Cannot start timer for %s (task is completed)", taskID)
			os.Exit(1)
		}

		titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("⏱ Tracking %v — Ctrl+C to stop\n", titleStyle(task.Title))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				current, ok := ts.GetByID(taskID)
				if !ok || !current.TimerActive {
					fmt.Println("\nTimer is no longer running.")
					ts.Close()
					return
				}
				fmt.Printf("\r%s%s", util.FormatSeconds(current.TimeSpent), strings.Repeat(" ", 10))
			case <-sig:
				ts.StopTimer(taskID)
				ts.Close()
				stopped, _ := ts.GetByID(taskID)
				fmt.Printf("\n✅ Timer stopped for task %s (total %s).\n", taskID, util.FormatSeconds(stopped.TimeSpent))
				return
			}
		}
	},
}

func init() {
	timerCmd.AddCommand(startTimerCmd)
	timerCmd.AddCommand(stopTimerCmd)
	timerCmd.AddCommand(statusTimerCmd)
	timerCmd.AddCommand(watchTimerCmd)
	rootCmd.AddCommand(timerCmd)
}
