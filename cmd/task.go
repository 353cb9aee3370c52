/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mkaranov/taskdeck/internal/model"
	"github.com/mkaranov/taskdeck/internal/store"
	"github.com/mkaranov/taskdeck/internal/util"
	"github.com/spf13/cobra"
)

var taskTags []string
var taskTitleFlag string
var taskDue string
var taskPriority string
var taskCategory string
var taskDescription string
var taskMeta bool
var listCompleted bool
var listOverdue bool
var listToday bool
var listHigh bool
var listAll bool

// parseTagFlags turns `--tag name` / `--tag name:#color` values into tags.
func parseTagFlags(values []string) []model.Tag {
	var tags []model.Tag
	for _, value := range values {
		name, tagColor, _ := strings.Cut(value, ":")
		if name == "" {
			continue
		}
		tags = append(tags, model.Tag{Name: name, Color: tagColor})
	}
	return tags
}

func priorityColored(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return text.FgHiRed.Sprintf("%s", p)
	case model.PriorityMedium:
		return text.FgHiYellow.Sprintf("%s", p)
	case model.PriorityLow:
		return text.FgHiBlue.Sprintf("%s", p)
	default:
		return string(p)
	}
}

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Manage tasks",
	Aliases: []string{"t"},
}

var newTaskCmd = &cobra.Command{
	Use:     "new [title]",
	Short:   "Add a new task",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"n"},
	Run: func(cmd *cobra.Command, args []string) {
		taskTitle := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		if taskDue != "" {
			if _, ok := util.ParseTimestamp(taskDue); !ok {
				log.Printf("❌ Invalid due date %q (expected YYYY-MM-DD)", taskDue)
				os.Exit(1)
			}
		}
		if taskPriority != "" && !model.ValidPriority(model.Priority(taskPriority)) {
			log.Printf("❌ Invalid priority %q (none, low, medium, high)", taskPriority)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		created := ts.AddTask(model.Task{
			Title:       taskTitle,
			DueDate:     taskDue,
			Category:    taskCategory,
			Priority:    model.Priority(taskPriority),
			Tags:        parseTagFlags(taskTags),
			Description: taskDescription,
		})

		fmt.Printf("✅ Task %s has been created successfully.\n", created.ID)
	},
}

var listTaskCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		filtered := ts.Filtered()
		tasks := filtered.Active
		switch {
		case listAll:
			tasks = filtered.All
		case listCompleted:
			tasks = filtered.Completed
		case listOverdue:
			tasks = filtered.Overdue
		case listToday:
			tasks = filtered.Today
		case listHigh:
			tasks = filtered.HighPriority
		}

		if len(taskTags) > 0 {
			wanted := map[string]bool{}
			for _, tag := range parseTagFlags(taskTags) {
				wanted[tag.Name] = true
			}
			var matched []model.Task
			for _, task := range tasks {
				for _, tag := range task.Tags {
					if wanted[tag.Name] {
						matched = append(matched, task)
						break
					}
				}
			}
			tasks = matched
		}

		fmt.Println(strings.Repeat("=", 30))
		fmt.Printf("Tasks: %v tasks shown\n", len(tasks))
		fmt.Println(strings.Repeat("=", 30))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleDouble)
		t.Style().Options.SeparateRows = false

		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("ID"), text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Title")),
			text.FgGreen.Sprintf("Tags"),
			text.FgGreen.Sprintf("Priority"),
			text.FgGreen.Sprintf("Due"),
			text.FgGreen.Sprintf("Status"),
			text.FgGreen.Sprintf("Time"),
		})

		for _, task := range tasks {
			tagNames := make([]string, 0, len(task.Tags))
			for _, tag := range task.Tags {
				tagNames = append(tagNames, tag.Name)
			}

			status := "Open"
			switch {
			case task.Completed:
				status = text.FgHiGreen.Sprintf("✔ Done")
			case ts.IsOverdue(task):
				status = text.FgHiRed.Sprintf("Overdue")
			case task.TimerActive:
				status = text.FgHiYellow.Sprintf("⏱ Running")
			}

			due := task.DueDate
			if parsed, ok := util.ParseTimestamp(task.DueDate); ok {
				due = util.DayString(parsed)
			}

			t.AppendRow(table.Row{
				task.ID,
				task.Title,
				strings.Join(tagNames, ", "),
				priorityColored(task.Priority),
				due,
				status,
				util.FormatSeconds(task.TimeSpent),
			})
		}

		t.Render()
	},
}

var showTaskCmd = &cobra.Command{
	Use:     "show [Task ID]",
	Short:   "Show task detail",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"s"},
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		task, ok := ts.GetByID(taskID)
		if !ok {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
		fieldStyle := color.New(color.FgHiGreen).SprintFunc()

		tagNames := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			tagNames = append(tagNames, fmt.Sprintf("%s (%s)", tag.Name, ts.GetTagColor(tag.Name)))
		}

		fmt.Printf("[%v] %v\n", titleStyle(task.ID), titleStyle(task.Title))
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf("Completed: %v\n", fieldStyle(task.Completed))
		fmt.Printf("Priority: %v\n", fieldStyle(task.Priority))
		fmt.Printf("Category: %v\n", fieldStyle(task.Category))
		fmt.Printf("Tags: %v\n", fieldStyle(strings.Join(tagNames, ", ")))
		fmt.Printf("Due date: %v\n", fieldStyle(task.DueDate))
		fmt.Printf("Created at: %v\n", fieldStyle(task.CreatedAt))
		fmt.Printf("Last modified: %v\n", fieldStyle(task.LastModified))
		if task.Completed {
			fmt.Printf("Completed at: %v\n", fieldStyle(task.CompletedAt))
		}
		fmt.Printf("Time spent: %v\n", fieldStyle(util.FormatSeconds(task.TimeSpent)))

		// Render the description unless --meta flag is used
		if !taskMeta && task.Description != "" {
			renderedContent, err := glamour.Render(task.Description, "dark")
			if err != nil {
				log.Printf("⚠️ Failed to render markdown content: %v", err)
			} else {
				fmt.Println(renderedContent)
			}
		}
	},
}

var updateTaskCmd = &cobra.Command{
	Use:   "update [Task ID]",
	Short: "Update task fields",
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

		var updates store.TaskUpdate
		if cmd.Flags().Changed("title") {
			updates.Title = &taskTitleFlag
		}
		if cmd.Flags().Changed("due") {
			if taskDue != "" {
				if _, ok := util.ParseTimestamp(taskDue); !ok {
					log.Printf("❌ Invalid due date %q (expected YYYY-MM-DD)", taskDue)
					os.Exit(1)
				}
			}
			updates.DueDate = &taskDue
		}
		if cmd.Flags().Changed("priority") {
			p := model.Priority(taskPriority)
			if !model.ValidPriority(p) {
				log.Printf("❌ Invalid priority %q (none, low, medium, high)", taskPriority)
				os.Exit(1)
			}
			updates.Priority = &p
		}
		if cmd.Flags().Changed("category") {
			updates.Category = &taskCategory
		}
		if cmd.Flags().Changed("desc") {
			updates.Description = &taskDescription
		}
		if cmd.Flags().Changed("tag") {
			tags := parseTagFlags(taskTags)
			updates.Tags = &tags
		}

		updated := ts.UpdateTask(taskID, updates)
		if updated == nil {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		fmt.Printf("✅ Task %s updated successfully.\n", updated.ID)
	},
}

var editTaskCmd = &cobra.Command{
	Use:     "edit [Task ID]",
	Short:   "Edit the task description in your editor",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"e"},
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		task, ok := ts.GetByID(taskID)
		if !ok {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		tmpFile := filepath.Join(os.TempDir(), "taskdeck-"+task.ID+".md")
		if err := os.WriteFile(tmpFile, []byte(task.Description), 0644); err != nil {
			log.Printf("❌ Failed to create temp file: %v", err)
			os.Exit(1)
		}
		defer os.Remove(tmpFile)

		c := exec.Command(config.Editor, tmpFile)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			log.Printf("❌ Failed to open editor: %v", err)
			os.Exit(1)
		}

		edited, err := os.ReadFile(tmpFile)
		if err != nil {
			log.Printf("❌ Failed to read edited description: %v", err)
			os.Exit(1)
		}

		description := string(edited)
		if ts.UpdateTask(taskID, store.TaskUpdate{Description: &description}) == nil {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		fmt.Printf("✅ Task %s description updated.\n", taskID)
	},
}

var doneTaskCmd = &cobra.Command{
	Use:     "done [Task ID]",
	Short:   "Toggle task completion",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"d"},
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		toggled := ts.ToggleCompletion(taskID)
		if toggled == nil {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		if toggled.Completed {
			fmt.Printf("✅ Task %s completed.\n", taskID)
		} else {
			fmt.Printf("✅ Task %s reopened.\n", taskID)
		}
	},
}

var deleteTaskCmd = &cobra.Command{
	Use:     "remove [Task ID]",
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm"},
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		config, err := store.LoadConfig()
		if err != nil {
			log.Printf("❌ Error loading config: %v", err)
			os.Exit(1)
		}

		ts := store.Open(*config)
		defer ts.Close()

		if !ts.DeleteTask(taskID) {
			log.Printf("❌ Task with ID %s not found", taskID)
			os.Exit(1)
		}

		fmt.Printf("✅ Task %s permanently deleted\n", taskID)
	},
}

func init() {
	taskCmd.AddCommand(newTaskCmd)
	taskCmd.AddCommand(listTaskCmd)
	taskCmd.AddCommand(showTaskCmd)
	taskCmd.AddCommand(updateTaskCmd)
	taskCmd.AddCommand(editTaskCmd)
	taskCmd.AddCommand(doneTaskCmd)
	taskCmd.AddCommand(deleteTaskCmd)
	rootCmd.AddCommand(taskCmd)

	newTaskCmd.Flags().StringSliceVarP(&taskTags, "tag", "t", []string{}, "Specify tags (name or name:#color)")
	newTaskCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	newTaskCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority (none, low, medium, high)")
	newTaskCmd.Flags().StringVarP(&taskCategory, "category", "c", "", "Category")
	newTaskCmd.Flags().StringVar(&taskDescription, "desc", "", "Description (markdown)")

	listTaskCmd.Flags().StringSliceVarP(&taskTags, "tag", "t", []string{}, "Filter by tags")
	listTaskCmd.Flags().BoolVar(&listAll, "all", false, "Show all tasks")
	listTaskCmd.Flags().BoolVar(&listCompleted, "completed", false, "Show completed tasks")
	listTaskCmd.Flags().BoolVar(&listOverdue, "overdue", false, "Show overdue tasks")
	listTaskCmd.Flags().BoolVar(&listToday, "today", false, "Show tasks due today")
	listTaskCmd.Flags().BoolVar(&listHigh, "high", false, "Show high priority tasks")

	showTaskCmd.Flags().BoolVar(&taskMeta, "meta", false, "Show only metadata without the description")

	updateTaskCmd.Flags().StringVar(&taskTitleFlag, "title", "", "New title")
	updateTaskCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD, empty to clear)")
	updateTaskCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority (none, low, medium, high)")
	updateTaskCmd.Flags().StringVarP(&taskCategory, "category", "c", "", "Category")
	updateTaskCmd.Flags().StringVar(&taskDescription, "desc", "", "Description (markdown)")
	updateTaskCmd.Flags().StringSliceVarP(&taskTags, "tag", "t", []string{}, "Replace tags (name or name:#color)")
}
