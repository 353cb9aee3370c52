package store

import (
	"encoding/json"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mkaranov/taskdeck/internal/model"
	"github.com/mkaranov/taskdeck/internal/util"
	"github.com/oklog/ulid"
)

const (
	tasksKey     = "tasks"
	tagColorsKey = "tagColors"

	// DefaultTagColor is returned for tag names with no registered color.
	DefaultTagColor = "#31a974"
)

// Options configures a TaskStore. Zero values fall back to the real clock,
// ULID ids, medium default priority, and a 1-second timer tick.
type Options struct {
	Clock           func() time.Time
	NewID           func() string
	DefaultPriority model.Priority
	TickPeriod      time.Duration
}

// TaskStore owns the canonical task set, the tag-color registry, and the
// per-task timers. Every mutation persists through the Storage boundary
// before the mutex is released, so a read following a write always observes
// the persisted state.
type TaskStore struct {
	mu        sync.Mutex
	tasks     []model.Task
	tagColors map[string]string
	timers    map[string]*taskTimer

	storage Storage
	clock   func() time.Time
	newID   func() string
	defPrio model.Priority
	tick    time.Duration
}

var ulidEntropy = rand.New(rand.NewSource(time.Now().UnixNano()))

func newULID() string {
	return ulid.MustNew(ulid.Now(), ulidEntropy).String()
}

// NewTaskStore loads both collections from storage and resumes any timer
// that was running when the previous process exited. Malformed documents
// fall back to empty collections.
func NewTaskStore(storage Storage, opts Options) *TaskStore {
	s := &TaskStore{
		tasks:     []model.Task{},
		tagColors: map[string]string{},
		timers:    map[string]*taskTimer{},
		storage:   storage,
		clock:     opts.Clock,
		newID:     opts.NewID,
		defPrio:   opts.DefaultPriority,
		tick:      opts.TickPeriod,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = newULID
	}
	if !model.ValidPriority(s.defPrio) {
		s.defPrio = model.PriorityMedium
	}
	if s.tick <= 0 {
		s.tick = time.Second
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	// Tasks persisted mid-timer are still running. The reference point is
	// re-established now, so downtime is not credited.
	for i := range s.tasks {
		if s.tasks[i].TimerActive {
			s.spawnTimerLocked(s.tasks[i].ID)
		}
	}
	return s
}

// Open builds the store for the configured data directory.
func Open(config model.Config) *TaskStore {
	return NewTaskStore(NewFileStorage(config.DataDir), Options{
		DefaultPriority: model.Priority(config.DefaultPriority),
	})
}

func (s *TaskStore) loadLocked() {
	if data, err := s.storage.Load(tasksKey); err != nil {
		log.Printf("⚠️ Failed to load tasks, starting empty: %v", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.tasks); err != nil {
			log.Printf("⚠️ Failed to parse tasks, starting empty: %v", err)
			s.tasks = []model.Task{}
		}
	}

	if data, err := s.storage.Load(tagColorsKey); err != nil {
		log.Printf("⚠️ Failed to load tag colors, starting empty: %v", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.tagColors); err != nil {
			log.Printf("⚠️ Failed to parse tag colors, starting empty: %v", err)
			s.tagColors = map[string]string{}
		}
	}
}

// persistTasksLocked is the post-mutation hook: every write funnels through
// it. A failed save keeps the in-memory state and is retried on the next
// mutation or timer tick.
func (s *TaskStore) persistTasksLocked() {
	jsonBytes, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to convert tasks to JSON: %v", err)
		return
	}
	if err := s.storage.Save(tasksKey, jsonBytes); err != nil {
		log.Printf("⚠️ Failed to save tasks: %v", err)
	}
}

func (s *TaskStore) persistTagColorsLocked() {
	jsonBytes, err := json.MarshalIndent(s.tagColors, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to convert tag colors to JSON: %v", err)
		return
	}
	if err := s.storage.Save(tagColorsKey, jsonBytes); err != nil {
		log.Printf("⚠️ Failed to save tag colors: %v", err)
	}
}

func (s *TaskStore) findLocked(id string) *model.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *TaskStore) nowString() string {
	return s.clock().Format(time.RFC3339)
}

// AddTask creates a task from input, assigning the id and defaulting the
// missing fields. The new task is prepended so the most recent one lists
// first. Returns the created task.
func (s *TaskStore) AddTask(input model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowString()
	task := input
	task.ID = s.newID()
	task.Completed = false
	task.CompletedAt = ""
	task.TimerActive = false
	task.LastModified = now
	if task.CreatedAt == "" {
		task.CreatedAt = now
	}
	if task.Tags == nil {
		task.Tags = []model.Tag{}
	}
	if !model.ValidPriority(task.Priority) {
		task.Priority = s.defPrio
	}
	if task.TimeSpent < 0 {
		task.TimeSpent = 0
	}

	s.tasks = append([]model.Task{task}, s.tasks...)
	s.registerTagColorsLocked(task.Tags)
	s.persistTasksLocked()
	return task
}

// TaskUpdate carries a partial update: nil fields are left untouched.
// Completion state is owned by ToggleCompletion, not by updates.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *string
	Category    *string
	Priority    *model.Priority
	Tags        *[]model.Tag
}

// UpdateTask merges updates over the task with the given id and returns the
// result, or nil when the id is unknown.
func (s *TaskStore) UpdateTask(id string, updates TaskUpdate) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findLocked(id)
	if task == nil {
		return nil
	}

	if updates.Title != nil {
		task.Title = *updates.Title
	}
	if updates.Description != nil {
		task.Description = *updates.Description
	}
	if updates.DueDate != nil {
		task.DueDate = *updates.DueDate
	}
	if updates.Category != nil {
		task.Category = *updates.Category
	}
	if updates.Priority != nil && model.ValidPriority(*updates.Priority) {
		task.Priority = *updates.Priority
	}
	if updates.Tags != nil {
		task.Tags = *updates.Tags
		if task.Tags == nil {
			task.Tags = []model.Tag{}
		}
	}
	task.LastModified = s.nowString()

	s.registerTagColorsLocked(task.Tags)
	s.persistTasksLocked()
	updated := *task
	return &updated
}

// DeleteTask removes the task entirely. A running timer is cancelled first
// so no tick can write the id back after removal.
func (s *TaskStore) DeleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tm := s.timers[id]; tm != nil {
		close(tm.stop)
		delete(s.timers, id)
	}

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.persistTasksLocked()
			return true
		}
	}
	return false
}

// ToggleCompletion flips the completed flag. Completing a task stops its
// timer, crediting the elapsed time up to this moment.
func (s *TaskStore) ToggleCompletion(id string) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findLocked(id)
	if task == nil {
		return nil
	}

	now := s.nowString()
	task.Completed = !task.Completed
	if task.Completed {
		task.CompletedAt = now
		if tm := s.timers[id]; tm != nil {
			s.finishTimerLocked(task, tm)
		}
	} else {
		task.CompletedAt = ""
	}
	task.LastModified = now

	s.persistTasksLocked()
	toggled := *task
	return &toggled
}

// GetByID returns a copy of the task with the given id.
func (s *TaskStore) GetByID(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task := s.findLocked(id); task != nil {
		return *task, true
	}
	return model.Task{}, false
}

// GetForDate returns the tasks due on the given calendar day. The stored
// due-date string is matched by its day prefix, ignoring time of day and
// whatever offset the string carries.
func (s *TaskStore) GetForDate(date time.Time) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forDateLocked(date)
}

func (s *TaskStore) forDateLocked(date time.Time) []model.Task {
	day := util.DayString(date)
	var result []model.Task
	for _, task := range s.tasks {
		if strings.HasPrefix(task.DueDate, day) {
			result = append(result, task)
		}
	}
	return result
}

func (s *TaskStore) HasTasksForDate(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := util.DayString(date)
	for _, task := range s.tasks {
		if strings.HasPrefix(task.DueDate, day) {
			return true
		}
	}
	return false
}

// IsOverdue reports whether the task's due day has passed. Completed tasks
// and tasks without a due date are never overdue.
func (s *TaskStore) IsOverdue(task model.Task) bool {
	if task.Completed || task.DueDate == "" {
		return false
	}
	due, ok := util.ParseTimestamp(task.DueDate)
	if !ok {
		return false
	}
	today := util.StartOfDay(s.clock())
	return util.StartOfDay(due).Before(today)
}

// Tasks returns a copy of the task sequence, most recent first.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *TaskStore) TotalTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TaskStore) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, task := range s.tasks {
		if !task.Completed {
			count++
		}
	}
	return count
}

func (s *TaskStore) CompletedTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, task := range s.tasks {
		if task.Completed {
			count++
		}
	}
	return count
}

func (s *TaskStore) OverdueTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, task := range s.tasks {
		if s.IsOverdue(task) {
			count++
		}
	}
	return count
}

// TotalTimeSpent sums the tracked seconds across all tasks.
func (s *TaskStore) TotalTimeSpent() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, task := range s.tasks {
		sum += task.TimeSpent
	}
	return sum
}

// Categories returns the distinct non-empty categories in first-seen order.
func (s *TaskStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var categories []string
	for _, task := range s.tasks {
		if task.Category != "" && !seen[task.Category] {
			seen[task.Category] = true
			categories = append(categories, task.Category)
		}
	}
	return categories
}

// AllTagNames returns the distinct tag names across all tasks in
// first-seen order.
func (s *TaskStore) AllTagNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var names []string
	for _, task := range s.tasks {
		for _, tag := range task.Tags {
			if !seen[tag.Name] {
				seen[tag.Name] = true
				names = append(names, tag.Name)
			}
		}
	}
	return names
}

// FilteredTasks bundles the standard task views.
type FilteredTasks struct {
	All          []model.Task
	Active       []model.Task
	Completed    []model.Task
	Overdue      []model.Task
	HighPriority []model.Task
	Today        []model.Task
}

// Filtered recomputes every view from the current state.
func (s *TaskStore) Filtered() FilteredTasks {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := FilteredTasks{
		All:   append([]model.Task(nil), s.tasks...),
		Today: s.forDateLocked(s.clock()),
	}
	for _, task := range s.tasks {
		if task.Completed {
			f.Completed = append(f.Completed, task)
		} else {
			f.Active = append(f.Active, task)
		}
		if s.IsOverdue(task) {
			f.Overdue = append(f.Overdue, task)
		}
		if task.Priority == model.PriorityHigh {
			f.HighPriority = append(f.HighPriority, task)
		}
	}
	return f
}

// registerTagColorsLocked applies the first-write-wins rule: a tag carrying
// a color claims its name only if the name is still unregistered.
func (s *TaskStore) registerTagColorsLocked(tags []model.Tag) {
	updated := false
	for _, tag := range tags {
		if tag.Name != "" && tag.Color != "" && s.tagColors[tag.Name] == "" {
			s.tagColors[tag.Name] = tag.Color
			updated = true
		}
	}
	if updated {
		s.persistTagColorsLocked()
	}
}

// GetTagColor returns the registered color for a tag name, or the default
// color when the name is unregistered.
func (s *TaskStore) GetTagColor(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color := s.tagColors[name]; color != "" {
		return color
	}
	return DefaultTagColor
}

// SetTagColor is the one explicit override of the registry: it replaces the
// entry unconditionally and relabels every tag with that name across all
// tasks.
func (s *TaskStore) SetTagColor(name, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tagColors[name] = color
	for i := range s.tasks {
		for j := range s.tasks[i].Tags {
			if s.tasks[i].Tags[j].Name == name {
				s.tasks[i].Tags[j].Color = color
			}
		}
	}
	s.persistTagColorsLocked()
	s.persistTasksLocked()
}

// TagColors returns a copy of the registry.
func (s *TaskStore) TagColors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	colors := make(map[string]string, len(s.tagColors))
	for name, color := range s.tagColors {
		colors[name] = color
	}
	return colors
}
