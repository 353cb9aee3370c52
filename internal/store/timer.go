package store

import (
	"time"

	"github.com/mkaranov/taskdeck/internal/model"
)

// taskTimer is the cancel handle for one running timer: the reference
// instant the next accrual measures from, and the channel that stops the
// ticker goroutine. The reference time.Time carries Go's monotonic reading,
// so wall-clock adjustments cannot skew the accrued amount.
type taskTimer struct {
	ref  time.Time
	stop chan struct{}
}

// StartTimer begins accruing elapsed time into the task's timeSpent.
// No-op when the id is unknown, the task is completed, or a timer is
// already running for it.
func (s *TaskStore) StartTimer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findLocked(id)
	if task == nil || task.Completed || s.timers[id] != nil {
		return false
	}

	task.TimerActive = true
	s.spawnTimerLocked(id)
	s.persistTasksLocked()
	return true
}

func (s *TaskStore) spawnTimerLocked(id string) {
	tm := &taskTimer{ref: s.clock(), stop: make(chan struct{})}
	s.timers[id] = tm
	go s.runTimer(id, tm)
}

func (s *TaskStore) runTimer(id string, tm *taskTimer) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-tm.stop:
			return
		case <-ticker.C:
			if !s.accrue(id, tm) {
				return
			}
		}
	}
}

// accrue is one timer tick. It re-checks the stop channel and the record
// after taking the mutex: a tick that lost the race against a delete,
// completion, or stop must not touch state. Returns false once the timer
// is no longer live.
func (s *TaskStore) accrue(id string, tm *taskTimer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-tm.stop:
		return false
	default:
	}

	task := s.findLocked(id)
	if task == nil || !task.TimerActive {
		return false
	}

	now := s.clock()
	if secs := int64(now.Sub(tm.ref) / time.Second); secs > 0 {
		task.TimeSpent += secs
	}
	tm.ref = now
	s.persistTasksLocked()
	return true
}

// StopTimer ends the task's timer, crediting the elapsed time since the
// last tick. No-op when no timer is running for the id.
func (s *TaskStore) StopTimer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tm := s.timers[id]
	if tm == nil {
		return false
	}
	task := s.findLocked(id)
	if task == nil {
		// Should not happen: DeleteTask removes the handle with the record.
		close(tm.stop)
		delete(s.timers, id)
		return false
	}

	s.finishTimerLocked(task, tm)
	s.persistTasksLocked()
	return true
}

// finishTimerLocked does the final accrual, clears timerActive, and
// discards the cancel handle. The caller persists.
func (s *TaskStore) finishTimerLocked(task *model.Task, tm *taskTimer) {
	if secs := int64(s.clock().Sub(tm.ref) / time.Second); secs > 0 {
		task.TimeSpent += secs
	}
	task.TimerActive = false
	close(tm.stop)
	delete(s.timers, task.ID)
}

// ActiveTimerIDs returns the ids of the tasks whose timers are running.
func (s *TaskStore) ActiveTimerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.timers))
	for _, task := range s.tasks {
		if s.timers[task.ID] != nil {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// Close shuts the timer goroutines down, crediting elapsed time up to now.
// timerActive stays true in the persisted state, so the next process
// resumes the same timers.
func (s *TaskStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := false
	for id, tm := range s.timers {
		if task := s.findLocked(id); task != nil {
			if secs := int64(s.clock().Sub(tm.ref) / time.Second); secs > 0 {
				task.TimeSpent += secs
			}
		}
		close(tm.stop)
		delete(s.timers, id)
		dirty = true
	}
	if dirty {
		s.persistTasksLocked()
	}
}
