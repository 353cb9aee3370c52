package store

import (
	"testing"
	"time"

	"github.com/mkaranov/taskdeck/internal/model"
)

// Timer tests drive the clock manually and run the ticker fast so a real
// tick fires well within the sleep windows below.
const testTick = 5 * time.Millisecond

func newTimerTestStore(t *testing.T, storage *memStorage, clock *fakeClock) *TaskStore {
	t.Helper()
	s := NewTaskStore(storage, Options{
		Clock:      clock.Now,
		NewID:      sequentialIDs(),
		TickPeriod: testTick,
	})
	t.Cleanup(s.Close)
	return s
}

func waitForTimeSpent(t *testing.T, s *TaskStore, id string, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if task, ok := s.GetByID(id); ok && task.TimeSpent >= want {
			return
		}
		time.Sleep(testTick)
	}
	task, _ := s.GetByID(id)
	t.Fatalf("timed out waiting for timeSpent >= %d, have %d", want, task.TimeSpent)
}

func TestStartStopTimerAccrues(t *testing.T) {
	storage := newMemStorage()
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, storage, clock)

	created := s.AddTask(model.Task{Title: "tracked"})

	if !s.StartTimer(created.ID) {
		t.Fatal("expected timer to start")
	}
	if task, _ := s.GetByID(created.ID); !task.TimerActive {
		t.Fatal("expected timerActive true after start")
	}
	if s.StartTimer(created.ID) {
		t.Error("expected second start to be a no-op")
	}

	// Two whole seconds elapse, a tick credits them.
	clock.Advance(2 * time.Second)
	waitForTimeSpent(t, s, created.ID, 2)

	// Another second elapses, stop credits the remainder.
	clock.Advance(time.Second)
	if !s.StopTimer(created.ID) {
		t.Fatal("expected stop to succeed")
	}

	task, _ := s.GetByID(created.ID)
	if task.TimerActive {
		t.Error("expected timerActive false after stop")
	}
	if task.TimeSpent != 3 {
		t.Errorf("expected 3 seconds accrued, got %d", task.TimeSpent)
	}

	if s.StopTimer(created.ID) {
		t.Error("expected stop without a running timer to be a no-op")
	}
}

func TestStartTimerRefusals(t *testing.T) {
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, newMemStorage(), clock)

	if s.StartTimer("missing") {
		t.Error("expected no timer for unknown id")
	}

	done := s.AddTask(model.Task{Title: "done"})
	s.ToggleCompletion(done.ID)
	if s.StartTimer(done.ID) {
		t.Error("expected no timer for completed task")
	}
}

func TestTimeSpentNeverDecreases(t *testing.T) {
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, newMemStorage(), clock)

	created := s.AddTask(model.Task{Title: "tracked", TimeSpent: 10})
	s.StartTimer(created.ID)
	clock.Advance(time.Second)
	s.StopTimer(created.ID)

	task, _ := s.GetByID(created.ID)
	if task.TimeSpent != 11 {
		t.Errorf("expected accrual on top of existing timeSpent, got %d", task.TimeSpent)
	}
}

func TestCompletionStopsTimerWithFinalAccrual(t *testing.T) {
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, newMemStorage(), clock)

	created := s.AddTask(model.Task{Title: "tracked"})
	s.StartTimer(created.ID)
	clock.Advance(4 * time.Second)

	toggled := s.ToggleCompletion(created.ID)
	if toggled == nil || !toggled.Completed {
		t.Fatal("expected task completed")
	}
	if toggled.TimerActive {
		t.Error("expected timer stopped by completion")
	}
	if toggled.TimeSpent < 4 {
		t.Errorf("expected elapsed time credited up to the toggle, got %d", toggled.TimeSpent)
	}
	if len(s.ActiveTimerIDs()) != 0 {
		t.Error("expected no running timers after completion")
	}
}

func TestDeleteCancelsTimerWithoutResurrectingRecord(t *testing.T) {
	storage := newMemStorage()
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, storage, clock)

	created := s.AddTask(model.Task{Title: "doomed"})
	s.StartTimer(created.ID)
	clock.Advance(time.Second)

	if !s.DeleteTask(created.ID) {
		t.Fatal("expected delete to succeed")
	}

	// Give any in-flight tick plenty of chances to misbehave.
	clock.Advance(5 * time.Second)
	time.Sleep(20 * testTick)

	for _, task := range storage.tasksDoc(t) {
		if task.ID == created.ID {
			t.Fatal("a timer tick wrote the deleted task back to storage")
		}
	}
	if len(s.ActiveTimerIDs()) != 0 {
		t.Error("expected no running timers after delete")
	}
}

func TestTimersResumeAfterReload(t *testing.T) {
	storage := newMemStorage()
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, storage, clock)

	created := s.AddTask(model.Task{Title: "tracked"})
	s.StartTimer(created.ID)
	clock.Advance(2 * time.Second)

	// Shutdown credits the elapsed time but leaves timerActive true.
	s.Close()
	for _, task := range storage.tasksDoc(t) {
		if task.ID == created.ID {
			if !task.TimerActive {
				t.Fatal("expected timerActive persisted true across shutdown")
			}
			if task.TimeSpent != 2 {
				t.Fatalf("expected 2 seconds persisted at shutdown, got %d", task.TimeSpent)
			}
		}
	}

	// Downtime while the process was gone is not credited.
	clock.Advance(time.Hour)

	reloaded := NewTaskStore(storage, Options{
		Clock:      clock.Now,
		TickPeriod: testTick,
	})
	defer reloaded.Close()

	ids := reloaded.ActiveTimerIDs()
	if len(ids) != 1 || ids[0] != created.ID {
		t.Fatalf("expected resumed timer for %s, got %v", created.ID, ids)
	}

	clock.Advance(3 * time.Second)
	waitForTimeSpent(t, reloaded, created.ID, 5)

	reloaded.StopTimer(created.ID)
	task, _ := reloaded.GetByID(created.ID)
	if task.TimeSpent != 5 {
		t.Errorf("expected 2s before restart + 3s after, got %d", task.TimeSpent)
	}
	if task.TimerActive {
		t.Error("expected timerActive false after stop")
	}
}

func TestConcurrentMutationsWhileTimerRuns(t *testing.T) {
	storage := newMemStorage()
	clock := newFakeClock(testEpoch)
	s := newTimerTestStore(t, storage, clock)

	created := s.AddTask(model.Task{Title: "busy"})
	s.StartTimer(created.ID)

	// Repository writes interleave with accrual ticks; neither update may
	// be lost.
	for i := 0; i < 20; i++ {
		clock.Advance(time.Second)
		title := "busy"
		s.UpdateTask(created.ID, TaskUpdate{Title: &title})
		time.Sleep(2 * testTick)
	}

	clock.Advance(time.Second)
	s.StopTimer(created.ID)

	task, _ := s.GetByID(created.ID)
	if task.TimeSpent != 21 {
		t.Errorf("expected every elapsed second accrued exactly once, got %d", task.TimeSpent)
	}
	if task.Title != "busy" {
		t.Errorf("expected repository write preserved, got %q", task.Title)
	}
}
