package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/soochol/taskd/internal/taskd"
)

func TestNextRun_OnceIsStartDateVerbatim(t *testing.T) {
	start := time.Now().Add(time.Hour).Truncate(time.Second)
	sched := taskd.TaskSchedule{Type: taskd.ScheduleOnce, StartDate: &start}

	next, err := NextRun(sched, time.Now())
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	if next == nil || !next.Equal(start) {
		t.Errorf("next = %v, want %v", next, start)
	}
}

func TestNextRun_OnceWithoutStartDate(t *testing.T) {
	_, err := NextRun(taskd.TaskSchedule{Type: taskd.ScheduleOnce}, time.Now())
	if !errors.Is(err, taskd.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestNextRun_IntervalArithmetic(t *testing.T) {
	sched := taskd.TaskSchedule{Type: taskd.ScheduleInterval, Expression: "2500"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Consecutive computed next-run times differ by exactly the
	// expression's millisecond count.
	first, err := NextRun(sched, now)
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	second, err := NextRun(sched, *first)
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}

	if got := first.Sub(now); got != 2500*time.Millisecond {
		t.Errorf("first gap = %v, want 2.5s", got)
	}
	if got := second.Sub(*first); got != 2500*time.Millisecond {
		t.Errorf("second gap = %v, want 2.5s", got)
	}
}

func TestNextRun_IntervalClampedToEndDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Second)
	sched := taskd.TaskSchedule{Type: taskd.ScheduleInterval, Expression: "5000", EndDate: &end}

	next, err := NextRun(sched, now)
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	if next != nil {
		t.Errorf("next = %v, want nil (beyond end date)", next)
	}
}

func TestNextRun_IntervalMalformedExpression(t *testing.T) {
	for _, expr := range []string{"", "abc", "-100", "0"} {
		_, err := NextRun(taskd.TaskSchedule{Type: taskd.ScheduleInterval, Expression: expr}, time.Now())
		if !errors.Is(err, taskd.ErrInvalidSchedule) {
			t.Errorf("expression %q: expected ErrInvalidSchedule, got %v", expr, err)
		}
	}
}

func TestNextRun_Cron5Field(t *testing.T) {
	sched := taskd.TaskSchedule{Type: taskd.ScheduleCron, Expression: "*/5 * * * *"}
	next, err := NextRun(sched, time.Now())
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	if next == nil || !next.After(time.Now().Add(-time.Second)) {
		t.Errorf("next = %v, want a future time", next)
	}
}

func TestNextRun_Cron6Field(t *testing.T) {
	sched := taskd.TaskSchedule{Type: taskd.ScheduleCron, Expression: "0 */5 * * * *"}
	if _, err := NextRun(sched, time.Now()); err != nil {
		t.Fatalf("6-field expression should parse: %v", err)
	}
}

func TestNextRun_CronWithTimezone(t *testing.T) {
	sched := taskd.TaskSchedule{
		Type:       taskd.ScheduleCron,
		Expression: "0 9 * * *",
		Timezone:   "Asia/Seoul",
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := NextRun(sched, now)
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	seoul, _ := time.LoadLocation("Asia/Seoul")
	if got := next.In(seoul).Hour(); got != 9 {
		t.Errorf("next fires at %d:00 Seoul time, want 9:00", got)
	}
}

func TestNextRun_CronInvalid(t *testing.T) {
	sched := taskd.TaskSchedule{Type: taskd.ScheduleCron, Expression: "not a cron"}
	_, err := NextRun(sched, time.Now())
	if !errors.Is(err, taskd.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestNextRun_CronClampedToEndDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	end := now.Add(time.Second)
	sched := taskd.TaskSchedule{Type: taskd.ScheduleCron, Expression: "0 0 * * *", EndDate: &end}

	next, err := NextRun(sched, now)
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	if next != nil {
		t.Errorf("next = %v, want nil (beyond end date)", next)
	}
}

func TestNextRun_UnknownType(t *testing.T) {
	_, err := NextRun(taskd.TaskSchedule{Type: "hourly"}, time.Now())
	if !errors.Is(err, taskd.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}
