package scheduler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soochol/taskd/internal/taskd"
)

// NextRun computes a schedule's next fire time after now. A nil time
// with a nil error means the schedule has lapsed (past its end date or
// a consumed one-shot); the caller leaves the task unscheduled.
func NextRun(sched taskd.TaskSchedule, now time.Time) (*time.Time, error) {
	switch sched.Type {
	case taskd.ScheduleOnce:
		if sched.StartDate == nil {
			return nil, fmt.Errorf("%w: once schedule requires start_date", taskd.ErrInvalidSchedule)
		}
		// Verbatim; a start date in the past lapses at the call site.
		next := *sched.StartDate
		return &next, nil

	case taskd.ScheduleInterval:
		ms, err := strconv.ParseInt(sched.Expression, 10, 64)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("%w: interval expression %q is not a positive millisecond count",
				taskd.ErrInvalidSchedule, sched.Expression)
		}
		next := now.Add(time.Duration(ms) * time.Millisecond)
		if sched.EndDate != nil && next.After(*sched.EndDate) {
			return nil, nil
		}
		return &next, nil

	case taskd.ScheduleCron:
		cronSched, err := parseCronExpr(sched.Expression, sched.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: cron expression %q: %v", taskd.ErrInvalidSchedule, sched.Expression, err)
		}
		from := now
		if sched.StartDate != nil && sched.StartDate.After(now) {
			from = *sched.StartDate
		}
		next := cronSched.Next(from)
		if next.IsZero() {
			return nil, nil
		}
		if sched.EndDate != nil && next.After(*sched.EndDate) {
			return nil, nil
		}
		return &next, nil

	default:
		return nil, fmt.Errorf("%w: unknown schedule type %q", taskd.ErrInvalidSchedule, sched.Type)
	}
}

// parseCronExpr tries 6-field (with seconds) then 5-field (standard)
// parsing. A non-UTC timezone is applied via the CRON_TZ= prefix.
func parseCronExpr(expr string, timezone string) (cron.Schedule, error) {
	if timezone != "" && timezone != "UTC" {
		expr = "CRON_TZ=" + timezone + " " + expr
	}
	parser6 := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser6.Parse(expr)
	if err == nil {
		return sched, nil
	}
	parser5 := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser5.Parse(expr)
}
