// services/scheduler.go
package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartDailyScheduler wires the two daily triggers: the morning reminder and
// the night enforcement sweep. Both are calendar-day-aligned in loc, so they
// fire at the configured wall-clock times regardless of DST shifts. The
// returned scheduler should be shut down on process exit.
func (s *EnforcementService) StartDailyScheduler(loc *time.Location, reminderAt, enforceAt string) (gocron.Scheduler, error) {
	remHour, remMin, err := parseClock(reminderAt)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder time %q: %w", reminderAt, err)
	}
	enfHour, enfMin, err := parseClock(enforceAt)
	if err != nil {
		return nil, fmt.Errorf("invalid enforcement time %q: %w", enforceAt, err)
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(remHour, remMin, 0))),
		gocron.NewTask(func() {
			log.Println("🔔 [SCHEDULER] reminder trigger fired")
			s.SendReminders(time.Now().In(loc))
		}),
		gocron.WithName("daily-reminder"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(enfHour, enfMin, 0))),
		gocron.NewTask(func() {
			log.Println("🌙 [SCHEDULER] enforcement trigger fired")
			s.RunNightlySweep(time.Now().In(loc))
		}),
		gocron.WithName("nightly-enforcement"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule enforcement job: %w", err)
	}

	sched.Start()
	log.Printf("⏰ [SCHEDULER] reminders at %s, enforcement at %s (%s)", reminderAt, enforceAt, loc)
	return sched, nil
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(v string) (hour, minute uint, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", parts[1])
	}
	return uint(h), uint(m), nil
}
