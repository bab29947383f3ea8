// Package icron inspects cron schedules: given an expression and a reference
// time it reports the surrounding trigger times. Expressions use the
// seconds-resolution format (six fields or a @descriptor).
package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerInfo describes where a reference time sits between two firings of a
// cron expression. Last is zero when no firing precedes the reference time
// within the backward search window.
type TriggerInfo struct {
	Next       time.Time
	Last       time.Time
	Expression string

	TimeSinceLast time.Duration
	TimeUntilNext time.Duration
}

// GetTriggerInfo parses cronExpr and computes the previous and next trigger
// times around refTime. The previous trigger is found by stepping backwards
// hour by hour, up to a year, and asking the schedule for its next firing
// from there.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour |
		cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	next := schedule.Next(refTime)

	var last time.Time
	searchStart := refTime.Add(-time.Minute)
	for i := 0; i < 366*24; i++ {
		candidate := schedule.Next(searchStart.Add(-time.Duration(i) * time.Hour))
		if !candidate.After(refTime) {
			last = candidate
			break
		}
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       next,
		Last:       last,
	}
	if !last.IsZero() {
		info.TimeSinceLast = refTime.Sub(last)
	}
	info.TimeUntilNext = next.Sub(refTime)
	return info, nil
}
