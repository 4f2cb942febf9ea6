// Package schedule expands the weekly therapy slots of a certification into
// concrete visits for its month.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"certa/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var weekdayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// Occurrence is one expanded visit.
type Occurrence struct {
	ScheduleID string
	Weekday    time.Weekday
	Start      time.Time
	End        time.Time
}

// Slot renders "Monday 09:00".
func (o Occurrence) Slot() string {
	return fmt.Sprintf("%s %s", o.Start.Weekday(), o.Start.Format(timeLayout))
}

func (o Occurrence) overlaps(other Occurrence) bool {
	return o.Start.Before(other.End) && other.Start.Before(o.End)
}

// DefaultRule is the rule used when a schedule carries none.
func DefaultRule(day time.Weekday) string {
	return "FREQ=WEEKLY;BYDAY=" + weekdayCodes[day%7]
}

// Rule returns the schedule's rule, or the weekly default.
func Rule(s models.TherapySchedule) string {
	r := strings.TrimSpace(s.RRule)
	r = strings.TrimPrefix(r, "RRULE:")
	if r == "" {
		return DefaultRule(s.Weekday)
	}
	return r
}

// ParseClock parses "HH:MM".
func ParseClock(v string) (hour, minute int, err error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(v))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return t.Hour(), t.Minute(), nil
}

// Expand lists the occurrences of s inside year/month, in loc.
func Expand(s models.TherapySchedule, year, month int, loc *time.Location) ([]Occurrence, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	if loc == nil {
		loc = time.Local
	}
	hour, minute, err := ParseClock(s.StartTime)
	if err != nil {
		return nil, err
	}
	if s.DurationMinutes <= 0 {
		return nil, fmt.Errorf("schedule %s: duration must be positive", s.Label())
	}

	rule, err := rrule.StrToRRule(Rule(s))
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", s.Label(), err)
	}
	first := time.Date(year, time.Month(month), 1, hour, minute, 0, 0, loc)
	rule.DTStart(first)

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	duration := time.Duration(s.DurationMinutes) * time.Minute

	var out []Occurrence
	for _, t := range rule.Between(monthStart, monthEnd, true) {
		if !t.Before(monthEnd) {
			continue
		}
		t = t.In(loc)
		out = append(out, Occurrence{
			ScheduleID: s.ID,
			Weekday:    t.Weekday(),
			Start:      t,
			End:        t.Add(duration),
		})
	}
	return out, nil
}

// ExpandAll expands every schedule and sorts the result by start time.
func ExpandAll(schedules []models.TherapySchedule, year, month int, loc *time.Location) ([]Occurrence, error) {
	var all []Occurrence
	for _, s := range schedules {
		occ, err := Expand(s, year, month, loc)
		if err != nil {
			return nil, err
		}
		all = append(all, occ...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	return all, nil
}

// Preview lists the first n occurrence dates for display in the schedule editor.
func Preview(s models.TherapySchedule, year, month, n int, loc *time.Location) ([]string, error) {
	occ, err := Expand(s, year, month, loc)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(occ) > n {
		occ = occ[:n]
	}
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = o.Start.Format("Mon 02 Jan 15:04")
	}
	return out, nil
}
