// File: internal/services/planner/calendar.go
package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
)

// CalendarView is one month of a plan laid out as Monday-first weeks.
// Days outside the month are 0.
type CalendarView struct {
	Plan        *domain.Plan
	Year        int
	Month       int
	MonthName   string
	Weeks       [][7]int
	TasksByDate map[string][]domain.Task
	Today       time.Time

	PrevYear, PrevMonth int
	NextYear, NextMonth int
}

// DateKey returns the TasksByDate key for a day of the shown month.
func (v *CalendarView) DateKey(day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, day)
}

// TasksOn returns the tasks for a day of the shown month.
func (v *CalendarView) TasksOn(day int) []domain.Task {
	if day == 0 {
		return nil
	}
	return v.TasksByDate[v.DateKey(day)]
}

// IsToday reports whether day of the shown month is today.
func (v *CalendarView) IsToday(day int) bool {
	return day != 0 && v.Today.Year() == v.Year && int(v.Today.Month()) == v.Month && v.Today.Day() == day
}

// MonthParams are the parsed year/month query values; zero means absent.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams validates the raw query values. Empty values are allowed
// and left for BuildCalendar to default.
func ParseMonthParams(yearParam, monthParam string) (MonthParams, error) {
	var p MonthParams
	if raw := strings.TrimSpace(yearParam); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 || year > 9999 {
			return MonthParams{}, NewInvalidParameterError("calendar", fmt.Sprintf("invalid year %q", yearParam))
		}
		p.Year = year
	}
	if raw := strings.TrimSpace(monthParam); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return MonthParams{}, NewInvalidParameterError("calendar", fmt.Sprintf("invalid month %q", monthParam))
		}
		p.Month = month
	}
	return p, nil
}

// BuildCalendar lays out the plan's tasks for one month. Missing year or month
// fall back to the month of the earliest task, then to now.
func BuildCalendar(plan *domain.Plan, tasks []domain.Task, yearParam, monthParam string, now time.Time) (*CalendarView, error) {
	params, err := ParseMonthParams(yearParam, monthParam)
	if err != nil {
		return nil, err
	}
	return buildCalendar(plan, tasks, params, now), nil
}

func buildCalendar(plan *domain.Plan, tasks []domain.Task, params MonthParams, now time.Time) *CalendarView {
	fallback := now
	if first, ok := earliestTaskDate(tasks); ok {
		fallback = first
	}
	year, month := params.Year, params.Month
	if year == 0 {
		year = fallback.Year()
	}
	if month == 0 {
		month = int(fallback.Month())
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	view := &CalendarView{
		Plan:        plan,
		Year:        year,
		Month:       month,
		MonthName:   first.Month().String(),
		Weeks:       monthWeeks(first),
		TasksByDate: make(map[string][]domain.Task),
		Today:       domain.NormalizeDate(now),
		PrevYear:    prev.Year(),
		PrevMonth:   int(prev.Month()),
		NextYear:    next.Year(),
		NextMonth:   int(next.Month()),
	}

	for _, t := range tasks {
		d := t.TaskDate
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		key := t.DateKey()
		view.TasksByDate[key] = append(view.TasksByDate[key], t)
	}
	return view
}

// monthWeeks returns full Monday-first weeks covering the month of first.
func monthWeeks(first time.Time) [][7]int {
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var weeks [][7]int
	var week [7]int
	col := offset
	for day := 1; day <= daysInMonth; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

func earliestTaskDate(tasks []domain.Task) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, t := range tasks {
		if !found || t.TaskDate.Before(earliest) {
			earliest = t.TaskDate
			found = true
		}
	}
	return earliest, found
}
