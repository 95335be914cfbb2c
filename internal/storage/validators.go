// Package storage provides validation functions for database entities.
package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MatterQueryFields lists the matter columns that may be used in a field query.
var MatterQueryFields = []string{
	"id",
	"title",
	"description",
	"tags",
	"priority",
	"type",
	"reserved_1",
	"reserved_2",
	"reserved_3",
	"reserved_4",
	"reserved_5",
}

// IsMatterQueryField reports whether field is an allowed matter query column.
func IsMatterQueryField(field string) bool {
	for _, allowed := range MatterQueryFields {
		if field == allowed {
			return true
		}
	}
	return false
}

// IsValidPriority checks if a priority value is supported.
func IsValidPriority(priority int) bool {
	return priority >= PriorityLow && priority <= PriorityHigh
}

// ValidateMatter validates a complete Matter entity before database operations.
func ValidateMatter(matter *Matter) error {
	if strings.TrimSpace(matter.Title) == "" {
		return fmt.Errorf("matter title cannot be empty")
	}

	if len(matter.Title) > 200 {
		return fmt.Errorf("matter title too long (max 200 chars)")
	}

	if !IsValidPriority(matter.Priority) {
		return fmt.Errorf("invalid priority: %d", matter.Priority)
	}

	if matter.Type < MatterTypeNormal || matter.Type > MatterTypeCalendar {
		return fmt.Errorf("unsupported matter type: %d", matter.Type)
	}

	if !matter.StartTime.IsZero() && !matter.EndTime.IsZero() && matter.EndTime.Before(matter.StartTime) {
		return fmt.Errorf("matter end time must not be before start time")
	}

	matter.StartTime = matter.StartTime.UTC()
	matter.EndTime = matter.EndTime.UTC()

	return nil
}

// ValidateTodo validates a complete Todo entity before database operations.
func ValidateTodo(todo *Todo) error {
	if strings.TrimSpace(todo.Title) == "" {
		return fmt.Errorf("todo title cannot be empty")
	}

	if len(todo.Title) > 200 {
		return fmt.Errorf("todo title too long (max 200 chars)")
	}

	if todo.Status != TodoStatusOpen && todo.Status != TodoStatusDone {
		return fmt.Errorf("invalid todo status: %d", todo.Status)
	}

	if !IsValidPriority(todo.Priority) {
		return fmt.Errorf("invalid priority: %d", todo.Priority)
	}

	return nil
}

// ValidateRepeatTask validates a complete RepeatTask entity before database operations.
func ValidateRepeatTask(task *RepeatTask) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("repeat task title cannot be empty")
	}

	if len(task.Title) > 200 {
		return fmt.Errorf("repeat task title too long (max 200 chars)")
	}

	if err := ValidateRepeatTaskStatus(task.Status); err != nil {
		return err
	}

	if !IsValidPriority(task.Priority) {
		return fmt.Errorf("invalid priority: %d", task.Priority)
	}

	if _, err := ParseRepeatTime(task.RepeatTime); err != nil {
		return fmt.Errorf("invalid repeat time: %w", err)
	}

	return nil
}

// ValidateRepeatTaskStatus checks if status is a known repeat task status.
func ValidateRepeatTaskStatus(status int) error {
	if status != RepeatTaskStatusInactive && status != RepeatTaskStatusActive {
		return fmt.Errorf("invalid repeat task status: %d", status)
	}
	return nil
}

// ValidateNotification validates a complete NotificationRecord before database operations.
func ValidateNotification(notification *NotificationRecord) error {
	if strings.TrimSpace(notification.Title) == "" {
		return fmt.Errorf("notification title cannot be empty")
	}

	if len(notification.Content) > 5000 {
		return fmt.Errorf("notification content too long (max 5000 chars)")
	}

	if notification.Status != NotificationStatusUnread && notification.Status != NotificationStatusRead {
		return fmt.Errorf("invalid notification status: %d", notification.Status)
	}

	return nil
}

// ValidateTagName validates a single tag name.
func ValidateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name cannot be empty")
	}

	if len(name) > 50 {
		return fmt.Errorf("tag name too long (max 50 chars)")
	}

	if strings.ContainsAny(name, ",/") {
		return fmt.Errorf("tag name contains invalid characters: %q", name)
	}

	return nil
}

// RepeatRule is the parsed form of a repeat task's RepeatTime.
type RepeatRule struct {
	// Weekdays on which the task repeats.
	Weekdays map[time.Weekday]bool
	// Start and End are offsets from local midnight.
	Start time.Duration
	End   time.Duration
}

// Matches reports whether the rule fires on the weekday of t.
func (r RepeatRule) Matches(t time.Time) bool {
	return r.Weekdays[t.Weekday()]
}

// Window returns the start and end instants of the rule on the day of t,
// in t's location.
func (r RepeatRule) Window(t time.Time) (time.Time, time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.Add(r.Start), midnight.Add(r.End)
}

// ParseRepeatTime parses "rule|HH:MM|HH:MM".
//
// rule is one of "daily", "weekday", "weekend" or a comma separated list of
// weekday numbers where 0 is Sunday.
func ParseRepeatTime(s string) (RepeatRule, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return RepeatRule{}, fmt.Errorf("expected rule|HH:MM|HH:MM, got %q", s)
	}

	days, err := parseRepeatDays(strings.TrimSpace(parts[0]))
	if err != nil {
		return RepeatRule{}, err
	}

	start, err := parseClock(parts[1])
	if err != nil {
		return RepeatRule{}, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := parseClock(parts[2])
	if err != nil {
		return RepeatRule{}, fmt.Errorf("invalid end time: %w", err)
	}

	if end < start {
		return RepeatRule{}, fmt.Errorf("end time %s is before start time %s", parts[2], parts[1])
	}

	return RepeatRule{Weekdays: days, Start: start, End: end}, nil
}

func parseRepeatDays(rule string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)

	switch strings.ToLower(rule) {
	case "daily":
		for d := time.Sunday; d <= time.Saturday; d++ {
			days[d] = true
		}
	case "weekday":
		for d := time.Monday; d <= time.Friday; d++ {
			days[d] = true
		}
	case "weekend":
		days[time.Saturday] = true
		days[time.Sunday] = true
	default:
		for _, item := range strings.Split(rule, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(item))
			if err != nil || n < 0 || n > 6 {
				return nil, fmt.Errorf("invalid repeat rule %q", rule)
			}
			days[time.Weekday(n)] = true
		}
	}

	return days, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
