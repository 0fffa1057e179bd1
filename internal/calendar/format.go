package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NoUpcomingEvents is the exact sentence returned when a listing yields no events.
const NoUpcomingEvents = "No upcoming events found."

// InvalidDateFormat is the sentence the find-free-time action relays when the
// requested date cannot be parsed.
const InvalidDateFormat = "Invalid date format."

// ParseWhen parses a permissive date/time string ("2025-10-27 10:00:00",
// "Oct 27 2025 10am", RFC3339, ...) into an instant. Values without an
// explicit zone are interpreted as UTC.
func ParseWhen(text string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(text), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", text, err)
	}
	return t, nil
}

// DayBounds returns the [00:00:00, 23:59:59] UTC window of the calendar date
// the given instant falls on.
func DayBounds(day time.Time) (time.Time, time.Time) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
	return start, end
}

// SplitAttendees splits a comma-separated email list, trimming whitespace and
// dropping empty entries. Order is preserved; email syntax is not validated.
func SplitAttendees(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var attendees []string
	for _, part := range strings.Split(s, ",") {
		if email := strings.TrimSpace(part); email != "" {
			attendees = append(attendees, email)
		}
	}
	return attendees
}

// FormatUpcomingEvents renders events as newline-joined "<start>: <summary>"
// lines. Zero events yields the NoUpcomingEvents sentence.
func FormatUpcomingEvents(events []EventSummary) string {
	if len(events) == 0 {
		return NoUpcomingEvents
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("%s: %s", formatStart(event), event.Summary))
	}
	return strings.Join(lines, "\n")
}

// FormatBusySlots renders the busy intervals of a day together with an
// instruction for the downstream consumer. Slot computation is deliberately
// left to the language model reading this text.
func FormatBusySlots(dateText string, busy []TimeRange) string {
	intervals := make([]string, 0, len(busy))
	for _, r := range busy {
		intervals = append(intervals, fmt.Sprintf("%s to %s",
			r.Start.UTC().Format(time.RFC3339),
			r.End.UTC().Format(time.RFC3339)))
	}
	return fmt.Sprintf("Busy slots for %s: [%s]. Please suggest a time outside these slots.",
		dateText, strings.Join(intervals, ", "))
}

func formatStart(event EventSummary) string {
	if event.AllDay {
		return event.Start.Format("2006-01-02")
	}
	return event.Start.Format(time.RFC3339)
}
