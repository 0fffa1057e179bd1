package schedule_tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schedbot/schedbot/internal/calendar"
	"github.com/schedbot/schedbot/internal/instrumentation"
	"github.com/schedbot/schedbot/internal/logging"
	"github.com/schedbot/schedbot/internal/meetinglog"
	"github.com/schedbot/schedbot/internal/toolset"
)

// Tool names are part of the dispatcher contract and must stay stable.
const (
	CheckCalendarToolName   = "check_calendar"
	ScheduleMeetingToolName = "schedule_meeting"
	FindFreeTimeToolName    = "find_free_time"
)

// Defaults declared in the tool parameter schemas.
const (
	DefaultMaxResults      = 10
	DefaultDurationMinutes = 60
)

// Calendar operation names used as metric labels.
const (
	opListEvents    = "list_events"
	opInsertEvent   = "insert_event"
	opFreebusyQuery = "freebusy_query"
)

// Gateway is the narrow calendar interface the tools depend on.
type Gateway interface {
	ListUpcomingEvents(ctx context.Context, maxCount int64) ([]calendar.EventSummary, error)
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventSummary, error)
	QueryDayBusy(ctx context.Context, day time.Time) ([]calendar.TimeRange, error)
}

// NewToolset builds the registry of the three scheduling actions. The
// metrics recorder may be nil; recording then degrades to a no-op.
func NewToolset(gw Gateway, store *meetinglog.Store, logger *slog.Logger, metrics *instrumentation.Metrics) (*toolset.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return toolset.NewRegistry(
		&checkCalendarTool{gw: gw, metrics: metrics},
		&scheduleMeetingTool{gw: gw, store: store, logger: logger, metrics: metrics},
		&findFreeTimeTool{gw: gw, metrics: metrics},
	)
}

func opStatus(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// checkCalendarTool wraps the list-upcoming-events gateway operation.
type checkCalendarTool struct {
	gw      Gateway
	metrics *instrumentation.Metrics
}

func (t *checkCalendarTool) Name() string { return CheckCalendarToolName }

func (t *checkCalendarTool) Description() string {
	return "Checks the user's calendar for upcoming events. Returns a list of events."
}

func (t *checkCalendarTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"maxResults": map[string]any{
				"type":        "integer",
				"description": "Maximum number of events to return (default 10).",
			},
		},
	}
}

func (t *checkCalendarTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	maxResults := int64(DefaultMaxResults)
	if v, ok := toolset.NumberArg(args, "maxResults"); ok {
		maxResults = int64(v)
	}

	// Nothing requested means nothing to list; skip the network round trip.
	if maxResults <= 0 {
		return calendar.NoUpcomingEvents, nil
	}

	start := time.Now()
	events, err := t.gw.ListUpcomingEvents(ctx, maxResults)
	t.metrics.RecordCalendarOperation(ctx, opListEvents, opStatus(err), time.Since(start))
	if err != nil {
		return "", err
	}

	return calendar.FormatUpcomingEvents(events), nil
}

// scheduleMeetingTool wraps the create-event gateway operation and appends a
// meeting log record on success.
type scheduleMeetingTool struct {
	gw      Gateway
	store   *meetinglog.Store
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

func (t *scheduleMeetingTool) Name() string { return ScheduleMeetingToolName }

func (t *scheduleMeetingTool) Description() string {
	return "Schedules a meeting on the user's calendar. " +
		"startTime should be in ISO format or a clear string like '2025-10-27 10:00:00'. " +
		"attendees is a comma-separated string of emails."
}

func (t *scheduleMeetingTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Title of the meeting.",
			},
			"startTime": map[string]any{
				"type":        "string",
				"description": "Start time, ISO format or a clear date string.",
			},
			"durationMinutes": map[string]any{
				"type":        "integer",
				"description": "Meeting duration in minutes (default 60).",
			},
			"attendees": map[string]any{
				"type":        "string",
				"description": "Comma-separated attendee email addresses.",
			},
		},
		"required": []string{"summary", "startTime"},
	}
}

func (t *scheduleMeetingTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	summary, ok := toolset.StringArg(args, "summary")
	if !ok || summary == "" {
		return "", fmt.Errorf("summary is required")
	}

	startText, ok := toolset.StringArg(args, "startTime")
	if !ok || startText == "" {
		return "", fmt.Errorf("startTime is required")
	}

	durationMinutes := float64(DefaultDurationMinutes)
	if v, ok := toolset.NumberArg(args, "durationMinutes"); ok {
		durationMinutes = v
	}
	if durationMinutes <= 0 {
		return "", fmt.Errorf("durationMinutes must be positive, got %v", durationMinutes)
	}

	start, err := calendar.ParseWhen(startText)
	if err != nil {
		return "", err
	}
	end := start.Add(time.Duration(durationMinutes * float64(time.Minute)))

	attendeesText, _ := toolset.StringArg(args, "attendees")
	attendees := calendar.SplitAttendees(attendeesText)

	createStart := time.Now()
	created, err := t.gw.CreateEvent(ctx, calendar.EventInput{
		Summary:   summary,
		Start:     start,
		End:       end,
		Attendees: attendees,
	})
	t.metrics.RecordCalendarOperation(ctx, opInsertEvent, opStatus(err), time.Since(createStart))
	if err != nil {
		return "", err
	}

	// The log append is a fixed side effect of a successful calendar write.
	// A log failure must not undo or mask the write the user asked for, so
	// it is reported but does not fail the action.
	_, appendErr := t.store.Append(ctx, meetinglog.Record{
		Title:        summary,
		Participants: strings.Join(attendees, ","),
		StartTime:    startText,
	})
	t.metrics.RecordLogAppend(ctx, opStatus(appendErr))
	if appendErr != nil {
		t.logger.Warn("meeting log append failed after calendar write",
			logging.Tool(ScheduleMeetingToolName),
			logging.Err(appendErr),
		)
	}

	return fmt.Sprintf("Event created: %s", created.HTMLLink), nil
}

// findFreeTimeTool wraps the free/busy gateway operation.
type findFreeTimeTool struct {
	gw      Gateway
	metrics *instrumentation.Metrics
}

func (t *findFreeTimeTool) Name() string { return FindFreeTimeToolName }

func (t *findFreeTimeTool) Description() string {
	return "Finds free slots or busy times for a given date to help with scheduling."
}

func (t *findFreeTimeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{
				"type":        "string",
				"description": "The date to check, e.g. '2025-10-27' or 'next Friday'.",
			},
		},
		"required": []string{"date"},
	}
}

func (t *findFreeTimeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	dateText, ok := toolset.StringArg(args, "date")
	if !ok || dateText == "" {
		return "", fmt.Errorf("date is required")
	}

	// An unparseable date is relayed to the user as a sentence rather than
	// surfaced as a failure; no network call is made in that case.
	day, err := calendar.ParseWhen(dateText)
	if err != nil {
		return calendar.InvalidDateFormat, nil
	}

	queryStart := time.Now()
	busy, err := t.gw.QueryDayBusy(ctx, day)
	t.metrics.RecordCalendarOperation(ctx, opFreebusyQuery, opStatus(err), time.Since(queryStart))
	if err != nil {
		return "", err
	}

	return calendar.FormatBusySlots(dateText, busy), nil
}
