package agent

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedbot/schedbot/internal/calendar"
	"github.com/schedbot/schedbot/internal/meetinglog"
	"github.com/schedbot/schedbot/internal/tools/schedule_tools"
	"github.com/schedbot/schedbot/internal/toolset"
)

// scriptedCompleter replays a fixed sequence of model turns and records the
// messages it was given on each call.
type scriptedCompleter struct {
	turns []scriptedTurn
	seen  [][]Message
}

type scriptedTurn struct {
	content string
	calls   []ToolCall
	err     error
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []Message, _ []toolset.Tool) (string, []ToolCall, error) {
	c.seen = append(c.seen, append([]Message(nil), messages...))
	if len(c.turns) == 0 {
		return "", nil, fmt.Errorf("scripted completer exhausted")
	}
	turn := c.turns[0]
	c.turns = c.turns[1:]
	return turn.content, turn.calls, turn.err
}

type fakeGateway struct {
	createInputs []calendar.EventInput
	busyDays     []time.Time
	listCalls    int
}

func (g *fakeGateway) ListUpcomingEvents(_ context.Context, _ int64) ([]calendar.EventSummary, error) {
	g.listCalls++
	return []calendar.EventSummary{
		{Summary: "Standup", Start: time.Date(2025, 10, 27, 9, 0, 0, 0, time.UTC)},
	}, nil
}

func (g *fakeGateway) CreateEvent(_ context.Context, input calendar.EventInput) (*calendar.EventSummary, error) {
	g.createInputs = append(g.createInputs, input)
	return &calendar.EventSummary{
		ID:       "evt-1",
		Summary:  input.Summary,
		Start:    input.Start,
		End:      input.End,
		HTMLLink: "https://calendar.example/evt-1",
	}, nil
}

func (g *fakeGateway) QueryDayBusy(_ context.Context, day time.Time) ([]calendar.TimeRange, error) {
	g.busyDays = append(g.busyDays, day)
	return nil, nil
}

func newTestDispatcher(t *testing.T, completer Completer, gw *fakeGateway) (*Dispatcher, *meetinglog.Store) {
	t.Helper()

	store := meetinglog.NewStore(filepath.Join(t.TempDir(), "meetings.db"))
	registry, err := schedule_tools.NewToolset(gw, store, nil, nil)
	require.NoError(t, err)

	d := NewDispatcher(completer, registry, nil)
	d.now = func() time.Time {
		return time.Date(2025, 10, 26, 15, 0, 0, 0, time.UTC)
	}
	return d, store
}

func TestRunPlainReply(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{content: "Hello! How can I help you with your calendar?"},
		},
	}
	d, _ := newTestDispatcher(t, completer, &fakeGateway{})

	reply, transcript := d.Run(context.Background(), nil, "hi there")

	assert.Equal(t, "Hello! How can I help you with your calendar?", reply)
	require.Len(t, transcript, 2)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, "hi there", transcript[0].Content)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
	assert.Equal(t, reply, transcript[1].Content)
}

func TestRunSystemPromptCarriesDate(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{{content: "ok"}},
	}
	d, _ := newTestDispatcher(t, completer, &fakeGateway{})

	d.Run(context.Background(), nil, "hi")

	require.Len(t, completer.seen, 1)
	messages := completer.seen[0]
	require.NotEmpty(t, messages)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Today's date is 2025-10-26")
	assert.Contains(t, messages[0].Content, "Customer Service Representative")
	assert.Contains(t, messages[0].Content, "find_free_time")
	assert.Contains(t, messages[0].Content, "check_calendar")
}

func TestRunSchedulesMeetingAndLogs(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{
				calls: []ToolCall{{
					ID:        "call-1",
					Name:      schedule_tools.ScheduleMeetingToolName,
					Arguments: `{"summary":"Standup","startTime":"2025-10-27 09:00:00","attendees":"a@x.com"}`,
				}},
			},
			{content: "Done! Your meeting is scheduled."},
		},
	}
	gw := &fakeGateway{}
	d, store := newTestDispatcher(t, completer, gw)

	reply, transcript := d.Run(context.Background(), nil, "schedule a meeting called Standup tomorrow at 9am with a@x.com")

	assert.Equal(t, "Done! Your meeting is scheduled.", reply)
	require.Len(t, gw.createInputs, 1)
	assert.Equal(t, "Standup", gw.createInputs[0].Summary)
	assert.Equal(t, []string{"a@x.com"}, gw.createInputs[0].Attendees)

	// The tool result must be fed back to the model as a tool message linked
	// to the originating call.
	require.Len(t, completer.seen, 2)
	second := completer.seen[1]
	last := second[len(second)-1]
	assert.Equal(t, RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Equal(t, "Event created: https://calendar.example/evt-1", last.Content)

	// One log record is written as a side effect of the calendar write.
	db, err := sql.Open("sqlite", store.Path())
	require.NoError(t, err)
	defer db.Close()

	var count int
	var title, participants string
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meetings`).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRow(`SELECT title, participants FROM meetings`).Scan(&title, &participants))
	assert.Equal(t, "Standup", title)
	assert.Equal(t, "a@x.com", participants)

	// Transcript: user, assistant tool-call turn, tool result, final reply.
	require.Len(t, transcript, 4)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
	require.Len(t, transcript[1].ToolCalls, 1)
	assert.Equal(t, RoleTool, transcript[2].Role)
	assert.Equal(t, RoleAssistant, transcript[3].Role)
}

func TestRunCompleterErrorBecomesReply(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{err: fmt.Errorf("model unavailable")},
		},
	}
	d, _ := newTestDispatcher(t, completer, &fakeGateway{})

	reply, transcript := d.Run(context.Background(), nil, "hi")

	assert.Equal(t, "Error running agent: model unavailable", reply)
	require.NotEmpty(t, transcript)
	assert.Equal(t, reply, transcript[len(transcript)-1].Content)
}

func TestRunKeepsExecutedToolTurnsOnError(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{
				calls: []ToolCall{{
					ID:        "call-1",
					Name:      schedule_tools.ScheduleMeetingToolName,
					Arguments: `{"summary":"Standup","startTime":"2025-10-27 09:00:00","attendees":"a@x.com"}`,
				}},
			},
			{err: fmt.Errorf("model unavailable")},
		},
	}
	gw := &fakeGateway{}
	d, store := newTestDispatcher(t, completer, gw)

	reply, transcript := d.Run(context.Background(), nil, "schedule a meeting called Standup tomorrow at 9am with a@x.com")

	assert.Equal(t, "Error running agent: model unavailable", reply)

	// The event was created before the model failed. The tool turns must stay
	// in the transcript so a retry sees the meeting already exists instead of
	// scheduling it again.
	require.Len(t, gw.createInputs, 1)
	require.Len(t, transcript, 4)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
	require.Len(t, transcript[1].ToolCalls, 1)
	assert.Equal(t, schedule_tools.ScheduleMeetingToolName, transcript[1].ToolCalls[0].Name)
	assert.Equal(t, RoleTool, transcript[2].Role)
	assert.Equal(t, "call-1", transcript[2].ToolCallID)
	assert.Equal(t, "Event created: https://calendar.example/evt-1", transcript[2].Content)
	assert.Equal(t, RoleAssistant, transcript[3].Role)
	assert.Equal(t, reply, transcript[3].Content)

	// The meeting log also records the write exactly once.
	db, err := sql.Open("sqlite", store.Path())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meetings`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunUnknownToolBecomesReply(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{calls: []ToolCall{{ID: "call-1", Name: "send_email", Arguments: `{}`}}},
		},
	}
	d, _ := newTestDispatcher(t, completer, &fakeGateway{})

	reply, _ := d.Run(context.Background(), nil, "email bob")

	assert.Contains(t, reply, "Error running agent:")
	assert.Contains(t, reply, "send_email")
}

func TestRunToolErrorBecomesReply(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{calls: []ToolCall{{
				ID:        "call-1",
				Name:      schedule_tools.ScheduleMeetingToolName,
				Arguments: `{"summary":"Standup","startTime":"2025-10-27 09:00","durationMinutes":-30}`,
			}}},
		},
	}
	gw := &fakeGateway{}
	d, _ := newTestDispatcher(t, completer, gw)

	reply, _ := d.Run(context.Background(), nil, "schedule it")

	assert.Contains(t, reply, "Error running agent:")
	assert.Empty(t, gw.createInputs)
}

func TestRunMalformedArgumentsBecomeReply(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{
			{calls: []ToolCall{{
				ID:        "call-1",
				Name:      schedule_tools.CheckCalendarToolName,
				Arguments: `{not json`,
			}}},
		},
	}
	gw := &fakeGateway{}
	d, _ := newTestDispatcher(t, completer, gw)

	reply, _ := d.Run(context.Background(), nil, "check my calendar")

	assert.Contains(t, reply, "Error running agent:")
	assert.Zero(t, gw.listCalls)
}

func TestRunToolRoundCap(t *testing.T) {
	call := ToolCall{
		ID:        "call-loop",
		Name:      schedule_tools.FindFreeTimeToolName,
		Arguments: `{"date":"2025-10-27"}`,
	}
	turns := make([]scriptedTurn, 0, maxToolRounds+1)
	for i := 0; i <= maxToolRounds; i++ {
		turns = append(turns, scriptedTurn{calls: []ToolCall{call}})
	}
	completer := &scriptedCompleter{turns: turns}
	gw := &fakeGateway{}
	d, _ := newTestDispatcher(t, completer, gw)

	reply, _ := d.Run(context.Background(), nil, "keep checking")

	assert.Contains(t, reply, "Error running agent:")
	assert.Len(t, gw.busyDays, maxToolRounds)
}

func TestRunKeepsEarlierTranscript(t *testing.T) {
	completer := &scriptedCompleter{
		turns: []scriptedTurn{{content: "You have 1 upcoming event."}},
	}
	d, _ := newTestDispatcher(t, completer, &fakeGateway{})

	prior := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "Hello!"},
	}
	_, transcript := d.Run(context.Background(), prior, "what do I have coming up?")

	require.Len(t, transcript, 4)
	assert.Equal(t, "hi", transcript[0].Content)
	assert.Equal(t, "Hello!", transcript[1].Content)

	// The prior turns must also have been offered to the model, after the
	// system prompt.
	require.Len(t, completer.seen, 1)
	messages := completer.seen[0]
	require.Len(t, messages, 4)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, "hi", messages[1].Content)
}
