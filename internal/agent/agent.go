package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/schedbot/schedbot/internal/logging"
	"github.com/schedbot/schedbot/internal/toolset"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to run one registered tool. Arguments is the
// raw JSON object produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry in a conversation transcript. ToolCalls is set on
// assistant messages that request tool runs; ToolCallID links a tool message
// back to the call it answers.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Completer produces the next assistant turn for a transcript. It returns
// the assistant's text, any tool calls it wants executed, or an error.
type Completer interface {
	Complete(ctx context.Context, messages []Message, tools []toolset.Tool) (string, []ToolCall, error)
}

// maxToolRounds caps how many model/tool round trips a single user turn may
// take before the turn is abandoned.
const maxToolRounds = 5

const systemPromptFormat = "You are a professional Customer Service Representative for a Meeting Scheduling Service. " +
	"Your goal is to assist customers in finding 'approved dates' (which means available free slots) and managing their 'scheduled dates' (confirmed meetings). " +
	"Always be polite, professional, and helpful. " +
	"When a user asks for 'approved dates', use the `find_free_time` tool to check for free slots. " +
	"When a user asks for 'scheduled dates', use the `check_calendar` tool to list upcoming events. " +
	"Always check for availability before scheduling if the user asks for a specific time but hasn't confirmed it's free. " +
	"When scheduling, ask for confirmation if details are ambiguous. " +
	"Today's date is %s. "

// Dispatcher runs one conversational turn at a time: it sends the transcript
// to the model, executes any tool calls the model requests, and loops until
// the model produces a plain text reply.
type Dispatcher struct {
	completer Completer
	registry  *toolset.Registry
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher builds a dispatcher over the given model and tool registry.
func NewDispatcher(completer Completer, registry *toolset.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		completer: completer,
		registry:  registry,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one user turn against the transcript and returns the
// assistant's reply plus the updated transcript. A turn never fails: any
// error inside it becomes a reply of the form "Error running agent: <msg>",
// and the caller can keep the session going.
//
// Tool calls that already executed before a failure stay in the returned
// transcript, so side effects such as a created calendar event remain
// visible to the model on the next turn.
func (d *Dispatcher) Run(ctx context.Context, transcript []Message, input string) (string, []Message) {
	transcript = append(transcript, Message{Role: RoleUser, Content: input})

	reply, turns, err := d.runTurn(ctx, transcript)
	if err != nil {
		reply = fmt.Sprintf("Error running agent: %s", err)
		d.logger.Error("agent turn failed",
			logging.Operation("agent_run"),
			logging.Err(err),
		)
	}

	return reply, append(turns, Message{Role: RoleAssistant, Content: reply})
}

func (d *Dispatcher) runTurn(ctx context.Context, transcript []Message) (string, []Message, error) {
	today := d.now().Format("2006-01-02")
	messages := make([]Message, 0, len(transcript)+1)
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, today),
	})
	messages = append(messages, transcript...)

	tools := d.registry.List()

	for round := 0; round < maxToolRounds; round++ {
		content, calls, err := d.completer.Complete(ctx, messages, tools)
		if err != nil {
			return "", transcript, err
		}

		if len(calls) == 0 {
			return content, transcript, nil
		}

		assistantTurn := Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
		messages = append(messages, assistantTurn)
		transcript = append(transcript, assistantTurn)

		for _, call := range calls {
			result, err := d.executeCall(ctx, call)
			if err != nil {
				return "", transcript, err
			}
			toolTurn := Message{Role: RoleTool, Content: result, ToolCallID: call.ID}
			messages = append(messages, toolTurn)
			transcript = append(transcript, toolTurn)
		}
	}

	return "", transcript, fmt.Errorf("no final reply after %d tool rounds", maxToolRounds)
}

func (d *Dispatcher) executeCall(ctx context.Context, call ToolCall) (string, error) {
	tool, ok := d.registry.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("model requested unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("decoding arguments for tool %q: %w", call.Name, err)
		}
	}

	start := d.now()
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", call.Name, err)
	}

	d.logger.Debug("tool call completed",
		logging.Tool(call.Name),
		logging.Duration(d.now().Sub(start)),
	)
	return result, nil
}
