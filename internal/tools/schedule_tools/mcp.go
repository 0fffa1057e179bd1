package schedule_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedbot/schedbot/internal/toolset"
)

// RegisterScheduleTools registers the scheduling actions with the MCP server.
// The MCP descriptors mirror the toolset parameter schemas so both surfaces
// stay in sync.
func RegisterScheduleTools(s *mcpserver.MCPServer, reg *toolset.Registry) error {
	checkCalendarTool := mcp.NewTool(CheckCalendarToolName,
		mcp.WithDescription("Checks the user's calendar for upcoming events. Returns a list of events."),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default 10)."),
		),
	)
	s.AddTool(checkCalendarTool, handlerFor(reg, CheckCalendarToolName))

	scheduleMeetingTool := mcp.NewTool(ScheduleMeetingToolName,
		mcp.WithDescription("Schedules a meeting on the user's calendar and records it in the meeting log."),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Title of the meeting."),
		),
		mcp.WithString("startTime",
			mcp.Required(),
			mcp.Description("Start time, ISO format or a clear date string like '2025-10-27 10:00:00'."),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Description("Meeting duration in minutes (default 60)."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated attendee email addresses."),
		),
	)
	s.AddTool(scheduleMeetingTool, handlerFor(reg, ScheduleMeetingToolName))

	findFreeTimeTool := mcp.NewTool(FindFreeTimeToolName,
		mcp.WithDescription("Finds free slots or busy times for a given date to help with scheduling."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The date to check, e.g. '2025-10-27' or 'next Friday'."),
		),
	)
	s.AddTool(findFreeTimeTool, handlerFor(reg, FindFreeTimeToolName))

	return nil
}

// handlerFor adapts a registered toolset action to an MCP tool handler.
// Execution errors become tool-result errors rather than protocol errors.
func handlerFor(reg *toolset.Registry, name string) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool, ok := reg.Get(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("tool %q is not available", name)), nil
		}

		result, err := tool.Execute(ctx, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
