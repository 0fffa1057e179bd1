// Package schedule_tools implements the three scheduling actions exposed to
// the conversational dispatcher and the MCP server: checking the calendar,
// scheduling a meeting, and finding free time on a day.
//
// The schedule_meeting action also appends a record to the meeting log as a
// fixed side effect of a successful calendar write.
package schedule_tools
