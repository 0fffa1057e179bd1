// Package meetinglog provides the append-only audit log of scheduled meetings.
//
// Every successful scheduling action is recorded in a local SQLite database,
// independent of the calendar service's own data. Records are immutable: the
// store exposes no update, delete or read operation to the rest of the
// system. The database is opened and closed per write, so the single file on
// disk is the only long-lived state.
package meetinglog
