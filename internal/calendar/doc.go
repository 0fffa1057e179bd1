// Package calendar provides the gateway to the Google Calendar API.
//
// The gateway exposes the three operations the assistant needs: listing
// upcoming events, creating an event, and querying the busy intervals of a
// day. All operations are read/insert only; events are never updated or
// deleted by schedbot.
//
// Authentication uses an injected TokenProvider so the credential lifecycle
// stays explicit and testable.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListUpcomingEvents(ctx, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(calendar.FormatUpcomingEvents(events))
package calendar
