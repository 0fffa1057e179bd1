package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/schedbot/schedbot/internal/google"
)

// DefaultCalendarID is the calendar all gateway operations target.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service
type Client struct {
	svc        *calendar.Service
	account    string
	calendarID string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a stored OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a stored OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2
// authentication for a specific account. The OAuth token is retrieved from
// the provided token provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		account:    account,
		calendarID: DefaultCalendarID,
	}, nil
}

// NewClientForAccount creates a new Calendar client for a specific account
// using the default file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Calendar client for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListUpcomingEvents lists up to maxCount events starting at or after now,
// with recurring events expanded to single instances, ordered by start time.
func (c *Client) ListUpcomingEvents(ctx context.Context, maxCount int64) ([]EventSummary, error) {
	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		MaxResults(maxCount).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// CreateEvent inserts a new event into the calendar and returns the created
// event, including the service-assigned link.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventSummary, error) {
	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}

	event := &calendar.Event{
		Summary: input.Summary,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// QueryDayBusy queries the free/busy endpoint for the primary calendar over
// the [00:00:00, 23:59:59] UTC window of the given calendar date.
func (c *Client) QueryDayBusy(ctx context.Context, day time.Time) ([]TimeRange, error) {
	timeMin, timeMax := DayBounds(day)

	query := &calendar.FreeBusyRequest{
		TimeMin:  timeMin.Format(time.RFC3339),
		TimeMax:  timeMax.Format(time.RFC3339),
		TimeZone: "UTC",
		Items: []*calendar.FreeBusyRequestItem{
			{Id: c.calendarID},
		},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	var busy []TimeRange
	if cal, ok := result.Calendars[c.calendarID]; ok {
		for _, interval := range cal.Busy {
			start, err := time.Parse(time.RFC3339, interval.Start)
			if err != nil {
				return nil, fmt.Errorf("invalid busy interval start %q: %w", interval.Start, err)
			}
			end, err := time.Parse(time.RFC3339, interval.End)
			if err != nil {
				return nil, fmt.Errorf("invalid busy interval end %q: %w", interval.End, err)
			}
			busy = append(busy, TimeRange{Start: start, End: end})
		}
	}

	return busy, nil
}
