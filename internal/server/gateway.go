package server

import (
	"context"
	"fmt"
	"time"

	"github.com/schedbot/schedbot/internal/calendar"
)

// Gateway adapts the server context to the calendar operations the scheduling
// tools need. The underlying client is resolved per call, so a token saved
// after startup is picked up without restarting the server.
type Gateway struct {
	sc      *ServerContext
	account string
}

// NewGateway returns a Gateway bound to the given account.
func NewGateway(sc *ServerContext, account string) *Gateway {
	if account == "" {
		account = "default"
	}
	return &Gateway{sc: sc, account: account}
}

func (g *Gateway) client() (*calendar.Client, error) {
	client := g.sc.CalendarClientForAccount(g.account)
	if client == nil {
		return nil, fmt.Errorf("no Google Calendar token found for account %q; run 'schedbot auth' first", g.account)
	}
	return client, nil
}

// ListUpcomingEvents implements the gateway operation for the check_calendar tool.
func (g *Gateway) ListUpcomingEvents(ctx context.Context, maxCount int64) ([]calendar.EventSummary, error) {
	client, err := g.client()
	if err != nil {
		return nil, err
	}
	return client.ListUpcomingEvents(ctx, maxCount)
}

// CreateEvent implements the gateway operation for the schedule_meeting tool.
func (g *Gateway) CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventSummary, error) {
	client, err := g.client()
	if err != nil {
		return nil, err
	}
	return client.CreateEvent(ctx, input)
}

// QueryDayBusy implements the gateway operation for the find_free_time tool.
func (g *Gateway) QueryDayBusy(ctx context.Context, day time.Time) ([]calendar.TimeRange, error) {
	client, err := g.client()
	if err != nil {
		return nil, err
	}
	return client.QueryDayBusy(ctx, day)
}
