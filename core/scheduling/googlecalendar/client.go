// Package googlecalendar finds open technician slots by querying the Google
// Calendar free/busy endpoint and filtering the busy windows through a
// working-hours policy.
package googlecalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/koscakluka/helpline-core/core/scheduling"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/calendar/v3"
	defaultCalendarID = "primary"
	calendarScope     = "https://www.googleapis.com/auth/calendar"
)

// Client queries one calendar's free/busy windows. It implements
// scheduling.AvailabilityProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
	hours      WorkingHours
	now        func() time.Time
}

type ClientOption func(*Client)

// WithCalendarID targets a calendar other than the service account's primary.
func WithCalendarID(calendarID string) ClientOption {
	return func(c *Client) {
		c.calendarID = calendarID
	}
}

// WithWorkingHours overrides the default slot policy.
func WithWorkingHours(hours WorkingHours) ClientOption {
	return func(c *Client) {
		c.hours = hours
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the authenticated HTTP client entirely.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient builds a calendar client from service account credentials JSON.
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		calendarID: defaultCalendarID,
		hours:      DefaultWorkingHours(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		config, err := google.JWTConfigFromJSON(credentialsJSON, calendarScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		c.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(&oauth2.Transport{Source: config.TokenSource(ctx)}),
			Timeout:   15 * time.Second,
		}
	}

	return c, nil
}

// NextAvailableSlot returns the first open slot within the policy horizon, or
// scheduling.ErrNoSlot when the calendar is fully booked.
func (c *Client) NextAvailableSlot(ctx context.Context) (*scheduling.Slot, error) {
	ctx, span := tracer.Start(ctx, "find available slot")
	defer span.End()
	span.SetAttributes(attribute.String("calendar.id", c.calendarID))

	now := c.now().UTC()
	busy, err := c.busyWindows(ctx, now, now.AddDate(0, 0, c.hours.HorizonDays))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("calendar.busy_windows", len(busy)))

	slot, err := firstFreeSlot(now, busy, c.hours)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return slot, nil
}

type freeBusyRequest struct {
	TimeMin  string             `json:"timeMin"`
	TimeMax  string             `json:"timeMax"`
	TimeZone string             `json:"timeZone"`
	Items    []freeBusyCalendar `json:"items"`
}

type freeBusyCalendar struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

func (c *Client) busyWindows(ctx context.Context, from, to time.Time) ([]scheduling.Window, error) {
	body, err := json.Marshal(freeBusyRequest{
		TimeMin:  from.Format(time.RFC3339),
		TimeMax:  to.Format(time.RFC3339),
		TimeZone: "UTC",
		Items:    []freeBusyCalendar{{ID: c.calendarID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal free/busy query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/freeBusy", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create free/busy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("free/busy query failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("free/busy query failed with status %d: %s", res.StatusCode, payload)
	}

	var parsed freeBusyResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse free/busy response: %w", err)
	}

	var windows []scheduling.Window
	for _, interval := range parsed.Calendars[c.calendarID].Busy {
		windows = append(windows, scheduling.Window{Start: interval.Start, End: interval.End})
	}
	return windows, nil
}
