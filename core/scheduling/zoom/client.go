// Package zoom books technician meetings through the Zoom API using
// server-to-server OAuth (the account_credentials grant).
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/koscakluka/helpline-core/core/scheduling"
)

const (
	defaultBaseURL  = "https://api.zoom.us/v2"
	defaultTokenURL = "https://zoom.us/oauth/token"

	meetingTypeScheduled = 2
)

// Client creates meetings on the authorized account's user. It implements
// scheduling.BookingProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	agenda     string
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithAgenda overrides the agenda line attached to every booked meeting.
func WithAgenda(agenda string) ClientOption {
	return func(c *Client) {
		c.agenda = agenda
	}
}

// WithHTTPClient replaces the authenticated HTTP client entirely.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(ctx context.Context, accountID, clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		agenda:  "IT Helpdesk Scheduled Meeting",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		config := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     defaultTokenURL,
			EndpointParams: url.Values{
				"grant_type": {"account_credentials"},
				"account_id": {accountID},
			},
		}
		c.httpClient = config.Client(ctx)
		c.httpClient.Transport = otelhttp.NewTransport(c.httpClient.Transport)
		c.httpClient.Timeout = 15 * time.Second
	}

	return c
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Agenda    string          `json:"agenda"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost        bool `json:"join_before_host"`
	WaitingRoom           bool `json:"waiting_room"`
	MeetingAuthentication bool `json:"meeting_authentication"`
}

type createMeetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

// CreateMeeting books one scheduled meeting and returns its join link.
func (c *Client) CreateMeeting(ctx context.Context, request scheduling.BookingRequest) (*scheduling.Confirmation, error) {
	ctx, span := tracer.Start(ctx, "create meeting")
	defer span.End()
	span.SetAttributes(
		attribute.String("meeting.topic", request.Subject),
		attribute.String("meeting.start", request.Start.Format(time.RFC3339)),
	)

	body, err := json.Marshal(createMeetingRequest{
		Topic:     request.Subject,
		Type:      meetingTypeScheduled,
		StartTime: request.Start.UTC().Format(time.RFC3339),
		Duration:  int(request.End.Sub(request.Start) / time.Minute),
		Timezone:  "UTC",
		Agenda:    c.agenda,
		Settings: meetingSettings{
			JoinBeforeHost:        false,
			WaitingRoom:           true,
			MeetingAuthentication: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meeting request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/meetings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("meeting creation failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated && res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(res.Body)
		err := fmt.Errorf("meeting creation failed with status %d: %s", res.StatusCode, payload)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var meeting createMeetingResponse
	if err := json.NewDecoder(res.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("failed to parse meeting response: %w", err)
	}

	span.SetAttributes(attribute.Int64("meeting.id", meeting.ID))
	return &scheduling.Confirmation{
		Reference: strconv.FormatInt(meeting.ID, 10),
		JoinURL:   meeting.JoinURL,
	}, nil
}
