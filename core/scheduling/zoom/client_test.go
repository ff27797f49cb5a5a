package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/koscakluka/helpline-core/core/scheduling"
)

func TestCreateMeetingPostsScheduledMeetingAndReturnsJoinLink(t *testing.T) {
	var received createMeetingRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/me/meetings" {
			t.Errorf("expected POST /users/me/meetings, got %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode meeting request: %v", err)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 123456789, "join_url": "https://zoom.example/j/123456789"}`)
	}))
	defer server.Close()

	client := NewClient(context.Background(), "account", "id", "secret",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)

	start := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	confirmation, err := client.CreateMeeting(context.Background(), scheduling.BookingRequest{
		Subject: "IT visit",
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Email:   "user@example.com",
	})
	if err != nil {
		t.Fatalf("expected the booking to succeed, got %v", err)
	}

	if confirmation.Reference != "123456789" {
		t.Fatalf("expected the meeting id as the reference, got %q", confirmation.Reference)
	}
	if confirmation.JoinURL != "https://zoom.example/j/123456789" {
		t.Fatalf("expected the join link, got %q", confirmation.JoinURL)
	}

	if received.Topic != "IT visit" || received.Type != meetingTypeScheduled {
		t.Fatalf("expected a scheduled meeting with the subject as topic, got %+v", received)
	}
	if received.Duration != 30 {
		t.Fatalf("expected a 30-minute duration, got %d", received.Duration)
	}
	if received.StartTime != "2026-09-07T09:00:00Z" || received.Timezone != "UTC" {
		t.Fatalf("expected a UTC start time, got %+v", received)
	}
	if received.Settings.JoinBeforeHost || !received.Settings.WaitingRoom {
		t.Fatalf("expected the waiting room held and join-before-host off, got %+v", received.Settings)
	}
}

func TestCreateMeetingSurfacesAPIFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": 124, "message": "invalid access token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(context.Background(), "account", "id", "secret",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)

	start := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	_, err := client.CreateMeeting(context.Background(), scheduling.BookingRequest{
		Subject: "IT visit",
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Email:   "user@example.com",
	})
	if err == nil {
		t.Fatalf("expected an error when the API rejects the booking")
	}
}
