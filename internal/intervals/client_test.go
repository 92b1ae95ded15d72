package intervals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fastOptions removes pacing and retry delays for tests
func fastOptions(baseURL string) Options {
	return Options{
		BaseURL:     baseURL,
		MaxInFlight: 5,
		Pacing:      time.Millisecond,
		RetryBudget: 2,
		RetryStep:   time.Millisecond,
	}
}

func TestNewClientNotConfigured(t *testing.T) {
	if _, err := NewClient("", "i12345", Options{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("empty key: error = %v, want ErrNotConfigured", err)
	}
	if _, err := NewClient("key", "", Options{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("empty athlete: error = %v, want ErrNotConfigured", err)
	}
}

func TestClientSendsBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[{"id":"a1","name":"Run","type":"Run","start_date_local":"2026-02-10T07:00:00"}]`)
	}))
	defer srv.Close()

	client, err := NewClient("secret-key", "i12345", fastOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	activities, err := client.Activities(context.Background(), "2026-02-01", "2026-02-16")
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want the bearer key", gotAuth)
	}
	if len(activities) != 1 || activities[0].ID != "a1" {
		t.Errorf("activities = %v, want the fixture", activities)
	}
	if activities[0].StartDateLocal.Format("2006-01-02") != "2026-02-10" {
		t.Errorf("date = %v, want parsed local time", activities[0].StartDateLocal)
	}
}

func TestClientRetriesThrottling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client, err := NewClient("key", "i12345", fastOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Activities(context.Background(), "2026-02-01", "2026-02-16"); err != nil {
		t.Fatalf("Activities() error = %v after retryable throttling", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3 (two 429s then success)", got)
	}
}

func TestClientThrottleBudgetExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("key", "i12345", fastOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Activities(context.Background(), "2026-02-01", "2026-02-16")
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("error = %v, want ErrThrottled", err)
	}
	// Budget of 2 retries: the initial request plus two more
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "server exploded")
	}))
	defer srv.Close()

	client, err := NewClient("key", "i12345", fastOptions(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Activities(context.Background(), "2026-02-01", "2026-02-16")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", httpErr.Status)
	}
	if httpErr.Body != "server exploded" {
		t.Errorf("Body = %q, want the response body", httpErr.Body)
	}
}

func TestClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	opts := fastOptions(srv.URL)
	opts.RetryStep = time.Hour // cancellation must win over the retry delay

	client, err := NewClient("key", "i12345", opts)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Activities(ctx, "2026-02-01", "2026-02-16")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context deadline", err)
	}
}

func TestLocalTimeParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"2026-02-10T07:00:00"`, "2026-02-10T07:00:00"},
		{`"2026-02-10T07:00:00Z"`, "2026-02-10T07:00:00"},
		{`"2026-02-10"`, "2026-02-10T00:00:00"},
	}

	for _, tt := range tests {
		var lt LocalTime
		if err := lt.UnmarshalJSON([]byte(tt.raw)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) error = %v", tt.raw, err)
		}
		if got := lt.Format("2006-01-02T15:04:05"); got != tt.want {
			t.Errorf("parsed %s = %s, want %s", tt.raw, got, tt.want)
		}
	}

	// Garbage timestamps decode to zero rather than failing the collection
	var lt LocalTime
	if err := lt.UnmarshalJSON([]byte(`"whenever"`)); err != nil {
		t.Fatalf("UnmarshalJSON(garbage) error = %v", err)
	}
	if !lt.IsZero() {
		t.Errorf("garbage timestamp = %v, want zero", lt.Time)
	}

	var null LocalTime
	if err := null.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatalf("UnmarshalJSON(null) error = %v", err)
	}
	if !null.IsZero() {
		t.Errorf("null timestamp = %v, want zero", null.Time)
	}
}
