package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/badgekit/pkg/errors"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "badgekit-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("badgekit-test"))
	data, err := c.Get(context.Background(), srv.URL+"/bg.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "PNGDATA" {
		t.Errorf("body = %q", data)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(WithRetry(3, time.Millisecond))
	data, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("data=%q calls=%d", data, calls.Load())
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.Code
		calls  int32
	}{
		{"not found", http.StatusNotFound, "", errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, "", errors.ErrCodeNetwork, 1},
		{"server error", http.StatusInternalServerError, "", errors.ErrCodeNetwork, 2},
		{"too large", http.StatusOK, strings.Repeat("x", 64), errors.ErrCodeInvalidInput, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(WithRetry(2, time.Millisecond), WithMaxBytes(16))
			_, err := c.Get(context.Background(), srv.URL)
			if !errors.Is(err, tt.code) {
				t.Errorf("Get() error = %v, want code %s", err, tt.code)
			}
			if calls.Load() != tt.calls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.calls)
			}
		})
	}
}

func TestClientInvalidURL(t *testing.T) {
	_, err := NewClient().Get(context.Background(), "://bad")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get() error = %v", err)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return Retryable(errors.New(errors.ErrCodeNetwork, "down"))
	})
	if err != context.Canceled {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New(errors.ErrCodeNetwork, "x")) {
		t.Error("plain error reported retryable")
	}
}
