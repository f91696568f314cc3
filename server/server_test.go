package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cow-notifier/pkg/news"
)

func testServer(queueSize int) (*Server, chan news.Command) {
	queue := make(chan news.Command, queueSize)
	s := New(&Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Queue:  queue,
		Secret: "s3cret",
		Port:   "0",
	})
	return s, queue
}

func TestHookQueuesCommand(t *testing.T) {
	s, queue := testServer(4)

	body := `{"chat_id": 7, "name": "subscribe", "args": ["cow.news"]}`
	req := httptest.NewRequest(http.MethodPost, "/hook/s3cret", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleHook(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	select {
	case cmd := <-queue:
		if cmd.ChatID != 7 || cmd.Name != "subscribe" || len(cmd.Args) != 1 {
			t.Errorf("queued command = %+v", cmd)
		}
	default:
		t.Fatal("command not queued")
	}
}

func TestHookRejectsBadSecret(t *testing.T) {
	s, queue := testServer(4)

	req := httptest.NewRequest(http.MethodPost, "/hook/wrong", strings.NewReader(`{"chat_id":1,"name":"list"}`))
	rec := httptest.NewRecorder()
	s.handleHook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for bad secret", rec.Code)
	}
	if len(queue) != 0 {
		t.Error("command queued despite bad secret")
	}
}

func TestHookRejectsMalformedPayload(t *testing.T) {
	s, _ := testServer(4)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "garbage"},
		{"missing chat id", `{"name":"list"}`},
		{"missing name", `{"chat_id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/hook/s3cret", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handleHook(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHookQueueFull(t *testing.T) {
	s, queue := testServer(1)
	queue <- news.Command{ChatID: 1, Name: "list"}

	req := httptest.NewRequest(http.MethodPost, "/hook/s3cret", strings.NewReader(`{"chat_id":2,"name":"list"}`))
	rec := httptest.NewRecorder()
	s.handleHook(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when queue is full", rec.Code)
	}
}

func TestHookMethodNotAllowed(t *testing.T) {
	s, _ := testServer(4)
	req := httptest.NewRequest(http.MethodGet, "/hook/s3cret", http.NoBody)
	rec := httptest.NewRecorder()
	s.handleHook(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := testServer(4)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"healthy"}` {
		t.Errorf("body = %q", got)
	}
}
