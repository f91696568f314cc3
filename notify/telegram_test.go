package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

type sendRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func TestTelegramSend(t *testing.T) {
	var got []sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sr sendRequest
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			t.Errorf("decode request: %v", err)
		}
		got = append(got, sr)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"ok": true}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	tg := NewTelegram(srv.Client(), srv.URL, "token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := tg.Send(context.Background(), 42, `hello\!`); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("requests = %d, want 1", len(got))
	}
	if got[0].ChatID != 42 || got[0].Text != `hello\!` || got[0].ParseMode != "MarkdownV2" {
		t.Errorf("request = %+v", got[0])
	}
}

// A 400 from the API triggers one plain-text resend without parse mode.
func TestTelegramSendPlainTextFallback(t *testing.T) {
	var got []sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sr sendRequest
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			t.Errorf("decode request: %v", err)
		}
		got = append(got, sr)
		w.Header().Set("Content-Type", "application/json")
		if sr.ParseMode != "" {
			if _, err := w.Write([]byte(`{"ok": false, "error_code": 400, "description": "can't parse entities"}`)); err != nil {
				t.Error(err)
			}
			return
		}
		if _, err := w.Write([]byte(`{"ok": true}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	tg := NewTelegram(srv.Client(), srv.URL, "token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := tg.Send(context.Background(), 42, `broken *markup\.`); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("requests = %d, want markdown attempt plus fallback", len(got))
	}
	if got[1].ParseMode != "" {
		t.Errorf("fallback parse_mode = %q, want empty", got[1].ParseMode)
	}
	if got[1].Text != "broken markup." {
		t.Errorf("fallback text = %q, want degraded plain text", got[1].Text)
	}
}

func TestTelegramSendChunksLongText(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count++
		if _, err := w.Write([]byte(`{"ok": true}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	tg := NewTelegram(srv.Client(), srv.URL, "token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	long := make([]byte, maxMessageLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := tg.Send(context.Background(), 42, string(long)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if count != 2 {
		t.Errorf("requests = %d, want 2 chunks", count)
	}
}
