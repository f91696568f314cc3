package discourse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"404", &HTTPError{Status: http.StatusNotFound}, true},
		{"403", &HTTPError{Status: http.StatusForbidden}, true},
		{"500", &HTTPError{Status: http.StatusInternalServerError}, false},
		{"wrapped 404", errorsWrap(&HTTPError{Status: 404}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func errorsWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ inner error }

func (w *wrapped) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapped) Unwrap() error { return w.inner }

func TestCookedText(t *testing.T) {
	tests := []struct {
		name   string
		cooked string
		want   string
	}{
		{"paragraph", "<p>Hello <b>world</b></p>", "Hello world"},
		{"empty", "", ""},
		{"whitespace trimmed", "<p>  spaced  </p>", "spaced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CookedText(tt.cooked); got != tt.want {
				t.Errorf("CookedText(%q) = %q, want %q", tt.cooked, got, tt.want)
			}
		})
	}
}

func TestAttachments(t *testing.T) {
	cooked := `<p>see <a class="attachment" href="/uploads/a.pdf">a.pdf</a>
and <a href="/not-attachment">link</a>
and <a class="attachment" href="/uploads/b.zip">b.zip</a></p>`
	want := []string{"/uploads/a.pdf", "/uploads/b.zip"}
	if got := Attachments(cooked); !reflect.DeepEqual(got, want) {
		t.Errorf("Attachments() = %v, want %v", got, want)
	}
	if got := Attachments("<p>nothing</p>"); got != nil {
		t.Errorf("Attachments() = %v, want nil", got)
	}
}

func TestSessionAuthentication(t *testing.T) {
	var logins int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostFormValue("login") != "bot" || r.PostFormValue("password") != "pw" {
			t.Errorf("credentials = %q/%q", r.PostFormValue("login"), r.PostFormValue("password"))
		}
		logins++
		http.SetCookie(w, &http.Cookie{Name: "_t", Value: "cred-value"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSession(srv.Client(), srv.URL, "bot", "pw", "", time.Hour, testLogger())

	cred, err := s.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if cred != "cred-value" {
		t.Errorf("cred = %q", cred)
	}
	if s.Epoch() != 1 {
		t.Errorf("Epoch() = %d, want 1", s.Epoch())
	}

	// Fresh credential is reused without a second login.
	if _, err := s.EnsureValid(context.Background()); err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if logins != 1 {
		t.Errorf("logins = %d, want 1", logins)
	}

	// Invalidation forces re-authentication and bumps the epoch.
	s.Invalidate()
	if _, err := s.EnsureValid(context.Background()); err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if logins != 2 || s.Epoch() != 2 {
		t.Errorf("logins = %d, epoch = %d; want 2 and 2", logins, s.Epoch())
	}
}

func TestClientCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			http.SetCookie(w, &http.Cookie{Name: "_t", Value: "cred"})
		case "/posts/5.json":
			if c, err := r.Cookie("_t"); err != nil || c.Value != "cred" {
				t.Error("session cookie missing on API call")
			}
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{"id": 5, "topic_id": 9, "username": "alice", "raw": "body"}`)); err != nil {
				t.Error(err)
			}
		case "/posts/6.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	session := NewSession(srv.Client(), srv.URL, "bot", "pw", "", time.Hour, testLogger())
	client := NewClient(srv.Client(), session, srv.URL, 5*time.Second, testLogger())

	post, err := client.Post(context.Background(), 5)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if post.ID != 5 || post.TopicID != 9 || post.Username != "alice" {
		t.Errorf("post = %+v", post)
	}

	_, err = client.Post(context.Background(), 6)
	if !IsNotFound(err) {
		t.Errorf("Post(6) error = %v, want a not-found class error", err)
	}
}

func TestLatestPostID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			http.SetCookie(w, &http.Cookie{Name: "_t", Value: "cred"})
		case "/posts.json":
			if r.URL.Query().Get("before") != "0" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			if _, err := w.Write([]byte(`{"latest_posts": [{"id": 3}, {"id": 17}, {"id": 11}]}`)); err != nil {
				t.Error(err)
			}
		}
	}))
	defer srv.Close()

	session := NewSession(srv.Client(), srv.URL, "bot", "pw", "", time.Hour, testLogger())
	client := NewClient(srv.Client(), session, srv.URL, 5*time.Second, testLogger())

	latest, err := client.LatestPostID(context.Background())
	if err != nil {
		t.Fatalf("LatestPostID() error = %v", err)
	}
	if latest != 17 {
		t.Errorf("LatestPostID() = %d, want 17", latest)
	}
}
