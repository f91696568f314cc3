package mention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"cow-notifier/pkg/news"
)

type fakeAliasStore struct {
	recipients map[string][]int64
	err        error
}

func (f *fakeAliasStore) AliasRecipients(_ context.Context, alias string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recipients[alias], nil
}

func testScanner(store *fakeAliasStore) *Scanner {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e1234567", "123456"},
		{"1234567", "123456"},
		{"123456", "123456"},
		{"E123456", "123456"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"e1234567", true},
		{"123456", true},
		{"12345", false},
		{"ee123456", false},
		{"e123456x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScan(t *testing.T) {
	store := &fakeAliasStore{recipients: map[string][]int64{
		"123456": {100},
		"654321": {200, 201},
	}}

	tests := []struct {
		name string
		body string
		want []news.MentionEvent
	}{
		{
			name: "alias on first line has no header",
			body: "e123456\nhello world",
			want: []news.MentionEvent{
				{Recipient: 100, Alias: "e123456", Category: "cow.news", Header: "", Line: 0},
			},
		},
		{
			name: "alias after header line",
			body: "Topic X\ne1234567\nmore text",
			want: []news.MentionEvent{
				{Recipient: 100, Alias: "e1234567", Category: "cow.news", Header: "Topic X", Line: 1},
			},
		},
		{
			name: "long alias line becomes its own header",
			body: "Results\ne123456 passed with honors",
			want: []news.MentionEvent{
				{Recipient: 100, Alias: "e123456", Category: "cow.news", Header: "e123456 passed with honors", Line: 1},
			},
		},
		{
			name: "quoted lines never re-notify",
			body: "\\> e123456\nnothing here",
			want: nil,
		},
		{
			name: "one alias fans out to all registered chats",
			body: "654321",
			want: []news.MentionEvent{
				{Recipient: 200, Alias: "654321", Category: "cow.news", Header: "", Line: 0},
				{Recipient: 201, Alias: "654321", Category: "cow.news", Header: "", Line: 0},
			},
		},
		{
			name: "counter resets on new header",
			body: "Header A\nfiller\nHeader B\ne123456",
			want: []news.MentionEvent{
				{Recipient: 100, Alias: "e123456", Category: "cow.news", Header: "Header B", Line: 1},
			},
		},
		{
			name: "no aliases",
			body: "just\nplain\ntext",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testScanner(store).Scan(context.Background(), tt.body, "cow.news")
			if len(got) != len(tt.want) {
				t.Fatalf("Scan() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Scan()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanStoreFailureSkipsAlias(t *testing.T) {
	store := &fakeAliasStore{err: errors.New("redis down")}
	got := testScanner(store).Scan(context.Background(), "e123456", "cow.news")
	if len(got) != 0 {
		t.Errorf("Scan() = %+v, want no events on store failure", got)
	}
}
