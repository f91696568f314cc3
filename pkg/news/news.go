// Package news contains the core domain types for the cow-notifier service.
package news

// MentionEvent is emitted when a registered alias appears in a post body.
// Events are produced and consumed within a single render call and are
// never persisted.
type MentionEvent struct {
	Recipient int64  // chat id of the alias owner
	Alias     string // token as it appeared in the post
	Category  string // dotted category path of the post
	Header    string // header context preceding the mention
	Line      int    // line number within the post body
}

// Recipient is a chat subscribed to a category, with its delivery preference.
type Recipient struct {
	ChatID    int64
	NoPlusOne bool // suppress low-signal acknowledgement posts
}

// Command is an opaque, already-parsed user command delivered by the
// webhook listener.
type Command struct {
	ChatID int64    `json:"chat_id"`
	Name   string   `json:"name"`
	Args   []string `json:"args"`
}
