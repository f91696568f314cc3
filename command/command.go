// Package command executes subscriber commands received over the webhook.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"cow-notifier/mention"
	"cow-notifier/pkg/news"
	"cow-notifier/render"
)

// Resolver maps category names to ids and back.
type Resolver interface {
	LookupByName(name string) (int, bool)
	ClosestMatches(name string) []string
	PathByID(id int) (string, bool)
	Paths() []string
}

// Store persists subscriptions, aliases, and preferences.
type Store interface {
	Subscribe(ctx context.Context, chatID int64, categoryID int) (bool, error)
	Unsubscribe(ctx context.Context, chatID int64, categoryID int) (bool, error)
	Subscriptions(ctx context.Context, chatID int64) ([]int, error)
	SetPlusOneFilter(ctx context.Context, chatID int64, suppress bool) error
	AddAlias(ctx context.Context, chatID int64, alias string) error
	RemoveAlias(ctx context.Context, chatID int64, alias string) error
}

// Replier sends command responses back to the issuing chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
}

// Worker consumes commands from a queue and executes them one at a time.
type Worker struct {
	store    Store
	resolver Resolver
	replier  Replier
	logger   *slog.Logger
	queue    <-chan news.Command
}

// NewWorker creates a command worker reading from queue.
func NewWorker(queue <-chan news.Command, store Store, resolver Resolver, replier Replier, logger *slog.Logger) *Worker {
	return &Worker{
		store:    store,
		resolver: resolver,
		replier:  replier,
		logger:   logger,
		queue:    queue,
	}
}

// Run processes commands until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Command worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Command worker stopping", "reason", ctx.Err())
			return nil
		case cmd := <-w.queue:
			w.handle(ctx, cmd)
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd news.Command) {
	w.logger.Info("Handling command", "chat_id", cmd.ChatID, "name", cmd.Name, "args", cmd.Args)

	var reply string
	switch cmd.Name {
	case "subscribe":
		reply = w.subscribe(ctx, cmd)
	case "unsubscribe":
		reply = w.unsubscribe(ctx, cmd)
	case "list":
		reply = w.list(ctx, cmd)
	case "listall":
		reply = w.listAll()
	case "plusone":
		reply = w.plusOne(ctx, cmd)
	case "alias":
		reply = w.alias(ctx, cmd)
	case "unalias":
		reply = w.unalias(ctx, cmd)
	default:
		reply = fmt.Sprintf("Unknown command: %s", render.Escape(cmd.Name))
	}

	if reply == "" {
		return
	}
	if err := w.replier.Reply(ctx, cmd.ChatID, reply); err != nil {
		w.logger.Warn("Command reply failed", "chat_id", cmd.ChatID, "name", cmd.Name, "error", err)
	}
}

// resolveCategory turns a user-supplied name into a category id, or a
// reply explaining why it could not.
func (w *Worker) resolveCategory(name string) (int, string) {
	id, ok := w.resolver.LookupByName(name)
	if ok {
		return id, ""
	}
	matches := w.resolver.ClosestMatches(name)
	if len(matches) == 0 {
		return 0, fmt.Sprintf("No such newsgroup: *%s*", render.Escape(name))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "No exact match for *%s*\\. Did you mean:\n", render.Escape(name))
	for _, m := range matches {
		fmt.Fprintf(&b, "\\- %s\n", render.Escape(m))
	}
	return 0, b.String()
}

func (w *Worker) subscribe(ctx context.Context, cmd news.Command) string {
	if len(cmd.Args) == 0 {
		return "Usage: subscribe \\<newsgroup\\>"
	}
	name := cmd.Args[0]
	id, errReply := w.resolveCategory(name)
	if errReply != "" {
		return errReply
	}
	path, _ := w.resolver.PathByID(id)
	added, err := w.store.Subscribe(ctx, cmd.ChatID, id)
	if err != nil {
		w.logger.Error("Subscribe failed", "chat_id", cmd.ChatID, "category_id", id, "error", err)
		return "Subscription failed, please try again later"
	}
	if !added {
		return fmt.Sprintf("Already subscribed to *%s*", render.Escape(path))
	}
	return fmt.Sprintf("Subscribed to *%s*", render.Escape(path))
}

func (w *Worker) unsubscribe(ctx context.Context, cmd news.Command) string {
	if len(cmd.Args) == 0 {
		return "Usage: unsubscribe \\<newsgroup\\>"
	}
	name := cmd.Args[0]
	id, errReply := w.resolveCategory(name)
	if errReply != "" {
		return errReply
	}
	path, _ := w.resolver.PathByID(id)
	removed, err := w.store.Unsubscribe(ctx, cmd.ChatID, id)
	if err != nil {
		w.logger.Error("Unsubscribe failed", "chat_id", cmd.ChatID, "category_id", id, "error", err)
		return "Unsubscription failed, please try again later"
	}
	if !removed {
		return fmt.Sprintf("Not subscribed to *%s*", render.Escape(path))
	}
	return fmt.Sprintf("Unsubscribed from *%s*", render.Escape(path))
}

func (w *Worker) list(ctx context.Context, cmd news.Command) string {
	ids, err := w.store.Subscriptions(ctx, cmd.ChatID)
	if err != nil {
		w.logger.Error("List failed", "chat_id", cmd.ChatID, "error", err)
		return "Listing failed, please try again later"
	}
	if len(ids) == 0 {
		return "You have no subscriptions"
	}
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		if path, ok := w.resolver.PathByID(id); ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	var b strings.Builder
	b.WriteString("Your subscriptions:\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "\\- %s\n", render.Escape(p))
	}
	return b.String()
}

func (w *Worker) listAll() string {
	paths := w.resolver.Paths()
	if len(paths) == 0 {
		return "Newsgroup list is not available yet, please try again later"
	}
	var b strings.Builder
	b.WriteString("Available newsgroups:\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "\\- %s\n", render.Escape(p))
	}
	return b.String()
}

func (w *Worker) plusOne(ctx context.Context, cmd news.Command) string {
	if len(cmd.Args) == 0 || (cmd.Args[0] != "on" && cmd.Args[0] != "off") {
		return "Usage: plusone \\<on\\|off\\>"
	}
	// "off" means the chat does not want plus-one posts.
	suppress := cmd.Args[0] == "off"
	if err := w.store.SetPlusOneFilter(ctx, cmd.ChatID, suppress); err != nil {
		w.logger.Error("Plus-one toggle failed", "chat_id", cmd.ChatID, "error", err)
		return "Setting failed, please try again later"
	}
	if suppress {
		return "You will no longer receive \\+1 posts"
	}
	return "You will receive \\+1 posts"
}

func (w *Worker) alias(ctx context.Context, cmd news.Command) string {
	if len(cmd.Args) == 0 {
		return "Usage: alias \\<student number\\>"
	}
	if !mention.Valid(cmd.Args[0]) {
		return fmt.Sprintf("Not a valid alias: *%s*", render.Escape(cmd.Args[0]))
	}
	alias := mention.Normalize(cmd.Args[0])
	if err := w.store.AddAlias(ctx, cmd.ChatID, alias); err != nil {
		w.logger.Error("Alias add failed", "chat_id", cmd.ChatID, "alias", alias, "error", err)
		return "Alias registration failed, please try again later"
	}
	return fmt.Sprintf("You will be notified when *%s* is mentioned", render.Escape(alias))
}

func (w *Worker) unalias(ctx context.Context, cmd news.Command) string {
	if len(cmd.Args) == 0 {
		return "Usage: unalias \\<student number\\>"
	}
	if !mention.Valid(cmd.Args[0]) {
		return fmt.Sprintf("Not a valid alias: *%s*", render.Escape(cmd.Args[0]))
	}
	alias := mention.Normalize(cmd.Args[0])
	if err := w.store.RemoveAlias(ctx, cmd.ChatID, alias); err != nil {
		w.logger.Error("Alias remove failed", "chat_id", cmd.ChatID, "alias", alias, "error", err)
		return "Alias removal failed, please try again later"
	}
	return fmt.Sprintf("You will no longer be notified for *%s*", render.Escape(alias))
}
