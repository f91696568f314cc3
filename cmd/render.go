package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cow-notifier/pkg/news"
	"cow-notifier/render"
)

// noopScanner satisfies the renderer without a live alias store.
type noopScanner struct{}

func (noopScanner) Scan(context.Context, string, string) []news.MentionEvent { return nil }

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a markdown file to MarkdownV2 for inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		r := render.New(noopScanner{}, "https://example.org", logger)

		out, err := r.Render(string(data))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
