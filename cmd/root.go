// Package cmd wires the notifier's command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cow-notifier",
	Short: "Forum-to-chat notification pipeline",
	Long: `cow-notifier syncs new posts from a Discourse forum, renders them
into Telegram MarkdownV2, and delivers them to subscribed chats.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}
