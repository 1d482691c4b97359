package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CLI.
//
//nolint:gochecknoglobals // cobra command tree
var rootCmd = &cobra.Command{
	Use:   "briefly",
	Short: "Summarize YouTube videos and web pages with an LLM",
	Long: `briefly turns a YouTube video or a web page into a summary.

Run "briefly serve" to start the REST API, the MCP endpoint and the optional
Telegram bot, or "briefly summarize <url>" for a one-shot summary.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
