package main

import (
	"briefly/internal/domain"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // cobra flags
var (
	summarizeStyle  string
	summarizeLength int
	summarizeModel  string
	summarizeAPIKey string
	summarizeJSON   bool
)

//nolint:gochecknoglobals // cobra command tree
var summarizeCmd = &cobra.Command{
	Use:   "summarize <url>",
	Short: "Summarize one URL and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(
		&summarizeStyle, "style", string(domain.StyleBalanced),
		"Summary style: balanced, bullet_points, executive, technical, simplified",
	)
	summarizeCmd.Flags().IntVar(
		&summarizeLength, "length", 0,
		"Target summary length in words (default: DEFAULT_SUMMARY_LENGTH)",
	)
	summarizeCmd.Flags().StringVar(
		&summarizeModel, "whisper-model", string(domain.TranscriptionModelBase),
		"Whisper model for YouTube transcription",
	)
	summarizeCmd.Flags().StringVar(
		&summarizeAPIKey, "api-key", "",
		"LLM API key (default: LLM_API_KEY)",
	)
	summarizeCmd.Flags().BoolVar(
		&summarizeJSON, "json", false,
		"Print the result as JSON",
	)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	credential := summarizeAPIKey
	if credential == "" {
		credential = a.cfg.LLMAPIKey
	}

	result, err := a.pipeline.Process(ctx, domain.Request{
		URL:                args[0],
		Credential:         credential,
		Style:              domain.Style(summarizeStyle),
		TargetLength:       summarizeLength,
		TranscriptionModel: domain.TranscriptionModel(summarizeModel),
		CallerID:           "cli",
	})
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), result, summarizeJSON)
}

func writeResult(w io.Writer, result domain.SummaryResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}

	_, err := fmt.Fprintf(w, "%s\n\n%d words, %d min read\n",
		result.Text, result.WordCount, result.ReadingTimeMinutes)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
