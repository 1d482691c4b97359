package server

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const mcpCallerID = "mcp"

type SummarizeURLInput struct {
	URL          string `json:"url"                     jsonschema:"YouTube video or website URL to summarize"`
	APIKey       string `json:"api_key"                 jsonschema:"API key of the language model provider"`
	Style        string `json:"style,omitempty"         jsonschema:"Summary style: balanced, bullet_points, executive, technical or simplified"`
	Length       int    `json:"length,omitempty"        jsonschema:"Target summary length in words"`
	WhisperModel string `json:"whisper_model,omitempty" jsonschema:"Whisper model for YouTube transcription: base, small, medium or large"`
}

func (s *Server) newMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serviceName,
		Version: serviceVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "summarize_url",
		Description: "Summarize a YouTube video (transcribed with Whisper) or a website. " +
			"Returns the summary with its word count and reading time.",
	}, s.handleSummarizeTool)

	return server
}

func (s *Server) handleSummarizeTool(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeURLInput,
) (*mcp.CallToolResult, domain.SummaryResult, error) {
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	style := domain.Style(input.Style)
	if style == "" {
		style = domain.StyleBalanced
	}

	result, err := s.pipeline.Process(ctx, domain.Request{
		URL:                input.URL,
		Credential:         input.APIKey,
		Style:              style,
		TargetLength:       input.Length,
		TranscriptionModel: domain.TranscriptionModel(input.WhisperModel),
		CallerID:           mcpCallerID,
	})
	if err != nil {
		e := apperr.Classify(err)
		return nil, domain.SummaryResult{}, fmt.Errorf("%s: %s", e.Kind, e.Message)
	}

	return nil, result, nil
}
