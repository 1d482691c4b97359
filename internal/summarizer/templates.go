package summarizer

import (
	"briefly/internal/domain"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

//nolint:gochecknoglobals // Parsed once from the embedded file and never modified.
var prompts = mustParsePrompts(templatesYAML)

type promptData struct {
	Length int
	Text   string
}

func mustParsePrompts(raw []byte) map[domain.Style]*template.Template {
	parsed, err := parsePrompts(raw)
	if err != nil {
		panic(err)
	}
	return parsed
}

func parsePrompts(raw []byte) (map[domain.Style]*template.Template, error) {
	var sources map[domain.Style]string
	if err := yaml.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("unmarshal prompt templates: %w", err)
	}

	parsed := make(map[domain.Style]*template.Template, len(sources))
	for _, style := range domain.Styles() {
		src, ok := sources[style]
		if !ok {
			return nil, fmt.Errorf("prompt template is missing (style = %s)", style)
		}

		tmpl, err := template.New(string(style)).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse prompt template (style = %s): %w", style, err)
		}
		parsed[style] = tmpl
	}

	return parsed, nil
}

// Prompt renders the template for style. Unknown styles use the balanced
// template instead of failing.
func Prompt(style domain.Style, length int, text string) (string, error) {
	tmpl, ok := prompts[style]
	if !ok {
		tmpl = prompts[domain.StyleBalanced]
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, promptData{Length: length, Text: text}); err != nil {
		return "", fmt.Errorf("execute prompt template (style = %s): %w", style, err)
	}

	return b.String(), nil
}
