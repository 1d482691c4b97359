package bot

import (
	"briefly/internal/domain"
	"briefly/internal/markdown"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-telegram/bot/models"
	"mvdan.cc/xurls/v2"
)

const welcomeText = `🤖 *Welcome to Briefly\!*

Send me a link and I will summarize it:

– YouTube videos are transcribed with Whisper first
– Websites and RSS / Atom feeds are read directly
– Choose the summary style with /style, see all styles with /styles`

const noURLText = `🔗 Send me a YouTube or website link to summarize\.`

//nolint:gochecknoglobals // Compiled once, read only.
var urlRe = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	command, args, _ := strings.Cut(text, " ")
	// Commands in groups carry the bot name: /style@briefly_bot.
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start", "/help":
		return b.sendMessage(ctx, chatID, welcomeText)
	case "/styles":
		return b.sendMessage(ctx, chatID, b.stylesText(chatID))
	case "/style":
		return b.handleStyleCommand(ctx, chatID, strings.TrimSpace(args))
	default:
		return b.handleText(ctx, chatID, text)
	}
}

func (b *Bot) stylesText(chatID int64) string {
	current := b.chatStyle(chatID)

	var sb strings.Builder
	sb.WriteString("*🎨 Summary styles*\n\n")

	for _, style := range b.opts.Styles {
		marker := "–"
		if style == current {
			marker = "👉"
		}
		fmt.Fprintf(&sb, "%s `%s`\n", marker, markdown.EscapeV2(string(style)))
	}

	sb.WriteString("\nChange it with `/style name`\\.")

	return sb.String()
}

func (b *Bot) handleStyleCommand(ctx context.Context, chatID int64, name string) error {
	style := domain.Style(strings.ToLower(name))

	if !slices.Contains(b.opts.Styles, style) {
		return b.sendMessage(ctx, chatID,
			"❌ Unknown style\\. See the list with /styles\\.")
	}

	b.setChatStyle(chatID, style)

	return b.sendMessage(ctx, chatID,
		fmt.Sprintf("✅ Summary style is now `%s`\\.", markdown.EscapeV2(string(style))))
}

func (b *Bot) handleText(ctx context.Context, chatID int64, text string) error {
	rawURL := urlRe.FindString(text)
	if rawURL == "" {
		return b.sendMessage(ctx, chatID, noURLText)
	}

	style := b.chatStyle(chatID)

	var result domain.SummaryResult
	err := b.withSpinner(ctx, chatID, func() error {
		var processErr error
		result, processErr = b.pipeline.Process(ctx, domain.Request{
			URL:        rawURL,
			Credential: b.opts.Credential,
			Style:      style,
			CallerID:   fmt.Sprintf("tg:%d", chatID),
		})
		return processErr
	})
	if err != nil {
		if sendErr := b.sendMessage(ctx, chatID, formatError(err)); sendErr != nil {
			return errors.Join(err, sendErr)
		}

		b.log.InfoContext(ctx, "Reported summarization failure",
			"error", err,
			"chatID", chatID)

		return nil
	}

	var errs []error
	for _, message := range formatSummaryMessages(result, style) {
		if err = b.sendMessage(ctx, chatID, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
