package bot

import (
	"briefly/internal/domain"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const defaultUpdateProcessingTimeout = 10 * time.Minute

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
}

type Summarizer interface {
	Process(ctx context.Context, req domain.Request) (domain.SummaryResult, error)
}

type Options struct {
	// Credential is the server-side LLM API key used for every chat.
	Credential   string
	AllowedUsers []int64
	Styles       []domain.Style
	// UpdateTimeout bounds the handling of one update.
	UpdateTimeout time.Duration
}

type Bot struct {
	client   *tgbot.Bot
	api      Sender
	pipeline Summarizer
	opts     Options

	mu         sync.Mutex
	chatStyles map[int64]domain.Style
	lastSent   map[int64]time.Time
	intervals  sendIntervals
	now        func() time.Time

	log *slog.Logger
}

func New(token string, p Summarizer, opts Options, log *slog.Logger) (*Bot, error) {
	b := newBot(nil, p, opts, log)

	client, err := tgbot.New(strings.TrimSpace(token),
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
			b.handleUpdate(ctx, update)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.client = client
	b.api = client

	return b, nil
}

func newBot(api Sender, p Summarizer, opts Options, log *slog.Logger) *Bot {
	if opts.UpdateTimeout <= 0 {
		opts.UpdateTimeout = defaultUpdateProcessingTimeout
	}
	if len(opts.Styles) == 0 {
		opts.Styles = domain.Styles()
	}

	return &Bot{
		api:        api,
		pipeline:   p,
		opts:       opts,
		chatStyles: make(map[int64]domain.Style),
		lastSent:   make(map[int64]time.Time),
		now:        time.Now,
		log:        log,
		intervals: sendIntervals{
			private: privateChatSendInterval,
			group:   groupChatSendInterval,
		},
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Starting bot")

	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) handleUpdate(ctx context.Context, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, b.opts.UpdateTimeout)
	defer cancel()

	message := update.Message
	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", message.From.Username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

// userAllowed reports whether userID may use the bot. An empty allow list
// admits everyone.
func (b *Bot) userAllowed(userID int64) bool {
	return len(b.opts.AllowedUsers) == 0 || slices.Contains(b.opts.AllowedUsers, userID)
}

func (b *Bot) chatStyle(chatID int64) domain.Style {
	b.mu.Lock()
	defer b.mu.Unlock()

	if style, ok := b.chatStyles[chatID]; ok {
		return style
	}
	return domain.StyleBalanced
}

func (b *Bot) setChatStyle(chatID int64, style domain.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chatStyles[chatID] = style
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	if err := b.waitSendSlot(ctx, chatID); err != nil {
		return err
	}

	_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: tgbot.True(),
		},
	})
	b.markSent(chatID)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
