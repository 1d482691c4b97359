package bot

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"pgregory.net/rapid"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []*tgbot.SendMessageParams
	sentAt   []time.Time
}

func (f *fakeSender) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, params)
	f.sentAt = append(f.sentAt, time.Now())
	return &models.Message{}, nil
}

func (f *fakeSender) SendChatAction(context.Context, *tgbot.SendChatActionParams) (bool, error) {
	return true, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		texts = append(texts, m.Text)
	}
	return texts
}

type fakePipeline struct {
	mu       sync.Mutex
	requests []domain.Request
	result   domain.SummaryResult
	err      error
}

func (f *fakePipeline) Process(_ context.Context, req domain.Request) (domain.SummaryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	return f.result, f.err
}

func newTestBot(p *fakePipeline, allowed ...int64) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := newBot(sender, p, Options{
		Credential:   "server_key_1234567890",
		AllowedUsers: allowed,
	}, log)
	b.intervals = sendIntervals{}

	return b, sender
}

func message(userID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   1,
		Chat: models.Chat{ID: 42, Type: "private"},
		From: &models.User{ID: userID, Username: "gopher"},
		Text: text,
	}}
}

func TestStartCommand(t *testing.T) {
	b, sender := newTestBot(&fakePipeline{})

	b.handleUpdate(context.Background(), message(7, "/start"))

	texts := sender.texts()
	if len(texts) != 1 || texts[0] != welcomeText {
		t.Fatalf("unexpected messages: %q", texts)
	}

	if sender.messages[0].ParseMode != models.ParseModeMarkdown {
		t.Fatalf("unexpected parse mode: %q", sender.messages[0].ParseMode)
	}
}

func TestDisallowedUserIsIgnored(t *testing.T) {
	p := &fakePipeline{}
	b, sender := newTestBot(p, 1, 2)

	b.handleUpdate(context.Background(), message(7, "https://example.com"))

	if len(sender.texts()) != 0 || len(p.requests) != 0 {
		t.Fatalf("expected disallowed user to be ignored")
	}
}

func TestSummarizesFirstURL(t *testing.T) {
	p := &fakePipeline{result: domain.NewSummaryResult("Gophers dig.", domain.KindWebsite)}
	b, sender := newTestBot(p, 7)

	b.handleUpdate(context.Background(), message(7, "/style executive"))
	b.handleUpdate(context.Background(), message(7, "look at https://example.com/a and https://example.com/b"))

	if len(p.requests) != 1 {
		t.Fatalf("expected one pipeline request, got %d", len(p.requests))
	}

	req := p.requests[0]
	if req.URL != "https://example.com/a" || req.Style != domain.StyleExecutive ||
		req.CallerID != "tg:42" || req.Credential != "server_key_1234567890" {
		t.Fatalf("unexpected request: %+v", req)
	}

	texts := sender.texts()
	last := texts[len(texts)-1]
	if !strings.Contains(last, "Gophers dig\\.") || !strings.Contains(last, "executive") {
		t.Fatalf("unexpected summary message: %q", last)
	}
}

func TestLongSummaryIsPacedPerChat(t *testing.T) {
	const interval = 50 * time.Millisecond

	long := strings.Repeat(strings.Repeat("word ", 100)+"\n", 20)
	p := &fakePipeline{result: domain.NewSummaryResult(long, domain.KindWebsite)}
	b, sender := newTestBot(p)
	b.intervals = sendIntervals{private: interval, group: interval}

	b.handleUpdate(context.Background(), message(7, "https://example.com"))

	sender.mu.Lock()
	defer sender.mu.Unlock()

	if len(sender.sentAt) < 2 {
		t.Fatalf("expected the summary to be split, got %d messages", len(sender.sentAt))
	}

	for i := 1; i < len(sender.sentAt); i++ {
		if gap := sender.sentAt[i].Sub(sender.sentAt[i-1]); gap < interval {
			t.Fatalf("message %d sent %s after the previous one, want at least %s", i, gap, interval)
		}
	}
}

func TestWaitSendSlotStopsOnContextDone(t *testing.T) {
	b, _ := newTestBot(&fakePipeline{})
	b.intervals = sendIntervals{private: time.Hour, group: time.Hour}

	if err := b.waitSendSlot(context.Background(), 42); err != nil {
		t.Fatalf("expected the first slot to be free, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := b.waitSendSlot(ctx, 42); err == nil {
		t.Fatalf("expected the second slot to wait past the deadline")
	}

	if err := b.waitSendSlot(context.Background(), 43); err != nil {
		t.Fatalf("expected another chat to be independent, got %v", err)
	}
}

func TestSendIntervalsForChat(t *testing.T) {
	i := sendIntervals{private: privateChatSendInterval, group: groupChatSendInterval}

	if i.forChat(42) != time.Second || i.forChat(-100123) != 3*time.Second {
		t.Fatalf("unexpected intervals: %s, %s", i.forChat(42), i.forChat(-100123))
	}
}

func TestTextWithoutURL(t *testing.T) {
	p := &fakePipeline{}
	b, sender := newTestBot(p)

	b.handleUpdate(context.Background(), message(7, "hello there"))

	texts := sender.texts()
	if len(texts) != 1 || texts[0] != noURLText || len(p.requests) != 0 {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestUnknownStyle(t *testing.T) {
	b, sender := newTestBot(&fakePipeline{})

	b.handleUpdate(context.Background(), message(7, "/style poetic"))

	if b.chatStyle(42) != domain.StyleBalanced {
		t.Fatalf("expected style to stay balanced")
	}

	if texts := sender.texts(); len(texts) != 1 || !strings.Contains(texts[0], "Unknown style") {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestReportsPipelineErrors(t *testing.T) {
	p := &fakePipeline{err: apperr.RateLimited(30)}
	b, sender := newTestBot(p)

	b.handleUpdate(context.Background(), message(7, "https://example.com"))

	texts := sender.texts()
	if len(texts) != 1 || !strings.Contains(texts[0], "Try again in 30 seconds\\.") {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestFormatErrorHidesInternalCause(t *testing.T) {
	got := formatError(apperr.Internal("An unexpected error occurred", io.ErrUnexpectedEOF))

	if strings.Contains(got, "EOF") {
		t.Fatalf("internal cause leaked: %q", got)
	}
}

func TestSplitMessagesShortText(t *testing.T) {
	messages := splitMessages("header\n\n", "one\ntwo", telegramMessageMaxLength)

	if len(messages) != 1 || messages[0] != "header\n\none\ntwo" {
		t.Fatalf("unexpected messages: %q", messages)
	}
}

func TestSplitMessagesRespectsLimit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(40, 200).Draw(rt, "limit")
		lines := rapid.SliceOfN(
			rapid.StringMatching(`[a-z .!_*]{0,300}`), 1, 20).Draw(rt, "lines")
		text := strings.Join(lines, "\n")

		messages := splitMessages("*Head*\n\n", text, limit)

		for _, m := range messages {
			if len(m) > limit {
				rt.Fatalf("message of %d bytes exceeds limit %d", len(m), limit)
			}
			if strings.HasSuffix(m, `\`) && !strings.HasSuffix(m, `\\`) {
				rt.Fatalf("message ends inside an escape sequence: %q", m)
			}
		}

		var letters strings.Builder
		for _, m := range messages {
			for _, r := range m {
				if r >= 'a' && r <= 'z' {
					letters.WriteRune(r)
				}
			}
		}

		var want strings.Builder
		for _, r := range "Head" + strings.TrimSpace(text) {
			if r >= 'a' && r <= 'z' {
				want.WriteRune(r)
			}
		}

		if letters.String() != want.String() {
			rt.Fatalf("content changed while splitting")
		}
	})
}
