package bot

import (
	"context"
	"fmt"
	"time"
)

// Telegram flood limits: one message per second in a private chat, about
// twenty per minute in a group.
const (
	privateChatSendInterval = time.Second
	groupChatSendInterval   = 3 * time.Second
)

// sendIntervals are the minimum gaps between two messages to one chat.
type sendIntervals struct {
	private time.Duration
	group   time.Duration
}

func (i sendIntervals) forChat(chatID int64) time.Duration {
	// Group and channel chat IDs are negative.
	if chatID < 0 {
		return i.group
	}
	return i.private
}

// waitSendSlot reserves the next send slot of chatID and blocks until it
// opens or ctx is done.
func (b *Bot) waitSendSlot(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	now := b.now()
	slot := now
	if next := b.lastSent[chatID].Add(b.intervals.forChat(chatID)); next.After(slot) {
		slot = next
	}
	b.lastSent[chatID] = slot
	b.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}

	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait send slot: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// markSent moves the chat's last send to the moment the API call returned.
func (b *Bot) markSent(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now := b.now(); now.After(b.lastSent[chatID]) {
		b.lastSent[chatID] = now
	}
}
