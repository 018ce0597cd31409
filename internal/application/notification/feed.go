package notification

import (
	"sync"

	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
)

const DefaultFeedSize = 50

// Feed keeps the most recent notifications, oldest first.
type Feed struct {
	mu    sync.RWMutex
	items []domnotification.Notification
	size  int
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, items: make([]domnotification.Notification, 0, size)}
}

// Append adds n, evicting the oldest entry once the feed is full.
func (f *Feed) Append(n domnotification.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.size {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Recent returns up to limit entries, newest last. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []domnotification.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(f.items) {
		start = len(f.items) - limit
	}
	out := make([]domnotification.Notification, len(f.items)-start)
	copy(out, f.items[start:])
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}
