package notifications

import (
	"encoding/json"
	"sync"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/models"
)

// DefaultFeedSize is how many live notifications the feed keeps.
const DefaultFeedSize = 50

// Feed keeps the most recent notifications pushed by the socket, newest first.
type Feed struct {
	mu        sync.RWMutex
	items     []models.Notification
	next      int
	full      bool
	connected bool
	unread    int
}

// NewFeed returns a feed holding at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{items: make([]models.Notification, size)}
}

// Attach subscribes the feed to channel events. Unsubscribe the handles to detach it.
func (f *Feed) Attach(ch *Channel) []*Subscription {
	return []*Subscription{
		ch.On(enums.EventNotification, func(e Event) {
			var n models.Notification
			if err := json.Unmarshal(e.Data, &n); err == nil {
				f.Push(n)
			}
		}),
		ch.On(enums.EventNotifications, func(e Event) {
			var batch []models.Notification
			if err := json.Unmarshal(e.Data, &batch); err == nil {
				for _, n := range batch {
					f.Push(n)
				}
			}
		}),
		ch.On(enums.EventConnected, func(e Event) {
			f.mu.Lock()
			f.connected = e.Connected
			f.mu.Unlock()
		}),
	}
}

// Push records n, replacing an entry with the same id.
func (f *Feed) Push(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID != 0 {
		for i := range f.items {
			if f.items[i].ID == n.ID && f.isSet(i) {
				if f.items[i].Lu != n.Lu {
					f.adjustUnread(n.Lu)
				}
				f.items[i] = n
				return
			}
		}
	}
	if f.full && !f.items[f.next].Lu {
		f.unread--
	}
	f.items[f.next] = n
	if !n.Lu {
		f.unread++
	}
	f.next = (f.next + 1) % len(f.items)
	if f.next == 0 {
		f.full = true
	}
}

// MarkRead flags the entry with id as read. It reports whether the entry was found.
func (f *Feed) MarkRead(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.isSet(i) {
			if !f.items[i].Lu {
				f.items[i].Lu = true
				f.unread--
			}
			return true
		}
	}
	return false
}

// MarkAllRead flags every entry as read.
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].Lu = true
	}
	f.unread = 0
}

// Recent returns up to limit notifications, newest first. limit <= 0 returns all of them.
func (f *Feed) Recent(limit int) []models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := f.next
	if f.full {
		count = len(f.items)
	}
	if limit <= 0 || limit > count {
		limit = count
	}
	out := make([]models.Notification, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.items)) % len(f.items)
		out = append(out, f.items[idx])
	}
	return out
}

func (f *Feed) Unread() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.unread
}

// Connected reports the last connection state seen on the channel.
func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *Feed) isSet(i int) bool {
	return f.full || i < f.next
}

func (f *Feed) adjustUnread(nowRead bool) {
	if nowRead {
		f.unread--
		return
	}
	f.unread++
}
