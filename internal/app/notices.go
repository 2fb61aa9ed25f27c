package app

import (
	"log"
	"sync"
	"time"

	"quiz-intake-service/internal/domain"
)

// NoticeBoard fans user-visible notices out to subscribers (websocket clients).
type NoticeBoard struct {
	now         func() time.Time
	mu          sync.Mutex
	subscribers map[chan domain.Notice]struct{}
}

func NewNoticeBoard() *NoticeBoard {
	return NewNoticeBoardWithClock(time.Now)
}

// NewNoticeBoardWithClock allows deterministic timestamps in tests.
func NewNoticeBoardWithClock(now func() time.Time) *NoticeBoard {
	return &NoticeBoard{
		now:         now,
		subscribers: make(map[chan domain.Notice]struct{}),
	}
}

// Post stamps and broadcasts a notice, returning it.
func (b *NoticeBoard) Post(level domain.NoticeLevel, message string) domain.Notice {
	notice := domain.Notice{Level: level, Message: message, At: b.now()}
	log.Printf("notice [%s] %s", level, message)

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- notice:
		default:
			// Drop the oldest queued notice so a slow client never blocks the poster.
			select {
			case <-ch:
			default:
			}
			ch <- notice
		}
	}
	return notice
}

// Subscribe returns a channel of notices. The caller must invoke the returned
// cancel function to avoid leaks.
func (b *NoticeBoard) Subscribe() (<-chan domain.Notice, func()) {
	ch := make(chan domain.Notice, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
