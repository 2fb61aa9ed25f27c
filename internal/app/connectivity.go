package app

import (
	"context"
	"log"
	"sync"
	"time"
)

// ConnectivityMonitor tracks whether the remote side is reachable and fires
// handlers on every offline→online edge. Online→offline edges fire nothing.
type ConnectivityMonitor struct {
	mu       sync.Mutex
	online   bool
	handlers []func(context.Context)
}

func NewConnectivityMonitor(initiallyOnline bool) *ConnectivityMonitor {
	return &ConnectivityMonitor{online: initiallyOnline}
}

// IsOnline is a point-in-time read of the connectivity state.
func (m *ConnectivityMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnBecameOnline registers a handler for offline→online transitions.
// Platforms may emit redundant signals, so handlers must be safe to run with nothing to do.
func (m *ConnectivityMonitor) OnBecameOnline(handler func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// SetOnline applies a platform connectivity signal. Handlers run synchronously
// on the caller's goroutine, outside the lock.
func (m *ConnectivityMonitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	var handlers []func(context.Context)
	if online && !wasOnline {
		handlers = append(handlers, m.handlers...)
	}
	m.mu.Unlock()

	if wasOnline != online {
		log.Printf("connectivity changed: online=%v", online)
	}
	for _, h := range handlers {
		h(ctx)
	}
}

// Run polls probe every interval until ctx is done, feeding the result into SetOnline.
func (m *ConnectivityMonitor) Run(ctx context.Context, probe Probe, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		err := probe(probeCtx)
		cancel()
		if err != nil && m.IsOnline() {
			log.Printf("connectivity probe failed: %v", err)
		}
		m.SetOnline(ctx, err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
