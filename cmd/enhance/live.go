package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// closablePage is a live page the server owns.
type closablePage interface {
	livePage
	Close()
}

// pageSlot holds the page currently served. A reload swaps it and closes
// the previous page.
type pageSlot struct {
	mu     sync.RWMutex
	page   closablePage
	closed bool
}

// Compile-time interface implementation check.
var _ livePage = (*pageSlot)(nil)

func newPageSlot(page closablePage) *pageSlot {
	return &pageSlot{page: page}
}

func (s *pageSlot) current() livePage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// swap installs page and closes the one it replaces. On a closed slot the
// new page is closed instead.
func (s *pageSlot) swap(page closablePage) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		page.Close()
		return
	}
	old := s.page
	s.page = page
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Close closes the current page. Later swaps close their page at once.
func (s *pageSlot) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	page := s.page
	s.mu.Unlock()

	if page != nil {
		page.Close()
	}
}

func (s *pageSlot) HTML() (string, error) { return s.current().HTML() }

func (s *pageSlot) ImagesLoaded() int { return s.current().ImagesLoaded() }

func (s *pageSlot) ImagesPending() int { return s.current().ImagesPending() }

func (s *pageSlot) ClockHands() (hour, minute float64, ok bool) {
	return s.current().ClockHands()
}

// pageLoader enhances the page file again.
type pageLoader func(ctx context.Context) (closablePage, error)

// reloadPage loads a fresh page into slot and tells the connected browsers.
// A failed load keeps the previous page.
func reloadPage(ctx context.Context, slot *pageSlot, load pageLoader, metrics *serveMetrics, hub *reloadHub, log *zap.Logger) {
	page, err := load(ctx)
	if err != nil {
		metrics.reloaded(false)
		log.Warn("reload failed, keeping previous page", zap.Error(err))
		return
	}
	slot.swap(page)
	metrics.reloaded(true)
	hub.broadcast(reloadMessage)
	log.Info("page reloaded")
}
