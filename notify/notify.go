// Package notify holds the user's notify list: nicks whose presence
// events are always shown, no matter how quiet they are.
package notify

import (
	"sort"
	"strings"
	"sync"

	"smartfilter/kv"
	"smartfilter/logger"
)

// List is a case-insensitive set of nicks, optionally persisted.
type List struct {
	mu    sync.RWMutex
	store *kv.Store
	nicks map[string]string // folded nick -> nick as entered
	fold  func(string) string
}

// New builds a list backed by store. A nil store keeps the list in
// memory only. Existing entries are loaded from the store.
func New(store *kv.Store, fold func(string) string) *List {
	if fold == nil {
		fold = strings.ToLower
	}
	l := &List{
		store: store,
		nicks: make(map[string]string),
		fold:  fold,
	}

	if store != nil {
		err := store.Fold(func(value []byte) error {
			nick := string(value)
			l.nicks[l.fold(nick)] = nick
			return nil
		})
		if err != nil {
			logger.Error("Failed to load notify list", "error", err)
		}
	}

	return l
}

// Seed adds configured nicks without persisting them, so removing a
// config entry actually removes it on restart.
func (l *List) Seed(nicks []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, nick := range nicks {
		if nick == "" {
			continue
		}
		l.nicks[l.fold(nick)] = nick
	}
}

// Add inserts a nick and persists it.
func (l *List) Add(nick string) error {
	if nick == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.nicks[l.fold(nick)] = nick

	if l.store != nil {
		return l.store.Put(l.fold(nick), []byte(nick))
	}
	return nil
}

// Remove deletes a nick from the list and the store.
func (l *List) Remove(nick string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.nicks, l.fold(nick))

	if l.store != nil && l.store.Has(l.fold(nick)) {
		return l.store.Delete(l.fold(nick))
	}
	return nil
}

// Has reports case-insensitive membership.
func (l *List) Has(nick string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.nicks[l.fold(nick)]
	return ok
}

// All returns the entries as entered, sorted.
func (l *List) All() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := make([]string, 0, len(l.nicks))
	for _, nick := range l.nicks {
		all = append(all, nick)
	}
	sort.Strings(all)
	return all
}
