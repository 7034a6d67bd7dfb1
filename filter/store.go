package filter

import (
	"strings"
	"sync"
	"time"
)

// DefaultThreshold is how long a user counts as active after talking.
const DefaultThreshold = time.Hour

// FoldFunc case-folds a name, nick or channel. The network is passed
// through so the host can apply per-network casemapping.
type FoldFunc func(network, nick string) string

// FoldASCII is the fallback fold when the host has nothing better.
func FoldASCII(_, nick string) string {
	return strings.ToLower(nick)
}

type record struct {
	at      time.Time
	payload any
}

// TimestampStore maps (network, channel, nick) to the last time the
// nick was seen talking. Records past the threshold are treated as
// absent on every read; Sweep purges them to bound memory.
//
// The zero value is not usable; construct with NewTimestampStore.
type TimestampStore struct {
	mu        sync.Mutex
	threshold time.Duration
	fold      FoldFunc
	now       func() time.Time
	records   map[Key]record
}

func NewTimestampStore(threshold time.Duration, fold FoldFunc, now func() time.Time) *TimestampStore {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if fold == nil {
		fold = FoldASCII
	}
	if now == nil {
		now = time.Now
	}
	return &TimestampStore{
		threshold: threshold,
		fold:      fold,
		now:       now,
		records:   make(map[Key]record),
	}
}

// Threshold returns the activity window.
func (s *TimestampStore) Threshold() time.Duration {
	return s.threshold
}

func (s *TimestampStore) foldKey(key Key) Key {
	key.Channel = s.fold(key.Network, key.Channel)
	key.Nick = s.fold(key.Network, key.Nick)
	return key
}

func (s *TimestampStore) live(r record) bool {
	return s.now().Sub(r.at) < s.threshold
}

// Record unconditionally upserts the key.
func (s *TimestampStore) Record(key Key, at time.Time, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.foldKey(key)] = record{at: at, payload: payload}
}

// Get returns the record if present and not expired. Expired entries
// are left in place; removal is Sweep's job.
func (s *TimestampStore) Get(key Key) (time.Time, any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[s.foldKey(key)]
	if !ok || !s.live(r) {
		return time.Time{}, nil, false
	}
	return r.at, r.payload, true
}

// Pop removes the raw entry if it exists, expired or not, and returns
// it only if it was still live.
func (s *TimestampStore) Pop(key Key) (time.Time, any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folded := s.foldKey(key)
	r, ok := s.records[folded]
	if !ok {
		return time.Time{}, nil, false
	}
	delete(s.records, folded)
	if !s.live(r) {
		return time.Time{}, nil, false
	}
	return r.at, r.payload, true
}

// Rename moves a live record from oldKey to newKey, overwriting
// whatever was there. Rename races are rare and last-write-wins is
// acceptable. No-op when nothing live is stored under oldKey.
func (s *TimestampStore) Rename(oldKey, newKey Key) {
	at, payload, ok := s.Pop(oldKey)
	if !ok {
		return
	}
	s.Record(newKey, at, payload)
}

// Sweep deletes every expired entry and returns how many it removed.
// Idempotent on already-clean state.
func (s *TimestampStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, r := range s.records {
		if !s.live(r) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// Len counts raw entries, expired ones included.
func (s *TimestampStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
