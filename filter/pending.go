package filter

import (
	"sync/atomic"
	"time"
)

// PendingJoinStore holds joins that were suppressed and may be
// replayed later. The payload is the join's original raw fields.
type PendingJoinStore struct {
	*TimestampStore
	emitting atomic.Bool
}

func NewPendingJoinStore(threshold time.Duration, fold FoldFunc, now func() time.Time) *PendingJoinStore {
	return &PendingJoinStore{
		TimestampStore: NewTimestampStore(threshold, fold, now),
	}
}

// Add stores a suppressed join for later replay.
func (s *PendingJoinStore) Add(key Key, at time.Time, fields JoinFields) {
	s.Record(key, at, fields)
}

// Fields returns the stored join fields, if a live entry exists.
func (s *PendingJoinStore) Fields(key Key) (JoinFields, bool) {
	_, payload, ok := s.Get(key)
	if !ok {
		return JoinFields{}, false
	}
	fields, ok := payload.(JoinFields)
	return fields, ok
}

// Rename moves the entry and relabels the stored nick, so a replayed
// join shows the user's current nick rather than the one they joined
// with.
func (s *PendingJoinStore) Rename(oldKey, newKey Key) {
	at, payload, ok := s.Pop(oldKey)
	if !ok {
		return
	}
	fields, ok := payload.(JoinFields)
	if !ok {
		return
	}
	fields.Nick = newKey.Nick
	s.Record(newKey, at, fields)
}

// Drop discards a pending join without replaying it. Returns the
// dropped fields, if any, so the caller can log them.
func (s *PendingJoinStore) Drop(key Key) (JoinFields, bool) {
	_, payload, ok := s.Pop(key)
	if !ok {
		return JoinFields{}, false
	}
	fields, ok := payload.(JoinFields)
	return fields, ok
}

// Emitting reports whether a replay is in flight. Join handling must
// pass events through while this is true, or the replay would
// suppress itself.
func (s *PendingJoinStore) Emitting() bool {
	return s.emitting.Load()
}

// PopAndEmit removes the pending join and hands it to emit with its
// original timestamp. The emitting guard is held for the duration of
// the call and released even if emit panics.
func (s *PendingJoinStore) PopAndEmit(key Key, emit func(fields JoinFields, at time.Time)) bool {
	at, payload, ok := s.Pop(key)
	if !ok {
		return false
	}
	fields, ok := payload.(JoinFields)
	if !ok {
		return false
	}

	s.emitting.Store(true)
	defer s.emitting.Store(false)
	emit(fields, at)
	return true
}
