package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives store expiry deterministically.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testKey(nick string) Key {
	return Key{Network: "libera", Channel: "#go", Nick: nick}
}

func TestStoreRecordAndGet(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	start := clock.Now()
	store.Record(testKey("Bob"), start, "payload")

	clock.Advance(59*time.Minute + 59*time.Second)
	at, payload, ok := store.Get(testKey("Bob"))
	require.True(t, ok)
	assert.Equal(t, start, at)
	assert.Equal(t, "payload", payload)

	clock.Advance(time.Second)
	_, _, ok = store.Get(testKey("Bob"))
	assert.False(t, ok, "record at exactly the threshold must read as absent")
}

func TestStoreGetLeavesExpiredInPlace(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bob"), clock.Now(), nil)
	clock.Advance(2 * time.Hour)

	_, _, ok := store.Get(testKey("Bob"))
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(), "expiry on read must not mutate")

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestStorePopRemovesExpiredToo(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bob"), clock.Now(), nil)
	clock.Advance(2 * time.Hour)

	_, _, ok := store.Pop(testKey("Bob"))
	assert.False(t, ok, "expired entry must not be returned")
	assert.Equal(t, 0, store.Len(), "but the raw entry must be removed")
}

func TestStorePopLive(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	start := clock.Now()
	store.Record(testKey("Bob"), start, 42)

	at, payload, ok := store.Pop(testKey("Bob"))
	require.True(t, ok)
	assert.Equal(t, start, at)
	assert.Equal(t, 42, payload)

	_, _, ok = store.Pop(testKey("Bob"))
	assert.False(t, ok)
}

func TestStoreRename(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	start := clock.Now()
	store.Record(testKey("Bob"), start, "joined")
	store.Rename(testKey("Bob"), testKey("Bobby"))

	_, _, ok := store.Get(testKey("Bob"))
	assert.False(t, ok)

	at, payload, ok := store.Get(testKey("Bobby"))
	require.True(t, ok)
	assert.Equal(t, start, at)
	assert.Equal(t, "joined", payload)
}

func TestStoreRenameExpiredIsNoOp(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bob"), clock.Now(), nil)
	clock.Advance(2 * time.Hour)
	store.Rename(testKey("Bob"), testKey("Bobby"))

	_, _, ok := store.Get(testKey("Bobby"))
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStoreRenameOverwritesTarget(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bobby"), clock.Now(), "old")
	clock.Advance(time.Minute)
	moved := clock.Now()
	store.Record(testKey("Bob"), moved, "new")
	store.Rename(testKey("Bob"), testKey("Bobby"))

	at, payload, ok := store.Get(testKey("Bobby"))
	require.True(t, ok)
	assert.Equal(t, moved, at)
	assert.Equal(t, "new", payload)
}

func TestStoreCaseFolding(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bob"), clock.Now(), nil)
	_, _, ok := store.Get(testKey("bOB"))
	assert.True(t, ok)

	_, _, ok = store.Get(Key{Network: "libera", Channel: "#GO", Nick: "Bob"})
	assert.True(t, ok, "channel casing must not split records")

	_, _, ok = store.Get(Key{Network: "libera", Channel: "#other", Nick: "Bob"})
	assert.False(t, ok, "channel is part of the key")
}

func TestStoreSweepIdempotent(t *testing.T) {
	clock := newFakeClock()
	store := NewTimestampStore(time.Hour, nil, clock.Now)

	store.Record(testKey("Bob"), clock.Now(), nil)
	clock.Advance(30 * time.Minute)
	store.Record(testKey("Alice"), clock.Now(), nil)
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, store.Sweep(), "only Bob has aged out")
	assert.Equal(t, 0, store.Sweep())
	assert.Equal(t, 1, store.Len())
}
