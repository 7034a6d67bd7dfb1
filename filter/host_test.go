package filter

import (
	"strings"
	"time"
)

// fakeHost is the collaborator double shared by the policy and router
// tests.
type fakeHost struct {
	nick        string
	notify      map[string]bool
	snapshot    Snapshot
	hasSnapshot bool
	emitted     []emittedJoin
	// onEmit, when set, runs inside EmitJoin so tests can simulate a
	// synthetic emission re-entering the router.
	onEmit func(fields JoinFields, at time.Time)
}

type emittedJoin struct {
	network string
	channel string
	fields  JoinFields
	at      time.Time
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		nick:   "me",
		notify: make(map[string]bool),
		snapshot: Snapshot{
			PrefixLetters: "ov",
			ChanModes:     "b,k,l,imnpst",
		},
		hasSnapshot: true,
	}
}

func (h *fakeHost) LocalNick(string) string {
	return h.nick
}

func (h *fakeHost) IsNotify(nick string) bool {
	return h.notify[strings.ToLower(nick)]
}

func (h *fakeHost) ChannelSnapshot(string, string) (Snapshot, bool) {
	return h.snapshot, h.hasSnapshot
}

func (h *fakeHost) FoldNick(_, nick string) string {
	return strings.ToLower(nick)
}

func (h *fakeHost) EmitJoin(network, channel string, fields JoinFields, at time.Time) {
	h.emitted = append(h.emitted, emittedJoin{network: network, channel: channel, fields: fields, at: at})
	if h.onEmit != nil {
		h.onEmit(fields, at)
	}
}

func (h *fakeHost) addNotify(nick string) {
	h.notify[strings.ToLower(nick)] = true
}
