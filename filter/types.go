// Package filter decides which IRC presence events are worth showing.
// Joins, parts, quits, renames and mode changes about users that have
// not talked recently are suppressed; a suppressed join is replayed
// with its original timestamp once the user speaks.
package filter

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is what a handler tells the host to do with an event.
type Verdict int

const (
	PassThrough Verdict = iota
	Suppress
)

func (v Verdict) String() string {
	if v == Suppress {
		return "suppress"
	}
	return "passthrough"
}

// Key identifies one user in one channel on one network. The nick
// component is case-folded by the stores on every access.
type Key struct {
	Network string
	Channel string
	Nick    string
}

// JoinFields carries the raw join event so it can be replayed later.
// The ID ties the deferred join's store, replay and drop log lines
// together.
type JoinFields struct {
	Nick     string
	Ident    string
	Host     string
	Account  string
	Realname string
	ID       uuid.UUID
}

// Snapshot is the channel's current mode classification as reported by
// the server's ISUPPORT.
type Snapshot struct {
	// PrefixLetters are the mode letters that grant nick prefixes
	// (e.g. "qaohv"); each always takes a nick argument.
	PrefixLetters string
	// ChanModes is the raw comma-joined CHANMODES value
	// (e.g. "beI,k,l,imnpst").
	ChanModes string
}

// Host is everything the engine needs from the surrounding client.
type Host interface {
	// LocalNick returns our current nick on the network.
	LocalNick(network string) string
	// IsNotify reports case-insensitive notify-list membership.
	IsNotify(nick string) bool
	// ChannelSnapshot returns the channel's mode classification, or
	// ok=false when the channel is unknown.
	ChannelSnapshot(network, channel string) (Snapshot, bool)
	// FoldNick case-folds a nick per the network's casemapping.
	FoldNick(network, nick string) string
	// EmitJoin presents a synthetic join as if received at the given
	// time. It must not re-enter the suppression logic for this event.
	EmitJoin(network, channel string, fields JoinFields, at time.Time)
}

// Event payloads, one named struct per handler. The host translates
// its wire events into these once, at the boundary.

type MessageEvent struct {
	Network string
	Channel string
	Nick    string
	Action  bool
	At      time.Time
}

type JoinEvent struct {
	Network string
	Channel string
	Fields  JoinFields
	At      time.Time
}

type PartEvent struct {
	Network string
	Channel string
	Nick    string
	Reason  string
}

type QuitEvent struct {
	Network string
	Channel string
	Nick    string
	Reason  string
}

type NickEvent struct {
	Network string
	Channel string
	OldNick string
	NewNick string
}

// ModeEvent is a single-target mode change (op, voice and friends).
type ModeEvent struct {
	Network string
	Channel string
	Source  string
	Target  string
}

// RawModeEvent is an undigested mode change: Args is everything after
// the channel name, e.g. "+ov-b Alice Bob mask!*@*".
type RawModeEvent struct {
	Network string
	Channel string
	Source  string
	Args    string
}
