package filter

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"

	"smartfilter/logger"
)

// ScopeFunc gates the whole engine; events outside scope always pass
// through untouched.
type ScopeFunc func(network, channel string) bool

// ScopeFromLists builds a scope predicate from allow-lists. An empty
// list allows everything; matching is case-insensitive.
func ScopeFromLists(networks, channels []string) ScopeFunc {
	contains := func(list []string, value string) bool {
		if len(list) == 0 {
			return true
		}
		for _, entry := range list {
			if strings.EqualFold(entry, value) {
				return true
			}
		}
		return false
	}
	return func(network, channel string) bool {
		return contains(networks, network) && contains(channels, channel)
	}
}

// Router is the per-event entry point. It owns no connection state;
// the host feeds it translated events and acts on the verdicts.
type Router struct {
	host     Host
	activity *TimestampStore
	pending  *PendingJoinStore
	policy   Policy
	scope    ScopeFunc
	now      func() time.Time
}

func NewRouter(host Host, activity *TimestampStore, pending *PendingJoinStore, scope ScopeFunc) *Router {
	if scope == nil {
		scope = func(string, string) bool { return true }
	}
	return &Router{
		host:     host,
		activity: activity,
		pending:  pending,
		policy:   NewPolicy(host, activity),
		scope:    scope,
		now:      time.Now,
	}
}

func (r *Router) at(t time.Time) time.Time {
	if t.IsZero() {
		return r.now()
	}
	return t
}

// Message marks the speaker active and, if a join is pending for
// them, replays it through the host. Messages themselves always pass
// through.
func (r *Router) Message(ev MessageEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}

	key := Key{Network: ev.Network, Channel: ev.Channel, Nick: ev.Nick}
	r.activity.Record(key, r.at(ev.At), nil)

	r.pending.PopAndEmit(key, func(fields JoinFields, at time.Time) {
		logger.Channel(ev.Network, ev.Channel).Debug("Replaying deferred join",
			"nick", fields.Nick, "id", fields.ID)
		r.host.EmitJoin(ev.Network, ev.Channel, fields, at)
	})

	return PassThrough
}

// Join suppresses joins by users with no recent activity and parks
// them for a possible replay. Notify-listed users always show, as
// does a replay in flight.
func (r *Router) Join(ev JoinEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}
	if r.pending.Emitting() {
		return PassThrough
	}

	nick := ev.Fields.Nick
	if r.policy.IsNotify(nick) {
		return PassThrough
	}

	key := Key{Network: ev.Network, Channel: ev.Channel, Nick: nick}
	if r.policy.HasRecentActivity(key) {
		return PassThrough
	}

	fields := ev.Fields
	if fields.ID == uuid.Nil {
		fields.ID = uuid.New()
	}
	r.pending.Add(key, r.at(ev.At), fields)
	logger.Channel(ev.Network, ev.Channel).Debug("Deferring join",
		"nick", nick, "id", fields.ID)

	return Suppress
}

// Part suppresses parts by inactive users and discards any pending
// join: a join immediately followed by a part stays fully hidden.
// The activity record is deliberately kept, so a quick rejoin by a
// previously-active user still shows.
func (r *Router) Part(ev PartEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}
	if r.policy.IsNotify(ev.Nick) {
		return PassThrough
	}

	key := Key{Network: ev.Network, Channel: ev.Channel, Nick: ev.Nick}
	if fields, ok := r.pending.Drop(key); ok {
		logger.Channel(ev.Network, ev.Channel).Debug("Dropping deferred join on part",
			"nick", ev.Nick, "id", fields.ID)
	}

	if r.policy.HasRecentActivity(key) {
		return PassThrough
	}
	return Suppress
}

// Quit has part semantics; the host fans a quit out per shared
// channel.
func (r *Router) Quit(ev QuitEvent) Verdict {
	return r.Part(PartEvent{
		Network: ev.Network,
		Channel: ev.Channel,
		Nick:    ev.Nick,
		Reason:  ev.Reason,
	})
}

// NickChange moves both stores to the new nick, then decides
// visibility. The old nick's liveness is captured before the rename;
// after it, the moved record makes the new-key lookup live, so
// renames of active users always show.
func (r *Router) NickChange(ev NickEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}

	oldKey := Key{Network: ev.Network, Channel: ev.Channel, Nick: ev.OldNick}
	newKey := Key{Network: ev.Network, Channel: ev.Channel, Nick: ev.NewNick}

	oldActive := r.policy.HasRecentActivity(oldKey)
	r.activity.Rename(oldKey, newKey)
	r.pending.Rename(oldKey, newKey)

	if r.policy.IsNotify(ev.OldNick) || r.policy.IsNotify(ev.NewNick) {
		return PassThrough
	}
	if oldActive || r.policy.HasRecentActivity(newKey) {
		return PassThrough
	}
	return Suppress
}

// Mode is the single-target path (op, voice and friends).
func (r *Router) Mode(ev ModeEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}
	if r.policy.ShouldSuppressModeTarget(ev.Network, ev.Channel, ev.Source, ev.Target) {
		return Suppress
	}
	return PassThrough
}

// RawMode decides a whole raw mode string. It suppresses only when
// every triple targets a suppressible nick; any channel-level flag,
// ban, key or limit change, any unknown letter and any malformed
// string forces visibility.
func (r *Router) RawMode(ev RawModeEvent) Verdict {
	if !r.scope(ev.Network, ev.Channel) {
		return PassThrough
	}
	if r.policy.IsSelf(ev.Network, ev.Source) {
		return PassThrough
	}

	snapshot, ok := r.host.ChannelSnapshot(ev.Network, ev.Channel)
	if !ok {
		logger.Channel(ev.Network, ev.Channel).Debug("No channel snapshot, showing raw mode")
		return PassThrough
	}

	schema := NewModeSchema(snapshot.PrefixLetters, snapshot.ChanModes)
	changes, err := schema.Walk(ev.Args)
	if err != nil {
		logger.Channel(ev.Network, ev.Channel).Warn("Malformed mode string, showing it",
			"args", ev.Args, "error", err)
		return PassThrough
	}
	if len(changes) == 0 {
		return PassThrough
	}

	for _, change := range changes {
		if !change.NickTarget {
			return PassThrough
		}
		if !r.policy.ShouldSuppressModeTarget(ev.Network, ev.Channel, ev.Source, change.Arg) {
			return PassThrough
		}
	}
	return Suppress
}

// Sweep purges expired records from both stores.
func (r *Router) Sweep() {
	removed := r.activity.Sweep() + r.pending.Sweep()
	if removed > 0 {
		logger.Debug("Swept expired activity records",
			"removed", removed,
			"olderThan", durafmt.Parse(r.activity.Threshold()).String())
	}
}
