package filter

// Policy holds the pure suppression decisions. It has no state of its
// own; everything comes from the host and the activity store.
type Policy struct {
	host     Host
	activity *TimestampStore
}

func NewPolicy(host Host, activity *TimestampStore) Policy {
	return Policy{host: host, activity: activity}
}

// IsSelf reports whether nick is our own, per the network's
// case folding.
func (p Policy) IsSelf(network, nick string) bool {
	return p.host.FoldNick(network, nick) == p.host.FoldNick(network, p.host.LocalNick(network))
}

// IsNotify reports notify-list membership.
func (p Policy) IsNotify(nick string) bool {
	return p.host.IsNotify(nick)
}

// HasRecentActivity reports whether the user talked within the
// activity window.
func (p Policy) HasRecentActivity(key Key) bool {
	_, _, ok := p.activity.Get(key)
	return ok
}

// ShouldSuppressModeTarget decides a single nick-targeting mode
// change. Self-issued or self-targeted changes are always shown, as
// are changes against notify-listed users; everyone else is shown
// only while recently active.
func (p Policy) ShouldSuppressModeTarget(network, channel, source, target string) bool {
	if p.IsSelf(network, source) || p.IsSelf(network, target) {
		return false
	}
	if p.IsNotify(target) {
		return false
	}
	return !p.HasRecentActivity(Key{Network: network, Channel: channel, Nick: target})
}
