package irc

import (
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/girc"

	"smartfilter/filter"
	"smartfilter/notify"
	"smartfilter/replay"
)

// Defaults used until the server's ISUPPORT has arrived.
const (
	defaultPrefix    = "(ov)@+"
	defaultChanModes = "beI,k,l,imnpst"
)

// Host adapts girc clients to the engine's collaborator contract. One
// Host serves every network; connections register themselves as they
// come up.
type Host struct {
	mu         sync.RWMutex
	notify     *notify.List
	transcript *Transcript
	networks   map[string]*connection
}

type connection struct {
	client *girc.Client
	replay *replay.Queue
}

func NewHost(notifyList *notify.List, transcript *Transcript) *Host {
	return &Host{
		notify:     notifyList,
		transcript: transcript,
		networks:   make(map[string]*connection),
	}
}

func (h *Host) register(network string, client *girc.Client, queue *replay.Queue) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.networks[network] = &connection{client: client, replay: queue}
}

func (h *Host) lookup(network string) *connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.networks[network]
}

// LocalNick returns our current nick on the network, empty before the
// connection exists.
func (h *Host) LocalNick(network string) string {
	conn := h.lookup(network)
	if conn == nil {
		return ""
	}
	return conn.client.GetNick()
}

// IsNotify reports notify-list membership.
func (h *Host) IsNotify(nick string) bool {
	return h.notify.Has(nick)
}

// ChannelSnapshot builds the engine's mode classification from the
// server's ISUPPORT. ok is false when we do not know the channel,
// which makes the engine fail open.
func (h *Host) ChannelSnapshot(network, channel string) (filter.Snapshot, bool) {
	conn := h.lookup(network)
	if conn == nil {
		return filter.Snapshot{}, false
	}
	if conn.client.LookupChannel(channel) == nil {
		return filter.Snapshot{}, false
	}

	prefix, ok := conn.client.GetServerOption("PREFIX")
	if !ok || prefix == "" {
		prefix = defaultPrefix
	}
	chanModes, ok := conn.client.GetServerOption("CHANMODES")
	if !ok || chanModes == "" {
		chanModes = defaultChanModes
	}

	return filter.Snapshot{
		PrefixLetters: prefixLetters(prefix),
		ChanModes:     chanModes,
	}, true
}

// FoldNick folds per the network's advertised CASEMAPPING.
func (h *Host) FoldNick(network, nick string) string {
	casemapping := ""
	if conn := h.lookup(network); conn != nil {
		casemapping, _ = conn.client.GetServerOption("CASEMAPPING")
	}
	return foldNick(casemapping, nick)
}

// EmitJoin queues a backfilled join for rendering once the current
// event's own line is out.
func (h *Host) EmitJoin(network, channel string, fields filter.JoinFields, at time.Time) {
	conn := h.lookup(network)
	if conn == nil {
		h.transcript.Join(network, channel, fields, at, true)
		return
	}
	conn.replay.Push(func() {
		h.transcript.Join(network, channel, fields, at, true)
	})
}

// Casefold folds per plain rfc1459, for callers with no network at
// hand. Per-network folding goes through Host.FoldNick.
func Casefold(nick string) string {
	return foldNick("", nick)
}

// prefixLetters pulls the mode letters out of an ISUPPORT PREFIX
// value like "(ov)@+".
func prefixLetters(prefix string) string {
	if !strings.HasPrefix(prefix, "(") {
		return prefix
	}
	end := strings.IndexByte(prefix, ')')
	if end < 0 {
		return ""
	}
	return prefix[1:end]
}

// foldNick implements the common CASEMAPPING rules. rfc1459 folds
// []\~ onto {}|^ in addition to ASCII; strict-rfc1459 leaves ~ alone.
func foldNick(casemapping, nick string) string {
	rfc := false
	strict := false
	switch casemapping {
	case "ascii":
	case "strict-rfc1459":
		rfc, strict = true, true
	default: // rfc1459, also the fallback when ISUPPORT is missing
		rfc = true
	}

	folded := []byte(strings.ToLower(nick))
	if !rfc {
		return string(folded)
	}
	for i, c := range folded {
		switch c {
		case '[':
			folded[i] = '{'
		case ']':
			folded[i] = '}'
		case '\\':
			folded[i] = '|'
		case '~':
			if !strict {
				folded[i] = '^'
			}
		}
	}
	return string(folded)
}
