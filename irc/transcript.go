package irc

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hako/durafmt"
	"github.com/lrstanley/girc"

	"smartfilter/filter"
)

// Transcript renders the filtered event stream. One instance is
// shared by every network connection; lines go to stdout so the
// transcript can be piped or teed away from the logs.
type Transcript struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTranscript(out io.Writer) *Transcript {
	return &Transcript{out: out}
}

func (t *Transcript) line(at time.Time, network, channel, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s [%s/%s] %s\n", at.Format("15:04:05"), network, channel, girc.Fmt(text))
}

func (t *Transcript) Message(network, channel, nick, text string, action bool, at time.Time) {
	if action {
		t.line(at, network, channel, fmt.Sprintf("{b}*{b} %s %s", nick, text))
		return
	}
	t.line(at, network, channel, fmt.Sprintf("{b}<%s>{b} %s", nick, text))
}

// Join renders a join line. Backfilled joins carry their original
// timestamp plus how long ago that was, so the transcript reads
// correctly even though the line appears late.
func (t *Transcript) Join(network, channel string, fields filter.JoinFields, at time.Time, backfilled bool) {
	text := fmt.Sprintf("{green}-->{c} %s (%s@%s) has joined %s", fields.Nick, fields.Ident, fields.Host, channel)
	if fields.Account != "" {
		text += fmt.Sprintf(" [%s]", fields.Account)
	}
	if backfilled {
		text += fmt.Sprintf(" {grey}(%s ago){c}", ago(at))
	}
	t.line(at, network, channel, text)
}

func (t *Transcript) Part(network, channel, nick, reason string, at time.Time) {
	text := fmt.Sprintf("{red}<--{c} %s has left %s", nick, channel)
	if reason != "" {
		text += fmt.Sprintf(" (%s)", reason)
	}
	t.line(at, network, channel, text)
}

func (t *Transcript) Quit(network, channel, nick, reason string, at time.Time) {
	text := fmt.Sprintf("{red}<--{c} %s has quit", nick)
	if reason != "" {
		text += fmt.Sprintf(" (%s)", reason)
	}
	t.line(at, network, channel, text)
}

func (t *Transcript) Nick(network, channel, oldNick, newNick string, at time.Time) {
	t.line(at, network, channel, fmt.Sprintf("{cyan}--{c} %s is now known as %s", oldNick, newNick))
}

func (t *Transcript) Mode(network, channel, source, args string, at time.Time) {
	t.line(at, network, channel, fmt.Sprintf("{cyan}--{c} %s sets mode %s", source, args))
}

func ago(at time.Time) string {
	since := time.Since(at)
	if since < time.Second {
		since = time.Second
	}
	return durafmt.Parse(since.Truncate(time.Second)).LimitFirstN(2).String()
}
