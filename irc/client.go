package irc

import (
	"crypto/tls"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/girc"

	"smartfilter/filter"
	"smartfilter/logger"
	"smartfilter/notify"
	"smartfilter/replay"
	"smartfilter/settings"
)

const reconnectDelay = 30 * time.Second

// Connection runs one network: it owns the girc client, translates
// events for the router and renders whatever passes through.
type Connection struct {
	network    string
	cfg        settings.Network
	router     *filter.Router
	host       *Host
	transcript *Transcript
	notify     *notify.List
	managers   []string
	replay     *replay.Queue
	client     *girc.Client
}

// Run connects to the network and keeps reconnecting until the
// process exits. Launched once per enabled network.
func Run(network string, cfg settings.Network, router *filter.Router, host *Host, transcript *Transcript, notifyList *notify.List, managers []string, wg *sync.WaitGroup) {
	defer wg.Done()

	conn := &Connection{
		network:    network,
		cfg:        cfg,
		router:     router,
		host:       host,
		transcript: transcript,
		notify:     notifyList,
		managers:   managers,
		replay:     replay.New(),
	}
	conn.run()
}

func (cn *Connection) run() {
	log := logger.Network(cn.network)

	for {
		server := cn.cfg.GetRandomServer()
		if server == nil {
			log.Error("No servers configured")
			return
		}

		conf := girc.Config{
			Server: server.Host,
			Port:   server.Port,
			Nick:   cn.cfg.Nick,
			User:   orDefault(cn.cfg.User, cn.cfg.Nick),
			Name:   orDefault(cn.cfg.Name, cn.cfg.Nick),
			SSL:    server.SSL,
		}
		if server.SSL {
			conf.TLSConfig = &tls.Config{
				ServerName:         server.Host,
				InsecureSkipVerify: server.SkipSslVerify,
			}
		}
		if cn.cfg.Version != "" {
			conf.Version = cn.cfg.Version
		}

		cn.client = girc.New(conf)
		cn.registerHandlers(cn.client)
		cn.host.register(cn.network, cn.client, cn.replay)

		log.Info("Connecting", "server", server.Host, "port", server.Port, "ssl", server.SSL)
		if err := cn.client.Connect(); err != nil {
			log.Error("Connection lost", "error", err)
		}

		log.Info("Reconnecting", "delay", reconnectDelay.String())
		time.Sleep(reconnectDelay)
	}
}

func (cn *Connection) registerHandlers(client *girc.Client) {
	client.Handlers.Add(girc.CONNECTED, cn.onConnected)
	client.Handlers.Add(girc.PRIVMSG, cn.onPrivmsg)
	client.Handlers.Add(girc.JOIN, cn.onJoin)
	client.Handlers.Add(girc.PART, cn.onPart)
	client.Handlers.Add(girc.QUIT, cn.onQuit)
	client.Handlers.Add(girc.NICK, cn.onNick)
	client.Handlers.Add(girc.MODE, cn.onMode)
}

func (cn *Connection) onConnected(c *girc.Client, e girc.Event) {
	logger.Network(cn.network).Info("Connected", "nick", c.GetNick())
	for _, channel := range cn.cfg.Channels {
		c.Cmd.Join(channel)
	}
}

func (cn *Connection) onPrivmsg(c *girc.Client, e girc.Event) {
	if e.Source == nil {
		return
	}
	if e.IsFromUser() {
		cn.handleCommand(c, e)
		return
	}
	if !e.IsFromChannel() || len(e.Params) == 0 {
		return
	}

	channel := e.Params[0]
	text := e.Last()
	action := e.IsAction()
	if action {
		text = e.StripAction()
	}
	at := eventTime(e)

	verdict := cn.router.Message(filter.MessageEvent{
		Network: cn.network,
		Channel: channel,
		Nick:    e.Source.Name,
		Action:  action,
		At:      at,
	})
	if verdict == filter.PassThrough {
		cn.transcript.Message(cn.network, channel, e.Source.Name, text, action, at)
	}

	// The deferred join, if the router queued one, appears after the
	// message that triggered it.
	cn.replay.Drain()
}

func (cn *Connection) onJoin(c *girc.Client, e girc.Event) {
	if e.Source == nil || len(e.Params) == 0 {
		return
	}
	channel := e.Params[0]
	at := eventTime(e)

	fields := filter.JoinFields{
		Nick:  e.Source.Name,
		Ident: e.Source.Ident,
		Host:  e.Source.Host,
	}
	// extended-join carries account and realname
	if len(e.Params) >= 3 {
		if e.Params[1] != "*" {
			fields.Account = e.Params[1]
		}
		fields.Realname = e.Last()
	}

	if strings.EqualFold(e.Source.Name, c.GetNick()) {
		cn.transcript.Join(cn.network, channel, fields, at, false)
		return
	}

	verdict := cn.router.Join(filter.JoinEvent{
		Network: cn.network,
		Channel: channel,
		Fields:  fields,
		At:      at,
	})
	if verdict == filter.PassThrough {
		cn.transcript.Join(cn.network, channel, fields, at, false)
	}
}

func (cn *Connection) onPart(c *girc.Client, e girc.Event) {
	if e.Source == nil || len(e.Params) == 0 {
		return
	}
	channel := e.Params[0]
	reason := ""
	if len(e.Params) > 1 {
		reason = e.Last()
	}
	at := eventTime(e)

	if strings.EqualFold(e.Source.Name, c.GetNick()) {
		cn.transcript.Part(cn.network, channel, e.Source.Name, reason, at)
		return
	}

	verdict := cn.router.Part(filter.PartEvent{
		Network: cn.network,
		Channel: channel,
		Nick:    e.Source.Name,
		Reason:  reason,
	})
	if verdict == filter.PassThrough {
		cn.transcript.Part(cn.network, channel, e.Source.Name, reason, at)
	}
}

// sharedChannels returns the channels girc's state says we share with
// the user. When the user is not tracked yet, every configured channel
// is a candidate; the router's activity check still gates each one.
func (cn *Connection) sharedChannels(user *girc.User) []string {
	if user != nil && len(user.ChannelList) > 0 {
		return user.ChannelList
	}
	return cn.cfg.Channels
}

// Quits carry no channel, so they fan out over the channels the user
// shares with us; the per-channel activity check hides the line
// everywhere the user was quiet.
func (cn *Connection) onQuit(c *girc.Client, e girc.Event) {
	if e.Source == nil {
		return
	}
	reason := ""
	if len(e.Params) > 0 {
		reason = e.Last()
	}
	at := eventTime(e)

	for _, channel := range cn.sharedChannels(c.LookupUser(e.Source.Name)) {
		verdict := cn.router.Quit(filter.QuitEvent{
			Network: cn.network,
			Channel: channel,
			Nick:    e.Source.Name,
			Reason:  reason,
		})
		if verdict == filter.PassThrough {
			cn.transcript.Quit(cn.network, channel, e.Source.Name, reason, at)
		}
	}
}

func (cn *Connection) onNick(c *girc.Client, e girc.Event) {
	if e.Source == nil || len(e.Params) == 0 {
		return
	}
	oldNick := e.Source.Name
	newNick := e.Last()
	at := eventTime(e)

	// State may already track the user under either nick.
	user := c.LookupUser(newNick)
	if user == nil {
		user = c.LookupUser(oldNick)
	}

	for _, channel := range cn.sharedChannels(user) {
		verdict := cn.router.NickChange(filter.NickEvent{
			Network: cn.network,
			Channel: channel,
			OldNick: oldNick,
			NewNick: newNick,
		})
		if verdict == filter.PassThrough {
			cn.transcript.Nick(cn.network, channel, oldNick, newNick, at)
		}
	}
}

func (cn *Connection) onMode(c *girc.Client, e girc.Event) {
	if e.Source == nil || len(e.Params) < 2 {
		return
	}
	target := e.Params[0]
	args := strings.Join(e.Params[1:], " ")
	at := eventTime(e)

	// User-mode changes (target is a nick, usually ourselves) are not
	// channel noise; show them.
	if !strings.HasPrefix(target, "#") && !strings.HasPrefix(target, "&") {
		cn.transcript.Mode(cn.network, target, e.Source.Name, args, at)
		return
	}

	verdict := cn.modeVerdict(target, e.Source.Name, e.Params[1:])
	if verdict == filter.PassThrough {
		cn.transcript.Mode(cn.network, target, e.Source.Name, args, at)
	}
}

// modeVerdict prefers the compact single-target path for plain
// "+o nick" changes and falls back to the raw classifier for
// everything else. The raw path therefore only ever sees mode
// strings the compact rewrite did not claim.
func (cn *Connection) modeVerdict(channel, source string, params []string) filter.Verdict {
	if len(params) == 2 && len(params[0]) == 2 &&
		(params[0][0] == '+' || params[0][0] == '-') {
		if snapshot, ok := cn.host.ChannelSnapshot(cn.network, channel); ok {
			if strings.IndexByte(snapshot.PrefixLetters, params[0][1]) >= 0 {
				return cn.router.Mode(filter.ModeEvent{
					Network: cn.network,
					Channel: channel,
					Source:  source,
					Target:  params[1],
				})
			}
		}
	}

	return cn.router.RawMode(filter.RawModeEvent{
		Network: cn.network,
		Channel: channel,
		Source:  source,
		Args:    strings.Join(params, " "),
	})
}

// handleCommand manages the notify list over private message. Only
// configured manager nicks are listened to.
func (cn *Connection) handleCommand(c *girc.Client, e girc.Event) {
	if !cn.isManager(e.Source.Name) {
		return
	}

	words := strings.Fields(e.Last())
	if len(words) == 0 || !strings.EqualFold(words[0], "notify") {
		return
	}

	log := logger.Network(cn.network)
	switch {
	case len(words) >= 3 && strings.EqualFold(words[1], "add"):
		if err := cn.notify.Add(words[2]); err != nil {
			log.Error("Failed to store notify entry", "nick", words[2], "error", err)
			c.Cmd.Reply(e, "Could not save "+words[2])
			return
		}
		c.Cmd.Reply(e, "Added "+words[2]+" to the notify list")
	case len(words) >= 3 && (strings.EqualFold(words[1], "del") || strings.EqualFold(words[1], "remove")):
		if err := cn.notify.Remove(words[2]); err != nil {
			log.Error("Failed to remove notify entry", "nick", words[2], "error", err)
			c.Cmd.Reply(e, "Could not remove "+words[2])
			return
		}
		c.Cmd.Reply(e, "Removed "+words[2]+" from the notify list")
	default:
		entries := cn.notify.All()
		if len(entries) == 0 {
			c.Cmd.Reply(e, "Notify list is empty")
			return
		}
		c.Cmd.Reply(e, "Notify list: "+strings.Join(entries, ", "))
	}
}

func (cn *Connection) isManager(nick string) bool {
	for _, manager := range cn.managers {
		if strings.EqualFold(manager, nick) {
			return true
		}
	}
	return false
}

// eventTime prefers the server-time tag (ZNC playback, bouncers) over
// the wall clock.
func eventTime(e girc.Event) time.Time {
	if raw, ok := e.Tags.Get("time"); ok {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			return at.Local()
		}
	}
	return time.Now()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
