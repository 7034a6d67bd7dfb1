package main

import (
	"os"
	"sync"
	"time"

	"smartfilter/filter"
	"smartfilter/irc"
	"smartfilter/kv"
	"smartfilter/logger"
	"smartfilter/notify"
	"smartfilter/settings"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := settings.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(config.Logging)

	store, err := kv.Open(config.Store.Path)
	if err != nil {
		logger.Fatal("Failed to open notify store", "path", config.Store.Path, "error", err)
	}
	defer store.Close()

	notifyList := notify.New(store, irc.Casefold)
	notifyList.Seed(config.Filter.Notify)

	transcript := irc.NewTranscript(os.Stdout)
	host := irc.NewHost(notifyList, transcript)

	threshold := time.Duration(config.Filter.ThresholdSeconds) * time.Second
	activity := filter.NewTimestampStore(threshold, host.FoldNick, nil)
	pending := filter.NewPendingJoinStore(threshold, host.FoldNick, nil)
	router := filter.NewRouter(host, activity, pending,
		filter.ScopeFromLists(config.Filter.Networks, config.Filter.Channels))

	sweepInterval := time.Duration(config.Filter.SweepSeconds) * time.Second
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			router.Sweep()
		}
	}()

	logger.Info("Starting smartfilter",
		"networks", len(config.Networks),
		"threshold", threshold.String(),
		"sweep", sweepInterval.String())

	var waitGroup sync.WaitGroup
	for name, network := range config.Networks {
		if !network.Enabled {
			logger.Network(name).Info("Network disabled, skipping")
			continue
		}
		if len(network.Servers) == 0 {
			logger.Network(name).Warn("No servers defined, skipping")
			continue
		}
		waitGroup.Add(1)
		go irc.Run(name, network, router, host, transcript, notifyList, config.Filter.Managers, &waitGroup)
	}

	waitGroup.Wait()
}
