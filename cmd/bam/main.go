// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the Better Auto Moderator
// service. It authenticates against the site, loads the moderation rules
// from the subreddit wiki or a local file, and supervises the item streams.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/josephwegner/better-auto-moderator/internal/buildinfo"
	"github.com/josephwegner/better-auto-moderator/internal/config"
	"github.com/josephwegner/better-auto-moderator/internal/logging"
	"github.com/josephwegner/better-auto-moderator/internal/reddit"
	"github.com/josephwegner/better-auto-moderator/internal/rules"
	"github.com/josephwegner/better-auto-moderator/internal/supervisor"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main parses command-line flags, loads configuration and credentials, and
// runs the supervisor until interrupted.
func main() {
	fmt.Printf("Better Auto Moderator Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var configPath string
	var rulesFile string
	var debug bool

	flag.StringVar(&configPath, "config", "", "Configure File Path")
	flag.StringVar(&rulesFile, "rules", "", "Load rules from a local file instead of the wiki")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	if configPath == "" {
		configPath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configPath, true)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}
	if rulesFile != "" {
		cfg.RulesSource = config.SourceFile
		cfg.RulesFile = rulesFile
	}
	if debug {
		cfg.Debug = true
	}

	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogsDir); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	creds, err := reddit.CredentialsFromEnv()
	if err != nil {
		log.Errorf("failed to load credentials: %v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := reddit.NewClient(ctx, creds)
	if err != nil {
		log.Errorf("failed to authenticate: %v", err)
		return
	}

	sr, err := client.Subreddit(creds.Subreddit)
	if err != nil {
		log.Errorf("failed to load subreddit /r/%s: %v", creds.Subreddit, err)
		return
	}
	log.Infof("Moderating /r/%s as /u/%s", sr.Name(), creds.Username)

	var source supervisor.RuleSource
	switch cfg.RulesSource {
	case config.SourceFile:
		fileSource, errSource := supervisor.NewFileRuleSource(cfg.RulesFile, rules.GlobalConfig{
			OverwriteAutoModerator: cfg.OverwriteAutoModerator,
		})
		if errSource != nil {
			log.Errorf("failed to watch rules file: %v", errSource)
			return
		}
		defer fileSource.Close()
		source = fileSource
	default:
		source, err = supervisor.NewWikiRuleSource(sr)
		if err != nil {
			log.Errorf("failed to prepare wiki pages: %v", err)
			return
		}
	}

	streams := make([]supervisor.ItemSource, 0, 6)
	for _, kind := range []reddit.StreamKind{
		reddit.StreamSubmissions,
		reddit.StreamComments,
		reddit.StreamModqueue,
		reddit.StreamEdited,
		reddit.StreamReports,
		reddit.StreamModmail,
	} {
		streams = append(streams, reddit.NewStream(client, sr, kind))
	}

	sup := supervisor.New(source, streams, supervisor.Options{
		Pause:        cfg.PollPause(),
		ReloadRounds: cfg.ReloadRounds,
		Pusher:       sr,
	})
	if err := sup.Load(); err != nil {
		log.Errorf("failed to load rules: %v", err)
		return
	}

	if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("supervisor stopped: %v", err)
		return
	}
	log.Info("Shutting down")
}
