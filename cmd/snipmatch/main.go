// Copyright 2026 The SnipMatch Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the snippet trigger matching server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

SnipMatch decides, on every keystroke, whether the text immediately before
the caret just finished a trigger from the user's snippet dictionary. It
can operate as a MessagePack IPC server for integration with text editors,
or as a CLI application for testing and debugging trigger dictionaries.

Evaluation cost is bounded by the longest registered trigger, never by the
size of the document, so per-keystroke calls stay well under a millisecond
on arbitrarily large texts. Dictionaries are rebuilt off the hot path and
published with a single atomic swap.

# Usage

Run the interactive CLI against a snippet directory:

	snipmatch -snippets ./snippets

Start the IPC server with watching and debug logging:

	snipmatch -server -snippets ./snippets -debug

Snippet sources are TOML, YAML or JSON files holding trigger/content
pairs; directories are walked in lexical order and later definitions of a
trigger override earlier ones.

	[[snippets]]
	trigger = ";brb"
	content = "be right back"

# Configuration

Runtime configuration is managed through a TOML file covering the engine,
snippet sources, server limits, and CLI display defaults:

	[engine]
	prefix_char = ";"

	[snippets]
	paths = ["snippets"]
	watch = true
	debounce_ms = 500

	[server]
	max_text_bytes = 1048576
	max_completions = 24
	timing_log = false

	[cli]
	completion_limit = 8
	preview_width = 64

The config file is automatically created with defaults if it doesn't
exist. A snipmatch.toml in the working directory takes priority over the
user config directory; -config overrides both.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Evaluation
requests are processed synchronously with microsecond timing information
included in responses.

Send an evaluation request (caret optional, defaults to end of text):

	{"id": "req1", "t": "hello ;brb ", "c": 11}

Receive the classification with the matched span:

	{"id": "req1", "s": "complete", "tr": ";brb", "ct": "be right back", "ss": 6, "se": 10, "tm": 42}

Control requests manage the library and config at runtime:

	{"id": "ctl1", "action": "get_info"}
	{"id": "ctl2", "action": "reload"}
	{"id": "ctl3", "action": "update_config", "max_completions": 12}

When watching is enabled, edits to snippet sources reload the dictionary
after they settle and push an unsolicited reload event with a generated
short id, so clients can tell pushes from responses.

# Server Mode

The -server flag starts a MessagePack IPC server that processes requests
from stdin and writes responses to stdout. This design enables integration
with text editors and other applications through process communication.

	srv, err := server.NewServer(detector, library, cfg, configPath)
	err = srv.Run(ctx)

The server enforces request size limits, clamps out-of-range carets, and
answers malformed frames with error responses instead of crashing.

# CLI Mode

The default mode provides an interactive interface for testing and
debugging trigger dictionaries. It reads lines from stdin, classifies each
with the caret at end of line, and prints the state, matched span, and
candidate completions with timing.

	inputHandler := cli.NewInputHandler(detector, library, limit, previewWidth)
	err := inputHandler.Start()

Colon commands inspect and poke the session without leaving it: :stats
dumps index counters, :reload re-reads the snippet sources, :expand runs
the full replacement pipeline on a line, :quit exits.

# Matching Engine

The core classification is provided by the match package, which anchors
candidate spans on boundary runes and walks a Patricia trie to find the
longest registered trigger ending at the caret.

	detector := match.NewDetector(library.Entries(), ';')
	result := detector.EvaluateAtEnd("hello ;brb ")

The detector is safe for concurrent evaluation while the library reloads;
in-flight calls finish against the generation they started with.

# Command Line Flags

The following flags control application behavior:

	-server
	    Run the MessagePack IPC server instead of the interactive CLI
	-config string
	    Path to a TOML config file
	-snippets string
	    Comma-separated snippet files or directories (overrides config paths)
	-prefix string
	    Prefix character exempting triggers from the leading boundary rule
	-watch
	    Reload snippet sources when they change on disk
	-limit int
	    Number of candidate triggers to display
	-debug
	    Enable debug mode with detailed logging
	-version
	    Show current version

The SNIPMATCH_LOG environment variable selects the initial log level
("debug", "info", "warn", "error") when -debug is not passed.

The application automatically resolves snippet and config paths relative
to the executable location, supporting both development and production
deployments.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/truevox/snipmatch/internal/cli"
	"github.com/truevox/snipmatch/internal/logger"
	"github.com/truevox/snipmatch/internal/utils"
	"github.com/truevox/snipmatch/pkg/config"
	"github.com/truevox/snipmatch/pkg/match"
	"github.com/truevox/snipmatch/pkg/server"
	"github.com/truevox/snipmatch/pkg/snippet"
)

const (
	Version = "0.1.0-beta"
	AppName = "snipmatch"
	gh      = "https://github.com/truevox/snipmatch"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	serverMode := flag.Bool("server", false, "Run the MessagePack IPC server instead of the interactive CLI")
	debugMode := flag.Bool("debug", false, "Toggle debug mode")
	configPath := flag.String("config", "", "Path to a TOML config file")
	snippetArg := flag.String("snippets", "", "Comma-separated snippet files or directories (overrides config paths)")
	prefixChar := flag.String("prefix", defaultConfig.Engine.PrefixChar, "Prefix character exempting triggers from the leading boundary rule")
	watchMode := flag.Bool("watch", defaultConfig.Snippets.Watch, "Reload snippet sources when they change on disk")
	limit := flag.Int("limit", defaultConfig.CLI.CompletionLimit, "Number of candidate triggers to display")

	flag.Parse()

	if *showVersion {
		bannerLog := logger.Default("")

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["version"] = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		bannerLog.SetStyles(styles)

		bannerLog.Print("")
		bannerLog.Print("[ SnipMatch ] Snappy trigger matching for text expansion!")
		bannerLog.Print("", "version", Version)
		bannerLog.Print("")
		bannerLog.Print("use -h or --help to see available options")
		bannerLog.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	logger.Setup(*debugMode)

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		log.Print("Either env is not set or system is not supported")
		os.Exit(1)
	}

	cfg, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Warnf("Config load failed, using builtin defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	log.Debugf("Using config file: (%s)", activeConfigPath)

	// Flags beat the config file, but only when actually passed.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "snippets":
			cfg.Snippets.Paths = splitPaths(*snippetArg)
		case "prefix":
			cfg.Engine.PrefixChar = *prefixChar
		case "watch":
			cfg.Snippets.Watch = *watchMode
		case "limit":
			cfg.CLI.CompletionLimit = *limit
		}
	})

	if len(cfg.Snippets.Paths) == 0 {
		snippetsDir, err := pathResolver.GetSnippetsDir("")
		if err != nil {
			log.Warnf("No snippet sources configured and no default found: %v", err)
		} else {
			cfg.Snippets.Paths = []string{snippetsDir}
		}
	}
	log.Debugf("Snippet sources: %v", cfg.Snippets.Paths)

	library := snippet.NewLibrary(cfg.Snippets.Paths)
	report, err := library.Reload()
	if err != nil {
		log.Warnf("No snippets loaded, starting with an empty dictionary: %v", err)
	} else {
		log.Debugf("Loaded %d snippets from %d sources (%d dropped, %d overridden)",
			report.Accepted, report.Sources, report.Dropped, report.Overridden)
	}

	detector := match.NewDetector(library.Entries(), cfg.PrefixRune())

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if !*serverMode {
		log.SetReportTimestamp(false)
		runCLI(detector, library, cfg)
		return
	}

	log.Debug("spawning IPC")

	// Runtime config updates need a writable file even when no config
	// was loaded at startup.
	if activeConfigPath == "" {
		activeConfigPath, err = pathResolver.GetConfigPath("config.toml")
		if err != nil {
			log.Warnf("No writable config location, runtime config updates disabled: %v", err)
		}
		log.Debugf("Using config file: (%s)", activeConfigPath)
	}

	srv, err := server.NewServer(detector, library, cfg, activeConfigPath)
	if err != nil {
		log.Errorf("Failed to init server: %v", err)
		os.Exit(1)
	}

	showStartupInfo(cfg, report)

	if err := srv.Run(context.Background()); err != nil {
		log.Errorf("Server exited with error: %v", err)
		os.Exit(1)
	}
}

// runCLI wires the interactive loop, with its own watcher when enabled.
func runCLI(detector *match.Detector, library *snippet.Library, cfg *config.Config) {
	if cfg.Snippets.Watch && len(library.Paths()) > 0 {
		watcher, err := snippet.NewWatcher(library.Paths(), cfg.Debounce(), func() {
			if _, err := library.Reload(); err != nil {
				log.Errorf("Reload after snippet change failed: %v", err)
				return
			}
			detector.Reconfigure(library.Entries())
			log.Print("Snippet sources changed, dictionary reloaded")
		})
		if err != nil {
			log.Warnf("Watching disabled: %v", err)
		} else {
			watcher.Start(context.Background())
			defer watcher.Stop()
		}
	}

	inputHandler := cli.NewInputHandler(detector, library, cfg.CLI.CompletionLimit, cfg.CLI.PreviewWidth)
	if err := inputHandler.Start(); err != nil {
		log.Errorf("CLI error: %v", err)
		os.Exit(1)
	}
}

// splitPaths parses the comma-separated -snippets argument.
func splitPaths(arg string) []string {
	var paths []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cfg *config.Config, report snippet.Report) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" SnipMatch ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("snippets: %d from %d sources", report.Accepted, report.Sources)
	log.Infof("watching: %v", cfg.Snippets.Watch)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
