// Copyright 2025 The TagServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the tagserve server and its debug CLI and TUI hosts.

tagserve is a headless tag input with autocomplete. It keeps the query, the
candidate list and the active row, and reports what the user asked to add or
remove. It can run as a MessagePack IPC server for editors and UIs, as a line
driven CLI for debugging, or as an interactive terminal UI.

# Usage

Start the server with default settings:

	tagserve

Use a custom catalog and enable debug mode:

	tagserve --catalog tags.toml -d

Try the behaviour interactively:

	tagserve tui
	tagserve cli --catalog languages.txt

# Configuration

Runtime configuration lives in a TOML file, created with defaults at
~/.config/tagserve/config.toml when missing:

	[manager]
	allow_new = false
	allow_duplicates = false
	allow_backspace = true
	close_on_select = false
	start_with_first_option = false
	new_option_text = "Add %value%"
	no_options_text = "No options found for %value%"

	[filter]
	mode = "partial"
	validate_pattern = ""

	[server]
	manage_selection = true

	[catalog]
	path = ""

An empty catalog path uses the builtin country sample.

# IPC Protocol

The server reads msgpack requests from stdin and writes one response per
request to stdout. Logs go to stderr. See package server for the message
shapes.

	{"id": "1", "op": "input", "q": "aus"}
	{"id": "2", "op": "move", "d": 1}
	{"id": "3", "op": "select"}
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/tagserve/internal/cli"
	"github.com/bastiangx/tagserve/internal/logger"
	"github.com/bastiangx/tagserve/internal/tui"
	"github.com/bastiangx/tagserve/internal/utils"
	"github.com/bastiangx/tagserve/pkg/catalog"
	"github.com/bastiangx/tagserve/pkg/config"
	"github.com/bastiangx/tagserve/pkg/server"
	"github.com/bastiangx/tagserve/pkg/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	AppName = "tagserve"
	gh      = "https://github.com/bastiangx/tagserve"
)

type options struct {
	configPath  string
	catalogPath string
	debug       bool
}

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

func main() {
	sigHandler()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Headless tag input with autocomplete, served over msgpack IPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				log.SetLevel(log.DebugLevel)
				log.SetReportTimestamp(true)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config.toml")
	flags.StringVar(&opts.catalogPath, "catalog", "", "Catalog file (.txt, .toml, .msgpack); overrides [catalog] path")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the msgpack IPC server on stdin/stdout (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(opts)
			},
		},
		&cobra.Command{
			Use:   "cli",
			Short: "Drive a session from text lines -- useful for testing and debugging",
			RunE: func(cmd *cobra.Command, args []string) error {
				log.SetReportTimestamp(false)
				sess, _, err := newSession(opts, true)
				if err != nil {
					return fail(err)
				}
				return cli.NewInputHandler(sess, os.Stdin, os.Stdout).Start()
			},
		},
		&cobra.Command{
			Use:   "tui",
			Short: "Interactive terminal tag input",
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, _, err := newSession(opts, true)
				if err != nil {
					return fail(err)
				}
				_, err = tea.NewProgram(tui.New(sess)).Run()
				return err
			},
		},
		newConfigCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show current version",
			Run: func(cmd *cobra.Command, args []string) {
				showVersion()
			},
		},
	)
	return root
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := config.LoadConfigWithPriority(opts.configPath)
			if err != nil {
				return fail(err)
			}
			fmt.Println(config.GetActiveConfigPath(path))
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Rewrite the default config file with builtin defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RebuildConfigFile(); err != nil {
				return fail(fmt.Errorf("failed to rebuild config: %w", err))
			}
			log.Info("Config rebuilt", "path", config.GetActiveConfigPath(""))
			return nil
		},
	})
	return cmd
}

// fail logs err the way the rest of the binary reports fatal problems.
func fail(err error) error {
	log.Error(err)
	return err
}

// newSession loads config and catalog and builds the session every host uses.
// The cli and tui hosts always manage their own selection.
func newSession(opts *options, forceManage bool) (*session.Session, *config.Config, error) {
	cfg, path, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))

	catalogPath := cfg.Catalog.Path
	if opts.catalogPath != "" {
		catalogPath = opts.catalogPath
	}
	if catalogPath != "" {
		configDir, _ := config.GetConfigDir()
		resolver, err := utils.NewPathResolver(configDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize path resolver: %w", err)
		}
		if catalogPath, err = resolver.FindCatalog(catalogPath); err != nil {
			return nil, nil, fmt.Errorf("catalog not found: %w", err)
		}
	}

	suggestions, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("Catalog: %d suggestions", len(suggestions))

	mc, err := cfg.ManagerConfig(suggestions)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.debug {
		mc.Logger = logger.New("manager")
	}

	sess, err := session.New(session.Options{
		Manager:         mc,
		ManageSelection: forceManage || cfg.Server.ManageSelection,
		Announcer:       cfg.Announcer(),
		Logger:          logger.New("session"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return sess, cfg, nil
}

func runServe(opts *options) error {
	log.Debug("spawning IPC")
	sess, cfg, err := newSession(opts, false)
	if err != nil {
		return fail(err)
	}

	srv := server.NewServer(sess)
	showStartupInfo(cfg, len(sess.Manager().State().Candidates))

	if err := srv.Start(); err != nil {
		return fail(fmt.Errorf("server stopped: %w", err))
	}
	return nil
}

func showVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ TagServe ] Headless tag input with autocomplete")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(cfg *config.Config, catalogSize int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" TagServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("catalog: %d suggestions, filter: %s", catalogSize, cfg.Filter.Mode)
	log.Infof("manage selection: %v", cfg.Server.ManageSelection)
	log.Info("status: ready")
	println("===========")

	log.SetLevel(currentLevel)
}
