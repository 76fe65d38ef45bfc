// Package main provides the alps binary: conversion and validation of ALPS
// profile documents between the JSON, XML and YAML encodings.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	// Register the bundled encodings via init()
	_ "github.com/reoring/goalps/formats"

	"github.com/reoring/goalps/i18n"
)

const appName = "alps"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return exitUsage
	}
	return exitOK
}

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	lang       string

	cfg    *Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert and validate ALPS profile documents",
		Long: `alps parses, validates and serializes ALPS (Application-Level Profile
Semantics) documents.

Supported encodings:
- application/alps+json (json)
- application/alps+xml (xml)
- application/alps+yaml (yaml)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (YAML, default .alps.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "", "Language of issue titles (en, ja)")

	cmd.AddCommand(convertCmd(opts), validateCmd(opts), versionCmd())
	return cmd
}

// setup loads the config file, applies persistent flag overrides and
// configures logging and translations.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return failure(err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = strings.ToLower(o.logLevel)
	}
	if cmd.Flags().Changed("lang") {
		cfg.Lang = strings.ToLower(o.lang)
	}
	if err := cfg.Check(); err != nil {
		return usageErrorf("%v", err)
	}
	o.cfg = cfg
	o.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	i18n.SetLanguage(cfg.Lang)
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version %s\n", appName, version)
		},
	}
}
