// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	stdflag "flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// env is the state every command is built from: the loaded configuration
// and the logger derived from it.
type env struct {
	opts   *globalOptions
	config *config
	logger zerolog.Logger
}

func (e *env) load() error {
	cfg, err := loadConfigOrDefault(e.opts.configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if e.opts.verbose {
		level = "debug"
	}
	logger, err := newLogger(os.Stderr, level)
	if err != nil {
		return err
	}
	e.config = cfg
	e.logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &globalOptions{}
	e := &env{opts: opts}

	blinkcCmd := &cobra.Command{
		Use:   "blinkc [options] COMMAND",
		Short: "Blink schema compiler",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	blinkcCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, blinkcCmd.UsageString())
		os.Exit(1)
		return nil
	}
	blinkcCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to blinkc.yaml (default: ./blinkc.yaml if present)")
	blinkcCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	commands := []command{
		&cmdCheck{env: e},
		&cmdDump{env: e},
		&cmdFormat{env: e},
		&cmdSignatures{env: e},
		&cmdCodegen{env: e},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				if err := e.load(); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				os.Exit(cmd.run(ctx, args))
				return nil
			},
		}
		blinkcCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	blinkcCmd.Flags().AddGoFlagSet(stdflag.CommandLine)
	blinkcCmd.ParseFlags(nil)
	if _, err := blinkcCmd.ExecuteC(); err != nil {
		os.Exit(1)
	}
}
