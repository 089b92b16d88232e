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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
)

// Editors often write a file in several steps; changes arriving within
// this window are compiled once.
const watchDebounce = 100 * time.Millisecond

type cmdCheck struct {
	env   *env
	watch bool
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check [--watch] [SCHEMA...]",
		summary: "Compile schemas and report errors and warnings",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.BoolVarP(&cmd.watch, "watch", "w", false, "recompile whenever a schema file changes")
}

func (cmd *cmdCheck) run(ctx context.Context, argv []string) int {
	paths, err := schemaPaths(cmd.env.config, argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !cmd.watch {
		return cmd.check(paths)
	}
	if err := cmd.watchLoop(ctx, paths); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func (cmd *cmdCheck) check(paths []string) int {
	logger := cmd.env.logger
	result, err := compileFiles(paths, logger)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	printWarnings(os.Stderr, result.Warnings)
	logger.Info().
		Int("files", len(paths)).
		Int("groups", len(result.Schema.Groups())).
		Int("defines", len(result.Schema.Defines())).
		Msg("schema ok")
	return 0
}

// watchLoop compiles once, then recompiles the whole schema set after
// every write to one of its files until ctx is cancelled.
func (cmd *cmdCheck) watchLoop(ctx context.Context, paths []string) error {
	logger := cmd.env.logger
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched rather than files so that atomic saves
	// (write to a temporary file, then rename) are seen.
	watched := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("absolute path: %w", err)
		}
		watched[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	cmd.check(paths)
	logger.Info().Int("files", len(paths)).Msg("watching schema files for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := watched[filepath.Clean(event.Name)]; !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("schema file changed")
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			cmd.check(paths)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")
		}
	}
}
