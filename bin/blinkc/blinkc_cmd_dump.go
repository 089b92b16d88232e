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

	"github.com/spf13/pflag"

	"go.blink-lang.org/blink/syntax"
)

type cmdDump struct {
	env *env
}

func (*cmdDump) help() *commandHelp {
	return &commandHelp{
		usage:   "dump [SCHEMA...]",
		summary: "Print the parser events of each schema file",
	}
}

func (*cmdDump) flags(flags *pflag.FlagSet) {}

func (cmd *cmdDump) run(ctx context.Context, argv []string) int {
	paths, err := schemaPaths(cmd.env.config, argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	sources, err := readSources(paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	dumper := syntax.NewDumper(os.Stdout)
	for _, src := range sources {
		if len(sources) > 1 {
			fmt.Fprintf(os.Stdout, "# %s\n", src.Name)
		}
		if err := syntax.Parse(src.Data, dumper, syntax.WithSourceName(src.Name)); err != nil {
			printError(os.Stderr, err)
			return 1
		}
	}
	return 0
}
