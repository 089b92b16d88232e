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
	"io"
	"os"

	"github.com/spf13/pflag"

	"go.blink-lang.org/blink/digest"
	"go.blink-lang.org/blink/schema"
)

type cmdSignatures struct {
	env     *env
	defines bool
}

func (*cmdSignatures) help() *commandHelp {
	return &commandHelp{
		usage:   "signatures [--defines] [SCHEMA...]",
		summary: "Print the type hash and signature of every group",
	}
}

func (cmd *cmdSignatures) flags(flags *pflag.FlagSet) {
	flags.BoolVar(&cmd.defines, "defines", false, "also print type definitions")
}

func (cmd *cmdSignatures) run(ctx context.Context, argv []string) int {
	paths, err := schemaPaths(cmd.env.config, argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, err := compileFiles(paths, cmd.env.logger)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	printWarnings(os.Stderr, result.Warnings)
	writeSignatures(os.Stdout, result.Schema, cmd.defines)
	return 0
}

// writeSignatures prints `0x<hash> <signature>` per definition.
func writeSignatures(w io.Writer, s *schema.Schema, defines bool) {
	d := digest.New()
	if defines {
		for _, def := range s.Defines() {
			fmt.Fprintf(w, "0x%s %s\n", d.Hash(def), d.Signature(def))
		}
	}
	for _, g := range s.Groups() {
		fmt.Fprintf(w, "0x%s %s\n", d.Hash(g), d.Signature(g))
	}
}
