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
	"strings"

	"github.com/spf13/pflag"
)

type cmdFormat struct {
	env       *env
	namespace string
	outPath   string
}

func (*cmdFormat) help() *commandHelp {
	return &commandHelp{
		usage:   "format [SCHEMA...]",
		summary: "Print the resolved schema in canonical form",
	}
}

func (cmd *cmdFormat) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.namespace, "namespace", "n", "", "only print this namespace")
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write to a file instead of stdout")
}

func (cmd *cmdFormat) run(ctx context.Context, argv []string) int {
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

	namespace := cmd.namespace
	if namespace == "" {
		namespace = cmd.env.config.Format.Namespace
	}
	namespaces := result.Schema.Namespaces()
	if namespace != "" {
		namespaces = []string{namespace}
	}

	var parts []string
	for _, ns := range namespaces {
		parts = append(parts, result.Schema.Format(ns))
	}
	if err := writeOutput(cmd.outPath, strings.Join(parts, "\n")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
