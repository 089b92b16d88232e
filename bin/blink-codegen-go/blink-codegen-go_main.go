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

// Command blink-codegen-go generates a Go registry of type IDs, type
// hashes and enum values from Blink schemas.
//
// Built with TinyGo it is a codegen plugin for "blinkc codegen"; built
// natively it compiles the schema files named on the command line and
// writes the generated source to stdout.
package main

//go:generate go run ../../internal/build --output=blink-codegen-go.wasm .

import (
	"os"

	"github.com/rs/zerolog"

	"go.blink-lang.org/blink/compiler"
	"go.blink-lang.org/blink/internal/codegen"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	args := os.Args[1:]
	if len(args) < 1 {
		logger.Fatal().Msgf("usage: %s BLINK_SCHEMA...", os.Args[0])
	}

	var sources []compiler.Source
	for _, path := range args {
		src, err := compiler.ReadFile(path)
		if err != nil {
			logger.Fatal().Err(err).Send()
		}
		sources = append(sources, src)
	}
	result, err := compiler.Compile(sources, compiler.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("compile failed")
	}

	files, err := codegen.GenerateGo(codegen.BuildModel(result.Schema))
	if err != nil {
		logger.Fatal().Err(err).Send()
	}
	for _, file := range files {
		if _, err := os.Stdout.Write(file.Content); err != nil {
			logger.Fatal().Err(err).Send()
		}
	}
}
