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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"go.blink-lang.org/blink/compiler"
	"go.blink-lang.org/blink/schema"
	"go.blink-lang.org/blink/syntax"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
)

var errNoSchemas = errors.New("No schema files given (pass paths or set 'schemas' in blinkc.yaml)")

// schemaPaths returns the command-line paths, falling back to the
// configured schema list.
func schemaPaths(cfg *config, argv []string) ([]string, error) {
	if len(argv) > 0 {
		return argv, nil
	}
	if len(cfg.Schemas) > 0 {
		return cfg.Schemas, nil
	}
	return nil, errNoSchemas
}

func readSources(paths []string) ([]compiler.Source, error) {
	sources := make([]compiler.Source, 0, len(paths))
	for _, path := range paths {
		src, err := compiler.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func compileFiles(paths []string, logger zerolog.Logger) (*compiler.CompileResult, error) {
	sources, err := readSources(paths)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(sources, compiler.WithLogger(logger))
}

// printError writes a compile error. Syntax errors are followed by the
// source text leading up to the error.
func printError(w io.Writer, err error) {
	var syntaxErr *syntax.Error
	var schemaErr *schema.Error
	switch {
	case errors.As(err, &syntaxErr):
		fmt.Fprintf(w, "%s: %s: %s\n", syntaxErr.Location(), errorLabel("error"), syntaxErr.Message())
		if preview := syntaxErr.Preview(); preview != "" {
			fmt.Fprintf(w, "  %s<--\n", preview)
		}
	case errors.As(err, &schemaErr):
		fmt.Fprintf(w, "%s: %s: %s\n", schemaErr.Location(), errorLabel("error"), schemaErr.Message())
	default:
		fmt.Fprintf(w, "%s: %v\n", errorLabel("error"), err)
	}
}

func printWarnings(w io.Writer, warnings []*schema.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "%s: %s: %s\n", warn.Location(), warningLabel("warning"), warn.Message())
	}
}

// writeOutput writes output to path, or to stdout when path is empty.
func writeOutput(path string, output string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(output)
		return err
	}
	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(path, openFlags, 0o666)
	if err != nil {
		return err
	}
	_, writeErr := fp.WriteString(output)
	closeErr := fp.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
