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

package testutil

import (
	"strings"
	"testing"

	"go.blink-lang.org/blink/compiler"
	"go.blink-lang.org/blink/schema"
	"go.blink-lang.org/blink/syntax"
)

const SourceName = "test.blink"

// Compile compiles src as a single source and fails the test on error.
func Compile(t *testing.T, src string) *schema.Schema {
	t.Helper()
	result, err := compiler.CompileString(SourceName, src)
	AssertNoError(t, err)
	return result.Schema
}

// CompileError compiles src and fails the test unless compilation fails.
func CompileError(t *testing.T, src string) error {
	t.Helper()
	_, err := compiler.CompileString(SourceName, src)
	AssertError(t, err)
	return err
}

// DumpEvents parses src and returns the observer events, one per line.
func DumpEvents(t *testing.T, src string) string {
	t.Helper()
	var buf strings.Builder
	err := syntax.Parse([]byte(src), syntax.NewDumper(&buf), syntax.WithSourceName(SourceName))
	AssertNoError(t, err)
	return buf.String()
}

// ParseError parses src with a dumper and fails the test unless parsing
// fails.
func ParseError(t *testing.T, src string) error {
	t.Helper()
	var buf strings.Builder
	err := syntax.Parse([]byte(src), syntax.NewDumper(&buf), syntax.WithSourceName(SourceName))
	AssertError(t, err)
	return err
}
