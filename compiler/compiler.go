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

// Package compiler drives the parser and schema builder over a set of
// sources and finalizes the result.
package compiler

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"go.blink-lang.org/blink/schema"
	"go.blink-lang.org/blink/syntax"
)

// Source is one schema text and the name used for it in locations.
type Source struct {
	Name string
	Data []byte
}

func FromString(name, text string) Source {
	return Source{Name: name, Data: []byte(text)}
}

// FromLines joins lines with newlines.
func FromLines(name string, lines ...string) Source {
	return FromString(name, strings.Join(lines, "\n"))
}

func ReadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return Source{Name: path, Data: data}, nil
}

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	logger zerolog.Logger
}

func WithLogger(logger zerolog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

type CompileResult struct {
	Schema   *schema.Schema
	Warnings []*schema.Warning
}

// Compile parses every source into one schema and finalizes it. Each source
// keeps its own namespace declaration. The first error aborts compilation.
func Compile(sources []Source, opts ...CompileOption) (*CompileResult, error) {
	return NewCompileOptions(opts...).Compile(sources)
}

// CompileString compiles a single schema text.
func CompileString(name, text string, opts ...CompileOption) (*CompileResult, error) {
	return Compile([]Source{FromString(name, text)}, opts...)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(sources []Source) (*CompileResult, error) {
	s := schema.New(schema.WithLogger(opts.logger))
	for _, src := range sources {
		if err := opts.parse(s, src); err != nil {
			return nil, err
		}
	}
	if err := s.Finalize(); err != nil {
		return nil, err
	}
	opts.logger.Debug().
		Int("groups", len(s.Groups())).
		Int("defines", len(s.Defines())).
		Int("warnings", len(s.Warnings())).
		Msg("finalized schema")
	return &CompileResult{
		Schema:   s,
		Warnings: s.Warnings(),
	}, nil
}

func (opts *CompileOptions) parse(s *schema.Schema, src Source) error {
	builder := NewBuilder(s)
	err := syntax.Parse(src.Data, builder, syntax.WithSourceName(src.Name))
	if err != nil {
		return err
	}
	opts.logger.Debug().
		Str("source", src.Name).
		Str("namespace", builder.Namespace()).
		Msg("parsed schema source")
	return nil
}
