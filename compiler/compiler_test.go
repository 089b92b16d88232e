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

package compiler_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.blink-lang.org/blink/compiler"
	"go.blink-lang.org/blink/internal/testutil"
	"go.blink-lang.org/blink/schema"
	"go.blink-lang.org/blink/syntax"
)

func TestCompileMultipleSources(t *testing.T) {
	t.Parallel()
	result, err := compiler.Compile([]compiler.Source{
		compiler.FromLines("a.blink",
			"namespace A",
			"Base -> u32 x",
		),
		compiler.FromLines("b.blink",
			"namespace B",
			"Msg : A:Base -> string s",
			`schema <- @v="2"`,
		),
		compiler.FromString("c.blink", "Plain -> B:Msg* m"),
	})
	require.NoError(t, err)

	s := result.Schema
	assert.Equal(t, []string{"A", "B", ""}, s.Namespaces())
	msg, ok := s.Find("B:Msg", "").(*schema.Group)
	require.True(t, ok)
	assert.Equal(t, "A:Base", msg.Super().QName())
	assert.Equal(t, "b.blink", msg.Location().Source)
	assert.NotNil(t, s.Find("Plain", ""))

	value, ok := s.Annotation("v", "B")
	assert.True(t, ok)
	assert.Equal(t, "2", value)
	assert.Empty(t, result.Warnings)
}

func TestCompileNamespaceIsPerSource(t *testing.T) {
	t.Parallel()
	_, err := compiler.Compile([]compiler.Source{
		compiler.FromString("a.blink", "namespace A\nBase"),
		compiler.FromString("b.blink", "namespace B\nMsg -> Base b"),
	})
	diag := testutil.AssertDiagnostic(t, err, 3100)
	assert.Equal(t, "b.blink", diag.Location().Source)
	assert.Equal(t, "No such definition in type reference: Base or B:Base", diag.Message())
}

func TestCompileSyntaxErrorNamesSource(t *testing.T) {
	t.Parallel()
	_, err := compiler.Compile([]compiler.Source{
		compiler.FromString("one.blink", "A"),
		compiler.FromString("two.blink", "B -> ?"),
	})
	testutil.AssertDiagnostic(t, err, 2000)
	assert.True(t, strings.HasPrefix(err.Error(), "two.blink:1:6: error: "), err.Error())
}

func TestCompileWarningsAreLogged(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	result, err := compiler.CompileString("w.blink", `Missing <- @a="b"`, compiler.WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, uint32(4000), result.Warnings[0].Code())

	logged := buf.String()
	assert.Contains(t, logged, `"level":"warn"`)
	assert.Contains(t, logged, `"code":4000`)
	assert.Contains(t, logged, `"location":"w.blink:1:1"`)
	assert.Contains(t, logged, `"message":"finalized schema"`)
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "x.blink")
	require.NoError(t, os.WriteFile(path, []byte("X -> u8 v"), 0o644))

	src, err := compiler.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name)

	result, err := compiler.Compile([]compiler.Source{src})
	require.NoError(t, err)
	assert.Equal(t, path, result.Schema.Groups()[0].Location().Source)

	_, err = compiler.ReadFile(filepath.Join(dir, "missing.blink"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	s := schema.New()
	builder := compiler.NewBuilder(s)
	err := syntax.ParseLines([]string{
		"namespace N",
		"E = A | B/5 | C",
		"G/1 -> E e, fixed(3) f?",
	}, builder)
	require.NoError(t, err)
	assert.Equal(t, "N", builder.Namespace())
	require.NoError(t, s.Finalize())

	type symbol struct {
		Name  string
		Value int64
	}
	type field struct {
		Name     string
		Optional bool
		Type     string
		Size     uint32
	}

	e := s.Find("N:E", "").(*schema.Define)
	enum, ok := e.Enum()
	require.True(t, ok)
	var symbols []symbol
	for _, sym := range enum.Symbols() {
		symbols = append(symbols, symbol{sym.Name(), sym.Value()})
	}
	testutil.ExpectDeepEq(t, []symbol{{"A", 0}, {"B", 5}, {"C", 6}}, symbols)

	g := s.Find("N:G", "").(*schema.Group)
	var fields []field
	for _, f := range g.Fields() {
		got := field{Name: f.Name(), Optional: f.IsOptional()}
		switch typ := f.Type().(type) {
		case *schema.Ref:
			got.Type = typ.Name()
		case *schema.Type:
			got.Type = typ.Code().String()
			got.Size = typ.Size()
		}
		fields = append(fields, got)
	}
	testutil.ExpectDeepEq(t, []field{
		{Name: "e", Type: "N:E"},
		{Name: "f", Optional: true, Type: "fixed", Size: 3},
	}, fields)
}

func TestBuilderImplicitEnumValues(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "E = X/9223372036854775806 | Y | Z/-9223372036854775808 | W")
	enum, ok := s.Find("E", "").(*schema.Define).Enum()
	require.True(t, ok)
	var got []int64
	for _, sym := range enum.Symbols() {
		got = append(got, sym.Value())
	}
	testutil.ExpectSliceEq(t, []int64{9223372036854775806, 9223372036854775807, -9223372036854775808, -9223372036854775807}, got)

	err := testutil.CompileError(t, "E = X | Y/9223372036854775807 | Z")
	diag := testutil.AssertDiagnostic(t, err, 3011)
	assert.Equal(t, 33, diag.Location().Column)
}

func TestBuilderIncrementalAnnotationValue(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "E = A | B\nE.B <- -4\nG\nG <- 0x10")
	e := s.Find("E", "").(*schema.Define)
	enum, _ := e.Enum()
	b, _ := enum.Symbol("B")
	assert.Equal(t, int64(-4), b.Value())
	assert.Equal(t, "16", s.Find("G", "").ID().String())
}
