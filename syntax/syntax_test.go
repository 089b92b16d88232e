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

package syntax_test

import (
	"errors"
	"strings"
	"testing"

	"go.blink-lang.org/blink"
	"go.blink-lang.org/blink/internal/testutil"
	"go.blink-lang.org/blink/syntax"
)

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestParseGroups(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "namespace Demo\nA/1 -> u32 x, string y?\nB/2 : A -> bool z")
	testutil.ExpectNoDiff(t, lines(
		`NsDecl ("Demo", test.blink:1:11)`,
		`StartGroupDef ("A", 1, "", [], test.blink:2:1)`,
		`StartField (test.blink:2:8)`,
		`PrimType (u32, single, [], test.blink:2:8)`,
		`EndField ("x", -, required, [])`,
		`StartField (test.blink:2:15)`,
		`StringType (single, 0, [], test.blink:2:15)`,
		`EndField ("y", -, optional, [])`,
		`EndGroupDef ()`,
		`StartGroupDef ("B", 2, "A", [], test.blink:3:1)`,
		`StartField (test.blink:3:12)`,
		`PrimType (bool, single, [], test.blink:3:12)`,
		`EndField ("z", -, required, [])`,
		`EndGroupDef ()`,
	), got)
}

func TestParseEmptyGroup(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "Empty/0x10")
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("Empty", 16, "", [], test.blink:1:1)`,
		`EndGroupDef ()`,
	), got)
}

func TestParseSizedTypes(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "T -> fixed(8) a, binary(16)[] b, fixedDec(3) c, decimal d")
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("T", -, "", [], test.blink:1:1)`,
		`StartField (test.blink:1:6)`,
		`FixedType (single, 8, [], test.blink:1:6)`,
		`EndField ("a", -, required, [])`,
		`StartField (test.blink:1:18)`,
		`BinaryType (sequence, 16, [], test.blink:1:18)`,
		`EndField ("b", -, required, [])`,
		`StartField (test.blink:1:34)`,
		`FixedDecType (single, 3, [], test.blink:1:34)`,
		`EndField ("c", -, required, [])`,
		`StartField (test.blink:1:49)`,
		`PrimType (decimal, single, [], test.blink:1:49)`,
		`EndField ("d", -, required, [])`,
		`EndGroupDef ()`,
	), got)
}

func TestParseReferences(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "Foo -> Bar*[] items, ns:Baz ref?")
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("Foo", -, "", [], test.blink:1:1)`,
		`StartField (test.blink:1:8)`,
		`TypeRef ("Bar", dynamic, sequence, [], test.blink:1:8)`,
		`EndField ("items", -, required, [])`,
		`StartField (test.blink:1:22)`,
		`TypeRef ("ns:Baz", static, single, [], test.blink:1:22)`,
		`EndField ("ref", -, optional, [])`,
		`EndGroupDef ()`,
	), got)
}

func TestParseEscapedNames(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, `\u32 -> \type \string`)
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("u32", -, "", [], test.blink:1:1)`,
		`StartField (test.blink:1:9)`,
		`TypeRef ("type", static, single, [], test.blink:1:9)`,
		`EndField ("string", -, required, [])`,
		`EndGroupDef ()`,
	), got)
}

func TestParseEnum(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "Color = Red | Green/5 | Blue")
	testutil.ExpectNoDiff(t, lines(
		`StartDefine ("Color", -, [], test.blink:1:1)`,
		`StartEnum (test.blink:1:9)`,
		`EnumSym ("Red", -, [], test.blink:1:9)`,
		`EnumSym ("Green", 5, [], test.blink:1:15)`,
		`EnumSym ("Blue", -, [], test.blink:1:25)`,
		`EndEnum ()`,
		`EndDefine ()`,
	), got)
}

func TestParseSingleSymbolEnum(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "One = | Only")
	testutil.ExpectNoDiff(t, lines(
		`StartDefine ("One", -, [], test.blink:1:1)`,
		`StartEnum (test.blink:1:7)`,
		`EnumSym ("Only", -, [], test.blink:1:9)`,
		`EndEnum ()`,
		`EndDefine ()`,
	), got)
}

func TestParseEnumValues(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "E = A/-9223372036854775808 | B/0xFFFFFFFFFFFFFFFF")
	testutil.ExpectNoDiff(t, lines(
		`StartDefine ("E", -, [], test.blink:1:1)`,
		`StartEnum (test.blink:1:5)`,
		`EnumSym ("A", -9223372036854775808, [], test.blink:1:5)`,
		`EnumSym ("B", -1, [], test.blink:1:30)`,
		`EndEnum ()`,
		`EndDefine ()`,
	), got)
}

func TestParseDefineAnnotations(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, `@d="1" Id/5 = @t="2" u64[]`)
	testutil.ExpectNoDiff(t, lines(
		`StartDefine ("Id", 5, [d="1"], test.blink:1:8)`,
		`PrimType (u64, sequence, [t="2"], test.blink:1:22)`,
		`EndDefine ()`,
	), got)
}

func TestParseFieldAnnotations(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, `@g="1" G -> @t="2" i32 @f="3" n`)
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("G", -, "", [g="1"], test.blink:1:8)`,
		`StartField (test.blink:1:20)`,
		`PrimType (i32, single, [t="2"], test.blink:1:20)`,
		`EndField ("n", -, required, [f="3"])`,
		`EndGroupDef ()`,
	), got)
}

func TestParseAnnotationConcatenation(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, `@ns:doc="a" 'b' "c" X`)
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("X", -, "", [ns:doc="abc"], test.blink:1:21)`,
		`EndGroupDef ()`,
	), got)
}

func TestParseIncrementalAnnotations(t *testing.T) {
	t.Parallel()
	got := testutil.DumpEvents(t, "Foo.bar.type <- @a=\"x\" <- 3\nns:Baz <- 7\nschema <- @s=\"y\"\nE.Sym <- -2 <- 4")
	testutil.ExpectNoDiff(t, lines(
		`IncrAnnot ("Foo", "bar", type, 3, [a="x"], test.blink:1:1)`,
		`IncrAnnot ("ns:Baz", "", name, 7, [], test.blink:2:1)`,
		`SchemaAnnot ([s="y"], test.blink:3:1)`,
		`IncrAnnot ("E", "Sym", name, 4, [], test.blink:4:1)`,
	), got)
}

func TestParseLines(t *testing.T) {
	t.Parallel()
	var buf strings.Builder
	err := syntax.ParseLines([]string{
		"namespace N",
		"A -> i8 a",
	}, syntax.NewDumper(&buf))
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, lines(
		`NsDecl ("N", -:1:11)`,
		`StartGroupDef ("A", -, "", [], -:2:1)`,
		`StartField (-:2:6)`,
		`PrimType (i8, single, [], -:2:6)`,
		`EndField ("a", -, required, [])`,
		`EndGroupDef ()`,
	), buf.String())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		code    uint32
		message string
	}{
		{
			name:    "missing field name",
			src:     "A -> u32",
			code:    2000,
			message: "test.blink:1:9: error: Expected field name after keyword 'u32' but got end of schema",
		},
		{
			name:    "annotated incremental annotation",
			src:     `@a="b" A.x <- 1`,
			code:    2001,
			message: "test.blink:1:8: error: An incremental annotation clause cannot be preceded by annotations",
		},
		{
			name: "slash id in incremental annotation",
			src:  "A/1 <- 2",
			code: 2002,
		},
		{
			name:    "enum value out of range",
			src:     "E = A/9223372036854775808",
			code:    2003,
			message: "test.blink:1:7: error: Number out of range: 9223372036854775808",
		},
		{
			name: "fixedDec scale out of range",
			src:  "T -> fixedDec(256) x",
			code: 2003,
		},
		{
			name: "missing size",
			src:  "T -> fixed x",
			code: 2000,
		},
		{
			name: "keyword as name",
			src:  "A -> i8 type",
			code: 2000,
		},
		{
			name:    "keyword type",
			src:     "A -> schema x",
			code:    2000,
			message: "test.blink:1:6: error: Expected type specifier after '->' but got keyword 'schema'",
		},
		{
			name: "incomplete incremental annotation",
			src:  "ns:A",
			code: 2000,
		},
		{
			name: "lexical error",
			src:  "A -> i8 x$",
			code: 1001,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := testutil.ParseError(t, test.src)
			testutil.AssertDiagnostic(t, err, test.code)
			if test.message != "" {
				testutil.ExpectEq(t, test.message, err.Error())
			}
		})
	}
}

func TestParseErrorPreview(t *testing.T) {
	t.Parallel()
	err := testutil.ParseError(t, "A -> u32 x, ?")

	var syntaxErr *syntax.Error
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *syntax.Error, got %T", err)
	}
	testutil.ExpectEq(t, blink.ErrorKind_SYNTAX, syntaxErr.Kind())
	testutil.ExpectEq(t, "Expected type specifier after ',' but got '?'", syntaxErr.Message())
	testutil.ExpectEq(t, "A -> u32 x, ", syntaxErr.Preview())
}

type failingObserver struct {
	*syntax.Dumper
}

var errStop = errors.New("stop")

func (failingObserver) EndGroupDef() error {
	return errStop
}

func TestParseObserverError(t *testing.T) {
	t.Parallel()
	var buf strings.Builder
	err := syntax.Parse([]byte("A\nB"), failingObserver{syntax.NewDumper(&buf)})
	testutil.ExpectTrue(t, errors.Is(err, errStop))
	testutil.ExpectNoDiff(t, lines(
		`StartGroupDef ("A", -, "", [], -:1:1)`,
	), buf.String())
}

func TestNumberInt64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		num  syntax.Number
		want int64
		ok   bool
	}{
		{syntax.Number{Magnitude: 5}, 5, true},
		{syntax.Number{Magnitude: 5, Negative: true}, -5, true},
		{syntax.Number{Magnitude: 1 << 63, Negative: true}, -1 << 63, true},
		{syntax.Number{Magnitude: 1 << 63}, 0, false},
	}
	for _, test := range tests {
		got, ok := test.num.Int64()
		testutil.ExpectEq(t, test.ok, ok)
		testutil.ExpectEq(t, test.want, got)
	}
}

func TestIsKeyword(t *testing.T) {
	t.Parallel()
	for _, kw := range []string{"namespace", "schema", "type", "u8", "fixedDec", "timeOfDayNano", "object"} {
		testutil.ExpectTrue(t, syntax.IsKeyword(kw))
	}
	testutil.ExpectFalse(t, syntax.IsKeyword("Foo"))
}
