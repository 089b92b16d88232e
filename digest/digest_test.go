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

package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.blink-lang.org/blink/digest"
	"go.blink-lang.org/blink/internal/testutil"
	"go.blink-lang.org/blink/schema"
)

func TestHashBytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "43274d2015e0b9c4", digest.HashBytes("A>>Ix!Uy?"))
	assert.Len(t, digest.HashBytes(""), digest.HashLen)
	testutil.ExpectMatch(t, `^[0-9a-f]{16}$`, digest.HashBytes("B>43274d2015e0b9c4>Bz!"))
}

func TestGroupSignature(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "A/1 -> u32 x, @doc=\"ignored\" string y?")
	a := s.Find("A", "")
	assert.Equal(t, "A>>Ix!Uy?", digest.Signature(a))
	assert.Equal(t, "43274d2015e0b9c4", digest.Hash(a))
}

func TestQualifiedSignature(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "namespace N\nA -> u32 x, string y?")
	assert.Equal(t, "5a9a49ae9669a99d", digest.Hash(s.Find("N:A", "")))
}

func TestSupertypeSignature(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "A -> u32 x, string y?\nB : A -> i64 z")
	b := s.Find("B", "")
	assert.Equal(t, "B>43274d2015e0b9c4>lz!", digest.Signature(b))
}

func TestSupertypeThroughAlias(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "A\nAlias = A\nB : Alias")
	alias := s.Find("Alias", "")
	assert.Equal(t, "B>"+digest.Hash(alias)+">", digest.Signature(s.Find("B", "")))
	assert.Equal(t, "Alias=R"+digest.Hash(s.Find("A", ""))+";", digest.Signature(alias))
}

func TestTypeTokens(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, `T -> i8 a, u8 b, i16 c, u16 d, i32 e, u32 f, i64 g, u64 h,
  f64 i, decimal j, fixedDec k, fixedDec(2) l, date m, timeOfDayMilli n,
  timeOfDayNano o, nanotime p, millitime q, bool r, object s,
  string t, string(5) u, binary v, binary(7) w, fixed(4) x, u32[] y`)
	assert.Equal(t,
		"T>>ca!Cb!sc!Sd!ie!If!lg!Lh!fi!dj!Fk!F2l!Dm!mn!no!Np!Mq!Br!Os!Ut!U5u!Vv!V7w!X4x!I*y!",
		digest.Signature(s.Find("T", "")),
	)
}

func TestReferenceTokens(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "namespace N\nA\nE = X | Y\nR -> A a, A* b, A*[] c, E e, A[] f")
	hashA := digest.Hash(s.Find("A", "N"))
	hashE := digest.Hash(s.Find("E", "N"))
	assert.Equal(t,
		"N:R>>R"+hashA+";a!YN:A;b!YN:A;*c!R"+hashE+";e!R"+hashA+";*f!",
		digest.Signature(s.Find("R", "N")),
	)
}

func TestDefineSignature(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "D = u32[]\nE = | X")
	assert.Equal(t, "D=I*", digest.Signature(s.Find("D", "")))
	assert.Equal(t, "E=E", digest.Signature(s.Find("E", "")))
}

func TestSignatureIgnoresAnnotationsAndIDs(t *testing.T) {
	t.Parallel()
	plain := testutil.Compile(t, "A -> u32 x")
	annotated := testutil.Compile(t, "@a=\"1\" A/99 -> @b=\"2\" u32 @c=\"3\" x/4\nA <- @d=\"4\"")
	assert.Equal(t,
		digest.Hash(plain.Find("A", "")),
		digest.Hash(annotated.Find("A", "")),
	)
}

func TestDigesterMemoizes(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "A -> u32 x\nB -> A a\nC : B -> A a2")
	d := digest.New()

	hashes := make(map[string]string)
	for _, g := range s.Groups() {
		hashes[g.QName()] = d.Hash(g)
	}
	for _, g := range s.Groups() {
		assert.Equal(t, digest.Hash(g), hashes[g.QName()])
	}
	require.Len(t, hashes, 3)
}

func TestSignatureChangesWithStructure(t *testing.T) {
	t.Parallel()
	tests := []string{
		"A -> u32 x",
		"A -> u32 x?",
		"A -> u32 y",
		"A -> i32 x",
		"A -> u32[] x",
		"A -> u32 x, u32 y",
	}
	seen := make(map[string]string)
	for _, src := range tests {
		s := testutil.Compile(t, src)
		hash := digest.Hash(s.Find("A", ""))
		if prev, ok := seen[hash]; ok {
			t.Errorf("hash collision between %q and %q", prev, src)
		}
		seen[hash] = src
	}
}

func TestSupertypeChangeChangesHash(t *testing.T) {
	t.Parallel()
	before := testutil.Compile(t, "A -> u32 x\nB : A")
	after := testutil.Compile(t, "A -> i32 x\nB : A")
	assert.Equal(t, digest.Signature(before.Find("B", "")), "B>"+digest.Hash(before.Find("A", ""))+">")
	assert.NotEqual(t,
		digest.Hash(before.Find("A", "")),
		digest.Hash(after.Find("A", "")),
	)
	assert.NotEqual(t,
		digest.Hash(before.Find("B", "")),
		digest.Hash(after.Find("B", "")),
	)
}

func TestHashAllDefinitions(t *testing.T) {
	t.Parallel()
	s := testutil.Compile(t, "namespace N\nD = A\nA -> A* self\nB : D")
	d := digest.New()
	var defs []schema.Definition
	for _, def := range s.Defines() {
		defs = append(defs, def)
	}
	for _, g := range s.Groups() {
		defs = append(defs, g)
	}
	for _, def := range defs {
		assert.Len(t, d.Hash(def), digest.HashLen, def.QName())
	}
}
