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

// Package digest computes structural signatures of finalized schema
// definitions and the 64-bit hashes derived from them.
//
// A group signature has the form
//
//	qname ">" [superHash] ">" (typeToken fieldName ("?" | "!"))*
//
// and a define signature has the form
//
//	qname "=" typeToken
//
// Annotations and IDs do not contribute to signatures.
package digest

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"go.blink-lang.org/blink"
	"go.blink-lang.org/blink/schema"
)

// HashLen is the number of hex digits in a hash.
const HashLen = 16

// pending marks a definition whose hash is being computed.
const pending = "0"

var typeTokens = map[blink.TypeCode]string{
	blink.TypeCode_I8:                "c",
	blink.TypeCode_U8:                "C",
	blink.TypeCode_I16:               "s",
	blink.TypeCode_U16:               "S",
	blink.TypeCode_I32:               "i",
	blink.TypeCode_U32:               "I",
	blink.TypeCode_I64:               "l",
	blink.TypeCode_U64:               "L",
	blink.TypeCode_F64:               "f",
	blink.TypeCode_DECIMAL:           "d",
	blink.TypeCode_FIXED_DEC:         "F",
	blink.TypeCode_DATE:              "D",
	blink.TypeCode_TIME_OF_DAY_MILLI: "m",
	blink.TypeCode_TIME_OF_DAY_NANO:  "n",
	blink.TypeCode_NANOTIME:          "N",
	blink.TypeCode_MILLITIME:         "M",
	blink.TypeCode_BOOL:              "B",
	blink.TypeCode_OBJECT:            "O",
	blink.TypeCode_STRING:            "U",
	blink.TypeCode_BINARY:            "V",
	blink.TypeCode_FIXED:             "X",
}

// Digester computes signatures and hashes, memoizing hashes per
// definition. A Digester must only be used with one finalized schema.
type Digester struct {
	hashes map[schema.Definition]string
}

func New() *Digester {
	return &Digester{
		hashes: make(map[schema.Definition]string),
	}
}

// Signature returns the signature of a single definition.
func Signature(def schema.Definition) string {
	return New().Signature(def)
}

// Hash returns the hash of a single definition.
func Hash(def schema.Definition) string {
	return New().Hash(def)
}

// HashBytes returns the first HashLen hex digits of the SHA-1 of sig.
func HashBytes(sig string) string {
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])[:HashLen]
}

func (d *Digester) Hash(def schema.Definition) string {
	if hash, ok := d.hashes[def]; ok {
		return hash
	}
	d.hashes[def] = pending
	hash := HashBytes(d.Signature(def))
	d.hashes[def] = hash
	return hash
}

func (d *Digester) Signature(def schema.Definition) string {
	var buf strings.Builder
	buf.WriteString(def.QName())
	switch def := def.(type) {
	case *schema.Group:
		buf.WriteByte('>')
		if ref := def.SuperRef(); ref != nil && ref.Target() != nil {
			buf.WriteString(d.Hash(ref.Target()))
		}
		buf.WriteByte('>')
		for _, f := range def.Fields() {
			d.writeType(&buf, f.Type())
			buf.WriteString(f.Name())
			if f.IsOptional() {
				buf.WriteByte('?')
			} else {
				buf.WriteByte('!')
			}
		}
	case *schema.Define:
		buf.WriteByte('=')
		d.writeType(&buf, def.Type())
	}
	return buf.String()
}

func (d *Digester) writeType(buf *strings.Builder, t schema.TypeSpec) {
	switch t := t.(type) {
	case *schema.Enum:
		buf.WriteByte('E')
	case *schema.Ref:
		if t.IsDynamic() {
			buf.WriteByte('Y')
			buf.WriteString(t.Name())
		} else {
			buf.WriteByte('R')
			if target := t.Target(); target != nil {
				buf.WriteString(d.Hash(target))
			} else {
				buf.WriteString(pending)
			}
		}
		buf.WriteByte(';')
	case *schema.Type:
		buf.WriteString(typeTokens[t.Code()])
		switch t.Code() {
		case blink.TypeCode_STRING, blink.TypeCode_BINARY:
			if maxSize, ok := t.MaxSize(); ok {
				buf.WriteString(strconv.FormatUint(uint64(maxSize), 10))
			}
		case blink.TypeCode_FIXED:
			buf.WriteString(strconv.FormatUint(uint64(t.Size()), 10))
		case blink.TypeCode_FIXED_DEC:
			if t.Scale() > 0 {
				buf.WriteString(strconv.FormatUint(uint64(t.Scale()), 10))
			}
		}
	}
	if t.IsSequence() {
		buf.WriteByte('*')
	}
}
