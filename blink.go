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

// Package blink holds the vocabulary shared by the Blink schema tokenizer,
// parser, schema model, and signature engine.
package blink

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Location identifies a position in a schema source. Line and column are
// 1-based; the zero Location means "unknown".
type Location struct {
	Source string
	Line   int
	Column int
}

func (loc Location) IsZero() bool {
	return loc.Line == 0 && loc.Column == 0 && loc.Source == ""
}

func (loc Location) String() string {
	src := loc.Source
	if src == "" {
		src = "-"
	}
	return fmt.Sprintf("%s:%d:%d", src, loc.Line, loc.Column)
}

// ID is an optional numeric identifier attached to a group, field, or define.
type ID struct {
	value uint64
	set   bool
}

func MakeID(value uint64) ID {
	return ID{value: value, set: true}
}

func (id ID) Get() (uint64, bool) {
	return id.value, id.set
}

func (id ID) IsSet() bool {
	return id.set
}

func (id ID) String() string {
	if !id.set {
		return ""
	}
	return strconv.FormatUint(id.value, 10)
}

// Annotations map annotation names (possibly namespace-qualified) to their
// string values.
type Annotations map[string]string

// Merge copies every entry of other into annots, replacing existing keys.
func (annots Annotations) Merge(other Annotations) {
	maps.Copy(annots, other)
}

func (annots Annotations) Clone() Annotations {
	out := make(Annotations, len(annots))
	maps.Copy(out, annots)
	return out
}

func (annots Annotations) Keys() []string {
	return slices.Sorted(maps.Keys(annots))
}

// String renders the annotations as `[k="v", ...]` in key order.
func (annots Annotations) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for ii, key := range annots.Keys() {
		if ii > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%q", key, annots[key])
	}
	buf.WriteByte(']')
	return buf.String()
}

// QName joins a namespace and a local name. The empty namespace yields the
// bare name.
func QName(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + ":" + name
}

// SplitQName is the inverse of QName.
func SplitQName(qname string) (ns, name string) {
	if idx := strings.IndexByte(qname, ':'); idx >= 0 {
		return qname[:idx], qname[idx+1:]
	}
	return "", qname
}

type ErrorKind uint8

const (
	ErrorKind_UNKNOWN ErrorKind = iota
	ErrorKind_LEXICAL
	ErrorKind_SYNTAX
	ErrorKind_SEMANTIC
	ErrorKind_RESOLUTION
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKind_LEXICAL:
		return "lexical"
	case ErrorKind_SYNTAX:
		return "syntax"
	case ErrorKind_SEMANTIC:
		return "semantic"
	case ErrorKind_RESOLUTION:
		return "resolution"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Diagnostic is implemented by the error types of the syntax and schema
// packages.
type Diagnostic interface {
	error
	Code() uint32
	Kind() ErrorKind
	Message() string
	Location() Location
}

// FormatDiagnostic renders `source:line:col: error: message`.
func FormatDiagnostic(loc Location, message string) string {
	return fmt.Sprintf("%s: error: %s", loc, message)
}
