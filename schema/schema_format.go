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

package schema

import (
	"fmt"
	"strings"

	"go.blink-lang.org/blink"
	"go.blink-lang.org/blink/syntax"
)

// Format writes the definitions of one namespace as schema source. Every
// incremental annotation has already been folded into its target, so the
// output contains none. References are written with qualified names.
func (s *Schema) Format(ns string) string {
	var buf strings.Builder
	if ns != "" {
		fmt.Fprintf(&buf, "namespace %s\n", formatName(ns))
	}
	if annots := s.nsAnnots[ns]; len(annots) > 0 {
		buf.WriteString("\nschema")
		for _, key := range annots.Keys() {
			fmt.Fprintf(&buf, " <- @%s=%s", key, formatLiteral(annots[key]))
		}
		buf.WriteString("\n")
	}
	for _, d := range s.DefinesIn(ns) {
		buf.WriteString("\n")
		formatDefine(&buf, d)
	}
	for _, g := range s.GroupsIn(ns) {
		buf.WriteString("\n")
		formatGroup(&buf, g)
	}
	return buf.String()
}

func formatDefine(buf *strings.Builder, d *Define) {
	formatAnnots(buf, d.annots)
	buf.WriteString(formatName(d.name))
	formatID(buf, d.id)
	buf.WriteString(" =")
	if enum, ok := d.Enum(); ok {
		if len(enum.symbols) == 1 {
			buf.WriteString(" |")
		}
		for ii, sym := range enum.symbols {
			if ii > 0 {
				buf.WriteString(" |")
			}
			buf.WriteString(" ")
			formatAnnots(buf, sym.annots)
			fmt.Fprintf(buf, "%s/%d", formatName(sym.name), sym.value)
		}
	} else {
		buf.WriteString(" ")
		formatType(buf, d.typ)
	}
	buf.WriteString("\n")
}

func formatGroup(buf *strings.Builder, g *Group) {
	formatAnnots(buf, g.annots)
	buf.WriteString(formatName(g.name))
	formatID(buf, g.id)
	if g.superName != "" {
		buf.WriteString(" : ")
		buf.WriteString(formatRefName(g.SuperName()))
	}
	if len(g.fields) > 0 {
		buf.WriteString(" ->")
	}
	for ii, f := range g.fields {
		if ii > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		formatType(buf, f.typ)
		buf.WriteString(" ")
		formatAnnots(buf, f.annots)
		buf.WriteString(formatName(f.name))
		formatID(buf, f.id)
		if f.IsOptional() {
			buf.WriteString("?")
		}
	}
	buf.WriteString("\n")
}

func formatType(buf *strings.Builder, t TypeSpec) {
	formatAnnots(buf, t.Annotations())
	switch t := t.(type) {
	case *Type:
		buf.WriteString(t.code.String())
		switch t.code {
		case blink.TypeCode_STRING, blink.TypeCode_BINARY:
			if maxSize, ok := t.MaxSize(); ok {
				fmt.Fprintf(buf, "(%d)", maxSize)
			}
		case blink.TypeCode_FIXED:
			fmt.Fprintf(buf, "(%d)", t.size)
		case blink.TypeCode_FIXED_DEC:
			if t.scale > 0 {
				fmt.Fprintf(buf, "(%d)", t.scale)
			}
		}
	case *Ref:
		buf.WriteString(formatRefName(t.Name()))
		if t.IsDynamic() {
			buf.WriteString("*")
		}
	}
	if t.IsSequence() {
		buf.WriteString("[]")
	}
}

func formatID(buf *strings.Builder, id blink.ID) {
	if id.IsSet() {
		buf.WriteString("/")
		buf.WriteString(id.String())
	}
}

func formatAnnots(buf *strings.Builder, annots blink.Annotations) {
	for _, key := range annots.Keys() {
		fmt.Fprintf(buf, "@%s=%s ", key, formatLiteral(annots[key]))
	}
}

func formatName(name string) string {
	if syntax.IsKeyword(name) {
		return `\` + name
	}
	return name
}

func formatRefName(name string) string {
	if isQualified(name) {
		return name
	}
	return formatName(name)
}

// formatLiteral quotes a value using whichever quote character it does not
// contain. Values containing both are split into adjacent literals, which
// the parser concatenates.
func formatLiteral(value string) string {
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	if !strings.Contains(value, `'`) {
		return `'` + value + `'`
	}
	var parts []string
	for value != "" {
		quote := `"`
		end := strings.Index(value, `"`)
		if end == 0 {
			quote = `'`
			end = strings.Index(value, `'`)
		}
		if end < 0 {
			end = len(value)
		}
		parts = append(parts, quote+value[:end]+quote)
		value = value[end:]
	}
	return strings.Join(parts, " ")
}
