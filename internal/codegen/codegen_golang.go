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

package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"unicode"
)

// GoPackageAnnotation is the global schema annotation naming the package
// of generated Go code.
const GoPackageAnnotation = "go:package"

const defaultGoPackage = "schema"

// GenerateGo renders a Go registry of the schema's definitions: a type hash
// constant for every definition, a type ID constant for every definition
// that has one, a constant for every enum symbol, and lookup tables keyed by
// qualified name. Message types themselves are left to language plugins.
func GenerateGo(s Schema) ([]OutputFile, error) {
	c := newGoCodegen(s)
	if err := c.emitSchema(); err != nil {
		return nil, err
	}
	return []OutputFile{{
		Path:    []string{c.goPackage + ".go"},
		Content: c.output,
	}}, nil
}

type goDefinition struct {
	qname       string
	goName      string
	id          *uint64
	hash        string
	annotations map[string]string
	symbols     []Symbol
}

type goCodegen struct {
	schema    Schema
	goPackage string
	defs      []goDefinition

	buf    bytes.Buffer
	output []byte
}

func newGoCodegen(s Schema) *goCodegen {
	goPackage := s.Annotations[GoPackageAnnotation]
	if goPackage == "" {
		goPackage = defaultGoPackage
	}
	return &goCodegen{
		schema:    s,
		goPackage: goPackage,
	}
}

func (c *goCodegen) emitSchema() error {
	if !isGoIdent(c.goPackage) {
		return fmt.Errorf("Invalid Go package name %q", c.goPackage)
	}
	if err := c.collect(); err != nil {
		return err
	}

	c.buf.WriteString("// Code generated by blink-codegen-go. DO NOT EDIT.\n\n")
	fmt.Fprintf(&c.buf, "package %s\n", c.goPackage)
	for _, def := range c.defs {
		c.emitDefinition(def)
	}
	c.emitTables()

	formatted, err := format.Source(c.buf.Bytes())
	if err != nil {
		return fmt.Errorf("format generated code: %w", err)
	}
	c.output = formatted
	return nil
}

// collect assigns every definition an exported Go identifier. With more
// than one namespace, identifiers are prefixed by their namespace.
func (c *goCodegen) collect() error {
	qualify := len(c.schema.Namespaces) > 1
	owners := make(map[string]string)
	add := func(ns string, def goDefinition, name string) error {
		def.goName = exportName(name)
		if qualify && ns != "" {
			def.goName = exportName(ns) + def.goName
		}
		if other, ok := owners[def.goName]; ok {
			return fmt.Errorf("Definitions %s and %s both map to Go name %s", other, def.qname, def.goName)
		}
		owners[def.goName] = def.qname
		c.defs = append(c.defs, def)
		return nil
	}
	for _, ns := range c.schema.Namespaces {
		for _, d := range ns.Defines {
			if d.Hash == "" {
				return fmt.Errorf("Definition %s has no type hash", d.QName)
			}
			def := goDefinition{
				qname:       d.QName,
				id:          d.ID,
				hash:        d.Hash,
				annotations: d.Annotations,
			}
			if d.Type.Kind == "enum" {
				def.symbols = d.Type.Symbols
			}
			if err := add(ns.Name, def, d.Name); err != nil {
				return err
			}
		}
		for _, g := range ns.Groups {
			if g.Hash == "" {
				return fmt.Errorf("Definition %s has no type hash", g.QName)
			}
			def := goDefinition{
				qname:       g.QName,
				id:          g.ID,
				hash:        g.Hash,
				annotations: g.Annotations,
			}
			if err := add(ns.Name, def, g.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *goCodegen) emitDefinition(def goDefinition) {
	c.buf.WriteString("\n")
	c.emitDoc("", def.annotations)
	c.buf.WriteString("const (\n")
	if def.id != nil {
		fmt.Fprintf(&c.buf, "\t%s_TypeID uint64 = %d\n", def.goName, *def.id)
	}
	fmt.Fprintf(&c.buf, "\t%s_Hash uint64 = 0x%s\n", def.goName, def.hash)
	c.buf.WriteString(")\n")

	if len(def.symbols) == 0 {
		return
	}
	c.buf.WriteString("\nconst (\n")
	for _, sym := range def.symbols {
		c.emitDoc("\t", sym.Annotations)
		fmt.Fprintf(&c.buf, "\t%s_%s = %d\n", def.goName, sym.Name, sym.Value)
	}
	c.buf.WriteString(")\n")
}

func (c *goCodegen) emitTables() {
	c.buf.WriteString("\n// TypeHashes maps qualified definition names to type hashes.\n")
	c.buf.WriteString("var TypeHashes = map[string]uint64{\n")
	for _, def := range c.defs {
		fmt.Fprintf(&c.buf, "\t%s: %s_Hash,\n", strconv.Quote(def.qname), def.goName)
	}
	c.buf.WriteString("}\n")

	var ids []goDefinition
	for _, def := range c.defs {
		if def.id != nil {
			ids = append(ids, def)
		}
	}
	c.buf.WriteString("\n// TypeIDs maps qualified definition names to type IDs.\n")
	if len(ids) == 0 {
		c.buf.WriteString("var TypeIDs = map[string]uint64{}\n")
		return
	}
	c.buf.WriteString("var TypeIDs = map[string]uint64{\n")
	for _, def := range ids {
		fmt.Fprintf(&c.buf, "\t%s: %s_TypeID,\n", strconv.Quote(def.qname), def.goName)
	}
	c.buf.WriteString("}\n")
}

// emitDoc writes the "doc" annotation, if any, as a comment.
func (c *goCodegen) emitDoc(indent string, annots map[string]string) {
	doc, ok := annots["doc"]
	if !ok {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		fmt.Fprintf(&c.buf, "%s// %s\n", indent, line)
	}
}

func exportName(name string) string {
	if name == "" {
		return name
	}
	if name[0] == '_' {
		return "X" + name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isGoIdent(name string) bool {
	if name == "" {
		return false
	}
	for ii, r := range name {
		if r != '_' && !unicode.IsLetter(r) && (ii == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
