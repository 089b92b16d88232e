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

// Package codegen defines the JSON documents exchanged with codegen plugins
// and a Go code generator that consumes them.
package codegen

import (
	"go.blink-lang.org/blink"
	"go.blink-lang.org/blink/digest"
	"go.blink-lang.org/blink/schema"
)

// A Request is the resolved schema flattened into plain JSON values.
// References are written as qualified names and every definition carries
// its type hash.
type Request struct {
	Language string `json:"language"`
	Schema   Schema `json:"schema"`
}

// A Response is either an error message or a set of files. File contents
// are base64 encoded by encoding/json.
type Response struct {
	Error string       `json:"error,omitempty"`
	Files []OutputFile `json:"files"`
}

type OutputFile struct {
	Path    []string `json:"path"`
	Content []byte   `json:"content"`
}

type Schema struct {
	Annotations blink.Annotations `json:"annotations,omitempty"`
	Namespaces  []Namespace       `json:"namespaces"`
}

type Namespace struct {
	Name        string            `json:"name"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
	Defines     []Define          `json:"defines,omitempty"`
	Groups      []Group           `json:"groups,omitempty"`
}

type Define struct {
	Name        string            `json:"name"`
	QName       string            `json:"qname"`
	ID          *uint64           `json:"id,omitempty"`
	Hash        string            `json:"hash"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
	Type        Type              `json:"type"`
}

type Group struct {
	Name        string            `json:"name"`
	QName       string            `json:"qname"`
	ID          *uint64           `json:"id,omitempty"`
	Hash        string            `json:"hash"`
	Super       string            `json:"super,omitempty"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
	Fields      []Field           `json:"fields"`
}

type Field struct {
	Name        string            `json:"name"`
	ID          *uint64           `json:"id,omitempty"`
	Optional    bool              `json:"optional,omitempty"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
	Type        Type              `json:"type"`
}

// Type is a tagged union on Kind: "primitive", "ref", or "enum".
type Type struct {
	Kind        string            `json:"kind"`
	Code        string            `json:"code,omitempty"`
	Ref         string            `json:"ref,omitempty"`
	Dynamic     bool              `json:"dynamic,omitempty"`
	Sequence    bool              `json:"sequence,omitempty"`
	MaxSize     uint32            `json:"max_size,omitempty"`
	Size        uint32            `json:"size,omitempty"`
	Scale       uint8             `json:"scale,omitempty"`
	Symbols     []Symbol          `json:"symbols,omitempty"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
}

type Symbol struct {
	Name        string            `json:"name"`
	Value       int64             `json:"value"`
	Annotations blink.Annotations `json:"annotations,omitempty"`
}

// BuildModel flattens a finalized schema. Namespaces, definitions and
// fields keep their declaration order.
func BuildModel(s *schema.Schema) Schema {
	d := digest.New()
	out := Schema{
		Annotations: nonEmpty(s.Annotations("")),
		Namespaces:  []Namespace{},
	}
	for _, ns := range s.Namespaces() {
		mns := Namespace{
			Name:        ns,
			Annotations: nonEmpty(s.Annotations(ns)),
		}
		if ns == "" {
			mns.Annotations = nil
		}
		for _, def := range s.DefinesIn(ns) {
			mns.Defines = append(mns.Defines, Define{
				Name:        def.Name(),
				QName:       def.QName(),
				ID:          makeID(def.ID()),
				Hash:        d.Hash(def),
				Annotations: nonEmpty(def.Annotations()),
				Type:        buildType(def.Type()),
			})
		}
		for _, g := range s.GroupsIn(ns) {
			mg := Group{
				Name:        g.Name(),
				QName:       g.QName(),
				ID:          makeID(g.ID()),
				Hash:        d.Hash(g),
				Annotations: nonEmpty(g.Annotations()),
				Fields:      []Field{},
			}
			if super := g.Super(); super != nil {
				mg.Super = super.QName()
			}
			for _, f := range g.Fields() {
				mg.Fields = append(mg.Fields, Field{
					Name:        f.Name(),
					ID:          makeID(f.ID()),
					Optional:    f.IsOptional(),
					Annotations: nonEmpty(f.Annotations()),
					Type:        buildType(f.Type()),
				})
			}
			mns.Groups = append(mns.Groups, mg)
		}
		out.Namespaces = append(out.Namespaces, mns)
	}
	return out
}

func buildType(t schema.TypeSpec) Type {
	out := Type{
		Sequence:    t.IsSequence(),
		Annotations: nonEmpty(t.Annotations()),
	}
	switch t := t.(type) {
	case *schema.Type:
		out.Kind = "primitive"
		out.Code = t.Code().String()
		switch t.Code() {
		case blink.TypeCode_STRING, blink.TypeCode_BINARY:
			out.MaxSize, _ = t.MaxSize()
		case blink.TypeCode_FIXED:
			out.Size = t.Size()
		case blink.TypeCode_FIXED_DEC:
			out.Scale = t.Scale()
		}
	case *schema.Ref:
		out.Kind = "ref"
		out.Ref = t.Name()
		out.Dynamic = t.IsDynamic()
	case *schema.Enum:
		out.Kind = "enum"
		for _, sym := range t.Symbols() {
			out.Symbols = append(out.Symbols, Symbol{
				Name:        sym.Name(),
				Value:       sym.Value(),
				Annotations: nonEmpty(sym.Annotations()),
			})
		}
	}
	return out
}

func makeID(id blink.ID) *uint64 {
	if value, ok := id.Get(); ok {
		return &value
	}
	return nil
}

func nonEmpty(annots blink.Annotations) blink.Annotations {
	if len(annots) == 0 {
		return nil
	}
	return annots
}
