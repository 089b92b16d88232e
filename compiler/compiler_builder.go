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

package compiler

import (
	"go.blink-lang.org/blink"
	"go.blink-lang.org/blink/schema"
	"go.blink-lang.org/blink/syntax"
)

// Builder is the syntax.Observer that turns parse events into schema model
// objects. A Builder handles one source; its namespace starts out empty
// and is set by the source's namespace declaration.
type Builder struct {
	schema *schema.Schema
	ns     string

	group    *schema.Group
	fieldLoc blink.Location
	define   *pendingDefine
	enum     *schema.Enum
	typ      schema.TypeSpec
}

type pendingDefine struct {
	name   string
	id     blink.ID
	annots blink.Annotations
	loc    blink.Location
}

var _ syntax.Observer = (*Builder)(nil)

func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{schema: s}
}

func (b *Builder) Namespace() string {
	return b.ns
}

func (b *Builder) NsDecl(name string, loc blink.Location) error {
	b.ns = name
	return nil
}

func (b *Builder) StartGroupDef(name string, id blink.ID, super string, annots blink.Annotations, loc blink.Location) error {
	b.group = schema.NewGroup(name, b.ns, id, super, annots, loc)
	return b.schema.AddGroup(b.group)
}

func (b *Builder) EndGroupDef() error {
	b.group = nil
	return nil
}

func (b *Builder) StartField(loc blink.Location) error {
	b.fieldLoc = loc
	b.typ = nil
	return nil
}

func (b *Builder) EndField(name string, id blink.ID, presence blink.Presence, annots blink.Annotations) error {
	field := schema.NewField(name, id, b.typ, presence, annots, b.fieldLoc)
	b.typ = nil
	return b.group.AddField(field)
}

func (b *Builder) StartDefine(name string, id blink.ID, annots blink.Annotations, loc blink.Location) error {
	b.define = &pendingDefine{
		name:   name,
		id:     id,
		annots: annots,
		loc:    loc,
	}
	b.typ = nil
	return nil
}

func (b *Builder) EndDefine() error {
	d := b.define
	b.define = nil
	define := schema.NewDefine(d.name, b.ns, d.id, b.typ, d.annots, d.loc)
	b.typ = nil
	return b.schema.AddDefine(define)
}

func (b *Builder) StartEnum(loc blink.Location) error {
	b.enum = schema.NewEnum(nil, loc)
	return nil
}

func (b *Builder) EndEnum() error {
	b.typ = b.enum
	b.enum = nil
	return nil
}

func (b *Builder) TypeRef(name string, layout blink.Layout, rank blink.Rank, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewRef(name, b.ns, layout, rank, annots, loc)
	return nil
}

func (b *Builder) StringType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewStringType(rank, maxSize, annots, loc)
	return nil
}

func (b *Builder) BinaryType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewBinaryType(rank, maxSize, annots, loc)
	return nil
}

func (b *Builder) FixedType(rank blink.Rank, size uint32, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewFixedType(rank, size, annots, loc)
	return nil
}

func (b *Builder) FixedDecType(rank blink.Rank, scale uint8, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewFixedDecType(rank, scale, annots, loc)
	return nil
}

func (b *Builder) PrimType(code blink.TypeCode, rank blink.Rank, annots blink.Annotations, loc blink.Location) error {
	b.typ = schema.NewType(code, rank, annots, loc)
	return nil
}

// EnumSym adds a symbol to the current enum. Symbols without an explicit
// value take the previous symbol's value plus one, starting at zero.
func (b *Builder) EnumSym(name string, value int64, hasValue bool, annots blink.Annotations, loc blink.Location) error {
	if !hasValue {
		next, err := b.enum.NextValue(name, loc)
		if err != nil {
			return err
		}
		value = next
	}
	return b.enum.AddSymbol(schema.NewSymbol(name, value, annots, loc))
}

func (b *Builder) SchemaAnnot(annots blink.Annotations, loc blink.Location) error {
	b.schema.AddAnnotations(annots, b.ns)
	return nil
}

func (b *Builder) IncrAnnot(name, substep string, pathType blink.PathType, value *syntax.Number, annots blink.Annotations, loc blink.Location) error {
	annot := &schema.IncrAnnot{
		Name:        name,
		Namespace:   b.ns,
		Substep:     substep,
		PathType:    pathType,
		Annotations: annots,
		Location:    loc,
	}
	if annot.Annotations == nil {
		annot.Annotations = make(blink.Annotations)
	}
	if value != nil {
		annot.HasValue = true
		if !value.Negative {
			annot.ID = blink.MakeID(value.Magnitude)
		}
		if v, ok := value.Int64(); ok {
			annot.Value = v
		} else {
			annot.Value = int64(value.Magnitude)
		}
	}
	return b.schema.AddIncrAnnot(annot)
}
