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
	"math"
	"strings"

	"go.blink-lang.org/blink"
)

// Definition is a named, top-level schema entity: a *Group or a *Define.
// Groups and defines share one qualified-name space.
type Definition interface {
	Name() string
	QName() string
	Namespace() string
	ID() blink.ID
	Annotations() blink.Annotations
	Location() blink.Location

	// Weight counts how many times the definition was reached while
	// resolving references. Frequently used definitions sort first.
	Weight() int

	isDefinition()
}

func isQualified(name string) bool {
	return strings.IndexByte(name, ':') >= 0
}

type Group struct {
	name       string
	ns         string
	id         blink.ID
	superName  string
	superRef   *Ref
	superGroup *Group
	annots     blink.Annotations
	fields     []*Field
	fieldNames map[string]*Field
	loc        blink.Location
	weight     int
}

var _ Definition = (*Group)(nil)

func NewGroup(
	name, ns string,
	id blink.ID,
	super string,
	annots blink.Annotations,
	loc blink.Location,
) *Group {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Group{
		name:       name,
		ns:         ns,
		id:         id,
		superName:  super,
		annots:     annots,
		fieldNames: make(map[string]*Field),
		loc:        loc,
	}
}

func (*Group) isDefinition() {}

func (g *Group) Name() string                   { return g.name }
func (g *Group) QName() string                  { return blink.QName(g.ns, g.name) }
func (g *Group) Namespace() string              { return g.ns }
func (g *Group) ID() blink.ID                   { return g.id }
func (g *Group) Annotations() blink.Annotations { return g.annots }
func (g *Group) Location() blink.Location       { return g.loc }
func (g *Group) Weight() int                    { return g.weight }

// SuperName is the supertype reference as written, or its qualified name
// once the schema is finalized. It is empty for groups without a supertype.
func (g *Group) SuperName() string {
	if g.superRef != nil && g.superRef.IsResolved() {
		return g.superRef.Name()
	}
	return g.superName
}

// SuperRef is the resolved supertype reference. The target is either the
// supertype group or a define that aliases it.
func (g *Group) SuperRef() *Ref {
	return g.superRef
}

// Super is the resolved supertype group, or nil.
func (g *Group) Super() *Group {
	return g.superGroup
}

func (g *Group) HasSuper() bool {
	return g.superName != ""
}

// Fields returns the group's own fields in declaration order. Inherited
// fields are not included.
func (g *Group) Fields() []*Field {
	return g.fields
}

func (g *Group) Field(name string) (*Field, bool) {
	f, ok := g.fieldNames[name]
	return f, ok
}

// AllFields returns inherited fields (most distant ancestor first) followed
// by the group's own fields.
func (g *Group) AllFields() []*Field {
	if g.superGroup == nil {
		return g.fields
	}
	inherited := g.superGroup.AllFields()
	out := make([]*Field, 0, len(inherited)+len(g.fields))
	out = append(out, inherited...)
	return append(out, g.fields...)
}

func (g *Group) AddField(f *Field) error {
	if prev, ok := g.fieldNames[f.name]; ok {
		return errDuplicateField(g, f, prev)
	}
	g.fields = append(g.fields, f)
	g.fieldNames[f.name] = f
	return nil
}

type Field struct {
	name     string
	id       blink.ID
	typ      TypeSpec
	presence blink.Presence
	annots   blink.Annotations
	loc      blink.Location
}

func NewField(
	name string,
	id blink.ID,
	typ TypeSpec,
	presence blink.Presence,
	annots blink.Annotations,
	loc blink.Location,
) *Field {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Field{
		name:     name,
		id:       id,
		typ:      typ,
		presence: presence,
		annots:   annots,
		loc:      loc,
	}
}

func (f *Field) Name() string                   { return f.name }
func (f *Field) ID() blink.ID                   { return f.id }
func (f *Field) Type() TypeSpec                 { return f.typ }
func (f *Field) Presence() blink.Presence       { return f.presence }
func (f *Field) IsOptional() bool               { return f.presence == blink.Presence_OPTIONAL }
func (f *Field) Annotations() blink.Annotations { return f.annots }
func (f *Field) Location() blink.Location       { return f.loc }

type Define struct {
	name   string
	ns     string
	id     blink.ID
	typ    TypeSpec
	annots blink.Annotations
	loc    blink.Location
	weight int
}

var _ Definition = (*Define)(nil)

func NewDefine(
	name, ns string,
	id blink.ID,
	typ TypeSpec,
	annots blink.Annotations,
	loc blink.Location,
) *Define {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Define{
		name:   name,
		ns:     ns,
		id:     id,
		typ:    typ,
		annots: annots,
		loc:    loc,
	}
}

func (*Define) isDefinition() {}

func (d *Define) Name() string                   { return d.name }
func (d *Define) QName() string                  { return blink.QName(d.ns, d.name) }
func (d *Define) Namespace() string              { return d.ns }
func (d *Define) ID() blink.ID                   { return d.id }
func (d *Define) Annotations() blink.Annotations { return d.annots }
func (d *Define) Location() blink.Location       { return d.loc }
func (d *Define) Weight() int                    { return d.weight }
func (d *Define) Type() TypeSpec                 { return d.typ }

// Enum returns the define's enumeration, if it defines one.
func (d *Define) Enum() (*Enum, bool) {
	enum, ok := d.typ.(*Enum)
	return enum, ok
}

// TypeSpec is the payload of a field or define: a *Type, a *Ref, or an
// *Enum.
type TypeSpec interface {
	Rank() blink.Rank
	IsSequence() bool
	Annotations() blink.Annotations
	Location() blink.Location

	isTypeSpec()
}

// Type is a primitive type.
type Type struct {
	code    blink.TypeCode
	rank    blink.Rank
	maxSize uint32
	size    uint32
	scale   uint8
	annots  blink.Annotations
	loc     blink.Location
}

func newType(code blink.TypeCode, rank blink.Rank, annots blink.Annotations, loc blink.Location) *Type {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Type{
		code:   code,
		rank:   rank,
		annots: annots,
		loc:    loc,
	}
}

// NewType returns a primitive type without size parameters.
func NewType(code blink.TypeCode, rank blink.Rank, annots blink.Annotations, loc blink.Location) *Type {
	return newType(code, rank, annots, loc)
}

// NewStringType returns a string type. A maxSize of zero means unbounded.
func NewStringType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) *Type {
	t := newType(blink.TypeCode_STRING, rank, annots, loc)
	t.maxSize = maxSize
	return t
}

// NewBinaryType returns a binary type. A maxSize of zero means unbounded.
func NewBinaryType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) *Type {
	t := newType(blink.TypeCode_BINARY, rank, annots, loc)
	t.maxSize = maxSize
	return t
}

func NewFixedType(rank blink.Rank, size uint32, annots blink.Annotations, loc blink.Location) *Type {
	t := newType(blink.TypeCode_FIXED, rank, annots, loc)
	t.size = size
	return t
}

func NewFixedDecType(rank blink.Rank, scale uint8, annots blink.Annotations, loc blink.Location) *Type {
	t := newType(blink.TypeCode_FIXED_DEC, rank, annots, loc)
	t.scale = scale
	return t
}

func (*Type) isTypeSpec() {}

func (t *Type) Code() blink.TypeCode           { return t.code }
func (t *Type) Rank() blink.Rank               { return t.rank }
func (t *Type) IsSequence() bool               { return t.rank == blink.Rank_SEQUENCE }
func (t *Type) Annotations() blink.Annotations { return t.annots }
func (t *Type) Location() blink.Location       { return t.loc }

// MaxSize is the declared maximum size of a string or binary type.
func (t *Type) MaxSize() (uint32, bool) {
	return t.maxSize, t.maxSize > 0
}

// Size is the byte size of a fixed type.
func (t *Type) Size() uint32 {
	return t.size
}

// Scale is the decimal scale of a fixedDec type.
func (t *Type) Scale() uint8 {
	return t.scale
}

// A Ref is either unresolved, holding the name as written plus the
// namespace it was written in, or resolved to a Definition.
type refState interface {
	isRefState()
}

type unresolvedRef struct {
	name string
	ns   string
}

type resolvedRef struct {
	def Definition
}

func (unresolvedRef) isRefState() {}
func (resolvedRef) isRefState()   {}

type Ref struct {
	state  refState
	layout blink.Layout
	rank   blink.Rank
	annots blink.Annotations
	loc    blink.Location
}

// NewRef returns an unresolved reference. The default namespace is used
// when the name is not found as written.
func NewRef(
	name, defaultNs string,
	layout blink.Layout,
	rank blink.Rank,
	annots blink.Annotations,
	loc blink.Location,
) *Ref {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Ref{
		state:  unresolvedRef{name: name, ns: defaultNs},
		layout: layout,
		rank:   rank,
		annots: annots,
		loc:    loc,
	}
}

func (*Ref) isTypeSpec() {}

func (r *Ref) Layout() blink.Layout           { return r.layout }
func (r *Ref) IsDynamic() bool                { return r.layout == blink.Layout_DYNAMIC }
func (r *Ref) Rank() blink.Rank               { return r.rank }
func (r *Ref) IsSequence() bool               { return r.rank == blink.Rank_SEQUENCE }
func (r *Ref) Annotations() blink.Annotations { return r.annots }
func (r *Ref) Location() blink.Location       { return r.loc }

// Name is the name as written while the reference is unresolved, and the
// target's qualified name afterwards.
func (r *Ref) Name() string {
	switch state := r.state.(type) {
	case resolvedRef:
		return state.def.QName()
	case unresolvedRef:
		return state.name
	}
	return ""
}

// DefaultNamespace is the namespace the reference was written in.
func (r *Ref) DefaultNamespace() string {
	switch state := r.state.(type) {
	case resolvedRef:
		return state.def.Namespace()
	case unresolvedRef:
		return state.ns
	}
	return ""
}

func (r *Ref) IsResolved() bool {
	_, ok := r.state.(resolvedRef)
	return ok
}

// Target returns the referenced definition, or nil if unresolved.
func (r *Ref) Target() Definition {
	if state, ok := r.state.(resolvedRef); ok {
		return state.def
	}
	return nil
}

func (r *Ref) resolve(def Definition) {
	r.state = resolvedRef{def: def}
}

type Enum struct {
	symbols []*Symbol
	names   map[string]*Symbol
	values  map[int64]*Symbol
	annots  blink.Annotations
	loc     blink.Location
}

func NewEnum(annots blink.Annotations, loc blink.Location) *Enum {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Enum{
		names:  make(map[string]*Symbol),
		values: make(map[int64]*Symbol),
		annots: annots,
		loc:    loc,
	}
}

func (*Enum) isTypeSpec() {}

func (e *Enum) Rank() blink.Rank               { return blink.Rank_SINGLE }
func (e *Enum) IsSequence() bool               { return false }
func (e *Enum) Annotations() blink.Annotations { return e.annots }
func (e *Enum) Location() blink.Location       { return e.loc }
func (e *Enum) Symbols() []*Symbol             { return e.symbols }

func (e *Enum) Symbol(name string) (*Symbol, bool) {
	sym, ok := e.names[name]
	return sym, ok
}

func (e *Enum) AddSymbol(sym *Symbol) error {
	if prev, ok := e.names[sym.name]; ok {
		return errDuplicateSymbolName(sym, prev)
	}
	if prev, ok := e.values[sym.value]; ok {
		return errDuplicateSymbolValue(sym, prev, sym.value, sym.loc)
	}
	e.symbols = append(e.symbols, sym)
	e.names[sym.name] = sym
	e.values[sym.value] = sym
	return nil
}

// NextValue returns the value of a symbol declared without one: zero for
// the first symbol, otherwise the last symbol's value plus one.
func (e *Enum) NextValue(name string, loc blink.Location) (int64, error) {
	if len(e.symbols) == 0 {
		return 0, nil
	}
	last := e.symbols[len(e.symbols)-1].value
	if last == math.MaxInt64 {
		return 0, errEnumValueOverflow(name, last, loc)
	}
	return last + 1, nil
}

func (e *Enum) setValue(sym *Symbol, value int64, loc blink.Location) error {
	if prev, ok := e.values[value]; ok && prev != sym {
		return errDuplicateSymbolValue(sym, prev, value, loc)
	}
	delete(e.values, sym.value)
	sym.value = value
	e.values[value] = sym
	return nil
}

type Symbol struct {
	name   string
	value  int64
	annots blink.Annotations
	loc    blink.Location
}

func NewSymbol(name string, value int64, annots blink.Annotations, loc blink.Location) *Symbol {
	if annots == nil {
		annots = make(blink.Annotations)
	}
	return &Symbol{
		name:   name,
		value:  value,
		annots: annots,
		loc:    loc,
	}
}

func (s *Symbol) Name() string                   { return s.name }
func (s *Symbol) Value() int64                   { return s.value }
func (s *Symbol) Annotations() blink.Annotations { return s.annots }
func (s *Symbol) Location() blink.Location       { return s.loc }
