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
	"cmp"
	"slices"

	"go.blink-lang.org/blink"
)

// Finalize applies queued incremental annotations, resolves every
// reference, validates the result, and orders definitions by weight. The
// first error aborts finalization and leaves the schema unusable.
func (s *Schema) Finalize() error {
	if s.finalized {
		return errSchemaFinalized(blink.Location{})
	}

	for _, annot := range s.incrAnnots {
		if err := s.applyIncrAnnot(annot); err != nil {
			return err
		}
	}
	s.incrAnnots = nil

	r := &resolver{
		schema:   s,
		visiting: make(map[Definition]struct{}),
	}
	for _, d := range s.defines {
		if err := r.resolveDefine(d, d.Location(), false); err != nil {
			return err
		}
	}
	for _, g := range s.groups {
		if err := r.resolveGroup(g, g.Location()); err != nil {
			return err
		}
	}
	for _, g := range s.groups {
		if err := r.checkInheritance(g, make(map[string]inheritedField)); err != nil {
			return err
		}
	}

	byWeight := func(a, b Definition) int {
		return cmp.Compare(b.Weight(), a.Weight())
	}
	slices.SortStableFunc(s.defines, func(a, b *Define) int { return byWeight(a, b) })
	slices.SortStableFunc(s.groups, func(a, b *Group) int { return byWeight(a, b) })

	s.nsDefines = make(map[string][]*Define)
	for _, d := range s.defines {
		s.nsDefines[d.ns] = append(s.nsDefines[d.ns], d)
	}
	s.nsGroups = make(map[string][]*Group)
	for _, g := range s.groups {
		s.nsGroups[g.ns] = append(s.nsGroups[g.ns], g)
	}
	s.namespaces = collectNamespaces(s.defines, s.groups)
	s.finalized = true
	return nil
}

func (s *Schema) applyIncrAnnot(annot *IncrAnnot) error {
	switch def := s.Find(annot.Name, annot.Namespace).(type) {
	case *Define:
		return applyDefineAnnot(def, annot)
	case *Group:
		return s.applyGroupAnnot(def, annot)
	}
	s.warn(warnNoSuchDefinition(annot))
	return nil
}

func setID(id *blink.ID, annot *IncrAnnot) error {
	if !annot.HasValue {
		return nil
	}
	if !annot.ID.IsSet() {
		return errIncrAnnotNegativeID(annot)
	}
	*id = annot.ID
	return nil
}

func applyDefineAnnot(d *Define, annot *IncrAnnot) error {
	enum, isEnum := d.Enum()
	if annot.Substep != "" {
		if annot.PathType == blink.PathType_TYPE {
			return errIncrAnnotTypeOnSymbol(annot)
		}
		if !isEnum {
			return errIncrAnnotNotEnum(annot)
		}
		sym, ok := enum.Symbol(annot.Substep)
		if !ok {
			return errIncrAnnotNoSuchSymbol(annot)
		}
		sym.annots.Merge(annot.Annotations)
		if annot.HasValue {
			return enum.setValue(sym, annot.Value, annot.Location)
		}
		return nil
	}
	if annot.PathType == blink.PathType_TYPE {
		if isEnum {
			return errIncrAnnotTypeOnEnum(annot)
		}
		d.typ.Annotations().Merge(annot.Annotations)
		return nil
	}
	d.annots.Merge(annot.Annotations)
	return setID(&d.id, annot)
}

func (s *Schema) applyGroupAnnot(g *Group, annot *IncrAnnot) error {
	if annot.Substep == "" {
		if annot.PathType == blink.PathType_TYPE {
			return errIncrAnnotTypeOnGroup(annot)
		}
		g.annots.Merge(annot.Annotations)
		return setID(&g.id, annot)
	}
	f, ok := g.Field(annot.Substep)
	if !ok {
		s.warn(warnNoSuchField(annot, g))
		return nil
	}
	if annot.PathType == blink.PathType_TYPE {
		f.typ.Annotations().Merge(annot.Annotations)
		return nil
	}
	f.annots.Merge(annot.Annotations)
	return setID(&f.id, annot)
}

// resolver links references to their targets. Definitions on the current
// resolution path are tracked in visiting; reaching one of them again is a
// cycle.
type resolver struct {
	schema   *Schema
	visiting map[Definition]struct{}
}

func (r *resolver) enter(def Definition, loc blink.Location) error {
	if _, ok := r.visiting[def]; ok {
		return errRecursiveReference(def, loc)
	}
	r.visiting[def] = struct{}{}
	return nil
}

func (r *resolver) leave(def Definition) {
	delete(r.visiting, def)
}

func (r *resolver) lookup(ref *Ref, what string) (Definition, error) {
	if def := ref.Target(); def != nil {
		return def, nil
	}
	state := ref.state.(unresolvedRef)
	def := r.schema.Find(state.name, state.ns)
	if def == nil {
		return nil, errNoSuchDefinition(what, state.name, state.ns, ref.loc)
	}
	ref.resolve(def)
	return def, nil
}

// resolveDefine follows the alias chain of a define. Only define-to-define
// edges are followed here; groups are resolved in their own pass.
func (r *resolver) resolveDefine(d *Define, loc blink.Location, inSequence bool) error {
	if err := r.enter(d, loc); err != nil {
		return err
	}
	defer r.leave(d)
	if inSequence && d.typ.IsSequence() {
		return errNestedSequence(d.QName(), loc)
	}
	d.weight += 1

	ref, ok := d.typ.(*Ref)
	if !ok {
		return nil
	}
	def, err := r.lookup(ref, "type")
	if err != nil {
		return err
	}
	if ref.IsDynamic() {
		if _, ok := def.(*Group); !ok {
			return errDynamicRefNotGroup(ref.Name(), ref.loc)
		}
		return nil
	}
	if target, ok := def.(*Define); ok {
		return r.resolveDefine(target, ref.loc, inSequence || ref.IsSequence())
	}
	return nil
}

func (r *resolver) resolveGroup(g *Group, loc blink.Location) error {
	if err := r.enter(g, loc); err != nil {
		return err
	}
	defer r.leave(g)
	g.weight += 1

	for _, f := range g.fields {
		if err := r.resolveType(f.typ, f.typ); err != nil {
			return err
		}
	}

	if g.superName == "" {
		return nil
	}
	if g.superRef == nil {
		g.superRef = NewRef(g.superName, g.ns, blink.Layout_STATIC, blink.Rank_SINGLE, nil, g.loc)
	}
	def, err := r.lookup(g.superRef, "super")
	if err != nil {
		return err
	}
	switch def := def.(type) {
	case *Group:
		return r.resolveGroup(def, g.loc)
	case *Define:
		return r.resolveAlias(def, g.loc, def.typ)
	}
	return nil
}

// resolveType resolves a field type (or the type of an alias it goes
// through). outer is the type as written on the field.
func (r *resolver) resolveType(t, outer TypeSpec) error {
	ref, ok := t.(*Ref)
	if !ok {
		return nil
	}
	def, err := r.lookup(ref, "type")
	if err != nil {
		return err
	}
	if ref.IsDynamic() {
		if _, ok := def.(*Group); !ok {
			return errDynamicRefNotGroup(ref.Name(), ref.loc)
		}
		return nil
	}
	switch def := def.(type) {
	case *Group:
		return r.resolveGroup(def, ref.loc)
	case *Define:
		return r.resolveAlias(def, ref.loc, outer)
	}
	return nil
}

func (r *resolver) resolveAlias(d *Define, loc blink.Location, outer TypeSpec) error {
	if err := r.enter(d, loc); err != nil {
		return err
	}
	defer r.leave(d)
	if outer != d.typ && outer.IsSequence() && d.typ.IsSequence() {
		return errNestedSequence(d.QName(), loc)
	}
	d.weight += 1
	return r.resolveType(d.typ, outer)
}

type inheritedField struct {
	field *Field
	owner *Group
}

// checkInheritance links g to its supertype group and verifies that no
// field shadows an inherited one. Ancestor fields are collected first.
func (r *resolver) checkInheritance(g *Group, seen map[string]inheritedField) error {
	if g.superName != "" {
		if g.superGroup == nil {
			superName := g.superRef.Name()
			res, _ := r.schema.ResolveRef(g.superRef)
			if res.Group == nil {
				return errSuperNotGroup(g, superName)
			}
			if res.IsDynamic {
				return errSuperDynamic(g, superName)
			}
			if res.IsSequence {
				return errSuperSequence(g, superName)
			}
			g.superGroup = res.Group
		}
		if err := r.checkInheritance(g.superGroup, seen); err != nil {
			return err
		}
	}
	for _, f := range g.fields {
		if prev, ok := seen[f.name]; ok {
			return errFieldShadowed(g, f, prev.owner, prev.field)
		}
		seen[f.name] = inheritedField{field: f, owner: g}
	}
	return nil
}

// Resolution describes what a type ultimately denotes after following
// define aliases. Exactly one of Group, Define, or Type is set.
type Resolution struct {
	// Group is set when the chain ends at a group.
	Group *Group
	// Define is set when the chain ends at an enum define.
	Define *Define
	// Type is set when the chain ends at a primitive type.
	Type *Type

	// IsSequence is set if any link in the chain has sequence rank.
	IsSequence bool
	// IsDynamic is set if any link in the chain is a dynamic reference.
	IsDynamic bool
}

// ResolveRef follows t through define aliases. It reports false if a name
// along the way cannot be found, the chain is cyclic, or t is an inline
// enum.
func (s *Schema) ResolveRef(t TypeSpec) (Resolution, bool) {
	var res Resolution
	seen := make(map[*Define]struct{})
	for {
		res.IsSequence = res.IsSequence || t.IsSequence()
		switch spec := t.(type) {
		case *Type:
			res.Type = spec
			return res, true
		case *Ref:
			res.IsDynamic = res.IsDynamic || spec.IsDynamic()
			def := spec.Target()
			if def == nil {
				state := spec.state.(unresolvedRef)
				def = s.Find(state.name, state.ns)
			}
			switch def := def.(type) {
			case *Group:
				res.Group = def
				return res, true
			case *Define:
				if _, ok := def.Enum(); ok {
					res.Define = def
					return res, true
				}
				if _, ok := seen[def]; ok {
					return Resolution{}, false
				}
				seen[def] = struct{}{}
				t = def.typ
				continue
			}
			return Resolution{}, false
		default:
			return Resolution{}, false
		}
	}
}
