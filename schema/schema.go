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

// Package schema is the in-memory model of a Blink schema: groups, defines,
// enumerations, and annotations, with the resolver that links references
// and validates the result.
package schema

import (
	"github.com/rs/zerolog"

	"go.blink-lang.org/blink"
)

type Option interface {
	apply(*Schema)
}

type schemaOption func(*Schema)

func (f schemaOption) apply(s *Schema) {
	f(s)
}

// WithLogger sets the logger that receives warnings. The default logger
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return schemaOption(func(s *Schema) {
		s.logger = logger
	})
}

// Schema is a registry of definitions. It is mutable until Finalize
// succeeds, and read-only afterwards.
type Schema struct {
	logger zerolog.Logger

	defs    map[string]Definition
	groups  []*Group
	defines []*Define

	nsGroups   map[string][]*Group
	nsDefines  map[string][]*Define
	namespaces []string

	annots   blink.Annotations
	nsAnnots map[string]blink.Annotations

	incrAnnots []*IncrAnnot
	warnings   []*Warning
	finalized  bool
}

func New(opts ...Option) *Schema {
	s := &Schema{
		logger:   zerolog.Nop(),
		defs:     make(map[string]Definition),
		annots:   make(blink.Annotations),
		nsAnnots: make(map[string]blink.Annotations),
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// IncrAnnot is a queued incremental annotation, applied during Finalize.
//
// HasValue is set when the clause carried a number. ID holds the same
// number when it is non-negative.
type IncrAnnot struct {
	Name        string
	Namespace   string
	Substep     string
	PathType    blink.PathType
	ID          blink.ID
	Value       int64
	HasValue    bool
	Annotations blink.Annotations
	Location    blink.Location
}

func (s *Schema) IsFinalized() bool {
	return s.finalized
}

func (s *Schema) addDefinition(def Definition) error {
	if s.finalized {
		return errSchemaFinalized(def.Location())
	}
	if prev, ok := s.defs[def.QName()]; ok {
		return errDuplicateDefinition(def, prev)
	}
	s.defs[def.QName()] = def
	return nil
}

func (s *Schema) AddGroup(g *Group) error {
	if err := s.addDefinition(g); err != nil {
		return err
	}
	s.groups = append(s.groups, g)
	return nil
}

func (s *Schema) AddDefine(d *Define) error {
	if err := s.addDefinition(d); err != nil {
		return err
	}
	s.defines = append(s.defines, d)
	return nil
}

// AddAnnotations merges schema-level annotations into both the namespace's
// annotations and the global annotations.
func (s *Schema) AddAnnotations(annots blink.Annotations, ns string) {
	nsAnnots, ok := s.nsAnnots[ns]
	if !ok {
		nsAnnots = make(blink.Annotations)
		s.nsAnnots[ns] = nsAnnots
	}
	nsAnnots.Merge(annots)
	s.annots.Merge(annots)
}

// AddIncrAnnot queues an incremental annotation.
func (s *Schema) AddIncrAnnot(annot *IncrAnnot) error {
	if s.finalized {
		return errSchemaFinalized(annot.Location)
	}
	s.incrAnnots = append(s.incrAnnots, annot)
	return nil
}

// Find looks up a definition by name. An unqualified name that is not found
// as written is retried in the default namespace.
func (s *Schema) Find(name, defaultNs string) Definition {
	if def, ok := s.defs[name]; ok {
		return def
	}
	if defaultNs != "" && !isQualified(name) {
		if def, ok := s.defs[blink.QName(defaultNs, name)]; ok {
			return def
		}
	}
	return nil
}

// Groups returns all groups. After Finalize they are ordered by descending
// weight.
func (s *Schema) Groups() []*Group {
	return s.groups
}

func (s *Schema) GroupsIn(ns string) []*Group {
	if s.nsGroups == nil {
		return filterNs(s.groups, ns)
	}
	return s.nsGroups[ns]
}

// Defines returns all defines. After Finalize they are ordered by
// descending weight.
func (s *Schema) Defines() []*Define {
	return s.defines
}

func (s *Schema) DefinesIn(ns string) []*Define {
	if s.nsDefines == nil {
		return filterNs(s.defines, ns)
	}
	return s.nsDefines[ns]
}

func filterNs[D Definition](defs []D, ns string) []D {
	var out []D
	for _, def := range defs {
		if def.Namespace() == ns {
			out = append(out, def)
		}
	}
	return out
}

// Namespaces lists every namespace that contains a definition, defines
// first, in order of first appearance.
func (s *Schema) Namespaces() []string {
	if s.finalized {
		return s.namespaces
	}
	return collectNamespaces(s.defines, s.groups)
}

func collectNamespaces(defines []*Define, groups []*Group) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(ns string) {
		if _, ok := seen[ns]; !ok {
			seen[ns] = struct{}{}
			out = append(out, ns)
		}
	}
	for _, d := range defines {
		add(d.Namespace())
	}
	for _, g := range groups {
		add(g.Namespace())
	}
	return out
}

// Annotations returns the schema-level annotations of a namespace. The
// empty namespace name selects the global annotations, which merge every
// namespace's schema-level annotations.
func (s *Schema) Annotations(ns string) blink.Annotations {
	if ns == "" {
		return s.annots
	}
	return s.nsAnnots[ns]
}

func (s *Schema) Annotation(key, ns string) (string, bool) {
	value, ok := s.Annotations(ns)[key]
	return value, ok
}

// Warnings returns the non-fatal diagnostics collected by Finalize.
func (s *Schema) Warnings() []*Warning {
	return s.warnings
}

func (s *Schema) warn(w *Warning) {
	s.warnings = append(s.warnings, w)
	s.logger.Warn().
		Uint32("code", w.Code()).
		Str("location", w.Location().String()).
		Msg(w.Message())
}
