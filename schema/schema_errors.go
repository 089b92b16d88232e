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

	"go.blink-lang.org/blink"
)

type Error struct {
	code    uint32
	message string
	loc     blink.Location
}

var _ blink.Diagnostic = (*Error)(nil)

func (err *Error) Error() string {
	return blink.FormatDiagnostic(err.loc, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

// Kind is SEMANTIC for registration and incremental annotation errors, and
// RESOLUTION for errors raised while resolving references.
func (err *Error) Kind() blink.ErrorKind {
	if err.code >= 3100 {
		return blink.ErrorKind_RESOLUTION
	}
	return blink.ErrorKind_SEMANTIC
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Location() blink.Location {
	return err.loc
}

func defKind(def Definition) string {
	if _, ok := def.(*Group); ok {
		return "group"
	}
	return "type"
}

func errDuplicateDefinition(def, prev Definition) error {
	return &Error{
		code: 3000,
		message: fmt.Sprintf(
			"Conflicting blink %s definition: %s\n  Previously defined as %s here: %s",
			defKind(def), def.QName(), defKind(prev), prev.Location(),
		),
		loc: def.Location(),
	}
}

func errDuplicateField(group *Group, field, prev *Field) error {
	return &Error{
		code: 3001,
		message: fmt.Sprintf(
			"Duplicate field name in %s: %s\n  Previously defined here: %s",
			group.QName(), field.Name(), prev.Location(),
		),
		loc: field.Location(),
	}
}

func errDuplicateSymbolName(sym, prev *Symbol) error {
	return &Error{
		code: 3002,
		message: fmt.Sprintf(
			"Duplicate enum symbol name: %s\n  Previously defined here: %s",
			sym.Name(), prev.Location(),
		),
		loc: sym.Location(),
	}
}

func errDuplicateSymbolValue(sym, prev *Symbol, value int64, loc blink.Location) error {
	return &Error{
		code: 3003,
		message: fmt.Sprintf(
			"Duplicate enum value %d for symbol %s, already used by %s\n  Previously defined here: %s",
			value, sym.Name(), prev.Name(), prev.Location(),
		),
		loc: loc,
	}
}

func errIncrAnnotTypeOnGroup(annot *IncrAnnot) error {
	return &Error{
		code: 3004,
		message: fmt.Sprintf(
			"Cannot use keyword 'type' directly on a group reference: %s",
			annot.Name,
		),
		loc: annot.Location,
	}
}

func errIncrAnnotTypeOnSymbol(annot *IncrAnnot) error {
	return &Error{
		code: 3005,
		message: fmt.Sprintf(
			"Cannot use keyword 'type' on an enum symbol: %s.%s",
			annot.Name, annot.Substep,
		),
		loc: annot.Location,
	}
}

func errIncrAnnotNotEnum(annot *IncrAnnot) error {
	return &Error{
		code: 3006,
		message: fmt.Sprintf(
			"Cannot reference a symbol in a type definition that is not an enum: %s.%s",
			annot.Name, annot.Substep,
		),
		loc: annot.Location,
	}
}

func errIncrAnnotNoSuchSymbol(annot *IncrAnnot) error {
	return &Error{
		code: 3007,
		message: fmt.Sprintf(
			"No such enum symbol: %s.%s",
			annot.Name, annot.Substep,
		),
		loc: annot.Location,
	}
}

func errIncrAnnotTypeOnEnum(annot *IncrAnnot) error {
	return &Error{
		code: 3008,
		message: fmt.Sprintf(
			"Cannot use keyword 'type' on an enum: %s",
			annot.Name,
		),
		loc: annot.Location,
	}
}

func errIncrAnnotNegativeID(annot *IncrAnnot) error {
	return &Error{
		code: 3009,
		message: fmt.Sprintf(
			"Cannot use a negative number as an ID: %s <- %d",
			annot.Name, annot.Value,
		),
		loc: annot.Location,
	}
}

func errSchemaFinalized(loc blink.Location) error {
	return &Error{
		code:    3010,
		message: "Schema is already finalized",
		loc:     loc,
	}
}

func errEnumValueOverflow(name string, prev int64, loc blink.Location) error {
	return &Error{
		code: 3011,
		message: fmt.Sprintf(
			"Enum value out of range: symbol %s follows value %d and has no explicit value",
			name, prev,
		),
		loc: loc,
	}
}

func errNoSuchDefinition(what, name, ns string, loc blink.Location) error {
	message := fmt.Sprintf("No such definition in %s reference: %s", what, name)
	if ns != "" && !isQualified(name) {
		message += " or " + blink.QName(ns, name)
	}
	return &Error{
		code:    3100,
		message: message,
		loc:     loc,
	}
}

func errRecursiveReference(def Definition, loc blink.Location) error {
	return &Error{
		code: 3101,
		message: fmt.Sprintf(
			"Illegal recursive reference: the %s definition %s directly or indirectly refers to itself",
			defKind(def), def.QName(),
		),
		loc: loc,
	}
}

func errNestedSequence(name string, loc blink.Location) error {
	return &Error{
		code: 3102,
		message: fmt.Sprintf(
			"A sequence item type cannot itself be a sequence: %s",
			name,
		),
		loc: loc,
	}
}

func errDynamicRefNotGroup(name string, loc blink.Location) error {
	return &Error{
		code: 3103,
		message: fmt.Sprintf(
			"Dynamic reference to %s does not refer to a group definition",
			name,
		),
		loc: loc,
	}
}

func errSuperNotGroup(group *Group, super string) error {
	return &Error{
		code: 3104,
		message: fmt.Sprintf(
			"The supertype of %s does not refer to a group definition: %s",
			group.QName(), super,
		),
		loc: group.Location(),
	}
}

func errSuperDynamic(group *Group, super string) error {
	return &Error{
		code: 3105,
		message: fmt.Sprintf(
			"The supertype of %s cannot be a dynamic reference: %s",
			group.QName(), super,
		),
		loc: group.Location(),
	}
}

func errSuperSequence(group *Group, super string) error {
	return &Error{
		code: 3106,
		message: fmt.Sprintf(
			"The supertype of %s cannot be a sequence: %s",
			group.QName(), super,
		),
		loc: group.Location(),
	}
}

func errFieldShadowed(group *Group, field *Field, owner *Group, prev *Field) error {
	return &Error{
		code: 3107,
		message: fmt.Sprintf(
			"The field %s.%s shadows a field inherited from %s\n  Defined here: %s",
			group.QName(), field.Name(), owner.QName(), prev.Location(),
		),
		loc: field.Location(),
	}
}

type Warning struct {
	code    uint32
	message string
	loc     blink.Location
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.loc, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Location() blink.Location {
	return w.loc
}

func warnNoSuchDefinition(annot *IncrAnnot) *Warning {
	return &Warning{
		code: 4000,
		message: fmt.Sprintf(
			"No such group or type definition in incremental annotation: %s",
			annot.Name,
		),
		loc: annot.Location,
	}
}

func warnNoSuchField(annot *IncrAnnot, group *Group) *Warning {
	return &Warning{
		code: 4001,
		message: fmt.Sprintf(
			"No such field in incremental annotation: %s.%s",
			group.QName(), annot.Substep,
		),
		loc: annot.Location,
	}
}
