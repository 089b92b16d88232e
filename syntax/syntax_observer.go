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

package syntax

import (
	"fmt"
	"io"
	"strconv"

	"go.blink-lang.org/blink"
)

// Observer receives declaration events from the parser in source order.
// Returning an error from any method aborts the parse with that error.
//
// Definitions are bracketed by Start/End pairs. Between StartField and
// EndField, and between StartDefine and EndDefine, exactly one type event
// (or one StartEnum/EndEnum bracket) is delivered.
type Observer interface {
	NsDecl(name string, loc blink.Location) error

	StartGroupDef(name string, id blink.ID, super string, annots blink.Annotations, loc blink.Location) error
	EndGroupDef() error

	StartField(loc blink.Location) error
	EndField(name string, id blink.ID, presence blink.Presence, annots blink.Annotations) error

	StartDefine(name string, id blink.ID, annots blink.Annotations, loc blink.Location) error
	EndDefine() error

	StartEnum(loc blink.Location) error
	EndEnum() error

	TypeRef(name string, layout blink.Layout, rank blink.Rank, annots blink.Annotations, loc blink.Location) error
	StringType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error
	BinaryType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error
	FixedType(rank blink.Rank, size uint32, annots blink.Annotations, loc blink.Location) error
	FixedDecType(rank blink.Rank, scale uint8, annots blink.Annotations, loc blink.Location) error
	PrimType(code blink.TypeCode, rank blink.Rank, annots blink.Annotations, loc blink.Location) error

	EnumSym(name string, value int64, hasValue bool, annots blink.Annotations, loc blink.Location) error

	SchemaAnnot(annots blink.Annotations, loc blink.Location) error
	IncrAnnot(name, substep string, pathType blink.PathType, value *Number, annots blink.Annotations, loc blink.Location) error
}

// Number is an integer literal from an incremental annotation. Its magnitude
// always fits in 64 bits; Negative is only set for `-N` literals.
type Number struct {
	Text      string
	Magnitude uint64
	Negative  bool
}

// Int64 returns the signed value of the literal.
func (n *Number) Int64() (int64, bool) {
	if n.Negative {
		if n.Magnitude > 1<<63 {
			return 0, false
		}
		return -int64(n.Magnitude-1) - 1, true
	}
	if n.Magnitude > 1<<63-1 {
		return 0, false
	}
	return int64(n.Magnitude), true
}

type rawArg string

// Dumper is an Observer that writes one line per event, in the form
// `EventName (arg, arg, ...)`. It is used for diagnosing the parser.
type Dumper struct {
	w   io.Writer
	err error
}

var _ Observer = (*Dumper)(nil)

func NewDumper(w io.Writer) *Dumper {
	return &Dumper{w: w}
}

func (d *Dumper) emit(event string, args ...any) error {
	if d.err != nil {
		return d.err
	}
	line := event + " ("
	for ii, arg := range args {
		if ii > 0 {
			line += ", "
		}
		switch arg := arg.(type) {
		case rawArg:
			line += string(arg)
		case string:
			line += strconv.Quote(arg)
		case blink.ID:
			if arg.IsSet() {
				line += arg.String()
			} else {
				line += "-"
			}
		case *Number:
			if arg == nil {
				line += "-"
			} else {
				line += arg.Text
			}
		default:
			line += fmt.Sprint(arg)
		}
	}
	line += ")\n"
	_, d.err = io.WriteString(d.w, line)
	return d.err
}

func (d *Dumper) NsDecl(name string, loc blink.Location) error {
	return d.emit("NsDecl", name, loc)
}

func (d *Dumper) StartGroupDef(name string, id blink.ID, super string, annots blink.Annotations, loc blink.Location) error {
	return d.emit("StartGroupDef", name, id, super, annots, loc)
}

func (d *Dumper) EndGroupDef() error {
	return d.emit("EndGroupDef")
}

func (d *Dumper) StartField(loc blink.Location) error {
	return d.emit("StartField", loc)
}

func (d *Dumper) EndField(name string, id blink.ID, presence blink.Presence, annots blink.Annotations) error {
	return d.emit("EndField", name, id, presence, annots)
}

func (d *Dumper) StartDefine(name string, id blink.ID, annots blink.Annotations, loc blink.Location) error {
	return d.emit("StartDefine", name, id, annots, loc)
}

func (d *Dumper) EndDefine() error {
	return d.emit("EndDefine")
}

func (d *Dumper) StartEnum(loc blink.Location) error {
	return d.emit("StartEnum", loc)
}

func (d *Dumper) EndEnum() error {
	return d.emit("EndEnum")
}

func (d *Dumper) TypeRef(name string, layout blink.Layout, rank blink.Rank, annots blink.Annotations, loc blink.Location) error {
	return d.emit("TypeRef", name, layout, rank, annots, loc)
}

func (d *Dumper) StringType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error {
	return d.emit("StringType", rank, maxSize, annots, loc)
}

func (d *Dumper) BinaryType(rank blink.Rank, maxSize uint32, annots blink.Annotations, loc blink.Location) error {
	return d.emit("BinaryType", rank, maxSize, annots, loc)
}

func (d *Dumper) FixedType(rank blink.Rank, size uint32, annots blink.Annotations, loc blink.Location) error {
	return d.emit("FixedType", rank, size, annots, loc)
}

func (d *Dumper) FixedDecType(rank blink.Rank, scale uint8, annots blink.Annotations, loc blink.Location) error {
	return d.emit("FixedDecType", rank, scale, annots, loc)
}

func (d *Dumper) PrimType(code blink.TypeCode, rank blink.Rank, annots blink.Annotations, loc blink.Location) error {
	return d.emit("PrimType", code, rank, annots, loc)
}

func (d *Dumper) EnumSym(name string, value int64, hasValue bool, annots blink.Annotations, loc blink.Location) error {
	if !hasValue {
		return d.emit("EnumSym", name, rawArg("-"), annots, loc)
	}
	return d.emit("EnumSym", name, value, annots, loc)
}

func (d *Dumper) SchemaAnnot(annots blink.Annotations, loc blink.Location) error {
	return d.emit("SchemaAnnot", annots, loc)
}

func (d *Dumper) IncrAnnot(name, substep string, pathType blink.PathType, value *Number, annots blink.Annotations, loc blink.Location) error {
	return d.emit("IncrAnnot", name, substep, pathType, value, annots, loc)
}
