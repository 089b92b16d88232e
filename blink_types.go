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

package blink

import (
	"fmt"
)

type TypeCode uint8

const (
	TypeCode_UNKNOWN TypeCode = iota
	TypeCode_I8
	TypeCode_U8
	TypeCode_I16
	TypeCode_U16
	TypeCode_I32
	TypeCode_U32
	TypeCode_I64
	TypeCode_U64
	TypeCode_F64
	TypeCode_DECIMAL
	TypeCode_FIXED_DEC
	TypeCode_DATE
	TypeCode_TIME_OF_DAY_MILLI
	TypeCode_TIME_OF_DAY_NANO
	TypeCode_NANOTIME
	TypeCode_MILLITIME
	TypeCode_BOOL
	TypeCode_OBJECT
	TypeCode_STRING
	TypeCode_BINARY
	TypeCode_FIXED
)

var typeCodeNames = [...]string{
	TypeCode_I8:                "i8",
	TypeCode_U8:                "u8",
	TypeCode_I16:               "i16",
	TypeCode_U16:               "u16",
	TypeCode_I32:               "i32",
	TypeCode_U32:               "u32",
	TypeCode_I64:               "i64",
	TypeCode_U64:               "u64",
	TypeCode_F64:               "f64",
	TypeCode_DECIMAL:           "decimal",
	TypeCode_FIXED_DEC:         "fixedDec",
	TypeCode_DATE:              "date",
	TypeCode_TIME_OF_DAY_MILLI: "timeOfDayMilli",
	TypeCode_TIME_OF_DAY_NANO:  "timeOfDayNano",
	TypeCode_NANOTIME:          "nanotime",
	TypeCode_MILLITIME:         "millitime",
	TypeCode_BOOL:              "bool",
	TypeCode_OBJECT:            "object",
	TypeCode_STRING:            "string",
	TypeCode_BINARY:            "binary",
	TypeCode_FIXED:             "fixed",
}

var typeCodesByName = func() map[string]TypeCode {
	out := make(map[string]TypeCode, len(typeCodeNames))
	for code, name := range typeCodeNames {
		if name != "" {
			out[name] = TypeCode(code)
		}
	}
	return out
}()

// String returns the schema keyword for the type code.
func (c TypeCode) String() string {
	if int(c) < len(typeCodeNames) && typeCodeNames[c] != "" {
		return typeCodeNames[c]
	}
	return fmt.Sprintf("TypeCode(%d)", uint8(c))
}

// TypeCodeByName maps a schema keyword such as "u32" or "timeOfDayMilli" to
// its type code.
func TypeCodeByName(name string) (TypeCode, bool) {
	code, ok := typeCodesByName[name]
	return code, ok
}

type Rank uint8

const (
	Rank_SINGLE Rank = iota
	Rank_SEQUENCE
)

func (r Rank) String() string {
	switch r {
	case Rank_SINGLE:
		return "single"
	case Rank_SEQUENCE:
		return "sequence"
	default:
		return fmt.Sprintf("Rank(%d)", uint8(r))
	}
}

type Layout uint8

const (
	Layout_STATIC Layout = iota
	Layout_DYNAMIC
)

func (l Layout) String() string {
	switch l {
	case Layout_STATIC:
		return "static"
	case Layout_DYNAMIC:
		return "dynamic"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

type Presence uint8

const (
	Presence_REQUIRED Presence = iota
	Presence_OPTIONAL
)

func (p Presence) String() string {
	switch p {
	case Presence_REQUIRED:
		return "required"
	case Presence_OPTIONAL:
		return "optional"
	default:
		return fmt.Sprintf("Presence(%d)", uint8(p))
	}
}

// PathType tells whether the last component of an incremental annotation
// path names a definition member or the `type` of that member.
type PathType uint8

const (
	PathType_NAME PathType = iota
	PathType_TYPE
)

func (p PathType) String() string {
	switch p {
	case PathType_NAME:
		return "name"
	case PathType_TYPE:
		return "type"
	default:
		return fmt.Sprintf("PathType(%d)", uint8(p))
	}
}
