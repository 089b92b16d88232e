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
	"bytes"
	"fmt"
	"unicode/utf8"

	"go.blink-lang.org/blink"
)

const maxPreviewLen = 60

type Error struct {
	code    uint32
	message string
	loc     blink.Location
	preview string
}

var _ blink.Diagnostic = (*Error)(nil)

func (err *Error) Error() string {
	return blink.FormatDiagnostic(err.loc, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Kind() blink.ErrorKind {
	if err.code < 2000 {
		return blink.ErrorKind_LEXICAL
	}
	return blink.ErrorKind_SYNTAX
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Location() blink.Location {
	return err.loc
}

// Preview is the source text leading up to the error, at most one line and
// a bounded number of bytes.
func (err *Error) Preview() string {
	return err.preview
}

// sourcePreview returns the text of the line containing loc, up to (but not
// including) the column of loc.
func sourcePreview(src []byte, loc blink.Location) string {
	line := 1
	start := 0
	for line < loc.Line {
		idx := bytes.IndexByte(src[start:], '\n')
		if idx < 0 {
			return ""
		}
		start += idx + 1
		line += 1
	}
	end := start
	for col := 1; col < loc.Column && end < len(src) && src[end] != '\n'; col++ {
		_, size := utf8.DecodeRune(src[end:])
		end += size
	}
	preview := src[start:end]
	for len(preview) > maxPreviewLen {
		_, size := utf8.DecodeRune(preview)
		preview = preview[size:]
	}
	return string(preview)
}

func errInvalidUtf8(src []byte, source string) error {
	loc := blink.Location{Source: source, Line: 1, Column: 1}
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if r == '\n' {
			loc.Line += 1
			loc.Column = 1
		} else {
			loc.Column += 1
		}
		src = src[size:]
	}
	return &Error{
		code:    1000,
		message: "Source contains invalid UTF-8",
		loc:     loc,
	}
}

func errUnexpectedCharacter(loc blink.Location, r rune) error {
	return &Error{
		code:    1001,
		message: fmt.Sprintf("Character not allowed here: %q", r),
		loc:     loc,
	}
}

func errStringUnterminated(loc blink.Location, quote byte) error {
	return &Error{
		code: 1002,
		message: fmt.Sprintf(
			"Literal not terminated at end of schema, expected %c",
			quote,
		),
		loc: loc,
	}
}

func errStringContainsNewline(loc blink.Location) error {
	return &Error{
		code:    1003,
		message: "Multiline literals are not allowed",
		loc:     loc,
	}
}

func errNumberInvalid(loc blink.Location, message string) error {
	return &Error{
		code:    1004,
		message: message,
		loc:     loc,
	}
}

func errDashInvalid(loc blink.Location) error {
	return &Error{
		code:    1005,
		message: "Expected digit or '>' after '-'",
		loc:     loc,
	}
}

func errLessThanInvalid(loc blink.Location) error {
	return &Error{
		code:    1006,
		message: "Expected dash after '<'",
		loc:     loc,
	}
}

func errQualifiedNameInvalid(loc blink.Location) error {
	return &Error{
		code:    1007,
		message: "Missing name part in qualified name",
		loc:     loc,
	}
}

func errEscapedNameInvalid(loc blink.Location) error {
	return &Error{
		code:    1008,
		message: "Missing name after backslash",
		loc:     loc,
	}
}

func errExpected(what string, got, prev *Token) error {
	message := fmt.Sprintf("Expected %s but got %s", what, describeToken(got))
	if prev != nil {
		message = fmt.Sprintf(
			"Expected %s after %s but got %s",
			what, describeToken(prev), describeToken(got),
		)
	}
	return &Error{
		code:    2000,
		message: message,
		loc:     got.Loc,
	}
}

func errIncrAnnotWithAnnotations(loc blink.Location) error {
	return &Error{
		code:    2001,
		message: "An incremental annotation clause cannot be preceded by annotations",
		loc:     loc,
	}
}

func errIncrAnnotWithSlashID(loc blink.Location) error {
	return &Error{
		code:    2002,
		message: "Cannot set an ID using slash notation in an incremental annotation, use '<- id' instead",
		loc:     loc,
	}
}

func errNumberOutOfRange(tok *Token) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Number out of range: %s", tok.Text),
		loc:     tok.Loc,
	}
}

func describeToken(tok *Token) string {
	switch tok.Kind {
	case T_END:
		return "end of schema"
	case T_NAME:
		if !tok.Escaped() && IsKeyword(tok.Text) {
			return fmt.Sprintf("keyword '%s'", tok.Text)
		}
		return fmt.Sprintf("name '%s'", tok.Text)
	case T_QNAME:
		return fmt.Sprintf("qualified name '%s'", tok.Text)
	case T_UINT, T_INT, T_HEX:
		return fmt.Sprintf("number '%s'", tok.Text)
	case T_STRING:
		return "string literal"
	default:
		return fmt.Sprintf("'%s'", tok.Text)
	}
}
