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
	"unicode/utf8"

	"go.blink-lang.org/blink"
)

const (
	tokenFlagEscaped uint8 = 0x01
)

type Token struct {
	Kind  TokenKind
	Text  string
	Loc   blink.Location
	flags uint8
}

// Escaped reports whether the token is a backslash-escaped name, which is
// never treated as a keyword.
func (t *Token) Escaped() bool {
	return t.flags&tokenFlagEscaped != 0
}

type TokenKind uint8

const (
	T_END TokenKind = iota

	T_NAME
	T_QNAME
	T_UINT
	T_INT
	T_HEX
	T_STRING

	T_COMMA
	T_DOT
	T_EQ
	T_SLASH
	T_OPEN_SQUARE
	T_CLOSE_SQUARE
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_COLON
	T_QUESTION
	T_STAR
	T_PIPE
	T_AT
	T_RARROW
	T_LARROW
)

func (k TokenKind) String() string {
	switch k {
	case T_END:
		return "END"
	case T_NAME:
		return "NAME"
	case T_QNAME:
		return "QNAME"
	case T_UINT:
		return "UINT"
	case T_INT:
		return "INT"
	case T_HEX:
		return "HEX"
	case T_STRING:
		return "STRING"
	case T_COMMA:
		return "COMMA"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_SLASH:
		return "SLASH"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_COLON:
		return "COLON"
	case T_QUESTION:
		return "QUESTION"
	case T_STAR:
		return "STAR"
	case T_PIPE:
		return "PIPE"
	case T_AT:
		return "AT"
	case T_RARROW:
		return "RARROW"
	case T_LARROW:
		return "LARROW"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

var punctuation = [...]TokenKind{
	',': T_COMMA,
	'.': T_DOT,
	'=': T_EQ,
	'/': T_SLASH,
	'[': T_OPEN_SQUARE,
	']': T_CLOSE_SQUARE,
	'(': T_OPEN_PAREN,
	')': T_CLOSE_PAREN,
	':': T_COLON,
	'?': T_QUESTION,
	'*': T_STAR,
	'|': T_PIPE,
	'@': T_AT,
}

// Tokens splits schema source into tokens, tracking line and column.
type Tokens struct {
	src    []byte
	source string
	offset int
	line   int
	col    int
}

func NewTokens(src []byte, source string) (*Tokens, error) {
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src, source)
	}
	return &Tokens{
		src:    src,
		source: source,
		line:   1,
		col:    1,
	}, nil
}

func (t *Tokens) loc() blink.Location {
	return blink.Location{
		Source: t.source,
		Line:   t.line,
		Column: t.col,
	}
}

func (t *Tokens) peekByte(n int) byte {
	if t.offset+n < len(t.src) {
		return t.src[t.offset+n]
	}
	return 0
}

func (t *Tokens) advance(n int) {
	for _, c := range t.src[t.offset : t.offset+n] {
		if c == '\n' {
			t.line += 1
			t.col = 1
		} else if c&0xC0 != 0x80 {
			t.col += 1
		}
	}
	t.offset += n
}

func (t *Tokens) skipSpaceAndComments() {
	for t.offset < len(t.src) {
		switch c := t.src[t.offset]; c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			t.advance(1)
		case '#':
			n := 0
			for t.offset+n < len(t.src) && t.src[t.offset+n] != '\n' {
				n += 1
			}
			t.advance(n)
		default:
			return
		}
	}
}

func (t *Tokens) Next(token *Token) error {
	t.skipSpaceAndComments()
	start := t.loc()
	if t.offset >= len(t.src) {
		*token = Token{Kind: T_END, Loc: start}
		return nil
	}

	c := t.src[t.offset]
	if int(c) < len(punctuation) && punctuation[c] != T_END {
		*token = Token{Kind: punctuation[c], Text: string(c), Loc: start}
		t.advance(1)
		return nil
	}

	switch {
	case c == '-':
		next := t.peekByte(1)
		if next == '>' {
			*token = Token{Kind: T_RARROW, Text: "->", Loc: start}
			t.advance(2)
			return nil
		}
		if isDigit(next) {
			return t.nextNumber(token, T_INT, start)
		}
		return errDashInvalid(start)
	case c == '<':
		if t.peekByte(1) == '-' {
			*token = Token{Kind: T_LARROW, Text: "<-", Loc: start}
			t.advance(2)
			return nil
		}
		return errLessThanInvalid(start)
	case c == '"' || c == '\'':
		return t.nextString(token, c, start)
	case c == '\\':
		return t.nextEscapedName(token, start)
	case c == '0' && t.peekByte(1) == 'x':
		return t.nextHex(token, start)
	case isDigit(c):
		return t.nextNumber(token, T_UINT, start)
	case isNameStart(c):
		return t.nextName(token, start)
	}

	r, _ := utf8.DecodeRune(t.src[t.offset:])
	return errUnexpectedCharacter(start, r)
}

func (t *Tokens) scanName(from int) int {
	n := from
	for t.offset+n < len(t.src) && isNameChar(t.src[t.offset+n]) {
		n += 1
	}
	return n
}

func (t *Tokens) nextName(token *Token, start blink.Location) error {
	n := t.scanName(1)
	kind := T_NAME
	if t.peekByte(n) == ':' {
		if !isNameStart(t.peekByte(n + 1)) {
			t.advance(n + 1)
			return errQualifiedNameInvalid(t.loc())
		}
		n = t.scanName(n + 2)
		kind = T_QNAME
	}
	*token = Token{
		Kind: kind,
		Text: string(t.src[t.offset : t.offset+n]),
		Loc:  start,
	}
	t.advance(n)
	return nil
}

func (t *Tokens) nextEscapedName(token *Token, start blink.Location) error {
	if !isNameStart(t.peekByte(1)) {
		t.advance(1)
		return errEscapedNameInvalid(t.loc())
	}
	n := t.scanName(2)
	*token = Token{
		Kind:  T_NAME,
		Text:  string(t.src[t.offset+1 : t.offset+n]),
		Loc:   start,
		flags: tokenFlagEscaped,
	}
	t.advance(n)
	return nil
}

func (t *Tokens) nextNumber(token *Token, kind TokenKind, start blink.Location) error {
	n := 1
	for isDigit(t.peekByte(n)) {
		n += 1
	}
	if isNameStart(t.peekByte(n)) {
		t.advance(n)
		return errNumberInvalid(t.loc(), "A number must end in digits")
	}
	*token = Token{
		Kind: kind,
		Text: string(t.src[t.offset : t.offset+n]),
		Loc:  start,
	}
	t.advance(n)
	return nil
}

func (t *Tokens) nextHex(token *Token, start blink.Location) error {
	n := 2
	for isHexDigit(t.peekByte(n)) {
		n += 1
	}
	if n == 2 || isNameStart(t.peekByte(n)) {
		t.advance(n)
		return errNumberInvalid(t.loc(), "A number must end in hex digits")
	}
	*token = Token{
		Kind: T_HEX,
		Text: string(t.src[t.offset : t.offset+n]),
		Loc:  start,
	}
	t.advance(n)
	return nil
}

func (t *Tokens) nextString(token *Token, quote byte, start blink.Location) error {
	for n := 1; t.offset+n < len(t.src); n++ {
		switch t.src[t.offset+n] {
		case '\n':
			t.advance(n)
			return errStringContainsNewline(t.loc())
		case quote:
			*token = Token{
				Kind: T_STRING,
				Text: string(t.src[t.offset+1 : t.offset+n]),
				Loc:  start,
			}
			t.advance(n + 1)
			return nil
		}
	}
	t.advance(len(t.src) - t.offset)
	return errStringUnterminated(t.loc(), quote)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}
