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

// Package syntax implements the Blink schema tokenizer and a
// recursive-descent parser that reports declarations to an Observer.
package syntax

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go.blink-lang.org/blink"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (f parseOption) apply(opts *ParseOptions) {
	f(opts)
}

// WithSourceName sets the source name reported in locations and errors.
func WithSourceName(name string) ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.sourceName = name
	})
}

// Parse reads a complete schema from src, delivering declaration events to
// obs. The first lexical, syntax, or observer error aborts the parse.
func Parse(src []byte, obs Observer, opts ...ParseOption) error {
	return NewParseOptions(opts...).Parse(src, obs)
}

// ParseLines parses a schema given as separate lines of text.
func ParseLines(lines []string, obs Observer, opts ...ParseOption) error {
	return Parse([]byte(strings.Join(lines, "\n")), obs, opts...)
}

type ParseOptions struct {
	sourceName string
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	out := &ParseOptions{}
	for _, opt := range opts {
		opt.apply(out)
	}
	return out
}

func (opts *ParseOptions) Parse(src []byte, obs Observer) error {
	ctx, err := newParseCtx(opts, src, obs)
	if err == nil {
		err = ctx.parseSchema()
	}
	var syntaxErr *Error
	if errors.As(err, &syntaxErr) && syntaxErr.preview == "" {
		syntaxErr.preview = sourcePreview(src, syntaxErr.loc)
	}
	return err
}

var keywords = func() map[string]struct{} {
	out := map[string]struct{}{
		"namespace": {},
		"schema":    {},
		"type":      {},
	}
	for code := blink.TypeCode_I8; code <= blink.TypeCode_FIXED; code++ {
		out[code.String()] = struct{}{}
	}
	return out
}()

// IsKeyword reports whether text is a reserved word that must be written
// with a leading backslash when used as a name.
func IsKeyword(text string) bool {
	_, ok := keywords[text]
	return ok
}

type parseCtx struct {
	tokens  *Tokens
	obs     Observer
	cur     Token
	pend    Token
	prev    Token
	hasPrev bool
	annots  blink.Annotations
}

func newParseCtx(opts *ParseOptions, src []byte, obs Observer) (*parseCtx, error) {
	tokens, err := NewTokens(src, opts.sourceName)
	if err != nil {
		return nil, err
	}
	ctx := &parseCtx{
		tokens: tokens,
		obs:    obs,
	}
	if err := tokens.Next(&ctx.cur); err != nil {
		return nil, err
	}
	if err := tokens.Next(&ctx.pend); err != nil {
		return nil, err
	}
	return ctx, nil
}

// next moves the lookahead token into the current position and reads a
// new lookahead token.
func (ctx *parseCtx) next() error {
	ctx.prev = ctx.cur
	ctx.hasPrev = true
	ctx.cur = ctx.pend
	if ctx.cur.Kind == T_END {
		ctx.pend = ctx.cur
		return nil
	}
	return ctx.tokens.Next(&ctx.pend)
}

func (ctx *parseCtx) is(kind TokenKind) bool {
	return ctx.cur.Kind == kind
}

func (ctx *parseCtx) isKeyword(kw string) bool {
	return ctx.cur.Kind == T_NAME && !ctx.cur.Escaped() && ctx.cur.Text == kw
}

func (ctx *parseCtx) isAnyKeyword() bool {
	return ctx.cur.Kind == T_NAME && !ctx.cur.Escaped() && IsKeyword(ctx.cur.Text)
}

func (ctx *parseCtx) isName() bool {
	return ctx.cur.Kind == T_NAME && !ctx.isAnyKeyword()
}

func (ctx *parseCtx) expected(what string) error {
	if ctx.hasPrev {
		return errExpected(what, &ctx.cur, &ctx.prev)
	}
	return errExpected(what, &ctx.cur, nil)
}

func (ctx *parseCtx) tryConsume(kind TokenKind) (bool, error) {
	if ctx.cur.Kind != kind {
		return false, nil
	}
	return true, ctx.next()
}

func (ctx *parseCtx) require(kind TokenKind, what string) (Token, error) {
	if ctx.cur.Kind != kind {
		return Token{}, ctx.expected(what)
	}
	tok := ctx.cur
	return tok, ctx.next()
}

func (ctx *parseCtx) requireName(what string) (Token, error) {
	if !ctx.isName() {
		return Token{}, ctx.expected(what)
	}
	tok := ctx.cur
	return tok, ctx.next()
}

func (ctx *parseCtx) requireKeyword(kw string) error {
	if !ctx.isKeyword(kw) {
		return ctx.expected("keyword '" + kw + "'")
	}
	return ctx.next()
}

func (ctx *parseCtx) takeAnnots() blink.Annotations {
	annots := ctx.annots
	ctx.annots = nil
	return annots
}

// parseSchema: ["namespace" Name] def*
func (ctx *parseCtx) parseSchema() error {
	if ctx.isKeyword("namespace") {
		if err := ctx.next(); err != nil {
			return err
		}
		name, err := ctx.requireName("namespace name")
		if err != nil {
			return err
		}
		if err := ctx.obs.NsDecl(name.Text, name.Loc); err != nil {
			return err
		}
	}
	for !ctx.is(T_END) {
		if err := ctx.parseDef(); err != nil {
			return err
		}
	}
	return nil
}

// parseAnnots: ("@" NameOrKeyword "=" String String*)*
func (ctx *parseCtx) parseAnnots() error {
	for ctx.is(T_AT) {
		if err := ctx.next(); err != nil {
			return err
		}
		if err := ctx.parseAnnot(); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *parseCtx) parseAnnot() error {
	if !ctx.is(T_NAME) && !ctx.is(T_QNAME) {
		return ctx.expected("annotation name")
	}
	name := ctx.cur.Text
	if err := ctx.next(); err != nil {
		return err
	}
	if _, err := ctx.require(T_EQ, "'='"); err != nil {
		return err
	}
	lit, err := ctx.require(T_STRING, "string literal")
	if err != nil {
		return err
	}
	value := lit.Text
	for ctx.is(T_STRING) {
		value += ctx.cur.Text
		if err := ctx.next(); err != nil {
			return err
		}
	}
	if ctx.annots == nil {
		ctx.annots = make(blink.Annotations)
	}
	ctx.annots[name] = value
	return nil
}

// parseNameWithID: Name ["/" (Uint|Hex)]
func (ctx *parseCtx) parseNameWithID(what string) (Token, blink.ID, error) {
	name, err := ctx.requireName(what)
	if err != nil {
		return Token{}, blink.ID{}, err
	}
	if !ctx.is(T_SLASH) {
		return name, blink.ID{}, nil
	}
	if err := ctx.next(); err != nil {
		return Token{}, blink.ID{}, err
	}
	if !ctx.is(T_UINT) && !ctx.is(T_HEX) {
		return Token{}, blink.ID{}, ctx.expected("unsigned integer or hex number")
	}
	num, err := parseNumber(&ctx.cur)
	if err != nil {
		return Token{}, blink.ID{}, err
	}
	return name, blink.MakeID(num.Magnitude), ctx.next()
}

// parseDef: annots (incrAnnot | groupDef | defineDef)
func (ctx *parseCtx) parseDef() error {
	if err := ctx.parseAnnots(); err != nil {
		return err
	}

	if ctx.is(T_QNAME) || ctx.isKeyword("schema") {
		if len(ctx.annots) > 0 {
			return errIncrAnnotWithAnnotations(ctx.cur.Loc)
		}
		if ctx.isKeyword("schema") {
			return ctx.parseSchemaAnnot()
		}
		name := ctx.cur
		if err := ctx.next(); err != nil {
			return err
		}
		return ctx.parseIncrAnnot(name)
	}

	name, id, err := ctx.parseNameWithID(
		"group or type definition name, or an incremental annotation",
	)
	if err != nil {
		return err
	}
	if ctx.is(T_LARROW) || ctx.is(T_DOT) {
		if len(ctx.annots) > 0 {
			return errIncrAnnotWithAnnotations(name.Loc)
		}
		if id.IsSet() {
			return errIncrAnnotWithSlashID(name.Loc)
		}
		return ctx.parseIncrAnnot(name)
	}
	if ctx.is(T_EQ) {
		if err := ctx.next(); err != nil {
			return err
		}
		return ctx.parseDefine(name, id)
	}
	return ctx.parseGroupDef(name, id)
}

// parseGroupDef: nameWithId [":" QName] ["->" field ("," field)*]
func (ctx *parseCtx) parseGroupDef(name Token, id blink.ID) error {
	var super string
	if ctx.is(T_COLON) {
		if err := ctx.next(); err != nil {
			return err
		}
		if !ctx.isName() && !ctx.is(T_QNAME) {
			return ctx.expected("supertype name")
		}
		super = ctx.cur.Text
		if err := ctx.next(); err != nil {
			return err
		}
	}
	err := ctx.obs.StartGroupDef(name.Text, id, super, ctx.takeAnnots(), name.Loc)
	if err != nil {
		return err
	}
	if ctx.is(T_RARROW) {
		if err := ctx.next(); err != nil {
			return err
		}
		for {
			if err := ctx.parseField(); err != nil {
				return err
			}
			more, err := ctx.tryConsume(T_COMMA)
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
	}
	return ctx.obs.EndGroupDef()
}

// parseField: annots type annots nameWithId ["?"]
func (ctx *parseCtx) parseField() error {
	if err := ctx.parseAnnots(); err != nil {
		return err
	}
	if err := ctx.obs.StartField(ctx.cur.Loc); err != nil {
		return err
	}
	if err := ctx.parseType(); err != nil {
		return err
	}
	if err := ctx.parseAnnots(); err != nil {
		return err
	}
	name, id, err := ctx.parseNameWithID("field name")
	if err != nil {
		return err
	}
	presence := blink.Presence_REQUIRED
	optional, err := ctx.tryConsume(T_QUESTION)
	if err != nil {
		return err
	}
	if optional {
		presence = blink.Presence_OPTIONAL
	}
	return ctx.obs.EndField(name.Text, id, presence, ctx.takeAnnots())
}

// parseDefine: nameWithId "=" annots (enum | type)
func (ctx *parseCtx) parseDefine(name Token, id blink.ID) error {
	if err := ctx.obs.StartDefine(name.Text, id, ctx.takeAnnots(), name.Loc); err != nil {
		return err
	}
	if err := ctx.parseAnnots(); err != nil {
		return err
	}
	isEnum := ctx.is(T_PIPE) ||
		(ctx.isName() && (ctx.pend.Kind == T_SLASH || ctx.pend.Kind == T_PIPE))
	if isEnum {
		if err := ctx.parseEnum(); err != nil {
			return err
		}
	} else if err := ctx.parseType(); err != nil {
		return err
	}
	return ctx.obs.EndDefine()
}

// parseEnum: "|" sym | sym ("|" sym)*
func (ctx *parseCtx) parseEnum() error {
	if err := ctx.obs.StartEnum(ctx.cur.Loc); err != nil {
		return err
	}
	single, err := ctx.tryConsume(T_PIPE)
	if err != nil {
		return err
	}
	for {
		if err := ctx.parseSym(); err != nil {
			return err
		}
		if single {
			break
		}
		more, err := ctx.tryConsume(T_PIPE)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return ctx.obs.EndEnum()
}

// parseSym: annots Name ["/" (Uint|Int|Hex)]
func (ctx *parseCtx) parseSym() error {
	if err := ctx.parseAnnots(); err != nil {
		return err
	}
	name, err := ctx.requireName("enum symbol name")
	if err != nil {
		return err
	}
	var value int64
	var hasValue bool
	if ctx.is(T_SLASH) {
		if err := ctx.next(); err != nil {
			return err
		}
		if !ctx.is(T_UINT) && !ctx.is(T_INT) && !ctx.is(T_HEX) {
			return ctx.expected("integer or hex number")
		}
		num, err := parseNumber(&ctx.cur)
		if err != nil {
			return err
		}
		if ctx.cur.Kind == T_HEX {
			// Hex values are bit patterns.
			value = int64(num.Magnitude)
		} else if v, ok := num.Int64(); ok {
			value = v
		} else {
			return errNumberOutOfRange(&ctx.cur)
		}
		hasValue = true
		if err := ctx.next(); err != nil {
			return err
		}
	}
	return ctx.obs.EnumSym(name.Text, value, hasValue, ctx.takeAnnots(), name.Loc)
}

// parseRank: ["[" "]"]
func (ctx *parseCtx) parseRank() (blink.Rank, error) {
	if !ctx.is(T_OPEN_SQUARE) {
		return blink.Rank_SINGLE, nil
	}
	if err := ctx.next(); err != nil {
		return 0, err
	}
	if _, err := ctx.require(T_CLOSE_SQUARE, "']'"); err != nil {
		return 0, err
	}
	return blink.Rank_SEQUENCE, nil
}

// parseSize: "(" Uint ")"
func (ctx *parseCtx) parseSize(what string, limit uint64) (uint32, error) {
	if _, err := ctx.require(T_OPEN_PAREN, "'('"); err != nil {
		return 0, err
	}
	if !ctx.is(T_UINT) {
		return 0, ctx.expected(what)
	}
	num, err := parseNumber(&ctx.cur)
	if err != nil {
		return 0, err
	}
	if num.Magnitude > limit {
		return 0, errNumberOutOfRange(&ctx.cur)
	}
	if err := ctx.next(); err != nil {
		return 0, err
	}
	if _, err := ctx.require(T_CLOSE_PAREN, "')'"); err != nil {
		return 0, err
	}
	return uint32(num.Magnitude), nil
}

func (ctx *parseCtx) parseType() error {
	loc := ctx.cur.Loc
	switch {
	case ctx.isName() || ctx.is(T_QNAME):
		return ctx.parseRef()
	case ctx.isKeyword("string"), ctx.isKeyword("binary"):
		isString := ctx.cur.Text == "string"
		if err := ctx.next(); err != nil {
			return err
		}
		var maxSize uint32
		if ctx.is(T_OPEN_PAREN) {
			var err error
			what := "binary max size"
			if isString {
				what = "string max size"
			}
			if maxSize, err = ctx.parseSize(what, math.MaxUint32); err != nil {
				return err
			}
		}
		rank, err := ctx.parseRank()
		if err != nil {
			return err
		}
		if isString {
			return ctx.obs.StringType(rank, maxSize, ctx.takeAnnots(), loc)
		}
		return ctx.obs.BinaryType(rank, maxSize, ctx.takeAnnots(), loc)
	case ctx.isKeyword("fixed"):
		if err := ctx.next(); err != nil {
			return err
		}
		size, err := ctx.parseSize("fixed size", math.MaxUint32)
		if err != nil {
			return err
		}
		rank, err := ctx.parseRank()
		if err != nil {
			return err
		}
		return ctx.obs.FixedType(rank, size, ctx.takeAnnots(), loc)
	case ctx.isKeyword("fixedDec"):
		if err := ctx.next(); err != nil {
			return err
		}
		var scale uint32
		if ctx.is(T_OPEN_PAREN) {
			var err error
			if scale, err = ctx.parseSize("fixedDec scale", math.MaxUint8); err != nil {
				return err
			}
		}
		rank, err := ctx.parseRank()
		if err != nil {
			return err
		}
		return ctx.obs.FixedDecType(rank, uint8(scale), ctx.takeAnnots(), loc)
	case ctx.isKeyword("namespace"), ctx.isKeyword("schema"), ctx.isKeyword("type"):
		return ctx.expected("type specifier")
	case ctx.isAnyKeyword():
		code, _ := blink.TypeCodeByName(ctx.cur.Text)
		if err := ctx.next(); err != nil {
			return err
		}
		rank, err := ctx.parseRank()
		if err != nil {
			return err
		}
		return ctx.obs.PrimType(code, rank, ctx.takeAnnots(), loc)
	}
	return ctx.expected("type specifier")
}

// parseRef: QName ["*"] rank
func (ctx *parseCtx) parseRef() error {
	name := ctx.cur
	if err := ctx.next(); err != nil {
		return err
	}
	layout := blink.Layout_STATIC
	dynamic, err := ctx.tryConsume(T_STAR)
	if err != nil {
		return err
	}
	if dynamic {
		layout = blink.Layout_DYNAMIC
	}
	rank, err := ctx.parseRank()
	if err != nil {
		return err
	}
	return ctx.obs.TypeRef(name.Text, layout, rank, ctx.takeAnnots(), name.Loc)
}

// parseSchemaAnnot: "schema" ("<-" (annot | number))+
func (ctx *parseCtx) parseSchemaAnnot() error {
	loc := ctx.cur.Loc
	if err := ctx.next(); err != nil {
		return err
	}
	if _, err := ctx.parseIncrAnnotList(); err != nil {
		return err
	}
	return ctx.obs.SchemaAnnot(ctx.takeAnnots(), loc)
}

// parseIncrAnnot: QName ["." ("type" | Name ["." "type"])] ("<-" ...)+
func (ctx *parseCtx) parseIncrAnnot(name Token) error {
	pathType := blink.PathType_NAME
	var substep string
	if ctx.is(T_DOT) {
		if err := ctx.next(); err != nil {
			return err
		}
		if ctx.isKeyword("type") {
			pathType = blink.PathType_TYPE
			if err := ctx.next(); err != nil {
				return err
			}
		} else {
			step, err := ctx.requireName("field or symbol name")
			if err != nil {
				return err
			}
			substep = step.Text
			if ctx.is(T_DOT) {
				if err := ctx.next(); err != nil {
					return err
				}
				if err := ctx.requireKeyword("type"); err != nil {
					return err
				}
				pathType = blink.PathType_TYPE
			}
		}
	}
	value, err := ctx.parseIncrAnnotList()
	if err != nil {
		return err
	}
	return ctx.obs.IncrAnnot(name.Text, substep, pathType, value, ctx.takeAnnots(), name.Loc)
}

func (ctx *parseCtx) parseIncrAnnotList() (*Number, error) {
	if !ctx.is(T_LARROW) {
		return nil, ctx.expected("'<-'")
	}
	var value *Number
	for ctx.is(T_LARROW) {
		if err := ctx.next(); err != nil {
			return nil, err
		}
		switch ctx.cur.Kind {
		case T_AT:
			if err := ctx.next(); err != nil {
				return nil, err
			}
			if err := ctx.parseAnnot(); err != nil {
				return nil, err
			}
		case T_UINT, T_INT, T_HEX:
			num, err := parseNumber(&ctx.cur)
			if err != nil {
				return nil, err
			}
			value = num
			if err := ctx.next(); err != nil {
				return nil, err
			}
		default:
			return nil, ctx.expected("incremental annotation, integer or hex number")
		}
	}
	return value, nil
}

func parseNumber(tok *Token) (*Number, error) {
	num := &Number{Text: tok.Text}
	digits := tok.Text
	base := 10
	switch tok.Kind {
	case T_INT:
		num.Negative = true
		digits = digits[1:]
	case T_HEX:
		digits = digits[2:]
		base = 16
	}
	magnitude, err := strconv.ParseUint(digits, base, 64)
	if err != nil || (num.Negative && magnitude > 1<<63) {
		return nil, errNumberOutOfRange(tok)
	}
	num.Magnitude = magnitude
	return num, nil
}
