// Package lexer turns source text into the ordered token list consumed by
// the grammar parsers.
//
// Classification is priority ordered: at every position the matchers are
// tried in a fixed declaration order and the first match wins. The order is
// part of the grammar's correctness: "^^" must be tried before "^", "<<("
// before "<<" before "<=" before an IRI reference, directive keywords before
// the prefixed-name word they would otherwise be swallowed by. The lexer
// never fails: malformed input produces a best-effort token plus an entry in
// the error list.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// Dialect selects which language the classifier tokenizes. Dialects share
// almost all token kinds; the differences are the N3-only operators and the
// stricter N-Quads rules.
type Dialect int

const (
	Turtle Dialect = iota
	TriG
	N3
	// NQuads also covers N-Triples: the line-oriented languages share one
	// token set. Relative IRI references are a lexical error here.
	NQuads
)

// Error is a lexical error: an unterminated or malformed token. It carries
// the position of the offending text. Lexical errors are always recoverable;
// the lexer emits a best-effort token and continues.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Lexer classifies one document. It owns no shared state; independent
// documents may be tokenized concurrently by independent lexers.
type Lexer struct {
	src     string
	dialect Dialect

	offset int
	line   int
	column int

	tokens []token.Token
	errors []Error
}

// New creates a lexer for the given source text and dialect.
func New(src string, dialect Dialect) *Lexer {
	return &Lexer{
		src:     src,
		dialect: dialect,
		line:    1,
		column:  1,
	}
}

// Tokens tokenizes the whole document and returns the token list (always
// terminated by an EOF token) together with any lexical errors. Tokenizing
// the same document twice yields identical lists.
func (l *Lexer) Tokens() ([]token.Token, []Error) {
	for l.offset < len(l.src) {
		l.skipWhitespace()
		if l.offset >= len(l.src) {
			break
		}
		l.next()
	}
	l.emit(token.EOF, l.position(), "")
	return l.tokens, l.errors
}

func (l *Lexer) position() token.Position {
	return token.Position{Offset: l.offset, Line: l.line, Column: l.column}
}

// advance moves past n bytes, updating line/column bookkeeping.
func (l *Lexer) advance(n int) {
	end := l.offset + n
	for l.offset < end {
		r, size := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.offset += size
	}
}

func (l *Lexer) skipWhitespace() {
	for l.offset < len(l.src) {
		switch l.src[l.offset] {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

func (l *Lexer) emit(kind token.Kind, start token.Position, image string) {
	l.tokens = append(l.tokens, token.Token{
		Kind:  kind,
		Image: image,
		Start: start,
		End:   l.position(),
	})
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) {
	l.errors = append(l.errors, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (l *Lexer) rest() string {
	return l.src[l.offset:]
}

func (l *Lexer) has(prefix string) bool {
	return strings.HasPrefix(l.rest(), prefix)
}

// next classifies one token at the current position. The order of the cases
// is the classifier's priority list.
func (l *Lexer) next() {
	start := l.position()
	ch := l.src[l.offset]

	switch {
	case ch == '#':
		l.scanComment(start)

	case l.has(`"""`) || l.has(`'''`) || ch == '"' || ch == '\'':
		l.scanString(start)

	case ch == '@':
		l.scanAtWord(start)

	case isNumberStart(l.rest()):
		l.scanNumber(start)

	// Multi-character punctuation, longest and most specific first.
	case l.has("<<("):
		l.punct(start, token.LTripleTerm, 3)
	case l.has("<<"):
		l.punct(start, token.LReified, 2)
	case l.dialect == N3 && l.has("<="):
		l.punct(start, token.ImpliedBy, 2)
	case ch == '<':
		l.scanIRIRef(start)
	case l.has(")>>"):
		l.punct(start, token.RTripleTerm, 3)
	case l.has(">>"):
		l.punct(start, token.RReified, 2)
	case l.has("{|"):
		l.punct(start, token.LAnnotation, 2)
	case l.has("|}"):
		l.punct(start, token.RAnnotation, 2)
	case l.has("^^"):
		l.punct(start, token.DoubleCaret, 2)
	case l.dialect == N3 && l.has("=>"):
		l.punct(start, token.Implies, 2)
	case l.dialect == N3 && ch == '=':
		l.punct(start, token.Equals, 1)
	case l.dialect == N3 && ch == '!':
		l.punct(start, token.Bang, 1)
	case l.dialect == N3 && ch == '^':
		l.punct(start, token.Caret, 1)
	case ch == '~':
		l.punct(start, token.Tilde, 1)

	case l.has("_:"):
		l.scanBlankNodeLabel(start)

	case (ch == '?' || ch == '$') && l.dialect == N3:
		l.scanVariable(start)

	case ch == '.':
		l.punct(start, token.Dot, 1)
	case ch == ',':
		l.punct(start, token.Comma, 1)
	case ch == ';':
		l.punct(start, token.Semicolon, 1)
	case ch == '[':
		l.punct(start, token.LBracket, 1)
	case ch == ']':
		l.punct(start, token.RBracket, 1)
	case ch == '(':
		l.punct(start, token.LParen, 1)
	case ch == ')':
		l.punct(start, token.RParen, 1)
	case ch == '{':
		l.punct(start, token.LBrace, 1)
	case ch == '}':
		l.punct(start, token.RBrace, 1)

	default:
		l.scanWord(start)
	}
}

func (l *Lexer) punct(start token.Position, kind token.Kind, n int) {
	image := l.src[l.offset : l.offset+n]
	l.advance(n)
	l.emit(kind, start, image)
}

func (l *Lexer) scanComment(start token.Position) {
	begin := l.offset
	for l.offset < len(l.src) && l.src[l.offset] != '\n' {
		l.advance(1)
	}
	l.emit(token.Comment, start, l.src[begin:l.offset])
}

// scanIRIRef scans <...>. The token is emitted even when unterminated so the
// parser can keep going; the defect is recorded as a lexical error.
func (l *Lexer) scanIRIRef(start token.Position) {
	begin := l.offset
	l.advance(1) // <
	for l.offset < len(l.src) {
		ch := l.src[l.offset]
		if ch == '>' {
			l.advance(1)
			image := l.src[begin:l.offset]
			if l.dialect == NQuads && !strings.Contains(image, ":") {
				l.errorf(start, "relative IRI reference not allowed: %s", image)
			}
			l.emit(token.IRIRef, start, image)
			return
		}
		if ch == '\n' {
			break
		}
		if ch == ' ' || ch == '"' || ch == '<' || ch <= 0x1F {
			l.errorf(l.position(), "invalid character %q in IRI reference", ch)
		}
		if ch == '\\' {
			l.scanNumericEscape()
			continue
		}
		l.advance(1)
	}
	l.errorf(start, "unterminated IRI reference")
	l.emit(token.IRIRef, start, l.src[begin:l.offset])
}

// scanNumericEscape validates a \uXXXX or \UXXXXXXXX escape inside an IRI,
// advancing past it. Other escapes are invalid in IRIs.
func (l *Lexer) scanNumericEscape() {
	pos := l.position()
	l.advance(1) // backslash
	if l.offset >= len(l.src) {
		l.errorf(pos, "incomplete escape sequence")
		return
	}
	var digits int
	switch l.src[l.offset] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		l.errorf(pos, "invalid escape sequence in IRI reference")
		l.advance(1)
		return
	}
	l.advance(1)
	for i := 0; i < digits && l.offset < len(l.src); i++ {
		if !isHexDigit(l.src[l.offset]) {
			l.errorf(pos, "invalid hex digit in numeric escape")
			return
		}
		l.advance(1)
	}
}

// scanString scans all four quoting forms. Long forms may span lines.
func (l *Lexer) scanString(start token.Position) {
	begin := l.offset

	var delim string
	switch {
	case l.has(`"""`):
		delim = `"""`
	case l.has("'''"):
		delim = "'''"
	case l.src[l.offset] == '"':
		delim = `"`
	default:
		delim = "'"
	}
	long := len(delim) == 3
	l.advance(len(delim))

	for l.offset < len(l.src) {
		if l.has(delim) {
			// A long string ends at the last three quotes of a run, so that
			// """a"""" keeps the embedded quote as content.
			if long {
				for l.offset+len(delim) < len(l.src) && l.src[l.offset+len(delim)] == delim[0] {
					l.advance(1)
				}
			}
			l.advance(len(delim))
			l.emit(token.String, start, l.src[begin:l.offset])
			return
		}
		ch := l.src[l.offset]
		if !long && ch == '\n' {
			break
		}
		if ch == '\\' {
			l.scanStringEscape()
			continue
		}
		l.advance(1)
	}
	l.errorf(start, "unterminated string literal")
	l.emit(token.String, start, l.src[begin:l.offset])
}

func (l *Lexer) scanStringEscape() {
	pos := l.position()
	l.advance(1) // backslash
	if l.offset >= len(l.src) {
		l.errorf(pos, "incomplete escape sequence")
		return
	}
	ch := l.src[l.offset]
	switch ch {
	case 't', 'b', 'n', 'r', 'f', '"', '\'', '\\':
		l.advance(1)
	case 'u', 'U':
		digits := 4
		if ch == 'U' {
			digits = 8
		}
		l.advance(1)
		for i := 0; i < digits && l.offset < len(l.src); i++ {
			if !isHexDigit(l.src[l.offset]) {
				l.errorf(pos, "invalid hex digit in numeric escape")
				return
			}
			l.advance(1)
		}
	default:
		l.errorf(pos, "invalid escape sequence \\%c in string literal", ch)
		l.advance(1)
	}
}

// scanAtWord classifies @prefix/@base/@version/@forAll/@forSome ahead of the
// language tag they would otherwise tokenize as.
func (l *Lexer) scanAtWord(start token.Position) {
	begin := l.offset
	l.advance(1) // @
	wordStart := l.offset
	for l.offset < len(l.src) && isLangTagChar(l.src[l.offset]) {
		l.advance(1)
	}
	image := l.src[begin:l.offset]
	word := l.src[wordStart:l.offset]

	if word == "" {
		l.errorf(start, "expected language tag or directive after '@'")
		l.emit(token.Illegal, start, image)
		return
	}
	if kind := token.LookupAt(image); kind != token.Illegal {
		if (kind == token.AtForAll || kind == token.AtForSome) && l.dialect != N3 {
			l.errorf(start, "%s is only allowed in N3", image)
			l.emit(token.Illegal, start, image)
			return
		}
		l.emit(kind, start, image)
		return
	}
	l.emit(token.LangTag, start, image)
}

func (l *Lexer) scanBlankNodeLabel(start token.Position) {
	begin := l.offset
	l.advance(2) // _:
	r, _ := utf8.DecodeRuneInString(l.rest())
	if !isPNCharsU(r) && !(r >= '0' && r <= '9') {
		l.errorf(start, "invalid blank node label")
		l.emit(token.Illegal, start, l.src[begin:l.offset])
		return
	}
	for l.offset < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.rest())
		if !isPNChars(r) && r != '.' {
			break
		}
		l.advance(size)
	}
	// Labels cannot end with '.'; leave a trailing dot for the Dot token.
	for l.offset > begin && l.src[l.offset-1] == '.' {
		l.offset--
		l.column--
	}
	l.emit(token.BlankNodeLabel, start, l.src[begin:l.offset])
}

func (l *Lexer) scanVariable(start token.Position) {
	begin := l.offset
	l.advance(1) // ? or $
	for l.offset < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.rest())
		if !isPNChars(r) {
			break
		}
		l.advance(size)
	}
	if l.offset == begin+1 {
		l.errorf(start, "expected variable name after %q", l.src[begin])
		l.emit(token.Illegal, start, l.src[begin:l.offset])
		return
	}
	l.emit(token.Variable, start, l.src[begin:l.offset])
}

func (l *Lexer) scanNumber(start token.Position) {
	begin := l.offset
	if l.src[l.offset] == '+' || l.src[l.offset] == '-' {
		l.advance(1)
	}
	digits := func() {
		for l.offset < len(l.src) && l.src[l.offset] >= '0' && l.src[l.offset] <= '9' {
			l.advance(1)
		}
	}
	digits()
	kind := token.Integer
	// A '.' is part of the number only when digits follow; a trailing '.' is
	// the statement terminator.
	if l.offset+1 < len(l.src) && l.src[l.offset] == '.' &&
		l.src[l.offset+1] >= '0' && l.src[l.offset+1] <= '9' {
		l.advance(1)
		digits()
		kind = token.Decimal
	}
	if l.offset < len(l.src) && (l.src[l.offset] == 'e' || l.src[l.offset] == 'E') {
		save := l.offset
		l.advance(1)
		if l.offset < len(l.src) && (l.src[l.offset] == '+' || l.src[l.offset] == '-') {
			l.advance(1)
		}
		if l.offset < len(l.src) && l.src[l.offset] >= '0' && l.src[l.offset] <= '9' {
			digits()
			kind = token.Double
		} else {
			// Not an exponent after all, e.g. "1e" followed by junk; rewind
			// and let the next classification round deal with it.
			l.column -= l.offset - save
			l.offset = save
		}
	}
	l.emit(kind, start, l.src[begin:l.offset])
}

// scanWord scans a prefixed name or a bare keyword. Keywords win over bare
// words; a bare word that is no keyword and has no colon is illegal.
func (l *Lexer) scanWord(start token.Position) {
	begin := l.offset

	// Prefix part: PN_CHARS_BASE (PN_CHARS | '.')* up to an optional ':'.
	for l.offset < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.rest())
		if !isPNChars(r) && r != '.' {
			break
		}
		l.advance(size)
	}
	for l.offset > begin && l.src[l.offset-1] == '.' {
		l.offset--
		l.column--
	}

	if l.offset >= len(l.src) || l.src[l.offset] != ':' {
		word := l.src[begin:l.offset]
		if word == "" {
			r, size := utf8.DecodeRuneInString(l.rest())
			l.advance(size)
			l.errorf(start, "unexpected character %q", r)
			l.emit(token.Illegal, start, l.src[begin:l.offset])
			return
		}
		kind := token.LookupBare(word, l.dialect == N3)
		if kind == token.Illegal {
			l.errorf(start, "unexpected word %q", word)
		}
		l.emit(kind, start, word)
		return
	}

	l.advance(1) // ':'
	nsEnd := l.offset

	// Local part: PN_CHARS_U, digit, ':', '%XX', or '\'-escaped punctuation
	// to start; PN_CHARS, '.', ':', escapes to continue.
	localBegin := l.offset
	for l.offset < len(l.src) {
		if l.src[l.offset] == '%' {
			if l.offset+2 < len(l.src) && isHexDigit(l.src[l.offset+1]) && isHexDigit(l.src[l.offset+2]) {
				l.advance(3)
				continue
			}
			l.errorf(l.position(), "invalid percent escape in local name")
			l.advance(1)
			continue
		}
		if l.src[l.offset] == '\\' {
			if l.offset+1 < len(l.src) && isLocalEscapable(l.src[l.offset+1]) {
				l.advance(2)
				continue
			}
			break
		}
		r, size := utf8.DecodeRuneInString(l.rest())
		if !isPNChars(r) && r != '.' && r != ':' {
			break
		}
		l.advance(size)
	}
	// A local name cannot end with '.' (but may end with ':').
	for l.offset > localBegin && l.src[l.offset-1] == '.' {
		l.offset--
		l.column--
	}

	if l.offset == nsEnd {
		l.emit(token.PNameNS, start, l.src[begin:l.offset])
		return
	}
	l.emit(token.PNameLN, start, l.src[begin:l.offset])
}

func isNumberStart(s string) bool {
	if s == "" {
		return false
	}
	switch {
	case s[0] >= '0' && s[0] <= '9':
		return true
	case s[0] == '+' || s[0] == '-':
		if len(s) < 2 {
			return false
		}
		if s[1] >= '0' && s[1] <= '9' {
			return true
		}
		return s[1] == '.' && len(s) > 2 && s[2] >= '0' && s[2] <= '9'
	case s[0] == '.':
		return len(s) > 1 && s[1] >= '0' && s[1] <= '9'
	}
	return false
}

func isLangTagChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '-'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// isLocalEscapable lists the reserved punctuation that may be backslash
// escaped inside the local part of a prefixed name.
func isLocalEscapable(b byte) bool {
	switch b {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';',
		'=', '/', '?', '#', '@', '%':
		return true
	}
	return false
}

// isPNCharsBase checks a rune against PN_CHARS_BASE from the Turtle spec.
func isPNCharsBase(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0x00C0 && r <= 0x00D6) ||
		(r >= 0x00D8 && r <= 0x00F6) ||
		(r >= 0x00F8 && r <= 0x02FF) ||
		(r >= 0x0370 && r <= 0x037D) ||
		(r >= 0x037F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

// isPNCharsU checks PN_CHARS_U: PN_CHARS_BASE | '_'.
func isPNCharsU(r rune) bool {
	return isPNCharsBase(r) || r == '_'
}

// isPNChars checks PN_CHARS: PN_CHARS_U | '-' | digits | combining marks.
func isPNChars(r rune) bool {
	return isPNCharsU(r) ||
		r == '-' ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}
