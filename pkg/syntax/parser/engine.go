// Package parser implements fault-tolerant recursive descent parsers for the
// Turtle family of RDF serialization languages.
//
// Each language grammar is a set of mutually recursive rules over a small
// shared engine: sequence steps (expect), optionals, repetition loops, and
// ordered alternation written as if/else chains with explicit lookahead.
// On a token mismatch the engine records a recoverable [Error] and the
// grammar resynchronizes by consuming tokens into an ErrorTree node until a
// token consistent with resuming the enclosing rule appears. Parsing itself
// never fails: the caller always gets a best-effort CST plus the accumulated
// diagnostics, and decides whether a non-empty error list is fatal.
package parser

import (
	"errors"
	"fmt"

	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/lexer"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// Error is a syntax error: a grammar rule met a token it could not consume.
type Error struct {
	Rule     string     // grammar rule that was active
	Expected token.Kind // the acceptable kinds, zero when Msg says it all
	Got      token.Token
	Msg      string
}

func (e Error) Error() string {
	pos := e.Got.Start
	if e.Msg != "" {
		return fmt.Sprintf("%d:%d: in %s: %s", pos.Line, pos.Column, e.Rule, e.Msg)
	}
	return fmt.Sprintf("%d:%d: in %s: expected %s, got %s", pos.Line, pos.Column, e.Rule, e.Expected, e.Got)
}

// Result is the outcome of one document parse. Root is never nil, even for
// documents that failed to parse entirely; callers choose whether error-list
// emptiness or [Result.Err] is their success criterion.
type Result struct {
	Root      *Node
	LexErrors []lexer.Error
	Errors    []Error

	// Namespaces and Base reflect the directives seen during parsing.
	// For Turtle and TriG the table is complete by the time parsing ends;
	// N3 additionally permits prefixes the table never saw (resolved lazily
	// at read time).
	Namespaces map[string]string
	Base       string
}

// Err converts the accumulated diagnostics into a single error, or nil when
// the parse was clean. This is the "throw on errors" mode; parsing itself
// never fails.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.LexErrors)+len(r.Errors))
	for _, e := range r.LexErrors {
		errs = append(errs, e)
	}
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// engine is the shared parsing substrate. It holds the token cursor, the
// error accumulator, and the per-parse namespace state mutated by directive
// rules. Grammars embed it; no state is shared between parses.
type engine struct {
	tokens []token.Token
	pos    int

	errors     []Error
	namespaces map[string]string
	base       string
}

func newEngine(tokens []token.Token) engine {
	e := engine{
		tokens:     tokens,
		namespaces: make(map[string]string),
	}
	e.skipComments()
	return e
}

func (e *engine) skipComments() {
	for e.pos < len(e.tokens) && e.tokens[e.pos].Kind == token.Comment {
		e.pos++
	}
}

// cur returns the current token. Past the end it returns the final EOF.
func (e *engine) cur() token.Token {
	if e.pos >= len(e.tokens) {
		return e.tokens[len(e.tokens)-1]
	}
	return e.tokens[e.pos]
}

// peek returns the token after the current one, skipping comments.
func (e *engine) peek() token.Token {
	for i := e.pos + 1; i < len(e.tokens); i++ {
		if e.tokens[i].Kind != token.Comment {
			return e.tokens[i]
		}
	}
	return e.tokens[len(e.tokens)-1]
}

// peek2 returns the second token after the current one, skipping comments.
// Needed for the one three-token decision in the grammars: an anonymous
// blank node spans two tokens, so telling '[] {' from '[] ...' requires
// seeing past both.
func (e *engine) peek2() token.Token {
	remaining := 2
	for i := e.pos + 1; i < len(e.tokens); i++ {
		if e.tokens[i].Kind == token.Comment {
			continue
		}
		remaining--
		if remaining == 0 {
			return e.tokens[i]
		}
	}
	return e.tokens[len(e.tokens)-1]
}

func (e *engine) at(set token.Kind) bool {
	return e.cur().Is(set)
}

func (e *engine) peekAt(set token.Kind) bool {
	return e.peek().Is(set)
}

func (e *engine) peekAt2(set token.Kind) bool {
	return e.peek2().Is(set)
}

func (e *engine) advance() token.Token {
	tok := e.cur()
	if e.pos < len(e.tokens) {
		e.pos++
	}
	e.skipComments()
	return tok
}

// consume unconditionally appends the current token to n under slot and
// advances. Callers must have checked the kind already.
func (e *engine) consume(n *Node, slot string) token.Token {
	tok := e.advance()
	n.appendToken(slot, tok)
	return tok
}

// optional consumes the current token into n when its kind is in want.
func (e *engine) optional(n *Node, slot string, want token.Kind) bool {
	if e.at(want) {
		e.consume(n, slot)
		return true
	}
	return false
}

// expect consumes the current token into n when its kind is in want;
// otherwise it records an error and does not advance, leaving recovery to
// the caller.
func (e *engine) expect(n *Node, slot, rule string, want token.Kind) (token.Token, bool) {
	if e.at(want) {
		return e.consume(n, slot), true
	}
	e.errorExpected(rule, want)
	return token.Token{}, false
}

func (e *engine) errorExpected(rule string, want token.Kind) {
	e.errors = append(e.errors, Error{Rule: rule, Expected: want, Got: e.cur()})
}

func (e *engine) errorf(rule string, format string, args ...any) {
	e.errors = append(e.errors, Error{Rule: rule, Got: e.cur(), Msg: fmt.Sprintf(format, args...)})
}

// syncTo resynchronizes after an error: tokens are consumed into an
// ErrorTree child of n until one in the recovery set (or EOF) comes up.
// The skipped tokens stay in the CST so the tree still covers the source.
func (e *engine) syncTo(n *Node, recovery token.Kind) {
	if e.at(recovery | token.EOF) {
		return
	}
	errTree := &Node{Kind: KindErrorTree}
	for !e.at(recovery | token.EOF) {
		e.consume(errTree, "skipped")
	}
	n.appendNode("error", errTree)
}

// wrapError records an "unexpected token" error, consumes the offending
// token into an ErrorTree child of n, and advances. This is the way to make
// progress when no rule matches and no recovery token is in sight.
func (e *engine) wrapError(n *Node, rule string) {
	e.errorf(rule, "unexpected token %s", e.cur())
	errTree := &Node{Kind: KindErrorTree}
	e.consume(errTree, "skipped")
	n.appendNode("error", errTree)
}

// declarePrefix is the early-binding side effect of prefix directive rules:
// the namespace table is mutated during parsing, not during reading.
func (e *engine) declarePrefix(prefix, iri string) {
	e.namespaces[prefix] = iri
}

// checkPrefixDeclared enforces declaration-before-use for the strict
// dialects. The offending token is carried on the recorded diagnostic.
func (e *engine) checkPrefixDeclared(rule string, tok token.Token) {
	prefix := pnamePrefix(tok.Image)
	if _, ok := e.namespaces[prefix]; !ok {
		e.errors = append(e.errors, Error{
			Rule: rule,
			Got:  tok,
			Msg:  fmt.Sprintf("undefined prefix %q in %s", prefix+":", tok.Image),
		})
	}
}

// pnamePrefix returns the prefix part of a PNameLN/PNameNS image, without
// the colon.
func pnamePrefix(image string) string {
	for i := 0; i < len(image); i++ {
		if image[i] == ':' {
			return image[:i]
		}
	}
	return image
}
