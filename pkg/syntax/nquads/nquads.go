// Package nquads implements the line-oriented N-Quads and N-Triples
// languages as a reduced instance of the same pipeline the block languages
// use: the shared lexer in its strict dialect, a trivial fixed-shape grammar,
// and direct materialization. There are no prefixes, no relative IRIs, and
// no base, so no separate reading stage is needed; each statement lowers to
// a quad as it is parsed.
package nquads

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/lexer"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// Error is a syntax error in one statement. Statements are independent;
// an error skips to the next '.' and parsing continues.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Result holds the quads of one document plus the accumulated diagnostics.
// Statements that failed to parse contribute no quad; everything parseable
// is kept.
type Result struct {
	Quads     []rdf.Quad
	LexErrors []lexer.Error
	Errors    []Error
}

// Err converts the accumulated diagnostics into a single error, or nil when
// the document was clean.
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

// ParseNQuads parses an N-Quads document. The optional fourth term names the
// graph; statements without one land in the default graph.
func ParseNQuads(src string) *Result {
	return parse(src, true)
}

// ParseNTriples parses an N-Triples document: N-Quads without the graph
// position.
func ParseNTriples(src string) *Result {
	return parse(src, false)
}

func parse(src string, allowGraph bool) *Result {
	tokens, lexErrs := lexer.New(src, lexer.NQuads).Tokens()
	p := &prs{
		tokens:     tokens,
		allowGraph: allowGraph,
		labeled:    make(map[string]*rdf.BlankNode),
	}
	p.skipComments()
	for !p.at(token.EOF) {
		p.statement()
	}
	return &Result{Quads: p.quads, LexErrors: lexErrs, Errors: p.errors}
}

type prs struct {
	tokens     []token.Token
	pos        int
	allowGraph bool

	labeled map[string]*rdf.BlankNode
	quads   []rdf.Quad
	errors  []Error
}

func (p *prs) skipComments() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == token.Comment {
		p.pos++
	}
}

func (p *prs) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *prs) at(set token.Kind) bool {
	return p.cur().Is(set)
}

func (p *prs) advance() token.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.skipComments()
	return tok
}

func (p *prs) errorf(pos token.Position, format string, args ...any) error {
	return Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// sync records err and skips to the start of the next statement.
func (p *prs) sync(err error) {
	var e Error
	if errors.As(err, &e) {
		p.errors = append(p.errors, e)
	} else {
		p.errors = append(p.errors, Error{Pos: p.cur().Start, Msg: err.Error()})
	}
	for !p.at(token.Dot | token.EOF) {
		p.advance()
	}
	if p.at(token.Dot) {
		p.advance()
	}
}

// statement parses subject predicate object graph? '.'.
func (p *prs) statement() {
	subject, err := p.subject()
	if err != nil {
		p.sync(err)
		return
	}
	predicate, err := p.predicate()
	if err != nil {
		p.sync(err)
		return
	}
	object, err := p.object()
	if err != nil {
		p.sync(err)
		return
	}

	graph := rdf.Term(rdf.NewDefaultGraph())
	if p.at(token.IRIRef | token.BlankNodeLabel) {
		if !p.allowGraph {
			p.sync(p.errorf(p.cur().Start, "graph term not allowed in N-Triples"))
			return
		}
		graph, err = p.graphTerm()
		if err != nil {
			p.sync(err)
			return
		}
	}

	if !p.at(token.Dot) {
		p.sync(p.errorf(p.cur().Start, "expected '.', got %s", p.cur()))
		return
	}
	p.advance()
	p.quads = append(p.quads, *rdf.NewQuad(subject, predicate, object, graph))
}

func (p *prs) subject() (rdf.Term, error) {
	switch {
	case p.at(token.IRIRef):
		return p.iri()
	case p.at(token.BlankNodeLabel):
		return p.blank(), nil
	default:
		return nil, p.errorf(p.cur().Start, "expected IRI or blank node as subject, got %s", p.cur())
	}
}

func (p *prs) predicate() (rdf.Term, error) {
	if !p.at(token.IRIRef) {
		return nil, p.errorf(p.cur().Start, "expected IRI as predicate, got %s", p.cur())
	}
	return p.iri()
}

func (p *prs) object() (rdf.Term, error) {
	switch {
	case p.at(token.IRIRef):
		return p.iri()
	case p.at(token.BlankNodeLabel):
		return p.blank(), nil
	case p.at(token.String):
		return p.literal()
	case p.at(token.LTripleTerm):
		return p.tripleTerm()
	default:
		return nil, p.errorf(p.cur().Start, "expected IRI, blank node, literal, or triple term as object, got %s", p.cur())
	}
}

func (p *prs) graphTerm() (rdf.Term, error) {
	if p.at(token.BlankNodeLabel) {
		return p.blank(), nil
	}
	return p.iri()
}

func (p *prs) iri() (*rdf.NamedNode, error) {
	tok := p.advance()
	body := tok.Image
	if len(body) >= 2 && body[0] == '<' && body[len(body)-1] == '>' {
		body = body[1 : len(body)-1]
	}
	iri, err := lexer.UnescapeIRIRef(body)
	if err != nil {
		return nil, p.errorf(tok.Start, "in %s: %v", tok.Image, err)
	}
	return rdf.NewNamedNode(iri), nil
}

func (p *prs) blank() *rdf.BlankNode {
	tok := p.advance()
	label := strings.TrimPrefix(tok.Image, "_:")
	if b, ok := p.labeled[label]; ok {
		return b
	}
	b := rdf.NewBlankNode(label)
	p.labeled[label] = b
	return b
}

func (p *prs) literal() (rdf.Term, error) {
	tok := p.advance()
	value, err := lexer.Unquote(tok.Image)
	if err != nil {
		return nil, p.errorf(tok.Start, "%v", err)
	}
	switch {
	case p.at(token.LangTag):
		lang := p.advance()
		return rdf.NewLiteralWithLanguage(value, strings.TrimPrefix(lang.Image, "@")), nil
	case p.at(token.DoubleCaret):
		p.advance()
		if !p.at(token.IRIRef) {
			return nil, p.errorf(p.cur().Start, "expected datatype IRI after '^^', got %s", p.cur())
		}
		datatype, err := p.iri()
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(value, datatype), nil
	}
	return rdf.NewLiteral(value), nil
}

// tripleTerm parses '<<(' subject predicate object ')>>'. Triple terms nest
// through the object position.
func (p *prs) tripleTerm() (rdf.Term, error) {
	p.advance() // <<(
	s, err := p.subject()
	if err != nil {
		return nil, err
	}
	pr, err := p.predicate()
	if err != nil {
		return nil, err
	}
	o, err := p.object()
	if err != nil {
		return nil, err
	}
	if !p.at(token.RTripleTerm) {
		return nil, p.errorf(p.cur().Start, "expected ')>>', got %s", p.cur())
	}
	p.advance()
	return rdf.NewTripleTerm(s, pr, o), nil
}
