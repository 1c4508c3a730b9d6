package parser

import (
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/lexer"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// ParseN3 parses a Notation3 document. N3 resolves prefixed names at read
// time, so no declaration-before-use check happens here; the namespace table
// on the result only reflects the directives that were present.
func ParseN3(src string) *Result {
	tokens, lexErrs := lexer.New(src, lexer.N3).Tokens()
	p := &n3Parser{engine: newEngine(tokens)}
	root := p.parseDocument()
	return &Result{
		Root:       root,
		LexErrors:  lexErrs,
		Errors:     p.errors,
		Namespaces: p.namespaces,
		Base:       p.base,
	}
}

type n3Parser struct {
	engine
}

const (
	n3TermFirst = token.IRIRef | token.PNameLN | token.PNameNS | token.BlankNodeLabel |
		token.Variable | token.String | token.Integer | token.Decimal | token.Double |
		token.Boolean | token.LBracket | token.LParen | token.LBrace | token.LTripleTerm
	n3VerbFirst = token.A | token.Equals | token.Implies | token.ImpliedBy |
		token.HasKw | token.IsKw | n3TermFirst
	n3DirectiveFirst = token.AtPrefix | token.AtBase | token.PrefixKw | token.BaseKw |
		token.AtForAll | token.AtForSome
	n3StatementFirst = n3DirectiveFirst | n3TermFirst
)

// parseDocument parses n3Doc := (directive | quantification | triples '.')*.
func (p *n3Parser) parseDocument() *Node {
	doc := &Node{Kind: KindDocument}
	for !p.at(token.EOF) {
		if !p.parseStatement(doc, false) {
			p.wrapError(doc, "document")
		}
	}
	return doc
}

// parseStatement parses one document- or formula-level statement into doc.
// When inFormula is set the terminating '.' is optional before the closing
// brace. Returns false when no statement alternative applies.
func (p *n3Parser) parseStatement(doc *Node, inFormula bool) bool {
	switch {
	case p.at(token.AtPrefix | token.PrefixKw):
		doc.appendNode("statement", p.parsePrefixDecl())
	case p.at(token.AtBase | token.BaseKw):
		doc.appendNode("statement", p.parseBaseDecl())
	case p.at(token.AtForAll | token.AtForSome):
		doc.appendNode("statement", p.parseQuantDecl())
	case p.at(n3TermFirst):
		doc.appendNode("statement", p.parseTriples(inFormula))
	default:
		return false
	}
	return true
}

// parsePrefixDecl parses '@prefix' PNAME_NS IRIREF '.' or SPARQL-style
// 'PREFIX' without the dot. Declarations bind for the whole read, including
// text before them; only the table side effect happens here.
func (p *n3Parser) parsePrefixDecl() *Node {
	n := &Node{Kind: KindPrefixDecl}
	keyword := p.consume(n, "keyword")

	prefixTok, okPrefix := p.expect(n, "prefix", "prefixDecl", token.PNameNS)
	iriTok, okIRI := p.expect(n, "iri", "prefixDecl", token.IRIRef)
	if okPrefix && okIRI {
		p.declarePrefix(pnamePrefix(prefixTok.Image), trimIRIRef(iriTok.Image))
	}

	if keyword.Kind == token.AtPrefix {
		if _, ok := p.expect(n, "dot", "prefixDecl", token.Dot); !ok {
			p.syncTo(n, n3StatementFirst|token.Dot)
			p.optional(n, "dot", token.Dot)
		}
	}
	return n
}

func (p *n3Parser) parseBaseDecl() *Node {
	n := &Node{Kind: KindBaseDecl}
	keyword := p.consume(n, "keyword")
	if iriTok, ok := p.expect(n, "iri", "baseDecl", token.IRIRef); ok {
		p.base = trimIRIRef(iriTok.Image)
	}
	if keyword.Kind == token.AtBase {
		if _, ok := p.expect(n, "dot", "baseDecl", token.Dot); !ok {
			p.syncTo(n, n3StatementFirst|token.Dot)
			p.optional(n, "dot", token.Dot)
		}
	}
	return n
}

// parseQuantDecl parses '@forAll' or '@forSome' followed by a comma
// separated list of terms and a '.'. Quantification is parsed and retained
// in the tree but carries no inference semantics during materialization.
func (p *n3Parser) parseQuantDecl() *Node {
	n := &Node{Kind: KindQuantDecl}
	p.consume(n, "keyword")
	for {
		if p.at(n3TermFirst) {
			n.appendNode("term", p.parsePath("quantification"))
		} else {
			p.errorExpected("quantification", n3TermFirst)
			break
		}
		if !p.at(token.Comma) {
			break
		}
		p.consume(n, "comma")
	}
	if _, ok := p.expect(n, "dot", "quantification", token.Dot); !ok {
		p.syncTo(n, n3StatementFirst|token.Dot)
		p.optional(n, "dot", token.Dot)
	}
	return n
}

// parseTriples parses path predicateObjectList? '.'. Unlike Turtle, any term
// can stand as a subject here, and a subject alone (a bare formula or
// property list) is a complete statement.
func (p *n3Parser) parseTriples(inFormula bool) *Node {
	n := &Node{Kind: KindTriples}

	subject := p.parsePath("subject")
	n.appendNode("subject", subject)

	if p.at(n3VerbFirst) && !p.at(token.Dot) {
		n.appendNode("polist", p.parsePredicateObjectList(inFormula))
	}

	end := token.Dot
	if inFormula {
		end |= token.RBrace
	}
	if !p.optional(n, "dot", token.Dot) {
		if !inFormula || !p.at(token.RBrace) {
			p.errorExpected("triples", token.Dot)
			p.syncTo(n, n3StatementFirst|end)
			p.optional(n, "dot", token.Dot)
		}
	}
	return n
}

// parsePredicateObjectList parses verb pathList (';' (verb pathList)?)*.
func (p *n3Parser) parsePredicateObjectList(inFormula bool) *Node {
	n := &Node{Kind: KindPredicateObjectList}
	recovery := token.Dot | token.Semicolon
	if inFormula {
		recovery |= token.RBrace
	}
	for {
		verb := p.parseVerb()
		if verb == nil {
			p.syncTo(n, recovery|n3StatementFirst)
			if !p.at(token.Semicolon) {
				break
			}
		} else {
			n.appendNode("verb", verb)
			n.appendNode("objects", p.parseObjectList(recovery))
		}

		if !p.at(token.Semicolon) {
			break
		}
		for p.at(token.Semicolon) {
			p.consume(n, "semicolon")
		}
		if !p.at(n3VerbFirst) || p.at(token.Dot) {
			break
		}
	}
	return n
}

// parseVerb parses the N3 verb alternation:
//
//	'a' | '=' | '=>' | '<=' | 'has' path | 'is' path 'of' | path
//
// '=' reads as owl:sameAs, '=>' as log:implies, and '<=' as log:implies with
// subject and object swapped. 'is ... of' likewise swaps.
func (p *n3Parser) parseVerb() *Node {
	n := &Node{Kind: KindVerb}
	switch {
	case p.at(token.A):
		p.consume(n, "a")
	case p.at(token.Equals):
		p.consume(n, "eq")
	case p.at(token.Implies):
		p.consume(n, "implies")
	case p.at(token.ImpliedBy):
		p.consume(n, "impliedBy")
	case p.at(token.HasKw):
		p.consume(n, "has")
		n.appendNode("path", p.parsePath("verb"))
	case p.at(token.IsKw):
		p.consume(n, "is")
		n.appendNode("path", p.parsePath("verb"))
		p.expect(n, "of", "verb", token.OfKw)
	case p.at(n3TermFirst):
		n.appendNode("path", p.parsePath("verb"))
	default:
		p.errorExpected("verb", n3VerbFirst)
		return nil
	}
	return n
}

// parseObjectList parses path (',' path)*.
func (p *n3Parser) parseObjectList(recovery token.Kind) *Node {
	n := &Node{Kind: KindObjectList}
	for {
		if p.at(n3TermFirst) {
			obj := &Node{Kind: KindObject}
			obj.appendNode("term", p.parsePath("object"))
			n.appendNode("object", obj)
		} else {
			p.errorExpected("object", n3TermFirst)
			p.syncTo(n, recovery|token.Comma|n3StatementFirst)
		}
		if !p.at(token.Comma) {
			return n
		}
		p.consume(n, "comma")
	}
}

// parsePath parses term (('!' | '^') term)*. When no path operator follows,
// the bare term node is returned unwrapped; a Path node only appears for
// actual traversals. Steps are stored as parallel op/step sequences.
func (p *n3Parser) parsePath(rule string) *Node {
	base := p.parseTerm(rule)
	if base == nil || !p.at(token.Bang|token.Caret) {
		return base
	}
	n := &Node{Kind: KindPath}
	n.appendNode("base", base)
	for p.at(token.Bang | token.Caret) {
		p.consume(n, "op")
		step := p.parseTerm(rule)
		if step == nil {
			break
		}
		n.appendNode("step", step)
	}
	return n
}

// parseTerm parses the N3 term alternation.
func (p *n3Parser) parseTerm(rule string) *Node {
	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		n := &Node{Kind: KindIRI}
		if p.at(token.IRIRef) {
			p.consume(n, "iriref")
		} else {
			p.consume(n, "pname")
		}
		return n
	case p.at(token.BlankNodeLabel):
		n := &Node{Kind: KindBlankNode}
		p.consume(n, "label")
		return n
	case p.at(token.Variable):
		n := &Node{Kind: KindVariable}
		p.consume(n, "name")
		return n
	case p.at(token.String | token.Integer | token.Decimal | token.Double | token.Boolean):
		return p.parseLiteral()
	case p.at(token.LParen):
		return p.parseCollection()
	case p.at(token.LBracket):
		return p.parseBlankNodePropertyList()
	case p.at(token.LBrace):
		return p.parseFormula()
	case p.at(token.LTripleTerm):
		return p.parseTripleTerm()
	default:
		p.errorExpected(rule, n3TermFirst)
		return nil
	}
}

// parseLiteral parses a literal with optional language tag or datatype.
func (p *n3Parser) parseLiteral() *Node {
	n := &Node{Kind: KindLiteral}
	if p.at(token.Integer | token.Decimal | token.Double | token.Boolean) {
		p.consume(n, "value")
		return n
	}
	p.consume(n, "value")
	switch {
	case p.at(token.LangTag):
		p.consume(n, "lang")
	case p.at(token.DoubleCaret):
		p.consume(n, "caret")
		if p.at(token.IRIRef | token.PNameLN | token.PNameNS) {
			dt := &Node{Kind: KindIRI}
			if p.at(token.IRIRef) {
				p.consume(dt, "iriref")
			} else {
				p.consume(dt, "pname")
			}
			n.appendNode("datatype", dt)
		} else {
			p.errorExpected("literal", token.IRIRef|token.PNameLN|token.PNameNS)
		}
	}
	return n
}

// parseCollection parses '(' path* ')'.
func (p *n3Parser) parseCollection() *Node {
	n := &Node{Kind: KindCollection}
	p.consume(n, "open")
	for p.at(n3TermFirst) {
		item := p.parsePath("collection")
		if item == nil {
			break
		}
		n.appendNode("item", item)
	}
	if _, ok := p.expect(n, "close", "collection", token.RParen); !ok {
		p.syncTo(n, token.RParen|token.Dot|n3StatementFirst)
		p.optional(n, "close", token.RParen)
	}
	return n
}

// parseBlankNodePropertyList parses '[' predicateObjectList? ']'.
func (p *n3Parser) parseBlankNodePropertyList() *Node {
	n := &Node{Kind: KindBlankNodePropertyList}
	p.consume(n, "open")
	if !p.at(token.RBracket) {
		n.appendNode("polist", p.parsePredicateObjectList(false))
	}
	if _, ok := p.expect(n, "close", "blankNodePropertyList", token.RBracket); !ok {
		p.syncTo(n, token.RBracket|token.Dot|n3StatementFirst)
		p.optional(n, "close", token.RBracket)
	}
	return n
}

// parseFormula parses '{' statement* '}'. A formula is a term: during
// materialization it becomes a fresh blank node that names the graph its
// statements are read into.
func (p *n3Parser) parseFormula() *Node {
	n := &Node{Kind: KindFormula}
	p.consume(n, "open")
	for !p.at(token.RBrace | token.EOF) {
		if !p.parseStatement(n, true) {
			p.wrapError(n, "formula")
		}
	}
	p.expect(n, "close", "formula", token.RBrace)
	return n
}

// parseTripleTerm parses '<<(' term verb term ')>>'.
func (p *n3Parser) parseTripleTerm() *Node {
	n := &Node{Kind: KindTripleTerm}
	p.consume(n, "open")
	n.appendNode("subject", p.parseTerm("tripleTerm"))
	if verb := p.parseVerb(); verb != nil {
		n.appendNode("verb", verb)
	}
	n.appendNode("object", p.parseTerm("tripleTerm"))
	if _, ok := p.expect(n, "close", "tripleTerm", token.RTripleTerm); !ok {
		p.syncTo(n, token.RTripleTerm|token.Dot|n3StatementFirst)
		p.optional(n, "close", token.RTripleTerm)
	}
	return n
}
