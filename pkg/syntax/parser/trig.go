package parser

import (
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// parseGraphBlock parses the TriG graph forms:
//
//	graphBlock := 'GRAPH'? label? '{' triplesInGraph* '}'
//
// A bare '{ ... }' block scopes its triples to the default graph. Graph
// blocks never nest; the grammar has no brace alternative inside a block, so
// a stray inner '{' is an ordinary unexpected token.
func (p *turtleParser) parseGraphBlock() *Node {
	n := &Node{Kind: KindGraphBlock}

	p.optional(n, "keyword", token.GraphKw)

	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		n.appendNode("label", p.parseIRI("graphBlock"))
	case p.at(token.BlankNodeLabel):
		n.appendNode("label", p.parseBlankNode())
	case p.at(token.LBracket) && p.peekAt(token.RBracket):
		n.appendNode("label", p.parseBlankNodePropertyList())
	}

	if _, ok := p.expect(n, "open", "graphBlock", token.LBrace); !ok {
		p.syncTo(n, token.LBrace|statementFirst)
		if !p.optional(n, "open", token.LBrace) {
			return n
		}
	}

	for !p.at(token.RBrace | token.EOF) {
		if p.at(subjectFirst) {
			n.appendNode("triples", p.parseTriplesInGraph())
		} else {
			p.wrapError(n, "graphBlock")
		}
	}

	p.expect(n, "close", "graphBlock", token.RBrace)
	return n
}

// parseTriplesInGraph parses one triples statement inside a graph block. The
// terminating '.' is optional for the last statement before the closing
// brace.
func (p *turtleParser) parseTriplesInGraph() *Node {
	n := &Node{Kind: KindTriples}

	subject := p.parseSubject()
	n.appendNode("subject", subject)

	optionalPredicates := subject != nil &&
		(subject.Kind == KindBlankNodePropertyList || subject.Kind == KindReifiedTriple)

	if p.at(verbFirst) || !optionalPredicates {
		n.appendNode("polist", p.parsePredicateObjectList(token.Dot|token.RBrace))
	}

	if !p.optional(n, "dot", token.Dot) && !p.at(token.RBrace) {
		p.errorExpected("triples", token.Dot)
		p.syncTo(n, statementFirst|token.Dot|token.RBrace)
		p.optional(n, "dot", token.Dot)
	}
	return n
}
