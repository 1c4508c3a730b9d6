package parser

import (
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/lexer"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// ParseTurtle parses a complete Turtle document. The returned result always
// carries a CST, even for broken input; diagnostics accumulate in the error
// lists.
func ParseTurtle(src string) *Result {
	return parseTurtleLike(src, lexer.Turtle)
}

// ParseTriG parses a complete TriG document: Turtle plus graph blocks.
func ParseTriG(src string) *Result {
	return parseTurtleLike(src, lexer.TriG)
}

func parseTurtleLike(src string, dialect lexer.Dialect) *Result {
	tokens, lexErrs := lexer.New(src, dialect).Tokens()
	p := &turtleParser{
		engine:  newEngine(tokens),
		dialect: dialect,
	}
	root := p.parseDocument()
	return &Result{
		Root:       root,
		LexErrors:  lexErrs,
		Errors:     p.errors,
		Namespaces: p.namespaces,
		Base:       p.base,
	}
}

// turtleParser parses Turtle and, with the TriG dialect, graph blocks too.
type turtleParser struct {
	engine
	dialect lexer.Dialect

	// verbIsSimple is a stateful grammar flag: reifiers and annotation
	// blocks are only syntactically valid when the verb that produced the
	// current triple was a plain IRI or 'a'. The flag follows stack
	// discipline; rules that nest a fresh predicate-object context save and
	// restore it.
	verbIsSimple bool
}

const (
	subjectFirst   = token.IRIRef | token.PNameLN | token.PNameNS | token.BlankNodeLabel | token.LBracket | token.LParen | token.LReified
	verbFirst      = token.A | token.IRIRef | token.PNameLN | token.PNameNS
	objectFirst    = token.Terms
	directiveFirst = token.AtPrefix | token.AtBase | token.AtVersion | token.PrefixKw | token.BaseKw | token.VersionKw
	statementFirst = directiveFirst | subjectFirst
)

// parseDocument parses turtleDoc (or trigDoc):
//
//	turtleDoc := (directive | triples '.')*
//	trigDoc   := (directive | block)*        block := graphBlock | triples '.'
func (p *turtleParser) parseDocument() *Node {
	doc := &Node{Kind: KindDocument}
	for !p.at(token.EOF) {
		switch {
		case p.at(token.AtPrefix | token.PrefixKw):
			doc.appendNode("statement", p.parsePrefixDecl())
		case p.at(token.AtBase | token.BaseKw):
			doc.appendNode("statement", p.parseBaseDecl())
		case p.at(token.AtVersion | token.VersionKw):
			doc.appendNode("statement", p.parseVersionDecl())
		case p.dialect == lexer.TriG && p.at(token.GraphKw|token.LBrace):
			doc.appendNode("statement", p.parseGraphBlock())
		case p.dialect == lexer.TriG && p.at(token.IRIRef|token.PNameLN|token.PNameNS|token.BlankNodeLabel) && p.peekAt(token.LBrace):
			doc.appendNode("statement", p.parseGraphBlock())
		case p.dialect == lexer.TriG && p.at(token.LBracket) && p.peekAt(token.RBracket) && p.peekAt2(token.LBrace):
			doc.appendNode("statement", p.parseGraphBlock())
		case p.at(subjectFirst):
			doc.appendNode("statement", p.parseTriples())
		default:
			p.wrapError(doc, "document")
		}
	}
	return doc
}

// parsePrefixDecl parses '@prefix' PNAME_NS IRIREF '.' or the SPARQL-style
// 'PREFIX' PNAME_NS IRIREF without the dot. The namespace table is mutated
// here, as a side effect of parsing: Turtle requires prefixes to be declared
// before use, so later prefixed names can be checked immediately.
func (p *turtleParser) parsePrefixDecl() *Node {
	n := &Node{Kind: KindPrefixDecl}
	keyword := p.consume(n, "keyword")

	prefixTok, okPrefix := p.expect(n, "prefix", "prefixDecl", token.PNameNS)
	iriTok, okIRI := p.expect(n, "iri", "prefixDecl", token.IRIRef)

	if okPrefix && okIRI {
		p.declarePrefix(pnamePrefix(prefixTok.Image), trimIRIRef(iriTok.Image))
	}

	if keyword.Kind == token.AtPrefix {
		if _, ok := p.expect(n, "dot", "prefixDecl", token.Dot); !ok {
			p.syncTo(n, statementFirst|token.Dot)
			p.optional(n, "dot", token.Dot)
		}
	}
	return n
}

// parseBaseDecl parses '@base' IRIREF '.' or 'BASE' IRIREF. Last write wins;
// the base is document scoped, never stacked.
func (p *turtleParser) parseBaseDecl() *Node {
	n := &Node{Kind: KindBaseDecl}
	keyword := p.consume(n, "keyword")

	if iriTok, ok := p.expect(n, "iri", "baseDecl", token.IRIRef); ok {
		p.base = trimIRIRef(iriTok.Image)
	}

	if keyword.Kind == token.AtBase {
		if _, ok := p.expect(n, "dot", "baseDecl", token.Dot); !ok {
			p.syncTo(n, statementFirst|token.Dot)
			p.optional(n, "dot", token.Dot)
		}
	}
	return n
}

// parseVersionDecl parses '@version' STRING '.' or 'VERSION' STRING. The
// version string is validated syntactically and otherwise ignored.
func (p *turtleParser) parseVersionDecl() *Node {
	n := &Node{Kind: KindVersionDecl}
	keyword := p.consume(n, "keyword")
	p.expect(n, "version", "versionDecl", token.String)
	if keyword.Kind == token.AtVersion {
		p.expect(n, "dot", "versionDecl", token.Dot)
	}
	return n
}

// parseTriples parses one triples statement up to and including its '.'.
//
//	triples := subject predicateObjectList
//	         | blankNodePropertyList predicateObjectList?
//	         | reifiedTriple predicateObjectList?
func (p *turtleParser) parseTriples() *Node {
	n := &Node{Kind: KindTriples}

	subject := p.parseSubject()
	n.appendNode("subject", subject)

	// A bare blank node property list and a bare reified triple are complete
	// statements on their own; everything else needs predicates.
	optionalPredicates := subject != nil &&
		(subject.Kind == KindBlankNodePropertyList || subject.Kind == KindReifiedTriple)

	if p.at(verbFirst) || !optionalPredicates {
		n.appendNode("polist", p.parsePredicateObjectList(token.Dot))
	}

	if _, ok := p.expect(n, "dot", "triples", token.Dot); !ok {
		p.syncTo(n, statementFirst|token.Dot|p.blockRecovery())
		p.optional(n, "dot", token.Dot)
	}
	return n
}

// blockRecovery adds the TriG block delimiters to statement-level recovery
// sets so that a broken statement cannot eat the closing brace of its graph.
func (p *turtleParser) blockRecovery() token.Kind {
	if p.dialect == lexer.TriG {
		return token.RBrace | token.GraphKw | token.LBrace
	}
	return 0
}

// parseSubject parses the subject alternation. Returns nil after recording
// an error when nothing fits, so the caller can resynchronize.
func (p *turtleParser) parseSubject() *Node {
	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		return p.parseIRI("subject")
	case p.at(token.BlankNodeLabel):
		return p.parseBlankNode()
	case p.at(token.LBracket):
		return p.parseBlankNodePropertyList()
	case p.at(token.LParen):
		return p.parseCollection()
	case p.at(token.LReified):
		return p.parseReifiedTriple()
	default:
		p.errorExpected("subject", subjectFirst)
		return nil
	}
}

// parsePredicateObjectList parses verb objectList (';' (verb objectList)?)*.
// The verbs and object lists are stored as parallel slot sequences; position
// pairs them during materialization.
func (p *turtleParser) parsePredicateObjectList(recovery token.Kind) *Node {
	n := &Node{Kind: KindPredicateObjectList}
	for {
		verb := p.parseVerb()
		if verb == nil {
			p.syncTo(n, recovery|token.Semicolon|statementFirst)
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
		// Repeated semicolons are allowed; trailing ones end the list.
		for p.at(token.Semicolon) {
			p.consume(n, "semicolon")
		}
		if !p.at(verbFirst) {
			break
		}
	}
	return n
}

// parseVerb parses 'a' or an IRI. Sets the simple-verb flag that gates the
// annotation alternatives downstream.
func (p *turtleParser) parseVerb() *Node {
	n := &Node{Kind: KindVerb}
	switch {
	case p.at(token.A):
		p.consume(n, "a")
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		n.appendNode("iri", p.parseIRI("verb"))
	default:
		p.errorExpected("verb", verbFirst)
		return nil
	}
	p.verbIsSimple = true
	return n
}

// parseObjectList parses object (',' object)*.
func (p *turtleParser) parseObjectList(recovery token.Kind) *Node {
	n := &Node{Kind: KindObjectList}
	for {
		obj := p.parseObject()
		if obj == nil {
			p.syncTo(n, recovery|token.Comma|token.Semicolon|statementFirst)
		} else {
			n.appendNode("object", obj)
		}
		if !p.at(token.Comma) {
			return n
		}
		p.consume(n, "comma")
	}
}

// parseObject parses one object together with the reifiers and annotation
// blocks that follow it. Annotations are only accepted after a simple verb;
// that condition is contextual, not grammatical, so it is checked as a gate
// on the alternative rather than encoded in the rule structure.
func (p *turtleParser) parseObject() *Node {
	term := p.parseTermOrError("object")
	if term == nil {
		return nil
	}
	n := &Node{Kind: KindObject}
	n.appendNode("term", term)

	for p.at(token.Tilde | token.LAnnotation) {
		if !p.verbIsSimple {
			p.errorf("object", "annotation is not allowed after a non-simple verb")
		}
		if p.at(token.Tilde) {
			n.appendNode("annotation", p.parseReifier())
		} else {
			n.appendNode("annotation", p.parseAnnotationBlock())
		}
	}
	return n
}

// parseReifier parses '~' followed by an optional reifier term (an IRI or a
// blank node). A bare '~' mints a fresh reifier during materialization.
func (p *turtleParser) parseReifier() *Node {
	n := &Node{Kind: KindReifier}
	p.consume(n, "tilde")
	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		n.appendNode("term", p.parseIRI("reifier"))
	case p.at(token.BlankNodeLabel):
		n.appendNode("term", p.parseBlankNode())
	case p.at(token.LBracket) && p.peekAt(token.RBracket):
		n.appendNode("term", p.parseBlankNodePropertyList())
	}
	return n
}

// parseAnnotationBlock parses '{|' predicateObjectList '|}'. The enclosed
// predicate-object pairs get their own verb context.
func (p *turtleParser) parseAnnotationBlock() *Node {
	n := &Node{Kind: KindAnnotationBlock}
	p.consume(n, "open")

	saved := p.verbIsSimple
	if !p.at(token.RAnnotation) { // {||} is a valid empty annotation
		n.appendNode("polist", p.parsePredicateObjectList(token.RAnnotation))
	}
	p.verbIsSimple = saved

	if _, ok := p.expect(n, "close", "annotation", token.RAnnotation); !ok {
		p.syncTo(n, token.RAnnotation|token.Dot|statementFirst)
		p.optional(n, "close", token.RAnnotation)
	}
	return n
}

// parseTermOrError parses any object-position term.
func (p *turtleParser) parseTermOrError(rule string) *Node {
	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		return p.parseIRI(rule)
	case p.at(token.BlankNodeLabel):
		return p.parseBlankNode()
	case p.at(token.LBracket):
		return p.parseBlankNodePropertyList()
	case p.at(token.LParen):
		return p.parseCollection()
	case p.at(token.String | token.Integer | token.Decimal | token.Double | token.Boolean):
		return p.parseLiteral()
	case p.at(token.LReified):
		return p.parseReifiedTriple()
	case p.at(token.LTripleTerm):
		return p.parseTripleTerm()
	default:
		p.errorExpected(rule, objectFirst)
		return nil
	}
}

// parseIRI parses an IRIREF or a prefixed name. For prefixed names the
// prefix must already be declared; Turtle and TriG disallow forward
// references, so the check happens right here at parse time.
func (p *turtleParser) parseIRI(rule string) *Node {
	n := &Node{Kind: KindIRI}
	if p.at(token.IRIRef) {
		p.consume(n, "iriref")
		return n
	}
	tok := p.consume(n, "pname")
	p.checkPrefixDeclared(rule, tok)
	return n
}

func (p *turtleParser) parseBlankNode() *Node {
	n := &Node{Kind: KindBlankNode}
	p.consume(n, "label")
	return n
}

// parseLiteral parses an RDF literal: a string with optional language tag or
// '^^' datatype, or one of the bare numeric/boolean forms.
func (p *turtleParser) parseLiteral() *Node {
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
			n.appendNode("datatype", p.parseIRI("literal"))
		} else {
			p.errorExpected("literal", token.IRIRef|token.PNameLN|token.PNameNS)
		}
	}
	return n
}

// parseCollection parses '(' object* ')'.
func (p *turtleParser) parseCollection() *Node {
	n := &Node{Kind: KindCollection}
	p.consume(n, "open")
	for p.at(objectFirst) {
		item := p.parseTermOrError("collection")
		if item == nil {
			break
		}
		n.appendNode("item", item)
	}
	if _, ok := p.expect(n, "close", "collection", token.RParen); !ok {
		p.syncTo(n, token.RParen|token.Dot|statementFirst)
		p.optional(n, "close", token.RParen)
	}
	return n
}

// parseBlankNodePropertyList parses '[' predicateObjectList? ']'. The form
// '[]' is the anonymous blank node.
func (p *turtleParser) parseBlankNodePropertyList() *Node {
	n := &Node{Kind: KindBlankNodePropertyList}
	p.consume(n, "open")

	if !p.at(token.RBracket) {
		saved := p.verbIsSimple
		n.appendNode("polist", p.parsePredicateObjectList(token.RBracket))
		p.verbIsSimple = saved
	}

	if _, ok := p.expect(n, "close", "blankNodePropertyList", token.RBracket); !ok {
		p.syncTo(n, token.RBracket|token.Dot|statementFirst)
		p.optional(n, "close", token.RBracket)
	}
	return n
}

// parseReifiedTriple parses '<<' subject verb object ('~' reifier)? '>>'.
func (p *turtleParser) parseReifiedTriple() *Node {
	n := &Node{Kind: KindReifiedTriple}
	p.consume(n, "open")

	n.appendNode("subject", p.parseInnerTerm("reifiedTriple"))
	if verb := p.parseVerb(); verb != nil {
		n.appendNode("verb", verb)
	}
	n.appendNode("object", p.parseInnerTerm("reifiedTriple"))

	if p.at(token.Tilde) {
		n.appendNode("reifier", p.parseReifier())
	}

	if _, ok := p.expect(n, "close", "reifiedTriple", token.RReified); !ok {
		p.syncTo(n, token.RReified|token.Dot|statementFirst)
		p.optional(n, "close", token.RReified)
	}
	return n
}

// parseTripleTerm parses '<<(' subject verb object ')>>'. Triple terms nest:
// the object may itself be a triple term.
func (p *turtleParser) parseTripleTerm() *Node {
	n := &Node{Kind: KindTripleTerm}
	p.consume(n, "open")

	n.appendNode("subject", p.parseInnerTerm("tripleTerm"))
	if verb := p.parseVerb(); verb != nil {
		n.appendNode("verb", verb)
	}
	n.appendNode("object", p.parseInnerTerm("tripleTerm"))

	if _, ok := p.expect(n, "close", "tripleTerm", token.RTripleTerm); !ok {
		p.syncTo(n, token.RTripleTerm|token.Dot|statementFirst)
		p.optional(n, "close", token.RTripleTerm)
	}
	return n
}

// parseInnerTerm parses the restricted term set allowed inside reified
// triples and triple terms: no property lists or collections.
func (p *turtleParser) parseInnerTerm(rule string) *Node {
	switch {
	case p.at(token.IRIRef | token.PNameLN | token.PNameNS):
		return p.parseIRI(rule)
	case p.at(token.BlankNodeLabel):
		return p.parseBlankNode()
	case p.at(token.LBracket) && p.peekAt(token.RBracket):
		return p.parseBlankNodePropertyList()
	case p.at(token.String | token.Integer | token.Decimal | token.Double | token.Boolean):
		return p.parseLiteral()
	case p.at(token.LReified):
		return p.parseReifiedTriple()
	case p.at(token.LTripleTerm):
		return p.parseTripleTerm()
	default:
		p.errorExpected(rule, token.IRIRef|token.PNameLN|token.PNameNS|token.BlankNodeLabel|token.String)
		return nil
	}
}

// trimIRIRef strips the angle brackets from an IRIREF token image.
func trimIRIRef(image string) string {
	if len(image) >= 2 && image[0] == '<' && image[len(image)-1] == '>' {
		return image[1 : len(image)-1]
	}
	return image
}
