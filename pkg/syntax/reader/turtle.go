package reader

import (
	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/parser"
)

// readDocument walks a Turtle or TriG document in source order. Directives
// take effect as they are met: a prefix or base declared halfway through the
// document only governs the text after it.
func (r *reader) readDocument(doc *parser.Node) error {
	for _, stmt := range doc.Nodes("statement") {
		var err error
		switch stmt.Kind {
		case parser.KindPrefixDecl:
			err = r.readPrefixDecl(stmt)
		case parser.KindBaseDecl:
			err = r.readBaseDecl(stmt)
		case parser.KindVersionDecl:
			// Syntactic only; no effect on the quads.
		case parser.KindTriples:
			err = r.readTriples(stmt)
		case parser.KindGraphBlock:
			err = r.readGraphBlock(stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readPrefixDecl binds a prefix. The namespace IRI is resolved against the
// base in force at the declaration, so later base changes cannot shift it.
func (r *reader) readPrefixDecl(n *parser.Node) error {
	prefixTok, ok1 := n.Token("prefix")
	iriTok, ok2 := n.Token("iri")
	if !ok1 || !ok2 {
		return nil // recovery dropped a part; parse errors already say so
	}
	iri, err := r.resolveIRIRef(iriTok)
	if err != nil {
		return err
	}
	prefix := prefixTok.Image[:len(prefixTok.Image)-1]
	r.namespaces[prefix] = iri
	return nil
}

// readBaseDecl updates the base. A relative new base is resolved against the
// old one; the last declaration wins from then on.
func (r *reader) readBaseDecl(n *parser.Node) error {
	iriTok, ok := n.Token("iri")
	if !ok {
		return nil
	}
	iri, err := r.resolveIRIRef(iriTok)
	if err != nil {
		return err
	}
	r.base = iri
	return nil
}

// readTriples materializes one triples statement. A statement whose subject
// is a bare property list or reified triple and that has no predicates
// asserts nothing beyond the quads the subject term itself implied.
func (r *reader) readTriples(n *parser.Node) error {
	subj, err := r.term(n.Child("subject"))
	if err != nil {
		return err
	}
	if polist := n.Child("polist"); polist != nil {
		return r.readPredicateObjectList(polist, subj)
	}
	return nil
}

// readGraphBlock scopes the block's statements to the labeled graph. A bare
// block without a label reads into the default graph; blocks never nest, so
// a single saved value restores the context.
func (r *reader) readGraphBlock(n *parser.Node) error {
	graph := rdf.Term(rdf.NewDefaultGraph())
	if label := n.Child("label"); label != nil {
		switch label.Kind {
		case parser.KindIRI:
			t, err := r.iriTerm(label)
			if err != nil {
				return err
			}
			graph = t
		case parser.KindBlankNode:
			tok, _ := label.Token("label")
			graph = r.labeledBlank(tok.Image)
		case parser.KindBlankNodePropertyList:
			graph = r.freshBlank()
		}
	}

	saved := r.graph
	r.graph = graph
	defer func() { r.graph = saved }()

	for _, stmt := range n.Nodes("triples") {
		if err := r.readTriples(stmt); err != nil {
			return err
		}
	}
	return nil
}
