package reader

import (
	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/parser"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// prescanPrefixes seeds the namespace table from every prefix declaration in
// the document, including those inside formulas. N3 permits a name to be
// used before its prefix is declared; pre-binding the table makes forward
// references resolve. Redeclarations still rebind sequentially during the
// walk, so the text between two declarations of the same prefix sees the
// earlier one.
func (r *reader) prescanPrefixes(n *parser.Node) {
	if n.Kind == parser.KindPrefixDecl {
		prefixTok, ok1 := n.Token("prefix")
		iriTok, ok2 := n.Token("iri")
		if ok1 && ok2 {
			prefix := prefixTok.Image[:len(prefixTok.Image)-1]
			if _, bound := r.namespaces[prefix]; !bound {
				r.namespaces[prefix] = trimAngles(iriTok.Image)
			}
		}
		return
	}
	for _, c := range n.Children {
		if nc, ok := c.(parser.NodeChild); ok {
			r.prescanPrefixes(nc.Node)
		}
	}
}

// readN3Document walks an N3 document in source order.
func (r *reader) readN3Document(doc *parser.Node) error {
	return r.readN3Statements(doc)
}

func (r *reader) readN3Statements(n *parser.Node) error {
	for _, stmt := range n.Nodes("statement") {
		var err error
		switch stmt.Kind {
		case parser.KindPrefixDecl:
			err = r.readPrefixDecl(stmt)
		case parser.KindBaseDecl:
			err = r.readBaseDecl(stmt)
		case parser.KindQuantDecl:
			// Quantification is recorded in the tree only; no quads.
		case parser.KindTriples:
			err = r.readTriples(stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formulaTerm lowers '{ ... }': the formula's statements read into a graph
// named by a fresh blank node, and that node is the formula's value. Nested
// formulas stack naturally through the saved graph context.
func (r *reader) formulaTerm(n *parser.Node) (rdf.Term, error) {
	f := r.freshBlank()

	saved := r.graph
	r.graph = f
	err := r.readN3Statements(n)
	r.graph = saved

	if err != nil {
		return nil, err
	}
	return f, nil
}

// pathTerm lowers 'base!p' and 'base^p' chains. Each step mints a fresh
// blank node for the traversal result: 'a!b' asserts a b x and evaluates to
// x; 'a^b' asserts x b a. Steps chain left to right.
func (r *reader) pathTerm(n *parser.Node) (rdf.Term, error) {
	current, err := r.term(n.Child("base"))
	if err != nil {
		return nil, err
	}
	ops := n.Tokens("op")
	steps := n.Nodes("step")
	for i, op := range ops {
		if i >= len(steps) {
			break
		}
		pred, err := r.term(steps[i])
		if err != nil {
			return nil, err
		}
		next := r.freshBlank()
		if op.Kind == token.Bang {
			r.emit(current, pred, next)
		} else {
			r.emit(next, pred, current)
		}
		current = next
	}
	return current, nil
}
