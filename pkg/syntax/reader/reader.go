// Package reader materializes RDF quads from the concrete syntax trees
// produced by the parser package.
//
// Reading is the stage where syntactic sugar is lowered: collections become
// rdf:first/rdf:rest chains, property lists and anonymous blank nodes get
// fresh identities, reifiers and annotation blocks expand to rdf:reifies
// statements, and N3 paths, formulas, and operator verbs turn into their
// vocabulary equivalents. Unlike lexing and parsing, reading fails hard:
// unresolvable names and malformed escapes return an error instead of
// accumulating.
package reader

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/parser"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// Error is a semantic error found while materializing quads: an undefined
// prefix, a relative IRI with no base to resolve against, a bad escape.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Result holds the quads read from one document together with the final
// namespace and base state, which callers need to abbreviate terms back.
type Result struct {
	Quads      []rdf.Quad
	Namespaces map[string]string
	Base       string
}

// ReadTurtle materializes the quads of a parsed Turtle document. All quads
// land in the default graph. base is the document IRI used to resolve
// relative references before any @base directive takes effect; it may be
// empty, in which case relative IRIs pass through unresolved.
func ReadTurtle(root *parser.Node, base string) (*Result, error) {
	r := newReader(base, false)
	if err := r.readDocument(root); err != nil {
		return nil, err
	}
	return r.result(), nil
}

// ReadTriG materializes the quads of a parsed TriG document. Graph blocks
// scope their statements to the named graph; everything else lands in the
// default graph.
func ReadTriG(root *parser.Node, base string) (*Result, error) {
	r := newReader(base, false)
	if err := r.readDocument(root); err != nil {
		return nil, err
	}
	return r.result(), nil
}

// ReadN3 materializes the quads of a parsed N3 document. Prefixed names are
// resolved lazily: a declaration anywhere in the document binds for the
// whole read, and an undeclared empty prefix falls back to the fragment
// namespace of the base.
func ReadN3(root *parser.Node, base string) (*Result, error) {
	r := newReader(base, true)
	r.prescanPrefixes(root)
	if err := r.readN3Document(root); err != nil {
		return nil, err
	}
	return r.result(), nil
}

// reader holds the per-document materialization state: the namespace table,
// the current base, the blank node arena, and the quad accumulator. graph is
// the current graph context; TriG blocks and N3 formulas swap it temporarily.
type reader struct {
	n3 bool

	namespaces map[string]string
	base       string

	labeled map[string]*rdf.BlankNode
	counter int

	quads []rdf.Quad
	graph rdf.Term
}

func newReader(base string, n3 bool) *reader {
	return &reader{
		n3:         n3,
		namespaces: make(map[string]string),
		base:       base,
		labeled:    make(map[string]*rdf.BlankNode),
		graph:      rdf.NewDefaultGraph(),
	}
}

func (r *reader) result() *Result {
	return &Result{Quads: r.quads, Namespaces: r.namespaces, Base: r.base}
}

func (r *reader) emit(s, p, o rdf.Term) {
	r.quads = append(r.quads, *rdf.NewQuad(s, p, o, r.graph))
}

func (r *reader) errorf(pos token.Position, format string, args ...any) error {
	return Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// freshBlank mints a blank node no document label can collide with: labeled
// blank nodes go through the arena, which never produces these IDs.
func (r *reader) freshBlank() *rdf.BlankNode {
	r.counter++
	return rdf.NewBlankNode(fmt.Sprintf("anon%d", r.counter))
}

// labeledBlank interns a labeled blank node: every occurrence of the same
// label in one document yields the identical term.
func (r *reader) labeledBlank(image string) *rdf.BlankNode {
	label := strings.TrimPrefix(image, "_:")
	if b, ok := r.labeled[label]; ok {
		return b
	}
	b := rdf.NewBlankNode("b_" + label)
	r.labeled[label] = b
	return b
}

// term evaluates a term node, emitting any quads the term itself implies
// (property list contents, collection chains, reification statements) into
// the current graph, and returns the term's value.
func (r *reader) term(n *parser.Node) (rdf.Term, error) {
	if n == nil {
		return nil, Error{Msg: "missing term"}
	}
	switch n.Kind {
	case parser.KindIRI:
		return r.iriTerm(n)
	case parser.KindBlankNode:
		tok, _ := n.Token("label")
		return r.labeledBlank(tok.Image), nil
	case parser.KindLiteral:
		return r.literalTerm(n)
	case parser.KindCollection:
		return r.collectionTerm(n)
	case parser.KindBlankNodePropertyList:
		return r.propertyListTerm(n)
	case parser.KindReifiedTriple:
		return r.reifiedTripleTerm(n)
	case parser.KindTripleTerm:
		return r.tripleTermValue(n)
	case parser.KindVariable:
		tok, _ := n.Token("name")
		return rdf.NewVariable(tok.Image[1:]), nil
	case parser.KindFormula:
		return r.formulaTerm(n)
	case parser.KindPath:
		return r.pathTerm(n)
	default:
		return nil, r.errorf(n.Start, "cannot read %s as a term", n.Kind)
	}
}

// iriTerm resolves an IRI node: an IRIREF is unescaped and resolved against
// the current base, a prefixed name is expanded through the namespace table.
func (r *reader) iriTerm(n *parser.Node) (*rdf.NamedNode, error) {
	if tok, ok := n.Token("iriref"); ok {
		iri, err := r.resolveIRIRef(tok)
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(iri), nil
	}
	tok, ok := n.Token("pname")
	if !ok {
		return nil, r.errorf(n.Start, "malformed IRI node")
	}
	iri, err := r.expandPName(tok)
	if err != nil {
		return nil, err
	}
	return rdf.NewNamedNode(iri), nil
}

func (r *reader) resolveIRIRef(tok token.Token) (string, error) {
	iri := trimAngles(tok.Image)
	iri, err := unescapeNumeric(iri)
	if err != nil {
		return "", r.errorf(tok.Start, "in %s: %v", tok.Image, err)
	}
	if isAbsoluteIRI(iri) || r.base == "" {
		return iri, nil
	}
	return resolveIRI(r.base, iri), nil
}

// expandPName expands a prefixed name against the namespace table. In N3 an
// undeclared empty prefix falls back to the fragment namespace of the base;
// any other undeclared prefix is an error carrying the offending name.
func (r *reader) expandPName(tok token.Token) (string, error) {
	image := tok.Image
	idx := strings.IndexByte(image, ':')
	if idx < 0 {
		return "", r.errorf(tok.Start, "malformed prefixed name %q", image)
	}
	prefix, local := image[:idx], image[idx+1:]

	ns, ok := r.namespaces[prefix]
	if !ok {
		if r.n3 && prefix == "" {
			ns = resolveIRI(r.base, "#")
		} else {
			return "", r.errorf(tok.Start, "undefined prefix %q in %s", prefix+":", image)
		}
	}
	return ns + unescapeLocal(local), nil
}

// literalTerm builds a literal from its CST node. Bare numeric and boolean
// tokens keep their source image as the lexical form; only the datatype is
// inferred.
func (r *reader) literalTerm(n *parser.Node) (rdf.Term, error) {
	tok, ok := n.Token("value")
	if !ok {
		return nil, r.errorf(n.Start, "malformed literal node")
	}
	switch tok.Kind {
	case token.Integer:
		return rdf.NewLiteralWithDatatype(tok.Image, rdf.XSDInteger), nil
	case token.Decimal:
		return rdf.NewLiteralWithDatatype(tok.Image, rdf.XSDDecimal), nil
	case token.Double:
		return rdf.NewLiteralWithDatatype(tok.Image, rdf.XSDDouble), nil
	case token.Boolean:
		return rdf.NewLiteralWithDatatype(strings.ToLower(tok.Image), rdf.XSDBoolean), nil
	}

	value, err := unquoteString(tok.Image)
	if err != nil {
		return nil, r.errorf(tok.Start, "%v", err)
	}
	if lang, ok := n.Token("lang"); ok {
		return rdf.NewLiteralWithLanguage(value, strings.TrimPrefix(lang.Image, "@")), nil
	}
	if dt := n.Child("datatype"); dt != nil {
		datatype, err := r.iriTerm(dt)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(value, datatype), nil
	}
	return rdf.NewLiteral(value), nil
}

// collectionTerm lowers '( e1 ... en )' to an rdf:first/rdf:rest chain of n
// fresh blank nodes and returns the head. The empty collection is rdf:nil
// and allocates nothing.
func (r *reader) collectionTerm(n *parser.Node) (rdf.Term, error) {
	items := n.Nodes("item")
	if len(items) == 0 {
		return rdf.RDFNil, nil
	}

	values := make([]rdf.Term, len(items))
	for i, item := range items {
		v, err := r.term(item)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	cells := make([]*rdf.BlankNode, len(items))
	for i := range cells {
		cells[i] = r.freshBlank()
	}
	for i, v := range values {
		r.emit(cells[i], rdf.RDFFirst, v)
		if i+1 < len(cells) {
			r.emit(cells[i], rdf.RDFRest, cells[i+1])
		} else {
			r.emit(cells[i], rdf.RDFRest, rdf.RDFNil)
		}
	}
	return cells[0], nil
}

// propertyListTerm lowers '[ p1 o1 ; ... ]' to a fresh blank node carrying
// the enclosed statements. A bare '[]' is just the fresh node.
func (r *reader) propertyListTerm(n *parser.Node) (rdf.Term, error) {
	b := r.freshBlank()
	if polist := n.Child("polist"); polist != nil {
		if err := r.readPredicateObjectList(polist, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// reifiedTripleTerm lowers '<< s p o ~r >>': the value is the reifier (fresh
// when absent), and one quad reifier rdf:reifies <<( s p o )>> is asserted.
func (r *reader) reifiedTripleTerm(n *parser.Node) (rdf.Term, error) {
	s, err := r.term(n.Child("subject"))
	if err != nil {
		return nil, err
	}
	p, _, err := r.verbTerm(n.Child("verb"))
	if err != nil {
		return nil, err
	}
	o, err := r.term(n.Child("object"))
	if err != nil {
		return nil, err
	}

	var reifier rdf.Term
	if rn := n.Child("reifier"); rn != nil {
		if t := rn.Child("term"); t != nil {
			reifier, err = r.term(t)
			if err != nil {
				return nil, err
			}
		}
	}
	if reifier == nil {
		reifier = r.freshBlank()
	}
	r.emit(reifier, rdf.RDFReifies, rdf.NewTripleTerm(s, p, o))
	return reifier, nil
}

// tripleTermValue lowers '<<( s p o )>>'. A triple term is a value, not a
// statement: no quad is asserted here.
func (r *reader) tripleTermValue(n *parser.Node) (rdf.Term, error) {
	s, err := r.term(n.Child("subject"))
	if err != nil {
		return nil, err
	}
	p, _, err := r.verbTerm(n.Child("verb"))
	if err != nil {
		return nil, err
	}
	o, err := r.term(n.Child("object"))
	if err != nil {
		return nil, err
	}
	return rdf.NewTripleTerm(s, p, o), nil
}

// verbTerm evaluates a verb node. The swap result is true for the verbs that
// reverse subject and object ('<=' and 'is ... of').
func (r *reader) verbTerm(n *parser.Node) (rdf.Term, bool, error) {
	if n == nil {
		return nil, false, Error{Msg: "missing verb"}
	}
	switch {
	case n.Has("a"):
		return rdf.RDFType, false, nil
	case n.Has("eq"):
		return rdf.OWLSameAs, false, nil
	case n.Has("implies"):
		return rdf.LogImplies, false, nil
	case n.Has("impliedBy"):
		return rdf.LogImplies, true, nil
	}
	if child := n.Child("iri"); child != nil {
		t, err := r.iriTerm(child)
		return t, false, err
	}
	if child := n.Child("path"); child != nil {
		t, err := r.term(child)
		return t, n.Has("is"), err
	}
	return nil, false, r.errorf(n.Start, "malformed verb")
}

// readPredicateObjectList asserts the statements of one predicate-object
// list for the given subject. Verbs and object lists are parallel slot
// sequences; positions pair them. Recovery can leave the sequences ragged,
// in which case the unpaired tail is dropped.
func (r *reader) readPredicateObjectList(polist *parser.Node, subj rdf.Term) error {
	verbs := polist.Nodes("verb")
	objectLists := polist.Nodes("objects")

	for i, verb := range verbs {
		if i >= len(objectLists) {
			break
		}
		pred, swap, err := r.verbTerm(verb)
		if err != nil {
			return err
		}
		for _, obj := range objectLists[i].Nodes("object") {
			o, err := r.term(obj.Child("term"))
			if err != nil {
				return err
			}
			s, oo := subj, o
			if swap {
				s, oo = o, subj
			}
			r.emit(s, pred, oo)
			if err := r.readAnnotations(obj, s, pred, oo); err != nil {
				return err
			}
		}
	}
	return nil
}

// readAnnotations expands the reifiers and annotation blocks trailing one
// object. Each '~' starts a new reifier for the asserted triple; an
// annotation block attaches its statements to the reifier of the '~' right
// before it, or mints a fresh one when standing alone. A block consumes its
// reifier, so consecutive bare blocks each get their own.
func (r *reader) readAnnotations(obj *parser.Node, s, p, o rdf.Term) error {
	var current rdf.Term
	tt := rdf.NewTripleTerm(s, p, o)

	for _, ann := range obj.Nodes("annotation") {
		switch ann.Kind {
		case parser.KindReifier:
			var reifier rdf.Term
			if t := ann.Child("term"); t != nil {
				var err error
				reifier, err = r.term(t)
				if err != nil {
					return err
				}
			} else {
				reifier = r.freshBlank()
			}
			r.emit(reifier, rdf.RDFReifies, tt)
			current = reifier

		case parser.KindAnnotationBlock:
			if current == nil {
				current = r.freshBlank()
				r.emit(current, rdf.RDFReifies, tt)
			}
			if polist := ann.Child("polist"); polist != nil {
				if err := r.readPredicateObjectList(polist, current); err != nil {
					return err
				}
			}
			current = nil
		}
	}
	return nil
}

func trimAngles(image string) string {
	if len(image) >= 2 && image[0] == '<' && image[len(image)-1] == '>' {
		return image[1 : len(image)-1]
	}
	return image
}
