package parser

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// NodeKind identifies the grammar rule a CST node records an invocation of.
type NodeKind int

const (
	// KindErrorTree holds tokens skipped while resynchronizing after a
	// syntax error.
	KindErrorTree NodeKind = iota

	KindDocument
	KindPrefixDecl
	KindBaseDecl
	KindVersionDecl
	KindQuantDecl // N3 @forAll / @forSome

	KindTriples
	KindGraphBlock // TriG
	KindPredicateObjectList
	KindVerb
	KindObjectList
	KindObject
	KindReifier
	KindAnnotationBlock

	// Term rules
	KindIRI
	KindBlankNode
	KindLiteral
	KindCollection
	KindBlankNodePropertyList
	KindTripleTerm
	KindReifiedTriple
	KindVariable
	KindFormula // N3 { ... }
	KindPath    // N3 a!b / a^b
)

func (k NodeKind) String() string {
	switch k {
	case KindErrorTree:
		return "ErrorTree"
	case KindDocument:
		return "Document"
	case KindPrefixDecl:
		return "PrefixDecl"
	case KindBaseDecl:
		return "BaseDecl"
	case KindVersionDecl:
		return "VersionDecl"
	case KindQuantDecl:
		return "QuantDecl"
	case KindTriples:
		return "Triples"
	case KindGraphBlock:
		return "GraphBlock"
	case KindPredicateObjectList:
		return "PredicateObjectList"
	case KindVerb:
		return "Verb"
	case KindObjectList:
		return "ObjectList"
	case KindObject:
		return "Object"
	case KindReifier:
		return "Reifier"
	case KindAnnotationBlock:
		return "AnnotationBlock"
	case KindIRI:
		return "IRI"
	case KindBlankNode:
		return "BlankNode"
	case KindLiteral:
		return "Literal"
	case KindCollection:
		return "Collection"
	case KindBlankNodePropertyList:
		return "BlankNodePropertyList"
	case KindTripleTerm:
		return "TripleTerm"
	case KindReifiedTriple:
		return "ReifiedTriple"
	case KindVariable:
		return "Variable"
	case KindFormula:
		return "Formula"
	case KindPath:
		return "Path"
	default:
		panic(fmt.Errorf("NodeKind Stringer missing case for %d", int(k)))
	}
}

// Node is a CST node: one grammar rule invocation with its children in
// source order. Every child is keyed by the grammar slot it filled. Multiple
// occurrences of the same slot within one rule (e.g. the repeated verb and
// object-list pairs around ';') are stored as parallel same-length
// sequences; positional correspondence pairs them up during materialization.
//
// Nodes are built bottom-up during parsing and must be treated as read-only
// afterwards.
type Node struct {
	Kind       NodeKind
	Children   []Child
	Start, End token.Position
}

// Child is either a token or a nested node, tagged with the grammar slot it
// filled. Implementations are [TokenChild] and [NodeChild].
type Child interface {
	ChildSlot() string
}

// TokenChild is a token child of a CST node.
type TokenChild struct {
	Slot string
	token.Token
}

func (c TokenChild) ChildSlot() string { return c.Slot }

// NodeChild is a nested rule invocation child of a CST node.
type NodeChild struct {
	Slot string
	*Node
}

func (c NodeChild) ChildSlot() string { return c.Slot }

func (n *Node) appendToken(slot string, tok token.Token) {
	if len(n.Children) == 0 {
		n.Start = tok.Start
	}
	n.End = tok.End
	n.Children = append(n.Children, TokenChild{Slot: slot, Token: tok})
}

func (n *Node) appendNode(slot string, child *Node) {
	if child == nil {
		return
	}
	if len(n.Children) == 0 {
		n.Start = child.Start
	}
	n.End = child.End
	n.Children = append(n.Children, NodeChild{Slot: slot, Node: child})
}

// Nodes returns all node children that filled the given slot, in source
// order.
func (n *Node) Nodes(slot string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if nc, ok := c.(NodeChild); ok && nc.Slot == slot {
			out = append(out, nc.Node)
		}
	}
	return out
}

// Child returns the first node child in the given slot, or nil.
func (n *Node) Child(slot string) *Node {
	for _, c := range n.Children {
		if nc, ok := c.(NodeChild); ok && nc.Slot == slot {
			return nc.Node
		}
	}
	return nil
}

// Tokens returns all token children that filled the given slot, in source
// order.
func (n *Node) Tokens(slot string) []token.Token {
	var out []token.Token
	for _, c := range n.Children {
		if tc, ok := c.(TokenChild); ok && tc.Slot == slot {
			out = append(out, tc.Token)
		}
	}
	return out
}

// Token returns the first token child in the given slot.
func (n *Node) Token(slot string) (token.Token, bool) {
	for _, c := range n.Children {
		if tc, ok := c.(TokenChild); ok && tc.Slot == slot {
			return tc.Token, true
		}
	}
	return token.Token{}, false
}

// Has reports whether any child filled the given slot.
func (n *Node) Has(slot string) bool {
	for _, c := range n.Children {
		if c.ChildSlot() == slot {
			return true
		}
	}
	return false
}

// String renders the tree as indented text, one child per line, for
// debugging and golden tests.
func (n *Node) String() string {
	var sb strings.Builder
	renderNode(&sb, n, 0)
	return sb.String()
}

func renderNode(sb *strings.Builder, n *Node, indent int) {
	if n == nil {
		return
	}
	writeIndent(sb, indent)
	sb.WriteString(n.Kind.String())
	for _, child := range n.Children {
		sb.WriteByte('\n')
		switch c := child.(type) {
		case TokenChild:
			writeIndent(sb, indent+1)
			fmt.Fprintf(sb, "%s: %q", c.Slot, c.Token.Image)
		case NodeChild:
			writeIndent(sb, indent+1)
			sb.WriteString(c.Slot)
			sb.WriteString(":\n")
			renderNode(sb, c.Node, indent+2)
		}
	}
}

func writeIndent(sb *strings.Builder, columns int) {
	for i := 0; i < columns; i++ {
		sb.WriteByte('\t')
	}
}
