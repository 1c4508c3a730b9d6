// Package token defines the lexical tokens shared by the Turtle family of
// RDF serialization languages (Turtle, TriG, N3) and their line-oriented
// N-Triples/N-Quads subset.
package token

import (
	"fmt"
	"strings"
)

// Kind identifies a token kind. Kinds are single-bit values so that sets of
// kinds can be expressed as a bitwise or, which is how grammar rules declare
// expected tokens and recovery sets.
type Kind uint64

const (
	Illegal Kind = 1 << iota
	// EOF marks the end of the token list. No token follows it.
	EOF
	Comment

	// Terms
	IRIRef         // <http://example.org/a>
	PNameLN        // ex:local
	PNameNS        // ex: (prefix part only, also the empty prefix ":")
	BlankNodeLabel // _:b1
	Variable       // ?x or $x
	String         // any of the four string literal quoting forms, image keeps the quotes
	Integer        // 42, -7
	Decimal        // 3.14
	Double         // 1e0, -2.5E10
	Boolean        // true, false
	LangTag        // @en, @en-GB

	// Keywords
	A         // a (rdf:type)
	AtPrefix  // @prefix
	AtBase    // @base
	AtVersion // @version
	AtForAll  // @forAll (N3)
	AtForSome // @forSome (N3)
	PrefixKw  // PREFIX (case-insensitive)
	BaseKw    // BASE (case-insensitive)
	VersionKw // VERSION (case-insensitive)
	GraphKw   // GRAPH (TriG, case-insensitive)
	HasKw     // has (N3)
	IsKw      // is (N3)
	OfKw      // of (N3)

	// Punctuation. Multi-character kinds are declared before the
	// single-character kinds they share a prefix with; the lexer relies on
	// this order when classifying.
	LTripleTerm // <<(
	RTripleTerm // )>>
	LReified    // <<
	RReified    // >>
	LAnnotation // {|
	RAnnotation // |}
	DoubleCaret // ^^
	Implies     // => (N3)
	ImpliedBy   // <= (N3)
	Equals      // = (N3)
	Bang        // ! (N3 forward path)
	Caret       // ^ (N3 backward path)
	Tilde       // ~ (RDF 1.2 reifier)
	Dot         // .
	Comma       // ,
	Semicolon   // ;
	LBracket    // [
	RBracket    // ]
	LParen      // (
	RParen      // )
	LBrace      // {
	RBrace      // }
)

var kindStrings = map[Kind]string{
	Illegal: "ILLEGAL",
	EOF:     "EOF",
	Comment: "comment",

	IRIRef:         "IRI reference",
	PNameLN:        "prefixed name",
	PNameNS:        "prefix",
	BlankNodeLabel: "blank node label",
	Variable:       "variable",
	String:         "string literal",
	Integer:        "integer literal",
	Decimal:        "decimal literal",
	Double:         "double literal",
	Boolean:        "boolean literal",
	LangTag:        "language tag",

	A:         "a",
	AtPrefix:  "@prefix",
	AtBase:    "@base",
	AtVersion: "@version",
	AtForAll:  "@forAll",
	AtForSome: "@forSome",
	PrefixKw:  "PREFIX",
	BaseKw:    "BASE",
	VersionKw: "VERSION",
	GraphKw:   "GRAPH",
	HasKw:     "has",
	IsKw:      "is",
	OfKw:      "of",

	LTripleTerm: "<<(",
	RTripleTerm: ")>>",
	LReified:    "<<",
	RReified:    ">>",
	LAnnotation: "{|",
	RAnnotation: "|}",
	DoubleCaret: "^^",
	Implies:     "=>",
	ImpliedBy:   "<=",
	Equals:      "=",
	Bang:        "!",
	Caret:       "^",
	Tilde:       "~",
	Dot:         ".",
	Comma:       ",",
	Semicolon:   ";",
	LBracket:    "[",
	RBracket:    "]",
	LParen:      "(",
	RParen:      ")",
	LBrace:      "{",
	RBrace:      "}",
}

// String returns a human-readable name for a kind. For a set of kinds it
// joins the member names with " or ".
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}

	var parts []string
	for bit := Kind(1); bit != 0; bit <<= 1 {
		if k&bit != 0 {
			if s, ok := kindStrings[bit]; ok {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Kind(%d)", uint64(k))
	}
	return strings.Join(parts, " or ")
}

// Terms is the set of kinds that can begin a term in the Turtle family.
const Terms = IRIRef | PNameLN | PNameNS | BlankNodeLabel | Variable |
	String | Integer | Decimal | Double | Boolean |
	LBracket | LParen | LTripleTerm | LReified

// Position describes a location in source text.
type Position struct {
	Offset int // byte offset, starting at 0
	Line   int // line number, starting at 1
	Column int // column in runes, starting at 1
}

// String returns the position in line:column format.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p is located before o.
func (p Position) Before(o Position) bool {
	return p.Offset < o.Offset
}

// Token is a single classified token. Image is the exact source text the
// token covers; tokens are immutable once produced.
type Token struct {
	Kind       Kind
	Image      string
	Start, End Position
}

// Is reports whether the token's kind is in the given set.
func (t Token) Is(set Kind) bool {
	return t.Kind&set != 0
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Illegal:
		return fmt.Sprintf("ILLEGAL(%q)", t.Image)
	default:
		return t.Image
	}
}

var keywords = map[string]Kind{
	"@prefix":  AtPrefix,
	"@base":    AtBase,
	"@version": AtVersion,
	"@forAll":  AtForAll,
	"@forSome": AtForSome,
}

// caseInsensitiveKeywords are the SPARQL-style directives and the TriG GRAPH
// keyword, matched without case sensitivity.
var caseInsensitiveKeywords = map[string]Kind{
	"prefix":  PrefixKw,
	"base":    BaseKw,
	"version": VersionKw,
	"graph":   GraphKw,
}

// n3Keywords are bare words with special meaning only in the N3 dialect.
var n3Keywords = map[string]Kind{
	"has": HasKw,
	"is":  IsKw,
	"of":  OfKw,
}

// LookupAt resolves an @-word to its directive kind, or Illegal if unknown.
func LookupAt(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}
	return Illegal
}

// LookupBare resolves a bare identifier that is not a prefixed name to a
// keyword kind. The n3 flag enables the N3-only keywords. Bare words that
// are not keywords return Illegal; the lexer then retries them as prefixed
// names.
func LookupBare(word string, n3 bool) Kind {
	switch word {
	case "a":
		return A
	case "true", "false":
		return Boolean
	}
	if k, ok := caseInsensitiveKeywords[strings.ToLower(word)]; ok {
		return k
	}
	if n3 {
		if k, ok := n3Keywords[word]; ok {
			return k
		}
	}
	return Illegal
}
