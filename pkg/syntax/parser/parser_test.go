package parser

import (
	"strings"
	"testing"
)

func mustClean(t *testing.T, res *Result) {
	t.Helper()
	if err := res.Err(); err != nil {
		t.Fatalf("expected clean parse, got: %v", err)
	}
}

func TestParseTurtle_SimpleDocument(t *testing.T) {
	res := ParseTurtle(`@prefix ex: <http://example.org/> .
ex:s ex:p ex:o .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(statements))
	}
	if statements[0].Kind != KindPrefixDecl {
		t.Errorf("statement 0: expected PrefixDecl, got %s", statements[0].Kind)
	}
	if statements[1].Kind != KindTriples {
		t.Errorf("statement 1: expected Triples, got %s", statements[1].Kind)
	}
	if res.Namespaces["ex"] != "http://example.org/" {
		t.Errorf("namespace table: got %q", res.Namespaces["ex"])
	}
}

func TestParseTurtle_SparqlStyleDirectives(t *testing.T) {
	res := ParseTurtle(`PREFIX ex: <http://example.org/>
BASE <http://example.org/base/>
ex:s ex:p ex:o .`)
	mustClean(t, res)
	if res.Namespaces["ex"] != "http://example.org/" {
		t.Errorf("namespace table: got %q", res.Namespaces["ex"])
	}
	if res.Base != "http://example.org/base/" {
		t.Errorf("base: got %q", res.Base)
	}
}

func TestParseTurtle_PredicateObjectLists(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
:s :p1 :o1, :o2 ; :p2 :o3 ; a :T .`)
	mustClean(t, res)

	triples := res.Root.Nodes("statement")[1]
	polist := triples.Child("polist")
	if polist == nil {
		t.Fatal("missing predicate-object list")
	}

	verbs := polist.Nodes("verb")
	objectLists := polist.Nodes("objects")
	if len(verbs) != 3 || len(objectLists) != 3 {
		t.Fatalf("expected 3 verb/object-list pairs, got %d/%d", len(verbs), len(objectLists))
	}
	if got := len(objectLists[0].Nodes("object")); got != 2 {
		t.Errorf("first object list: expected 2 objects, got %d", got)
	}
	if !verbs[2].Has("a") {
		t.Errorf("third verb should be 'a'")
	}
}

func TestParseTurtle_UndefinedPrefix(t *testing.T) {
	res := ParseTurtle(`ex:s ex:p ex:o .`)
	if len(res.Errors) == 0 {
		t.Fatal("expected diagnostics for the undefined prefix")
	}
	// The diagnostic names the offending token.
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e.Error(), `"ex:"`) && strings.Contains(e.Error(), "ex:s") {
			found = true
		}
	}
	if !found {
		t.Errorf("no diagnostic names the offending prefixed name: %v", res.Errors)
	}
	// The tree is still complete.
	if len(res.Root.Nodes("statement")) != 1 {
		t.Errorf("expected the statement to survive, got %d", len(res.Root.Nodes("statement")))
	}
}

func TestParseTurtle_RecoveryAcrossStatements(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
:s1 :p1 ;;; .
:good :p :o .`)
	// The broken statement produced errors, but the following statement is
	// intact.
	if len(res.Errors) == 0 {
		t.Fatal("expected syntax errors for the broken statement")
	}
	statements := res.Root.Nodes("statement")
	if len(statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(statements))
	}
	last := statements[2]
	if last.Kind != KindTriples {
		t.Fatalf("last statement: expected Triples, got %s", last.Kind)
	}
	if _, ok := last.Child("subject").Token("pname"); !ok {
		t.Error("last statement lost its subject")
	}
}

func TestParseTurtle_ErrorTreeKeepsTokens(t *testing.T) {
	res := ParseTurtle(`%%% @prefix : <http://example.org/> .`)
	if len(res.Errors) == 0 {
		t.Fatal("expected errors for the junk prefix")
	}
	errTrees := res.Root.Nodes("error")
	if len(errTrees) == 0 {
		t.Fatal("expected an ErrorTree holding the skipped tokens")
	}
	if len(errTrees[0].Tokens("skipped")) == 0 {
		t.Error("ErrorTree holds no tokens")
	}
	// The prefix declaration after the junk still parsed.
	if res.Namespaces[""] != "http://example.org/" {
		t.Errorf("prefix declaration after junk was lost: %v", res.Namespaces)
	}
}

func TestParseTurtle_MissingDotRecovery(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
:a :b :c
:d :e :f .`)
	if len(res.Errors) == 0 {
		t.Fatal("expected an error for the missing '.'")
	}
}

func TestParseTurtle_Collection(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
:s :p (:a :b :c) .`)
	mustClean(t, res)

	triples := res.Root.Nodes("statement")[1]
	obj := triples.Child("polist").Nodes("objects")[0].Nodes("object")[0]
	coll := obj.Child("term")
	if coll.Kind != KindCollection {
		t.Fatalf("expected Collection, got %s", coll.Kind)
	}
	if got := len(coll.Nodes("item")); got != 3 {
		t.Errorf("expected 3 items, got %d", got)
	}
}

func TestParseTurtle_BlankNodePropertyList(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
[ :p :o ] .
[] :p :o .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	// Bare property list subject: complete without predicates.
	if statements[1].Child("polist") != nil {
		t.Error("bare property list statement should have no outer predicates")
	}
	// Anonymous subject with predicates.
	if statements[2].Child("polist") == nil {
		t.Error("anonymous subject statement lost its predicates")
	}
}

func TestParseTurtle_ReifiedTripleAndAnnotations(t *testing.T) {
	res := ParseTurtle(`@prefix : <http://example.org/> .
<< :a :b :c >> :p :o .
:s :p :o ~ :r {| :q :v |} .
:s :p <<( :a :b :c )>> .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")

	if statements[1].Child("subject").Kind != KindReifiedTriple {
		t.Errorf("expected ReifiedTriple subject, got %s", statements[1].Child("subject").Kind)
	}

	obj := statements[2].Child("polist").Nodes("objects")[0].Nodes("object")[0]
	annotations := obj.Nodes("annotation")
	if len(annotations) != 2 {
		t.Fatalf("expected reifier + annotation block, got %d", len(annotations))
	}
	if annotations[0].Kind != KindReifier || annotations[1].Kind != KindAnnotationBlock {
		t.Errorf("annotation kinds: %s, %s", annotations[0].Kind, annotations[1].Kind)
	}

	tt := statements[3].Child("polist").Nodes("objects")[0].Nodes("object")[0].Child("term")
	if tt.Kind != KindTripleTerm {
		t.Errorf("expected TripleTerm object, got %s", tt.Kind)
	}
}

func TestParseTriG_GraphBlocks(t *testing.T) {
	res := ParseTriG(`@prefix : <http://example.org/> .
:g1 { :a :b :c . :d :e :f }
GRAPH :g2 { :a :b :c . }
{ :x :y :z }
:plain :p :o .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	if len(statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(statements))
	}
	if statements[1].Kind != KindGraphBlock || statements[2].Kind != KindGraphBlock || statements[3].Kind != KindGraphBlock {
		t.Fatal("graph blocks not recognized")
	}
	if got := len(statements[1].Nodes("triples")); got != 2 {
		t.Errorf("labeled block: expected 2 triples, got %d", got)
	}
	if !statements[2].Has("keyword") {
		t.Error("GRAPH keyword lost")
	}
	if statements[3].Child("label") != nil {
		t.Error("bare block should have no label")
	}
	if statements[4].Kind != KindTriples {
		t.Errorf("trailing plain statement: got %s", statements[4].Kind)
	}
}

func TestParseTriG_AnonymousGraphLabel(t *testing.T) {
	res := ParseTriG(`@prefix : <http://example.org/> .
[] { :a :b :c . }
[] :p :o .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	if len(statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(statements))
	}
	block := statements[1]
	if block.Kind != KindGraphBlock {
		t.Fatalf("expected graph block, got %s", block.Kind)
	}
	label := block.Child("label")
	if label == nil || label.Kind != KindBlankNodePropertyList {
		t.Error("anonymous graph label lost")
	}
	if got := len(block.Nodes("triples")); got != 1 {
		t.Errorf("expected 1 triple in the block, got %d", got)
	}
	// '[]' not followed by '{' is still an ordinary subject.
	if statements[2].Kind != KindTriples {
		t.Errorf("anonymous subject statement: got %s", statements[2].Kind)
	}
}

func TestParseTriG_BrokenBlockDoesNotEatBrace(t *testing.T) {
	res := ParseTriG(`@prefix : <http://example.org/> .
:g { :a :b }
:after :p :o .`)
	// ":a :b" is missing its object: error, but the closing brace and the
	// following statement survive.
	if len(res.Errors) == 0 {
		t.Fatal("expected an error for the incomplete triple")
	}
	statements := res.Root.Nodes("statement")
	if len(statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(statements))
	}
	if statements[2].Kind != KindTriples {
		t.Errorf("statement after block: got %s", statements[2].Kind)
	}
}

func TestParseN3_FormulaAndOperators(t *testing.T) {
	res := ParseN3(`@prefix : <http://example.org/> .
{ :a :b :c } => { :d :e :f } .
:x = :y .
:s :p ?v .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	implication := statements[1]
	if implication.Child("subject").Kind != KindFormula {
		t.Errorf("expected Formula subject, got %s", implication.Child("subject").Kind)
	}
	verb := implication.Child("polist").Nodes("verb")[0]
	if !verb.Has("implies") {
		t.Error("expected '=>' verb")
	}

	eqVerb := statements[2].Child("polist").Nodes("verb")[0]
	if !eqVerb.Has("eq") {
		t.Error("expected '=' verb")
	}

	variable := statements[3].Child("polist").Nodes("objects")[0].Nodes("object")[0].Child("term")
	if variable.Kind != KindVariable {
		t.Errorf("expected Variable object, got %s", variable.Kind)
	}
}

func TestParseN3_Paths(t *testing.T) {
	res := ParseN3(`@prefix : <http://example.org/> .
:joe!:mother!:office :zip :code .
:x^:parent :p :o .`)
	mustClean(t, res)

	first := res.Root.Nodes("statement")[1].Child("subject")
	if first.Kind != KindPath {
		t.Fatalf("expected Path subject, got %s", first.Kind)
	}
	if got := len(first.Tokens("op")); got != 2 {
		t.Errorf("expected 2 path operators, got %d", got)
	}
	if got := len(first.Nodes("step")); got != 2 {
		t.Errorf("expected 2 path steps, got %d", got)
	}
}

func TestParseN3_HasIsOf(t *testing.T) {
	res := ParseN3(`@prefix : <http://example.org/> .
:s has :p :o .
:s is :p of :o .`)
	mustClean(t, res)

	v1 := res.Root.Nodes("statement")[1].Child("polist").Nodes("verb")[0]
	if !v1.Has("has") || v1.Child("path") == nil {
		t.Error("'has' verb not recorded")
	}
	v2 := res.Root.Nodes("statement")[2].Child("polist").Nodes("verb")[0]
	if !v2.Has("is") || !v2.Has("of") {
		t.Error("'is ... of' verb not recorded")
	}
}

func TestParseN3_Quantification(t *testing.T) {
	res := ParseN3(`@prefix : <http://example.org/> .
@forAll :x, :y .
@forSome :z .
:s :p :o .`)
	mustClean(t, res)

	statements := res.Root.Nodes("statement")
	if statements[1].Kind != KindQuantDecl || statements[2].Kind != KindQuantDecl {
		t.Fatal("quantification statements not recognized")
	}
	if got := len(statements[1].Nodes("term")); got != 2 {
		t.Errorf("@forAll: expected 2 terms, got %d", got)
	}
}

func TestParseN3_NoPrefixCheckAtParseTime(t *testing.T) {
	// N3 resolves prefixes at read time; an undeclared prefix is not a
	// parse-time diagnostic.
	res := ParseN3(`:s :p :o .`)
	mustClean(t, res)
}

func TestParseTurtle_OptionalDotAfterSparqlPrefix(t *testing.T) {
	// SPARQL-style PREFIX takes no dot; @prefix requires one.
	res := ParseTurtle(`PREFIX ex: <http://example.org/>
ex:a ex:b ex:c .`)
	mustClean(t, res)

	res = ParseTurtle(`@prefix ex: <http://example.org/>
ex:a ex:b ex:c .`)
	if len(res.Errors) == 0 {
		t.Error("expected an error for @prefix without '.'")
	}
}

func TestNodeString(t *testing.T) {
	res := ParseTurtle(`@prefix ex: <http://example.org/> .`)
	mustClean(t, res)
	rendered := res.Root.String()
	if !strings.Contains(rendered, "PrefixDecl") || !strings.Contains(rendered, `"ex:"`) {
		t.Errorf("tree rendering missing expected content:\n%s", rendered)
	}
}
