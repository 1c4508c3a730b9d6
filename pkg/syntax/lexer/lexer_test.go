package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/token"
)

// kinds tokenizes src and returns the kind sequence without the final EOF.
func kinds(t *testing.T, src string, dialect Dialect) []token.Kind {
	t.Helper()
	tokens, errs := New(src, dialect).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected lexical errors: %v", errs)
	}
	out := make([]token.Kind, 0, len(tokens)-1)
	for _, tok := range tokens[:len(tokens)-1] {
		out = append(out, tok.Kind)
	}
	return out
}

func images(tokens []token.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Image)
	}
	return out
}

func TestLexer_SimpleTriple(t *testing.T) {
	got := kinds(t, `<http://example.org/s> <http://example.org/p> "o" .`, Turtle)
	want := []token.Kind{token.IRIRef, token.IRIRef, token.String, token.Dot}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_Idempotent(t *testing.T) {
	src := `@prefix ex: <http://example.org/> .
ex:s ex:p "hello"@en, 42, 3.14, 1e0 ; a ex:Thing .`

	first, errs1 := New(src, Turtle).Tokens()
	second, errs2 := New(src, Turtle).Tokens()
	if len(errs1) != 0 || len(errs2) != 0 {
		t.Fatalf("unexpected errors: %v / %v", errs1, errs2)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("tokenizing twice differed (-first +second):\n%s", diff)
	}
}

func TestLexer_DirectiveBeforeLangTag(t *testing.T) {
	got := kinds(t, `@prefix @base @version @en @en-GB`, Turtle)
	want := []token.Kind{token.AtPrefix, token.AtBase, token.AtVersion, token.LangTag, token.LangTag}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_TripleTermBeforeReified(t *testing.T) {
	got := kinds(t, `<<( )>> << >> {| |} ~`, Turtle)
	want := []token.Kind{
		token.LTripleTerm, token.RTripleTerm,
		token.LReified, token.RReified,
		token.LAnnotation, token.RAnnotation,
		token.Tilde,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_N3Operators(t *testing.T) {
	got := kinds(t, `= => <= ! ^ ^^ ?x`, N3)
	want := []token.Kind{
		token.Equals, token.Implies, token.ImpliedBy,
		token.Bang, token.Caret, token.DoubleCaret, token.Variable,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_ImpliedByOnlyInN3(t *testing.T) {
	// In Turtle "<=" starts an IRI reference; only N3 has the operator.
	tokens, errs := New(`<= .`, Turtle).Tokens()
	if len(errs) == 0 {
		t.Fatal("expected a lexical error for the unterminated IRI")
	}
	if tokens[0].Kind != token.IRIRef {
		t.Errorf("expected IRI reference, got %s", tokens[0].Kind)
	}
}

func TestLexer_NumberTrailingDot(t *testing.T) {
	// "1." is an integer followed by the statement terminator.
	got := kinds(t, `1. 3.14. 1e3.`, Turtle)
	want := []token.Kind{
		token.Integer, token.Dot,
		token.Decimal, token.Dot,
		token.Double, token.Dot,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_SignedNumbers(t *testing.T) {
	got := kinds(t, `-5 +3.0 -2.5e-10`, Turtle)
	want := []token.Kind{token.Integer, token.Decimal, token.Double}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_PNameTrailingDot(t *testing.T) {
	tokens, errs := New(`ex:s.`, Turtle).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Kind != token.PNameLN || tokens[0].Image != "ex:s" {
		t.Errorf("expected PNameLN %q, got %s %q", "ex:s", tokens[0].Kind, tokens[0].Image)
	}
	if tokens[1].Kind != token.Dot {
		t.Errorf("expected Dot after prefixed name, got %s", tokens[1].Kind)
	}
}

func TestLexer_BlankNodeTrailingDot(t *testing.T) {
	tokens, errs := New(`_:b1.`, Turtle).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Kind != token.BlankNodeLabel || tokens[0].Image != "_:b1" {
		t.Errorf("expected blank node label %q, got %q", "_:b1", tokens[0].Image)
	}
	if tokens[1].Kind != token.Dot {
		t.Errorf("expected Dot after label, got %s", tokens[1].Kind)
	}
}

func TestLexer_LongStringQuoteRun(t *testing.T) {
	// The literal ends at the last three quotes of the run, keeping the
	// embedded quote as content.
	tokens, errs := New(`"""a""""`, Turtle).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Kind != token.String {
		t.Fatalf("expected string, got %s", tokens[0].Kind)
	}
	if tokens[0].Image != `"""a""""` {
		t.Errorf("wrong image: %q", tokens[0].Image)
	}
	value, err := Unquote(tokens[0].Image)
	if err != nil {
		t.Fatalf("Unquote failed: %v", err)
	}
	if value != `a"` {
		t.Errorf("expected value %q, got %q", `a"`, value)
	}
}

func TestLexer_StringForms(t *testing.T) {
	got := kinds(t, `"a" 'b' """multi
line""" '''other'''`, Turtle)
	want := []token.Kind{token.String, token.String, token.String, token.String}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	tokens, errs := New(`"abc`, Turtle).Tokens()
	if len(errs) != 1 {
		t.Fatalf("expected 1 lexical error, got %d: %v", len(errs), errs)
	}
	// A best-effort token is still emitted so parsing can continue.
	if tokens[0].Kind != token.String || tokens[0].Image != `"abc` {
		t.Errorf("expected best-effort string token, got %s %q", tokens[0].Kind, tokens[0].Image)
	}
}

func TestLexer_UnterminatedIRI(t *testing.T) {
	_, errs := New("<http://example.org/x\n", Turtle).Tokens()
	if len(errs) == 0 {
		t.Fatal("expected a lexical error for the unterminated IRI")
	}
}

func TestLexer_CaseInsensitiveKeywords(t *testing.T) {
	got := kinds(t, `PREFIX Prefix base GRAPH graph VERSION`, TriG)
	want := []token.Kind{
		token.PrefixKw, token.PrefixKw, token.BaseKw,
		token.GraphKw, token.GraphKw, token.VersionKw,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_N3BareKeywords(t *testing.T) {
	got := kinds(t, `has is of a true false`, N3)
	want := []token.Kind{
		token.HasKw, token.IsKw, token.OfKw,
		token.A, token.Boolean, token.Boolean,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}

	// Outside N3 the same words are not keywords.
	tokens, _ := New(`has`, Turtle).Tokens()
	if tokens[0].Kind != token.Illegal {
		t.Errorf("expected 'has' to be illegal in Turtle, got %s", tokens[0].Kind)
	}
}

func TestLexer_NQuadsRelativeIRI(t *testing.T) {
	_, errs := New(`<s> <http://example.org/p> <http://example.org/o> .`, NQuads).Tokens()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for the relative IRI, got %d: %v", len(errs), errs)
	}
}

func TestLexer_Comments(t *testing.T) {
	tokens, errs := New("# leading\nex:s ex:p ex:o . # trailing", Turtle).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var comments int
	for _, tok := range tokens {
		if tok.Kind == token.Comment {
			comments++
		}
	}
	if comments != 2 {
		t.Errorf("expected 2 comment tokens, got %d in %v", comments, images(tokens))
	}
}

func TestLexer_PNameLocalEscapes(t *testing.T) {
	tokens, errs := New(`ex:with\,comma ex:with%2Fslash`, Turtle).Tokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Kind != token.PNameLN || tokens[0].Image != `ex:with\,comma` {
		t.Errorf("escape in local name: got %s %q", tokens[0].Kind, tokens[0].Image)
	}
	if tokens[1].Kind != token.PNameLN || tokens[1].Image != `ex:with%2Fslash` {
		t.Errorf("percent in local name: got %s %q", tokens[1].Kind, tokens[1].Image)
	}
}

func TestLexer_EmptyPrefix(t *testing.T) {
	got := kinds(t, `: :local`, Turtle)
	want := []token.Kind{token.PNameNS, token.PNameLN}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens, _ := New("ex:s\n  ex:p", Turtle).Tokens()
	if tokens[0].Start.Line != 1 || tokens[0].Start.Column != 1 {
		t.Errorf("first token at %s, want 1:1", tokens[0].Start)
	}
	if tokens[1].Start.Line != 2 || tokens[1].Start.Column != 3 {
		t.Errorf("second token at %s, want 2:3", tokens[1].Start)
	}
}
