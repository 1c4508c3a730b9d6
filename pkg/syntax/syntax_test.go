package syntax

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
)

func TestLanguageForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        Language
	}{
		{"text/turtle", Turtle},
		{"text/turtle; charset=utf-8", Turtle},
		{"application/x-turtle", Turtle},
		{"APPLICATION/TRIG", TriG},
		{"application/x-trig", TriG},
		{"text/n3", N3},
		{"text/rdf+n3", N3},
		{"application/n-triples", NTriples},
		{"text/plain", NTriples},
		{"application/n-quads", NQuads},
	}
	for _, tt := range tests {
		got, err := LanguageForContentType(tt.contentType)
		if err != nil {
			t.Errorf("LanguageForContentType(%q) failed: %v", tt.contentType, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LanguageForContentType(%q) = %s, want %s", tt.contentType, got, tt.want)
		}
	}

	if _, err := LanguageForContentType("application/json"); err == nil {
		t.Error("expected an error for an unsupported content type")
	}
}

func TestLanguageForFilename(t *testing.T) {
	tests := []struct {
		name string
		want Language
	}{
		{"data.ttl", Turtle},
		{"data.TURTLE", Turtle},
		{"data.trig", TriG},
		{"rules.n3", N3},
		{"data.nt", NTriples},
		{"data.ntriples", NTriples},
		{"data.nq", NQuads},
		{"dir/sub/data.nquads", NQuads},
	}
	for _, tt := range tests {
		got, err := LanguageForFilename(tt.name)
		if err != nil {
			t.Errorf("LanguageForFilename(%q) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LanguageForFilename(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := LanguageForFilename("data.json"); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, lang := range []Language{Turtle, TriG, N3, NTriples, NQuads} {
		got, err := LanguageForContentType(lang.ContentType())
		if err != nil {
			t.Errorf("%s: %v", lang, err)
			continue
		}
		if got != lang {
			t.Errorf("%s: round-tripped to %s", lang, got)
		}
	}
}

func TestDecode_Turtle(t *testing.T) {
	src := `@prefix ex: <http://example.org/> .
ex:s ex:p ex:o .`
	quads, err := Decode(Turtle, strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	if nn, ok := quads[0].Subject.(*rdf.NamedNode); !ok || nn.IRI != "http://example.org/s" {
		t.Errorf("wrong subject: %s", quads[0].Subject)
	}
}

func TestDecodeString_TriG(t *testing.T) {
	src := `@prefix ex: <http://example.org/> .
ex:g { ex:s ex:p ex:o . }`
	quads, err := DecodeString(TriG, src, "")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	if nn, ok := quads[0].Graph.(*rdf.NamedNode); !ok || nn.IRI != "http://example.org/g" {
		t.Errorf("wrong graph: %s", quads[0].Graph)
	}
}

func TestDecodeString_NQuads(t *testing.T) {
	src := `<http://ex.org/s> <http://ex.org/p> <http://ex.org/o> <http://ex.org/g> .`
	quads, err := DecodeString(NQuads, src, "")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
}

func TestDecodeString_SyntaxErrorFails(t *testing.T) {
	if _, err := DecodeString(Turtle, `ex:s ex:p .`, ""); err == nil {
		t.Error("expected an error for the broken document")
	}
}

func TestDecodeString_SemanticErrorFails(t *testing.T) {
	// Syntactically fine, but the prefix was never declared.
	if _, err := DecodeString(N3, `undeclared:s undeclared:p undeclared:o .`, ""); err == nil {
		t.Error("expected an undefined prefix error")
	}
}

func TestParse_LineLanguagesHaveNoTree(t *testing.T) {
	if _, err := Parse(NTriples, ``); err == nil {
		t.Error("expected an error: N-Triples has no tree form")
	}
	if _, err := Parse(NQuads, ``); err == nil {
		t.Error("expected an error: N-Quads has no tree form")
	}
}

func TestParse_FaultTolerant(t *testing.T) {
	// Parse keeps going where Decode fails.
	res, err := Parse(Turtle, `@prefix ex: <http://example.org/> .
ex:broken ex:p .
ex:s ex:p ex:o .`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Error("expected recorded syntax errors")
	}
	if res.Root == nil || len(res.Root.Nodes("statement")) < 3 {
		t.Error("expected the tree to cover the whole document")
	}
}
