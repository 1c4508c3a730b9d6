package quadstore

import (
	"testing"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testQuad(s, p, o string) rdf.Quad {
	return *rdf.NewQuad(
		rdf.NewNamedNode(s),
		rdf.NewNamedNode(p),
		rdf.NewNamedNode(o),
		rdf.NewDefaultGraph(),
	)
}

func TestStore_InsertAndCount(t *testing.T) {
	store := openTestStore(t)

	quads := []rdf.Quad{
		testQuad("http://ex.org/s1", "http://ex.org/p", "http://ex.org/o"),
		testQuad("http://ex.org/s2", "http://ex.org/p", "http://ex.org/o"),
		testQuad("http://ex.org/s3", "http://ex.org/p", "http://ex.org/o"),
	}
	if err := store.Insert(quads); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 quads, got %d", count)
	}
}

func TestStore_InsertIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	q := testQuad("http://ex.org/s", "http://ex.org/p", "http://ex.org/o")
	if err := store.Insert([]rdf.Quad{q, q}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert([]rdf.Quad{q}); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 quad after duplicate inserts, got %d", count)
	}
}

func TestStore_Contains(t *testing.T) {
	store := openTestStore(t)

	present := testQuad("http://ex.org/s", "http://ex.org/p", "http://ex.org/o")
	absent := testQuad("http://ex.org/s", "http://ex.org/p", "http://ex.org/other")
	if err := store.Insert([]rdf.Quad{present}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	found, err := store.Contains(&present)
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if !found {
		t.Error("inserted quad not found")
	}

	found, err = store.Contains(&absent)
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if found {
		t.Error("absent quad reported present")
	}
}

func TestStore_QuadsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	inserted := []rdf.Quad{
		testQuad("http://ex.org/s", "http://ex.org/p", "http://ex.org/o"),
		*rdf.NewQuad(
			rdf.NewBlankNode("b1"),
			rdf.NewNamedNode("http://ex.org/p"),
			rdf.NewLiteralWithLanguage("hello", "en"),
			rdf.NewNamedNode("http://ex.org/g"),
		),
		*rdf.NewQuad(
			rdf.NewNamedNode("http://ex.org/s"),
			rdf.NewNamedNode("http://ex.org/p"),
			rdf.NewLiteralWithDatatype("42", rdf.XSDInteger),
			rdf.NewDefaultGraph(),
		),
	}
	if err := store.Insert(inserted); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := store.Quads()
	if err != nil {
		t.Fatalf("quads failed: %v", err)
	}
	if len(got) != len(inserted) {
		t.Fatalf("expected %d quads back, got %d", len(inserted), len(got))
	}

	for i := range inserted {
		found := false
		for j := range got {
			if got[j].Subject.Equals(inserted[i].Subject) &&
				got[j].Predicate.Equals(inserted[i].Predicate) &&
				got[j].Object.Equals(inserted[i].Object) &&
				got[j].Graph.Equals(inserted[i].Graph) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("quad %s did not round trip", inserted[i].String())
		}
	}
}

func TestStore_QuadsRoundTripEscapes(t *testing.T) {
	store := openTestStore(t)

	q := *rdf.NewQuad(
		rdf.NewNamedNode("http://ex.org/s"),
		rdf.NewNamedNode("http://ex.org/p"),
		rdf.NewLiteral("line\nbreak \"quoted\" back\\slash\ttab"),
		rdf.NewDefaultGraph(),
	)
	if err := store.Insert([]rdf.Quad{q}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := store.Quads()
	if err != nil {
		t.Fatalf("quads failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(got))
	}
	lit, ok := got[0].Object.(*rdf.Literal)
	if !ok {
		t.Fatalf("expected literal, got %T", got[0].Object)
	}
	if lit.Value != "line\nbreak \"quoted\" back\\slash\ttab" {
		t.Errorf("literal did not round trip: %q", lit.Value)
	}
}

func TestStore_QuadsRoundTripTripleTerm(t *testing.T) {
	store := openTestStore(t)

	q := *rdf.NewQuad(
		rdf.NewNamedNode("http://ex.org/r"),
		rdf.RDFReifies,
		rdf.NewTripleTerm(
			rdf.NewNamedNode("http://ex.org/a"),
			rdf.NewNamedNode("http://ex.org/b"),
			rdf.NewNamedNode("http://ex.org/c"),
		),
		rdf.NewDefaultGraph(),
	)
	if err := store.Insert([]rdf.Quad{q}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := store.Quads()
	if err != nil {
		t.Fatalf("quads failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(got))
	}
	tt, ok := got[0].Object.(*rdf.TripleTerm)
	if !ok {
		t.Fatalf("expected triple term, got %T", got[0].Object)
	}
	if !tt.Equals(q.Object) {
		t.Errorf("triple term did not round trip: %s", tt)
	}
}

func TestStore_RejectsVariables(t *testing.T) {
	store := openTestStore(t)

	q := *rdf.NewQuad(
		rdf.NewVariable("x"),
		rdf.NewNamedNode("http://ex.org/p"),
		rdf.NewNamedNode("http://ex.org/o"),
		rdf.NewDefaultGraph(),
	)
	if err := store.Insert([]rdf.Quad{q}); err == nil {
		t.Error("expected an error inserting a quad with a variable")
	}
}

func TestEncodeTerm_Distinguishes(t *testing.T) {
	// Same text, different term type: the type byte keeps them apart.
	iri, err := encodeTerm(rdf.NewNamedNode("x"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	lit, err := encodeTerm(rdf.NewLiteral("x"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if iri == lit {
		t.Error("IRI and literal with the same text encoded identically")
	}

	a, _ := encodeTerm(rdf.NewNamedNode("http://ex.org/a"))
	b, _ := encodeTerm(rdf.NewNamedNode("http://ex.org/b"))
	if a == b {
		t.Error("distinct IRIs encoded identically")
	}

	again, _ := encodeTerm(rdf.NewNamedNode("http://ex.org/a"))
	if a != again {
		t.Error("encoding is not deterministic")
	}
}
