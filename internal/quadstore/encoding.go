package quadstore

import (
	"encoding/binary"
	"fmt"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/zeebo/xxh3"
)

// EncodedTermSize is one type byte plus a 128-bit term fingerprint.
const EncodedTermSize = 17

// EncodedTerm is the fixed-size key form of an RDF term: the term type
// followed by the 128-bit xxh3 hash of its canonical string. Fixed-size
// encoding keeps index keys lexicographically ordered and cheap to compare;
// the full term text lives in the dictionary table.
type EncodedTerm [EncodedTermSize]byte

// hash128 computes the 128-bit xxh3 fingerprint of a string.
func hash128(s string) [16]byte {
	h := xxh3.Hash128([]byte(s))
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], h.Hi)
	binary.BigEndian.PutUint64(out[8:16], h.Lo)
	return out
}

// encodeTerm encodes a term for use in index keys. Variables are rejected:
// the store holds ground quads only.
func encodeTerm(term rdf.Term) (EncodedTerm, error) {
	var encoded EncodedTerm
	switch term.(type) {
	case *rdf.DefaultGraph:
		encoded[0] = byte(rdf.TermTypeDefaultGraph)
		return encoded, nil
	case *rdf.Variable:
		return encoded, fmt.Errorf("cannot store variable %s: store holds ground quads only", term)
	case *rdf.NamedNode, *rdf.BlankNode, *rdf.Literal, *rdf.TripleTerm:
		encoded[0] = byte(term.Type())
		h := hash128(term.String())
		copy(encoded[1:], h[:])
		return encoded, nil
	default:
		return encoded, fmt.Errorf("unknown term type: %T", term)
	}
}

// encodeQuadKey concatenates encoded terms into one index key. Keys sort
// lexicographically by the given term order.
func encodeQuadKey(terms ...EncodedTerm) []byte {
	key := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, t := range terms {
		key = append(key, t[:]...)
	}
	return key
}

// encodeQuad encodes all four positions of a quad.
func encodeQuad(q *rdf.Quad) (s, p, o, g EncodedTerm, err error) {
	if s, err = encodeTerm(q.Subject); err != nil {
		return
	}
	if p, err = encodeTerm(q.Predicate); err != nil {
		return
	}
	if o, err = encodeTerm(q.Object); err != nil {
		return
	}
	g, err = encodeTerm(q.Graph)
	return
}
