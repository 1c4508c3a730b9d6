// Package quadstore persists materialized quads in BadgerDB.
//
// Quads are indexed under three term orders (SPOG, POSG, OSPG) with
// fixed-size hashed keys; the SPOG entry additionally carries the N-Quads
// text of the quad, which doubles as the dictionary for reconstructing terms
// on the way out.
package quadstore

import (
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/nquads"
)

// Table prefixes for the three quad indexes.
const (
	tableSPOG byte = 's'
	tablePOSG byte = 'p'
	tableOSPG byte = 'o'
)

// Store is a BadgerDB-backed quad store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives entirely in memory.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk.
func (s *Store) Sync() error {
	return s.db.Sync()
}

func prefixKey(table byte, key []byte) []byte {
	out := make([]byte, 0, 1+len(key))
	out = append(out, table)
	return append(out, key...)
}

// Insert stores a batch of quads. Inserting an already present quad is a
// no-op. Quads containing variables are rejected.
func (s *Store) Insert(quads []rdf.Quad) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range quads {
		q := &quads[i]
		es, ep, eo, eg, err := encodeQuad(q)
		if err != nil {
			return err
		}
		value := []byte(formatQuad(q))
		if err := wb.Set(prefixKey(tableSPOG, encodeQuadKey(es, ep, eo, eg)), value); err != nil {
			return err
		}
		if err := wb.Set(prefixKey(tablePOSG, encodeQuadKey(ep, eo, es, eg)), nil); err != nil {
			return err
		}
		if err := wb.Set(prefixKey(tableOSPG, encodeQuadKey(eo, es, ep, eg)), nil); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Contains reports whether the store holds the given quad.
func (s *Store) Contains(q *rdf.Quad) (bool, error) {
	es, ep, eo, eg, err := encodeQuad(q)
	if err != nil {
		return false, err
	}
	key := prefixKey(tableSPOG, encodeQuadKey(es, ep, eo, eg))

	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Count returns the number of stored quads.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{tableSPOG}
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Quads returns every stored quad, in SPOG key order.
func (s *Store) Quads() ([]rdf.Quad, error) {
	var out []rdf.Quad
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{tableSPOG}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				q, err := decodeQuad(string(val))
				if err != nil {
					return err
				}
				out = append(out, *q)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// decodeQuad parses one stored N-Quads line back into a quad.
func decodeQuad(line string) (*rdf.Quad, error) {
	res := nquads.ParseNQuads(line)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("corrupt stored quad %q: %w", line, err)
	}
	if len(res.Quads) != 1 {
		return nil, fmt.Errorf("corrupt stored quad %q: %d statements", line, len(res.Quads))
	}
	return &res.Quads[0], nil
}

// formatQuad serializes a quad as one N-Quads line. Unlike the display form
// on rdf.Quad, literal values are escaped so the line parses back exactly.
func formatQuad(q *rdf.Quad) string {
	var sb strings.Builder
	formatTerm(&sb, q.Subject)
	sb.WriteByte(' ')
	formatTerm(&sb, q.Predicate)
	sb.WriteByte(' ')
	formatTerm(&sb, q.Object)
	if _, ok := q.Graph.(*rdf.DefaultGraph); !ok {
		sb.WriteByte(' ')
		formatTerm(&sb, q.Graph)
	}
	sb.WriteString(" .")
	return sb.String()
}

func formatTerm(sb *strings.Builder, term rdf.Term) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		sb.WriteByte('<')
		sb.WriteString(t.IRI)
		sb.WriteByte('>')
	case *rdf.BlankNode:
		sb.WriteString("_:")
		sb.WriteString(t.ID)
	case *rdf.Literal:
		sb.WriteByte('"')
		sb.WriteString(escapeLiteral(t.Value))
		sb.WriteByte('"')
		if t.Language != "" {
			sb.WriteByte('@')
			sb.WriteString(t.Language)
		} else if t.Datatype != nil {
			sb.WriteString("^^<")
			sb.WriteString(t.Datatype.IRI)
			sb.WriteByte('>')
		}
	case *rdf.TripleTerm:
		sb.WriteString("<<( ")
		formatTerm(sb, t.Subject)
		sb.WriteByte(' ')
		formatTerm(sb, t.Predicate)
		sb.WriteByte(' ')
		formatTerm(sb, t.Object)
		sb.WriteString(" )>>")
	default:
		sb.WriteString(term.String())
	}
}

func escapeLiteral(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
