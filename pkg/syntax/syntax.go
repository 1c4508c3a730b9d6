// Package syntax is the front door to the parser pipeline: it dispatches a
// document to the right language by content type or file extension and runs
// lexing, parsing, and quad materialization end to end.
//
// The underlying stages stay available for callers that need them: the
// parser package exposes the fault-tolerant concrete syntax trees, and the
// reader package materializes quads from a tree the caller already has.
package syntax

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aleksaelezovic/rdfsyntax/pkg/rdf"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/nquads"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/parser"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/reader"
)

// Language identifies one of the supported RDF serialization languages.
type Language int

const (
	Turtle Language = iota
	TriG
	N3
	NTriples
	NQuads
)

func (l Language) String() string {
	switch l {
	case Turtle:
		return "Turtle"
	case TriG:
		return "TriG"
	case N3:
		return "N3"
	case NTriples:
		return "N-Triples"
	case NQuads:
		return "N-Quads"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// ContentType returns the canonical MIME type of the language.
func (l Language) ContentType() string {
	switch l {
	case Turtle:
		return "text/turtle"
	case TriG:
		return "application/trig"
	case N3:
		return "text/n3"
	case NTriples:
		return "application/n-triples"
	case NQuads:
		return "application/n-quads"
	default:
		return ""
	}
}

// LanguageForContentType maps a MIME type (parameters like charset are
// ignored) to a language.
func LanguageForContentType(contentType string) (Language, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	switch ct {
	case "text/turtle", "application/x-turtle":
		return Turtle, nil
	case "application/trig", "application/x-trig":
		return TriG, nil
	case "text/n3", "text/rdf+n3":
		return N3, nil
	case "application/n-triples", "text/plain":
		return NTriples, nil
	case "application/n-quads":
		return NQuads, nil
	default:
		return 0, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// LanguageForFilename maps a file extension to a language.
func LanguageForFilename(name string) (Language, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttl", ".turtle":
		return Turtle, nil
	case ".trig":
		return TriG, nil
	case ".n3":
		return N3, nil
	case ".nt", ".ntriples":
		return NTriples, nil
	case ".nq", ".nquads":
		return NQuads, nil
	default:
		return 0, fmt.Errorf("cannot determine RDF language from filename: %s", name)
	}
}

// SupportedContentTypes lists the MIME types Decode accepts.
func SupportedContentTypes() []string {
	return []string{
		"text/turtle",
		"application/x-turtle",
		"application/trig",
		"text/n3",
		"application/n-triples",
		"application/n-quads",
		"text/plain",
	}
}

// Decode reads a whole document from r and materializes its quads. base is
// the document IRI used for resolving relative references; it may be empty.
// Any lexical, syntactic, or semantic defect makes Decode fail with an error
// naming every diagnostic; use Parse and the reader package directly for
// fault-tolerant access to partially broken documents.
func Decode(lang Language, r io.Reader, base string) ([]rdf.Quad, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return DecodeString(lang, string(data), base)
}

// DecodeString is Decode over an in-memory document.
func DecodeString(lang Language, src, base string) ([]rdf.Quad, error) {
	switch lang {
	case NTriples:
		res := nquads.ParseNTriples(src)
		if err := res.Err(); err != nil {
			return nil, fmt.Errorf("error parsing N-Triples: %w", err)
		}
		return res.Quads, nil
	case NQuads:
		res := nquads.ParseNQuads(src)
		if err := res.Err(); err != nil {
			return nil, fmt.Errorf("error parsing N-Quads: %w", err)
		}
		return res.Quads, nil
	}

	parsed, err := Parse(lang, src)
	if err != nil {
		return nil, err
	}
	if err := parsed.Err(); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", lang, err)
	}

	var result *reader.Result
	switch lang {
	case Turtle:
		result, err = reader.ReadTurtle(parsed.Root, base)
	case TriG:
		result, err = reader.ReadTriG(parsed.Root, base)
	case N3:
		result, err = reader.ReadN3(parsed.Root, base)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", lang, err)
	}
	return result.Quads, nil
}

// Parse runs the fault-tolerant front end for one of the block languages and
// returns the concrete syntax tree with accumulated diagnostics. The
// line-oriented languages have no tree form; use the nquads package for
// those.
func Parse(lang Language, src string) (*parser.Result, error) {
	switch lang {
	case Turtle:
		return parser.ParseTurtle(src), nil
	case TriG:
		return parser.ParseTriG(src), nil
	case N3:
		return parser.ParseN3(src), nil
	default:
		return nil, fmt.Errorf("%s has no concrete syntax tree form", lang)
	}
}
