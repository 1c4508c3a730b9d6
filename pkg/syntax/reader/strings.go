package reader

import (
	"strings"

	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/lexer"
)

func unquoteString(image string) (string, error) {
	return lexer.Unquote(image)
}

func unescapeNumeric(s string) (string, error) {
	return lexer.UnescapeIRIRef(s)
}

// unescapeLocal removes the backslashes of reserved-character escapes in the
// local part of a prefixed name. Percent escapes stay as written; they are
// part of the IRI, not an encoding of it.
func unescapeLocal(local string) string {
	if !strings.ContainsRune(local, '\\') {
		return local
	}
	var out strings.Builder
	out.Grow(len(local))
	for i := 0; i < len(local); i++ {
		if local[i] == '\\' && i+1 < len(local) {
			i++
		}
		out.WriteByte(local[i])
	}
	return out.String()
}
