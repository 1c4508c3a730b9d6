package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveEscapes resolves \uXXXX and \UXXXXXXXX numeric character escapes in
// raw source text. The query-language grammar requires this as a pre-pass
// before tokenization because escapes may appear inside token kinds that
// allow no escaping of their own, keywords included. Surrogate code points
// and values beyond U+10FFFF are rejected.
//
// A backslash that does not introduce a numeric escape is copied through
// untouched together with the character after it, so that string-literal
// escapes like \n or \" survive for the later stages to interpret.
func ResolveEscapes(src string) (string, error) {
	if !strings.ContainsRune(src, '\\') {
		return src, nil
	}

	var out strings.Builder
	out.Grow(len(src))

	for i := 0; i < len(src); {
		ch := src[i]
		if ch != '\\' || i+1 >= len(src) {
			out.WriteByte(ch)
			i++
			continue
		}

		var digits int
		switch src[i+1] {
		case 'u':
			digits = 4
		case 'U':
			digits = 8
		default:
			// Not a numeric escape; keep the pair so \\uXXXX stays escaped.
			out.WriteByte(src[i])
			out.WriteByte(src[i+1])
			i += 2
			continue
		}

		hexStart := i + 2
		if hexStart+digits > len(src) {
			return "", fmt.Errorf("incomplete numeric escape at offset %d", i)
		}
		hex := src[hexStart : hexStart+digits]
		codePoint, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return "", fmt.Errorf("invalid hex digits %q in numeric escape at offset %d", hex, i)
		}
		if codePoint >= 0xD800 && codePoint <= 0xDFFF {
			return "", fmt.Errorf("surrogate code point U+%04X not allowed at offset %d", codePoint, i)
		}
		if codePoint > 0x10FFFF {
			return "", fmt.Errorf("code point U+%X exceeds maximum U+10FFFF at offset %d", codePoint, i)
		}
		out.WriteRune(rune(codePoint))
		i = hexStart + digits
	}

	return out.String(), nil
}

// Unquote strips the quoting delimiters from a string token image and
// resolves the escape sequences of its body.
func Unquote(image string) (string, error) {
	var delim string
	switch {
	case strings.HasPrefix(image, `"""`):
		delim = `"""`
	case strings.HasPrefix(image, "'''"):
		delim = "'''"
	case strings.HasPrefix(image, `"`):
		delim = `"`
	case strings.HasPrefix(image, "'"):
		delim = "'"
	default:
		return "", fmt.Errorf("malformed string literal %q", image)
	}
	body := image[len(delim):]
	// Unterminated strings survive lexing as best-effort tokens; a missing
	// closing delimiter is tolerated here the same way.
	if strings.HasSuffix(body, delim) {
		body = body[:len(body)-len(delim)]
	}
	return unescapeStringBody(body)
}

func unescapeStringBody(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		ch := s[i]
		if ch != '\\' {
			out.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("incomplete escape sequence")
		}
		switch s[i+1] {
		case 't':
			out.WriteByte('\t')
		case 'b':
			out.WriteByte('\b')
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 'f':
			out.WriteByte('\f')
		case '"':
			out.WriteByte('"')
		case '\'':
			out.WriteByte('\'')
		case '\\':
			out.WriteByte('\\')
		case 'u', 'U':
			r, size, err := decodeNumericEscape(s[i:])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += size
			continue
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", s[i+1])
		}
		i += 2
	}
	return out.String(), nil
}

// UnescapeIRIRef resolves \uXXXX and \UXXXXXXXX escapes in the body of an
// IRI reference; numeric escapes are the only kind IRIs allow.
func UnescapeIRIRef(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			out.WriteByte(s[i])
			i++
			continue
		}
		r, size, err := decodeNumericEscape(s[i:])
		if err != nil {
			return "", err
		}
		out.WriteRune(r)
		i += size
	}
	return out.String(), nil
}

// decodeNumericEscape decodes one \uXXXX or \UXXXXXXXX sequence at the start
// of s, returning the code point and the byte length consumed.
func decodeNumericEscape(s string) (rune, int, error) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, 0, fmt.Errorf("invalid escape sequence")
	}
	var digits int
	switch s[1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, 0, fmt.Errorf("invalid escape sequence \\%c", s[1])
	}
	if len(s) < 2+digits {
		return 0, 0, fmt.Errorf("incomplete numeric escape")
	}
	hex := s[2 : 2+digits]
	codePoint, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hex digits %q in numeric escape", hex)
	}
	if codePoint >= 0xD800 && codePoint <= 0xDFFF {
		return 0, 0, fmt.Errorf("surrogate code point U+%04X not allowed", codePoint)
	}
	if codePoint > 0x10FFFF {
		return 0, 0, fmt.Errorf("code point U+%X exceeds maximum U+10FFFF", codePoint)
	}
	return rune(codePoint), 2 + digits, nil
}
