package reader

import "strings"

// isAbsoluteIRI reports whether ref starts with a scheme. Only the scheme
// shape is checked; full IRI validity is out of scope here.
func isAbsoluteIRI(ref string) bool {
	for i := 0; i < len(ref); i++ {
		ch := ref[i]
		if ch == ':' {
			return i > 0
		}
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			continue
		}
		if i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.') {
			continue
		}
		return false
	}
	return false
}

// resolveIRI resolves a relative reference against a base IRI, following the
// RFC 3986 section 5 algorithm for the reference shapes that actually occur
// in RDF documents.
func resolveIRI(base, relative string) string {
	if relative == "" {
		return base
	}

	// Fragment only: base without its fragment, plus the new one.
	if strings.HasPrefix(relative, "#") {
		if idx := strings.Index(base, "#"); idx >= 0 {
			base = base[:idx]
		}
		return base + relative
	}

	// Query: base without query and fragment, plus the reference.
	if strings.HasPrefix(relative, "?") {
		if idx := strings.Index(base, "?"); idx >= 0 {
			base = base[:idx]
		} else if idx := strings.Index(base, "#"); idx >= 0 {
			base = base[:idx]
		}
		return base + relative
	}

	// Network-path reference: keep only the base scheme.
	if strings.HasPrefix(relative, "//") {
		schemeEnd := strings.Index(base, ":")
		if schemeEnd < 0 {
			return relative
		}
		return base[:schemeEnd+1] + relative
	}

	// Absolute path: scheme and authority from the base, path replaced.
	if strings.HasPrefix(relative, "/") {
		schemeEnd := strings.Index(base, ":")
		if schemeEnd < 0 {
			return relative
		}
		if schemeEnd+2 < len(base) && base[schemeEnd:schemeEnd+3] == "://" {
			authorityStart := schemeEnd + 3
			if pathStart := strings.Index(base[authorityStart:], "/"); pathStart >= 0 {
				return normalizePath(base[:authorityStart+pathStart] + relative)
			}
			return normalizePath(base + relative)
		}
		return normalizePath(base[:schemeEnd+1] + relative)
	}

	// Relative path: merge with the base directory.
	baseNoQF := base
	if idx := strings.Index(baseNoQF, "?"); idx >= 0 {
		baseNoQF = baseNoQF[:idx]
	} else if idx := strings.Index(baseNoQF, "#"); idx >= 0 {
		baseNoQF = baseNoQF[:idx]
	}
	var merged string
	if lastSlash := strings.LastIndex(baseNoQF, "/"); lastSlash >= 0 {
		merged = baseNoQF[:lastSlash+1] + relative
	} else {
		merged = baseNoQF + "/" + relative
	}
	return normalizePath(merged)
}

// normalizePath removes '.' and '..' segments from the path component of an
// IRI (RFC 3986 section 5.2.4). '..' never climbs above the root.
func normalizePath(iri string) string {
	schemeEnd := strings.Index(iri, ":")
	if schemeEnd < 0 {
		return iri
	}

	var pathStart int
	if schemeEnd+2 < len(iri) && iri[schemeEnd:schemeEnd+3] == "://" {
		authorityStart := schemeEnd + 3
		slashIdx := strings.Index(iri[authorityStart:], "/")
		if slashIdx < 0 {
			return iri
		}
		pathStart = authorityStart + slashIdx
	} else {
		pathStart = schemeEnd + 1
	}

	prefix := iri[:pathStart]
	pathAndRest := iri[pathStart:]

	var path, rest string
	if idx := strings.IndexAny(pathAndRest, "?#"); idx >= 0 {
		path, rest = pathAndRest[:idx], pathAndRest[idx:]
	} else {
		path = pathAndRest
	}

	trailingSlash := strings.HasSuffix(path, "/") ||
		strings.HasSuffix(path, "/.") ||
		strings.HasSuffix(path, "/..")

	var normalized []string
	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case ".":
		case "..":
			if len(normalized) > 1 && normalized[len(normalized)-1] != ".." {
				normalized = normalized[:len(normalized)-1]
			} else if len(normalized) == 1 && normalized[0] != "" {
				normalized = normalized[:len(normalized)-1]
			}
		default:
			normalized = append(normalized, segment)
		}
	}

	result := strings.Join(normalized, "/")
	if trailingSlash && !strings.HasSuffix(result, "/") {
		result += "/"
	}
	return prefix + result + rest
}
