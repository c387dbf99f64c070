package cache

import "strings"

// KeyFor derives the cache key of a request. requestURI is the raw path
// plus query exactly as the client sent it; the query is not reordered.
func KeyFor(method string, requestURI string) string {
	return strings.ToUpper(method) + ":" + requestURI
}

// FamilyPattern returns the glob that matches every key of method whose
// request URI starts with prefix, e.g. "GET:/products*".
func FamilyPattern(method string, prefix string) string {
	return escapeGlob(KeyFor(method, prefix)) + "*"
}

// ExactPattern returns a glob that matches key and nothing else.
func ExactPattern(key string) string {
	return escapeGlob(key)
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchPattern reports whether key matches a Redis-style glob supporting
// '*', '?' and backslash escapes.
func MatchPattern(pattern string, key string) bool {
	p, k := 0, 0
	starP, starK := -1, -1

	for k < len(key) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starK = p, k
				p++
				continue
			case '?':
				p++
				k++
				continue
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == key[k] {
					p += 2
					k++
					continue
				}
			default:
				if pattern[p] == key[k] {
					p++
					k++
					continue
				}
			}
		}

		if starP < 0 {
			return false
		}
		// backtrack: let the last '*' absorb one more byte
		starK++
		p, k = starP+1, starK
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
