package mxgraph

import "strings"

// StyleMap is a parsed style attribute: semicolon-delimited key=value
// declarations, with bare tokens (like "ellipse" or "rhombus") stored with an
// empty value.
type StyleMap map[string]string

// ParseStyle parses a draw.io style string into a StyleMap. Parsing by key
// avoids substring collisions where one declaration's value happens to
// contain the text of another key.
func ParseStyle(style string) StyleMap {
	m := make(StyleMap)
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		if eq := strings.IndexByte(decl, '='); eq >= 0 {
			m[decl[:eq]] = decl[eq+1:]
		} else {
			m[decl] = ""
		}
	}
	return m
}

// Has reports whether the style declares key at all, as a flag or with any
// value.
func (m StyleMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Is reports whether the style declares key with exactly the given value.
func (m StyleMap) Is(key, value string) bool {
	v, ok := m[key]
	return ok && v == value
}
