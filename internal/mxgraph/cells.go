// Package mxgraph implements the draw.io document dialect: the mxCell graph
// model, a tolerant cell scanner, HTML entity decoding, and structural
// validation with auto-wrapping of bare fragments.
package mxgraph

import "strings"

// Reserved root cell ids. Every complete document contains both; neither is
// ever addressable by generated content.
const (
	RootCellID    = "0"
	LayerCellID   = "1"
	DefaultPage   = "Page-1"
	DefaultPageID = "page-1"
)

// Cell is a single node or connector in the diagram graph.
type Cell struct {
	ID     string
	Value  string
	Style  string
	Parent string
	Source string
	Target string
	Vertex bool
	Edge   bool
}

// IsReservedRoot reports whether the cell is one of the two implicit
// structural roots.
func (c Cell) IsReservedRoot() bool {
	return c.ID == RootCellID || c.ID == LayerCellID
}

// ParseCells scans document text for mxCell elements (self-closing or with
// children) and extracts their attributes. The scan is tolerant: missing or
// malformed attributes default to zero values, and there is no failure mode.
// Structural rejection of invalid documents is the validator's job, not the
// parser's.
func ParseCells(xml string) []Cell {
	var cells []Cell

	pos := 0
	for {
		start := indexCellTag(xml, pos)
		if start < 0 {
			break
		}

		attrEnd, selfClosing := findTagEnd(xml, start)
		if attrEnd < 0 {
			break // unterminated tag, stop scanning
		}

		attrs := parseAttributes(xml[start+len("<mxCell") : attrEnd])
		cells = append(cells, Cell{
			ID:     attrs["id"],
			Value:  DecodeEntities(attrs["value"]),
			Style:  attrs["style"],
			Parent: attrs["parent"],
			Source: attrs["source"],
			Target: attrs["target"],
			Vertex: attrs["vertex"] == "1",
			Edge:   attrs["edge"] == "1",
		})

		pos = attrEnd + 1
		if !selfClosing {
			// Skip the element body up to its closing tag so nested
			// mxGeometry children are not rescanned as cells.
			if end := strings.Index(xml[pos:], "</mxCell>"); end >= 0 {
				pos += end + len("</mxCell>")
			}
		}
	}

	return cells
}

// indexCellTag finds the next "<mxCell" occurrence that is a real element
// start (followed by whitespace, '/', or '>').
func indexCellTag(xml string, from int) int {
	for {
		i := strings.Index(xml[from:], "<mxCell")
		if i < 0 {
			return -1
		}
		i += from
		next := i + len("<mxCell")
		if next >= len(xml) {
			return -1
		}
		switch xml[next] {
		case ' ', '\t', '\n', '\r', '/', '>':
			return i
		}
		from = next
	}
}

// findTagEnd returns the index of the '>' closing the tag that starts at
// start, honoring quoted attribute values. The second result reports whether
// the tag is self-closing.
func findTagEnd(xml string, start int) (int, bool) {
	inQuote := false
	for i := start; i < len(xml); i++ {
		switch xml[i] {
		case '"':
			inQuote = !inQuote
		case '>':
			if !inQuote {
				return i, i > start && xml[i-1] == '/'
			}
		}
	}
	return -1, false
}

// parseAttributes extracts key="value" pairs from a tag's attribute region.
// Anything that does not look like a quoted attribute is skipped.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)

	i := 0
	for i < len(s) {
		// Skip whitespace and stray slashes.
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '/') {
			i++
		}
		if i >= len(s) {
			break
		}

		nameStart := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' {
			i++
		}
		name := s[nameStart:i]

		if i >= len(s) || s[i] != '=' {
			continue // bare token, ignore
		}
		i++ // consume '='
		if i >= len(s) || s[i] != '"' {
			// Unquoted value: read to next whitespace and ignore it.
			for i < len(s) && s[i] != ' ' {
				i++
			}
			continue
		}
		i++ // consume opening quote
		valStart := i
		for i < len(s) && s[i] != '"' {
			i++
		}
		if i >= len(s) {
			break // unterminated value
		}
		if name != "" {
			attrs[name] = s[valStart:i]
		}
		i++ // consume closing quote
	}

	return attrs
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#xa;", "\n",
	"&#10;", "\n",
)

// DecodeEntities decodes the HTML entities draw.io uses in value attributes,
// converts <br> elements to newlines, and strips any remaining inline markup.
func DecodeEntities(s string) string {
	if s == "" {
		return ""
	}
	s = entityReplacer.Replace(s)
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		tag := s[i+1 : i+end]
		if name := strings.TrimSuffix(strings.TrimSpace(tag), "/"); strings.EqualFold(strings.TrimSpace(name), "br") {
			b.WriteByte('\n')
		}
		i += end + 1
	}
	return b.String()
}
