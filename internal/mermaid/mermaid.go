// Package mermaid derives a Mermaid flowchart from diagram XML. The
// conversion is one-way and lossy: geometry is discarded, only shapes,
// connectors and labels survive. It backs the text preview in the terminal
// client and the read-back tool on the MCP surface.
package mermaid

import (
	"strings"

	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
)

// Placeholder is emitted when the document has no qualifying shapes or
// connectors. Mermaid's grammar has no representation for an empty
// flowchart, and an empty document is a normal transient state mid-turn.
const Placeholder = "%%{init: {\"theme\": \"default\"}}%%\nflowchart TD\n    A[\"Empty diagram\"]"

const header = "%%{init: {\"theme\": \"default\"}}%%\nflowchart TD"

// Convert renders document XML as a Mermaid flowchart.
//
// Shape cells parented directly to the canvas root are treated as structural
// and skipped, as are the reserved roots themselves. Connectors qualify only
// when both endpoints are set.
func Convert(xml string) string {
	cells := mxgraph.ParseCells(xml)

	var vertices, edges []mxgraph.Cell
	for _, c := range cells {
		switch {
		case c.Vertex && !c.IsReservedRoot() && c.Parent != mxgraph.RootCellID:
			vertices = append(vertices, c)
		case c.Edge && c.Source != "" && c.Target != "":
			edges = append(edges, c)
		}
	}

	if len(vertices) == 0 && len(edges) == 0 {
		return Placeholder
	}

	var b strings.Builder
	b.WriteString(header)

	for _, v := range vertices {
		b.WriteString("\n    ")
		b.WriteString(formatNode(v))
	}

	for _, e := range edges {
		b.WriteString("\n    ")
		b.WriteString(sanitizeID(e.Source))
		b.WriteByte(' ')
		b.WriteString(arrowFor(e.Style))
		if label := sanitizeLabel(e.Value); label != "" {
			b.WriteString(`|"` + label + `"| `)
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(sanitizeID(e.Target))
	}

	return b.String()
}

// Shape categories, in detection priority order. The first matching style
// key wins; combinations are not represented.
const (
	shapeDiamond = "diamond"
	shapeCircle  = "circle"
	shapeRounded = "rounded"
	shapeStadium = "stadium"
	shapeRect    = "rect"
)

func shapeFor(style string) string {
	m := mxgraph.ParseStyle(style)
	switch {
	case m.Has("rhombus"), m.Is("shape", "rhombus"):
		return shapeDiamond
	case m.Has("ellipse"), m.Is("shape", "ellipse"):
		return shapeCircle
	case m.Is("rounded", "1"):
		return shapeRounded
	case m.Is("shape", "parallelogram"):
		return shapeStadium
	default:
		return shapeRect
	}
}

func arrowFor(style string) string {
	m := mxgraph.ParseStyle(style)
	switch {
	case m.Is("dashed", "1"):
		return "-.->"
	case m.Is("endArrow", "none"):
		return "---"
	default:
		return "-->"
	}
}

func formatNode(c mxgraph.Cell) string {
	id := sanitizeID(c.ID)
	label := sanitizeLabel(c.Value)
	if label == "" {
		label = id
	}

	switch shapeFor(c.Style) {
	case shapeDiamond:
		return id + `{{"` + label + `"}}`
	case shapeCircle:
		return id + `(("` + label + `"))`
	case shapeRounded:
		return id + `("` + label + `")`
	case shapeStadium:
		return id + `(["` + label + `"])`
	default:
		return id + `["` + label + `"]`
	}
}

// sanitizeID rewrites an id into Mermaid's identifier alphabet.
func sanitizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// sanitizeLabel makes a cell value safe inside a quoted Mermaid label.
func sanitizeLabel(label string) string {
	s := strings.ReplaceAll(label, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.TrimSpace(s)
}
