package mxgraph

import "strings"

// EmptyDocument is the canonical empty envelope a session resets to on clear.
const EmptyDocument = `<mxfile><diagram name="Page-1" id="page-1"><mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel></diagram></mxfile>`

// Structural markers used by the validator.
const (
	cellMarker  = "<mxCell"
	modelMarker = "<mxGraphModel"
	fileMarker  = "<mxfile"
)

// Fix descriptions recorded when the validator rewrites input.
const (
	FixWrappedCells = "wrapped bare mxCell elements in mxGraphModel structure"
	FixWrappedModel = "wrapped mxGraphModel in mxfile structure"
)

// ValidationResult reports the outcome of Validate. Fixed is non-empty only
// when at least one fix was applied; callers keep their original text
// otherwise.
type ValidationResult struct {
	Valid bool
	Err   string
	Fixed string
	Fixes []string
}

// Validate checks that document text is structurally loadable and auto-wraps
// partial fragments into a complete envelope.
//
// Generated content is deliberately bare mxCell fragments (no envelope
// boilerplate); this is the step that turns those fragments into a complete,
// renderable document. Empty input is valid as-is and means "no diagram".
// The only hard rejection is text with neither a cell nor an envelope marker.
func Validate(xml string) ValidationResult {
	if strings.TrimSpace(xml) == "" {
		return ValidationResult{Valid: true}
	}

	if !strings.Contains(xml, cellMarker) && !strings.Contains(xml, fileMarker) {
		return ValidationResult{
			Valid: false,
			Err:   "invalid diagram XML: missing mxCell or mxfile elements",
		}
	}

	fixed := xml
	var fixes []string

	if !strings.Contains(fixed, modelMarker) && !strings.Contains(fixed, fileMarker) {
		fixed = `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/>` + fixed + `</root></mxGraphModel>`
		fixes = append(fixes, FixWrappedCells)
	}

	if strings.Contains(fixed, modelMarker) && !strings.Contains(fixed, fileMarker) {
		fixed = `<mxfile><diagram name="` + DefaultPage + `" id="` + DefaultPageID + `">` + fixed + `</diagram></mxfile>`
		fixes = append(fixes, FixWrappedModel)
	}

	result := ValidationResult{Valid: true}
	if len(fixes) > 0 {
		result.Fixed = fixed
		result.Fixes = fixes
	}
	return result
}

// EnsureEnvelope wraps document text in the outer mxfile envelope if it is
// not already enveloped. Used on the file-save path, where exports may carry
// only the inner graph model.
func EnsureEnvelope(xml string) string {
	if strings.Contains(xml, fileMarker) {
		return xml
	}
	return `<mxfile><diagram name="` + DefaultPage + `" id="` + DefaultPageID + `">` + xml + `</diagram></mxfile>`
}

// IsMinimal reports whether the document contains no generated cells beyond
// the reserved roots.
func IsMinimal(xml string) bool {
	if strings.TrimSpace(xml) == "" {
		return true
	}
	for _, c := range ParseCells(xml) {
		if !c.IsReservedRoot() {
			return false
		}
	}
	return true
}
