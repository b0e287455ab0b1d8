package mxgraph

import "strings"

// IsTruncated reports whether a cell fragment looks cut off mid-generation.
// Providers enforce output length limits, so a display payload can stop in
// the middle of a tag or leave an open mxCell element without its closer.
// Callers use this to switch the turn into append-continuation mode.
func IsTruncated(xml string) bool {
	trimmed := strings.TrimRight(xml, " \t\r\n")
	if trimmed == "" {
		return false
	}

	// Ends inside a tag: a '<' with no '>' after it.
	if last := strings.LastIndexByte(trimmed, '<'); last >= 0 && !strings.ContainsRune(trimmed[last:], '>') {
		return true
	}

	// Every open mxCell tag must eventually have a matching closer.
	pos := 0
	for {
		start := indexCellTag(trimmed, pos)
		if start < 0 {
			return false
		}
		end, selfClosing := findTagEnd(trimmed, start)
		if end < 0 {
			return true
		}
		pos = end + 1
		if selfClosing {
			continue
		}
		close := strings.Index(trimmed[pos:], "</mxCell>")
		if close < 0 {
			return true
		}
		pos += close + len("</mxCell>")
	}
}
