package instructions

// DiagramContext builds the per-turn system context block carrying the
// document state. The current XML is declared authoritative because the
// user can edit the canvas directly between turns; search patterns for
// edit_diagram must come from it, not from what the model generated last.
func DiagramContext(previousXML, currentXML string) string {
	var context string
	if previousXML != "" && previousXML != currentXML {
		context = "Previous diagram XML (before user's last message):\n\"\"\"xml\n" + previousXML + "\n\"\"\"\n\n"
	}
	context += "Current diagram XML (AUTHORITATIVE - the source of truth):\n\"\"\"xml\n" + currentXML + "\n\"\"\"\n\n"
	context += `IMPORTANT: The "Current diagram XML" is the SINGLE SOURCE OF TRUTH for what's on the canvas right now. The user can manually add, delete, or modify shapes directly in the editor. Always count and describe elements based on the CURRENT XML, not on what you previously generated. If both previous and current XML are shown, compare them to understand what the user changed. When using edit_diagram, COPY search patterns exactly from the CURRENT XML - attribute order matters!`
	return context
}
