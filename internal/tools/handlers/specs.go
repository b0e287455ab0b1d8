package handlers

import "github.com/drawbridge-ai/drawbridge/internal/tools"

// Specs returns the provider-facing specs of the three diagram tools without
// requiring a bound session. Used where only the tool definitions are needed,
// such as building LLM requests.
func Specs() []tools.ToolSpec {
	return []tools.ToolSpec{
		(&DisplayDiagramTool{}).Spec(),
		(&AppendDiagramTool{}).Spec(),
		(&EditDiagramTool{}).Spec(),
	}
}
