// Package cli implements the interactive terminal client: a Bubble Tea chat
// loop over a diagram session workflow, with a transcript renderer shared by
// live and resume views.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// maxOutputLines caps how many lines of a tool output are shown inline.
const maxOutputLines = 20

// ANSI codes used directly so color output is deterministic regardless of
// terminal detection on the destination writer.
const (
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
)

// Renderer formats conversation items for the terminal transcript.
type Renderer struct {
	w          io.Writer
	noMarkdown bool
	noColor    bool
	markdown   *glamour.TermRenderer
}

// NewRenderer creates a renderer writing to w. noMarkdown disables glamour
// rendering of assistant messages; noColor strips ANSI styling.
func NewRenderer(w io.Writer, noMarkdown, noColor bool) *Renderer {
	r := &Renderer{w: w, noMarkdown: noMarkdown, noColor: noColor}
	if !noMarkdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// RenderItem writes one conversation item to the transcript. Returns whether
// anything was written: user messages and turn_complete markers are silent in
// the live view because the input field already echoed them.
func (r *Renderer) RenderItem(item models.ConversationItem) bool {
	switch item.Type {
	case models.ItemTypeAssistantMessage:
		r.renderAssistant(item.Content)
		return true
	case models.ItemTypeFunctionCall:
		fmt.Fprintf(r.w, "%s %s\n", r.color("●", ansiCyan), r.describeCall(item))
		return true
	case models.ItemTypeFunctionCallOutput:
		r.renderOutput(item)
		return true
	case models.ItemTypeTurnStarted:
		fmt.Fprintf(r.w, "%s\n", r.color("── "+item.TurnID+" ──", ansiDim))
		return true
	default:
		return false
	}
}

// RenderItemForResume renders items when replaying an existing session,
// where user messages must be shown too.
func (r *Renderer) RenderItemForResume(item models.ConversationItem) {
	if item.Type == models.ItemTypeUserMessage {
		fmt.Fprintf(r.w, "%s %s\n", r.color(">", ansiGreen), item.Content)
		return
	}
	r.RenderItem(item)
}

// RenderStatusLine writes the model/token/turn status footer.
func (r *Renderer) RenderStatusLine(model string, totalTokens, turn int) {
	fmt.Fprintf(r.w, "%s\n",
		r.color(fmt.Sprintf("[%s] %s tokens · turn %d", model, formatTokens(totalTokens), turn), ansiDim))
}

func (r *Renderer) renderAssistant(content string) {
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(content); err == nil {
			fmt.Fprint(r.w, rendered)
			return
		}
	}
	fmt.Fprintf(r.w, "%s\n", content)
}

func (r *Renderer) renderOutput(item models.ConversationItem) {
	if item.Output == nil {
		return
	}

	marker := r.color("└", ansiDim)
	if item.Output.Success != nil && !*item.Output.Success {
		marker = r.color("└ ✗", ansiRed)
	}

	lines := strings.Split(strings.TrimRight(item.Output.Content, "\n"), "\n")
	shown := lines
	if len(lines) > maxOutputLines {
		shown = lines[:maxOutputLines]
	}
	for _, line := range shown {
		fmt.Fprintf(r.w, "%s %s\n", marker, line)
	}
	if hidden := len(lines) - len(shown); hidden > 0 {
		fmt.Fprintf(r.w, "%s %s\n", marker, r.color(fmt.Sprintf("... (%d more lines)", hidden), ansiDim))
	}
}

// describeCall summarizes a tool call in one line: the tool name plus a
// shortened view of its payload.
func (r *Renderer) describeCall(item models.ConversationItem) string {
	summary := summarizeArguments(item.Name, item.Arguments)
	if summary == "" {
		return item.Name
	}
	return item.Name + " " + r.color(summary, ansiDim)
}

// summarizeArguments produces a single-line argument preview per tool.
func summarizeArguments(name, arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return singleLine(arguments, 80)
	}

	switch name {
	case "display_diagram", "append_diagram":
		if xml, ok := args["xml"].(string); ok {
			return singleLine(xml, 80)
		}
	case "edit_diagram":
		if edits, ok := args["edits"].([]any); ok {
			return fmt.Sprintf("(%d edit(s))", len(edits))
		}
	}
	return singleLine(arguments, 80)
}

// singleLine collapses text to one line and truncates it to n runes.
func singleLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (r *Renderer) color(s, code string) string {
	if r.noColor {
		return s
	}
	return code + s + ansiReset
}

// formatTokens renders a token count with thousands separators.
func formatTokens(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
