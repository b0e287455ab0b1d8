// MCP server exposing drawbridge's diagram tools over stdio.
//
// Any MCP-capable assistant can drive a local diagram document: the three
// editing tools mutate an in-process session, get_diagram reads the result
// back as Mermaid text or raw XML, and the history tools list, restore and
// save the snapshots each edit records. The document persists across runs
// through the local store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/drawbridge-ai/drawbridge/internal/mermaid"
	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/store"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
	"github.com/drawbridge-ai/drawbridge/internal/tools/handlers"
)

// echoRenderer satisfies the session's renderer without a canvas. There is
// no rasterizer behind the MCP surface, so an export echoes the last loaded
// document back in the envelope shape the session unwraps. History capture
// and file saves then work through the normal export path.
type echoRenderer struct {
	mu       sync.Mutex
	session  *session.Session
	document string
}

// attach completes the renderer-session cycle. The renderer reports not
// ready until a session is attached.
func (r *echoRenderer) attach(s *session.Session) {
	r.mu.Lock()
	r.session = s
	r.document = s.Document()
	r.mu.Unlock()
}

func (r *echoRenderer) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

func (r *echoRenderer) Load(xml string) {
	r.mu.Lock()
	r.document = xml
	r.mu.Unlock()
}

func (r *echoRenderer) Export(format session.ExportFormat) {
	r.mu.Lock()
	s, doc := r.session, r.document
	r.mu.Unlock()
	if s == nil {
		return
	}
	s.HandleExportResult(session.ExportResult{Format: format, Data: wrapAsExport(doc)})
}

// wrapAsExport rebuilds the export envelope the session's extractor expects:
// document text entity-encoded into a content attribute. Ampersands are
// encoded first so entities already present survive the round trip.
func wrapAsExport(xml string) string {
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	).Replace(xml)
	return `<svg xmlns="http://www.w3.org/2000/svg" content="` + escaped + `"/>`
}

// newEchoSession wires a session to an echo renderer and restores the last
// persisted document.
func newEchoSession(kv session.KeyValueStore) *session.Session {
	renderer := &echoRenderer{}
	s := session.New(renderer, kv)
	renderer.attach(s)

	if kv != nil {
		if xml, err := kv.Get(session.DocumentKey); err == nil && xml != "" {
			// Validated when it was stored.
			_ = s.Load(xml, true)
		}
	}
	return s
}

// diagramServer holds the shared session behind every MCP tool.
type diagramServer struct {
	session *session.Session
	kv      session.KeyValueStore
}

type diagramXMLInput struct {
	XML string `json:"xml" jsonschema:"mxCell elements only, no wrapper tags"`
}

type editDiagramInput struct {
	Edits []editOperation `json:"edits" jsonschema:"search/replace pairs applied in order"`
}

type editOperation struct {
	Search  string `json:"search" jsonschema:"exact lines copied from the current XML"`
	Replace string `json:"replace" jsonschema:"replacement lines"`
}

type getDiagramInput struct {
	Format string `json:"format,omitempty" jsonschema:"mermaid (default) or xml"`
}

type restoreDiagramInput struct {
	Index int `json:"index" jsonschema:"snapshot index from list_history"`
}

type saveDiagramInput struct {
	Name string `json:"name" jsonschema:"output file name, .drawio is appended"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".drawbridge")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	kv, err := store.Open(filepath.Join(dir, "mcp.db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer kv.Close()

	d := &diagramServer{session: newEchoSession(kv), kv: kv}

	server := mcp.NewServer(&mcp.Implementation{Name: "drawbridge", Version: "1.0.0"}, nil)
	d.register(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func (d *diagramServer) register(server *mcp.Server) {
	display := handlers.NewDisplayDiagramTool(d.session)
	appendTool := handlers.NewAppendDiagramTool(d.session)
	edit := handlers.NewEditDiagramTool(d.session)

	mcp.AddTool(server, &mcp.Tool{
		Name:        display.Name(),
		Description: display.Spec().Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in diagramXMLInput) (*mcp.CallToolResult, any, error) {
		return d.invokeTool(ctx, display, in)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        appendTool.Name(),
		Description: appendTool.Spec().Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in diagramXMLInput) (*mcp.CallToolResult, any, error) {
		return d.invokeTool(ctx, appendTool, in)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        edit.Name(),
		Description: edit.Spec().Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in editDiagramInput) (*mcp.CallToolResult, any, error) {
		return d.invokeTool(ctx, edit, in)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_diagram",
		Description: "Read the current diagram back, as a Mermaid flowchart (default) or as raw XML.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in getDiagramInput) (*mcp.CallToolResult, any, error) {
		text, isError := d.readDiagram(in.Format)
		return toolResult(text, isError), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_history",
		Description: "List diagram snapshots, oldest first. Every successful editing tool call records one.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		return toolResult(d.historyListing(), false), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "restore_diagram",
		Description: "Restore a snapshot from list_history as the current diagram.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in restoreDiagramInput) (*mcp.CallToolResult, any, error) {
		text, isError := d.restoreSnapshot(in.Index)
		return toolResult(text, isError), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_diagram",
		Description: "Write the current diagram to a .drawio file.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in saveDiagramInput) (*mcp.CallToolResult, any, error) {
		text, isError := d.saveDiagram(ctx, in.Name)
		return toolResult(text, isError), nil, nil
	})
}

// invokeTool adapts a typed MCP input to the loosely typed tool invocation
// the handlers expect, and maps the output onto an MCP result. A successful
// mutation records a history snapshot and persists the document.
func (d *diagramServer) invokeTool(ctx context.Context, handler tools.ToolHandler, input any) (*mcp.CallToolResult, any, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, nil, err
	}
	var arguments map[string]any
	if err := json.Unmarshal(raw, &arguments); err != nil {
		return nil, nil, err
	}

	output, err := handler.Handle(ctx, &tools.ToolInvocation{
		Name:      handler.Name(),
		Arguments: arguments,
	})
	if err != nil {
		var validation *tools.ValidationError
		if errors.As(err, &validation) {
			return toolResult("Error: "+validation.Message, true), nil, nil
		}
		return nil, nil, err
	}

	isError := output.Success != nil && !*output.Success
	if !isError {
		d.session.RequestExport()
		d.persistDocument()
	}
	return toolResult(output.Content, isError), nil, nil
}

func (d *diagramServer) readDiagram(format string) (string, bool) {
	switch format {
	case "", "mermaid":
		return mermaid.Convert(d.session.Document()), false
	case "xml":
		return d.session.Document(), false
	default:
		return fmt.Sprintf("Error: unknown format %q, use mermaid or xml.", format), true
	}
}

func (d *diagramServer) historyListing() string {
	entries := d.session.History()
	if len(entries) == 0 {
		return "No history snapshots yet."
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s (%d cells)", i,
			entry.Timestamp.Format(time.RFC3339), len(mxgraph.ParseCells(entry.XML)))
	}
	return b.String()
}

func (d *diagramServer) restoreSnapshot(index int) (string, bool) {
	history := d.session.History()
	if index < 0 || index >= len(history) {
		return fmt.Sprintf("Error: index %d is out of range, history has %d snapshots.",
			index, len(history)), true
	}

	d.session.Restore(index)
	d.persistDocument()
	return fmt.Sprintf("Restored snapshot %d of %d.", index, len(history)), false
}

func (d *diagramServer) saveDiagram(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Error: name must not be empty.", true
	}
	if err := d.session.SaveToFile(ctx, session.FormatDrawio, name); err != nil {
		return fmt.Sprintf("Error: %v.", err), true
	}
	return fmt.Sprintf("Saved %s.drawio.", name), false
}

// persistDocument copies the current document into the durable slot so the
// next run starts from it. Persistence is a convenience, failures are not
// surfaced to the caller.
func (d *diagramServer) persistDocument() {
	if d.kv == nil {
		return
	}
	_ = d.kv.Set(session.DocumentKey, d.session.Document())
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
