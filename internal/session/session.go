// Package session implements the diagram edit orchestrator: the one stateful
// component of the system. A Session owns the current document text, the
// latest rendered raster, and a bounded history of export snapshots, and
// dispatches the three edit operations (replace, append, patch) onto that
// state. Rendering and persistence are collaborator interfaces so the same
// session drives the terminal client, the MCP surface, and tests with a
// headless renderer.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/patch"
)

// ExportFormat selects the renderer's export encoding.
type ExportFormat string

const (
	// FormatXMLSVG is a vector export carrying the document XML in its
	// content attribute. It is the round-trip format: both the raster and
	// the authoritative text come back from one export.
	FormatXMLSVG ExportFormat = "xmlsvg"
	FormatPNG    ExportFormat = "png"
	FormatSVG    ExportFormat = "svg"
	// FormatDrawio is a file-save format tag. The renderer is asked for an
	// xmlsvg export and the document text is extracted from it.
	FormatDrawio ExportFormat = "drawio"
)

// ExportResult is the renderer's asynchronous completion event.
type ExportResult struct {
	Format ExportFormat
	Data   string
}

// Renderer is the external diagram surface. Load pushes document text at it;
// Export asks for an asynchronous export whose completion the host delivers
// back through Session.HandleExportResult.
type Renderer interface {
	Ready() bool
	Load(xml string)
	Export(format ExportFormat)
}

// KeyValueStore persists the last-known document text and per-provider
// credentials.
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// DocumentKey is the durable slot holding the last saved document text.
const DocumentKey = "drawbridge-diagram-xml"

// HistoryCapacity bounds the snapshot ring. Oldest entries are evicted
// first.
const HistoryCapacity = 20

// HistoryEntry is an immutable snapshot captured when a history-marking
// export completes.
type HistoryEntry struct {
	Raster    string
	XML       string
	Timestamp time.Time
}

// ErrExportSuperseded resolves a pending export waiter displaced by a newer
// request. The resolver slot is single-occupancy, not a queue.
var ErrExportSuperseded = errors.New("export superseded by a newer request")

// ErrNoRenderer reports an await issued while no renderer is ready; without
// one the completion event can never arrive.
var ErrNoRenderer = errors.New("renderer not ready")

type exportOutcome struct {
	xml string
	err error
}

type saveOutcome struct {
	data string
	err  error
}

// Session is the edit orchestrator. All state transitions go through its
// methods; collaborators never retain references into it.
type Session struct {
	mu sync.Mutex

	renderer Renderer
	store    KeyValueStore

	document string
	raster   string
	history  []HistoryEntry

	// pending holds the accumulated payload of a truncated display
	// operation awaiting continuation fragments.
	pending string

	expectHistory bool
	exportWaiter  chan exportOutcome
	saveWaiter    chan saveOutcome
	saveFormat    ExportFormat
}

// New creates a session in the empty state with the canonical empty
// envelope loaded.
func New(renderer Renderer, store KeyValueStore) *Session {
	return &Session{
		renderer: renderer,
		store:    store,
		document: mxgraph.EmptyDocument,
	}
}

// Document returns the current document text.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Raster returns the latest rendered export, empty if none completed yet.
func (s *Session) Raster() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raster
}

// History returns a copy of the snapshot ring, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Load validates document text, applies any auto-wrap fix, and makes the
// result the current document. A hard validation failure leaves state
// untouched. skipValidation is for text already known well-formed, such as
// history snapshots.
func (s *Session) Load(xml string, skipValidation bool) error {
	text := xml
	if !skipValidation {
		result := mxgraph.Validate(xml)
		if !result.Valid {
			return errors.New(result.Err)
		}
		if result.Fixed != "" {
			text = result.Fixed
		}
	}

	s.mu.Lock()
	s.document = text
	renderer := s.renderer
	s.mu.Unlock()

	if renderer != nil && renderer.Ready() {
		renderer.Load(text)
	}
	return nil
}

// RequestExport asks the renderer for a round-trip export whose completion
// will be recorded in history. A missing or unready renderer makes this a
// no-op.
func (s *Session) RequestExport() {
	s.requestExport(true)
}

// RequestExportSilent is RequestExport without the history entry. Used for
// reads that must not pollute undo history.
func (s *Session) RequestExportSilent() {
	s.requestExport(false)
}

func (s *Session) requestExport(withHistory bool) {
	s.mu.Lock()
	renderer := s.renderer
	if withHistory {
		s.expectHistory = true
	}
	s.mu.Unlock()

	if renderer == nil || !renderer.Ready() {
		return
	}
	renderer.Export(FormatXMLSVG)
}

// AwaitExport registers this caller for the next export completion, issues a
// silent export, and blocks until the extracted document text arrives. A
// later AwaitExport displaces this one, failing it with ErrExportSuperseded.
func (s *Session) AwaitExport(ctx context.Context) (string, error) {
	s.mu.Lock()
	renderer := s.renderer
	if renderer == nil || !renderer.Ready() {
		s.mu.Unlock()
		return "", ErrNoRenderer
	}
	if s.exportWaiter != nil {
		s.exportWaiter <- exportOutcome{err: ErrExportSuperseded}
	}
	waiter := make(chan exportOutcome, 1)
	s.exportWaiter = waiter
	s.mu.Unlock()

	renderer.Export(FormatXMLSVG)

	select {
	case outcome := <-waiter:
		return outcome.xml, outcome.err
	case <-ctx.Done():
		s.mu.Lock()
		if s.exportWaiter == waiter {
			s.exportWaiter = nil
		}
		s.mu.Unlock()
		return "", ctx.Err()
	}
}

// HandleExportResult is the completion event for every renderer export. A
// pending file-save waiter is fed first; raster-only saves stop there.
// Otherwise the document text is extracted from the export, state is
// refreshed, a history entry is appended when one was requested, and any
// await waiter is resolved.
func (s *Session) HandleExportResult(result ExportResult) {
	s.mu.Lock()

	if s.saveWaiter != nil {
		waiter, format := s.saveWaiter, s.saveFormat
		s.saveWaiter = nil
		s.saveFormat = ""
		waiter <- saveOutcome{data: result.Data}
		if format == FormatPNG || format == FormatSVG {
			s.mu.Unlock()
			return
		}
	}

	extracted := ExtractDocumentXML(result.Data)
	s.document = extracted
	s.raster = result.Data

	if s.expectHistory {
		s.history = append(s.history, HistoryEntry{
			Raster:    result.Data,
			XML:       extracted,
			Timestamp: time.Now(),
		})
		if len(s.history) > HistoryCapacity {
			s.history = s.history[len(s.history)-HistoryCapacity:]
		}
		s.expectHistory = false
	}

	waiter := s.exportWaiter
	s.exportWaiter = nil
	s.mu.Unlock()

	if waiter != nil {
		waiter <- exportOutcome{xml: extracted}
	}
}

// Restore reloads a history snapshot by index, validation skipped since the
// entry already passed through Load once. An out-of-range index changes
// nothing.
func (s *Session) Restore(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.history) {
		s.mu.Unlock()
		return
	}
	entry := s.history[index]
	s.raster = entry.Raster
	s.mu.Unlock()

	_ = s.Load(entry.XML, true)
}

// Clear resets the session to the empty state: canonical empty envelope,
// no raster, no history, no pending continuation. Irreversible.
func (s *Session) Clear() {
	s.mu.Lock()
	s.raster = ""
	s.history = nil
	s.pending = ""
	s.expectHistory = false
	s.mu.Unlock()

	_ = s.Load(mxgraph.EmptyDocument, true)
}

// SaveToFile exports the document and writes it to name plus a
// format-derived extension. The drawio format re-wraps extracted text in the
// full envelope and also persists it to the durable document slot; png and
// svg exports are written as delivered.
func (s *Session) SaveToFile(ctx context.Context, format ExportFormat, name string) error {
	s.mu.Lock()
	renderer := s.renderer
	if renderer == nil || !renderer.Ready() {
		s.mu.Unlock()
		return ErrNoRenderer
	}
	if s.saveWaiter != nil {
		s.saveWaiter <- saveOutcome{err: ErrExportSuperseded}
	}
	waiter := make(chan saveOutcome, 1)
	s.saveWaiter = waiter
	s.saveFormat = format
	s.mu.Unlock()

	rendererFormat := format
	if format == FormatDrawio {
		rendererFormat = FormatXMLSVG
	}
	renderer.Export(rendererFormat)

	var data string
	select {
	case outcome := <-waiter:
		if outcome.err != nil {
			return outcome.err
		}
		data = outcome.data
	case <-ctx.Done():
		s.mu.Lock()
		if s.saveWaiter == waiter {
			s.saveWaiter = nil
			s.saveFormat = ""
		}
		s.mu.Unlock()
		return ctx.Err()
	}

	switch format {
	case FormatDrawio:
		xml := mxgraph.EnsureEnvelope(ExtractDocumentXML(data))
		if s.store != nil {
			if err := s.store.Set(DocumentKey, xml); err != nil {
				return fmt.Errorf("persist document: %w", err)
			}
		}
		return os.WriteFile(name+".drawio", []byte(xml), 0o644)
	case FormatPNG:
		raw, err := decodeRasterData(data)
		if err != nil {
			return err
		}
		return os.WriteFile(name+".png", raw, 0o644)
	default:
		return os.WriteFile(name+".svg", []byte(data), 0o644)
	}
}

// ReplaceDocument loads a freshly generated fragment as the whole document,
// abandoning any pending continuation.
func (s *Session) ReplaceDocument(fragment string) error {
	s.mu.Lock()
	s.pending = ""
	s.mu.Unlock()
	return s.Load(fragment, false)
}

// StashTruncated records a truncated display payload so continuation
// fragments can be appended to it.
func (s *Session) StashTruncated(fragment string) {
	s.mu.Lock()
	s.pending = fragment
	s.mu.Unlock()
}

// AppendFragment concatenates a continuation fragment onto the pending
// truncated payload and returns the combined text. The combined payload
// stays pending until CommitPending or ReplaceDocument.
func (s *Session) AppendFragment(fragment string) string {
	s.mu.Lock()
	s.pending += fragment
	combined := s.pending
	s.mu.Unlock()
	return combined
}

// PendingFragment returns the accumulated truncated payload, empty when no
// continuation is in progress.
func (s *Session) PendingFragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// CommitPending loads the accumulated payload as the whole document and
// clears the continuation state.
func (s *Session) CommitPending() error {
	s.mu.Lock()
	combined := s.pending
	s.pending = ""
	s.mu.Unlock()
	return s.Load(combined, false)
}

// ApplyEdits runs a transactional patch batch against the current document.
// On success the patched text becomes the current document and is pushed to
// the renderer; on failure the document is untouched and the error names the
// failing operation.
func (s *Session) ApplyEdits(edits []patch.Edit) error {
	s.mu.Lock()
	current := s.document
	s.mu.Unlock()

	patched, err := patch.Apply(current, edits)
	if err != nil {
		return err
	}
	return s.Load(patched, false)
}

// ExtractDocumentXML pulls the document text out of an xmlsvg export's
// content attribute and entity-decodes it. Exports without the attribute are
// returned as-is.
func ExtractDocumentXML(data string) string {
	const marker = `content="`
	start := strings.Index(data, marker)
	if start < 0 {
		return data
	}
	start += len(marker)
	end := strings.IndexByte(data[start:], '"')
	if end < 0 {
		return data
	}

	content := data[start : start+end]
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
	).Replace(content)
}

// decodeRasterData unwraps a base64 data URI into raw bytes. Plain payloads
// pass through unchanged.
func decodeRasterData(data string) ([]byte, error) {
	if !strings.HasPrefix(data, "data:") {
		return []byte(data), nil
	}
	comma := strings.IndexByte(data, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(data[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode raster export: %w", err)
	}
	return raw, nil
}
