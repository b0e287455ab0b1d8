package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/drawbridge-ai/drawbridge/internal/mermaid"
	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/store"
	"github.com/drawbridge-ai/drawbridge/internal/workflow"
)

const (
	TaskQueue    = "drawbridge"
	PollInterval = 200 * time.Millisecond

	// WorkflowName is the registered name of the session workflow.
	WorkflowName = "DiagramSessionWorkflow"

	updateTimeout = 30 * time.Second
)

// Config holds CLI configuration.
type Config struct {
	TemporalHost string
	WorkflowID   string // Resume existing session
	Message      string // Initial message for a new session
	Provider     string
	Model        string
	NoMarkdown   bool
	NoColor      bool
	StorePath    string // Local credential/document store
}

// App is the interactive terminal client.
type App struct {
	config Config
	client client.Client
	kv     *store.Store
}

// NewApp creates a new CLI app.
func NewApp(config Config) *App {
	return &App{config: config}
}

// Run connects to Temporal, starts or resumes a session workflow, and runs
// the chat UI until the user exits.
func (a *App) Run() error {
	kv, err := store.Open(a.config.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer kv.Close()
	a.kv = kv

	c, err := client.Dial(client.Options{
		HostPort: a.config.TemporalHost,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	defer c.Close()
	a.client = c

	apiKey, err := ResolveAPIKey(kv, a.config.Provider)
	if err != nil {
		return err
	}

	workflowID := a.config.WorkflowID
	resuming := workflowID != ""
	if !resuming {
		workflowID = fmt.Sprintf("drawbridge-%s", uuid.New().String()[:8])
		if err := a.startWorkflow(workflowID, apiKey); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Session: %s\n", workflowID)

	m := newChatModel(a.client, workflowID, a.config)
	if resuming {
		if err := m.loadHistory(); err != nil {
			return fmt.Errorf("failed to query session: %w", err)
		}
	}
	if a.config.Message != "" {
		if _, err := submitMessage(a.client, workflowID, a.config.Message); err != nil {
			return err
		}
		m.echoUserMessage(a.config.Message)
		m.waiting = true
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (a *App) startWorkflow(workflowID, apiKey string) error {
	provider := models.ProviderByID(a.config.Provider)

	config := models.SessionConfiguration{
		Model: models.ModelConfig{
			Provider: a.config.Provider,
			Model:    a.config.Model,
			APIKey:   apiKey,
			BaseURL:  provider.BaseURL,
		},
		SessionSource: "interactive-cli",
	}

	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	_, err := a.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: TaskQueue,
	}, WorkflowName, config)
	if err != nil {
		return fmt.Errorf("failed to start workflow: %w", err)
	}
	return nil
}

// submitMessage delivers a user message via the submit_message update and
// waits for it to be accepted.
func submitMessage(c client.Client, workflowID, content string) (workflow.MessageAccepted, error) {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	var accepted workflow.MessageAccepted
	handle, err := c.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		WorkflowID:   workflowID,
		UpdateName:   workflow.UpdateSubmitMessage,
		WaitForStage: client.WorkflowUpdateStageCompleted,
		Args:         []any{workflow.UserMessage{Content: content}},
	})
	if err != nil {
		return accepted, err
	}
	err = handle.Get(ctx, &accepted)
	return accepted, err
}

// executeUpdate delivers a payload-carrying update and decodes the response.
func executeUpdate(c client.Client, workflowID, name string, arg, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	args := []any{}
	if arg != nil {
		args = append(args, arg)
	}
	handle, err := c.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		WorkflowID:   workflowID,
		UpdateName:   name,
		WaitForStage: client.WorkflowUpdateStageCompleted,
		Args:         args,
	})
	if err != nil {
		return err
	}
	return handle.Get(ctx, out)
}

// PhaseMessage maps a workflow phase to the spinner caption.
func PhaseMessage(phase workflow.Phase) string {
	switch phase {
	case workflow.PhaseRunning:
		return "Thinking..."
	case workflow.PhaseShutdown:
		return "Shutting down..."
	default:
		return ""
	}
}

// Bubble Tea messages.
type (
	pollMsg      PollResult
	submittedMsg struct{ turnID string }
	noticeMsg    string
	errMsg       struct{ err error }
	quitDoneMsg  struct{}
)

// chatModel is the Bubble Tea model for the chat UI.
type chatModel struct {
	client     client.Client
	workflowID string
	config     Config
	poller     *Poller
	renderer   *Renderer

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	transcript strings.Builder
	renderBuf  bytes.Buffer
	lastSeq    int

	status   workflow.TurnStatus
	document workflow.DocumentSnapshot

	width, height int
	ready         bool
	waiting       bool
	quitting      bool
	notice        string
	err           error

	headerStyle lipgloss.Style
	statusStyle lipgloss.Style
	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

func newChatModel(c client.Client, workflowID string, config Config) *chatModel {
	input := textinput.New()
	input.Placeholder = "Describe a diagram, or /help"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &chatModel{
		client:     c,
		workflowID: workflowID,
		config:     config,
		poller:     NewPoller(c, workflowID, PollInterval),
		input:      input,
		spin:       spin,
		headerStyle: lipgloss.NewStyle().Bold(true),
		statusStyle: lipgloss.NewStyle().Faint(true),
		noticeStyle: lipgloss.NewStyle().Italic(true),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	m.renderer = NewRenderer(&m.renderBuf, config.NoMarkdown, config.NoColor)
	return m
}

// loadHistory replays an existing session's transcript before the UI starts.
func (m *chatModel) loadHistory() error {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	result := m.poller.Poll(ctx)
	if result.Err != nil {
		return result.Err
	}
	for _, item := range result.Items {
		m.renderer.RenderItemForResume(item)
		m.lastSeq = item.Seq
	}
	m.transcript.WriteString(m.renderBuf.String())
	m.renderBuf.Reset()
	m.status = result.Status
	m.document = result.Document
	return nil
}

// echoUserMessage prints the user's own message into the transcript, since
// live items skip user messages.
func (m *chatModel) echoUserMessage(content string) {
	m.transcript.WriteString("> " + content + "\n")
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.pollCmd())
}

func (m *chatModel) pollCmd() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pollMsg(m.poller.Poll(ctx))
	})
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, m.shutdownCmd()
		case tea.KeyEnter:
			return m.handleSubmit()
		}

	case pollMsg:
		return m.handlePoll(PollResult(msg))

	case submittedMsg:
		m.waiting = true
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case quitDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	m.input.Reset()
	m.notice = ""
	m.err = nil

	if strings.HasPrefix(line, "/") {
		return m.handleCommand(line)
	}

	m.echoUserMessage(line)
	m.refreshViewport()
	return m, func() tea.Msg {
		accepted, err := submitMessage(m.client, m.workflowID, line)
		if err != nil {
			return errMsg{err}
		}
		return submittedMsg{turnID: accepted.TurnID}
	}
}

func (m *chatModel) handleCommand(line string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/exit", "/quit":
		return m, m.shutdownCmd()

	case "/clear":
		return m, func() tea.Msg {
			var resp workflow.ClearSessionResponse
			if err := executeUpdate(m.client, m.workflowID, workflow.UpdateClearSession, workflow.ClearSessionRequest{}, &resp); err != nil {
				return errMsg{err}
			}
			return noticeMsg("Session cleared.")
		}

	case "/preview":
		preview := mermaid.Convert(m.document.Current)
		m.transcript.WriteString("\n" + preview + "\n\n")
		m.refreshViewport()
		return m, nil

	case "/save":
		if arg == "" {
			m.notice = "Usage: /save <file.drawio>"
			return m, nil
		}
		if err := os.WriteFile(arg, []byte(m.document.Current), 0o644); err != nil {
			m.err = err
			return m, nil
		}
		m.notice = fmt.Sprintf("Saved diagram to %s", arg)
		return m, nil

	case "/load":
		if arg == "" {
			m.notice = "Usage: /load <file.drawio>"
			return m, nil
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, func() tea.Msg {
			var resp workflow.SyncDocumentResponse
			if err := executeUpdate(m.client, m.workflowID, workflow.UpdateSyncDocument, workflow.SyncDocumentRequest{XML: string(data)}, &resp); err != nil {
				return errMsg{err}
			}
			if !resp.Accepted {
				return noticeMsg("Rejected: " + resp.Error)
			}
			return noticeMsg(fmt.Sprintf("Loaded diagram from %s", arg))
		}

	case "/undo":
		previous := m.document.Previous
		if previous == "" {
			m.notice = "Nothing to undo."
			return m, nil
		}
		return m, func() tea.Msg {
			var resp workflow.SyncDocumentResponse
			if err := executeUpdate(m.client, m.workflowID, workflow.UpdateSyncDocument, workflow.SyncDocumentRequest{XML: previous}, &resp); err != nil {
				return errMsg{err}
			}
			if !resp.Accepted {
				return noticeMsg("Rejected: " + resp.Error)
			}
			return noticeMsg("Restored previous diagram.")
		}

	case "/help":
		m.notice = "/preview  /save <file>  /load <file>  /undo  /clear  /exit"
		return m, nil

	default:
		m.notice = fmt.Sprintf("Unknown command: %s (try /help)", cmd)
		return m, nil
	}
}

func (m *chatModel) shutdownCmd() tea.Cmd {
	m.notice = "Shutting down..."
	return func() tea.Msg {
		var resp workflow.ShutdownResponse
		if err := executeUpdate(m.client, m.workflowID, workflow.UpdateShutdown, workflow.ShutdownRequest{}, &resp); err != nil {
			// The workflow may already be gone. Quit either way.
			return quitDoneMsg{}
		}
		return quitDoneMsg{}
	}
}

func (m *chatModel) handlePoll(result PollResult) (tea.Model, tea.Cmd) {
	if result.Done {
		m.quitting = true
		return m, tea.Quit
	}
	if result.Err != nil {
		m.err = result.Err
		return m, m.pollCmd()
	}

	changed := false
	for _, item := range result.Items {
		if item.Seq <= m.lastSeq {
			continue
		}
		if m.renderer.RenderItem(item) {
			changed = true
		}
		m.lastSeq = item.Seq
	}
	if changed {
		m.transcript.WriteString(m.renderBuf.String())
		m.renderBuf.Reset()
	}

	m.status = result.Status
	m.document = result.Document
	m.waiting = m.status.Phase == workflow.PhaseRunning || len(result.Items) == 0

	if changed {
		m.refreshViewport()
	}
	return m, m.pollCmd()
}

// layout resizes the viewport to fill the space above the input and footer.
func (m *chatModel) layout() {
	chrome := 5 // header, spinner line, status line, input, notice
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, h)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = h
	}
	m.refreshViewport()
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Connecting...\n"
	}

	var b strings.Builder
	b.WriteString(m.headerStyle.Render("drawbridge · "+m.workflowID) + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if caption := PhaseMessage(m.status.Phase); m.waiting && caption != "" {
		b.WriteString(m.spin.View() + " " + caption + "\n")
	} else if m.notice != "" {
		b.WriteString(m.noticeStyle.Render(m.notice) + "\n")
	} else if m.err != nil {
		b.WriteString(m.errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else {
		b.WriteString("\n")
	}

	tokens := m.status.TokenUsage.PromptTokens + m.status.TokenUsage.CompletionTokens
	modelName := m.config.Model
	if modelName == "" {
		modelName = "default"
	}
	b.WriteString(m.statusStyle.Render(
		fmt.Sprintf("[%s] %s tokens · turn %d", modelName, formatTokens(tokens), m.status.TurnCounter)) + "\n")

	b.WriteString(m.input.View())
	return b.String()
}
