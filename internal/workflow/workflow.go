// Package workflow contains the Temporal workflow that holds a diagram
// editing session: the conversation transcript, the authoritative document
// text, and the turn loop driving LLM calls and tool interception.
package workflow

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/drawbridge-ai/drawbridge/internal/activities"
	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// Update and query names exposed by the session workflow.
const (
	UpdateSubmitMessage = "submit_message"
	UpdateSyncDocument  = "sync_document"
	UpdateClearSession  = "clear_session"
	UpdateShutdown      = "shutdown"

	QueryGetConversationItems = "get_conversation_items"
	QueryGetDocument          = "get_document"
	QueryGetTurnStatus        = "get_turn_status"
)

// DefaultMaxTurnSteps bounds LLM round-trips within one user turn.
const DefaultMaxTurnSteps = 5

// Phase describes what the session is currently doing.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseShutdown Phase = "shutdown"
)

// UserMessage is the payload of the submit_message update.
type UserMessage struct {
	Content string `json:"content"`
}

// MessageAccepted is returned once a submitted message is queued.
type MessageAccepted struct {
	TurnID string `json:"turn_id"`
}

// SyncDocumentRequest replaces the authoritative document text, used when
// the user edits the diagram directly in the external editor.
type SyncDocumentRequest struct {
	XML string `json:"xml"`
}

// SyncDocumentResponse reports whether the pushed document was accepted.
type SyncDocumentResponse struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// ShutdownRequest asks the workflow to finish after the current turn.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Accepted bool `json:"accepted"`
}

// ClearSessionRequest resets the transcript and document.
type ClearSessionRequest struct{}

// ClearSessionResponse acknowledges a clear request.
type ClearSessionResponse struct {
	Accepted bool `json:"accepted"`
}

// DocumentSnapshot is the get_document query result.
type DocumentSnapshot struct {
	Current  string `json:"current"`
	Previous string `json:"previous,omitempty"`
	Pending  string `json:"pending,omitempty"`
}

// TurnStatus is the get_turn_status query result.
type TurnStatus struct {
	Phase       Phase             `json:"phase"`
	TurnCounter int               `json:"turn_counter"`
	TokenUsage  models.TokenUsage `json:"token_usage"`
	LastError   string            `json:"last_error,omitempty"`
}

// SessionState is the complete mutable state of a diagram session.
type SessionState struct {
	Config models.SessionConfiguration

	Items   []models.ConversationItem
	NextSeq int

	// CurrentDocument is the authoritative diagram text. PreviousDocument is
	// the document as it stood before the latest change, kept so the model
	// can see what it is modifying.
	CurrentDocument  string
	PreviousDocument string

	// PendingFragment buffers a truncated display_diagram payload across
	// append_diagram continuation calls.
	PendingFragment string

	TurnCounter int
	TokenUsage  models.TokenUsage

	Phase             Phase
	PendingMessages   []UserMessage
	ClearRequested    bool
	ShutdownRequested bool
	LastError         string
}

// DiagramSessionWorkflow runs a diagram editing session until shutdown.
func DiagramSessionWorkflow(ctx workflow.Context, config models.SessionConfiguration) error {
	logger := workflow.GetLogger(ctx)

	s := &SessionState{
		Config: config,
		Phase:  PhaseIdle,
	}
	if s.Config.MaxTurnSteps == 0 {
		s.Config.MaxTurnSteps = DefaultMaxTurnSteps
	}

	if err := s.registerHandlers(ctx); err != nil {
		return err
	}

	s.restoreDocument(ctx)

	logger.Info("Diagram session started",
		"provider", s.Config.Model.Provider,
		"model", s.Config.Model.Model,
		"source", s.Config.SessionSource)

	for {
		err := workflow.Await(ctx, func() bool {
			return len(s.PendingMessages) > 0 || s.ClearRequested || s.ShutdownRequested
		})
		if err != nil {
			return err
		}

		if s.ShutdownRequested {
			s.Phase = PhaseShutdown
			s.persistDocument(ctx)
			logger.Info("Diagram session shutting down", "turns", s.TurnCounter)
			return nil
		}

		if s.ClearRequested {
			s.clear(ctx)
			continue
		}

		msg := s.PendingMessages[0]
		s.PendingMessages = s.PendingMessages[1:]

		s.Phase = PhaseRunning
		if err := s.runTurn(ctx, msg.Content); err != nil {
			return err
		}
		s.Phase = PhaseIdle
		s.persistDocument(ctx)
	}
}

func (s *SessionState) registerHandlers(ctx workflow.Context) error {
	if err := workflow.SetQueryHandler(ctx, QueryGetConversationItems,
		func() ([]models.ConversationItem, error) {
			return s.Items, nil
		}); err != nil {
		return err
	}

	if err := workflow.SetQueryHandler(ctx, QueryGetDocument,
		func() (DocumentSnapshot, error) {
			return DocumentSnapshot{
				Current:  s.CurrentDocument,
				Previous: s.PreviousDocument,
				Pending:  s.PendingFragment,
			}, nil
		}); err != nil {
		return err
	}

	if err := workflow.SetQueryHandler(ctx, QueryGetTurnStatus,
		func() (TurnStatus, error) {
			return TurnStatus{
				Phase:       s.Phase,
				TurnCounter: s.TurnCounter,
				TokenUsage:  s.TokenUsage,
				LastError:   s.LastError,
			}, nil
		}); err != nil {
		return err
	}

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateSubmitMessage,
		func(ctx workflow.Context, msg UserMessage) (MessageAccepted, error) {
			s.PendingMessages = append(s.PendingMessages, msg)
			return MessageAccepted{TurnID: s.peekTurnID(len(s.PendingMessages))}, nil
		},
		workflow.UpdateHandlerOptions{
			Validator: func(msg UserMessage) error {
				if strings.TrimSpace(msg.Content) == "" {
					return temporal.NewApplicationError("message content must not be empty", "validation")
				}
				return nil
			},
		}); err != nil {
		return err
	}

	if err := workflow.SetUpdateHandler(ctx, UpdateSyncDocument,
		func(ctx workflow.Context, req SyncDocumentRequest) (SyncDocumentResponse, error) {
			return s.syncDocument(req.XML), nil
		}); err != nil {
		return err
	}

	if err := workflow.SetUpdateHandler(ctx, UpdateClearSession,
		func(ctx workflow.Context, _ ClearSessionRequest) (ClearSessionResponse, error) {
			s.ClearRequested = true
			return ClearSessionResponse{Accepted: true}, nil
		}); err != nil {
		return err
	}

	return workflow.SetUpdateHandler(ctx, UpdateShutdown,
		func(ctx workflow.Context, _ ShutdownRequest) (ShutdownResponse, error) {
			s.ShutdownRequested = true
			return ShutdownResponse{Accepted: true}, nil
		})
}

// restoreDocument loads the persisted document so a restarted session picks
// up where the last one left off. Non-fatal: a fresh session starts empty.
func (s *SessionState) restoreDocument(ctx workflow.Context) {
	logger := workflow.GetLogger(ctx)

	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	var loaded activities.LoadDocumentOutput
	if err := workflow.ExecuteActivity(actCtx, "LoadDocument").Get(ctx, &loaded); err != nil {
		logger.Warn("Failed to load persisted document, starting empty", "error", err)
		return
	}
	if loaded.Found {
		s.CurrentDocument = loaded.XML
		logger.Info("Restored persisted document", "len", len(loaded.XML))
	}
}

// persistDocument saves the current document. Non-fatal: persistence is a
// convenience, not a correctness requirement.
func (s *SessionState) persistDocument(ctx workflow.Context) {
	if s.CurrentDocument == "" {
		return
	}

	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	input := activities.SaveDocumentInput{XML: s.CurrentDocument}
	if err := workflow.ExecuteActivity(actCtx, "SaveDocument", input).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("Failed to persist document", "error", err)
	}
}

func (s *SessionState) clear(ctx workflow.Context) {
	s.ClearRequested = false
	s.Items = nil
	s.NextSeq = 0
	s.CurrentDocument = ""
	s.PreviousDocument = ""
	s.PendingFragment = ""
	s.TokenUsage = models.TokenUsage{}
	s.LastError = ""

	// Drop the durable slot too, otherwise a restart restores the cleared
	// diagram.
	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	if err := workflow.ExecuteActivity(actCtx, "DeleteDocument").Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("Failed to delete persisted document", "error", err)
	}

	workflow.GetLogger(ctx).Info("Session cleared")
}
