package cli

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/workflow"
)

// PollResult holds the results from a single poll cycle.
type PollResult struct {
	Items    []models.ConversationItem
	Status   workflow.TurnStatus
	Document workflow.DocumentSnapshot

	// Done reports that the workflow has finished and polling should stop.
	Done bool
	Err  error
}

// Poller queries the workflow for new items, turn status, and the current
// document.
type Poller struct {
	client     client.Client
	workflowID string
	interval   time.Duration
}

// NewPoller creates a poller for the given workflow.
func NewPoller(c client.Client, workflowID string, interval time.Duration) *Poller {
	return &Poller{
		client:     c,
		workflowID: workflowID,
		interval:   interval,
	}
}

// Poll performs a single poll cycle: queries items, turn status, and the
// document snapshot.
func (p *Poller) Poll(ctx context.Context) PollResult {
	var result PollResult

	if err := p.query(ctx, workflow.QueryGetConversationItems, &result.Items); err != nil {
		return pollError(err)
	}
	if err := p.query(ctx, workflow.QueryGetTurnStatus, &result.Status); err != nil {
		return pollError(err)
	}
	if err := p.query(ctx, workflow.QueryGetDocument, &result.Document); err != nil {
		return pollError(err)
	}

	return result
}

func (p *Poller) query(ctx context.Context, name string, out any) error {
	resp, err := p.client.QueryWorkflow(ctx, p.workflowID, "", name)
	if err != nil {
		return err
	}
	return resp.Get(out)
}

// pollError turns a query error into a result, detecting workflow completion
// so the client can exit cleanly instead of surfacing an error.
func pollError(err error) PollResult {
	var notFound *serviceerror.NotFound
	var completed *serviceerror.WorkflowExecutionAlreadyCompleted
	if errors.As(err, &notFound) || errors.As(err, &completed) {
		return PollResult{Done: true}
	}
	return PollResult{Err: err}
}

// RunPolling polls in a loop, sending results to the channel.
// Stops when the context is cancelled or the workflow completes.
func (p *Poller) RunPolling(ctx context.Context, ch chan<- PollResult) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := p.Poll(ctx)
			select {
			case ch <- result:
			case <-ctx.Done():
				return
			}
			if result.Done {
				return
			}
		}
	}
}
