package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/drawbridge-ai/drawbridge/internal/activities"
	"github.com/drawbridge-ai/drawbridge/internal/llm"
	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// scriptedLLM returns a CallLLM activity stub that replays the given
// responses in order and counts invocations.
type scriptedLLM struct {
	responses []llm.LLMResponse
	calls     int
}

func (s *scriptedLLM) callLLM(ctx context.Context, request llm.LLMRequest) (llm.LLMResponse, error) {
	if s.calls >= len(s.responses) {
		return llm.LLMResponse{}, fmt.Errorf("unexpected LLM call %d", s.calls+1)
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func assistantResponse(text string) llm.LLMResponse {
	return llm.LLMResponse{
		Items:        []models.ConversationItem{{Type: models.ItemTypeAssistantMessage, Content: text}},
		FinishReason: models.FinishReasonStop,
	}
}

func toolCallResponse(name, callID string, args map[string]any) llm.LLMResponse {
	raw, _ := json.Marshal(args)
	return llm.LLMResponse{
		Items: []models.ConversationItem{{
			Type:      models.ItemTypeFunctionCall,
			CallID:    callID,
			Name:      name,
			Arguments: string(raw),
		}},
		FinishReason: models.FinishReasonToolCalls,
	}
}

// storageStub counts persistence activity calls so tests can assert the
// workflow touched the durable slot.
type storageStub struct {
	saves   int
	deletes int
}

func (s *storageStub) saveDocument(ctx context.Context, input activities.SaveDocumentInput) error {
	s.saves++
	return nil
}

func (s *storageStub) loadDocument(ctx context.Context) (activities.LoadDocumentOutput, error) {
	return activities.LoadDocumentOutput{}, nil
}

func (s *storageStub) deleteDocument(ctx context.Context) error {
	s.deletes++
	return nil
}

// newSessionEnv wires a test environment with the scripted LLM stub and
// counting storage activity stubs.
func newSessionEnv(t *testing.T, script *scriptedLLM) (*testsuite.TestWorkflowEnvironment, *storageStub) {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	storage := &storageStub{}

	env.RegisterWorkflow(DiagramSessionWorkflow)
	env.RegisterActivityWithOptions(script.callLLM, activity.RegisterOptions{Name: "CallLLM"})
	env.RegisterActivityWithOptions(storage.loadDocument, activity.RegisterOptions{Name: "LoadDocument"})
	env.RegisterActivityWithOptions(storage.saveDocument, activity.RegisterOptions{Name: "SaveDocument"})
	env.RegisterActivityWithOptions(storage.deleteDocument, activity.RegisterOptions{Name: "DeleteDocument"})
	return env, storage
}

func submitMessage(env *testsuite.TestWorkflowEnvironment, delay time.Duration, content string) {
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateSubmitMessage, fmt.Sprintf("submit-%d", delay), &testsuite.TestUpdateCallback{
			OnAccept:   func() {},
			OnReject:   func(err error) { panic(err) },
			OnComplete: func(interface{}, error) {},
		}, UserMessage{Content: content})
	}, delay)
}

func requestShutdown(env *testsuite.TestWorkflowEnvironment, delay time.Duration) {
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateShutdown, "shutdown", &testsuite.TestUpdateCallback{
			OnAccept:   func() {},
			OnReject:   func(err error) { panic(err) },
			OnComplete: func(interface{}, error) {},
		}, ShutdownRequest{})
	}, delay)
}

func queryItems(t *testing.T, env *testsuite.TestWorkflowEnvironment) []models.ConversationItem {
	t.Helper()
	value, err := env.QueryWorkflow(QueryGetConversationItems)
	require.NoError(t, err)
	var items []models.ConversationItem
	require.NoError(t, value.Get(&items))
	return items
}

func queryDocument(t *testing.T, env *testsuite.TestWorkflowEnvironment) DocumentSnapshot {
	t.Helper()
	value, err := env.QueryWorkflow(QueryGetDocument)
	require.NoError(t, err)
	var snapshot DocumentSnapshot
	require.NoError(t, value.Get(&snapshot))
	return snapshot
}

// TestWorkflow_DisplayDiagramTurn verifies the full happy path: the model
// calls display_diagram with a bare cell fragment, the fragment is wrapped
// into a complete document, and the turn ends with an assistant summary.
func TestWorkflow_DisplayDiagramTurn(t *testing.T) {
	cells := `<mxCell id="2" value="Start" style="rounded=1;" vertex="1" parent="1"><mxGeometry x="40" y="40" width="120" height="60" as="geometry"/></mxCell>`
	script := &scriptedLLM{responses: []llm.LLMResponse{
		toolCallResponse("display_diagram", "call_1", map[string]any{"xml": cells}),
		assistantResponse("I created a start node."),
	}}

	env, _ := newSessionEnv(t, script)
	submitMessage(env, 0, "draw a start node")
	requestShutdown(env, time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	assert.Equal(t, 2, script.calls)

	items := queryItems(t, env)
	require.Len(t, items, 6)
	assert.Equal(t, models.ItemTypeTurnStarted, items[0].Type)
	assert.Equal(t, models.ItemTypeUserMessage, items[1].Type)
	assert.Equal(t, models.ItemTypeFunctionCall, items[2].Type)
	assert.Equal(t, models.ItemTypeFunctionCallOutput, items[3].Type)
	require.NotNil(t, items[3].Output.Success)
	assert.True(t, *items[3].Output.Success)
	assert.Equal(t, "Diagram displayed successfully.", items[3].Output.Content)
	assert.Equal(t, models.ItemTypeAssistantMessage, items[4].Type)
	assert.Equal(t, models.ItemTypeTurnComplete, items[5].Type)

	// Sequence numbers are strictly increasing from 1.
	for i, item := range items {
		assert.Equal(t, i+1, item.Seq)
	}

	doc := queryDocument(t, env)
	assert.Contains(t, doc.Current, "<mxfile>")
	assert.Contains(t, doc.Current, `id="2"`)
	assert.Empty(t, doc.Previous, "first document has no predecessor")
}

// TestWorkflow_EditDiagramUnmatchedSearch verifies an unmatched search
// pattern produces a failed tool output and leaves the document unchanged.
func TestWorkflow_EditDiagramUnmatchedSearch(t *testing.T) {
	cells := `<mxCell id="2" value="Start" style="rounded=1;" vertex="1" parent="1"><mxGeometry x="40" y="40" width="120" height="60" as="geometry"/></mxCell>`
	script := &scriptedLLM{responses: []llm.LLMResponse{
		toolCallResponse("display_diagram", "call_1", map[string]any{"xml": cells}),
		assistantResponse("Created."),
		toolCallResponse("edit_diagram", "call_2", map[string]any{
			"edits": []map[string]string{{"search": "no such text", "replace": "x"}},
		}),
		assistantResponse("That pattern did not match."),
	}}

	env, _ := newSessionEnv(t, script)
	submitMessage(env, 0, "draw a start node")
	submitMessage(env, time.Second, "rename it")
	requestShutdown(env, 2*time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	items := queryItems(t, env)
	var editOutput *models.ConversationItem
	for i := range items {
		if items[i].Type == models.ItemTypeFunctionCallOutput && items[i].CallID == "call_2" {
			editOutput = &items[i]
		}
	}
	require.NotNil(t, editOutput)
	require.NotNil(t, editOutput.Output.Success)
	assert.False(t, *editOutput.Output.Success)
	assert.Contains(t, editOutput.Output.Content, "edit 1 of 1 failed")
	assert.Contains(t, editOutput.Output.Content, "No edits were applied")

	doc := queryDocument(t, env)
	assert.Contains(t, doc.Current, `value="Start"`, "failed batch must not change the document")
}

// TestWorkflow_TruncatedThenAppend verifies the truncation recovery flow:
// display_diagram stashes the cut-off payload and append_diagram completes it.
func TestWorkflow_TruncatedThenAppend(t *testing.T) {
	firstHalf := `<mxCell id="2" value="A" style="rounded=1;" vertex="1" parent="1"><mxGeometry x="40" y="40" width="120" height="60" as="geometry"/></mxCell><mxCell id="3" value="B" sty`
	secondHalf := `le="rounded=1;" vertex="1" parent="1"><mxGeometry x="40" y="140" width="120" height="60" as="geometry"/></mxCell>`

	script := &scriptedLLM{responses: []llm.LLMResponse{
		toolCallResponse("display_diagram", "call_1", map[string]any{"xml": firstHalf}),
		toolCallResponse("append_diagram", "call_2", map[string]any{"xml": secondHalf}),
		assistantResponse("Done."),
	}}

	env, _ := newSessionEnv(t, script)
	submitMessage(env, 0, "draw two nodes")
	requestShutdown(env, time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	items := queryItems(t, env)
	var outputs []models.ConversationItem
	for _, item := range items {
		if item.Type == models.ItemTypeFunctionCallOutput {
			outputs = append(outputs, item)
		}
	}
	require.Len(t, outputs, 2)
	assert.False(t, *outputs[0].Output.Success)
	assert.Contains(t, outputs[0].Output.Content, "truncated")
	assert.True(t, *outputs[1].Output.Success)

	doc := queryDocument(t, env)
	assert.Contains(t, doc.Current, `id="3"`)
	assert.Contains(t, doc.Current, `value="B"`)
	assert.Empty(t, doc.Pending)
}

// TestWorkflow_CachedFirstTurn verifies a known showcase prompt is answered
// from the canned response set without any LLM call.
func TestWorkflow_CachedFirstTurn(t *testing.T) {
	script := &scriptedLLM{} // any call fails the turn

	env, _ := newSessionEnv(t, script)
	submitMessage(env, 0, "Give me a **animated connector** diagram of transformer's architecture")
	requestShutdown(env, time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	assert.Equal(t, 0, script.calls, "cached turns must not reach the provider")

	items := queryItems(t, env)
	var sawCall, sawOutput bool
	for _, item := range items {
		switch item.Type {
		case models.ItemTypeFunctionCall:
			sawCall = true
			assert.Equal(t, "display_diagram", item.Name)
		case models.ItemTypeFunctionCallOutput:
			sawOutput = true
			assert.True(t, *item.Output.Success)
		}
	}
	assert.True(t, sawCall)
	assert.True(t, sawOutput)

	doc := queryDocument(t, env)
	assert.Contains(t, doc.Current, "Transformer Architecture")
}

// TestWorkflow_StepBudgetBoundsToolLoop verifies a model that keeps calling
// tools is cut off after MaxTurnSteps round-trips.
func TestWorkflow_StepBudgetBoundsToolLoop(t *testing.T) {
	cells := `<mxCell id="2" value="N" style="rounded=1;" vertex="1" parent="1"><mxGeometry x="40" y="40" width="120" height="60" as="geometry"/></mxCell>`
	var responses []llm.LLMResponse
	for i := 0; i < 10; i++ {
		responses = append(responses,
			toolCallResponse("display_diagram", fmt.Sprintf("call_%d", i), map[string]any{"xml": cells}))
	}
	script := &scriptedLLM{responses: responses}

	env, _ := newSessionEnv(t, script)
	submitMessage(env, 0, "loop forever")
	requestShutdown(env, time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{MaxTurnSteps: 3})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	assert.Equal(t, 3, script.calls)

	items := queryItems(t, env)
	assert.Equal(t, models.ItemTypeTurnComplete, items[len(items)-1].Type)
}

// TestWorkflow_SyncDocumentAndClear verifies external editor pushes replace
// the document and clear_session resets everything.
func TestWorkflow_SyncDocumentAndClear(t *testing.T) {
	script := &scriptedLLM{}
	env, storage := newSessionEnv(t, script)

	pushed := `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/><mxCell id="2" value="Edited" vertex="1" parent="1"/></root></mxGraphModel>`

	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateSyncDocument, "sync", &testsuite.TestUpdateCallback{
			OnAccept: func() {},
			OnReject: func(err error) { panic(err) },
			OnComplete: func(result interface{}, err error) {
				require.NoError(t, err)
			},
		}, SyncDocumentRequest{XML: pushed})
	}, 0)

	env.RegisterDelayedCallback(func() {
		doc := queryDocument(t, env)
		assert.Contains(t, doc.Current, `value="Edited"`)
		assert.Contains(t, doc.Current, "<mxfile>", "pushed model is wrapped in an envelope")
	}, 500*time.Millisecond)

	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateClearSession, "clear", &testsuite.TestUpdateCallback{
			OnAccept:   func() {},
			OnReject:   func(err error) { panic(err) },
			OnComplete: func(interface{}, error) {},
		}, ClearSessionRequest{})
	}, time.Second)

	requestShutdown(env, 2*time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	doc := queryDocument(t, env)
	assert.Empty(t, doc.Current)
	assert.Empty(t, queryItems(t, env))
	assert.GreaterOrEqual(t, storage.deletes, 1,
		"clear must drop the persisted document so a restart does not restore it")
}

// TestWorkflow_RejectsEmptyMessage verifies the submit validator rejects
// blank input without disturbing the session.
func TestWorkflow_RejectsEmptyMessage(t *testing.T) {
	script := &scriptedLLM{}
	env, _ := newSessionEnv(t, script)

	rejected := false
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateSubmitMessage, "empty", &testsuite.TestUpdateCallback{
			OnAccept:   func() {},
			OnReject:   func(err error) { rejected = true },
			OnComplete: func(interface{}, error) {},
		}, UserMessage{Content: "   "})
	}, 0)

	requestShutdown(env, time.Second)

	env.ExecuteWorkflow(DiagramSessionWorkflow, models.SessionConfiguration{})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	assert.True(t, rejected, "blank message must be rejected by the validator")
	assert.Empty(t, queryItems(t, env))
}
