package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/events"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAssistConfig = service.AssistConfig{
	Model:             "anthropic/claude-3-opus",
	ExpandModel:       "anthropic/claude-3.5-sonnet",
	Temperature:       0.3,
	ExpandTemperature: 0.7,
	MaxTokens:         500,
	ExpandMaxTokens:   1000,
	Title:             "Eisenboard AI Assistant",
	ExpandTitle:       "Eisenboard Task Expansion",
}

// recordingCompleter replies with content and remembers every request.
type recordingCompleter struct {
	mu       sync.Mutex
	requests []assist.CompletionRequest
	content  string
	err      error
}

func (c *recordingCompleter) Complete(_ context.Context, req assist.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.content, c.err
}

func (c *recordingCompleter) last() assist.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

// captureEmitter records emitted events and returns err.
type captureEmitter struct {
	events []*events.JobRequestEvent
	err    error
}

func (e *captureEmitter) EmitEvent(_ context.Context, event *events.JobRequestEvent) error {
	e.events = append(e.events, event)
	return e.err
}

func (f *fixture) assistant(t *testing.T, completer assist.Completer, emitter events.EventEmitter) service.AssistService {
	t.Helper()
	svc, err := service.NewAssistService(f.tasks, f.jobs, f.db, completer, emitter, testAssistConfig, f.metric, nil)
	require.NoError(t, err)
	return svc
}

func TestNewAssistService_RequiresStores(t *testing.T) {
	t.Parallel()

	_, err := service.NewAssistService(nil, nil, nil, nil, nil, testAssistConfig, nil, nil)
	var svcErr *service.ServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestDisabledAssistant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assistant(t, nil, nil)
	task := f.add(t, domain.TaskInput{Title: "Anything"})

	assert.False(t, svc.Enabled())

	_, err := svc.Categorize(ctx, "Pay rent", "")
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
	_, err = svc.Breakdown(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
	_, err = svc.Expand(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
	_, err = svc.Proxy(ctx, "hello", "categorize")
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
	_, err = svc.RequestJob(ctx, domain.JobTypeBreakdown, task.ID)
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
}

func TestCategorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	completer := &recordingCompleter{
		content: `{"lane": "urgent-important", "reasoning": "Due today"}`,
	}
	svc := f.assistant(t, completer, nil)

	result, err := svc.Categorize(ctx, "File taxes", "deadline tonight")
	require.NoError(t, err)
	assert.Equal(t, domain.LaneUrgentImportant, result.Lane)
	assert.Equal(t, "Due today", result.Reasoning)
	assert.False(t, result.Fallback)

	req := completer.last()
	assert.Contains(t, req.Prompt, "File taxes")
	assert.Equal(t, "anthropic/claude-3-opus", req.Model)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, 500, req.MaxTokens)

	_, err = svc.Categorize(ctx, "  ", "")
	assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
}

func TestCategorize_FallsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name      string
		completer *recordingCompleter
	}{
		{"upstream error", &recordingCompleter{err: &assist.UpstreamError{StatusCode: 500}}},
		{"not json", &recordingCompleter{content: "Do it first!"}},
		{"unknown lane", &recordingCompleter{content: `{"lane":"someday","reasoning":"x"}`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			svc := f.assistant(t, tc.completer, nil)

			result, err := svc.Categorize(ctx, "Water plants", "")
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Equal(t, domain.LaneImportantNotUrgent, result.Lane)
			assert.Equal(t, assist.FallbackReasoning, result.Reasoning)
		})
	}
}

func TestCategorizeAndAdd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	svc := f.assistant(t, &recordingCompleter{
		content: `{"lane": "urgent-not-important", "reasoning": "Someone else can do it"}`,
	}, nil)

	task, result, err := svc.CategorizeAndAdd(ctx, " Book meeting room ", "for Friday")
	require.NoError(t, err)
	assert.Equal(t, domain.LaneUrgentNotImportant, result.Lane)
	assert.Equal(t, "Book meeting room", task.Title)
	assert.Equal(t, domain.LaneUrgentNotImportant, task.Lane)
	assert.Equal(t, domain.StatusTodo, task.Status)

	stored, err := f.board.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "for Friday", stored.Description)
}

const breakdownReply = `{
  "subtasks": [
    {"title": "Draft outline", "lane": "urgent-important", "reasoning": "Blocks everything else"},
    {"title": "Collect feedback", "lane": "urgent-not-important", "reasoning": "Can be delegated"}
  ],
  "overall_approach": "Outline first, then gather input"
}`

func TestBreakdown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	parent := f.add(t, domain.TaskInput{
		Title:    "Write proposal",
		Lane:     domain.LaneImportantNotUrgent,
		Priority: domain.PriorityHigh,
		Tags:     []string{"work"},
	})
	f.add(t, domain.TaskInput{Title: "Existing", Lane: domain.LaneUrgentImportant})

	completer := &recordingCompleter{content: breakdownReply}
	svc := f.assistant(t, completer, nil)

	result, err := svc.Breakdown(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outline first, then gather input", result.OverallApproach)
	assert.True(t, result.Parent.IsExpanded)
	require.Len(t, result.Subtasks, 2)

	first := result.Subtasks[0]
	assert.Equal(t, "Draft outline", first.Title)
	assert.Equal(t, "Blocks everything else", first.Description)
	assert.Equal(t, domain.LaneUrgentImportant, first.Lane)
	assert.Equal(t, domain.StatusTodo, first.Status)
	assert.Equal(t, domain.PriorityHigh, first.Priority)
	assert.Equal(t, []string{"work", service.SubtaskTag}, first.Tags)
	require.NotNil(t, first.ParentID)
	assert.Equal(t, parent.ID, *first.ParentID)
	assert.Equal(t, 1, first.Position, "subtasks are appended to their column")

	assert.Contains(t, completer.last().Prompt, `This task is in the "important & not-urgent" quadrant.`)

	stored, err := f.board.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsExpanded)
}

func TestBreakdown_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := f.assistant(t, &recordingCompleter{content: breakdownReply}, nil)
		_, err := svc.Breakdown(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})

	t.Run("invalid reply creates nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		parent := f.add(t, domain.TaskInput{Title: "Plan"})
		svc := f.assistant(t, &recordingCompleter{
			content: `{"subtasks":[{"title":"ok","lane":"urgent-important"},{"title":"","lane":"neither"}]}`,
		}, nil)

		_, err := svc.Breakdown(ctx, parent.ID)
		assert.ErrorIs(t, err, assist.ErrInvalidResponse)

		all, err := f.board.ListTasks(ctx, store.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("empty subtasks", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		parent := f.add(t, domain.TaskInput{Title: "Plan"})
		svc := f.assistant(t, &recordingCompleter{content: `{"subtasks":[],"overall_approach":""}`}, nil)

		_, err := svc.Breakdown(ctx, parent.ID)
		assert.ErrorIs(t, err, service.ErrNoSubtasks)
	})

	t.Run("upstream error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		parent := f.add(t, domain.TaskInput{Title: "Plan"})
		svc := f.assistant(t, &recordingCompleter{err: &assist.UpstreamError{StatusCode: 401}}, nil)

		_, err := svc.Breakdown(ctx, parent.ID)
		upstream, ok := assist.AsUpstreamError(err)
		require.True(t, ok)
		assert.Equal(t, 401, upstream.StatusCode)
	})
}

// blockingCompleter waits for release before answering.
type blockingCompleter struct {
	entered chan struct{}
	release chan struct{}
	content string
}

func (c *blockingCompleter) Complete(ctx context.Context, _ assist.CompletionRequest) (string, error) {
	c.entered <- struct{}{}
	select {
	case <-c.release:
		return c.content, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestBreakdown_OneOperationPerTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	parent := f.add(t, domain.TaskInput{Title: "Busy task"})
	completer := &blockingCompleter{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		content: breakdownReply,
	}
	svc := f.assistant(t, completer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Breakdown(ctx, parent.ID)
		done <- err
	}()

	select {
	case <-completer.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("breakdown never reached the model")
	}

	_, err := svc.Expand(ctx, parent.ID)
	assert.ErrorIs(t, err, service.ErrAssistInProgress)

	close(completer.release)
	require.NoError(t, <-done)

	// The guard is released once the first operation finishes.
	completer.entered = make(chan struct{}, 1)
	completer.release = make(chan struct{})
	close(completer.release)
	completer.content = `{"subtasks":[{"title":"Next step","description":"Do it"}]}`
	_, err = svc.Expand(ctx, parent.ID)
	assert.NoError(t, err)
}

func TestExpand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	parent := f.add(t, domain.TaskInput{
		Title:  "Move house",
		Lane:   domain.LaneUrgentImportant,
		Status: domain.StatusInProgress,
	})

	completer := &recordingCompleter{content: "```json\n" +
		`{"subtasks":[{"title":"Book movers","description":"Get three quotes"},{"title":"","description":"Pack"}]}` +
		"\n```"}
	svc := f.assistant(t, completer, nil)

	result, err := svc.Expand(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, result.Subtasks, 2)
	assert.True(t, result.Parent.IsExpanded)

	assert.Equal(t, "Book movers", result.Subtasks[0].Title)
	assert.Equal(t, "Get three quotes", result.Subtasks[0].Description)
	assert.Equal(t, assist.UntitledSubtask, result.Subtasks[1].Title)
	for _, st := range result.Subtasks {
		assert.Equal(t, domain.LaneUrgentImportant, st.Lane)
		assert.Equal(t, domain.StatusInProgress, st.Status)
		require.NotNil(t, st.ParentID)
		assert.Equal(t, parent.ID, *st.ParentID)
	}

	req := completer.last()
	assert.Equal(t, "anthropic/claude-3.5-sonnet", req.Model)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Equal(t, "Eisenboard Task Expansion", req.Title)
}

func TestExpand_FreeTextReply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	parent := f.add(t, domain.TaskInput{Title: "Learn Go"})
	svc := f.assistant(t, &recordingCompleter{
		content: "Here is a plan:\n1. Read the tour\n2. Write a CLI\n- Ship it",
	}, nil)

	result, err := svc.Expand(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Here is a plan:", "Read the tour", "Write a CLI", "Ship it"}, titles(result.Subtasks))
}

func TestProxy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	completer := &recordingCompleter{content: `{"answer": 42}`}
	svc := f.assistant(t, completer, nil)

	out, err := svc.Proxy(ctx, "what is the answer", "custom")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": float64(42)}, out)
	assert.Equal(t, assist.CompletionRequest{Prompt: "what is the answer"}, completer.last())

	completer.content = "plain words"
	out, err = svc.Proxy(ctx, "say something", "categorize")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"content": "plain words"}, out)

	_, err = svc.Proxy(ctx, "", "categorize")
	assert.ErrorIs(t, err, service.ErrMissingPrompt)
	_, err = svc.Proxy(ctx, "prompt", " ")
	assert.ErrorIs(t, err, service.ErrMissingPrompt)

	completer.err = &assist.UpstreamError{StatusCode: 429, Body: "slow down"}
	_, err = svc.Proxy(ctx, "prompt", "breakdown")
	upstream, ok := assist.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, 429, upstream.StatusCode)
}

func TestRequestJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	task := f.add(t, domain.TaskInput{Title: "Background me"})
	emitter := &captureEmitter{}
	svc := f.assistant(t, &recordingCompleter{}, emitter)

	job, err := svc.RequestJob(ctx, domain.JobTypeExpand, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, task.ID, job.TaskID)

	require.Len(t, emitter.events, 1)
	event := emitter.events[0]
	assert.Equal(t, string(domain.JobTypeExpand), event.Type)
	var payload events.JobRequestPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, job.ID, payload.JobID)
	assert.Equal(t, task.ID, payload.TaskID)

	_, err = svc.RequestJob(ctx, domain.JobTypeExpand, uuid.New())
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, err = svc.RequestJob(ctx, domain.JobType("summarize"), task.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	emitter.err = errors.New("queue is full")
	_, err = svc.RequestJob(ctx, domain.JobTypeBreakdown, task.ID)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "queue is full"))
}

func TestGetJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	task := f.add(t, domain.TaskInput{Title: "Owner"})
	job, err := domain.NewJob(domain.JobTypeBreakdown, task.ID)
	require.NoError(t, err)
	require.NoError(t, f.jobs.Save(ctx, job))

	svc := f.assistant(t, nil, nil)

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobTypeBreakdown, got.Type)

	_, err = svc.GetJob(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrJobNotFound)
}
