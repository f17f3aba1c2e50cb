package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/events"
	"github.com/eisenboard/eisenboard-api/internal/metrics"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/redact"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// SubtaskTag is appended to the tags of every task created by a breakdown.
const SubtaskTag = "subtask"

// AssistConfig holds the model parameters for each kind of request.
type AssistConfig struct {
	Model             string
	ExpandModel       string
	Temperature       float32
	ExpandTemperature float32
	MaxTokens         int
	ExpandMaxTokens   int
	Title             string
	ExpandTitle       string
}

// AssistConfigFrom copies the model parameters out of the LLM settings.
func AssistConfigFrom(cfg config.LLMConfig) AssistConfig {
	return AssistConfig{
		Model:             cfg.Model,
		ExpandModel:       cfg.ExpandModel,
		Temperature:       cfg.Temperature,
		ExpandTemperature: cfg.ExpandTemperature,
		MaxTokens:         cfg.MaxTokens,
		ExpandMaxTokens:   cfg.ExpandMaxTokens,
		Title:             cfg.Title,
		ExpandTitle:       cfg.ExpandTitle,
	}
}

// BreakdownResult is the outcome of a breakdown.
type BreakdownResult struct {
	Parent          *domain.Task   `json:"parent"`
	Subtasks        []*domain.Task `json:"subtasks"`
	OverallApproach string         `json:"overallApproach"`
}

// ExpandResult is the outcome of an expansion.
type ExpandResult struct {
	Parent   *domain.Task   `json:"parent"`
	Subtasks []*domain.Task `json:"subtasks"`
}

// AssistService provides the language-model backed operations.
type AssistService interface {
	// Enabled reports whether a model is configured.
	Enabled() bool

	// Categorize suggests a lane for a task. Failures after the model is
	// reached degrade to the fallback categorization.
	Categorize(ctx context.Context, title, description string) (assist.Categorization, error)

	// CategorizeAndAdd categorizes the task and adds it to the suggested lane.
	CategorizeAndAdd(ctx context.Context, title, description string) (*domain.Task, assist.Categorization, error)

	// Breakdown splits a task into subtasks placed in their own lanes.
	Breakdown(ctx context.Context, taskID uuid.UUID) (*BreakdownResult, error)

	// Expand adds detailed subtasks in the task's own column.
	Expand(ctx context.Context, taskID uuid.UUID) (*ExpandResult, error)

	// Proxy forwards a raw prompt and returns the parsed reply.
	Proxy(ctx context.Context, prompt, kind string) (any, error)

	// RequestJob schedules a breakdown or expansion in the background.
	RequestJob(ctx context.Context, jobType domain.JobType, taskID uuid.UUID) (*domain.Job, error)

	// GetJob returns the record of a background job.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

// assistServiceImpl implements the AssistService interface
type assistServiceImpl struct {
	tasks     store.TaskStore
	jobs      store.JobStore
	db        store.TxBeginner
	completer assist.Completer
	emitter   events.EventEmitter
	cfg       AssistConfig
	busy      *inflight
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewAssistService creates a new AssistService.
// A nil completer disables every operation that needs the model, and a nil
// emitter disables background jobs. The stores and database are required.
func NewAssistService(
	tasks store.TaskStore,
	jobs store.JobStore,
	db store.TxBeginner,
	completer assist.Completer,
	emitter events.EventEmitter,
	cfg AssistConfig,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) (AssistService, error) {
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "task store cannot be nil"}
	}
	if jobs == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "job store cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "database cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &assistServiceImpl{
		tasks:     tasks,
		jobs:      jobs,
		db:        db,
		completer: completer,
		emitter:   emitter,
		cfg:       cfg,
		busy:      newInflight(),
		metrics:   recorder,
		logger:    logger.With("component", "assist_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *assistServiceImpl) Enabled() bool {
	return s.completer != nil
}

// Categorize asks the model for a lane. Once the model has been called any
// failure is reported as the fallback categorization rather than an error.
func (s *assistServiceImpl) Categorize(
	ctx context.Context,
	title, description string,
) (assist.Categorization, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	title = strings.TrimSpace(title)
	if title == "" {
		return assist.Categorization{}, NewServiceError("categorize", "title is required", domain.ErrTaskTitleEmpty)
	}
	if s.completer == nil {
		s.metrics.AssistRequest(string(assist.KindCategorize), "unavailable")
		return assist.Categorization{}, ErrAssistantUnavailable
	}

	content, err := s.completer.Complete(ctx, assist.CompletionRequest{
		Prompt:      assist.CategorizePrompt(title, description),
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Title:       s.cfg.Title,
	})
	if err != nil {
		log.Warn("categorization failed, using fallback", "error", redact.Error(err))
		s.metrics.AssistRequest(string(assist.KindCategorize), "fallback")
		return assist.FallbackCategorization(), nil
	}

	result, err := assist.ParseCategorization(content)
	if err != nil {
		log.Warn("unusable categorization reply, using fallback", "error", err)
		s.metrics.AssistRequest(string(assist.KindCategorize), "fallback")
		return assist.FallbackCategorization(), nil
	}

	s.metrics.AssistRequest(string(assist.KindCategorize), "success")
	log.Debug("task categorized", "lane", result.Lane)
	return result, nil
}

// CategorizeAndAdd adds a todo in the lane chosen by Categorize.
func (s *assistServiceImpl) CategorizeAndAdd(
	ctx context.Context,
	title, description string,
) (*domain.Task, assist.Categorization, error) {
	result, err := s.Categorize(ctx, title, description)
	if err != nil {
		return nil, assist.Categorization{}, err
	}

	task, err := domain.NewTask(domain.TaskInput{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Lane:        result.Lane,
		Status:      domain.StatusTodo,
	})
	if err != nil {
		return nil, assist.Categorization{}, NewServiceError("categorize_add", "invalid task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		if err := s.appendToColumn(ctx, txTasks, task); err != nil {
			return NewServiceError("categorize_add", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, assist.Categorization{}, err
	}

	s.metrics.TaskMutation("create")
	logger.FromContextOrDefault(ctx, s.logger).Info("categorized task added",
		"task_id", task.ID,
		"lane", task.Lane,
		"fallback", result.Fallback)
	return task, result, nil
}

// Breakdown asks the model for prioritized subtasks and creates them under
// the task.
func (s *assistServiceImpl) Breakdown(ctx context.Context, taskID uuid.UUID) (*BreakdownResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("task_id", taskID)

	release, err := s.begin(taskID, string(assist.KindBreakdown))
	if err != nil {
		return nil, err
	}
	defer release()

	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("breakdown", "failed to retrieve task", err)
	}

	content, err := s.completer.Complete(ctx, assist.CompletionRequest{
		Prompt:      assist.BreakdownPrompt(parent.Title, parent.Description, parent.Lane),
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Title:       s.cfg.Title,
	})
	if err != nil {
		log.Error("breakdown request failed", "error", redact.Error(err))
		s.metrics.AssistRequest(string(assist.KindBreakdown), "error")
		return nil, NewServiceError("breakdown", "completion failed", err)
	}

	plan, err := assist.ParseBreakdown(content)
	if err != nil {
		log.Error("unusable breakdown reply", "error", err)
		s.metrics.AssistRequest(string(assist.KindBreakdown), "error")
		return nil, NewServiceError("breakdown", "failed to parse breakdown", err)
	}
	if len(plan.Subtasks) == 0 {
		s.metrics.AssistRequest(string(assist.KindBreakdown), "error")
		return nil, ErrNoSubtasks
	}

	inputs := make([]domain.TaskInput, 0, len(plan.Subtasks))
	for _, item := range plan.Subtasks {
		tags := append(append([]string{}, parent.Tags...), SubtaskTag)
		inputs = append(inputs, domain.TaskInput{
			Title:       item.Title,
			Description: item.Reasoning,
			Lane:        item.Lane,
			Status:      domain.StatusTodo,
			ParentID:    &parent.ID,
			Priority:    parent.Priority,
			Tags:        tags,
		})
	}

	parent, created, err := s.addChildren(ctx, "breakdown", taskID, inputs)
	if err != nil {
		s.metrics.AssistRequest(string(assist.KindBreakdown), "error")
		return nil, err
	}

	s.metrics.AssistRequest(string(assist.KindBreakdown), "success")
	log.Info("task broken down", "subtasks", len(created))
	return &BreakdownResult{
		Parent:          parent,
		Subtasks:        created,
		OverallApproach: plan.OverallApproach,
	}, nil
}

// Expand asks the model for detailed subtasks that share the task's column.
func (s *assistServiceImpl) Expand(ctx context.Context, taskID uuid.UUID) (*ExpandResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("task_id", taskID)

	release, err := s.begin(taskID, string(assist.KindExpand))
	if err != nil {
		return nil, err
	}
	defer release()

	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("expand", "failed to retrieve task", err)
	}

	content, err := s.completer.Complete(ctx, assist.CompletionRequest{
		Prompt:      assist.ExpandPrompt(parent.Title, parent.Description),
		Model:       s.cfg.ExpandModel,
		Temperature: s.cfg.ExpandTemperature,
		MaxTokens:   s.cfg.ExpandMaxTokens,
		Title:       s.cfg.ExpandTitle,
	})
	if err != nil {
		log.Error("expand request failed", "error", redact.Error(err))
		s.metrics.AssistRequest(string(assist.KindExpand), "error")
		return nil, NewServiceError("expand", "completion failed", err)
	}

	subtasks := assist.ParseSubtasks(content)
	if len(subtasks) == 0 {
		s.metrics.AssistRequest(string(assist.KindExpand), "error")
		return nil, ErrNoSubtasks
	}

	inputs := make([]domain.TaskInput, 0, len(subtasks))
	for _, st := range subtasks {
		inputs = append(inputs, domain.TaskInput{
			Title:       st.Title,
			Description: st.Description,
			Lane:        parent.Lane,
			Status:      parent.Status,
			ParentID:    &parent.ID,
		})
	}

	parent, created, err := s.addChildren(ctx, "expand", taskID, inputs)
	if err != nil {
		s.metrics.AssistRequest(string(assist.KindExpand), "error")
		return nil, err
	}

	s.metrics.AssistRequest(string(assist.KindExpand), "success")
	log.Info("task expanded", "subtasks", len(created))
	return &ExpandResult{Parent: parent, Subtasks: created}, nil
}

// Proxy sends prompt with the default model parameters.
func (s *assistServiceImpl) Proxy(ctx context.Context, prompt, kind string) (any, error) {
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(kind) == "" {
		return nil, ErrMissingPrompt
	}
	label := string(assist.NormalizeKind(kind))
	if s.completer == nil {
		s.metrics.AssistRequest(label, "unavailable")
		return nil, ErrAssistantUnavailable
	}

	content, err := s.completer.Complete(ctx, assist.CompletionRequest{Prompt: prompt})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("proxied request failed",
			"type", label,
			"error", redact.Error(err))
		s.metrics.AssistRequest(label, "error")
		return nil, NewServiceError("proxy", "completion failed", err)
	}

	s.metrics.AssistRequest(label, "success")
	return assist.ProxyResult(content), nil
}

// RequestJob records a pending job and raises the request for the runner.
func (s *assistServiceImpl) RequestJob(
	ctx context.Context,
	jobType domain.JobType,
	taskID uuid.UUID,
) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	job, err := domain.NewJob(jobType, taskID)
	if err != nil {
		return nil, NewServiceError("request_job", "invalid job", err)
	}
	if s.completer == nil || s.emitter == nil {
		return nil, ErrAssistantUnavailable
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, NewServiceError("request_job", "failed to retrieve task", err)
	}

	event, err := events.NewJobRequestEvent(string(job.Type), events.JobRequestPayload{
		JobID:  job.ID,
		TaskID: job.TaskID,
	})
	if err != nil {
		return nil, NewServiceError("request_job", "failed to create job request", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to raise job request",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
		return nil, NewServiceError("request_job", "failed to schedule job", err)
	}

	log.Info("job requested", "job_id", job.ID, "job_type", job.Type, "task_id", taskID)
	return job, nil
}

// GetJob returns the stored job record.
func (s *assistServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_job", "failed to retrieve job", err)
	}
	return job, nil
}

// begin claims the per-task guard. The returned func releases it.
func (s *assistServiceImpl) begin(taskID uuid.UUID, operation string) (func(), error) {
	if s.completer == nil {
		s.metrics.AssistRequest(operation, "unavailable")
		return nil, ErrAssistantUnavailable
	}
	if !s.busy.acquire(taskID, operation) {
		s.metrics.AssistRequest(operation, "conflict")
		return nil, ErrAssistInProgress
	}
	return func() { s.busy.release(taskID) }, nil
}

// addChildren creates the subtasks and marks the parent expanded in one
// transaction. The parent is re-read so edits made while the model was
// working are kept.
func (s *assistServiceImpl) addChildren(
	ctx context.Context,
	operation string,
	parentID uuid.UUID,
	inputs []domain.TaskInput,
) (*domain.Task, []*domain.Task, error) {
	children := make([]*domain.Task, 0, len(inputs))
	for _, in := range inputs {
		child, err := domain.NewTask(in)
		if err != nil {
			return nil, nil, NewServiceError(operation, "invalid subtask", err)
		}
		children = append(children, child)
	}

	var parent *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		p, err := txTasks.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return NewServiceError(operation, "failed to retrieve task", err)
		}

		for _, child := range children {
			if err := s.appendToColumn(ctx, txTasks, child); err != nil {
				return NewServiceError(operation, "failed to save subtask", err)
			}
		}

		if !p.IsExpanded {
			p.IsExpanded = true
			p.UpdatedAt = s.now()
			if err := txTasks.Update(ctx, p); err != nil {
				return NewServiceError(operation, "failed to expand parent", err)
			}
		}
		parent = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.TaskMutation(operation)
	return parent, children, nil
}

// appendToColumn saves task after the last card of its column.
func (s *assistServiceImpl) appendToColumn(ctx context.Context, txTasks store.TaskStore, task *domain.Task) error {
	maxPos, err := txTasks.MaxPosition(ctx, task.Lane, task.Status)
	if err != nil {
		return err
	}
	task.Position = maxPos + 1
	return txTasks.Create(ctx, task)
}
