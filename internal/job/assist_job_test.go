package job

import (
	"context"
	"errors"
	"testing"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssistJob_Validation(t *testing.T) {
	assistant := &mockAssistant{}

	_, err := NewAssistJob(nil, assistant, nil)
	assert.ErrorIs(t, err, ErrNilRecord)

	_, err = NewAssistJob(newRecord(domain.JobTypeExpand), nil, nil)
	assert.ErrorIs(t, err, ErrNilAssistant)

	record := newRecord(domain.JobTypeExpand)
	record.Type = "summarize"
	_, err = NewAssistJob(record, assistant, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	record = newRecord(domain.JobTypeExpand)
	record.TaskID = uuid.Nil
	_, err = NewAssistJob(record, assistant, nil)
	assert.ErrorIs(t, err, domain.ErrTaskIDEmpty)
}

func TestAssistJob_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("breakdown", func(t *testing.T) {
		record := newRecord(domain.JobTypeBreakdown)
		var gotTask uuid.UUID
		assistant := &mockAssistant{
			BreakdownFn: func(_ context.Context, taskID uuid.UUID) (*service.BreakdownResult, error) {
				gotTask = taskID
				return &service.BreakdownResult{Subtasks: make([]*domain.Task, 4)}, nil
			},
		}

		job, err := NewAssistFactory(assistant, nil).Create(record)
		require.NoError(t, err)
		assert.Equal(t, record.ID, job.ID())
		assert.Equal(t, domain.JobTypeBreakdown, job.Type())
		assert.Equal(t, record.TaskID, job.TaskID())

		count, err := job.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.Equal(t, record.TaskID, gotTask)
	})

	t.Run("expand", func(t *testing.T) {
		assistant := &mockAssistant{
			ExpandFn: func(context.Context, uuid.UUID) (*service.ExpandResult, error) {
				return &service.ExpandResult{Subtasks: make([]*domain.Task, 2)}, nil
			},
		}
		job, err := NewAssistJob(newRecord(domain.JobTypeExpand), assistant, nil)
		require.NoError(t, err)

		count, err := job.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("assistant error is wrapped", func(t *testing.T) {
		assistant := &mockAssistant{
			ExpandFn: func(context.Context, uuid.UUID) (*service.ExpandResult, error) {
				return nil, service.ErrNoSubtasks
			},
		}
		job, err := NewAssistJob(newRecord(domain.JobTypeExpand), assistant, nil)
		require.NoError(t, err)

		_, err = job.Execute(ctx)
		assert.ErrorIs(t, err, service.ErrNoSubtasks)
		assert.Contains(t, err.Error(), "failed to expand task")
	})

	t.Run("cancelled context", func(t *testing.T) {
		job, err := NewAssistJob(newRecord(domain.JobTypeBreakdown), &mockAssistant{}, nil)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = job.Execute(cancelled)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
