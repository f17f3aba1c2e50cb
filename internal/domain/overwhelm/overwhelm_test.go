package overwhelm

import (
	"testing"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskOpt func(*domain.Task)

func withLane(l domain.Lane) taskOpt { return func(t *domain.Task) { t.Lane = l } }

func withStatus(s domain.Status) taskOpt { return func(t *domain.Task) { t.Status = s } }

func withDifficulty(d domain.Difficulty) taskOpt {
	return func(t *domain.Task) { t.Difficulty = d }
}

func withEnergy(e domain.EnergyLevel) taskOpt { return func(t *domain.Task) { t.EnergyLevel = e } }

func withEstimate(m int) taskOpt { return func(t *domain.Task) { t.EstimatedMinutes = &m } }

func makeTasks(n int, opts ...taskOpt) []*domain.Task {
	out := make([]*domain.Task, 0, n)
	for i := 0; i < n; i++ {
		t := &domain.Task{
			ID:     uuid.New(),
			Title:  "task",
			Lane:   domain.LaneNeither,
			Status: domain.StatusTodo,
		}
		for _, opt := range opts {
			opt(t)
		}
		out = append(out, t)
	}
	return out
}

func concat(groups ...[]*domain.Task) []*domain.Task {
	var out []*domain.Task
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func findAlert(alerts []Alert, typ AlertType) *Alert {
	for i := range alerts {
		if alerts[i].Type == typ {
			return &alerts[i]
		}
	}
	return nil
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Empty(t, Analyze(nil))
	assert.Empty(t, Analyze([]*domain.Task{}))
}

func TestComputeMetrics(t *testing.T) {
	tasks := concat(
		makeTasks(2, withLane(domain.LaneUrgentImportant), withEstimate(30), withDifficulty(domain.DifficultyHard)),
		makeTasks(1, withStatus(domain.StatusInProgress), withEnergy(domain.EnergyHigh), withDifficulty(domain.DifficultyEasy)),
		makeTasks(1, withEstimate(0)),
		makeTasks(3, withStatus(domain.StatusDone), withLane(domain.LaneUrgentImportant), withEstimate(600)),
	)

	m := ComputeMetrics(tasks)
	assert.Equal(t, 4, m.TotalTasks)
	assert.Equal(t, 3, m.TodoTasks)
	assert.Equal(t, 1, m.InProgressTasks)
	assert.Equal(t, 2, m.UrgentImportantTasks)
	assert.Equal(t, 1, m.HighEnergyTasks)
	assert.Equal(t, 60, m.TotalEstimatedMinutes)
	assert.Equal(t, 2, m.TasksWithoutEstimates, "zero estimates count as missing")
	assert.InDelta(t, 7.0/3.0, m.AverageComplexity, 1e-9)
}

func TestTaskOverloadRule(t *testing.T) {
	tests := []struct {
		name         string
		tasks        []*domain.Task
		wantTitle    string
		wantSeverity Severity
		wantMessage  string
	}{
		{
			name:  "at threshold",
			tasks: makeTasks(12),
		},
		{
			name:         "medium todo overload",
			tasks:        makeTasks(13),
			wantTitle:    "Task Overload Detected",
			wantSeverity: SeverityMedium,
			wantMessage:  "You have 13 pending tasks. ADHD research suggests keeping active tasks under 12 for better focus.",
		},
		{
			name:         "still medium at eighteen",
			tasks:        makeTasks(18),
			wantTitle:    "Task Overload Detected",
			wantSeverity: SeverityMedium,
		},
		{
			name:         "high todo overload",
			tasks:        makeTasks(19),
			wantTitle:    "Task Overload Detected",
			wantSeverity: SeverityHigh,
		},
		{
			name:         "too many in progress",
			tasks:        makeTasks(4, withStatus(domain.StatusInProgress)),
			wantTitle:    "Too Many Active Tasks",
			wantSeverity: SeverityMedium,
			wantMessage:  "You have 4 tasks in progress. ADHD minds work best with 1-3 active tasks to avoid context switching.",
		},
		{
			name:         "todo overload wins over in progress",
			tasks:        concat(makeTasks(13), makeTasks(5, withStatus(domain.StatusInProgress))),
			wantTitle:    "Task Overload Detected",
			wantSeverity: SeverityMedium,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alert := findAlert(Analyze(tc.tasks), TaskOverload)
			if tc.wantTitle == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tc.wantTitle, alert.Title)
			assert.Equal(t, tc.wantSeverity, alert.Severity)
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, alert.Message)
			}
			assert.NotEmpty(t, alert.Suggestions)
			assert.Empty(t, alert.AffectedTasks)
		})
	}
}

func TestUrgencyRule(t *testing.T) {
	t.Run("five urgent tasks do not alert", func(t *testing.T) {
		tasks := makeTasks(5, withLane(domain.LaneUrgentImportant))
		assert.Nil(t, findAlert(Analyze(tasks), HighUrgencyConcentration))
	})

	t.Run("done tasks are ignored", func(t *testing.T) {
		tasks := concat(
			makeTasks(5, withLane(domain.LaneUrgentImportant)),
			makeTasks(4, withLane(domain.LaneUrgentImportant), withStatus(domain.StatusDone)),
		)
		assert.Nil(t, findAlert(Analyze(tasks), HighUrgencyConcentration))
	})

	t.Run("six urgent tasks alert at medium", func(t *testing.T) {
		urgent := makeTasks(6, withLane(domain.LaneUrgentImportant))
		alert := findAlert(Analyze(concat(urgent, makeTasks(2))), HighUrgencyConcentration)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityMedium, alert.Severity)
		assert.Equal(t, "Crisis Mode Detected", alert.Title)
		assert.Equal(t, "6 urgent & important tasks may cause stress and decision paralysis.", alert.Message)
		assert.Equal(t, taskIDs(urgent), alert.AffectedTasks)
	})

	t.Run("eight urgent tasks alert at high", func(t *testing.T) {
		alert := findAlert(Analyze(makeTasks(8, withLane(domain.LaneUrgentImportant))), HighUrgencyConcentration)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityHigh, alert.Severity)
	})
}

func TestComplexityRule(t *testing.T) {
	t.Run("hard task count", func(t *testing.T) {
		hard := makeTasks(5, withDifficulty(domain.DifficultyHard))
		alert := findAlert(Analyze(concat(hard, makeTasks(5, withDifficulty(domain.DifficultyEasy)))), ComplexityBuildup)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityMedium, alert.Severity)
		assert.Equal(t, "5 hard tasks and 50% complex tasks may cause cognitive overload.", alert.Message)
		assert.Equal(t, taskIDs(hard), alert.AffectedTasks)
	})

	t.Run("complexity ratio alone", func(t *testing.T) {
		tasks := concat(
			makeTasks(2, withDifficulty(domain.DifficultyMedium)),
			makeTasks(1),
		)
		alert := findAlert(Analyze(tasks), ComplexityBuildup)
		require.NotNil(t, alert)
		assert.Equal(t, "0 hard tasks and 67% complex tasks may cause cognitive overload.", alert.Message)
		assert.Empty(t, alert.AffectedTasks)
	})

	t.Run("ratio at threshold does not alert", func(t *testing.T) {
		tasks := concat(
			makeTasks(3, withDifficulty(domain.DifficultyMedium)),
			makeTasks(2),
		)
		assert.Nil(t, findAlert(Analyze(tasks), ComplexityBuildup))
	})

	t.Run("seven hard tasks are high", func(t *testing.T) {
		tasks := concat(makeTasks(7, withDifficulty(domain.DifficultyHard)), makeTasks(10))
		alert := findAlert(Analyze(tasks), ComplexityBuildup)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityHigh, alert.Severity)
	})
}

func TestEnergyRule(t *testing.T) {
	t.Run("seventy percent does not alert", func(t *testing.T) {
		tasks := concat(makeTasks(7, withEnergy(domain.EnergyHigh)), makeTasks(3))
		assert.Nil(t, findAlert(Analyze(tasks), EnergyMismatch))
	})

	t.Run("above seventy percent alerts", func(t *testing.T) {
		tasks := concat(
			makeTasks(3, withEnergy(domain.EnergyHigh)),
			makeTasks(1),
			makeTasks(2, withStatus(domain.StatusDone), withEnergy(domain.EnergyLow)),
		)
		alert := findAlert(Analyze(tasks), EnergyMismatch)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityMedium, alert.Severity)
		assert.Equal(t, "75% of your tasks require high energy. This may lead to burnout.", alert.Message)
	})
}

func TestTimePressureRule(t *testing.T) {
	t.Run("daily commitment exceeded", func(t *testing.T) {
		alert := findAlert(Analyze(makeTasks(5, withEstimate(100))), TimePressure)
		require.NotNil(t, alert)
		assert.Equal(t, "Time Pressure Alert", alert.Title)
		assert.Equal(t, SeverityMedium, alert.Severity)
		assert.Equal(t, "Estimated 8 hours of work may be overwhelming for one day.", alert.Message)
	})

	t.Run("far over the daily commitment", func(t *testing.T) {
		alert := findAlert(Analyze(makeTasks(8, withEstimate(100))), TimePressure)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityHigh, alert.Severity)
		assert.Equal(t, "Estimated 13 hours of work may be overwhelming for one day.", alert.Message)
	})

	t.Run("urgent time crunch", func(t *testing.T) {
		urgent := makeTasks(3, withLane(domain.LaneUrgentImportant), withEstimate(90))
		alert := findAlert(Analyze(concat(urgent, makeTasks(1, withEstimate(60)))), TimePressure)
		require.NotNil(t, alert)
		assert.Equal(t, "Urgent Time Crunch", alert.Title)
		assert.Equal(t, SeverityHigh, alert.Severity)
		assert.Equal(t, "5 hours of urgent tasks require immediate attention.", alert.Message)
		assert.Equal(t, taskIDs(urgent), alert.AffectedTasks)
	})

	t.Run("done work is not counted", func(t *testing.T) {
		tasks := makeTasks(10, withStatus(domain.StatusDone), withEstimate(120))
		assert.Nil(t, findAlert(Analyze(tasks), TimePressure))
	})
}

func TestAnalyzeOrder(t *testing.T) {
	tasks := concat(
		makeTasks(13, withLane(domain.LaneUrgentImportant), withDifficulty(domain.DifficultyHard),
			withEnergy(domain.EnergyHigh), withEstimate(60)),
	)

	alerts := Analyze(tasks)
	require.Len(t, alerts, 5)
	assert.Equal(t, []AlertType{TaskOverload, HighUrgencyConcentration, ComplexityBuildup, EnergyMismatch, TimePressure},
		[]AlertType{alerts[0].Type, alerts[1].Type, alerts[2].Type, alerts[3].Type, alerts[4].Type})
}

func TestCustomRules(t *testing.T) {
	d := NewDetector(DefaultThresholds(), energyRule{})
	alerts := d.Analyze(concat(makeTasks(13), makeTasks(1, withEnergy(domain.EnergyHigh))))
	assert.Empty(t, alerts, "only the energy rule runs")
}

func TestReportQuickActions(t *testing.T) {
	tasks := concat(
		makeTasks(13),
		makeTasks(1, withStatus(domain.StatusInProgress)),
	)
	report := NewDetector(DefaultThresholds()).Report(tasks)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, 13, report.Metrics.TodoTasks)
	require.Len(t, report.QuickActions, 3)
	assert.Equal(t, QuickAction{Label: "Move to Schedule", Action: "move_to_schedule", AlertType: TaskOverload},
		report.QuickActions[0])
}

func TestQuickActionsDeduplicates(t *testing.T) {
	alerts := []Alert{{Type: TimePressure}, {Type: TimePressure}, {Type: EnergyMismatch}}
	actions := QuickActions(alerts)
	assert.Len(t, actions, 5)
	assert.Equal(t, "spread_tasks", actions[0].Action)
	assert.Equal(t, "add_low_energy", actions[3].Action)
	assert.NotNil(t, QuickActions(nil))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Crisis Mode", Label(HighUrgencyConcentration))
	assert.Equal(t, "Time Pressure", Label(TimePressure))
	assert.Equal(t, "Alert", Label("unknown"))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3, round(2.5))
	assert.Equal(t, 2, round(2.49))
	assert.Equal(t, 67, round(200.0/3.0))
}
