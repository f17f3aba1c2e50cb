package overwhelm

import (
	"fmt"

	"github.com/eisenboard/eisenboard-api/internal/domain"
)

type taskOverloadRule struct{}

func (taskOverloadRule) Type() AlertType { return TaskOverload }

func (taskOverloadRule) Evaluate(in Input) *Alert {
	m, th := in.Metrics, in.Thresholds

	if m.TodoTasks > th.MaxTodoTasks {
		severity := SeverityMedium
		if float64(m.TodoTasks) > float64(th.MaxTodoTasks)*1.5 {
			severity = SeverityHigh
		}
		return &Alert{
			Type:     TaskOverload,
			Severity: severity,
			Title:    "Task Overload Detected",
			Message: fmt.Sprintf(
				"You have %d pending tasks. ADHD research suggests keeping active tasks under %d for better focus.",
				m.TodoTasks, th.MaxTodoTasks,
			),
			Suggestions: []string{
				"Move some tasks to the 'Schedule' or 'Eliminate' quadrants",
				"Use AI breakdown to split large tasks into smaller ones",
				"Consider completing some quick wins first",
				"Archive or defer non-essential tasks",
			},
		}
	}

	if m.InProgressTasks > th.MaxInProgress {
		return &Alert{
			Type:     TaskOverload,
			Severity: SeverityMedium,
			Title:    "Too Many Active Tasks",
			Message: fmt.Sprintf(
				"You have %d tasks in progress. ADHD minds work best with 1-3 active tasks to avoid context switching.",
				m.InProgressTasks,
			),
			Suggestions: []string{
				"Complete one task before starting another",
				"Move some in-progress tasks back to 'Todo'",
				"Use timeboxing to focus on one task at a time",
			},
		}
	}

	return nil
}

type urgencyRule struct{}

func (urgencyRule) Type() AlertType { return HighUrgencyConcentration }

func (urgencyRule) Evaluate(in Input) *Alert {
	m, th := in.Metrics, in.Thresholds
	if m.UrgentImportantTasks <= th.MaxUrgentImportant {
		return nil
	}

	var urgent []*domain.Task
	for _, t := range in.Tasks {
		if t.Lane == domain.LaneUrgentImportant && t.IsActive() {
			urgent = append(urgent, t)
		}
	}

	severity := SeverityMedium
	if float64(m.UrgentImportantTasks) > float64(th.MaxUrgentImportant)*1.5 {
		severity = SeverityHigh
	}
	return &Alert{
		Type:     HighUrgencyConcentration,
		Severity: severity,
		Title:    "Crisis Mode Detected",
		Message: fmt.Sprintf(
			"%d urgent & important tasks may cause stress and decision paralysis.",
			m.UrgentImportantTasks,
		),
		Suggestions: []string{
			"Prioritize the top 3 most critical tasks",
			"Break down large urgent tasks into smaller steps",
			"Delegate or renegotiate deadlines where possible",
			"Focus on one urgent task at a time",
		},
		AffectedTasks: taskIDs(urgent),
	}
}

type complexityRule struct{}

func (complexityRule) Type() AlertType { return ComplexityBuildup }

func (complexityRule) Evaluate(in Input) *Alert {
	th := in.Thresholds
	active := activeTasks(in.Tasks)

	var hard []*domain.Task
	complexCount := 0
	for _, t := range active {
		switch t.Difficulty {
		case domain.DifficultyHard:
			hard = append(hard, t)
			complexCount++
		case domain.DifficultyMedium:
			complexCount++
		}
	}

	ratio := 0.0
	if len(active) > 0 {
		ratio = float64(complexCount) / float64(len(active))
	}

	if len(hard) <= th.MaxHardTasks && ratio <= th.HighComplexityRatio {
		return nil
	}

	severity := SeverityMedium
	if float64(len(hard)) > float64(th.MaxHardTasks)*1.5 {
		severity = SeverityHigh
	}
	return &Alert{
		Type:     ComplexityBuildup,
		Severity: severity,
		Title:    "High Complexity Load",
		Message: fmt.Sprintf(
			"%d hard tasks and %d%% complex tasks may cause cognitive overload.",
			len(hard), round(ratio*100),
		),
		Suggestions: []string{
			"Break down hard tasks into smaller, easier subtasks",
			"Alternate between hard and easy tasks",
			"Schedule complex tasks for your peak energy hours",
			"Consider asking for help or collaboration on difficult tasks",
		},
		AffectedTasks: taskIDs(hard),
	}
}

type energyRule struct{}

func (energyRule) Type() AlertType { return EnergyMismatch }

func (energyRule) Evaluate(in Input) *Alert {
	active := in.Metrics.TotalTasks
	if active == 0 {
		return nil
	}

	ratio := float64(in.Metrics.HighEnergyTasks) / float64(active)
	if ratio <= in.Thresholds.MaxHighEnergyRatio {
		return nil
	}

	return &Alert{
		Type:     EnergyMismatch,
		Severity: SeverityMedium,
		Title:    "Energy Demand Mismatch",
		Message: fmt.Sprintf(
			"%d%% of your tasks require high energy. This may lead to burnout.",
			round(ratio*100),
		),
		Suggestions: []string{
			"Mix in some low-energy tasks for balance",
			"Schedule high-energy tasks for your peak hours",
			"Consider your natural energy cycles (morning vs. afternoon)",
			"Take breaks between demanding tasks",
		},
	}
}

type timePressureRule struct{}

func (timePressureRule) Type() AlertType { return TimePressure }

func (timePressureRule) Evaluate(in Input) *Alert {
	m, th := in.Metrics, in.Thresholds

	if m.TotalEstimatedMinutes > th.MaxDailyCommitment {
		severity := SeverityMedium
		if float64(m.TotalEstimatedMinutes) > float64(th.MaxDailyCommitment)*1.5 {
			severity = SeverityHigh
		}
		return &Alert{
			Type:     TimePressure,
			Severity: severity,
			Title:    "Time Pressure Alert",
			Message: fmt.Sprintf(
				"Estimated %d hours of work may be overwhelming for one day.",
				round(float64(m.TotalEstimatedMinutes)/60),
			),
			Suggestions: []string{
				"Spread tasks across multiple days",
				"Identify which tasks can be moved to 'Schedule' quadrant",
				"Use AI breakdown to find quick wins",
				"Consider what can be delegated or eliminated",
			},
		}
	}

	var urgent []*domain.Task
	urgentMinutes := 0
	for _, t := range in.Tasks {
		if t.Lane == domain.LaneUrgentImportant && t.IsActive() && t.HasEstimate() {
			urgent = append(urgent, t)
			urgentMinutes += *t.EstimatedMinutes
		}
	}

	if urgentMinutes <= th.HighTimePressure {
		return nil
	}

	return &Alert{
		Type:     TimePressure,
		Severity: SeverityHigh,
		Title:    "Urgent Time Crunch",
		Message: fmt.Sprintf(
			"%d hours of urgent tasks require immediate attention.",
			round(float64(urgentMinutes)/60),
		),
		Suggestions: []string{
			"Focus only on truly urgent tasks today",
			"Break down urgent tasks to find quickest wins",
			"Communicate with stakeholders about capacity",
			"Defer non-urgent work to reduce pressure",
		},
		AffectedTasks: taskIDs(urgent),
	}
}
