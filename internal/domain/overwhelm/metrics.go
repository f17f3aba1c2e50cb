package overwhelm

import "github.com/eisenboard/eisenboard-api/internal/domain"

// Metrics summarizes the load on the board. Everything except the todo and
// in-progress counts considers active (not done) tasks only.
type Metrics struct {
	TotalTasks            int     `json:"totalTasks"`
	TodoTasks             int     `json:"todoTasks"`
	InProgressTasks       int     `json:"inProgressTasks"`
	UrgentImportantTasks  int     `json:"urgentImportantTasks"`
	HighEnergyTasks       int     `json:"highEnergyTasks"`
	TotalEstimatedMinutes int     `json:"totalEstimatedMinutes"`
	AverageComplexity     float64 `json:"averageComplexity"`
	TasksWithoutEstimates int     `json:"tasksWithoutEstimates"`
}

// ComputeMetrics derives Metrics from the task list. Difficulty scores
// easy=1, medium=2, hard=3 and tasks without a difficulty are left out of
// the average.
func ComputeMetrics(tasks []*domain.Task) Metrics {
	var m Metrics
	complexitySum, rated := 0, 0

	for _, t := range tasks {
		switch t.Status {
		case domain.StatusTodo:
			m.TodoTasks++
		case domain.StatusInProgress:
			m.InProgressTasks++
		}

		if !t.IsActive() {
			continue
		}
		m.TotalTasks++

		if t.Lane == domain.LaneUrgentImportant {
			m.UrgentImportantTasks++
		}
		if t.EnergyLevel == domain.EnergyHigh {
			m.HighEnergyTasks++
		}
		if t.HasEstimate() {
			m.TotalEstimatedMinutes += *t.EstimatedMinutes
		} else {
			m.TasksWithoutEstimates++
		}
		if score := complexityScore(t.Difficulty); score > 0 {
			complexitySum += score
			rated++
		}
	}

	if rated > 0 {
		m.AverageComplexity = float64(complexitySum) / float64(rated)
	}
	return m
}

func complexityScore(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 1
	case domain.DifficultyMedium:
		return 2
	case domain.DifficultyHard:
		return 3
	}
	return 0
}

// activeTasks returns the tasks that are not done, in input order.
func activeTasks(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

func taskIDs(tasks []*domain.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID.String())
	}
	return ids
}
