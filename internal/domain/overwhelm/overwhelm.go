// Package overwhelm inspects a task list for patterns that tend to leave a
// person stuck: too many open tasks, a crisis-heavy board, piles of hard
// work, energy-hungry tasks and more estimated work than fits in a day.
//
// Evaluation is pure. Each rule compares a handful of counts against fixed
// thresholds and yields at most one Alert.
package overwhelm

import (
	"math"

	"github.com/eisenboard/eisenboard-api/internal/domain"
)

// AlertType names the pattern an alert was raised for.
type AlertType string

// Possible alert types, in evaluation order.
const (
	TaskOverload             AlertType = "task_overload"
	HighUrgencyConcentration AlertType = "high_urgency_concentration"
	ComplexityBuildup        AlertType = "complexity_buildup"
	EnergyMismatch           AlertType = "energy_mismatch"
	TimePressure             AlertType = "time_pressure"
)

// Severity grades an alert.
type Severity string

// Possible severities
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is a single overwhelm warning with remediation suggestions.
type Alert struct {
	Type          AlertType `json:"type"`
	Severity      Severity  `json:"severity"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Suggestions   []string  `json:"suggestions"`
	AffectedTasks []string  `json:"affectedTasks,omitempty"`
}

// Thresholds holds the limits the rules compare against.
type Thresholds struct {
	MaxTodoTasks        int
	MaxInProgress       int
	MaxDailyCommitment  int // minutes
	HighTimePressure    int // minutes of urgent work
	MaxUrgentImportant  int
	MaxHighEnergyRatio  float64
	MaxHardTasks        int
	HighComplexityRatio float64
}

// DefaultThresholds returns the fixed limits the board is tuned for.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTodoTasks:        12,
		MaxInProgress:       3,
		MaxDailyCommitment:  480,
		HighTimePressure:    240,
		MaxUrgentImportant:  5,
		MaxHighEnergyRatio:  0.7,
		MaxHardTasks:        4,
		HighComplexityRatio: 0.6,
	}
}

// Rule detects one overwhelm pattern.
type Rule interface {
	Type() AlertType
	Evaluate(in Input) *Alert
}

// Input is what every rule sees: the raw tasks, the precomputed metrics
// and the thresholds in force.
type Input struct {
	Tasks      []*domain.Task
	Metrics    Metrics
	Thresholds Thresholds
}

// Detector runs an ordered set of rules.
type Detector struct {
	thresholds Thresholds
	rules      []Rule
}

// NewDetector creates a Detector with the default rules in their fixed
// order. Passing rules replaces the defaults.
func NewDetector(thresholds Thresholds, rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{thresholds: thresholds, rules: rules}
}

// DefaultRules returns the five built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		taskOverloadRule{},
		urgencyRule{},
		complexityRule{},
		energyRule{},
		timePressureRule{},
	}
}

// Analyze evaluates every rule and returns the raised alerts in rule order.
// An empty task list never raises anything.
func (d *Detector) Analyze(tasks []*domain.Task) []Alert {
	in := Input{Tasks: tasks, Metrics: ComputeMetrics(tasks), Thresholds: d.thresholds}
	alerts := make([]Alert, 0, len(d.rules))
	for _, rule := range d.rules {
		if a := rule.Evaluate(in); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

// Report bundles the metrics, alerts and deduplicated quick actions for
// one evaluation.
type Report struct {
	Metrics      Metrics       `json:"metrics"`
	Alerts       []Alert       `json:"alerts"`
	QuickActions []QuickAction `json:"quickActions"`
}

// Report evaluates the tasks and assembles a Report.
func (d *Detector) Report(tasks []*domain.Task) Report {
	alerts := d.Analyze(tasks)
	return Report{
		Metrics:      ComputeMetrics(tasks),
		Alerts:       alerts,
		QuickActions: QuickActions(alerts),
	}
}

// Analyze evaluates tasks with the default thresholds and rules.
func Analyze(tasks []*domain.Task) []Alert {
	return NewDetector(DefaultThresholds()).Analyze(tasks)
}

// round rounds halves up (2.5 -> 3, -2.5 -> -2).
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
