package overwhelm

// QuickAction is a one-click response offered next to an alert.
type QuickAction struct {
	Label     string    `json:"label"`
	Action    string    `json:"action"`
	AlertType AlertType `json:"alertType"`
}

type actionDef struct {
	label  string
	action string
}

var actionsByType = map[AlertType][]actionDef{
	TaskOverload: {
		{"Move to Schedule", "move_to_schedule"},
		{"Break Down Tasks", "breakdown_tasks"},
		{"Archive Non-Essential", "archive_tasks"},
	},
	HighUrgencyConcentration: {
		{"Prioritize Top 3", "prioritize_top_3"},
		{"Break Down Urgent", "breakdown_urgent"},
		{"Focus Mode", "focus_mode"},
	},
	ComplexityBuildup: {
		{"Break Down Hard Tasks", "breakdown_hard"},
		{"Mix Easy Tasks", "mix_easy_tasks"},
		{"Schedule Complex Work", "schedule_complex"},
	},
	EnergyMismatch: {
		{"Add Low-Energy Tasks", "add_low_energy"},
		{"Reschedule High-Energy", "reschedule_high_energy"},
	},
	TimePressure: {
		{"Spread Across Days", "spread_tasks"},
		{"Find Quick Wins", "find_quick_wins"},
		{"Defer Non-Urgent", "defer_tasks"},
	},
}

var labels = map[AlertType]string{
	TaskOverload:             "Task Overload",
	HighUrgencyConcentration: "Crisis Mode",
	ComplexityBuildup:        "High Complexity",
	EnergyMismatch:           "Energy Mismatch",
	TimePressure:             "Time Pressure",
}

// Label returns the short badge text for an alert type.
func Label(t AlertType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return "Alert"
}

// QuickActions lists the actions for the given alerts in alert order,
// keeping the first occurrence of each type and action pair.
func QuickActions(alerts []Alert) []QuickAction {
	seen := make(map[string]bool)
	out := []QuickAction{}
	for _, a := range alerts {
		for _, def := range actionsByType[a.Type] {
			key := string(a.Type) + "-" + def.action
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, QuickAction{Label: def.label, Action: def.action, AlertType: a.Type})
		}
	}
	return out
}
