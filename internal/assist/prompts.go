package assist

import (
	"fmt"
	"strings"

	"github.com/eisenboard/eisenboard-api/internal/domain"
)

const categorizeTemplate = `You are an expert at categorizing tasks using the Eisenhower Matrix. Given a task, determine which quadrant it belongs to based on its urgency and importance.

The Eisenhower Matrix has four quadrants:
1. "urgent-important": Tasks that are both urgent and important - crises, deadlines, problems that need immediate attention
2. "important-not-urgent": Tasks that are important but not urgent - planning, prevention, improvement, development, relationships
3. "urgent-not-important": Tasks that are urgent but not important - interruptions, some emails/calls, some meetings
4. "neither": Tasks that are neither urgent nor important - time wasters, trivial tasks, excessive entertainment

%s

Analyze this task and respond with ONLY a JSON object in this exact format:
{
  "lane": "urgent-important" | "important-not-urgent" | "urgent-not-important" | "neither",
  "reasoning": "Brief explanation of why this task belongs in this quadrant"
}

Important: Respond ONLY with the JSON object, no additional text or markdown formatting.`

const breakdownTemplate = `You are an expert at breaking down complex tasks into actionable subtasks. Given a task, create a list of concrete, actionable steps needed to complete it.

%s%s

Break down this task into 3-7 actionable subtasks. Each subtask should be:
- Specific and concrete (can be completed in one work session)
- Action-oriented (starts with a verb)
- Independent when possible (can be worked on separately)
- Appropriately sized (not too granular, not too broad)

Respond with ONLY a JSON object in this exact format:
{
  "subtasks": [
    {
      "title": "Specific action to take",
      "lane": "urgent-important" | "important-not-urgent" | "urgent-not-important" | "neither",
      "reasoning": "Brief explanation of priority"
    }
  ],
  "overall_approach": "Brief explanation of the breakdown strategy"
}

Important: Respond ONLY with the JSON object, no additional text or markdown formatting.`

const expandTemplate = `You are a productivity expert helping break down a task into actionable subtasks.

%s

Please break this task down into 3-6 specific, actionable subtasks. Each subtask should:
- Be clear and actionable (start with a verb)
- Be completable in a reasonable amount of time
- Build logically toward completing the main task
- Be specific enough to know when it's done

Format your response as JSON with this exact structure:
{
  "subtasks": [
    {
      "title": "Clear, actionable subtask title",
      "description": "Brief description explaining what needs to be done (optional)"
    }
  ]
}

Respond only with valid JSON, no additional text.`

// taskContent renders the task block shared by every prompt.
func taskContent(title, description string) string {
	if description != "" {
		return fmt.Sprintf("Task: %s\nDescription: %s", title, description)
	}
	return "Task: " + title
}

// CategorizePrompt asks the model to place a task in one of the four lanes.
func CategorizePrompt(title, description string) string {
	return fmt.Sprintf(categorizeTemplate, taskContent(title, description))
}

// BreakdownPrompt asks for 3-7 lane-tagged subtasks. An empty lane omits
// the priority context line.
func BreakdownPrompt(title, description string, lane domain.Lane) string {
	laneContext := ""
	if lane != "" {
		laneContext = fmt.Sprintf("\nCurrent Priority: This task is in the %q quadrant.", lane.ContextLabel())
	}
	return fmt.Sprintf(breakdownTemplate, taskContent(title, description), laneContext)
}

// ExpandPrompt asks for 3-6 subtasks with optional descriptions.
func ExpandPrompt(title, description string) string {
	return fmt.Sprintf(expandTemplate, taskContent(title, description))
}

// PromptKind names the caller of a proxied prompt, for logs and metrics.
type PromptKind string

// Known prompt kinds
const (
	KindCategorize PromptKind = "categorize"
	KindBreakdown  PromptKind = "breakdown"
	KindExpand     PromptKind = "expand"
	KindProxy      PromptKind = "proxy"
)

// NormalizeKind maps free-form proxy types onto a bounded label set.
func NormalizeKind(raw string) PromptKind {
	switch PromptKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindCategorize:
		return KindCategorize
	case KindBreakdown:
		return KindBreakdown
	case KindExpand:
		return KindExpand
	}
	return KindProxy
}
