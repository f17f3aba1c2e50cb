package assist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/eisenboard/eisenboard-api/internal/domain"
)

// Fallback values used when the model cannot be understood.
const (
	FallbackLane      = domain.LaneImportantNotUrgent
	FallbackReasoning = "Could not determine category automatically, defaulting to Important but Not Urgent"

	UntitledSubtask = "Untitled Subtask"

	DefaultSubtaskTitle       = "Review and plan the task details"
	DefaultSubtaskDescription = "Break down the requirements and create an action plan"

	// MaxTextSubtasks caps how many subtasks the free-text parser keeps.
	MaxTextSubtasks = 6
)

// Categorization is the lane the model picked for a task.
type Categorization struct {
	Lane      domain.Lane `json:"lane"`
	Reasoning string      `json:"reasoning"`
	// Fallback is set when the lane is the default rather than the model's answer.
	Fallback bool `json:"fallback"`
}

// FallbackCategorization is returned whenever categorization fails.
func FallbackCategorization() Categorization {
	return Categorization{Lane: FallbackLane, Reasoning: FallbackReasoning, Fallback: true}
}

// BreakdownItem is one subtask proposed by the breakdown prompt.
type BreakdownItem struct {
	Title     string      `json:"title"`
	Lane      domain.Lane `json:"lane"`
	Reasoning string      `json:"reasoning"`
}

// Breakdown is the parsed reply to the breakdown prompt.
type Breakdown struct {
	Subtasks        []BreakdownItem `json:"subtasks"`
	OverallApproach string          `json:"overall_approach"`
}

// Subtask is one item proposed by the expand prompt.
type Subtask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ParseCategorization decodes a {lane, reasoning} reply.
// The lane must be one of the four known lanes.
func ParseCategorization(content string) (Categorization, error) {
	var raw struct {
		Lane      string `json:"lane"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return Categorization{}, fmt.Errorf("%w: failed to parse categorization: %v", ErrInvalidResponse, err)
	}
	lane := domain.Lane(raw.Lane)
	if !lane.IsValid() {
		return Categorization{}, fmt.Errorf("%w: invalid lane %q", ErrInvalidResponse, raw.Lane)
	}
	return Categorization{Lane: lane, Reasoning: raw.Reasoning}, nil
}

// ParseBreakdown decodes a breakdown reply. Every subtask needs a title
// and a valid lane, otherwise the whole reply is rejected.
func ParseBreakdown(content string) (Breakdown, error) {
	var raw struct {
		Subtasks []struct {
			Title     string `json:"title"`
			Lane      string `json:"lane"`
			Reasoning string `json:"reasoning"`
		} `json:"subtasks"`
		OverallApproach string `json:"overall_approach"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return Breakdown{}, fmt.Errorf("%w: failed to parse breakdown: %v", ErrInvalidResponse, err)
	}
	if raw.Subtasks == nil {
		return Breakdown{}, fmt.Errorf("%w: missing subtasks array", ErrInvalidResponse)
	}

	out := Breakdown{
		Subtasks:        make([]BreakdownItem, 0, len(raw.Subtasks)),
		OverallApproach: raw.OverallApproach,
	}
	for i, s := range raw.Subtasks {
		lane := domain.Lane(s.Lane)
		if strings.TrimSpace(s.Title) == "" || !lane.IsValid() {
			return Breakdown{}, fmt.Errorf("%w: invalid subtask %d", ErrInvalidResponse, i)
		}
		out.Subtasks = append(out.Subtasks, BreakdownItem{
			Title:     strings.TrimSpace(s.Title),
			Lane:      lane,
			Reasoning: s.Reasoning,
		})
	}
	return out, nil
}

var (
	openFence  = regexp.MustCompile("```json\\s*")
	closeFence = regexp.MustCompile("```\\s*$")
)

// StripCodeFence removes the first ```json marker and a trailing ``` so a
// fenced JSON reply can be decoded.
func StripCodeFence(content string) string {
	if loc := openFence.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + content[loc[1]:]
	}
	content = closeFence.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// ParseSubtasks decodes an expand reply. When the reply is not the
// expected JSON it falls back to ExtractSubtasks, so the result is never
// empty.
func ParseSubtasks(content string) []Subtask {
	subtasks, err := parseSubtasksJSON(content)
	if err != nil {
		return ExtractSubtasks(content)
	}
	return subtasks
}

func parseSubtasksJSON(content string) ([]Subtask, error) {
	var raw struct {
		Subtasks []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if raw.Subtasks == nil {
		return nil, fmt.Errorf("%w: missing subtasks array", ErrInvalidResponse)
	}

	out := make([]Subtask, 0, len(raw.Subtasks))
	for _, s := range raw.Subtasks {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = UntitledSubtask
		}
		out = append(out, Subtask{Title: title, Description: s.Description})
	}
	return out, nil
}

var (
	listItem   = regexp.MustCompile(`^(?:\d+\.|-|\*)\s*(.+)$`)
	actionLine = regexp.MustCompile(`^[A-Z][a-z]+\s+.+`)
)

// ExtractSubtasks pulls subtasks out of a free-form reply: numbered or
// bulleted lines, or lines that start with a capitalised word. Fragments
// of three characters or fewer are skipped and at most MaxTextSubtasks are
// kept. When nothing is found a single planning subtask is returned.
func ExtractSubtasks(content string) []Subtask {
	var out []Subtask
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var title string
		if m := listItem.FindStringSubmatch(line); m != nil {
			title = m[1]
		} else if actionLine.MatchString(line) {
			title = line
		} else {
			continue
		}

		title = strings.TrimSpace(title)
		if len([]rune(title)) > 3 {
			out = append(out, Subtask{Title: title})
		}
	}

	if len(out) == 0 {
		return []Subtask{{Title: DefaultSubtaskTitle, Description: DefaultSubtaskDescription}}
	}
	if len(out) > MaxTextSubtasks {
		out = out[:MaxTextSubtasks]
	}
	return out
}

// ProxyResult decodes content as a JSON object when possible, otherwise
// wraps the raw text as {"content": ...}.
func ProxyResult(content string) any {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed
	}
	return map[string]string{"content": content}
}
