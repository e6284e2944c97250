package enums

import (
	"fmt"
	"strings"
)

type TodoPriority string

const (
	TodoPriorityHigh   TodoPriority = "HIGH"
	TodoPriorityMedium TodoPriority = "MEDIUM"
	TodoPriorityLow    TodoPriority = "LOW"
)

func (p TodoPriority) String() string {
	return string(p)
}

func (p TodoPriority) IsValid() bool {
	switch p {
	case TodoPriorityHigh, TodoPriorityMedium, TodoPriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities with HIGH first.
func (p TodoPriority) Rank() int {
	switch p {
	case TodoPriorityHigh:
		return 0
	case TodoPriorityMedium:
		return 1
	default:
		return 2
	}
}

func ParseTodoPriority(value string) (TodoPriority, error) {
	p := TodoPriority(strings.ToUpper(strings.TrimSpace(value)))
	if p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("invalid todo priority %q", value)
}
