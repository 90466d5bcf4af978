package models

import "fmt"

// TaskPriority is stored and transported by name; Weight gives its sort order.
type TaskPriority string

const (
	PriorityUsual     TaskPriority = "USUAL"
	PriorityImportant TaskPriority = "IMPORTANT"
	PriorityUrgent    TaskPriority = "URGENT"
)

var priorityWeights = [...]struct {
	priority TaskPriority
	weight   int
}{
	{PriorityUsual, 1},
	{PriorityImportant, 5},
	{PriorityUrgent, 10},
}

// Priorities returns the enumeration in declaration order.
func Priorities() []TaskPriority {
	out := make([]TaskPriority, len(priorityWeights))
	for i, pw := range priorityWeights {
		out[i] = pw.priority
	}
	return out
}

// Weight returns the sort weight, or 0 for an unknown priority.
func (p TaskPriority) Weight() int {
	for _, pw := range priorityWeights {
		if pw.priority == p {
			return pw.weight
		}
	}
	return 0
}

func (p TaskPriority) Valid() bool {
	return p.Weight() > 0
}

func ParsePriority(s string) (TaskPriority, error) {
	p := TaskPriority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown task priority %q", s)
	}
	return p, nil
}
