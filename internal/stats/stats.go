// Package stats derives the statistics summary from a task list.
package stats

import "taskflow/internal/domain"

// Compute counts tasks. The result depends only on the multiset of tasks,
// never on their order.
func Compute(tasks []domain.Task) domain.Stats {
	var s domain.Stats
	for _, t := range tasks {
		s.Total++
		if t.IsCompleted {
			s.Completed++
		}
		if t.Priority == domain.PriorityHigh {
			s.HighPriority++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
