package domain

// Stats is a summary derived from a task list. It is never a source of truth.
type Stats struct {
	Total        int
	Completed    int
	Pending      int
	HighPriority int
}
