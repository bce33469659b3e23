package domain

// Sort keys accepted by list queries.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortDueDate   = "dueDate"
	SortPriority  = "priority"
	SortTitle     = "title"
	SortOrder     = "order"
)

var sortKeys = map[string]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortDueDate:   true,
	SortPriority:  true,
	SortTitle:     true,
	SortOrder:     true,
}

// ValidSortKey reports whether key is a supported sortBy value.
func ValidSortKey(key string) bool {
	return sortKeys[key]
}

// ListFilter narrows and orders a user's todos.
type ListFilter struct {
	Completed *bool
	Priority  *Priority
	SortBy    string
	Ascending bool
}
