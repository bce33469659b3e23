package domain

import (
	"strings"
	"time"
)

// Priority represents todo priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// ParsePriority accepts low, medium or high in any case.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	}
	return "", false
}

// Todo is a user-owned item on the list
type Todo struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"userId" gorm:"not null;index:idx_todos_user_completed,priority:1;index:idx_todos_user_priority,priority:1;index:idx_todos_user_order,priority:1"`
	Title        string     `json:"title" gorm:"size:100;not null"`
	Description  string     `json:"description,omitempty" gorm:"size:500"`
	Completed    bool       `json:"completed" gorm:"not null;default:false;index:idx_todos_user_completed,priority:2"`
	Priority     Priority   `json:"priority" gorm:"size:10;not null;default:medium;index:idx_todos_user_priority,priority:2"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Order        int        `json:"order" gorm:"column:display_order;not null;default:0;index:idx_todos_user_order,priority:2"`
	ReminderSent bool       `json:"-" gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index:idx_todos_user_completed,priority:3"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Stats summarizes a user's list.
type Stats struct {
	Total          int64 `json:"total"`
	Active         int64 `json:"active"`
	Completed      int64 `json:"completed"`
	CompletionRate int   `json:"completionRate"` // rounded percent
}
