package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"minimalist-backend/internal/todo/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const priorityRankSQL = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM-based TodoRepository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindByID(ctx context.Context, userID, id string) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &todo, nil
}

func (r *gormTodoRepository) List(ctx context.Context, userID string, filter domain.ListFilter) ([]*domain.Todo, error) {
	query := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", userID)

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}

	switch filter.SortBy {
	case domain.SortUpdatedAt:
		query = query.Order("updated_at " + dir)
	case domain.SortDueDate:
		// Undated todos always go last
		query = query.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").Order("due_date " + dir)
	case domain.SortPriority:
		query = query.Order(priorityRankSQL + " " + dir)
	case domain.SortTitle:
		query = query.Order("LOWER(title) " + dir)
	case domain.SortOrder:
		query = query.Order("display_order " + dir)
	case domain.SortCreatedAt, "":
		query = query.Order("created_at " + dir)
	default:
		return nil, fmt.Errorf("unsupported sort key %q", filter.SortBy)
	}

	var todos []*domain.Todo
	err := query.Order("created_at DESC").Order("id ASC").Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) ListManualOrder(ctx context.Context, userID string) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("display_order ASC").Order("created_at DESC").Order("id ASC").
		Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) MinOrder(ctx context.Context, userID string) (int, bool, error) {
	var result struct {
		Count    int64
		MinOrder *int
	}
	err := r.db.WithContext(ctx).Model(&domain.Todo{}).
		Select("COUNT(*) AS count, MIN(display_order) AS min_order").
		Where("user_id = ?", userID).
		Scan(&result).Error
	if err != nil {
		return 0, false, err
	}
	if result.Count == 0 || result.MinOrder == nil {
		return 0, false, nil
	}
	return *result.MinOrder, true, nil
}

// editableColumns are the columns Update writes. display_order is owned by
// UpdateOrders so an edit never writes back an order it read earlier.
var editableColumns = []string{"Title", "Description", "Completed", "Priority", "DueDate", "ReminderSent", "UpdatedAt"}

func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	res := r.db.WithContext(ctx).
		Model(todo).
		Where("user_id = ?", todo.UserID).
		Select(editableColumns).
		Updates(todo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Todo{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateOrders is all-or-nothing: if any id is missing for userID the
// transaction rolls back with ErrTodoNotFound.
func (r *gormTodoRepository) UpdateOrders(ctx context.Context, userID string, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for id, order := range orders {
			res := tx.Model(&domain.Todo{}).
				Where("id = ? AND user_id = ?", id, userID).
				Updates(map[string]interface{}{
					"display_order": order,
					"updated_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrTodoNotFound
			}
		}
		return nil
	})
}

func (r *gormTodoRepository) Stats(ctx context.Context, userID string) (*domain.Stats, error) {
	var rows []struct {
		Completed bool
		Count     int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Todo{}).
		Select("completed, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("completed").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{}
	for _, row := range rows {
		if row.Completed {
			stats.Completed += row.Count
		} else {
			stats.Active += row.Count
		}
	}
	stats.Total = stats.Active + stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}

func (r *gormTodoRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := r.db.WithContext(ctx).
		Where("completed = ? AND reminder_sent = ? AND due_date IS NOT NULL AND due_date > ? AND due_date <= ?",
			false, false, from, to).
		Order("due_date ASC").
		Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) MarkReminderSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Todo{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"updated_at":    time.Now().UTC(),
		}).Error
}
