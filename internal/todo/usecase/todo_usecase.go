package usecase

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/dto"
	"minimalist-backend/internal/todo/repository"
	"minimalist-backend/pkg/fuzzy"

	"go.uber.org/zap"
)

const dateOnlyLayout = "2006-01-02"

// todoUsecase implements TodoUsecase
type todoUsecase struct {
	todoRepo repository.TodoRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewTodoUsecase creates a new TodoUsecase
func NewTodoUsecase(todoRepo repository.TodoRepository, logger *zap.Logger) TodoUsecase {
	return &todoUsecase{
		todoRepo: todoRepo,
		logger:   logger.Named("todo"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *todoUsecase) ListTodos(ctx context.Context, userID string, filter domain.ListFilter) ([]*domain.Todo, error) {
	if filter.SortBy == "" {
		filter.SortBy = domain.SortCreatedAt
	}
	if !domain.ValidSortKey(filter.SortBy) {
		return nil, domain.NewValidationError("sortBy", "Invalid sortBy value")
	}
	return u.todoRepo.List(ctx, userID, filter)
}

func (u *todoUsecase) GetTodo(ctx context.Context, userID, id string) (*domain.Todo, error) {
	todo, err := u.todoRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, domain.ErrTodoNotFound
	}
	return todo, nil
}

func (u *todoUsecase) CreateTodo(ctx context.Context, userID string, req dto.CreateTodoRequest) (*domain.Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "Title is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		p, ok := domain.ParsePriority(req.Priority)
		if !ok {
			return nil, invalidPriority()
		}
		priority = p
	}

	todo := &domain.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    priority,
	}

	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, err := u.parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		todo.DueDate = &due
	}

	// New todos go to the top of the manual order
	minOrder, ok, err := u.todoRepo.MinOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		todo.Order = minOrder - 1
	}

	if err := u.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}
	u.logger.Debug("todo created", zap.String("user_id", userID), zap.String("todo_id", todo.ID))
	return todo, nil
}

func (u *todoUsecase) UpdateTodo(ctx context.Context, userID, id string, req dto.UpdateTodoRequest) (*domain.Todo, error) {
	todo, err := u.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.NewValidationError("title", "Title cannot be empty")
		}
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		todo.Title = title
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		todo.Description = description
	}

	if req.Priority != nil {
		p, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			return nil, invalidPriority()
		}
		todo.Priority = p
	}

	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			todo.DueDate = nil
		} else {
			due, err := u.parseDueDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			if todo.DueDate == nil || !todo.DueDate.Equal(due) {
				todo.ReminderSent = false
			}
			todo.DueDate = &due
		}
	}

	if err := u.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (u *todoUsecase) ToggleTodo(ctx context.Context, userID, id string) (*domain.Todo, error) {
	todo, err := u.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	todo.Completed = !todo.Completed
	if err := u.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (u *todoUsecase) DeleteTodo(ctx context.Context, userID, id string) (*domain.Todo, error) {
	todo, err := u.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	deleted, err := u.todoRepo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domain.ErrTodoNotFound
	}
	return todo, nil
}

func (u *todoUsecase) ReorderTodos(ctx context.Context, userID string, ids []string) ([]*domain.Todo, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "ids must be a non-empty array")
	}

	all, err := u.todoRepo.ListManualOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	ordered, changes, err := applyReorder(all, ids)
	if err != nil {
		return nil, err
	}

	if err := u.todoRepo.UpdateOrders(ctx, userID, changes); err != nil {
		return nil, err
	}
	u.logger.Debug("todos reordered",
		zap.String("user_id", userID),
		zap.Int("requested", len(ids)),
		zap.Int("written", len(changes)),
	)
	return ordered, nil
}

// applyReorder moves the todos named by ids into the positions they already
// occupy in all (which must be in manual order), keeping every other todo in
// place. It renumbers the result 0..n-1 and returns the new sequence together
// with the order values that changed.
func applyReorder(all []*domain.Todo, ids []string) ([]*domain.Todo, map[string]int, error) {
	index := make(map[string]int, len(all))
	for i, t := range all {
		index[t.ID] = i
	}

	seen := make(map[string]bool, len(ids))
	slots := make([]int, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, nil, domain.NewValidationError("ids", "ids must not contain empty values")
		}
		if seen[id] {
			return nil, nil, domain.NewValidationError("ids", "ids must not contain duplicates")
		}
		seen[id] = true

		pos, ok := index[id]
		if !ok {
			return nil, nil, domain.ErrTodoNotFound
		}
		slots = append(slots, pos)
	}
	sort.Ints(slots)

	ordered := make([]*domain.Todo, len(all))
	copy(ordered, all)
	for i, id := range ids {
		ordered[slots[i]] = all[index[id]]
	}

	changes := make(map[string]int)
	now := time.Now().UTC()
	for i, t := range ordered {
		if t.Order != i {
			changes[t.ID] = i
			t.Order = i
			t.UpdatedAt = now
		}
	}
	return ordered, changes, nil
}

func (u *todoUsecase) SearchTodos(ctx context.Context, userID, query string, limit int) ([]*domain.Todo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("q", "Search query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	todos, err := u.todoRepo.ListManualOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		todo  *domain.Todo
		score float64
	}
	var matches []scored
	for _, t := range todos {
		if score := fuzzy.RelevanceScore(query, t.Title, t.Description); score > 0 {
			matches = append(matches, scored{todo: t, score: score})
		}
	}

	// Stable so equal scores keep manual order
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]*domain.Todo, 0, min(limit, len(matches)))
	for i := 0; i < len(matches) && i < limit; i++ {
		results = append(results, matches[i].todo)
	}
	return results, nil
}

func (u *todoUsecase) GetStats(ctx context.Context, userID string) (*domain.Stats, error) {
	return u.todoRepo.Stats(ctx, userID)
}

// parseDueDate accepts RFC3339 timestamps or plain dates (midnight UTC)
// and requires the result to lie in the future.
func (u *todoUsecase) parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	due, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		due, err = time.Parse(dateOnlyLayout, raw)
		if err != nil {
			return time.Time{}, domain.NewValidationError("dueDate", "Due date must be a valid date")
		}
	}
	due = due.UTC()
	if !due.After(u.now()) {
		return time.Time{}, domain.NewValidationError("dueDate", "Due date must be in the future")
	}
	return due, nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return domain.NewValidationError("title", "Title must be 100 characters or less")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return domain.NewValidationError("description", "Description must be 500 characters or less")
	}
	return nil
}

func invalidPriority() error {
	return domain.NewValidationError("priority", "Priority must be low, medium, or high")
}
