package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/employee-portal/internal/persistence"
)

// TaskRepository implements persistence.TaskRepository over SQLite.
type TaskRepository struct {
	store *Store
}

// NewTaskRepository returns a task repository backed by the store.
func NewTaskRepository(store *Store) *TaskRepository {
	return &TaskRepository{store: store}
}

const taskColumns = `id, title, description, assigned_to, assigned_by, due_date, status, created_at, updated_at`

// CreateTask inserts a work item.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID, task.Title, task.Description, task.AssignedTo, task.AssignedBy,
		encodeTimePtr(task.DueDate), task.Status,
		encodeTime(task.CreatedAt), encodeTime(task.UpdatedAt),
	)
	return mapError(err)
}

// UpdateTask rewrites the mutable fields of a work item.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, status = ?, updated_at = ?
		WHERE id = ?
	`,
		task.Title, task.Description, encodeTimePtr(task.DueDate), task.Status,
		encodeTime(task.UpdatedAt), task.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTask retrieves a work item by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks returns work items matching the filter, newest first.
func (r *TaskRepository) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`

	var (
		clauses []string
		args    []any
	)
	if filter.AssignedTo != "" {
		clauses = append(clauses, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if filter.AssignedBy != "" {
		clauses = append(clauses, "assigned_by = ?")
		args = append(args, filter.AssignedBy)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tasks []persistence.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a work item.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanTask(row rowScanner) (persistence.Task, error) {
	var (
		task      persistence.Task
		dueDate   sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.AssignedTo, &task.AssignedBy,
		&dueDate, &task.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Task{}, mapError(err)
	}

	if task.DueDate, err = decodeTimePtr(dueDate); err != nil {
		return persistence.Task{}, err
	}
	if task.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Task{}, err
	}
	if task.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}
