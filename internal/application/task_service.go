package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

// TaskService assigns and tracks work items between users.
type TaskService struct {
	tasks       persistence.TaskRepository
	users       persistence.UserRepository
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

func NewTaskService(tasks persistence.TaskRepository, users persistence.UserRepository, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return randomHex(16) }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, users: users, notifier: notifier, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TaskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// AssignParams carries the fields of a new assignment.
type AssignParams struct {
	Title         string
	Description   string
	AssigneeEmail string
	DueDate       *time.Time
}

// Assign creates a task for the user identified by email, subject to the
// role matrix: Admins assign to Employees, SuperAdmins to Employees and
// Admins, nobody to themselves.
func (s *TaskService) Assign(ctx context.Context, actor Principal, params AssignParams) (created Task, err error) {
	logger := s.loggerWith(ctx, "Assign", "user_id", actor.UserID, "assignee_email", params.AssigneeEmail)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "task assign failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("task_id", created.ID).InfoContext(ctx, "task assigned")
	}()

	vErr := &ValidationError{}
	if params.Title == "" {
		vErr.add("title", "title is required")
	}
	if params.AssigneeEmail == "" {
		vErr.add("assignedTo", "assignee email is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	assignee, lookupErr := s.users.GetUserByEmail(ctx, normalizeEmail(params.AssigneeEmail))
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = lookupErr
		return
	}

	assigneeActor := policy.Actor{ID: assignee.ID, Role: policy.ParseRole(assignee.Role)}
	if !policy.CanAssignTask(actor.Actor(), assigneeActor) {
		err = ErrForbidden
		return
	}

	now := s.now()
	record := persistence.Task{
		ID:          s.idGenerator(),
		Title:       params.Title,
		Description: params.Description,
		AssignedTo:  assignee.ID,
		AssignedBy:  actor.UserID,
		DueDate:     params.DueDate,
		Status:      string(TaskOpen),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if createErr := s.tasks.CreateTask(ctx, record); createErr != nil {
		err = createErr
		return
	}

	due := "not set"
	if params.DueDate != nil {
		due = params.DueDate.Format("2006-01-02")
	}
	s.notifier.Send(ctx, assignee.Email, "New Task Assigned",
		fmt.Sprintf("<p>Dear %s,</p><p>You have been assigned a new task: <b>%s</b>.</p><p>Due date: %s.</p>",
			displayName(assignee), params.Title, due))

	created = s.taskFromRecord(record, assignee, nil)
	created.AssignedBy = UserSummary{ID: actor.UserID, Name: actor.Name, Email: actor.Email, Role: actor.Role}
	return
}

// UpdateStatus moves a task along its lifecycle. Only the assignee may do
// this; re-submitting the current status is a no-op, not an error.
func (s *TaskService) UpdateStatus(ctx context.Context, actor Principal, taskID, rawStatus string) (Task, error) {
	logger := s.loggerWith(ctx, "UpdateStatus", "user_id", actor.UserID, "task_id", taskID)

	status, ok := ParseTaskStatus(rawStatus)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("unknown status %q", rawStatus))
		return Task{}, vErr
	}

	record, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}

	if record.AssignedTo != actor.UserID {
		logger.ErrorContext(ctx, "status update denied", "error_kind", "forbidden")
		return Task{}, ErrForbidden
	}

	if record.Status != string(status) {
		record.Status = string(status)
		record.UpdatedAt = s.now()
		if err := s.tasks.UpdateTask(ctx, record); err != nil {
			return Task{}, err
		}
		logger.InfoContext(ctx, "task status updated", "status", string(status))
	}

	return s.resolveTask(ctx, record)
}

// Cancel deletes a task, subject to the cancellation matrix, and notifies
// both parties.
func (s *TaskService) Cancel(ctx context.Context, actor Principal, taskID string) error {
	logger := s.loggerWith(ctx, "Cancel", "user_id", actor.UserID, "task_id", taskID)

	record, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	assigner, err := s.users.GetUser(ctx, record.AssignedBy)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	assignerActor := policy.Actor{ID: assigner.ID, Role: policy.ParseRole(assigner.Role)}

	if !policy.CanCancelTask(actor.Actor(), assignerActor) {
		logger.ErrorContext(ctx, "task cancel denied", "error_kind", "forbidden")
		return ErrForbidden
	}

	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	body := fmt.Sprintf("<p>The task <b>%s</b> has been cancelled by %s.</p>", record.Title, actor.Name)
	if assignee, lookupErr := s.users.GetUser(ctx, record.AssignedTo); lookupErr == nil {
		s.notifier.Send(ctx, assignee.Email, "Task Cancelled", body)
	}
	if assigner.Email != "" && assigner.ID != actor.UserID {
		s.notifier.Send(ctx, assigner.Email, "Task Cancelled", body)
	}

	logger.InfoContext(ctx, "task cancelled")
	return nil
}

// ListMine returns tasks assigned to the acting user.
func (s *TaskService) ListMine(ctx context.Context, actor Principal) ([]Task, error) {
	records, err := s.tasks.ListTasks(ctx, persistence.TaskFilter{AssignedTo: actor.UserID})
	if err != nil {
		return nil, err
	}
	return s.resolveTasks(ctx, records)
}

// ListAll returns every task. Handlers restrict this to Admin/SuperAdmin.
func (s *TaskService) ListAll(ctx context.Context) ([]Task, error) {
	records, err := s.tasks.ListTasks(ctx, persistence.TaskFilter{})
	if err != nil {
		return nil, err
	}
	return s.resolveTasks(ctx, records)
}

func (s *TaskService) resolveTask(ctx context.Context, record persistence.Task) (Task, error) {
	tasks, err := s.resolveTasks(ctx, []persistence.Task{record})
	if err != nil {
		return Task{}, err
	}
	return tasks[0], nil
}

func (s *TaskService) resolveTasks(ctx context.Context, records []persistence.Task) ([]Task, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]persistence.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		task := Task{
			ID:          record.ID,
			Title:       record.Title,
			Description: record.Description,
			DueDate:     record.DueDate,
			Status:      TaskStatus(record.Status),
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		}
		if assignee, ok := usersByID[record.AssignedTo]; ok {
			task.AssignedTo = summaryFromRecord(assignee)
		}
		if assigner, ok := usersByID[record.AssignedBy]; ok {
			task.AssignedBy = summaryFromRecord(assigner)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *TaskService) taskFromRecord(record persistence.Task, assignee persistence.User, assigner *persistence.User) Task {
	task := Task{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		AssignedTo:  summaryFromRecord(assignee),
		DueDate:     record.DueDate,
		Status:      TaskStatus(record.Status),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	if assigner != nil {
		task.AssignedBy = summaryFromRecord(*assigner)
	}
	return task
}
