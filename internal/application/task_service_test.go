package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/employee-portal/internal/persistence"
	"github.com/example/employee-portal/internal/policy"
)

func newTaskFixture(t *testing.T) (*TaskService, *memTasks, *recordingNotifier) {
	t.Helper()
	users := newMemUsers(
		persistence.User{ID: "emp", Name: "Eve Employee", Email: "eve@example.com", Role: policy.RoleEmployee.String()},
		persistence.User{ID: "adm", Name: "Ada Admin", Email: "ada@example.com", Role: policy.RoleAdmin.String()},
		persistence.User{ID: "adm2", Name: "Abe Admin", Email: "abe@example.com", Role: policy.RoleAdmin.String()},
		persistence.User{ID: "sup", Name: "Sam Super", Email: "sam@example.com", Role: policy.RoleSuperAdmin.String()},
	)
	tasks := newMemTasks()
	mails := &recordingNotifier{}
	svc := NewTaskService(tasks, users, mails, sequentialIDs("task"), fixedNow(testTime(t, 10)), nil)
	return svc, tasks, mails
}

func adminPrincipal() Principal {
	return Principal{UserID: "adm", Name: "Ada Admin", Email: "ada@example.com", Role: policy.RoleAdmin}
}

func superPrincipal() Principal {
	return Principal{UserID: "sup", Name: "Sam Super", Email: "sam@example.com", Role: policy.RoleSuperAdmin}
}

func TestTaskService_Assign(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("admin assigns to employee", func(t *testing.T) {
		svc, _, mails := newTaskFixture(t)
		task, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "File TPS report", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if task.Status != TaskOpen {
			t.Errorf("new task status = %q, want Open", task.Status)
		}
		if task.AssignedTo.ID != "emp" || task.AssignedBy.ID != "adm" {
			t.Errorf("parties not resolved: %+v", task)
		}
		sent := mails.all()
		if len(sent) != 1 || sent[0].To != "eve@example.com" {
			t.Fatalf("expected assignee notification, got %+v", sent)
		}
	})

	t.Run("admin cannot assign to admin", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		_, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "abe@example.com"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("superadmin assigns to admin", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		if _, err := svc.Assign(ctx, superPrincipal(), AssignParams{Title: "x", AssigneeEmail: "ada@example.com"}); err != nil {
			t.Fatalf("Assign: %v", err)
		}
	})

	t.Run("self assignment denied", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		_, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "ada@example.com"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("employee cannot assign", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		emp := Principal{UserID: "emp", Role: policy.RoleEmployee}
		_, err := svc.Assign(ctx, emp, AssignParams{Title: "x", AssigneeEmail: "ada@example.com"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown assignee", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		_, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "nobody@example.com"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTaskService_UpdateStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	emp := Principal{UserID: "emp", Role: policy.RoleEmployee}

	t.Run("assignee moves status", func(t *testing.T) {
		svc, store, _ := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		task, err := svc.UpdateStatus(ctx, emp, created.ID, "in progress")
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if task.Status != TaskInProgress {
			t.Errorf("status = %q, want In Progress", task.Status)
		}
		stored, _ := store.GetTask(ctx, created.ID)
		if stored.Status != string(TaskInProgress) {
			t.Errorf("stored status = %q", stored.Status)
		}
	})

	t.Run("idempotent resubmission", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if _, err := svc.UpdateStatus(ctx, emp, created.ID, "Completed"); err != nil {
			t.Fatalf("first update: %v", err)
		}
		task, err := svc.UpdateStatus(ctx, emp, created.ID, "Completed")
		if err != nil {
			t.Fatalf("repeat update should be a no-op, got %v", err)
		}
		if task.Status != TaskCompleted {
			t.Errorf("status = %q, want Completed", task.Status)
		}
	})

	t.Run("non-assignee denied", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		_, err = svc.UpdateStatus(ctx, superPrincipal(), created.ID, "Completed")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		_, err = svc.UpdateStatus(ctx, emp, created.ID, "Blocked")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestTaskService_Cancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("admin cancels own assignment", func(t *testing.T) {
		svc, _, mails := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if err := svc.Cancel(ctx, adminPrincipal(), created.ID); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		sent := mails.all()
		last := sent[len(sent)-1]
		if last.To != "eve@example.com" {
			t.Errorf("expected assignee notification, got %+v", last)
		}
	})

	t.Run("admin cannot cancel another admin's assignment", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		abe := Principal{UserID: "adm2", Name: "Abe Admin", Email: "abe@example.com", Role: policy.RoleAdmin}
		created, err := svc.Assign(ctx, abe, AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if err := svc.Cancel(ctx, adminPrincipal(), created.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("superadmin cancels admin assignment", func(t *testing.T) {
		svc, _, _ := newTaskFixture(t)
		created, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "x", AssigneeEmail: "eve@example.com"})
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if err := svc.Cancel(ctx, superPrincipal(), created.ID); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
	})
}

func TestTaskService_Listing(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	if _, err := svc.Assign(ctx, adminPrincipal(), AssignParams{Title: "for eve", AssigneeEmail: "eve@example.com"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.Assign(ctx, superPrincipal(), AssignParams{Title: "for ada", AssigneeEmail: "ada@example.com"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	mine, err := svc.ListMine(ctx, Principal{UserID: "emp", Role: policy.RoleEmployee})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "for eve" {
		t.Errorf("ListMine = %+v", mine)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll returned %d tasks, want 2", len(all))
	}
}
